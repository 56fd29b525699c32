package calculator

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mmynk/settleup/internal/models"
)

// GroupBalances is one group's input to ComputeFriendBalances: the group's
// member directory and the viewer's NetBalance in it.
type GroupBalances struct {
	GroupID  string
	Members  []models.GroupMember
	Balances models.NetBalance
}

// ComputeFriendBalances merges a viewer's per-group balances into one balance
// per counterparty.
//
// Aggregation is keyed by user ID only; member directories are consulted for
// display names and ordering. Each friend's NetBalance is the sum of its
// Groups entries, which appear in input group order. Friends who net to zero
// are omitted. The result is sorted by display name, then user ID.
func ComputeFriendBalances(viewerID string, groups []GroupBalances) []models.FriendBalance {
	friends, skipped := NetFriendBalances(viewerID, groups)
	LogSkipped(skipped)
	return friends
}

// NetFriendBalances is ComputeFriendBalances without logging; entries it had
// to exclude are returned instead.
func NetFriendBalances(viewerID string, groups []GroupBalances) ([]models.FriendBalance, []SkippedRecord) {
	byID := make(map[string]*models.FriendBalance)
	var skipped []SkippedRecord

	for _, g := range groups {
		dir := models.NewMemberDirectory(g.Members)
		for _, cp := range g.Balances.Counterparties() {
			amount := g.Balances[cp]
			if amount == 0 {
				continue
			}
			if cp == "" || cp == viewerID {
				skipped = append(skipped, SkippedRecord{
					Kind:    RecordBalance,
					ID:      cp,
					GroupID: g.GroupID,
					Err:     fmt.Errorf("%w: invalid counterparty %q", ErrMalformedRecord, cp),
				})
				continue
			}

			fb, ok := byID[cp]
			if !ok {
				fb = &models.FriendBalance{CounterpartyID: cp}
				byID[cp] = fb
			}
			if fb.DisplayName == "" && dir.Has(cp) {
				fb.DisplayName = dir.Name(cp)
			}
			fb.Groups = append(fb.Groups, models.GroupBalance{GroupID: g.GroupID, Balance: amount})
			fb.NetBalance += amount
		}
	}

	friends := make([]models.FriendBalance, 0, len(byID))
	for _, fb := range byID {
		if fb.NetBalance == 0 {
			slog.Debug("Friend settled across groups", "counterparty_id", fb.CounterpartyID, "groups", len(fb.Groups))
			continue
		}
		if fb.DisplayName == "" {
			fb.DisplayName = fb.CounterpartyID
		}
		friends = append(friends, *fb)
	}

	sort.Slice(friends, func(i, j int) bool {
		a, b := strings.ToLower(friends[i].DisplayName), strings.ToLower(friends[j].DisplayName)
		if a != b {
			return a < b
		}
		return friends[i].CounterpartyID < friends[j].CounterpartyID
	})

	return friends, skipped
}
