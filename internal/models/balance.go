package models

import (
	"sort"

	"github.com/mmynk/settleup/internal/money"
)

// NetBalance maps a counterparty's user ID to a signed balance, from one
// viewer's perspective within one group.
// Positive means the counterparty owes the viewer; negative means the viewer
// owes the counterparty. Settled counterparties are omitted.
type NetBalance map[string]money.Amount

// Counterparties returns the user IDs in lexicographic order.
func (b NetBalance) Counterparties() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Total returns the sum of all balances.
func (b NetBalance) Total() money.Amount {
	var total money.Amount
	for _, a := range b {
		total += a
	}
	return total
}

// GroupBalance is one group's contribution to a FriendBalance.
type GroupBalance struct {
	GroupID string
	Balance money.Amount
}

// FriendBalance is the viewer's balance with one counterparty across every
// group they share. NetBalance always equals the sum of Groups[].Balance.
type FriendBalance struct {
	CounterpartyID string

	// DisplayName comes from the member directory and is for display only.
	DisplayName string

	NetBalance money.Amount
	Groups     []GroupBalance
}
