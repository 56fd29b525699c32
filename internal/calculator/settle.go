package calculator

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

// party is a creditor or debtor with the magnitude still to settle.
type party struct {
	userID    string
	remaining money.Amount
}

// partyHeap orders parties by largest remaining amount, then by user ID.
type partyHeap []*party

func (h partyHeap) Len() int { return len(h) }

func (h partyHeap) Less(i, j int) bool {
	if h[i].remaining != h[j].remaining {
		return h[i].remaining > h[j].remaining
	}
	return h[i].userID < h[j].userID
}

func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *partyHeap) Push(x any) { *h = append(*h, x.(*party)) }

func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// ComputeSettlements reduces a group's member balances (positive = is owed,
// negative = owes) to a short list of debtor-to-creditor payments that brings
// every balance to zero.
//
// Algorithm: greedy matching. Repeatedly pair the creditor with the largest
// remaining credit and the debtor with the largest remaining debt, transfer
// the smaller of the two, and drop whoever reaches zero. Ties go to the
// lexicographically smaller user ID. At most n-1 instructions are produced
// for n non-zero members.
//
// Members within money.Epsilon of zero are already settled and take no part.
//
// Returns ErrUnbalancedLedger when the balances do not sum to zero within
// money.Epsilon.
func ComputeSettlements(balances map[string]money.Amount) ([]models.Settlement, error) {
	ids := make([]string, 0, len(balances))
	var sum money.Amount
	for id, amount := range balances {
		ids = append(ids, id)
		sum += amount
	}
	if sum.Abs() > money.Epsilon {
		return nil, fmt.Errorf("%w: balances sum to %s across %d members", ErrUnbalancedLedger, sum, len(balances))
	}
	sort.Strings(ids)

	creditors := &partyHeap{}
	debtors := &partyHeap{}
	for _, id := range ids {
		switch amount := balances[id]; {
		case amount > money.Epsilon:
			*creditors = append(*creditors, &party{userID: id, remaining: amount})
		case amount < -money.Epsilon:
			*debtors = append(*debtors, &party{userID: id, remaining: -amount})
		}
	}
	heap.Init(creditors)
	heap.Init(debtors)

	var settlements []models.Settlement
	for creditors.Len() > 0 && debtors.Len() > 0 {
		c := heap.Pop(creditors).(*party)
		d := heap.Pop(debtors).(*party)

		transfer := min(c.remaining, d.remaining)
		settlements = append(settlements, models.Settlement{
			FromUserID: d.userID,
			ToUserID:   c.userID,
			Amount:     transfer,
		})

		c.remaining -= transfer
		d.remaining -= transfer
		if c.remaining > 0 {
			heap.Push(creditors, c)
		}
		if d.remaining > 0 {
			heap.Push(debtors, d)
		}
	}

	return settlements, nil
}
