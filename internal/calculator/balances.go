package calculator

import (
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

// GroupResult is the outcome of aggregating one group for one viewer.
type GroupResult struct {
	Balances models.NetBalance
	Skipped  []SkippedRecord
}

// ComputeGroupBalances returns viewerID's signed balance against every
// counterparty in one group's expenses. Malformed expenses are skipped and
// logged.
func ComputeGroupBalances(expenses []models.Expense, viewerID string) models.NetBalance {
	res := AggregateGroup(expenses, nil, viewerID)
	LogSkipped(res.Skipped)
	return res.Balances
}

// AggregateGroup computes viewerID's NetBalance from a group's expenses and
// recorded payments.
//
// For every split of a valid expense:
//   - viewer is a participant, someone else paid: balance[payer] -= share
//   - viewer paid, someone else participates: balance[participant] += share
//   - otherwise the split does not involve the viewer
//
// A payment from the viewer to X adds to balance[X]; a payment from X to the
// viewer subtracts from it. Zero balances are omitted from the result.
func AggregateGroup(expenses []models.Expense, payments []models.Payment, viewerID string) GroupResult {
	balances := make(models.NetBalance)
	var skipped []SkippedRecord

	for _, e := range expenses {
		if err := ValidateExpense(e); err != nil {
			skipped = append(skipped, SkippedRecord{Kind: RecordExpense, ID: e.ID, GroupID: e.GroupID, Err: err})
			continue
		}

		payer := e.PaidBy
		for _, s := range e.Splits {
			switch {
			case s.UserID == viewerID && payer != viewerID:
				balances[payer] -= s.Amount
			case payer == viewerID && s.UserID != viewerID:
				balances[s.UserID] += s.Amount
			}
		}
	}

	for _, p := range payments {
		if err := ValidatePayment(p); err != nil {
			skipped = append(skipped, SkippedRecord{Kind: RecordPayment, ID: p.ID, GroupID: p.GroupID, Err: err})
			continue
		}

		switch viewerID {
		case p.FromUserID:
			balances[p.ToUserID] += p.Amount
		case p.ToUserID:
			balances[p.FromUserID] -= p.Amount
		}
	}

	for id, amount := range balances {
		if amount == 0 {
			delete(balances, id)
		}
	}

	return GroupResult{Balances: balances, Skipped: skipped}
}

// ComputeMemberBalances returns every member's net position in a group:
// positive means the member is owed, negative means the member owes.
// The result is a closed ledger (it sums to zero) and feeds ComputeSettlements.
func ComputeMemberBalances(expenses []models.Expense, payments []models.Payment) (map[string]money.Amount, []SkippedRecord) {
	balances := make(map[string]money.Amount)
	var skipped []SkippedRecord

	for _, e := range expenses {
		if err := ValidateExpense(e); err != nil {
			skipped = append(skipped, SkippedRecord{Kind: RecordExpense, ID: e.ID, GroupID: e.GroupID, Err: err})
			continue
		}
		for _, s := range e.Splits {
			if s.UserID == e.PaidBy {
				continue
			}
			balances[e.PaidBy] += s.Amount
			balances[s.UserID] -= s.Amount
		}
	}

	for _, p := range payments {
		if err := ValidatePayment(p); err != nil {
			skipped = append(skipped, SkippedRecord{Kind: RecordPayment, ID: p.ID, GroupID: p.GroupID, Err: err})
			continue
		}
		balances[p.FromUserID] += p.Amount
		balances[p.ToUserID] -= p.Amount
	}

	for id, amount := range balances {
		if amount == 0 {
			delete(balances, id)
		}
	}

	return balances, skipped
}
