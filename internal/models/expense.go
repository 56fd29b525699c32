package models

import "github.com/mmynk/settleup/internal/money"

// SplitType selects how an expense's amount is divided among participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly among the selected participants.
	SplitEqual SplitType = "equal"
	// SplitExact uses the per-participant amounts as given.
	SplitExact SplitType = "exact"
	// SplitPercentage divides the amount by per-participant percentages.
	SplitPercentage SplitType = "percentage"
	// SplitShares divides the amount proportionally to integer share counts.
	SplitShares SplitType = "shares"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitExact, SplitPercentage, SplitShares:
		return true
	}
	return false
}

// Expense is a cost paid by one group member and shared among participants.
// It is created once and replaced wholesale (splits recomputed) on edit.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group that owns this expense.
	GroupID string

	// Description is the human-readable label (e.g., "Groceries").
	// Generated from the participants when left empty.
	Description string

	// Amount is the total cost. Negative amounts represent refunds.
	Amount money.Amount

	// PaidBy is the user ID of the member who paid.
	PaidBy string

	// SplitType records the method the splits were computed with.
	SplitType SplitType

	// Splits are the per-participant shares.
	// Their sum equals Amount within money.Epsilon.
	Splits []Split

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string
}

// Split is one participant's share of an expense.
type Split struct {
	UserID string
	Amount money.Amount
}

// Participants returns the user IDs of the expense's splits, in order.
func (e *Expense) Participants() []string {
	ids := make([]string, len(e.Splits))
	for i, s := range e.Splits {
		ids[i] = s.UserID
	}
	return ids
}

// SplitTotal returns the sum of all split amounts.
func (e *Expense) SplitTotal() money.Amount {
	var total money.Amount
	for _, s := range e.Splits {
		total += s.Amount
	}
	return total
}
