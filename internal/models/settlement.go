package models

import "github.com/mmynk/settleup/internal/money"

// Settlement is a proposed payment instruction produced by the settlement
// optimizer. It is neither an Expense nor persisted.
type Settlement struct {
	// FromUserID is the debtor who should pay.
	FromUserID string

	// ToUserID is the creditor who should receive.
	ToUserID string

	// Amount is always positive.
	Amount money.Amount
}

// Payment is a recorded settle-up transfer between group members.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount. Always positive.
	Amount money.Amount

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this payment.
	CreatedBy string

	// Note is an optional description for the payment.
	Note string
}
