package calculator

import (
	"fmt"
	"log/slog"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

// Record kinds reported in SkippedRecord.
const (
	RecordExpense = "expense"
	RecordPayment = "payment"
	RecordBalance = "balance"
)

// SkippedRecord describes an input that aggregation excluded.
// Err always wraps ErrMalformedRecord.
type SkippedRecord struct {
	Kind    string
	ID      string
	GroupID string
	Err     error
}

// ValidateExpense checks a stored expense against the split invariants.
// The returned error wraps ErrMalformedRecord.
func ValidateExpense(e models.Expense) error {
	if e.PaidBy == "" {
		return fmt.Errorf("%w: expense has no payer", ErrMalformedRecord)
	}
	if len(e.Splits) == 0 {
		return fmt.Errorf("%w: expense has no splits", ErrMalformedRecord)
	}

	seen := make(map[string]bool, len(e.Splits))
	external := false
	var sum money.Amount
	for i, s := range e.Splits {
		if s.UserID == "" {
			return fmt.Errorf("%w: split %d has no user id", ErrMalformedRecord, i)
		}
		if seen[s.UserID] {
			return fmt.Errorf("%w: duplicate split for %q", ErrMalformedRecord, s.UserID)
		}
		seen[s.UserID] = true
		if opposes(s.Amount, e.Amount) {
			return fmt.Errorf("%w: split for %q is %s against total %s", ErrMalformedRecord, s.UserID, s.Amount, e.Amount)
		}
		if s.UserID != e.PaidBy {
			external = true
		}
		sum += s.Amount
	}
	if !money.Within(sum, e.Amount) {
		return fmt.Errorf("%w: splits sum to %s, expected %s", ErrMalformedRecord, sum, e.Amount)
	}
	if !external {
		return fmt.Errorf("%w: payer is the only participant", ErrMalformedRecord)
	}
	return nil
}

// ValidatePayment checks a recorded payment.
func ValidatePayment(p models.Payment) error {
	switch {
	case p.FromUserID == "" || p.ToUserID == "":
		return fmt.Errorf("%w: payment is missing a party", ErrMalformedRecord)
	case p.FromUserID == p.ToUserID:
		return fmt.Errorf("%w: payment to self", ErrMalformedRecord)
	case p.Amount <= 0:
		return fmt.Errorf("%w: payment amount %s must be positive", ErrMalformedRecord, p.Amount)
	}
	return nil
}

// LogSkipped emits one warning per skipped record.
func LogSkipped(skipped []SkippedRecord) {
	for _, s := range skipped {
		slog.Warn("Skipping malformed record",
			"kind", s.Kind,
			"id", s.ID,
			"group_id", s.GroupID,
			"error", s.Err,
		)
	}
}
