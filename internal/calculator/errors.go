package calculator

import "errors"

var (
	// ErrSplitMismatch means the per-participant inputs do not reconcile to the
	// expense total, percentage total or share total. A caller input error.
	ErrSplitMismatch = errors.New("split does not reconcile")

	// ErrInvalidSplit means the split input is degenerate, e.g. no participants
	// or a zero share total.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrUnbalancedLedger means a group's balances do not sum to zero. It points
	// at a defect upstream and is never recovered silently.
	ErrUnbalancedLedger = errors.New("unbalanced ledger")

	// ErrMalformedRecord marks a single expense, payment or balance entry that
	// is skipped during aggregation.
	ErrMalformedRecord = errors.New("malformed record")
)
