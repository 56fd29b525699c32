// Package calculator is the expense split and settlement balance engine.
//
// Every function here is a synchronous transformation from input data to
// output data with no shared state and no I/O, so calls for different groups
// may run concurrently. Inputs are processed in slice order, which makes
// repeated runs on identical input produce identical output.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

var (
	hundred = decimal.NewFromInt(100)

	// percentTolerance is how far the percentages may stray from 100.
	percentTolerance = decimal.RequireFromString("0.1")
)

// Participant is one entry of split input.
// Value is ignored for equal splits, is a money amount for exact splits, a
// percentage (0-100) for percentage splits and a non-negative integer share
// count for share splits.
type Participant struct {
	UserID string
	Value  decimal.Decimal
}

// RemainderPolicy decides which participant absorbs leftover cents.
type RemainderPolicy int

const (
	// RemainderToLast gives leftover cents to the last eligible participant in
	// input order.
	RemainderToLast RemainderPolicy = iota
	// RemainderToFirst gives leftover cents to the first eligible participant.
	RemainderToFirst
)

// ParseRemainderPolicy maps "", "last" and "first" to a policy.
func ParseRemainderPolicy(s string) (RemainderPolicy, error) {
	switch s {
	case "", "last":
		return RemainderToLast, nil
	case "first":
		return RemainderToFirst, nil
	}
	return 0, fmt.Errorf("%w: unknown remainder policy %q", ErrInvalidSplit, s)
}

type splitOptions struct {
	remainder RemainderPolicy
}

// Option configures ComputeSplits.
type Option func(*splitOptions)

// WithRemainderPolicy overrides which participant absorbs rounding leftovers.
func WithRemainderPolicy(p RemainderPolicy) Option {
	return func(o *splitOptions) {
		o.remainder = p
	}
}

// ComputeSplits divides amount among participants using the given method.
// The returned splits cover exactly the input participants, in input order,
// and sum to amount (to the cent for equal, percentage and share splits;
// within money.Epsilon for exact splits).
//
// Shares are truncated toward zero and the leftover is given to one designated
// participant, so rounding never produces a share whose sign opposes amount.
func ComputeSplits(amount money.Amount, splitType models.SplitType, participants []Participant, opts ...Option) ([]models.Split, error) {
	o := splitOptions{remainder: RemainderToLast}
	for _, opt := range opts {
		opt(&o)
	}

	if err := checkParticipants(participants); err != nil {
		return nil, err
	}

	switch splitType {
	case models.SplitEqual:
		return splitEqual(amount, participants, o), nil
	case models.SplitExact:
		return splitExact(amount, participants)
	case models.SplitPercentage:
		return splitPercentage(amount, participants, o)
	case models.SplitShares:
		return splitShares(amount, participants, o)
	}
	return nil, fmt.Errorf("%w: unknown split type %q", ErrInvalidSplit, splitType)
}

func checkParticipants(participants []Participant) error {
	if len(participants) == 0 {
		return fmt.Errorf("%w: must have at least one participant", ErrInvalidSplit)
	}
	seen := make(map[string]bool, len(participants))
	for i, p := range participants {
		if p.UserID == "" {
			return fmt.Errorf("%w: participant %d has no user id", ErrInvalidSplit, i)
		}
		if seen[p.UserID] {
			return fmt.Errorf("%w: duplicate participant %q", ErrInvalidSplit, p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}

func splitEqual(amount money.Amount, participants []Participant, o splitOptions) []models.Split {
	n := int64(len(participants))
	share := money.Amount(amount.Cents() / n)

	splits := make([]models.Split, len(participants))
	for i, p := range participants {
		splits[i] = models.Split{UserID: p.UserID, Amount: share}
	}

	all := make([]int, len(participants))
	for i := range all {
		all[i] = i
	}
	idx := designate(all, o.remainder)
	splits[idx].Amount = amount - share*money.Amount(n-1)
	return splits
}

func splitExact(amount money.Amount, participants []Participant) ([]models.Split, error) {
	splits := make([]models.Split, len(participants))
	var sum money.Amount
	for i, p := range participants {
		v, err := money.FromDecimal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSplit, p.UserID, err)
		}
		if opposes(v, amount) {
			return nil, fmt.Errorf("%w: %s share %s has the wrong sign for total %s", ErrInvalidSplit, p.UserID, v, amount)
		}
		splits[i] = models.Split{UserID: p.UserID, Amount: v}
		sum += v
	}
	if !money.Within(sum, amount) {
		return nil, fmt.Errorf("%w: exact amounts sum to %s, expected %s", ErrSplitMismatch, sum, amount)
	}
	return splits, nil
}

func splitPercentage(amount money.Amount, participants []Participant, o splitOptions) ([]models.Split, error) {
	total := decimal.Zero
	for _, p := range participants {
		if p.Value.IsNegative() || p.Value.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: %s percentage %s outside 0-100", ErrInvalidSplit, p.UserID, p.Value)
		}
		total = total.Add(p.Value)
	}
	if total.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return nil, fmt.Errorf("%w: percentages sum to %s, expected 100", ErrSplitMismatch, total)
	}
	return proportional(amount, participants, hundred, o)
}

func splitShares(amount money.Amount, participants []Participant, o splitOptions) ([]models.Split, error) {
	total := decimal.Zero
	for _, p := range participants {
		if p.Value.IsNegative() || !p.Value.IsInteger() {
			return nil, fmt.Errorf("%w: %s share count %s must be a non-negative integer", ErrInvalidSplit, p.UserID, p.Value)
		}
		total = total.Add(p.Value)
	}
	if total.IsZero() {
		return nil, fmt.Errorf("%w: total shares cannot be zero", ErrInvalidSplit)
	}
	return proportional(amount, participants, total, o)
}

// proportional computes amount * value / denominator for each participant,
// truncated to the cent, and hands the leftover to the participant with the
// largest value.
func proportional(amount money.Amount, participants []Participant, denominator decimal.Decimal, o splitOptions) ([]models.Split, error) {
	cents := decimal.NewFromInt(amount.Cents())
	splits := make([]models.Split, len(participants))
	var sum money.Amount
	for i, p := range participants {
		share := money.Amount(cents.Mul(p.Value).Div(denominator).Truncate(0).IntPart())
		splits[i] = models.Split{UserID: p.UserID, Amount: share}
		sum += share
	}

	leftover := amount - sum
	if leftover == 0 {
		return splits, nil
	}

	idx := designate(largest(participants), o.remainder)
	adjusted := splits[idx].Amount + leftover
	if opposes(adjusted, amount) {
		return nil, fmt.Errorf("%w: cannot distribute %s leftover without a negative share", ErrSplitMismatch, leftover)
	}
	splits[idx].Amount = adjusted
	return splits, nil
}

// largest returns the indices of the participants holding the maximum value.
func largest(participants []Participant) []int {
	var idx []int
	top := participants[0].Value
	for i, p := range participants {
		switch p.Value.Cmp(top) {
		case 1:
			top = p.Value
			idx = []int{i}
		case 0:
			idx = append(idx, i)
		}
	}
	return idx
}

func designate(candidates []int, policy RemainderPolicy) int {
	if policy == RemainderToFirst {
		return candidates[0]
	}
	return candidates[len(candidates)-1]
}

// opposes reports whether share has a sign that the total cannot produce.
// A zero total admits only zero shares.
func opposes(share, total money.Amount) bool {
	if total == 0 {
		return share != 0
	}
	return share.Sign() == -total.Sign()
}
