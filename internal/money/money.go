// Package money provides the fixed-point amount type used throughout settleup.
//
// Amounts are held as integer minor units (cents) so that split and balance
// arithmetic reconciles exactly. Conversion from decimal strings happens only
// at the edges, through Parse and FromDecimal. There is no float entry point.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a value cannot be represented as an Amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a signed monetary value in cents.
type Amount int64

const (
	// Cent is the smallest representable amount.
	Cent Amount = 1

	// Epsilon is the reconciliation tolerance (0.01) used when comparing totals.
	Epsilon = Cent
)

// Parse converts a decimal string ("12.34", "-5", "0.5") to an Amount.
// Digits beyond the second decimal place are rounded half away from zero.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal converts a decimal value to an Amount, rounding to the cent.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return Amount(cents.IntPart()), nil
}

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 {
	return int64(a)
}

// Decimal returns the amount as a decimal with two fractional digits.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String formats the amount with exactly two decimals, e.g. "-12.50".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int {
	switch {
	case a < 0:
		return -1
	case a > 0:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// Within reports whether a and b differ by no more than Epsilon.
func Within(a, b Amount) bool {
	return (a - b).Abs() <= Epsilon
}

// MarshalJSON encodes the amount as a fixed-point string so precision is kept
// across the wire.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a decimal string or a JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
		}
		s = n.String()
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as INTEGER cents.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*a = Amount(v)
	case nil:
		return fmt.Errorf("%w: NULL", ErrInvalidAmount)
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrInvalidAmount, src)
	}
	return nil
}
