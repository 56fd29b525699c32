package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in  string
		out Amount
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{"-1.005", -101, true},
		{"-12.5", -1250, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.out, got)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "0.00", Amount(0).String())
	assert.Equal(t, "33.34", Amount(3334).String())
	assert.Equal(t, "-0.05", Amount(-5).String())
	assert.Equal(t, "1000.00", Amount(100000).String())
}

func TestDecimal(t *testing.T) {
	assert.True(t, Amount(1250).Decimal().Equal(decimal.RequireFromString("12.5")))
}

func TestWithin(t *testing.T) {
	assert.True(t, Within(10000, 10001))
	assert.True(t, Within(10000, 9999))
	assert.False(t, Within(10000, 10002))
}

func TestSignHelpers(t *testing.T) {
	assert.Equal(t, -1, Amount(-3).Sign())
	assert.Equal(t, 0, Amount(0).Sign())
	assert.Equal(t, 1, Amount(3).Sign())
	assert.Equal(t, Amount(3), Amount(-3).Abs())
}

func TestJSON(t *testing.T) {
	type payload struct {
		Amount Amount `json:"amount"`
	}

	out, err := json.Marshal(payload{Amount: 3334})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"33.34"}`, string(out))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.50"}`), &p))
	assert.Equal(t, Amount(1250), p.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":7.25}`), &p))
	assert.Equal(t, Amount(725), p.Amount)

	err = json.Unmarshal([]byte(`{"amount":"twelve"}`), &p)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	err = json.Unmarshal([]byte(`{"amount":true}`), &p)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestScan(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan(int64(-420)))
	assert.Equal(t, Amount(-420), a)
	assert.ErrorIs(t, a.Scan(nil), ErrInvalidAmount)
	assert.ErrorIs(t, a.Scan("1.00"), ErrInvalidAmount)

	v, err := Amount(99).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(99), v)
}
