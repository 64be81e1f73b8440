package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPercentBpsRoundsHalfUp(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{name: "ten percent exact", amount: 9000, bps: 1000, want: 900},
		{name: "five percent exact", amount: 9000, bps: 500, want: 450},
		{name: "half rounds up", amount: 5, bps: 1000, want: 1},
		{name: "below half rounds down", amount: 4, bps: 1000, want: 0},
		{name: "five percent of ten", amount: 10, bps: 500, want: 1},
		{name: "five percent of nine", amount: 9, bps: 500, want: 0},
		{name: "zero rate", amount: 1234, bps: 0, want: 0},
		{name: "negative amount mirrors positive", amount: -15, bps: 1000, want: -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Must(tc.amount, "inr").PercentBps(tc.bps)
			require.Equal(t, tc.want, got.Amount)
			require.Equal(t, "INR", got.Currency)
		})
	}
}

func TestArithmeticRequiresMatchingCurrency(t *testing.T) {
	a := Must(100, "INR")

	sum, err := a.Add(Must(50, "INR"))
	require.NoError(t, err)
	require.Equal(t, int64(150), sum.Amount)

	_, err = a.Add(Must(50, "USD"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = a.Sub(Money{Amount: 1})
	require.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestNewRejectsBadCurrency(t *testing.T) {
	_, err := New(10, "RUPEE")
	require.ErrorIs(t, err, ErrInvalidCurrency)
	require.Equal(t, int64(99900), Must(999, "INR").MinorUnits())
}
