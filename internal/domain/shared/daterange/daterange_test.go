package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeAcceptsBothDashOrders(t *testing.T) {
	iso, ok := Normalize("2025-10-14")
	require.True(t, ok)
	dayFirst, ok := Normalize("14-10-2025")
	require.True(t, ok)

	require.Equal(t, date(2025, time.October, 14), iso)
	require.True(t, iso.Equal(dayFirst))
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{raw: "", ok: false},
		{raw: "   ", ok: false},
		{raw: "not a date", ok: false},
		{raw: "1-2-2025", want: date(2025, time.February, 1), ok: true},
		{raw: " 05-11-2025 ", want: date(2025, time.November, 5), ok: true},
		{raw: "aa-10-2025", ok: false},
		{raw: "31-02-2025", want: date(2025, time.March, 3), ok: true},
		{raw: "2025-13-01", ok: false},
		{raw: "2025-02-30", want: date(2025, time.March, 2), ok: true},
		{raw: "2024-02-30", want: date(2024, time.March, 1), ok: true},
		{raw: "2025-04-31", want: date(2025, time.May, 1), ok: true},
		{raw: "2025-02-32", ok: false},
		{raw: "2025-02-00", ok: false},
		{raw: "-10-2025", want: date(2025, time.September, 30), ok: true},
		{raw: "1--2025", want: date(2024, time.December, 1), ok: true},
		{raw: "2025-3-7", want: date(2025, time.March, 7), ok: true},
		{raw: "2025/03/07", want: date(2025, time.March, 7), ok: true},
		{raw: "03/07/2025", want: date(2025, time.March, 7), ok: true},
		{raw: "March 7, 2025", want: date(2025, time.March, 7), ok: true},
		{raw: "2025-03-07T12:00:00Z", want: time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC), ok: true},
		{raw: "2025-03-07T12:00:00+05:30", want: time.Date(2025, time.March, 7, 6, 30, 0, 0, time.UTC), ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := Normalize(tc.raw)
			require.Equal(t, tc.ok, ok)
			if !tc.ok {
				require.True(t, got.IsZero())
				return
			}
			require.True(t, tc.want.Equal(got), "got %s", got)
			require.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNights(t *testing.T) {
	in := date(2025, time.October, 14)

	require.Equal(t, 3, Nights(in, date(2025, time.October, 17)))
	require.Equal(t, 0, Nights(in, in))
	require.Equal(t, 0, Nights(in, date(2025, time.October, 10)))
	require.Equal(t, 0, Nights(time.Time{}, in))
	require.Equal(t, 0, Nights(in, time.Time{}))
}

func TestNightsRoundsPartialDaysUp(t *testing.T) {
	in := date(2025, time.October, 14)

	require.Equal(t, 2, Nights(in, in.Add(29*time.Hour)))
	require.Equal(t, 1, Nights(in, in.Add(time.Minute)))
	require.Equal(t, 1, Nights(in, in.Add(24*time.Hour)))
}

func TestNormalizeStay(t *testing.T) {
	stay := NormalizeStay("14-10-2025", "2025-10-17")
	require.True(t, stay.Valid())
	require.Equal(t, 3, stay.Nights)
	require.Equal(t, 3, stay.Range().Nights())
	require.NoError(t, stay.Range().Validate())

	broken := NormalizeStay("14-10-2025", "soon")
	require.False(t, broken.Valid())
	require.Equal(t, 0, broken.Nights)
	require.ErrorIs(t, broken.Range().Validate(), ErrInvalidRange)
}
