package daterange

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

const day = 24 * time.Hour

// fallbackLayouts mirror what browsers and form widgets commonly submit.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Normalize turns a raw check-in/check-out string into a UTC instant.
//
// Dash separated values with a one or two character leading token are read as
// DD-MM-YYYY, other dash separated values as YYYY-MM-DD. Both forms roll an
// overflowing day into the next month, so 2025-02-30 is 2 March. Everything
// else goes through a list of common layouts. Calendar dates land on midnight UTC; full
// timestamps keep their time of day. The second result is false when the value
// cannot be understood, which callers treat as "no stay" rather than an error.
func Normalize(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if parts := strings.Split(value, "-"); len(parts) == 3 {
		if len(parts[0]) <= 2 {
			return dayFirst(parts)
		}
		if t, ok := yearFirst(parts); ok {
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// dayFirst builds the date the way a calendar constructor does: out of range
// days or months roll into the neighbouring month or year. An empty token
// counts as 0, so "-10-2025" is the day before 1 October.
func dayFirst(parts []string) (time.Time, bool) {
	nums, ok := atois(parts)
	if !ok {
		return time.Time{}, false
	}
	d, m, y := nums[0], nums[1], nums[2]
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// yearFirst reads YYYY-MM-DD with a month of 1-12 and a day of 1-31. A day
// past the end of the month rolls over; anything else is left to the fallback
// layouts.
func yearFirst(parts []string) (time.Time, bool) {
	if len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, false
	}
	for _, part := range parts {
		if strings.Trim(part, "0123456789") != "" {
			return time.Time{}, false
		}
	}
	nums, _ := atois(parts)
	y, m, d := nums[0], nums[1], nums[2]
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

func atois(parts []string) ([]int, bool) {
	nums := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			nums = append(nums, 0)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}

// Nights returns the number of chargeable nights between two instants.
// Partial days count as a whole night; zero instants and non-positive spans
// yield 0.
func Nights(checkIn, checkOut time.Time) int {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}
	span := checkOut.Sub(checkIn)
	if span <= 0 {
		return 0
	}
	nights := int(span / day)
	if span%day != 0 {
		nights++
	}
	return nights
}

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return Nights(dr.CheckIn, dr.CheckOut)
}

// Stay is the normalized form of a raw check-in/check-out pair.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
	Nights   int
}

// NormalizeStay parses both ends and derives the night count. An unparseable
// end leaves the corresponding time zero and Nights at 0.
func NormalizeStay(rawCheckIn, rawCheckOut string) Stay {
	in, _ := Normalize(rawCheckIn)
	out, _ := Normalize(rawCheckOut)
	return Stay{CheckIn: in, CheckOut: out, Nights: Nights(in, out)}
}

// Valid reports whether the stay can be priced.
func (s Stay) Valid() bool {
	return s.Nights > 0
}

func (s Stay) Range() DateRange {
	return DateRange{CheckIn: s.CheckIn, CheckOut: s.CheckOut}
}
