package model

import (
	"errors"
	"time"
)

// DateLayout is the wire and column format for stay dates.
const DateLayout = "2006-01-02"

// ErrEmptyRange is returned when a stay does not end after it starts.
var ErrEmptyRange = errors.New("check_out must be after check_in")

// DateRange is a half-open stay interval [CheckIn, CheckOut).  Both ends are
// calendar dates stored as UTC midnight.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange truncates both ends to UTC dates and rejects empty or
// inverted ranges.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !r.CheckOut.After(r.CheckIn) {
		return DateRange{}, ErrEmptyRange
	}
	return r, nil
}

// ParseDateRange parses two YYYY-MM-DD strings into a DateRange.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(in, out)
}

// Day drops the clock part of t, keeping the UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back stays (one checks out the day the other checks in) do not
// overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// Nights is the number of nights covered by the range.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// String renders the range as "YYYY-MM-DD..YYYY-MM-DD".
func (r DateRange) String() string {
	return r.CheckIn.Format(DateLayout) + ".." + r.CheckOut.Format(DateLayout)
}

// Stay returns the reservation's interval.
func (r Reservation) Stay() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}
