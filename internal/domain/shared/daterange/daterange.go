package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end date must be after start date")
)

const secondsPerDay = 24 * 60 * 60

// DateRange represents a half-open interval of calendar days [Start, End).
// Both bounds are stored as UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its calendar day in t's own location and returns that
// day as UTC midnight. Time of day and zone offset are discarded.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New builds a validated range from two instants.
func New(start, end time.Time) (DateRange, error) {
	dr := Of(start, end)
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Of builds a range without validating it. Degenerate and inverted ranges
// are representable and report zero nights.
func Of(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts the calendar days covered by the range, 0 for empty or
// inverted ranges.
func (dr DateRange) Nights() int {
	if !dr.End.After(dr.Start) {
		return 0
	}
	return int((dr.End.Unix() - dr.Start.Unix()) / secondsPerDay)
}

// Days expands the range into the calendar days it covers.
func (dr DateRange) Days() []time.Time {
	n := dr.Nights()
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, dr.Start.AddDate(0, 0, i))
	}
	return out
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

func (dr DateRange) String() string {
	return "[" + dr.Start.Format(time.DateOnly) + ", " + dr.End.Format(time.DateOnly) + ")"
}
