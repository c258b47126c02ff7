package availability

import (
	"sort"
	"time"

	"dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/daterange"
)

// Index is the set of calendar days of one listing that are already taken.
// It is derived from reservations on every read and never stored.
type Index struct {
	days map[time.Time]struct{}
}

// Build expands every reservation's [start, end) into calendar days. A
// reservation whose start equals its end covers no day.
func Build(reservations []*reservation.Reservation) Index {
	idx := Index{days: make(map[time.Time]struct{})}
	for _, r := range reservations {
		if r == nil {
			continue
		}
		for _, d := range r.Range.Days() {
			idx.days[d] = struct{}{}
		}
	}
	return idx
}

// DisabledDates returns the union of days covered by the reservations,
// ascending, each as UTC midnight.
func DisabledDates(reservations []*reservation.Reservation) []time.Time {
	return Build(reservations).Dates()
}

// FirstConflict returns the earliest day of dr that is already taken. A
// reservation for dr conflicts exactly when one exists.
func (i Index) FirstConflict(dr daterange.DateRange) (time.Time, bool) {
	for _, d := range dr.Days() {
		if _, ok := i.days[d]; ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func (i Index) Dates() []time.Time {
	out := make([]time.Time, 0, len(i.days))
	for d := range i.days {
		out = append(out, d)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Before(out[b]) })
	return out
}
