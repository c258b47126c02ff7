package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/daterange"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func booked(start, end time.Time) *reservation.Reservation {
	return &reservation.Reservation{ID: "r", ListingID: "l1", Range: daterange.Of(start, end)}
}

func conflicts(idx Index, dr daterange.DateRange) bool {
	_, taken := idx.FirstConflict(dr)
	return taken
}

func TestDisabledDatesEmpty(t *testing.T) {
	dates := DisabledDates(nil)
	assert.NotNil(t, dates)
	assert.Empty(t, dates)
}

func TestDisabledDatesExpandsHalfOpenRanges(t *testing.T) {
	dates := DisabledDates([]*reservation.Reservation{
		booked(day(time.January, 10), day(time.January, 13)),
	})
	assert.Equal(t, []time.Time{
		day(time.January, 10),
		day(time.January, 11),
		day(time.January, 12),
	}, dates)
}

func TestDisabledDatesUnionCollapsesDuplicates(t *testing.T) {
	dates := DisabledDates([]*reservation.Reservation{
		booked(day(time.January, 12), day(time.January, 14)),
		booked(day(time.January, 10), day(time.January, 13)),
		booked(day(time.February, 1), day(time.February, 2)),
	})
	assert.Equal(t, []time.Time{
		day(time.January, 10),
		day(time.January, 11),
		day(time.January, 12),
		day(time.January, 13),
		day(time.February, 1),
	}, dates)
}

func TestDisabledDatesDegenerateReservationCoversNothing(t *testing.T) {
	dates := DisabledDates([]*reservation.Reservation{
		booked(day(time.January, 10), day(time.January, 10)),
		nil,
	})
	assert.Empty(t, dates)
}

func TestDisabledDatesContainsExactlyCoveredDays(t *testing.T) {
	rs := []*reservation.Reservation{
		booked(day(time.March, 1), day(time.March, 5)),
		booked(day(time.March, 7), day(time.March, 9)),
		booked(day(time.March, 4), day(time.March, 8)),
	}
	idx := Build(rs)

	expected := map[time.Time]bool{}
	for _, r := range rs {
		for d := r.Range.Start; d.Before(r.Range.End); d = d.AddDate(0, 0, 1) {
			expected[d] = true
		}
	}
	require.Len(t, idx.Dates(), len(expected))
	for d := day(time.February, 25); d.Before(day(time.March, 15)); d = d.AddDate(0, 0, 1) {
		single := daterange.Of(d, d.AddDate(0, 0, 1))
		assert.Equal(t, expected[d], conflicts(idx, single), d.Format(time.DateOnly))
	}
}

func TestIndexConflicts(t *testing.T) {
	idx := Build([]*reservation.Reservation{booked(day(time.January, 10), day(time.January, 15))})

	assert.True(t, conflicts(idx, daterange.Of(day(time.January, 12), day(time.January, 14))))
	assert.False(t, conflicts(idx, daterange.Of(day(time.January, 15), day(time.January, 18))))
	assert.False(t, conflicts(idx, daterange.Of(day(time.January, 5), day(time.January, 10))))
	assert.True(t, conflicts(idx, daterange.Of(time.Date(2024, time.January, 14, 23, 0, 0, 0, time.UTC), day(time.January, 20))))
}

func TestFirstConflictIsEarliestTakenDay(t *testing.T) {
	idx := Build([]*reservation.Reservation{
		booked(day(time.January, 14), day(time.January, 16)),
		booked(day(time.January, 11), day(time.January, 12)),
	})

	got, ok := idx.FirstConflict(daterange.Of(day(time.January, 10), day(time.January, 20)))
	require.True(t, ok)
	assert.Equal(t, day(time.January, 11), got)

	_, ok = idx.FirstConflict(daterange.Of(day(time.January, 12), day(time.January, 14)))
	assert.False(t, ok)
}
