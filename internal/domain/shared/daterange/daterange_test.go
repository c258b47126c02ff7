package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayIgnoresTimeOfDayAndZone(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	late := time.Date(2024, time.January, 10, 23, 59, 0, 0, moscow)
	assert.Equal(t, date(2024, time.January, 10), Day(late))

	early := time.Date(2024, time.January, 10, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2024, time.January, 10), Day(early))
}

func TestNewRejectsEmptyAndInvertedRanges(t *testing.T) {
	_, err := New(date(2024, 1, 10), date(2024, 1, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(date(2024, 1, 10), date(2024, 1, 9))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(time.Time{}, date(2024, 1, 9))
	assert.ErrorIs(t, err, ErrInvalidRange)

	// same calendar day at different hours is still empty
	_, err = New(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestNightsUsesCalendarDays(t *testing.T) {
	start := time.Date(2024, 1, 10, 22, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC)
	dr, err := New(start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, dr.Nights())

	assert.Equal(t, 0, Of(date(2024, 1, 12), date(2024, 1, 10)).Nights())
	assert.Equal(t, 31, Of(date(2024, 3, 1), date(2024, 4, 1)).Nights())
}

func TestNightsBeyondDurationRange(t *testing.T) {
	dr := Of(date(2000, 1, 1), date(2400, 1, 1))
	assert.Equal(t, 146097, dr.Nights())

	days := dr.Days()
	require.Len(t, days, 146097)
	assert.Equal(t, date(2399, 12, 31), days[len(days)-1])
}

func TestDaysExpandsHalfOpenInterval(t *testing.T) {
	dr := Of(date(2024, 2, 28), date(2024, 3, 2))
	assert.Equal(t, []time.Time{
		date(2024, 2, 28),
		date(2024, 2, 29),
		date(2024, 3, 1),
	}, dr.Days())

	assert.Empty(t, Of(date(2024, 2, 28), date(2024, 2, 28)).Days())
}

func TestOverlapsTreatsCheckoutDayAsFree(t *testing.T) {
	a := Of(date(2024, 1, 10), date(2024, 1, 15))
	assert.True(t, a.Overlaps(Of(date(2024, 1, 12), date(2024, 1, 14))))
	assert.True(t, a.Overlaps(Of(date(2024, 1, 5), date(2024, 1, 11))))
	assert.False(t, a.Overlaps(Of(date(2024, 1, 15), date(2024, 1, 17))))
	assert.False(t, a.Overlaps(Of(date(2024, 1, 5), date(2024, 1, 10))))
}

func TestString(t *testing.T) {
	assert.Equal(t, "[2024-01-10, 2024-01-12)", Of(date(2024, 1, 10), date(2024, 1, 12)).String())
}
