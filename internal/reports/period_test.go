package reports

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowMonthIsCalendarAligned(t *testing.T) {
	now := time.Date(2025, time.March, 14, 15, 30, 0, 0, time.UTC)
	win, err := Window(now, PeriodMonth, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), win.Current.Start)
	assert.Equal(t, time.Date(2025, time.March, 31, 23, 59, 59, 999999999, time.UTC), win.Current.End)

	require.NotNil(t, win.Previous)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), win.Previous.Start)
	assert.Equal(t, time.Date(2025, time.February, 28, 23, 59, 59, 999999999, time.UTC), win.Previous.End)
}

func TestWindowWeekStartsMonday(t *testing.T) {
	// 2025-03-14 is a Friday; the ISO week starts Monday 2025-03-10.
	now := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
	win, err := Window(now, PeriodWeek, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), win.Current.Start)
	assert.Equal(t, time.Monday, win.Current.Start.Weekday())
	require.NotNil(t, win.Previous)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), win.Previous.Start)
}

func TestWindowWeekOnSunday(t *testing.T) {
	// Sunday still belongs to the week that started the previous Monday.
	now := time.Date(2025, time.March, 16, 12, 0, 0, 0, time.UTC)
	win, err := Window(now, PeriodWeek, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), win.Current.Start)
}

func TestWindowDayAndYear(t *testing.T) {
	now := time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)

	day, err := Window(now, PeriodDay, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), day.Current.Start)
	require.NotNil(t, day.Previous)
	assert.Equal(t, time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC), day.Previous.Start)

	year, err := Window(now, PeriodYear, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), year.Current.Start)
	require.NotNil(t, year.Previous)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), year.Previous.Start)
	assert.Equal(t, time.Date(2023, time.December, 31, 23, 59, 59, 999999999, time.UTC), year.Previous.End)
}

func TestWindowBoundaryInstantIsInclusive(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	win, err := Window(now, PeriodMonth, nil)
	require.NoError(t, err)

	assert.True(t, win.Current.Contains(win.Current.Start), "start instant belongs to the window")
	assert.True(t, win.Current.Contains(win.Current.End), "end instant belongs to the window")
	assert.False(t, win.Current.Contains(win.Current.End.Add(time.Nanosecond)))
	assert.False(t, win.Current.Contains(win.Current.Start.Add(-time.Nanosecond)))

	// Current and previous windows must not overlap.
	assert.False(t, win.Previous.Contains(win.Current.Start))
	assert.False(t, win.Current.Contains(win.Previous.End))
}

func TestWindowCustomHasNoPrevious(t *testing.T) {
	custom := &PeriodWindow{
		Start: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC),
	}
	win, err := Window(time.Now(), PeriodCustom, custom)
	require.NoError(t, err)
	assert.Equal(t, *custom, win.Current)
	assert.Nil(t, win.Previous)
}

func TestWindowCustomValidation(t *testing.T) {
	_, err := Window(time.Now(), PeriodCustom, nil)
	assert.True(t, errors.Is(err, ErrInvalidWindow))

	_, err = Window(time.Now(), PeriodCustom, &PeriodWindow{
		Start: time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, errors.Is(err, ErrInvalidWindow))

	_, err = Window(time.Now(), PeriodKind("quarter"), nil)
	assert.True(t, errors.Is(err, ErrInvalidWindow))
}

func TestWindowDeterministic(t *testing.T) {
	now := time.Date(2025, time.June, 15, 8, 45, 12, 345, time.UTC)
	first, err := Window(now, PeriodWeek, nil)
	require.NoError(t, err)
	second, err := Window(now, PeriodWeek, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
