package reports

import (
	"fmt"
	"time"
)

// PeriodKind selects how a reporting window is derived from a reference instant.
type PeriodKind string

const (
	PeriodDay    PeriodKind = "day"
	PeriodWeek   PeriodKind = "week"
	PeriodMonth  PeriodKind = "month"
	PeriodYear   PeriodKind = "year"
	PeriodCustom PeriodKind = "custom"
)

/// PeriodWindow is a closed interval: both Start and End are inside the window.
// Historical report totals were produced with `date >= start && date <= end`,
// so the inclusive treatment of End is part of the contract.
type PeriodWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, endpoints included.
func (w PeriodWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Key renders a stable cache-key token for the window.
func (w PeriodWindow) Key() string {
	return w.Start.UTC().Format(time.RFC3339) + ".." + w.End.UTC().Format(time.RFC3339)
}

// Windows pairs the current reporting window with its calendar-aligned
// predecessor. Previous is nil for custom ranges, which have no well-defined
// preceding period; callers must not derive growth figures without one.
type Windows struct {
	Current  PeriodWindow
	Previous *PeriodWindow
}

// Window derives the current and previous reporting windows from now.
// Previous windows are calendar-aligned (the previous month is the calendar
// month before now's month, not a rolling shift) because report consumers
// compare calendar periods. Weeks start on Monday per ISO convention.
func Window(now time.Time, kind PeriodKind, custom *PeriodWindow) (Windows, error) {
	switch kind {
	case PeriodDay:
		start := startOfDay(now)
		return Windows{
			Current:  PeriodWindow{Start: start, End: endOfDay(start)},
			Previous: windowPtr(PeriodWindow{Start: start.AddDate(0, 0, -1), End: endOfDay(start.AddDate(0, 0, -1))}),
		}, nil
	case PeriodWeek:
		start := startOfISOWeek(now)
		prev := start.AddDate(0, 0, -7)
		return Windows{
			Current:  PeriodWindow{Start: start, End: endOfDay(start.AddDate(0, 0, 6))},
			Previous: windowPtr(PeriodWindow{Start: prev, End: endOfDay(prev.AddDate(0, 0, 6))}),
		}, nil
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		prev := start.AddDate(0, -1, 0)
		return Windows{
			Current:  PeriodWindow{Start: start, End: endOfMonth(start)},
			Previous: windowPtr(PeriodWindow{Start: prev, End: endOfMonth(prev)}),
		}, nil
	case PeriodYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		prev := start.AddDate(-1, 0, 0)
		return Windows{
			Current:  PeriodWindow{Start: start, End: endOfYear(start)},
			Previous: windowPtr(PeriodWindow{Start: prev, End: endOfYear(prev)}),
		}, nil
	case PeriodCustom:
		if custom == nil {
			return Windows{}, fmt.Errorf("%w: custom range requires explicit bounds", ErrInvalidWindow)
		}
		if custom.End.Before(custom.Start) {
			return Windows{}, fmt.Errorf("%w: start %s after end %s", ErrInvalidWindow, custom.Start, custom.End)
		}
		return Windows{Current: *custom}, nil
	default:
		return Windows{}, fmt.Errorf("%w: unknown period kind %q", ErrInvalidWindow, string(kind))
	}
}

func windowPtr(w PeriodWindow) *PeriodWindow {
	return &w
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay is the last representable instant of the day holding t, so the
// inclusive Contains check covers the entire day.
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func endOfMonth(startOfMonth time.Time) time.Time {
	return startOfMonth.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func endOfYear(startOfYear time.Time) time.Time {
	return startOfYear.AddDate(1, 0, 0).Add(-time.Nanosecond)
}

// startOfISOWeek rewinds t to the most recent Monday.
func startOfISOWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
