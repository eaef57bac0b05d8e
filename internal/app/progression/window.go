// Package progression implements the jobtrail progression engine:
// time windows, activity counters, XP and levels, streaks, quests and
// achievement tiers, plus the Service that feeds them from a store.
package progression

import "time"

type windowKind int

const (
	kindDay windowKind = iota
	kindWeek
	kindMonth
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	kind  windowKind
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Previous returns the window of the same kind immediately before w.
func (w Window) Previous() Window {
	return w.Shift(-1)
}

// Shift moves the window by n units of its own kind.
func (w Window) Shift(n int) Window {
	switch w.kind {
	case kindDay:
		return Window{Start: w.Start.AddDate(0, 0, n), End: w.End.AddDate(0, 0, n), kind: kindDay}
	case kindWeek:
		return Window{Start: w.Start.AddDate(0, 0, 7*n), End: w.End.AddDate(0, 0, 7*n), kind: kindWeek}
	default:
		return Window{Start: w.Start.AddDate(0, n, 0), End: w.End.AddDate(0, n, 0), kind: kindMonth}
	}
}

// DayWindow returns the calendar day containing now.
func DayWindow(now time.Time) Window {
	start := startOfDay(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1), kind: kindDay}
}

// WeekWindow returns the Monday-start week containing now.
func WeekWindow(now time.Time) Window {
	day := startOfDay(now)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	start := day.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7), kind: kindWeek}
}

// MonthWindow returns the calendar month containing now.
func MonthWindow(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0), kind: kindMonth}
}

// startOfDay truncates t to local midnight. time.Truncate works in UTC
// and would shift days for non-UTC locations.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// calendarDays returns the number of midnights between from and to.
func calendarDays(from, to time.Time) int {
	a := startOfDay(from)
	b := startOfDay(to.In(from.Location()))
	hours := b.Sub(a).Hours()
	if hours >= 0 {
		return int(hours/24 + 0.5)
	}
	return -int(-hours/24 + 0.5)
}
