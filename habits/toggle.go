// Package habits, as part of the habit tracking module.
// This file, `toggle.go`, holds the pure completion transition. It has no
// database access, so the rules can be tested with fixed clocks and zones.
package habits

import "time"

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// CompletedToday reports whether the habit's last completion falls on or after
// local midnight of now.
func (h *Habit) CompletedToday(now time.Time, loc *time.Location) bool {
	return h.LastCompleted != nil && !h.LastCompleted.Before(StartOfDay(now, loc))
}

// Toggled returns a copy of h after one toggle at instant now.
//
// If the habit was already completed today the toggle is an undo: the streak
// drops by one (never below zero) and lastCompleted is cleared. Otherwise it
// is a completion: the streak grows by one and lastCompleted becomes now.
// h itself is not modified.
func (h *Habit) Toggled(now time.Time, loc *time.Location) Habit {
	next := *h
	next.Frequency = append([]Weekday(nil), h.Frequency...)

	if h.CompletedToday(now, loc) {
		next.Streak = h.Streak - 1
		if next.Streak < 0 {
			next.Streak = 0
		}
		next.LastCompleted = nil
		return next
	}

	completedAt := now
	next.Streak = h.Streak + 1
	next.LastCompleted = &completedAt
	return next
}

// CompletedDates is the completion history the view layer derives cells from.
// Only the most recent completion is stored, so the history holds at most one
// entry.
func (h *Habit) CompletedDates() []time.Time {
	if h.LastCompleted == nil {
		return nil
	}
	return []time.Time{*h.LastCompleted}
}
