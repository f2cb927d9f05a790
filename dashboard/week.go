// Package dashboard derives the weekly habit grid shown to the user: for each
// habit and each day of a Sunday-to-Saturday week, whether the day is
// scheduled, whether it was completed, and whether it can still be toggled.
//
// Everything here is a pure function of the habits, the week being viewed and
// the current instant.
//
// This file, `week.go`, contains the week arithmetic and the per-cell
// predicates. Dates are always compared as calendar days in the configured
// location, never as raw instants.
package dashboard

import (
	"time"

	"github.com/user/habits-go/habits"
)

// DayCell is one day of one habit's row.
type DayCell struct {
	Date        string         `json:"date" example:"2024-01-15"`
	Weekday     habits.Weekday `json:"weekday" example:"monday"`
	Scheduled   bool           `json:"scheduled"`
	Completed   bool           `json:"completed"`
	Interactive bool           `json:"interactive"`
	IsToday     bool           `json:"isToday"`
}

// HabitRow is one habit with its seven day cells.
type HabitRow struct {
	Habit habits.Habit `json:"habit"`
	Days  []DayCell    `json:"days"`
}

// Week is the grid for one calendar week.
type Week struct {
	Start    string     `json:"start" example:"2024-01-14"`
	End      string     `json:"end" example:"2024-01-20"`
	Previous string     `json:"previous" example:"2024-01-07"`
	Next     string     `json:"next" example:"2024-01-21"`
	Today    string     `json:"today" example:"2024-01-15"`
	Habits   []HabitRow `json:"habits"`
}

// DateLayout is the calendar-date format used in query strings and responses.
const DateLayout = "2006-01-02"

// orLocal treats a nil location as the process's local zone, the same way
// habits.StartOfDay does.
func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// sameDay compares calendar days of a and b as seen in loc.
func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// WeekDates returns local midnight of the seven days, Sunday first, of the
// week containing anchor.
func WeekDates(anchor time.Time, loc *time.Location) [7]time.Time {
	start := habits.StartOfDay(anchor, loc)
	// Step back to Sunday. AddDate keeps local midnight across DST changes.
	start = start.AddDate(0, 0, -int(start.Weekday()))
	var days [7]time.Time
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// ShiftWeek moves anchor by n weeks; negative n goes back.
func ShiftWeek(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, 0, 7*n)
}

// IsScheduledDay reports whether date's weekday is in the habit's frequency.
func IsScheduledDay(h *habits.Habit, date time.Time, loc *time.Location) bool {
	loc = orLocal(loc)
	return h.HasDay(habits.WeekdayOf(date.In(loc)))
}

// IsCompletedForDate reports whether the habit was completed on date's
// calendar day.
func IsCompletedForDate(h *habits.Habit, date time.Time, loc *time.Location) bool {
	loc = orLocal(loc)
	for _, done := range h.CompletedDates() {
		if sameDay(done, date, loc) {
			return true
		}
	}
	return false
}

// IsInteractive reports whether the cell for date accepts a toggle: it must
// be scheduled and not in the future.
func IsInteractive(h *habits.Habit, date, now time.Time, loc *time.Location) bool {
	loc = orLocal(loc)
	if !IsScheduledDay(h, date, loc) {
		return false
	}
	return !habits.StartOfDay(date, loc).After(habits.StartOfDay(now, loc))
}

// BuildWeek lays out the week containing anchor for every habit.
func BuildWeek(list []habits.Habit, anchor, now time.Time, loc *time.Location) Week {
	loc = orLocal(loc)
	days := WeekDates(anchor, loc)

	// Navigation anchors are the Sundays of the neighbouring weeks, so the
	// client can pass them straight back as ?date=.
	week := Week{
		Start:    days[0].Format(DateLayout),
		End:      days[6].Format(DateLayout),
		Previous: ShiftWeek(days[0], -1).Format(DateLayout),
		Next:     ShiftWeek(days[0], 1).Format(DateLayout),
		Today:    now.In(loc).Format(DateLayout),
		Habits:   make([]HabitRow, 0, len(list)),
	}
	for i := range list {
		h := &list[i]
		row := HabitRow{Habit: *h, Days: make([]DayCell, 0, len(days))}
		// One cell per day, Sunday first, each computed independently.
		for _, d := range days {
			row.Days = append(row.Days, DayCell{
				Date:        d.Format(DateLayout),
				Weekday:     habits.WeekdayOf(d),
				Scheduled:   IsScheduledDay(h, d, loc),
				Completed:   IsCompletedForDate(h, d, loc),
				Interactive: IsInteractive(h, d, now, loc),
				IsToday:     sameDay(d, now, loc),
			})
		}
		week.Habits = append(week.Habits, row)
	}
	return week
}
