// Package habits is responsible for everything related to a user's habits:
// creating, listing, editing and deleting them, and the daily completion toggle
// that drives the streak counter.
//
// This file, `models.go`, defines the domain model and the request DTOs.
package habits

import (
	"strings"
	"time"
)

// Weekday is a lowercase English day name as it appears in a habit's frequency.
type Weekday string

// The seven valid frequency tags, in canonical (Sunday-first) order.
const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// AllWeekdays lists the valid tags indexed by time.Weekday.
var AllWeekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekdayOf returns the frequency tag for t's day of week.
func WeekdayOf(t time.Time) Weekday {
	return AllWeekdays[t.Weekday()]
}

// TimeOfDay is the preferred slot for a habit. It is informational only.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Anytime   TimeOfDay = "anytime"
)

// Field limits, counted in characters.
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 500
)

// Habit is a recurring activity with a weekly schedule and a completion streak.
// @Description A habit owned by the authenticated user
type Habit struct {
	// example: "6f1c2a4e-9f0b-4c1d-8e7a-2b3c4d5e6f70"
	ID string `json:"id"`
	// example: "Run"
	Name string `json:"name"`
	// example: "5k around the park"
	Description string `json:"description"`
	// example: ["monday","wednesday"]
	Frequency []Weekday `json:"frequency"`
	// example: "morning"
	TimeOfDay TimeOfDay `json:"timeOfDay"`
	// example: 3
	Streak int `json:"streak"`
	// Set by the most recent completion; cleared by an undo.
	LastCompleted *time.Time `json:"lastCompleted,omitempty"`
	// Owning user id. Never changes after creation.
	Owner     int64     `json:"user"`
	CreatedAt time.Time `json:"createdAt"`

	// Version is bumped on every write and guards concurrent toggles.
	Version int64 `json:"-"`
}

// HasDay reports whether d is part of the habit's schedule.
func (h *Habit) HasDay(d Weekday) bool {
	for _, f := range h.Frequency {
		if f == d {
			return true
		}
	}
	return false
}

// CreateHabitRequest is the body of POST /api/v1/habits.
// @Description Request body for creating a habit
type CreateHabitRequest struct {
	Name        string    `json:"name" validate:"required,max=50" example:"Run"`
	Description string    `json:"description" validate:"max=500" example:"5k around the park"`
	Frequency   []Weekday `json:"frequency" validate:"required,min=1,dive,weekday" example:"monday,wednesday"`
	TimeOfDay   TimeOfDay `json:"timeOfDay" validate:"omitempty,timeofday" example:"morning"`
}

// UpdateHabitRequest is the body of PUT /api/v1/habits/{id}.
// Nil fields are left unchanged. Streak, lastCompleted and the owner cannot be
// set through this request.
// @Description Partial update of a habit's editable fields
type UpdateHabitRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,max=50" example:"Evening run"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	Frequency   []Weekday  `json:"frequency,omitempty" validate:"omitempty,min=1,dive,weekday"`
	TimeOfDay   *TimeOfDay `json:"timeOfDay,omitempty" validate:"omitempty,timeofday" example:"evening"`
}

// isEmpty reports whether the request changes nothing.
func (r *UpdateHabitRequest) isEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Frequency == nil && r.TimeOfDay == nil
}

// canonicalFrequency returns days deduplicated, lowercased and in Sunday-first order.
func canonicalFrequency(days []Weekday) []Weekday {
	seen := make(map[Weekday]bool, len(days))
	for _, d := range days {
		seen[Weekday(strings.ToLower(strings.TrimSpace(string(d))))] = true
	}
	out := make([]Weekday, 0, len(seen))
	for _, d := range AllWeekdays {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}
