package habits

import (
	"math/rand"
	"testing"
	"time"
)

// 2024-01-15 is a Monday.
var monday = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestToggleCompletesThenUndoes(t *testing.T) {
	h := Habit{Name: "Run", Frequency: []Weekday{Monday, Wednesday}}

	done := h.Toggled(monday, time.UTC)
	if done.Streak != 1 {
		t.Errorf("streak after completion = %d, want 1", done.Streak)
	}
	if done.LastCompleted == nil || !done.LastCompleted.Equal(monday) {
		t.Errorf("lastCompleted = %v, want %v", done.LastCompleted, monday)
	}

	undone := done.Toggled(monday.Add(time.Hour), time.UTC)
	if undone.Streak != 0 {
		t.Errorf("streak after undo = %d, want 0", undone.Streak)
	}
	if undone.LastCompleted != nil {
		t.Errorf("lastCompleted after undo = %v, want nil", undone.LastCompleted)
	}

	again := undone.Toggled(monday.Add(2*time.Hour), time.UTC)
	if again.Streak != 1 || again.LastCompleted == nil {
		t.Errorf("third toggle = (streak %d, last %v), want (1, set)", again.Streak, again.LastCompleted)
	}
}

func TestToggleDoesNotModifyReceiver(t *testing.T) {
	h := Habit{Streak: 4, Frequency: []Weekday{Monday}}
	next := h.Toggled(monday, time.UTC)
	next.Frequency[0] = Friday

	if h.Streak != 4 || h.LastCompleted != nil {
		t.Errorf("receiver changed: streak %d, last %v", h.Streak, h.LastCompleted)
	}
	if h.Frequency[0] != Monday {
		t.Errorf("receiver frequency aliased: %v", h.Frequency)
	}
}

func TestToggleAfterYesterdayExtendsStreak(t *testing.T) {
	yesterday := monday.AddDate(0, 0, -1)
	h := Habit{Streak: 3, LastCompleted: &yesterday}

	next := h.Toggled(monday, time.UTC)
	if next.Streak != 4 {
		t.Errorf("streak = %d, want 4", next.Streak)
	}
	if !next.LastCompleted.Equal(monday) {
		t.Errorf("lastCompleted = %v, want %v", next.LastCompleted, monday)
	}
}

func TestUndoNeverGoesNegative(t *testing.T) {
	today := monday.Add(-time.Hour)
	h := Habit{Streak: 0, LastCompleted: &today}

	next := h.Toggled(monday, time.UTC)
	if next.Streak != 0 {
		t.Errorf("streak = %d, want 0", next.Streak)
	}
	if next.LastCompleted != nil {
		t.Error("Expected undo to clear lastCompleted")
	}
}

func TestTodayUsesConfiguredZone(t *testing.T) {
	plusTen := time.FixedZone("UTC+10", 10*60*60)
	// 23:00 on the 15th locally.
	last := time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)
	// 01:00 on the 16th locally, still the 15th in UTC.
	now := time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)
	h := Habit{Streak: 1, LastCompleted: &last}

	if h.CompletedToday(now, plusTen) {
		t.Error("Expected a new local day in UTC+10")
	}
	if !h.CompletedToday(now, time.UTC) {
		t.Error("Expected the same day in UTC")
	}
	if got := h.Toggled(now, plusTen).Streak; got != 2 {
		t.Errorf("streak in UTC+10 = %d, want 2", got)
	}
	if got := h.Toggled(now, time.UTC).Streak; got != 0 {
		t.Errorf("streak in UTC = %d, want 0", got)
	}
}

func TestStreakStaysNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := Habit{}
	now := monday
	for i := 0; i < 1000; i++ {
		// Advance by 0..36 hours so toggles land on the same or later days.
		now = now.Add(time.Duration(rng.Intn(37)) * time.Hour)
		h = h.Toggled(now, time.UTC)
		if h.Streak < 0 {
			t.Fatalf("step %d: streak = %d", i, h.Streak)
		}
		if h.LastCompleted == nil && h.Toggled(now, time.UTC).LastCompleted == nil {
			t.Fatalf("step %d: toggle from an undone state must complete", i)
		}
	}
}

func TestDoubleToggleRestoresStreak(t *testing.T) {
	for _, start := range []int{0, 1, 7} {
		h := Habit{Streak: start}
		once := h.Toggled(monday, time.UTC)
		after := once.Toggled(monday, time.UTC)
		if after.Streak != start {
			t.Errorf("start %d: streak after double toggle = %d", start, after.Streak)
		}
		if after.LastCompleted != nil {
			t.Errorf("start %d: lastCompleted = %v, want nil", start, after.LastCompleted)
		}
	}
}

func TestCompletedDates(t *testing.T) {
	h := Habit{}
	if got := h.CompletedDates(); len(got) != 0 {
		t.Errorf("CompletedDates() = %v, want empty", got)
	}
	h = h.Toggled(monday, time.UTC)
	got := h.CompletedDates()
	if len(got) != 1 || !got[0].Equal(monday) {
		t.Errorf("CompletedDates() = %v, want [%v]", got, monday)
	}
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(monday, time.UTC)
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}
