package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/habits-go/auth"
	"github.com/user/habits-go/db/dbtest"
	"github.com/user/habits-go/habits"
)

func TestHandleWeek(t *testing.T) {
	database := dbtest.New(t)
	svc := habits.NewService(habits.NewRepository(database.DB), time.UTC)
	user := dbtest.CreateUser(t, database, "ana")
	ctx := context.Background()

	today := habits.WeekdayOf(time.Now().UTC())
	h, err := svc.Create(ctx, user, habits.CreateHabitRequest{Name: "Run", Frequency: []habits.Weekday{today}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Toggle(ctx, user, h.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	handler := NewHandlers(svc).HandleWeek()
	get := func(target string, withUser bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", target, nil)
		if withUser {
			req = req.WithContext(auth.WithUserID(req.Context(), user))
		}
		w := httptest.NewRecorder()
		handler(w, req)
		return w
	}

	w := get("/api/v1/dashboard/week", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var env struct {
		Success bool `json:"success"`
		Data    Week `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Habits) != 1 {
		t.Fatalf("rows = %d, want 1", len(env.Data.Habits))
	}
	var found bool
	for _, cell := range env.Data.Habits[0].Days {
		if cell.IsToday {
			found = true
			if !cell.Scheduled || !cell.Completed || !cell.Interactive {
				t.Errorf("today = %+v, want scheduled, completed and interactive", cell)
			}
		}
	}
	if !found {
		t.Error("Expected a cell for today")
	}

	if w := get("/api/v1/dashboard/week?date=2024-01-17", true); w.Code != http.StatusOK {
		t.Errorf("explicit date: status %d", w.Code)
	}
	if w := get("/api/v1/dashboard/week?date=17/01/2024", true); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", w.Code)
	}
	if w := get("/api/v1/dashboard/week", false); w.Code != http.StatusUnauthorized {
		t.Errorf("no user: status %d, want 401", w.Code)
	}
}
