package habits

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/user/habits-go/auth"
)

// testRouter serves the habit routes with the caller taken from X-User-ID,
// standing in for the JWT middleware.
func testRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id, err := strconv.ParseInt(req.Header.Get("X-User-ID"), 10, 64); err == nil {
				req = req.WithContext(auth.WithUserID(req.Context(), id))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/v1/habits", NewHabitHandlers(f.svc).RegisterRoutes)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doRequest(t *testing.T, h http.Handler, user int64, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(user, 10))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestHabitEndpoints(t *testing.T) {
	f := newFixture(t)
	h := testRouter(f)

	w, env := doRequest(t, h, f.alice, "POST", "/api/v1/habits", map[string]interface{}{
		"name":      "Run",
		"frequency": []string{"monday", "wednesday"},
		"timeOfDay": "morning",
	})
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	var created Habit
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode habit: %v", err)
	}
	if created.Owner != f.alice || created.TimeOfDay != Morning {
		t.Errorf("created = %+v", created)
	}

	w, env = doRequest(t, h, f.alice, "GET", "/api/v1/habits", nil)
	if w.Code != http.StatusOK || env.Count == nil || *env.Count != 1 {
		t.Errorf("list: status %d body %s", w.Code, w.Body.String())
	}

	w, env = doRequest(t, h, f.alice, "PUT", "/api/v1/habits/"+created.ID+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: status %d body %s", w.Code, w.Body.String())
	}
	var toggled map[string]interface{}
	if err := json.Unmarshal(env.Data, &toggled); err != nil {
		t.Fatalf("decode toggled: %v", err)
	}
	if toggled["streak"] != float64(1) || toggled["lastCompleted"] == nil {
		t.Errorf("toggled = %v", toggled)
	}

	// Clients may send back the whole habit; read-only fields are ignored.
	w, env = doRequest(t, h, f.alice, "PUT", "/api/v1/habits/"+created.ID, map[string]interface{}{
		"name":   "Long run",
		"streak": 99,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", w.Code, w.Body.String())
	}
	var updated Habit
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Name != "Long run" || updated.Streak != 1 {
		t.Errorf("updated = %+v", updated)
	}

	w, env = doRequest(t, h, f.alice, "DELETE", "/api/v1/habits/"+created.ID, nil)
	if w.Code != http.StatusOK || !env.Success || string(env.Data) != "{}" {
		t.Errorf("delete: status %d body %s", w.Code, w.Body.String())
	}

	w, env = doRequest(t, h, f.alice, "GET", "/api/v1/habits/"+created.ID, nil)
	if w.Code != http.StatusNotFound || env.Success || env.Error == "" {
		t.Errorf("get after delete: status %d body %s", w.Code, w.Body.String())
	}
}

func TestHabitEndpointErrors(t *testing.T) {
	f := newFixture(t)
	h := testRouter(f)
	owned := f.create(t, f.alice, "Read", Monday)

	tests := []struct {
		name   string
		user   int64
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"no user", 0, "GET", "/api/v1/habits", nil, http.StatusUnauthorized},
		{"malformed json", f.alice, "POST", "/api/v1/habits", "{", http.StatusBadRequest},
		{"empty frequency", f.alice, "POST", "/api/v1/habits", map[string]interface{}{"name": "Run", "frequency": []string{}}, http.StatusBadRequest},
		{"duplicate name", f.alice, "POST", "/api/v1/habits", map[string]interface{}{"name": "Read", "frequency": []string{"friday"}}, http.StatusConflict},
		{"missing habit", f.alice, "GET", "/api/v1/habits/nope", nil, http.StatusNotFound},
		{"get by non-owner", f.bob, "GET", "/api/v1/habits/" + owned.ID, nil, http.StatusNotFound},
		{"toggle by non-owner", f.bob, "PUT", "/api/v1/habits/" + owned.ID + "/complete", nil, http.StatusUnauthorized},
		{"delete by non-owner", f.bob, "DELETE", "/api/v1/habits/" + owned.ID, nil, http.StatusUnauthorized},
		{"update by non-owner", f.bob, "PUT", "/api/v1/habits/" + owned.ID, map[string]interface{}{"name": "Mine"}, http.StatusUnauthorized},
		{"invalid update by non-owner", f.bob, "PUT", "/api/v1/habits/" + owned.ID, map[string]interface{}{"frequency": []string{}}, http.StatusUnauthorized},
		{"empty update of missing habit", f.alice, "PUT", "/api/v1/habits/nope", map[string]interface{}{}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doRequest(t, h, tt.user, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if env.Success || env.Error == "" {
				t.Errorf("Expected error envelope, got %s", w.Body.String())
			}
		})
	}
}
