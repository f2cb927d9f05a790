package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/auth"
	"github.com/user/habits-go/db/dbtest"
)

func strPtr(s string) *string { return &s }

func TestProfile(t *testing.T) {
	database := dbtest.New(t)
	svc := NewUserService(database.DB)
	ctx := context.Background()
	ana := dbtest.CreateUser(t, database, "ana")
	dbtest.CreateUser(t, database, "ben")

	profile, err := svc.GetUserProfile(ctx, ana)
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if profile.Username != "ana" || profile.Bio != nil {
		t.Errorf("profile = %+v", profile)
	}

	updated, err := svc.UpdateUserProfile(ctx, ana, &UpdateUserProfileRequest{
		Email: strPtr(" Ana.New@Example.com"),
		Bio:   strPtr("Runner"),
	})
	if err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}
	if updated.Email != "ana.new@example.com" || updated.Bio == nil || *updated.Bio != "Runner" {
		t.Errorf("updated = %+v", updated)
	}

	cleared, err := svc.UpdateUserProfile(ctx, ana, &UpdateUserProfileRequest{Bio: strPtr("")})
	if err != nil {
		t.Fatalf("clear bio: %v", err)
	}
	if cleared.Bio != nil {
		t.Errorf("bio = %q, want cleared", *cleared.Bio)
	}

	if _, err := svc.UpdateUserProfile(ctx, ana, &UpdateUserProfileRequest{Email: strPtr("ben@example.com")}); !apperror.IsConflictError(err) {
		t.Errorf("taken email: got %v", err)
	}
	if _, err := svc.UpdateUserProfile(ctx, ana, &UpdateUserProfileRequest{Email: strPtr("nope")}); !apperror.IsValidationError(err) {
		t.Errorf("invalid email: got %v", err)
	}
	if _, err := svc.UpdateUserProfile(ctx, ana, &UpdateUserProfileRequest{}); err == nil {
		t.Error("Expected empty update to fail")
	}
	if _, err := svc.GetUserProfile(ctx, 9999); !apperror.IsNotFound(err) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestProfileHandlers(t *testing.T) {
	database := dbtest.New(t)
	h := NewUserHandlers(NewUserService(database.DB))
	ana := dbtest.CreateUser(t, database, "ana")

	req := httptest.NewRequest("GET", "/users/me", nil)
	w := httptest.NewRecorder()
	h.HandleGetUserProfile()(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no user: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest("GET", "/users/me", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), ana))
	w = httptest.NewRecorder()
	h.HandleGetUserProfile()(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"username":"ana"`) {
		t.Errorf("get: %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("PUT", "/users/me", strings.NewReader(`{"bio":"Swimmer"}`))
	req = req.WithContext(auth.WithUserID(req.Context(), ana))
	w = httptest.NewRecorder()
	h.HandleUpdateUserProfile()(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"bio":"Swimmer"`) {
		t.Errorf("update: %d %s", w.Code, w.Body.String())
	}
}
