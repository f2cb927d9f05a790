package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ValidationError, http.StatusBadRequest},
		{BadRequestError, http.StatusBadRequest},
		{AuthError, http.StatusUnauthorized},
		{ForbiddenError, http.StatusUnauthorized},
		{NotFoundError, http.StatusNotFound},
		{ConflictError, http.StatusConflict},
		{DatabaseError, http.StatusInternalServerError},
		{UnknownError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		got := NewAppError(tt.errType, "msg", nil).StatusCode()
		if got != tt.want {
			t.Errorf("type %d: status = %d, want %d", tt.errType, got, tt.want)
		}
	}
}

func TestHelpersSeeThroughWrapping(t *testing.T) {
	base := NewNotFoundError("habit not found", nil)
	wrapped := fmt.Errorf("load: %w", base)

	if !IsNotFound(wrapped) {
		t.Error("Expected IsNotFound to match a wrapped NotFound error")
	}
	if IsConflictError(wrapped) {
		t.Error("Expected IsConflictError to be false for a NotFound error")
	}

	ae, ok := FromError(wrapped)
	if !ok || ae != base {
		t.Errorf("FromError() = %v, %v; want the original AppError", ae, ok)
	}
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)

	WriteError(rr, req, errors.New("pq: connection refused to 10.0.0.5"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}

	var body ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Error("Expected success=false")
	}
	if body.Error != "an unexpected error occurred" {
		t.Errorf("error = %q, want generic message", body.Error)
	}
}

func TestWriteErrorUsesMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", nil)

	WriteError(rr, req, NewConflictError("habit name already exists", errors.New("23505")))

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "habit name already exists" {
		t.Errorf("error = %q", body.Error)
	}
}
