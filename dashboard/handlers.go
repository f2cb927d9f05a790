// Package dashboard, as part of the weekly view module.
// This file, `handlers.go`, serves the week grid over HTTP.
package dashboard

import (
	"net/http"
	"time"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/auth"
	"github.com/user/habits-go/habits"
	"github.com/user/habits-go/response"
)

// Handlers serves the dashboard view.
type Handlers struct {
	habits *habits.Service
}

// NewHandlers creates dashboard Handlers reading from the habit service.
func NewHandlers(service *habits.Service) *Handlers {
	return &Handlers{habits: service}
}

// HandleWeek godoc
// @Summary Weekly habit grid
// @Description Returns, for each habit, which days of the week are scheduled, completed and toggleable.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param date query string false "Any date in the wanted week (YYYY-MM-DD); defaults to today"
// @Success 200 {object} response.Envelope{data=Week}
// @Failure 400 {object} apperror.ErrorResponse "Malformed date"
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/v1/dashboard/week [get]
func (h *Handlers) HandleWeek() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		loc := h.habits.Location()
		now := h.habits.Now()
		anchor := now
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.ParseInLocation(DateLayout, raw, loc)
			if err != nil {
				apperror.WriteError(w, r, apperror.NewBadRequestError("date must be formatted as YYYY-MM-DD", err))
				return
			}
			anchor = parsed
		}

		list, err := h.habits.List(r.Context(), userID)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, BuildWeek(list, anchor, now, loc))
	}
}
