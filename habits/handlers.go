// Package habits, as part of the habit tracking module.
// This file, `handlers.go`, contains the HTTP handlers for /api/v1/habits.
package habits

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/auth"
	"github.com/user/habits-go/response"
)

// HabitHandlers serves the /api/v1/habits endpoints. It only translates between
// HTTP and the Service; all rules live in the Service.
type HabitHandlers struct {
	service *Service
}

// NewHabitHandlers creates new HabitHandlers.
func NewHabitHandlers(service *Service) *HabitHandlers {
	return &HabitHandlers{service: service}
}

// RegisterRoutes mounts the habit routes on router. The caller is expected to
// have applied auth.JWTMiddleware already.
func (h *HabitHandlers) RegisterRoutes(router chi.Router) {
	router.Get("/", h.HandleList())
	router.Post("/", h.HandleCreate())
	router.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGet())
		r.Put("/", h.HandleUpdate())
		r.Delete("/", h.HandleDelete())
		r.Put("/complete", h.HandleToggle())
	})
}

// currentUser pulls the caller's id out of the request context.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		apperror.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
		return 0, false
	}
	return userID, true
}

// HandleList godoc
// @Summary List habits
// @Description Returns every habit owned by the authenticated user, oldest first.
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]Habit}
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/v1/habits [get]
func (h *HabitHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		habits, err := h.service.List(r.Context(), userID)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.List(w, habits, len(habits))
	}
}

// HandleGet godoc
// @Summary Get a habit
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} response.Envelope{data=Habit}
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Habit does not exist or belongs to someone else"
// @Router /api/v1/habits/{id} [get]
func (h *HabitHandlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		habit, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, habit)
	}
}

// HandleCreate godoc
// @Summary Create a habit
// @Description Creates a habit with a zero streak for the authenticated user.
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param habit body CreateHabitRequest true "New habit"
// @Success 201 {object} response.Envelope{data=Habit}
// @Failure 400 {object} apperror.ErrorResponse "Invalid input, e.g. empty frequency"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "A habit with this name already exists"
// @Router /api/v1/habits [post]
func (h *HabitHandlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req CreateHabitRequest
		if err := response.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		habit, err := h.service.Create(r.Context(), userID, req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Data(w, http.StatusCreated, habit)
	}
}

// HandleUpdate godoc
// @Summary Update a habit
// @Description Changes name, description, frequency or timeOfDay. Streak and completion are not editable.
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param habit body UpdateHabitRequest true "Fields to change"
// @Success 200 {object} response.Envelope{data=Habit}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated, or not the owner"
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /api/v1/habits/{id} [put]
func (h *HabitHandlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req UpdateHabitRequest
		if err := response.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		habit, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, habit)
	}
}

// HandleDelete godoc
// @Summary Delete a habit
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated, or not the owner"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/habits/{id} [delete]
func (h *HabitHandlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Empty(w)
	}
}

// HandleToggle godoc
// @Summary Toggle today's completion
// @Description Marks the habit complete for today, or undoes today's completion if already marked.
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} response.Envelope{data=Habit}
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated, or not the owner"
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Concurrent modification, retry"
// @Router /api/v1/habits/{id}/complete [put]
func (h *HabitHandlers) HandleToggle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		habit, err := h.service.Toggle(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, habit)
	}
}
