// Package habits, as part of the habit tracking module.
// This file, `service.go`, contains the business rules for habits: ownership
// checks, validation of incoming requests, and the completion toggle with its
// optimistic concurrency loop. Handlers call into the Service; the Service
// calls into the Repository.
package habits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/db"
	"github.com/user/habits-go/logger"
)

// maxToggleAttempts bounds how often Toggle re-reads a habit after losing a
// compare-and-swap to a concurrent writer.
const maxToggleAttempts = 3

// Service holds the business rules for habits. Every operation is scoped to
// the calling user: reads of someone else's habit look like a missing habit,
// writes to it are refused with a ForbiddenError.
type Service struct {
	repo *Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a Service. loc decides where "today" begins for the
// completion toggle; nil means the process's local zone.
func NewService(repo *Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Location returns the zone used for day boundaries.
func (s *Service) Location() *time.Location { return s.loc }

// clock returns the current instant at the precision the store keeps.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Now exposes the service clock so views computed alongside a request agree
// with the toggle on what "today" is.
func (s *Service) Now() time.Time { return s.clock() }

// List returns all habits of ownerID, oldest first.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Habit, error) {
	habits, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("failed to list habits", err)
	}
	return habits, nil
}

// Get returns one habit if it exists and belongs to ownerID.
func (s *Service) Get(ctx context.Context, ownerID int64, id string) (*Habit, error) {
	h, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, storeError("failed to get habit", err)
	}
	return h, nil
}

// Create validates req and stores a new habit with a zero streak.
func (s *Service) Create(ctx context.Context, ownerID int64, req CreateHabitRequest) (*Habit, error) {
	if err := normalizeCreate(&req); err != nil {
		return nil, err
	}

	h := &Habit{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
		TimeOfDay:   req.TimeOfDay,
		Streak:      0,
		Owner:       ownerID,
		CreatedAt:   s.clock(),
		Version:     1,
	}
	if err := s.repo.Insert(ctx, h); err != nil {
		// The (user_id, name) unique index enforces per-user name uniqueness.
		if db.IsUniqueViolation(err) {
			return nil, apperror.NewConflictError(fmt.Sprintf("a habit named %q already exists", h.Name), err)
		}
		return nil, storeError("failed to create habit", err)
	}

	logger.Debug("habit created", "habit_id", h.ID, "user_id", ownerID)
	return h, nil
}

// Update applies the non-nil fields of req to a habit owned by ownerID.
//
// The habit is loaded and its owner checked before the request body is
// looked at: a missing habit is NotFound and someone else's habit is
// Forbidden whatever the body contains.
func (s *Service) Update(ctx context.Context, ownerID int64, id string, req UpdateHabitRequest) (*Habit, error) {
	h, err := s.loadForWrite(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := normalizeUpdate(&req); err != nil {
		return nil, err
	}
	if req.Name != nil {
		h.Name = *req.Name
	}
	if req.Description != nil {
		h.Description = *req.Description
	}
	if req.Frequency != nil {
		h.Frequency = req.Frequency
	}
	if req.TimeOfDay != nil {
		h.TimeOfDay = *req.TimeOfDay
	}

	ok, err := s.repo.UpdateDetails(ctx, h)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperror.NewConflictError(fmt.Sprintf("a habit named %q already exists", h.Name), err)
		}
		return nil, storeError("failed to update habit", err)
	}
	if !ok {
		return nil, apperror.NewNotFoundError("habit not found", nil)
	}
	h.Version++
	return h, nil
}

// Delete permanently removes a habit owned by ownerID.
func (s *Service) Delete(ctx context.Context, ownerID int64, id string) error {
	if _, err := s.loadForWrite(ctx, ownerID, id); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return storeError("failed to delete habit", err)
	}
	if !ok {
		return apperror.NewNotFoundError("habit not found", nil)
	}
	logger.Debug("habit deleted", "habit_id", id, "user_id", ownerID)
	return nil
}

// Toggle marks today complete, or undoes today's completion if it was already
// marked, and returns the updated habit.
//
// The new streak is written with a conditional update on the row version, so
// two toggles racing on the same habit cannot both apply to the same starting
// state. The loser re-reads and tries again, up to maxToggleAttempts times.
func (s *Service) Toggle(ctx context.Context, ownerID int64, id string) (*Habit, error) {
	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		// Step 1: read the current state (and check ownership on every attempt).
		h, err := s.loadForWrite(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}

		// Step 2: compute the new state from what was read.
		next := h.Toggled(s.clock(), s.loc)

		// Step 3: write it only if nobody else wrote in between.
		ok, err := s.repo.SwapCompletion(ctx, &next, h.Version)
		if err != nil {
			return nil, storeError("failed to update habit completion", err)
		}
		if ok {
			next.Version = h.Version + 1
			logger.Debug("habit toggled",
				"habit_id", id, "user_id", ownerID,
				"completed", next.LastCompleted != nil, "streak", next.Streak,
			)
			return &next, nil
		}
		logger.Debug("habit toggle lost a race", "habit_id", id, "attempt", attempt)
	}
	return nil, apperror.NewConflictError("habit was modified concurrently, please retry", nil)
}

// loadForWrite fetches a habit and checks that ownerID may modify it.
func (s *Service) loadForWrite(ctx context.Context, ownerID int64, id string) (*Habit, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("failed to load habit", err)
	}
	if h.Owner != ownerID {
		return nil, apperror.NewForbiddenError("not authorized to modify this habit", nil)
	}
	return h, nil
}

// storeError maps repository failures onto application errors.
func storeError(message string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFoundError("habit not found", err)
	}
	return apperror.NewDatabaseError(message, err)
}
