// Package users, as part of the user profile management module.
// This file, `service.go`, contains the business logic for user profile operations.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/auth"
	"github.com/user/habits-go/db"
	"github.com/user/habits-go/validation"
)

// UserService provides methods for user profile management.
type UserService struct {
	db       *sqlx.DB
	validate *validation.Validator
}

// NewUserService creates a new UserService.
func NewUserService(database *sqlx.DB) *UserService {
	return &UserService{db: database, validate: validation.New()}
}

// GetUserProfile retrieves a user's profile by their ID.
func (s *UserService) GetUserProfile(ctx context.Context, userID int64) (*UserProfileResponse, error) {
	user, err := s.getUserModelByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileFromUser(user), nil
}

// UpdateUserProfile updates email and/or bio. Email is lowercased and must stay unique.
func (s *UserService) UpdateUserProfile(ctx context.Context, userID int64, req *UpdateUserProfileRequest) (*UserProfileResponse, error) {
	if req.Email == nil && req.Bio == nil {
		return nil, apperror.NewBadRequestError("no fields provided for update", nil)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, apperror.NewValidationError("email must not be empty", nil)
		}
		req.Email = &email
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	var setClauses []string
	var args []interface{}
	if req.Email != nil {
		setClauses = append(setClauses, "email = ?")
		args = append(args, *req.Email)
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if bio == "" {
			setClauses = append(setClauses, "bio = NULL")
		} else {
			setClauses = append(setClauses, "bio = ?")
			args = append(args, bio)
		}
	}
	args = append(args, userID)

	query := s.db.Rebind(fmt.Sprintf(`UPDATE users SET %s WHERE id = ?`, strings.Join(setClauses, ", ")))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperror.NewConflictError(fmt.Sprintf("email '%s' already exists", *req.Email), err)
		}
		return nil, apperror.NewDatabaseError("failed to update user profile", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
	}

	return s.GetUserProfile(ctx, userID)
}

func (s *UserService) getUserModelByID(ctx context.Context, userID int64) (*auth.User, error) {
	query := s.db.Rebind(`SELECT ` + auth.UserColumns + ` FROM users WHERE id = ?`)
	var row auth.UserRow
	if err := s.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return row.ToUser(), nil
}
