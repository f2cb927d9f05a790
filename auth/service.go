// Package auth, as part of the authentication module.
// This file, `service.go`, contains registration, login and token refresh.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/db"
	"github.com/user/habits-go/logger"
	"github.com/user/habits-go/validation"
)

// AuthService handles account creation and credential exchange.
type AuthService struct {
	db       *sqlx.DB
	tokens   *TokenManager
	validate *validation.Validator
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(database *sqlx.DB, tokens *TokenManager) *AuthService {
	return &AuthService{
		db:       database,
		tokens:   tokens,
		validate: validation.New(),
		now:      time.Now,
	}
}

// Register creates a user with a bcrypt-hashed password.
// Usernames and emails are unique; collisions are reported as ConflictError.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(&req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	createdAt := s.now().UTC().Truncate(time.Millisecond)
	query := s.db.Rebind(`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	var id int64
	if err := s.db.QueryRowxContext(ctx, query, req.Username, req.Email, string(hashedPassword), createdAt.UnixMilli()).Scan(&id); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperror.NewConflictError("username or email already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	logger.Info("user registered", "user_id", id, "username", req.Username)
	return &User{
		ID:        id,
		Username:  req.Username,
		Email:     req.Email,
		CreatedAt: createdAt,
	}, nil
}

// Login checks credentials (username or email plus password) and issues tokens.
// Unknown users and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := s.validate.Struct(&req); err != nil {
		return nil, err
	}

	user, err := s.getUserByLogin(ctx, strings.TrimSpace(req.Login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}

	resp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue tokens", err)
	}
	return resp, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair.
// The user must still exist.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenResponse, error) {
	claims, err := s.tokens.Validate(refreshTokenString, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("invalid refresh token", err)
	}

	var exists int
	query := s.db.Rebind(`SELECT 1 FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &exists, query, claims.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid refresh token", nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	resp, err := s.tokens.Issue(claims.UserID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue tokens", err)
	}
	return resp, nil
}

// getUserByLogin loads a user by username or (case-insensitive) email.
func (s *AuthService) getUserByLogin(ctx context.Context, login string) (*User, error) {
	query := s.db.Rebind(`SELECT ` + UserColumns + ` FROM users WHERE username = ? OR email = ?`)
	var row UserRow
	if err := s.db.GetContext(ctx, &row, query, login, strings.ToLower(login)); err != nil {
		return nil, fmt.Errorf("get user by login %q: %w", login, err)
	}
	return row.ToUser(), nil
}
