// Package users, as part of the user profile management module.
// This file, `dto.go`, defines the request and response bodies of /users/me.
package users

import (
	"time"

	"github.com/user/habits-go/auth"
)

// UserProfileResponse represents the data returned for a user profile.
// @Description User profile information
type UserProfileResponse struct {
	// example: 1
	ID int64 `json:"id"`
	// example: "ana"
	Username string `json:"username"`
	// example: "ana@example.com"
	Email string `json:"email"`
	// example: "Runner, reader, early riser."
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func profileFromUser(u *auth.User) *UserProfileResponse {
	return &UserProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// UpdateUserProfileRequest represents the data for updating a user profile.
// Nil fields are left unchanged; an empty bio clears it.
// @Description Request body for updating user profile
type UpdateUserProfileRequest struct {
	// example: "ana.new@example.com"
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	// example: "Now also swimming."
	Bio *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}
