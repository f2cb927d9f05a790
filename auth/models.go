// Package auth, as previously noted, handles authentication.
// This file, `models.go`, defines the User model and its database row.
package auth

import (
	"database/sql"
	"time"
)

// User represents an account as exposed by the API.
// The password hash is loaded for credential checks but never serialized.
type User struct {
	ID             int64     `json:"id" example:"1"`
	Username       string    `json:"username" example:"ana"`
	Email          string    `json:"email" example:"ana@example.com"`
	HashedPassword string    `json:"-"` // Do not expose hashed password
	Bio            *string   `json:"bio,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserRow mirrors the users table. Timestamps are unix milliseconds.
// It is exported so the users package can scan the same rows.
type UserRow struct {
	ID           int64          `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Bio          sql.NullString `db:"bio"`
	CreatedAt    int64          `db:"created_at"`
}

// UserColumns is the column list matching UserRow.
const UserColumns = `id, username, email, password_hash, bio, created_at`

// ToUser converts a row into the API model.
func (r UserRow) ToUser() *User {
	u := &User{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email,
		HashedPassword: r.PasswordHash,
		CreatedAt:      time.UnixMilli(r.CreatedAt).UTC(),
	}
	if r.Bio.Valid {
		bio := r.Bio.String
		u.Bio = &bio
	}
	return u
}
