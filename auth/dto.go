// Package auth, as part of the authentication module.
// This file, `dto.go`, defines the request and response bodies of the /auth endpoints.
package auth

// RegisterRequest is the body of POST /auth/register.
// @Description Request body for user registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum" example:"newuser"`
	Email    string `json:"email" validate:"required,email,max=254" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=8,max=72" example:"strongpassword123"`
}

// LoginRequest is the body of POST /auth/login.
// @Description Request body for user login
type LoginRequest struct {
	Login    string `json:"login" validate:"required" example:"user@example.com"` // Can be username or email
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// TokenResponse is returned by login and refresh.
// @Description Access and refresh tokens
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	// Lifetime of the access token in seconds.
	ExpiresIn int64 `json:"expires_in" example:"900"`
}

// RefreshTokenRequest is the body of POST /auth/refresh.
// @Description Request body for refreshing an access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}
