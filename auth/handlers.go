// Package auth, as part of the authentication module.
// This file, `handlers.go`, contains the HTTP handlers for /auth.
package auth

import (
	"net/http"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/response"
)

// Handlers holds the auth service for the HTTP layer.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates new auth Handlers.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary Register a new user
// @Description Creates a new user account.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration details"
// @Success 201 {object} response.Envelope{data=User} "User registered successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input"
// @Failure 409 {object} apperror.ErrorResponse "Conflict - Username or email already exists"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := response.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Data(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Exchanges username or email plus password for access and refresh tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "User login credentials"
// @Success 200 {object} response.Envelope{data=TokenResponse} "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid credentials"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := response.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, resp)
	}
}

// HandleRefreshToken godoc
// @Summary Refresh access token
// @Description Obtains a new token pair using a refresh token.
// @Tags auth
// @Accept json
// @Produce json
// @Param token body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Envelope{data=TokenResponse} "Token refreshed successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *Handlers) HandleRefreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := response.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		if req.RefreshToken == "" {
			apperror.WriteError(w, r, apperror.NewValidationError("refresh_token is required", nil))
			return
		}

		resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, resp)
	}
}
