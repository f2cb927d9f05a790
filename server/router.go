// Package server assembles the HTTP surface: services, handlers, middleware
// and routes. main.go only loads configuration and runs what NewRouter returns,
// which lets tests serve the exact same router through httptest.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/auth"
	"github.com/user/habits-go/config"
	"github.com/user/habits-go/dashboard"
	"github.com/user/habits-go/db"
	_ "github.com/user/habits-go/docs" // registers the Swagger document
	"github.com/user/habits-go/habits"
	"github.com/user/habits-go/logger"
	"github.com/user/habits-go/response"
	"github.com/user/habits-go/users"
)

// NewRouter wires every service to database and returns the root handler.
func NewRouter(database *db.DB, cfg *config.AppConfig) http.Handler {
	tokens := auth.NewTokenManager(cfg.Auth)
	authHandlers := auth.NewHandlers(auth.NewAuthService(database.DB, tokens))
	userHandlers := users.NewUserHandlers(users.NewUserService(database.DB))

	habitService := habits.NewService(habits.NewRepository(database.DB), cfg.Server.Location)
	habitHandlers := habits.NewHabitHandlers(habitService)
	dashboardHandlers := dashboard.NewHandlers(habitService)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", healthz(database))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/refresh", authHandlers.HandleRefreshToken())
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(tokens))
		r.Get("/me", userHandlers.HandleGetUserProfile())
		r.Put("/me", userHandlers.HandleUpdateUserProfile())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(tokens))
		r.Route("/habits", habitHandlers.RegisterRoutes)
		r.Get("/dashboard/week", dashboardHandlers.HandleWeek())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteError(w, r, apperror.NewNotFoundError("route not found", nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusMethodNotAllowed, apperror.ErrorResponse{Success: false, Error: "method not allowed"})
	})

	return r
}

// recoverer turns a panic in a handler into a generic 500 JSON error.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.Error("panic", "recovered", rvr, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
				apperror.WriteError(w, r, apperror.NewInternalError("internal server error", nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// healthz godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} apperror.ErrorResponse
// @Router /healthz [get]
func healthz(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := database.Healthy(ctx); err != nil {
			logger.Warn("health check failed", "err", err)
			response.JSON(w, http.StatusServiceUnavailable, apperror.ErrorResponse{Success: false, Error: "database unavailable"})
			return
		}
		response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
