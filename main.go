// This is the main entry point of the habits service.
// It loads configuration, sets up logging and the database, and then either
// serves the HTTP API or runs schema migrations, depending on the command.
//
// @title Habits API
// @version 1.0
// @description Personal habit tracking: weekly schedules, daily completion and streaks.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/user/habits-go/config"
	"github.com/user/habits-go/db"
	"github.com/user/habits-go/logger"
	"github.com/user/habits-go/server"
)

func main() {
	app := &cli.App{
		Name:   "habits",
		Usage:  "habit tracking API server",
		Before: setup,
		Action: serve, // `habits` with no command serves
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or revert the database schema",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "apply all pending migrations",
						Action: func(c *cli.Context) error { return migrate(c, db.MigrateUp) },
					},
					{
						Name:   "down",
						Usage:  "revert all migrations (drops every table)",
						Action: func(c *cli.Context) error { return migrate(c, db.MigrateDown) },
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal("habits exited with error", "err", err)
	}
}

// cfg is loaded once in setup and shared by every command.
var cfg *config.AppConfig

// setup loads .env and configuration and initializes logging.
func setup(_ *cli.Context) error {
	// .env is optional; in production the variables are set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not load .env file", "err", err)
	}

	loaded, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	if err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func migrate(_ *cli.Context, direction string) error {
	return db.RunMigrations(cfg.Database, direction)
}

// serve migrates the schema, opens the database and runs the HTTP server
// until SIGINT or SIGTERM, then shuts down gracefully.
func serve(c *cli.Context) error {
	if err := db.RunMigrations(cfg.Database, db.MigrateUp); err != nil {
		return err
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.NewRouter(database, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      75 * time.Second, // above the 60s request timeout middleware
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr, "db_driver", cfg.Database.Driver, "timezone", cfg.Server.Location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
