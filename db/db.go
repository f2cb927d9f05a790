// Package db provides database connectivity and migration functionality for the habits service.
// It hands the rest of the application a single *sqlx.DB regardless of backend:
//
//   - postgres: a pgxpool.Pool, bridged to database/sql through pgx's stdlib package
//   - sqlite:   a modernc.org/sqlite file database with a single writer connection
//
// Queries are written with `?` placeholders and passed through Rebind, so the same SQL
// runs on both backends.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/config"
	"github.com/user/habits-go/logger"
)

func init() {
	// sqlx only knows "sqlite3" by name; modernc registers as "sqlite".
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB is the application's database handle.
type DB struct {
	*sqlx.DB
	pool *pgxpool.Pool // nil for sqlite
}

// Close releases the sql.DB and, for postgres, the underlying pgx pool.
func (d *DB) Close() error {
	err := d.DB.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

// Open connects to the database described by cfg and verifies the connection.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := createPgxPool(cfg)
		if err != nil {
			return nil, err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		logger.Info("database opened", "driver", cfg.Driver, "host", cfg.Host, "db", cfg.DBName)
		return &DB{DB: sqlx.NewDb(sqlDB, "pgx"), pool: pool}, nil
	case config.DriverSQLite:
		sqlDB, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return &DB{DB: sqlx.NewDb(sqlDB, "sqlite")}, nil
	default:
		return nil, apperror.NewConfigError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), nil)
	}
}

// createPgxPool establishes a pgxpool connection pool and pings it.
func createPgxPool(cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(postgresDSN(cfg))
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}
	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	// Bound pool creation so an unreachable database fails fast.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s with pgxpool", cfg.DBName), err)
	}
	return pool, nil
}

// postgresDSN builds a URL-style DSN understood by both pgx and golang-migrate.
// Credentials are percent-encoded, so passwords may contain '@', ':' or '/'.
func postgresDSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// OpenSQLite opens (creating if needed) the SQLite database at path with foreign
// keys enforced. Writers are serialized through one connection.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperror.NewDatabaseError(fmt.Sprintf("create db dir %q", dir), err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperror.NewDatabaseError("open sqlite database", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, apperror.NewDatabaseError(fmt.Sprintf("apply sqlite pragma %q", pragma), err)
		}
	}
	return sqlDB, nil
}

// Healthy checks that the database is reachable; used by the health endpoint.
func (d *DB) Healthy(ctx context.Context) error {
	if err := d.DB.PingContext(ctx); err != nil {
		return apperror.NewDatabaseError("database unreachable", err)
	}
	return nil
}
