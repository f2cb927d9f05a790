// Package dbtest provides migrated throwaway SQLite databases for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/habits-go/config"
	"github.com/user/habits-go/db"
)

// New returns a freshly migrated database in t's temp dir, closed on cleanup.
func New(t testing.TB) *db.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "habits.db"),
	}
	if err := db.RunMigrations(cfg, db.MigrateUp); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	database, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// CreateUser inserts a user directly and returns its id. The password hash
// is a placeholder, so the user cannot log in.
func CreateUser(t testing.TB, database *db.DB, username string) int64 {
	t.Helper()
	query := database.Rebind(`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	var id int64
	err := database.QueryRowx(query, username, fmt.Sprintf("%s@example.com", username), "-", time.Now().UnixMilli()).Scan(&id)
	if err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return id
}
