// Package habits, as part of the habit tracking module.
// This file, `repository.go`, is the SQL layer for the habits table. It knows
// nothing about users or permissions beyond filtering by owner id; the Service
// decides who may do what.
package habits

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// habitRow mirrors the habits table. Timestamps are unix milliseconds and the
// frequency set is a comma separated list of day names.
type habitRow struct {
	ID            string        `db:"id"`
	UserID        int64         `db:"user_id"`
	Name          string        `db:"name"`
	Description   string        `db:"description"`
	Frequency     string        `db:"frequency"`
	TimeOfDay     string        `db:"time_of_day"`
	Streak        int           `db:"streak"`
	LastCompleted sql.NullInt64 `db:"last_completed"`
	Version       int64         `db:"version"`
	CreatedAt     int64         `db:"created_at"`
}

const habitColumns = `id, user_id, name, description, frequency, time_of_day, streak, last_completed, version, created_at`

func (r habitRow) toHabit() Habit {
	h := Habit{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Frequency:   decodeFrequency(r.Frequency),
		TimeOfDay:   TimeOfDay(r.TimeOfDay),
		Streak:      r.Streak,
		Owner:       r.UserID,
		CreatedAt:   fromMillis(r.CreatedAt),
		Version:     r.Version,
	}
	if r.LastCompleted.Valid {
		t := fromMillis(r.LastCompleted.Int64)
		h.LastCompleted = &t
	}
	return h
}

func encodeFrequency(days []Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

func decodeFrequency(s string) []Weekday {
	if s == "" {
		return []Weekday{}
	}
	parts := strings.Split(s, ",")
	days := make([]Weekday, len(parts))
	for i, p := range parts {
		days[i] = Weekday(p)
	}
	return days
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

// Repository is the habit record store. All queries are written with `?`
// placeholders and rebound for the connected driver.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a Repository over an open database.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListByOwner returns every habit owned by ownerID, oldest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Habit, error) {
	query := r.db.Rebind(`SELECT ` + habitColumns + ` FROM habits WHERE user_id = ? ORDER BY created_at, id`)
	var rows []habitRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("list habits for user %d: %w", ownerID, err)
	}
	habits := make([]Habit, len(rows))
	for i, row := range rows {
		habits[i] = row.toHabit()
	}
	return habits, nil
}

// GetByID loads a habit regardless of owner. A missing row surfaces as
// sql.ErrNoRows in the error chain.
func (r *Repository) GetByID(ctx context.Context, id string) (*Habit, error) {
	query := r.db.Rebind(`SELECT ` + habitColumns + ` FROM habits WHERE id = ?`)
	var row habitRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("get habit %s: %w", id, err)
	}
	h := row.toHabit()
	return &h, nil
}

// GetOwned loads a habit only if it belongs to ownerID.
func (r *Repository) GetOwned(ctx context.Context, ownerID int64, id string) (*Habit, error) {
	query := r.db.Rebind(`SELECT ` + habitColumns + ` FROM habits WHERE id = ? AND user_id = ?`)
	var row habitRow
	if err := r.db.GetContext(ctx, &row, query, id, ownerID); err != nil {
		return nil, fmt.Errorf("get habit %s for user %d: %w", id, ownerID, err)
	}
	h := row.toHabit()
	return &h, nil
}

// Insert stores a new habit. The caller assigns ID, CreatedAt and Version.
func (r *Repository) Insert(ctx context.Context, h *Habit) error {
	query := r.db.Rebind(`INSERT INTO habits (` + habitColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.Owner, h.Name, h.Description, encodeFrequency(h.Frequency), string(h.TimeOfDay),
		h.Streak, nullMillis(h.LastCompleted), h.Version, toMillis(h.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert habit %q: %w", h.Name, err)
	}
	return nil
}

// UpdateDetails writes the editable fields of h and bumps its version. It
// reports false when the row no longer exists.
func (r *Repository) UpdateDetails(ctx context.Context, h *Habit) (bool, error) {
	// Streak and last_completed are not written here; only Toggle changes them.
	query := r.db.Rebind(`UPDATE habits
		SET name = ?, description = ?, frequency = ?, time_of_day = ?, version = version + 1
		WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		h.Name, h.Description, encodeFrequency(h.Frequency), string(h.TimeOfDay), h.ID, h.Owner,
	)
	if err != nil {
		return false, fmt.Errorf("update habit %s: %w", h.ID, err)
	}
	return affectedOne(res)
}

// SwapCompletion stores the streak and lastCompleted of h only if the row is
// still at expectedVersion. It reports false when another writer got there
// first (or the habit is gone).
func (r *Repository) SwapCompletion(ctx context.Context, h *Habit, expectedVersion int64) (bool, error) {
	// The version predicate makes this a compare-and-swap: zero rows
	// affected means the row moved on since it was read.
	query := r.db.Rebind(`UPDATE habits
		SET streak = ?, last_completed = ?, version = version + 1
		WHERE id = ? AND user_id = ? AND version = ?`)
	res, err := r.db.ExecContext(ctx, query,
		h.Streak, nullMillis(h.LastCompleted), h.ID, h.Owner, expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("swap completion for habit %s: %w", h.ID, err)
	}
	return affectedOne(res)
}

// Delete removes the habit permanently and reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, ownerID int64, id string) (bool, error) {
	query := r.db.Rebind(`DELETE FROM habits WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete habit %s: %w", id, err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
