package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/config"
	"github.com/user/habits-go/logger"
)

// Migration files follow golang-migrate naming ({version}_{title}.{up|down}.sql),
// one directory per dialect.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// Migration directions accepted by RunMigrations.
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// RunMigrations applies (or, for MigrateDown, reverts) the embedded schema
// migrations. It opens its own short-lived connection and closes it when done.
func RunMigrations(cfg *config.DatabaseConfig, direction string) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("closing migrator", "source_err", srcErr, "db_err", dbErr)
		}
	}()

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return apperror.NewMigrationError(fmt.Sprintf("unknown migration direction %q", direction), nil)
	}
	// `migrate.ErrNoChange` only means the schema is already current.
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError(fmt.Sprintf("failed to run migrations %s", direction), err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return apperror.NewMigrationError("failed to read schema version", verr)
	}
	logger.Info("migrations applied", "driver", cfg.Driver, "direction", direction, "version", version, "dirty", dirty)
	return nil
}

func newMigrator(cfg *config.DatabaseConfig) (*migrate.Migrate, error) {
	var (
		sqlDB  *sql.DB
		driver database.Driver
		err    error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		sqlDB, err = sql.Open("pgx", postgresDSN(cfg))
		if err != nil {
			return nil, apperror.NewMigrationError("open postgres for migrations", err)
		}
		driver, err = pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	case config.DriverSQLite:
		sqlDB, err = OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		driver, err = sqlitemigrate.WithInstance(sqlDB, &sqlitemigrate.Config{})
	default:
		return nil, apperror.NewConfigError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), nil)
	}
	if err != nil {
		sqlDB.Close()
		return nil, apperror.NewMigrationError("create migration driver", err)
	}

	src, err := iofs.New(migrationFiles, "migrations/"+cfg.Driver)
	if err != nil {
		sqlDB.Close()
		return nil, apperror.NewMigrationError("open embedded migrations", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, driver)
	if err != nil {
		sqlDB.Close()
		return nil, apperror.NewMigrationError("create migrator", err)
	}
	return m, nil
}
