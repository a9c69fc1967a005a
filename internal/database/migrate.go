package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// MigrationState describes the schema version of the store
type MigrationState struct {
	Version uint
	Dirty   bool
}

// Migrate applies every pending embedded migration for the manager's dialect.
// It runs on a separate connection so closing the migrator leaves the
// manager's pool untouched.
func (m *Manager) Migrate() error {
	migrator, closeFn, err := m.newMigrator()
	if err != nil {
		return err
	}
	defer closeFn()

	currentVersion, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		m.logger.Warn("Database is in dirty state", zap.Uint("version", currentVersion))
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.Info("Migrations completed successfully",
		zap.String("driver", string(m.dialect)),
		zap.Uint("from_version", currentVersion),
		zap.Uint("to_version", newVersion),
	)
	return nil
}

// MigrationStatus reports the applied schema version
func (m *Manager) MigrationStatus() (*MigrationState, error) {
	migrator, closeFn, err := m.newMigrator()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return &MigrationState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}
	return &MigrationState{Version: version, Dirty: dirty}, nil
}

func (m *Manager) newMigrator() (*migrate.Migrate, func(), error) {
	dsn := m.config.URL
	dir := "migrations/postgres"
	if m.dialect == DialectSQLite {
		dsn = sqliteDSN(m.config.URL)
		dir = "migrations/sqlite"
	}

	migrationDB, err := sql.Open(string(m.dialect), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create migration connection: %w", err)
	}
	if err := migrationDB.Ping(); err != nil {
		migrationDB.Close()
		return nil, nil, fmt.Errorf("migration connection failed: %w", Classify(err))
	}

	var driver migratedb.Driver
	switch m.dialect {
	case DialectSQLite:
		driver, err = sqlite3.WithInstance(migrationDB, &sqlite3.Config{})
	default:
		driver, err = postgres.WithInstance(migrationDB, &postgres.Config{})
	}
	if err != nil {
		migrationDB.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, dir)
	if err != nil {
		migrationDB.Close()
		return nil, nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, string(m.dialect), driver)
	if err != nil {
		migrationDB.Close()
		return nil, nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	closeFn := func() {
		if srcErr, dbErr := migrator.Close(); srcErr != nil || dbErr != nil {
			m.logger.Warn("Failed to close migrator",
				zap.NamedError("source", srcErr),
				zap.NamedError("database", dbErr),
			)
		}
	}
	return migrator, closeFn, nil
}
