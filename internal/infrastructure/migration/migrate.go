// Package migration runs the SQL schema migrations.
package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Runner applies migrations from a directory against a database URL
type Runner struct {
	sourceDir   string
	databaseURL string
	logger      *zap.Logger
}

// NewRunner creates a migration runner
func NewRunner(sourceDir, databaseURL string, logger *zap.Logger) *Runner {
	return &Runner{sourceDir: sourceDir, databaseURL: databaseURL, logger: logger}
}

func (r *Runner) open() (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+r.sourceDir, r.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations
func (r *Runner) Up() error {
	m, err := r.open()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			r.logger.Info("migrations already up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	r.logger.Info("migrations applied")
	return nil
}

// Down rolls back a single migration
func (r *Runner) Down() error {
	m, err := r.open()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("rollback migration: %w", err)
	}
	r.logger.Info("rolled back one migration")
	return nil
}

// Version reports the current schema version
func (r *Runner) Version() (uint, bool, error) {
	m, err := r.open()
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
