package postgres

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/quadrantlab/quadrant/internal/config"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/pkg/errors"
)

// RunMigrations applies all pending SQL migrations from migrationsDir.
// Migrations run over a short-lived database/sql connection separate from the
// pgx pool; golang-migrate drives the lib/pq driver directly.
func RunMigrations(cfg config.DatabaseConfig, migrationsDir string, log logging.Logger) error {
	db, err := sql.Open("postgres", BuildDSN(cfg))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open migration connection")
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsDir,
		"postgres",
		driver,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create migrate instance")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		version, _, _ := m.Version()
		return errors.Wrap(err, errors.ErrCodeInternal,
			fmt.Sprintf("failed to run migrations (current version: %d)", version))
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Warn("failed to get migration version", logging.Err(err))
	}

	log.Info("database migrations completed",
		logging.Uint64("version", uint64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}
