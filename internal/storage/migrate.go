package storage

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/gamevault/server/internal/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5 driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// applies pending schema migrations
func MigrateUp(databaseURL string) error {
	return Migrate(databaseURL, "up", 0)
}

// moves the schema up or down; steps 0 applies every pending up migration
func Migrate(databaseURL, direction string, steps int) error {
	validUp := direction == "up" && steps >= 0
	validDown := direction == "down" && steps > 0

	if !validUp && !validDown {
		return fmt.Errorf("unsupported migration: %s %d", direction, steps)
	}

	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	switch {
	case validUp && steps == 0:
		err = m.Up()
	case validUp:
		err = m.Steps(steps)
	default:
		err = m.Steps(-steps)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate %s: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("database migrations applied", "direction", direction, "version", version, "dirty", dirty)

	return nil
}

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// the migrate pgx driver registers under its own scheme
func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(databaseURL, scheme); ok {
			return "pgx5://" + rest
		}
	}

	return databaseURL
}
