package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"github.com/mkuznetsov/user-service/internal/config"
)

// RunMigrations applies every pending migration from dir. The server
// must not accept traffic before this succeeds, handlers assume a
// migrated schema.
func RunMigrations(cfg config.PostgresConfig, dir string) error {
	sourceURL := "file://" + dir
	// The migrate pgx driver registers itself under the pgx5 scheme.
	databaseURL := "pgx5://" + strings.TrimPrefix(cfg.URL(), "postgres://")

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info().Str("dir", dir).Msg("Migrations applied")
	return nil
}
