package datastore

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies every migration under migrationsDir to
// databaseURL, tolerating the already-up-to-date case.
func RunMigrations(databaseURL, migrationsDir string) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsDir), databaseURL)
	if err != nil {
		return fmt.Errorf("datastore: creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("datastore: running migrations: %w", err)
	}
	return nil
}
