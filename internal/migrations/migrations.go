// Package migrations embeds the portal schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

//go:embed sql/*.sql
var files embed.FS

// Status describes the schema version currently recorded in the database.
type Status struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// New creates a migrator over the embedded schema for the given postgres URL.
// Callers must Close the returned migrator.
func New(url string) (*migrate.Migrate, error) {
	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations and reports the resulting version.
// An already current schema is not an error.
func Up(url string) (Status, error) {
	m, err := New(url)
	if err != nil {
		return Status{}, err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Status{}, fmt.Errorf("apply migrations: %w", err)
	}

	v, dirty, err := m.Version()
	if err != nil {
		return Status{}, fmt.Errorf("read version: %w", err)
	}
	return Status{Version: v, Dirty: dirty}, nil
}

// Count returns the number of embedded up migrations.
func Count() int {
	entries, err := files.ReadDir("sql")
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			n++
		}
	}
	return n
}
