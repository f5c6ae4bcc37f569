package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations for one driver.
type Migrator struct {
	db     DB
	driver string
}

// NewMigrator creates a migrator.
func NewMigrator(db DB, driver string) *Migrator {
	return &Migrator{db: db, driver: driver}
}

// MigrationStatus represents the status of migrations.
type MigrationStatus struct {
	UpToDate bool
	Applied  []string
	Pending  []string
	Total    int
}

// Status reports which migrations have been applied.
func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	if err := m.ensureSchemaMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	all, err := m.listMigrations()
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read applied versions: %w", err)
	}

	status := &MigrationStatus{Total: len(all), Pending: []string{}}
	for _, name := range all {
		if applied[name] {
			status.Applied = append(status.Applied, name)
		} else {
			status.Pending = append(status.Pending, name)
		}
	}
	status.UpToDate = len(status.Pending) == 0
	return status, nil
}

// Migrate runs all pending migrations and returns their names.
func (m *Migrator) Migrate(ctx context.Context) ([]string, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range status.Pending {
		if err := m.run(ctx, name); err != nil {
			return nil, fmt.Errorf("run migration %s: %w", name, err)
		}
	}
	return status.Pending, nil
}

// Migrate is a shorthand for NewMigrator(db, driver).Migrate(ctx).
func Migrate(ctx context.Context, db DB, driver string) ([]string, error) {
	return NewMigrator(db, driver).Migrate(ctx)
}

func (m *Migrator) ensureSchemaMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *Migrator) listMigrations() ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, path.Join("migrations", m.driver))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// run executes one migration file and records it in the same transaction.
func (m *Migrator) run(ctx context.Context, name string) error {
	data, err := migrationFiles.ReadFile(path.Join("migrations", m.driver, name))
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", name); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}
