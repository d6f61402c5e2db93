package mysql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator handles database schema migrations with version tracking.
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new migrator for the given database connection.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Migration represents a single database migration.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Up runs all pending migrations to bring the database schema up to date.
// It tracks applied migrations in the schema_migrations table.
func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.currentVersion(ctx)
	if err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	migrations, err := m.loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if err := m.applyMigration(ctx, migration); err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

// Version returns the current migration version.
func (m *Migrator) Version(ctx context.Context) (int, error) {
	return m.currentVersion(ctx)
}

// currentVersion returns the latest applied migration version.
// Returns 0 if no migrations have been applied.
func (m *Migrator) currentVersion(ctx context.Context) (int, error) {
	var tableExists bool
	if err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		AND table_name = 'schema_migrations'
	`).Scan(&tableExists); err != nil {
		return 0, fmt.Errorf("checking schema_migrations table: %w", err)
	}

	if !tableExists {
		return 0, nil
	}

	var version sql.NullInt64
	if err := m.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("querying current version: %w", err)
	}

	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// applyMigration executes one migration and records its version.
// MySQL commits DDL implicitly, so a failed file may leave partial tables;
// migrations use IF NOT EXISTS to stay re-runnable.
func (m *Migrator) applyMigration(ctx context.Context, migration Migration) error {
	if _, err := m.db.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("executing migration SQL: %w", err)
	}

	if _, err := m.db.ExecContext(ctx, `
		INSERT INTO schema_migrations (version, applied_at)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE applied_at = VALUES(applied_at)
	`, migration.Version, time.Now().UTC()); err != nil {
		return fmt.Errorf("recording migration version: %w", err)
	}

	return nil
}

// loadMigrations loads all migration files from the embedded filesystem,
// sorted by the version prefix of names like "001_initial.sql".
func (m *Migrator) loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(filename, ".sql") {
			continue
		}

		parts := strings.SplitN(filename, "_", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", filename)
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("parsing version from filename %s: %w", filename, err)
		}

		content, err := migrationFiles.ReadFile("migrations/" + filename)
		if err != nil {
			return nil, fmt.Errorf("reading migration file %s: %w", filename, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}
