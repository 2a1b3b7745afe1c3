package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// migration is one forward-only schema step. Steps use IF NOT EXISTS so a
// database created before version tracking upgrades cleanly.
type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, description: "baseline schema", apply: migrateBaseline},
	{version: 2, description: "lookup indexes", apply: migrateIndexes},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for an untracked database.
// PRE: db is a valid database connection
// POST: Returns the highest recorded version
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// MigrateDB brings the schema up to LatestSchemaVersion.
// A file database that already holds data is copied to <dbPath>.v<N>.bak first.
// PRE: db is a valid database connection
// POST: All pending migrations applied in order, each in its own transaction
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if current > 0 && isFileDB(dbPath) {
		backup := fmt.Sprintf("%s.v%d.bak", dbPath, current)
		if _, err := db.Exec("VACUUM INTO ?", backup); err != nil {
			return fmt.Errorf("failed to back up database before migration: %w", err)
		}
		slog.Info("schema_backup", "path", backup, "version", current)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, description) VALUES (?, ?)", m.version, m.description); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func isFileDB(dbPath string) bool {
	return dbPath != "" && !strings.Contains(dbPath, ":memory:") && !strings.HasPrefix(dbPath, "file::memory:")
}

func migrateBaseline(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS athlete (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		birth_date TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		club TEXT NOT NULL DEFAULT '',
		surgery_date TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS injury (
		id TEXT PRIMARY KEY,
		athlete_id TEXT NOT NULL,
		type TEXT NOT NULL,
		injury_date TEXT NOT NULL,
		surgery_date TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (athlete_id) REFERENCES athlete(id)
	);

	CREATE TABLE IF NOT EXISTS rehab_phase (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL UNIQUE,
		approx_period TEXT NOT NULL,
		allowed_activities TEXT NOT NULL DEFAULT '',
		specific_tests TEXT NOT NULL DEFAULT '',
		treatments TEXT NOT NULL DEFAULT '',
		physical_prep TEXT NOT NULL DEFAULT '',
		rugby_skills TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS progress (
		id TEXT PRIMARY KEY,
		athlete_id TEXT NOT NULL,
		phase TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Em andamento',
		UNIQUE (athlete_id, phase, start_date),
		FOREIGN KEY (athlete_id) REFERENCES athlete(id)
	);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	`)
	return err
}

func migrateIndexes(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE INDEX IF NOT EXISTS idx_athlete_surgery_date ON athlete(surgery_date);
	CREATE INDEX IF NOT EXISTS idx_injury_athlete ON injury(athlete_id);
	CREATE INDEX IF NOT EXISTS idx_progress_status ON progress(status);
	CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at);
	`)
	return err
}
