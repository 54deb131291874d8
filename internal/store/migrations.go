package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the observation and insight tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS observations (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			metric    TEXT NOT NULL,
			value     REAL NOT NULL,
			region    TEXT NOT NULL,
			function  TEXT,
			observed  TEXT NOT NULL,
			source    TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS insights (
			id             TEXT PRIMARY KEY,
			signal         TEXT NOT NULL,
			interpretation TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			sources        TEXT NOT NULL,
			confidence     REAL NOT NULL,
			company        TEXT NOT NULL,
			function       TEXT NOT NULL,
			region         TEXT NOT NULL,
			initiative     TEXT,
			category       TEXT NOT NULL,
			rule_id        TEXT,
			created_at     TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_observations_region ON observations(region)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_metric ON observations(metric)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_company ON insights(company)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_function ON insights(function)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_region ON insights(region)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_category ON insights(category)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
