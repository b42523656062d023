package store

import (
	"database/sql"
	"fmt"
)

// migrations holds the schema history. Append-only: the sqlite
// user_version pragma records how many have been applied, so existing
// databases run only the tail.
var migrations = [][]string{
	{
		`CREATE TABLE alarm_groups (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT NOT NULL,
			silenced_date TEXT
		)`,
		`CREATE TABLE alarms (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id     INTEGER NOT NULL REFERENCES alarm_groups(id) ON DELETE CASCADE,
			hour         INTEGER NOT NULL,
			minute       INTEGER NOT NULL,
			days_of_week INTEGER NOT NULL DEFAULT 0,
			is_enabled   INTEGER NOT NULL DEFAULT 1,
			sound_uri    TEXT NOT NULL DEFAULT '',
			label        TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX idx_alarms_group_id ON alarms(group_id)`,
	},
}

// migrate applies any pending migrations, one transaction each.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}
	if version >= len(migrations) {
		return nil
	}

	for i, stmts := range migrations[version:] {
		n := version + i
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", n, err)
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", n, err)
			}
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", n+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: set version: %w", n, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", n, err)
		}
	}
	return nil
}
