package state

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS player_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			volume REAL NOT NULL DEFAULT 1.0,
			muted INTEGER NOT NULL DEFAULT 0,
			view_mode INTEGER NOT NULL DEFAULT 0,
			mini_x INTEGER NOT NULL DEFAULT 0,
			mini_y INTEGER NOT NULL DEFAULT 0,
			last_known_title TEXT,
			last_known_artist TEXT
		);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT -1
		);

		CREATE TABLE IF NOT EXISTS queue_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			provider_track_id TEXT NOT NULL,
			title TEXT,
			artist TEXT,
			provider_ids TEXT,
			UNIQUE(position)
		);

		CREATE INDEX IF NOT EXISTS idx_queue_tracks_position ON queue_tracks(position);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add mini position columns if missing
	_, _ = db.Exec(`ALTER TABLE player_state ADD COLUMN mini_x INTEGER NOT NULL DEFAULT 0`)
	_, _ = db.Exec(`ALTER TABLE player_state ADD COLUMN mini_y INTEGER NOT NULL DEFAULT 0`)

	return nil
}
