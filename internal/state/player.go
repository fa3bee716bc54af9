package state

import (
	"database/sql"
	"errors"

	dbutil "github.com/soulpulse/soulpulse/internal/db"
)

// PlayerState represents the saved player preferences.
type PlayerState struct {
	Volume          float64
	Muted           bool
	ViewMode        int
	MiniX           int
	MiniY           int
	LastKnownTitle  string
	LastKnownArtist string
}

func getPlayer(db *sql.DB) (*PlayerState, error) {
	var s PlayerState
	var title, artist sql.NullString

	row := db.QueryRow(`
		SELECT volume, muted, view_mode, mini_x, mini_y, last_known_title, last_known_artist
		FROM player_state WHERE id = 1
	`)
	err := row.Scan(&s.Volume, &s.Muted, &s.ViewMode, &s.MiniX, &s.MiniY, &title, &artist)
	if errors.Is(err, sql.ErrNoRows) {
		return &PlayerState{Volume: 1.0}, nil
	}
	if err != nil {
		return nil, err
	}

	s.LastKnownTitle = dbutil.NullStringValue(title)
	s.LastKnownArtist = dbutil.NullStringValue(artist)
	return &s, nil
}

func savePlayer(db *sql.DB, s PlayerState) error {
	_, err := db.Exec(`
		INSERT INTO player_state (id, volume, muted, view_mode, mini_x, mini_y, last_known_title, last_known_artist)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			view_mode = excluded.view_mode,
			mini_x = excluded.mini_x,
			mini_y = excluded.mini_y,
			last_known_title = excluded.last_known_title,
			last_known_artist = excluded.last_known_artist
	`, s.Volume, s.Muted, s.ViewMode, s.MiniX, s.MiniY, s.LastKnownTitle, s.LastKnownArtist)
	return err
}
