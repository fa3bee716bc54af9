package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	dbutil "github.com/soulpulse/soulpulse/internal/db"
	"github.com/soulpulse/soulpulse/internal/provider"
	"github.com/soulpulse/soulpulse/internal/queue"
)

// QueueState represents the saved queue.
type QueueState struct {
	CurrentIndex int
	Tracks       []queue.Track
}

func getQueue(db *sql.DB) (*QueueState, error) {
	var currentIndex int
	row := db.QueryRow(`SELECT current_index FROM queue_state WHERE id = 1`)
	err := row.Scan(&currentIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT track_id, provider, provider_track_id, title, artist, provider_ids
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []queue.Track
	for rows.Next() {
		var t queue.Track
		var p string
		var title, artist, providerIDs sql.NullString

		if err := rows.Scan(&t.ID, &p, &t.ProviderTrackID, &title, &artist, &providerIDs); err != nil {
			return nil, err
		}

		t.Provider = provider.Provider(p)
		t.Title = dbutil.NullStringValue(title)
		t.Artist = dbutil.NullStringValue(artist)
		if s := dbutil.NullStringValue(providerIDs); s != "" {
			if err := json.Unmarshal([]byte(s), &t.ProviderIDs); err != nil {
				return nil, fmt.Errorf("queue track %s: bad provider_ids: %w", t.ID, err)
			}
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueueState{
		CurrentIndex: currentIndex,
		Tracks:       tracks,
	}, nil
}

func saveQueue(sqlDB *sql.DB, state QueueState) error {
	return dbutil.WithTx(sqlDB, func(tx *sql.Tx) error {
		// Clear existing queue
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index)
			VALUES (1, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index
		`, state.CurrentIndex)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_tracks (position, track_id, provider, provider_track_id, title, artist, provider_ids)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range state.Tracks {
			var providerIDs any
			if len(t.ProviderIDs) > 0 {
				data, err := json.Marshal(t.ProviderIDs)
				if err != nil {
					return err
				}
				providerIDs = string(data)
			}
			_, err = stmt.Exec(i, t.ID, string(t.Provider), t.ProviderTrackID, t.Title, t.Artist, providerIDs)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
