// Package queue holds the externally owned ordered list of canonical
// tracks that Next/Previous advance through. The playback store only asks
// for the adjacent track; it never mutates the queue contents itself.
package queue

import "github.com/soulpulse/soulpulse/internal/provider"

// Track is a canonical queue entry. The canonical ID is stable across
// provider switches; ProviderTrackID is the backend-specific identifier
// handed to the active adapter. ProviderIDs optionally maps the other
// backends' identifiers for the same canonical track, which is what
// makes an in-place provider switch possible.
type Track struct {
	ID              string
	Provider        provider.Provider
	ProviderTrackID string
	Title           string
	Artist          string
	ProviderIDs     map[provider.Provider]string
}

// IDForProvider returns the backend identifier for p, or empty when the
// track is not available on that backend.
func (t *Track) IDForProvider(p provider.Provider) string {
	if t.Provider == p {
		return t.ProviderTrackID
	}
	return t.ProviderIDs[p]
}

// Queue is an ordered track list with a current position.
type Queue struct {
	tracks       []Track
	currentIndex int // -1 if nothing current
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{currentIndex: -1}
}

// Current returns the track at the current position, or nil if none.
func (q *Queue) Current() *Track {
	if q.currentIndex < 0 || q.currentIndex >= len(q.tracks) {
		return nil
	}
	t := q.tracks[q.currentIndex]
	return &t
}

// CurrentIndex returns the current position (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// HasNext returns true if there is a track after the current one.
func (q *Queue) HasNext() bool {
	return q.currentIndex < len(q.tracks)-1
}

// HasPrevious returns true if there is a track before the current one.
func (q *Queue) HasPrevious() bool {
	return q.currentIndex > 0
}

// Next advances to the next track and returns it.
// Returns nil at the queue boundary without moving.
func (q *Queue) Next() *Track {
	if !q.HasNext() {
		return nil
	}
	q.currentIndex++
	return q.Current()
}

// Previous retreats to the previous track and returns it.
// Returns nil at the queue boundary without moving.
func (q *Queue) Previous() *Track {
	if !q.HasPrevious() {
		return nil
	}
	q.currentIndex--
	return q.Current()
}

// JumpTo sets the current position. Returns the track there, or nil if the
// index is out of range (position unchanged).
func (q *Queue) JumpTo(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// JumpToID moves the current position to the track with the given
// canonical id. Returns nil if the id is not in the queue.
func (q *Queue) JumpToID(id string) *Track {
	for i, t := range q.tracks {
		if t.ID == id {
			q.currentIndex = i
			return q.Current()
		}
	}
	return nil
}

// Add appends tracks without changing the current position.
func (q *Queue) Add(tracks ...Track) {
	q.tracks = append(q.tracks, tracks...)
}

// Replace clears the queue, adds tracks, and sets the position to 0.
// Returns the first track, or nil if tracks is empty.
func (q *Queue) Replace(tracks ...Track) *Track {
	q.tracks = nil
	q.currentIndex = -1
	if len(tracks) == 0 {
		return nil
	}
	q.tracks = append(q.tracks, tracks...)
	q.currentIndex = 0
	return q.Current()
}

// Clear removes all tracks and resets the position.
func (q *Queue) Clear() {
	q.tracks = nil
	q.currentIndex = -1
}

// Tracks returns a copy of all tracks.
func (q *Queue) Tracks() []Track {
	return append([]Track(nil), q.tracks...)
}

// Len returns the number of tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}
