package playback

import (
	"time"

	"github.com/soulpulse/soulpulse/internal/provider"
)

// Phase tracks a provider switch through its lifecycle.
//
// Each open/switch attempt walks the machine:
//
//	┌──────┐ request ┌───────────┐ old handle ┌───────────┐ backend ┌───────┐
//	│ Idle │────────▶│ Releasing │───────────▶│ Acquiring │────────▶│ Ready │
//	└──────┘         └───────────┘  detached  └───────────┘  ready  └───────┘
//	    ▲                                           │
//	    └───────────────────────────────────────────┘
//	            failure or close (prior session considered closed)
//
// The Releasing→Acquiring edge is what prevents audio overlap: the old
// adapter's handle is detached before the new adapter is constructed.
// A switch request arriving during Releasing or Acquiring supersedes the
// in-flight attempt; the stale attempt's readiness is discarded.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReleasing
	PhaseAcquiring
	PhaseReady
)

// String returns the phase name for debugging.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseReleasing:
		return "Releasing"
	case PhaseAcquiring:
		return "Acquiring"
	case PhaseReady:
		return "Ready"
	default:
		return "Unknown"
	}
}

// ViewMode is the presentation state of the player surface, orthogonal to
// playback state. Transitions between modes never touch transport state.
type ViewMode int

const (
	ViewExpanded ViewMode = iota
	ViewMinimized
	ViewCinema
)

// String returns the view mode name.
func (m ViewMode) String() string {
	switch m {
	case ViewExpanded:
		return "Expanded"
	case ViewMinimized:
		return "Minimized"
	case ViewCinema:
		return "Cinema"
	default:
		return "Unknown"
	}
}

// MiniPosition is the anchor of the minimized player surface.
type MiniPosition struct {
	X int
	Y int
}

// State is a snapshot of the canonical player state. Only the store's own
// mutation methods assign to it; everything else reads copies.
type State struct {
	Open     bool
	Phase    Phase
	Provider provider.Provider

	// TrackID is the app-level identity, stable across provider switches.
	// ProviderTrackID is what the active adapter was given.
	TrackID         string
	ProviderTrackID string

	// Title/Artist reflect the current request; LastKnownTitle/Artist keep
	// the most recent non-empty values and are never reset by a request
	// that omits metadata or by a provider switch.
	Title           string
	Artist          string
	LastKnownTitle  string
	LastKnownArtist string

	Playing bool
	Muted   bool
	Volume  float64 // 0..1

	// Position and Duration come from polling the active adapter and are
	// not authoritative across switches.
	Position time.Duration
	Duration time.Duration

	ViewMode ViewMode
	MiniPos  MiniPosition

	// PendingSeek is a requested start position not yet acknowledged by
	// the active adapter; applied exactly once when it reports ready.
	PendingSeek    time.Duration
	HasPendingSeek bool

	// LastError is the most recent non-fatal failure, formatted for
	// display. Cleared on the next successful open/switch.
	LastError string
}

// DisplayTitle returns the current title, falling back to the last known
// one so the surface never flickers to a placeholder.
func (s State) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.LastKnownTitle
}

// DisplayArtist returns the current artist with last-known fallback.
func (s State) DisplayArtist() string {
	if s.Artist != "" {
		return s.Artist
	}
	return s.LastKnownArtist
}

// Track is a copy of the identifying fields of what is (or was) loaded.
type Track struct {
	ID              string
	Provider        provider.Provider
	ProviderTrackID string
	Title           string
	Artist          string
}
