package playback

import (
	"time"

	"github.com/soulpulse/soulpulse/internal/provider"
)

// OpenRequest is a playback intent from the rendering layer: a feed card,
// search result, or quick-stream control asking for a track.
type OpenRequest struct {
	// TrackID is the app-level track identity, stable across providers.
	TrackID string

	// Provider and ProviderTrackID select the backend and the id it
	// understands. An empty ProviderTrackID means the caller had nothing
	// playable and the request is ignored.
	Provider        provider.Provider
	ProviderTrackID string

	Autoplay bool

	// Title and Artist are optional display metadata. Empty values leave
	// the last known metadata in place.
	Title  string
	Artist string

	// StartAt, when positive, queues a seek applied once the provider
	// session reports ready.
	StartAt time.Duration
}

// Service is the playback store contract. All UI components mutate player
// state exclusively through it and observe results via Subscribe; nothing
// above this boundary constructs adapters or touches the mount slot.
type Service interface {
	// Playback intents
	Open(req OpenRequest) error
	SwitchProvider(p provider.Provider, providerTrackID, trackID string) error

	// Transport
	TogglePlayPause()
	SetVolume(v float64)
	ToggleMute()
	SeekTo(position time.Duration)
	Stop()
	ClosePlayer()

	// Queue navigation. Returns false at a queue boundary or when no
	// queue is bound; state is untouched in that case.
	Next() bool
	Previous() bool

	// View-mode transitions. Never change transport state, provider, or
	// the loaded track.
	CollapseToMini(pos MiniPosition)
	RestoreFromMini()
	EnterCinema()
	ExitCinema()

	// State queries
	State() State
	IsOpen() bool
	IsPlaying() bool
	Position() time.Duration
	TrackDuration() time.Duration

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
