package playback

import (
	"time"

	"github.com/soulpulse/soulpulse/internal/provider"
)

// StateChange is emitted when the canonical player state changes through a
// mutation (open, switch, transport, close). Position-only updates use
// PositionChange instead so subscribers can cheaply redraw scrub bars.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when playback moves to a different canonical
// track, whether by an open request or queue navigation.
//
// NOT emitted by:
//   - provider switches that keep the same canonical track
//   - pause/stop/view-mode transitions
type TrackChange struct {
	Previous *Track
	Current  *Track
}

// PositionChange is emitted by the position poller while playing, and
// after an acknowledged seek.
type PositionChange struct {
	Position time.Duration
}

// ViewModeChange is emitted on Expanded/Minimized/Cinema transitions.
// Transport state is guaranteed untouched when this fires.
type ViewModeChange struct {
	Previous ViewMode
	Current  ViewMode
}

// ErrorEvent is emitted when a non-fatal failure occurs. The store has
// already settled into a consistent state when this fires; the event is
// informational for the rendering layer.
type ErrorEvent struct {
	Operation string // e.g. "acquire", "retarget"
	Provider  provider.Provider
	Err       error
}
