// Package layout provides pure functions for player surface dimension
// calculations. The hosting view asks for a reservation and sizes
// everything else around it; nothing here holds state.
package layout

import "github.com/soulpulse/soulpulse/internal/playback"

// Surface heights in terminal rows.
const (
	// MiniHeight is the docked single-line bar plus borders.
	MiniHeight = 3

	// ExpandedHeight is the full transport bar with metadata rows.
	ExpandedHeight = 6
)

// Band orders interactive regions. While the player is expanded or in
// cinema mode, no other interactive element may sit in a higher band.
type Band int

const (
	BandContent Band = iota // regular page content
	BandPlayer              // the active player surface
	BandOverlay             // modal popups, always above the player
)

// Reservation is the space and stacking slot the hosting view must grant
// the player surface.
type Reservation struct {
	Height int
	Band   Band
}

// Reserve computes the reservation for the given view mode. A closed
// player reserves nothing. Cinema claims the whole window height.
func Reserve(mode playback.ViewMode, open bool, windowHeight int) Reservation {
	if !open {
		return Reservation{}
	}
	switch mode {
	case playback.ViewMinimized:
		return Reservation{Height: MiniHeight, Band: BandContent}
	case playback.ViewCinema:
		return Reservation{Height: windowHeight, Band: BandPlayer}
	default:
		return Reservation{Height: ExpandedHeight, Band: BandPlayer}
	}
}

// ContentHeight is what remains for the rest of the view once the player
// surface has its reservation.
func ContentHeight(windowHeight int, r Reservation) int {
	h := windowHeight - r.Height
	if h < 0 {
		return 0
	}
	return h
}

// PlayerRow calculates the 1-based row where the player surface starts.
// Returns 0 when nothing is reserved. Cinema starts at the top; the bars
// dock to the bottom of the window.
func PlayerRow(windowHeight int, r Reservation) int {
	if r.Height == 0 {
		return 0
	}
	if r.Height >= windowHeight {
		return 1
	}
	return windowHeight - r.Height + 1
}
