// Package playerbar renders the single player surface. It is a pure
// view over a playback state snapshot: mini bar, expanded bar, or cinema
// panel, depending on the view mode.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/soulpulse/soulpulse/internal/playback"
	"github.com/soulpulse/soulpulse/internal/provider"
)

// Render draws the player surface for the given snapshot. Returns an
// empty string when the player is closed; the host reserves no space in
// that case.
func Render(st playback.State, width, height int) string {
	if !st.Open {
		return ""
	}
	switch st.ViewMode {
	case playback.ViewMinimized:
		return renderMini(st, width)
	case playback.ViewCinema:
		return renderCinema(st, width, height)
	default:
		return renderExpanded(st, width)
	}
}

// renderMini is a single content line: status, title, time.
func renderMini(st playback.State, width int) string {
	innerWidth := max(width-2, 0)

	status := statusIcon(st)
	title := st.DisplayTitle()
	if title == "" {
		title = st.ProviderTrackID
	}
	right := fmt.Sprintf("%s / %s", formatDuration(st.Position), formatDuration(st.Duration))

	left := " " + status + "  " + title
	padding := innerWidth - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if padding < 0 {
		// Truncate the title rather than overflow
		keep := max(lipgloss.Width(left)+padding, 0)
		left = truncate(left, keep)
		padding = 0
	}

	line := left + strings.Repeat(" ", padding) + right + " "
	return barStyle.Width(innerWidth).Render(line)
}

// renderExpanded shows title, artist with the provider badge, a progress
// bar, and the volume line.
func renderExpanded(st playback.State, width int) string {
	innerWidth := max(width-2, 0)

	title := st.DisplayTitle()
	if title == "" {
		title = st.ProviderTrackID
	}
	artistLine := st.DisplayArtist()
	badge := providerBadge(st.Provider)
	if badge != "" {
		if artistLine != "" {
			artistLine += "  "
		}
		artistLine += badge
	}

	statusLine := RenderVolume(st.Volume, st.Muted)
	if st.Phase == playback.PhaseAcquiring {
		statusLine += "  " + dimStyle.Render("connecting…")
	}
	if st.LastError != "" {
		statusLine += "  " + errorStyle.Render(st.LastError)
	}

	rows := []string{
		titleStyle.Render(truncate(title, innerWidth)),
		artistLine,
		RenderProgressBar(st.Position, st.Duration, innerWidth, st.Playing),
		statusLine,
	}
	return barStyle.Width(innerWidth).Render(strings.Join(rows, "\n"))
}

// renderCinema centers the metadata in the full reserved surface.
func renderCinema(st playback.State, width, height int) string {
	innerWidth := max(width-2, 0)
	innerHeight := max(height-2, 0)

	title := st.DisplayTitle()
	if title == "" {
		title = st.ProviderTrackID
	}

	content := strings.Join([]string{
		titleStyle.Render(title),
		st.DisplayArtist(),
		providerBadge(st.Provider),
		"",
		RenderProgressBar(st.Position, st.Duration, min(innerWidth, 60), st.Playing),
		RenderVolume(st.Volume, st.Muted),
	}, "\n")

	centered := lipgloss.Place(innerWidth, innerHeight, lipgloss.Center, lipgloss.Center, content)
	return barStyle.Width(innerWidth).Render(centered)
}

// RenderVolume renders the volume indicator.
// Format: "vol 100%" or "muted" when muted
func RenderVolume(volume float64, muted bool) string {
	if muted {
		return dimStyle.Render("muted")
	}
	return dimStyle.Render(fmt.Sprintf("vol %3d%%", int(volume*100)))
}

func statusIcon(st playback.State) string {
	if st.Phase == playback.PhaseAcquiring {
		return "…"
	}
	if st.Playing {
		return "▶"
	}
	return "⏸"
}

func providerBadge(p provider.Provider) string {
	switch p {
	case provider.Spotify:
		return spotifyBadgeStyle.Render("Spotify")
	case provider.YouTube:
		return youtubeBadgeStyle.Render("YouTube")
	default:
		return ""
	}
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 {
		return string(runes[:max(width, 0)])
	}
	return string(runes[:width-1]) + "…"
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
