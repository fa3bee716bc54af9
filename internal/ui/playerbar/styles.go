package playerbar

import "github.com/charmbracelet/lipgloss"

var barStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

var titleStyle = lipgloss.NewStyle().Bold(true)

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

var spotifyBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))

var youtubeBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
