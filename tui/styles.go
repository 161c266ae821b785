package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/chrisvdg/peeps/api"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	activeTabStyle = tabStyle.
			Bold(true).
			Underline(true).
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "5", Dark: "13"})
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
)

// windowStyle returns the rounded border the detail windows are drawn in
func windowStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}).
		Padding(0, 1)
}

var statusColors = map[api.OnlineStatus]lipgloss.AdaptiveColor{
	api.StatusOnline:    {Light: "2", Dark: "10"},
	api.StatusAway:      {Light: "3", Dark: "11"},
	api.StatusBusy:      {Light: "1", Dark: "9"},
	api.StatusInvisible: {Light: "240", Dark: "245"},
	api.StatusOffline:   {Light: "240", Dark: "245"},
}

// statusBadge returns the colored online status of a user
func statusBadge(s api.OnlineStatus) string {
	if s == "" {
		s = api.StatusOffline
	}
	c, ok := statusColors[s]
	if !ok {
		return string(s)
	}

	return lipgloss.NewStyle().Foreground(c).Render(string(s))
}

// imageMarker renders whether an image is loaded, placeholder until it is
func imageMarker(ready bool) string {
	if ready {
		return "■"
	}

	return dimStyle.Render("□")
}
