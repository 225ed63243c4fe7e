package show

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/teranos/orrery/navigator"
)

// Styles holds the HUD styles. Markers are keyed by presentation class.
type Styles struct {
	Markers         map[string]lipgloss.Style
	Counter         lipgloss.Style
	Title           lipgloss.Style
	Body            lipgloss.Style
	Control         lipgloss.Style
	ControlDisabled lipgloss.Style
}

var glyphs = map[navigator.State]string{
	navigator.Upcoming: "○",
	navigator.Current:  "●",
	navigator.Passed:   "•",
}

// DefaultStyles returns the default HUD styles.
func DefaultStyles() Styles {
	return Styles{
		Markers: map[string]lipgloss.Style{
			"":        lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			"current": lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
			"passed":  lipgloss.NewStyle().Foreground(lipgloss.Color("67")),
		},
		Counter:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Title:           lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")),
		Body:            lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Control:         lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		ControlDisabled: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

// Marker renders the marker of one slide.
func (s Styles) Marker(state navigator.State) string {
	return s.Markers[state.Class()].Render(glyphs[state])
}
