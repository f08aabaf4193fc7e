package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
// - Default (white/black): primary text
// - Accent (soft blue, configurable): titles, paths, highlights
// - Muted (gray): secondary info
// Success/failure state is carried by the render glyphs, not by color.

const defaultAccent = "#7AA2F7"

var accentColor = defaultAccent

var (
	// Accent style for titles, directories, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)
)

// ConfigureTheme overrides the accent color. Supported values are ANSI color
// codes ("0" to "255") or hex colors ("#RRGGBB"); empty keeps the default.
func ConfigureTheme(accent string) {
	if accent == "" {
		return
	}
	accentColor = accent
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(accent))
}

// AccentColor returns the configured accent color.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}
