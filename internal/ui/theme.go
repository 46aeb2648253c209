package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/flacman/internal/config"
)

// Catppuccin Mocha defaults, overridable from the [theme] config section.
const (
	defaultGreen  = "#a6e3a1"
	defaultYellow = "#f9e2af"
	defaultRed    = "#f38ba8"
	defaultMuted  = "#5a6278"
)

// Theme holds the styles used for terminal output.
type Theme struct {
	ok      lipgloss.Style
	warn    lipgloss.Style
	failed  lipgloss.Style
	muted   lipgloss.Style
	enabled bool
}

// NewTheme builds styles from tc. When color is false every style renders
// its input unchanged.
func NewTheme(tc config.ThemeConfig, color bool) Theme {
	pick := func(override *string, def string) lipgloss.Color {
		if override != nil && *override != "" {
			return lipgloss.Color(*override)
		}
		return lipgloss.Color(def)
	}
	return Theme{
		ok:      lipgloss.NewStyle().Foreground(pick(tc.Green, defaultGreen)),
		warn:    lipgloss.NewStyle().Foreground(pick(tc.Yellow, defaultYellow)),
		failed:  lipgloss.NewStyle().Foreground(pick(tc.Red, defaultRed)).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(pick(tc.Muted, defaultMuted)),
		enabled: color,
	}
}

// Enabled reports whether the theme emits colour.
func (t Theme) Enabled() bool { return t.enabled }

func (t Theme) render(s lipgloss.Style, text string) string {
	if !t.enabled {
		return text
	}
	return s.Render(text)
}

func (t Theme) OK(text string) string     { return t.render(t.ok, text) }
func (t Theme) Warn(text string) string   { return t.render(t.warn, text) }
func (t Theme) Failed(text string) string { return t.render(t.failed, text) }
func (t Theme) Muted(text string) string  { return t.render(t.muted, text) }
