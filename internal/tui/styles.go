package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	ColorIce   = lipgloss.Color("#A8D8EA") // Cyan/Blueish for accents
	ColorDeep  = lipgloss.Color("#596E79") // Muted Blue/Grey for secondary text
	ColorText  = lipgloss.Color("#E0E0E0") // Primary text
	ColorAlert = lipgloss.Color("#FF6B6B") // Red for errors
	ColorGood  = lipgloss.Color("#4ECDC4") // Green for success
	ColorMuted = lipgloss.Color("#6c757d") // Muted text
)

// Styles
var (
	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorIce).
			Bold(true)

	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorDeep).
			Italic(true)

	StyleSentence = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true).
			Padding(1, 0)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorAlert)

	StyleFlash = lipgloss.NewStyle().
			Foreground(ColorGood)

	StyleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDeep).
			Padding(0, 2).
			Margin(0, 1)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	StyleApp = lipgloss.NewStyle().Margin(1, 2)
)
