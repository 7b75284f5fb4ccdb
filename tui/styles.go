package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Primary colors
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple

	// Status colors
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorInfo    = lipgloss.Color("#3B82F6") // Blue

	// UI colors
	ColorBackground = lipgloss.Color("#1F2937") // Dark gray
	ColorText       = lipgloss.Color("#F9FAFB") // Almost white
	ColorTextMuted  = lipgloss.Color("#9CA3AF") // Gray
	ColorHighlight  = lipgloss.Color("#8B5CF6") // Light purple
)

type Theme struct {
	TitleStyle      lipgloss.Style
	NormalTextStyle lipgloss.Style
	MutedTextStyle  lipgloss.Style
	HighlightStyle  lipgloss.Style
	StatusBarStyle  lipgloss.Style
	ErrorStyle      lipgloss.Style
	SuccessStyle    lipgloss.Style
	WarningStyle    lipgloss.Style
	HelpStyle       lipgloss.Style
}

func DefaultTheme() *Theme {
	return &Theme{
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1),

		NormalTextStyle: lipgloss.NewStyle().
			Foreground(ColorText),

		MutedTextStyle: lipgloss.NewStyle().
			Foreground(ColorTextMuted),

		HighlightStyle: lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true),

		StatusBarStyle: lipgloss.NewStyle().
			Background(ColorBackground).
			Foreground(ColorText).
			Padding(0, 1),

		ErrorStyle: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		SuccessStyle: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),

		WarningStyle: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),

		HelpStyle: lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true),
	}
}

const (
	IconCheck   = "✓"
	IconCross   = "✗"
	IconPending = "·"
	IconWorking = "…"
)

func RenderProgressBar(current, total int, width int, theme *Theme) string {
	if total == 0 || width < 3 {
		return ""
	}

	percentage := float64(current) / float64(total)
	filled := int(float64(width-2) * percentage)
	empty := width - 2 - filled

	return theme.HighlightStyle.Render("[" + strings.Repeat("█", filled) + strings.Repeat("░", empty) + "]")
}

func StatusBadge(text string, statusType string, theme *Theme) string {
	var style lipgloss.Style

	switch statusType {
	case "success":
		style = theme.SuccessStyle.Background(lipgloss.Color("#065F46"))
	case "error":
		style = theme.ErrorStyle.Background(lipgloss.Color("#7F1D1D"))
	case "warning":
		style = theme.WarningStyle.Background(lipgloss.Color("#78350F"))
	case "info":
		style = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Background(lipgloss.Color("#1E3A8A")).
			Bold(true)
	default:
		style = theme.NormalTextStyle
	}

	return style.Padding(0, 1).Render(text)
}

func KeyHelp(key, description string, theme *Theme) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1).
		Background(ColorBackground)

	return keyStyle.Render(key) + " " + theme.HelpStyle.Render(description)
}
