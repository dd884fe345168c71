package utils

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	CriticalColor = lipgloss.Color("#CC3333") // Dark red
	WarningColor  = lipgloss.Color("#FF8800") // Orange
	GoodColor     = lipgloss.Color("#228B22") // Forest green
	InfoColor     = lipgloss.Color("#4682B4") // Steel blue
	TextColor     = lipgloss.Color("#CCCCCC") // Light gray
	MutedColor    = lipgloss.Color("#888888") // Medium gray
	BorderColor   = lipgloss.Color("#666666") // Dark gray
)

var (
	CriticalStyle = lipgloss.NewStyle().Foreground(CriticalColor).Bold(true)
	WarningStyle  = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	GoodStyle     = lipgloss.NewStyle().Foreground(GoodColor).Bold(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(InfoColor)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	TextStyle     = lipgloss.NewStyle().Foreground(TextColor)
	BorderStyle   = lipgloss.NewStyle().Foreground(BorderColor)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// FormatKeyValue renders an aligned "key: value" row.
func FormatKeyValue(key, value string, keyWidth int) string {
	keyStyled := InfoStyle.Width(keyWidth).Render(key + ":")
	valueStyled := TextStyle.Render(value)
	return lipgloss.JoinHorizontal(lipgloss.Left, keyStyled, " ", valueStyled)
}

// SectionHeader renders a title underlined to its own width.
func SectionHeader(title string) string {
	return TitleStyle.Render(title) + "\n" + MutedStyle.Render(strings.Repeat("─", lipgloss.Width(title)+2))
}

// TruncateString truncates a string to fit within maxWidth terminal cells.
func TruncateString(s string, maxWidth int) string {
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 4 {
		return strings.Repeat(".", max(maxWidth, 0))
	}
	return ansi.Truncate(s, maxWidth, "...")
}
