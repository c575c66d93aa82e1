package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor = lipgloss.Color("170") // Purple
	accentColor  = lipgloss.Color("39")  // Cyan
	dimColor     = lipgloss.Color("240") // Gray
	errorColor   = lipgloss.Color("196") // Red
	warningColor = lipgloss.Color("214") // Orange

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// Dim style for metadata
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	LabelStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Width(10)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// Box style for the detail card
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			MarginTop(1)
)

// FormatSize formats bytes into human readable format
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDate renders a timestamp for listings; zero times render as "-"
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
