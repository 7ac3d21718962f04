package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for command output
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, additions
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, removals
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
	OnColor      = lipgloss.Color("#FFCC00") // Yellow - entity on
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles
var (
	// HeaderTitleStyle is for the command title (e.g., "CARD ROWS")
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command path (e.g., "lightstack rows add")
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Card:")
	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamValueStyle is for parameter values
	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// ResultKeyStyle is for result detail keys
	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(15)

	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	TroubleshootingTitleStyle = lipgloss.NewStyle().
					Foreground(MutedColor).
					Bold(true)

	TroubleshootingItemStyle = lipgloss.NewStyle().
					Foreground(MutedColor)

	// Table
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				Bold(true)
	TableCellStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// Diff lines
	DiffAddStyle    = lipgloss.NewStyle().Foreground(SuccessColor)
	DiffDeleteStyle = lipgloss.NewStyle().Foreground(ErrorColor)
	DiffEqualStyle  = lipgloss.NewStyle().Foreground(MutedColor)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	WarningMarker = "⚠"
	OnMarker      = "●"
	OffMarker     = "○"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// HeaderBorderStyle returns the border style for command headers
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2) // Account for border characters
}

// RenderHorizontalDivider creates a horizontal line of the specified width
func RenderHorizontalDivider(width int, char string) string {
	if width < 1 {
		width = 1
	}
	line := ""
	for i := 0; i < width; i++ {
		line += char
	}
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(line)
}
