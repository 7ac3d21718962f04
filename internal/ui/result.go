package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Detail is one key/value line of a box. Details keep their order.
type Detail struct {
	Key   string
	Value string
}

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type            ResultType // Success, failure, or warning
	Title           string     // e.g., "Row added"
	Details         []Detail   // Key-value details to display
	Error           error      // Error (for failure results)
	Troubleshooting []string   // Troubleshooting tips (for failure results)
	Width           int        // Terminal width
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Detail) *Result {
	return &Result{
		Type:    ResultSuccess,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Detail) *Result {
	return &Result{
		Type:    ResultWarning,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail adds a detail key-value pair
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Detail{Key: key, Value: value})
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var (
		color lipgloss.TerminalColor
		title string
	)
	switch r.Type {
	case ResultFailure:
		color = ErrorColor
		title = ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, r.Title))
	case ResultWarning:
		color = WarningColor
		title = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, r.Title))
	default:
		color = SuccessColor
		title = SuccessTitleStyle.Render(fmt.Sprintf("   %s  SUCCESS  ─  %s", SuccessMarker, r.Title))
	}

	lines := []string{"", title, ""}

	for _, d := range r.Details {
		keyStyled := ResultKeyStyle.Render(fmt.Sprintf("   %s:", d.Key))
		lines = append(lines, keyStyled+" "+ResultValueStyle.Render(d.Value))
	}
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}

	if r.Type == ResultFailure && r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}
	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width), "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(width - 2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// renderTroubleshootingBox renders the inner troubleshooting box
func (r *Result) renderTroubleshootingBox(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	innerWidth := width - 12 // Indent within outer box
	if innerWidth < 40 {
		innerWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(innerWidth).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
