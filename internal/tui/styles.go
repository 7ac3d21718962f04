package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/layout"
	"github.com/activhome/lightstack/internal/version"
)

// Application branding constants
const (
	AppName   = "LIGHTSTACK"
	GitHubURL = "github.com/activhome/lightstack"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 40
	MaxCardWidth     = 100 // cards stop growing past this many columns
)

// Where RenderApplicationContainer places its content: one column of outer
// border on the left; the outer border plus the header text and its rule on top.
const (
	contentOriginX = 1
	contentOriginY = 3
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	// OnColor is the icon colour of a row whose entity is on.
	OnColor = lipgloss.Color("#FFCC00")

	TextColor       = lipgloss.Color("#FFFFFF")
	SubtleColor     = lipgloss.Color("#626262")
	BorderColor     = lipgloss.Color("#7D56F4")
	HighlightColor  = lipgloss.Color("#43BF6D")
	BackgroundColor = lipgloss.Color("#1A1A1A")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Menu items carry their own two-column marker, so neither style pads.
	SelectedMenuItemStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	MenuItemStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	DetailsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Row parts
	RowNameStyle     = lipgloss.NewStyle().Foreground(TextColor)
	RowSelectedStyle = lipgloss.NewStyle().Foreground(HighlightColor)
	IconOffStyle     = lipgloss.NewStyle().Foreground(TextColor)
	IconOnStyle      = lipgloss.NewStyle().Foreground(OnColor)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(lipgloss.Color("#3A3A3A")).
			Bold(true)
	ButtonFocusedStyle = ButtonStyle.
				Background(PrimaryColor)
)

// accentOr returns the configured accent colour, else the primary colour.
func accentOr(accent string) lipgloss.TerminalColor {
	if a := strings.TrimSpace(accent); a != "" {
		return lipgloss.Color(a)
	}
	return PrimaryColor
}

// PresetStyle returns the container style of a card style preset. Presets
// differ only in padding, border and colour; unknown names get the
// transparent preset.
func PresetStyle(preset, accent string) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch strings.ToLower(strings.TrimSpace(preset)) {
	case card.StyleActivhome:
		return base.Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5A5A5A")).
			Padding(1, 2)
	case card.StyleGlass:
		return base.Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8A8A8A")).
			Padding(1, 2)
	case card.StyleDarkGlass:
		return base.Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3A3A3A")).
			Background(lipgloss.Color("#111111")).
			Padding(1, 2)
	case card.StyleSolid:
		return base.Background(lipgloss.Color("#2A2A2A")).
			Padding(1, 2)
	case card.StyleNeonPulse:
		return base.Border(lipgloss.ThickBorder()).
			BorderForeground(accentOr(accent)).
			Padding(1, 2)
	case card.StyleNeonGlow:
		return base.Border(lipgloss.DoubleBorder()).
			BorderForeground(accentOr(accent)).
			Padding(1, 2)
	case card.StylePrimaryBreathe:
		return base.Border(lipgloss.RoundedBorder()).
			BorderForeground(accentOr(accent)).
			Padding(0, 2)
	case card.StylePrimaryTint:
		return base.Background(lipgloss.Color("#24203A")).
			Padding(1, 2)
	default:
		return base
	}
}

// MeasureInsets reads the vertical padding and border of a container style
// and converts them to pixels on grid.
func MeasureInsets(style lipgloss.Style, grid layout.Grid) layout.Insets {
	h := grid.HeightPx(1)
	return layout.Insets{
		PaddingTop:    float64(style.GetPaddingTop()) * h,
		PaddingBottom: float64(style.GetPaddingBottom()) * h,
		BorderTop:     float64(style.GetBorderTopSize()) * h,
		BorderBottom:  float64(style.GetBorderBottomSize()) * h,
	}
}

// RenderSubtitle renders a subtitle with consistent styling
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderMenuItem renders a menu item with selection indicator
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render("  " + text)
}

// RenderError renders an error message
func RenderError(text string) string {
	return ErrorStyle.Render("✗ " + text)
}

// BuildHeaderContent creates header content with app name and location
func BuildHeaderContent(location string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(location)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// BuildFooterContent creates footer content with help text
func BuildFooterContent(helpText string) string {
	return lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(helpText)
}

// RenderApplicationContainer wraps a screen in the full-terminal frame: outer
// border, header line with a rule under it, content, and a footer with help.
// Content starts at (contentOriginX, contentOriginY); mouse hit-testing
// relies on that.
func RenderApplicationContainer(content, location, footerText string, terminalWidth, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight < 8 {
		terminalHeight = 8
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		MaxHeight(2)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderTop(true).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 2)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent(location)),
		contentStyle.Render(content),
	)

	footer := footerStyle.Render(BuildFooterContent(footerText))
	innerHeight := terminalHeight - 2
	bodyHeight := innerHeight - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(inner)

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, footer))
}

// RenderModal centers modal content over a dimmed background.
func RenderModal(modalContent string, terminalWidth, terminalHeight int) string {
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}

// CardWidth picks the card width for a terminal width, in columns.
func CardWidth(terminalWidth int) int {
	w := terminalWidth - 2 // outer border
	if w > MaxCardWidth {
		w = MaxCardWidth
	}
	if w < MinTerminalWidth-2 {
		w = MinTerminalWidth - 2
	}
	return w
}
