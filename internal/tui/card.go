package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/activhome/lightstack/internal/action"
	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/layout"
	"github.com/activhome/lightstack/internal/stack"
)

// Icons for the state column.
const (
	iconOn  = "●"
	iconOff = "○"
)

// boldFontPx is the font size from which row names render bold.
const boldFontPx = 22

// Focus selects which part of the cursor row is highlighted.
type Focus int

const (
	FocusName Focus = iota
	FocusOn
	FocusOff
)

// CardFrame is one rendered card and the element tree that matches it.
type CardFrame struct {
	View   string
	Root   *action.Node
	Insets layout.Insets
	Width  int
	Height int
}

// CardInput is everything the renderer needs for one frame.
type CardInput struct {
	Config  card.CardConfig
	Rows    []stack.RowView
	Result  layout.Result
	Metrics layout.ActionMetrics
	Grid    layout.Grid

	Width  int // card width in columns, including the container frame
	X, Y   int // screen position of the card's top-left cell
	Cursor int // selected row, -1 for none
	Focus  Focus
}

// columns is the horizontal split of a row.
type columns struct {
	icon, gap, name, button int
}

func splitColumns(inner int, m layout.ActionMetrics, g layout.Grid) columns {
	c := columns{
		icon:   g.Columns(m.IconPx),
		gap:    g.Columns(m.GapPx),
		button: g.Columns(m.ButtonWidthPx),
	}
	c.name = inner - c.icon - 3*c.gap - 2*c.button
	if c.name < 1 {
		// not enough room: shrink the buttons before the name disappears
		c.button = max(4, (inner-c.icon-3*c.gap-1)/2)
		c.name = max(1, inner-c.icon-3*c.gap-2*c.button)
	}
	return c
}

// RenderCard draws the card container and its rows and builds the element
// tree used for hit-testing. Every row is exactly Lines(RowHeightPx) tall;
// a fixed container holds exactly its rows plus the style's insets.
func RenderCard(in CardInput) CardFrame {
	container := PresetStyle(in.Config.Style, in.Config.AccentColor)
	insets := MeasureInsets(container, in.Grid)

	width := in.Width
	if width < MinTerminalWidth-2 {
		width = MinTerminalWidth - 2
	}
	inner := width - container.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}
	rowLines := in.Grid.Lines(in.Result.RowHeightPx)
	cols := splitColumns(inner, in.Metrics, in.Grid)

	innerX := in.X + container.GetBorderLeftSize() + container.GetPaddingLeft()
	innerY := in.Y + container.GetBorderTopSize() + container.GetPaddingTop()

	root := action.NewRoot("card", action.Rect{X: in.X, Y: in.Y, W: width})

	rendered := make([]string, 0, len(in.Rows))
	for i, row := range in.Rows {
		y := innerY + i*rowLines
		node := root.Append(action.TagRow, fmt.Sprintf("row[%d]", i),
			action.Rect{X: innerX, Y: y, W: inner, H: rowLines}).WithIndex(i)

		rendered = append(rendered, renderRow(row, in, cols, rowLines, node, innerX, y))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rendered...)
	if in.Result.FixedContainer {
		// The calibrated container is rows*row + insets in px. Rounding that
		// total separately from each row would clip the last row or leave a
		// blank line, so the body is sized from the rounded rows.
		lines := rowLines * len(in.Rows)
		body = lipgloss.NewStyle().Height(lines).MaxHeight(lines).Render(body)
	}

	view := container.Width(inner + container.GetHorizontalPadding()).Render(body)
	h := lipgloss.Height(view)
	root.Rect.H = h

	return CardFrame{View: view, Root: root, Insets: insets, Width: lipgloss.Width(view), Height: h}
}

func renderRow(row stack.RowView, in CardInput, c columns, lines int, node *action.Node, x, y int) string {
	selected := in.Cursor == row.Index

	// icon
	iconStyle := IconOffStyle
	icon := iconOff
	if row.On {
		iconStyle = IconOnStyle
		icon = iconOn
	}
	iconCell := place(iconStyle.Render(icon), c.icon, lines, lipgloss.Center)
	node.Append(action.TagMoreInfo, node.Name+"/icon", action.Rect{X: x, Y: y, W: c.icon, H: lines})
	x += c.icon + c.gap

	// name
	nameStyle := RowNameStyle
	if selected && in.Focus == FocusName {
		nameStyle = RowSelectedStyle
	}
	if fontPx(row.FontSize) >= boldFontPx {
		nameStyle = nameStyle.Bold(true)
	}
	label := runewidth.Truncate(row.Name, c.name, "…")
	if !row.Known {
		nameStyle = nameStyle.Faint(true)
	}
	nameCell := place(nameStyle.Render(label), c.name, lines, lipgloss.Left)
	nameNode := node.Append(action.TagName, node.Name+"/name", action.Rect{X: x, Y: y, W: c.name, H: lines})
	nameNode.Append("", nameNode.Name+"/label", action.Rect{X: x, Y: y + midLine(lines), W: runewidth.StringWidth(label), H: 1})
	x += c.name + c.gap

	// actions
	actions := node.Append("", node.Name+"/actions", action.Rect{X: x, Y: y, W: 2*c.button + c.gap, H: lines})
	on := renderButton("ON", c.button, lines, in.Config.ActionsButtonBorder, selected && in.Focus == FocusOn)
	appendButton(actions, action.TagOn, "on", x, y, c.button, lines)
	x += c.button + c.gap
	off := renderButton("OFF", c.button, lines, in.Config.ActionsButtonBorder, selected && in.Focus == FocusOff)
	appendButton(actions, action.TagOff, "off", x, y, c.button, lines)

	gap := strings.Repeat(" ", c.gap)
	return lipgloss.JoinHorizontal(lipgloss.Top, iconCell, gap, nameCell, gap, on, gap, off)
}

// appendButton adds a button and its untagged label, so a click on the
// label has to be resolved through the composed path.
func appendButton(parent *action.Node, tag action.Tag, name string, x, y, w, h int) {
	btn := parent.Append(tag, parent.Parent.Name+"/"+name, action.Rect{X: x, Y: y, W: w, H: h})
	btn.Append("", btn.Name+"/label", action.Rect{X: x + 1, Y: y + midLine(h), W: max(1, w-2), H: 1})
}

func renderButton(label string, w, h int, border, focused bool) string {
	style := ButtonStyle
	if focused {
		style = ButtonFocusedStyle
	}
	if border && h >= 3 {
		bordered := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Bold(true).
			Align(lipgloss.Center).
			Width(w - 2)
		if focused {
			bordered = bordered.BorderForeground(PrimaryColor)
		}
		return place(bordered.Render(label), w, h, lipgloss.Center)
	}
	return place(style.Width(w).Align(lipgloss.Center).Render(label), w, h, lipgloss.Center)
}

// place puts s in a w x h cell, vertically centred.
func place(s string, w, h int, hpos lipgloss.Position) string {
	return lipgloss.Place(w, h, hpos, lipgloss.Center, s)
}

// midLine is the line lipgloss.Place uses for one line centred in h.
func midLine(h int) int {
	return (h - 1) / 2
}

// fontPx parses "20px" or "20" into 20. Anything else is 0.
func fontPx(fs string) int {
	fs = strings.TrimSuffix(strings.TrimSpace(fs), "px")
	n, err := strconv.Atoi(fs)
	if err != nil {
		return 0
	}
	return n
}
