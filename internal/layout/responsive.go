package layout

import (
	"math"

	"github.com/activhome/lightstack/internal/card"
)

// Container width breakpoints for the action buttons, in pixels.
const (
	CompactWidthPx = 520 // three-column tablet layouts
	NarrowWidthPx  = 420 // phones, split views
)

// ActionMetrics sizes the ON/OFF buttons and the icon column.
type ActionMetrics struct {
	ButtonWidthPx float64
	GapPx         float64
	IconPx        float64
}

// ResponsiveActions picks button metrics for a container widthPx wide.
// Text size never changes; only the buttons shrink. A positive configured
// width overrides the button width at every size. widthPx <= 0 means the
// container has not been measured and yields the wide defaults.
func ResponsiveActions(widthPx float64, configured card.Length) ActionMetrics {
	m := ActionMetrics{ButtonWidthPx: 60, GapPx: 6, IconPx: 32}

	if widthPx > 0 && widthPx < CompactWidthPx {
		m = ActionMetrics{ButtonWidthPx: 52, GapPx: 5, IconPx: 28}
	}
	if widthPx > 0 && widthPx < NarrowWidthPx {
		// keep a usable hit area on very narrow cards
		m = ActionMetrics{ButtonWidthPx: 60, GapPx: 5, IconPx: 28}
	}

	if configured.Positive() {
		m.ButtonWidthPx = configured.Px
	}
	return m
}

// Grid converts between pixels and terminal cells.
type Grid struct {
	CellWidthPx  float64
	CellHeightPx float64
}

// DefaultGrid approximates a common terminal font: 10x25 px cells, so the
// 50px minimum row is two lines tall.
var DefaultGrid = Grid{CellWidthPx: 10, CellHeightPx: 25}

func (g Grid) normalized() Grid {
	if g.CellWidthPx <= 0 {
		g.CellWidthPx = DefaultGrid.CellWidthPx
	}
	if g.CellHeightPx <= 0 {
		g.CellHeightPx = DefaultGrid.CellHeightPx
	}
	return g
}

// Lines converts a height to whole terminal lines, at least one.
func (g Grid) Lines(px float64) int {
	g = g.normalized()
	n := int(math.Round(px / g.CellHeightPx))
	if n < 1 {
		return 1
	}
	return n
}

// Columns converts a width to whole terminal columns, at least one.
func (g Grid) Columns(px float64) int {
	g = g.normalized()
	n := int(math.Round(px / g.CellWidthPx))
	if n < 1 {
		return 1
	}
	return n
}

// HeightPx converts terminal lines back to pixels.
func (g Grid) HeightPx(lines int) float64 {
	return float64(lines) * g.normalized().CellHeightPx
}

// WidthPx converts terminal columns back to pixels.
func (g Grid) WidthPx(cols int) float64 {
	return float64(cols) * g.normalized().CellWidthPx
}
