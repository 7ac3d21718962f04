package layout

import (
	"math"

	"github.com/activhome/lightstack/internal/card"
)

// Insets is the vertical padding and border thickness of the card container,
// in pixels. It is measured after a layout pass and never persisted.
type Insets struct {
	PaddingTop    float64
	PaddingBottom float64
	BorderTop     float64
	BorderBottom  float64
}

// Vertical returns the total vertical inset.
func (i Insets) Vertical() float64 {
	return i.PaddingTop + i.PaddingBottom + i.BorderTop + i.BorderBottom
}

// Result is the outcome of a calibration.
type Result struct {
	// RowHeightPx is the height applied to every row.
	RowHeightPx float64

	// ContainerHeightPx is the fixed container height. Only meaningful when
	// FixedContainer is true; otherwise the container sizes itself to its rows.
	ContainerHeightPx float64
	FixedContainer    bool
}

// Clamp bounds n to [min, max]. Non-finite values collapse to min.
func Clamp(n, min, max float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return min
	}
	return math.Max(min, math.Min(max, n))
}

// ClampRowHeight bounds a row height to the supported range.
func ClampRowHeight(px float64) float64 {
	return Clamp(px, card.MinRowHeight, card.MaxRowHeight)
}

// NeedsMeasurement reports whether l is a usable total-mode layout, i.e.
// whether calibration has to wait for measured insets.
func NeedsMeasurement(l card.LayoutConfig) bool {
	return l.Mode() == card.HeightModeTotal && usableTarget(l.TargetTotalHeight)
}

// Calibrate computes the row height for rowCount rows.
//
// In row mode the configured row height is clamped to [50, 220]. In total
// mode the requested total is divided among the rows after removing the
// insets (when the total includes them), the per-row value is clamped, and
// the container is resized to exactly rowHeight*rowCount + insets. When the
// clamp kicks in, that container height differs from the requested total.
//
// Total mode without a positive target, or without measured insets yet,
// falls back to row mode. Calibrate has no state; equal inputs give equal
// outputs.
func Calibrate(l card.LayoutConfig, rowCount int, insets *Insets) Result {
	if rowCount < 1 {
		rowCount = 1
	}

	base := Result{RowHeightPx: ClampRowHeight(l.RowHeight.Or(card.DefaultRowHeight))}
	if !NeedsMeasurement(l) || insets == nil {
		return base
	}

	vertical := insets.Vertical()
	available := l.TargetTotalHeight.Px
	if l.IncludesInsets() {
		available -= vertical
	}
	available = math.Max(available, 0)

	row := ClampRowHeight(available / float64(rowCount))

	return Result{
		RowHeightPx:       row,
		ContainerHeightPx: row*float64(rowCount) + vertical,
		FixedContainer:    true,
	}
}

func usableTarget(l card.Length) bool {
	return l.Set && !math.IsNaN(l.Px) && !math.IsInf(l.Px, 0) && l.Px > 0
}
