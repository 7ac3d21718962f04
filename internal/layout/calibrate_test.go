package layout

import (
	"math"
	"testing"

	"github.com/activhome/lightstack/internal/card"
)

var testInsets = Insets{PaddingTop: 10, PaddingBottom: 10, BorderTop: 1, BorderBottom: 1}

func totalLayout(target float64) card.LayoutConfig {
	return card.LayoutConfig{
		HeightMode:        card.HeightModeTotal,
		RowHeight:         card.Px(50),
		TargetTotalHeight: card.Px(target),
	}
}

func TestCalibrateRowModeIdentityWithinBounds(t *testing.T) {
	for rowCount := 1; rowCount <= 12; rowCount++ {
		for h := 50.0; h <= 220; h += 17 {
			l := card.LayoutConfig{RowHeight: card.Px(h)}
			got := Calibrate(l, rowCount, &testInsets)
			if got.RowHeightPx != h {
				t.Fatalf("Calibrate(row=%v, n=%d).RowHeightPx = %v, want %v", h, rowCount, got.RowHeightPx, h)
			}
			if got.FixedContainer {
				t.Fatalf("row mode should not fix the container height")
			}
		}
	}
}

func TestCalibrateRowModeClamps(t *testing.T) {
	tests := []struct {
		name string
		in   card.Length
		want float64
	}{
		{"below minimum", card.Px(10), 50},
		{"above maximum", card.Px(500), 220},
		{"at minimum", card.Px(50), 50},
		{"at maximum", card.Px(220), 220},
		{"unset uses default", card.Length{}, card.DefaultRowHeight},
		{"negative", card.Px(-3), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calibrate(card.LayoutConfig{RowHeight: tt.in}, 3, nil)
			if got.RowHeightPx != tt.want {
				t.Errorf("RowHeightPx = %v, want %v", got.RowHeightPx, tt.want)
			}
		})
	}
}

func TestCalibrateTotalModeFeasibleReproducesTarget(t *testing.T) {
	tests := []struct {
		target   float64
		rowCount int
	}{
		{350, 4},
		{272, 5},
		{122, 2},
		{242, 1},
		{1122, 5},
	}

	for _, tt := range tests {
		got := Calibrate(totalLayout(tt.target), tt.rowCount, &testInsets)
		if !got.FixedContainer {
			t.Fatalf("target=%v n=%d: container should be fixed", tt.target, tt.rowCount)
		}
		if math.Abs(got.ContainerHeightPx-tt.target) > 1e-9 {
			t.Errorf("target=%v n=%d: ContainerHeightPx = %v, want %v", tt.target, tt.rowCount, got.ContainerHeightPx, tt.target)
		}
		wantRow := (tt.target - testInsets.Vertical()) / float64(tt.rowCount)
		if math.Abs(got.RowHeightPx-wantRow) > 1e-9 {
			t.Errorf("target=%v n=%d: RowHeightPx = %v, want %v", tt.target, tt.rowCount, got.RowHeightPx, wantRow)
		}
	}
}

func TestCalibrateTotalModeInfeasibleDiverges(t *testing.T) {
	// Ten rows cannot fit in 100px: rows clamp to 50 and the container grows.
	got := Calibrate(totalLayout(100), 10, &testInsets)
	if got.RowHeightPx != 50 {
		t.Errorf("RowHeightPx = %v, want 50", got.RowHeightPx)
	}
	want := 50*10 + testInsets.Vertical()
	if got.ContainerHeightPx != want {
		t.Errorf("ContainerHeightPx = %v, want %v", got.ContainerHeightPx, want)
	}
	if got.ContainerHeightPx <= 100 {
		t.Errorf("ContainerHeightPx = %v, should exceed the requested 100", got.ContainerHeightPx)
	}

	// One row cannot stretch to 1000px: the row clamps to 220 and the container shrinks.
	got = Calibrate(totalLayout(1000), 1, &testInsets)
	if got.RowHeightPx != 220 {
		t.Errorf("RowHeightPx = %v, want 220", got.RowHeightPx)
	}
	if got.ContainerHeightPx != 220+testInsets.Vertical() {
		t.Errorf("ContainerHeightPx = %v, want %v", got.ContainerHeightPx, 220+testInsets.Vertical())
	}
}

func TestCalibrateTotalModeExcludingInsets(t *testing.T) {
	l := totalLayout(300)
	excludes := false
	l.TargetIncludesPadding = &excludes

	got := Calibrate(l, 3, &testInsets)
	if got.RowHeightPx != 100 {
		t.Errorf("RowHeightPx = %v, want 100", got.RowHeightPx)
	}
	if got.ContainerHeightPx != 300+testInsets.Vertical() {
		t.Errorf("ContainerHeightPx = %v, want %v", got.ContainerHeightPx, 300+testInsets.Vertical())
	}
}

func TestCalibrateTotalModeInsetsLargerThanTarget(t *testing.T) {
	big := Insets{PaddingTop: 100, PaddingBottom: 100}
	got := Calibrate(totalLayout(50), 2, &big)
	if got.RowHeightPx != 50 {
		t.Errorf("RowHeightPx = %v, want 50 (available floored at 0 then clamped)", got.RowHeightPx)
	}
	if got.ContainerHeightPx != 300 {
		t.Errorf("ContainerHeightPx = %v, want 300", got.ContainerHeightPx)
	}
}

func TestCalibrateTotalModeFallsBackToRowMode(t *testing.T) {
	tests := []struct {
		name   string
		target card.Length
	}{
		{"absent", card.Length{}},
		{"zero", card.Px(0)},
		{"negative", card.Px(-100)},
		{"non-finite", card.Length{Px: math.Inf(1), Set: true}},
		{"nan", card.Length{Px: math.NaN(), Set: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := card.LayoutConfig{HeightMode: card.HeightModeTotal, RowHeight: card.Px(80), TargetTotalHeight: tt.target}
			got := Calibrate(l, 4, &testInsets)
			want := Result{RowHeightPx: 80}
			if got != want {
				t.Errorf("Calibrate() = %+v, want %+v", got, want)
			}
			if NeedsMeasurement(l) {
				t.Error("NeedsMeasurement() should be false")
			}
		})
	}
}

func TestCalibrateTotalModeWithoutInsets(t *testing.T) {
	l := totalLayout(350)
	got := Calibrate(l, 4, nil)
	if got.FixedContainer {
		t.Error("calibration without insets must not fix the container")
	}
	if got.RowHeightPx != 50 {
		t.Errorf("RowHeightPx = %v, want row-mode value 50", got.RowHeightPx)
	}
	if !NeedsMeasurement(l) {
		t.Error("NeedsMeasurement() should be true")
	}
}

func TestCalibrateIsIdempotent(t *testing.T) {
	layouts := []card.LayoutConfig{
		{RowHeight: card.Px(75)},
		totalLayout(350),
		totalLayout(100),
	}
	for _, l := range layouts {
		insets := testInsets
		first := Calibrate(l, 4, &insets)
		second := Calibrate(l, 4, &insets)
		if first != second {
			t.Errorf("Calibrate() not idempotent: %+v then %+v", first, second)
		}
		if insets != testInsets {
			t.Error("Calibrate() modified the insets")
		}
	}
}

func TestCalibrateZeroRowsTreatedAsOne(t *testing.T) {
	got := Calibrate(totalLayout(122), 0, &testInsets)
	if got.RowHeightPx != 100 {
		t.Errorf("RowHeightPx = %v, want 100", got.RowHeightPx)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(math.NaN(), 50, 220); got != 50 {
		t.Errorf("Clamp(NaN) = %v, want 50", got)
	}
	if got := Clamp(math.Inf(1), 50, 220); got != 50 {
		t.Errorf("Clamp(+Inf) = %v, want 50", got)
	}
	if got := Clamp(120, 50, 220); got != 120 {
		t.Errorf("Clamp(120) = %v, want 120", got)
	}
}
