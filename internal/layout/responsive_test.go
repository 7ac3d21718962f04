package layout

import (
	"testing"

	"github.com/activhome/lightstack/internal/card"
)

func TestResponsiveActions(t *testing.T) {
	tests := []struct {
		name       string
		width      float64
		configured card.Length
		want       ActionMetrics
	}{
		{"unmeasured", 0, card.Length{}, ActionMetrics{60, 6, 32}},
		{"wide", 800, card.Length{}, ActionMetrics{60, 6, 32}},
		{"compact", 500, card.Length{}, ActionMetrics{52, 5, 28}},
		{"narrow", 400, card.Length{}, ActionMetrics{60, 5, 28}},
		{"configured wins", 500, card.Px(80), ActionMetrics{80, 5, 28}},
		{"non-positive configured ignored", 800, card.Px(0), ActionMetrics{60, 6, 32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResponsiveActions(tt.width, tt.configured); got != tt.want {
				t.Errorf("ResponsiveActions(%v) = %+v, want %+v", tt.width, got, tt.want)
			}
		})
	}
}

func TestGridConversions(t *testing.T) {
	g := DefaultGrid

	tests := []struct {
		px   float64
		want int
	}{
		{50, 2},
		{62, 2},
		{63, 3},
		{220, 9},
		{1, 1},
		{0, 1},
	}
	for _, tt := range tests {
		if got := g.Lines(tt.px); got != tt.want {
			t.Errorf("Lines(%v) = %d, want %d", tt.px, got, tt.want)
		}
	}

	if got := g.Columns(60); got != 6 {
		t.Errorf("Columns(60) = %d, want 6", got)
	}
	if got := g.HeightPx(3); got != 75 {
		t.Errorf("HeightPx(3) = %v, want 75", got)
	}
	if got := (Grid{}).Lines(50); got != 2 {
		t.Errorf("zero Grid should fall back to defaults, Lines(50) = %d", got)
	}
}
