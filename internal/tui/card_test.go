package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/activhome/lightstack/internal/action"
	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/layout"
	"github.com/activhome/lightstack/internal/stack"
)

func testCard(style string) card.CardConfig {
	return card.CardConfig{
		Style: style,
		Items: []card.RowConfig{
			{Entity: "light.kitchen", Name: "Kitchen"},
			{Entity: "light.hall"},
		},
	}
}

func renderTestCard(t *testing.T, cfg card.CardConfig, insets *layout.Insets) CardFrame {
	t.Helper()
	w, err := stack.New(cfg)
	if err != nil {
		t.Fatalf("stack.New() error = %v", err)
	}
	w.SetWidth(layout.DefaultGrid.WidthPx(60))
	if insets != nil {
		gen, _ := w.ScheduleCalibration()
		w.RunCalibration(gen, *insets)
	}
	res, metrics := w.Layout()
	return RenderCard(CardInput{
		Config:  w.Config(),
		Rows:    w.Rows(),
		Result:  res,
		Metrics: metrics,
		Grid:    layout.DefaultGrid,
		Width:   60,
		X:       1,
		Y:       4,
		Cursor:  -1,
	})
}

func TestRenderCard_RowHeight(t *testing.T) {
	frame := renderTestCard(t, testCard(card.StyleTransparent), nil)

	// 50px rows on a 25px grid are two lines each.
	if frame.Height != 4 {
		t.Errorf("Height = %d, want 4", frame.Height)
	}
	if got := lipgloss.Height(frame.View); got != frame.Height {
		t.Errorf("view height = %d, frame says %d", got, frame.Height)
	}
	if !strings.Contains(frame.View, "Kitchen") {
		t.Error("view should contain the row name")
	}
	if !strings.Contains(frame.View, "light.hall") {
		t.Error("a row without a name or state should show its entity id")
	}

	for i := 0; i < 2; i++ {
		row := frame.Root.Find(action.TagRow, i)
		if row == nil {
			t.Fatalf("row %d missing from tree", i)
		}
		if row.Rect.Y != 4+2*i || row.Rect.H != 2 {
			t.Errorf("row %d rect = %+v", i, row.Rect)
		}
	}
}

func TestRenderCard_HitTree(t *testing.T) {
	frame := renderTestCard(t, testCard(card.StyleActivhome), nil)

	center := func(n *action.Node) (int, int) {
		return n.Rect.X + n.Rect.W/2, n.Rect.Y + n.Rect.H/2
	}

	tests := []struct {
		name    string
		node    func() *action.Node
		wantTag action.Tag
		wantRow int
	}{
		{
			name: "on button label resolves to the button",
			node: func() *action.Node {
				return frame.Root.Find(action.TagOn, 1).Children[0]
			},
			wantTag: action.TagOn,
			wantRow: 1,
		},
		{
			name: "off button label resolves to the button",
			node: func() *action.Node {
				return frame.Root.Find(action.TagOff, 0).Children[0]
			},
			wantTag: action.TagOff,
			wantRow: 0,
		},
		{
			name:    "icon is more-info",
			node:    func() *action.Node { return frame.Root.Find(action.TagMoreInfo, 0) },
			wantTag: action.TagMoreInfo,
			wantRow: 0,
		},
		{
			name: "name label resolves to the name",
			node: func() *action.Node {
				return frame.Root.Find(action.TagName, 1).Children[0]
			},
			wantTag: action.TagName,
			wantRow: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.node()
			if n == nil {
				t.Fatal("node missing from tree")
			}
			x, y := center(n)
			ev, ok := action.PointerEvent(frame.Root, x, y)
			if !ok {
				t.Fatalf("PointerEvent(%d, %d) missed the card", x, y)
			}
			tag, target, ok := action.Resolve(ev)
			if !ok {
				t.Fatal("Resolve() found no tag")
			}
			if tag != tt.wantTag {
				t.Errorf("tag = %q, want %q", tag, tt.wantTag)
			}
			if target.Index != tt.wantRow {
				t.Errorf("row = %d, want %d", target.Index, tt.wantRow)
			}
		})
	}
}

func TestRenderCard_GapSelectsRow(t *testing.T) {
	frame := renderTestCard(t, testCard(card.StyleTransparent), nil)

	name := frame.Root.Find(action.TagName, 0)
	x, y := name.Rect.X+name.Rect.W, name.Rect.Y // gap before the buttons
	ev, ok := action.PointerEvent(frame.Root, x, y)
	if !ok {
		t.Fatal("gap should still be inside the card")
	}
	tag, _, ok := action.Resolve(ev)
	if !ok || tag != action.TagRow {
		t.Errorf("Resolve() = %q, %v; want row", tag, ok)
	}
}

func TestRenderCard_FixedContainer(t *testing.T) {
	tests := []struct {
		name     string
		style    string
		target   float64
		rows     int
		rowLines int
	}{
		// (350 - 100 insets) / 2 rows = 125px = 5 lines
		{"whole lines with insets", card.StyleActivhome, 350, 2, 5},
		// 65px rows round up to 3 lines
		{"rows round up", card.StyleTransparent, 195, 3, 3},
		// 60px rows round down to 2 lines
		{"rows round down", card.StyleTransparent, 180, 3, 2},
		{"rows round down with insets", card.StyleSolid, 230, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := card.CardConfig{Style: tt.style, LayoutConfig: card.LayoutConfig{HeightMode: card.HeightModeTotal, TargetTotalHeight: card.Px(tt.target)}}
			for i := 0; i < tt.rows; i++ {
				cfg.Items = append(cfg.Items, card.RowConfig{Entity: fmt.Sprintf("light.l%d", i)})
			}
			insets := MeasureInsets(PresetStyle(cfg.Style, ""), layout.DefaultGrid)
			frame := renderTestCard(t, cfg, &insets)

			insetLines := int(insets.Vertical() / layout.DefaultGrid.CellHeightPx)
			if want := tt.rows*tt.rowLines + insetLines; frame.Height != want {
				t.Errorf("Height = %d, want %d", frame.Height, want)
			}
			if got := lipgloss.Height(frame.View); got != frame.Height {
				t.Errorf("view height = %d, frame says %d", got, frame.Height)
			}

			last := frame.Root.Find(action.TagRow, tt.rows-1)
			if last == nil || last.Rect.H != tt.rowLines {
				t.Fatalf("last row = %+v, want %d lines", last, tt.rowLines)
			}
			root := frame.Root.Rect
			if last.Rect.Y+last.Rect.H > root.Y+root.H {
				t.Errorf("last row %+v extends past the card %+v", last.Rect, root)
			}
			// no blank line between the last row and the bottom inset
			bottom := root.Y + root.H - insetLines/2
			if last.Rect.Y+last.Rect.H != bottom {
				t.Errorf("last row ends at %d, card content ends at %d", last.Rect.Y+last.Rect.H, bottom)
			}
		})
	}
}

func TestMeasureInsets(t *testing.T) {
	tests := []struct {
		preset string
		want   float64
	}{
		{card.StyleTransparent, 0},
		{"no_such_preset", 0},
		{card.StyleActivhome, 100},
		{card.StyleSolid, 50},
		{card.StylePrimaryBreathe, 50},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			got := MeasureInsets(PresetStyle(tt.preset, "#00FF00"), layout.DefaultGrid)
			if got.Vertical() != tt.want {
				t.Errorf("Vertical() = %v, want %v", got.Vertical(), tt.want)
			}
		})
	}
}

func TestFontPx(t *testing.T) {
	tests := map[string]int{
		"20px":  20,
		" 24px": 24,
		"18":    18,
		"1.2em": 0,
		"":      0,
	}
	for in, want := range tests {
		if got := fontPx(in); got != want {
			t.Errorf("fontPx(%q) = %d, want %d", in, got, want)
		}
	}
}
