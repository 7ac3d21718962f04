package card

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func validCard() *CardConfig {
	return &CardConfig{
		Items: []RowConfig{
			{Entity: "light.kitchen", Name: "Kitchen"},
			{Entity: "light.hall"},
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validCard()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if cfg.Type != CardType {
		t.Errorf("Type = %q, want %q", cfg.Type, CardType)
	}
	if cfg.Style != StyleTransparent {
		t.Errorf("Style = %q, want %q", cfg.Style, StyleTransparent)
	}
	if cfg.HeightMode != HeightModeRow {
		t.Errorf("HeightMode = %q, want row", cfg.HeightMode)
	}
	if cfg.RowHeight.Or(0) != DefaultRowHeight {
		t.Errorf("RowHeight = %v, want %v", cfg.RowHeight, DefaultRowHeight)
	}
	if !cfg.IncludesInsets() {
		t.Error("IncludesInsets() should default to true")
	}
	if cfg.CardSize() != 2 {
		t.Errorf("CardSize() = %d, want 2", cfg.CardSize())
	}
}

func TestNormalizeRejectsUnusableConfigs(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *CardConfig
		wantField string
	}{
		{"nil config", nil, ""},
		{"no items", &CardConfig{}, "items"},
		{"empty entity", &CardConfig{Items: []RowConfig{{Entity: "light.a"}, {Entity: "  "}}}, "items[1].entity"},
		{"bad font size", &CardConfig{Items: []RowConfig{{Entity: "light.a", FontSize: "40px"}}}, "items[0].font_size"},
		{"unknown style", &CardConfig{Style: "sparkles", Items: []RowConfig{{Entity: "light.a"}}}, "style"},
		{"bad accent", &CardConfig{AccentColor: "pink", Items: []RowConfig{{Entity: "light.a"}}}, "accent_color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Normalize(tt.cfg)
			if err == nil {
				t.Fatal("Normalize() expected error, got nil")
			}
			if !IsConfigError(err) {
				t.Fatalf("Normalize() error type = %T, want *ConfigError", err)
			}
			ce := err.(*ConfigError)
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q (err: %v)", ce.Field, tt.wantField, err)
			}
		})
	}
}

func TestNormalizeHeightModeIsLenient(t *testing.T) {
	tests := []struct {
		raw  HeightMode
		want HeightMode
	}{
		{"", HeightModeRow},
		{"row", HeightModeRow},
		{"TOTAL", HeightModeTotal},
		{" total ", HeightModeTotal},
		{"stretch", HeightModeRow},
	}

	for _, tt := range tests {
		cfg := validCard()
		cfg.HeightMode = tt.raw
		if err := Normalize(cfg); err != nil {
			t.Fatalf("Normalize(%q) error = %v", tt.raw, err)
		}
		if cfg.HeightMode != tt.want {
			t.Errorf("Normalize(%q) HeightMode = %q, want %q", tt.raw, cfg.HeightMode, tt.want)
		}
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in      any
		wantSet bool
		want    float64
	}{
		{350, true, 350},
		{int64(12), true, 12},
		{12.5, true, 12.5},
		{"350", true, 350},
		{"350px", true, 350},
		{"350 PX", true, 350},
		{" 80.5px ", true, 80.5},
		{"", false, 0},
		{"tall", false, 0},
		{nil, false, 0},
	}

	for _, tt := range tests {
		got := ParseLength(tt.in)
		if got.Set != tt.wantSet || (got.Set && got.Px != tt.want) {
			t.Errorf("ParseLength(%#v) = %+v, want set=%v px=%v", tt.in, got, tt.wantSet, tt.want)
		}
	}
}

func TestYAMLDecodeLengths(t *testing.T) {
	src := `
height_mode: total
target_total_height: "350px"
row_height: 70
actions_button_width: ""
items:
  - entity: light.kitchen
`
	var cfg CardConfig
	if err := yaml.Unmarshal([]byte(src), &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	if got := cfg.TargetTotalHeight.Or(0); got != 350 {
		t.Errorf("TargetTotalHeight = %v, want 350", got)
	}
	if got := cfg.RowHeight.Or(0); got != 70 {
		t.Errorf("RowHeight = %v, want 70", got)
	}
	if cfg.ActionsButtonWidth.Set {
		t.Errorf("ActionsButtonWidth should be unset, got %+v", cfg.ActionsButtonWidth)
	}
	if cfg.Mode() != HeightModeTotal {
		t.Errorf("Mode() = %q, want total", cfg.Mode())
	}
}

func TestParseService(t *testing.T) {
	tests := []struct {
		in          string
		wantDomain  string
		wantService string
		wantOK      bool
	}{
		{"light.turn_on", "light", "turn_on", true},
		{"  script.good_night ", "script", "good_night", true},
		{"invalid", "", "", false},
		{".turn_on", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		d, s, ok := ParseService(tt.in)
		if d != tt.wantDomain || s != tt.wantService || ok != tt.wantOK {
			t.Errorf("ParseService(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, d, s, ok, tt.wantDomain, tt.wantService, tt.wantOK)
		}
	}
}

func TestActionSpecKind(t *testing.T) {
	tests := []struct {
		spec *ActionSpec
		want ActionKind
	}{
		{nil, ActionNone},
		{&ActionSpec{}, ActionNone},
		{&ActionSpec{Action: "none"}, ActionNone},
		{&ActionSpec{Action: "More-Info"}, ActionMoreInfo},
		{&ActionSpec{Action: "navigate"}, ActionNavigate},
		{&ActionSpec{Action: "url"}, ActionURL},
		{&ActionSpec{Action: "toggle"}, ActionToggle},
		{&ActionSpec{Action: "call-service"}, ActionCallService},
		{&ActionSpec{Action: "assist"}, ActionUnknown},
	}

	for _, tt := range tests {
		if got := tt.spec.Kind(); got != tt.want {
			t.Errorf("Kind(%+v) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestActionSpecPayloadPrefersServiceData(t *testing.T) {
	spec := &ActionSpec{
		ServiceData: map[string]any{"brightness": 255},
		Data:        map[string]any{"brightness": 1},
	}
	payload := spec.Payload()
	if payload["brightness"] != 255 {
		t.Errorf("Payload() = %v, want service_data", payload)
	}

	payload["brightness"] = 0
	if spec.ServiceData["brightness"] != 255 {
		t.Error("Payload() should return a copy")
	}

	if got := (&ActionSpec{Data: map[string]any{"x": 1}}).Payload(); got["x"] != 1 {
		t.Errorf("Payload() fallback to data = %v", got)
	}
}

func TestRowEditing(t *testing.T) {
	cfg := validCard()

	if err := cfg.AddRow(RowConfig{Entity: "light.porch"}); err != nil {
		t.Fatalf("AddRow() error = %v", err)
	}
	if err := cfg.AddRow(RowConfig{Entity: "light.porch"}); err == nil {
		t.Error("AddRow() should reject duplicate entity")
	}
	if err := cfg.AddRow(RowConfig{Entity: ""}); err == nil {
		t.Error("AddRow() should reject empty entity")
	}

	if !cfg.MoveUp(2) {
		t.Fatal("MoveUp(2) should move")
	}
	if got := entities(cfg); got != "light.kitchen,light.porch,light.hall" {
		t.Errorf("after MoveUp(2) = %s", got)
	}
	if cfg.MoveUp(0) {
		t.Error("MoveUp(0) should be a no-op")
	}
	if cfg.MoveDown(2) {
		t.Error("MoveDown(last) should be a no-op")
	}
	if !cfg.MoveDown(0) {
		t.Fatal("MoveDown(0) should move")
	}
	if got := entities(cfg); got != "light.porch,light.kitchen,light.hall" {
		t.Errorf("after MoveDown(0) = %s", got)
	}

	if err := cfg.RemoveRow(5); err == nil {
		t.Error("RemoveRow(out of range) should fail")
	}
	if err := cfg.RemoveRow(1); err != nil {
		t.Fatalf("RemoveRow(1) error = %v", err)
	}
	if err := cfg.RemoveRow(0); err != nil {
		t.Fatalf("RemoveRow(0) error = %v", err)
	}
	if err := cfg.RemoveRow(0); err == nil {
		t.Error("RemoveRow() should refuse to remove the last row")
	}
}

func TestCleanDropsDefaults(t *testing.T) {
	includes := true
	cfg := CardConfig{
		Style: "",
		LayoutConfig: LayoutConfig{
			HeightMode:            HeightModeRow,
			RowHeight:             Px(50),
			TargetTotalHeight:     Px(300),
			TargetIncludesPadding: &includes,
			ActionsButtonWidth:    Px(0),
		},
		Items: []RowConfig{{
			Entity:    " light.kitchen ",
			Name:      "",
			OnAction:  &ActionSpec{},
			TapAction: &ActionSpec{Action: "navigate", NavigationPath: "/x"},
		}},
	}

	clean := Clean(cfg)

	if clean.Style != StyleTransparent {
		t.Errorf("Style = %q, want transparent", clean.Style)
	}
	if clean.HeightMode != "" || clean.RowHeight.Set || clean.TargetTotalHeight.Set || clean.TargetIncludesPadding != nil {
		t.Errorf("row-mode defaults not dropped: %+v", clean.LayoutConfig)
	}
	if clean.ActionsButtonWidth.Set {
		t.Error("non-positive actions_button_width should be dropped")
	}
	if clean.Items[0].Entity != "light.kitchen" {
		t.Errorf("Entity = %q, want trimmed", clean.Items[0].Entity)
	}
	if clean.Items[0].OnAction != nil {
		t.Error("empty on_action should be dropped")
	}
	if clean.Items[0].TapAction == nil {
		t.Error("tap_action should be kept")
	}

	// The original must be untouched
	if cfg.Items[0].OnAction == nil || cfg.RowHeight.Or(0) != 50 {
		t.Error("Clean() modified its input")
	}

	out, err := yaml.Marshal(clean)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	for _, key := range []string{"height_mode", "row_height", "target_total", "actions_button"} {
		if strings.Contains(string(out), key) {
			t.Errorf("cleaned YAML should not contain %q:\n%s", key, out)
		}
	}
}

func TestCleanKeepsTotalMode(t *testing.T) {
	excludes := false
	cfg := CardConfig{
		LayoutConfig: LayoutConfig{
			HeightMode:            HeightModeTotal,
			RowHeight:             Px(80),
			TargetTotalHeight:     Px(400),
			TargetIncludesPadding: &excludes,
		},
		Items: []RowConfig{{Entity: "light.a"}},
	}

	clean := Clean(cfg)
	if clean.HeightMode != HeightModeTotal {
		t.Errorf("HeightMode = %q, want total", clean.HeightMode)
	}
	if clean.TargetTotalHeight.Or(0) != 400 || clean.RowHeight.Or(0) != 80 {
		t.Errorf("lengths dropped: %+v", clean.LayoutConfig)
	}
	if clean.TargetIncludesPadding == nil || *clean.TargetIncludesPadding {
		t.Error("explicit false target_total_includes_padding must be kept")
	}

	normalized := clean.Clone()
	if err := Normalize(&normalized); err != nil {
		t.Fatalf("Normalize(Clean()) error = %v", err)
	}
	if normalized.Mode() != HeightModeTotal || normalized.IncludesInsets() {
		t.Error("Clean() then Normalize() should keep the effective layout")
	}
}

func TestNormalizeDashboard(t *testing.T) {
	d := &Dashboard{Views: []View{
		{Card: *validCard()},
		{Path: "/lights/upstairs", Title: "Upstairs", Card: *validCard()},
	}}
	if err := NormalizeDashboard(d); err != nil {
		t.Fatalf("NormalizeDashboard() error = %v", err)
	}
	if d.Views[0].Path != "/" {
		t.Errorf("first view path = %q, want /", d.Views[0].Path)
	}
	if v, ok := d.Lookup("/lights/upstairs"); !ok || v.Title != "Upstairs" {
		t.Errorf("Lookup() = %v, %v", v, ok)
	}

	dup := &Dashboard{Views: []View{
		{Path: "/a", Card: *validCard()},
		{Path: "/a", Card: *validCard()},
	}}
	if err := NormalizeDashboard(dup); err == nil {
		t.Error("NormalizeDashboard() should reject duplicate paths")
	}

	bad := &Dashboard{Views: []View{{Path: "/a", Card: CardConfig{}}}}
	err := NormalizeDashboard(bad)
	if err == nil || !strings.Contains(err.Error(), "views[0].card.items") {
		t.Errorf("NormalizeDashboard() error = %v, want field views[0].card.items", err)
	}
}

func TestEffectiveFontSize(t *testing.T) {
	if got := (RowConfig{FontSize: "18px"}).EffectiveFontSize("22px"); got != "18px" {
		t.Errorf("row font size = %q, want 18px", got)
	}
	if got := (RowConfig{}).EffectiveFontSize("22px"); got != "22px" {
		t.Errorf("card font size = %q, want 22px", got)
	}
	if got := (RowConfig{}).EffectiveFontSize(""); got != DefaultFontSize {
		t.Errorf("default font size = %q, want %s", got, DefaultFontSize)
	}
}

func entities(cfg *CardConfig) string {
	parts := make([]string, len(cfg.Items))
	for i, row := range cfg.Items {
		parts[i] = row.Entity
	}
	return strings.Join(parts, ",")
}
