package card

import "strings"

// CardType is written into saved configurations.
const CardType = "custom:lightstack"

// Row height bounds, in pixels.
const (
	MinRowHeight     = 50.0
	MaxRowHeight     = 220.0
	DefaultRowHeight = 50.0
)

// DefaultFontSize applies when neither the row nor the card sets one.
const DefaultFontSize = "20px"

// HeightMode selects how the card height is specified.
type HeightMode string

const (
	// HeightModeRow: the user sets an individual row height.
	HeightModeRow HeightMode = "row"
	// HeightModeTotal: the user sets the overall card height, divided among rows.
	HeightModeTotal HeightMode = "total"
)

// Style preset names. Presets only differ in container padding, border and colour.
const (
	StyleTransparent    = "transparent"
	StyleActivhome      = "activhome"
	StyleGlass          = "glass"
	StyleDarkGlass      = "dark_glass"
	StyleSolid          = "solid"
	StyleNeonPulse      = "neon_pulse"
	StyleNeonGlow       = "neon_glow"
	StylePrimaryBreathe = "primary_breathe"
	StylePrimaryTint    = "primary_tint"
)

// StylePresets lists every known preset, in display order.
var StylePresets = []string{
	StyleTransparent,
	StyleActivhome,
	StyleGlass,
	StyleDarkGlass,
	StyleSolid,
	StyleNeonPulse,
	StyleNeonGlow,
	StylePrimaryBreathe,
	StylePrimaryTint,
}

// CardConfig is the full configuration of one card.
type CardConfig struct {
	Type            string `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Style           string `yaml:"style,omitempty" toml:"style,omitempty" json:"style,omitempty" validate:"omitempty,stylepreset"`
	AccentColor     string `yaml:"accent_color,omitempty" toml:"accent_color,omitempty" json:"accent_color,omitempty" validate:"omitempty,hexcolor"`
	DefaultFontSize string `yaml:"default_font_size,omitempty" toml:"default_font_size,omitempty" json:"default_font_size,omitempty" validate:"omitempty,fontsize"`

	LayoutConfig `yaml:",inline"`

	Items []RowConfig `yaml:"items" toml:"items" json:"items" validate:"required,min=1,dive"`
}

// LayoutConfig holds the height and button sizing settings.
type LayoutConfig struct {
	HeightMode            HeightMode `yaml:"height_mode,omitempty" toml:"height_mode,omitempty" json:"height_mode,omitempty"`
	RowHeight             Length     `yaml:"row_height,omitempty" toml:"row_height,omitempty" json:"row_height,omitempty"`
	TargetTotalHeight     Length     `yaml:"target_total_height,omitempty" toml:"target_total_height,omitempty" json:"target_total_height,omitempty"`
	TargetIncludesPadding *bool      `yaml:"target_total_includes_padding,omitempty" toml:"target_total_includes_padding,omitempty" json:"target_total_includes_padding,omitempty"`
	ActionsButtonWidth    Length     `yaml:"actions_button_width,omitempty" toml:"actions_button_width,omitempty" json:"actions_button_width,omitempty"`
	ActionsButtonBorder   bool       `yaml:"actions_button_border,omitempty" toml:"actions_button_border,omitempty" json:"actions_button_border,omitempty"`
}

// Mode returns the effective height mode. Anything but "total" is row mode.
func (l LayoutConfig) Mode() HeightMode {
	if strings.EqualFold(strings.TrimSpace(string(l.HeightMode)), string(HeightModeTotal)) {
		return HeightModeTotal
	}
	return HeightModeRow
}

// IncludesInsets reports whether target_total_height covers padding and borders.
// Defaults to true.
func (l LayoutConfig) IncludesInsets() bool {
	return l.TargetIncludesPadding == nil || *l.TargetIncludesPadding
}

// RowConfig describes one row of the card. Entity is its identity.
type RowConfig struct {
	Entity         string      `yaml:"entity" toml:"entity" json:"entity" validate:"required,entityref"`
	Name           string      `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	OnAction       *ActionSpec `yaml:"on_action,omitempty" toml:"on_action,omitempty" json:"on_action,omitempty"`
	OffAction      *ActionSpec `yaml:"off_action,omitempty" toml:"off_action,omitempty" json:"off_action,omitempty"`
	NavigationPath string      `yaml:"navigation_path,omitempty" toml:"navigation_path,omitempty" json:"navigation_path,omitempty"`
	TapAction      *ActionSpec `yaml:"tap_action,omitempty" toml:"tap_action,omitempty" json:"tap_action,omitempty"`
	FontSize       string      `yaml:"font_size,omitempty" toml:"font_size,omitempty" json:"font_size,omitempty" validate:"omitempty,fontsize"`
}

// EffectiveFontSize resolves the row font size against the card default.
func (r RowConfig) EffectiveFontSize(cardDefault string) string {
	if fs := strings.TrimSpace(r.FontSize); fs != "" {
		return fs
	}
	if fs := strings.TrimSpace(cardDefault); fs != "" {
		return fs
	}
	return DefaultFontSize
}

// View is one navigable page of a dashboard file.
type View struct {
	Path  string     `yaml:"path" toml:"path" json:"path"`
	Title string     `yaml:"title,omitempty" toml:"title,omitempty" json:"title,omitempty"`
	Card  CardConfig `yaml:"card" toml:"card" json:"card"`
}

// Dashboard is what a configuration file decodes to: one or more views.
// A file holding a bare card becomes a dashboard with a single "/" view.
type Dashboard struct {
	Views []View `yaml:"views" toml:"views" json:"views"`
}

// Lookup returns the view registered under path.
func (d *Dashboard) Lookup(path string) (*View, bool) {
	path = strings.TrimSpace(path)
	for i := range d.Views {
		if d.Views[i].Path == path {
			return &d.Views[i], true
		}
	}
	return nil, false
}

// Single reports whether the dashboard came from a bare card file.
func (d *Dashboard) Single() bool {
	return len(d.Views) == 1 && d.Views[0].Path == "/" && d.Views[0].Title == ""
}
