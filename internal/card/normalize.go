package card

import (
	"fmt"
	"strings"
)

// Normalize validates cfg in place and fills in defaults.
//
// A missing or empty item list, or a row without an entity, makes the card
// unusable and is reported as a *ConfigError. Every other oddity (unknown
// height mode, non-numeric lengths) degrades to a default instead.
func Normalize(cfg *CardConfig) error {
	if cfg == nil {
		return NewConfigError("", "configuration is nil")
	}
	if len(cfg.Items) == 0 {
		return NewConfigError("items", "'items' (non-empty list) is required")
	}

	if cfg.Type == "" {
		cfg.Type = CardType
	}

	cfg.Style = strings.ToLower(strings.TrimSpace(cfg.Style))
	if cfg.Style == "" {
		cfg.Style = StyleTransparent
	}
	cfg.AccentColor = strings.TrimSpace(cfg.AccentColor)
	cfg.DefaultFontSize = strings.TrimSpace(cfg.DefaultFontSize)

	cfg.HeightMode = cfg.Mode()
	if !cfg.RowHeight.Set {
		cfg.RowHeight = Px(DefaultRowHeight)
	}
	if cfg.ActionsButtonWidth.Set && cfg.ActionsButtonWidth.Px <= 0 {
		cfg.ActionsButtonWidth = Length{}
	}
	if cfg.TargetIncludesPadding == nil {
		includes := true
		cfg.TargetIncludesPadding = &includes
	}

	for i := range cfg.Items {
		row := &cfg.Items[i]
		row.Entity = strings.TrimSpace(row.Entity)
		if err := ValidateEntityRef(row.Entity); err != nil {
			return &ConfigError{Field: fmt.Sprintf("items[%d].entity", i), Message: err.Error()}
		}
		row.Name = strings.TrimSpace(row.Name)
		row.NavigationPath = strings.TrimSpace(row.NavigationPath)
		row.FontSize = strings.TrimSpace(row.FontSize)
	}

	return Validate(cfg)
}

// NormalizeDashboard normalizes every view and checks view paths.
func NormalizeDashboard(d *Dashboard) error {
	if d == nil || len(d.Views) == 0 {
		return NewConfigError("views", "at least one view is required")
	}

	seen := make(map[string]int, len(d.Views))
	for i := range d.Views {
		v := &d.Views[i]
		v.Path = strings.TrimSpace(v.Path)
		if v.Path == "" && i == 0 {
			v.Path = "/"
		}
		if !strings.HasPrefix(v.Path, "/") {
			return NewConfigError(fmt.Sprintf("views[%d].path", i), fmt.Sprintf("path must start with '/', got %q", v.Path))
		}
		if prev, dup := seen[v.Path]; dup {
			return NewConfigError(fmt.Sprintf("views[%d].path", i), fmt.Sprintf("duplicate path %q (also views[%d])", v.Path, prev))
		}
		seen[v.Path] = i

		if err := Normalize(&v.Card); err != nil {
			if ce, ok := err.(*ConfigError); ok {
				ce.Field = fmt.Sprintf("views[%d].card.%s", i, ce.Field)
				return ce
			}
			return err
		}
	}
	return nil
}

// CardSize is the number of grid units the card asks for: one per row.
func (c *CardConfig) CardSize() int {
	if c == nil || len(c.Items) == 0 {
		return 1
	}
	return len(c.Items)
}

// Clone returns a deep enough copy for independent editing.
func (c CardConfig) Clone() CardConfig {
	out := c
	if c.TargetIncludesPadding != nil {
		v := *c.TargetIncludesPadding
		out.TargetIncludesPadding = &v
	}
	out.Items = make([]RowConfig, len(c.Items))
	for i, row := range c.Items {
		out.Items[i] = row.Clone()
	}
	return out
}

// Clone copies the row and its action maps.
func (r RowConfig) Clone() RowConfig {
	out := r
	out.OnAction = r.OnAction.clone()
	out.OffAction = r.OffAction.clone()
	out.TapAction = r.TapAction.clone()
	return out
}

func (a *ActionSpec) clone() *ActionSpec {
	if a == nil {
		return nil
	}
	out := *a
	out.ServiceData = cloneMap(a.ServiceData)
	out.Data = cloneMap(a.Data)
	out.Target = cloneMap(a.Target)
	return &out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
