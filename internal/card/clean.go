package card

import "strings"

// Clean returns a copy of cfg with every default removed, ready to be saved.
// Loading the result and normalizing it yields the same effective card.
func Clean(cfg CardConfig) CardConfig {
	out := cfg.Clone()

	out.Type = CardType
	out.Style = strings.ToLower(strings.TrimSpace(out.Style))
	if out.Style == "" {
		out.Style = StyleTransparent
	}
	out.AccentColor = strings.TrimSpace(out.AccentColor)
	out.DefaultFontSize = strings.TrimSpace(out.DefaultFontSize)

	mode := out.Mode()
	if mode == HeightModeRow {
		out.HeightMode = ""
		out.TargetTotalHeight = Length{}
		out.TargetIncludesPadding = nil
	} else {
		out.HeightMode = HeightModeTotal
		if !out.TargetTotalHeight.Positive() {
			out.TargetTotalHeight = Length{}
		}
		if out.IncludesInsets() {
			out.TargetIncludesPadding = nil
		}
	}

	if !out.RowHeight.Set || out.RowHeight.Px == DefaultRowHeight {
		out.RowHeight = Length{}
	}
	if !out.ActionsButtonWidth.Positive() {
		out.ActionsButtonWidth = Length{}
	}

	for i := range out.Items {
		row := &out.Items[i]
		row.Entity = strings.TrimSpace(row.Entity)
		row.Name = strings.TrimSpace(row.Name)
		row.NavigationPath = strings.TrimSpace(row.NavigationPath)
		row.FontSize = strings.TrimSpace(row.FontSize)
		if row.OnAction.IsZero() {
			row.OnAction = nil
		}
		if row.OffAction.IsZero() {
			row.OffAction = nil
		}
		if row.TapAction.IsZero() {
			row.TapAction = nil
		}
	}

	return out
}

// CleanDashboard cleans every view.
func CleanDashboard(d Dashboard) Dashboard {
	out := Dashboard{Views: make([]View, len(d.Views))}
	for i, v := range d.Views {
		out.Views[i] = View{Path: v.Path, Title: v.Title, Card: Clean(v.Card)}
	}
	return out
}
