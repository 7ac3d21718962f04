package card

import "strings"

// ActionKind discriminates ActionSpec.
type ActionKind string

const (
	ActionNone        ActionKind = "none"
	ActionMoreInfo    ActionKind = "more-info"
	ActionNavigate    ActionKind = "navigate"
	ActionURL         ActionKind = "url"
	ActionToggle      ActionKind = "toggle"
	ActionCallService ActionKind = "call-service"
	// ActionUnknown covers action names this version does not know about.
	ActionUnknown ActionKind = "unknown"
)

// ActionSpec is a Home Assistant style ui_action attached to a row.
// Only the fields relevant to Kind() are read.
type ActionSpec struct {
	Action         string         `yaml:"action" toml:"action" json:"action"`
	Entity         string         `yaml:"entity,omitempty" toml:"entity,omitempty" json:"entity,omitempty"`
	NavigationPath string         `yaml:"navigation_path,omitempty" toml:"navigation_path,omitempty" json:"navigation_path,omitempty"`
	URLPath        string         `yaml:"url_path,omitempty" toml:"url_path,omitempty" json:"url_path,omitempty"`
	Service        string         `yaml:"service,omitempty" toml:"service,omitempty" json:"service,omitempty"`
	ServiceData    map[string]any `yaml:"service_data,omitempty" toml:"service_data,omitempty" json:"service_data,omitempty"`
	Data           map[string]any `yaml:"data,omitempty" toml:"data,omitempty" json:"data,omitempty"`
	Target         map[string]any `yaml:"target,omitempty" toml:"target,omitempty" json:"target,omitempty"`
}

// Kind returns the discriminator. A nil spec or an empty action is ActionNone.
func (a *ActionSpec) Kind() ActionKind {
	if a == nil {
		return ActionNone
	}
	switch k := ActionKind(strings.ToLower(strings.TrimSpace(a.Action))); k {
	case "", ActionNone:
		return ActionNone
	case ActionMoreInfo, ActionNavigate, ActionURL, ActionToggle, ActionCallService:
		return k
	default:
		return ActionUnknown
	}
}

// EntityOr returns the entity override, or fallback.
func (a *ActionSpec) EntityOr(fallback string) string {
	if a != nil {
		if e := strings.TrimSpace(a.Entity); e != "" {
			return e
		}
	}
	return fallback
}

// Path returns the trimmed navigation path.
func (a *ActionSpec) Path() string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(a.NavigationPath)
}

// Payload returns a copy of service_data, falling back to data.
func (a *ActionSpec) Payload() map[string]any {
	src := a.ServiceData
	if src == nil {
		src = a.Data
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// ParseService splits "domain.service". It fails when there is no separator
// or the domain is empty.
func ParseService(s string) (domain, service string, ok bool) {
	s = strings.TrimSpace(s)
	dot := strings.Index(s, ".")
	if dot <= 0 {
		return "", "", false
	}
	return s[:dot], s[dot+1:], true
}

// IsZero reports whether the spec carries nothing at all.
func (a *ActionSpec) IsZero() bool {
	return a == nil || (strings.TrimSpace(a.Action) == "" &&
		a.Entity == "" && a.NavigationPath == "" && a.URLPath == "" && a.Service == "" &&
		len(a.ServiceData) == 0 && len(a.Data) == 0 && len(a.Target) == 0)
}
