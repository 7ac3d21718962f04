package hass

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// State is a Home Assistant entity state object.
type State struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
}

// StateChange is a state_changed event. New is nil when the entity was removed.
type StateChange struct {
	EntityID string
	Old      *State
	New      *State
}

// FriendlyName returns the friendly_name attribute, or "" when absent.
func (s State) FriendlyName() string {
	if v, ok := s.Attributes["friendly_name"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// IsOn reports whether the state is exactly "on".
func (s State) IsOn() bool {
	return s.State == "on"
}

// Domain returns the entity domain, e.g. "light".
func (s State) Domain() string {
	if dot := strings.Index(s.EntityID, "."); dot > 0 {
		return s.EntityID[:dot]
	}
	return ""
}

// Attribute returns an attribute rendered as text, and whether it exists.
func (s State) Attribute(name string) (string, bool) {
	v, ok := s.Attributes[name]
	if !ok || v == nil {
		return "", ok
	}
	if t, ok := v.(string); ok {
		return t, true
	}
	return fmt.Sprint(v), true
}

// parseState reads a state object. ok is false when r is not an object
// with an entity_id.
func parseState(r gjson.Result) (State, bool) {
	if !r.IsObject() {
		return State{}, false
	}
	id := r.Get("entity_id").String()
	if id == "" {
		return State{}, false
	}

	st := State{
		EntityID:    id,
		State:       r.Get("state").String(),
		LastChanged: parseTime(r.Get("last_changed")),
		LastUpdated: parseTime(r.Get("last_updated")),
	}
	if attrs, ok := r.Get("attributes").Value().(map[string]any); ok {
		st.Attributes = attrs
	} else {
		st.Attributes = map[string]any{}
	}
	return st, true
}

func parseStates(r gjson.Result) []State {
	var states []State
	r.ForEach(func(_, value gjson.Result) bool {
		if st, ok := parseState(value); ok {
			states = append(states, st)
		}
		return true
	})
	return states
}

func parseStateChange(data gjson.Result) (StateChange, bool) {
	id := data.Get("entity_id").String()
	if id == "" {
		return StateChange{}, false
	}
	ch := StateChange{EntityID: id}
	if st, ok := parseState(data.Get("old_state")); ok {
		ch.Old = &st
	}
	if st, ok := parseState(data.Get("new_state")); ok {
		ch.New = &st
	}
	return ch, true
}

func parseTime(r gjson.Result) time.Time {
	if !r.Exists() {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, r.String())
	if err != nil {
		return time.Time{}
	}
	return t
}
