package card

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Length is a pixel quantity that may be left unset.
type Length struct {
	Px  float64
	Set bool
}

// Px returns a set Length.
func Px(v float64) Length {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Length{}
	}
	return Length{Px: v, Set: true}
}

// IsZero reports whether the length is unset. yaml.v3 uses it for omitempty.
func (l Length) IsZero() bool {
	return !l.Set
}

// Or returns the value, or def when unset.
func (l Length) Or(def float64) float64 {
	if !l.Set {
		return def
	}
	return l.Px
}

// Positive reports whether the length is set and greater than zero.
func (l Length) Positive() bool {
	return l.Set && l.Px > 0
}

// String formats the length the way it is written in configuration files.
func (l Length) String() string {
	if !l.Set {
		return ""
	}
	return strconv.FormatFloat(l.Px, 'f', -1, 64)
}

// ParseLength converts a decoded configuration value into a Length.
// Accepted forms: 350, 350.5, "350", "350px", "350 px". Anything else is unset.
func ParseLength(v any) Length {
	switch n := v.(type) {
	case nil:
		return Length{}
	case Length:
		return n
	case float64:
		return Px(n)
	case float32:
		return Px(float64(n))
	case int:
		return Px(float64(n))
	case int64:
		return Px(float64(n))
	case uint64:
		return Px(float64(n))
	case string:
		return parseLengthString(n)
	default:
		return parseLengthString(fmt.Sprint(n))
	}
}

func parseLengthString(s string) Length {
	s = strings.TrimSpace(s)
	if s == "" {
		return Length{}
	}
	if lower := strings.ToLower(s); strings.HasSuffix(lower, "px") {
		s = strings.TrimSpace(s[:len(s)-2])
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}
	}
	return Px(f)
}

// UnmarshalYAML accepts any scalar.
func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number, got %s", node.Line, nodeKindName(node.Kind))
	}
	*l = parseLengthString(node.Value)
	return nil
}

// MarshalYAML writes the bare number.
func (l Length) MarshalYAML() (interface{}, error) {
	if !l.Set {
		return nil, nil
	}
	return l.Px, nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (l *Length) UnmarshalTOML(v interface{}) error {
	*l = ParseLength(v)
	return nil
}

// MarshalText is used by the TOML encoder.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// MarshalJSON writes a number, or null when unset.
func (l Length) MarshalJSON() ([]byte, error) {
	if !l.Set {
		return []byte("null"), nil
	}
	return json.Marshal(l.Px)
}

// UnmarshalJSON accepts numbers and strings.
func (l *Length) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = ParseLength(v)
	return nil
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
