package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/activhome/lightstack/internal/card"
)

// Format is a card file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from the file extension. Anything that is not
// .toml is read as YAML, which also covers JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// ParseFormat parses a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want yaml or toml)", s)
	}
}

// document is the on-disk shape: either a bare card or a list of views.
type document struct {
	Views           []card.View `yaml:"views,omitempty" toml:"views,omitempty"`
	card.CardConfig `yaml:",inline"`
}

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// Load reads and normalizes a card file.
func Load(path string) (*card.Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card file: %w", err)
	}
	d, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and normalizes a card document.
func Parse(data []byte, format Format) (*card.Dashboard, error) {
	var doc document

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	var d card.Dashboard
	switch {
	case len(doc.Views) > 0:
		if len(doc.Items) > 0 {
			return nil, card.NewConfigError("items", "a file with views cannot also have top-level items")
		}
		d.Views = doc.Views
	default:
		d.Views = []card.View{{Path: "/", Card: doc.CardConfig}}
	}

	if err := card.NormalizeDashboard(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Marshal encodes a dashboard with defaults stripped. A single unnamed "/"
// view is written as a bare card.
func Marshal(d *card.Dashboard, format Format) ([]byte, error) {
	clean := card.CleanDashboard(*d)

	var doc any
	if clean.Single() {
		doc = clean.Views[0].Card
	} else {
		doc = struct {
			Views []card.View `yaml:"views" toml:"views"`
		}{clean.Views}
	}

	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to marshal TOML: %w", err)
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Save writes the dashboard to path atomically, in the format implied by
// its extension.
func Save(path string, d *card.Dashboard) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	data, err := Marshal(d, FormatFor(path))
	if err != nil {
		return err
	}
	return writeAtomic(path, data, 0644)
}

// ResolveCardPath returns path, or the default card path when path is empty.
func ResolveCardPath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return path, nil
	}
	return GetCardPath()
}

// ErrNoCard is returned by LoadOrExample when no card file exists.
var ErrNoCard = errors.New("no card file")

// Example returns a starter card for entities.
func Example(entities ...string) *card.Dashboard {
	if len(entities) == 0 {
		entities = []string{"light.living_room"}
	}
	cfg := card.CardConfig{Type: card.CardType}
	for _, e := range entities {
		cfg.Items = append(cfg.Items, card.RowConfig{Entity: e})
	}
	d := &card.Dashboard{Views: []card.View{{Path: "/", Card: cfg}}}
	_ = card.NormalizeDashboard(d)
	return d
}

// LoadOrExample loads path. When the file does not exist it returns a
// starter card together with ErrNoCard.
func LoadOrExample(path string) (*card.Dashboard, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Example(), ErrNoCard
	}
	return Load(path)
}
