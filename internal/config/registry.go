package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// Global settings instance (loaded lazily)
	globalSettings     *Settings
	globalSettingsOnce sync.Once
	globalSettingsErr  error
)

// LoadSettings loads the settings file from the config directory.
// If the file doesn't exist, returns default settings.
// Thread-safe - multiple calls will return the same instance.
func LoadSettings() (*Settings, error) {
	globalSettingsOnce.Do(func() {
		path, err := GetSettingsPath()
		if err != nil {
			globalSettingsErr = fmt.Errorf("failed to get settings path: %w", err)
			return
		}
		globalSettings, globalSettingsErr = LoadSettingsFile(path)
	})
	return globalSettings, globalSettingsErr
}

// LoadSettingsFile reads settings from path. A missing file yields defaults.
func LoadSettingsFile(path string) (*Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if settings.Version != 1 {
		return nil, fmt.Errorf("unsupported settings version: %d (expected 1)", settings.Version)
	}

	// Ensure maps are initialized
	if settings.Servers == nil {
		settings.Servers = make(map[string]*Server)
	}
	if settings.Preferences == nil {
		settings.Preferences = defaultPreferences()
	}

	return &settings, nil
}

// Save saves the settings to the config directory.
func (s *Settings) Save() error {
	path, err := GetSettingsPath()
	if err != nil {
		return fmt.Errorf("failed to get settings path: %w", err)
	}
	return s.SaveTo(path)
}

// SaveTo writes the settings to path atomically.
func (s *Settings) SaveTo(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	header := []byte(`# lightstack settings
# Servers seen before and display preferences.
#
# Security Note: Home Assistant access tokens are NEVER stored in this file.
# Pass them with --token or LIGHTSTACK_TOKEN.

`)
	return writeAtomic(path, append(header, data...), 0600)
}

// ReloadSettings reloads the settings from disk, discarding in-memory changes.
func ReloadSettings() (*Settings, error) {
	globalSettingsOnce = sync.Once{}
	return LoadSettings()
}
