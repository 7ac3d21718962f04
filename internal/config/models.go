package config

import "time"

// Settings represents the application settings file.
// Card layouts live in their own files; this only remembers servers and
// preferences between runs.
type Settings struct {
	Version     int                `yaml:"version"`
	Servers     map[string]*Server `yaml:"servers,omitempty"`     // Keyed by installation UUID, or URL when unknown
	LastServer  string             `yaml:"last_server,omitempty"` // Key of the last server connected to
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Server represents a Home Assistant instance seen before.
type Server struct {
	Name     string    `yaml:"name,omitempty"`      // Location name (e.g., "Home")
	URL      string    `yaml:"url"`                 // Base URL used to connect
	Version  string    `yaml:"version,omitempty"`   // Last reported Home Assistant version
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
	// Access tokens are NEVER stored in the settings file
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool    `yaml:"auto_discover"`            // Scan with mDNS when no URL is known
	DiscoverTimeout int     `yaml:"discover_timeout"`         // mDNS discovery timeout in seconds
	CardPath        string  `yaml:"card_path,omitempty"`      // Card file used when --config is not given
	CellWidthPx     float64 `yaml:"cell_width_px,omitempty"`  // Pixels per terminal column
	CellHeightPx    float64 `yaml:"cell_height_px,omitempty"` // Pixels per terminal line
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:     1,
		Servers:     make(map[string]*Server),
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 5,
	}
}

// GetServer retrieves a server by key.
// Returns nil if the server doesn't exist.
func (s *Settings) GetServer(key string) *Server {
	return s.Servers[key]
}

// EnsureServer ensures a server entry exists and returns it.
func (s *Settings) EnsureServer(key string) *Server {
	if s.Servers == nil {
		s.Servers = make(map[string]*Server)
	}
	if srv, exists := s.Servers[key]; exists {
		return srv
	}
	srv := &Server{}
	s.Servers[key] = srv
	return srv
}

// RememberServer records a successful connection and makes it the default.
// key is the installation UUID when known, otherwise the URL.
func (s *Settings) RememberServer(key, name, url, version string) {
	if key == "" {
		key = url
	}
	srv := s.EnsureServer(key)
	if name != "" {
		srv.Name = name
	}
	if version != "" {
		srv.Version = version
	}
	srv.URL = url
	srv.LastSeen = time.Now()
	s.LastServer = key
}

// LastURL returns the URL of the last server connected to, or "".
func (s *Settings) LastURL() string {
	if srv := s.GetServer(s.LastServer); srv != nil {
		return srv.URL
	}
	return ""
}
