package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Instance represents a Home Assistant server found on the network
type Instance struct {
	// Name is the location name (e.g., "Home"), from the location_name TXT record
	Name string

	// UUID identifies the installation across address changes
	UUID string

	// Version is the Home Assistant version (e.g., "2025.10.1")
	Version string

	// Hostname is the mDNS hostname (e.g., "homeassistant.local.")
	Hostname string

	// IP is the address, IPv4 preferred
	IP string

	// Port is the HTTP port (typically 8123)
	Port int

	// Metadata contains all mDNS TXT record data
	// Common fields: "base_url", "internal_url", "external_url", "requires_api_password"
	Metadata map[string]string

	// DiscoveredAt is when the instance was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the instance
func (i *Instance) String() string {
	name := i.Name
	if name == "" {
		name = "Home Assistant"
	}
	if i.Version != "" {
		return fmt.Sprintf("%s %s at %s", name, i.Version, i.URL())
	}
	return fmt.Sprintf("%s at %s", name, i.URL())
}

// URL returns the best address to reach the instance: the advertised
// internal_url, then base_url, then the resolved IP and port.
func (i *Instance) URL() string {
	for _, key := range []string{"internal_url", "base_url"} {
		if u := strings.TrimRight(strings.TrimSpace(i.GetMetadata(key)), "/"); u != "" {
			return u
		}
	}
	return i.AddressURL()
}

// AddressURL returns http://ip:port, bracketing IPv6 addresses.
func (i *Instance) AddressURL() string {
	return "http://" + net.JoinHostPort(i.IP, strconv.Itoa(i.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
