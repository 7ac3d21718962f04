package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type Home Assistant advertises
	ServiceType = "_home-assistant._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default Home Assistant HTTP port
	DefaultPort = 8123
)

// Scanner handles mDNS discovery of Home Assistant servers
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration

	// Logger receives discovery logs
	Logger *zap.Logger
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		Logger:  zap.NewNop(),
	}
}

// Scan discovers all Home Assistant servers on the local network.
// Instances announcing the same UUID are reported once.
func (s *Scanner) Scan(ctx context.Context) ([]*Instance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan []*Instance, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// zeroconf closes entries when the context ends
	go func() {
		seen := make(map[string]bool)
		var instances []*Instance
		for entry := range entries {
			inst := s.parseServiceEntry(entry)
			if inst == nil {
				continue
			}
			key := instanceKey(inst)
			if seen[key] {
				continue
			}
			seen[key] = true
			s.logger().Debug("Found Home Assistant",
				zap.String("name", inst.Name),
				zap.String("url", inst.URL()))
			instances = append(instances, inst)
		}
		collected <- instances
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	instances := <-collected
	sort.Slice(instances, func(a, b int) bool {
		return instances[a].Name < instances[b].Name
	})
	return instances, nil
}

// First returns the first instance that answers, or an error after Timeout.
func (s *Scanner) First(ctx context.Context) (*Instance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Instance, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			if inst := s.parseServiceEntry(entry); inst != nil {
				select {
				case found <- inst:
				default:
				}
				cancel() // Found one, stop browsing
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case inst := <-found:
		return inst, nil
	case <-ctx.Done():
		select {
		case inst := <-found:
			return inst, nil
		default:
		}
		return nil, fmt.Errorf("no Home Assistant server found within %s", s.Timeout)
	}
}

func (s *Scanner) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// parseServiceEntry converts a zeroconf service entry to an Instance.
// Returns nil if the entry has no usable address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Instance {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	name := metadata["location_name"]
	if name == "" {
		name = entry.Instance
	}

	return &Instance{
		Name:         name,
		UUID:         metadata["uuid"],
		Version:      metadata["version"],
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

func instanceKey(inst *Instance) string {
	if inst.UUID != "" {
		return inst.UUID
	}
	return inst.AddressURL()
}

// Scan is a convenience function to scan with a custom timeout
func Scan(ctx context.Context, timeout time.Duration) ([]*Instance, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.Scan(ctx)
}
