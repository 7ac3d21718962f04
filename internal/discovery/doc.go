// Package discovery finds Home Assistant servers on the local network.
//
// Home Assistant advertises itself over multicast DNS as "_home-assistant._tcp".
// The TXT records carry the location name, the installation UUID, the version
// and the configured URLs:
//
//	location_name=Home
//	uuid=0123456789abcdef0123456789abcdef
//	version=2025.10.1
//	internal_url=http://192.168.1.20:8123
//	base_url=http://192.168.1.20:8123
//
// # Usage Example
//
//	instances, err := discovery.Scan(ctx, 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	for _, inst := range instances {
//	    fmt.Println(inst)
//	}
//
// Instance.URL prefers the advertised internal_url over the resolved address,
// so a server behind a name or TLS terminator keeps working.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
