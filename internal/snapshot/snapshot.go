// Package snapshot defines the typed configuration snapshots delivered by
// the comm channel. Each snapshot is a complete, self-contained description
// of one configuration domain's desired state; appliers replace prior state
// wholesale and never diff against it.
//
// All sequence fields are order-significant: resolver preference, key file
// line order, and per-interface file generation all follow snapshot order.
package snapshot

// NTPConfig describes desired time-sync state.
type NTPConfig struct {
	Enabled bool     `cbor:"enabled" yaml:"enabled"`
	Servers []string `cbor:"servers" yaml:"servers"`
}

// DNSConfig describes desired name-resolution state.
type DNSConfig struct {
	SearchDomains []string `cbor:"search" yaml:"search"`
	Servers       []string `cbor:"servers" yaml:"servers"`
}

// SSHKey is one public-key line. The effector does not validate the
// algorithm/data pair; malformed entries are written verbatim.
type SSHKey struct {
	Algorithm string `cbor:"algorithm" yaml:"algorithm"`
	Data      string `cbor:"data" yaml:"data"`
	Comment   string `cbor:"comment" yaml:"comment"`
}

// User is one account in an authentication snapshot. Password is opaque
// here: this subsystem never applies it to the OS.
type User struct {
	Name     string   `cbor:"name" yaml:"name"`
	Password string   `cbor:"password" yaml:"password"`
	SSHKeys  []SSHKey `cbor:"ssh_keys" yaml:"ssh_keys"`
}

// AuthConfig describes desired per-user authentication state. User names
// are unique within one snapshot.
type AuthConfig struct {
	Users []User `cbor:"users" yaml:"users"`
}

// IPAddress is a representation-only address/prefix pair; no numeric
// validation is performed by the effector.
type IPAddress struct {
	Address string `cbor:"address" yaml:"address"`
	Prefix  string `cbor:"prefix" yaml:"prefix"`
}

// Neighbor is a static address to link-layer-address binding, installed
// as a permanent neighbor-table entry.
type Neighbor struct {
	Address          string `cbor:"address" yaml:"address"`
	LinkLayerAddress string `cbor:"lladdr" yaml:"lladdr"`
}

// AddressFamily holds the per-family portion of an interface snapshot.
// MTU 0 means "unset". DHCP is only meaningful for IPv4.
type AddressFamily struct {
	MTU        int         `cbor:"mtu" yaml:"mtu"`
	Forwarding bool        `cbor:"forwarding" yaml:"forwarding"`
	DHCP       bool        `cbor:"dhcp" yaml:"dhcp"`
	Addresses  []IPAddress `cbor:"addresses" yaml:"addresses"`
	Neighbors  []Neighbor  `cbor:"neighbors" yaml:"neighbors"`
}

// Interface is the desired state of one network interface.
type Interface struct {
	Name string        `cbor:"name" yaml:"name"`
	IPv4 AddressFamily `cbor:"ipv4" yaml:"ipv4"`
	IPv6 AddressFamily `cbor:"ipv6" yaml:"ipv6"`
}

// EffectiveMTU is the larger of the two per-family MTUs; 0 means no MTU
// was requested by either family.
func (i Interface) EffectiveMTU() int {
	if i.IPv4.MTU > i.IPv6.MTU {
		return i.IPv4.MTU
	}
	return i.IPv6.MTU
}

// InterfaceList is a full-replacement interface snapshot: applying it
// discards every previously generated per-interface file, including files
// for interfaces no longer present.
type InterfaceList struct {
	Interfaces []Interface `cbor:"interfaces" yaml:"interfaces"`
}

// ScalarValue is a single dotted-path setting, e.g. "system.hostname".
type ScalarValue struct {
	Path  string `cbor:"path" yaml:"path"`
	Value string `cbor:"value" yaml:"value"`
}

// Document groups optional snapshots for every domain. The apply
// subcommand reads one Document from YAML and submits each present domain
// to the daemon in the order the fields are declared.
type Document struct {
	NTP        *NTPConfig     `cbor:"ntp,omitempty" yaml:"ntp"`
	DNS        *DNSConfig     `cbor:"dns,omitempty" yaml:"dns"`
	Auth       *AuthConfig    `cbor:"auth,omitempty" yaml:"auth"`
	Interfaces *InterfaceList `cbor:"interfaces,omitempty" yaml:"interfaces"`
	Neighbors  *InterfaceList `cbor:"neighbors,omitempty" yaml:"neighbors"`
	Values     []ScalarValue  `cbor:"values,omitempty" yaml:"values"`
}
