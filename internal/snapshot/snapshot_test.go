package snapshot

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEffectiveMTU(t *testing.T) {
	tests := []struct {
		v4, v6, want int
	}{
		{1500, 1400, 1500},
		{1280, 9000, 9000},
		{0, 0, 0},
		{0, 1500, 1500},
	}
	for _, tt := range tests {
		iface := Interface{IPv4: AddressFamily{MTU: tt.v4}, IPv6: AddressFamily{MTU: tt.v6}}
		if got := iface.EffectiveMTU(); got != tt.want {
			t.Errorf("EffectiveMTU(%d, %d) = %d, want %d", tt.v4, tt.v6, got, tt.want)
		}
	}
}

func TestDocument_YAML(t *testing.T) {
	doc := `
ntp:
  enabled: true
  servers: [0.pool.ntp.org, 1.pool.ntp.org]
interfaces:
  interfaces:
    - name: eth0
      ipv4:
        mtu: 1500
        dhcp: true
        addresses:
          - {address: 10.0.0.1, prefix: "24"}
      ipv6:
        forwarding: true
values:
  - {path: system.hostname, value: edge-router-7}
`
	var d Document
	if err := yaml.Unmarshal([]byte(doc), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if d.NTP == nil || !d.NTP.Enabled || len(d.NTP.Servers) != 2 {
		t.Errorf("ntp = %+v", d.NTP)
	}
	if d.DNS != nil {
		t.Error("absent domain should stay nil")
	}
	if d.Interfaces == nil || len(d.Interfaces.Interfaces) != 1 {
		t.Fatalf("interfaces = %+v", d.Interfaces)
	}
	iface := d.Interfaces.Interfaces[0]
	if iface.Name != "eth0" || iface.IPv4.MTU != 1500 || !iface.IPv4.DHCP || !iface.IPv6.Forwarding {
		t.Errorf("iface = %+v", iface)
	}
	if len(iface.IPv4.Addresses) != 1 || iface.IPv4.Addresses[0].Prefix != "24" {
		t.Errorf("addresses = %+v", iface.IPv4.Addresses)
	}
	if len(d.Values) != 1 || d.Values[0].Path != "system.hostname" {
		t.Errorf("values = %+v", d.Values)
	}
}
