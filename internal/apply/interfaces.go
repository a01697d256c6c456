package apply

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

const networkFileSuffix = ".network"

// Interfaces regenerates the per-interface network config files. networkd
// cannot describe multiple interfaces in one file, so there is one file
// per interface, named after it.
//
// The whole directory of generated files is purged before anything is
// written — that purge is how interface removal is expressed, so it runs
// even for interfaces still present in the new snapshot. A write failure
// on any one file aborts the entire call: remaining interfaces are not
// processed and the final reload is skipped. On success the network-link
// service is reloaded once, covering all interfaces.
func (a *Applier) Interfaces(ctx context.Context, list snapshot.InterfaceList) Result {
	a.purgeNetworkDir()

	for _, iface := range list.Interfaces {
		// Interface names arrive over the comm channel; SecureJoin pins
		// the generated file inside the network directory.
		path, err := securejoin.SecureJoin(a.cfg.NetworkDir, iface.Name+networkFileSuffix)
		if err != nil {
			a.log.Error("resolving network config path", "interface", iface.Name, "error", err)
			return Failedf("resolving path for %q: %v", iface.Name, err)
		}

		content := renderNetworkFile(iface)
		if err := a.fs.WriteFile(path, []byte(content), 0o644); err != nil {
			a.log.Error("writing network config", "interface", iface.Name, "path", path, "error", err)
			return Failedf("writing %s: %v", path, err)
		}
	}

	a.run.Run(ctx, "systemctl", "reload-or-restart", a.cfg.NetworkService)

	return Applied()
}

// purgeNetworkDir removes every generated .network file. Best effort, like
// the rm -f it replaces: individual removal failures are logged and the
// applier carries on.
func (a *Applier) purgeNetworkDir() {
	entries, err := a.fs.ReadDir(a.cfg.NetworkDir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := a.fs.MkdirAll(a.cfg.NetworkDir, 0o755); err != nil {
				a.log.Error("creating network directory", "path", a.cfg.NetworkDir, "error", err)
			}
			return
		}
		a.log.Error("reading network directory", "path", a.cfg.NetworkDir, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), networkFileSuffix) {
			continue
		}
		path := filepath.Join(a.cfg.NetworkDir, entry.Name())
		if err := a.fs.Remove(path); err != nil {
			a.log.Warn("removing stale network config", "path", path, "error", err)
		}
	}
}

// renderNetworkFile produces the networkd unit for one interface.
func renderNetworkFile(iface snapshot.Interface) string {
	var b strings.Builder
	b.WriteString(header())

	fmt.Fprintf(&b, "[Match]\nName=%s\n", iface.Name)

	if mtu := iface.EffectiveMTU(); mtu > 0 {
		fmt.Fprintf(&b, "[Link]\nMTUBytes=%d\n", mtu)
	}

	fmt.Fprintf(&b, "[Network]\nDHCP=%s\n", yesNo(iface.IPv4.DHCP))

	for _, addr := range iface.IPv4.Addresses {
		fmt.Fprintf(&b, "Address=%s/%s\n", addr.Address, addr.Prefix)
	}
	for _, addr := range iface.IPv6.Addresses {
		fmt.Fprintf(&b, "Address=%s/%s\n", addr.Address, addr.Prefix)
	}

	if forward, ok := forwardingValue(iface.IPv4.Forwarding, iface.IPv6.Forwarding); ok {
		fmt.Fprintf(&b, "IPForward=%s\n", forward)
	}

	return b.String()
}

// forwardingValue derives the IPForward= value from the two per-family
// flags. The line is omitted entirely when neither family forwards.
func forwardingValue(ipv4, ipv6 bool) (string, bool) {
	switch {
	case ipv4 && ipv6:
		return "yes", true
	case ipv4:
		return "ipv4", true
	case ipv6:
		return "ipv6", true
	default:
		return "", false
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
