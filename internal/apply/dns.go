package apply

import (
	"context"
	"strings"

	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

// DNS regenerates the resolver configuration and reloads the resolution
// service. Server and search-domain order is preserved from the snapshot;
// the resolver treats it as preference order.
func (a *Applier) DNS(ctx context.Context, cfg snapshot.DNSConfig) Result {
	var b strings.Builder
	b.WriteString(header())
	b.WriteString("[Resolve]\nDNS =")
	for _, server := range cfg.Servers {
		b.WriteByte(' ')
		b.WriteString(server)
	}
	b.WriteString("\nDomains =")
	for _, domain := range cfg.SearchDomains {
		b.WriteByte(' ')
		b.WriteString(domain)
	}
	b.WriteByte('\n')

	if err := a.fs.WriteFile(a.cfg.ResolvedConf, []byte(b.String()), 0o644); err != nil {
		a.log.Error("writing resolver config", "path", a.cfg.ResolvedConf, "error", err)
		return Failedf("writing %s: %v", a.cfg.ResolvedConf, err)
	}

	a.run.Run(ctx, "systemctl", "reload-or-restart", a.cfg.ResolveService)

	return Applied()
}
