package apply

import (
	"context"

	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

// Neighbors rebuilds the permanent neighbor table: one system-wide flush
// of permanent entries, then one replace command per entry, IPv4 before
// IPv6, in snapshot order. There is no rollback across entries — a failed
// replace is logged by the Runner and the remaining entries still go in.
func (a *Applier) Neighbors(ctx context.Context, list snapshot.InterfaceList) Result {
	a.run.Run(ctx, "ip", "neigh", "flush", "nud", "permanent")

	for _, iface := range list.Interfaces {
		for _, n := range iface.IPv4.Neighbors {
			a.replaceNeighbor(ctx, n, iface.Name)
		}
		for _, n := range iface.IPv6.Neighbors {
			a.replaceNeighbor(ctx, n, iface.Name)
		}
	}

	return Applied()
}

func (a *Applier) replaceNeighbor(ctx context.Context, n snapshot.Neighbor, device string) {
	a.run.Run(ctx, "ip", "neigh", "replace", n.Address,
		"lladdr", n.LinkLayerAddress, "nud", "permanent", "dev", device)
}
