package apply

import "context"

// Value applies one scalar setting addressed by its dotted path. Paths
// without a registered handler are skipped; new scalar settings hook in by
// registering a handler in New.
func (a *Applier) Value(ctx context.Context, path, value string) Result {
	a.log.Debug("scalar value changed", "path", path, "value", value)

	fn, ok := a.scalars[path]
	if !ok {
		return Skipped("unhandled path " + path)
	}
	return fn(ctx, value)
}

// setHostname is registered for system.hostname but deliberately applies
// nothing. TODO: route through hostnamectl once it applies names reliably
// on the supported images.
func (a *Applier) setHostname(ctx context.Context, value string) Result {
	a.log.Info("hostname change requested but disabled", "hostname", value)
	return Skipped("hostname changes are disabled")
}
