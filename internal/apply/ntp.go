package apply

import (
	"context"
	"strings"

	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

// NTP regenerates the timesyncd configuration from scratch and cycles the
// time-sync service. The file is always rebuilt even when its content is
// unchanged: correctness-by-reconstruction over minimizing churn, at the
// cost of a momentary service restart.
func (a *Applier) NTP(ctx context.Context, cfg snapshot.NTPConfig) Result {
	var b strings.Builder
	b.WriteString(header())
	b.WriteString("[Time]\nNTP =")
	for _, server := range cfg.Servers {
		b.WriteByte(' ')
		b.WriteString(server)
	}
	b.WriteByte('\n')

	if err := a.fs.WriteFile(a.cfg.TimesyncConf, []byte(b.String()), 0o644); err != nil {
		a.log.Error("writing timesync config", "path", a.cfg.TimesyncConf, "error", err)
		return Failedf("writing %s: %v", a.cfg.TimesyncConf, err)
	}

	// The service may already be running with the old file; stop it so the
	// enable toggle below brings it up on the new one.
	a.run.Run(ctx, "systemctl", "stop", a.cfg.TimesyncService)
	a.run.Run(ctx, "timedatectl", "set-ntp", boolArg(cfg.Enabled))

	return Applied()
}

// boolArg renders a flag the way timedatectl expects it: an integer.
func boolArg(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
