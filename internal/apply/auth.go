package apply

import (
	"context"
	"fmt"

	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

// Auth applies per-user authentication state. Each user's key list is
// delegated to SSHKeys independently: one user's skip or failure never
// blocks the remaining users. The aggregate result is Applied only when
// every user applied; otherwise the first non-applied outcome is surfaced
// while processing continues.
//
// Passwords are not applied to the OS by this subsystem; they are carried
// opaque and traced in the per-user log line below.
func (a *Applier) Auth(ctx context.Context, cfg snapshot.AuthConfig) Result {
	a.log.Debug("applying authentication", "users", len(cfg.Users))

	result := Applied()
	for _, u := range cfg.Users {
		a.log.Info("user", "name", u.Name, "password", u.Password, "ssh_keys", len(u.SSHKeys))

		r := a.SSHKeys(ctx, u.Name, u.SSHKeys)
		if r.Status != StatusApplied && result.Status == StatusApplied {
			result = Result{Status: r.Status, Reason: fmt.Sprintf("user %q: %s", u.Name, r.Reason)}
		}
	}

	return result
}
