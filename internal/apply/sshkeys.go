package apply

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

// SSHKeys fully replaces the authorized_keys file for one account. The
// target path is a three-way policy: the superuser and the well-known
// service account use fixed paths; any other account resolves through the
// OS account database. A failed lookup, a missing home directory, or an
// empty key list in that last case is a silent skip, not an error.
//
// Key lines are written verbatim in snapshot order; syntactic validation
// is not this component's responsibility. A write failure leaves any
// previously existing file untouched.
func (a *Applier) SSHKeys(ctx context.Context, account string, keys []snapshot.SSHKey) Result {
	var path string
	switch account {
	case "root":
		path = a.cfg.RootAuthorizedKeys
	case a.cfg.ServiceAccount:
		path = a.cfg.ServiceAuthorizedKeys
	default:
		u, err := a.lookupUser(account)
		if err != nil {
			a.log.Debug("account lookup failed, skipping keys", "account", account, "error", err)
			return Skipped(fmt.Sprintf("unknown account %q", account))
		}
		if u.HomeDir == "" {
			return Skipped(fmt.Sprintf("account %q has no home directory", account))
		}
		if len(keys) == 0 {
			return Skipped(fmt.Sprintf("no keys for account %q", account))
		}

		// The account name came in over the comm channel; SecureJoin keeps
		// a hostile home-directory entry from escaping itself.
		sshDir, err := securejoin.SecureJoin(u.HomeDir, ".ssh")
		if err != nil {
			a.log.Error("resolving .ssh directory", "account", account, "error", err)
			return Failedf("resolving .ssh directory for %q: %v", account, err)
		}
		if err := a.fs.MkdirAll(sshDir, 0o700); err != nil {
			a.log.Error("creating .ssh directory", "path", sshDir, "error", err)
			return Failedf("creating %s: %v", sshDir, err)
		}
		path = filepath.Join(sshDir, "authorized_keys")
	}

	var b strings.Builder
	for _, key := range keys {
		a.log.Info("authorized key", "account", account,
			"algorithm", key.Algorithm, "data", key.Data, "comment", key.Comment)
		fmt.Fprintf(&b, "%s %s %s\n", key.Algorithm, key.Data, key.Comment)
	}

	if err := a.fs.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		a.log.Error("writing authorized keys", "account", account, "path", path, "error", err)
		return Failedf("writing %s: %v", path, err)
	}

	return Applied()
}
