package apply

import (
	"io"
	"log/slog"
	"testing"

	"github.com/metrolinq/hostcfgd/internal/config"
	"github.com/metrolinq/hostcfgd/internal/system"
)

// testSettings keeps test paths away from the real systemd layout so a
// misbehaving mock can never be mistaken for a live write.
func testSettings() config.Settings {
	settings := config.Defaults()
	settings.TimesyncConf = "/test/timesyncd.conf"
	settings.ResolvedConf = "/test/resolved.conf"
	settings.NetworkDir = "/test/network"
	settings.RootAuthorizedKeys = "/test/root/.ssh/authorized_keys"
	settings.ServiceAuthorizedKeys = "/test/netconf/authorized_keys"
	return settings
}

func newTestApplier(t *testing.T) (*Applier, *system.MockFS, *system.MockExecutor) {
	t.Helper()
	fs := system.NewMockFS()
	fs.MkdirAll("/test/network", 0o755)
	exec := system.NewMockExecutor()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(testSettings(), fs, NewRunner(exec, log), log)
	return a, fs, exec
}
