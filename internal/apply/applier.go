package apply

import (
	"context"
	"fmt"
	"log/slog"
	"os/user"

	"github.com/metrolinq/hostcfgd/internal/buildinfo"
	"github.com/metrolinq/hostcfgd/internal/config"
	"github.com/metrolinq/hostcfgd/internal/system"
)

// Applier holds the shared dependencies of all domain appliers.
type Applier struct {
	cfg config.Settings
	fs  system.FileSystem
	run *Runner
	log *slog.Logger

	// lookupUser resolves an account name in the OS account database.
	// Swapped out in tests.
	lookupUser func(name string) (*user.User, error)

	// scalars maps dotted setting paths to their handlers.
	scalars map[string]func(ctx context.Context, value string) Result
}

// New returns an Applier writing through fs and executing through run.
func New(cfg config.Settings, fs system.FileSystem, run *Runner, log *slog.Logger) *Applier {
	a := &Applier{
		cfg:        cfg,
		fs:         fs,
		run:        run,
		log:        log,
		lookupUser: user.Lookup,
	}
	a.scalars = map[string]func(ctx context.Context, value string) Result{
		"system.hostname": a.setHostname,
	}
	return a
}

// header is the first line of every generated file, identifying the
// generator build that produced it.
func header() string {
	return fmt.Sprintf("# AUTOGENERATED BY %s\n", buildinfo.Ident())
}
