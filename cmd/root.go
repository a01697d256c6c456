package cmd

import (
	"context"
	stderrors "errors"
	"net/netip"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/metrolinq/hostcfgd/internal/apply"
	"github.com/metrolinq/hostcfgd/internal/buildinfo"
	"github.com/metrolinq/hostcfgd/internal/comm"
	"github.com/metrolinq/hostcfgd/internal/config"
	"github.com/metrolinq/hostcfgd/internal/daemon"
	"github.com/metrolinq/hostcfgd/internal/errors"
	"github.com/metrolinq/hostcfgd/internal/logging"
	"github.com/metrolinq/hostcfgd/internal/system"
)

var (
	debug      bool
	jsonOutput bool
	remoteLog  string
	configPath string
	socketPath string
)

var rootCmd = &cobra.Command{
	Use:   "hostcfgd",
	Short: "Host network and authentication configuration effector",
	Long: `hostcfgd keeps the live OS in sync with configuration snapshots
delivered over a local socket. Each snapshot fully replaces one domain:

  - time sync      (systemd-timesyncd configuration)
  - name resolution (systemd-resolved configuration)
  - interfaces     (one systemd-networkd file per interface)
  - neighbor table (permanent ip-neigh entries)
  - SSH keys       (per-account authorized_keys files)

Generated files are rebuilt from scratch and the owning service is
reloaded or restarted afterwards.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	// Unknown option characters are tolerated rather than fatal; the
	// supervisor may pass flags from newer revisions.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE:               runDaemon,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = buildinfo.String()
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "x", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "log records as JSON")
	rootCmd.PersistentFlags().StringVarP(&remoteLog, "log", "l", "", "also write log to syslog at this IPv4 address")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "daemon settings file")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "comm channel socket path (overrides settings)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// setupLogging installs the log sink shared by the daemon and the apply
// subcommand. An invalid --log address is a fatal startup error.
func setupLogging() error {
	logging.Setup(debug, jsonOutput, os.Stderr)

	if remoteLog == "" {
		return nil
	}
	addr, err := netip.ParseAddr(remoteLog)
	if err != nil || !addr.Is4() {
		return errors.InvalidLogDestination(remoteLog)
	}
	if err := logging.SetRemote(addr, jsonOutput, os.Stderr); err != nil {
		return errors.Wrap(errors.ExitLogDestination, "remote log setup failed", err)
	}
	return nil
}

// loadSettings resolves daemon settings with flag overrides applied.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return config.Settings{}, errors.ConfigError(err)
	}
	if socketPath != "" {
		settings.SocketPath = socketPath
	}
	return settings, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return err
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	unlimitCoreDumps()

	logging.Info("startup", "build", buildinfo.String())

	log := logging.Logger()
	runner := apply.NewRunner(system.OSExecutor{}, log)
	appliers := apply.New(settings, system.OSFileSystem{}, runner, log)
	loop := daemon.NewLoop(log)
	server := comm.NewServer(settings.SocketPath, appliers, loop, log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx)
	}()

	runErr := loop.Run(ctx)
	cancel()

	if err := <-serveErr; err != nil && runErr == nil {
		return errors.SocketError(err)
	}
	if runErr != nil && !stderrors.Is(runErr, context.Canceled) {
		return runErr
	}

	logging.Info("shutdown complete")
	return nil
}

// unlimitCoreDumps lifts RLIMIT_CORE so a crashing daemon leaves a full
// core behind. Best effort.
func unlimitCoreDumps() {
	rlim := unix.Rlimit{Cur: unix.RLIM_INFINITY, Max: unix.RLIM_INFINITY}
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &rlim); err != nil {
		logging.Warn("raising core dump limit", "error", err)
	}
}
