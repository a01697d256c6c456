// Package config holds hostcfgd's daemon settings: where generated files
// live, which service units get reloaded, and where the comm socket
// listens. Precedence is defaults < TOML file < HOSTCFGD_* environment
// variables; command-line flags override all three in cmd.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v9"
)

// DefaultConfigPath is consulted when --config is not given; a missing
// file there is not an error.
const DefaultConfigPath = "/etc/hostcfgd/config.toml"

// Settings is the daemon configuration. Every field has a working
// default; the TOML file and environment only need to name what differs.
type Settings struct {
	// SocketPath is the unix socket the comm channel listens on.
	SocketPath string `toml:"socket_path" env:"HOSTCFGD_SOCKET"`

	// TimesyncConf is the regenerated systemd-timesyncd configuration file.
	TimesyncConf string `toml:"timesync_conf" env:"HOSTCFGD_TIMESYNC_CONF"`

	// ResolvedConf is the regenerated systemd-resolved configuration file.
	ResolvedConf string `toml:"resolved_conf" env:"HOSTCFGD_RESOLVED_CONF"`

	// NetworkDir holds the generated per-interface .network files. Every
	// .network file in it is purged on each interface snapshot.
	NetworkDir string `toml:"network_dir" env:"HOSTCFGD_NETWORK_DIR"`

	// RootAuthorizedKeys is the fixed authorized_keys path for the
	// superuser account.
	RootAuthorizedKeys string `toml:"root_authorized_keys" env:"HOSTCFGD_ROOT_AUTHORIZED_KEYS"`

	// ServiceAccount is the well-known service account whose keys land at
	// ServiceAuthorizedKeys instead of a home directory.
	ServiceAccount        string `toml:"service_account" env:"HOSTCFGD_SERVICE_ACCOUNT"`
	ServiceAuthorizedKeys string `toml:"service_authorized_keys" env:"HOSTCFGD_SERVICE_AUTHORIZED_KEYS"`

	// Service unit names passed to systemctl.
	TimesyncService string `toml:"timesync_service" env:"HOSTCFGD_TIMESYNC_SERVICE"`
	ResolveService  string `toml:"resolve_service" env:"HOSTCFGD_RESOLVE_SERVICE"`
	NetworkService  string `toml:"network_service" env:"HOSTCFGD_NETWORK_SERVICE"`
}

// Defaults returns the stock systemd layout.
func Defaults() Settings {
	return Settings{
		SocketPath:            "/run/hostcfgd.sock",
		TimesyncConf:          "/etc/systemd/timesyncd.conf",
		ResolvedConf:          "/etc/systemd/resolved.conf",
		NetworkDir:            "/etc/systemd/network",
		RootAuthorizedKeys:    "/home/root/.ssh/authorized_keys",
		ServiceAccount:        "netconfd",
		ServiceAuthorizedKeys: "/etc/netconf/authorized_keys",
		TimesyncService:       "systemd-timesyncd",
		ResolveService:        "systemd-resolved",
		NetworkService:        "systemd-networkd",
	}
}

// Load builds Settings from defaults, the TOML file at path, and the
// environment. When explicit is false a missing file is tolerated (the
// default path need not exist); when true it is an error.
func Load(path string, explicit bool) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Defaults only.
	default:
		return Settings{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := env.Parse(&settings); err != nil {
		return Settings{}, fmt.Errorf("reading environment: %w", err)
	}

	return settings, nil
}
