// Package buildinfo exposes the version identity stamped into the binary
// at build time (via -ldflags). The generator header written into every
// regenerated config file derives from it, so operators can tell which
// hostcfgd build produced a given file.
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Ident is the short generator identity, e.g. "hostcfgd v1.2.0".
func Ident() string {
	return fmt.Sprintf("hostcfgd v%s", Version)
}

// String returns the full build description for the startup log line.
func String() string {
	return fmt.Sprintf("hostcfgd %s (commit=%s, date=%s)", Version, Commit, Date)
}
