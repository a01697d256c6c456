package apply

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/metrolinq/hostcfgd/internal/system"
)

// Runner executes external commands for the appliers. Every configuration
// value reaching a command travels as one element of the argument vector,
// never through a shell, so untrusted snapshot strings cannot inject
// commands.
//
// Run never fails its caller: a non-zero exit or an exec failure is logged
// with the command line and the appliers carry on. The command line in the
// log is shell-quoted so it can be pasted back into a shell verbatim.
type Runner struct {
	exec system.CommandExecutor
	log  *slog.Logger
}

// NewRunner returns a Runner executing through exec and logging to log.
func NewRunner(exec system.CommandExecutor, log *slog.Logger) *Runner {
	return &Runner{exec: exec, log: log}
}

// Run executes name with args and returns the exit status: 0 on success,
// the process exit code on a non-zero exit, -1 when the process could not
// be started at all. The command line is logged before execution and
// again, with the exit status and error string, after.
func (r *Runner) Run(ctx context.Context, name string, args ...string) int {
	line := shellquote.Join(append([]string{name}, args...)...)
	r.log.Info("exec", "cmd", line)

	output, err := r.exec.Execute(ctx, name, args...)

	rc := 0
	errStr := ""
	if err != nil {
		errStr = err.Error()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			rc = exitErr.ExitCode()
		} else {
			rc = -1
		}
	}

	r.log.Info("exec done", "cmd", line, "rc", rc, "error", errStr)
	if out := strings.TrimSpace(string(output)); out != "" {
		r.log.Debug("exec output", "cmd", line, "output", out)
	}

	return rc
}
