// Package daemon owns hostcfgd's single-threaded event loop. All domain
// appliers execute on the loop goroutine: comm-channel handlers submit a
// closure and wait, so snapshot application is serialized against signal
// handling and against other snapshots by construction. A slow external
// command therefore stalls the loop for its duration — the accepted price
// for the guarantee that a config file is fully written and closed before
// its reload command runs.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/metrolinq/hostcfgd/internal/apply"
	"github.com/metrolinq/hostcfgd/internal/logging"
)

// State is the loop lifecycle state.
type State int32

const (
	// StateRunning accepts jobs and signals.
	StateRunning State = iota

	// StateShuttingDown is terminal: a termination signal was received
	// and the loop no longer accepts jobs.
	StateShuttingDown
)

// ErrShuttingDown rejects jobs submitted after a termination signal.
var ErrShuttingDown = errors.New("daemon is shutting down")

type job struct {
	name string
	id   string
	fn   func(ctx context.Context) apply.Result
	done chan apply.Result
}

// Loop is the event loop. Create with NewLoop, drive with Run, feed with
// Submit from any goroutine.
type Loop struct {
	log   *slog.Logger
	jobs  chan job
	sigs  chan os.Signal
	state atomic.Int32

	// stopped is closed when Run returns, releasing submitters.
	stopped chan struct{}

	// resetSignal restores the OS default disposition for a termination
	// signal after its first delivery, so a second delivery terminates
	// the process even if graceful shutdown is stuck. Injectable so tests
	// can observe the deregistration.
	resetSignal func(sig ...os.Signal)
}

// NewLoop returns a loop ready to Run.
func NewLoop(log *slog.Logger) *Loop {
	return &Loop{
		log:         log,
		jobs:        make(chan job),
		sigs:        make(chan os.Signal, 8),
		stopped:     make(chan struct{}),
		resetSignal: signal.Reset,
	}
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

// Submit schedules fn on the loop goroutine and waits for its result.
// Returns ErrShuttingDown when the loop is no longer accepting work, or
// the context error if ctx ends first.
func (l *Loop) Submit(ctx context.Context, name, id string, fn func(ctx context.Context) apply.Result) (apply.Result, error) {
	j := job{name: name, id: id, fn: fn, done: make(chan apply.Result, 1)}

	select {
	case l.jobs <- j:
	case <-l.stopped:
		return apply.Result{}, ErrShuttingDown
	case <-ctx.Done():
		return apply.Result{}, ctx.Err()
	}

	select {
	case result := <-j.done:
		return result, nil
	case <-l.stopped:
		return apply.Result{}, ErrShuttingDown
	case <-ctx.Done():
		return apply.Result{}, ctx.Err()
	}
}

// Run processes signals and jobs until a termination signal arrives or
// ctx is cancelled. It registers the signal handlers itself and releases
// them on return.
func (l *Loop) Run(ctx context.Context) error {
	signal.Notify(l.sigs,
		syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGPIPE,
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(l.sigs)
	defer close(l.stopped)
	defer l.state.Store(int32(StateShuttingDown))

	for {
		select {
		case sig := <-l.sigs:
			if l.handleSignal(sig) {
				return nil
			}
		case j := <-l.jobs:
			l.log.Debug("applying snapshot", "domain", j.name, "id", j.id)
			result := j.fn(ctx)
			l.log.Info("snapshot applied", "domain", j.name, "id", j.id, "result", result.String())
			j.done <- result
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handleSignal reacts to one delivered signal and reports whether the
// loop should stop.
func (l *Loop) handleSignal(sig os.Signal) bool {
	switch sig {
	case syscall.SIGUSR2:
		level := logging.ToggleDebug()
		l.log.Info("diagnostic verbosity toggled", "level", level.String())

	case syscall.SIGUSR1:
		// Reserved; delivery only interrupts blocking I/O.
		l.log.Debug("SIGUSR1 received")

	case syscall.SIGPIPE:
		// Caught so a vanished output consumer cannot kill the daemon.
		l.log.Debug("SIGPIPE received")

	case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM:
		l.log.Info("signal received, shutting down gracefully", "signal", sig.String())

		// Restore the default action for this specific signal: a second
		// delivery terminates the process even if shutdown hangs.
		l.resetSignal(sig)

		l.state.Store(int32(StateShuttingDown))
		return true
	}

	return false
}
