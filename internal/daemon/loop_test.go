package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/metrolinq/hostcfgd/internal/apply"
	"github.com/metrolinq/hostcfgd/internal/logging"
)

func testLoop() *Loop {
	return NewLoop(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoop_JobsRunSeriallyInSubmitOrder(t *testing.T) {
	l := testLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var mu sync.Mutex
	var order []string

	var wg sync.WaitGroup
	record := func(name string) func(context.Context) apply.Result {
		return func(context.Context) apply.Result {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return apply.Applied()
		}
	}

	// Submit from one goroutine so the enqueue order is deterministic;
	// the loop guarantee under test is that executions never interleave.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, name := range []string{"ntp", "dns", "interfaces"} {
			if _, err := l.Submit(context.Background(), name, "", record(name)); err != nil {
				t.Errorf("Submit(%s): %v", name, err)
			}
		}
	}()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "ntp" || order[1] != "dns" || order[2] != "interfaces" {
		t.Errorf("jobs ran out of order: %v", order)
	}
}

func TestLoop_SubmitReturnsResult(t *testing.T) {
	l := testLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	result, err := l.Submit(context.Background(), "dns", "id-1", func(context.Context) apply.Result {
		return apply.Skipped("nothing to do")
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != apply.StatusSkipped || result.Reason != "nothing to do" {
		t.Errorf("result = %v", result)
	}
}

func TestLoop_TerminationSignalStopsLoopAndResetsHandler(t *testing.T) {
	l := testLoop()

	var mu sync.Mutex
	var resets []os.Signal
	l.resetSignal = func(sigs ...os.Signal) {
		mu.Lock()
		resets = append(resets, sigs...)
		mu.Unlock()
	}

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	l.sigs <- syscall.SIGTERM

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on SIGTERM")
	}

	if l.State() != StateShuttingDown {
		t.Errorf("state = %v, want StateShuttingDown", l.State())
	}

	// The handler for the delivered signal must be deregistered so a
	// second delivery terminates the process via the default action.
	mu.Lock()
	defer mu.Unlock()
	if len(resets) != 1 || resets[0] != syscall.SIGTERM {
		t.Errorf("resetSignal calls = %v, want [SIGTERM]", resets)
	}
}

func TestLoop_SubmitAfterShutdownFails(t *testing.T) {
	l := testLoop()
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	l.sigs <- syscall.SIGINT
	<-done

	_, err := l.Submit(context.Background(), "ntp", "", func(context.Context) apply.Result {
		return apply.Applied()
	})
	if err != ErrShuttingDown {
		t.Errorf("err = %v, want ErrShuttingDown", err)
	}
}

func TestLoop_DiagnosticToggleFlipsLevel(t *testing.T) {
	logging.Setup(false, false, io.Discard)

	l := testLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	l.sigs <- syscall.SIGUSR2

	deadline := time.After(2 * time.Second)
	for logging.Level() != slog.LevelDebug {
		select {
		case <-deadline:
			t.Fatal("SIGUSR2 did not raise the level to debug")
		case <-time.After(5 * time.Millisecond):
		}
	}

	l.sigs <- syscall.SIGUSR2
	deadline = time.After(2 * time.Second)
	for logging.Level() != slog.LevelInfo {
		select {
		case <-deadline:
			t.Fatal("second SIGUSR2 did not restore info level")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestLoop_NoopSignalsDoNotStopLoop(t *testing.T) {
	l := testLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	l.sigs <- syscall.SIGUSR1
	l.sigs <- syscall.SIGPIPE

	// The loop must still accept work after both signals.
	if _, err := l.Submit(context.Background(), "dns", "", func(context.Context) apply.Result {
		return apply.Applied()
	}); err != nil {
		t.Fatalf("loop stopped accepting work: %v", err)
	}
}
