package comm

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/metrolinq/hostcfgd/internal/apply"
	"github.com/metrolinq/hostcfgd/internal/config"
	"github.com/metrolinq/hostcfgd/internal/snapshot"
	"github.com/metrolinq/hostcfgd/internal/system"
)

// inlineSubmitter runs jobs directly; the loop's serialization is covered
// by the daemon package's own tests.
type inlineSubmitter struct{}

func (inlineSubmitter) Submit(ctx context.Context, name, id string, fn func(ctx context.Context) apply.Result) (apply.Result, error) {
	return fn(ctx), nil
}

func startTestServer(t *testing.T) (string, *system.MockFS, *system.MockExecutor) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "hostcfgd.sock")
	fs := system.NewMockFS()
	fs.MkdirAll("/test/network", 0o755)
	exec := system.NewMockExecutor()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	settings := config.Defaults()
	settings.TimesyncConf = "/test/timesyncd.conf"
	settings.ResolvedConf = "/test/resolved.conf"
	settings.NetworkDir = "/test/network"

	appliers := apply.New(settings, fs, apply.NewRunner(exec, log), log)
	server := NewServer(socketPath, appliers, inlineSubmitter{}, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})

	waitForSocket(t, socketPath)
	return socketPath, fs, exec
}

func waitForSocket(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("socket %s never appeared", path)
}

func TestServer_SetNTPRoundTrip(t *testing.T) {
	socketPath, fs, exec := startTestServer(t)
	client := NewClient(socketPath)

	resp, err := client.Call(context.Background(), ActionSetNTP, "test-1", snapshot.NTPConfig{
		Enabled: true,
		Servers: []string{"0.pool.ntp.org"},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !resp.OK || resp.Status != apply.StatusApplied {
		t.Fatalf("resp = %+v", resp)
	}

	if _, ok := fs.File("/test/timesyncd.conf"); !ok {
		t.Error("timesyncd.conf not written through the channel")
	}
	lines := exec.Lines()
	if len(lines) != 2 || lines[1] != "timedatectl set-ntp 1" {
		t.Errorf("commands = %v", lines)
	}
}

func TestServer_SkipOutcomeTravelsInStatus(t *testing.T) {
	socketPath, _, _ := startTestServer(t)
	client := NewClient(socketPath)

	resp, err := client.Call(context.Background(), ActionSetValue, "", snapshot.ScalarValue{
		Path:  "system.hostname",
		Value: "edge-router-7",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !resp.OK {
		t.Fatalf("a skipped applier call is not a channel error: %+v", resp)
	}
	if resp.Status != apply.StatusSkipped || resp.Reason == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestServer_UnknownActionRejected(t *testing.T) {
	socketPath, _, _ := startTestServer(t)
	client := NewClient(socketPath)

	resp, err := client.Call(context.Background(), "set-flux-capacitor", "", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.OK || resp.Error == "" {
		t.Errorf("expected channel rejection, got %+v", resp)
	}
}

func TestServer_MalformedRequestRejected(t *testing.T) {
	socketPath, _, _ := startTestServer(t)

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// A CBOR array is not a Request map.
	if err := cbor.NewEncoder(conn).Encode([]int{1, 2, 3}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var resp Response
	if err := cbor.NewDecoder(conn).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OK || resp.Error == "" {
		t.Errorf("expected invalid-request rejection, got %+v", resp)
	}
}

func TestServer_RemovesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "hostcfgd.sock")
	if err := os.WriteFile(socketPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	appliers := apply.New(config.Defaults(), system.NewMockFS(), apply.NewRunner(system.NewMockExecutor(), log), log)
	server := NewServer(socketPath, appliers, inlineSubmitter{}, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	waitForSocket(t, socketPath)

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Serve: %v", err)
	}
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("socket file should be removed on shutdown")
	}
}
