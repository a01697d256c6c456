package comm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/metrolinq/hostcfgd/internal/apply"
	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

// readTimeout bounds how long a connected client may take to send its
// request; a well-behaved source sends immediately after connecting.
const readTimeout = 30 * time.Second

// writeTimeout bounds the response write.
const writeTimeout = 10 * time.Second

// maxRequestSize caps one CBOR request. Interface snapshots for hosts with
// hundreds of interfaces stay well under 1 MB.
const maxRequestSize = 1 << 20

// Server accepts snapshot requests on a unix socket and forwards them to
// the appliers through the event loop.
type Server struct {
	socketPath string
	appliers   *apply.Applier
	submit     Submitter
	log        *slog.Logger

	// active tracks in-flight connections so Serve can drain them before
	// returning.
	active sync.WaitGroup
}

// NewServer returns a server listening (once Serve is called) on
// socketPath, applying snapshots via appliers on the loop behind submit.
func NewServer(socketPath string, appliers *apply.Applier, submit Submitter, log *slog.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		appliers:   appliers,
		submit:     submit,
		log:        log,
	}
}

// Serve accepts connections until ctx is cancelled, then drains active
// handlers. A stale socket file from a previous run is removed before
// listening; the socket file is removed again on return.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	// Unblock Accept when the loop shuts down.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.log.Info("comm channel listening", "path", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Error("accept failed", "error", err)
			continue
		}

		s.active.Add(1)
		go func() {
			defer s.active.Done()
			s.handleConn(ctx, conn)
		}()
	}

	s.active.Wait()
	return nil
}

// handleConn runs one request/response cycle.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	var req Request
	if err := cbor.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			// Client connected but sent nothing.
			return
		}
		s.writeResponse(conn, Response{OK: false, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	log := s.log.With("action", req.Action, "id", req.ID)
	log.Debug("snapshot received")

	result, err := s.dispatch(ctx, req)
	if err != nil {
		log.Warn("snapshot rejected", "error", err)
		s.writeResponse(conn, Response{OK: false, Error: err.Error()})
		return
	}

	s.writeResponse(conn, Response{OK: true, Status: result.Status, Reason: result.Reason})
}

// dispatch decodes the payload for the requested action and runs the
// matching applier on the event loop.
func (s *Server) dispatch(ctx context.Context, req Request) (apply.Result, error) {
	run := func(fn func(ctx context.Context) apply.Result) (apply.Result, error) {
		return s.submit.Submit(ctx, req.Action, req.ID, fn)
	}

	switch req.Action {
	case ActionSetNTP:
		var cfg snapshot.NTPConfig
		if err := cbor.Unmarshal(req.Payload, &cfg); err != nil {
			return apply.Result{}, fmt.Errorf("invalid payload: %w", err)
		}
		return run(func(ctx context.Context) apply.Result {
			return s.appliers.NTP(ctx, cfg)
		})

	case ActionSetDNS:
		var cfg snapshot.DNSConfig
		if err := cbor.Unmarshal(req.Payload, &cfg); err != nil {
			return apply.Result{}, fmt.Errorf("invalid payload: %w", err)
		}
		return run(func(ctx context.Context) apply.Result {
			return s.appliers.DNS(ctx, cfg)
		})

	case ActionSetAuth:
		var cfg snapshot.AuthConfig
		if err := cbor.Unmarshal(req.Payload, &cfg); err != nil {
			return apply.Result{}, fmt.Errorf("invalid payload: %w", err)
		}
		return run(func(ctx context.Context) apply.Result {
			return s.appliers.Auth(ctx, cfg)
		})

	case ActionSetInterfaces:
		var list snapshot.InterfaceList
		if err := cbor.Unmarshal(req.Payload, &list); err != nil {
			return apply.Result{}, fmt.Errorf("invalid payload: %w", err)
		}
		return run(func(ctx context.Context) apply.Result {
			return s.appliers.Interfaces(ctx, list)
		})

	case ActionSetNeighbors:
		var list snapshot.InterfaceList
		if err := cbor.Unmarshal(req.Payload, &list); err != nil {
			return apply.Result{}, fmt.Errorf("invalid payload: %w", err)
		}
		return run(func(ctx context.Context) apply.Result {
			return s.appliers.Neighbors(ctx, list)
		})

	case ActionSetValue:
		var value snapshot.ScalarValue
		if err := cbor.Unmarshal(req.Payload, &value); err != nil {
			return apply.Result{}, fmt.Errorf("invalid payload: %w", err)
		}
		return run(func(ctx context.Context) apply.Result {
			return s.appliers.Value(ctx, value.Path, value.Value)
		})

	case "":
		return apply.Result{}, errors.New("missing required field: action")

	default:
		return apply.Result{}, fmt.Errorf("unknown action %q", req.Action)
	}
}

// writeResponse encodes resp on the connection. A write failure is logged
// at debug level: the connection closes regardless and the applier side
// already completed.
func (s *Server) writeResponse(conn net.Conn, resp Response) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := cbor.NewEncoder(conn).Encode(resp); err != nil {
		s.log.Debug("writing response", "error", err)
	}
}
