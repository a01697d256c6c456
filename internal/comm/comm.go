// Package comm is hostcfgd's configuration channel: a unix socket speaking
// one CBOR request/response per connection. The upstream configuration
// source connects, sends a single domain snapshot, and receives the
// applier's outcome. CBOR is self-delimiting, so no framing protocol is
// needed.
//
// Handlers never run appliers on connection goroutines: each request is
// submitted to the event loop and the handler waits, keeping snapshot
// application single-threaded and serialized.
package comm

import (
	"context"

	"github.com/fxamacker/cbor/v2"

	"github.com/metrolinq/hostcfgd/internal/apply"
)

// Actions accepted on the socket, one per configuration domain.
const (
	ActionSetNTP        = "set-ntp"
	ActionSetDNS        = "set-dns"
	ActionSetAuth       = "set-auth"
	ActionSetInterfaces = "set-interfaces"
	ActionSetNeighbors  = "set-neighbors"
	ActionSetValue      = "set-value"
)

// Request is the wire envelope. ID is an optional correlation id carried
// through log records; the server generates one when absent. Payload holds
// the domain snapshot, encoded per the action.
type Request struct {
	Action  string          `cbor:"action"`
	ID      string          `cbor:"id,omitempty"`
	Payload cbor.RawMessage `cbor:"payload,omitempty"`
}

// Response reports the applier outcome. Error is set only for channel
// failures (malformed request, unknown action, daemon shutting down);
// applier failures travel in Status/Reason and keep OK true — per the
// effector contract they are terminal to the one call, not to the channel.
type Response struct {
	OK     bool         `cbor:"ok"`
	Status apply.Status `cbor:"status,omitempty"`
	Reason string       `cbor:"reason,omitempty"`
	Error  string       `cbor:"error,omitempty"`
}

// Submitter schedules an applier call on the event loop and waits for its
// result. Satisfied by *daemon.Loop.
type Submitter interface {
	Submit(ctx context.Context, name, id string, fn func(ctx context.Context) apply.Result) (apply.Result, error)
}
