package comm

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/fxamacker/cbor/v2"
)

// Client sends snapshot requests to a running daemon. One connection per
// request, matching the server's request/response cycle.
type Client struct {
	socketPath string
}

// NewClient returns a client for the daemon socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Call encodes payload for the given action, sends it, and returns the
// daemon's response. A Response with OK false carries the channel-level
// rejection in Error; applier outcomes travel in Status/Reason.
func (c *Client) Call(ctx context.Context, action, id string, payload any) (Response, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return Response{}, fmt.Errorf("connecting to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	encoded, err := cbor.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("encoding payload: %w", err)
	}
	req := Request{Action: action, ID: id, Payload: encoded}
	if err := cbor.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("sending request: %w", err)
	}

	var resp Response
	if err := cbor.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("reading response: %w", err)
	}
	return resp, nil
}
