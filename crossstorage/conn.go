package crossstorage

import (
	"context"
	"encoding/json"
)

// Envelope is the wire format carried between frames: an event name (a
// Command for request/response traffic or an Event for lifecycle
// broadcasts), a correlation id for command round trips, and an optional
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	ID    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn is one end of a cross-window message channel bound to a specific
// origin/iframe pair.  Implementations adapt whatever transport the host
// embedding provides; Pipe supplies an in-process pair for tests and for
// same-process embeddings.
type Conn interface {
	// Send delivers an envelope to the peer, blocking until accepted or ctx
	// is done.
	Send(ctx context.Context, env Envelope) error

	// Receive blocks until the peer delivers an envelope or ctx is done.
	Receive(ctx context.Context) (Envelope, error)
}

// Pipe creates a connected Conn pair backed by in-process channels with the
// given buffer depth.  Envelopes sent on one end arrive on the other in
// order.
func Pipe(buffer int) (Conn, Conn) {
	ab := make(chan Envelope, buffer)
	ba := make(chan Envelope, buffer)
	return &chanConn{send: ab, recv: ba}, &chanConn{send: ba, recv: ab}
}

type chanConn struct {
	send chan<- Envelope
	recv <-chan Envelope
}

func (c *chanConn) Send(ctx context.Context, env Envelope) error {
	select {
	case c.send <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *chanConn) Receive(ctx context.Context) (Envelope, error) {
	select {
	case env := <-c.recv:
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}
