// Package crossstorage replicates a session record across frames.  The
// frame holding the canonical record runs a Hub that answers per-field
// commands over a message channel and rebroadcasts renewal lifecycle
// events; dependent frames run a Client that issues those commands and
// mirrors the results into a local copy of the store.
package crossstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/ggondim/auth0-kits/renew"
	"github.com/ggondim/auth0-kits/session"
)

// Hub is the responder side of the bridge.  It exposes the session store's
// fields as answerable commands and broadcasts renewal lifecycle events to
// every attached conn.
type Hub struct {
	store  *session.Store
	logger hclog.Logger

	mu    sync.Mutex
	conns []Conn
}

// NewHub creates a Hub over the canonical session store.
// Supported options: WithLogger
func NewHub(store *session.Store, opt ...Option) (*Hub, error) {
	const op = "crossstorage.NewHub"
	if store == nil {
		return nil, fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	}
	opts := getHubOpts(opt...)
	return &Hub{
		store:  store,
		logger: opts.withLogger,
	}, nil
}

// Serve answers commands arriving on conn until ctx is done or the conn
// fails.  The conn stays attached for lifecycle broadcasts while served.
// Recognized commands get the corresponding stored value verbatim;
// unrecognized ones get no response, which keeps the protocol extensible
// without breaking older requesters.
func (h *Hub) Serve(ctx context.Context, conn Conn) error {
	const op = "crossstorage.Hub.Serve"
	if conn == nil {
		return fmt.Errorf("%s: conn is nil: %w", op, ErrNilParameter)
	}
	h.attach(conn)
	defer h.detach(conn)

	for {
		env, err := conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("%s: receive failed: %w", op, err)
		}
		data, recognized := h.answer(Command(env.Event))
		if !recognized {
			h.logger.Debug("ignoring unrecognized command", "event", env.Event)
			continue
		}
		reply := Envelope{Event: env.Event, ID: env.ID, Data: data}
		if err := conn.Send(ctx, reply); err != nil {
			return fmt.Errorf("%s: reply failed: %w", op, err)
		}
	}
}

// Notify broadcasts a lifecycle event to every attached conn.  Broadcast
// failures are accumulated so one slow frame doesn't hide another's error.
func (h *Hub) Notify(ctx context.Context, event Event, data interface{}) error {
	const op = "crossstorage.Hub.Notify"
	var payload json.RawMessage
	if data != nil {
		var err error
		if payload, err = json.Marshal(data); err != nil {
			return fmt.Errorf("%s: unable to encode event data: %w", op, err)
		}
	}

	h.mu.Lock()
	conns := append([]Conn(nil), h.conns...)
	h.mu.Unlock()

	var result *multierror.Error
	for _, conn := range conns {
		if err := conn.Send(ctx, Envelope{Event: string(event), Data: payload}); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: broadcast failed: %w", op, err))
		}
	}
	return result.ErrorOrNil()
}

// Callbacks adapts the hub into renewal callbacks, so a renew.Scheduler
// hosted next to the hub rebroadcasts its lifecycle to dependent frames.
func (h *Hub) Callbacks(ctx context.Context) renew.Callbacks {
	return renew.Callbacks{
		OnProgress: func() {
			if err := h.Notify(ctx, EventRenewing, nil); err != nil {
				h.logger.Debug("renewing broadcast failed", "error", err)
			}
		},
		OnSuccess: func() {
			if err := h.Notify(ctx, EventRenewed, nil); err != nil {
				h.logger.Debug("renewed broadcast failed", "error", err)
			}
		},
		OnError: func(cause error) {
			if err := h.Notify(ctx, EventDenied, DeniedData{Error: cause.Error()}); err != nil {
				h.logger.Debug("denied broadcast failed", "error", err)
			}
		},
	}
}

func (h *Hub) attach(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns = append(h.conns, conn)
}

func (h *Hub) detach(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.conns {
		if h.conns[i] == conn {
			h.conns = append(h.conns[:i], h.conns[i+1:]...)
			return
		}
	}
}

var nullData = json.RawMessage("null")

// answer resolves one command against the store.  Absent or unreadable
// fields answer null rather than erroring: the requester treats null as "no
// value".
func (h *Hub) answer(cmd Command) (json.RawMessage, bool) {
	switch cmd {
	case CommandAccessToken:
		return marshalString(h.store.AccessToken()), true
	case CommandAccessTokenPayload:
		claims, err := h.store.AccessTokenPayload()
		if err != nil {
			return h.absent(cmd, err), true
		}
		return marshalValue(cmd, claims, h.logger), true
	case CommandUser:
		user, err := h.store.User()
		if err != nil {
			return h.absent(cmd, err), true
		}
		return marshalValue(cmd, user, h.logger), true
	case CommandRefreshToken:
		return marshalString(h.store.RefreshToken()), true
	case CommandStateKey:
		key, err := h.store.StateKey()
		if err != nil {
			return h.absent(cmd, err), true
		}
		return marshalString(key), true
	case CommandLastConnection:
		return marshalString(h.store.LastConnection()), true
	default:
		return nil, false
	}
}

func (h *Hub) absent(cmd Command, err error) json.RawMessage {
	if !errors.Is(err, session.ErrNoSession) {
		h.logger.Debug("unreadable session field", "command", cmd, "error", err)
	}
	return nullData
}

func marshalString(s string) json.RawMessage {
	if s == "" {
		return nullData
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nullData
	}
	return data
}

func marshalValue(cmd Command, v interface{}, logger hclog.Logger) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Debug("unencodable session field", "command", cmd, "error", err)
		return nullData
	}
	return data
}
