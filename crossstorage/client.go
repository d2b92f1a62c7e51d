package crossstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/ggondim/auth0-kits/session"
)

// Callbacks receive the renewal lifecycle as observed from a dependent
// frame.  The client re-synchronizes its whole mirror before dispatching
// any of them, so a callback never observes a stale mirror.  Any of the
// three may be nil.
type Callbacks struct {
	OnProgress func()
	OnSuccess  func()
	OnError    func(reason string)
}

// Client is the requester side of the bridge.  Each field accessor performs
// exactly one command round trip; none of them assume synchronous
// availability.  Run must be started for responses and lifecycle events to
// be processed.
type Client struct {
	conn      Conn
	storage   session.Storage
	keys      session.Keys
	mirror    *session.Store
	callbacks Callbacks
	logger    hclog.Logger

	mu      sync.Mutex
	pending map[string]chan Envelope
}

// NewClient creates a Client over one end of a bridge channel.
// Supported options: WithLogger, WithCallbacks, WithMirrorStorage, WithKeys
func NewClient(conn Conn, opt ...Option) (*Client, error) {
	const op = "crossstorage.NewClient"
	if conn == nil {
		return nil, fmt.Errorf("%s: conn is nil: %w", op, ErrNilParameter)
	}
	opts := getClientOpts(opt...)
	storage := opts.withStorage
	if storage == nil {
		storage = session.NewMemoryStorage()
	}
	return &Client{
		conn:      conn,
		storage:   storage,
		keys:      opts.withKeys,
		mirror:    session.New(storage, session.WithKeys(opts.withKeys)),
		callbacks: opts.withCallbacks,
		logger:    opts.withLogger,
		pending:   map[string]chan Envelope{},
	}, nil
}

// Mirror returns the local copy of the session store.  It reflects the
// hub's record as of the last SyncAll (or lifecycle event).
func (c *Client) Mirror() *session.Store { return c.mirror }

// Run processes incoming envelopes until ctx is done: command responses are
// delivered to their waiting accessors, and lifecycle events trigger a full
// re-synchronization before the registered callback is dispatched.
//
// Lifecycle events are handled on a single worker in arrival order, off the
// receive loop: the re-synchronization issues its own command round trips,
// whose responses the receive loop must stay free to deliver.
func (c *Client) Run(ctx context.Context) error {
	const op = "crossstorage.Client.Run"

	events := make(chan Envelope, 8)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for env := range events {
			c.handleEvent(ctx, env)
		}
	}()
	defer func() {
		close(events)
		wg.Wait()
	}()

	for {
		env, err := c.conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("%s: receive failed: %w", op, err)
		}
		if env.ID != "" && c.deliver(env) {
			continue
		}
		switch Event(env.Event) {
		case EventRenewing, EventRenewed, EventDenied:
			select {
			case events <- env:
			case <-ctx.Done():
				return nil
			}
		default:
			c.logger.Debug("ignoring unrecognized event", "event", env.Event)
		}
	}
}

// AccessToken fetches the hub's current access token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	return c.stringCommand(ctx, CommandAccessToken)
}

// AccessTokenPayload fetches the hub's current decoded token payload; nil
// when no session is active.
func (c *Client) AccessTokenPayload(ctx context.Context) (jwt.MapClaims, error) {
	const op = "crossstorage.Client.AccessTokenPayload"
	data, err := c.command(ctx, CommandAccessTokenPayload)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}
	return claims, nil
}

// User fetches the hub's current identity record; nil when no session is
// active.
func (c *Client) User(ctx context.Context) (*session.Identity, error) {
	const op = "crossstorage.Client.User"
	data, err := c.command(ctx, CommandUser)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}
	var id session.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}
	return &id, nil
}

// RefreshToken fetches the hub's current refresh token.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	return c.stringCommand(ctx, CommandRefreshToken)
}

// StateKey fetches the hub's state key.
func (c *Client) StateKey(ctx context.Context) (string, error) {
	return c.stringCommand(ctx, CommandStateKey)
}

// LastConnection fetches the hub's last provider connection.
func (c *Client) LastConnection(ctx context.Context) (string, error) {
	return c.stringCommand(ctx, CommandLastConnection)
}

// SyncAll re-issues every field command and mirrors the results into the
// local storage, so the mirror holds a consistent snapshot of the hub's
// record.  Per-field failures are accumulated rather than aborting the
// sync.
func (c *Client) SyncAll(ctx context.Context) error {
	var result *multierror.Error
	for _, cmd := range Commands() {
		data, err := c.command(ctx, cmd)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		key := c.keyFor(cmd)
		switch cmd {
		case CommandAccessTokenPayload, CommandUser:
			// structured fields are mirrored verbatim
			if isNull(data) {
				c.storage.Delete(key)
			} else {
				c.storage.Set(key, string(data))
			}
		default:
			var s string
			if !isNull(data) {
				if err := json.Unmarshal(data, &s); err != nil {
					result = multierror.Append(result, fmt.Errorf("crossstorage.Client.SyncAll: %s: %w", cmd, ErrMalformedResponse))
					continue
				}
			}
			if s == "" {
				c.storage.Delete(key)
			} else {
				c.storage.Set(key, s)
			}
		}
	}
	return result.ErrorOrNil()
}

// command performs one correlated round trip, suspending until the matching
// response arrives or ctx is done.
func (c *Client) command(ctx context.Context, cmd Command) (json.RawMessage, error) {
	const op = "crossstorage.Client.command"
	id := uuid.NewString()
	ch := make(chan Envelope, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.conn.Send(ctx, Envelope{Event: string(cmd), ID: id}); err != nil {
		return nil, fmt.Errorf("%s: unable to send %s: %w", op, cmd, err)
	}
	select {
	case env := <-ch:
		return env.Data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: no response for %s: %w", op, cmd, ctx.Err())
	}
}

func (c *Client) stringCommand(ctx context.Context, cmd Command) (string, error) {
	const op = "crossstorage.Client.stringCommand"
	data, err := c.command(ctx, cmd)
	if err != nil {
		return "", err
	}
	if isNull(data) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, cmd, ErrMalformedResponse)
	}
	return s, nil
}

func (c *Client) deliver(env Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.pending[env.ID]
	if !ok {
		return false
	}
	delete(c.pending, env.ID)
	ch <- env
	return true
}

// handleEvent re-synchronizes the mirror, then dispatches the callback, in
// that order: a callback must never observe a stale mirror.
func (c *Client) handleEvent(ctx context.Context, env Envelope) {
	if err := c.SyncAll(ctx); err != nil {
		c.logger.Debug("resync after lifecycle event failed", "event", env.Event, "error", err)
	}
	switch Event(env.Event) {
	case EventRenewing:
		if c.callbacks.OnProgress != nil {
			c.callbacks.OnProgress()
		}
	case EventRenewed:
		if c.callbacks.OnSuccess != nil {
			c.callbacks.OnSuccess()
		}
	case EventDenied:
		if c.callbacks.OnError != nil {
			var denied DeniedData
			if len(env.Data) > 0 {
				if err := json.Unmarshal(env.Data, &denied); err != nil {
					c.logger.Debug("malformed denied event data", "error", err)
				}
			}
			c.callbacks.OnError(denied.Error)
		}
	}
}

func (c *Client) keyFor(cmd Command) string {
	switch cmd {
	case CommandAccessToken:
		return c.keys.AccessToken
	case CommandAccessTokenPayload:
		return c.keys.AccessTokenPayload
	case CommandUser:
		return c.keys.User
	case CommandRefreshToken:
		return c.keys.RefreshToken
	case CommandStateKey:
		return c.keys.StateKey
	default:
		return c.keys.LastConnection
	}
}

func isNull(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}
