// Package renew keeps a session's access token fresh.  It computes the delay
// until the next refresh attempt from the token's expiry, arms a one-shot
// timer, and on firing performs a refresh-token exchange, reporting
// progress/success/failure through caller-supplied callbacks.  A successful
// attempt re-arms the timer from the new expiry, forming a continuous
// renewal cycle for as long as refreshes keep succeeding; a failed attempt
// leaves the scheduler unarmed and lets the caller decide what to do.
package renew

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ggondim/auth0-kits/oauth"
	"github.com/ggondim/auth0-kits/session"
)

// Refresher performs the refresh-token exchange.  *oauth.Client implements
// it.
type Refresher interface {
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (*oauth.Grant, error)
}

// Callbacks receive the lifecycle of one renewal attempt.  OnProgress always
// precedes OnSuccess or OnError for the same attempt; any of the three may
// be nil.
type Callbacks struct {
	// OnProgress fires when a renewal attempt starts.
	OnProgress func()

	// OnSuccess fires after the renewed session has been saved and the
	// scheduler re-armed.
	OnSuccess func()

	// OnError fires when the attempt failed.  The scheduler stays unarmed;
	// the caller decides whether to retry, redirect to login, or give up.
	OnError func(err error)
}

// Scheduler drives expiry-based renewal for the session held by a Store.
// An unsolicited background renewal failure must not crash the hosting
// process, so the scheduler is the one component that catches refresh
// failures and reports them through a callback instead of raising.
type Scheduler struct {
	store     *session.Store
	refresher Refresher
	callbacks Callbacks
	logger    hclog.Logger
	now       func() time.Time

	mu       sync.Mutex
	timer    *time.Timer
	renewing bool
}

// NewScheduler creates a Scheduler over the given store and refresher.
// Supported options: WithLogger, WithClock
func NewScheduler(store *session.Store, refresher Refresher, callbacks Callbacks, opt ...Option) (*Scheduler, error) {
	const op = "renew.NewScheduler"
	if store == nil {
		return nil, fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	}
	if refresher == nil {
		return nil, fmt.Errorf("%s: refresher is nil: %w", op, ErrNilParameter)
	}
	opts := getSchedulerOpts(opt...)
	return &Scheduler{
		store:     store,
		refresher: refresher,
		callbacks: callbacks,
		logger:    opts.withLogger,
		now:       opts.withClock,
	}, nil
}

// Arm computes the delay from the stored token's expiry and arms a one-shot
// timer for the next renewal attempt.  Arming supersedes any previously
// armed timer; there is never more than one outstanding attempt per
// scheduler.
func (s *Scheduler) Arm(ctx context.Context) error {
	const op = "renew.Scheduler.Arm"
	claims, err := s.store.AccessTokenPayload()
	if err != nil {
		return fmt.Errorf("%s: unable to read session payload: %w", op, err)
	}
	expiry, err := session.Expiry(claims)
	if err != nil {
		return fmt.Errorf("%s: unable to read session expiry: %w", op, err)
	}
	delay := ComputeDelay(expiry, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.logger.Debug("renewal timer armed", "delay", delay.String(), "expiry", expiry)
	s.timer = time.AfterFunc(delay, func() { s.fire(ctx) })
	return nil
}

// Done releases the scheduler's timer.  A stopped scheduler can be re-armed.
func (s *Scheduler) Done() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Renew performs one refresh attempt with the stored refresh token, saving
// the renewed session on success.  It reports the outcome as a bool and
// never raises: background renewal failure degrades to "treat as logged
// out".
func (s *Scheduler) Renew(ctx context.Context) bool {
	if err := s.renew(ctx); err != nil {
		s.logger.Debug("renewal attempt failed", "error", err)
		return false
	}
	return true
}

// Start drives the loading flow at page entry.  No stored token means not
// logged in; an expired token gets one immediate renewal attempt; a live (or
// just-renewed) session arms the renewal cycle.  The returned bool reports
// whether a live session resulted.
func (s *Scheduler) Start(ctx context.Context) bool {
	if s.store.AccessToken() == "" {
		s.logger.Debug("no stored token")
		return false
	}
	claims, err := s.store.AccessTokenPayload()
	if err != nil {
		s.logger.Debug("unable to read stored payload", "error", err)
		return false
	}
	expiry, err := session.Expiry(claims)
	if err != nil {
		s.logger.Debug("unable to read stored expiry", "error", err)
		return false
	}
	if !expiry.After(s.now()) {
		s.logger.Debug("stored token expired, renewing now")
		if !s.Renew(ctx) {
			return false
		}
	}
	if err := s.Arm(ctx); err != nil {
		s.logger.Debug("unable to arm renewal timer", "error", err)
		return false
	}
	return true
}

// fire runs one timed renewal attempt.  Progress is always reported before
// success-or-error; success re-arms from the new expiry, failure leaves the
// scheduler unarmed.
func (s *Scheduler) fire(ctx context.Context) {
	s.mu.Lock()
	if s.renewing {
		s.mu.Unlock()
		return
	}
	s.renewing = true
	s.mu.Unlock()

	if s.callbacks.OnProgress != nil {
		s.callbacks.OnProgress()
	}

	err := s.renew(ctx)

	s.mu.Lock()
	s.renewing = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("timed renewal failed", "error", err)
		if s.callbacks.OnError != nil {
			s.callbacks.OnError(err)
		}
		return
	}
	if err := s.Arm(ctx); err != nil {
		s.logger.Debug("unable to re-arm after renewal", "error", err)
		if s.callbacks.OnError != nil {
			s.callbacks.OnError(err)
		}
		return
	}
	if s.callbacks.OnSuccess != nil {
		s.callbacks.OnSuccess()
	}
}

func (s *Scheduler) renew(ctx context.Context) error {
	const op = "renew.Scheduler.renew"
	refreshToken := s.store.RefreshToken()
	if refreshToken == "" {
		return fmt.Errorf("%s: %w", op, ErrNoRefreshToken)
	}
	grant, err := s.refresher.ExchangeRefreshToken(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("%s: refresh exchange failed: %w", op, err)
	}
	if err := s.store.Save(grant.Session()); err != nil {
		return fmt.Errorf("%s: unable to save renewed session: %w", op, err)
	}
	return nil
}
