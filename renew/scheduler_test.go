package renew

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggondim/auth0-kits/oauth"
	"github.com/ggondim/auth0-kits/session"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	grant *oauth.Grant
	err   error
}

func (f *fakeRefresher) ExchangeRefreshToken(_ context.Context, _ string) (*oauth.Grant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.grant, nil
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewScheduler(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	store := session.New(session.NewMemoryStorage())

	_, err := NewScheduler(nil, &fakeRefresher{}, Callbacks{})
	assert.True(errors.Is(err, ErrNilParameter))

	_, err = NewScheduler(store, nil, Callbacks{})
	assert.True(errors.Is(err, ErrNilParameter))
}

func TestScheduler_Renew(t *testing.T) {
	t.Parallel()
	t.Run("success-saves-session", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		require.NoError(store.Save(session.Session{
			AccessToken:  session.TestJWT(t, time.Now().Add(-time.Minute)),
			RefreshToken: "refresh-1",
		}))

		renewed := session.TestJWT(t, time.Now().Add(2*time.Hour))
		refresher := &fakeRefresher{grant: &oauth.Grant{
			AccessToken:  renewed,
			RefreshToken: "refresh-2",
		}}
		s, err := NewScheduler(store, refresher, Callbacks{})
		require.NoError(err)

		assert.True(s.Renew(context.Background()))
		assert.Equal(renewed, store.AccessToken())
		assert.Equal("refresh-2", store.RefreshToken())
		assert.Equal(1, refresher.callCount())
	})
	t.Run("no-refresh-token", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		require.NoError(store.Save(session.Session{
			AccessToken: session.TestJWT(t, time.Now().Add(-time.Minute)),
		}))

		refresher := &fakeRefresher{}
		s, err := NewScheduler(store, refresher, Callbacks{})
		require.NoError(err)

		assert.False(s.Renew(context.Background()))
		assert.Zero(refresher.callCount())
	})
	t.Run("exchange-failure-keeps-session", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		tk := session.TestJWT(t, time.Now().Add(-time.Minute))
		require.NoError(store.Save(session.Session{AccessToken: tk, RefreshToken: "refresh-1"}))

		s, err := NewScheduler(store, &fakeRefresher{err: errors.New("boom")}, Callbacks{})
		require.NoError(err)

		assert.False(s.Renew(context.Background()))
		assert.Equal(tk, store.AccessToken())
		assert.Equal("refresh-1", store.RefreshToken())
	})
}

func TestScheduler_Start(t *testing.T) {
	t.Parallel()
	t.Run("no-stored-token", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		refresher := &fakeRefresher{}
		s, err := NewScheduler(store, refresher, Callbacks{})
		require.NoError(err)

		assert.False(s.Start(context.Background()))
		assert.Zero(refresher.callCount())
	})
	t.Run("live-token-arms-without-exchange", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		require.NoError(store.Save(session.Session{
			AccessToken:  session.TestJWT(t, time.Now().Add(2*time.Hour)),
			RefreshToken: "refresh-1",
		}))
		refresher := &fakeRefresher{}
		s, err := NewScheduler(store, refresher, Callbacks{})
		require.NoError(err)
		defer s.Done()

		assert.True(s.Start(context.Background()))
		assert.Zero(refresher.callCount())
	})
	t.Run("expired-token-renews-immediately", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		require.NoError(store.Save(session.Session{
			AccessToken:  session.TestJWT(t, time.Now().Add(-time.Minute)),
			RefreshToken: "refresh-1",
		}))
		renewed := session.TestJWT(t, time.Now().Add(2*time.Hour))
		refresher := &fakeRefresher{grant: &oauth.Grant{AccessToken: renewed, RefreshToken: "refresh-2"}}
		s, err := NewScheduler(store, refresher, Callbacks{})
		require.NoError(err)
		defer s.Done()

		assert.True(s.Start(context.Background()))
		assert.Equal(renewed, store.AccessToken())
		assert.Equal(1, refresher.callCount())
	})
	t.Run("expired-token-failing-refresh", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		require.NoError(store.Save(session.Session{
			AccessToken:  session.TestJWT(t, time.Now().Add(-time.Minute)),
			RefreshToken: "refresh-1",
		}))
		s, err := NewScheduler(store, &fakeRefresher{err: errors.New("boom")}, Callbacks{})
		require.NoError(err)

		assert.False(s.Start(context.Background()))
	})
}

func TestScheduler_Fire(t *testing.T) {
	t.Parallel()
	t.Run("progress-then-success", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		require.NoError(store.Save(session.Session{
			AccessToken:  session.TestJWT(t, time.Now().Add(-time.Minute)),
			RefreshToken: "refresh-1",
		}))
		renewed := session.TestJWT(t, time.Now().Add(2*time.Hour))
		refresher := &fakeRefresher{grant: &oauth.Grant{AccessToken: renewed, RefreshToken: "refresh-2"}}

		var mu sync.Mutex
		var order []string
		done := make(chan struct{})
		s, err := NewScheduler(store, refresher, Callbacks{
			OnProgress: func() {
				mu.Lock()
				order = append(order, "progress")
				mu.Unlock()
			},
			OnSuccess: func() {
				mu.Lock()
				order = append(order, "success")
				mu.Unlock()
				close(done)
			},
			OnError: func(err error) {
				t.Errorf("unexpected renewal error: %v", err)
			},
		})
		require.NoError(err)
		defer s.Done()

		// the stored token is already expired, so the armed timer fires at once
		require.NoError(s.Arm(context.Background()))
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed renewal never completed")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal([]string{"progress", "success"}, order)
		assert.Equal(renewed, store.AccessToken())
	})
	t.Run("progress-then-error", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := session.New(session.NewMemoryStorage())
		require.NoError(store.Save(session.Session{
			AccessToken:  session.TestJWT(t, time.Now().Add(-time.Minute)),
			RefreshToken: "refresh-1",
		}))
		cause := errors.New("refresh revoked")

		var mu sync.Mutex
		var order []string
		done := make(chan error, 1)
		s, err := NewScheduler(store, &fakeRefresher{err: cause}, Callbacks{
			OnProgress: func() {
				mu.Lock()
				order = append(order, "progress")
				mu.Unlock()
			},
			OnSuccess: func() {
				t.Error("unexpected renewal success")
			},
			OnError: func(err error) {
				mu.Lock()
				order = append(order, "error")
				mu.Unlock()
				done <- err
			},
		})
		require.NoError(err)
		defer s.Done()

		require.NoError(s.Arm(context.Background()))
		select {
		case err := <-done:
			assert.True(errors.Is(err, cause))
		case <-time.After(2 * time.Second):
			t.Fatal("timed renewal never reported failure")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal([]string{"progress", "error"}, order)
	})
}

func TestScheduler_Done(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	store := session.New(session.NewMemoryStorage())
	require.NoError(store.Save(session.Session{
		AccessToken:  session.TestJWT(t, time.Now().Add(2*time.Hour)),
		RefreshToken: "refresh-1",
	}))
	s, err := NewScheduler(store, &fakeRefresher{}, Callbacks{})
	require.NoError(err)
	require.NoError(s.Arm(context.Background()))
	s.Done()
	s.Done() // stopping twice is fine

	var nilScheduler *Scheduler
	nilScheduler.Done()
}
