package oauth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, p *TestProvider, opt ...Option) *Client {
	t.Helper()
	c, err := NewConfig(p.URL(), "client-id", "client-secret", "https://app.example.com/login", opt...)
	require.NoError(t, err)
	client, err := NewClient(c)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	_, err := NewClient(nil)
	assert.True(errors.Is(err, ErrNilParameter))

	_, err = NewClient(&Config{})
	assert.True(errors.Is(err, ErrInvalidParameter))
}

func TestClient_ExchangeAuthorizationCode(t *testing.T) {
	t.Parallel()
	t.Run("success", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p := StartTestProvider(t)
		p.SetTokenResponse("authorization_code", 200, `{
			"access_token": "at-1",
			"refresh_token": "rt-1",
			"expires_in": 7200,
			"user": {"name": "Ana", "email": "ana@example.com", "provider": "google-oauth2"}
		}`)
		client := testClient(t, p)

		grant, err := client.ExchangeAuthorizationCode(context.Background(), "abc123")
		require.NoError(err)
		assert.Equal("at-1", grant.AccessToken)
		assert.Equal("rt-1", grant.RefreshToken)
		assert.Equal(int64(7200), grant.ExpiresIn)
		require.NotNil(grant.User)
		assert.Equal("google-oauth2", grant.User.Provider)

		form := p.LastForm("authorization_code")
		require.NotNil(form)
		assert.Equal("abc123", form.Get("code"))
		assert.Equal("client-id", form.Get("client_id"))
		assert.Equal("client-secret", form.Get("client_secret"))
		assert.Equal("https://app.example.com/login", form.Get("redirect_uri"))
	})
	t.Run("empty-code", func(t *testing.T) {
		assert := assert.New(t)
		client := testClient(t, StartTestProvider(t))
		_, err := client.ExchangeAuthorizationCode(context.Background(), "")
		assert.True(errors.Is(err, ErrInvalidParameter))
	})
	t.Run("denied", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p := StartTestProvider(t)
		p.SetTokenResponse("authorization_code", 403, `{"error":"invalid_grant"}`)
		client := testClient(t, p)

		_, err := client.ExchangeAuthorizationCode(context.Background(), "abc123")
		require.Error(err)
		var exchErr *ExchangeError
		require.True(errors.As(err, &exchErr))
		assert.Equal(403, exchErr.StatusCode)
		assert.Contains(string(exchErr.Body), "invalid_grant")
	})
	t.Run("malformed-body", func(t *testing.T) {
		require := require.New(t)
		p := StartTestProvider(t)
		p.SetTokenResponse("authorization_code", 200, `{not json`)
		client := testClient(t, p)

		_, err := client.ExchangeAuthorizationCode(context.Background(), "abc123")
		var exchErr *ExchangeError
		require.True(errors.As(err, &exchErr))
	})
	t.Run("missing-access-token", func(t *testing.T) {
		require := require.New(t)
		p := StartTestProvider(t)
		p.SetTokenResponse("authorization_code", 200, `{"token_type":"Bearer"}`)
		client := testClient(t, p)

		_, err := client.ExchangeAuthorizationCode(context.Background(), "abc123")
		var exchErr *ExchangeError
		require.True(errors.As(err, &exchErr))
	})
	t.Run("unreachable-endpoint", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		dead := httptest.NewServer(nil)
		deadURL := dead.URL
		dead.Close()

		c, err := NewConfig(deadURL, "client-id", "client-secret", "https://app.example.com/login")
		require.NoError(err)
		client, err := NewClient(c)
		require.NoError(err)

		_, err = client.ExchangeAuthorizationCode(context.Background(), "abc123")
		assert.True(errors.Is(err, ErrTransport))
	})
}

func TestClient_ExchangeRefreshToken(t *testing.T) {
	t.Parallel()
	t.Run("success", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p := StartTestProvider(t)
		p.SetTokenResponse("refresh_token", 200, `{"access_token":"at-2","refresh_token":"rt-2"}`)
		client := testClient(t, p)

		grant, err := client.ExchangeRefreshToken(context.Background(), "rt-1")
		require.NoError(err)
		assert.Equal("at-2", grant.AccessToken)
		assert.Equal("rt-2", grant.RefreshToken)

		form := p.LastForm("refresh_token")
		require.NotNil(form)
		assert.Equal("rt-1", form.Get("refresh_token"))
		// the bound redirect_uri is always the configured one
		assert.Equal("https://app.example.com/login", form.Get("redirect_uri"))
	})
	t.Run("empty-refresh-token", func(t *testing.T) {
		assert := assert.New(t)
		client := testClient(t, StartTestProvider(t))
		_, err := client.ExchangeRefreshToken(context.Background(), "")
		assert.True(errors.Is(err, ErrInvalidParameter))
	})
	t.Run("revoked", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		p := StartTestProvider(t)
		p.SetTokenResponse("refresh_token", 403, `{"error":"invalid_grant","error_description":"refresh token revoked"}`)
		client := testClient(t, p)

		_, err := client.ExchangeRefreshToken(context.Background(), "rt-1")
		var exchErr *ExchangeError
		require.True(errors.As(err, &exchErr))
		assert.Equal(403, exchErr.StatusCode)
	})
}
