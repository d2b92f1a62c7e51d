// Package oauth performs the token-acquisition protocols against a
// configured tenant: authorization-code exchange, refresh-token exchange and
// authorization/logout URL construction.  It never catches and suppresses a
// failure; exchange and transport errors propagate to the caller, which
// decides the user-visible behavior.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ggondim/auth0-kits/session"
)

const tokenPath = "/oauth/token"

// Grant is the outcome of a successful token acquisition: a fresh access
// token, optionally a refresh token for non-interactive renewal, and
// optionally the identity record the exchange resolved.
type Grant struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	ExpiresIn    int64             `json:"expires_in,omitempty"`
	User         *session.Identity `json:"user,omitempty"`
}

// Session converts the grant into a session record ready for
// session.Store.Save.
func (g *Grant) Session() session.Session {
	return session.Session{
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
		User:         g.User,
	}
}

// Client exchanges credentials for tokens at the tenant's token endpoint.
type Client struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// NewClient creates a token exchange client for the tenant.
// Supported options: WithLogger
func NewClient(c *Config, opt ...Option) (*Client, error) {
	const op = "oauth.NewClient"
	if c == nil {
		return nil, fmt.Errorf("%s: tenant config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: tenant config is invalid: %w", op, err)
	}
	opts := getClientOpts(opt...)
	client, err := c.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	return &Client{
		config: c,
		client: client,
		logger: opts.withLogger,
	}, nil
}

// Config returns the tenant config the client was built with.
func (c *Client) Config() *Config { return c.config }

// ExchangeAuthorizationCode exchanges the authorization code issued during
// the redirect flow for tokens.  It fails with an *ExchangeError when the
// endpoint signals failure or answers with a malformed body, and with
// ErrTransport when the endpoint is unreachable.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code string) (*Grant, error) {
	const op = "oauth.Client.ExchangeAuthorizationCode"
	if code == "" {
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	}
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.config.ClientID},
		"client_secret": {string(c.config.ClientSecret)},
		"redirect_uri":  {c.config.RedirectURL},
		"code":          {code},
	}
	return c.exchange(ctx, op, form)
}

// ExchangeRefreshToken exchanges a refresh token for a fresh access token.
// The bound redirect_uri always comes from the configured redirect URL.
// Same error contract as ExchangeAuthorizationCode.
func (c *Client) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*Grant, error) {
	const op = "oauth.Client.ExchangeRefreshToken"
	if refreshToken == "" {
		return nil, fmt.Errorf("%s: refresh token is empty: %w", op, ErrInvalidParameter)
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.config.ClientID},
		"client_secret": {string(c.config.ClientSecret)},
		"redirect_uri":  {c.config.RedirectURL},
		"refresh_token": {refreshToken},
	}
	return c.exchange(ctx, op, form)
}

func (c *Client) exchange(ctx context.Context, op string, form url.Values) (*Grant, error) {
	endpoint := c.config.TenantURL + tokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("token exchange", "grant_type", form.Get("grant_type"), "endpoint", endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: token endpoint unreachable: %w: %w", op, ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read response: %w: %w", op, ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w", op, &ExchangeError{StatusCode: resp.StatusCode, Body: body})
	}

	var grant Grant
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, fmt.Errorf("%s: malformed token response: %w", op, &ExchangeError{StatusCode: resp.StatusCode, Body: body})
	}
	if grant.AccessToken == "" {
		return nil, fmt.Errorf("%s: token response without access token: %w", op, &ExchangeError{StatusCode: resp.StatusCode, Body: body})
	}
	return &grant, nil
}

// clientOptions is the set of available options for Client functions
type clientOptions struct {
	withLogger hclog.Logger
}

func clientDefaults() clientOptions {
	return clientOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
