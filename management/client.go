// Package management calls the identity provider's administrative API on
// behalf of the configured tenant.  Calls authenticate with a management
// token obtained through the client-credentials grant; tokens are cached
// in-process per credential pair for their advertised lifetime.
package management

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/jellydator/ttlcache/v3"

	"github.com/ggondim/auth0-kits/oauth"
)

const (
	tokenPath    = "/oauth/token"
	apiAudience  = "/api/v2/"
	usersPath    = "/api/v2/users"
	clientsPath  = "/api/v2/clients"
	rolesSuffix  = "/roles"
	identsSuffix = "/identities"
)

// Client performs management API calls for one tenant.  Close releases the
// token cache's cleanup goroutine.
type Client struct {
	config   *oauth.Config
	client   *http.Client
	logger   hclog.Logger
	tokenTTL time.Duration
	tokens   *ttlcache.Cache[string, string]
}

// NewClient creates a management API client for the tenant.
// Supported options: WithLogger, WithTokenTTL
func NewClient(c *oauth.Config, opt ...Option) (*Client, error) {
	const op = "management.NewClient"
	if c == nil {
		return nil, fmt.Errorf("%s: tenant config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: tenant config is invalid: %w", op, err)
	}
	opts := getClientOpts(opt...)
	httpClient, err := c.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	tokens := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go tokens.Start()
	return &Client{
		config:   c,
		client:   httpClient,
		logger:   opts.withLogger,
		tokenTTL: opts.withTokenTTL,
		tokens:   tokens,
	}, nil
}

// Close stops the token cache's cleanup goroutine.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.tokens.Stop()
}

// Token acquires a management API token through the client-credentials
// grant, audience fixed to the tenant's management API root.  A "" token
// with a nil error means the tenant explicitly issued no token, a
// recognized outcome distinct from transport or endpoint failure.  Tokens
// are cached per credential pair; callers must not assume freshness beyond
// the cache lifetime.
// Supported options: WithCredentials
func (c *Client) Token(ctx context.Context, opt ...Option) (string, error) {
	const op = "management.Client.Token"
	opts := getTokenOpts(opt...)
	clientID, clientSecret := c.config.ClientID, c.config.ClientSecret
	if opts.withClientID != "" {
		clientID = opts.withClientID
	}
	if opts.withClientSecret != "" {
		clientSecret = opts.withClientSecret
	}

	cacheKey := credentialKey(clientID, clientSecret)
	if item := c.tokens.Get(cacheKey); item != nil {
		c.logger.Debug("management token served from cache")
		return item.Value(), nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {string(clientSecret)},
		"audience":      {c.config.TenantURL + apiAudience},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TenantURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: token endpoint unreachable: %w: %w", op, ErrTransport, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: unable to read response: %w: %w", op, ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s: %w", op, &APIError{StatusCode: resp.StatusCode, Body: body})
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return "", fmt.Errorf("%s: malformed token response: %w", op, &APIError{StatusCode: resp.StatusCode, Body: body})
	}
	if grant.AccessToken == "" {
		// the tenant answered and issued no token
		c.logger.Debug("management token grant issued no token")
		return "", nil
	}

	ttl := c.tokenTTL
	if grant.ExpiresIn > 0 {
		ttl = time.Duration(grant.ExpiresIn) * time.Second
	}
	c.tokens.Set(cacheKey, grant.AccessToken, ttl)
	return grant.AccessToken, nil
}

// UserInfo gets a user's identity record.  The userID usually comes from
// the sub claim of an access token.
func (c *Client) UserInfo(ctx context.Context, userID string) (map[string]interface{}, error) {
	const op = "management.Client.UserInfo"
	if userID == "" {
		return nil, fmt.Errorf("%s: user id is empty: %w", op, ErrInvalidParameter)
	}
	endpoint := c.config.TenantURL + usersPath + "/" + url.PathEscape(userID)
	body, err := c.call(ctx, op, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return nil, err
	}
	var info map[string]interface{}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%s: malformed user info response: %w", op, &APIError{StatusCode: http.StatusOK, Body: body})
	}
	return info, nil
}

// LinkIdentities links a secondary account into the primary user, returning
// the resulting identity list verbatim.
func (c *Client) LinkIdentities(ctx context.Context, primaryUserID string, secondaryToken string) (json.RawMessage, error) {
	const op = "management.Client.LinkIdentities"
	if primaryUserID == "" {
		return nil, fmt.Errorf("%s: primary user id is empty: %w", op, ErrInvalidParameter)
	}
	if secondaryToken == "" {
		return nil, fmt.Errorf("%s: secondary token is empty: %w", op, ErrInvalidParameter)
	}
	endpoint := c.config.TenantURL + usersPath + "/" + url.PathEscape(primaryUserID) + identsSuffix
	form := url.Values{"link_with": {secondaryToken}}
	body, err := c.call(ctx, op, http.MethodPost, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// AssignRoles assigns the given role ids to a user.
func (c *Client) AssignRoles(ctx context.Context, userID string, roleIDs ...string) error {
	const op = "management.Client.AssignRoles"
	if userID == "" {
		return fmt.Errorf("%s: user id is empty: %w", op, ErrInvalidParameter)
	}
	if len(roleIDs) == 0 {
		return fmt.Errorf("%s: no role ids: %w", op, ErrInvalidParameter)
	}
	payload, err := json.Marshal(map[string][]string{"roles": roleIDs})
	if err != nil {
		return fmt.Errorf("%s: unable to encode roles: %w", op, err)
	}
	endpoint := c.config.TenantURL + usersPath + "/" + url.PathEscape(userID) + rolesSuffix
	if _, err := c.call(ctx, op, http.MethodPost, endpoint, "application/json", strings.NewReader(string(payload))); err != nil {
		return err
	}
	return nil
}

// DeleteUser deletes a user.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	const op = "management.Client.DeleteUser"
	if userID == "" {
		return fmt.Errorf("%s: user id is empty: %w", op, ErrInvalidParameter)
	}
	endpoint := c.config.TenantURL + usersPath + "/" + url.PathEscape(userID)
	if _, err := c.call(ctx, op, http.MethodDelete, endpoint, "", nil); err != nil {
		return err
	}
	return nil
}

// ClientMetadata gets the configured application's client_metadata map; nil
// when the application carries none.
func (c *Client) ClientMetadata(ctx context.Context) (map[string]string, error) {
	const op = "management.Client.ClientMetadata"
	endpoint := c.config.TenantURL + clientsPath + "/" + url.PathEscape(c.config.ClientID) +
		"?fields=client_metadata&include_fields=true"
	body, err := c.call(ctx, op, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		ClientMetadata map[string]string `json:"client_metadata"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: malformed client response: %w", op, &APIError{StatusCode: http.StatusOK, Body: body})
	}
	return resp.ClientMetadata, nil
}

// call performs one bearer-authenticated API request, acquiring the
// management token first.
func (c *Client) call(ctx context.Context, op string, method string, endpoint string, contentType string, body io.Reader) ([]byte, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoManagementToken)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: endpoint unreachable: %w: %w", op, ErrTransport, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read response: %w: %w", op, ErrTransport, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: %w", op, &APIError{StatusCode: resp.StatusCode, Body: respBody})
	}
	return respBody, nil
}

// credentialKey derives the cache key from the credential pair, so a token
// never leaks across credential sets.
func credentialKey(clientID string, clientSecret oauth.ClientSecret) string {
	sum := sha256.Sum256([]byte(clientID + ":" + string(clientSecret)))
	return hex.EncodeToString(sum[:])
}
