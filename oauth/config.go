package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	sdkHttp "github.com/ggondim/auth0-kits/sdk/http"
)

// ClientSecret is an oauth client secret
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// DefaultScopes is the scope list requested from the tenant when none is
// configured.
func DefaultScopes() []string {
	return []string{
		"openid",
		"profile",
		"picture",
		"name",
		"email",
		"offline_access",
	}
}

// Config represents the configuration for one tenant's token and
// authorization endpoints.  A Config is shared by the token exchange client
// and the management API client.
type Config struct {
	// TenantURL is the base URL of the identity provider tenant, scheme and
	// host with no trailing slash.
	TenantURL string

	// ClientID is the application's client id at the tenant.
	ClientID string

	// ClientSecret is the application's client secret at the tenant.
	ClientSecret ClientSecret

	// RedirectURL is the URL the tenant redirects back to after the user
	// completes authorization.  Every grant that carries a redirect_uri binds
	// this value.
	RedirectURL string

	// Audience is the API audience requested during authorization.
	Audience string

	// Scopes is the scope list requested during authorization; DefaultScopes
	// when empty.
	Scopes []string

	// ProviderCA is an optional CA cert to use when sending requests to the
	// tenant.
	ProviderCA string
}

// NewConfig composes a new tenant config.
// Supported options: WithScopes, WithAudience, WithProviderCA
func NewConfig(tenantURL string, clientID string, clientSecret ClientSecret, redirectURL string, opt ...Option) (*Config, error) {
	const op = "oauth.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		TenantURL:    strings.TrimSuffix(tenantURL, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Audience:     opts.withAudience,
		Scopes:       opts.withScopes,
		ProviderCA:   opts.withProviderCA,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid tenant config: %w", op, err)
	}
	return c, nil
}

// Validate the tenant configuration.  Among other validations, it verifies
// the tenant URL parses and uses an http or https scheme, but it doesn't
// verify the tenant is reachable.
func (c *Config) Validate() error {
	const op = "oauth.Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: tenant config is nil: %w", op, ErrNilParameter)
	}
	if c.ClientID == "" {
		return fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter)
	}
	if c.TenantURL == "" {
		return fmt.Errorf("%s: tenant URL is empty: %w", op, ErrInvalidParameter)
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("%s: redirect URL is empty: %w", op, ErrInvalidParameter)
	}
	u, err := url.Parse(c.TenantURL)
	if err != nil {
		return fmt.Errorf("%s: tenant URL %s is invalid: %w", op, c.TenantURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%s: tenant URL %s scheme is not http or https: %w", op, c.TenantURL, ErrInvalidParameter)
	}
	return nil
}

// HTTPClient is a helper function that creates a new http client for the
// tenant configured
func (c *Config) HTTPClient() (*http.Client, error) {
	const op = "oauth.Config.HTTPClient"
	client, err := sdkHttp.NewClient(c.ProviderCA)
	if err != nil {
		if errors.Is(err, sdkHttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// configOptions is the set of available options for Config functions
type configOptions struct {
	withScopes     []string
	withAudience   string
	withProviderCA string
}

// configDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func configDefaults() configOptions {
	return configOptions{
		withScopes: DefaultScopes(),
	}
}

// getConfigOpts gets the config defaults and applies the opt overrides
// passed in
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
