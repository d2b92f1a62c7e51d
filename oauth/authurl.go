package oauth

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const authorizePath = "/authorize"

// AuthURL generates the URL a caller can use to kick off the authorization
// code flow at the tenant.  The state blob should come from a state.Codec so
// the redirect return can be authenticated; the connection pre-selects the
// IdP (callers usually pass the store's last connection).
// Supported options: WithConnection, WithAudience, WithScopes
func (c *Client) AuthURL(stateBlob string, opt ...Option) (string, error) {
	const op = "oauth.Client.AuthURL"
	if stateBlob == "" {
		return "", fmt.Errorf("%s: state is empty: %w", op, ErrInvalidParameter)
	}
	opts := getAuthURLOpts(c.config, opt...)

	oauth2Config := oauth2.Config{
		ClientID:    c.config.ClientID,
		RedirectURL: c.config.RedirectURL,
		Scopes:      opts.withScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL: c.config.TenantURL + authorizePath,
		},
	}
	authCodeOpts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("access_type", "offline"),
		oauth2.SetAuthURLParam("approval_prompt", "force"),
	}
	if opts.withAudience != "" {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("audience", opts.withAudience))
	}
	if opts.withConnection != "" {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("connection", opts.withConnection))
	}
	return oauth2Config.AuthCodeURL(stateBlob, authCodeOpts...), nil
}

// LogoutURL generates the URL that terminates the tenant session, federated
// to the upstream IdP, returning to returnTo afterwards.
func (c *Client) LogoutURL(returnTo string) string {
	var b strings.Builder
	b.WriteString(c.config.TenantURL)
	b.WriteString("/v2/logout?federated")
	b.WriteString("&client_id=")
	b.WriteString(url.QueryEscape(c.config.ClientID))
	if returnTo != "" {
		b.WriteString("&returnTo=")
		b.WriteString(url.QueryEscape(returnTo))
	}
	return b.String()
}

// authURLOptions is the set of available options for AuthURL
type authURLOptions struct {
	withConnection string
	withAudience   string
	withScopes     []string
}

// authURLDefaults come from the client's config so a single URL can override
// them without mutating the config.
func authURLDefaults(c *Config) authURLOptions {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}
	return authURLOptions{
		withAudience: c.Audience,
		withScopes:   scopes,
	}
}

func getAuthURLOpts(c *Config, opt ...Option) authURLOptions {
	opts := authURLDefaults(c)
	ApplyOpts(&opts, opt...)
	return opts
}
