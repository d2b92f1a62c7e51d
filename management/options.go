package management

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ggondim/auth0-kits/oauth"
)

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		o(opts)
	}
}

// WithLogger provides an optional logger; hclog.NewNullLogger() is the
// default.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withLogger = l
		}
	}
}

// WithTokenTTL provides an optional fallback cache lifetime for management
// tokens whose grant response carries no expires_in.
func WithTokenTTL(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withTokenTTL = d
		}
	}
}

// WithCredentials overrides the configured client credentials for a single
// token grant.
func WithCredentials(clientID string, clientSecret oauth.ClientSecret) Option {
	return func(o interface{}) {
		if o, ok := o.(*tokenOptions); ok {
			o.withClientID = clientID
			o.withClientSecret = clientSecret
		}
	}
}

// DefaultTokenTTL is the fallback cache lifetime for management tokens.
const DefaultTokenTTL = 10 * time.Minute

type clientOptions struct {
	withLogger   hclog.Logger
	withTokenTTL time.Duration
}

func clientDefaults() clientOptions {
	return clientOptions{
		withLogger:   hclog.NewNullLogger(),
		withTokenTTL: DefaultTokenTTL,
	}
}

func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

type tokenOptions struct {
	withClientID     string
	withClientSecret oauth.ClientSecret
}

func getTokenOpts(opt ...Option) tokenOptions {
	opts := tokenOptions{}
	ApplyOpts(&opts, opt...)
	return opts
}
