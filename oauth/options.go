package oauth

import (
	"github.com/hashicorp/go-hclog"
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

// WithScopes provides an optional scope list, overriding DefaultScopes.
func WithScopes(scopes []string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withScopes = scopes
		case *authURLOptions:
			v.withScopes = scopes
		}
	}
}

// WithAudience provides an optional audience, for configs and for overriding
// the configured audience on a single auth URL.
func WithAudience(audience string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withAudience = audience
		case *authURLOptions:
			v.withAudience = audience
		}
	}
}

// WithProviderCA provides an optional CA cert PEM used when sending requests
// to the tenant.
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
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

// WithConnection provides an optional IdP connection to pre-select on an
// auth URL.
func WithConnection(connection string) Option {
	return func(o interface{}) {
		if o, ok := o.(*authURLOptions); ok {
			o.withConnection = connection
		}
	}
}
