package crossstorage

import (
	"github.com/hashicorp/go-hclog"

	"github.com/ggondim/auth0-kits/session"
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
		switch v := o.(type) {
		case *hubOptions:
			v.withLogger = l
		case *clientOptions:
			v.withLogger = l
		}
	}
}

// WithCallbacks provides the lifecycle callbacks a Client dispatches after
// re-synchronizing on a renewal event.
func WithCallbacks(cb Callbacks) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withCallbacks = cb
		}
	}
}

// WithMirrorStorage provides the storage surface a Client mirrors the hub's
// fields into; an in-process MemoryStorage is the default.
func WithMirrorStorage(s session.Storage) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withStorage = s
		}
	}
}

// WithKeys provides the storage key mapping for a Client's mirror.
func WithKeys(k session.Keys) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withKeys = k
		}
	}
}

type hubOptions struct {
	withLogger hclog.Logger
}

func hubDefaults() hubOptions {
	return hubOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getHubOpts(opt ...Option) hubOptions {
	opts := hubDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

type clientOptions struct {
	withLogger    hclog.Logger
	withCallbacks Callbacks
	withStorage   session.Storage
	withKeys      session.Keys
}

func clientDefaults() clientOptions {
	return clientOptions{
		withLogger: hclog.NewNullLogger(),
		withKeys:   session.DefaultKeys(),
	}
}

func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
