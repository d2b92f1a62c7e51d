package session

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		o(opts)
	}
}

// storeOptions is the set of available options for Store functions
type storeOptions struct {
	withKeys Keys
}

// storeDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func storeDefaults() storeOptions {
	return storeOptions{
		withKeys: DefaultKeys(),
	}
}

// getStoreOpts gets the store defaults and applies the opt overrides passed in
func getStoreOpts(opt ...Option) storeOptions {
	opts := storeDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithKeys provides an optional storage key mapping for a Store, overriding
// DefaultKeys.
func WithKeys(k Keys) Option {
	return func(o interface{}) {
		if o, ok := o.(*storeOptions); ok {
			o.withKeys = k
		}
	}
}
