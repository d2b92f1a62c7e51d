package renew

import (
	"time"

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

// schedulerOptions is the set of available options for Scheduler functions
type schedulerOptions struct {
	withLogger hclog.Logger
	withClock  func() time.Time
}

func schedulerDefaults() schedulerOptions {
	return schedulerOptions{
		withLogger: hclog.NewNullLogger(),
		withClock:  time.Now,
	}
}

func getSchedulerOpts(opt ...Option) schedulerOptions {
	opts := schedulerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger; hclog.NewNullLogger() is the
// default.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*schedulerOptions); ok {
			o.withLogger = l
		}
	}
}

// WithClock provides an optional time source, used by tests to pin delay
// computations.
func WithClock(now func() time.Time) Option {
	return func(o interface{}) {
		if o, ok := o.(*schedulerOptions); ok {
			o.withClock = now
		}
	}
}
