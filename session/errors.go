package session

import (
	"errors"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
	ErrNoSession        = errors.New("no active session")
	ErrMalformedRecord  = errors.New("malformed session record")
	ErrMissingExpiry    = errors.New("access token payload has no expiry claim")
)
