package oauth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
	ErrInvalidCACert    = errors.New("invalid CA certificate")

	// ErrTransport reports a network/connectivity failure reaching the token
	// endpoint.  It is always surfaced to the caller, never silently retried
	// here.
	ErrTransport = errors.New("transport failure")
)

// ExchangeError reports that the token endpoint responded but signaled
// failure: a non-success status, a malformed body, or a body without an
// access token.  The raw response is attached for diagnostic surfacing.
type ExchangeError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Body is the raw response body.
	Body []byte
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Body)
}
