package management

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")

	// ErrTransport reports a network/connectivity failure reaching the
	// tenant.  It is always surfaced to the caller, never silently retried
	// here.
	ErrTransport = errors.New("transport failure")

	// ErrNoManagementToken reports that an API call could not proceed
	// because the tenant explicitly issued no management token.  The grant
	// itself reports that outcome as an empty token, not an error; only a
	// call that requires the token raises this.
	ErrNoManagementToken = errors.New("no management token issued")
)

// APIError reports that a management API endpoint responded but signaled
// failure via its status code.  The raw response is attached for diagnostic
// surfacing.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Body is the raw response body.
	Body []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("management api returned status %d: %s", e.StatusCode, e.Body)
}
