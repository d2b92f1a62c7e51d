package state

import (
	"errors"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")

	// ErrStateIntegrity reports that a state blob failed to decrypt or to
	// parse.  It is evidence of a stale or forged round trip (for example the
	// state key was regenerated between redirect issuance and return), not a
	// program defect: callers must reject the login attempt and never proceed
	// with a guessed state.
	ErrStateIntegrity = errors.New("state integrity violation")
)
