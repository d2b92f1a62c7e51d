package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeClaims decodes the payload of a JWT access token without verifying
// its signature.  Signature verification belongs to the resource servers the
// token is presented to; this side of the flow only inspects claims, chiefly
// the expiry instant driving the renewal schedule.
func DecodeClaims(accessToken string) (jwt.MapClaims, error) {
	const op = "session.DecodeClaims"
	if accessToken == "" {
		return nil, fmt.Errorf("%s: access token is empty: %w", op, ErrInvalidParameter)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%s: unable to decode access token payload: %w", op, err)
	}
	return claims, nil
}

// Expiry returns the expiry instant from a decoded payload's "exp" claim.
func Expiry(claims jwt.MapClaims) (time.Time, error) {
	const op = "session.Expiry"
	if claims == nil {
		return time.Time{}, fmt.Errorf("%s: claims are nil: %w", op, ErrNilParameter)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: unable to read expiry claim: %w", op, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrMissingExpiry)
	}
	return exp.Time, nil
}
