package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TestJWT mints an HS256-signed JWT with the given expiry, suitable anywhere
// a test needs an access token whose payload decodes to a known exp claim.
func TestJWT(t *testing.T, expiry time.Time, extraClaims ...map[string]interface{}) string {
	t.Helper()
	require := require.New(t)
	claims := jwt.MapClaims{
		"sub": "test-user",
		"exp": expiry.Unix(),
		"iat": time.Now().Unix(),
	}
	for _, extra := range extraClaims {
		for k, v := range extra {
			claims[k] = v
		}
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tk.SignedString([]byte("test-signing-secret"))
	require.NoError(err)
	return signed
}
