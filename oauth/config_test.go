package oauth

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewConfig("https://tenant.example.com/", "client-id", "client-secret", "https://app.example.com/login",
			WithAudience("https://api.example.com"),
			WithScopes([]string{"openid", "email"}),
		)
		require.NoError(err)
		assert.Equal("https://tenant.example.com", c.TenantURL) // trailing slash trimmed
		assert.Equal("https://api.example.com", c.Audience)
		assert.Equal([]string{"openid", "email"}, c.Scopes)
	})
	t.Run("default-scopes", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewConfig("https://tenant.example.com", "client-id", "client-secret", "https://app.example.com/login")
		require.NoError(err)
		assert.Equal(DefaultScopes(), c.Scopes)
	})

	invalid := []struct {
		name        string
		tenantURL   string
		clientID    string
		redirectURL string
	}{
		{"empty-client-id", "https://tenant.example.com", "", "https://app.example.com/login"},
		{"empty-tenant-url", "", "client-id", "https://app.example.com/login"},
		{"empty-redirect-url", "https://tenant.example.com", "client-id", ""},
		{"bad-scheme", "ldap://tenant.example.com", "client-id", "https://app.example.com/login"},
	}
	for _, tt := range invalid {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert := assert.New(t)
			_, err := NewConfig(tt.tenantURL, tt.clientID, "client-secret", tt.redirectURL)
			assert.True(errors.Is(err, ErrInvalidParameter))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	var c *Config
	assert.True(errors.Is(c.Validate(), ErrNilParameter))
}

func TestClientSecret_Redaction(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	secret := ClientSecret("super-secret-value")

	assert.Equal(RedactedClientSecret, secret.String())
	assert.Equal(RedactedClientSecret, secret.String())

	marshaled, err := json.Marshal(secret)
	require.NoError(err)
	assert.NotContains(string(marshaled), "super-secret-value")

	c := Config{
		TenantURL:    "https://tenant.example.com",
		ClientID:     "client-id",
		ClientSecret: secret,
		RedirectURL:  "https://app.example.com/login",
	}
	marshaled, err = json.Marshal(c)
	require.NoError(err)
	assert.NotContains(string(marshaled), "super-secret-value")
}
