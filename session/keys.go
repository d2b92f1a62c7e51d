package session

// Keys maps the logical session record fields to the string keys used in the
// persistence surface.  The defaults match what existing deployments already
// hold in storage, so a replica can read a live record as-is; any field can
// be remapped per deployment.
type Keys struct {
	AccessToken        string
	AccessTokenPayload string
	User               string
	RefreshToken       string
	StateKey           string
	LastConnection     string
}

// DefaultKeys returns the standard storage key set.
func DefaultKeys() Keys {
	return Keys{
		AccessToken:        "auth0.access_token",
		AccessTokenPayload: "auth0.access_token_payload",
		User:               "auth0.user",
		RefreshToken:       "auth0.refresh_token",
		StateKey:           "auth0.state_key",
		LastConnection:     "auth0.last_connection",
	}
}
