package session

// Identity describes the authenticated principal as returned by the login
// exchange.  Provider names the upstream IdP connection (for example
// "google-oauth2") and is retained as the last connection even after the
// session is cleared, so the next login attempt can pre-select it.
type Identity struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider"`
}
