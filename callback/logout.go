package callback

import (
	"fmt"
	"net/http"

	"github.com/ggondim/auth0-kits/oauth"
	"github.com/ggondim/auth0-kits/session"
)

// Logout creates the logout-route handler: it clears the active session
// (the last provider connection survives) and redirects to the tenant's
// federated logout endpoint.  afterLogoutURL is where the tenant returns
// the user afterwards; the request's referer is used when it is empty.
func Logout(client *oauth.Client, store *session.Store, afterLogoutURL string) (http.HandlerFunc, error) {
	const op = "callback.Logout"
	if client == nil {
		return nil, fmt.Errorf("%s: oauth client is nil: %w", op, oauth.ErrNilParameter)
	}
	if store == nil {
		return nil, fmt.Errorf("%s: session store is nil: %w", op, oauth.ErrNilParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		store.Clear()
		returnTo := afterLogoutURL
		if returnTo == "" {
			returnTo = req.Referer()
		}
		http.Redirect(w, req, client.LogoutURL(returnTo), http.StatusTemporaryRedirect)
	}, nil
}
