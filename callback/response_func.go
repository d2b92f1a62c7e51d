package callback

import (
	"net/http"
	"strings"
)

// SuccessResponseFunc is used to create a response when a login flow
// completes with a saved session.  redirectTo is the target carried through
// the state round trip, or the configured after-login URL when the state
// carried none.
type SuccessResponseFunc func(redirectTo string, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used to create a response when a login flow fails.
// providerError holds the error the provider sent back on its redirect, when
// that is the failure; e holds a local failure (state integrity, exchange,
// persistence) otherwise.
type ErrorResponseFunc func(providerError *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request)

// AuthenErrorResponse is the error the authorization endpoint redirected
// back with.
type AuthenErrorResponse struct {
	Error       string
	Description string
}

func (r *AuthenErrorResponse) String() string {
	if r.Description != "" {
		return r.Error + ": " + r.Description
	}
	return r.Error
}

// DefaultSuccessResponse redirects to the target with a logged_in=success
// marker appended, so the landing page can tell a post-login arrival from a
// plain navigation.
func DefaultSuccessResponse(redirectTo string, w http.ResponseWriter, req *http.Request) {
	sep := "?"
	if strings.Contains(redirectTo, "?") {
		sep = "&"
	}
	http.Redirect(w, req, redirectTo+sep+"logged_in=success", http.StatusSeeOther)
}

// DefaultErrorResponse answers 401 for provider-signaled failures and 500
// for local ones.
func DefaultErrorResponse(providerError *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
	if providerError != nil {
		http.Error(w, providerError.String(), http.StatusUnauthorized)
		return
	}
	msg := "login failed"
	if e != nil {
		msg = e.Error()
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
