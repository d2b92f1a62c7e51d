// Package callback provides the http handlers wired at the application's
// navigation boundaries.  They are thin: every decision of substance is
// delegated to the oauth client, the session store and the state codec.
package callback

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ggondim/auth0-kits/oauth"
	"github.com/ggondim/auth0-kits/session"
	"github.com/ggondim/auth0-kits/state"
)

// RoundTrip is the payload carried through the redirect flow inside the
// encrypted state parameter: either the URL to return to after login, or an
// opaque timestamp when there is none.
type RoundTrip struct {
	Redirect string `json:"redirect,omitempty"`
	TS       string `json:"ts,omitempty"`
}

// Login creates the login-route handler.  A request without a code starts
// authorization: it encodes a state round trip and redirects to the
// tenant's authorize endpoint, pre-selecting the store's last provider
// connection.  A request returning with a code completes it: the state is
// decoded (an undecodable state aborts the attempt), the code exchanged and
// the session saved.  afterLoginURL is the fallback redirect target when
// the state round trip carries none.
func Login(client *oauth.Client, store *session.Store, afterLoginURL string, sFn SuccessResponseFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.Login"
	if client == nil {
		return nil, fmt.Errorf("%s: oauth client is nil: %w", op, oauth.ErrNilParameter)
	}
	if store == nil {
		return nil, fmt.Errorf("%s: session store is nil: %w", op, oauth.ErrNilParameter)
	}
	if sFn == nil {
		sFn = DefaultSuccessResponse
	}
	if eFn == nil {
		eFn = DefaultErrorResponse
	}

	return func(w http.ResponseWriter, req *http.Request) {
		// get parameters from either the body or query parameters.
		// FormValue prioritizes body values, if found.
		if errParam := req.FormValue("error"); errParam != "" {
			eFn(&AuthenErrorResponse{
				Error:       errParam,
				Description: req.FormValue("error_description"),
			}, nil, w, req)
			return
		}

		code := req.FormValue("code")
		if code == "" {
			startAuthorization(client, store, w, req, eFn)
			return
		}
		completeAuthorization(client, store, afterLoginURL, code, w, req, sFn, eFn)
	}, nil
}

func startAuthorization(client *oauth.Client, store *session.Store, w http.ResponseWriter, req *http.Request, eFn ErrorResponseFunc) {
	codec, err := storeCodec(store)
	if err != nil {
		eFn(nil, err, w, req)
		return
	}
	rt := RoundTrip{Redirect: req.FormValue("redirect")}
	if rt.Redirect == "" {
		rt.TS = base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(time.Now().UnixMilli(), 10)))
	}
	blob, err := codec.Encode(rt)
	if err != nil {
		eFn(nil, err, w, req)
		return
	}
	authURL, err := client.AuthURL(blob, oauth.WithConnection(store.LastConnection()))
	if err != nil {
		eFn(nil, err, w, req)
		return
	}
	http.Redirect(w, req, authURL, http.StatusTemporaryRedirect)
}

func completeAuthorization(client *oauth.Client, store *session.Store, afterLoginURL string, code string, w http.ResponseWriter, req *http.Request, sFn SuccessResponseFunc, eFn ErrorResponseFunc) {
	var rt RoundTrip
	if blob := req.FormValue("state"); blob != "" {
		codec, err := storeCodec(store)
		if err != nil {
			eFn(nil, err, w, req)
			return
		}
		// an undecodable state is a stale or forged round trip: reject the
		// attempt, never proceed with a guessed state
		if err := codec.Decode(blob, &rt); err != nil {
			eFn(nil, err, w, req)
			return
		}
	}

	grant, err := client.ExchangeAuthorizationCode(req.Context(), code)
	if err != nil {
		eFn(nil, err, w, req)
		return
	}
	if err := store.Save(grant.Session()); err != nil {
		eFn(nil, err, w, req)
		return
	}

	target := rt.Redirect
	if target == "" {
		target = afterLoginURL
	}
	if target == "" {
		target = "/"
	}
	sFn(target, w, req)
}

func storeCodec(store *session.Store) (*state.Codec, error) {
	key, err := store.StateKey()
	if err != nil {
		return nil, err
	}
	return state.NewCodec(key)
}
