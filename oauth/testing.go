package oauth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// TestProvider is a local stand-in for a tenant.  It serves the token
// endpoint with programmable per-grant-type responses, records the forms it
// received, and lets a test register extra handlers for other tenant paths
// (such as management API routes).
type TestProvider struct {
	t          *testing.T
	httpServer *httptest.Server

	mu        sync.Mutex
	responses map[string]testResponse
	forms     map[string][]url.Values
	handlers  map[string]http.HandlerFunc
}

type testResponse struct {
	statusCode int
	body       string
}

// StartTestProvider starts a TestProvider; it is shut down automatically
// when the test completes.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	p := &TestProvider{
		t:         t,
		responses: map[string]testResponse{},
		forms:     map[string][]url.Values{},
		handlers:  map[string]http.HandlerFunc{},
	}
	p.httpServer = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.httpServer.Close)
	return p
}

// URL returns the provider's base URL, usable as a Config.TenantURL.
func (p *TestProvider) URL() string { return p.httpServer.URL }

// SetTokenResponse programs the token endpoint's answer for one grant type.
func (p *TestProvider) SetTokenResponse(grantType string, statusCode int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[grantType] = testResponse{statusCode: statusCode, body: body}
}

// Handle registers a handler for a non-token tenant path.
func (p *TestProvider) Handle(pathPrefix string, h http.HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[pathPrefix] = h
}

// GrantCount reports how many times the token endpoint was hit for the given
// grant type.
func (p *TestProvider) GrantCount(grantType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.forms[grantType])
}

// LastForm returns the most recent form posted for the given grant type, or
// nil when the grant was never requested.
func (p *TestProvider) LastForm(grantType string) url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	forms := p.forms[grantType]
	if len(forms) == 0 {
		return nil
	}
	return forms[len(forms)-1]
}

func (p *TestProvider) serve(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodPost && req.URL.Path == "/oauth/token" {
		p.serveToken(w, req)
		return
	}

	p.mu.Lock()
	var handler http.HandlerFunc
	for prefix, h := range p.handlers {
		if strings.HasPrefix(req.URL.Path, prefix) {
			handler = h
			break
		}
	}
	p.mu.Unlock()

	if handler == nil {
		http.NotFound(w, req)
		return
	}
	handler(w, req)
}

func (p *TestProvider) serveToken(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	grantType := req.PostForm.Get("grant_type")

	p.mu.Lock()
	p.forms[grantType] = append(p.forms[grantType], req.PostForm)
	resp, ok := p.responses[grantType]
	p.mu.Unlock()

	if !ok {
		http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.statusCode)
	_, _ = w.Write([]byte(resp.body))
}
