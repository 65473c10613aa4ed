package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildgate/guildgate/internal/ports"
)

// newDiscoveryServer serves a minimal OIDC discovery document so the
// provider can be constructed without reaching Azure AD.
func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		doc := map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/keys",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	srv := newDiscoveryServer(t)
	p, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Authority:    srv.URL,
		RedirectURL:  "http://localhost:3000/redirect",
		Scope:        "openid user.read",
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiredFields(t *testing.T) {
	ctx := context.Background()
	_, err := NewProvider(ctx, ProviderConfig{})
	require.Error(t, err)

	_, err = NewProvider(ctx, ProviderConfig{ClientID: "id"})
	require.Error(t, err)

	_, err = NewProvider(ctx, ProviderConfig{ClientID: "id", ClientSecret: "secret"})
	require.Error(t, err)
}

func TestBegin_AuthRequest(t *testing.T) {
	p := newTestProvider(t)

	req, err := p.Begin(context.Background())
	require.NoError(t, err)

	assert.Len(t, req.State, 32)
	assert.Len(t, req.Nonce, 32)
	assert.NotEqual(t, req.State, req.Nonce)

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, req.State, q.Get("state"))
	assert.Equal(t, req.Nonce, q.Get("nonce"))
	assert.Equal(t, "http://localhost:3000/redirect", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestBegin_FreshStatePerCall(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	a, err := p.Begin(ctx)
	require.NoError(t, err)
	b, err := p.Begin(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, a.State, b.State)
	assert.NotEqual(t, a.Nonce, b.Nonce)
}

func TestExchange_MissingCode(t *testing.T) {
	p := newTestProvider(t)

	err := p.Exchange(context.Background(), ports.ExchangeInput{State: "state", Nonce: "nonce"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization code is required")
}

func TestGenerateRandomString(t *testing.T) {
	s, err := generateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	assert.Equal(t, s, url.QueryEscape(s), "must be URL safe")

	empty, err := generateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
