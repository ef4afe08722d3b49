package x

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/giantswarm/multi-oauth/internal/testutil"
	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/providers/providertest"
	"github.com/giantswarm/multi-oauth/security"
)

func testCredentials() providers.Credentials {
	return providers.Credentials{
		"client_id":     "x-client",
		"client_secret": "x-secret",
		"redirect_uri":  "http://localhost/x",
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *testutil.ProviderServer) {
	t.Helper()

	client, srv := providertest.NewClient(t, providerName, handler)
	provider, err := NewProvider(testCredentials(), client)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	return provider, srv
}

func tokenHandler(w http.ResponseWriter, _ *http.Request) {
	testutil.WriteJSON(w, http.StatusOK, map[string]any{
		"token_type":    "bearer",
		"expires_in":    7200,
		"access_token":  "x-access",
		"refresh_token": "x-refresh",
		"scope":         "tweet.read users.read offline.access",
	})
}

func assertBasicAuth(t *testing.T, req testutil.RecordedRequest) {
	t.Helper()

	user, pass, ok := (&http.Request{Header: req.Header}).BasicAuth()
	if !ok || user != "x-client" || pass != "x-secret" {
		t.Errorf("BasicAuth() = %q, %q, %v", user, pass, ok)
	}
}

func TestProvider_Contract(t *testing.T) {
	providertest.Run(t, providertest.Config{
		Name:        "x",
		New:         New,
		Credentials: testCredentials(),
	})
}

func TestProvider_AuthURL(t *testing.T) {
	provider, _ := newTestProvider(t, nil)

	pkce, err := security.GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE() error = %v", err)
	}

	tests := []struct {
		name      string
		opts      providers.AuthURLOptions
		wantScope string
		wantPKCE  bool
	}{
		{
			name:      "defaults",
			opts:      providers.AuthURLOptions{},
			wantScope: "tweet.read users.read",
		},
		{
			name: "pkce and custom scopes",
			opts: providers.AuthURLOptions{
				Scopes:              []string{"users.read", "offline.access"},
				State:               "x-state",
				CodeChallenge:       pkce.CodeChallenge,
				CodeChallengeMethod: pkce.CodeChallengeMethod,
			},
			wantScope: "users.read offline.access",
			wantPKCE:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := provider.AuthURL(tt.opts)
			if !strings.HasPrefix(got, "https://x.com/i/oauth2/authorize?") {
				t.Fatalf("AuthURL() = %q", got)
			}

			u, _ := url.Parse(got)
			query := u.Query()
			if query.Get("scope") != tt.wantScope {
				t.Errorf("scope = %q, want %q", query.Get("scope"), tt.wantScope)
			}
			if query.Has("code_challenge") != tt.wantPKCE || query.Has("code_challenge_method") != tt.wantPKCE {
				t.Errorf("pkce params in %v, want present = %v", query, tt.wantPKCE)
			}
			if tt.wantPKCE && query.Get("code_challenge_method") != "S256" {
				t.Errorf("code_challenge_method = %q", query.Get("code_challenge_method"))
			}
		})
	}
}

func TestProvider_ExchangeCode(t *testing.T) {
	provider, srv := newTestProvider(t, tokenHandler)

	tok, err := provider.HandleCallback(context.Background(), providers.CallbackParams{
		Code:         "x-code",
		State:        "x-state",
		CodeVerifier: "verifier-123",
	})
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if tok.AccessToken != "x-access" || tok.RefreshToken != "x-refresh" {
		t.Errorf("token = %+v", tok)
	}

	req := srv.LastRequest(t)
	if req.Method != http.MethodPost || req.URL() != "api.x.com/2/oauth2/token" {
		t.Errorf("request = %s %s", req.Method, req.URL())
	}
	assertBasicAuth(t, req)

	form := req.Form()
	want := map[string]string{
		"grant_type":    "authorization_code",
		"code":          "x-code",
		"client_id":     "x-client",
		"redirect_uri":  "http://localhost/x",
		"code_verifier": "verifier-123",
	}
	for key, value := range want {
		if form.Get(key) != value {
			t.Errorf("form[%s] = %q, want %q", key, form.Get(key), value)
		}
	}
	if form.Has("client_secret") {
		t.Error("client_secret must travel in the Authorization header only")
	}
}

func TestProvider_ExchangeCode_WithoutVerifier(t *testing.T) {
	provider, srv := newTestProvider(t, tokenHandler)

	if _, err := provider.ExchangeCode(context.Background(), "x-code", "", ""); err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if srv.LastRequest(t).Form().Has("code_verifier") {
		t.Error("code_verifier sent without a verifier")
	}
}

func TestProvider_RefreshToken(t *testing.T) {
	provider, srv := newTestProvider(t, tokenHandler)

	if _, err := provider.RefreshToken(context.Background(), providers.RefreshOptions{RefreshToken: "x-refresh"}); err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}

	req := srv.LastRequest(t)
	assertBasicAuth(t, req)
	form := req.Form()
	if form.Get("grant_type") != "refresh_token" || form.Get("refresh_token") != "x-refresh" {
		t.Errorf("form = %v", form)
	}
	if form.Has("client_secret") {
		t.Error("client_secret must travel in the Authorization header only")
	}
}

func TestProvider_RevokeToken(t *testing.T) {
	tests := []struct {
		name     string
		hint     string
		wantHint string
	}{
		{"default hint", "", "access_token"},
		{"refresh token hint", "refresh_token", "refresh_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				testutil.WriteJSON(w, http.StatusOK, map[string]any{"revoked": true})
			})

			err := provider.RevokeToken(context.Background(), providers.RevokeOptions{Token: "x-access", TokenTypeHint: tt.hint})
			if err != nil {
				t.Fatalf("RevokeToken() error = %v", err)
			}

			req := srv.LastRequest(t)
			if req.Method != http.MethodPost || req.URL() != "api.x.com/2/oauth2/revoke" {
				t.Errorf("request = %s %s", req.Method, req.URL())
			}
			assertBasicAuth(t, req)
			form := req.Form()
			if form.Get("token") != "x-access" || form.Get("token_type_hint") != tt.wantHint {
				t.Errorf("form = %v", form)
			}
		})
	}
}

func TestProvider_UserInfo(t *testing.T) {
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"id": "2244994945", "name": "X Dev", "username": "XDevelopers"},
		})
	})

	info, err := provider.UserInfo(context.Background(), "x-access")
	if err != nil {
		t.Fatalf("UserInfo() error = %v", err)
	}
	data, ok := info["data"].(map[string]any)
	if !ok || data["username"] != "XDevelopers" {
		t.Errorf("info = %v", info)
	}

	req := srv.LastRequest(t)
	if req.Method != http.MethodGet || req.URL() != "api.x.com/2/users/me" {
		t.Errorf("request = %s %s", req.Method, req.URL())
	}
	if got := req.Header.Get("Authorization"); got != "Bearer x-access" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestProvider_TokenEndpointError(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"error":             "invalid_request",
			"error_description": "Value passed for the authorization code was invalid.",
		})
	})

	_, err := provider.ExchangeCode(context.Background(), "bad", "", "")
	var te *providers.TokenEndpointError
	if !errors.As(err, &te) || te.Code != "invalid_request" {
		t.Errorf("ExchangeCode() error = %v, want TokenEndpointError", err)
	}
}
