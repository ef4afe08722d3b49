package google

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
	"github.com/giantswarm/multi-oauth/transport"
)

func testCredentials() providers.Credentials {
	return providers.Credentials{
		"client_id":     "cid",
		"client_secret": "secret",
		"redirect_uri":  "http://localhost",
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

func tokenHandler(w http.ResponseWriter, r *http.Request) {
	testutil.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token":  "ya29.access",
		"token_type":    "Bearer",
		"expires_in":    3599,
		"refresh_token": "1//refresh",
		"scope":         "email profile",
		"id_token":      "header.payload.sig",
	})
}

func TestProvider_Contract(t *testing.T) {
	providertest.Run(t, providertest.Config{
		Name:        "google",
		New:         New,
		Credentials: testCredentials(),
	})
}

func TestProvider_RequiredCredentials(t *testing.T) {
	provider, _ := newTestProvider(t, nil)

	got := provider.RequiredCredentials()
	want := []string{"client_id", "client_secret", "redirect_uri"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("RequiredCredentials() = %v, want %v", got, want)
	}

	// Returned slice is a copy
	got[0] = "mutated"
	if provider.RequiredCredentials()[0] != "client_id" {
		t.Error("RequiredCredentials() exposes internal state")
	}
}

func TestProvider_AuthURL(t *testing.T) {
	provider, _ := newTestProvider(t, nil)

	tests := []struct {
		name    string
		opts    providers.AuthURLOptions
		want    map[string]string
		wantNot []string
	}{
		{
			name: "defaults",
			opts: providers.AuthURLOptions{},
			want: map[string]string{
				"client_id":     "cid",
				"redirect_uri":  "http://localhost",
				"response_type": "code",
				"scope":         "email profile",
				"access_type":   "offline",
			},
			wantNot: []string{"state", "include_granted_scopes", "enable_granular_consent", "login_hint", "prompt"},
		},
		{
			name: "custom scope",
			opts: providers.AuthURLOptions{Scopes: []string{"email"}},
			want: map[string]string{"scope": "email"},
		},
		{
			name: "all options",
			opts: providers.AuthURLOptions{
				Scopes:                []string{"openid", "email"},
				State:                 "state-123",
				AccessType:            "online",
				IncludeGrantedScopes:  providers.BoolPtr(true),
				EnableGranularConsent: providers.BoolPtr(false),
				LoginHint:             "user@example.com",
				Prompt:                "consent",
			},
			want: map[string]string{
				"scope":                   "openid email",
				"state":                   "state-123",
				"access_type":             "online",
				"include_granted_scopes":  "true",
				"enable_granular_consent": "false",
				"login_hint":              "user@example.com",
				"prompt":                  "consent",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := provider.AuthURL(tt.opts)
			if !strings.HasPrefix(got, "https://accounts.google.com/o/oauth2/v2/auth?") {
				t.Fatalf("AuthURL() = %q, wrong endpoint", got)
			}

			u, err := url.Parse(got)
			if err != nil {
				t.Fatalf("url.Parse() error = %v", err)
			}
			query := u.Query()
			for k, v := range tt.want {
				if query.Get(k) != v {
					t.Errorf("%s = %q, want %q", k, query.Get(k), v)
				}
			}
			for _, k := range tt.wantNot {
				if query.Has(k) {
					t.Errorf("%s should be omitted, got %q", k, query.Get(k))
				}
			}
		})
	}
}

func TestProvider_AuthURL_ContainsRawParams(t *testing.T) {
	provider, _ := newTestProvider(t, nil)

	got := provider.AuthURL(providers.AuthURLOptions{Scopes: []string{"email"}})
	for _, want := range []string{"client_id=cid", "scope=email"} {
		if !strings.Contains(got, want) {
			t.Errorf("AuthURL() = %q, missing %q", got, want)
		}
	}
}

func TestProvider_ExchangeCode(t *testing.T) {
	provider, srv := newTestProvider(t, tokenHandler)

	tok, err := provider.ExchangeCode(context.Background(), "auth-code", "state", "")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if tok.AccessToken != "ya29.access" || tok.RefreshToken != "1//refresh" || tok.ExpiresIn != 3599 {
		t.Errorf("token = %+v", tok)
	}

	req := srv.LastRequest(t)
	if req.Method != http.MethodPost || req.URL() != "oauth2.googleapis.com/token" {
		t.Errorf("request = %s %s", req.Method, req.URL())
	}
	form := req.Form()
	want := map[string]string{
		"grant_type":    "authorization_code",
		"code":          "auth-code",
		"client_id":     "cid",
		"client_secret": "secret",
		"redirect_uri":  "http://localhost",
	}
	for k, v := range want {
		if form.Get(k) != v {
			t.Errorf("form %s = %q, want %q", k, form.Get(k), v)
		}
	}
	if form.Has("code_verifier") {
		t.Error("code_verifier should be omitted without PKCE")
	}
}

func TestProvider_ExchangeCode_Rejected(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Bad Request",
		})
	})

	_, err := provider.ExchangeCode(context.Background(), "used-code", "", "")
	var te *transport.Error
	if !errors.As(err, &te) {
		t.Fatalf("ExchangeCode() error = %v, want *transport.Error", err)
	}
	if te.StatusCode != http.StatusBadRequest || te.Provider != providerName || te.URL != tokenEndpoint {
		t.Errorf("transport.Error = %+v", te)
	}
}

func TestProvider_HandleCallback_ForwardsVerifier(t *testing.T) {
	provider, srv := newTestProvider(t, tokenHandler)

	_, err := provider.HandleCallback(context.Background(), providers.CallbackParams{Code: "auth-code", CodeVerifier: "verifier"})
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if got := srv.LastRequest(t).Form().Get("code_verifier"); got != "verifier" {
		t.Errorf("code_verifier = %q, want verifier", got)
	}
}

func TestProvider_RefreshToken(t *testing.T) {
	provider, srv := newTestProvider(t, tokenHandler)

	tok, err := provider.RefreshToken(context.Background(), providers.RefreshOptions{RefreshToken: "1//refresh"})
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if tok.AccessToken != "ya29.access" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}

	form := srv.LastRequest(t).Form()
	if form.Get("grant_type") != "refresh_token" || form.Get("refresh_token") != "1//refresh" {
		t.Errorf("form = %v", form)
	}
	if form.Get("client_secret") != "secret" {
		t.Errorf("client_secret = %q", form.Get("client_secret"))
	}
}

func TestProvider_RevokeToken(t *testing.T) {
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if err := provider.RevokeToken(context.Background(), providers.RevokeOptions{Token: "ya29.access"}); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}

	req := srv.LastRequest(t)
	if req.Method != http.MethodPost || req.URL() != "oauth2.googleapis.com/revoke" {
		t.Errorf("request = %s %s", req.Method, req.URL())
	}
	if req.Form().Get("token") != "ya29.access" {
		t.Errorf("token = %q", req.Form().Get("token"))
	}
}

func TestProvider_RevokeToken_Failed(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_token"})
	})

	err := provider.RevokeToken(context.Background(), providers.RevokeOptions{Token: "bad"})
	var te *transport.Error
	if !errors.As(err, &te) {
		t.Fatalf("RevokeToken() error = %v, want *transport.Error", err)
	}
	if te.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", te.StatusCode)
	}
}

func TestProvider_UserInfo(t *testing.T) {
	provider, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"id":             "1234567890",
			"email":          "user@example.com",
			"verified_email": true,
			"name":           "Test User",
		})
	})

	info, err := provider.UserInfo(context.Background(), "ya29.access")
	if err != nil {
		t.Fatalf("UserInfo() error = %v", err)
	}
	if info.String("email") != "user@example.com" || info["verified_email"] != true {
		t.Errorf("info = %v", info)
	}

	req := srv.LastRequest(t)
	if req.Method != http.MethodGet || req.URL() != "www.googleapis.com/oauth2/v2/userinfo" {
		t.Errorf("request = %s %s", req.Method, req.URL())
	}
	if got := req.Header.Get("Authorization"); got != "Bearer ya29.access" {
		t.Errorf("Authorization = %q", got)
	}
}
