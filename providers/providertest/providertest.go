// Package providertest runs the behavior every providers.Provider implementation must
// share against a concrete adapter.
package providertest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/giantswarm/multi-oauth/internal/testutil"
	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/transport"
)

// Constructor builds the adapter under test.
type Constructor func(creds providers.Credentials, client *transport.Client) (providers.Provider, error)

// Config describes the adapter under test.
type Config struct {
	// Name is the expected Provider.Name().
	Name string

	// New builds the adapter.
	New Constructor

	// Credentials is a complete, valid credential set.
	Credentials providers.Credentials
}

// NewClient returns a transport client for provider whose requests all reach a
// recording test server.
func NewClient(t *testing.T, provider string, handler http.HandlerFunc) (*transport.Client, *testutil.ProviderServer) {
	t.Helper()

	srv := testutil.NewProviderServer(t, handler)
	return transport.New(transport.Config{Provider: provider, HTTPClient: srv.HTTPClient()}), srv
}

// Run exercises construction, naming, URL purity and callback handling.
func Run(t *testing.T, cfg Config) {
	t.Helper()

	t.Run("valid credentials", func(t *testing.T) {
		p, err := cfg.New(cfg.Credentials.Clone(), nil)
		if err != nil {
			t.Fatalf("constructor error = %v", err)
		}
		if p.Name() != cfg.Name {
			t.Errorf("Name() = %q, want %q", p.Name(), cfg.Name)
		}
	})

	t.Run("missing required credential", func(t *testing.T) {
		p, err := cfg.New(cfg.Credentials.Clone(), nil)
		if err != nil {
			t.Fatalf("constructor error = %v", err)
		}

		for _, field := range p.RequiredCredentials() {
			for _, value := range []*string{nil, ptr("")} {
				creds := cfg.Credentials.Clone()
				if value == nil {
					delete(creds, field)
				} else {
					creds[field] = *value
				}

				_, err := cfg.New(creds, nil)
				var cfgErr *providers.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("without %q: error = %v, want *providers.ConfigurationError", field, err)
				}
				if cfgErr.Field != field || cfgErr.Provider != cfg.Name {
					t.Errorf("without %q: ConfigurationError = %+v", field, cfgErr)
				}
			}
		}
	})

	t.Run("auth url is pure and deterministic", func(t *testing.T) {
		client, srv := NewClient(t, cfg.Name, nil)
		p, err := cfg.New(cfg.Credentials.Clone(), client)
		if err != nil {
			t.Fatalf("constructor error = %v", err)
		}

		opts := providers.AuthURLOptions{
			Scopes:              []string{"a", "b"},
			State:               "xyz",
			Prompt:              "consent",
			CodeChallenge:       "challenge",
			CodeChallengeMethod: "S256",
		}
		first := p.AuthURL(opts)
		second := p.AuthURL(opts)
		if first != second {
			t.Errorf("AuthURL() not deterministic:\n%s\n%s", first, second)
		}
		if first == "" {
			t.Error("AuthURL() returned an empty string")
		}
		if srv.RequestCount() != 0 {
			t.Errorf("AuthURL() performed %d requests", srv.RequestCount())
		}
	})

	t.Run("callback error", func(t *testing.T) {
		client, srv := NewClient(t, cfg.Name, nil)
		p, err := cfg.New(cfg.Credentials.Clone(), client)
		if err != nil {
			t.Fatalf("constructor error = %v", err)
		}

		_, err = p.HandleCallback(context.Background(), providers.CallbackParams{Error: "access_denied", ErrorDescription: "denied"})
		var cbErr *providers.CallbackError
		if !errors.As(err, &cbErr) {
			t.Fatalf("HandleCallback() error = %v, want *providers.CallbackError", err)
		}
		if cbErr.Code != "access_denied" || cbErr.Description != "denied" || cbErr.Provider != cfg.Name {
			t.Errorf("CallbackError = %+v", cbErr)
		}
		if srv.RequestCount() != 0 {
			t.Errorf("HandleCallback() performed %d requests", srv.RequestCount())
		}
	})

	t.Run("callback without code", func(t *testing.T) {
		client, srv := NewClient(t, cfg.Name, nil)
		p, err := cfg.New(cfg.Credentials.Clone(), client)
		if err != nil {
			t.Fatalf("constructor error = %v", err)
		}

		_, err = p.HandleCallback(context.Background(), providers.CallbackParams{})
		var invErr *providers.InvalidCallbackError
		if !errors.As(err, &invErr) {
			t.Fatalf("HandleCallback() error = %v, want *providers.InvalidCallbackError", err)
		}
		if srv.RequestCount() != 0 {
			t.Errorf("HandleCallback() performed %d requests", srv.RequestCount())
		}
	})
}

func ptr(s string) *string {
	return &s
}
