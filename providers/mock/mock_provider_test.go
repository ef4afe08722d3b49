package mock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/giantswarm/multi-oauth/providers"
)

func TestMockProvider_Defaults(t *testing.T) {
	m := NewMockProvider()
	ctx := context.Background()

	if m.Name() != "mock" {
		t.Errorf("Name() = %q", m.Name())
	}

	authURL := m.AuthURL(providers.AuthURLOptions{State: "s1", CodeChallenge: "c", CodeChallengeMethod: "S256"})
	if !strings.Contains(authURL, "state=s1") || !strings.Contains(authURL, "code_challenge=c") {
		t.Errorf("AuthURL() = %q", authURL)
	}

	tok, err := m.HandleCallback(ctx, providers.CallbackParams{Code: "code"})
	if err != nil || tok.AccessToken != "mock-access-token" {
		t.Errorf("HandleCallback() = %v, %v", tok, err)
	}

	tok, err = m.RefreshToken(ctx, providers.RefreshOptions{RefreshToken: "r"})
	if err != nil || tok.AccessToken != "new-mock-access-token" {
		t.Errorf("RefreshToken() = %v, %v", tok, err)
	}

	if err := m.RevokeToken(ctx, providers.RevokeOptions{Token: "t"}); err != nil {
		t.Errorf("RevokeToken() error = %v", err)
	}

	info, err := m.UserInfo(ctx, "t")
	if err != nil || info.String("email") != "mock@example.com" {
		t.Errorf("UserInfo() = %v, %v", info, err)
	}

	if got := m.GetCallCount("ExchangeCode"); got != 1 {
		t.Errorf("ExchangeCode count = %d, want 1 (via HandleCallback)", got)
	}
}

func TestMockProvider_HandleCallbackContract(t *testing.T) {
	m := NewMockProvider()

	_, err := m.HandleCallback(context.Background(), providers.CallbackParams{Error: "access_denied"})
	var cbErr *providers.CallbackError
	if !errors.As(err, &cbErr) {
		t.Fatalf("HandleCallback() error = %v, want CallbackError", err)
	}
	if m.GetCallCount("ExchangeCode") != 0 {
		t.Error("ExchangeCode called for an error callback")
	}
}

func TestMockProvider_UnconfiguredFuncs(t *testing.T) {
	m := &MockProvider{}
	ctx := context.Background()

	if m.Name() != "mock" {
		t.Errorf("Name() = %q", m.Name())
	}
	if _, err := m.ExchangeCode(ctx, "c", "", ""); err == nil {
		t.Error("ExchangeCode() expected error")
	}
	if _, err := m.RefreshToken(ctx, providers.RefreshOptions{}); err == nil {
		t.Error("RefreshToken() expected error")
	}
	if err := m.RevokeToken(ctx, providers.RevokeOptions{}); err == nil {
		t.Error("RevokeToken() expected error")
	}
	if _, err := m.UserInfo(ctx, "t"); err == nil {
		t.Error("UserInfo() expected error")
	}
}

func TestConstructor(t *testing.T) {
	m := NewMockProvider()
	m.RequiredCredentialsFunc = func() []string { return []string{"client_id"} }

	newFn := Constructor(m)

	if _, err := newFn(providers.Credentials{}, nil); err == nil {
		t.Fatal("expected ConfigurationError")
	}

	p, err := newFn(providers.Credentials{"client_id": "id"}, nil)
	if err != nil {
		t.Fatalf("constructor error = %v", err)
	}
	if p != providers.Provider(m) {
		t.Error("constructor must return the configured mock")
	}
}

func TestMockProvider_ConcurrentCalls(t *testing.T) {
	m := NewMockProvider()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.UserInfo(context.Background(), "t")
		}()
	}
	wg.Wait()

	if got := m.GetCallCount("UserInfo"); got != 20 {
		t.Errorf("UserInfo count = %d, want 20", got)
	}

	m.ResetCallCounts()
	if got := m.GetCallCount("UserInfo"); got != 0 {
		t.Errorf("count after reset = %d", got)
	}
}
