// Package mock provides mock implementations of the Provider interface for testing.
package mock

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/transport"
)

// Compile-time check that MockProvider implements the providers.Provider interface.
var _ providers.Provider = (*MockProvider)(nil)

// MockProvider is a mock implementation of the Provider interface for testing
type MockProvider struct {
	// NameFunc is called when Name() is invoked
	NameFunc func() string

	// RequiredCredentialsFunc is called when RequiredCredentials() is invoked
	RequiredCredentialsFunc func() []string

	// AuthURLFunc is called when AuthURL() is invoked
	AuthURLFunc func(opts providers.AuthURLOptions) string

	// HandleCallbackFunc is called when HandleCallback() is invoked. When nil, the
	// shared callback contract runs against ExchangeCode.
	HandleCallbackFunc func(ctx context.Context, params providers.CallbackParams) (*providers.TokenResponse, error)

	// ExchangeCodeFunc is called when ExchangeCode() is invoked
	ExchangeCodeFunc func(ctx context.Context, code, state, codeVerifier string) (*providers.TokenResponse, error)

	// RefreshTokenFunc is called when RefreshToken() is invoked
	RefreshTokenFunc func(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error)

	// RevokeTokenFunc is called when RevokeToken() is invoked
	RevokeTokenFunc func(ctx context.Context, opts providers.RevokeOptions) error

	// UserInfoFunc is called when UserInfo() is invoked
	UserInfoFunc func(ctx context.Context, accessToken string) (providers.UserInfo, error)

	// CallCounts tracks how many times each method was called
	CallCounts map[string]int

	// mu protects CallCounts from concurrent access
	mu sync.RWMutex
}

// NewMockProvider creates a new mock provider with default implementations
func NewMockProvider() *MockProvider {
	return &MockProvider{
		CallCounts: make(map[string]int),
		NameFunc: func() string {
			return "mock"
		},
		AuthURLFunc: func(opts providers.AuthURLOptions) string {
			q := url.Values{}
			q.Set("state", opts.State)
			if opts.CodeChallenge != "" {
				q.Set("code_challenge", opts.CodeChallenge)
				q.Set("code_challenge_method", opts.CodeChallengeMethod)
			}
			return "https://mock.example.com/authorize?" + q.Encode()
		},
		ExchangeCodeFunc: func(ctx context.Context, code, state, codeVerifier string) (*providers.TokenResponse, error) {
			return &providers.TokenResponse{
				AccessToken:  "mock-access-token",
				TokenType:    "Bearer",
				ExpiresIn:    3600,
				RefreshToken: "mock-refresh-token",
			}, nil
		},
		RefreshTokenFunc: func(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
			return &providers.TokenResponse{
				AccessToken:  "new-mock-access-token",
				TokenType:    "Bearer",
				ExpiresIn:    3600,
				RefreshToken: "new-mock-refresh-token",
			}, nil
		},
		RevokeTokenFunc: func(ctx context.Context, opts providers.RevokeOptions) error {
			return nil
		},
		UserInfoFunc: func(ctx context.Context, accessToken string) (providers.UserInfo, error) {
			return providers.UserInfo{
				"id":    "mock-user-123",
				"email": "mock@example.com",
				"name":  "Mock User",
			}, nil
		},
	}
}

// Constructor returns a registry-compatible constructor that always yields m,
// after validating creds against m.RequiredCredentials().
func Constructor(m *MockProvider) func(providers.Credentials, *transport.Client) (providers.Provider, error) {
	return func(creds providers.Credentials, _ *transport.Client) (providers.Provider, error) {
		if field, missing := creds.FirstMissing(m.RequiredCredentials()); missing {
			return nil, &providers.ConfigurationError{Provider: m.Name(), Field: field}
		}
		return m, nil
	}
}

// count increments the counter for method and returns fn, which is read under the lock.
func count[F any](m *MockProvider, method string, fn *F) F {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CallCounts == nil {
		m.CallCounts = make(map[string]int)
	}
	m.CallCounts[method]++
	return *fn
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	// LOCK PATTERN: Lock only to update counter and read function reference.
	// User functions run without the lock since they may call other mock methods.
	fn := count(m, "Name", &m.NameFunc)
	if fn == nil {
		return "mock"
	}
	return fn()
}

// RequiredCredentials returns the credential keys the mock demands
func (m *MockProvider) RequiredCredentials() []string {
	fn := count(m, "RequiredCredentials", &m.RequiredCredentialsFunc)
	if fn == nil {
		return nil
	}
	return fn()
}

// AuthURL generates the URL to redirect users for authentication
func (m *MockProvider) AuthURL(opts providers.AuthURLOptions) string {
	fn := count(m, "AuthURL", &m.AuthURLFunc)
	if fn == nil {
		return "https://mock.example.com/authorize?state=" + url.QueryEscape(opts.State)
	}
	return fn(opts)
}

// HandleCallback processes a callback
func (m *MockProvider) HandleCallback(ctx context.Context, params providers.CallbackParams) (*providers.TokenResponse, error) {
	fn := count(m, "HandleCallback", &m.HandleCallbackFunc)
	if fn == nil {
		return providers.HandleCallback(ctx, m.Name(), params, m.ExchangeCode)
	}
	return fn(ctx, params)
}

// ExchangeCode exchanges an authorization code for tokens
func (m *MockProvider) ExchangeCode(ctx context.Context, code, state, codeVerifier string) (*providers.TokenResponse, error) {
	fn := count(m, "ExchangeCode", &m.ExchangeCodeFunc)
	if fn == nil {
		return nil, fmt.Errorf("ExchangeCodeFunc not configured")
	}
	return fn(ctx, code, state, codeVerifier)
}

// RefreshToken refreshes a token
func (m *MockProvider) RefreshToken(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
	fn := count(m, "RefreshToken", &m.RefreshTokenFunc)
	if fn == nil {
		return nil, fmt.Errorf("RefreshTokenFunc not configured")
	}
	return fn(ctx, opts)
}

// RevokeToken revokes a token at the provider
func (m *MockProvider) RevokeToken(ctx context.Context, opts providers.RevokeOptions) error {
	fn := count(m, "RevokeToken", &m.RevokeTokenFunc)
	if fn == nil {
		return fmt.Errorf("RevokeTokenFunc not configured")
	}
	return fn(ctx, opts)
}

// UserInfo fetches the user's profile
func (m *MockProvider) UserInfo(ctx context.Context, accessToken string) (providers.UserInfo, error) {
	fn := count(m, "UserInfo", &m.UserInfoFunc)
	if fn == nil {
		return nil, fmt.Errorf("UserInfoFunc not configured")
	}
	return fn(ctx, accessToken)
}

// ResetCallCounts resets all call counters
func (m *MockProvider) ResetCallCounts() {
	m.mu.Lock()
	m.CallCounts = make(map[string]int)
	m.mu.Unlock()
}

// GetCallCount returns the number of times a method was called
func (m *MockProvider) GetCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCounts[method]
}
