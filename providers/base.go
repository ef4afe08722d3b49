package providers

import (
	"context"
	"fmt"

	"github.com/giantswarm/multi-oauth/transport"
)

// Base carries what every adapter needs: its name, validated credentials and a
// transport client. Adapters embed it.
type Base struct {
	name   string
	creds  Credentials
	client *transport.Client
}

// NewBase validates creds against required and returns a Base owning a private copy
// of them. A nil client is replaced with a default transport.Client for name.
func NewBase(name string, required []string, creds Credentials, client *transport.Client) (Base, error) {
	if field, missing := creds.FirstMissing(required); missing {
		return Base{}, &ConfigurationError{Provider: name, Field: field}
	}

	if client == nil {
		client = transport.New(transport.Config{Provider: name})
	}

	return Base{
		name:   name,
		creds:  creds.Clone(),
		client: client,
	}, nil
}

// Name returns the provider name.
func (b *Base) Name() string {
	return b.name
}

// Credential returns one credential value.
func (b *Base) Credential(key string) string {
	return b.creds.Get(key)
}

// ClientID returns the client_id credential.
func (b *Base) ClientID() string {
	return b.creds.ClientID()
}

// ClientSecret returns the client_secret credential.
func (b *Base) ClientSecret() string {
	return b.creds.ClientSecret()
}

// RedirectURI returns the redirect_uri credential.
func (b *Base) RedirectURI() string {
	return b.creds.RedirectURI()
}

// Client returns the transport client.
func (b *Base) Client() *transport.Client {
	return b.client
}

// BasicAuth returns the client id and secret as HTTP Basic credentials.
func (b *Base) BasicAuth() *transport.BasicAuth {
	return &transport.BasicAuth{
		Username: b.ClientID(),
		Password: b.ClientSecret(),
	}
}

// FetchToken performs a token endpoint call. A 2xx body carrying an OAuth error
// becomes a *TokenEndpointError; a body without access_token wraps
// ErrMissingAccessToken.
func (b *Base) FetchToken(ctx context.Context, operation string, req transport.Request) (*TokenResponse, error) {
	var tok TokenResponse
	if err := b.client.Do(ctx, operation, req, &tok); err != nil {
		return nil, err
	}

	if code := tok.ErrorCode(); code != "" {
		return nil, &TokenEndpointError{
			Provider:    b.name,
			Operation:   operation,
			Code:        code,
			Description: tok.ErrorDescription(),
		}
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("provider %q %s: %w", b.name, operation, ErrMissingAccessToken)
	}

	return &tok, nil
}

// Call performs a call whose response content is not needed, such as a revocation.
// A 2xx body with a string "error" field becomes a *TokenEndpointError.
func (b *Base) Call(ctx context.Context, operation string, req transport.Request) error {
	var body map[string]any
	if err := b.client.Do(ctx, operation, req, &body); err != nil {
		return err
	}

	if code, ok := body["error"].(string); ok && code != "" {
		description, _ := body["error_description"].(string)
		return &TokenEndpointError{
			Provider:    b.name,
			Operation:   operation,
			Code:        code,
			Description: description,
		}
	}
	return nil
}

// FetchUserInfo performs a profile call and returns the decoded body.
func (b *Base) FetchUserInfo(ctx context.Context, req transport.Request) (UserInfo, error) {
	info := UserInfo{}
	if err := b.client.Do(ctx, OpUserInfo, req, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// ExchangeFunc matches Provider.ExchangeCode.
type ExchangeFunc func(ctx context.Context, code, state, codeVerifier string) (*TokenResponse, error)

// HandleCallback implements the callback contract shared by all providers: a provider
// error wins, a missing code is rejected, both without I/O; otherwise the code is
// exchanged.
func HandleCallback(ctx context.Context, provider string, params CallbackParams, exchange ExchangeFunc) (*TokenResponse, error) {
	if params.Error != "" {
		return nil, &CallbackError{
			Provider:    provider,
			Code:        params.Error,
			Description: params.ErrorDescription,
		}
	}

	if params.Code == "" {
		return nil, &InvalidCallbackError{
			Provider: provider,
			Reason:   "missing authorization code",
		}
	}

	return exchange(ctx, params.Code, params.State, params.CodeVerifier)
}

// ScopeOrDefault returns scopes, or def when scopes is empty.
func ScopeOrDefault(scopes []string, def ...string) []string {
	if len(scopes) > 0 {
		return scopes
	}
	return def
}

// OptionalScopes returns scopes, or nil (omitted from URLs) when empty.
func OptionalScopes(scopes []string) any {
	if len(scopes) == 0 {
		return nil
	}
	return scopes
}

// OptionalString returns s, or nil (omitted from URLs and forms) when empty.
func OptionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
