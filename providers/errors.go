package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAccessToken is wrapped when a token endpoint answers without an access_token.
	ErrMissingAccessToken = errors.New("token response has no access_token")

	// ErrNoIDToken is returned by TokenResponse.IDTokenClaims when no id_token was issued.
	ErrNoIDToken = errors.New("token response has no id_token")
)

// ConfigurationError reports a required credential that is absent or empty.
type ConfigurationError struct {
	Provider string
	Field    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %q: missing required credential %q", e.Provider, e.Field)
}

// CallbackError reports a provider redirect carrying an error parameter.
// Code and Description are the provider's values, verbatim.
type CallbackError struct {
	Provider    string
	Code        string
	Description string
}

func (e *CallbackError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("provider %q callback error: %s: %s", e.Provider, e.Code, e.Description)
	}
	return fmt.Sprintf("provider %q callback error: %s", e.Provider, e.Code)
}

// InvalidCallbackError reports a callback that cannot be processed, such as one
// without an authorization code.
type InvalidCallbackError struct {
	Provider string
	Reason   string
}

func (e *InvalidCallbackError) Error() string {
	return fmt.Sprintf("provider %q: invalid callback: %s", e.Provider, e.Reason)
}

// TokenEndpointError reports an OAuth error returned in a successful (2xx) response
// body, as GitHub and Naver do.
type TokenEndpointError struct {
	Provider    string
	Operation   string
	Code        string
	Description string
}

func (e *TokenEndpointError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("provider %q %s: %s: %s", e.Provider, e.Operation, e.Code, e.Description)
	}
	return fmt.Sprintf("provider %q %s: %s", e.Provider, e.Operation, e.Code)
}
