package providers

import (
	"context"
)

// Operation labels used in errors, logs, spans and metrics.
const (
	OpExchangeCode = "exchange_code"
	OpRefreshToken = "refresh_token"
	OpRevokeToken  = "revoke_token"
	OpUserInfo     = "userinfo"
)

// Provider defines the interface for OAuth identity providers.
// Each implementation absorbs one provider's endpoints, parameter names and flow
// quirks so callers never branch on provider identity.
type Provider interface {
	// Name returns the provider name (e.g., "google", "kakao", "x")
	Name() string

	// RequiredCredentials lists the credential keys the provider mandates, in the
	// order they are validated.
	RequiredCredentials() []string

	// AuthURL builds the URL to redirect users to. It performs no I/O and never fails;
	// option values are passed through as given.
	AuthURL(opts AuthURLOptions) string

	// HandleCallback processes the parameters of the provider's redirect and, when
	// they carry an authorization code, exchanges it for tokens.
	HandleCallback(ctx context.Context, params CallbackParams) (*TokenResponse, error)

	// ExchangeCode exchanges an authorization code for tokens.
	// codeVerifier is for PKCE (pass an empty string when not using PKCE).
	ExchangeCode(ctx context.Context, code, state, codeVerifier string) (*TokenResponse, error)

	// RefreshToken obtains a new access token.
	RefreshToken(ctx context.Context, opts RefreshOptions) (*TokenResponse, error)

	// RevokeToken revokes a token (or logs the user out) at the provider.
	RevokeToken(ctx context.Context, opts RevokeOptions) error

	// UserInfo fetches the profile of the user owning accessToken.
	UserInfo(ctx context.Context, accessToken string) (UserInfo, error)
}

// AuthURLOptions holds the optional authorization URL parameters. Zero values are
// omitted from the URL; providers ignore options they do not support.
type AuthURLOptions struct {
	// Scopes are joined with a single space. Empty selects the provider default.
	Scopes []string
	State  string

	// Google
	AccessType            string
	IncludeGrantedScopes  *bool
	EnableGranularConsent *bool

	// Google, Kakao
	LoginHint string
	Prompt    string

	// Kakao
	ServiceTerms string
	Nonce        string

	// GitHub
	AllowSignup *bool

	// X (PKCE)
	CodeChallenge       string
	CodeChallengeMethod string
}

// CallbackParams are the query parameters of the provider's redirect back to the
// application, plus the PKCE verifier the caller kept for this flow.
type CallbackParams struct {
	Code             string `json:"code,omitempty"`
	State            string `json:"state,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`

	// CodeVerifier is forwarded to the token exchange of PKCE flows.
	CodeVerifier string `json:"code_verifier,omitempty"`
}

// RefreshOptions holds the token refresh input.
type RefreshOptions struct {
	RefreshToken string `json:"refresh_token"`
}

// RevokeOptions holds the token revocation input.
type RevokeOptions struct {
	Token         string `json:"token"`
	TokenTypeHint string `json:"token_type_hint,omitempty"`

	// TargetID names the user to log out (Kakao).
	TargetID string `json:"target_id,omitempty"`
}

// UserInfo is the provider's profile response, passed through verbatim.
type UserInfo map[string]any

// String returns the string value stored under key, or "".
func (u UserInfo) String(key string) string {
	if v, ok := u[key].(string); ok {
		return v
	}
	return ""
}

// BoolPtr returns a pointer to b, for the optional boolean fields of AuthURLOptions.
func BoolPtr(b bool) *bool {
	return &b
}
