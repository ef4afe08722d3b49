package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/giantswarm/multi-oauth/internal/util"
	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/transport"
)

// Compile-time check that Provider implements the providers.Provider interface.
var _ providers.Provider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "google"

// Google OAuth endpoints
const (
	authEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint    = "https://oauth2.googleapis.com/token"
	revokeEndpoint   = "https://oauth2.googleapis.com/revoke"
	userInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
)

const defaultAccessType = "offline"

var defaultScopes = []string{"email", "profile"}

var requiredCredentials = []string{
	providers.CredentialClientID,
	providers.CredentialClientSecret,
	providers.CredentialRedirectURI,
}

// Provider implements the providers.Provider interface for Google OAuth.
type Provider struct {
	providers.Base
	config *oauth2.Config
}

// NewProvider creates a new Google OAuth provider.
// A nil client selects a default transport client.
func NewProvider(creds providers.Credentials, client *transport.Client) (*Provider, error) {
	base, err := providers.NewBase(providerName, requiredCredentials, creds, client)
	if err != nil {
		return nil, err
	}
	return &Provider{
		Base:   base,
		config: base.OAuth2Config(authEndpoint, tokenEndpoint, oauth2.AuthStyleInParams),
	}, nil
}

// New is NewProvider returning the interface type, for use in registries.
func New(creds providers.Credentials, client *transport.Client) (providers.Provider, error) {
	p, err := NewProvider(creds, client)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RequiredCredentials returns the credential keys Google requires.
func (p *Provider) RequiredCredentials() []string {
	return append([]string(nil), requiredCredentials...)
}

// AuthURL generates the Google authorization URL.
func (p *Provider) AuthURL(opts providers.AuthURLOptions) string {
	accessType := opts.AccessType
	if accessType == "" {
		accessType = defaultAccessType
	}

	return util.BuildURL(authEndpoint, util.Params{
		"client_id":               p.ClientID(),
		"redirect_uri":            p.RedirectURI(),
		"response_type":           "code",
		"scope":                   providers.ScopeOrDefault(opts.Scopes, defaultScopes...),
		"access_type":             accessType,
		"state":                   providers.OptionalString(opts.State),
		"include_granted_scopes":  opts.IncludeGrantedScopes,
		"enable_granular_consent": opts.EnableGranularConsent,
		"login_hint":              providers.OptionalString(opts.LoginHint),
		"prompt":                  providers.OptionalString(opts.Prompt),
		"code_challenge":          providers.OptionalString(opts.CodeChallenge),
		"code_challenge_method":   providers.OptionalString(opts.CodeChallengeMethod),
	})
}

// HandleCallback processes Google's redirect.
func (p *Provider) HandleCallback(ctx context.Context, params providers.CallbackParams) (*providers.TokenResponse, error) {
	return providers.HandleCallback(ctx, providerName, params, p.ExchangeCode)
}

// ExchangeCode exchanges an authorization code for tokens. The verifier is sent when
// the flow used PKCE.
func (p *Provider) ExchangeCode(ctx context.Context, code, _ string, codeVerifier string) (*providers.TokenResponse, error) {
	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}
	return p.Exchange(ctx, p.config, code, opts...)
}

// RefreshToken refreshes an access token. The client secret is sent only when set.
func (p *Provider) RefreshToken(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
	return p.Refresh(ctx, p.config, opts.RefreshToken)
}

// RevokeToken revokes an access or refresh token at Google.
func (p *Provider) RevokeToken(ctx context.Context, opts providers.RevokeOptions) error {
	return p.Call(ctx, providers.OpRevokeToken, transport.Request{
		Method: http.MethodPost,
		URL:    revokeEndpoint,
		Form: util.Params{
			"token": opts.Token,
		},
	})
}

// UserInfo fetches the user's profile from Google's userinfo endpoint.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (providers.UserInfo, error) {
	return p.FetchUserInfo(ctx, transport.Request{
		URL: userInfoEndpoint,
		Header: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	})
}
