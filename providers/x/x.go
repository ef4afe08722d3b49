package x

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
const providerName = "x"

// X endpoints
const (
	authEndpoint     = "https://x.com/i/oauth2/authorize"
	tokenEndpoint    = "https://api.x.com/2/oauth2/token"
	revokeEndpoint   = "https://api.x.com/2/oauth2/revoke"
	userInfoEndpoint = "https://api.x.com/2/users/me"
)

const defaultTokenTypeHint = "access_token"

var defaultScopes = []string{"tweet.read", "users.read"}

var requiredCredentials = []string{
	providers.CredentialClientID,
	providers.CredentialClientSecret,
	providers.CredentialRedirectURI,
}

// Provider implements the providers.Provider interface for X.
type Provider struct {
	providers.Base
	config *oauth2.Config
}

// NewProvider creates a new X provider.
// A nil client selects a default transport client.
func NewProvider(creds providers.Credentials, client *transport.Client) (*Provider, error) {
	base, err := providers.NewBase(providerName, requiredCredentials, creds, client)
	if err != nil {
		return nil, err
	}
	return &Provider{
		Base:   base,
		config: base.OAuth2Config(authEndpoint, tokenEndpoint, oauth2.AuthStyleInHeader),
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

// RequiredCredentials returns the credential keys X requires.
func (p *Provider) RequiredCredentials() []string {
	return append([]string(nil), requiredCredentials...)
}

// AuthURL generates the X authorization URL.
func (p *Provider) AuthURL(opts providers.AuthURLOptions) string {
	return util.BuildURL(authEndpoint, util.Params{
		"client_id":             p.ClientID(),
		"redirect_uri":          p.RedirectURI(),
		"response_type":         "code",
		"scope":                 providers.ScopeOrDefault(opts.Scopes, defaultScopes...),
		"state":                 providers.OptionalString(opts.State),
		"code_challenge":        providers.OptionalString(opts.CodeChallenge),
		"code_challenge_method": providers.OptionalString(opts.CodeChallengeMethod),
	})
}

// HandleCallback processes X's redirect.
func (p *Provider) HandleCallback(ctx context.Context, params providers.CallbackParams) (*providers.TokenResponse, error) {
	return providers.HandleCallback(ctx, providerName, params, p.ExchangeCode)
}

// ExchangeCode exchanges an authorization code for tokens.
func (p *Provider) ExchangeCode(ctx context.Context, code, _ string, codeVerifier string) (*providers.TokenResponse, error) {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("client_id", p.ClientID())}
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}
	return p.Exchange(ctx, p.config, code, opts...)
}

// RefreshToken refreshes an access token. Requires the offline.access scope at
// authorization time. The client is identified by the Basic credentials only.
func (p *Provider) RefreshToken(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
	return p.Refresh(ctx, p.config, opts.RefreshToken)
}

// RevokeToken revokes an access or refresh token. The hint defaults to access_token.
func (p *Provider) RevokeToken(ctx context.Context, opts providers.RevokeOptions) error {
	hint := opts.TokenTypeHint
	if hint == "" {
		hint = defaultTokenTypeHint
	}

	return p.Call(ctx, providers.OpRevokeToken, transport.Request{
		Method:    http.MethodPost,
		URL:       revokeEndpoint,
		BasicAuth: p.BasicAuth(),
		Form: util.Params{
			"token":           opts.Token,
			"client_id":       p.ClientID(),
			"token_type_hint": hint,
		},
	})
}

// UserInfo fetches the authenticated user. X wraps the profile in a "data" object,
// which is returned as-is.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (providers.UserInfo, error) {
	return p.FetchUserInfo(ctx, transport.Request{
		URL: userInfoEndpoint,
		Header: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	})
}
