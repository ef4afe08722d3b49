package github

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/giantswarm/multi-oauth/internal/util"
	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/transport"
)

// Compile-time check that Provider implements the providers.Provider interface.
var _ providers.Provider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "github"

// GitHub endpoints
const (
	authEndpoint      = "https://github.com/login/oauth/authorize"
	tokenEndpoint     = "https://github.com/login/oauth/access_token"
	applicationsAPI   = "https://api.github.com/applications/"
	userEndpoint      = "https://api.github.com/user"
	githubAPIMimeType = "application/vnd.github+json"
)

var requiredCredentials = []string{
	providers.CredentialClientID,
	providers.CredentialClientSecret,
	providers.CredentialRedirectURI,
}

// Provider implements the providers.Provider interface for GitHub OAuth.
type Provider struct {
	providers.Base
	config *oauth2.Config
}

// NewProvider creates a new GitHub OAuth provider.
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

// RequiredCredentials returns the credential keys GitHub requires.
func (p *Provider) RequiredCredentials() []string {
	return append([]string(nil), requiredCredentials...)
}

// AuthURL generates the GitHub authorization URL. GitHub takes no response_type.
func (p *Provider) AuthURL(opts providers.AuthURLOptions) string {
	return util.BuildURL(authEndpoint, util.Params{
		"client_id":             p.ClientID(),
		"redirect_uri":          p.RedirectURI(),
		"scope":                 providers.OptionalScopes(opts.Scopes),
		"state":                 providers.OptionalString(opts.State),
		"allow_signup":          opts.AllowSignup,
		"login":                 providers.OptionalString(opts.LoginHint),
		"code_challenge":        providers.OptionalString(opts.CodeChallenge),
		"code_challenge_method": providers.OptionalString(opts.CodeChallengeMethod),
	})
}

// HandleCallback processes GitHub's redirect.
func (p *Provider) HandleCallback(ctx context.Context, params providers.CallbackParams) (*providers.TokenResponse, error) {
	return providers.HandleCallback(ctx, providerName, params, p.ExchangeCode)
}

// ExchangeCode exchanges an authorization code for tokens.
// GitHub answers in JSON because the transport sends Accept: application/json.
func (p *Provider) ExchangeCode(ctx context.Context, code, _ string, codeVerifier string) (*providers.TokenResponse, error) {
	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}
	return p.Exchange(ctx, p.config, code, opts...)
}

// RefreshToken refreshes an expiring user access token.
func (p *Provider) RefreshToken(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
	return p.Refresh(ctx, p.config, opts.RefreshToken)
}

// RevokeToken deletes the application's authorization for a token.
func (p *Provider) RevokeToken(ctx context.Context, opts providers.RevokeOptions) error {
	return p.Call(ctx, providers.OpRevokeToken, transport.Request{
		Method:    http.MethodDelete,
		URL:       applicationsAPI + url.PathEscape(p.ClientID()) + "/token",
		Header:    map[string]string{"Accept": githubAPIMimeType},
		JSON:      map[string]string{"access_token": opts.Token},
		BasicAuth: p.BasicAuth(),
	})
}

// UserInfo fetches the authenticated user from the REST API.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (providers.UserInfo, error) {
	return p.FetchUserInfo(ctx, transport.Request{
		URL: userEndpoint,
		Header: map[string]string{
			"Authorization": "Bearer " + accessToken,
			"Accept":        githubAPIMimeType,
		},
	})
}
