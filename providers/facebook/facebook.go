package facebook

import (
	"context"
	"net/http"

	"github.com/giantswarm/multi-oauth/internal/util"
	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/transport"
)

// Compile-time check that Provider implements the providers.Provider interface.
var _ providers.Provider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "facebook"

const (
	graphBaseURL = "https://graph.facebook.com/"

	// OpExchangeLongLivedToken labels the second step of the code exchange.
	OpExchangeLongLivedToken = "exchange_long_lived_token"

	userInfoFields = "id,name,email,first_name,last_name,picture"
)

var defaultScopes = []string{"public_profile,email"}

var requiredCredentials = []string{
	providers.CredentialClientID,
	providers.CredentialClientSecret,
	providers.CredentialRedirectURI,
	providers.CredentialAPIVersion,
}

// Provider implements the providers.Provider interface for Facebook Login.
type Provider struct {
	providers.Base
}

// NewProvider creates a new Facebook provider.
// A nil client selects a default transport client.
func NewProvider(creds providers.Credentials, client *transport.Client) (*Provider, error) {
	base, err := providers.NewBase(providerName, requiredCredentials, creds, client)
	if err != nil {
		return nil, err
	}
	return &Provider{Base: base}, nil
}

// New is NewProvider returning the interface type, for use in registries.
func New(creds providers.Credentials, client *transport.Client) (providers.Provider, error) {
	p, err := NewProvider(creds, client)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RequiredCredentials returns the credential keys Facebook requires.
func (p *Provider) RequiredCredentials() []string {
	return append([]string(nil), requiredCredentials...)
}

// APIVersion returns the Graph API version from the api_version credential.
// NewProvider rejects an empty one.
func (p *Provider) APIVersion() string {
	return p.Credential(providers.CredentialAPIVersion)
}

func (p *Provider) graphURL(path string) string {
	return graphBaseURL + p.APIVersion() + path
}

// AuthURL generates the Facebook login dialog URL.
func (p *Provider) AuthURL(opts providers.AuthURLOptions) string {
	return util.BuildURL(p.graphURL("/dialog/oauth"), util.Params{
		"client_id":     p.ClientID(),
		"redirect_uri":  p.RedirectURI(),
		"response_type": "code",
		"scope":         providers.ScopeOrDefault(opts.Scopes, defaultScopes...),
		"state":         providers.OptionalString(opts.State),
	})
}

// HandleCallback processes Facebook's redirect.
func (p *Provider) HandleCallback(ctx context.Context, params providers.CallbackParams) (*providers.TokenResponse, error) {
	return providers.HandleCallback(ctx, providerName, params, p.ExchangeCode)
}

// ExchangeCode exchanges an authorization code for a short-lived token and that
// token for a long-lived one, returning the long-lived token response.
func (p *Provider) ExchangeCode(ctx context.Context, code, _ string, _ string) (*providers.TokenResponse, error) {
	shortLived, err := p.FetchToken(ctx, providers.OpExchangeCode, transport.Request{
		URL: p.graphURL("/oauth/access_token"),
		Query: util.Params{
			"client_id":     p.ClientID(),
			"redirect_uri":  p.RedirectURI(),
			"client_secret": p.ClientSecret(),
			"code":          code,
		},
	})
	if err != nil {
		return nil, err
	}

	return p.exchangeLongLived(ctx, OpExchangeLongLivedToken, shortLived.AccessToken)
}

// RefreshToken re-exchanges a long-lived token to extend its validity.
// opts.RefreshToken carries the current long-lived access token.
func (p *Provider) RefreshToken(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
	return p.exchangeLongLived(ctx, providers.OpRefreshToken, opts.RefreshToken)
}

func (p *Provider) exchangeLongLived(ctx context.Context, operation, token string) (*providers.TokenResponse, error) {
	return p.FetchToken(ctx, operation, transport.Request{
		URL: p.graphURL("/oauth/access_token"),
		Query: util.Params{
			"grant_type":        "fb_exchange_token",
			"client_id":         p.ClientID(),
			"client_secret":     p.ClientSecret(),
			"fb_exchange_token": token,
		},
	})
}

// RevokeToken removes all of the app's permissions for the token's user, which
// invalidates the token.
func (p *Provider) RevokeToken(ctx context.Context, opts providers.RevokeOptions) error {
	return p.Call(ctx, providers.OpRevokeToken, transport.Request{
		Method: http.MethodDelete,
		URL:    p.graphURL("/me/permissions"),
		Header: map[string]string{
			"Authorization": "Bearer " + opts.Token,
		},
	})
}

// UserInfo fetches the user's profile fields from the Graph API.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (providers.UserInfo, error) {
	return p.FetchUserInfo(ctx, transport.Request{
		URL: p.graphURL("/me"),
		Query: util.Params{
			"fields":       userInfoFields,
			"access_token": accessToken,
		},
	})
}
