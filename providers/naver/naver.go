package naver

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
const providerName = "naver"

// Naver endpoints
const (
	authEndpoint     = "https://nid.naver.com/oauth2.0/authorize"
	tokenEndpoint    = "https://nid.naver.com/oauth2.0/token"
	userInfoEndpoint = "https://openapi.naver.com/v1/nid/me"
)

const formContentType = "application/x-www-form-urlencoded;charset=utf-8"

var requiredCredentials = []string{
	providers.CredentialClientID,
	providers.CredentialClientSecret,
	providers.CredentialRedirectURI,
}

// Provider implements the providers.Provider interface for Naver Login.
type Provider struct {
	providers.Base
	config *oauth2.Config
}

// NewProvider creates a new Naver provider.
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

// RequiredCredentials returns the credential keys Naver requires.
func (p *Provider) RequiredCredentials() []string {
	return append([]string(nil), requiredCredentials...)
}

// AuthURL generates the Naver authorization URL. Naver has no scope parameter;
// permissions are configured on the application.
func (p *Provider) AuthURL(opts providers.AuthURLOptions) string {
	return util.BuildURL(authEndpoint, util.Params{
		"client_id":     p.ClientID(),
		"redirect_uri":  p.RedirectURI(),
		"response_type": "code",
		"state":         providers.OptionalString(opts.State),
	})
}

// HandleCallback processes Naver's redirect.
func (p *Provider) HandleCallback(ctx context.Context, params providers.CallbackParams) (*providers.TokenResponse, error) {
	return providers.HandleCallback(ctx, providerName, params, p.ExchangeCode)
}

// ExchangeCode exchanges an authorization code for tokens. Naver expects the state
// of the authorization request to be echoed.
func (p *Provider) ExchangeCode(ctx context.Context, code, state, _ string) (*providers.TokenResponse, error) {
	var opts []oauth2.AuthCodeOption
	if state != "" {
		opts = append(opts, oauth2.SetAuthURLParam("state", state))
	}
	return p.Exchange(ctx, p.config, code, opts...)
}

// RefreshToken refreshes an access token.
func (p *Provider) RefreshToken(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
	return p.Refresh(ctx, p.config, opts.RefreshToken)
}

// RevokeToken deletes an access token at Naver.
func (p *Provider) RevokeToken(ctx context.Context, opts providers.RevokeOptions) error {
	return p.Call(ctx, providers.OpRevokeToken, transport.Request{
		Method: http.MethodPost,
		URL:    tokenEndpoint,
		Header: map[string]string{"Content-Type": formContentType},
		Form: util.Params{
			"grant_type":    "delete",
			"client_id":     p.ClientID(),
			"client_secret": p.ClientSecret(),
			"access_token":  opts.Token,
		},
	})
}

// UserInfo fetches the user's profile. Naver wraps it in a
// {"resultcode", "message", "response"} envelope, returned as is.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (providers.UserInfo, error) {
	return p.FetchUserInfo(ctx, transport.Request{
		URL: userInfoEndpoint,
		Header: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	})
}
