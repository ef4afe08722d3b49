package kakao

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
const providerName = "kakao"

// Kakao endpoints
const (
	authEndpoint     = "https://kauth.kakao.com/oauth/authorize"
	tokenEndpoint    = "https://kauth.kakao.com/oauth/token"
	logoutEndpoint   = "https://kapi.kakao.com/v1/user/logout"
	userInfoEndpoint = "https://kapi.kakao.com/v2/user/me"
)

const formContentType = "application/x-www-form-urlencoded;charset=utf-8"

var requiredCredentials = []string{
	providers.CredentialClientID,
	providers.CredentialClientSecret,
	providers.CredentialRedirectURI,
}

// Provider implements the providers.Provider interface for Kakao Login.
type Provider struct {
	providers.Base
	config *oauth2.Config
}

// NewProvider creates a new Kakao provider.
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

// RequiredCredentials returns the credential keys Kakao requires.
func (p *Provider) RequiredCredentials() []string {
	return append([]string(nil), requiredCredentials...)
}

// AuthURL generates the Kakao authorization URL.
func (p *Provider) AuthURL(opts providers.AuthURLOptions) string {
	return util.BuildURL(authEndpoint, util.Params{
		"client_id":     p.ClientID(),
		"redirect_uri":  p.RedirectURI(),
		"response_type": "code",
		"scope":         providers.OptionalScopes(opts.Scopes),
		"state":         providers.OptionalString(opts.State),
		"prompt":        providers.OptionalString(opts.Prompt),
		"login_hint":    providers.OptionalString(opts.LoginHint),
		"service_terms": providers.OptionalString(opts.ServiceTerms),
		"nonce":         providers.OptionalString(opts.Nonce),

		"code_challenge":        providers.OptionalString(opts.CodeChallenge),
		"code_challenge_method": providers.OptionalString(opts.CodeChallengeMethod),
	})
}

// HandleCallback processes Kakao's redirect.
func (p *Provider) HandleCallback(ctx context.Context, params providers.CallbackParams) (*providers.TokenResponse, error) {
	return providers.HandleCallback(ctx, providerName, params, p.ExchangeCode)
}

// ExchangeCode exchanges an authorization code for tokens.
func (p *Provider) ExchangeCode(ctx context.Context, code, _ string, codeVerifier string) (*providers.TokenResponse, error) {
	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}
	return p.Exchange(ctx, p.config, code, opts...)
}

// RefreshToken refreshes an access token. Kakao only returns a new refresh token
// when the current one is close to expiry.
func (p *Provider) RefreshToken(ctx context.Context, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
	return p.Refresh(ctx, p.config, opts.RefreshToken)
}

// RevokeToken logs the token's user out of Kakao.
func (p *Provider) RevokeToken(ctx context.Context, opts providers.RevokeOptions) error {
	return p.Call(ctx, providers.OpRevokeToken, transport.Request{
		Method: http.MethodPost,
		URL:    logoutEndpoint,
		Header: map[string]string{
			"Content-Type":  formContentType,
			"Authorization": "Bearer " + opts.Token,
		},
		Form: util.Params{
			"target_id_type": "user_id",
			"target_id":      opts.TargetID,
		},
	})
}

// UserInfo fetches the user's profile.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (providers.UserInfo, error) {
	return p.FetchUserInfo(ctx, transport.Request{
		URL: userInfoEndpoint,
		Header: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	})
}
