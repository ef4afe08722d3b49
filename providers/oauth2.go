package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/giantswarm/multi-oauth/transport"
)

// OAuth2Config returns a golang.org/x/oauth2 configuration carrying the adapter's
// credentials. style selects where the client secret travels: AuthStyleInParams
// omits an empty secret, AuthStyleInHeader sends HTTP Basic credentials.
func (b *Base) OAuth2Config(authURL, tokenURL string, style oauth2.AuthStyle) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     b.ClientID(),
		ClientSecret: b.ClientSecret(),
		RedirectURL:  b.RedirectURI(),
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: style,
		},
	}
}

// Exchange performs an authorization_code grant through cfg.
func (b *Base) Exchange(ctx context.Context, cfg *oauth2.Config, code string, opts ...oauth2.AuthCodeOption) (*TokenResponse, error) {
	return b.retrieveToken(ctx, OpExchangeCode, func(ctx context.Context) (*oauth2.Token, error) {
		return cfg.Exchange(ctx, code, opts...)
	})
}

// Refresh performs a refresh_token grant through cfg.
func (b *Base) Refresh(ctx context.Context, cfg *oauth2.Config, refreshToken string) (*TokenResponse, error) {
	return b.retrieveToken(ctx, OpRefreshToken, func(ctx context.Context) (*oauth2.Token, error) {
		return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	})
}

// retrieveToken runs fetch with the adapter's transport installed as the oauth2
// HTTP client and decodes the captured response body, so provider-specific fields
// survive in TokenResponse.Raw.
func (b *Base) retrieveToken(ctx context.Context, operation string, fetch func(context.Context) (*oauth2.Token, error)) (*TokenResponse, error) {
	capture := b.client.Capture(operation)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, capture.HTTPClient())

	tok, err := fetch(ctx)
	if err != nil {
		return nil, b.tokenError(operation, capture, err)
	}

	var resp TokenResponse
	if err := json.Unmarshal(capture.Body(), &resp); err != nil {
		// Not JSON, e.g. a form-encoded body.
		return NewTokenResponse(tok), nil
	}
	return &resp, nil
}

// tokenError maps an oauth2 failure to the package's error types.
func (b *Base) tokenError(operation string, capture *transport.Capture, err error) error {
	if !capture.Requested() {
		return fmt.Errorf("provider %q %s: %w", b.name, operation, err)
	}
	if transportErr := capture.Err(); transportErr != nil {
		return transportErr
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			return &TokenEndpointError{
				Provider:    b.name,
				Operation:   operation,
				Code:        retrieveErr.ErrorCode,
				Description: retrieveErr.ErrorDescription,
			}
		}
		return capture.NewError(nil)
	}

	var resp TokenResponse
	if json.Unmarshal(capture.Body(), &resp) == nil && resp.AccessToken == "" {
		return fmt.Errorf("provider %q %s: %w", b.name, operation, ErrMissingAccessToken)
	}
	return capture.NewError(fmt.Errorf("failed to decode response: %w", err))
}
