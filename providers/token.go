package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// TokenResponse is a token endpoint response. The well-known fields are decoded into
// typed fields; every field, including provider-specific extras, is kept in Raw.
// Numeric fields accept JSON numbers and numeric strings.
type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type,omitempty"`
	ExpiresIn             int64  `json:"expires_in,omitempty"`
	RefreshToken          string `json:"refresh_token,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in,omitempty"`
	Scope                 string `json:"scope,omitempty"`
	IDToken               string `json:"id_token,omitempty"`

	Raw map[string]any `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TokenResponse) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	expiresIn, err := int64Field(raw, "expires_in")
	if err != nil {
		return err
	}
	refreshExpiresIn, err := int64Field(raw, "refresh_token_expires_in")
	if err != nil {
		return err
	}

	*t = TokenResponse{
		AccessToken:           stringField(raw, "access_token"),
		TokenType:             stringField(raw, "token_type"),
		ExpiresIn:             expiresIn,
		RefreshToken:          stringField(raw, "refresh_token"),
		RefreshTokenExpiresIn: refreshExpiresIn,
		Scope:                 stringField(raw, "scope"),
		IDToken:               stringField(raw, "id_token"),
		Raw:                   raw,
	}
	return nil
}

// MarshalJSON writes Raw with the typed fields laid over it.
func (t TokenResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Raw)+7)
	for k, v := range t.Raw {
		out[k] = v
	}

	out["access_token"] = t.AccessToken
	setIfNotZero(out, "token_type", t.TokenType)
	setIfNotZero(out, "refresh_token", t.RefreshToken)
	setIfNotZero(out, "scope", t.Scope)
	setIfNotZero(out, "id_token", t.IDToken)
	if t.ExpiresIn != 0 {
		out["expires_in"] = t.ExpiresIn
	}
	if t.RefreshTokenExpiresIn != 0 {
		out["refresh_token_expires_in"] = t.RefreshTokenExpiresIn
	}

	return json.Marshal(out)
}

// ErrorCode returns the OAuth "error" field of the response, if any.
func (t *TokenResponse) ErrorCode() string {
	return stringField(t.Raw, "error")
}

// ErrorDescription returns the OAuth "error_description" field of the response, if any.
func (t *TokenResponse) ErrorDescription() string {
	return stringField(t.Raw, "error_description")
}

// Extra returns a provider-specific field.
func (t *TokenResponse) Extra(key string) any {
	return t.Raw[key]
}

// Token converts the response to an oauth2.Token. Expiry is computed from ExpiresIn
// relative to now; all raw fields are available through Token.Extra.
func (t *TokenResponse) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		tok.ExpiresIn = t.ExpiresIn
		tok.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}

	extra := make(map[string]any, len(t.Raw))
	for k, v := range t.Raw {
		extra[k] = v
	}
	return tok.WithExtra(extra)
}

// NewTokenResponse converts an oauth2.Token. Raw holds only the well-known
// extras (scope, id_token, refresh_token_expires_in) found on tok.
func NewTokenResponse(tok *oauth2.Token) *TokenResponse {
	resp := &TokenResponse{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
		RefreshToken: tok.RefreshToken,
		Raw:          map[string]any{"access_token": tok.AccessToken},
	}
	if resp.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		resp.ExpiresIn = int64(math.Round(time.Until(tok.Expiry).Seconds()))
	}

	for _, key := range []string{"scope", "id_token", "refresh_token_expires_in"} {
		v := tok.Extra(key)
		if v == nil || v == "" {
			continue
		}
		resp.Raw[key] = v
		switch key {
		case "scope":
			resp.Scope = fmt.Sprint(v)
		case "id_token":
			resp.IDToken = fmt.Sprint(v)
		case "refresh_token_expires_in":
			resp.RefreshTokenExpiresIn, _ = int64Field(resp.Raw, key)
		}
	}
	return resp
}

// IDTokenClaims decodes the claims of the id_token WITHOUT verifying its signature.
// Use it only for display or for tokens received directly from the token endpoint
// over TLS.
func (t *TokenResponse) IDTokenClaims() (jwt.MapClaims, error) {
	if t.IDToken == "" {
		return nil, ErrNoIDToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.IDToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse id_token: %w", err)
	}
	return claims, nil
}

func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func int64Field(raw map[string]any, key string) (int64, error) {
	switch v := raw[key].(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case float64:
		return int64(math.Round(v)), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		return int64(math.Round(f)), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid %s: unexpected type %T", key, v)
	}
}

func setIfNotZero(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
