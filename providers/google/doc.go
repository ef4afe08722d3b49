// Package google provides a Google OAuth 2.0 provider implementation.
//
// This package implements the providers.Provider interface for Google's OAuth 2.0
// authorization server. It supports:
//   - Authorization code flow, offline access by default
//   - Token refresh
//   - Token revocation via Google's revocation endpoint
//   - User info retrieval via Google's userinfo endpoint
//
// When no scopes are requested the authorization URL asks for "email profile".
//
// Example usage:
//
//	provider, err := google.NewProvider(providers.Credentials{
//	    "client_id":     os.Getenv("GOOGLE_CLIENT_ID"),
//	    "client_secret": os.Getenv("GOOGLE_CLIENT_SECRET"),
//	    "redirect_uri":  "http://localhost:8080/oauth/callback",
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	url := provider.AuthURL(providers.AuthURLOptions{State: state})
package google
