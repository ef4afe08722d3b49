// Package providers defines the OAuth provider interface and the types shared by
// every provider adapter.
//
// The Provider interface exposes one uniform surface (authorization URL, callback
// handling, code exchange, refresh, revocation and profile fetch) over providers
// whose protocols differ in endpoint layout, parameter naming and flow shape.
//
// Implementations are provided in subpackages:
//   - providers/google: Google OAuth 2.0
//   - providers/github: GitHub OAuth Apps
//   - providers/facebook: Facebook Login (two-step long-lived token exchange)
//   - providers/kakao: Kakao Login
//   - providers/naver: Naver Login
//   - providers/x: X OAuth 2.0 with PKCE
//   - providers/mock: Mock provider for testing
//
// Every adapter embeds Base, which validates credentials at construction and sends
// provider calls through a transport.Client. Construction fails with a
// *ConfigurationError naming the first missing required credential.
//
// Example usage:
//
//	provider, err := google.NewProvider(providers.Credentials{
//	    "client_id":     "your-client-id",
//	    "client_secret": "your-client-secret",
//	    "redirect_uri":  "http://localhost:8080/oauth/callback",
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	http.Redirect(w, r, provider.AuthURL(providers.AuthURLOptions{State: state}), http.StatusFound)
package providers
