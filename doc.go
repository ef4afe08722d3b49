// Package oauth is a multi-provider OAuth 2.0 / OpenID Connect client.
//
// A Service holds one adapter per registered provider (google, kakao, naver,
// github, facebook, x) and exposes a single call surface over all of them:
// authorization URL generation, callback handling, token refresh, revocation and
// profile retrieval. Provider differences in endpoints, parameter names and flow
// shape stay inside the adapters in the providers subpackages.
//
// # Quick Start
//
//	svc, err := oauth.NewService(&oauth.Config{
//		Providers: []oauth.ProviderConfig{{
//			Name: "google",
//			Credentials: providers.Credentials{
//				"client_id":     os.Getenv("GOOGLE_CLIENT_ID"),
//				"client_secret": os.Getenv("GOOGLE_CLIENT_SECRET"),
//				"redirect_uri":  "http://localhost:8080/auth/google/callback",
//			},
//		}},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer svc.Close(context.Background())
//
//	state, _ := security.GenerateState(0)
//	authURL, _ := svc.GenerateAuthURL("google", providers.AuthURLOptions{State: state})
//
//	// in the callback handler
//	tok, err := svc.HandleCallback(ctx, "google", providers.CallbackParams{
//		Code:  r.URL.Query().Get("code"),
//		State: r.URL.Query().Get("state"),
//		Error: r.URL.Query().Get("error"),
//	})
//
// # Configuration
//
// Config can be built in code, loaded from YAML with LoadConfig (environment
// references such as ${GOOGLE_CLIENT_SECRET} are expanded), or assembled from
// environment variables with ProvidersFromEnv. LoadDotEnv loads .env files first.
//
// # Errors
//
// Every failure is returned to the caller; nothing is retried. Callers inspect
// errors with errors.As against the aliases in this package, or translate them
// with ErrorResponseFor. State verification and token storage are the caller's
// responsibility.
package oauth
