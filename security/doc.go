// Package security provides the security primitives used by the OAuth client:
// random state and nonce generation, PKCE pairs, outbound rate limiting and audit
// logging.
//
// # Random Values
//
// GenerateState and GenerateNonce return n cryptographically random bytes encoded
// as unpadded base64url. GeneratePKCE returns an RFC 7636 S256 pair:
//
//	pkce, err := security.GeneratePKCE()
//	if err != nil {
//		return err
//	}
//	authURL, err := svc.GenerateAuthURL("x", providers.AuthURLOptions{
//		State:               state,
//		CodeChallenge:       pkce.CodeChallenge,
//		CodeChallengeMethod: pkce.CodeChallengeMethod,
//	})
//
// The verifier must be kept by the caller and passed back in the callback.
//
// # Rate Limiting
//
// The RateLimiter keeps one token bucket per identifier (the provider name). The
// number of identifiers is bounded by the provider registry, so entries are never
// evicted. Calls over the limit are rejected immediately; nothing waits.
//
//	limiter := security.NewRateLimiter(10, 20, logger)
//	limiter.SetLimit("github", 1, 5)
//	if !limiter.Allow("github") {
//		// rejected
//	}
//
// # Audit Logging
//
// The Auditor writes one structured record per security-relevant event. Tokens are
// never logged; where correlation is useful a truncated SHA-256 fingerprint is
// written instead.
package security
