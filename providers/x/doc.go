// Package x provides an X (formerly Twitter) OAuth 2.0 provider implementation.
//
// X is a confidential client: every token endpoint call authenticates with HTTP
// Basic credentials built from client_id and client_secret. X requires PKCE, so
// callers should generate a security.PKCE pair, pass its challenge to AuthURL and
// its verifier through CallbackParams.CodeVerifier.
package x
