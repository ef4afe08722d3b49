// Package github provides a GitHub OAuth App provider implementation.
//
// GitHub's token endpoint answers errors with HTTP 200 and an "error" field; these
// surface as *providers.TokenEndpointError. Token refresh is only available to
// GitHub Apps with expiring user tokens enabled.
//
// Revocation uses the OAuth Applications API, which authenticates the application
// itself with HTTP Basic credentials:
//
//	DELETE https://api.github.com/applications/{client_id}/token
package github
