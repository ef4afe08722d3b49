// Package transport executes outbound HTTP requests against identity provider
// endpoints.
//
// A Client is bound to one provider. It url-encodes form bodies, adds HTTP Basic
// client authentication when asked to, enforces a fixed request timeout and decodes
// JSON responses. Any response with status 400 or above, and any network failure,
// surfaces as a *Error carrying the provider, the operation, the status code and a
// bounded copy of the response body.
//
// The client never retries. An optional Limiter rejects calls up front with
// ErrRateLimited.
package transport
