package security

// Event type constants for security audit logging.
// These constants ensure consistency across the codebase and prevent typos
// when logging security-relevant events.
const (
	// Provider lifecycle events

	// EventProviderRegistered is logged when a provider adapter is registered
	EventProviderRegistered = "provider_registered"

	// EventProviderRegistrationFailed is logged when a provider cannot be registered
	EventProviderRegistrationFailed = "provider_registration_failed"

	// Authorization flow events

	// EventAuthorizationFlowStarted is logged when an authorization URL is generated
	EventAuthorizationFlowStarted = "authorization_flow_started"

	// EventProviderCallbackError is logged when a provider redirects back with an error
	EventProviderCallbackError = "provider_callback_error"

	// EventInvalidCallback is logged when a callback carries no authorization code
	EventInvalidCallback = "invalid_callback"

	// Token lifecycle events

	// EventTokenIssued is logged when an authorization code is exchanged for tokens
	EventTokenIssued = "token_issued"

	// EventTokenRefreshed is logged when a token is refreshed
	EventTokenRefreshed = "token_refreshed"

	// EventTokenRevoked is logged when a token is revoked at the provider
	EventTokenRevoked = "token_revoked"

	// Failure events

	// EventProviderCallFailed is logged when a token endpoint or revoke call fails
	EventProviderCallFailed = "provider_call_failed"

	// EventRateLimitExceeded is logged when an outbound call is rate limited
	EventRateLimitExceeded = "rate_limit_exceeded"
)
