package security

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

// Auditor handles security event logging with secret protection.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
	onEvent func(eventType string)
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// OnEvent registers a hook called with the type of every logged event, typically
// used to count events in metrics.
func (a *Auditor) OnEvent(fn func(eventType string)) {
	a.onEvent = fn
}

// Event represents a security audit event
type Event struct {
	Type      string
	Provider  string
	Token     string // hashed before logging, never written in clear
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent logs a security event with the token replaced by its fingerprint
func (a *Auditor) LogEvent(event Event) {
	if !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.Info("security_audit",
		"event_type", event.Type,
		"provider", event.Provider,
		"token_hash", hashForLogging(event.Token),
		"details", event.Details,
		"timestamp", event.Timestamp,
	)

	if a.onEvent != nil {
		a.onEvent(event.Type)
	}
}

// LogProviderRegistered logs a provider registration attempt
func (a *Auditor) LogProviderRegistered(provider string, err error) {
	if err != nil {
		a.LogEvent(Event{
			Type:     EventProviderRegistrationFailed,
			Provider: provider,
			Details: map[string]any{
				"reason": err.Error(),
			},
		})
		return
	}
	a.LogEvent(Event{
		Type:     EventProviderRegistered,
		Provider: provider,
	})
}

// LogAuthorizationStarted logs when an authorization URL is handed out
func (a *Auditor) LogAuthorizationStarted(provider string, statePresent, pkce bool) {
	a.LogEvent(Event{
		Type:     EventAuthorizationFlowStarted,
		Provider: provider,
		Details: map[string]any{
			"state_present": statePresent,
			"pkce":          pkce,
		},
	})
}

// LogCallbackError logs a provider redirect carrying an error
func (a *Auditor) LogCallbackError(provider, code, description string) {
	a.LogEvent(Event{
		Type:     EventProviderCallbackError,
		Provider: provider,
		Details: map[string]any{
			"error":             code,
			"error_description": description,
		},
	})
}

// LogInvalidCallback logs a callback without an authorization code
func (a *Auditor) LogInvalidCallback(provider string) {
	a.LogEvent(Event{
		Type:     EventInvalidCallback,
		Provider: provider,
	})
}

// LogTokenIssued logs when a token is issued
func (a *Auditor) LogTokenIssued(provider, accessToken, scope string) {
	a.LogEvent(Event{
		Type:     EventTokenIssued,
		Provider: provider,
		Token:    accessToken,
		Details: map[string]any{
			"scope": scope,
		},
	})
}

// LogTokenRefreshed logs when a token is refreshed
func (a *Auditor) LogTokenRefreshed(provider, accessToken string, rotated bool) {
	a.LogEvent(Event{
		Type:     EventTokenRefreshed,
		Provider: provider,
		Token:    accessToken,
		Details: map[string]any{
			"rotated": rotated,
		},
	})
}

// LogTokenRevoked logs when a token is revoked
func (a *Auditor) LogTokenRevoked(provider, token, tokenTypeHint string) {
	a.LogEvent(Event{
		Type:     EventTokenRevoked,
		Provider: provider,
		Token:    token,
		Details: map[string]any{
			"token_type_hint": tokenTypeHint,
		},
	})
}

// LogProviderCallFailed logs a failed token or revoke call
func (a *Auditor) LogProviderCallFailed(provider, operation string, err error) {
	a.LogEvent(Event{
		Type:     EventProviderCallFailed,
		Provider: provider,
		Details: map[string]any{
			"operation": operation,
			"reason":    err.Error(),
		},
	})
}

// LogRateLimitExceeded logs a rate limit violation
func (a *Auditor) LogRateLimitExceeded(provider, operation string) {
	a.LogEvent(Event{
		Type:     EventRateLimitExceeded,
		Provider: provider,
		Details: map[string]any{
			"operation": operation,
		},
	})
}

// hashForLogging creates a SHA256 hash of sensitive data for logging
func hashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
