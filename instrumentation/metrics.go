package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the library
type Metrics struct {
	// Provider API Metrics
	ProviderAPICallsTotal metric.Int64Counter
	ProviderAPIDuration   metric.Float64Histogram
	ProviderAPIErrors     metric.Int64Counter

	// Service Metrics
	ProvidersRegistered metric.Int64Counter
	AuthURLsGenerated   metric.Int64Counter
	CallbacksProcessed  metric.Int64Counter
	CodeExchanged       metric.Int64Counter
	TokenRefreshed      metric.Int64Counter
	TokenRevoked        metric.Int64Counter
	UserInfoFetched     metric.Int64Counter

	// Security Metrics
	RateLimitExceeded metric.Int64Counter
	AuditEventsTotal  metric.Int64Counter
}

type counterDef struct {
	target      *metric.Int64Counter
	meter       metric.Meter
	name        string
	description string
	unit        string
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}

	providerMeter := inst.Meter("provider")
	serviceMeter := inst.Meter("service")
	securityMeter := inst.Meter("security")

	counters := []counterDef{
		{&m.ProviderAPICallsTotal, providerMeter, "provider.api.calls.total", "Total number of provider API calls", "{call}"},
		{&m.ProviderAPIErrors, providerMeter, "provider.api.errors.total", "Total number of provider API errors", "{error}"},
		{&m.ProvidersRegistered, serviceMeter, "oauth.provider.registered", "Number of provider registrations", "{registration}"},
		{&m.AuthURLsGenerated, serviceMeter, "oauth.authorization_url.generated", "Number of authorization URLs generated", "{url}"},
		{&m.CallbacksProcessed, serviceMeter, "oauth.callback.processed", "Number of provider callbacks processed", "{callback}"},
		{&m.CodeExchanged, serviceMeter, "oauth.code.exchanged", "Number of authorization codes exchanged for tokens", "{exchange}"},
		{&m.TokenRefreshed, serviceMeter, "oauth.token.refreshed", "Number of token refresh attempts", "{refresh}"},
		{&m.TokenRevoked, serviceMeter, "oauth.token.revoked", "Number of token revocation attempts", "{revocation}"},
		{&m.UserInfoFetched, serviceMeter, "oauth.userinfo.fetched", "Number of user profile fetches", "{fetch}"},
		{&m.RateLimitExceeded, securityMeter, "oauth.rate_limit.exceeded", "Number of outbound calls rejected by the rate limiter", "{violation}"},
		{&m.AuditEventsTotal, securityMeter, "oauth.audit.events.total", "Total number of audit events", "{event}"},
	}

	for _, def := range counters {
		counter, err := def.meter.Int64Counter(
			def.name,
			metric.WithDescription(def.description),
			metric.WithUnit(def.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", def.name, err)
		}
		*def.target = counter
	}

	var err error
	m.ProviderAPIDuration, err = providerMeter.Float64Histogram(
		"provider.api.duration",
		metric.WithDescription("Provider API call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.duration histogram: %w", err)
	}

	return m, nil
}

// RecordProviderAPICall records a provider API call
func (m *Metrics) RecordProviderAPICall(ctx context.Context, provider, operation string, statusCode int, durationMs float64, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.Int("status", statusCode),
	}

	m.ProviderAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ProviderAPIDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	))

	if err != nil {
		errorType := "network_error"
		if statusCode >= 400 && statusCode < 500 {
			errorType = "client_error"
		} else if statusCode >= 500 {
			errorType = "server_error"
		}

		m.ProviderAPIErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("operation", operation),
			attribute.String("error_type", errorType),
		))
	}
}

// RecordProviderRegistered records a provider registration attempt
func (m *Metrics) RecordProviderRegistered(ctx context.Context, provider string, success bool) {
	m.ProvidersRegistered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	))
}

// RecordAuthURLGenerated records an authorization URL being built
func (m *Metrics) RecordAuthURLGenerated(ctx context.Context, provider string, pkce bool) {
	m.AuthURLsGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("pkce", pkce),
	))
}

// RecordCallbackProcessed records a provider callback processing
func (m *Metrics) RecordCallbackProcessed(ctx context.Context, provider string, success bool) {
	m.CallbacksProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	))
}

// RecordCodeExchange records a successful authorization code exchange
func (m *Metrics) RecordCodeExchange(ctx context.Context, provider string, pkce bool) {
	m.CodeExchanged.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("pkce", pkce),
	))
}

// RecordTokenRefresh records a token refresh operation
func (m *Metrics) RecordTokenRefresh(ctx context.Context, provider string, success bool) {
	m.TokenRefreshed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	))
}

// RecordTokenRevocation records a token revocation
func (m *Metrics) RecordTokenRevocation(ctx context.Context, provider string, success bool) {
	m.TokenRevoked.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	))
}

// RecordUserInfoFetched records a user profile fetch
func (m *Metrics) RecordUserInfoFetched(ctx context.Context, provider string, success bool) {
	m.UserInfoFetched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	))
}

// RecordRateLimitExceeded records an outbound call rejected by the rate limiter
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context, provider string) {
	m.RateLimitExceeded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordAuditEvent records an audit event
func (m *Metrics) RecordAuditEvent(ctx context.Context, eventType string) {
	m.AuditEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
