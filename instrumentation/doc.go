// Package instrumentation provides OpenTelemetry (OTEL) instrumentation for the multi-oauth library.
//
// This package enables observability across the library layers through:
//   - Metrics: Counters and histograms for provider API calls and service operations
//   - Traces: Spans around every outbound provider call and every service operation
//
// # Quick Start
//
//	import "github.com/giantswarm/multi-oauth/instrumentation"
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		Enabled:        true,
//		ServiceName:    "my-login-service",
//		ServiceVersion: "1.0.0",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
// The oauth.Service builds an Instrumentation from oauth.Config.Instrumentation, so most
// callers never construct one directly.
//
// # Prometheus Metrics
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		Enabled:         true,
//		MetricsExporter: instrumentation.MetricsExporterPrometheus,
//	})
//
//	http.Handle("/metrics", promhttp.HandlerFor(inst.Gatherer(), promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// Provider:
//   - provider.api.calls.total{provider, operation, status} - Provider API calls
//   - provider.api.duration{provider, operation} - API call duration in milliseconds
//   - provider.api.errors.total{provider, operation, error_type} - Provider API errors
//
// Service:
//   - oauth.provider.registered{provider, success}
//   - oauth.authorization_url.generated{provider, pkce}
//   - oauth.callback.processed{provider, success}
//   - oauth.code.exchanged{provider, pkce}
//   - oauth.token.refreshed{provider, success}
//   - oauth.token.revoked{provider, success}
//   - oauth.userinfo.fetched{provider, success}
//
// Security:
//   - oauth.rate_limit.exceeded{provider}
//   - oauth.audit.events.total{event_type}
//
// All labels have a small fixed cardinality: the provider label is bounded by the
// registry, operations are a fixed set.
//
// # Distributed Tracing
//
// Example span structure for a callback:
//
//	oauth.handle_callback
//	├── provider.facebook.exchange_code
//	└── provider.facebook.exchange_long_lived_token
//
// # Security Considerations
//
// NEVER record token values, authorization codes, client secrets or PKCE verifiers.
// Spans record the endpoint without its query string because some providers
// (Facebook) take the access token as a query parameter.
package instrumentation
