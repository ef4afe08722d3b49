package instrumentation

import (
	"context"
	"errors"
	"testing"
)

func TestMetrics_RecordProviderAPICall(t *testing.T) {
	ctx := context.Background()
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	metrics := inst.Metrics()

	tests := []struct {
		name       string
		provider   string
		operation  string
		statusCode int
		durationMs float64
		err        error
	}{
		{"successful exchange", "google", "exchange_code", 200, 123.45, nil},
		{"client error", "github", "refresh_token", 401, 45.67, errors.New("unauthorized")},
		{"server error", "kakao", "userinfo", 503, 567.89, errors.New("unavailable")},
		{"network error", "x", "revoke_token", 0, 10000, errors.New("timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics.RecordProviderAPICall(ctx, tt.provider, tt.operation, tt.statusCode, tt.durationMs, tt.err)
		})
	}
}

func TestMetrics_RecordServiceOperations(t *testing.T) {
	ctx := context.Background()
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	metrics := inst.Metrics()

	metrics.RecordProviderRegistered(ctx, "google", true)
	metrics.RecordProviderRegistered(ctx, "unknown", false)
	metrics.RecordAuthURLGenerated(ctx, "x", true)
	metrics.RecordCallbackProcessed(ctx, "naver", true)
	metrics.RecordCallbackProcessed(ctx, "naver", false)
	metrics.RecordCodeExchange(ctx, "x", true)
	metrics.RecordTokenRefresh(ctx, "facebook", true)
	metrics.RecordTokenRevocation(ctx, "github", false)
	metrics.RecordUserInfoFetched(ctx, "kakao", true)
	metrics.RecordRateLimitExceeded(ctx, "google")
	metrics.RecordAuditEvent(ctx, "token_revoked")
}
