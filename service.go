package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/multi-oauth/instrumentation"
	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/registry"
	"github.com/giantswarm/multi-oauth/security"
	"github.com/giantswarm/multi-oauth/transport"
)

// Service is the single entry point for multi-provider OAuth flows. It holds the
// registered provider instances and dispatches every operation to the adapter
// registered under the requested name.
//
// Service is safe for concurrent use. Re-registering a name replaces the previous
// instance; concurrent re-registration of the same name has no ordering guarantee.
type Service struct {
	config   *Config
	registry *registry.Registry
	logger   *slog.Logger
	inst     *instrumentation.Instrumentation
	tracer   trace.Tracer
	auditor  *security.Auditor
	limiter  *security.RateLimiter // nil when rate limiting is disabled

	mu        sync.RWMutex
	providers map[string]providers.Provider
}

// NewService creates a Service and registers every entry of config.Providers.
// A nil config yields a Service with no providers and default settings.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg := applyDefaults(config)

	inst, err := instrumentation.New(cfg.Instrumentation.toInstrumentation())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize instrumentation: %w", err)
	}

	s := &Service{
		config:    cfg,
		registry:  cfg.Registry,
		logger:    cfg.Logger,
		inst:      inst,
		tracer:    inst.Tracer("service"),
		auditor:   security.NewAuditor(cfg.Logger, cfg.EnableAuditLogging),
		providers: make(map[string]providers.Provider),
	}
	s.auditor.OnEvent(func(eventType string) {
		inst.Metrics().RecordAuditEvent(context.Background(), eventType)
	})

	if cfg.RateLimit.Enabled() {
		s.limiter = security.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.Logger)
		for name, override := range cfg.RateLimit.PerProvider {
			s.limiter.SetLimit(name, override.RequestsPerSecond, override.Burst)
		}
	}

	for _, p := range cfg.Providers {
		if err := s.RegisterProvider(p.Name, p.Credentials); err != nil {
			_ = inst.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to register provider %q: %w", p.Name, err)
		}
	}

	s.logger.Info("OAuth service initialized",
		"registered_providers", s.RegisteredProviders(),
		"rate_limit_enabled", s.limiter != nil,
		"instrumentation_enabled", inst.Enabled())

	return s, nil
}

// newTransport builds the per-provider transport client.
func (s *Service) newTransport(name string) *transport.Client {
	cfg := transport.Config{
		Provider:        name,
		Timeout:         s.config.RequestTimeout,
		HTTPClient:      s.config.HTTPClient,
		Logger:          s.logger,
		Instrumentation: s.inst,
		UserAgent:       s.config.UserAgent,
	}
	if s.limiter != nil {
		cfg.Limiter = s.limiter
	}
	return transport.New(cfg)
}

// RegisterProvider constructs the named provider from creds and stores it under
// name, replacing any previous instance. It fails with *UnknownProviderError or
// *ConfigurationError; a failed registration leaves existing registrations intact.
func (s *Service) RegisterProvider(name string, creds providers.Credentials) error {
	ctx := context.Background()

	p, err := s.registry.Create(name, creds, s.newTransport(name))
	s.inst.Metrics().RecordProviderRegistered(ctx, name, err == nil)
	s.auditor.LogProviderRegistered(name, err)
	if err != nil {
		s.logger.Warn("Provider registration failed", "provider", name, "error", err)
		return err
	}

	s.mu.Lock()
	_, replaced := s.providers[name]
	s.providers[name] = p
	s.mu.Unlock()

	s.logger.Debug("Provider registered", "provider", name, "replaced", replaced)
	return nil
}

// Provider returns the instance registered under name, or a
// *ProviderNotRegisteredError.
func (s *Service) Provider(name string) (providers.Provider, error) {
	s.mu.RLock()
	p, ok := s.providers[name]
	s.mu.RUnlock()

	if !ok {
		return nil, &ProviderNotRegisteredError{
			Name:       name,
			Registered: s.RegisteredProviders(),
			Available:  s.AvailableProviders(),
		}
	}
	return p, nil
}

// RegisteredProviders returns the sorted names of registered providers.
func (s *Service) RegisteredProviders() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

// AvailableProviders returns the sorted names the registry can construct.
func (s *Service) AvailableProviders() []string {
	return s.registry.Available()
}

// GenerateAuthURL builds the authorization URL for the named provider. It performs
// no I/O.
func (s *Service) GenerateAuthURL(name string, opts providers.AuthURLOptions) (string, error) {
	p, err := s.Provider(name)
	if err != nil {
		return "", err
	}

	authURL := p.AuthURL(opts)

	pkce := opts.CodeChallenge != ""
	s.inst.Metrics().RecordAuthURLGenerated(context.Background(), name, pkce)
	s.auditor.LogAuthorizationStarted(name, opts.State != "", pkce)
	s.logger.Debug("Authorization URL generated",
		"provider", name,
		"state_present", opts.State != "",
		"pkce", pkce)

	return authURL, nil
}

// HandleCallback processes the provider redirect and exchanges its code for tokens.
func (s *Service) HandleCallback(ctx context.Context, name string, params providers.CallbackParams) (*providers.TokenResponse, error) {
	ctx, span := s.startSpan(ctx, "oauth.handle_callback", name)
	defer span.End()
	instrumentation.SetSpanAttributes(span, attribute.Bool(instrumentation.AttrStatePresent, params.State != ""))

	p, err := s.Provider(name)
	if err != nil {
		instrumentation.RecordError(span, err)
		return nil, err
	}

	tok, err := p.HandleCallback(ctx, params)
	s.inst.Metrics().RecordCallbackProcessed(ctx, name, err == nil)
	if err != nil {
		s.recordFailure(span, name, providers.OpExchangeCode, err)
		return nil, err
	}

	pkce := params.CodeVerifier != ""
	if pkce {
		instrumentation.AddPKCEAttributes(span, security.PKCEMethodS256)
	}
	if tok.Scope != "" {
		instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrScope, tok.Scope))
	}
	s.inst.Metrics().RecordCodeExchange(ctx, name, pkce)
	s.auditor.LogTokenIssued(name, tok.AccessToken, tok.Scope)
	instrumentation.SetSpanSuccess(span)

	s.logger.Debug("Callback processed",
		"provider", name,
		"token_type", tok.TokenType,
		"expires_in", tok.ExpiresIn,
		"has_refresh_token", tok.RefreshToken != "")

	return tok, nil
}

// RefreshToken obtains a new access token from the named provider.
func (s *Service) RefreshToken(ctx context.Context, name string, opts providers.RefreshOptions) (*providers.TokenResponse, error) {
	ctx, span := s.startSpan(ctx, "oauth.refresh_token", name)
	defer span.End()
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrGrantType, "refresh_token"))

	p, err := s.Provider(name)
	if err != nil {
		instrumentation.RecordError(span, err)
		return nil, err
	}

	tok, err := p.RefreshToken(ctx, opts)
	s.inst.Metrics().RecordTokenRefresh(ctx, name, err == nil)
	if err != nil {
		s.recordFailure(span, name, providers.OpRefreshToken, err)
		return nil, err
	}

	rotated := tok.RefreshToken != "" && tok.RefreshToken != opts.RefreshToken
	s.auditor.LogTokenRefreshed(name, tok.AccessToken, rotated)
	instrumentation.SetSpanSuccess(span)
	s.logger.Debug("Token refreshed", "provider", name, "rotated", rotated)

	return tok, nil
}

// RevokeToken revokes a token at the named provider.
func (s *Service) RevokeToken(ctx context.Context, name string, opts providers.RevokeOptions) error {
	ctx, span := s.startSpan(ctx, "oauth.revoke_token", name)
	defer span.End()
	if opts.TokenTypeHint != "" {
		instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrTokenTypeHint, opts.TokenTypeHint))
	}

	p, err := s.Provider(name)
	if err != nil {
		instrumentation.RecordError(span, err)
		return err
	}

	err = p.RevokeToken(ctx, opts)
	s.inst.Metrics().RecordTokenRevocation(ctx, name, err == nil)
	if err != nil {
		s.recordFailure(span, name, providers.OpRevokeToken, err)
		return err
	}

	s.auditor.LogTokenRevoked(name, opts.Token, opts.TokenTypeHint)
	instrumentation.SetSpanSuccess(span)
	s.logger.Debug("Token revoked", "provider", name)

	return nil
}

// UserInfo fetches the user's profile from the named provider.
func (s *Service) UserInfo(ctx context.Context, name, accessToken string) (providers.UserInfo, error) {
	ctx, span := s.startSpan(ctx, "oauth.userinfo", name)
	defer span.End()

	p, err := s.Provider(name)
	if err != nil {
		instrumentation.RecordError(span, err)
		return nil, err
	}

	info, err := p.UserInfo(ctx, accessToken)
	s.inst.Metrics().RecordUserInfoFetched(ctx, name, err == nil)
	if err != nil {
		s.recordFailure(span, name, providers.OpUserInfo, err)
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	return info, nil
}

// Instrumentation returns the Service's instrumentation, for exposing metrics.
func (s *Service) Instrumentation() *instrumentation.Instrumentation {
	return s.inst
}

// RateLimitStats returns outbound rate limiter statistics; ok is false when rate
// limiting is disabled.
func (s *Service) RateLimitStats() (stats security.Stats, ok bool) {
	if s.limiter == nil {
		return security.Stats{}, false
	}
	return s.limiter.GetStats(), true
}

// Close flushes and stops instrumentation. Registered providers hold no resources.
func (s *Service) Close(ctx context.Context) error {
	return s.inst.Shutdown(ctx)
}

func (s *Service) startSpan(ctx context.Context, spanName, provider string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, spanName)
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrProviderName, provider))
	return ctx, span
}

// recordFailure annotates the span, audits the failure and logs it. The error
// itself is returned to the caller unchanged.
func (s *Service) recordFailure(span trace.Span, provider, operation string, err error) {
	instrumentation.RecordError(span, err)

	var (
		callbackErr *providers.CallbackError
		invalidCb   *providers.InvalidCallbackError
	)
	switch {
	case errors.As(err, &callbackErr):
		instrumentation.AddCallbackErrorAttributes(span, callbackErr.Code, callbackErr.Description)
		s.auditor.LogCallbackError(provider, callbackErr.Code, callbackErr.Description)
	case errors.As(err, &invalidCb):
		s.auditor.LogInvalidCallback(provider)
	case errors.Is(err, transport.ErrRateLimited):
		s.auditor.LogRateLimitExceeded(provider, operation)
	default:
		s.auditor.LogProviderCallFailed(provider, operation, err)
	}

	s.logger.Debug("Provider operation failed",
		"provider", provider,
		"operation", operation,
		"error", err)
}
