package oauth

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/multi-oauth/instrumentation"
	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/registry"
	"github.com/giantswarm/multi-oauth/transport"
)

// DefaultEnvPrefix is the variable prefix ProvidersFromEnv uses when none is given.
const DefaultEnvPrefix = "OAUTH"

// Config holds the Service configuration.
// Structured using composition: provider registrations, outbound call behaviour
// and observability.
type Config struct {
	// Providers are registered by NewService in order; the first failure aborts.
	Providers []ProviderConfig `yaml:"providers"`

	// RequestTimeout bounds every provider call.
	// Default: 10 seconds
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// UserAgent is sent on every provider call.
	// Default: "multi-oauth"
	UserAgent string `yaml:"user_agent"`

	// Rate limiting configuration for outbound provider calls
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Instrumentation configures OpenTelemetry metrics and tracing
	Instrumentation InstrumentationConfig `yaml:"instrumentation"`

	// EnableAuditLogging enables security audit logging.
	// Logs flow starts, token issuance, refresh, revocation and failures (tokens hashed).
	EnableAuditLogging bool `yaml:"audit_logging"`

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger `yaml:"-"`

	// HTTPClient is a custom HTTP client for provider requests.
	// If not provided, each provider gets a client with RequestTimeout.
	HTTPClient *http.Client `yaml:"-"`

	// Registry resolves provider names (optional, defaults to registry.Default()).
	Registry *registry.Registry `yaml:"-"`
}

// ProviderConfig is one provider registration.
type ProviderConfig struct {
	// Name is the registry key, e.g. "google".
	Name string `yaml:"name"`

	// Credentials are passed to the provider constructor.
	Credentials providers.Credentials `yaml:"credentials"`
}

// RateLimitConfig holds outbound rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerSecond allowed per provider. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the maximum burst size per provider.
	Burst int `yaml:"burst"`

	// PerProvider overrides the limit for individual providers.
	PerProvider map[string]RateLimitOverride `yaml:"per_provider"`
}

// RateLimitOverride is a provider-specific token bucket.
type RateLimitOverride struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Enabled reports whether outbound rate limiting is on.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// InstrumentationConfig holds OpenTelemetry configuration
type InstrumentationConfig struct {
	// Enabled switches from no-op to SDK providers.
	Enabled bool `yaml:"enabled"`

	// ServiceName defaults to "multi-oauth".
	ServiceName string `yaml:"service_name"`

	// ServiceVersion defaults to "unknown".
	ServiceVersion string `yaml:"service_version"`

	// MetricsExporter is "prometheus" or "none" (default).
	MetricsExporter string `yaml:"metrics_exporter"`

	// PrometheusRegisterer defaults to a registry private to the Service, served by
	// Service.Instrumentation().Gatherer().
	PrometheusRegisterer prometheus.Registerer `yaml:"-"`

	// SpanExporter receives finished spans (optional).
	SpanExporter sdktrace.SpanExporter `yaml:"-"`
}

func (c InstrumentationConfig) toInstrumentation() instrumentation.Config {
	return instrumentation.Config{
		Enabled:              c.Enabled,
		ServiceName:          c.ServiceName,
		ServiceVersion:       c.ServiceVersion,
		MetricsExporter:      c.MetricsExporter,
		PrometheusRegisterer: c.PrometheusRegisterer,
		SpanExporter:         c.SpanExporter,
	}
}

// Validate checks the configuration for values NewService cannot use.
func (c *Config) Validate() error {
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	for name, override := range c.RateLimit.PerProvider {
		if override.RequestsPerSecond < 0 || override.Burst < 0 {
			return fmt.Errorf("rate_limit.per_provider.%s values must not be negative", name)
		}
	}
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
	}
	return nil
}

// applyDefaults returns a copy of c with defaults filled in.
func applyDefaults(c *Config) *Config {
	cfg := *c
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = transport.DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = transport.DefaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.Default()
	}
	return &cfg
}

// LoadConfig reads a YAML configuration file. See ParseConfig for environment
// references.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data. Unknown fields are rejected.
//
// After decoding, ${VAR} references inside provider names, credential values, the
// user agent and the instrumentation service name and version are replaced with
// the value of the environment variable VAR (empty when unset). Any other "$" is
// kept as written.
func ParseConfig(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.expandEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(s string) string {
	return envReference.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

func (c *Config) expandEnv() {
	c.UserAgent = expandEnv(c.UserAgent)
	c.Instrumentation.ServiceName = expandEnv(c.Instrumentation.ServiceName)
	c.Instrumentation.ServiceVersion = expandEnv(c.Instrumentation.ServiceVersion)

	for i := range c.Providers {
		p := &c.Providers[i]
		p.Name = expandEnv(p.Name)
		for key, value := range p.Credentials {
			p.Credentials[key] = expandEnv(value)
		}
	}
}

// LoadDotEnv loads environment variables from dotenv files. Variables already
// set in the environment win. Without arguments ".env" is loaded.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ProvidersFromEnv discovers provider registrations from variables named
// <PREFIX>_<PROVIDER>_<FIELD>, e.g. OAUTH_GOOGLE_CLIENT_ID. Only providers known to
// the default registry are considered; fields are lower-cased into credential keys.
// The result is sorted by provider name.
func ProvidersFromEnv(prefix string) []ProviderConfig {
	return providersFromEnviron(prefix, os.Environ(), registry.Default().Available())
}

func providersFromEnviron(prefix string, environ, names []string) []ProviderConfig {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	prefix = strings.ToUpper(prefix) + "_"

	found := make(map[string]providers.Credentials)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)

		for _, name := range names {
			field, ok := strings.CutPrefix(rest, strings.ToUpper(name)+"_")
			if !ok || field == "" {
				continue
			}
			if found[name] == nil {
				found[name] = providers.Credentials{}
			}
			found[name][strings.ToLower(field)] = value
		}
	}

	result := make([]ProviderConfig, 0, len(found))
	for name, creds := range found {
		result = append(result, ProviderConfig{Name: name, Credentials: creds})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
