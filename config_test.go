package oauth

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/registry"
	"github.com/giantswarm/multi-oauth/transport"
)

func TestConfig_Defaults(t *testing.T) {
	config := &Config{}
	cfg := applyDefaults(config)

	if cfg.RequestTimeout != transport.DefaultTimeout {
		t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, transport.DefaultTimeout)
	}
	if cfg.UserAgent != transport.DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.Logger == nil {
		t.Error("Logger should default to slog.Default()")
	}
	if cfg.Registry != registry.Default() {
		t.Error("Registry should default to registry.Default()")
	}
	if cfg.RateLimit.Enabled() {
		t.Error("rate limiting should be disabled by default")
	}

	if config.Logger != nil || config.RequestTimeout != 0 {
		t.Error("applyDefaults must not modify the caller's config")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:   "zero value",
			config: Config{},
		},
		{
			name:    "negative timeout",
			config:  Config{RequestTimeout: -time.Second},
			wantErr: "request_timeout",
		},
		{
			name:    "negative rate",
			config:  Config{RateLimit: RateLimitConfig{RequestsPerSecond: -1}},
			wantErr: "rate_limit",
		},
		{
			name: "negative override",
			config: Config{RateLimit: RateLimitConfig{
				PerProvider: map[string]RateLimitOverride{"github": {Burst: -2}},
			}},
			wantErr: "rate_limit.per_provider.github",
		},
		{
			name:    "provider without name",
			config:  Config{Providers: []ProviderConfig{{Credentials: providers.Credentials{"client_id": "x"}}}},
			wantErr: "providers[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	t.Setenv("TEST_GOOGLE_SECRET", "from-env")

	data := []byte(`
request_timeout: 15s
user_agent: my-app/1.0
audit_logging: true
rate_limit:
  requests_per_second: 5
  burst: 10
  per_provider:
    naver:
      requests_per_second: 1
      burst: 1
instrumentation:
  enabled: true
  service_name: login
  metrics_exporter: none
providers:
  - name: google
    credentials:
      client_id: cid
      client_secret: ${TEST_GOOGLE_SECRET}
      redirect_uri: http://localhost/callback
  - name: facebook
    credentials:
      client_id: fb
      client_secret: fbs
      redirect_uri: http://localhost/fb
      api_version: v19.0
`)

	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.UserAgent != "my-app/1.0" || !cfg.EnableAuditLogging {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if got := cfg.RateLimit.PerProvider["naver"]; got.RequestsPerSecond != 1 || got.Burst != 1 {
		t.Errorf("naver override = %+v", got)
	}
	if !cfg.Instrumentation.Enabled || cfg.Instrumentation.ServiceName != "login" {
		t.Errorf("Instrumentation = %+v", cfg.Instrumentation)
	}

	if len(cfg.Providers) != 2 {
		t.Fatalf("Providers = %d, want 2", len(cfg.Providers))
	}
	google := cfg.Providers[0]
	if google.Name != "google" || google.Credentials.ClientSecret() != "from-env" {
		t.Errorf("google = %+v", google)
	}
	if cfg.Providers[1].Credentials.Get("api_version") != "v19.0" {
		t.Errorf("facebook = %+v", cfg.Providers[1])
	}
}

func TestParseConfig_EnvReferences(t *testing.T) {
	t.Setenv("TEST_HASH_SECRET", "abc #def")
	t.Setenv("TEST_MULTILINE", "x\nname: injected")
	t.Setenv("word", "mangled")

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "literal dollar signs", value: `'pa$word$1'`, want: "pa$word$1"},
		{name: "lone dollar", value: `'cost$'`, want: "cost$"},
		{name: "braced reference", value: `${TEST_HASH_SECRET}`, want: "abc #def"},
		{name: "reference inside text", value: `'pre-${TEST_HASH_SECRET}-post'`, want: "pre-abc #def-post"},
		{name: "value stays a scalar", value: `${TEST_MULTILINE}`, want: "x\nname: injected"},
		{name: "unset reference", value: `${TEST_UNSET_SECRET_VAR}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`
providers:
  - name: google
    credentials:
      client_id: cid
      client_secret: ` + tt.value + `
      redirect_uri: http://localhost/callback
`)
			cfg, err := ParseConfig(data)
			if err != nil {
				t.Fatalf("ParseConfig() error = %v", err)
			}
			if len(cfg.Providers) != 1 {
				t.Fatalf("Providers = %+v", cfg.Providers)
			}
			if got := cfg.Providers[0].Credentials.ClientSecret(); got != tt.want {
				t.Errorf("client_secret = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"unknown field", "request_timout: 5s\n", "failed to parse config"},
		{"bad duration", "request_timeout: soon\n", "failed to parse config"},
		{"invalid values", "rate_limit:\n  burst: -1\n", "invalid config"},
		{"missing provider name", "providers:\n  - credentials: {client_id: x}\n", "invalid config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if len(cfg.Providers) != 0 {
		t.Errorf("Providers = %v", cfg.Providers)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauth.yaml")
	content := "providers:\n  - name: kakao\n    credentials:\n      client_id: k\n      client_secret: ks\n      redirect_uri: http://localhost/kakao\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Providers) != 1 || cfg.Providers[0].Name != "kakao" {
		t.Errorf("Providers = %+v", cfg.Providers)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() expected error for missing file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	const (
		newKey      = "MULTI_OAUTH_TEST_DOTENV_NEW"
		existingKey = "MULTI_OAUTH_TEST_DOTENV_EXISTING"
	)
	t.Setenv(existingKey, "original")
	t.Cleanup(func() { _ = os.Unsetenv(newKey) })

	path := filepath.Join(t.TempDir(), ".env")
	content := newKey + "=loaded\n" + existingKey + "=overridden\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(newKey); got != "loaded" {
		t.Errorf("%s = %q, want loaded", newKey, got)
	}
	if got := os.Getenv(existingKey); got != "original" {
		t.Errorf("%s = %q, existing variables must win", existingKey, got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("LoadDotEnv() expected error for missing file")
	}
}

func TestProvidersFromEnviron(t *testing.T) {
	environ := []string{
		"OAUTH_GOOGLE_CLIENT_ID=gid",
		"OAUTH_GOOGLE_CLIENT_SECRET=gsecret",
		"OAUTH_GOOGLE_REDIRECT_URI=http://localhost/google",
		"OAUTH_X_CLIENT_ID=xid",
		"OAUTH_FACEBOOK_API_VERSION=v18.0",
		"OAUTH_MYSPACE_CLIENT_ID=ignored",
		"OAUTH_GOOGLE_=ignored",
		"OTHER_GOOGLE_CLIENT_ID=ignored",
		"PATH=/usr/bin",
	}

	got := providersFromEnviron("oauth", environ, registry.Default().Available())

	want := []ProviderConfig{
		{Name: "facebook", Credentials: providers.Credentials{"api_version": "v18.0"}},
		{Name: "google", Credentials: providers.Credentials{
			"client_id":     "gid",
			"client_secret": "gsecret",
			"redirect_uri":  "http://localhost/google",
		}},
		{Name: "x", Credentials: providers.Credentials{"client_id": "xid"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("providersFromEnviron() = %+v, want %+v", got, want)
	}
}

func TestProvidersFromEnv_DefaultPrefix(t *testing.T) {
	t.Setenv("OAUTH_NAVER_CLIENT_ID", "nid")

	var naver *ProviderConfig
	for _, p := range ProvidersFromEnv("") {
		if p.Name == "naver" {
			naver = &p
		}
	}
	if naver == nil || naver.Credentials.ClientID() != "nid" {
		t.Errorf("naver = %+v", naver)
	}
}
