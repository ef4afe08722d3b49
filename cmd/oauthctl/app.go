package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	oauth "github.com/giantswarm/multi-oauth"
)

// app holds global flag values and builds the Service on demand.
type app struct {
	configPath string
	envFiles   []string
	envPrefix  string
	timeout    time.Duration
	verbose    bool

	// httpClient overrides the provider HTTP client; tests point it at a fake provider.
	httpClient *http.Client
	environ    func() []oauth.ProviderConfig
}

func newApp() *app {
	return &app{envPrefix: oauth.DefaultEnvPrefix}
}

func (a *app) logger(stderr io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads dotenv files and the config file, then appends providers found
// in the environment that the file does not configure.
func (a *app) loadConfig() (*oauth.Config, error) {
	if len(a.envFiles) > 0 {
		if err := oauth.LoadDotEnv(a.envFiles...); err != nil {
			return nil, err
		}
	}

	cfg := &oauth.Config{}
	if a.configPath != "" {
		loaded, err := oauth.LoadConfig(a.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if a.timeout > 0 {
		cfg.RequestTimeout = a.timeout
	}
	if a.httpClient != nil {
		cfg.HTTPClient = a.httpClient
	}
	return cfg, nil
}

func (a *app) envProviders() []oauth.ProviderConfig {
	if a.environ != nil {
		return a.environ()
	}
	return oauth.ProvidersFromEnv(a.envPrefix)
}

// newService builds a Service from the config file. When provider is non-empty and
// the file does not configure it, its credentials are taken from the environment.
func (a *app) newService(stderr io.Writer, provider string) (*oauth.Service, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = a.logger(stderr)

	svc, err := oauth.NewService(cfg)
	if err != nil {
		return nil, err
	}

	if provider == "" {
		return svc, nil
	}
	if _, err := svc.Provider(provider); err == nil {
		return svc, nil
	}

	for _, p := range a.envProviders() {
		if p.Name == provider {
			if err := svc.RegisterProvider(p.Name, p.Credentials); err != nil {
				return nil, err
			}
			return svc, nil
		}
	}

	return nil, fmt.Errorf("no credentials for provider %q: set %s_%s_CLIENT_ID and friends or use --config",
		provider, strings.ToUpper(a.envPrefix), strings.ToUpper(provider))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
