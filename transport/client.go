package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/giantswarm/multi-oauth/instrumentation"
	"github.com/giantswarm/multi-oauth/internal/util"
)

const (
	// DefaultTimeout bounds every provider call unless Config.Timeout says otherwise.
	DefaultTimeout = 10 * time.Second

	// MaxResponseBodySize caps how much of a provider response is read.
	MaxResponseBodySize = 1 << 20

	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "multi-oauth"

	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"

	// maxLoggedBodyLen limits response bodies written to debug logs.
	maxLoggedBodyLen = 200
)

// Limiter decides whether an outbound call for an identifier may proceed.
// *security.RateLimiter satisfies it.
type Limiter interface {
	Allow(identifier string) bool
}

// Config holds Client configuration. Only Provider is required.
type Config struct {
	// Provider names the identity provider; it labels errors, logs, spans and metrics.
	Provider string

	// Timeout applies to every call whose context has no deadline (default: 10s).
	Timeout time.Duration

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Instrumentation defaults to a no-op instance.
	Instrumentation *instrumentation.Instrumentation

	// Limiter is optional; nil disables outbound rate limiting.
	Limiter Limiter

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
}

// BasicAuth holds HTTP Basic client credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Request describes one provider API call.
type Request struct {
	Method string
	URL    string

	// Header values are set verbatim. Accept defaults to application/json.
	Header map[string]string

	// Query is appended to URL. Nil values are dropped.
	Query util.Params

	// Form is sent url-encoded unless JSON is set.
	Form util.Params

	// JSON, when non-nil, is marshalled as the request body.
	JSON any

	BasicAuth *BasicAuth
}

// Client performs provider API calls for a single provider.
type Client struct {
	provider   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	inst       *instrumentation.Instrumentation
	limiter    Limiter
	userAgent  string
}

// New creates a Client from cfg, applying defaults.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	inst := cfg.Instrumentation
	if inst == nil {
		inst = instrumentation.NewNoop()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		provider:   cfg.Provider,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger.With("provider", cfg.Provider),
		inst:       inst,
		limiter:    cfg.Limiter,
		userAgent:  userAgent,
	}
}

// Provider returns the provider name the client is bound to.
func (c *Client) Provider() string {
	return c.provider
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// ensureContextTimeout ensures the context has a deadline, adding one if needed.
// If the context already has a deadline, returns the original context with a no-op cancel.
func (c *Client) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Do executes req and, when out is non-nil and the response has a body, decodes the
// JSON response into out. operation is a short label such as "exchange_code".
func (c *Client) Do(ctx context.Context, operation string, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	httpReq, err := c.newHTTPRequest(ctx, method, req)
	if err != nil {
		return c.newError(operation, method, req.URL, 0, "", err)
	}

	resp, body, err := c.send(ctx, operation, httpReq)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.newError(operation, method, req.URL, resp.StatusCode, string(body), nil)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return c.newError(operation, method, req.URL, resp.StatusCode, string(body), fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// send performs httpReq behind the rate limiter, with a span, metrics and logs
// around it, and reads the whole response body. The response is returned for any
// status; the returned *Error means no response was received.
func (c *Client) send(ctx context.Context, operation string, httpReq *http.Request) (*http.Response, []byte, error) {
	method := httpReq.Method
	endpoint := stripQuery(httpReq.URL.String())

	if c.limiter != nil && !c.limiter.Allow(c.provider) {
		if httpReq.Body != nil {
			_ = httpReq.Body.Close()
		}
		c.inst.Metrics().RecordRateLimitExceeded(ctx, c.provider)
		c.logger.Warn("Provider call rejected by rate limiter", "operation", operation)
		return nil, nil, c.newError(operation, method, endpoint, 0, "", ErrRateLimited)
	}

	ctx, span := c.inst.Tracer("provider").Start(ctx, "provider."+c.provider+"."+operation)
	defer span.End()
	instrumentation.AddProviderAttributes(span, c.provider, operation)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq.WithContext(ctx))
	if err != nil {
		durationMs := float64(time.Since(start).Milliseconds())
		c.inst.Metrics().RecordProviderAPICall(ctx, c.provider, operation, 0, durationMs, err)
		instrumentation.RecordError(span, err)
		c.logger.Warn("Provider request failed", "operation", operation, "method", method, "endpoint", endpoint, "error", err)
		return nil, nil, c.newError(operation, method, endpoint, 0, "", fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodySize))
	durationMs := float64(time.Since(start).Milliseconds())
	instrumentation.AddHTTPAttributes(span, method, endpoint, resp.StatusCode)
	if err != nil {
		c.inst.Metrics().RecordProviderAPICall(ctx, c.provider, operation, resp.StatusCode, durationMs, err)
		instrumentation.RecordError(span, err)
		return nil, nil, c.newError(operation, method, endpoint, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		callErr := c.newError(operation, method, endpoint, resp.StatusCode, string(body), nil)
		c.inst.Metrics().RecordProviderAPICall(ctx, c.provider, operation, resp.StatusCode, durationMs, callErr)
		instrumentation.SetSpanError(span, http.StatusText(resp.StatusCode))
		c.logger.Warn("Provider returned error status",
			"operation", operation,
			"method", method,
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"body", util.SafeTruncate(string(body), maxLoggedBodyLen))
		return resp, body, nil
	}

	c.inst.Metrics().RecordProviderAPICall(ctx, c.provider, operation, resp.StatusCode, durationMs, nil)
	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("Provider call completed",
		"operation", operation,
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration_ms", durationMs)

	return resp, body, nil
}

func (c *Client) newError(operation, method, rawURL string, status int, body string, err error) *Error {
	return &Error{
		Provider:   c.provider,
		Operation:  operation,
		Method:     method,
		URL:        stripQuery(rawURL),
		StatusCode: status,
		Body:       body,
		Err:        err,
	}
}

// newHTTPRequest builds the *http.Request for req.
func (c *Client) newHTTPRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	var body io.Reader
	contentType := ""

	switch {
	case req.JSON != nil:
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = contentTypeJSON
	case len(req.Form) > 0:
		body = strings.NewReader(util.BuildQuery(req.Form))
		contentType = contentTypeForm
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, util.BuildURL(req.URL, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setDefaultHeaders(httpReq)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, value := range req.Header {
		httpReq.Header.Set(key, value)
	}
	if req.BasicAuth != nil {
		httpReq.SetBasicAuth(req.BasicAuth.Username, req.BasicAuth.Password)
	}

	return httpReq, nil
}

// setDefaultHeaders sets Accept and User-Agent unless the request already has them.
func (c *Client) setDefaultHeaders(r *http.Request) {
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", contentTypeJSON)
	}
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", c.userAgent)
	}
}

// stripQuery removes the query string so that tokens passed as query
// parameters never reach errors, logs or spans.
func stripQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
