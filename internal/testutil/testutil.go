package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// OriginalHostHeader carries the host a request was addressed to before
// RedirectTransport rewrote it.
const OriginalHostHeader = "X-Original-Host"

// RedirectTransport is an http.RoundTripper that sends every request to Target,
// keeping the path, query, headers and body untouched.
type RedirectTransport struct {
	Target *url.URL
	Base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *RedirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(OriginalHostHeader, req.URL.Host)
	clone.URL.Scheme = t.Target.Scheme
	clone.URL.Host = t.Target.Host
	clone.Host = t.Target.Host

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// RecordedRequest is a request captured by a ProviderServer.
type RecordedRequest struct {
	Method string
	Host   string // host the caller addressed, before redirection
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

// Form parses the body as application/x-www-form-urlencoded.
func (r RecordedRequest) Form() url.Values {
	values, err := url.ParseQuery(r.Body)
	if err != nil {
		return url.Values{}
	}
	return values
}

// JSON decodes the body into a generic map.
func (r RecordedRequest) JSON() map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(r.Body), &out); err != nil {
		return nil
	}
	return out
}

// URL returns the scheme-less address the caller targeted, e.g.
// "oauth2.googleapis.com/token".
func (r RecordedRequest) URL() string {
	return r.Host + r.Path
}

// ProviderServer is an httptest.Server standing in for an identity provider.
type ProviderServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewProviderServer starts a server that records each request and then hands it to
// handler. A nil handler answers every request with 200 and "{}". The server is
// closed when the test ends.
func NewProviderServer(t *testing.T, handler http.HandlerFunc) *ProviderServer {
	t.Helper()

	s := &ProviderServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		host := r.Header.Get(OriginalHostHeader)
		if host == "" {
			host = r.Host
		}

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Host:   host,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		s.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		if handler == nil {
			WriteJSON(w, http.StatusOK, map[string]any{})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(s.Close)

	return s
}

// HTTPClient returns a client whose transport redirects all hosts to the server.
func (s *ProviderServer) HTTPClient() *http.Client {
	target, _ := url.Parse(s.URL)
	return &http.Client{Transport: &RedirectTransport{Target: target}}
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *ProviderServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns how many requests the server has received.
func (s *ProviderServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request. It fails the test if there is none.
func (s *ProviderServer) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("provider server received no requests")
	}
	return s.requests[len(s.requests)-1]
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// FullCredentials returns a credential map with every commonly required field set.
func FullCredentials() map[string]string {
	return map[string]string{
		"client_id":     "cid",
		"client_secret": "secret",
		"redirect_uri":  "http://localhost/callback",
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertEqual fails the test if got != want
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

// AssertStringContains fails the test if s does not contain substr
func AssertStringContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("string %q does not contain %q", s, substr)
	}
}
