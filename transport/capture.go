package transport

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Capture is an http.RoundTripper that sends requests made by a library taking an
// *http.Client, such as golang.org/x/oauth2, through the Client. Every request gets
// the Client's rate limiting, timeout, tracing, metrics and logging. The body of the
// last response is kept so callers can decode fields the library drops.
type Capture struct {
	client    *Client
	operation string

	mu     sync.Mutex
	method string
	url    string
	status int
	body   []byte
	err    error
}

// Capture returns a Capture labelling its calls with operation.
func (c *Client) Capture(operation string) *Capture {
	return &Capture{client: c, operation: operation}
}

// HTTPClient returns an *http.Client using the Capture as its transport.
func (cp *Capture) HTTPClient() *http.Client {
	return &http.Client{Transport: cp}
}

// RoundTrip implements http.RoundTripper.
func (cp *Capture) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := cp.client.ensureContextTimeout(req.Context())
	defer cancel()

	r := req.Clone(ctx)
	cp.client.setDefaultHeaders(r)

	resp, body, err := cp.client.send(ctx, cp.operation, r)

	cp.mu.Lock()
	cp.method = r.Method
	cp.url = r.URL.String()
	cp.body = body
	cp.err = err
	if resp != nil {
		cp.status = resp.StatusCode
	}
	cp.mu.Unlock()

	if err != nil {
		return nil, err
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// Requested reports whether any request went through the Capture.
func (cp *Capture) Requested() bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.method != ""
}

// Body returns the body of the last response, or nil.
func (cp *Capture) Body() []byte {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.body
}

// Err returns the *Error of the last request when no response was received
// (rate limited, network failure), or nil.
func (cp *Capture) Err() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.err
}

// NewError builds an *Error describing the last request and its response.
func (cp *Capture) NewError(err error) *Error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.client.newError(cp.operation, cp.method, cp.url, cp.status, string(cp.body), err)
}
