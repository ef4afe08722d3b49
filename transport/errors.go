package transport

import (
	"errors"
	"fmt"

	"github.com/giantswarm/multi-oauth/internal/util"
)

// ErrRateLimited is wrapped by an *Error when the client's Limiter rejects a call.
var ErrRateLimited = errors.New("outbound rate limit exceeded")

// maxErrorBodyLen bounds how much of a response body is repeated in Error().
const maxErrorBodyLen = 256

// Error describes a failed provider API call.
// StatusCode is zero when no response was received; Err then holds the cause.
type Error struct {
	Provider   string
	Operation  string
	Method     string
	URL        string // endpoint without query string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		msg := fmt.Sprintf("%s %s: %s %s returned status %d", e.Provider, e.Operation, e.Method, e.URL, e.StatusCode)
		if e.Body != "" {
			msg += ": " + util.SafeTruncate(e.Body, maxErrorBodyLen)
		}
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}
	return fmt.Sprintf("%s %s: %s %s failed: %v", e.Provider, e.Operation, e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by a *Error anywhere in err's chain,
// or zero.
func StatusCode(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
