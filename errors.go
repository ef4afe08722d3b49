package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/registry"
	"github.com/giantswarm/multi-oauth/transport"
)

// Error types surfaced by the Service, re-exported so callers need a single import.
type (
	// ConfigurationError reports a missing required credential.
	ConfigurationError = providers.ConfigurationError

	// UnknownProviderError reports a name the registry has no constructor for.
	UnknownProviderError = registry.UnknownProviderError

	// ProviderCallbackError reports an error the provider redirected back with.
	ProviderCallbackError = providers.CallbackError

	// InvalidCallbackError reports a callback without an authorization code.
	InvalidCallbackError = providers.InvalidCallbackError

	// TokenEndpointError reports an OAuth error body on a successful response.
	TokenEndpointError = providers.TokenEndpointError

	// TransportError reports a failed provider call.
	TransportError = transport.Error
)

// Sentinel errors
var (
	ErrRateLimited        = transport.ErrRateLimited
	ErrMissingAccessToken = providers.ErrMissingAccessToken
)

// ProviderNotRegisteredError is returned when the Service has no instance for a
// name, even though the registry may know it.
type ProviderNotRegisteredError struct {
	Name       string
	Registered []string
	Available  []string
}

func (e *ProviderNotRegisteredError) Error() string {
	registered := "none"
	if len(e.Registered) > 0 {
		registered = strings.Join(e.Registered, ", ")
	}
	return fmt.Sprintf("provider %q is not registered (registered: %s; available: %s)",
		e.Name, registered, strings.Join(e.Available, ", "))
}

// OAuth error codes as constants
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidGrant           = "invalid_grant"
	ErrorCodeAccessDenied           = "access_denied"
	ErrorCodeServerError            = "server_error"
	ErrorCodeTemporarilyUnavailable = "temporarily_unavailable"
	ErrorCodeRateLimitExceeded      = "rate_limit_exceeded"
	ErrorCodeProviderNotFound       = "provider_not_found"
)

// ErrorResponse is an OAuth-style error body a caller can send to its own clients.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Provider         string `json:"provider,omitempty"`
}

// ErrorResponseFor maps an error returned by the Service to an HTTP status and
// error body. Provider error codes are passed through; transport details such as
// response bodies are not.
func ErrorResponseFor(err error) (int, ErrorResponse) {
	var (
		notRegistered *ProviderNotRegisteredError
		unknown       *UnknownProviderError
		cfgErr        *ConfigurationError
		callbackErr   *ProviderCallbackError
		invalidCb     *InvalidCallbackError
		tokenErr      *TokenEndpointError
		transportErr  *TransportError
	)

	switch {
	case err == nil:
		return http.StatusOK, ErrorResponse{}

	case errors.As(err, &notRegistered):
		return http.StatusNotFound, ErrorResponse{
			Error:            ErrorCodeProviderNotFound,
			ErrorDescription: notRegistered.Error(),
			Provider:         notRegistered.Name,
		}

	case errors.As(err, &unknown):
		return http.StatusNotFound, ErrorResponse{
			Error:            ErrorCodeProviderNotFound,
			ErrorDescription: unknown.Error(),
			Provider:         unknown.Name,
		}

	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, ErrorResponse{
			Error:            ErrorCodeServerError,
			ErrorDescription: "provider is misconfigured",
			Provider:         cfgErr.Provider,
		}

	case errors.As(err, &callbackErr):
		status := http.StatusBadRequest
		if callbackErr.Code == ErrorCodeAccessDenied {
			status = http.StatusForbidden
		}
		return status, ErrorResponse{
			Error:            callbackErr.Code,
			ErrorDescription: callbackErr.Description,
			Provider:         callbackErr.Provider,
		}

	case errors.As(err, &invalidCb):
		return http.StatusBadRequest, ErrorResponse{
			Error:            ErrorCodeInvalidRequest,
			ErrorDescription: invalidCb.Reason,
			Provider:         invalidCb.Provider,
		}

	case errors.As(err, &tokenErr):
		return http.StatusBadRequest, ErrorResponse{
			Error:            tokenErr.Code,
			ErrorDescription: tokenErr.Description,
			Provider:         tokenErr.Provider,
		}

	case errors.Is(err, ErrRateLimited):
		resp := ErrorResponse{
			Error:            ErrorCodeRateLimitExceeded,
			ErrorDescription: "too many requests to the provider",
		}
		if errors.As(err, &transportErr) {
			resp.Provider = transportErr.Provider
		}
		return http.StatusTooManyRequests, resp

	case errors.As(err, &transportErr):
		return transportStatus(err, transportErr)

	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:            ErrorCodeServerError,
			ErrorDescription: "internal error",
		}
	}
}

func transportStatus(err error, te *TransportError) (int, ErrorResponse) {
	resp := ErrorResponse{Provider: te.Provider}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		resp.Error = ErrorCodeTemporarilyUnavailable
		resp.ErrorDescription = "provider request timed out"
		return http.StatusGatewayTimeout, resp

	case te.StatusCode == http.StatusBadRequest || te.StatusCode == http.StatusUnauthorized:
		resp.Error = ErrorCodeInvalidGrant
		resp.ErrorDescription = fmt.Sprintf("provider rejected %s with status %d", te.Operation, te.StatusCode)
		return http.StatusBadRequest, resp

	case te.StatusCode > 0:
		resp.Error = ErrorCodeTemporarilyUnavailable
		resp.ErrorDescription = fmt.Sprintf("provider %s failed with status %d", te.Operation, te.StatusCode)
		return http.StatusBadGateway, resp

	default:
		resp.Error = ErrorCodeTemporarilyUnavailable
		resp.ErrorDescription = fmt.Sprintf("provider %s request failed", te.Operation)
		return http.StatusBadGateway, resp
	}
}
