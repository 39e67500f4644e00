package mfasdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nexosupport/nexomfa/pkg/httpx"
)

const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeInvalidToken     = "invalid_token"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeSessionExpired   = "session_expired"
	ErrorCodeSessionClosed    = "session_closed"
	ErrorCodeFactorResolved   = "factor_resolved"
	ErrorCodeNotInteractive   = "factor_not_interactive"
	ErrorCodeNotEnrolled      = "not_enrolled"
	ErrorCodeAlreadyEnrolled  = "already_enrolled"
	ErrorCodeAlreadyExists    = "already_exists"
	ErrorCodeInvalidCode      = "invalid_code"
	ErrorCodeRateLimited      = "rate_limit_exceeded"
	ErrorCodeServerError      = "server_error"
	ErrorCodeMethodNotAllowed = "method_not_allowed"
)

// APIError is the error envelope returned by every endpoint. The server
// writes it with WriteError and the client decodes non-2xx responses into it.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on the error code so callers can compare against the
// predefined values regardless of description.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WriteError writes this error to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	return &APIError{StatusCode: e.StatusCode, Code: e.Code, Description: desc}
}

// NewAPIError creates a custom error.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the service token is missing or invalid",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	// ErrSessionExpired means the login took too long. Start a new session.
	ErrSessionExpired = &APIError{
		StatusCode:  http.StatusGone,
		Code:        ErrorCodeSessionExpired,
		Description: "the verification session has expired",
	}

	// ErrSessionClosed is returned for input on a satisfied or failed session.
	ErrSessionClosed = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeSessionClosed,
		Description: "the verification session is already complete",
	}

	ErrFactorResolved = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeFactorResolved,
		Description: "the factor needs no further input in this session",
	}

	ErrNotInteractive = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeNotInteractive,
		Description: "the factor does not accept user input",
	}

	ErrNotEnrolled = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeNotEnrolled,
		Description: "the user is not enrolled in this factor",
	}

	ErrAlreadyEnrolled = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadyEnrolled,
		Description: "the user is already enrolled in this factor",
	}

	ErrAlreadyExists = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadyExists,
		Description: "resource already exists",
	}

	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "the code is invalid",
	}

	// ErrRateLimited is returned both by the HTTP rate limiter and when the
	// per-user code send limit is exhausted.
	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimited,
		Description: "too many requests",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
