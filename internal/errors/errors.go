// Package errors provides custom error types for the Gemini generative-language client.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoContent       = errors.New("no content in response")
	ErrRemote          = errors.New("remote error")
)

// Kind groups failures of a generate call for logging. The user always sees
// the same failure text whatever the kind.
type Kind string

const (
	KindNone              Kind = ""
	KindTransport         Kind = "transport"
	KindHTTPStatus        Kind = "http_status"
	KindMalformedResponse Kind = "malformed_response"
	KindRemoteError       Kind = "remote_error"
	KindCanceled          Kind = "canceled"
	KindUnknown           Kind = "unknown"
)

// NetworkError represents a request that never completed
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// APIError represents a non-success HTTP status
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string // truncated response body, for diagnostics only
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError carrying the response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	e := NewAPIError(statusCode, endpoint, message)
	e.Body = body
	return e
}

// RemoteError is the structured error object the API returns instead of candidates:
// {"error": {"code": 400, "message": "...", "status": "INVALID_ARGUMENT"}}
type RemoteError struct {
	HTTPStatus int
	Code       int
	Message    string
	Status     string
}

func (e *RemoteError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}

// Is allows comparison with the ErrRemote sentinel
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// NewRemoteError creates a new RemoteError
func NewRemoteError(httpStatus, code int, message, status string) *RemoteError {
	return &RemoteError{HTTPStatus: httpStatus, Code: code, Message: message, Status: status}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response body that lacks the expected shape
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error: %s (path %s)", e.Message, e.Path)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether err is a timeout
func IsTimeoutError(err error) bool {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsParseError reports whether err is a malformed response
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsRemoteError reports whether err is an explicit API error payload
func IsRemoteError(err error) bool {
	return errors.Is(err, ErrRemote)
}

// GetHTTPStatus extracts the HTTP status from err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.HTTPStatus
	}
	return 0
}

// GetEndpoint extracts the endpoint from err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody extracts the diagnostic response body from err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// GetRemoteMessage extracts error.message from an API error payload, or ""
func GetRemoteMessage(err error) string {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}
	return ""
}

// Classify maps err onto the failure taxonomy used in logs.
// Cancellation is checked first: a canceled request also surfaces as a NetworkError.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case IsRemoteError(err):
		return KindRemoteError
	case GetHTTPStatus(err) > 0:
		return KindHTTPStatus
	case IsParseError(err):
		return KindMalformedResponse
	case IsNetworkError(err), IsTimeoutError(err):
		return KindTransport
	default:
		return KindUnknown
	}
}
