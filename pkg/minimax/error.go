package minimax

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure surfaced by this package.
type ErrorKind int

const (
	// KindUnknown is any error not produced by this package.
	KindUnknown ErrorKind = iota

	// KindValidation is malformed or out-of-range caller input, detected
	// before any network call.
	KindValidation

	// KindTransport is a network failure, timeout, or unparseable response.
	KindTransport

	// KindAPI is a non-zero status code in the response envelope.
	KindAPI

	// KindDecode is a malformed hex/base64 payload.
	KindDecode

	// KindTaskFailed is an async task that reached the failed state.
	KindTaskFailed

	// KindTimeout is a poll that exhausted its maximum wait.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	case KindDecode:
		return "decode"
	case KindTaskFailed:
		return "task_failed"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Known API status codes.
const (
	CodeRateLimit           = 1002
	CodeAuthFailed          = 1004
	CodeInsufficientBalance = 1008
	CodeSensitiveContent    = 1026
	CodeInvalidParams       = 2013
	CodeInvalidAPIKey       = 2049
)

var knownMessages = map[int]string{
	CodeRateLimit:           "Rate limit exceeded, please try again later",
	CodeAuthFailed:          "Authentication failed, please check your API key",
	CodeInsufficientBalance: "Insufficient account balance",
	CodeSensitiveContent:    "Video description contains sensitive content, please adjust",
	CodeInvalidParams:       "Invalid parameters, please check your input",
	CodeInvalidAPIKey:       "Invalid API key, please check your API key",
}

const hailuoAccessMessage = "Your API key/account does not have access to MiniMax-Hailuo-02 model. " +
	"Please check your account permissions or contact MiniMax support to enable access to the 02 series models."

// Error represents a MiniMax API business error: the response envelope
// carried a non-zero status code.
type Error struct {
	// StatusCode is the API error code.
	StatusCode int `json:"status_code"`

	// StatusMsg is the error message returned by the API.
	StatusMsg string `json:"status_msg"`

	// TraceID is the request trace ID for debugging.
	TraceID string `json:"trace_id"`

	// HTTPStatus is the HTTP status code.
	HTTPStatus int `json:"-"`
}

// Error returns the friendly message for known codes, or
// "API Error <code>: <msg>" otherwise.
func (e *Error) Error() string {
	return MessageFor(e.StatusCode, e.StatusMsg)
}

// MessageFor maps a status code and message to the text shown to users.
func MessageFor(code int, msg string) string {
	if code == CodeInvalidParams && strings.Contains(msg, "group_id can not access video 02") {
		return hailuoAccessMessage
	}
	if m, ok := knownMessages[code]; ok {
		return m
	}
	return fmt.Sprintf("API Error %d: %s", code, msg)
}

// IsRateLimit returns true if this is a rate limit error.
func (e *Error) IsRateLimit() bool {
	return e.StatusCode == CodeRateLimit || e.HTTPStatus == 429
}

// IsInvalidAPIKey returns true if the key was rejected.
func (e *Error) IsInvalidAPIKey() bool {
	return e.StatusCode == CodeInvalidAPIKey || e.StatusCode == CodeAuthFailed || e.HTTPStatus == 401
}

// IsInsufficientBalance returns true if the account is out of credit.
func (e *Error) IsInsufficientBalance() bool {
	return e.StatusCode == CodeInsufficientBalance
}

// IsInvalidRequest returns true if this is an invalid request error.
func (e *Error) IsInvalidRequest() bool {
	return e.StatusCode >= 2000 && e.StatusCode < 3000
}

// TransportError is a failure to obtain a usable response: the request
// never completed, the server answered non-2xx without an envelope, or the
// body was not JSON.
type TransportError struct {
	Method     string
	Endpoint   string
	HTTPStatus int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.HTTPStatus != 0:
		return fmt.Sprintf("minimax: %s %s: HTTP %d: %v", e.Method, e.Endpoint, e.HTTPStatus, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("minimax: %s %s: %v", e.Method, e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("minimax: %s %s: HTTP %d: %s", e.Method, e.Endpoint, e.HTTPStatus, e.Body)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports caller input rejected before any request was sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DecodeError reports a payload that could not be decoded.
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s payload: %v", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TaskFailedError reports an async task that reached a failed state.
type TaskFailedError struct {
	TaskID string
	Status TaskStatus
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %s failed with status %s", e.TaskID, e.Status)
}

// TimeoutError reports a task that did not finish within the maximum wait.
type TimeoutError struct {
	TaskID     string
	LastStatus TaskStatus
	Waited     string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s did not finish within %s (last status %s)", e.TaskID, e.Waited, e.LastStatus)
}

// AsError extracts *Error from an error.
//
// Example:
//
//	if e, ok := minimax.AsError(err); ok {
//	    if e.IsRateLimit() {
//	        // Handle rate limiting
//	    }
//	}
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf classifies err into one of the error kinds.
func KindOf(err error) ErrorKind {
	var (
		apiErr       *Error
		transportErr *TransportError
		validErr     *ValidationError
		decodeErr    *DecodeError
		failedErr    *TaskFailedError
		timeoutErr   *TimeoutError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &validErr):
		return KindValidation
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &failedErr):
		return KindTaskFailed
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}
