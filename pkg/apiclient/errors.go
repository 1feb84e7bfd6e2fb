package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call so every consumer can handle errors uniformly.
type Kind int

const (
	// KindUnknown is any error that did not come from this package.
	KindUnknown Kind = iota
	// KindNetwork is a connectivity failure: the request never produced a response.
	KindNetwork
	// KindHTTP is a non-2xx response carrying the server's message.
	KindHTTP
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode
	// KindValidation is a request rejected on the client before it was sent.
	KindValidation
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Method  string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	case KindValidation:
		return fmt.Sprintf("validation failed: %s", e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Kind, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether a manual retry could plausibly succeed.
// The client itself never retries.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork:
		return true
	case KindHTTP:
		return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
	default:
		return false
	}
}

// ValidationError builds a client-side validation failure.
func ValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsStatus reports whether err is an HTTP error with the given status.
func IsStatus(err error, status int) bool {
	return KindOf(err) == KindHTTP && StatusOf(err) == status
}

// IsRetryable reports whether err is an *Error that may succeed on a manual retry.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}
