// Package errors provides centralized error definitions and error handling utilities
// for taskfetch. It defines the transport error taxonomy surfaced by the network
// layer, the static mapping from error kind to user-visible message, and
// classification helpers used by the retry policy and the orchestrator.
//
// # Error Kinds
//
// Every failure of a network call is reported as a *TransportError carrying
// one Kind from a closed set:
//   - KindInvalidURL: the endpoint URL could not be parsed (never retried)
//   - KindDecoding: the response body did not match the expected JSON shape
//   - KindInvalidResponseCode: HTTP status outside [200,300)
//   - KindNoInternetConnection: the host could not be reached
//   - KindTimeout: the request exceeded its deadline
//   - KindGeneric: any other transport failure
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewInvalidResponseCode(503).WithEndpoint("nextpath")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrTimeout) { ... }
//
//	var te *errors.TransportError
//	if errors.As(err, &te) && te.Kind == errors.KindDecoding { ... }
//
// Rendering errors for the presentation layer:
//
//	state.Error = errors.UserMessage(err)
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Transport sentinel errors. A *TransportError matches the sentinel of its kind
// through errors.Is.
var (
	// ErrInvalidURL indicates that the endpoint URL is malformed.
	ErrInvalidURL = New("invalid url")
	// ErrDecoding indicates that the response body could not be decoded.
	ErrDecoding = New("decoding failed")
	// ErrInvalidResponseCode indicates a non-2xx HTTP status.
	ErrInvalidResponseCode = New("invalid response code")
	// ErrNoInternetConnection indicates that the remote host was unreachable.
	ErrNoInternetConnection = New("no internet connection")
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrGeneric indicates any other transport failure.
	ErrGeneric = New("transport failure")
)

// Storage sentinel errors
var (
	// ErrStoreCorrupted indicates that the persisted record could not be parsed.
	ErrStoreCorrupted = New("stored data corrupted")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// TaskfetchError is the base interface for classified taskfetch errors.
type TaskfetchError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the operation may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Transport Errors
// -----------------------------------------------------------------------------

// Kind identifies the class of a transport failure.
type Kind int

const (
	// KindGeneric is any transport failure not covered by another kind.
	KindGeneric Kind = iota
	// KindInvalidURL means the endpoint URL could not be parsed.
	KindInvalidURL
	// KindDecoding means the body did not decode into the expected shape.
	KindDecoding
	// KindInvalidResponseCode means the HTTP status was outside [200,300).
	KindInvalidResponseCode
	// KindNoInternetConnection means the remote host was unreachable.
	KindNoInternetConnection
	// KindTimeout means the request exceeded its deadline.
	KindTimeout
)

// String returns a short identifier suitable for logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindDecoding:
		return "decoding_error"
	case KindInvalidResponseCode:
		return "invalid_response_code"
	case KindNoInternetConnection:
		return "no_internet_connection"
	case KindTimeout:
		return "timeout"
	default:
		return "generic"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidURL:
		return ErrInvalidURL
	case KindDecoding:
		return ErrDecoding
	case KindInvalidResponseCode:
		return ErrInvalidResponseCode
	case KindNoInternetConnection:
		return ErrNoInternetConnection
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrGeneric
	}
}

// TransportError is the single error type produced by the network layer.
//
// Example:
//
//	err := errors.NewInvalidResponseCode(404).WithEndpoint("responsecode")
//	fmt.Println(err) // "transport error [endpoint=responsecode]: Received invalid response code: 404."
type TransportError struct {
	Kind Kind
	// StatusCode is set for KindInvalidResponseCode.
	StatusCode int
	// Message is the caller-supplied text for KindGeneric.
	Message string
	// Endpoint is the debug name of the endpoint that failed.
	Endpoint string

	cause error
}

// NewTransportError creates a TransportError of the given kind.
func NewTransportError(kind Kind, cause error) *TransportError {
	return &TransportError{Kind: kind, cause: cause}
}

// NewInvalidURL creates a KindInvalidURL error.
func NewInvalidURL(cause error) *TransportError {
	return NewTransportError(KindInvalidURL, cause)
}

// NewDecodingError creates a KindDecoding error.
func NewDecodingError(cause error) *TransportError {
	return NewTransportError(KindDecoding, cause)
}

// NewInvalidResponseCode creates a KindInvalidResponseCode error for status code.
func NewInvalidResponseCode(code int) *TransportError {
	return &TransportError{Kind: KindInvalidResponseCode, StatusCode: code}
}

// NewNoInternetConnection creates a KindNoInternetConnection error.
func NewNoInternetConnection(cause error) *TransportError {
	return NewTransportError(KindNoInternetConnection, cause)
}

// NewTimeout creates a KindTimeout error.
func NewTimeout(cause error) *TransportError {
	return NewTransportError(KindTimeout, cause)
}

// NewGeneric creates a KindGeneric error whose user message is message.
func NewGeneric(message string, cause error) *TransportError {
	return &TransportError{Kind: KindGeneric, Message: message, cause: cause}
}

// WithEndpoint adds the endpoint name to the error context.
func (e *TransportError) WithEndpoint(name string) *TransportError {
	e.Endpoint = name
	return e
}

// Error returns the formatted error message.
func (e *TransportError) Error() string {
	prefix := "transport error"
	if e.Endpoint != "" {
		prefix = fmt.Sprintf("transport error [endpoint=%s]", e.Endpoint)
	}
	if e.cause != nil && e.Kind != KindGeneric {
		return fmt.Sprintf("%s: %s: %v", prefix, KindMessage(e.Kind, e.StatusCode, e.Message), e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, KindMessage(e.Kind, e.StatusCode, e.Message))
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.cause
}

// Is matches any *TransportError and the sentinel of the error's kind.
func (e *TransportError) Is(target error) bool {
	if _, ok := target.(*TransportError); ok {
		return true
	}
	return target == e.Kind.sentinel()
}

// Severity returns the error severity. Connectivity problems are warnings,
// everything else is an error.
func (e *TransportError) Severity() Severity {
	switch e.Kind {
	case KindNoInternetConnection, KindTimeout:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// IsRetryable reports whether repeating the request could change the outcome.
// A malformed URL is the only kind that cannot.
func (e *TransportError) IsRetryable() bool {
	return e.Kind != KindInvalidURL
}

// IsUserFacing returns true; every transport error renders to a message.
func (e *TransportError) IsUserFacing() bool {
	return true
}

// UserMessage returns the human readable text for this error.
func (e *TransportError) UserMessage() string {
	return KindMessage(e.Kind, e.StatusCode, e.Message)
}

// KindMessage is the static mapping from error kind to user-visible text.
// code is only used by KindInvalidResponseCode, message only by KindGeneric.
func KindMessage(kind Kind, code int, message string) string {
	switch kind {
	case KindInvalidURL:
		return "Invalid URL. Unable to proceed with the request."
	case KindDecoding:
		return "Failed to decode the response. Data format might be incorrect."
	case KindInvalidResponseCode:
		return fmt.Sprintf("Received invalid response code: %d.", code)
	case KindNoInternetConnection:
		return "No internet connection. Please check your network settings."
	case KindTimeout:
		return "Request timed out. The server took too long to respond."
	default:
		return message
	}
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// UserMessage renders any error for display. Transport errors use the kind
// mapping; other errors fall back to their Error() text. A nil error renders
// as the empty string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var te *TransportError
	if As(err, &te) {
		if msg := te.UserMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

// KindOf returns the kind of the first TransportError in err's chain, and
// false if there is none.
func KindOf(err error) (Kind, bool) {
	var te *TransportError
	if As(err, &te) {
		return te.Kind, true
	}
	return KindGeneric, false
}

// IsRetryable returns true if the error represents a condition that may
// succeed on retry. Errors that don't implement TaskfetchError are only
// retryable when they wrap ErrTimeout.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var tfErr TaskfetchError
	if As(err, &tfErr) {
		return tfErr.IsRetryable()
	}

	return Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var tfErr TaskfetchError
	if As(err, &tfErr) {
		return tfErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement TaskfetchError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var tfErr TaskfetchError
	if As(err, &tfErr) {
		return tfErr.Severity()
	}

	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
