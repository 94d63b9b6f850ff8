package errors

import (
	"errors"
	"fmt"
)

// Error is the structured clientkit error type.
type Error struct {
	// Code is a machine-readable error code.
	Code Code
	// Message is a human-readable error message.
	Message string
	// Retryable indicates if the operation can be retried.
	Retryable bool
	// StatusCode is the HTTP status code (0 for non-HTTP errors).
	StatusCode int
	// Body is the original response body (may be nil).
	Body []byte
	// Details contains additional context for the error.
	Details map[string]any
	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("clientkit: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("clientkit: %s: %s: %v", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("clientkit: %s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with automatic retryable detection.
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// --- Registration-time constructors ---

// InvalidDeclaration creates an error for a malformed client declaration.
func InvalidDeclaration(message string) *Error {
	return New(CodeInvalidDeclaration, message)
}

// MissingIdentity creates an error for a declaration with no usable name.
func MissingIdentity(typeName string) *Error {
	return Newf(CodeMissingIdentity, "either name, value, serviceId or contextId must be provided for %s", typeName).
		WithDetail("type", typeName)
}

// MissingServiceName creates an error for a client that has no fixed URL and
// no service name to load-balance against.
func MissingServiceName(typeName string) *Error {
	return Newf(CodeMissingIdentity, "name must be set when no url is provided for %s", typeName).
		WithDetail("type", typeName)
}

// InvalidIdentity creates an error for a name that is not a legal hostname.
func InvalidIdentity(name string) *Error {
	return Newf(CodeInvalidIdentity, "service id not legal hostname (%s)", name).
		WithDetail("name", name)
}

// MalformedURL creates an error for a URL that failed to parse.
func MalformedURL(url string, cause error) *Error {
	return Newf(CodeMalformedURL, "%s is malformed", url).
		WithDetail("url", url).
		WithCause(cause)
}

// DuplicateRegistration creates an error for a container key conflict.
func DuplicateRegistration(key string) *Error {
	return Newf(CodeDuplicateRegistration, "key %q is already registered", key).
		WithDetail("key", key)
}

// --- Resolution-time constructors ---

// MissingDependency creates an error for an absent mandatory component.
func MissingDependency(kind, contextID string) *Error {
	return Newf(CodeMissingDependency, "no %s component found for context %q", kind, contextID).
		WithDetail("kind", kind).
		WithDetail("context_id", contextID)
}

// NoTransport creates an error for a missing load-balancing transport.
func NoTransport(contextID string) *Error {
	return Newf(CodeNoTransport, "no load-balancing transport available for context %q", contextID).
		WithDetail("context_id", contextID)
}

// UnresolvableType creates an error for a profile component reference that
// could not be obtained or constructed.
func UnresolvableType(kind, name string) *Error {
	return Newf(CodeUnresolvableType, "cannot resolve %s component %q: not registered and no constructor known", kind, name).
		WithDetail("kind", kind).
		WithDetail("name", name)
}

// NotRegistered creates an error for an unknown container key.
func NotRegistered(key string) *Error {
	return Newf(CodeNotRegistered, "component not registered: %s", key).
		WithDetail("key", key)
}

// --- Call-time constructors ---

// Timeout creates a timeout error.
func Timeout(cause error) *Error {
	return New(CodeTimeout, "request timed out").WithCause(cause)
}

// Connection creates a connection error.
func Connection(cause error) *Error {
	return New(CodeConnection, "connection failed").WithCause(cause)
}

// Decode creates an error for an undecodable response body.
func Decode(cause error) *Error {
	return New(CodeDecode, "decode response").WithCause(cause)
}

// ClassifyStatus converts an HTTP status code into a typed error.
// Returns nil for 2xx status codes.
func ClassifyStatus(statusCode int, body []byte) *Error {
	statusError := func(code Code) *Error {
		e := Newf(code, "HTTP %d", statusCode)
		e.StatusCode = statusCode
		e.Body = body
		return e
	}
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == 401 || statusCode == 403:
		return statusError(CodeAuth)
	case statusCode == 404:
		return statusError(CodeNotFound)
	case statusCode == 429:
		return statusError(CodeRateLimited)
	case statusCode >= 400 && statusCode < 500:
		return statusError(CodeValidation)
	default:
		return statusError(CodeServer)
	}
}

// --- Inspection helpers ---

// IsCode checks whether err is an *Error carrying the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsRetryable checks whether err is an *Error marked retryable.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

// IsNotFound checks whether err is a not-found error.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsTimeout checks whether err is a timeout error.
func IsTimeout(err error) bool {
	return IsCode(err, CodeTimeout)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
