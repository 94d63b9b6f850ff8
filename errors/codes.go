package errors

// Code is a machine-readable error code.
type Code string

// Registration-time codes, raised while scanning declarations.
const (
	// CodeInvalidDeclaration indicates a client declared on a non-interface
	// type, or with a malformed fallback configuration.
	CodeInvalidDeclaration Code = "INVALID_DECLARATION"
	// CodeMissingIdentity indicates a declaration with no usable name-like
	// attribute.
	CodeMissingIdentity Code = "MISSING_IDENTITY"
	// CodeInvalidIdentity indicates a name that does not parse as a hostname.
	CodeInvalidIdentity Code = "INVALID_IDENTITY"
	// CodeMalformedURL indicates a declared URL that failed to parse.
	CodeMalformedURL Code = "MALFORMED_URL"
	// CodeDuplicateRegistration indicates two declarations resolved to the
	// same container key or alias.
	CodeDuplicateRegistration Code = "DUPLICATE_REGISTRATION"
)

// Resolution-time codes, raised on first use of a client.
const (
	// CodeMissingDependency indicates a mandatory builder component was not
	// found in any reachable scope.
	CodeMissingDependency Code = "MISSING_DEPENDENCY"
	// CodeNoTransport indicates a load-balancing transport is required but
	// none is registered.
	CodeNoTransport Code = "NO_TRANSPORT"
	// CodeUnresolvableType indicates a profile-referenced component could not
	// be obtained from any registry or constructed.
	CodeUnresolvableType Code = "UNRESOLVABLE_TYPE"
	// CodeNotRegistered indicates a container key with no registration.
	CodeNotRegistered Code = "NOT_REGISTERED"
)

// Call-time codes, raised by the default error decoder and transports.
const (
	// CodeTimeout indicates a request or connection timeout.
	CodeTimeout Code = "TIMEOUT"
	// CodeConnection indicates a connection-level failure (refused, DNS).
	CodeConnection Code = "CONNECTION"
	// CodeAuth indicates an authentication or authorization failure (401/403).
	CodeAuth Code = "AUTH"
	// CodeNotFound indicates the resource was not found (404).
	CodeNotFound Code = "NOT_FOUND"
	// CodeRateLimited indicates rate limiting (429).
	CodeRateLimited Code = "RATE_LIMITED"
	// CodeValidation indicates a client-side error response (other 4xx).
	CodeValidation Code = "VALIDATION"
	// CodeServer indicates a server-side error (5xx).
	CodeServer Code = "SERVER"
	// CodeDecode indicates a response body that failed to decode.
	CodeDecode Code = "DECODE"
)

var retryableCodes = map[Code]bool{
	CodeTimeout:     true,
	CodeConnection:  true,
	CodeRateLimited: true,
	CodeServer:      true,
}

// IsRetryableCode reports whether operations failing with the code may be
// retried.
func IsRetryableCode(code Code) bool {
	return retryableCodes[code]
}
