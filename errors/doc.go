// Package errors provides the typed error taxonomy for clientkit.
//
// Registration-time failures (invalid declarations, unusable identities,
// malformed URLs) and resolution-time failures (missing builder components,
// missing transports, unresolvable profile references) are reported as
// *Error values carrying a machine-readable code. Call-time HTTP failures
// are classified into the same type with status-derived codes and a
// retryable flag consumed by the retry policy.
//
// # Usage
//
//	if errors.IsCode(err, errors.CodeNoTransport) {
//	    // no load-balancing transport registered for this client
//	}
package errors
