package client

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Built-in interceptors. Each is registered as a named component so
// profiles can reference it by name.

const (
	InterceptorRequestID = "request-id"
	InterceptorTracing   = "tracing"
	InterceptorUserAgent = "user-agent"
)

func init() {
	RegisterComponent(KindInterceptor, InterceptorRequestID, func() any { return RequestID() })
	RegisterComponent(KindInterceptor, InterceptorTracing, func() any { return Tracing() })
}

// RequestID stamps X-Request-ID with a fresh UUID unless the caller already
// set one.
func RequestID() Interceptor {
	return InterceptorFunc(func(req *http.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.Header.Set("X-Request-ID", uuid.NewString())
		}
		return nil
	})
}

// BearerAuth sets a static bearer token.
func BearerAuth(token string) Interceptor {
	return InterceptorFunc(func(req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	})
}

// BasicAuth sets basic credentials.
func BasicAuth(username, password string) Interceptor {
	return InterceptorFunc(func(req *http.Request) error {
		req.SetBasicAuth(username, password)
		return nil
	})
}

// UserAgent sets a fixed User-Agent.
func UserAgent(ua string) Interceptor {
	return InterceptorFunc(func(req *http.Request) error {
		req.Header.Set("User-Agent", ua)
		return nil
	})
}

// Tracing injects the active trace context into the outgoing headers using
// the globally configured propagator.
func Tracing() Interceptor {
	return InterceptorFunc(func(req *http.Request) error {
		otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
		return nil
	})
}
