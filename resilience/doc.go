// Package resilience provides the retry policy engine used by clientkit.
//
// A *RetryConfig value is the retry-policy component: it can be registered
// in a client's configuration scope or referenced by name from an external
// profile, and the call engine wraps each outgoing request in Retry with it.
//
// # Usage
//
//	cfg := resilience.DefaultRetryConfig()
//	cfg.MaxAttempts = 5
//	result, err := resilience.Retry(ctx, cfg, func() (*Response, error) { ... })
package resilience
