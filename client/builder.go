package client

import (
	"sort"

	"github.com/kbukum/clientkit/logger"
	"github.com/kbukum/clientkit/resilience"
)

// Builder accumulates the composed configuration of one client. Composition
// fills it from the registry scopes and the external profile in the
// selected precedence order; targeting then binds it to a transport.
type Builder struct {
	Logger   *logger.Logger
	LogLevel LogLevel

	Encoder  Encoder
	Decoder  Decoder
	Contract Contract

	// Retryer is nil when calls should not be retried.
	Retryer *resilience.RetryConfig

	ErrorDecoder ErrorDecoder
	Options      Options
	QueryEncoder QueryEncoder

	Decode404   bool
	Propagation ErrorPropagation

	// Transport is set during targeting, never by configuration sources.
	Transport Transport

	interceptors []namedInterceptor
	seq          int
}

type namedInterceptor struct {
	name string
	in   Interceptor
	seq  int
}

// AddInterceptor appends a named interceptor. A repeated name replaces the
// earlier interceptor in place, so configuration layers override rather
// than duplicate.
func (b *Builder) AddInterceptor(name string, in Interceptor) {
	for i := range b.interceptors {
		if b.interceptors[i].name == name {
			b.interceptors[i].in = in
			return
		}
	}
	b.interceptors = append(b.interceptors, namedInterceptor{name: name, in: in, seq: b.seq})
	b.seq++
}

// Interceptors returns the accumulated interceptors sorted by their Order
// (unordered ones last), ties broken by insertion order.
func (b *Builder) Interceptors() []Interceptor {
	sorted := make([]namedInterceptor, len(b.interceptors))
	copy(sorted, b.interceptors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return interceptorOrder(sorted[i].in) < interceptorOrder(sorted[j].in)
	})
	out := make([]Interceptor, len(sorted))
	for i, ni := range sorted {
		out[i] = ni.in
	}
	return out
}

func interceptorOrder(in Interceptor) int {
	if o, ok := in.(Ordered); ok {
		return o.Order()
	}
	return 0
}
