package client

import (
	"strings"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/logger"
)

// Target is the endpoint a composed builder gets bound to.
type Target struct {
	// TypeName is the client interface the target belongs to.
	TypeName string

	// Name is the logical service name.
	Name string

	// URL is the fully resolved base URL, path prefix included.
	URL string
}

// Targeter materializes the proxy from a composed builder and target.
type Targeter interface {
	Target(f *Factory, b *Builder, reg *Registry, t Target) (any, error)
}

// Target composes the builder, decides the endpoint mode and materializes
// the proxy. Called once per client by the container's lazy registration.
// With a fallback declared, any materialization failure yields the fallback
// instance instead of an error.
func (f *Factory) Target() (any, error) {
	proxy, err := f.target()
	if err != nil && f.hasFallback() {
		f.log.Warn("falling back after failed materialization", logger.Fields(
			logger.FieldError, err.Error(),
			logger.FieldClient, f.ContextID))
		return f.fallbackInstance(err), nil
	}
	return proxy, err
}

func (f *Factory) target() (any, error) {
	b, err := f.compose()
	if err != nil {
		return nil, err
	}

	var t Target
	if f.URL == "" {
		// Load-balanced mode: the service name stands in for the host and a
		// load-balancing transport must resolve it per request. Without a
		// name there is no host to build.
		if f.Name == "" {
			return nil, errors.MissingServiceName(f.TypeName)
		}
		url := f.Name
		if !strings.HasPrefix(url, "http") {
			url = "http://" + url
		}
		t = Target{TypeName: f.TypeName, Name: f.Name, URL: url + f.Path}

		transport, ok := instanceAs[Transport](f.registry, f.ContextID, KindTransport, f.inherit)
		if !ok {
			return nil, errors.NoTransport(f.ContextID)
		}
		lb, ok := transport.(LoadBalanced)
		if !ok {
			return nil, errors.NoTransport(f.ContextID)
		}
		b.Transport = lb
	} else {
		// Fixed-URL mode: a registered load-balancing transport is unwrapped
		// down to its delegate so the pinned endpoint is hit directly.
		url := f.URL
		if !strings.HasPrefix(url, "http") {
			url = "http://" + url
		}
		t = Target{TypeName: f.TypeName, Name: f.Name, URL: url + f.Path}

		if transport, ok := instanceAs[Transport](f.registry, f.ContextID, KindTransport, f.inherit); ok {
			if lb, isLB := transport.(LoadBalanced); isLB {
				transport = lb.Unwrap()
			}
			b.Transport = transport
		} else {
			b.Transport = newHTTPTransport(b.Options)
		}
	}

	targeter, ok := instanceAs[Targeter](f.registry, f.ContextID, KindTargeter, f.inherit)
	if !ok {
		targeter = DefaultTargeter{}
	}
	if f.hasFallback() {
		targeter = FallbackTargeter{Next: targeter}
	}

	proxy, err := targeter.Target(f, b, f.registry, t)
	if err != nil {
		return nil, err
	}
	f.log.Info("client materialized", logger.Fields(
		logger.FieldClient, f.ContextID,
		logger.FieldURL, t.URL,
		"type", f.TypeName,
	))
	return proxy, nil
}

func (f *Factory) hasFallback() bool {
	return f.Fallback != nil || f.FallbackFactory != nil
}

func (f *Factory) fallbackInstance(cause error) any {
	if f.FallbackFactory != nil {
		return f.FallbackFactory(cause)
	}
	return newFallbackInstance(f.Fallback, f.Type)
}

// DefaultTargeter builds the HTTP call engine and wraps it in the declared
// proxy builder.
type DefaultTargeter struct{}

func (DefaultTargeter) Target(f *Factory, b *Builder, _ *Registry, t Target) (any, error) {
	caller := newHTTPCaller(b, t)
	if f.Build != nil {
		return f.Build(caller), nil
	}
	return caller, nil
}

// FallbackTargeter decorates another targeter with per-call failover: when
// the declared fallback can itself handle calls, every failed call retries
// against it. A fallback that only implements the client interface serves
// materialization failures, handled by the factory, not per-call failover.
type FallbackTargeter struct {
	Next Targeter
}

func (ft FallbackTargeter) Target(f *Factory, b *Builder, reg *Registry, t Target) (any, error) {
	// Defer the proxy build so the failover wrap happens at the Caller
	// level, underneath the typed proxy.
	inner := *f
	inner.Build = nil
	proxy, err := ft.Next.Target(&inner, b, reg, t)
	if err != nil {
		return nil, err
	}

	if primary, ok := proxy.(Caller); ok {
		if fb, ok := f.fallbackInstance(nil).(Caller); ok {
			proxy = &fallbackCaller{primary: primary, fallback: fb, log: b.Logger}
		}
	}
	if f.Build != nil {
		if c, ok := proxy.(Caller); ok {
			return f.Build(c), nil
		}
	}
	return proxy, nil
}
