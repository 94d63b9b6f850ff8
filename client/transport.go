package client

import (
	"net"
	"net/http"
	"time"

	"github.com/kbukum/clientkit/discovery"
	"github.com/kbukum/clientkit/errors"
)

// Transport executes one HTTP exchange. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// LoadBalanced marks a transport that resolves logical service names to
// concrete endpoints per request. Unwrap exposes the direct delegate used
// for fixed-URL clients.
type LoadBalanced interface {
	Transport
	Unwrap() Transport
}

// LoadBalancedTransport resolves the request host as a service name through
// a discovery selector, rewrites the URL to the chosen instance and hands
// the request to its delegate.
type LoadBalancedTransport struct {
	selector *discovery.Selector
	delegate Transport
}

// NewLoadBalancedTransport wraps a delegate transport with discovery-based
// host resolution. A nil delegate gets a default direct transport.
func NewLoadBalancedTransport(selector *discovery.Selector, delegate Transport) *LoadBalancedTransport {
	if delegate == nil {
		delegate = newHTTPTransport(Options{})
	}
	return &LoadBalancedTransport{selector: selector, delegate: delegate}
}

// Do resolves and rewrites the target host, then delegates.
func (t *LoadBalancedTransport) Do(req *http.Request) (*http.Response, error) {
	serviceName := req.URL.Hostname()
	instance, err := t.selector.Select(req.Context(), serviceName)
	if err != nil {
		return nil, errors.Connection(err).WithDetail("service", serviceName)
	}
	req.URL.Host = instance.HostPort()
	req.Host = instance.HostPort()
	return t.delegate.Do(req)
}

// Unwrap returns the direct delegate.
func (t *LoadBalancedTransport) Unwrap() Transport { return t.delegate }

// newHTTPTransport builds the default direct transport for a client. The
// connect timeout maps to the dialer; the read timeout is enforced per
// attempt by the call engine.
func newHTTPTransport(opts Options) *http.Client {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	dialer := &net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
