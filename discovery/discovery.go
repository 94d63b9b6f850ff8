package discovery

import (
	"context"
	"errors"
	"fmt"
)

// Common discovery errors.
var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrNoHealthyEndpoints = errors.New("no healthy endpoints found")
)

// Instance represents a discovered service endpoint.
type Instance struct {
	ID      string
	Name    string
	Address string
	Port    int
	Weight  int
	Healthy bool
}

// HostPort returns the instance address in host:port form.
func (i Instance) HostPort() string {
	return fmt.Sprintf("%s:%d", i.Address, i.Port)
}

// Discovery defines the contract for discovering service instances.
type Discovery interface {
	// Discover returns all healthy instances of the named service.
	Discover(ctx context.Context, serviceName string) ([]Instance, error)

	// Close releases any resources held by the discovery backend.
	Close() error
}
