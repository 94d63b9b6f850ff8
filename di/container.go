package di

import (
	"sync"

	"github.com/kbukum/clientkit/errors"
)

// RegistrationMode determines how a registration is resolved.
type RegistrationMode int

const (
	// Lazy registrations construct their instance on first Resolve.
	Lazy RegistrationMode = iota
	// Singleton registrations hold a pre-created instance.
	Singleton
	// Alias registrations forward resolution to another key.
	Alias
)

// Constructor produces the instance for a lazy registration.
type Constructor func() (any, error)

// Container is the name-keyed dependency container.
type Container interface {
	// RegisterLazy registers a constructor run on first resolution.
	RegisterLazy(key string, ctor Constructor, opts ...Option) error
	// RegisterSingleton registers a pre-created instance.
	RegisterSingleton(key string, instance any) error
	// RegisterAlias registers an alternative key forwarding to target.
	RegisterAlias(alias, target string) error
	// Resolve returns the instance for key, constructing it if needed.
	Resolve(key string) (any, error)
	// Registrations describes all registered keys for introspection.
	Registrations() []RegistrationInfo
	// Close closes all initialized instances that implement io.Closer.
	Close() error
}

// RegistrationInfo describes a registered key for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Primary     bool
	Initialized bool
}

// Option configures a lazy registration.
type Option func(*registration)

// WithPrimary marks the registration as the preferred one among several
// implementing the same declared type.
func WithPrimary() Option {
	return func(r *registration) { r.primary = true }
}

type registration struct {
	key     string
	mode    RegistrationMode
	ctor    Constructor
	target  string // alias target
	primary bool

	mu          sync.Mutex
	instance    any
	initialized bool
}

type container struct {
	mu      sync.RWMutex
	entries map[string]*registration
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*registration)}
}

func (c *container) register(r *registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[r.key]; exists {
		return errors.DuplicateRegistration(r.key)
	}
	c.entries[r.key] = r
	return nil
}

// RegisterLazy registers a constructor run on first resolution.
func (c *container) RegisterLazy(key string, ctor Constructor, opts ...Option) error {
	r := &registration{key: key, mode: Lazy, ctor: ctor}
	for _, opt := range opts {
		opt(r)
	}
	return c.register(r)
}

// RegisterSingleton registers a pre-created instance.
func (c *container) RegisterSingleton(key string, instance any) error {
	return c.register(&registration{
		key:         key,
		mode:        Singleton,
		instance:    instance,
		initialized: true,
	})
}

// RegisterAlias registers an alternative key forwarding to target.
func (c *container) RegisterAlias(alias, target string) error {
	return c.register(&registration{key: alias, mode: Alias, target: target})
}

// Resolve returns the instance for key, constructing it if needed.
// Aliases are followed; cycles surface as a not-registered error because an
// alias may only point at a concrete registration.
func (c *container) Resolve(key string) (any, error) {
	c.mu.RLock()
	r, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, errors.NotRegistered(key)
	}

	if r.mode == Alias {
		c.mu.RLock()
		t, ok := c.entries[r.target]
		c.mu.RUnlock()
		if !ok || t.mode == Alias {
			return nil, errors.NotRegistered(r.target)
		}
		r = t
	}

	if r.mode == Singleton {
		return r.instance, nil
	}
	return r.resolveLazy()
}

// resolveLazy constructs the instance under a per-key lock so concurrent
// first access performs exactly one construction. A failed construction
// leaves the registration uninitialized; the next Resolve tries again.
func (r *registration) resolveLazy() (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return r.instance, nil
	}

	instance, err := r.ctor()
	if err != nil {
		return nil, err
	}

	r.instance = instance
	r.initialized = true
	return instance, nil
}

// Registrations describes all registered keys for introspection.
func (c *container) Registrations() []RegistrationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.entries))
	for key, r := range c.entries {
		r.mu.Lock()
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        r.mode,
			Primary:     r.primary,
			Initialized: r.initialized,
		})
		r.mu.Unlock()
	}
	return result
}

// Close closes all initialized instances that implement io.Closer.
func (c *container) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.entries {
		r.mu.Lock()
		if r.initialized {
			if closer, ok := r.instance.(interface{ Close() error }); ok {
				_ = closer.Close()
			}
		}
		r.mu.Unlock()
	}
	return nil
}
