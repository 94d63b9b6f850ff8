package client

import (
	"reflect"

	"github.com/kbukum/clientkit/errors"
)

// ProxyBuilder constructs the typed client proxy around a Caller. The
// returned value must implement the declared interface type.
type ProxyBuilder func(c Caller) any

// FallbackFactory constructs a fallback instance from the error that made
// the primary client unavailable.
type FallbackFactory func(cause error) any

// Declaration describes one remote service client before any resolution
// happens. Only metadata is captured here; nothing is constructed until
// the client is first resolved from the container.
type Declaration struct {
	// Type is the declared client interface.
	Type reflect.Type

	// Name, Value, ServiceID and ContextID feed identity resolution. See
	// resolveContextID and resolveClientName for the precedence orders.
	Name      string
	Value     string
	ServiceID string
	ContextID string

	// URL pins the client to a fixed endpoint; empty selects the
	// load-balanced path. Values starting with #{ pass through unresolved.
	URL string

	// Path is a prefix applied to every request of this client.
	Path string

	// Qualifier overrides the alias the proxy is registered under.
	// Empty defaults to contextID + "Client".
	Qualifier string

	// Decode404 treats 404 responses as decodable successes.
	Decode404 bool

	// Primary marks the proxy as the preferred candidate for its type.
	Primary bool

	// Fallback is the substitute used when the primary cannot be built or
	// a call fails. Either a ready instance or a reflect.Type of a concrete
	// type that implements Type. Mutually exclusive with FallbackFactory.
	Fallback any

	// FallbackFactory builds the fallback from the triggering error.
	FallbackFactory FallbackFactory

	// Configure contributes this client's scope registrations.
	Configure ScopeFunc

	// Build wraps the composed Caller in the typed proxy. Nil leaves the
	// Caller itself as the resolved value.
	Build ProxyBuilder
}

// TypeName returns the fully qualified name of the declared interface.
func (d Declaration) TypeName() string {
	if d.Type == nil {
		return "<nil>"
	}
	if pkg := d.Type.PkgPath(); pkg != "" {
		return pkg + "." + d.Type.Name()
	}
	return d.Type.String()
}

// PackageName returns the import path of the declared interface.
func (d Declaration) PackageName() string {
	if d.Type == nil {
		return ""
	}
	return d.Type.PkgPath()
}

// Validate checks the structural constraints of the declaration.
func (d Declaration) Validate() error {
	if d.Type == nil {
		return errors.InvalidDeclaration("client declaration requires a type")
	}
	if d.Type.Kind() != reflect.Interface {
		return errors.InvalidDeclaration("client declaration can only be specified on an interface").
			WithDetail("type", d.TypeName())
	}
	if d.Fallback != nil && d.FallbackFactory != nil {
		return errors.InvalidDeclaration("fallback and fallback factory are mutually exclusive").
			WithDetail("type", d.TypeName())
	}
	if d.Fallback != nil {
		if err := validateFallback(d.Fallback, d.Type, d.TypeName()); err != nil {
			return err
		}
	}
	return nil
}

// validateFallback accepts a ready instance or a reflect.Type naming a
// concrete type; either way it must implement the client interface.
func validateFallback(fallback any, iface reflect.Type, typeName string) error {
	if ft, ok := fallback.(reflect.Type); ok {
		if ft.Kind() == reflect.Interface {
			return errors.InvalidDeclaration("fallback type must be a concrete type, not an interface").
				WithDetail("type", typeName).
				WithDetail("fallback", ft.String())
		}
		if !ft.Implements(iface) && !reflect.PointerTo(ft).Implements(iface) {
			return errors.InvalidDeclaration("fallback type does not implement the client interface").
				WithDetail("type", typeName).
				WithDetail("fallback", ft.String())
		}
		return nil
	}
	if !reflect.TypeOf(fallback).Implements(iface) {
		return errors.InvalidDeclaration("fallback instance does not implement the client interface").
			WithDetail("type", typeName).
			WithDetail("fallback", reflect.TypeOf(fallback).String())
	}
	return nil
}

// newFallbackInstance turns the declared fallback into a usable instance.
func newFallbackInstance(fallback any, iface reflect.Type) any {
	ft, ok := fallback.(reflect.Type)
	if !ok {
		return fallback
	}
	if ft.Kind() == reflect.Pointer {
		return reflect.New(ft.Elem()).Interface()
	}
	if ft.Implements(iface) {
		return reflect.New(ft).Elem().Interface()
	}
	return reflect.New(ft).Interface()
}
