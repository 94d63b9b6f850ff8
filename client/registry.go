package client

import (
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/logger"
)

// defaultScopePrefix marks scope functions that contribute to the default
// scope rather than a single client's scope.
const defaultScopePrefix = "default."

// entry is one registered component instance within a scope.
type entry struct {
	name string
	v    any
	seq  int
}

// Scope holds component instances registered for one configuration level,
// either the process-wide defaults or one client's overrides.
type Scope struct {
	mu      sync.RWMutex
	entries map[Kind]map[string]entry
	seq     int
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{entries: make(map[Kind]map[string]entry)}
}

// Register adds a named component instance. Re-registering the same kind
// and name replaces the instance but keeps its original position.
func (s *Scope) Register(kind Kind, name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName := s.entries[kind]
	if byName == nil {
		byName = make(map[string]entry)
		s.entries[kind] = byName
	}
	if prev, ok := byName[name]; ok {
		byName[name] = entry{name: name, v: v, seq: prev.seq}
		return
	}
	byName[name] = entry{name: name, v: v, seq: s.seq}
	s.seq++
}

// Set registers a component under the kind's own name, the idiom for kinds
// that hold a single instance (encoder, decoder, contract, options).
func (s *Scope) Set(kind Kind, v any) {
	s.Register(kind, string(kind), v)
}

// one returns the single instance for a kind. With several names registered
// under one kind, the latest registration wins.
func (s *Scope) one(kind Kind) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byName, ok := s.entries[kind]
	if !ok || len(byName) == 0 {
		return nil, false
	}
	var latest entry
	found := false
	for _, e := range byName {
		if !found || e.seq > latest.seq {
			latest = e
			found = true
		}
	}
	return latest.v, true
}

func (s *Scope) byName(kind Kind, name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[kind][name]
	if !ok {
		return nil, false
	}
	return e.v, true
}

// all returns the kind's entries in registration order.
func (s *Scope) all(kind Kind) []entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byName := s.entries[kind]
	out := make([]entry, 0, len(byName))
	for _, e := range byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// ScopeFunc contributes component registrations to a scope. Declarations
// and default-configuration hooks are both expressed as scope functions,
// applied lazily when a client's scope is first materialized.
type ScopeFunc func(*Scope)

// Registry is the two-level component registry: one default scope shared by
// every client, plus one lazily materialized scope per context id. Lookups
// check the client scope first and fall through to the defaults.
type Registry struct {
	mu       sync.Mutex
	defaults *Scope
	scopes   map[string]*Scope
	funcs    map[string]ScopeFunc
	inherit  bool
}

// NewRegistry creates a registry whose client scopes inherit from the
// default scope.
func NewRegistry() *Registry {
	return &Registry{
		defaults: NewScope(),
		scopes:   make(map[string]*Scope),
		funcs:    make(map[string]ScopeFunc),
		inherit:  true,
	}
}

// SetInheritParentContext sets the registry-wide default for whether client
// scopes see the default scope's components. A per-client KindInheritance
// component overrides the default for that client's composition only.
func (r *Registry) SetInheritParentContext(inherit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inherit = inherit
}

// Defaults returns the default scope for direct registration.
func (r *Registry) Defaults() *Scope { return r.defaults }

// RegisterScopeFunc records a configuration contributor under a name.
// Names with the "default." prefix contribute to every client scope;
// any other name contributes to the scope of that context id only.
// Duplicate names are rejected.
func (r *Registry) RegisterScopeFunc(name string, fn ScopeFunc) error {
	if fn == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funcs[name]; ok {
		return errors.DuplicateRegistration(name)
	}
	r.funcs[name] = fn
	return nil
}

// scope materializes the scope for a context id on first use: all default
// contributors run first in name order, then the client's own contributor.
func (r *Registry) scope(contextID string) *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.scopes[contextID]; ok {
		return s
	}
	s := NewScope()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		if strings.HasPrefix(name, defaultScopePrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		r.funcs[name](s)
	}
	if fn, ok := r.funcs[contextID]; ok {
		fn(s)
	}
	r.scopes[contextID] = s
	return s
}

// Instance returns the single component of a kind visible to a context id,
// preferring the client scope over the defaults.
func (r *Registry) Instance(contextID string, kind Kind) (any, bool) {
	return r.instanceWith(contextID, kind, r.inheriting())
}

// instanceWith is Instance with an explicit inheritance decision, so one
// client's inheritance setting never leaks into another's lookups.
func (r *Registry) instanceWith(contextID string, kind Kind, inherit bool) (any, bool) {
	if v, ok := r.scope(contextID).one(kind); ok {
		return v, true
	}
	if !inherit {
		return nil, false
	}
	return r.defaults.one(kind)
}

// InstanceLocal returns the component only if the client scope itself
// registered it, ignoring the defaults.
func (r *Registry) InstanceLocal(contextID string, kind Kind) (any, bool) {
	return r.scope(contextID).one(kind)
}

// InstanceNamed returns the named component of a kind visible to a context
// id.
func (r *Registry) InstanceNamed(contextID string, kind Kind, name string) (any, bool) {
	return r.instanceNamedWith(contextID, kind, name, r.inheriting())
}

func (r *Registry) instanceNamedWith(contextID string, kind Kind, name string, inherit bool) (any, bool) {
	if v, ok := r.scope(contextID).byName(kind, name); ok {
		return v, true
	}
	if !inherit {
		return nil, false
	}
	return r.defaults.byName(kind, name)
}

// Instances returns every component of a kind visible to a context id:
// default-scope entries not shadowed by the client scope first, then the
// client scope's own, each group in registration order.
func (r *Registry) Instances(contextID string, kind Kind) []NamedComponent {
	return r.instancesWith(contextID, kind, r.inheriting())
}

func (r *Registry) instancesWith(contextID string, kind Kind, inherit bool) []NamedComponent {
	local := r.scope(contextID).all(kind)
	shadowed := make(map[string]bool, len(local))
	for _, e := range local {
		shadowed[e.name] = true
	}

	var out []NamedComponent
	if inherit {
		for _, e := range r.defaults.all(kind) {
			if !shadowed[e.name] {
				out = append(out, NamedComponent{Name: e.name, Value: e.v})
			}
		}
	}
	for _, e := range local {
		out = append(out, NamedComponent{Name: e.name, Value: e.v})
	}
	return out
}

// InstancesLocal returns only the client scope's own components of a kind,
// in registration order.
func (r *Registry) InstancesLocal(contextID string, kind Kind) []NamedComponent {
	local := r.scope(contextID).all(kind)
	out := make([]NamedComponent, 0, len(local))
	for _, e := range local {
		out = append(out, NamedComponent{Name: e.name, Value: e.v})
	}
	return out
}

// NamedComponent pairs a registered component with its name.
type NamedComponent struct {
	Name  string
	Value any
}

func (r *Registry) inheriting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inherit
}

// instanceAs resolves the single component of a kind and asserts its type.
func instanceAs[T any](r *Registry, contextID string, kind Kind, inherit bool) (T, bool) {
	var zero T
	v, ok := r.instanceWith(contextID, kind, inherit)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// RegisterStandardComponents seeds the default scope with the components
// every composed builder needs: logger, JSON codecs, the default contract
// and targeter.
func RegisterStandardComponents(r *Registry, log *logger.Logger) {
	if log == nil {
		log = logger.NewDefault("clientkit")
	}
	d := r.Defaults()
	d.Set(KindLogger, log)
	d.Set(KindEncoder, JSONEncoder{})
	d.Set(KindDecoder, JSONDecoder{})
	d.Set(KindContract, DefaultContract{})
	d.Set(KindTargeter, DefaultTargeter{})
}
