package client

import (
	"iter"
	"reflect"
	"strings"

	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/logger"
	"github.com/kbukum/clientkit/profiles"
)

// TypeFilter decides whether a scanned declaration is registered.
type TypeFilter func(d Declaration) bool

// MatchAll accepts every declaration.
func MatchAll() TypeFilter {
	return func(Declaration) bool { return true }
}

// InSet accepts declarations whose type is one of the given interfaces.
func InSet(types ...reflect.Type) TypeFilter {
	set := make(map[reflect.Type]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return func(d Declaration) bool { return set[d.Type] }
}

// And combines filters; all must accept.
func And(filters ...TypeFilter) TypeFilter {
	return func(d Declaration) bool {
		for _, f := range filters {
			if !f(d) {
				return false
			}
		}
		return true
	}
}

// Scanner yields the declarations found under a base package. Each Scan
// call produces a fresh sequence; scanning never instantiates clients.
type Scanner interface {
	Scan(basePackage string, filter TypeFilter) iter.Seq2[Declaration, error]
}

// StaticScanner serves declarations registered up front, matched by the
// import path prefix of their declared type.
type StaticScanner struct {
	decls []Declaration
}

// NewStaticScanner creates a scanner over a fixed declaration set.
func NewStaticScanner(decls ...Declaration) *StaticScanner {
	return &StaticScanner{decls: decls}
}

// Add appends declarations to the scan set.
func (s *StaticScanner) Add(decls ...Declaration) {
	s.decls = append(s.decls, decls...)
}

// Scan yields declarations whose package matches basePackage or lives
// beneath it.
func (s *StaticScanner) Scan(basePackage string, filter TypeFilter) iter.Seq2[Declaration, error] {
	return func(yield func(Declaration, error) bool) {
		for _, d := range s.decls {
			pkg := d.PackageName()
			if basePackage != "" && pkg != basePackage && !strings.HasPrefix(pkg, basePackage+"/") {
				continue
			}
			if filter != nil && !filter(d) {
				continue
			}
			if !yield(d, nil) {
				return
			}
		}
	}
}

// ScanOptions drives one registration pass.
type ScanOptions struct {
	// Value is shorthand for a single base package.
	Value string

	// BasePackages lists the import paths to scan.
	BasePackages []string

	// BasePackageTypes contributes the packages of the given types.
	BasePackageTypes []reflect.Type

	// Clients restricts registration to exactly these interfaces; when set,
	// scanning covers only their packages and all other declarations are
	// filtered out.
	Clients []reflect.Type

	// DefaultConfiguration contributes to the default scope of every client
	// registered by this pass.
	DefaultConfiguration ScopeFunc

	// EnclosingName names the registration source, used to key the default
	// configuration contributor.
	EnclosingName string

	// EnclosingPackage is the fallback base package when nothing else names
	// one.
	EnclosingPackage string
}

// basePackages derives the effective scan roots.
func (o ScanOptions) basePackages() []string {
	if len(o.Clients) > 0 {
		seen := make(map[string]bool)
		var pkgs []string
		for _, t := range o.Clients {
			pkg := t.PkgPath()
			if pkg != "" && !seen[pkg] {
				seen[pkg] = true
				pkgs = append(pkgs, pkg)
			}
		}
		return pkgs
	}

	seen := make(map[string]bool)
	var pkgs []string
	add := func(pkg string) {
		pkg = strings.TrimSpace(pkg)
		if pkg != "" && !seen[pkg] {
			seen[pkg] = true
			pkgs = append(pkgs, pkg)
		}
	}
	add(o.Value)
	for _, pkg := range o.BasePackages {
		add(pkg)
	}
	for _, t := range o.BasePackageTypes {
		add(t.PkgPath())
	}
	if len(pkgs) == 0 {
		add(o.EnclosingPackage)
	}
	return pkgs
}

// filter derives the effective type filter.
func (o ScanOptions) filter() TypeFilter {
	if len(o.Clients) > 0 {
		return InSet(o.Clients...)
	}
	return MatchAll()
}

// Registrar walks scanned declarations and records them: one scope function
// in the registry, one lazy factory plus one alias in the container per
// declaration. Nothing is built until first resolution.
type Registrar struct {
	scanner   Scanner
	registry  *Registry
	container di.Container
	expand    Expander
	props     *profiles.Properties
	log       *logger.Logger
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithExpander replaces the attribute expander.
func WithExpander(e Expander) RegistrarOption {
	return func(r *Registrar) { r.expand = e }
}

// WithProperties attaches an external profile source.
func WithProperties(p *profiles.Properties) RegistrarOption {
	return func(r *Registrar) { r.props = p }
}

// WithLogger replaces the registrar's logger.
func WithLogger(l *logger.Logger) RegistrarOption {
	return func(r *Registrar) { r.log = l }
}

// NewRegistrar wires a scanner, registry and container together.
func NewRegistrar(scanner Scanner, registry *Registry, container di.Container, opts ...RegistrarOption) *Registrar {
	r := &Registrar{
		scanner:   scanner,
		registry:  registry,
		container: container,
		expand:    ExpandEnv,
		log:       logger.GetGlobalLogger().WithComponent("registrar"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register runs one scan pass and records every accepted declaration.
// The first error aborts the pass; declarations registered before the
// failure stay registered.
func (r *Registrar) Register(opts ScanOptions) error {
	if opts.DefaultConfiguration != nil {
		name := defaultScopePrefix + opts.EnclosingName
		if err := r.registry.RegisterScopeFunc(name, opts.DefaultConfiguration); err != nil {
			return err
		}
	}

	filter := opts.filter()
	for _, pkg := range opts.basePackages() {
		for decl, err := range r.scanner.Scan(pkg, filter) {
			if err != nil {
				return err
			}
			if err := r.register(decl); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registrar) register(decl Declaration) error {
	if err := decl.Validate(); err != nil {
		return err
	}

	clientName, err := resolveClientName(decl, r.expand)
	if err != nil {
		return err
	}
	if decl.Configure != nil {
		if err := r.registry.RegisterScopeFunc(clientName, decl.Configure); err != nil {
			return err
		}
	}

	factory, err := r.newFactory(decl)
	if err != nil {
		return err
	}

	typeName := decl.TypeName()
	var containerOpts []di.Option
	if decl.Primary {
		containerOpts = append(containerOpts, di.WithPrimary())
	}
	ctor := func() (any, error) { return factory.Target() }
	if err := r.container.RegisterLazy(typeName, ctor, containerOpts...); err != nil {
		return err
	}

	alias := decl.Qualifier
	if alias == "" {
		alias = factory.ContextID + "Client"
	}
	if err := r.container.RegisterAlias(alias, typeName); err != nil {
		return err
	}

	r.log.Debug("registered client", logger.Fields(
		logger.FieldClient, clientName,
		logger.FieldContextID, factory.ContextID,
		"type", typeName,
		"alias", alias,
	))
	return nil
}

// newFactory resolves the declaration's identities and builds the factory
// that will compose and target the client on first resolution.
func (r *Registrar) newFactory(decl Declaration) (*Factory, error) {
	contextID, err := resolveContextID(decl, r.expand)
	if err != nil {
		return nil, err
	}
	name, err := resolveServiceName(decl, r.expand)
	if err != nil {
		return nil, err
	}
	rawURL, err := ResolveURL(r.expand(decl.URL))
	if err != nil {
		return nil, err
	}
	// A context id alone identifies the client but gives the load-balanced
	// path no host to resolve.
	if name == "" && rawURL == "" {
		return nil, errors.MissingServiceName(decl.TypeName())
	}

	return &Factory{
		TypeName:        decl.TypeName(),
		Name:            name,
		ContextID:       contextID,
		URL:             rawURL,
		Path:            ResolvePath(r.expand(decl.Path)),
		Decode404:       decl.Decode404,
		Primary:         decl.Primary,
		Fallback:        decl.Fallback,
		FallbackFactory: decl.FallbackFactory,
		Type:            decl.Type,
		Build:           decl.Build,

		registry: r.registry,
		props:    r.props,
		log:      r.log,
	}, nil
}
