package client

import (
	"reflect"
	"sort"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/logger"
	"github.com/kbukum/clientkit/profiles"
	"github.com/kbukum/clientkit/resilience"
)

// Factory holds one client's resolved identities and produces the proxy on
// demand. The container calls Target exactly once per client; everything up
// to that point is metadata.
type Factory struct {
	// TypeName is the fully qualified client interface name.
	TypeName string

	// Name is the wire-level service name; feeds the load-balanced URL.
	Name string

	// ContextID keys this client's scope and profile.
	ContextID string

	// URL is the fixed endpoint, empty for the load-balanced path.
	URL string

	// Path prefixes every request.
	Path string

	Decode404 bool
	Primary   bool

	Fallback        any
	FallbackFactory FallbackFactory
	Type            reflect.Type
	Build           ProxyBuilder

	registry *Registry
	props    *profiles.Properties
	log      *logger.Logger

	// inherit is this client's own inheritance decision, resolved at compose
	// time from the registry default plus a KindInheritance override in the
	// client scope. It never mutates the registry.
	inherit bool
}

// NewFactory creates a factory directly, for use outside a Registrar.
func NewFactory(registry *Registry, props *profiles.Properties, log *logger.Logger) *Factory {
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("factory")
	}
	return &Factory{registry: registry, props: props, log: log}
}

// compose assembles the Builder for this client. The mandatory components
// (logger, encoder, decoder, contract) seed the builder first; then the two
// configuration sources apply in the order the profile source selects; then
// customizers run.
func (f *Factory) compose() (*Builder, error) {
	b := &Builder{}

	f.inherit = f.registry.inheriting()
	if v, ok := instanceAs[bool](f.registry, f.ContextID, KindInheritance, f.inherit); ok {
		f.inherit = v
	}

	var ok bool
	if b.Logger, ok = instanceAs[*logger.Logger](f.registry, f.ContextID, KindLogger, f.inherit); !ok {
		return nil, errors.MissingDependency(string(KindLogger), f.ContextID)
	}
	b.Logger = b.Logger.WithFields(logger.Fields(logger.FieldClient, f.ContextID))
	if b.Encoder, ok = instanceAs[Encoder](f.registry, f.ContextID, KindEncoder, f.inherit); !ok {
		return nil, errors.MissingDependency(string(KindEncoder), f.ContextID)
	}
	if b.Decoder, ok = instanceAs[Decoder](f.registry, f.ContextID, KindDecoder, f.inherit); !ok {
		return nil, errors.MissingDependency(string(KindDecoder), f.ContextID)
	}
	if b.Contract, ok = instanceAs[Contract](f.registry, f.ContextID, KindContract, f.inherit); !ok {
		return nil, errors.MissingDependency(string(KindContract), f.ContextID)
	}
	b.Decode404 = f.Decode404

	if err := f.applySources(b); err != nil {
		return nil, err
	}
	f.applyCustomizers(b)
	return b, nil
}

// composeOrder is one of the two fixed layering strategies. Whichever layer
// applies last wins on conflicting fields.
type composeOrder func(f *Factory, b *Builder) error

// propertiesWinOrder layers scopes first, then the default profile, then
// the client profile.
func propertiesWinOrder(f *Factory, b *Builder) error {
	f.applyScopes(b)
	if err := f.applyProfile(b, f.props.Default()); err != nil {
		return err
	}
	return f.applyProfile(b, f.props.For(f.ContextID))
}

// codeWinsOrder layers both profiles first, then the scopes.
func codeWinsOrder(f *Factory, b *Builder) error {
	if err := f.applyProfile(b, f.props.Default()); err != nil {
		return err
	}
	if err := f.applyProfile(b, f.props.For(f.ContextID)); err != nil {
		return err
	}
	f.applyScopes(b)
	return nil
}

// applySources runs the precedence order the profile source selects; with
// no profile source, or with inheritance disabled for this client, only the
// scope layer applies.
func (f *Factory) applySources(b *Builder) error {
	if f.props == nil || !f.inherit {
		f.applyScopes(b)
		return nil
	}
	order := codeWinsOrder
	if f.props.DefaultToProperties {
		order = propertiesWinOrder
	}
	return order(f, b)
}

// applyScopes layers registry-held components onto the builder. Optional
// kinds only overwrite when the registry actually holds one. The codec trio
// (encoder, decoder, contract) stays out of this layer: it seeds the builder
// before the sources run, so a profile reference can still replace it.
func (f *Factory) applyScopes(b *Builder) {
	if v, ok := instanceAs[LogLevel](f.registry, f.ContextID, KindLogLevel, f.inherit); ok {
		b.LogLevel = v
	}
	if v, ok := instanceAs[*resilience.RetryConfig](f.registry, f.ContextID, KindRetryer, f.inherit); ok {
		b.Retryer = v
	}
	if v, ok := instanceAs[ErrorDecoder](f.registry, f.ContextID, KindErrorDecoder, f.inherit); ok {
		b.ErrorDecoder = v
	} else if fac, ok := instanceAs[ErrorDecoderFactory](f.registry, f.ContextID, KindErrorDecoderFactory, f.inherit); ok {
		b.ErrorDecoder = fac.Create(f.TypeName)
	}
	if v, ok := instanceAs[Options](f.registry, f.ContextID, KindOptions, f.inherit); ok {
		b.Options = v
	}
	if v, ok := instanceAs[QueryEncoder](f.registry, f.ContextID, KindQueryEncoder, f.inherit); ok {
		b.QueryEncoder = v
	}
	if v, ok := instanceAs[ErrorPropagation](f.registry, f.ContextID, KindPropagationPolicy, f.inherit); ok {
		b.Propagation = v
	}
	for _, nc := range f.registry.instancesWith(f.ContextID, KindInterceptor, f.inherit) {
		if in, ok := nc.Value.(Interceptor); ok {
			b.AddInterceptor(nc.Name, in)
		}
	}
}

// applyProfile layers one external profile onto the builder. Component
// references resolve registry-first, then the process component registry.
func (f *Factory) applyProfile(b *Builder, cfg *profiles.ClientConfig) error {
	if cfg == nil {
		return nil
	}
	if cfg.LogLevel != "" {
		level, err := ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		b.LogLevel = level
	}
	// Both timeouts must be present together to form transport options.
	if cfg.ConnectTimeout > 0 && cfg.ReadTimeout > 0 {
		b.Options = Options{ConnectTimeout: cfg.ConnectTimeout, ReadTimeout: cfg.ReadTimeout}
	}
	if cfg.Retryer != "" {
		v, err := f.component(KindRetryer, cfg.Retryer)
		if err != nil {
			return err
		}
		rc, ok := v.(*resilience.RetryConfig)
		if !ok {
			return errors.UnresolvableType(string(KindRetryer), cfg.Retryer)
		}
		b.Retryer = rc
	}
	if cfg.ErrorDecoder != "" {
		v, err := f.component(KindErrorDecoder, cfg.ErrorDecoder)
		if err != nil {
			return err
		}
		ed, ok := v.(ErrorDecoder)
		if !ok {
			return errors.UnresolvableType(string(KindErrorDecoder), cfg.ErrorDecoder)
		}
		b.ErrorDecoder = ed
	}
	for _, name := range cfg.RequestInterceptors {
		v, err := f.component(KindInterceptor, name)
		if err != nil {
			return err
		}
		in, ok := v.(Interceptor)
		if !ok {
			return errors.UnresolvableType(string(KindInterceptor), name)
		}
		b.AddInterceptor(name, in)
	}
	if cfg.Encoder != "" {
		v, err := f.component(KindEncoder, cfg.Encoder)
		if err != nil {
			return err
		}
		enc, ok := v.(Encoder)
		if !ok {
			return errors.UnresolvableType(string(KindEncoder), cfg.Encoder)
		}
		b.Encoder = enc
	}
	if cfg.Decoder != "" {
		v, err := f.component(KindDecoder, cfg.Decoder)
		if err != nil {
			return err
		}
		dec, ok := v.(Decoder)
		if !ok {
			return errors.UnresolvableType(string(KindDecoder), cfg.Decoder)
		}
		b.Decoder = dec
	}
	if cfg.Contract != "" {
		v, err := f.component(KindContract, cfg.Contract)
		if err != nil {
			return err
		}
		ct, ok := v.(Contract)
		if !ok {
			return errors.UnresolvableType(string(KindContract), cfg.Contract)
		}
		b.Contract = ct
	}
	if cfg.QueryEncoder != "" {
		v, err := f.component(KindQueryEncoder, cfg.QueryEncoder)
		if err != nil {
			return err
		}
		qe, ok := v.(QueryEncoder)
		if !ok {
			return errors.UnresolvableType(string(KindQueryEncoder), cfg.QueryEncoder)
		}
		b.QueryEncoder = qe
	}
	if cfg.Decode404 != nil {
		b.Decode404 = *cfg.Decode404
	}
	if cfg.ErrorPropagation != "" {
		p, err := ParsePropagation(cfg.ErrorPropagation)
		if err != nil {
			return err
		}
		b.Propagation = p
	}
	return nil
}

// component resolves a profile component reference by name.
func (f *Factory) component(kind Kind, name string) (any, error) {
	if v, ok := f.registry.instanceNamedWith(f.ContextID, kind, name, f.inherit); ok {
		return v, nil
	}
	if v, ok := lookupComponent(kind, name); ok {
		return v, nil
	}
	return nil, errors.UnresolvableType(string(kind), name)
}

// applyCustomizers runs builder customizers last, lowest order first,
// registration order breaking ties.
func (f *Factory) applyCustomizers(b *Builder) {
	ncs := f.registry.instancesWith(f.ContextID, KindCustomizer, f.inherit)
	customizers := make([]BuilderCustomizer, 0, len(ncs))
	for _, nc := range ncs {
		if c, ok := nc.Value.(BuilderCustomizer); ok {
			customizers = append(customizers, c)
		}
	}
	sort.SliceStable(customizers, func(i, j int) bool {
		return customizerOrder(customizers[i]) < customizerOrder(customizers[j])
	})
	for _, c := range customizers {
		c.Customize(b)
	}
}

func customizerOrder(c BuilderCustomizer) int {
	if o, ok := c.(Ordered); ok {
		return o.Order()
	}
	return 0
}
