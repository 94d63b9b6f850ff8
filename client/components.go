package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/clientkit/errors"
)

// Kind identifies a configurable component slot on the builder. Scopes and
// profiles both address components by kind; profiles additionally address
// them by registered name.
type Kind string

const (
	KindLogger              Kind = "logger"
	KindLogLevel            Kind = "log-level"
	KindEncoder             Kind = "encoder"
	KindDecoder             Kind = "decoder"
	KindContract            Kind = "contract"
	KindRetryer             Kind = "retryer"
	KindErrorDecoder        Kind = "error-decoder"
	KindErrorDecoderFactory Kind = "error-decoder-factory"
	KindOptions             Kind = "options"
	KindInterceptor         Kind = "request-interceptor"
	KindQueryEncoder        Kind = "query-encoder"
	KindPropagationPolicy   Kind = "propagation-policy"
	KindCustomizer          Kind = "customizer"
	KindTransport           Kind = "transport"
	KindTargeter            Kind = "targeter"
	KindInheritance         Kind = "inheritance"
)

// Encoder serializes a request body and reports its content type.
type Encoder interface {
	Encode(v any) (body []byte, contentType string, err error)
}

// Decoder deserializes a successful response body into out.
type Decoder interface {
	Decode(resp *Response, out any) error
}

// Contract normalizes a request spec before it is executed: path template
// expansion, method validation, whatever convention the client follows.
type Contract interface {
	Expand(spec RequestSpec) (RequestSpec, error)
}

// ErrorDecoder converts a non-2xx response into an error. The target names
// the client type the response belongs to.
type ErrorDecoder interface {
	Decode(target string, resp *Response) error
}

// ErrorDecoderFactory creates a per-client ErrorDecoder. When a scope
// registers a factory instead of a decoder, composition calls Create with
// the client's type name.
type ErrorDecoderFactory interface {
	Create(typeName string) ErrorDecoder
}

// QueryEncoder turns a value into query parameters.
type QueryEncoder interface {
	Encode(v any) (url.Values, error)
}

// Interceptor mutates an outgoing request before the transport sees it.
type Interceptor interface {
	Intercept(req *http.Request) error
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc func(req *http.Request) error

func (f InterceptorFunc) Intercept(req *http.Request) error { return f(req) }

// Ordered is optionally implemented by interceptors and customizers to
// control their position; lower runs first. Components without an order
// keep registration order after all ordered ones of equal rank.
type Ordered interface {
	Order() int
}

// BuilderCustomizer gets the fully composed builder as a final hook before
// targeting. Customizers run after both configuration sources regardless of
// precedence order.
type BuilderCustomizer interface {
	Customize(b *Builder)
}

// CustomizerFunc adapts a function to the BuilderCustomizer interface.
type CustomizerFunc func(b *Builder)

func (f CustomizerFunc) Customize(b *Builder) { f(b) }

// Options carries transport tuning applied per client.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// LogLevel controls how much of each request/response cycle is logged.
type LogLevel int

const (
	LogNone LogLevel = iota
	LogBasic
	LogHeaders
	LogFull
)

func (l LogLevel) String() string {
	switch l {
	case LogBasic:
		return "basic"
	case LogHeaders:
		return "headers"
	case LogFull:
		return "full"
	default:
		return "none"
	}
}

// ParseLogLevel maps a profile string onto a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return LogNone, nil
	case "basic":
		return LogBasic, nil
	case "headers":
		return LogHeaders, nil
	case "full":
		return LogFull, nil
	}
	return LogNone, errors.Newf(errors.CodeValidation, "unknown log level %q", s)
}

// ErrorPropagation selects how call-time errors surface to the caller.
type ErrorPropagation int

const (
	// PropagateNone returns errors as produced by the pipeline.
	PropagateNone ErrorPropagation = iota
	// PropagateUnwrap exposes the underlying cause of the final error.
	PropagateUnwrap
)

// ParsePropagation maps a profile string onto an ErrorPropagation policy.
func ParsePropagation(s string) (ErrorPropagation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PropagateNone, nil
	case "unwrap":
		return PropagateUnwrap, nil
	}
	return PropagateNone, errors.Newf(errors.CodeValidation, "unknown error propagation %q", s)
}

// JSONEncoder is the default body encoder.
type JSONEncoder struct{}

func (JSONEncoder) Encode(v any) ([]byte, string, error) {
	if v == nil {
		return nil, "", nil
	}
	if raw, ok := v.([]byte); ok {
		return raw, "application/octet-stream", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, "", errors.New(errors.CodeValidation, "encode request body").WithCause(err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), "application/json", nil
}

// JSONDecoder is the default response decoder.
type JSONDecoder struct{}

func (JSONDecoder) Decode(resp *Response, out any) error {
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = resp.Body
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return errors.Decode(err)
	}
	return nil
}

// DefaultContract expands {param} path templates, validates the method and
// guarantees a leading slash.
type DefaultContract struct{}

func (DefaultContract) Expand(spec RequestSpec) (RequestSpec, error) {
	switch spec.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions:
	default:
		return spec, errors.Newf(errors.CodeValidation, "unsupported method %q", spec.Method)
	}

	path := spec.Path
	for key, val := range spec.PathParams {
		placeholder := "{" + key + "}"
		if !strings.Contains(path, placeholder) {
			return spec, errors.Newf(errors.CodeValidation, "path %q has no placeholder for param %q", spec.Path, key)
		}
		path = strings.ReplaceAll(path, placeholder, url.PathEscape(val))
	}
	if i := strings.IndexByte(path, '{'); i >= 0 {
		return spec, errors.Newf(errors.CodeValidation, "path %q has unresolved placeholder", path)
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	spec.Path = path
	return spec, nil
}

// StatusErrorDecoder is the default error decoder: it classifies the
// response status into a typed error and ignores the target.
type StatusErrorDecoder struct{}

func (StatusErrorDecoder) Decode(_ string, resp *Response) error {
	if err := errors.ClassifyStatus(resp.StatusCode, resp.Body); err != nil {
		return err
	}
	return nil
}

// DefaultQueryEncoder encodes url.Values, maps and structs tagged with
// `query` into query parameters.
type DefaultQueryEncoder struct{}

func (DefaultQueryEncoder) Encode(v any) (url.Values, error) {
	if v == nil {
		return nil, nil
	}
	switch q := v.(type) {
	case url.Values:
		return q, nil
	case map[string]string:
		out := make(url.Values, len(q))
		for k, val := range q {
			out.Set(k, val)
		}
		return out, nil
	case map[string][]string:
		return url.Values(q), nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.Newf(errors.CodeValidation, "cannot encode %T as query parameters", v)
	}

	out := url.Values{}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("query")
		if tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		out.Set(name, fmt.Sprint(fv.Interface()))
	}
	return out, nil
}

// componentRegistry maps kind+name to constructors so profile references can
// resolve components that no scope registered. Registration follows the
// database/sql driver idiom: packages register named components in init or
// at bootstrap, composition looks them up by name.
var componentRegistry = struct {
	mu     sync.RWMutex
	byKind map[Kind]map[string]func() any
}{byKind: make(map[Kind]map[string]func() any)}

// RegisterComponent makes a named component constructor available to
// profile references of the given kind. Later registrations under the same
// kind and name replace earlier ones.
func RegisterComponent(kind Kind, name string, ctor func() any) {
	componentRegistry.mu.Lock()
	defer componentRegistry.mu.Unlock()
	byName := componentRegistry.byKind[kind]
	if byName == nil {
		byName = make(map[string]func() any)
		componentRegistry.byKind[kind] = byName
	}
	byName[name] = ctor
}

func lookupComponent(kind Kind, name string) (any, bool) {
	componentRegistry.mu.RLock()
	ctor, ok := componentRegistry.byKind[kind][name]
	componentRegistry.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ctor(), true
}
