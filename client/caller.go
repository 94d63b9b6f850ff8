package client

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/kbukum/clientkit/errors"
	"github.com/kbukum/clientkit/logger"
	"github.com/kbukum/clientkit/resilience"
	"github.com/kbukum/clientkit/version"
)

const tracerName = "github.com/kbukum/clientkit/client"

// Response is the decoded-agnostic view of an HTTP response handed to
// decoders and error decoders.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Header returns a response header value, empty when absent.
func (r *Response) Header(name string) string {
	return r.Headers[http.CanonicalHeaderKey(name)]
}

// RequestSpec describes one request before the contract expands it.
type RequestSpec struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      url.Values

	// QueryObject is expanded by the client's QueryEncoder and merged into
	// Query; explicit Query values win on key conflicts.
	QueryObject any

	Headers map[string]string
	Body    any
}

// Caller executes one request/response cycle against the client's target.
// Proxy builders wrap a Caller in the declared interface.
type Caller interface {
	Call(ctx context.Context, spec RequestSpec, out any) error
}

// httpCaller is the call engine bound to one target.
type httpCaller struct {
	target       Target
	transport    Transport
	encoder      Encoder
	decoder      Decoder
	contract     Contract
	errorDecoder ErrorDecoder
	queryEncoder QueryEncoder
	retryer      *resilience.RetryConfig
	interceptors []Interceptor
	readTimeout  time.Duration
	decode404    bool
	propagation  ErrorPropagation
	logLevel     LogLevel
	log          *logger.Logger
}

func newHTTPCaller(b *Builder, t Target) *httpCaller {
	ed := b.ErrorDecoder
	if ed == nil {
		ed = StatusErrorDecoder{}
	}
	qe := b.QueryEncoder
	if qe == nil {
		qe = DefaultQueryEncoder{}
	}
	return &httpCaller{
		target:       t,
		transport:    b.Transport,
		encoder:      b.Encoder,
		decoder:      b.Decoder,
		contract:     b.Contract,
		errorDecoder: ed,
		queryEncoder: qe,
		retryer:      b.Retryer,
		interceptors: b.Interceptors(),
		readTimeout:  b.Options.ReadTimeout,
		decode404:    b.Decode404,
		propagation:  b.Propagation,
		logLevel:     b.LogLevel,
		log:          b.Logger,
	}
}

// Call runs the full pipeline: contract expansion, encoding, per-attempt
// request construction with interceptors, transport execution, error
// decoding and response decoding. Retries re-run everything from request
// construction down so each attempt gets a fresh body reader.
func (c *httpCaller) Call(ctx context.Context, spec RequestSpec, out any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, spec.Method+" "+c.target.Name,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.method", spec.Method),
			attribute.String("peer.service", c.target.Name),
		))
	defer span.End()

	err := c.call(ctx, spec, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if c.propagation == PropagateUnwrap {
			if cause := stderrors.Unwrap(err); cause != nil {
				return cause
			}
		}
	}
	return err
}

func (c *httpCaller) call(ctx context.Context, spec RequestSpec, out any) error {
	expanded, err := c.contract.Expand(spec)
	if err != nil {
		return err
	}

	body, contentType, err := c.encoder.Encode(expanded.Body)
	if err != nil {
		return err
	}

	fullURL, err := c.buildURL(expanded)
	if err != nil {
		return err
	}

	attempt := func() (*Response, error) {
		return c.attempt(ctx, expanded, fullURL, body, contentType)
	}

	var resp *Response
	if c.retryer != nil {
		cfg := *c.retryer
		if cfg.RetryIf == nil {
			cfg.RetryIf = resilience.RetryableOnly
		}
		if cfg.OnRetry == nil {
			cfg.OnRetry = func(n int, err error, backoff time.Duration) {
				c.log.Warn("retrying request", logger.Fields(
					logger.FieldError, err.Error(),
					logger.FieldMethod, expanded.Method,
					logger.FieldURL, fullURL,
					"attempt", n,
					"backoff", backoff.String(),
				))
			}
		}
		resp, err = resilience.Retry(ctx, cfg, attempt)
	} else {
		resp, err = attempt()
	}
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	return c.decoder.Decode(resp, out)
}

// attempt performs one exchange. A non-2xx response becomes an error here
// so the retry layer can classify it.
func (c *httpCaller) attempt(ctx context.Context, spec RequestSpec, fullURL string, body []byte, contentType string) (*Response, error) {
	attemptCtx := ctx
	var cancel context.CancelFunc
	if c.readTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, spec.Method, fullURL, reader)
	if err != nil {
		return nil, errors.MalformedURL(fullURL, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}
	for _, in := range c.interceptors {
		if err := in.Intercept(req); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	c.logRequest(req, body)

	httpResp, err := c.transport.Do(req)
	if err != nil {
		if attemptCtx.Err() != nil {
			return nil, errors.Timeout(err)
		}
		return nil, errors.Connection(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if attemptCtx.Err() != nil {
			return nil, errors.Timeout(err)
		}
		return nil, errors.Connection(err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    flattenHeaders(httpResp.Header),
		Body:       respBody,
	}
	c.logResponse(req, resp, time.Since(start))

	if resp.StatusCode == http.StatusNotFound && c.decode404 {
		return resp, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if err := c.errorDecoder.Decode(c.target.TypeName, resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (c *httpCaller) buildURL(spec RequestSpec) (string, error) {
	full := c.target.URL + spec.Path

	query := url.Values{}
	if spec.QueryObject != nil {
		encoded, err := c.queryEncoder.Encode(spec.QueryObject)
		if err != nil {
			return "", err
		}
		for k, vs := range encoded {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
	}
	if spec.Query != nil {
		for k, vs := range spec.Query {
			if spec.QueryObject != nil {
				query.Del(k)
			}
			for _, v := range vs {
				query.Add(k, v)
			}
		}
	}
	if len(query) > 0 {
		u, err := url.Parse(full)
		if err != nil {
			return "", errors.MalformedURL(full, err)
		}
		existing := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				existing.Add(k, v)
			}
		}
		u.RawQuery = existing.Encode()
		full = u.String()
	}
	return full, nil
}

func (c *httpCaller) logRequest(req *http.Request, body []byte) {
	if c.logLevel < LogBasic {
		return
	}
	fields := logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldURL, req.URL.String(),
	)
	if c.logLevel >= LogHeaders {
		fields["headers"] = flattenHeaders(req.Header)
	}
	if c.logLevel >= LogFull && len(body) > 0 {
		fields["body"] = string(body)
	}
	c.log.Debug("request", fields)
}

func (c *httpCaller) logResponse(req *http.Request, resp *Response, elapsed time.Duration) {
	if c.logLevel < LogBasic {
		return
	}
	fields := logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldURL, req.URL.String(),
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDuration, elapsed.String(),
	)
	if c.logLevel >= LogHeaders {
		fields["headers"] = resp.Headers
	}
	if c.logLevel >= LogFull && len(resp.Body) > 0 {
		fields["body"] = string(resp.Body)
	}
	c.log.Debug("response", fields)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// fallbackCaller retries a failed call against the fallback.
type fallbackCaller struct {
	primary  Caller
	fallback Caller
	log      *logger.Logger
}

func (fc *fallbackCaller) Call(ctx context.Context, spec RequestSpec, out any) error {
	err := fc.primary.Call(ctx, spec, out)
	if err == nil {
		return nil
	}
	fc.log.Warn("call failed, invoking fallback", logger.Fields(
		logger.FieldError, err.Error(),
		logger.FieldMethod, spec.Method,
		logger.FieldOperation, spec.Path,
	))
	return fc.fallback.Call(ctx, spec, out)
}
