package client

import (
	"context"
	"net/http"
	"net/url"
)

// CallOption tweaks one request made through the typed helpers.
type CallOption func(*RequestSpec)

// WithHeader adds a request header.
func WithHeader(key, value string) CallOption {
	return func(spec *RequestSpec) {
		if spec.Headers == nil {
			spec.Headers = make(map[string]string)
		}
		spec.Headers[key] = value
	}
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) CallOption {
	return func(spec *RequestSpec) {
		if spec.Query == nil {
			spec.Query = url.Values{}
		}
		spec.Query.Add(key, value)
	}
}

// WithQueryObject attaches a value expanded by the client's QueryEncoder.
func WithQueryObject(v any) CallOption {
	return func(spec *RequestSpec) { spec.QueryObject = v }
}

// WithPathParam binds a {name} placeholder in the path.
func WithPathParam(name, value string) CallOption {
	return func(spec *RequestSpec) {
		if spec.PathParams == nil {
			spec.PathParams = make(map[string]string)
		}
		spec.PathParams[name] = value
	}
}

// Get performs a GET and decodes the response into T.
func Get[T any](c Caller, ctx context.Context, path string, opts ...CallOption) (T, error) {
	return do[T](c, ctx, http.MethodGet, path, nil, opts...)
}

// Post performs a POST with a body and decodes the response into T.
func Post[T any](c Caller, ctx context.Context, path string, body any, opts ...CallOption) (T, error) {
	return do[T](c, ctx, http.MethodPost, path, body, opts...)
}

// Put performs a PUT with a body and decodes the response into T.
func Put[T any](c Caller, ctx context.Context, path string, body any, opts ...CallOption) (T, error) {
	return do[T](c, ctx, http.MethodPut, path, body, opts...)
}

// Patch performs a PATCH with a body and decodes the response into T.
func Patch[T any](c Caller, ctx context.Context, path string, body any, opts ...CallOption) (T, error) {
	return do[T](c, ctx, http.MethodPatch, path, body, opts...)
}

// Delete performs a DELETE; the response body, if any, is discarded.
func Delete(c Caller, ctx context.Context, path string, opts ...CallOption) error {
	spec := RequestSpec{Method: http.MethodDelete, Path: path}
	for _, opt := range opts {
		opt(&spec)
	}
	return c.Call(ctx, spec, nil)
}

func do[T any](c Caller, ctx context.Context, method, path string, body any, opts ...CallOption) (T, error) {
	spec := RequestSpec{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&spec)
	}
	var out T
	if err := c.Call(ctx, spec, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
