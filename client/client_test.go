package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"sync/atomic"

	"github.com/kbukum/clientkit/logger"
)

// Shared test fixtures.

type pingAPI interface {
	Ping(ctx context.Context) (string, error)
}

type ordersAPI interface {
	Get(ctx context.Context, id string) (string, error)
}

var (
	pingType   = reflect.TypeOf((*pingAPI)(nil)).Elem()
	ordersType = reflect.TypeOf((*ordersAPI)(nil)).Elem()
)

// pingProxy adapts a Caller to pingAPI.
type pingProxy struct {
	c Caller
}

func (p *pingProxy) Ping(ctx context.Context) (string, error) {
	return Get[string](p.c, ctx, "/ping")
}

// pingFallback is a canned pingAPI used as fallback.
type pingFallback struct{}

func (pingFallback) Ping(context.Context) (string, error) { return "fallback", nil }

// fakeTransport answers every request with a scripted response.
type fakeTransport struct {
	status  int
	body    string
	err     error
	calls   atomic.Int64
	lastReq atomic.Pointer[http.Request]
}

func (ft *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	ft.calls.Add(1)
	ft.lastReq.Store(req)
	if ft.err != nil {
		return nil, ft.err
	}
	status := ft.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Status:     strconv.Itoa(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(ft.body)),
	}, nil
}

func quietLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"}, "test")
}

// testRegistry builds a registry seeded with the standard components.
func testRegistry() *Registry {
	r := NewRegistry()
	RegisterStandardComponents(r, quietLogger())
	return r
}

func testBuilder() *Builder {
	return &Builder{
		Logger:   quietLogger(),
		Encoder:  JSONEncoder{},
		Decoder:  JSONDecoder{},
		Contract: DefaultContract{},
	}
}
