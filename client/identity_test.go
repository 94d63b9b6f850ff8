package client

import (
	"testing"

	"github.com/kbukum/clientkit/errors"
)

func TestResolvePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"/api", "/api"},
		{"api", "/api"},
		{"/api/", "/api"},
		{" /a/b/ ", "/a/b"},
	}
	for _, tc := range cases {
		if got := ResolvePath(tc.in); got != tc.want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	// Normalizing an already normalized path changes nothing.
	if got := ResolvePath(ResolvePath(" /a/b/ ")); got != "/a/b" {
		t.Errorf("ResolvePath not idempotent: %q", got)
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"foo", "http://foo"},
		{"foo:8080", "http://foo:8080"},
		{"http://foo", "http://foo"},
		{"https://foo.example.com", "https://foo.example.com"},
		{"#{deferred.reference}", "#{deferred.reference}"},
	}
	for _, tc := range cases {
		got, err := ResolveURL(tc.in)
		if err != nil {
			t.Errorf("ResolveURL(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveURLMalformed(t *testing.T) {
	for _, in := range []string{"ht!tp://bad host", "http://"} {
		if _, err := ResolveURL(in); !errors.IsCode(err, errors.CodeMalformedURL) {
			t.Errorf("ResolveURL(%q) = %v, want malformed URL error", in, err)
		}
	}
}

func TestResolveName(t *testing.T) {
	if got, err := ResolveName(""); err != nil || got != "" {
		t.Errorf("ResolveName(\"\") = (%q, %v), want empty", got, err)
	}
	if got, err := ResolveName("my-service"); err != nil || got != "my-service" {
		t.Errorf("ResolveName(my-service) = (%q, %v)", got, err)
	}
	if _, err := ResolveName("not a host"); !errors.IsCode(err, errors.CodeInvalidIdentity) {
		t.Errorf("ResolveName with spaces = %v, want invalid identity", err)
	}
}

func TestResolveContextIDPrecedence(t *testing.T) {
	noExpand := func(s string) string { return s }

	// contextId beats everything.
	d := Declaration{Type: pingType, ContextID: "ctx", ServiceID: "svc", Name: "nm", Value: "val"}
	if got, err := resolveContextID(d, noExpand); err != nil || got != "ctx" {
		t.Errorf("contextId precedence: got (%q, %v)", got, err)
	}

	// serviceId beats name and value.
	d = Declaration{Type: pingType, ServiceID: "svc", Name: "nm", Value: "val"}
	if got, err := resolveContextID(d, noExpand); err != nil || got != "svc" {
		t.Errorf("serviceId precedence: got (%q, %v)", got, err)
	}

	d = Declaration{Type: pingType, Name: "nm", Value: "val"}
	if got, err := resolveContextID(d, noExpand); err != nil || got != "nm" {
		t.Errorf("name precedence: got (%q, %v)", got, err)
	}

	d = Declaration{Type: pingType}
	if _, err := resolveContextID(d, noExpand); !errors.IsCode(err, errors.CodeMissingIdentity) {
		t.Errorf("missing identity: got %v", err)
	}
}

func TestResolveClientNamePrecedence(t *testing.T) {
	noExpand := func(s string) string { return s }

	// value beats name and serviceId here, unlike the context id order.
	d := Declaration{Type: pingType, ServiceID: "svc", Name: "nm", Value: "val"}
	if got, err := resolveClientName(d, noExpand); err != nil || got != "val" {
		t.Errorf("value precedence: got (%q, %v)", got, err)
	}

	d = Declaration{Type: pingType, ContextID: "ctx", Value: "val"}
	if got, err := resolveClientName(d, noExpand); err != nil || got != "ctx" {
		t.Errorf("contextId precedence: got (%q, %v)", got, err)
	}
}

func TestExpanderApplied(t *testing.T) {
	expand := func(s string) string {
		if s == "${SVC}" {
			return "orders"
		}
		return s
	}
	d := Declaration{Type: pingType, Name: "${SVC}"}
	if got, err := resolveContextID(d, expand); err != nil || got != "orders" {
		t.Errorf("expanded context id: got (%q, %v)", got, err)
	}
}
