package client

import (
	"net/url"
	"os"
	"strings"

	"github.com/kbukum/clientkit/errors"
)

// Expander substitutes dynamic references in declaration attributes before
// they are resolved. The default expander replaces ${VAR} with the
// environment variable's value.
type Expander func(s string) string

// ExpandEnv is the default Expander.
func ExpandEnv(s string) string {
	return os.Expand(s, func(key string) string { return os.Getenv(key) })
}

// deferredPrefix marks URL values whose resolution is deferred to the host
// application's own expression mechanism. Such values pass through
// untouched.
const deferredPrefix = "#{"

// ResolveName normalizes a service name and validates it parses as a host.
// An empty name stays empty.
func ResolveName(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	host := name
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil || u.Host == "" {
		return "", errors.InvalidIdentity(name)
	}
	return name, nil
}

// ResolveURL normalizes a fixed URL: deferred expressions pass through, a
// missing scheme gets http://, and anything else must parse as an absolute
// URL. An empty URL stays empty and selects the load-balanced path.
func ResolveURL(raw string) (string, error) {
	if raw == "" || strings.HasPrefix(raw, deferredPrefix) {
		return raw, nil
	}
	full := raw
	if !strings.Contains(full, "://") {
		full = "http://" + full
	}
	u, err := url.Parse(full)
	if err != nil {
		return "", errors.MalformedURL(raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.MalformedURL(raw, nil)
	}
	return full, nil
}

// ResolvePath normalizes a path prefix: surrounding whitespace trimmed,
// exactly one leading slash, no trailing slash. Empty in, empty out.
func ResolvePath(raw string) string {
	path := strings.TrimSpace(raw)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimSuffix(path, "/")
	return path
}

// resolveContextID picks the configuration identity of a declaration.
// Deliberately not the same order as resolveClientName.
func resolveContextID(d Declaration, expand Expander) (string, error) {
	for _, candidate := range []string{d.ContextID, d.ServiceID, d.Name, d.Value} {
		if candidate = expand(candidate); candidate != "" {
			return ResolveName(candidate)
		}
	}
	return "", errors.MissingIdentity(d.TypeName())
}

// resolveClientName picks the registration name of a declaration.
func resolveClientName(d Declaration, expand Expander) (string, error) {
	for _, candidate := range []string{d.ContextID, d.Value, d.Name, d.ServiceID} {
		if candidate = expand(candidate); candidate != "" {
			return candidate, nil
		}
	}
	return "", errors.MissingIdentity(d.TypeName())
}

// resolveServiceName picks the wire-level service name of a declaration.
func resolveServiceName(d Declaration, expand Expander) (string, error) {
	for _, candidate := range []string{d.ServiceID, d.Name, d.Value} {
		if candidate = expand(candidate); candidate != "" {
			return ResolveName(candidate)
		}
	}
	return "", nil
}
