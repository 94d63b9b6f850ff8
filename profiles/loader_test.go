package profiles

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "clients.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
clients:
  default_to_properties: true
  config:
    default:
      log_level: basic
      connect_timeout: 5s
      read_timeout: 10s
      retryer: exponential
    orders:
      retryer: aggressive
      request_interceptors: [request-id, bearer]
      decode404: true
`)

	props, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if props == nil {
		t.Fatal("Load returned nil properties")
	}
	if !props.DefaultToProperties {
		t.Error("default_to_properties should be true")
	}
	if props.DefaultConfig != "default" {
		t.Errorf("DefaultConfig = %q, want default", props.DefaultConfig)
	}

	def := props.Default()
	if def == nil {
		t.Fatal("default profile missing")
	}
	if def.ConnectTimeout != 5*time.Second || def.ReadTimeout != 10*time.Second {
		t.Errorf("timeouts = %v/%v, want 5s/10s", def.ConnectTimeout, def.ReadTimeout)
	}
	if def.LogLevel != "basic" {
		t.Errorf("log_level = %q, want basic", def.LogLevel)
	}

	orders := props.For("orders")
	if orders == nil {
		t.Fatal("orders profile missing")
	}
	if orders.Retryer != "aggressive" {
		t.Errorf("orders retryer = %q, want aggressive", orders.Retryer)
	}
	if len(orders.RequestInterceptors) != 2 {
		t.Errorf("orders interceptors = %v, want 2 entries", orders.RequestInterceptors)
	}
	if orders.Decode404 == nil || !*orders.Decode404 {
		t.Error("orders decode404 should be true")
	}
	// Absent field falls through as zero value.
	if orders.ConnectTimeout != 0 {
		t.Errorf("orders connect_timeout = %v, want unset", orders.ConnectTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	props, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load of absent file should not error, got %v", err)
	}
	if props != nil {
		t.Error("Load of absent file should yield nil properties")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	props, err := Load("")
	if err != nil || props != nil {
		t.Errorf("Load(\"\") = (%v, %v), want (nil, nil)", props, err)
	}
}

func TestLoadNoClientsSection(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")
	props, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if props != nil {
		t.Error("Load without a clients section should yield nil properties")
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
clients:
  config:
    orders:
      log_level: shouting
`)
	if _, err := Load(path); err == nil {
		t.Error("Load should reject an invalid log level")
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	path := writeConfig(t, `
clients:
  config:
    orders:
      connect_timeout: -5s
`)
	if _, err := Load(path); err == nil {
		t.Error("Load should reject a negative timeout")
	}
}
