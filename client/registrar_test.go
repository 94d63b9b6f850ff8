package client

import (
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/kbukum/clientkit/di"
	"github.com/kbukum/clientkit/errors"
)

func newTestRegistrar(t *testing.T, decls ...Declaration) (*Registrar, di.Container, *Registry) {
	t.Helper()
	registry := testRegistry()
	container := di.NewContainer()
	registrar := NewRegistrar(NewStaticScanner(decls...), registry, container,
		WithLogger(quietLogger()))
	return registrar, container, registry
}

func TestRegisterRecordsFactoryAndAlias(t *testing.T) {
	decl := Declaration{
		Type: pingType,
		Name: "ping",
		URL:  "ping.internal:9000",
		Build: func(c Caller) any {
			return &pingProxy{c: c}
		},
	}
	registrar, container, _ := newTestRegistrar(t, decl)

	if err := registrar.Register(ScanOptions{Clients: []reflect.Type{pingType}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	keys := make(map[string]di.RegistrationInfo)
	for _, info := range container.Registrations() {
		keys[info.Key] = info
	}
	typeName := decl.TypeName()
	if info, ok := keys[typeName]; !ok || info.Mode != di.Lazy {
		t.Errorf("expected lazy registration under %q, got %+v", typeName, info)
	}
	if info, ok := keys["pingClient"]; !ok || info.Mode != di.Alias {
		t.Errorf("expected alias pingClient, got %+v", info)
	}
}

func TestRegisterQualifierOverridesAlias(t *testing.T) {
	decl := Declaration{Type: pingType, Name: "ping", URL: "ping:9000", Qualifier: "pingr"}
	registrar, container, _ := newTestRegistrar(t, decl)
	if err := registrar.Register(ScanOptions{Clients: []reflect.Type{pingType}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	for _, info := range container.Registrations() {
		if info.Key == "pingr" && info.Mode == di.Alias {
			return
		}
	}
	t.Error("qualifier alias not registered")
}

func TestRegisterDoesNotInstantiate(t *testing.T) {
	var built atomic.Int64
	decl := Declaration{
		Type: pingType,
		Name: "ping",
		URL:  "ping:9000",
		Build: func(c Caller) any {
			built.Add(1)
			return &pingProxy{c: c}
		},
	}
	registrar, _, _ := newTestRegistrar(t, decl)
	if err := registrar.Register(ScanOptions{Clients: []reflect.Type{pingType}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if built.Load() != 0 {
		t.Errorf("registration must not build proxies, built %d", built.Load())
	}
}

func TestRegisterRejectsInvalidDeclaration(t *testing.T) {
	decl := Declaration{Type: reflect.TypeOf(pingFallback{}), Name: "ping"}
	registrar, _, _ := newTestRegistrar(t, decl)
	err := registrar.Register(ScanOptions{BasePackages: []string{decl.PackageName()}})
	if !errors.IsCode(err, errors.CodeInvalidDeclaration) {
		t.Errorf("Register = %v, want invalid declaration", err)
	}
}

func TestRegisterContextIDAloneLacksServiceName(t *testing.T) {
	// A context id keys the scope but gives the load-balanced path no host.
	decl := Declaration{Type: pingType, ContextID: "ping"}
	registrar, _, _ := newTestRegistrar(t, decl)
	err := registrar.Register(ScanOptions{Clients: []reflect.Type{pingType}})
	if !errors.IsCode(err, errors.CodeMissingIdentity) {
		t.Errorf("Register = %v, want missing identity", err)
	}
}

func TestRegisterDuplicateClientName(t *testing.T) {
	configure := func(*Scope) {}
	a := Declaration{Type: pingType, Name: "ping", URL: "a:1", Configure: configure}
	b := Declaration{Type: ordersType, Name: "ping", URL: "b:1", Configure: configure}
	registrar, _, _ := newTestRegistrar(t, a, b)
	err := registrar.Register(ScanOptions{BasePackages: []string{a.PackageName()}})
	if !errors.IsCode(err, errors.CodeDuplicateRegistration) {
		t.Errorf("Register = %v, want duplicate registration", err)
	}
}

func TestRegisterDefaultConfiguration(t *testing.T) {
	var applied atomic.Int64
	decl := Declaration{Type: pingType, Name: "ping", URL: "ping:9000"}
	registrar, _, registry := newTestRegistrar(t, decl)
	err := registrar.Register(ScanOptions{
		Clients:       []reflect.Type{pingType},
		EnclosingName: "app",
		DefaultConfiguration: func(s *Scope) {
			applied.Add(1)
			s.Register(KindInterceptor, "app-wide", RequestID())
		},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	// The contributor runs lazily per scope materialization.
	if applied.Load() != 0 {
		t.Errorf("default configuration should not run during registration")
	}
	if _, ok := registry.InstanceLocal("ping", KindInterceptor); !ok {
		t.Error("default configuration should contribute to the client scope")
	}
	if applied.Load() == 0 {
		t.Error("default configuration should have run on materialization")
	}
}

func TestScanFilterRestrictsToClients(t *testing.T) {
	a := Declaration{Type: pingType, Name: "ping", URL: "a:1"}
	b := Declaration{Type: ordersType, Name: "orders", URL: "b:1"}
	registrar, container, _ := newTestRegistrar(t, a, b)
	if err := registrar.Register(ScanOptions{Clients: []reflect.Type{pingType}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	for _, info := range container.Registrations() {
		if info.Key == b.TypeName() {
			t.Error("orders client should have been filtered out")
		}
	}
}

func TestStaticScannerPackageMatch(t *testing.T) {
	decl := Declaration{Type: pingType, Name: "ping"}
	s := NewStaticScanner(decl)

	count := 0
	for range s.Scan(decl.PackageName(), MatchAll()) {
		count++
	}
	if count != 1 {
		t.Errorf("scan of own package found %d declarations, want 1", count)
	}

	count = 0
	for range s.Scan("example.com/elsewhere", MatchAll()) {
		count++
	}
	if count != 0 {
		t.Errorf("scan of unrelated package found %d declarations, want 0", count)
	}
}
