package client

import (
	"testing"

	"github.com/kbukum/clientkit/errors"
)

func TestScopeLatestWins(t *testing.T) {
	s := NewScope()
	s.Set(KindEncoder, JSONEncoder{})
	s.Register(KindEncoder, "other", "second")

	v, ok := s.one(KindEncoder)
	if !ok {
		t.Fatal("expected an encoder")
	}
	if v != "second" {
		t.Errorf("latest registration should win, got %v", v)
	}
}

func TestScopeReplaceKeepsPosition(t *testing.T) {
	s := NewScope()
	s.Register(KindInterceptor, "a", 1)
	s.Register(KindInterceptor, "b", 2)
	s.Register(KindInterceptor, "a", 3)

	all := s.all(KindInterceptor)
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if all[0].name != "a" || all[0].v != 3 {
		t.Errorf("replaced entry should keep its slot: %+v", all[0])
	}
	if all[1].name != "b" {
		t.Errorf("second entry should stay b: %+v", all[1])
	}
}

func TestRegistryClientScopeShadowsDefaults(t *testing.T) {
	r := NewRegistry()
	r.Defaults().Set(KindEncoder, "default-enc")
	if err := r.RegisterScopeFunc("orders", func(s *Scope) {
		s.Set(KindEncoder, "orders-enc")
	}); err != nil {
		t.Fatalf("RegisterScopeFunc failed: %v", err)
	}

	if v, _ := r.Instance("orders", KindEncoder); v != "orders-enc" {
		t.Errorf("orders should see its own encoder, got %v", v)
	}
	if v, _ := r.Instance("billing", KindEncoder); v != "default-enc" {
		t.Errorf("billing should fall through to defaults, got %v", v)
	}
}

func TestRegistryDefaultScopeFuncsApplyToEveryClient(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterScopeFunc("default.app", func(s *Scope) {
		s.Register(KindInterceptor, "shared", "x")
	}); err != nil {
		t.Fatalf("RegisterScopeFunc failed: %v", err)
	}

	for _, ctx := range []string{"orders", "billing"} {
		if _, ok := r.InstanceLocal(ctx, KindInterceptor); !ok {
			t.Errorf("%s scope should contain the default contributor's interceptor", ctx)
		}
	}
}

func TestRegistryDuplicateScopeFunc(t *testing.T) {
	r := NewRegistry()
	fn := func(*Scope) {}
	if err := r.RegisterScopeFunc("orders", fn); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := r.RegisterScopeFunc("orders", fn)
	if !errors.IsCode(err, errors.CodeDuplicateRegistration) {
		t.Errorf("duplicate scope func = %v, want duplicate registration", err)
	}
}

func TestRegistryScopeFuncRegisteredAfterMaterialization(t *testing.T) {
	r := NewRegistry()
	// Materialize the scope first.
	r.Instance("orders", KindEncoder)

	// A late contributor does not retroactively change a materialized scope.
	if err := r.RegisterScopeFunc("orders", func(s *Scope) {
		s.Set(KindEncoder, "late")
	}); err != nil {
		t.Fatalf("RegisterScopeFunc failed: %v", err)
	}
	if _, ok := r.Instance("orders", KindEncoder); ok {
		t.Error("materialized scope should be stable")
	}
}

func TestRegistryInstancesOrder(t *testing.T) {
	r := NewRegistry()
	r.Defaults().Register(KindInterceptor, "first", 1)
	r.Defaults().Register(KindInterceptor, "shadowed", 2)
	if err := r.RegisterScopeFunc("orders", func(s *Scope) {
		s.Register(KindInterceptor, "shadowed", 20)
		s.Register(KindInterceptor, "own", 30)
	}); err != nil {
		t.Fatalf("RegisterScopeFunc failed: %v", err)
	}

	got := r.Instances("orders", KindInterceptor)
	want := []NamedComponent{
		{Name: "first", Value: 1},
		{Name: "shadowed", Value: 20},
		{Name: "own", Value: 30},
	}
	if len(got) != len(want) {
		t.Fatalf("Instances = %+v, want %d entries", got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Instances[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	local := r.InstancesLocal("orders", KindInterceptor)
	if len(local) != 2 {
		t.Errorf("InstancesLocal = %+v, want only the client scope's entries", local)
	}
}

func TestRegistryInheritanceDisabled(t *testing.T) {
	r := NewRegistry()
	r.Defaults().Set(KindEncoder, "default-enc")
	r.SetInheritParentContext(false)

	if _, ok := r.Instance("orders", KindEncoder); ok {
		t.Error("with inheritance off, defaults should be invisible")
	}
	if got := r.Instances("orders", KindEncoder); len(got) != 0 {
		t.Errorf("Instances should be empty, got %+v", got)
	}
}

func TestInstanceNamedFallsThrough(t *testing.T) {
	r := NewRegistry()
	r.Defaults().Register(KindRetryer, "exponential", "cfg")

	if v, ok := r.InstanceNamed("orders", KindRetryer, "exponential"); !ok || v != "cfg" {
		t.Errorf("InstanceNamed = (%v, %v), want cfg", v, ok)
	}
	if _, ok := r.InstanceNamed("orders", KindRetryer, "absent"); ok {
		t.Error("absent name should not resolve")
	}
}
