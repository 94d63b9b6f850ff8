package di

import (
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kbukum/clientkit/errors"
)

func TestRegisterSingleton(t *testing.T) {
	c := NewContainer()
	if err := c.RegisterSingleton("value", 42); err != nil {
		t.Fatalf("RegisterSingleton failed: %v", err)
	}

	got, err := Resolve[int](c, "value")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 42 {
		t.Errorf("Resolve = %d, want 42", got)
	}
}

func TestRegisterLazy_ConstructsOnce(t *testing.T) {
	c := NewContainer()
	var built atomic.Int32
	err := c.RegisterLazy("svc", func() (any, error) {
		built.Add(1)
		return "instance", nil
	})
	if err != nil {
		t.Fatalf("RegisterLazy failed: %v", err)
	}

	if built.Load() != 0 {
		t.Error("registration must not construct the instance")
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Resolve("svc"); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}
	if built.Load() != 1 {
		t.Errorf("constructor ran %d times, want 1", built.Load())
	}
}

func TestRegisterLazy_ConcurrentFirstAccess(t *testing.T) {
	c := NewContainer()
	var built atomic.Int32
	_ = c.RegisterLazy("svc", func() (any, error) {
		built.Add(1)
		return new(int), nil
	})

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([]any, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Resolve("svc")
			if err != nil {
				t.Errorf("Resolve failed: %v", err)
				return
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	if built.Load() != 1 {
		t.Errorf("constructor ran %d times under concurrent access, want 1", built.Load())
	}
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Error("concurrent callers observed different instances")
		}
	}
}

func TestRegisterLazy_FailureIsNotCached(t *testing.T) {
	c := NewContainer()
	calls := 0
	boom := stderrors.New("boom")
	_ = c.RegisterLazy("svc", func() (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	})

	if _, err := c.Resolve("svc"); !stderrors.Is(err, boom) {
		t.Fatalf("first Resolve = %v, want boom", err)
	}
	got, err := c.Resolve("svc")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("second Resolve = %v, want ok", got)
	}
}

func TestDuplicateKeyRejected(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("svc", 1)
	err := c.RegisterSingleton("svc", 2)
	if !errors.IsCode(err, errors.CodeDuplicateRegistration) {
		t.Errorf("duplicate registration error = %v, want DUPLICATE_REGISTRATION", err)
	}
	err = c.RegisterAlias("svc", "other")
	if !errors.IsCode(err, errors.CodeDuplicateRegistration) {
		t.Errorf("duplicate alias error = %v, want DUPLICATE_REGISTRATION", err)
	}
}

func TestAliasResolvesTarget(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("com.example.OrdersAPI", "proxy")
	if err := c.RegisterAlias("ordersClient", "com.example.OrdersAPI"); err != nil {
		t.Fatalf("RegisterAlias failed: %v", err)
	}

	got, err := Resolve[string](c, "ordersClient")
	if err != nil {
		t.Fatalf("Resolve alias failed: %v", err)
	}
	if got != "proxy" {
		t.Errorf("Resolve alias = %q, want proxy", got)
	}
}

func TestAliasToMissingTarget(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterAlias("ordersClient", "missing")
	_, err := c.Resolve("ordersClient")
	if !errors.IsCode(err, errors.CodeNotRegistered) {
		t.Errorf("Resolve = %v, want NOT_REGISTERED", err)
	}
}

func TestResolveUnknownKey(t *testing.T) {
	c := NewContainer()
	_, err := c.Resolve("nope")
	if !errors.IsCode(err, errors.CodeNotRegistered) {
		t.Errorf("Resolve = %v, want NOT_REGISTERED", err)
	}
}

func TestTypedResolveMismatch(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("svc", "a string")
	if _, err := Resolve[int](c, "svc"); err == nil {
		t.Error("Resolve with wrong type should fail")
	}
	if _, ok := TryResolve[int](c, "svc"); ok {
		t.Error("TryResolve with wrong type should report false")
	}
}

func TestRegistrationsIntrospection(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterLazy("lazy", func() (any, error) { return 1, nil }, WithPrimary())
	_ = c.RegisterSingleton("single", 2)

	infos := c.Registrations()
	if len(infos) != 2 {
		t.Fatalf("Registrations len = %d, want 2", len(infos))
	}
	byKey := map[string]RegistrationInfo{}
	for _, info := range infos {
		byKey[info.Key] = info
	}
	if !byKey["lazy"].Primary {
		t.Error("lazy registration should be primary")
	}
	if byKey["lazy"].Initialized {
		t.Error("lazy registration should not be initialized before Resolve")
	}
	if !byKey["single"].Initialized {
		t.Error("singleton should be initialized")
	}
}
