package builtins

import (
	"testing"

	"github.com/wardlang/ward/internal/value"
)

func constHandler(v value.Value) Handler {
	return func(args []value.Value) (value.Value, error) { return v, nil }
}

func TestRegistryCallDispatchesToHandler(t *testing.T) {
	r := NewRegistry()
	r.Register("double", 1, func(args []value.Value) (value.Value, error) {
		return value.AddNumbers(args[0], args[0]), nil
	})
	got, err := r.Call("double", []value.Value{value.Int(21)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int() != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestRegistryCallUnknownName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Call("nope", nil); err == nil {
		t.Fatal("expected an error for an unregistered name")
	}
}

func TestRegistryCallArityMismatch(t *testing.T) {
	r := NewRegistry()
	r.Register("pair", 2, constHandler(value.True))
	if _, err := r.Call("pair", []value.Value{value.Int(1)}); err == nil {
		t.Fatal("expected an arity mismatch error")
	}
}

func TestRegistryRegisterPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on duplicate registration")
		}
	}()
	r := NewRegistry()
	r.Register("dup", 1, constHandler(value.True))
	r.Register("dup", 1, constHandler(value.False))
}

func TestRegistryWithOverrideShadowsParentWithoutMutatingIt(t *testing.T) {
	base := NewRegistry()
	base.Register("greeting", 0, constHandler(value.String("hi")))

	overridden := base.WithOverride("greeting", Entry{Name: "greeting", Arity: 0, Handler: constHandler(value.String("bye"))})

	got, err := overridden.Call("greeting", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "bye" {
		t.Fatalf("got %q, want bye", got.Str())
	}

	baseGot, err := base.Call("greeting", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if baseGot.Str() != "hi" {
		t.Fatalf("base registry was mutated by WithOverride: got %q", baseGot.Str())
	}
}

func TestRegistryWithOverrideFallsThroughForOtherNames(t *testing.T) {
	base := NewRegistry()
	base.Register("a", 0, constHandler(value.Int(1)))
	base.Register("b", 0, constHandler(value.Int(2)))

	overridden := base.WithOverride("a", Entry{Name: "a", Arity: 0, Handler: constHandler(value.Int(99))})

	got, err := overridden.Call("b", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int() != 2 {
		t.Fatalf("got %v, want the parent's unmodified entry for b", got)
	}
}

func TestRegistryNamesIncludesParentChain(t *testing.T) {
	base := NewRegistry()
	base.Register("a", 1, constHandler(value.True))
	layered := base.WithOverride("b", Entry{Name: "b", Arity: 2, Handler: constHandler(value.True)})

	names := layered.Names()
	if names["a"] != 1 {
		t.Fatalf("expected inherited name %q with arity 1, got %v", "a", names)
	}
	if names["b"] != 2 {
		t.Fatalf("expected overlay name %q with arity 2, got %v", "b", names)
	}
}

func TestNewDefaultRegistryHasStarterBuiltins(t *testing.T) {
	r := NewDefaultRegistry()
	for _, name := range []string{"count", "sum", "upper", "object.union", "json.marshal", "time.now_ns"} {
		if _, ok := r.EntryFor(name); !ok {
			t.Fatalf("expected default registry to include %q", name)
		}
	}
}
