package eval

import (
	"testing"

	"github.com/wardlang/ward/internal/builtins"
	"github.com/wardlang/ward/internal/value"
)

// Object patterns destructure by key: literal keys look up directly,
// variable keys enumerate the value object's keys, and each value entry is
// consumed at most once.
func TestUnifyObjectPatternVariableKey(t *testing.T) {
	env := buildEnv(t, `package p

pair { {"a": x, k: y} = input.obj; x == 1; k == "b"; y == 2 }
`, value.Object(map[string]value.Value{
		"obj": value.Object(map[string]value.Value{
			"a": value.Int(1),
			"b": value.Int(2),
		}),
	}), value.Object(nil), builtins.NewDefaultRegistry())

	v, err := evalRuleRef("pair", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindBool || !v.Bool() {
		t.Fatalf("got %v, want true", v)
	}
}

// An object pattern only matches a value object of identical cardinality.
func TestUnifyObjectPatternCardinality(t *testing.T) {
	env := buildEnv(t, `package p

partial { {"a": x} = input.obj }
`, value.Object(map[string]value.Value{
		"obj": value.Object(map[string]value.Value{
			"a": value.Int(1),
			"b": value.Int(2),
		}),
	}), value.Object(nil), builtins.NewDefaultRegistry())

	v, err := evalRuleRef("partial", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsUndefined() {
		t.Fatalf("got %v, want undefined for a cardinality mismatch", v)
	}
}

// A variable key with an ambiguous value match enumerates every consistent
// key assignment, one binding set each.
func TestUnifyObjectPatternEnumeratesKeys(t *testing.T) {
	env := buildEnv(t, `package p

keys contains k { {k: 1, _: 1} = input.obj }
`, value.Object(map[string]value.Value{
		"obj": value.Object(map[string]value.Value{
			"x": value.Int(1),
			"y": value.Int(1),
		}),
	}), value.Object(nil), builtins.NewDefaultRegistry())

	v, err := evalRuleRef("keys", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindSet || v.Len() != 2 ||
		!v.SetContains(value.String("x")) || !v.SetContains(value.String("y")) {
		t.Fatalf("got %v, want the set {\"x\", \"y\"}", v)
	}
}

// A key already consumed by an earlier pattern pair is excluded from later
// pairs, so a two-pair pattern never matches both pairs to one entry.
func TestUnifyObjectPatternNoKeyReuse(t *testing.T) {
	env := buildEnv(t, `package p

reused { {a: 1, b: 1} = input.obj; a == b }
`, value.Object(map[string]value.Value{
		"obj": value.Object(map[string]value.Value{
			"x": value.Int(1),
			"y": value.Int(2),
		}),
	}), value.Object(nil), builtins.NewDefaultRegistry())

	v, err := evalRuleRef("reused", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsUndefined() {
		t.Fatalf("got %v, want undefined (only one entry carries the value 1)", v)
	}
}

// Nested array patterns thread bindings element-wise and agree across
// repeated variables.
func TestUnifyArrayPatternRepeatedVariable(t *testing.T) {
	env := buildEnv(t, `package p

twice { [x, x] = input.pair; x == 3 }
never { [y, y] = input.mixed }
`, value.Object(map[string]value.Value{
		"pair":  value.Array([]value.Value{value.Int(3), value.Int(3)}),
		"mixed": value.Array([]value.Value{value.Int(3), value.Int(4)}),
	}), value.Object(nil), builtins.NewDefaultRegistry())

	v, err := evalRuleRef("twice", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindBool || !v.Bool() {
		t.Fatalf("got %v, want true", v)
	}
	v, err = evalRuleRef("never", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsUndefined() {
		t.Fatalf("got %v, want undefined (a variable cannot bind two values)", v)
	}
}
