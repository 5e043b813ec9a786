package ward

import (
	"strings"
	"sync"
	"testing"

	"github.com/wardlang/ward/internal/lexer"
	"github.com/wardlang/ward/internal/parser"
	"github.com/wardlang/ward/internal/value"
)

// Scenario 1: a default complete rule overridden by a matching
// clause.
func TestBasicAllow(t *testing.T) {
	source := `package example

default allow := false
allow := true { input.user == "admin" }
`
	cases := []struct {
		name string
		user string
		want bool
	}{
		{"admin", "admin", true},
		{"bob", "bob", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := value.Object(map[string]value.Value{"user": value.String(tc.user)})
			res, err := Evaluate(source, input, value.Object(nil), "data.example.allow")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.Success {
				t.Fatalf("expected success=true, got %+v", res)
			}
			if res.Value.Bool() != tc.want {
				t.Fatalf("got %v, want %v", res.Value.Bool(), tc.want)
			}
		})
	}
}

// Scenario 2: an array comprehension filtering a data document.
func TestComprehensionOverData(t *testing.T) {
	source := `package p

xs := [x | some x in data.items; x > 1]
`
	data := value.Object(map[string]value.Value{
		"items": value.Array([]value.Value{value.Int(1), value.Int(2), value.Int(3)}),
	})
	res, err := Evaluate(source, value.Object(nil), data, "data.p.xs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success=true, got %+v", res)
	}
	got := res.Value.Array()
	if len(got) != 2 || got[0].Int() != 2 || got[1].Int() != 3 {
		t.Fatalf("got %v, want [2,3]", res.Value)
	}
}

// Scenario 3: a partial-object rule whose two clauses disagree
// on the value for the same key.
func TestPartialObjectConflict(t *testing.T) {
	source := `package p

users["a"] := 1
users["a"] := 2
`
	_, err := Evaluate(source, value.Object(nil), value.Object(nil), "data.p.users")
	if err == nil {
		t.Fatal("expected a conflicting-object-key error, got none")
	}
	if !strings.Contains(err.Error(), "conflicting") {
		t.Fatalf("got error %q, want it to mention a conflict", err.Error())
	}
}

// Scenario 4: `with` mocking a builtin for one literal.
func TestWithMockOfBuiltin(t *testing.T) {
	source := `package p

ok { count([1, 2, 3]) == 6 with count as sum }
`
	res, err := Evaluate(source, value.Object(nil), value.Object(nil), "data.p.ok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || !res.Value.Bool() {
		t.Fatalf("got %+v, want success=true value=true", res)
	}
}

// Scenario 5: `every` quantification over an array domain.
func TestEveryQuantification(t *testing.T) {
	source := `package p

ok { every x in input.nums { x > 0 } }
`
	t.Run("all positive", func(t *testing.T) {
		input := value.Object(map[string]value.Value{
			"nums": value.Array([]value.Value{value.Int(1), value.Int(2), value.Int(3)}),
		})
		res, err := Evaluate(source, input, value.Object(nil), "data.p.ok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Success || !res.Value.Bool() {
			t.Fatalf("got %+v, want success=true value=true", res)
		}
	})
	t.Run("one non-positive", func(t *testing.T) {
		input := value.Object(map[string]value.Value{
			"nums": value.Array([]value.Value{value.Int(1), value.Int(2), value.Int(0)}),
		})
		res, err := Evaluate(source, input, value.Object(nil), "data.p.ok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Success {
			t.Fatalf("got %+v, want success=false (ok falls through to undefined)", res)
		}
	})
}

// Scenario 6: unification backtracking over object keys,
// exercised as a standalone query expression so the succeeding branch's
// binding for k is observable in the Result.
func TestUnificationBacktrackingBindsKey(t *testing.T) {
	l := lexer.New(`input[k] == "target"`)
	p := parser.New(l)
	expr := p.ParseExpression()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	policy, err := NewPolicy("package p\n")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	input := value.Object(map[string]value.Value{
		"a": value.String("x"),
		"b": value.String("target"),
	})
	res, err := policy.Evaluate(input, value.Object(nil), expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected a succeeding branch, got %+v", res)
	}
	if got := res.Bindings["k"]; got.Str() != "b" {
		t.Fatalf("got k=%v, want k=\"b\"", got)
	}
}

// Policy.Evaluate is safe for concurrent callers, each
// building its own eval.Environment.
func TestPolicyEvaluateConcurrentSafe(t *testing.T) {
	source := `package p

default allow := false
allow := true { input.user == "admin" }
`
	policy, err := NewPolicy(source)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	var wg sync.WaitGroup
	users := []string{"admin", "bob", "admin", "carol"}
	for i := 0; i < 50; i++ {
		user := users[i%len(users)]
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			input := value.Object(map[string]value.Value{"user": value.String(user)})
			res, err := policy.Evaluate(input, value.Object(nil), "data.p.allow")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			want := user == "admin"
			if res.Value.Bool() != want {
				t.Errorf("user %q: got %v, want %v", user, res.Value.Bool(), want)
			}
		}(user)
	}
	wg.Wait()
}
