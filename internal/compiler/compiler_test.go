package compiler

import (
	"strings"
	"testing"

	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/lexer"
	"github.com/wardlang/ward/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		var sb strings.Builder
		for _, e := range errs {
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
		t.Fatalf("unexpected parse errors:\n%s", sb.String())
	}
	return mod
}

func errMessages(errs []*Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func containsSubstring(errs []*Error, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestCompileCleanModuleHasNoErrors(t *testing.T) {
	mod := mustParse(t, `package p

default allow := false
allow { input.admin }
`)
	_, errs := Compile(mod, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errMessages(errs))
	}
}

func TestCompileRejectsRuleKindMismatch(t *testing.T) {
	mod := mustParse(t, `package p

names contains x { some x in input.users }
names := "not a set"
`)
	_, errs := Compile(mod, nil)
	if !containsSubstring(errs, "rule kind mismatch") {
		t.Fatalf("expected a rule kind mismatch error, got %v", errMessages(errs))
	}
}

func TestCompileRejectsInconsistentFunctionArity(t *testing.T) {
	mod := mustParse(t, `package p

add(x) := x + 1
add(x, y) := x + y
`)
	_, errs := Compile(mod, nil)
	if !containsSubstring(errs, "inconsistent arity") {
		t.Fatalf("expected an inconsistent arity error, got %v", errMessages(errs))
	}
}

func TestCompileRejectsMultipleDefaults(t *testing.T) {
	mod := mustParse(t, `package p

default allow := false
default allow := true
`)
	_, errs := Compile(mod, nil)
	if !containsSubstring(errs, "more than one default") {
		t.Fatalf("expected a duplicate default error, got %v", errMessages(errs))
	}
}

func TestCompileRejectsFunctionBuiltinCollision(t *testing.T) {
	mod := mustParse(t, `package p

count(x) := 1
`)
	_, errs := Compile(mod, map[string]int{"count": 1})
	if !containsSubstring(errs, "collides with a registered builtin") {
		t.Fatalf("expected a builtin-collision error, got %v", errMessages(errs))
	}
}

func TestCompileSkipsBuiltinCollisionCheckWhenRegistryNil(t *testing.T) {
	mod := mustParse(t, `package p

count(x) := 1
`)
	_, errs := Compile(mod, nil)
	if containsSubstring(errs, "collides with a registered builtin") {
		t.Fatalf("did not expect a builtin-collision error with a nil registry, got %v", errMessages(errs))
	}
}

func TestCompileRejectsDuplicateImportAlias(t *testing.T) {
	mod := mustParse(t, `package p

import data.lib.a as util
import data.lib.b as util
`)
	_, errs := Compile(mod, nil)
	if !containsSubstring(errs, "duplicate import alias") {
		t.Fatalf("expected a duplicate-alias error, got %v", errMessages(errs))
	}
}

func TestCompileRejectsImportAliasShadowingReservedName(t *testing.T) {
	mod := mustParse(t, `package p

import data.lib.a as input
`)
	_, errs := Compile(mod, nil)
	if !containsSubstring(errs, "shadows a reserved name") {
		t.Fatalf("expected a reserved-name-shadow error, got %v", errMessages(errs))
	}
}

func TestCompileRejectsImportAliasCollidingWithRuleName(t *testing.T) {
	mod := mustParse(t, `package p

import data.lib.a as allow
allow { input.ok }
`)
	_, errs := Compile(mod, nil)
	if !containsSubstring(errs, "collides with a declared rule name") {
		t.Fatalf("expected a rule-name-collision error, got %v", errMessages(errs))
	}
}

func TestCompileAcceptsBareImportWithNoAlias(t *testing.T) {
	mod := mustParse(t, `package p

import data.lib.a
`)
	_, errs := Compile(mod, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors for a bare import: %v", errMessages(errs))
	}
}

func TestCompileRejectsUnsafeNegation(t *testing.T) {
	mod := mustParse(t, `package p

deny { not input.users[x] }
`)
	_, errs := Compile(mod, nil)
	if !containsSubstring(errs, "unsafe negation") {
		t.Fatalf("expected an unsafe-negation error, got %v", errMessages(errs))
	}
}

func TestCompileAcceptsNegationOfVariableBoundBySome(t *testing.T) {
	mod := mustParse(t, `package p

deny {
	some x in input.users
	not banned[x]
}

banned contains "root"
`)
	_, errs := Compile(mod, nil)
	if containsSubstring(errs, "unsafe negation") {
		t.Fatalf("did not expect an unsafe-negation error, got %v", errMessages(errs))
	}
}

func TestCompileAcceptsNegationOfVariableBoundByAssign(t *testing.T) {
	mod := mustParse(t, `package p

deny {
	x := input.role
	not x == "admin"
}
`)
	_, errs := Compile(mod, nil)
	if containsSubstring(errs, "unsafe negation") {
		t.Fatalf("did not expect an unsafe-negation error, got %v", errMessages(errs))
	}
}

func TestCompileRejectsNonGroundDefault(t *testing.T) {
	mod := mustParse(t, `package p

default allow := input.fallback
`)
	_, errs := Compile(mod, nil)
	if !containsSubstring(errs, "default value must be ground") {
		t.Fatalf("expected a non-ground-default error, got %v", errMessages(errs))
	}
}

func TestCompileAcceptsGroundDefault(t *testing.T) {
	mod := mustParse(t, `package p

default limits := {"max": 10, "min": 0}
`)
	_, errs := Compile(mod, nil)
	if containsSubstring(errs, "default value must be ground") {
		t.Fatalf("did not expect a non-ground-default error, got %v", errMessages(errs))
	}
}

func TestCompileBuildsDependencyGraph(t *testing.T) {
	mod := mustParse(t, `package p

allow { is_admin }
is_admin { input.role == "admin" }
`)
	cm, errs := Compile(mod, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errMessages(errs))
	}
	deps := cm.DependencyGraph["allow"]
	found := false
	for _, d := range deps {
		if d == "is_admin" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q to depend on %q, got %v", "allow", "is_admin", deps)
	}
}

func TestCompileRuleOrderIsFirstAppearanceOrder(t *testing.T) {
	mod := mustParse(t, `package p

z_rule := 1
a_rule := 2
m_rule := 3
`)
	cm, errs := Compile(mod, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errMessages(errs))
	}
	want := []string{"z_rule", "a_rule", "m_rule"}
	if len(cm.RuleOrder) != len(want) {
		t.Fatalf("got %d rule groups, want %d", len(cm.RuleOrder), len(want))
	}
	for i, name := range want {
		if cm.RuleOrder[i] != name {
			t.Fatalf("rule order[%d]: got %q, want %q", i, cm.RuleOrder[i], name)
		}
	}
}
