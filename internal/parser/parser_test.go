package parser

import (
	"strings"
	"testing"

	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/lexer"
	"github.com/wardlang/ward/internal/token"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	l := lexer.New(src)
	p := New(l)
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

func TestParsePackageAndImport(t *testing.T) {
	mod := parseModule(t, `package example.authz

import data.lib.util as util
import input
`)
	if strings.Join(mod.PackagePath, ".") != "example.authz" {
		t.Fatalf("got package path %v", mod.PackagePath)
	}
	if len(mod.Imports) != 2 {
		t.Fatalf("got %d imports, want 2", len(mod.Imports))
	}
	if mod.Imports[0].Path != "data.lib.util" || mod.Imports[0].Alias != "util" {
		t.Fatalf("got import %+v", mod.Imports[0])
	}
	if mod.Imports[1].Path != "input" || mod.Imports[1].Alias != "" {
		t.Fatalf("got import %+v", mod.Imports[1])
	}
}

func TestParseBareBooleanRule(t *testing.T) {
	mod := parseModule(t, "package p\n\nallow { input.ok }\n")
	if len(mod.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(mod.Rules))
	}
	r := mod.Rules[0]
	if r.Name != "allow" || r.Head.Kind != ast.CompleteRule {
		t.Fatalf("got rule %+v", r)
	}
	if len(r.Body) != 1 {
		t.Fatalf("got %d body literals, want 1", len(r.Body))
	}
}

func TestParseDefaultAndAssignRule(t *testing.T) {
	mod := parseModule(t, `package p

default allow := false
allow := true { input.admin }
`)
	if len(mod.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(mod.Rules))
	}
	if !mod.Rules[0].Head.IsDefault {
		t.Fatal("first rule should be marked default")
	}
	if mod.Rules[1].Head.Kind != ast.CompleteRule {
		t.Fatalf("got kind %v", mod.Rules[1].Head.Kind)
	}
}

func TestParsePartialSetRule(t *testing.T) {
	mod := parseModule(t, `package p

names contains x {
	some x in input.users
	x != "admin"
}
`)
	r := mod.Rules[0]
	if r.Head.Kind != ast.PartialSetRule {
		t.Fatalf("got kind %v, want PartialSetRule", r.Head.Kind)
	}
	if len(r.Body) != 2 {
		t.Fatalf("got %d body literals, want 2", len(r.Body))
	}
}

func TestParsePartialObjectRule(t *testing.T) {
	mod := parseModule(t, `package p

scores[user] := score {
	some user
	score := 1
}
`)
	r := mod.Rules[0]
	if r.Head.Kind != ast.PartialObjectRule {
		t.Fatalf("got kind %v, want PartialObjectRule", r.Head.Kind)
	}
}

func TestParseFunctionRule(t *testing.T) {
	mod := parseModule(t, `package p

greet(name) := sprintf("hi %s", [name])
`)
	r := mod.Rules[0]
	if r.Head.Kind != ast.FunctionRule {
		t.Fatalf("got kind %v, want FunctionRule", r.Head.Kind)
	}
	if len(r.Head.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(r.Head.Args))
	}
}

func TestParseElseChain(t *testing.T) {
	mod := parseModule(t, `package p

grade := "A" { input.score >= 90 } else := "B" { input.score >= 80 } else := "C"
`)
	r := mod.Rules[0]
	if r.Else == nil {
		t.Fatal("expected an else clause")
	}
	if r.Else.Next == nil {
		t.Fatal("expected a second else clause")
	}
}

func TestParseEveryRequiresBraces(t *testing.T) {
	mod := parseModule(t, `package p

allow { every x in input.nums { x > 0 } }
`)
	r := mod.Rules[0]
	lit, ok := r.Body[0].(*ast.ExprLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.ExprLiteral", r.Body[0])
	}
	every, ok := lit.Expression.(*ast.Every)
	if !ok {
		t.Fatalf("got %T, want *ast.Every", lit.Expression)
	}
	if every.ValueVar != "x" || len(every.Body) != 1 {
		t.Fatalf("got %+v", every)
	}
}

func TestParseWithChain(t *testing.T) {
	mod := parseModule(t, `package p

allow {
	data.authz.check with input as {"role": "admin"} with time.now_ns as 0
}
`)
	r := mod.Rules[0]
	lit := r.Body[0].(*ast.ExprLiteral)
	if len(lit.With) != 2 {
		t.Fatalf("got %d with modifiers, want 2", len(lit.With))
	}
}

func TestBracedLiteralDisambiguation(t *testing.T) {
	mod := parseModule(t, `package p

setRule := {1, 2, 3}
objRule := {"a": 1, "b": 2}
setComprRule := {x | some x in [1, 2]}
objComprRule := {x: x | some x in [1, 2]}
emptySetRule := {}
`)
	kinds := map[string]func(ast.Expr) bool{
		"setRule": func(e ast.Expr) bool { _, ok := e.(*ast.SetLit); return ok },
		"objRule": func(e ast.Expr) bool { _, ok := e.(*ast.ObjectLit); return ok },
	}
	byName := map[string]*ast.Rule{}
	for _, r := range mod.Rules {
		byName[r.Name] = r
	}
	for name, check := range kinds {
		r, ok := byName[name]
		if !ok {
			t.Fatalf("missing rule %q", name)
		}
		if !check(r.Head.Value) {
			t.Fatalf("rule %q: got %T", name, r.Head.Value)
		}
	}
	if _, ok := byName["setComprRule"].Head.Value.(*ast.SetCompr); !ok {
		t.Fatalf("setComprRule: got %T, want *ast.SetCompr", byName["setComprRule"].Head.Value)
	}
	if _, ok := byName["objComprRule"].Head.Value.(*ast.ObjectCompr); !ok {
		t.Fatalf("objComprRule: got %T, want *ast.ObjectCompr", byName["objComprRule"].Head.Value)
	}
	if _, ok := byName["emptySetRule"].Head.Value.(*ast.SetLit); !ok {
		t.Fatalf("emptySetRule: got %T, want *ast.SetLit", byName["emptySetRule"].Head.Value)
	}
}

func TestParseNegationAndNumberKinds(t *testing.T) {
	mod := parseModule(t, `package p

deny { not input.allowed }
pi := 3.14
count := 42
`)
	lit := mod.Rules[0].Body[0].(*ast.ExprLiteral)
	if !lit.Negated {
		t.Fatal("expected a negated literal")
	}

	byName := map[string]*ast.Rule{}
	for _, r := range mod.Rules {
		byName[r.Name] = r
	}
	pi := byName["pi"].Head.Value.(*ast.NumberLit)
	if pi.IsInt {
		t.Fatal("3.14 should not parse as an int literal")
	}
	count := byName["count"].Head.Value.(*ast.NumberLit)
	if !count.IsInt || count.Int != 42 {
		t.Fatalf("got %+v, want IsInt=true Int=42", count)
	}
}

func TestParserRecordsErrorOnMalformedRule(t *testing.T) {
	l := lexer.New("package p\n\nallow :=\n")
	p := New(l)
	p.ParseModule()
	if len(p.Errors()) == 0 {
		t.Fatal("expected at least one parse error for a rule with no value expression")
	}
}

func TestParseExpressionStandalone(t *testing.T) {
	l := lexer.New(`input.user.roles[0] == "admin"`)
	p := New(l)
	expr := p.ParseExpression()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", expr)
	}
	if _, ok := bin.Left.(*ast.Reference); !ok {
		t.Fatalf("got left %T, want *ast.Reference", bin.Left)
	}
}

func TestParseUnifyRuleHead(t *testing.T) {
	mod := parseModule(t, `package p

default allow = false
allow = true { input.admin }
score["a"] = 1
`)
	if len(mod.Rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(mod.Rules))
	}
	if !mod.Rules[0].Head.IsDefault || mod.Rules[0].Head.Kind != ast.CompleteRule {
		t.Fatalf("got head %+v, want a default complete rule", mod.Rules[0].Head)
	}
	if mod.Rules[2].Head.Kind != ast.PartialObjectRule {
		t.Fatalf("got kind %v, want PartialObjectRule", mod.Rules[2].Head.Kind)
	}
}

func TestParseNestedPartialObjectHead(t *testing.T) {
	mod := parseModule(t, `package p

acl["alice"]["read"] := true
`)
	r := mod.Rules[0]
	if r.Head.Kind != ast.PartialObjectRule || !r.Head.Nested {
		t.Fatalf("got head %+v, want a nested PartialObjectRule", r.Head)
	}
	inner, ok := r.Head.ObjectVal.(*ast.ObjectLit)
	if !ok || len(inner.Pairs) != 1 {
		t.Fatalf("got value %T, want a one-pair object literal", r.Head.ObjectVal)
	}
}

func TestParseInfixIn(t *testing.T) {
	mod := parseModule(t, `package p

ok { "admin" in input.roles }
`)
	lit, ok := mod.Rules[0].Body[0].(*ast.ExprLiteral)
	if !ok {
		t.Fatalf("got literal %T, want *ast.ExprLiteral", mod.Rules[0].Body[0])
	}
	bin, ok := lit.Expression.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got expression %T, want *ast.BinaryExpr", lit.Expression)
	}
	if bin.Op != token.IN {
		t.Fatalf("got op %v, want IN", bin.Op)
	}
}
