// Package ward is Ward's public API: parse, compile, and evaluate
// a policy module against input/data documents. It is the only package the
// CLI (cmd/ward) and any other host program should import — everything
// under internal/ is plumbing reachable only through this contract.
package ward

import (
	"fmt"
	"strings"

	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/builtins"
	"github.com/wardlang/ward/internal/compiler"
	"github.com/wardlang/ward/internal/eval"
	"github.com/wardlang/ward/internal/lexer"
	"github.com/wardlang/ward/internal/parser"
	"github.com/wardlang/ward/internal/value"
)

// Result is the outcome of one evaluate call: a value, whether
// it is defined, the variable bindings its query solution produced, and any
// errors raised along the way (errors and an undefined result are distinct:
// a missing default surfaces as Success=false with no Errors at all).
type Result struct {
	Value    value.Value
	Success  bool
	Bindings map[string]value.Value
	Errors   []error
}

// Parse lexes and parses source into a Module. Only the first recorded
// lexer/parser error is returned; callers that need every diagnostic
// should use internal/lexer and internal/parser directly.
func Parse(source string) (*ast.Module, error) {
	l := lexer.New(source)
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := collectLexParseErrors(l, p); len(errs) > 0 {
		return mod, errs[0]
	}
	return mod, nil
}

func collectLexParseErrors(l *lexer.Lexer, p *parser.Parser) []error {
	var errs []error
	for _, e := range l.Errors() {
		errs = append(errs, e)
	}
	for _, e := range p.Errors() {
		errs = append(errs, e)
	}
	return errs
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%d error(s):\n%s", len(errs), strings.Join(msgs, "\n"))
}

// Compile parses source and compiles it against the default builtin
// registry.
func Compile(source string) (*compiler.CompiledModule, error) {
	return CompileWithRegistry(source, builtins.NewDefaultRegistry())
}

// CompileWithRegistry is Compile, but against an explicit builtin registry
// — used by callers (and tests) that register additional or replacement
// builtins before compiling (the function/builtin-name-collision check in
// function/builtin-name-collision check depends on which registry is
// active).
func CompileWithRegistry(source string, reg *builtins.Registry) (*compiler.CompiledModule, error) {
	mod, err := Parse(source)
	if err != nil {
		return nil, err
	}
	cm, cerrs := compiler.Compile(mod, reg.Names())
	if len(cerrs) > 0 {
		errs := make([]error, len(cerrs))
		for i, e := range cerrs {
			errs[i] = e
		}
		return nil, joinErrors(errs)
	}
	return cm, nil
}

// Evaluate is the one-shot convenience form: compile source then evaluate
// query against input and data. query may be "" (evaluate every rule in the
// module into one object), a dotted path string ("a.b.c"), or an ast.Expr
// parsed/constructed by the caller.
func Evaluate(source string, input, data value.Value, query any) (Result, error) {
	cm, err := Compile(source)
	if err != nil {
		return Result{}, err
	}
	p := &Policy{Module: cm, Registry: builtins.NewDefaultRegistry()}
	return p.Evaluate(input, data, query)
}

// Policy wraps a CompiledModule and its builtin registry for repeated
// evaluation.
type Policy struct {
	Module   *compiler.CompiledModule
	Registry *builtins.Registry
}

// NewPolicy compiles source against the default builtin registry.
func NewPolicy(source string) (*Policy, error) {
	cm, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return &Policy{Module: cm, Registry: builtins.NewDefaultRegistry()}, nil
}

// Evaluate runs query against input/data using p's compiled module and
// registry. Safe for concurrent use: every call builds its own
// eval.Environment ("An Environment is owned exclusively by the
// single evaluation it was built for").
func (p *Policy) Evaluate(input, data value.Value, query any) (Result, error) {
	imports := importTargets(p.Module)
	env := eval.NewEnvironment(p.Module.PackagePath, p.Module.RulesByName, imports, input, data, p.Registry)

	switch q := query.(type) {
	case nil:
		v, err := eval.EvaluateAll(env, p.Module.RuleOrder)
		if err != nil {
			return Result{Errors: []error{err}}, err
		}
		return Result{Value: v, Success: !v.IsUndefined()}, nil
	case string:
		if q == "" {
			v, err := eval.EvaluateAll(env, p.Module.RuleOrder)
			if err != nil {
				return Result{Errors: []error{err}}, err
			}
			return Result{Value: v, Success: !v.IsUndefined()}, nil
		}
		path, err := ParseQueryPath(q)
		if err != nil {
			return Result{Errors: []error{err}}, err
		}
		res, err := eval.EvaluateQuery(env, path)
		if err != nil {
			return Result{Errors: []error{err}}, err
		}
		return Result{Value: res.Value, Success: res.Defined}, nil
	case ast.Expr:
		res, bindings, err := eval.EvaluateExpression(q, env)
		if err != nil {
			return Result{Errors: []error{err}}, err
		}
		return Result{Value: res.Value, Success: res.Defined, Bindings: bindings}, nil
	case value.Value:
		return Result{Value: q, Success: !q.IsUndefined()}, nil
	default:
		return Result{}, fmt.Errorf("ward: unsupported query shape %T", query)
	}
}

// ParseQueryPath parses the "a.b.c" query-string shape: the
// first segment is the base (a rule name, or "input"/"data"), the rest are
// plain dot segments. An empty segment (leading/trailing/doubled dot)
// rejects.
func ParseQueryPath(q string) ([]string, error) {
	segs := strings.Split(q, ".")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("ward: invalid query path %q: empty segment", q)
		}
	}
	return segs, nil
}

func importTargets(cm *compiler.CompiledModule) map[string][]string {
	out := make(map[string][]string, len(cm.ImportsByAlias))
	for alias, imp := range cm.ImportsByAlias {
		out[alias] = strings.Split(imp.Path, ".")
	}
	return out
}
