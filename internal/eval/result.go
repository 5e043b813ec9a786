package eval

import (
	"strconv"

	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
	"github.com/wardlang/ward/internal/value"
)

// Result is the outcome of evaluating one query path against an
// Environment: Value is meaningless when Defined is false.
type Result struct {
	Value   value.Value
	Defined bool
}

// EvaluateQuery resolves a dotted query path against env: the first segment
// names a rule (evaluated through the memoized rule machinery) or the
// "input"/"data" roots; remaining segments index into the result as object
// fields or, where the current value is an array and the segment parses as an
// integer, array indices. A "data" head followed by the module's own package
// path and a known rule name (e.g. "data.example.allow") resolves straight
// through to that rule, rather than indexing into the literal data document.
func EvaluateQuery(env *Environment, path []string) (Result, error) {
	if len(path) == 0 {
		return Result{}, errf(token.Position{}, "empty query path")
	}
	head, rest := path[0], path[1:]
	var cur value.Value
	switch head {
	case "input":
		cur = env.Input()
	case "data":
		if ruleName, afterRule, ok := matchPackageRule(rest, env); ok {
			v, err := evalRuleRef(ruleName, env)
			if err != nil {
				return Result{}, err
			}
			cur = v
			rest = afterRule
		} else {
			cur = env.Data()
		}
	default:
		v, err := evalRuleRef(head, env)
		if err != nil {
			return Result{}, err
		}
		cur = v
	}
	for _, seg := range rest {
		if cur.IsUndefined() {
			break
		}
		cur = fetchSegment(cur, seg)
	}
	return Result{Value: cur, Defined: !cur.IsUndefined()}, nil
}

// matchPackageRule reports whether rest begins with env's own package path
// followed by a declared rule name, returning that rule name and the
// segments still left to index after it.
func matchPackageRule(rest []string, env *Environment) (string, []string, bool) {
	pkgPath := env.PackagePath()
	if len(rest) < len(pkgPath)+1 {
		return "", nil, false
	}
	for i, seg := range pkgPath {
		if rest[i] != seg {
			return "", nil, false
		}
	}
	name := rest[len(pkgPath)]
	if _, ok := env.Rules(name); !ok {
		return "", nil, false
	}
	return name, rest[len(pkgPath)+1:], true
}

func fetchSegment(cur value.Value, seg string) value.Value {
	if cur.Kind() == value.KindArray {
		if idx, err := strconv.ParseInt(seg, 10, 64); err == nil {
			return cur.FetchReference(value.Int(idx))
		}
		return value.Undefined
	}
	return cur.FetchReference(value.String(seg))
}

// EvaluateExpression evaluates a standalone query expression supplied
// directly as an AST node by treating it as a single-literal rule body. Each
// satisfying solution's bindings are candidates; the first is surfaced
// alongside the expression's value under those bindings. A query with no free
// variables simply succeeds or fails once, so the distinction from
// EvaluateQuery only matters for expressions like `some k; input[k] ==
// "target"`.
func EvaluateExpression(expr ast.Expr, env *Environment) (Result, map[string]value.Value, error) {
	lit := &ast.ExprLiteral{Expression: expr}
	solutions, err := solveBody([]ast.Literal{lit}, env, Bindings{})
	if err != nil {
		return Result{}, nil, err
	}
	if len(solutions) == 0 {
		return Result{Value: value.Undefined, Defined: false}, nil, nil
	}
	b := solutions[0]
	v, err := evalExpr(expr, env, b)
	if err != nil {
		return Result{}, nil, err
	}
	return Result{Value: v, Defined: !v.IsUndefined()}, map[string]value.Value(b), nil
}

// EvaluateAll evaluates every top-level rule in ruleOrder and assembles the
// defined ones into a single object — the result of a package-wide `ward
// eval` with no --query.
func EvaluateAll(env *Environment, ruleOrder []string) (value.Value, error) {
	ob := value.NewObjectBuilder()
	for _, name := range ruleOrder {
		if rs, ok := env.Rules(name); ok && len(rs) > 0 && rs[0].Head.Kind == ast.FunctionRule {
			// Functions have no value until called with arguments.
			continue
		}
		v, err := evalRuleRef(name, env)
		if err != nil {
			return value.Undefined, err
		}
		if v.IsUndefined() {
			continue
		}
		ob.Set(name, v)
	}
	return ob.Build(), nil
}
