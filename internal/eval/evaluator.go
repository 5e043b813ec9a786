// Package eval implements Ward's nondeterministic evaluator: given
// a compiled module, an input document, and a data document, it searches for
// every binding set satisfying a rule's body and folds the results into that
// rule's value according to its kind.
package eval

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
	"github.com/wardlang/ward/internal/value"
)

// evalExpr evaluates expr to a single deterministic Value given the current
// bindings. It is used once an expression's variables are already resolved
// by the surrounding nondeterministic search; callers that need to
// discover new bindings (e.g. an unbound index inside a Reference) must go
// through evalValueNondet instead.
func evalExpr(expr ast.Expr, env *Environment, b Bindings) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.NullLit:
		return value.Null, nil
	case *ast.BoolLit:
		return value.Bool(e.Value), nil
	case *ast.NumberLit:
		if e.IsInt {
			return value.Int(e.Int), nil
		}
		return value.Float(e.Float), nil
	case *ast.StringLit:
		return value.String(e.Value), nil
	case *ast.Variable:
		return evalVariable(e, env, b)
	case *ast.Reference:
		return evalReference(e, env, b)
	case *ast.BinaryExpr:
		return evalBinary(e, env, b)
	case *ast.UnaryExpr:
		return evalUnary(e, env, b)
	case *ast.ArrayLit:
		elems := make([]value.Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := evalExpr(el, env, b)
			if err != nil {
				return value.Undefined, err
			}
			elems[i] = v
		}
		return value.Array(elems), nil
	case *ast.SetLit:
		elems := make([]value.Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := evalExpr(el, env, b)
			if err != nil {
				return value.Undefined, err
			}
			elems[i] = v
		}
		return value.Set(elems), nil
	case *ast.ObjectLit:
		ob := value.NewObjectBuilder()
		for _, pr := range e.Pairs {
			kv, err := evalExpr(pr.Key, env, b)
			if err != nil {
				return value.Undefined, err
			}
			if kv.IsUndefined() {
				return value.Undefined, nil
			}
			if kv.Kind() != value.KindString {
				return value.Undefined, errf(e.Pos(), "object key must be a string, got %s", kv.Kind())
			}
			vv, err := evalExpr(pr.Value, env, b)
			if err != nil {
				return value.Undefined, err
			}
			if ob.Set(kv.Str(), vv) {
				return value.Undefined, errf(e.Pos(), "duplicate object key %q", kv.Str())
			}
		}
		return ob.Build(), nil
	case *ast.ArrayCompr:
		return evalArrayCompr(e, env, b)
	case *ast.SetCompr:
		return evalSetCompr(e, env, b)
	case *ast.ObjectCompr:
		return evalObjectCompr(e, env, b)
	case *ast.Every:
		return evalEvery(e, env, b)
	case *ast.Call:
		return evalCall(e, env, b)
	default:
		return value.Undefined, errf(expr.Pos(), "cannot evaluate expression of type %T", expr)
	}
}

func evalVariable(v *ast.Variable, env *Environment, b Bindings) (value.Value, error) {
	switch v.Name {
	case "_":
		return value.Undefined, errf(v.Pos(), "wildcard cannot be used as a value")
	case "input":
		return env.Input(), nil
	case "data":
		return env.Data(), nil
	}
	if bound, ok := b.get(v.Name); ok {
		return bound, nil
	}
	if local, ok := env.Lookup(v.Name); ok {
		return local, nil
	}
	if segs, ok := env.ImportTarget(v.Name); ok {
		return evalFromDottedPath(segs, nil, env, b)
	}
	if _, ok := env.Rules(v.Name); ok {
		return evalRuleRef(v.Name, env)
	}
	return value.Undefined, nil
}

func evalReference(ref *ast.Reference, env *Environment, b Bindings) (value.Value, error) {
	if name, rest, ok := resolveDataRuleName(ref, env); ok {
		v, err := evalRuleRef(name, env)
		if err != nil {
			return value.Undefined, err
		}
		return applyPath(v, rest, env, b)
	}
	if segs, ok := aliasBase(ref.Base, env, b); ok {
		return evalFromDottedPath(segs, ref.Path, env, b)
	}
	base, err := evalExpr(ref.Base, env, b)
	if err != nil {
		return value.Undefined, err
	}
	return applyPath(base, ref.Path, env, b)
}

// aliasBase reports the import target segments a reference's base resolves
// to. It only fires when the base name is not a local binding, since local
// bindings take precedence over aliases.
func aliasBase(base ast.Expr, env *Environment, b Bindings) ([]string, bool) {
	v, ok := base.(*ast.Variable)
	if !ok || v.Name == "input" || v.Name == "data" {
		return nil, false
	}
	if _, bound := b.get(v.Name); bound {
		return nil, false
	}
	if _, bound := env.Lookup(v.Name); bound {
		return nil, false
	}
	return env.ImportTarget(v.Name)
}

// evalFromDottedPath resolves a statically known dotted path (an import's
// target, rooted at "data" or "input") plus a further reference path,
// substituting a local rule's evaluated value when the path names one.
func evalFromDottedPath(segs []string, rest []ast.RefArg, env *Environment, b Bindings) (value.Value, error) {
	base, remaining, err := resolveDottedBase(segs, env)
	if err != nil {
		return value.Undefined, err
	}
	for _, s := range remaining {
		if base.IsUndefined() {
			return value.Undefined, nil
		}
		base = base.FetchReference(value.String(s))
	}
	return applyPath(base, rest, env, b)
}

// resolveDottedBase evaluates a statically known dotted path down to the
// first rule substitution point (or to its end, if none applies), returning
// the resulting value and any unconsumed trailing segments still to fetch.
func resolveDottedBase(segs []string, env *Environment) (value.Value, []string, error) {
	if len(segs) == 0 {
		return value.Undefined, nil, nil
	}
	root, tail := segs[0], segs[1:]
	switch root {
	case "data":
		pkgPath := env.PackagePath()
		if len(tail) >= len(pkgPath)+1 && prefixMatches(tail, pkgPath) {
			name := tail[len(pkgPath)]
			if _, ok := env.Rules(name); ok {
				v, err := evalRuleRef(name, env)
				if err != nil {
					return value.Undefined, nil, err
				}
				return v, tail[len(pkgPath)+1:], nil
			}
		}
		return env.Data(), tail, nil
	case "input":
		return env.Input(), tail, nil
	default:
		return value.Undefined, nil, nil
	}
}

func prefixMatches(tail, pkgPath []string) bool {
	for i, seg := range pkgPath {
		if tail[i] != seg {
			return false
		}
	}
	return true
}

func applyPath(base value.Value, path []ast.RefArg, env *Environment, b Bindings) (value.Value, error) {
	cur := base
	for _, seg := range path {
		if cur.IsUndefined() {
			return value.Undefined, nil
		}
		var key value.Value
		if seg.IsDot {
			key = value.String(seg.Name)
		} else {
			v, err := evalExpr(seg.Expr, env, b)
			if err != nil {
				return value.Undefined, err
			}
			key = v
		}
		cur = cur.FetchReference(key)
	}
	return cur, nil
}

// resolveDataRuleName mirrors the compiler's static dependency resolution
// (internal/compiler/deps.go) at runtime: data.<pkg...>.<name> resolves to a
// local rule when <pkg...> matches this environment's own package path.
func resolveDataRuleName(ref *ast.Reference, env *Environment) (string, []ast.RefArg, bool) {
	base, ok := ref.Base.(*ast.Variable)
	if !ok || base.Name != "data" {
		return "", nil, false
	}
	pkgPath := env.PackagePath()
	if len(ref.Path) < len(pkgPath)+1 {
		return "", nil, false
	}
	for i, seg := range pkgPath {
		if !ref.Path[i].IsDot || ref.Path[i].Name != seg {
			return "", nil, false
		}
	}
	nameSeg := ref.Path[len(pkgPath)]
	if !nameSeg.IsDot {
		return "", nil, false
	}
	if _, ok := env.Rules(nameSeg.Name); ok {
		return nameSeg.Name, ref.Path[len(pkgPath)+1:], true
	}
	return "", nil, false
}

func evalBinary(e *ast.BinaryExpr, env *Environment, b Bindings) (value.Value, error) {
	left, err := evalExpr(e.Left, env, b)
	if err != nil {
		return value.Undefined, err
	}
	right, err := evalExpr(e.Right, env, b)
	if err != nil {
		return value.Undefined, err
	}
	return applyBinaryOp(e.Op, left, right, e.Pos())
}

func applyBinaryOp(op token.Kind, left, right value.Value, pos token.Position) (value.Value, error) {
	switch op {
	case token.EQ:
		if left.IsUndefined() || right.IsUndefined() {
			return value.Undefined, nil
		}
		return value.Bool(value.Equal(left, right)), nil
	case token.NEQ:
		if left.IsUndefined() || right.IsUndefined() {
			return value.Undefined, nil
		}
		return value.Bool(!value.Equal(left, right)), nil
	case token.LT, token.LTE, token.GT, token.GTE:
		return compareOrdered(op, left, right, pos)
	case token.PLUS:
		if left.Kind() == value.KindNumber && right.Kind() == value.KindNumber {
			return value.AddNumbers(left, right), nil
		}
		return value.Undefined, nil
	case token.MINUS:
		if left.Kind() == value.KindNumber && right.Kind() == value.KindNumber {
			return numSub(left, right), nil
		}
		return value.Undefined, nil
	case token.STAR:
		if left.Kind() == value.KindNumber && right.Kind() == value.KindNumber {
			return numMul(left, right), nil
		}
		return value.Undefined, nil
	case token.SLASH:
		if left.Kind() == value.KindNumber && right.Kind() == value.KindNumber {
			if right.Float() == 0 {
				return value.Undefined, nil
			}
			return value.Float(left.Float() / right.Float()), nil
		}
		return value.Undefined, nil
	case token.PERCENT:
		if left.IsInt() && right.IsInt() {
			if right.Int() == 0 {
				return value.Undefined, nil
			}
			return value.Int(left.Int() % right.Int()), nil
		}
		return value.Undefined, nil
	case token.PIPE:
		return value.Bool(left.Truthy() || right.Truthy()), nil
	case token.AMP:
		return value.Bool(left.Truthy() && right.Truthy()), nil
	case token.IN:
		return memberOf(left, right), nil
	default:
		return value.Undefined, errf(pos, "operator %s cannot be evaluated as a value expression", op)
	}
}

// memberOf implements the `in` operator: element membership for arrays and
// sets, key membership for objects, undefined for any other right-hand
// kind.
func memberOf(left, right value.Value) value.Value {
	if left.IsUndefined() {
		return value.Undefined
	}
	switch right.Kind() {
	case value.KindArray:
		for _, elem := range right.Array() {
			if value.Equal(left, elem) {
				return value.True
			}
		}
		return value.False
	case value.KindSet:
		return value.Bool(right.SetContains(left))
	case value.KindObject:
		if left.Kind() != value.KindString {
			return value.False
		}
		_, ok := right.ObjectGet(left.Str())
		return value.Bool(ok)
	default:
		return value.Undefined
	}
}

func compareOrdered(op token.Kind, left, right value.Value, pos token.Position) (value.Value, error) {
	var cmp int
	switch {
	case left.Kind() == value.KindNumber && right.Kind() == value.KindNumber:
		lf, rf := left.Float(), right.Float()
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	case left.Kind() == value.KindString && right.Kind() == value.KindString:
		switch {
		case left.Str() < right.Str():
			cmp = -1
		case left.Str() > right.Str():
			cmp = 1
		default:
			cmp = 0
		}
	default:
		return value.Undefined, nil
	}
	switch op {
	case token.LT:
		return value.Bool(cmp < 0), nil
	case token.LTE:
		return value.Bool(cmp <= 0), nil
	case token.GT:
		return value.Bool(cmp > 0), nil
	default: // token.GTE
		return value.Bool(cmp >= 0), nil
	}
}

func numSub(a, b value.Value) value.Value {
	if a.IsInt() && b.IsInt() {
		return value.Int(a.Int() - b.Int())
	}
	return value.Float(a.Float() - b.Float())
}

func numMul(a, b value.Value) value.Value {
	if a.IsInt() && b.IsInt() {
		return value.Int(a.Int() * b.Int())
	}
	return value.Float(a.Float() * b.Float())
}

func evalUnary(e *ast.UnaryExpr, env *Environment, b Bindings) (value.Value, error) {
	operand, err := evalExpr(e.Operand, env, b)
	if err != nil {
		return value.Undefined, err
	}
	return evalUnaryValue(e, operand)
}
