package eval

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
	"github.com/wardlang/ward/internal/value"
)

// solveBody returns every binding set extending b that satisfies the
// ordered conjunction of literals in body, evaluated left to right; each
// literal may bind new variables or fail.
func solveBody(body []ast.Literal, env *Environment, b Bindings) ([]Bindings, error) {
	return solveFrom(body, 0, env, b)
}

func solveFrom(body []ast.Literal, i int, env *Environment, b Bindings) ([]Bindings, error) {
	if i == len(body) {
		return []Bindings{b}, nil
	}
	switch lit := body[i].(type) {
	case *ast.SomeDecl:
		exts, err := solveSomeDecl(lit, env, b)
		if err != nil {
			return nil, err
		}
		return solveContinuations(body, i, exts, env)
	case *ast.ExprLiteral:
		return solveExprLiteralStep(lit, body, i, env, b)
	default:
		return nil, errf(body[i].Pos(), "unsupported literal kind %T", lit)
	}
}

func solveContinuations(body []ast.Literal, i int, exts []Bindings, env *Environment) ([]Bindings, error) {
	var out []Bindings
	for _, eb := range exts {
		rest, err := solveFrom(body, i+1, env, eb)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}
	return out, nil
}

func solveExprLiteralStep(lit *ast.ExprLiteral, body []ast.Literal, i int, env *Environment, b Bindings) ([]Bindings, error) {
	scopedEnv := env
	if len(lit.With) > 0 {
		var err error
		scopedEnv, err = applyWithChain(env, lit.With, b)
		if err != nil {
			return nil, err
		}
		if scopedEnv == nil {
			// A with path key evaluated to undefined: the whole literal
			// fails.
			return nil, nil
		}
	}

	if lit.Negated {
		ok, err := evalNegatedLiteral(lit.Expression, scopedEnv, b)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return solveFrom(body, i+1, env, b)
	}

	exts, err := solveExprLiteral(lit.Expression, scopedEnv, b)
	if err != nil {
		return nil, err
	}
	return solveContinuations(body, i, exts, env)
}

// evalNegatedLiteral implements `not expr`: succeeds (the enclosing
// conjunct passes) iff expr has no satisfying binding — i.e. is undefined or
// falsy under every way its free variables could be bound.
func evalNegatedLiteral(expr ast.Expr, env *Environment, b Bindings) (bool, error) {
	outcomes, err := evalValueNondet(expr, env, b)
	if err != nil {
		return false, err
	}
	for _, o := range outcomes {
		if o.v.Truthy() {
			return false, nil
		}
	}
	return true, nil
}

// solveExprLiteral evaluates one non-negated literal expression, producing
// every binding extension under which it holds:
//   - `pattern := value` binds pattern fresh against value's result(s)
//   - `left = right` unifies both sides, trying either as the pattern
//   - anything else is a plain condition: every nondeterministic outcome
//     whose value is truthy extends the bindings
func solveExprLiteral(expr ast.Expr, env *Environment, b Bindings) ([]Bindings, error) {
	if be, ok := expr.(*ast.BinaryExpr); ok {
		switch be.Op {
		case token.ASSIGN:
			outcomes, err := evalValueNondet(be.Right, env, b)
			if err != nil {
				return nil, err
			}
			var out []Bindings
			for _, o := range outcomes {
				if nb, ok := unify(be.Left, o.v, env, o.b); ok {
					out = append(out, nb)
				}
			}
			return out, nil
		case token.UNIFY:
			return unifyExprs(be.Left, be.Right, env, b)
		}
	}

	outcomes, err := evalValueNondet(expr, env, b)
	if err != nil {
		return nil, err
	}
	var out []Bindings
	for _, o := range outcomes {
		if o.v.Truthy() {
			out = append(out, o.b)
		}
	}
	return out, nil
}

// solveSomeDecl implements `some x, y` (fresh, unbound locals introduced for
// the rest of the body — no extension here since they carry no value yet)
// and `some x in collection` / `some x, y in collection` (iterates the
// collection's elements, or key/value pairs, binding one combination per
// outcome).
func solveSomeDecl(decl *ast.SomeDecl, env *Environment, b Bindings) ([]Bindings, error) {
	if decl.Collection == nil {
		// `some x` introduces x as a fresh local with no value yet; later
		// unifications in the body populate it.
		return []Bindings{b}, nil
	}

	outcomes, err := evalValueNondet(decl.Collection, env, b)
	if err != nil {
		return nil, err
	}
	var out []Bindings
	for _, o := range outcomes {
		col := o.v
		switch col.Kind() {
		case value.KindArray:
			for idx, elem := range col.Array() {
				nb, ok := bindSomeVars(decl.Vars, []value.Value{value.Int(int64(idx)), elem}, o.b)
				if ok {
					out = append(out, nb)
				}
			}
		case value.KindSet:
			for _, elem := range col.SetItems() {
				nb, ok := bindSomeVars(decl.Vars, []value.Value{elem}, o.b)
				if ok {
					out = append(out, nb)
				}
			}
		case value.KindObject:
			for _, k := range col.ObjectKeys() {
				ev, _ := col.ObjectGet(k)
				nb, ok := bindSomeVars(decl.Vars, []value.Value{value.String(k), ev}, o.b)
				if ok {
					out = append(out, nb)
				}
			}
		}
	}
	return out, nil
}

// bodyLocalVars collects the variable names a body introduces itself:
// `some` declarations, `:=` targets, and variables appearing on either side
// of `=`. Nested comprehension and `every`
// bodies shadow their own locals and are not descended into.
func bodyLocalVars(body []ast.Literal) map[string]bool {
	locals := map[string]bool{}
	for _, lit := range body {
		switch l := lit.(type) {
		case *ast.SomeDecl:
			for _, v := range l.Vars {
				addLocalVar(locals, v)
			}
		case *ast.ExprLiteral:
			if be, ok := l.Expression.(*ast.BinaryExpr); ok {
				switch be.Op {
				case token.ASSIGN:
					collectVars(be.Left, locals)
				case token.UNIFY:
					collectVars(be.Left, locals)
					collectVars(be.Right, locals)
				}
			}
		}
	}
	return locals
}

func addLocalVar(locals map[string]bool, name string) {
	if name == "" || name == "_" || name == "input" || name == "data" {
		return
	}
	locals[name] = true
}

func collectVars(expr ast.Expr, locals map[string]bool) {
	switch e := expr.(type) {
	case *ast.Variable:
		addLocalVar(locals, e.Name)
	case *ast.Reference:
		collectVars(e.Base, locals)
		for _, arg := range e.Path {
			if !arg.IsDot && arg.Expr != nil {
				collectVars(arg.Expr, locals)
			}
		}
	case *ast.BinaryExpr:
		collectVars(e.Left, locals)
		collectVars(e.Right, locals)
	case *ast.UnaryExpr:
		collectVars(e.Operand, locals)
	case *ast.ArrayLit:
		for _, el := range e.Elements {
			collectVars(el, locals)
		}
	case *ast.SetLit:
		for _, el := range e.Elements {
			collectVars(el, locals)
		}
	case *ast.ObjectLit:
		for _, pr := range e.Pairs {
			collectVars(pr.Key, locals)
			collectVars(pr.Value, locals)
		}
	case *ast.Call:
		for _, arg := range e.Args {
			collectVars(arg, locals)
		}
	}
}

// shadowLocals returns b with every body-local name removed, isolating the
// body's variables from same-named bindings in the enclosing scope:
// comprehension and `every` bodies shadow their locals the same way rule
// bodies do.
func shadowLocals(body []ast.Literal, b Bindings) Bindings {
	locals := bodyLocalVars(body)
	if len(locals) == 0 {
		return b
	}
	out := make(Bindings, len(b))
	for k, v := range b {
		if locals[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// bindSomeVars binds decl.Vars against candidate (key, value) or (value)
// components: one var binds the element/value; two vars bind
// (index-or-key, value).
func bindSomeVars(vars []string, components []value.Value, b Bindings) (Bindings, bool) {
	var targets []value.Value
	switch len(vars) {
	case 1:
		targets = components[len(components)-1:]
	case 2:
		if len(components) != 2 {
			return b, false
		}
		targets = components
	default:
		return b, false
	}
	cur := b
	for i, name := range vars {
		if name == "_" {
			continue
		}
		if existing, ok := cur.get(name); ok {
			if !value.Equal(existing, targets[i]) {
				return nil, false
			}
			continue
		}
		cur = cur.set(name, targets[i])
	}
	return cur, true
}
