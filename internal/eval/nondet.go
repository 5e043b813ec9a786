package eval

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
	"github.com/wardlang/ward/internal/value"
)

// outcome pairs one candidate binding set with the value an expression
// evaluates to under it — the unit of work for nondeterministic search,
// where a reference with an unbound index position enumerates every
// matching binding.
type outcome struct {
	b Bindings
	v value.Value
}

// evalValueNondet evaluates expr under every way its free, as-yet-unbound
// variables can be resolved against the data it indexes into. Expressions
// with no such unbound positions fall through to the single deterministic
// result from evalExpr.
func evalValueNondet(expr ast.Expr, env *Environment, b Bindings) ([]outcome, error) {
	switch e := expr.(type) {
	case *ast.Reference:
		return evalReferenceNondet(e, env, b)
	case *ast.BinaryExpr:
		lefts, err := evalValueNondet(e.Left, env, b)
		if err != nil {
			return nil, err
		}
		var out []outcome
		for _, l := range lefts {
			rights, err := evalValueNondet(e.Right, env, l.b)
			if err != nil {
				return nil, err
			}
			for _, r := range rights {
				v, err := applyBinaryOp(e.Op, l.v, r.v, e.Pos())
				if err != nil {
					return nil, err
				}
				out = append(out, outcome{b: r.b, v: v})
			}
		}
		return out, nil
	case *ast.UnaryExpr:
		operands, err := evalValueNondet(e.Operand, env, b)
		if err != nil {
			return nil, err
		}
		var out []outcome
		for _, o := range operands {
			uv, err := evalUnaryValue(e, o.v)
			if err != nil {
				return nil, err
			}
			out = append(out, outcome{b: o.b, v: uv})
		}
		return out, nil
	case *ast.ArrayLit:
		combos, err := evalArgsNondet(e.Elements, env, b)
		if err != nil {
			return nil, err
		}
		out := make([]outcome, len(combos))
		for i, c := range combos {
			out[i] = outcome{b: c.b, v: value.Array(c.vals)}
		}
		return out, nil
	case *ast.SetLit:
		combos, err := evalArgsNondet(e.Elements, env, b)
		if err != nil {
			return nil, err
		}
		out := make([]outcome, len(combos))
		for i, c := range combos {
			out[i] = outcome{b: c.b, v: value.Set(c.vals)}
		}
		return out, nil
	case *ast.Call:
		combos, err := evalArgsNondet(e.Args, env, b)
		if err != nil {
			return nil, err
		}
		var out []outcome
		for _, c := range combos {
			v, err := callWithArgs(e, c.vals, env, c.b)
			if err != nil {
				return nil, err
			}
			out = append(out, outcome{b: c.b, v: v})
		}
		return out, nil
	default:
		v, err := evalExpr(expr, env, b)
		if err != nil {
			return nil, err
		}
		return []outcome{{b: b, v: v}}, nil
	}
}

func evalUnaryValue(e *ast.UnaryExpr, operand value.Value) (value.Value, error) {
	switch e.Op {
	case token.MINUS:
		if operand.Kind() != value.KindNumber {
			// Unary minus negates a numeric operand, anything else is undefined.
			return value.Undefined, nil
		}
		if operand.IsInt() {
			return value.Int(-operand.Int()), nil
		}
		return value.Float(-operand.Float()), nil
	case token.NOT:
		return value.Bool(!operand.Truthy()), nil
	default:
		return value.Undefined, errf(e.Pos(), "unknown unary operator %s", e.Op)
	}
}

// argCombo is one way of threading bindings through a left-to-right argument
// list, paired with the values each argument evaluated to under it.
type argCombo struct {
	b    Bindings
	vals []value.Value
}

func evalArgsNondet(exprs []ast.Expr, env *Environment, b Bindings) ([]argCombo, error) {
	results := []argCombo{{b: b}}
	for _, e := range exprs {
		var next []argCombo
		for _, r := range results {
			outs, err := evalValueNondet(e, env, r.b)
			if err != nil {
				return nil, err
			}
			for _, o := range outs {
				vals := make([]value.Value, len(r.vals), len(r.vals)+1)
				copy(vals, r.vals)
				vals = append(vals, o.v)
				next = append(next, argCombo{b: o.b, vals: vals})
			}
		}
		results = next
	}
	return results, nil
}

// evalReferenceNondet walks ref's path, branching whenever a bracket segment
// is a not-yet-bound variable: every array index / object key at that point
// becomes one outcome, each carrying the variable bound to its index/key.
func evalReferenceNondet(ref *ast.Reference, env *Environment, b Bindings) ([]outcome, error) {
	var seeds []outcome
	if name, rest, ok := resolveDataRuleName(ref, env); ok {
		v, err := evalRuleRef(name, env)
		if err != nil {
			return nil, err
		}
		return walkPathNondet(rest, env, []outcome{{b: b, v: v}})
	}
	if segs, ok := aliasBase(ref.Base, env, b); ok {
		base, remaining, err := resolveDottedBase(segs, env)
		if err != nil {
			return nil, err
		}
		for _, s := range remaining {
			if base.IsUndefined() {
				return nil, nil
			}
			base = base.FetchReference(value.String(s))
		}
		return walkPathNondet(ref.Path, env, []outcome{{b: b, v: base}})
	}
	bases, err := evalValueNondet(ref.Base, env, b)
	if err != nil {
		return nil, err
	}
	seeds = bases
	return walkPathNondet(ref.Path, env, seeds)
}

func walkPathNondet(path []ast.RefArg, env *Environment, seeds []outcome) ([]outcome, error) {
	cur := seeds
	for _, seg := range path {
		var next []outcome
		for _, o := range cur {
			if o.v.IsUndefined() {
				continue
			}
			if seg.IsDot {
				fv := o.v.FetchReference(value.String(seg.Name))
				if !fv.IsUndefined() {
					next = append(next, outcome{b: o.b, v: fv})
				}
				continue
			}
			if varNode, ok := seg.Expr.(*ast.Variable); ok && !reservedRefVar(varNode.Name) {
				wild := varNode.Name == "_"
				if !wild {
					if existing, bound := o.b.get(varNode.Name); bound {
						fv := o.v.FetchReference(existing)
						if !fv.IsUndefined() {
							next = append(next, outcome{b: o.b, v: fv})
						}
						continue
					}
					if local, bound := env.Lookup(varNode.Name); bound {
						fv := o.v.FetchReference(local)
						if !fv.IsUndefined() {
							next = append(next, outcome{b: o.b, v: fv})
						}
						continue
					}
				}
				switch o.v.Kind() {
				case value.KindArray:
					for idx, elem := range o.v.Array() {
						nb := o.b
						if !wild {
							nb = o.b.set(varNode.Name, value.Int(int64(idx)))
						}
						next = append(next, outcome{b: nb, v: elem})
					}
				case value.KindObject:
					for _, k := range o.v.ObjectKeys() {
						ev, _ := o.v.ObjectGet(k)
						nb := o.b
						if !wild {
							nb = o.b.set(varNode.Name, value.String(k))
						}
						next = append(next, outcome{b: nb, v: ev})
					}
				}
				continue
			}
			keys, err := evalValueNondet(seg.Expr, env, o.b)
			if err != nil {
				return nil, err
			}
			for _, kv := range keys {
				fv := o.v.FetchReference(kv.v)
				if !fv.IsUndefined() {
					next = append(next, outcome{b: kv.b, v: fv})
				}
			}
		}
		cur = next
	}
	return cur, nil
}

func reservedRefVar(name string) bool {
	return name == "input" || name == "data"
}
