package eval

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/value"
)

// unifyAll matches pattern against val under b and returns every binding
// set under which the match holds. Variables bind freely the
// first time they appear and must agree with their existing binding on
// every later appearance; array literals destructure element-wise with the
// Cartesian product of per-element solutions; object literals enumerate
// compatible key assignments (variable keys allowed, each value key
// consumed at most once) against a value object of identical cardinality;
// anything else is evaluated and compared by value.
func unifyAll(pattern ast.Expr, val value.Value, env *Environment, b Bindings) []Bindings {
	if val.IsUndefined() {
		return nil
	}
	switch p := pattern.(type) {
	case *ast.Variable:
		if p.Name == "_" {
			return []Bindings{b}
		}
		if existing, ok := b.get(p.Name); ok {
			if value.Equal(existing, val) {
				return []Bindings{b}
			}
			return nil
		}
		return []Bindings{b.set(p.Name, val)}
	case *ast.ArrayLit:
		if val.Kind() != value.KindArray || val.Len() != len(p.Elements) {
			return nil
		}
		arr := val.Array()
		frontier := []Bindings{b}
		for i, elPattern := range p.Elements {
			var next []Bindings
			for _, cur := range frontier {
				next = append(next, unifyAll(elPattern, arr[i], env, cur)...)
			}
			if len(next) == 0 {
				return nil
			}
			frontier = next
		}
		return frontier
	case *ast.ObjectLit:
		if val.Kind() != value.KindObject || val.Len() != len(p.Pairs) {
			return nil
		}
		return unifyObjectPairs(p.Pairs, val, val.ObjectKeys(), map[string]bool{}, env, b)
	default:
		outcomes, err := evalValueNondet(pattern, env, b)
		if err != nil {
			return nil
		}
		var results []Bindings
		for _, o := range outcomes {
			if !o.v.IsUndefined() && value.Equal(o.v, val) {
				results = append(results, o.b)
			}
		}
		return results
	}
}

// unifyObjectPairs matches the remaining pattern pairs against the value
// object's still-unconsumed keys, backtracking over which value key each
// pattern key binds to. Keys claimed by an earlier pair are excluded so no
// value entry matches twice.
func unifyObjectPairs(pairs []ast.ObjectPair, obj value.Value, keys []string, consumed map[string]bool, env *Environment, b Bindings) []Bindings {
	if len(pairs) == 0 {
		return []Bindings{b}
	}
	pr := pairs[0]
	var results []Bindings
	for _, k := range keys {
		if consumed[k] {
			continue
		}
		fieldVal, ok := obj.ObjectGet(k)
		if !ok {
			continue
		}
		for _, kb := range unifyAll(pr.Key, value.String(k), env, b) {
			for _, vb := range unifyAll(pr.Value, fieldVal, env, kb) {
				consumed[k] = true
				results = append(results, unifyObjectPairs(pairs[1:], obj, keys, consumed, env, vb)...)
				consumed[k] = false
			}
		}
	}
	return results
}

// unify is the single-solution form of unifyAll for call sites that need
// at most one match: `:=` targets take the unique binding set, never an
// ambiguous one.
func unify(pattern ast.Expr, val value.Value, env *Environment, b Bindings) (Bindings, bool) {
	sols := unifyAll(pattern, val, env, b)
	if len(sols) != 1 {
		return nil, false
	}
	return sols[0], true
}

// unifyExprs handles `left = right`, trying
// left-as-pattern against right's value(s) first, then the reverse when
// that direction yields nothing.
func unifyExprs(left, right ast.Expr, env *Environment, b Bindings) ([]Bindings, error) {
	rightOutcomes, err := evalValueNondet(right, env, b)
	if err == nil && len(rightOutcomes) > 0 {
		var results []Bindings
		for _, o := range rightOutcomes {
			results = append(results, unifyAll(left, o.v, env, o.b)...)
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	leftOutcomes, lerr := evalValueNondet(left, env, b)
	if lerr != nil {
		if err != nil {
			return nil, err
		}
		return nil, lerr
	}
	var results []Bindings
	for _, o := range leftOutcomes {
		results = append(results, unifyAll(right, o.v, env, o.b)...)
	}
	return results, nil
}
