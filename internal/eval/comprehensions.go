package eval

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/value"
)

// evalArrayCompr implements `[term | body]`: every binding set satisfying
// body contributes one element, in solution order. Body-local
// variables are shadowed from the enclosing bindings first, so a
// comprehension reuses names freely without clashing with its surroundings;
// solutions whose term is undefined are skipped.
func evalArrayCompr(e *ast.ArrayCompr, env *Environment, b Bindings) (value.Value, error) {
	solutions, err := solveBody(e.Body, env, shadowLocals(e.Body, b))
	if err != nil {
		return value.Undefined, err
	}
	items := make([]value.Value, 0, len(solutions))
	for _, sol := range solutions {
		v, err := evalExpr(e.Term, env, sol)
		if err != nil {
			return value.Undefined, err
		}
		if v.IsUndefined() {
			continue
		}
		items = append(items, v)
	}
	return value.Array(items), nil
}

// evalSetCompr implements `{term | body}`, deduplicating by structural
// equality like any other set construction.
func evalSetCompr(e *ast.SetCompr, env *Environment, b Bindings) (value.Value, error) {
	solutions, err := solveBody(e.Body, env, shadowLocals(e.Body, b))
	if err != nil {
		return value.Undefined, err
	}
	items := make([]value.Value, 0, len(solutions))
	for _, sol := range solutions {
		v, err := evalExpr(e.Term, env, sol)
		if err != nil {
			return value.Undefined, err
		}
		if v.IsUndefined() {
			continue
		}
		items = append(items, v)
	}
	return value.Set(items), nil
}

// evalObjectCompr implements `{key: value | body}`. Solutions with an
// undefined key or value are skipped; two solutions that produce the same
// key must agree on value, or construction fails.
func evalObjectCompr(e *ast.ObjectCompr, env *Environment, b Bindings) (value.Value, error) {
	solutions, err := solveBody(e.Body, env, shadowLocals(e.Body, b))
	if err != nil {
		return value.Undefined, err
	}
	ob := value.NewObjectBuilder()
	for _, sol := range solutions {
		kv, err := evalExpr(e.Key, env, sol)
		if err != nil {
			return value.Undefined, err
		}
		if kv.IsUndefined() {
			continue
		}
		if kv.Kind() != value.KindString {
			return value.Undefined, errf(e.Pos(), "object comprehension key must be a string, got %s", kv.Kind())
		}
		vv, err := evalExpr(e.Value, env, sol)
		if err != nil {
			return value.Undefined, err
		}
		if vv.IsUndefined() {
			continue
		}
		if existing, exists := ob.Get(kv.Str()); exists {
			if !value.Equal(existing, vv) {
				return value.Undefined, errf(e.Pos(), "object comprehension: conflicting values for key %q", kv.Str())
			}
			continue
		}
		ob.Set(kv.Str(), vv)
	}
	return ob.Build(), nil
}

// evalEvery implements universal quantification over a domain:
// true iff body holds for every element (array/set) or key/value pair
// (object) in domain; undefined if any one fails, or if the domain is
// undefined or not an iterable collection.
func evalEvery(e *ast.Every, env *Environment, b Bindings) (value.Value, error) {
	domain, err := evalExpr(e.Domain, env, b)
	if err != nil {
		return value.Undefined, err
	}
	base := shadowLocals(e.Body, b)
	switch domain.Kind() {
	case value.KindArray:
		for idx, elem := range domain.Array() {
			ok, err := everyHolds(e, env, base, value.Int(int64(idx)), elem)
			if err != nil {
				return value.Undefined, err
			}
			if !ok {
				return value.Undefined, nil
			}
		}
	case value.KindSet:
		for _, elem := range domain.SetItems() {
			ok, err := everyHolds(e, env, base, value.Undefined, elem)
			if err != nil {
				return value.Undefined, err
			}
			if !ok {
				return value.Undefined, nil
			}
		}
	case value.KindObject:
		for _, k := range domain.ObjectKeys() {
			v, _ := domain.ObjectGet(k)
			ok, err := everyHolds(e, env, base, value.String(k), v)
			if err != nil {
				return value.Undefined, err
			}
			if !ok {
				return value.Undefined, nil
			}
		}
	default:
		return value.Undefined, nil
	}
	return value.True, nil
}

func everyHolds(e *ast.Every, env *Environment, b Bindings, key, val value.Value) (bool, error) {
	cur := b
	if e.KeyVar != "" && e.KeyVar != "_" {
		cur = cur.set(e.KeyVar, key)
	}
	if e.ValueVar != "" && e.ValueVar != "_" {
		cur = cur.set(e.ValueVar, val)
	}
	solutions, err := solveBody(e.Body, env, cur)
	if err != nil {
		return false, err
	}
	return len(solutions) > 0, nil
}
