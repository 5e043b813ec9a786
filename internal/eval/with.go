package eval

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/value"
)

// applyWithChain builds the Environment a single literal's `with` chain runs
// under, applying each modifier's override left to right. The result is
// scoped to that one literal — the caller's own Environment is untouched once
// the literal has been evaluated. Each modifier's replacement expression is
// evaluated against the outer (pre-chain) environment, not the progressively
// overridden one, so later with's in the same chain don't see earlier ones
// leaking into their own replacement expressions — only into the literal the
// whole chain scopes.
//
// A nil environment with a nil error means the chain cannot apply (a path
// key evaluated to undefined) and the modified literal yields no bindings.
func applyWithChain(env *Environment, mods []*ast.WithModifier, b Bindings) (*Environment, error) {
	cur := env
	for _, m := range mods {
		next, err := applyWithModifier(cur, env, m, b)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}

func applyWithModifier(cur, outer *Environment, m *ast.WithModifier, b Bindings) (*Environment, error) {
	switch target := m.Target.(type) {
	case *ast.Variable:
		switch target.Name {
		case "input":
			replacement, err := evalExpr(m.Value, outer, b)
			if err != nil {
				return nil, err
			}
			return cur.WithOverrides(&replacement, nil), nil
		case "data":
			replacement, err := evalExpr(m.Value, outer, b)
			if err != nil {
				return nil, err
			}
			return cur.WithOverrides(nil, &replacement), nil
		default:
			return applyNameOverride(cur, outer, target.Name, m, b)
		}
	case *ast.Reference:
		if base, ok := target.Base.(*ast.Variable); ok && (base.Name == "input" || base.Name == "data") {
			replacement, err := evalExpr(m.Value, outer, b)
			if err != nil {
				return nil, err
			}
			return applyPathOverride(cur, outer, base.Name, target.Path, replacement, b)
		}
		name, ok := calleeName(target)
		if !ok {
			return nil, errf(m.Pos(), "unsupported with target")
		}
		return applyNameOverride(cur, outer, name, m, b)
	default:
		return nil, errf(m.Pos(), "unsupported with target")
	}
}

// applyNameOverride implements `with <builtin-or-rule> as <replacement>`.
// <replacement> takes one of three shapes:
//
//   - (a) another builtin's name (a bare variable, a dotted reference of
//     plain dot segments, or a string literal) that is not shadowed by a
//     local binding, import alias, or declared rule: calls to name are
//     redirected to that builtin, invoked with the call's own arguments.
//   - (b) a user-defined rule reference: its value, evaluated once here,
//     becomes the result of every call to name regardless of arguments.
//   - (c) any other expression: its evaluated value likewise becomes a
//     fixed result for every call to name.
//
// (b) and (c) are indistinguishable once evaluated — both are just "a
// value, ignoring arguments" — so only (a) needs special detection.
func applyNameOverride(cur, outer *Environment, name string, m *ast.WithModifier, b Bindings) (*Environment, error) {
	if redirectTo, ok := builtinRedirectName(m.Value, outer, b); ok {
		entry, ok := outer.Builtins().EntryFor(redirectTo)
		if !ok {
			return nil, errf(m.Pos(), "with: unknown builtin %q", redirectTo)
		}
		entry.Name = name
		return cur.WithBuiltinOverride(name, entry), nil
	}
	replacement, err := evalExpr(m.Value, outer, b)
	if err != nil {
		return nil, err
	}
	return cur.WithNameOverride(name, replacement), nil
}

// builtinRedirectName reports whether expr statically names a builtin —
// case (a) of applyNameOverride's replacement shapes — by applying the
// same name-resolution precedence evalVariable uses (local binding >
// import alias > declared rule) and only falling through to "is this a
// registered builtin" once none of those claim the name first.
func builtinRedirectName(expr ast.Expr, env *Environment, b Bindings) (string, bool) {
	var name string
	if sl, ok := expr.(*ast.StringLit); ok {
		name = sl.Value
	} else if n, ok := calleeName(expr); ok {
		name = n
	} else {
		return "", false
	}
	if _, bound := b.get(name); bound {
		return "", false
	}
	if _, bound := env.Lookup(name); bound {
		return "", false
	}
	if _, isImport := env.ImportTarget(name); isImport {
		return "", false
	}
	if _, isRule := env.Rules(name); isRule {
		return "", false
	}
	if _, isBuiltin := env.Builtins().EntryFor(name); isBuiltin {
		return name, true
	}
	return "", false
}

// applyPathOverride implements `with input.a.b as value` / `with data.a.b as
// value`: only the addressed sub-tree is replaced, leaving the rest of the
// root document untouched. Bracket segments are evaluated against the outer
// environment; a key that evaluates to undefined makes the whole literal
// fail (nil environment, no bindings). A non-string key — which includes
// any attempt to address into a set, since sets have no addressable keys —
// is rejected outright rather than given a guessed merge semantics.
func applyPathOverride(env, outer *Environment, root string, path []ast.RefArg, replacement value.Value, b Bindings) (*Environment, error) {
	var base value.Value
	if root == "input" {
		base = env.Input()
	} else {
		base = env.Data()
	}
	if len(path) == 0 {
		if root == "input" {
			return env.WithOverrides(&replacement, nil), nil
		}
		return env.WithOverrides(nil, &replacement), nil
	}
	keys := make([]string, len(path))
	for i, seg := range path {
		if seg.IsDot {
			keys[i] = seg.Name
			continue
		}
		kv, err := evalExpr(seg.Expr, outer, b)
		if err != nil {
			return nil, err
		}
		if kv.IsUndefined() {
			return nil, nil
		}
		if kv.Kind() != value.KindString {
			return nil, errf(seg.Expr.Pos(), "with target key must address an object field, got %s", kv.Kind())
		}
		keys[i] = kv.Str()
	}
	merged := setPath(base, keys, replacement)
	if root == "input" {
		return env.WithOverrides(&merged, nil), nil
	}
	return env.WithOverrides(nil, &merged), nil
}

// setPath rebuilds base with replacement stored at the dotted path keys,
// creating intermediate objects as needed.
func setPath(base value.Value, keys []string, replacement value.Value) value.Value {
	if len(keys) == 0 {
		return replacement
	}
	ob := value.NewObjectBuilder()
	if base.Kind() == value.KindObject {
		for _, k := range base.ObjectKeys() {
			v, _ := base.ObjectGet(k)
			ob.Set(k, v)
		}
	}
	existing, _ := ob.Get(keys[0])
	ob.Set(keys[0], setPath(existing, keys[1:], replacement))
	return ob.Build()
}
