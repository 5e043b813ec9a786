package eval

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
	"github.com/wardlang/ward/internal/value"
)

// evalRuleRef evaluates every rule definition sharing name and folds the
// results into a single Value by rule kind, memoizing the result for the
// remainder of the active evaluation context. A rule that is
// still being evaluated higher up the call stack (direct or mutual
// recursion) evaluates to Undefined on re-entry rather than looping forever;
// the cycle is cut there and is neither unrolled nor re-evaluated.
func evalRuleRef(name string, env *Environment) (value.Value, error) {
	if v, ok := env.nameOverride(name); ok {
		return v, nil
	}
	memo := env.Memo()
	if v, ok := memo.ruleValues[name]; ok {
		return v, nil
	}
	if memo.inProgress[name] {
		return value.Undefined, nil
	}
	rules, ok := env.Rules(name)
	if !ok || len(rules) == 0 {
		return value.Undefined, nil
	}

	memo.inProgress[name] = true
	defer delete(memo.inProgress, name)

	var (
		result value.Value
		err    error
	)
	switch rules[0].Head.Kind {
	case ast.CompleteRule:
		result, err = evalCompleteRule(name, rules, env)
	case ast.PartialSetRule:
		result, err = evalPartialSetRule(rules, env)
	case ast.PartialObjectRule:
		result, err = evalPartialObjectRule(name, rules, env)
	case ast.FunctionRule:
		return value.Undefined, errf(rules[0].Pos(), "rule %q is a function and must be called with arguments", name)
	default:
		return value.Undefined, errf(rules[0].Pos(), "unknown rule kind for %q", name)
	}
	if err != nil {
		return value.Undefined, err
	}
	memo.ruleValues[name] = result
	return result, nil
}

func evalCompleteRule(name string, rules []*ast.Rule, env *Environment) (value.Value, error) {
	var values []value.Value
	var defaultVal ast.Expr

	for _, r := range rules {
		if r.Head.IsDefault {
			defaultVal = completeDefaultExpr(r)
			continue
		}
		vals, err := evalRuleClauseChain(r, env)
		if err != nil {
			return value.Undefined, err
		}
		values = append(values, vals...)
	}

	if len(values) == 0 {
		if defaultVal != nil {
			return evalExpr(defaultVal, env, Bindings{})
		}
		return value.Undefined, nil
	}
	for _, v := range values[1:] {
		if !value.Equal(values[0], v) {
			return value.Undefined, errf(rules[0].Pos(), "complete rule %q produces conflicting values", name)
		}
	}
	return values[0], nil
}

// evalRuleClauseChain tries r's own body first, then its `else` clauses in
// order, returning the values produced by the first level that matches at
// all.
func evalRuleClauseChain(r *ast.Rule, env *Environment) ([]value.Value, error) {
	vals, matched, err := evalHeadBranch(r.Body, r.Head.Value, env)
	if err != nil {
		return nil, err
	}
	if matched {
		return vals, nil
	}
	for clause := r.Else; clause != nil; clause = clause.Next {
		vals, matched, err := evalHeadBranch(clause.Body, clause.Value, env)
		if err != nil {
			return nil, err
		}
		if matched {
			return vals, nil
		}
	}
	return nil, nil
}

func evalHeadBranch(body []ast.Literal, headVal ast.Expr, env *Environment) ([]value.Value, bool, error) {
	solutions, err := solveBody(body, env, Bindings{})
	if err != nil {
		return nil, false, err
	}
	if len(solutions) == 0 {
		return nil, false, nil
	}
	vals := make([]value.Value, 0, len(solutions))
	for _, bs := range solutions {
		v, err := evalHeadValue(headVal, env, bs)
		if err != nil {
			return nil, false, err
		}
		vals = append(vals, v)
	}
	return vals, true, nil
}

// evalHeadValue evaluates expr, or returns boolean true for a bodiless
// complete rule whose head carries no explicit value.
func evalHeadValue(expr ast.Expr, env *Environment, b Bindings) (value.Value, error) {
	if expr == nil {
		return value.True, nil
	}
	return evalExpr(expr, env, b)
}

func completeDefaultExpr(r *ast.Rule) ast.Expr {
	if r.DefaultValue != nil {
		return r.DefaultValue
	}
	return r.Head.Value
}

func evalPartialSetRule(rules []*ast.Rule, env *Environment) (value.Value, error) {
	var items []value.Value
	for _, r := range rules {
		solutions, err := solveBody(r.Body, env, Bindings{})
		if err != nil {
			return value.Undefined, err
		}
		for _, bs := range solutions {
			v, err := evalExpr(r.Head.SetTerm, env, bs)
			if err != nil {
				return value.Undefined, err
			}
			items = append(items, v)
		}
	}
	if len(items) == 0 {
		return value.Undefined, nil
	}
	return value.Set(items), nil
}

func evalPartialObjectRule(name string, rules []*ast.Rule, env *Environment) (value.Value, error) {
	ob := value.NewObjectBuilder()
	for _, r := range rules {
		solutions, err := solveBody(r.Body, env, Bindings{})
		if err != nil {
			return value.Undefined, err
		}
		for _, bs := range solutions {
			kv, err := evalExpr(r.Head.ObjectKey, env, bs)
			if err != nil {
				return value.Undefined, err
			}
			if kv.Kind() != value.KindString {
				return value.Undefined, errf(r.Pos(), "partial object %q: key must be a string, got %s", name, kv.Kind())
			}
			vv, err := evalExpr(r.Head.ObjectVal, env, bs)
			if err != nil {
				return value.Undefined, err
			}
			if existing, exists := ob.Get(kv.Str()); exists {
				if r.Head.Nested {
					merged, ok := deepMergeObjects(existing, vv)
					if !ok {
						return value.Undefined, errf(r.Pos(), "partial object %q: conflicting nested values for key %q", name, kv.Str())
					}
					ob.Set(kv.Str(), merged)
					continue
				}
				if !value.Equal(existing, vv) {
					return value.Undefined, errf(r.Pos(), "partial object %q: conflicting values for key %q", name, kv.Str())
				}
				continue
			}
			ob.Set(kv.Str(), vv)
		}
	}
	return ob.Build(), nil
}

// deepMergeObjects merges b into a recursively when both are objects, per
// the nested-partial-object-rule merge rule; any non-object
// disagreement is a conflict.
func deepMergeObjects(a, b value.Value) (value.Value, bool) {
	if a.Kind() != value.KindObject || b.Kind() != value.KindObject {
		if value.Equal(a, b) {
			return a, true
		}
		return value.Undefined, false
	}
	ob := value.NewObjectBuilder()
	for _, k := range a.ObjectKeys() {
		av, _ := a.ObjectGet(k)
		ob.Set(k, av)
	}
	for _, k := range b.ObjectKeys() {
		bv, _ := b.ObjectGet(k)
		if av, exists := ob.Get(k); exists {
			merged, ok := deepMergeObjects(av, bv)
			if !ok {
				return value.Undefined, false
			}
			ob.Set(k, merged)
			continue
		}
		ob.Set(k, bv)
	}
	return ob.Build(), true
}

// evalFunctionCall dispatches a call to a user-defined function rule:
// argument patterns are unified against args clause by clause, and every
// clause whose patterns match and whose body succeeds contributes a value;
// all contributed values must agree.
func evalFunctionCall(name string, args []value.Value, env *Environment) (value.Value, error) {
	rules, _ := env.Rules(name)
	var values []value.Value
	var defaultVal ast.Expr
	var pos token.Position

	for _, r := range rules {
		pos = r.Pos()
		if r.Head.IsDefault {
			defaultVal = functionDefaultExpr(r)
			continue
		}
		if len(r.Head.Args) != len(args) {
			continue
		}
		frontier := []Bindings{{}}
		for i, pattern := range r.Head.Args {
			var next []Bindings
			for _, base := range frontier {
				next = append(next, unifyAll(pattern, args[i], env, base)...)
			}
			frontier = next
			if len(frontier) == 0 {
				break
			}
		}
		for _, base := range frontier {
			solutions, err := solveBody(r.Body, env, base)
			if err != nil {
				return value.Undefined, err
			}
			for _, bs := range solutions {
				v, err := evalHeadValue(r.Head.FuncValue, env, bs)
				if err != nil {
					return value.Undefined, err
				}
				values = append(values, v)
			}
		}
	}

	if len(values) == 0 {
		if defaultVal != nil {
			return evalExpr(defaultVal, env, Bindings{})
		}
		return value.Undefined, nil
	}
	for _, v := range values[1:] {
		if !value.Equal(values[0], v) {
			return value.Undefined, errf(pos, "function %q produces conflicting values for the same arguments", name)
		}
	}
	return values[0], nil
}

func functionDefaultExpr(r *ast.Rule) ast.Expr {
	if r.DefaultValue != nil {
		return r.DefaultValue
	}
	return r.Head.FuncValue
}
