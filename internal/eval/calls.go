package eval

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/value"
)

// evalCall evaluates a Call deterministically: its arguments must not
// contain unbound variables by this point (the compiler's safety check
// guarantees this for well-formed bodies; call sites that need to discover
// bindings through an argument go through evalValueNondet instead).
func evalCall(c *ast.Call, env *Environment, b Bindings) (value.Value, error) {
	args := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := evalExpr(a, env, b)
		if err != nil {
			return value.Undefined, err
		}
		args[i] = v
	}
	return callWithArgs(c, args, env, b)
}

func callWithArgs(c *ast.Call, args []value.Value, env *Environment, b Bindings) (value.Value, error) {
	name, ok := calleeName(c.Callee)
	if !ok {
		return value.Undefined, errf(c.Pos(), "call target must be a name")
	}
	if name == "__some__" {
		return value.Undefined, errf(c.Pos(), "some is not a value expression")
	}
	if v, ok := env.nameOverride(name); ok {
		return v, nil
	}
	if _, ok := env.Rules(name); ok {
		return evalFunctionCall(name, args, env)
	}
	v, err := env.Builtins().Call(name, args)
	if err != nil {
		return value.Undefined, errf(c.Pos(), "%s", err.Error())
	}
	return v, nil
}

// calleeName resolves a call target to the dotted name it should be looked
// up under: a bare identifier (`count`), or a chain of plain dot segments
// off a variable (`time.now_ns`, `json.marshal`) joined with ".", matching
// how those names are registered in the builtin table (internal/builtins).
// A reference with a bracketed segment anywhere in it is not a valid call
// target.
func calleeName(expr ast.Expr) (string, bool) {
	switch e := expr.(type) {
	case *ast.Variable:
		return e.Name, true
	case *ast.Reference:
		base, ok := calleeName(e.Base)
		if !ok {
			return "", false
		}
		name := base
		for _, seg := range e.Path {
			if !seg.IsDot {
				return "", false
			}
			name += "." + seg.Name
		}
		return name, true
	}
	return "", false
}
