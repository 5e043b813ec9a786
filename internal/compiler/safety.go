package compiler

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
)

// checkSafety enforces negation safety: every variable inside `not E`
// must be bound elsewhere in the enclosing body by `some`, `:=`, or either
// side of `=`.
func checkSafety(r *ast.Rule) []*Error {
	var errs []*Error
	errs = append(errs, checkBodySafety(r.Name, r.Body)...)
	for clause := r.Else; clause != nil; clause = clause.Next {
		errs = append(errs, checkBodySafety(r.Name, clause.Body)...)
	}
	return errs
}

func checkBodySafety(ruleName string, body []ast.Literal) []*Error {
	if len(body) == 0 {
		return nil
	}
	bound := boundVarsInBody(body)

	var errs []*Error
	for _, lit := range body {
		el, ok := lit.(*ast.ExprLiteral)
		if !ok || !el.Negated {
			continue
		}
		if _, isEvery := el.Expression.(*ast.Every); isEvery {
			errs = append(errs, &Error{
				Message: "not every is not allowed",
				Rule:    ruleName,
				Pos:     el.Pos(),
			})
			continue
		}
		free := freeVars(el.Expression, map[string]bool{})
		var unbound []string
		for v := range free {
			if !bound[v] {
				unbound = append(unbound, v)
			}
		}
		if len(unbound) > 0 {
			errs = append(errs, &Error{
				Message: "unsafe negation: unbound variables " + joinNames(unbound),
				Rule:    ruleName,
				Pos:     el.Pos(),
			})
		}
	}
	return errs
}

// boundVarsInBody collects every variable name introduced by `some`,
// assigned via `:=`, or appearing on either side of `=`, anywhere in body
// — the definition of "bound" the negation-safety check uses.
func boundVarsInBody(body []ast.Literal) map[string]bool {
	bound := map[string]bool{}
	for _, lit := range body {
		switch l := lit.(type) {
		case *ast.SomeDecl:
			for _, v := range l.Vars {
				bound[v] = true
			}
		case *ast.ExprLiteral:
			collectAssignedVars(l.Expression, bound)
		}
	}
	return bound
}

func collectAssignedVars(expr ast.Expr, bound map[string]bool) {
	be, ok := expr.(*ast.BinaryExpr)
	if !ok {
		return
	}
	switch be.Op {
	case token.ASSIGN:
		addVars(be.Left, bound)
	case token.UNIFY:
		addVars(be.Left, bound)
		addVars(be.Right, bound)
	}
	// Nested binary expressions (e.g. `x := a and y := b` chained through
	// `&`) still expose their own assignments.
	collectAssignedVars(be.Left, bound)
	collectAssignedVars(be.Right, bound)
}

func addVars(expr ast.Expr, bound map[string]bool) {
	for v := range freeVars(expr, map[string]bool{}) {
		bound[v] = true
	}
}

// freeVars collects every Variable name referenced within expr, excluding
// "_" and the reserved roots.
func freeVars(expr ast.Expr, out map[string]bool) map[string]bool {
	switch e := expr.(type) {
	case *ast.Variable:
		if e.Name != "_" && !reservedNames[e.Name] {
			out[e.Name] = true
		}
	case *ast.Reference:
		freeVars(e.Base, out)
		for _, seg := range e.Path {
			if !seg.IsDot && seg.Expr != nil {
				freeVars(seg.Expr, out)
			}
		}
	case *ast.BinaryExpr:
		freeVars(e.Left, out)
		freeVars(e.Right, out)
	case *ast.UnaryExpr:
		freeVars(e.Operand, out)
	case *ast.ArrayLit:
		for _, el := range e.Elements {
			freeVars(el, out)
		}
	case *ast.SetLit:
		for _, el := range e.Elements {
			freeVars(el, out)
		}
	case *ast.ObjectLit:
		for _, pr := range e.Pairs {
			freeVars(pr.Key, out)
			freeVars(pr.Value, out)
		}
	case *ast.Call:
		freeVars(e.Callee, out)
		for _, a := range e.Args {
			freeVars(a, out)
		}
	case *ast.ArrayCompr, *ast.SetCompr, *ast.ObjectCompr, *ast.Every:
		// Comprehensions and `every` are self-contained: their own body
		// variables are local, so they contribute no free variables to the
		// enclosing body's safety analysis.
	}
	return out
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
