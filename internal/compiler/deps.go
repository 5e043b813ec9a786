package compiler

import "github.com/wardlang/ward/internal/ast"

// collectRuleDeps walks r's body (and else-chain) collecting the names of
// other rules it references directly, via a bare name resolving to a
// rule or via data.<pkg>.<name> where <pkg> matches cm's own package.
// Compile closes these edges transitively. Cycles are left in place; they
// are resolved at evaluation time by memoized recursion detection.
func collectRuleDeps(r *ast.Rule, cm *CompiledModule, out map[string]bool) {
	walkBody(r.Body, cm, out)
	for clause := r.Else; clause != nil; clause = clause.Next {
		if clause.Value != nil {
			walkExprDeps(clause.Value, cm, out)
		}
		walkBody(clause.Body, cm, out)
	}
	if r.Head.Value != nil {
		walkExprDeps(r.Head.Value, cm, out)
	}
	if r.Head.FuncValue != nil {
		walkExprDeps(r.Head.FuncValue, cm, out)
	}
}

func walkBody(body []ast.Literal, cm *CompiledModule, out map[string]bool) {
	for _, lit := range body {
		switch l := lit.(type) {
		case *ast.ExprLiteral:
			walkExprDeps(l.Expression, cm, out)
			for _, w := range l.With {
				walkExprDeps(w.Value, cm, out)
			}
		case *ast.SomeDecl:
			if l.Collection != nil {
				walkExprDeps(l.Collection, cm, out)
			}
		}
	}
}

func walkExprDeps(expr ast.Expr, cm *CompiledModule, out map[string]bool) {
	switch e := expr.(type) {
	case *ast.Variable:
		if _, ok := cm.RulesByName[e.Name]; ok {
			out[e.Name] = true
		}
	case *ast.Reference:
		walkExprDeps(e.Base, cm, out)
		if name, ok := dataQualifiedRuleName(e, cm); ok {
			out[name] = true
		}
		for _, seg := range e.Path {
			if !seg.IsDot && seg.Expr != nil {
				walkExprDeps(seg.Expr, cm, out)
			}
		}
	case *ast.BinaryExpr:
		walkExprDeps(e.Left, cm, out)
		walkExprDeps(e.Right, cm, out)
	case *ast.UnaryExpr:
		walkExprDeps(e.Operand, cm, out)
	case *ast.ArrayLit:
		for _, el := range e.Elements {
			walkExprDeps(el, cm, out)
		}
	case *ast.SetLit:
		for _, el := range e.Elements {
			walkExprDeps(el, cm, out)
		}
	case *ast.ObjectLit:
		for _, pr := range e.Pairs {
			walkExprDeps(pr.Key, cm, out)
			walkExprDeps(pr.Value, cm, out)
		}
	case *ast.Call:
		walkExprDeps(e.Callee, cm, out)
		for _, a := range e.Args {
			walkExprDeps(a, cm, out)
		}
	case *ast.ArrayCompr:
		walkExprDeps(e.Term, cm, out)
		walkBody(e.Body, cm, out)
	case *ast.SetCompr:
		walkExprDeps(e.Term, cm, out)
		walkBody(e.Body, cm, out)
	case *ast.ObjectCompr:
		walkExprDeps(e.Key, cm, out)
		walkExprDeps(e.Value, cm, out)
		walkBody(e.Body, cm, out)
	case *ast.Every:
		walkExprDeps(e.Domain, cm, out)
		walkBody(e.Body, cm, out)
	}
}

// dataQualifiedRuleName reports the rule name referenced by
// data.<pkg>.<name>[...] when <pkg> matches cm's own package path.
func dataQualifiedRuleName(ref *ast.Reference, cm *CompiledModule) (string, bool) {
	base, ok := ref.Base.(*ast.Variable)
	if !ok || base.Name != "data" {
		return "", false
	}
	pkgLen := len(cm.PackagePath)
	if len(ref.Path) < pkgLen+1 {
		return "", false
	}
	for i := 0; i < pkgLen; i++ {
		if !ref.Path[i].IsDot || ref.Path[i].Name != cm.PackagePath[i] {
			return "", false
		}
	}
	nameSeg := ref.Path[pkgLen]
	if !nameSeg.IsDot {
		return "", false
	}
	if _, ok := cm.RulesByName[nameSeg.Name]; ok {
		return nameSeg.Name, true
	}
	return "", false
}
