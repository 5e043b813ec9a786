// Package compiler transforms a parsed *ast.Module into an indexed,
// safety-checked *CompiledModule.
package compiler

import (
	"fmt"
	"sort"

	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
)

// Error is a CompilationError: duplicate aliases, conflicting rule
// kinds/arities, function/builtin name collisions, non-ground default
// values, or unsafe negation. It carries the rule name and,
// where available, the offending node's location.
type Error struct {
	Message string
	Rule    string
	Pos     token.Position
}

func (e *Error) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("rule %q: %s at %s", e.Rule, e.Message, e.Pos)
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// CompiledModule is the frozen output of Compile: rules indexed by name,
// imports, and a rule dependency graph used for diagnostics.
type CompiledModule struct {
	PackagePath     []string
	RulesByName     map[string][]*ast.Rule
	RuleOrder       []string // name groups, in first-appearance order
	Imports         []*ast.Import
	ImportsByAlias  map[string]*ast.Import
	DependencyGraph map[string][]string
}

// Reserved root names that can never be bound locally or used as aliases.
var reservedNames = map[string]bool{"input": true, "data": true}

// Compile runs every static check against mod and, if all pass,
// returns a frozen CompiledModule. knownBuiltins supplies builtin names (for
// the function/builtin-name-collision check in step 3) with arity; pass nil
// to skip that check (e.g. when compiling without a builtin registry bound
// yet).
func Compile(mod *ast.Module, knownBuiltins map[string]int) (*CompiledModule, []*Error) {
	var errs []*Error

	cm := &CompiledModule{
		PackagePath:     append([]string(nil), mod.PackagePath...),
		RulesByName:     make(map[string][]*ast.Rule),
		ImportsByAlias:  make(map[string]*ast.Import),
		Imports:         mod.Imports,
		DependencyGraph: make(map[string][]string),
	}

	for _, r := range mod.Rules {
		if _, seen := cm.RulesByName[r.Name]; !seen {
			cm.RuleOrder = append(cm.RuleOrder, r.Name)
		}
		cm.RulesByName[r.Name] = append(cm.RulesByName[r.Name], r)
	}

	// Step 1+2+3: per-name-group kind/default/arity/builtin checks.
	for _, name := range cm.RuleOrder {
		errs = append(errs, checkGroup(name, cm.RulesByName[name], knownBuiltins)...)
	}

	// Step 4: imports.
	errs = append(errs, checkImports(mod.Imports, cm)...)

	// Step 5: dependency graph (best-effort; errors here are non-fatal
	// diagnostics only, so they are not added to errs). Direct references
	// are collected per rule, then closed transitively.
	direct := map[string]map[string]bool{}
	for _, name := range cm.RuleOrder {
		direct[name] = map[string]bool{}
		for _, r := range cm.RulesByName[name] {
			collectRuleDeps(r, cm, direct[name])
		}
	}
	for _, name := range cm.RuleOrder {
		deps := map[string]bool{}
		var visit func(string)
		visit = func(n string) {
			for d := range direct[n] {
				if !deps[d] {
					deps[d] = true
					visit(d)
				}
			}
		}
		visit(name)
		var list []string
		for d := range deps {
			list = append(list, d)
		}
		sort.Strings(list)
		cm.DependencyGraph[name] = list
	}

	// Step 6: negation safety, per rule.
	for _, name := range cm.RuleOrder {
		for _, r := range cm.RulesByName[name] {
			errs = append(errs, checkSafety(r)...)
		}
	}

	// Step 7: default values must be ground.
	for _, name := range cm.RuleOrder {
		for _, r := range cm.RulesByName[name] {
			if r.Head.IsDefault {
				val := defaultValueExpr(r)
				if val != nil && !isGround(val) {
					errs = append(errs, &Error{
						Message: "default value must be ground (no references or calls)",
						Rule:    name,
						Pos:     val.Pos(),
					})
				}
			}
		}
	}

	return cm, errs
}

func defaultValueExpr(r *ast.Rule) ast.Expr {
	switch r.Head.Kind {
	case ast.CompleteRule:
		if r.DefaultValue != nil {
			return r.DefaultValue
		}
		return r.Head.Value
	case ast.FunctionRule:
		return r.Head.FuncValue
	default:
		return nil
	}
}

func checkGroup(name string, rules []*ast.Rule, knownBuiltins map[string]int) []*Error {
	var errs []*Error
	kind := rules[0].Head.Kind
	defaults := 0
	arity := -1

	for _, r := range rules {
		if r.Head.Kind != kind {
			errs = append(errs, &Error{
				Message: fmt.Sprintf("rule kind mismatch: %s vs %s", r.Head.Kind, kind),
				Rule:    name,
				Pos:     r.Pos(),
			})
		}
		if r.Head.IsDefault {
			defaults++
		}
		if kind == ast.FunctionRule {
			if arity == -1 {
				arity = len(r.Head.Args)
			} else if len(r.Head.Args) != arity {
				errs = append(errs, &Error{
					Message: fmt.Sprintf("function %q has inconsistent arity: %d vs %d", name, len(r.Head.Args), arity),
					Rule:    name,
					Pos:     r.Pos(),
				})
			}
		}
	}

	if defaults > 1 {
		errs = append(errs, &Error{
			Message: fmt.Sprintf("rule %q has more than one default", name),
			Rule:    name,
			Pos:     rules[0].Pos(),
		})
	}

	if kind == ast.FunctionRule && knownBuiltins != nil {
		if _, isBuiltin := knownBuiltins[name]; isBuiltin {
			errs = append(errs, &Error{
				Message: fmt.Sprintf("function %q collides with a registered builtin", name),
				Rule:    name,
				Pos:     rules[0].Pos(),
			})
		}
	}

	return errs
}

func checkImports(imports []*ast.Import, cm *CompiledModule) []*Error {
	var errs []*Error
	seenAlias := map[string]bool{}
	for _, imp := range imports {
		alias := imp.Alias
		if alias == "" {
			continue // bare `import data.foo` with no alias is accepted
		}
		if seenAlias[alias] {
			errs = append(errs, &Error{Message: fmt.Sprintf("duplicate import alias %q", alias), Pos: imp.Pos()})
			continue
		}
		if reservedNames[alias] {
			errs = append(errs, &Error{Message: fmt.Sprintf("import alias %q shadows a reserved name", alias), Pos: imp.Pos()})
			continue
		}
		if _, ruleCollision := cm.RulesByName[alias]; ruleCollision {
			errs = append(errs, &Error{Message: fmt.Sprintf("import alias %q collides with a declared rule name", alias), Pos: imp.Pos()})
			continue
		}
		seenAlias[alias] = true
		cm.ImportsByAlias[alias] = imp
	}
	return errs
}

// isGround reports whether expr contains no references, variables, or
// calls.
func isGround(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.NullLit, *ast.BoolLit, *ast.NumberLit, *ast.StringLit:
		return true
	case *ast.Variable:
		return false
	case *ast.Reference:
		return false
	case *ast.Call:
		return false
	case *ast.BinaryExpr:
		return isGround(e.Left) && isGround(e.Right)
	case *ast.UnaryExpr:
		return isGround(e.Operand)
	case *ast.ArrayLit:
		for _, el := range e.Elements {
			if !isGround(el) {
				return false
			}
		}
		return true
	case *ast.SetLit:
		for _, el := range e.Elements {
			if !isGround(el) {
				return false
			}
		}
		return true
	case *ast.ObjectLit:
		for _, pr := range e.Pairs {
			if !isGround(pr.Key) || !isGround(pr.Value) {
				return false
			}
		}
		return true
	case *ast.ArrayCompr, *ast.SetCompr, *ast.ObjectCompr, *ast.Every:
		return true
	default:
		return false
	}
}
