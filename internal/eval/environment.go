package eval

import (
	"fmt"

	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/builtins"
	"github.com/wardlang/ward/internal/value"
)

// scope is one frame of local variable bindings.
type scope struct {
	vars Bindings
}

// memoFrame caches rule-group results and static-reference results within
// one evaluation context. A fresh frame is pushed whenever the builtin
// registry or the input/data roots change under a `with` block, since a
// cached result computed under the old overrides would be wrong under the
// new ones.
type memoFrame struct {
	ruleValues map[string]value.Value // rule name -> cached complete/partial result
	inProgress map[string]bool        // rule names currently being evaluated (cycle detection)
}

func newMemoFrame() *memoFrame {
	return &memoFrame{
		ruleValues: make(map[string]value.Value),
		inProgress: make(map[string]bool),
	}
}

// Environment threads the evaluation-wide state: a
// stack of local scopes, the current input/data roots, the rule index, the
// active builtin registry, and a memoization context. Environment values are
// passed by pointer but every mutating operation that affects shared state
// returns a new *Environment, so a `with` block's overrides never leak back
// into the caller's environment once the block ends.
type Environment struct {
	scopes    []*scope
	input     value.Value
	data      value.Value
	rules     map[string][]*ast.Rule
	pkgPath   []string
	imports   map[string][]string // alias -> dotted path segments (e.g. {"data", "foo", "bar"})
	builtins  *builtins.Registry
	memo      *memoFrame
	overrides map[string]value.Value // rule/builtin name -> `with`-fixed replacement
}

// NewEnvironment builds the root environment for evaluating module against
// input, with reg as the process-wide builtin registry. pkgPath is the
// module's own package path, used to resolve data.<pkg>.<rule> references
// back to a local rule. imports maps each import
// alias to its target path's dotted segments.
func NewEnvironment(pkgPath []string, rules map[string][]*ast.Rule, imports map[string][]string, input, data value.Value, reg *builtins.Registry) *Environment {
	return &Environment{
		scopes:   []*scope{{vars: Bindings{}}},
		input:    input,
		data:     data,
		rules:    rules,
		pkgPath:  pkgPath,
		imports:  imports,
		builtins: reg,
		memo:     newMemoFrame(),
	}
}

func (e *Environment) shallowCopy() *Environment {
	scopesCopy := make([]*scope, len(e.scopes))
	copy(scopesCopy, e.scopes)
	return &Environment{
		scopes:    scopesCopy,
		input:     e.input,
		data:      e.data,
		rules:     e.rules,
		pkgPath:   e.pkgPath,
		imports:   e.imports,
		builtins:  e.builtins,
		memo:      e.memo,
		overrides: e.overrides,
	}
}

// ImportTarget reports the dotted path segments an import alias resolves
// to, if alias names a declared import.
func (e *Environment) ImportTarget(alias string) ([]string, bool) {
	segs, ok := e.imports[alias]
	return segs, ok
}

// WithNameOverride returns a new environment in which any reference to name
// (a rule or a builtin) resolves to a fixed replacement value, with a fresh
// memoization context — the `with <name> as <value>` mechanism used to
// mock a builtin or another rule for one literal.
func (e *Environment) WithNameOverride(name string, v value.Value) *Environment {
	next := e.shallowCopy()
	ov := make(map[string]value.Value, len(e.overrides)+1)
	for k, val := range e.overrides {
		ov[k] = val
	}
	ov[name] = v
	next.overrides = ov
	next.memo = newMemoFrame()
	return next
}

// nameOverride reports a `with`-fixed replacement for name, if one is
// active in this environment.
func (e *Environment) nameOverride(name string) (value.Value, bool) {
	v, ok := e.overrides[name]
	return v, ok
}

// PackagePath returns the module's own package path.
func (e *Environment) PackagePath() []string { return e.pkgPath }

// PushScope returns a new environment with an additional empty local scope.
func (e *Environment) PushScope() *Environment {
	next := e.shallowCopy()
	next.scopes = append(next.scopes, &scope{vars: Bindings{}})
	return next
}

// PopScope returns a new environment with the innermost scope removed. It
// panics if called on the root scope, which is a programming error: callers
// must balance every PushScope with exactly one PopScope.
func (e *Environment) PopScope() *Environment {
	if len(e.scopes) <= 1 {
		panic("eval: PopScope called with no local scope to pop")
	}
	next := e.shallowCopy()
	next.scopes = next.scopes[:len(next.scopes)-1]
	return next
}

// Bind returns a new environment with name bound to v in the innermost
// scope. It errors if name is a reserved root name.
func (e *Environment) Bind(name string, v value.Value) (*Environment, error) {
	if name == "input" || name == "data" {
		return nil, fmt.Errorf("cannot bind reserved name %q", name)
	}
	next := e.shallowCopy()
	innermost := len(next.scopes) - 1
	newScopes := make([]*scope, len(next.scopes))
	copy(newScopes, next.scopes)
	newScopes[innermost] = &scope{vars: next.scopes[innermost].vars.set(name, v)}
	next.scopes = newScopes
	return next, nil
}

// Lookup searches scopes from innermost to outermost for name.
func (e *Environment) Lookup(name string) (value.Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].vars.get(name); ok {
			return v, true
		}
	}
	return value.Undefined, false
}

// LocalBound reports whether name is bound anywhere in the scope stack.
func (e *Environment) LocalBound(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// Input returns the current input root.
func (e *Environment) Input() value.Value { return e.input }

// Data returns the current data root.
func (e *Environment) Data() value.Value { return e.data }

// Builtins returns the active builtin registry.
func (e *Environment) Builtins() *builtins.Registry { return e.builtins }

// Rules returns every rule declared under name.
func (e *Environment) Rules(name string) ([]*ast.Rule, bool) {
	rs, ok := e.rules[name]
	return rs, ok
}

// WithOverrides returns a new environment with input and/or data replaced
// (nil means "leave unchanged") and a fresh memoization context: a `with
// input as ...` / `with data as ...` block starts a new transaction and
// must not reuse memoized results computed before it.
func (e *Environment) WithOverrides(input, data *value.Value) *Environment {
	next := e.shallowCopy()
	if input != nil {
		next.input = *input
	}
	if data != nil {
		next.data = *data
	}
	next.memo = newMemoFrame()
	return next
}

// WithBuiltinOverride returns a new environment whose registry resolves name
// to replacement first, with a fresh memoization context.
func (e *Environment) WithBuiltinOverride(name string, entry builtins.Entry) *Environment {
	next := e.shallowCopy()
	next.builtins = next.builtins.WithOverride(name, entry)
	next.memo = newMemoFrame()
	return next
}

// Memo exposes the active memoization frame to the rule evaluator.
func (e *Environment) Memo() *memoFrame { return e.memo }
