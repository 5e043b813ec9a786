// Package builtins implements the registration/dispatch contract for
// Ward's builtin functions plus a concrete starter library, so policies
// have a usable vocabulary out of the box.
package builtins

import (
	"fmt"

	"github.com/wardlang/ward/internal/value"
)

// Handler implements one builtin's behavior. Builtin errors propagate as an
// EvaluationError.
type Handler func(args []value.Value) (value.Value, error)

// Entry is a registered (name, arity, handler) triple.
type Entry struct {
	Name    string
	Arity   int
	Handler Handler
}

// Registry is a name -> Entry table. It supports a read-only parent chain
// so that a `with <builtin> as <replacement>` overlay can be
// layered on top of the process-wide registry without mutating it.
type Registry struct {
	parent  *Registry
	entries map[string]Entry
}

// NewRegistry creates an empty, parentless registry — used once at process
// startup for the global table, read-only from then on.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds name to the registry. It panics on a duplicate name, since
// registration happens once at startup and a silent overwrite there would
// hide a programming error — not a runtime condition callers should handle.
func (r *Registry) Register(name string, arity int, h Handler) {
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("builtins: duplicate registration for %q", name))
	}
	r.entries[name] = Entry{Name: name, Arity: arity, Handler: h}
}

// EntryFor looks up name, checking this layer then its parent chain.
func (r *Registry) EntryFor(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	if e, ok := r.entries[name]; ok {
		return e, true
	}
	return r.parent.EntryFor(name)
}

// Names reports every builtin name visible through this registry (own layer
// plus parent chain), used by the compiler's function/builtin collision
// check.
func (r *Registry) Names() map[string]int {
	out := map[string]int{}
	for cur := r; cur != nil; cur = cur.parent {
		for name, e := range cur.entries {
			if _, ok := out[name]; !ok {
				out[name] = e.Arity
			}
		}
	}
	return out
}

// WithOverride returns a new Registry that resolves name to replacement
// before falling through to r — the overlay used by `with <builtin> as
// <replacement>`. r itself is untouched.
func (r *Registry) WithOverride(name string, replacement Entry) *Registry {
	return &Registry{parent: r, entries: map[string]Entry{name: replacement}}
}

// Call invokes the handler for name with args after checking arity.
func (r *Registry) Call(name string, args []value.Value) (value.Value, error) {
	entry, ok := r.EntryFor(name)
	if !ok {
		return value.Undefined, fmt.Errorf("unknown builtin %q", name)
	}
	if entry.Arity >= 0 && len(args) != entry.Arity {
		return value.Undefined, fmt.Errorf("builtin %q expects %d argument(s), got %d", name, entry.Arity, len(args))
	}
	return entry.Handler(args)
}
