package eval

import "github.com/wardlang/ward/internal/value"

// Bindings is a purely functional variable->Value map: every mutating
// operation returns a new map rather than aliasing the receiver, so a
// partial match down one branch of the unifier never leaks into a sibling
// branch.
type Bindings map[string]value.Value

// set returns a copy of b with name bound to v.
func (b Bindings) set(name string, v value.Value) Bindings {
	out := make(Bindings, len(b)+1)
	for k, val := range b {
		out[k] = val
	}
	out[name] = v
	return out
}

// get returns the binding for name and whether it exists.
func (b Bindings) get(name string) (value.Value, bool) {
	v, ok := b[name]
	return v, ok
}

// merge combines a with b, failing (ok=false) on the first conflicting
// binding.
func (a Bindings) merge(b Bindings) (Bindings, bool) {
	out := make(Bindings, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok {
			if !value.Equal(existing, v) {
				return nil, false
			}
			continue
		}
		out[k] = v
	}
	return out, true
}

func cloneBindings(b Bindings) Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
