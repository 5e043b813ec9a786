package builtins

// NewDefaultRegistry builds the process-wide builtin table with the
// starter library: aggregates, strings, type predicates/casts, collection
// helpers, JSON interop, and time arithmetic.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerAggregates(r)
	registerStrings(r)
	registerTypeCasts(r)
	registerCollections(r)
	registerJSON(r)
	registerTime(r)
	return r
}
