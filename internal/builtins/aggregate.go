package builtins

import (
	"sort"

	"github.com/wardlang/ward/internal/value"
)

// registerAggregates wires the collection-aggregation builtins: count,
// sum, max, min, sort, all, any.
func registerAggregates(r *Registry) {
	r.Register("count", 1, biCount)
	r.Register("sum", 1, biSum)
	r.Register("max", 1, biMax)
	r.Register("min", 1, biMin)
	r.Register("sort", 1, biSort)
	r.Register("all", 1, biAll)
	r.Register("any", 1, biAny)
}

func elementsOf(v value.Value) ([]value.Value, bool) {
	switch v.Kind() {
	case value.KindArray:
		return v.Array(), true
	case value.KindSet:
		return v.SetItems(), true
	default:
		return nil, false
	}
}

func biCount(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.KindString:
		return value.Int(int64(v.Len())), nil
	case value.KindObject:
		return value.Int(int64(len(v.ObjectKeys()))), nil
	default:
		elems, ok := elementsOf(v)
		if !ok {
			return value.Undefined, errArgType("count", v.Kind())
		}
		return value.Int(int64(len(elems))), nil
	}
}

func biSum(args []value.Value) (value.Value, error) {
	elems, ok := elementsOf(args[0])
	if !ok {
		return value.Undefined, errArgType("sum", args[0].Kind())
	}
	total := value.Int(0)
	for _, e := range elems {
		if e.Kind() != value.KindNumber {
			return value.Undefined, errArgType("sum", e.Kind())
		}
		total = value.AddNumbers(total, e)
	}
	return total, nil
}

func biMax(args []value.Value) (value.Value, error) {
	elems, ok := elementsOf(args[0])
	if !ok || len(elems) == 0 {
		return value.Undefined, nil
	}
	best := elems[0]
	for _, e := range elems[1:] {
		if numericLess(best, e) {
			best = e
		}
	}
	return best, nil
}

func biMin(args []value.Value) (value.Value, error) {
	elems, ok := elementsOf(args[0])
	if !ok || len(elems) == 0 {
		return value.Undefined, nil
	}
	best := elems[0]
	for _, e := range elems[1:] {
		if numericLess(e, best) {
			best = e
		}
	}
	return best, nil
}

func numericLess(a, b value.Value) bool {
	if a.Kind() == value.KindNumber && b.Kind() == value.KindNumber {
		return a.Float() < b.Float()
	}
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		return a.Str() < b.Str()
	}
	return false
}

func biSort(args []value.Value) (value.Value, error) {
	elems, ok := elementsOf(args[0])
	if !ok {
		return value.Undefined, errArgType("sort", args[0].Kind())
	}
	out := make([]value.Value, len(elems))
	copy(out, elems)
	sort.SliceStable(out, func(i, j int) bool { return numericLess(out[i], out[j]) })
	return value.Array(out), nil
}

func biAll(args []value.Value) (value.Value, error) {
	elems, ok := elementsOf(args[0])
	if !ok {
		return value.Undefined, errArgType("all", args[0].Kind())
	}
	for _, e := range elems {
		if !e.Truthy() {
			return value.False, nil
		}
	}
	return value.True, nil
}

func biAny(args []value.Value) (value.Value, error) {
	elems, ok := elementsOf(args[0])
	if !ok {
		return value.Undefined, errArgType("any", args[0].Kind())
	}
	for _, e := range elems {
		if e.Truthy() {
			return value.True, nil
		}
	}
	return value.False, nil
}
