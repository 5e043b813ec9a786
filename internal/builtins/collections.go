package builtins

import "github.com/wardlang/ward/internal/value"

func registerCollections(r *Registry) {
	r.Register("object.union", 2, biObjectUnion)
	r.Register("object.get", 3, biObjectGet)
	r.Register("object.remove", 2, biObjectRemove)
	r.Register("array.concat", 2, biArrayConcat)
	r.Register("array.slice", 3, biArraySlice)
	r.Register("numbers.range", 2, biNumbersRange)
}

// biObjectUnion returns the shallow union of two objects: where both have a
// key, b's value replaces a's. Nested objects are not merged recursively
// (unlike internal/eval's deepMergeObjects for partial-object rules).
func biObjectUnion(args []value.Value) (value.Value, error) {
	a, b := args[0], args[1]
	if a.Kind() != value.KindObject || b.Kind() != value.KindObject {
		return value.Undefined, errArgType("object.union", a.Kind())
	}
	ob := value.NewObjectBuilder()
	for _, k := range a.ObjectKeys() {
		v, _ := a.ObjectGet(k)
		ob.Set(k, v)
	}
	for _, k := range b.ObjectKeys() {
		v, _ := b.ObjectGet(k)
		ob.Set(k, v)
	}
	return ob.Build(), nil
}

func biObjectGet(args []value.Value) (value.Value, error) {
	obj, key, fallback := args[0], args[1], args[2]
	if obj.Kind() != value.KindObject || key.Kind() != value.KindString {
		return fallback, nil
	}
	v, ok := obj.ObjectGet(key.Str())
	if !ok {
		return fallback, nil
	}
	return v, nil
}

func biObjectRemove(args []value.Value) (value.Value, error) {
	obj, key := args[0], args[1]
	if obj.Kind() != value.KindObject || key.Kind() != value.KindString {
		return value.Undefined, errArgType("object.remove", obj.Kind())
	}
	ob := value.NewObjectBuilder()
	for _, k := range obj.ObjectKeys() {
		if k == value.NormalizeKey(key.Str()) {
			continue
		}
		v, _ := obj.ObjectGet(k)
		ob.Set(k, v)
	}
	return ob.Build(), nil
}

func biArrayConcat(args []value.Value) (value.Value, error) {
	a, b := args[0], args[1]
	if a.Kind() != value.KindArray || b.Kind() != value.KindArray {
		return value.Undefined, errArgType("array.concat", a.Kind())
	}
	return value.Array(append(a.Array(), b.Array()...)), nil
}

// biArraySlice returns arr[start:end], clamping out-of-range bounds rather
// than erroring, matching the forgiving-bounds convention of the other
// collection builtins.
func biArraySlice(args []value.Value) (value.Value, error) {
	a, startV, endV := args[0], args[1], args[2]
	if a.Kind() != value.KindArray || startV.Kind() != value.KindNumber || endV.Kind() != value.KindNumber {
		return value.Undefined, errArgType("array.slice", a.Kind())
	}
	elems := a.Array()
	start, end := int(startV.Int()), int(endV.Int())
	if start < 0 {
		start = 0
	}
	if end > len(elems) {
		end = len(elems)
	}
	if start >= end {
		return value.Array(nil), nil
	}
	out := make([]value.Value, end-start)
	copy(out, elems[start:end])
	return value.Array(out), nil
}

func biNumbersRange(args []value.Value) (value.Value, error) {
	lo, hi := args[0], args[1]
	if lo.Kind() != value.KindNumber || hi.Kind() != value.KindNumber {
		return value.Undefined, errArgType("numbers.range", lo.Kind())
	}
	start, end := lo.Int(), hi.Int()
	if end < start {
		return value.Array(nil), nil
	}
	out := make([]value.Value, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, value.Int(n))
	}
	return value.Array(out), nil
}
