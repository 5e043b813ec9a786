// Package value implements Ward's tagged runtime Value: the sum type over
// null, bool, number, string, array, object, set, and the distinguished
// undefined sentinel.
//
// Value is immutable once constructed; arrays/objects/sets are copied on
// any mutating builder operation rather than aliased, so that a Value
// handed to one part of the evaluator is never surprised by a later
// mutation elsewhere.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Kind discriminates the Value sum type.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Undefined is the single distinguished "no result here" sentinel. It is
// falsy and participates in no equality: Equal(Undefined, Undefined) is false.
var Undefined = Value{kind: KindUndefined}

// Null is the JSON-null value, distinct from Undefined.
var Null = Value{kind: KindNull}

// True and False are the two boolean values.
var True = Value{kind: KindBool, b: true}
var False = Value{kind: KindBool, b: false}

// Value is the tagged sum. Zero value is Undefined.
type Value struct {
	kind  Kind
	b     bool
	isInt bool
	i     int64
	f     float64
	s     string
	arr   []Value
	obj   *object
	set   *setVal
}

// object preserves insertion order alongside a lookup map
// invariant: "object keys normalized ... insertion order retained".
type object struct {
	keys []string
	vals map[string]Value
}

type setVal struct {
	// items holds insertion order; index provides O(1) membership checks by
	// structural-equality key.
	items []Value
	index map[string]int
}

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(i int64) Value { return Value{kind: KindNumber, isInt: true, i: i} }

func Float(f float64) Value { return Value{kind: KindNumber, isInt: false, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func Array(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arr: cp}
}

// NormalizeKey applies NFC Unicode normalization to an atomic-key string
// form via golang.org/x/text/unicode/norm, so visually identical keys
// collide instead of coexisting.
func NormalizeKey(s string) string {
	return norm.NFC.String(s)
}

// ObjectBuilder accumulates key/value pairs; Set reports a duplicate
// normalized key to the caller (and keeps the later value).
type ObjectBuilder struct {
	keys []string
	vals map[string]Value
}

func NewObjectBuilder() *ObjectBuilder {
	return &ObjectBuilder{vals: make(map[string]Value)}
}

// Set inserts or overwrites key (after normalization). It reports whether
// the key already existed (duplicate-key construction error is the
// caller's responsibility, since some callers — e.g. partial-object
// dedup/merge — want that to be a recoverable situation rather than a hard
// panic).
func (b *ObjectBuilder) Set(key string, v Value) (existed bool) {
	key = NormalizeKey(key)
	if _, ok := b.vals[key]; ok {
		b.vals[key] = v
		return true
	}
	b.keys = append(b.keys, key)
	b.vals[key] = v
	return false
}

func (b *ObjectBuilder) Get(key string) (Value, bool) {
	v, ok := b.vals[NormalizeKey(key)]
	return v, ok
}

func (b *ObjectBuilder) Build() Value {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	vals := make(map[string]Value, len(b.vals))
	for k, v := range b.vals {
		vals[k] = v
	}
	return Value{kind: KindObject, obj: &object{keys: keys, vals: vals}}
}

func Object(pairs map[string]Value) Value {
	b := NewObjectBuilder()
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.Set(k, pairs[k])
	}
	return b.Build()
}

// Set builds a deduplicated Set from elems, in first-occurrence order.
func Set(elems []Value) Value {
	sv := &setVal{index: make(map[string]int)}
	for _, e := range elems {
		k := HashKey(e)
		if _, ok := sv.index[k]; ok {
			continue
		}
		sv.index[k] = len(sv.items)
		sv.items = append(sv.items, e)
	}
	return Value{kind: KindSet, set: sv}
}

// EmptySet is the canonical empty set value.
func EmptySet() Value { return Set(nil) }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }

// Truthy reports whether v counts as true: only false, null, and
// undefined are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

func (v Value) Bool() bool { return v.b }

func (v Value) IsInt() bool { return v.kind == KindNumber && v.isInt }

func (v Value) Int() int64 {
	if v.isInt {
		return v.i
	}
	return int64(v.f)
}

func (v Value) Float() float64 {
	if v.isInt {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Str() string { return v.s }

func (v Value) Array() []Value {
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return cp
}

func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj.keys)
	case KindSet:
		return len(v.set.items)
	case KindString:
		return len([]rune(v.s))
	default:
		return 0
	}
}

// ObjectKeys returns the object's keys in insertion order.
func (v Value) ObjectKeys() []string {
	if v.kind != KindObject {
		return nil
	}
	out := make([]string, len(v.obj.keys))
	copy(out, v.obj.keys)
	return out
}

// ObjectGet fetches a normalized-key lookup.
func (v Value) ObjectGet(key string) (Value, bool) {
	if v.kind != KindObject {
		return Undefined, false
	}
	val, ok := v.obj.vals[NormalizeKey(key)]
	return val, ok
}

// SetItems returns the set's elements in insertion order.
func (v Value) SetItems() []Value {
	if v.kind != KindSet {
		return nil
	}
	out := make([]Value, len(v.set.items))
	copy(out, v.set.items)
	return out
}

// SetContains reports structural membership.
func (v Value) SetContains(elem Value) bool {
	if v.kind != KindSet {
		return false
	}
	_, ok := v.set.index[HashKey(elem)]
	return ok
}

// FetchReference indexes one step into a structured value: arrays
// take an integer key, objects a normalized key, sets are not addressable,
// undefined stays undefined.
func (v Value) FetchReference(key Value) Value {
	switch v.kind {
	case KindArray:
		if key.Kind() != KindNumber {
			return Undefined
		}
		idx := key.Int()
		if idx < 0 || idx >= int64(len(v.arr)) {
			return Undefined
		}
		return v.arr[idx]
	case KindObject:
		if key.Kind() != KindString {
			return Undefined
		}
		val, ok := v.ObjectGet(key.s)
		if !ok {
			return Undefined
		}
		return val
	default:
		return Undefined
	}
}

// Equal is structural, type-sensitive equality: "1" never equals 1.
// Undefined equals nothing, not even itself.
func Equal(a, b Value) bool {
	if a.kind == KindUndefined || b.kind == KindUndefined {
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return numEqual(a, b)
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj.keys) != len(b.obj.keys) {
			return false
		}
		for _, k := range a.obj.keys {
			bv, ok := b.obj.vals[k]
			if !ok || !Equal(a.obj.vals[k], bv) {
				return false
			}
		}
		return true
	case KindSet:
		if len(a.set.items) != len(b.set.items) {
			return false
		}
		for _, item := range a.set.items {
			if !b.SetContains(item) {
				return false
			}
		}
		return true
	}
	return false
}

func numEqual(a, b Value) bool {
	if a.isInt && b.isInt {
		return a.i == b.i
	}
	return a.Float() == b.Float()
}

// HashKey produces a deterministic string encoding used for set
// deduplication and object-comprehension key-conflict detection. It is not
// meant to be human-facing.
func HashKey(v Value) string {
	switch v.kind {
	case KindUndefined:
		return "u:"
	case KindNull:
		return "n:"
	case KindBool:
		if v.b {
			return "b:1"
		}
		return "b:0"
	case KindNumber:
		if v.isInt {
			return "i:" + strconv.FormatInt(v.i, 10)
		}
		return "f:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return "s:" + v.s
	case KindArray:
		s := "a:["
		for _, e := range v.arr {
			s += HashKey(e) + ","
		}
		return s + "]"
	case KindObject:
		s := "o:{"
		for _, k := range v.obj.keys {
			s += k + "=" + HashKey(v.obj.vals[k]) + ","
		}
		return s + "}"
	case KindSet:
		// Sets hash by sorted member keys so two sets built in different
		// orders with the same members compare equal as members of an
		// outer set.
		keys := make([]string, 0, len(v.set.items))
		for _, item := range v.set.items {
			keys = append(keys, HashKey(item))
		}
		sort.Strings(keys)
		s := "t:{"
		for _, k := range keys {
			s += k + ","
		}
		return s + "}"
	default:
		return "?:"
	}
}

// String renders a Value for debugging/printing (not JSON — see
// ToJSONString for JSON rendering).
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindNumber:
		if v.isInt {
			return strconv.FormatInt(v.i, 10)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindArray:
		s := "["
		for i, e := range v.arr {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + "]"
	case KindObject:
		s := "{"
		for i, k := range v.obj.keys {
			if i > 0 {
				s += ", "
			}
			s += strconv.Quote(k) + ": " + v.obj.vals[k].String()
		}
		return s + "}"
	case KindSet:
		s := "{"
		for i, e := range v.set.items {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + "}"
	}
	return "?"
}

// AddNumbers implements + for two numeric Values, promoting to float64 when
// either operand is float or the integer addition overflows.
func AddNumbers(a, b Value) Value {
	if a.isInt && b.isInt {
		sum := a.i + b.i
		if (sum-b.i != a.i) || overflowsAdd(a.i, b.i) {
			return Float(float64(a.i) + float64(b.i))
		}
		return Int(sum)
	}
	return Float(a.Float() + b.Float())
}

func overflowsAdd(a, b int64) bool {
	if b > 0 && a > math.MaxInt64-b {
		return true
	}
	if b < 0 && a < math.MinInt64-b {
		return true
	}
	return false
}
