package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ToJSONString renders v as a JSON document: sets have no JSON counterpart,
// so they render as a deterministically sorted array (same convention the
// builtin json.marshal uses). Undefined renders as null, matching the
// "missing key" shape a caller would see from a plain JSON document.
func (v Value) ToJSONString() string {
	var sb strings.Builder
	writeJSON(&sb, v)
	return sb.String()
}

func writeJSON(sb *strings.Builder, v Value) {
	switch v.Kind() {
	case KindUndefined, KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.Bool() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		if v.IsInt() {
			sb.WriteString(strconv.FormatInt(v.Int(), 10))
		} else {
			sb.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
		}
	case KindString:
		sb.WriteString(strconv.Quote(v.Str()))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.Array() {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeJSON(sb, e)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, k := range v.ObjectKeys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			fv, _ := v.ObjectGet(k)
			writeJSON(sb, fv)
		}
		sb.WriteByte('}')
	case KindSet:
		items := v.SetItems()
		sort.Slice(items, func(i, j int) bool { return HashKey(items[i]) < HashKey(items[j]) })
		sb.WriteByte('[')
		for i, e := range items {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeJSON(sb, e)
		}
		sb.WriteByte(']')
	}
}

// ParseJSON decodes a JSON document into a Value via gjson; it backs the
// json.unmarshal and json.is_valid builtins (the CLI's --input/--data
// loaders decode through go-yaml instead). It reports false for malformed
// JSON.
func ParseJSON(s string) (Value, bool) {
	if !gjson.Valid(s) {
		return Undefined, false
	}
	return gjsonToValue(gjson.Parse(s)), true
}

// FromAny converts a generic Go value — as produced by encoding/json's or
// goccy/go-yaml's decode-into-interface{} — into a Value. Map keys are
// normalized like any other object key. Any type not in JSON/YAML's native
// set (a decoder bug, or a caller passing something exotic) is rejected
// rather than silently coerced.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Int(int64(t)), nil
	case float64:
		return Float(t), nil
	case float32:
		return Float(float64(t)), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Undefined, err
			}
			elems[i] = v
		}
		return Array(elems), nil
	case map[string]any:
		ob := NewObjectBuilder()
		for k, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Undefined, err
			}
			ob.Set(k, v)
		}
		return ob.Build(), nil
	case map[any]any:
		ob := NewObjectBuilder()
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return Undefined, fmt.Errorf("value.FromAny: non-string map key %v (%T)", k, k)
			}
			v, err := FromAny(e)
			if err != nil {
				return Undefined, err
			}
			ob.Set(ks, v)
		}
		return ob.Build(), nil
	default:
		return Undefined, fmt.Errorf("value.FromAny: unsupported type %T", x)
	}
}

func gjsonToValue(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null
	case gjson.True:
		return True
	case gjson.False:
		return False
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return Int(i)
			}
		}
		return Float(r.Num)
	case gjson.String:
		return String(r.String())
	case gjson.JSON:
		if r.IsArray() {
			var elems []Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, gjsonToValue(v))
				return true
			})
			return Array(elems)
		}
		ob := NewObjectBuilder()
		r.ForEach(func(k, v gjson.Result) bool {
			ob.Set(k.String(), gjsonToValue(v))
			return true
		})
		return ob.Build()
	default:
		return Null
	}
}
