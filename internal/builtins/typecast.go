package builtins

import (
	"strconv"

	"github.com/wardlang/ward/internal/value"
)

func registerTypeCasts(r *Registry) {
	r.Register("is_string", 1, biIsString)
	r.Register("is_number", 1, biIsNumber)
	r.Register("is_boolean", 1, biIsBoolean)
	r.Register("is_array", 1, biIsArray)
	r.Register("is_object", 1, biIsObject)
	r.Register("is_set", 1, biIsSet)
	r.Register("is_null", 1, biIsNull)
	r.Register("to_number", 1, biToNumber)
	r.Register("type_name", 1, biTypeName)
}

func biIsString(args []value.Value) (value.Value, error)  { return value.Bool(args[0].Kind() == value.KindString), nil }
func biIsNumber(args []value.Value) (value.Value, error)  { return value.Bool(args[0].Kind() == value.KindNumber), nil }
func biIsBoolean(args []value.Value) (value.Value, error) { return value.Bool(args[0].Kind() == value.KindBool), nil }
func biIsArray(args []value.Value) (value.Value, error)   { return value.Bool(args[0].Kind() == value.KindArray), nil }
func biIsObject(args []value.Value) (value.Value, error)  { return value.Bool(args[0].Kind() == value.KindObject), nil }
func biIsSet(args []value.Value) (value.Value, error)     { return value.Bool(args[0].Kind() == value.KindSet), nil }
func biIsNull(args []value.Value) (value.Value, error)    { return value.Bool(args[0].Kind() == value.KindNull), nil }

func biToNumber(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.KindNumber:
		return v, nil
	case value.KindString:
		if i, err := strconv.ParseInt(v.Str(), 10, 64); err == nil {
			return value.Int(i), nil
		}
		f, err := strconv.ParseFloat(v.Str(), 64)
		if err != nil {
			return value.Undefined, err
		}
		return value.Float(f), nil
	case value.KindBool:
		if v.Bool() {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	default:
		return value.Undefined, errArgType("to_number", v.Kind())
	}
}

func biTypeName(args []value.Value) (value.Value, error) {
	return value.String(args[0].Kind().String()), nil
}
