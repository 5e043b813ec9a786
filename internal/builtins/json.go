package builtins

import (
	"fmt"

	"github.com/wardlang/ward/internal/value"
)

// registerJSON wires JSON interop through value.ToJSONString/value.ParseJSON
// (internal/value/json.go), which in turn use tidwall/gjson, the same
// library the CLI layer uses for --profile rendering.
func registerJSON(r *Registry) {
	r.Register("json.marshal", 1, biJSONMarshal)
	r.Register("json.unmarshal", 1, biJSONUnmarshal)
	r.Register("json.is_valid", 1, biJSONIsValid)
}

func biJSONMarshal(args []value.Value) (value.Value, error) {
	return value.String(args[0].ToJSONString()), nil
}

func biJSONUnmarshal(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString {
		return value.Undefined, errArgType("json.unmarshal", args[0].Kind())
	}
	v, ok := value.ParseJSON(args[0].Str())
	if !ok {
		return value.Undefined, fmt.Errorf("json.unmarshal: invalid JSON")
	}
	return v, nil
}

func biJSONIsValid(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString {
		return value.Undefined, errArgType("json.is_valid", args[0].Kind())
	}
	_, ok := value.ParseJSON(args[0].Str())
	return value.Bool(ok), nil
}
