package builtins

import (
	"strings"

	"github.com/wardlang/ward/internal/value"
)

func registerStrings(r *Registry) {
	r.Register("concat", 2, biConcat)
	r.Register("contains", 2, biContains)
	r.Register("startswith", 2, biStartsWith)
	r.Register("endswith", 2, biEndsWith)
	r.Register("upper", 1, biUpper)
	r.Register("lower", 1, biLower)
	r.Register("trim", 1, biTrim)
	r.Register("split", 2, biSplit)
	r.Register("sprintf", 2, biSprintfLite)
	r.Register("format_int", 2, biFormatInt)
}

func biConcat(args []value.Value) (value.Value, error) {
	sep := args[0]
	elems, ok := elementsOf(args[1])
	if sep.Kind() != value.KindString || !ok {
		return value.Undefined, errArgType("concat", args[1].Kind())
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		if e.Kind() != value.KindString {
			return value.Undefined, errArgType("concat", e.Kind())
		}
		parts[i] = e.Str()
	}
	return value.String(strings.Join(parts, sep.Str())), nil
}

func biContains(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
		return value.Undefined, errArgType("contains", args[0].Kind())
	}
	return value.Bool(strings.Contains(args[0].Str(), args[1].Str())), nil
}

func biStartsWith(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
		return value.Undefined, errArgType("startswith", args[0].Kind())
	}
	return value.Bool(strings.HasPrefix(args[0].Str(), args[1].Str())), nil
}

func biEndsWith(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
		return value.Undefined, errArgType("endswith", args[0].Kind())
	}
	return value.Bool(strings.HasSuffix(args[0].Str(), args[1].Str())), nil
}

func biUpper(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString {
		return value.Undefined, errArgType("upper", args[0].Kind())
	}
	return value.String(strings.ToUpper(args[0].Str())), nil
}

func biLower(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString {
		return value.Undefined, errArgType("lower", args[0].Kind())
	}
	return value.String(strings.ToLower(args[0].Str())), nil
}

func biTrim(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString {
		return value.Undefined, errArgType("trim", args[0].Kind())
	}
	return value.String(strings.TrimSpace(args[0].Str())), nil
}

func biSplit(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
		return value.Undefined, errArgType("split", args[0].Kind())
	}
	parts := strings.Split(args[0].Str(), args[1].Str())
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return value.Array(out), nil
}

// biSprintfLite implements a minimal sprintf(format, args) over %s/%d/%v
// verbs applied positionally against an array of values — enough for
// policy messages without pulling in the full fmt verb surface.
func biSprintfLite(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString {
		return value.Undefined, errArgType("sprintf", args[0].Kind())
	}
	elems, ok := elementsOf(args[1])
	if !ok {
		return value.Undefined, errArgType("sprintf", args[1].Kind())
	}
	var sb strings.Builder
	argIdx := 0
	runes := []rune(args[0].Str())
	for i := 0; i < len(runes); i++ {
		if runes[i] == '%' && i+1 < len(runes) {
			verb := runes[i+1]
			if verb == 's' || verb == 'd' || verb == 'v' {
				if argIdx < len(elems) {
					if elems[argIdx].Kind() == value.KindString {
						sb.WriteString(elems[argIdx].Str())
					} else {
						sb.WriteString(elems[argIdx].String())
					}
					argIdx++
				}
				i++
				continue
			}
		}
		sb.WriteRune(runes[i])
	}
	return value.String(sb.String()), nil
}

func biFormatInt(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindNumber || args[1].Kind() != value.KindNumber {
		return value.Undefined, errArgType("format_int", args[0].Kind())
	}
	base := args[1].Int()
	return value.String(formatIntBase(args[0].Int(), int(base))), nil
}

func formatIntBase(n int64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	neg := n < 0
	if neg {
		n = -n
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%int64(base)]}, buf...)
		n /= int64(base)
	}
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}
