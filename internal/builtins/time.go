package builtins

import (
	"time"

	"github.com/wardlang/ward/internal/value"
)

// registerTime wires the time builtins: a fixed RFC3339 parse/format pair
// plus nanosecond-since-epoch arithmetic, the minimum surface policies
// need for expiry checks.
func registerTime(r *Registry) {
	r.Register("time.parse_rfc3339_ns", 1, biParseRFC3339)
	r.Register("time.format", 1, biFormatRFC3339)
	r.Register("time.now_ns", 0, biNowNS)
	r.Register("time.add_date", 4, biAddDate)
}

func biParseRFC3339(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString {
		return value.Undefined, errArgType("time.parse_rfc3339_ns", args[0].Kind())
	}
	t, err := time.Parse(time.RFC3339, args[0].Str())
	if err != nil {
		return value.Undefined, err
	}
	return value.Int(t.UnixNano()), nil
}

func biFormatRFC3339(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindNumber {
		return value.Undefined, errArgType("time.format", args[0].Kind())
	}
	t := time.Unix(0, args[0].Int()).UTC()
	return value.String(t.Format(time.RFC3339)), nil
}

// biNowNS is intentionally deterministic-unfriendly: callers who need
// reproducible policy evaluation should mock it via a `with time.now_ns as
// ...` override rather than relying on wall-clock time inside
// a test.
func biNowNS(args []value.Value) (value.Value, error) {
	return value.Int(time.Now().UnixNano()), nil
}

func biAddDate(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindNumber {
		return value.Undefined, errArgType("time.add_date", args[0].Kind())
	}
	base := time.Unix(0, args[0].Int()).UTC()
	years, months, days := args[1].Int(), args[2].Int(), args[3].Int()
	result := base.AddDate(int(years), int(months), int(days))
	return value.Int(result.UnixNano()), nil
}
