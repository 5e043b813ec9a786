package cliutil

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/wardlang/ward/pkg/ward"
)

// RenderJSON incrementally builds a JSON document for res via
// github.com/tidwall/sjson (one set call per field).
func RenderJSON(res ward.Result) (string, error) {
	doc := "{}"
	var err error
	if doc, err = sjson.SetRaw(doc, "result", res.Value.ToJSONString()); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "success", res.Success); err != nil {
		return "", err
	}

	bindingsRaw := "{}"
	for k, v := range res.Bindings {
		if bindingsRaw, err = sjson.SetRaw(bindingsRaw, sjsonKey(k), v.ToJSONString()); err != nil {
			return "", err
		}
	}
	if doc, err = sjson.SetRaw(doc, "bindings", bindingsRaw); err != nil {
		return "", err
	}

	errsRaw := "[]"
	for i, e := range res.Errors {
		quoted := strconv.Quote(e.Error())
		if errsRaw, err = sjson.SetRaw(errsRaw, strconv.Itoa(i), quoted); err != nil {
			return "", err
		}
	}
	if doc, err = sjson.SetRaw(doc, "errors", errsRaw); err != nil {
		return "", err
	}
	return doc, nil
}

// sjsonKey escapes a binding/object key for use as an sjson path segment,
// since sjson treats '.' and '*' specially in its path syntax.
func sjsonKey(k string) string {
	out := make([]byte, 0, len(k))
	for _, r := range k {
		if r == '.' || r == '*' || r == '?' || r == ':' {
			out = append(out, '\\')
		}
		out = append(out, byte(r))
	}
	return string(out)
}

// PrettyJSON re-indents a JSON document via github.com/tidwall/pretty.
func PrettyJSON(raw string) string {
	return string(pretty.Pretty([]byte(raw)))
}

// RenderText renders res in the plain human-readable format.
func RenderText(res ward.Result) string {
	if !res.Success {
		if len(res.Errors) > 0 {
			return fmt.Sprintf("undefined (%d error(s))", len(res.Errors))
		}
		return "undefined"
	}
	out := res.Value.String()
	for name, v := range res.Bindings {
		out += fmt.Sprintf("\n  %s = %s", name, v.String())
	}
	return out
}

// Trace is the minimal timing/rule-count document --profile builds and
// then reads back through gjson.
type Trace struct {
	DurationNS int64 `json:"duration_ns"`
	RuleCount  int   `json:"rule_count"`
}

// BuildTrace renders a Trace as a JSON document via sjson.
func BuildTrace(d time.Duration, ruleCount int) (string, error) {
	doc := "{}"
	doc, err := sjson.Set(doc, "duration_ns", d.Nanoseconds())
	if err != nil {
		return "", err
	}
	return sjson.Set(doc, "rule_count", ruleCount)
}

// RenderProfile pulls duration_ns/rule_count back out of a trace document
// with gjson and formats a one-line profile summary.
func RenderProfile(traceJSON string) string {
	durNS := gjson.Get(traceJSON, "duration_ns").Int()
	rules := gjson.Get(traceJSON, "rule_count").Int()
	dur := time.Duration(durNS)
	return fmt.Sprintf("evaluated %d rule(s) in %s", rules, dur)
}
