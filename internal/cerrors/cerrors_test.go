package cerrors

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/wardlang/ward/internal/token"
)

func TestDiagnosticErrorWithoutFile(t *testing.T) {
	d := New("parse", "unexpected token )", "", "", token.Position{Line: 3, Column: 7})
	got := d.Error()
	want := "parse error at 3:7\nunexpected token )"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDiagnosticFormatPlainHasNoANSICodes(t *testing.T) {
	d := New("compile", "unsafe negation: unbound variables x", "deny { not x }", "policy.ward", token.Position{Line: 1, Column: 14})
	got := d.Format(false)
	if got == "" {
		t.Fatal("expected non-empty formatted output")
	}
	for _, code := range []string{"\033[1;31m", "\033[1m", "\033[0m"} {
		if containsString(got, code) {
			t.Fatalf("plain format should not contain ANSI code %q, got %q", code, got)
		}
	}
}

func TestFormatAllSingleDiagnosticMatchesItsOwnFormat(t *testing.T) {
	d := New("lex", "illegal character '@'", "@", "", token.Position{Line: 1, Column: 1})
	if FormatAll([]*Diagnostic{d}, false) != d.Format(false) {
		t.Fatal("FormatAll of a single diagnostic should equal that diagnostic's own Format")
	}
}

func TestFormatAllEmptyIsEmptyString(t *testing.T) {
	if got := FormatAll(nil, false); got != "" {
		t.Fatalf("got %q, want empty string", got)
	}
}

// TestFormatAllSourceContextSnapshot pins the multi-error rendering Ward's
// CLI prints on a module with several compile errors: source excerpt,
// caret column, and the "[i of n]" numbering.
func TestFormatAllSourceContextSnapshot(t *testing.T) {
	src := "package p\n\ndeny { not x }\nallow { not y }\n"
	diags := []*Diagnostic{
		New("compile", "unsafe negation: unbound variables x", src, "policy.ward", token.Position{Line: 3, Column: 12}),
		New("compile", "unsafe negation: unbound variables y", src, "policy.ward", token.Position{Line: 4, Column: 13}),
	}
	snaps.MatchSnapshot(t, "multi_error_rendering", FormatAll(diags, false))
}

func containsString(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
