package builtins

import (
	"testing"

	"github.com/wardlang/ward/internal/value"
)

func TestBiConcatJoinsWithSeparator(t *testing.T) {
	got, err := biConcat([]value.Value{
		value.String(", "),
		value.Array([]value.Value{value.String("a"), value.String("b"), value.String("c")}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "a, b, c" {
		t.Fatalf("got %q, want %q", got.Str(), "a, b, c")
	}
}

func TestBiContainsStartsWithEndsWith(t *testing.T) {
	if got, _ := biContains([]value.Value{value.String("hello world"), value.String("wor")}); !got.Bool() {
		t.Fatal(`contains("hello world", "wor") should be true`)
	}
	if got, _ := biStartsWith([]value.Value{value.String("hello"), value.String("he")}); !got.Bool() {
		t.Fatal(`startswith("hello", "he") should be true`)
	}
	if got, _ := biEndsWith([]value.Value{value.String("hello"), value.String("lo")}); !got.Bool() {
		t.Fatal(`endswith("hello", "lo") should be true`)
	}
	if got, _ := biEndsWith([]value.Value{value.String("hello"), value.String("he")}); got.Bool() {
		t.Fatal(`endswith("hello", "he") should be false`)
	}
}

func TestBiUpperLowerTrim(t *testing.T) {
	if got, _ := biUpper([]value.Value{value.String("abc")}); got.Str() != "ABC" {
		t.Fatalf("got %q, want ABC", got.Str())
	}
	if got, _ := biLower([]value.Value{value.String("ABC")}); got.Str() != "abc" {
		t.Fatalf("got %q, want abc", got.Str())
	}
	if got, _ := biTrim([]value.Value{value.String("  padded  ")}); got.Str() != "padded" {
		t.Fatalf("got %q, want padded", got.Str())
	}
}

func TestBiSplit(t *testing.T) {
	got, err := biSplit([]value.Value{value.String("a,b,c"), value.String(",")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elems := got.Array()
	if len(elems) != 3 || elems[0].Str() != "a" || elems[2].Str() != "c" {
		t.Fatalf("got %v", elems)
	}
}

func TestBiSprintfLitePositionalVerbs(t *testing.T) {
	got, err := biSprintfLite([]value.Value{
		value.String("user %s has %d roles"),
		value.Array([]value.Value{value.String("alice"), value.Int(3)}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "user alice has 3 roles"
	if got.Str() != want {
		t.Fatalf("got %q, want %q", got.Str(), want)
	}
}

func TestBiFormatIntBases(t *testing.T) {
	got, err := biFormatInt([]value.Value{value.Int(255), value.Int(16)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "ff" {
		t.Fatalf("got %q, want ff", got.Str())
	}
}

func TestBiFormatIntNegative(t *testing.T) {
	got, err := biFormatInt([]value.Value{value.Int(-10), value.Int(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "-1010" {
		t.Fatalf("got %q, want -1010", got.Str())
	}
}

func TestBiConcatRejectsNonStringElement(t *testing.T) {
	_, err := biConcat([]value.Value{value.String(","), value.Array([]value.Value{value.Int(1)})})
	if err == nil {
		t.Fatal("expected an error for a non-string element")
	}
}
