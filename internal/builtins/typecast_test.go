package builtins

import (
	"testing"

	"github.com/wardlang/ward/internal/value"
)

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		name string
		fn   Handler
		v    value.Value
		want bool
	}{
		{"is_string true", biIsString, value.String("x"), true},
		{"is_string false", biIsString, value.Int(1), false},
		{"is_number true", biIsNumber, value.Int(1), true},
		{"is_boolean true", biIsBoolean, value.True, true},
		{"is_array true", biIsArray, value.Array(nil), true},
		{"is_object true", biIsObject, value.Object(nil), true},
		{"is_set true", biIsSet, value.EmptySet(), true},
		{"is_null true", biIsNull, value.Null, true},
		{"is_null false", biIsNull, value.Int(0), false},
	}
	for _, tt := range tests {
		got, err := tt.fn([]value.Value{tt.v})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got.Bool() != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.name, got.Bool(), tt.want)
		}
	}
}

func TestBiToNumberFromString(t *testing.T) {
	got, err := biToNumber([]value.Value{value.String("42")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsInt() || got.Int() != 42 {
		t.Fatalf("got %v, want int 42", got)
	}

	gotF, err := biToNumber([]value.Value{value.String("3.5")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotF.Float() != 3.5 {
		t.Fatalf("got %v, want 3.5", gotF)
	}
}

func TestBiToNumberFromBool(t *testing.T) {
	got, _ := biToNumber([]value.Value{value.True})
	if got.Int() != 1 {
		t.Fatalf("got %v, want 1", got)
	}
	got, _ = biToNumber([]value.Value{value.False})
	if got.Int() != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestBiToNumberRejectsUnparseableString(t *testing.T) {
	if _, err := biToNumber([]value.Value{value.String("not a number")}); err == nil {
		t.Fatal("expected an error for an unparseable string")
	}
}

func TestBiTypeName(t *testing.T) {
	got, err := biTypeName([]value.Value{value.String("x")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != value.KindString.String() {
		t.Fatalf("got %q, want %q", got.Str(), value.KindString.String())
	}
}
