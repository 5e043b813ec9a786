package builtins

import (
	"testing"

	"github.com/wardlang/ward/internal/value"
)

func TestBiCountAcrossKinds(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want int64
	}{
		{"string", value.String("hello"), 5},
		{"array", value.Array([]value.Value{value.Int(1), value.Int(2)}), 2},
		{"set", value.Set([]value.Value{value.Int(1), value.Int(1), value.Int(2)}), 2},
		{"object", value.Object(map[string]value.Value{"a": value.Int(1), "b": value.Int(2)}), 2},
	}
	for _, tt := range tests {
		got, err := biCount([]value.Value{tt.v})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got.Int() != tt.want {
			t.Fatalf("%s: got %v, want %d", tt.name, got, tt.want)
		}
	}
}

func TestBiSumAddsNumbers(t *testing.T) {
	got, err := biSum([]value.Value{value.Array([]value.Value{value.Int(1), value.Int(2), value.Float(0.5)})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Float() != 3.5 {
		t.Fatalf("got %v, want 3.5", got)
	}
}

func TestBiSumRejectsNonNumericElement(t *testing.T) {
	_, err := biSum([]value.Value{value.Array([]value.Value{value.Int(1), value.String("x")})})
	if err == nil {
		t.Fatal("expected an error for a non-numeric element")
	}
}

func TestBiMaxAndMin(t *testing.T) {
	arr := value.Array([]value.Value{value.Int(3), value.Int(1), value.Int(9), value.Int(4)})
	max, err := biMax([]value.Value{arr})
	if err != nil || max.Int() != 9 {
		t.Fatalf("got (%v, %v), want (9, nil)", max, err)
	}
	min, err := biMin([]value.Value{arr})
	if err != nil || min.Int() != 1 {
		t.Fatalf("got (%v, %v), want (1, nil)", min, err)
	}
}

func TestBiMaxOnEmptyCollectionIsUndefined(t *testing.T) {
	got, err := biMax([]value.Value{value.Array(nil)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsUndefined() {
		t.Fatalf("got %v, want Undefined", got)
	}
}

func TestBiSortOrdersNumbersAscending(t *testing.T) {
	arr := value.Array([]value.Value{value.Int(3), value.Int(1), value.Int(2)})
	got, err := biSort([]value.Value{arr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{1, 2, 3}
	elems := got.Array()
	for i, w := range want {
		if elems[i].Int() != w {
			t.Fatalf("position %d: got %v, want %d", i, elems[i], w)
		}
	}
}

func TestBiAllAndBiAny(t *testing.T) {
	allTrue := value.Array([]value.Value{value.True, value.True})
	mixed := value.Array([]value.Value{value.True, value.False})
	allFalse := value.Array([]value.Value{value.False, value.False})

	if got, _ := biAll([]value.Value{allTrue}); !got.Bool() {
		t.Fatal("all([true, true]) should be true")
	}
	if got, _ := biAll([]value.Value{mixed}); got.Bool() {
		t.Fatal("all([true, false]) should be false")
	}
	if got, _ := biAny([]value.Value{mixed}); !got.Bool() {
		t.Fatal("any([true, false]) should be true")
	}
	if got, _ := biAny([]value.Value{allFalse}); got.Bool() {
		t.Fatal("any([false, false]) should be false")
	}
}
