package lexer

import (
	"testing"

	"github.com/wardlang/ward/internal/token"
)

func TestNextTokenSymbols(t *testing.T) {
	input := `:= = == != <= >= < > + - * / % | & ( ) [ ] { } , : ; .`
	expected := []token.Kind{
		token.ASSIGN, token.UNIFY, token.EQ, token.NEQ, token.LTE, token.GTE,
		token.LT, token.GT, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.PERCENT, token.PIPE, token.AMP, token.LPAREN, token.RPAREN,
		token.LBRACK, token.RBRACK, token.LBRACE, token.RBRACE, token.COMMA,
		token.COLON, token.SEMI, token.DOT, token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Kind != want {
			t.Fatalf("token %d: got %s, want %s", i, tok.Kind, want)
		}
	}
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
}

func TestNextTokenKeywordsAndIdents(t *testing.T) {
	input := `package import as default if contains some in every not with else true false null data input foo _`
	expected := []token.Kind{
		token.PACKAGE, token.IMPORT, token.AS, token.DEFAULT, token.IF,
		token.CONTAINS, token.SOME, token.IN, token.EVERY, token.NOT,
		token.WITH, token.ELSE, token.TRUE, token.FALSE, token.NULL,
		token.DATA, token.INPUT, token.IDENT, token.UNDERSCORE, token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Kind != want {
			t.Fatalf("token %d (%q): got %s, want %s", i, tok.Literal, tok.Kind, want)
		}
	}
}

func TestNextTokenNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e10", "1e10"},
		{"1.5e-3", "1.5e-3"},
		{"2E+4", "2E+4"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Kind != token.NUMBER {
			t.Fatalf("input %q: got kind %s, want NUMBER", tt.input, tok.Kind)
		}
		if tok.Literal != tt.want {
			t.Fatalf("input %q: got literal %q, want %q", tt.input, tok.Literal, tt.want)
		}
		if errs := l.Errors(); len(errs) > 0 {
			t.Fatalf("input %q: unexpected errors %v", tt.input, errs)
		}
	}
}

func TestNextTokenLeadingZeroIsError(t *testing.T) {
	l := New("007")
	tok := l.NextToken()
	if tok.Kind != token.NUMBER {
		t.Fatalf("got kind %s, want NUMBER", tok.Kind)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(l.Errors()))
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	l := New(`"a\nb\tcA"`)
	tok := l.NextToken()
	if tok.Kind != token.STRING {
		t.Fatalf("got kind %s, want STRING", tok.Kind)
	}
	want := "a\nb\tcA"
	if tok.Literal != want {
		t.Fatalf("got literal %q, want %q", tok.Literal, want)
	}
}

func TestNextTokenUnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	l.NextToken()
	if len(l.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(l.Errors()))
	}
}

func TestNextTokenRawString(t *testing.T) {
	l := New("`a\\{b}c`")
	tok := l.NextToken()
	if tok.Kind != token.RAW_STRING {
		t.Fatalf("got kind %s, want RAW_STRING", tok.Kind)
	}
	want := "a{b}c"
	if tok.Literal != want {
		t.Fatalf("got literal %q, want %q", tok.Literal, want)
	}
}

func TestNextTokenComment(t *testing.T) {
	l := New("foo # a trailing comment\nbar")
	tok := l.NextToken()
	if tok.Kind != token.IDENT || tok.Literal != "foo" {
		t.Fatalf("got %v, want IDENT(foo)", tok)
	}
	tok = l.NextToken()
	if tok.Kind != token.NEWLINE {
		t.Fatalf("got %v, want NEWLINE", tok)
	}
	tok = l.NextToken()
	if tok.Kind != token.IDENT || tok.Literal != "bar" {
		t.Fatalf("got %v, want IDENT(bar)", tok)
	}
}

func TestNextTokenIllegalCharacter(t *testing.T) {
	l := New("@")
	tok := l.NextToken()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("got kind %s, want ILLEGAL", tok.Kind)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(l.Errors()))
	}
}

func TestNextTokenBOMStripped(t *testing.T) {
	l := New("\xEF\xBB\xBFpackage")
	tok := l.NextToken()
	if tok.Kind != token.PACKAGE {
		t.Fatalf("got kind %s, want PACKAGE", tok.Kind)
	}
	if tok.Pos.Column != 1 {
		t.Fatalf("got column %d, want 1", tok.Pos.Column)
	}
}

func TestNextTokenPositions(t *testing.T) {
	l := New("foo\nbar")
	first := l.NextToken()
	if first.Pos.Line != 1 {
		t.Fatalf("got line %d, want 1", first.Pos.Line)
	}
	nl := l.NextToken()
	if nl.Kind != token.NEWLINE {
		t.Fatalf("got %v, want NEWLINE", nl)
	}
	second := l.NextToken()
	if second.Pos.Line != 2 {
		t.Fatalf("got line %d, want 2", second.Pos.Line)
	}
}
