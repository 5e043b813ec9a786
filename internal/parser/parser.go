// Package parser implements a Pratt-style expression parser plus the
// rule/module grammar for the Ward policy language.
//
// Error recovery: on a ParserError inside a statement, the parser records it
// and advances to the next `;`, newline, or statement-starting keyword, then
// keeps parsing; Errors returns them in order and pkg/ward's Parse reports
// the first, so position reporting stays deterministic even though parsing
// continues.
package parser

import (
	"fmt"

	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/lexer"
	"github.com/wardlang/ward/internal/token"
)

// Error is a ParserError: malformed grammar with a location and, where
// available, the offending token's printable form.
type Error struct {
	Message string
	Pos     token.Position
	Context string
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s at %s (near %s)", e.Message, e.Pos, e.Context)
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Precedence levels, low to high.
const (
	_ int = iota
	LOWEST
	PREC_OR    // |
	PREC_AND   // &
	PREC_EQ    // == != = :=
	PREC_CMP   // < <= > >=
	PREC_SUM   // + -
	PREC_PROD  // * / %
	PREC_PREFIX
	PREC_POSTFIX // . [ (
)

var precedences = map[token.Kind]int{
	token.PIPE:    PREC_OR,
	token.AMP:     PREC_AND,
	token.EQ:      PREC_EQ,
	token.NEQ:     PREC_EQ,
	token.UNIFY:   PREC_EQ,
	token.ASSIGN:  PREC_EQ,
	token.LT:      PREC_CMP,
	token.LTE:     PREC_CMP,
	token.GT:      PREC_CMP,
	token.GTE:     PREC_CMP,
	token.IN:      PREC_CMP,
	token.PLUS:    PREC_SUM,
	token.MINUS:   PREC_SUM,
	token.STAR:    PREC_PROD,
	token.SLASH:   PREC_PROD,
	token.PERCENT: PREC_PROD,
	token.LPAREN:  PREC_POSTFIX,
	token.LBRACK:  PREC_POSTFIX,
	token.DOT:     PREC_POSTFIX,
}

type prefixFn func() ast.Expr
type infixFn func(ast.Expr) ast.Expr

// Parser turns a token stream into a *ast.Module.
type Parser struct {
	l      *lexer.Lexer
	cur    token.Token
	peek   token.Token
	depth  int // open (/[ nesting; NEWLINE is insignificant while depth > 0
	errors []*Error

	prefixFns map[token.Kind]prefixFn
	infixFns  map[token.Kind]infixFn
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.prefixFns = map[token.Kind]prefixFn{
		token.NULL:       p.parseNull,
		token.TRUE:       p.parseBool,
		token.FALSE:      p.parseBool,
		token.NUMBER:     p.parseNumber,
		token.STRING:     p.parseString,
		token.RAW_STRING: p.parseRawString,
		token.IDENT:      p.parseIdentOrKeywordRef,
		token.UNDERSCORE:  p.parseWildcard,
		token.DATA:        p.parseRootRef,
		token.INPUT:       p.parseRootRef,
		token.NOT:         p.parseNot,
		token.MINUS:       p.parseUnaryMinus,
		token.LPAREN:      p.parseGrouped,
		token.LBRACK:      p.parseArrayOrCompr,
		token.LBRACE:      p.parseBracedLiteral,
		token.EVERY:       p.parseEvery,
		token.SOME:        p.parseSomeExpr,
	}
	p.infixFns = map[token.Kind]infixFn{
		token.PIPE:    p.parseBinary,
		token.AMP:     p.parseBinary,
		token.EQ:      p.parseBinary,
		token.NEQ:     p.parseBinary,
		token.UNIFY:   p.parseBinary,
		token.ASSIGN:  p.parseBinary,
		token.LT:      p.parseBinary,
		token.LTE:     p.parseBinary,
		token.GT:      p.parseBinary,
		token.GTE:     p.parseBinary,
		token.IN:      p.parseBinary,
		token.PLUS:    p.parseBinary,
		token.MINUS:   p.parseBinary,
		token.STAR:    p.parseBinary,
		token.SLASH:   p.parseBinary,
		token.PERCENT: p.parseBinary,
		token.LPAREN:  p.parseCall,
		token.LBRACK:  p.parseIndex,
		token.DOT:     p.parseDotRef,
	}
	p.advance()
	p.advance()
	return p
}

// Errors returns every ParserError recorded during parsing.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, &Error{Message: fmt.Sprintf(format, args...), Pos: pos, Context: p.cur.Literal})
}

// rawNext fetches the next non-comment token from the lexer, unconditionally.
func (p *Parser) rawNext() token.Token {
	return p.l.NextToken()
}

// advance moves cur/peek forward by one significant token, swallowing
// NEWLINE tokens while inside (/[. Inside braces NEWLINE stays a separator.
func (p *Parser) advance() {
	p.cur = p.peek
	next := p.rawNext()
	for next.Kind == token.NEWLINE && p.depth > 0 {
		next = p.rawNext()
	}
	p.peek = next
	p.adjustDepth(p.cur.Kind)
}

func (p *Parser) adjustDepth(k token.Kind) {
	switch k {
	case token.LPAREN, token.LBRACK:
		p.depth++
	case token.RPAREN, token.RBRACK:
		if p.depth > 0 {
			p.depth--
		}
	}
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.curIs(k) {
		t := p.cur
		p.advance()
		return t, true
	}
	p.errorf(p.cur.Pos, "expected %s, got %s", k, p.cur.Kind)
	return token.Token{}, false
}

// skipSeparators consumes any run of `;` and NEWLINE tokens.
func (p *Parser) skipSeparators() {
	for p.curIs(token.SEMI) || p.curIs(token.NEWLINE) {
		p.advance()
	}
}

// synchronize implements panic-mode recovery:
// advance to the next `;`, newline, or statement-starting token.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMI) || p.curIs(token.NEWLINE) {
			p.advance()
			return
		}
		if p.curIs(token.IDENT) || p.curIs(token.DEFAULT) || p.curIs(token.IMPORT) {
			return
		}
		p.advance()
	}
}

// ParseModule parses a full source document into a Module:
// `package` then zero or more imports and rule statements.
func (p *Parser) ParseModule() *ast.Module {
	mod := &ast.Module{PackagePos: p.cur.Pos}

	if !p.curIs(token.PACKAGE) {
		p.errorf(p.cur.Pos, "expected 'package' declaration, got %s", p.cur.Kind)
	} else {
		p.advance()
		mod.PackagePath = p.parseDottedPath()
	}
	p.skipSeparators()

	for !p.curIs(token.EOF) {
		if p.curIs(token.IMPORT) {
			if imp := p.parseImport(); imp != nil {
				mod.Imports = append(mod.Imports, imp)
			}
			p.skipSeparators()
			continue
		}
		if p.curIs(token.IDENT) || p.curIs(token.DEFAULT) {
			if rule := p.parseRule(); rule != nil {
				mod.Rules = append(mod.Rules, rule)
			}
			p.skipSeparators()
			continue
		}
		if p.curIs(token.SEMI) || p.curIs(token.NEWLINE) {
			p.advance()
			continue
		}
		p.errorf(p.cur.Pos, "unexpected token %s at module level", p.cur.Kind)
		p.synchronize()
	}

	return mod
}

func (p *Parser) parseDottedPath() []string {
	var parts []string
	if !p.curIs(token.IDENT) {
		p.errorf(p.cur.Pos, "expected identifier, got %s", p.cur.Kind)
		return parts
	}
	parts = append(parts, p.cur.Literal)
	p.advance()
	for p.curIs(token.DOT) {
		p.advance()
		if !p.curIs(token.IDENT) {
			p.errorf(p.cur.Pos, "expected identifier after '.', got %s", p.cur.Kind)
			break
		}
		parts = append(parts, p.cur.Literal)
		p.advance()
	}
	return parts
}

func (p *Parser) parseImport() *ast.Import {
	pos := p.cur.Pos
	p.advance() // 'import'
	startKind := p.cur.Kind
	var path string
	if startKind == token.DATA || startKind == token.INPUT {
		path = p.cur.Literal
		p.advance()
		for p.curIs(token.DOT) {
			p.advance()
			if !p.curIs(token.IDENT) {
				p.errorf(p.cur.Pos, "expected identifier after '.', got %s", p.cur.Kind)
				break
			}
			path += "." + p.cur.Literal
			p.advance()
		}
	} else {
		parts := p.parseDottedPath()
		path = joinDotted(parts)
	}
	imp := &ast.Import{Path: path, ImportPos: pos}
	if p.curIs(token.AS) {
		p.advance()
		if p.curIs(token.INPUT) || p.curIs(token.DATA) {
			imp.Alias = p.cur.Literal
			p.advance()
		} else if alias, ok := p.expect(token.IDENT); ok {
			imp.Alias = alias.Literal
		}
	}
	return imp
}

func joinDotted(parts []string) string {
	out := ""
	for i, part := range parts {
		if i > 0 {
			out += "."
		}
		out += part
	}
	return out
}

// ParseExpression parses a single standalone expression at the lowest
// precedence, e.g. a query path or literal supplied to pkg/ward.Evaluate
// Callers should check Errors()
// afterward.
func (p *Parser) ParseExpression() ast.Expr {
	return p.parseExpression(LOWEST)
}

// parseExpression is the Pratt-parsing core: parse a prefix expression then
// fold in infix operators while the next operator binds tighter than
// precedence.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix, ok := p.prefixFns[p.cur.Kind]
	if !ok {
		p.errorf(p.cur.Pos, "unexpected token %s in expression", p.cur.Kind)
		p.advance()
		return &ast.NullLit{Tok: token.Token{Kind: token.NULL, Pos: p.cur.Pos}}
	}
	left := prefix()

	for !p.curIs(token.SEMI) && !p.curIs(token.NEWLINE) && precedence < p.curPrecedence() {
		infix, ok := p.infixFns[p.cur.Kind]
		if !ok {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur.Kind]; ok {
		return prec
	}
	return LOWEST
}
