package parser

import (
	"strconv"
	"strings"

	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
)

func (p *Parser) parseNull() ast.Expr {
	t := p.cur
	p.advance()
	return &ast.NullLit{Tok: t}
}

func (p *Parser) parseBool() ast.Expr {
	t := p.cur
	p.advance()
	return &ast.BoolLit{Tok: t, Value: t.Kind == token.TRUE}
}

func (p *Parser) parseNumber() ast.Expr {
	t := p.cur
	p.advance()
	lit := &ast.NumberLit{Tok: t, Raw: t.Literal}
	if !strings.ContainsAny(t.Literal, ".eE") {
		if iv, err := strconv.ParseInt(t.Literal, 10, 64); err == nil {
			lit.IsInt = true
			lit.Int = iv
			return lit
		}
	}
	fv, err := strconv.ParseFloat(t.Literal, 64)
	if err != nil {
		p.errorf(t.Pos, "invalid number literal %q", t.Literal)
	}
	lit.Float = fv
	return lit
}

func (p *Parser) parseString() ast.Expr {
	t := p.cur
	p.advance()
	return &ast.StringLit{Tok: t, Value: t.Literal}
}

func (p *Parser) parseRawString() ast.Expr {
	t := p.cur
	p.advance()
	return &ast.StringLit{Tok: t, Value: t.Literal}
}

func (p *Parser) parseWildcard() ast.Expr {
	t := p.cur
	p.advance()
	return &ast.Variable{Tok: t, Name: "_"}
}

func (p *Parser) parseRootRef() ast.Expr {
	t := p.cur
	p.advance()
	return &ast.Variable{Tok: t, Name: t.Literal}
}

// parseIdentOrKeywordRef parses a bare identifier as a Variable; callers'
// infix handlers (parseDotRef/parseIndex/parseCall) build it into a
// Reference or Call as further tokens are consumed.
func (p *Parser) parseIdentOrKeywordRef() ast.Expr {
	t := p.cur
	p.advance()
	return &ast.Variable{Tok: t, Name: t.Literal}
}

func (p *Parser) parseNot() ast.Expr {
	t := p.cur
	p.advance()
	operand := p.parseExpression(PREC_PREFIX)
	return &ast.UnaryExpr{Op: t.Kind, OpLit: "not", Operand: operand, UPos: t.Pos}
}

func (p *Parser) parseUnaryMinus() ast.Expr {
	t := p.cur
	p.advance()
	operand := p.parseExpression(PREC_PREFIX)
	return &ast.UnaryExpr{Op: t.Kind, OpLit: "-", Operand: operand, UPos: t.Pos}
}

func (p *Parser) parseGrouped() ast.Expr {
	p.advance() // '('
	expr := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	return expr
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	t := p.cur
	prec := p.curPrecedence()
	p.advance()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Op: t.Kind, OpLit: t.Literal, Left: left, Right: right, BPos: t.Pos}
}

func (p *Parser) parseDotRef(left ast.Expr) ast.Expr {
	dotPos := p.cur.Pos
	p.advance() // '.'
	name, ok := p.expect(token.IDENT)
	if !ok {
		return left
	}
	return appendRefArg(left, ast.RefArg{IsDot: true, Name: name.Literal}, dotPos)
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	pos := p.cur.Pos
	p.advance() // '['
	var idx ast.Expr
	if p.curIs(token.UNDERSCORE) {
		idx = p.parseWildcard()
	} else {
		idx = p.parseExpression(LOWEST)
	}
	p.expect(token.RBRACK)
	return appendRefArg(left, ast.RefArg{IsDot: false, Expr: idx}, pos)
}

func appendRefArg(base ast.Expr, arg ast.RefArg, pos token.Position) ast.Expr {
	if ref, ok := base.(*ast.Reference); ok {
		ref.Path = append(ref.Path, arg)
		return ref
	}
	return &ast.Reference{Base: base, Path: []ast.RefArg{arg}, RPos: pos}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	pos := p.cur.Pos
	p.advance() // '('
	var args []ast.Expr
	if !p.curIs(token.RPAREN) {
		args = append(args, p.parseExpression(LOWEST))
		for p.curIs(token.COMMA) {
			p.advance()
			args = append(args, p.parseExpression(LOWEST))
		}
	}
	p.expect(token.RPAREN)
	return &ast.Call{Callee: left, Args: args, CPos: pos}
}

// parseArrayOrCompr implements the array half of the braced-literal
// disambiguation: after `[`, an empty `]` is an empty array;
// otherwise parse one term, then look for `|` (comprehension) vs `,`/`]`
// (literal).
func (p *Parser) parseArrayOrCompr() ast.Expr {
	pos := p.cur.Pos
	p.advance() // '['
	if p.curIs(token.RBRACK) {
		p.advance()
		return &ast.ArrayLit{APos: pos}
	}

	first := p.parseExpression(PREC_OR)

	if p.curIs(token.PIPE) {
		p.advance()
		body := p.parseBody(token.RBRACK)
		p.expect(token.RBRACK)
		return &ast.ArrayCompr{Term: first, Body: body, CPos: pos}
	}

	elems := []ast.Expr{first}
	for p.curIs(token.COMMA) {
		p.advance()
		if p.curIs(token.RBRACK) {
			break
		}
		elems = append(elems, p.parseExpression(LOWEST))
	}
	p.expect(token.RBRACK)
	return &ast.ArrayLit{Elements: elems, APos: pos}
}

// parseBracedLiteral implements the braced-literal
// disambiguation: `{}` is the empty set; otherwise parse one expression at
// OR-precedence, then:
//   - if `:` follows, it is an object literal or object-comprehension
//     (object-comprehension iff `|` follows the value);
//   - else if `|` follows, it is a set-comprehension;
//   - else it is a set literal.
func (p *Parser) parseBracedLiteral() ast.Expr {
	pos := p.cur.Pos
	p.advance() // '{'
	if p.curIs(token.RBRACE) {
		p.advance()
		return &ast.SetLit{SPos: pos}
	}

	first := p.parseExpression(PREC_OR)

	if p.curIs(token.COLON) {
		p.advance()
		val := p.parseExpression(PREC_OR)
		if p.curIs(token.PIPE) {
			p.advance()
			body := p.parseBody(token.RBRACE)
			p.expect(token.RBRACE)
			return &ast.ObjectCompr{Key: first, Value: val, Body: body, CPos: pos}
		}
		pairs := []ast.ObjectPair{{Key: first, Value: val}}
		for p.curIs(token.COMMA) {
			p.advance()
			if p.curIs(token.RBRACE) {
				break
			}
			k := p.parseExpression(PREC_OR)
			p.expect(token.COLON)
			v := p.parseExpression(PREC_OR)
			pairs = append(pairs, ast.ObjectPair{Key: k, Value: v})
		}
		p.expect(token.RBRACE)
		return &ast.ObjectLit{Pairs: pairs, OPos: pos}
	}

	if p.curIs(token.PIPE) {
		p.advance()
		body := p.parseBody(token.RBRACE)
		p.expect(token.RBRACE)
		return &ast.SetCompr{Term: first, Body: body, CPos: pos}
	}

	elems := []ast.Expr{first}
	for p.curIs(token.COMMA) {
		p.advance()
		if p.curIs(token.RBRACE) {
			break
		}
		elems = append(elems, p.parseExpression(LOWEST))
	}
	p.expect(token.RBRACE)
	return &ast.SetLit{Elements: elems, SPos: pos}
}

// parseEvery implements `every [key,] value in domain { body }`.
func (p *Parser) parseEvery() ast.Expr {
	pos := p.cur.Pos
	p.advance() // 'every'
	first, ok := p.expect(token.IDENT)
	if !ok {
		return &ast.Every{EPos: pos}
	}
	ev := &ast.Every{ValueVar: first.Literal, EPos: pos}
	if p.curIs(token.COMMA) {
		p.advance()
		second, ok := p.expect(token.IDENT)
		if ok {
			ev.KeyVar = first.Literal
			ev.ValueVar = second.Literal
		}
	}
	if _, ok := p.expect(token.IN); !ok {
		return ev
	}
	ev.Domain = p.parseExpression(LOWEST)
	if _, ok := p.expect(token.LBRACE); !ok {
		return ev
	}
	ev.Body = p.parseBody(token.RBRACE)
	p.expect(token.RBRACE)
	return ev
}

// parseSomeExpr allows `some` to also be used inline as a primary
// expression producing a boolean (iteration success), beyond its literal
// form as a SomeDecl handled in parseBody.
func (p *Parser) parseSomeExpr() ast.Expr {
	decl := p.parseSomeDecl()
	return &ast.Call{
		Callee: &ast.Variable{Tok: token.Token{Kind: token.SOME, Literal: "some"}, Name: "__some__"},
		Args:   someDeclArgs(decl),
		CPos:   decl.Pos(),
	}
}

func someDeclArgs(decl *ast.SomeDecl) []ast.Expr {
	args := make([]ast.Expr, 0, len(decl.Vars))
	for _, v := range decl.Vars {
		args = append(args, &ast.Variable{Name: v})
	}
	if decl.Collection != nil {
		args = append(args, decl.Collection)
	}
	return args
}

// parseSomeDecl parses `some x` or `some x, y in collection`.
func (p *Parser) parseSomeDecl() *ast.SomeDecl {
	pos := p.cur.Pos
	p.advance() // 'some'
	decl := &ast.SomeDecl{DeclPos: pos}
	first, ok := p.expect(token.IDENT)
	if !ok {
		return decl
	}
	decl.Vars = append(decl.Vars, first.Literal)
	for p.curIs(token.COMMA) {
		p.advance()
		name, ok := p.expect(token.IDENT)
		if !ok {
			break
		}
		decl.Vars = append(decl.Vars, name.Literal)
	}
	if p.curIs(token.IN) {
		p.advance()
		decl.Collection = p.parseExpression(LOWEST)
	}
	return decl
}

// parseWithChain parses zero or more trailing `with target as value`
// modifiers following a query literal. Later with's
// take precedence over earlier ones at evaluation time.
func (p *Parser) parseWithChain() []*ast.WithModifier {
	var mods []*ast.WithModifier
	for p.curIs(token.WITH) {
		pos := p.cur.Pos
		p.advance()
		// PREC_PREFIX, not PREC_POSTFIX: the loop test is `precedence <
		// curPrecedence()`, and dot/bracket/call all sit at PREC_POSTFIX, so
		// passing PREC_POSTFIX itself would reject every postfix token and
		// leave the target as a bare variable.
		target := p.parseExpression(PREC_PREFIX)
		if _, ok := p.expect(token.AS); !ok {
			break
		}
		val := p.parseExpression(PREC_OR)
		mods = append(mods, &ast.WithModifier{Target: target, Value: val, WithPos: pos})
	}
	return mods
}

// parseBody parses an ordered conjunction of literals until `until` is
// reached. Each literal is an optionally-negated expression with an
// optional `with` chain, or a `some` declaration.
func (p *Parser) parseBody(until token.Kind) []ast.Literal {
	var body []ast.Literal
	p.skipSeparators()
	for !p.curIs(until) && !p.curIs(token.EOF) {
		lit := p.parseLiteral()
		if lit != nil {
			body = append(body, lit)
		}
		if p.curIs(token.SEMI) || p.curIs(token.NEWLINE) {
			p.skipSeparators()
			continue
		}
		if p.curIs(until) || p.curIs(token.EOF) {
			break
		}
		p.errorf(p.cur.Pos, "expected ';', newline, or %s, got %s", until, p.cur.Kind)
		p.synchronize()
	}
	return body
}

func (p *Parser) parseLiteral() ast.Literal {
	if p.curIs(token.SOME) {
		// Disambiguate `some x` as a declaration literal (the common case
		// inside a body) from the `some x in xs` form, both handled the
		// same way here since both are SomeDecl literals.
		return p.parseSomeDecl()
	}

	pos := p.cur.Pos
	negated := false
	if p.curIs(token.NOT) {
		negated = true
		p.advance()
	}
	expr := p.parseExpression(LOWEST)
	withMods := p.parseWithChain()
	return &ast.ExprLiteral{Negated: negated, Expression: expr, With: withMods, LitPos: pos}
}
