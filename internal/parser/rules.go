package parser

import (
	"github.com/wardlang/ward/internal/ast"
	"github.com/wardlang/ward/internal/token"
)

// parseRule implements the rule-head grammar:
//
//	name
//	name := expr
//	name if body
//	name { body }
//	name contains term
//	name[key]
//	name[key] := value
//	name[key][subkey] := value
//	name(args) := value
//
// `=` is accepted wherever `:=` is, as the head forms predating `:=`.
// Heads may be prefixed by `default` (restricted to ground expressions)
// and followed by `else := expr` / `else if body` / `else { body }`
// chains.
func (p *Parser) parseRule() *ast.Rule {
	isDefault := false
	if p.curIs(token.DEFAULT) {
		isDefault = true
		p.advance()
	}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return nil
	}
	rule := &ast.Rule{Name: nameTok.Literal, NamePos: nameTok.Pos}

	switch {
	case p.curIs(token.LBRACK):
		p.advance()
		key := p.parseExpression(LOWEST)
		p.expect(token.RBRACK)
		var subKeys []ast.Expr
		for p.curIs(token.LBRACK) {
			p.advance()
			subKeys = append(subKeys, p.parseExpression(LOWEST))
			p.expect(token.RBRACK)
		}
		if p.curIs(token.ASSIGN) || p.curIs(token.UNIFY) {
			p.advance()
			val := p.parseExpression(LOWEST)
			// name[k][sub] := v writes {sub: v} under k and deep-merges with
			// the group's other nested clauses.
			for i := len(subKeys) - 1; i >= 0; i-- {
				val = &ast.ObjectLit{Pairs: []ast.ObjectPair{{Key: subKeys[i], Value: val}}, OPos: subKeys[i].Pos()}
			}
			rule.Head = ast.RuleHead{Kind: ast.PartialObjectRule, ObjectKey: key, ObjectVal: val, IsDefault: isDefault, Nested: len(subKeys) > 0}
			p.parseOptionalBraceBody(rule)
		} else {
			if len(subKeys) > 0 {
				p.errorf(p.cur.Pos, "expected ':=' or '=' after a multi-key rule head")
			}
			rule.Head = ast.RuleHead{Kind: ast.PartialSetRule, SetTerm: key, IsDefault: isDefault}
			p.parseOptionalBraceBody(rule)
		}

	case p.curIs(token.LPAREN):
		p.advance()
		var args []ast.Expr
		if !p.curIs(token.RPAREN) {
			args = append(args, p.parseExpression(LOWEST))
			for p.curIs(token.COMMA) {
				p.advance()
				args = append(args, p.parseExpression(LOWEST))
			}
		}
		p.expect(token.RPAREN)
		var val ast.Expr
		if p.curIs(token.ASSIGN) || p.curIs(token.UNIFY) {
			p.advance()
			val = p.parseExpression(LOWEST)
		}
		rule.Head = ast.RuleHead{Kind: ast.FunctionRule, Args: args, FuncValue: val, IsDefault: isDefault}
		p.parseOptionalBraceBody(rule)

	case p.curIs(token.CONTAINS):
		p.advance()
		term := p.parseExpression(LOWEST)
		rule.Head = ast.RuleHead{Kind: ast.PartialSetRule, SetTerm: term, IsDefault: isDefault}
		p.parseOptionalBraceBody(rule)

	case p.curIs(token.ASSIGN) || p.curIs(token.UNIFY):
		p.advance()
		val := p.parseExpression(LOWEST)
		rule.Head = ast.RuleHead{Kind: ast.CompleteRule, Value: val, IsDefault: isDefault}
		if isDefault {
			rule.DefaultValue = val
		}
		p.parseOptionalBraceBody(rule)

	case p.curIs(token.IF):
		p.advance()
		rule.Head = ast.RuleHead{Kind: ast.CompleteRule, IsDefault: isDefault}
		rule.Body = p.parseIfBody()

	case p.curIs(token.LBRACE):
		rule.Head = ast.RuleHead{Kind: ast.CompleteRule, IsDefault: isDefault}
		p.advance()
		rule.Body = p.parseBody(token.RBRACE)
		p.expect(token.RBRACE)

	default:
		// Bare `name` — a complete boolean rule with no body.
		rule.Head = ast.RuleHead{Kind: ast.CompleteRule, IsDefault: isDefault}
	}

	rule.Else = p.parseElseChain()
	return rule
}

// parseOptionalBraceBody attaches `{ body }` to a value/set/object/function
// head when present (e.g. `users["a"] := 1 { input.ok }`).
func (p *Parser) parseOptionalBraceBody(rule *ast.Rule) {
	if p.curIs(token.LBRACE) {
		p.advance()
		rule.Body = p.parseBody(token.RBRACE)
		p.expect(token.RBRACE)
	} else if p.curIs(token.IF) {
		p.advance()
		rule.Body = p.parseIfBody()
	}
}

// parseIfBody parses the body following `if`: either a braced body or a
// single literal.
func (p *Parser) parseIfBody() []ast.Literal {
	if p.curIs(token.LBRACE) {
		p.advance()
		body := p.parseBody(token.RBRACE)
		p.expect(token.RBRACE)
		return body
	}
	lit := p.parseLiteral()
	if lit == nil {
		return nil
	}
	return []ast.Literal{lit}
}

func (p *Parser) parseElseChain() *ast.ElseClause {
	if !p.curIs(token.ELSE) {
		return nil
	}
	p.advance()
	clause := &ast.ElseClause{}
	switch {
	case p.curIs(token.ASSIGN) || p.curIs(token.UNIFY):
		p.advance()
		clause.Value = p.parseExpression(LOWEST)
		p.parseOptionalElseBraceBody(clause)
	case p.curIs(token.IF):
		p.advance()
		clause.Body = p.parseIfBody()
	case p.curIs(token.LBRACE):
		p.advance()
		clause.Body = p.parseBody(token.RBRACE)
		p.expect(token.RBRACE)
	default:
		p.errorf(p.cur.Pos, "expected ':=', 'if', or '{' after 'else', got %s", p.cur.Kind)
	}
	clause.Next = p.parseElseChain()
	return clause
}

func (p *Parser) parseOptionalElseBraceBody(clause *ast.ElseClause) {
	if p.curIs(token.LBRACE) {
		p.advance()
		clause.Body = p.parseBody(token.RBRACE)
		p.expect(token.RBRACE)
	}
}
