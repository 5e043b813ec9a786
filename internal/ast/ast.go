// Package ast defines the Ward policy language's abstract syntax tree.
//
// Every node implements Node (Pos/TokenLiteral/String); expressions
// implement Expr, statements (here, query literals and declarations)
// implement their own marker methods. Nodes are never mutated after the
// parser returns them.
package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wardlang/ward/internal/token"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// RuleKind distinguishes the four rule shapes the compiler must keep
// consistent within a name group.
type RuleKind int

const (
	CompleteRule RuleKind = iota
	PartialSetRule
	PartialObjectRule
	FunctionRule
)

func (k RuleKind) String() string {
	switch k {
	case CompleteRule:
		return "complete"
	case PartialSetRule:
		return "partial_set"
	case PartialObjectRule:
		return "partial_object"
	case FunctionRule:
		return "function"
	default:
		return "unknown"
	}
}

// Module is the root AST node: a package declaration, its imports, and its
// rules, in source order.
type Module struct {
	PackagePath []string
	Imports     []*Import
	Rules       []*Rule
	PackagePos  token.Position
}

func (m *Module) TokenLiteral() string { return "package" }
func (m *Module) Pos() token.Position  { return m.PackagePos }
func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "package %s\n", strings.Join(m.PackagePath, "."))
	for _, imp := range m.Imports {
		sb.WriteString(imp.String())
		sb.WriteString("\n")
	}
	for _, r := range m.Rules {
		sb.WriteString(r.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Import is a single `import <path> [as <alias>]` declaration.
type Import struct {
	Path     string
	Alias    string
	ImportPos token.Position
}

func (i *Import) TokenLiteral() string { return "import" }
func (i *Import) Pos() token.Position  { return i.ImportPos }
func (i *Import) String() string {
	if i.Alias != "" {
		return fmt.Sprintf("import %s as %s", i.Path, i.Alias)
	}
	return fmt.Sprintf("import %s", i.Path)
}

// RuleHead is one of Complete, PartialSet, PartialObject, or Function; which
// fields are populated depends on Kind.
type RuleHead struct {
	Kind      RuleKind
	Value     Expr   // complete: value expression (nil for a bodiless boolean rule)
	SetTerm   Expr   // partial_set: term
	ObjectKey Expr   // partial_object: key
	ObjectVal Expr   // partial_object: value
	Args      []Expr // function: argument patterns
	FuncValue Expr   // function: value
	Nested    bool   // partial_object: participates in deep-merge on conflict
	IsDefault bool
}

// Rule is a single `name ... { body }` (or `name := expr`, etc.) definition.
// Multiple Rules may share a Name; the compiler groups them.
type Rule struct {
	Name         string
	Head         RuleHead
	Body         []Literal // nil for a bodiless rule
	DefaultValue Expr      // only set when Head.IsDefault
	Else         *ElseClause
	NamePos      token.Position
}

func (r *Rule) TokenLiteral() string { return r.Name }
func (r *Rule) Pos() token.Position  { return r.NamePos }
func (r *Rule) String() string {
	return fmt.Sprintf("rule %s (%s)", r.Name, r.Head.Kind)
}

// ElseClause chains onto a complete rule: `else := expr` or `else { body }`.
type ElseClause struct {
	Value Expr
	Body  []Literal
	Next  *ElseClause
}

// Literal is one conjunct of a rule/comprehension/every body: an expression
// (optionally negated or `with`-modified) or a `some` declaration.
type Literal interface {
	Node
	literalNode()
}

// ExprLiteral wraps a bare (or negated) expression literal with its `with`
// modifier chain.
type ExprLiteral struct {
	Negated   bool
	Expression Expr
	With      []*WithModifier
	LitPos    token.Position
}

func (e *ExprLiteral) literalNode()        {}
func (e *ExprLiteral) TokenLiteral() string { return "literal" }
func (e *ExprLiteral) Pos() token.Position  { return e.LitPos }
func (e *ExprLiteral) String() string {
	prefix := ""
	if e.Negated {
		prefix = "not "
	}
	return prefix + e.Expression.String()
}

// SomeDecl is `some x, y` or `some x, y in collection`.
type SomeDecl struct {
	Vars       []string
	Collection Expr // nil when no `in collection`
	DeclPos    token.Position
}

func (s *SomeDecl) literalNode()         {}
func (s *SomeDecl) TokenLiteral() string { return "some" }
func (s *SomeDecl) Pos() token.Position  { return s.DeclPos }
func (s *SomeDecl) String() string {
	if s.Collection != nil {
		return fmt.Sprintf("some %s in %s", strings.Join(s.Vars, ", "), s.Collection.String())
	}
	return "some " + strings.Join(s.Vars, ", ")
}

// WithModifier is one `with target as value` clause.
type WithModifier struct {
	Target  Expr
	Value   Expr
	WithPos token.Position
}

func (w *WithModifier) String() string {
	return fmt.Sprintf("with %s as %s", w.Target.String(), w.Value.String())
}

func (w *WithModifier) Pos() token.Position { return w.WithPos }

// --- Expressions ---

// Literal-valued expressions.
type (
	NullLit struct {
		Tok token.Token
	}
	BoolLit struct {
		Tok   token.Token
		Value bool
	}
	NumberLit struct {
		Tok   token.Token
		Raw   string
		IsInt bool
		Int   int64
		Float float64
	}
	StringLit struct {
		Tok   token.Token
		Value string
	}
	Variable struct {
		Tok  token.Token
		Name string
	}
)

func (*NullLit) exprNode()   {}
func (*BoolLit) exprNode()   {}
func (*NumberLit) exprNode() {}
func (*StringLit) exprNode() {}
func (*Variable) exprNode()  {}

func (n *NullLit) TokenLiteral() string   { return n.Tok.Literal }
func (n *NullLit) Pos() token.Position    { return n.Tok.Pos }
func (n *NullLit) String() string         { return "null" }
func (b *BoolLit) TokenLiteral() string   { return b.Tok.Literal }
func (b *BoolLit) Pos() token.Position    { return b.Tok.Pos }
func (b *BoolLit) String() string         { return fmt.Sprintf("%t", b.Value) }
func (n *NumberLit) TokenLiteral() string { return n.Tok.Literal }
func (n *NumberLit) Pos() token.Position  { return n.Tok.Pos }
func (n *NumberLit) String() string       { return n.Raw }
func (s *StringLit) TokenLiteral() string { return s.Tok.Literal }
func (s *StringLit) Pos() token.Position  { return s.Tok.Pos }
func (s *StringLit) String() string       { return fmt.Sprintf("%q", s.Value) }
func (v *Variable) TokenLiteral() string  { return v.Tok.Literal }
func (v *Variable) Pos() token.Position   { return v.Tok.Pos }
func (v *Variable) String() string        { return v.Name }

// RefArg is one segment of a Reference path: either a static dot-name or a
// bracketed expression.
type RefArg struct {
	IsDot bool
	Name  string // set when IsDot
	Expr  Expr   // set when !IsDot
}

func (r RefArg) String() string {
	if r.IsDot {
		return "." + r.Name
	}
	return "[" + r.Expr.String() + "]"
}

// Reference is a base expression followed by zero or more path segments,
// e.g. `input.user.roles[i]`.
type Reference struct {
	Base Expr
	Path []RefArg
	RPos token.Position
}

func (*Reference) exprNode()            {}
func (r *Reference) TokenLiteral() string { return r.Base.TokenLiteral() }
func (r *Reference) Pos() token.Position  { return r.RPos }
func (r *Reference) String() string {
	var sb strings.Builder
	sb.WriteString(r.Base.String())
	for _, seg := range r.Path {
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// BinaryExpr is `left OP right`.
type BinaryExpr struct {
	Op    token.Kind
	OpLit string
	Left  Expr
	Right Expr
	BPos  token.Position
}

func (*BinaryExpr) exprNode()            {}
func (b *BinaryExpr) TokenLiteral() string { return b.OpLit }
func (b *BinaryExpr) Pos() token.Position  { return b.BPos }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.OpLit, b.Right.String())
}

// UnaryExpr is `not x` or `-x`.
type UnaryExpr struct {
	Op      token.Kind
	OpLit   string
	Operand Expr
	UPos    token.Position
}

func (*UnaryExpr) exprNode()            {}
func (u *UnaryExpr) TokenLiteral() string { return u.OpLit }
func (u *UnaryExpr) Pos() token.Position  { return u.UPos }
func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s %s)", u.OpLit, u.Operand.String())
}

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	Elements []Expr
	APos     token.Position
}

func (*ArrayLit) exprNode()            {}
func (a *ArrayLit) TokenLiteral() string { return "[" }
func (a *ArrayLit) Pos() token.Position  { return a.APos }
func (a *ArrayLit) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// SetLit is `{e1, e2, ...}`; `{}` parses as the empty set (an empty object
// requires at least one `key: value` pair to disambiguate, so no separate
// marker is needed).
type SetLit struct {
	Elements []Expr
	SPos     token.Position
}

func (*SetLit) exprNode()            {}
func (s *SetLit) TokenLiteral() string { return "{" }
func (s *SetLit) Pos() token.Position  { return s.SPos }
func (s *SetLit) String() string {
	parts := make([]string, len(s.Elements))
	for i, e := range s.Elements {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ObjectPair is one `key: value` entry of an ObjectLit.
type ObjectPair struct {
	Key   Expr
	Value Expr
}

// ObjectLit is `{k1: v1, k2: v2, ...}`.
type ObjectLit struct {
	Pairs []ObjectPair
	OPos  token.Position
}

func (*ObjectLit) exprNode()            {}
func (o *ObjectLit) TokenLiteral() string { return "{" }
func (o *ObjectLit) Pos() token.Position  { return o.OPos }
func (o *ObjectLit) String() string {
	parts := make([]string, len(o.Pairs))
	for i, p := range o.Pairs {
		parts[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ArrayCompr is `[term | body]`.
type ArrayCompr struct {
	Term Expr
	Body []Literal
	CPos token.Position
}

// SetCompr is `{term | body}`.
type SetCompr struct {
	Term Expr
	Body []Literal
	CPos token.Position
}

// ObjectCompr is `{key: value | body}`.
type ObjectCompr struct {
	Key   Expr
	Value Expr
	Body  []Literal
	CPos  token.Position
}

func (*ArrayCompr) exprNode()  {}
func (*SetCompr) exprNode()    {}
func (*ObjectCompr) exprNode() {}

func (c *ArrayCompr) TokenLiteral() string  { return "[" }
func (c *ArrayCompr) Pos() token.Position   { return c.CPos }
func (c *ArrayCompr) String() string        { return fmt.Sprintf("[%s | ...]", c.Term.String()) }
func (c *SetCompr) TokenLiteral() string    { return "{" }
func (c *SetCompr) Pos() token.Position     { return c.CPos }
func (c *SetCompr) String() string          { return fmt.Sprintf("{%s | ...}", c.Term.String()) }
func (c *ObjectCompr) TokenLiteral() string { return "{" }
func (c *ObjectCompr) Pos() token.Position  { return c.CPos }
func (c *ObjectCompr) String() string {
	return fmt.Sprintf("{%s: %s | ...}", c.Key.String(), c.Value.String())
}

// Call is `name(arg1, arg2, ...)`; Name may itself resolve to a builtin, a
// user rule, or (qualified as data.<pkg>.<name>) another module's function.
type Call struct {
	Callee Expr
	Args   []Expr
	CPos   token.Position
}

func (*Call) exprNode()            {}
func (c *Call) TokenLiteral() string { return c.Callee.TokenLiteral() }
func (c *Call) Pos() token.Position  { return c.CPos }
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(parts, ", "))
}

// Every is `every [key,] value in domain { body }`.
type Every struct {
	KeyVar   string // "" when absent
	ValueVar string
	Domain   Expr
	Body     []Literal
	EPos     token.Position
}

func (*Every) exprNode()            {}
func (e *Every) TokenLiteral() string { return "every" }
func (e *Every) Pos() token.Position  { return e.EPos }
func (e *Every) String() string {
	var buf bytes.Buffer
	buf.WriteString("every ")
	if e.KeyVar != "" {
		buf.WriteString(e.KeyVar + ", ")
	}
	buf.WriteString(e.ValueVar + " in " + e.Domain.String() + " { ... }")
	return buf.String()
}
