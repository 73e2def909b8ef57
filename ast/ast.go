// Package ast defines the expression tree produced by the parser.
//
// The grammar disambiguates three message-send shapes (unary, binary
// operator, keyword/mixfix) at parse time; all three lower to the same
// Send node so the compiler has one shape to emit MESSAGE_N for.
package ast

import "strings"

// Node is implemented by every AST node.
type Node interface {
	node()
}

// Expr is the interface for expression nodes. Ether has no separate
// statement grammar: var/def/return/assignment are all expressions with
// a value.
type Expr interface {
	Node
	expr()
}

// Number is a numeric literal.
type Number struct {
	Value float64
}

func (*Number) node() {}
func (*Number) expr() {}

// String is a string literal.
type String struct {
	Value string
}

func (*String) node() {}
func (*String) expr() {}

// Name is a bare identifier reference. IsField reports whether the name
// begins with `_`, which routes it through the object-scope rather than
// the lexical scope chain.
type Name struct {
	Value string
}

func (*Name) node() {}
func (*Name) expr() {}

// IsField reports whether n names a field slot on the current self.
func (n *Name) IsField() bool {
	return strings.HasPrefix(n.Value, "_")
}

// Self is the reserved `self` primary.
type Self struct{}

func (*Self) node() {}
func (*Self) expr() {}

// Sequence is one or more statements separated by `;`, evaluated in
// order; only the final statement's value survives.
type Sequence struct {
	Statements []Expr
}

func (*Sequence) node() {}
func (*Sequence) expr() {}

// VarDecl introduces a new binding in the current scope: `var NAME = value`.
// Value is nil when the source wrote `var NAME = undefined`. Global is set
// for named-object sugar (`obj NAME ...`), which always binds at the
// top level regardless of lexical nesting; a plain `var` leaves it false.
type VarDecl struct {
	Name   string
	Value  Expr
	Global bool
}

func (*VarDecl) node() {}
func (*VarDecl) expr() {}

// Assign is `NAME = value`, resolved at runtime against the nearest
// enclosing scope (SET_LOCAL) — it is not a definition.
type Assign struct {
	Name  string
	Value Expr
}

func (*Assign) node() {}
func (*Assign) expr() {}

// Return unwinds the current call frame with Value (nil means bare
// `return`, which yields nil).
type Return struct {
	Value Expr
}

func (*Return) node() {}
func (*Return) expr() {}

// Send is a message send: unary (len(Args) == 0, single word Selector),
// binary-operator (Selector is the operator text, one argument), or
// keyword/mixfix (Selector ends in a trailing space per argument slot,
// e.g. "at:put: " rendered here without the historical colon as
// "at put "). Receiver is nil for a bare `name(args)` statement, which
// the compiler resolves to a send against the well-known Ether object.
type Send struct {
	Receiver Expr
	Selector string
	Args     []Expr
}

func (*Send) node() {}
func (*Send) expr() {}

// Block is a block literal: `{ params -> body }`. Params may be empty.
type Block struct {
	Params []string
	Body   Expr
}

func (*Block) node() {}
func (*Block) expr() {}

// ArrayLiteral is `[ e1, e2, ... ]`.
type ArrayLiteral struct {
	Elements []Expr
}

func (*ArrayLiteral) node() {}
func (*ArrayLiteral) expr() {}

// FieldDef is one entry of a `defines` block: an accessor pair (Getter +
// initial value on a plain field name) or a bare field-slot assignment
// (already-desugared entries share this shape — see Object.Fields).
type FieldDef struct {
	Name  string // field slot name, always begins with `_`
	Value Expr
}

// MethodDef is one method entry of a `defines` block: `sel(params) { body }`
// or the sugared zero-arg `name { body }`, or a binary-operator method.
type MethodDef struct {
	Selector string
	Params   []string
	Body     Expr
}

// ObjectLiteral is `obj [-> parent] { defines? }`. Parent is nil when the
// source omitted `->`, and the compiler then uses the well-known Object.
// Named-object sugar (`obj Name ...`) parses to an ast.VarDecl with Global
// set whose value is an ObjectLiteral of this same form.
type ObjectLiteral struct {
	Parent  Expr
	Fields  []FieldDef
	Methods []MethodDef
}

func (*ObjectLiteral) node() {}
func (*ObjectLiteral) expr() {}

// Def attaches Fields/Methods to an existing named receiver:
// `def NAME { defines }`.
type Def struct {
	Target  string
	Fields  []FieldDef
	Methods []MethodDef
}

func (*Def) node() {}
func (*Def) expr() {}
