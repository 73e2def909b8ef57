// Package parser implements a hand-written recursive-descent parser: a
// curToken/peekToken reader over the lexer's token stream producing an
// ast.Expr tree, with no separate statement grammar — var/def/return/
// assignment are all expressions.
package parser

import (
	"fmt"
	"strconv"

	"github.com/etherlang/ether/ast"
	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/lexer"
	"github.com/etherlang/ether/token"
)

// Parser consumes a token stream and builds an ast.Expr tree.
type Parser struct {
	l    *lexer.Lexer
	sink diag.Sink

	curTok  token.Token
	peekTok token.Token
}

// New creates a Parser reading from l, reporting syntax errors to sink.
func New(l *lexer.Lexer, sink diag.Sink) *Parser {
	p := &Parser{l: l, sink: sink}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	diag.Runtime(p.sink, "parse error at %s: %s", p.curTok.Pos, msg)
}

func (p *Parser) curIs(t token.Type) bool  { return p.curTok.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekTok.Type == t }

// expect consumes curTok if it has type t, reporting an error and leaving
// the cursor in place otherwise.
func (p *Parser) expect(t token.Type) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf("expected %s, found %s", t, p.curTok.Type)
	return false
}

// ParseProgram parses a whole source file: a sequence of statements up to
// EOF.
func (p *Parser) ParseProgram() ast.Expr {
	return p.parseSequence(token.EOF)
}

// ParseStatement parses exactly one statement, for the REPL's
// one-statement-at-a-time mode. A trailing `;` is consumed if present.
// Parse errors yield a nil result; the sink has already been told what
// went wrong.
func (p *Parser) ParseStatement() ast.Expr {
	if p.curIs(token.EOF) {
		return nil
	}
	stmt := p.parseStatement()
	if p.curIs(token.SEMICOLON) {
		p.next()
	}
	return stmt
}

// endsSequence reports whether curTok can legally follow the last
// statement of a sequence: the sequence's own terminator, or a delimiter
// belonging to an enclosing construct.
func endsSequence(t token.Type) bool {
	switch t {
	case token.EOF, token.RIGHT_PAREN, token.RIGHT_BRACE, token.RIGHT_BRACKET:
		return true
	default:
		return false
	}
}

// parseSequence parses `statement { [ ";" ] statement } [ ";" ]` up to
// (but not consuming) a token satisfying stop, or any other
// sequence-ending token. The `;` between statements is optional: newlines
// are plain whitespace to the lexer, so a statement that cannot continue
// is simply followed by the next one. A stray trailing `;` before the
// closing delimiter is legal and dropped. A single statement collapses to
// itself rather than a one-element ast.Sequence.
func (p *Parser) parseSequence(stop token.Type) ast.Expr {
	var stmts []ast.Expr
	for {
		if p.curIs(stop) || endsSequence(p.curTok.Type) {
			break
		}
		stmts = append(stmts, p.parseStatement())
		if p.curIs(token.SEMICOLON) {
			p.next()
		}
	}
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.Sequence{Statements: stmts}
}

func (p *Parser) parseStatement() ast.Expr {
	switch p.curTok.Type {
	case token.DEF:
		return p.parseDefStmt()
	case token.OBJ:
		return p.parseNamedObj()
	case token.VAR:
		return p.parseVarDecl()
	case token.RETURN:
		return p.parseReturnStmt()
	default:
		return p.parseAssignment()
	}
}

// parseVarDecl parses `"var" NAME "=" ( "undefined" | assignment )`.
func (p *Parser) parseVarDecl() ast.Expr {
	p.next() // consume "var"
	name := p.curTok.Literal
	if !p.expect(token.NAME) {
		return &ast.VarDecl{Name: name}
	}
	if !p.expect(token.EQ) {
		return &ast.VarDecl{Name: name}
	}
	if p.curIs(token.UNDEFINED) {
		p.next()
		return &ast.VarDecl{Name: name}
	}
	return &ast.VarDecl{Name: name, Value: p.parseAssignment()}
}

// parseReturnStmt parses `"return" [ assignment ]`; a bare return before a
// statement-ending token yields nil.
func (p *Parser) parseReturnStmt() ast.Expr {
	p.next() // consume "return"
	switch p.curTok.Type {
	case token.SEMICOLON, token.RIGHT_PAREN, token.RIGHT_BRACE, token.RIGHT_BRACKET, token.EOF:
		return &ast.Return{}
	default:
		return &ast.Return{Value: p.parseAssignment()}
	}
}

// parseAssignment parses `NAME "=" assignment | operator_expr`, using
// one token of lookahead to tell an assignment from any other expression
// that happens to start with a NAME.
func (p *Parser) parseAssignment() ast.Expr {
	if p.curIs(token.NAME) && p.peekIs(token.EQ) {
		name := p.curTok.Literal
		p.next() // NAME
		p.next() // "="
		return &ast.Assign{Name: name, Value: p.parseAssignment()}
	}
	return p.parseOperatorExpr()
}

// parseOperatorExpr parses `message { OPERATOR message }`, left
// associative at a single precedence level — there are no precedence
// tiers among operators.
func (p *Parser) parseOperatorExpr() ast.Expr {
	left := p.parseMessage()
	for p.curIs(token.OPERATOR) {
		op := p.curTok.Literal
		p.next()
		right := p.parseMessage()
		left = &ast.Send{Receiver: left, Selector: op, Args: []ast.Expr{right}}
	}
	return left
}

// parseMessage parses `( named_send_to_Ether | primary ) { "." ( unary_name | keyword_send ) }`.
func (p *Parser) parseMessage() ast.Expr {
	var recv ast.Expr
	if p.curIs(token.NAME) && (p.peekIs(token.LEFT_PAREN) || p.peekIs(token.LEFT_BRACE)) {
		recv = p.parseNamedSendToEther()
	} else {
		recv = p.parsePrimary()
	}
	for p.curIs(token.DOT) {
		p.next()
		if p.curIs(token.NAME) && (p.peekIs(token.LEFT_PAREN) || p.peekIs(token.LEFT_BRACE)) {
			recv = p.parseKeywordSend(recv)
			continue
		}
		name := p.curTok.Literal
		p.expect(token.NAME)
		recv = &ast.Send{Receiver: recv, Selector: name}
	}
	return recv
}

// parseNamedSendToEther parses a bare `name(args)` / `name{block}` at
// statement position, a send to the implicit receiver Ether. Receiver is
// left nil; the compiler substitutes the well-known Ether object.
func (p *Parser) parseNamedSendToEther() ast.Expr {
	return p.parseKeywordSend(nil)
}

// parseKeywordSend parses one or more `NAME "(" args ")"` / `NAME "{" block "}"`
// pairs with no separator between them, concatenating each NAME with a
// trailing space into the final selector. A part with empty parentheses
// takes no argument and adds no space, so `x.foo()` sends the unary `foo`.
func (p *Parser) parseKeywordSend(receiver ast.Expr) ast.Expr {
	var selector string
	var args []ast.Expr
	for p.curIs(token.NAME) && (p.peekIs(token.LEFT_PAREN) || p.peekIs(token.LEFT_BRACE)) {
		selector += p.curTok.Literal
		p.next()
		if p.curIs(token.LEFT_PAREN) {
			p.next()
			partArgs := p.parseArgs()
			if len(partArgs) > 0 {
				selector += " "
			}
			args = append(args, partArgs...)
			p.expect(token.RIGHT_PAREN)
		} else {
			selector += " "
			p.next() // "{"
			args = append(args, p.parseBlockBody())
			p.expect(token.RIGHT_BRACE)
		}
	}
	return &ast.Send{Receiver: receiver, Selector: selector, Args: args}
}

// parseArgs parses a comma-separated argument list up to (not consuming)
// the closing ")".
func (p *Parser) parseArgs() []ast.Expr {
	var args []ast.Expr
	if p.curIs(token.RIGHT_PAREN) {
		return args
	}
	args = append(args, p.parseAssignment())
	for p.curIs(token.COMMA) {
		p.next()
		args = append(args, p.parseAssignment())
	}
	if len(args) > 10 {
		p.errorf("a message send accepts at most 10 arguments, found %d", len(args))
	}
	return args
}

// parseBlockBody parses the inside of `{ [params ->] body }`, used both
// for a `{...}` argument and for a block-literal primary.
func (p *Parser) parseBlockBody() *ast.Block {
	var params []string
	if p.looksLikeBlockParams() {
		params = p.parseBlockParams()
	}
	body := p.parseSequence(token.RIGHT_BRACE)
	return &ast.Block{Params: params, Body: body}
}

// looksLikeBlockParams reports whether the upcoming tokens are a
// `NAME (, NAME)* ->` parameter list rather than the start of the block's
// body. It scans ahead over a cloned lexer so it never consumes tokens on
// a false read.
func (p *Parser) looksLikeBlockParams() bool {
	if !p.curIs(token.NAME) {
		return false
	}
	save := *p.l
	curTok, peekTok := p.curTok, p.peekTok
	defer func() {
		p.l = &save
		p.curTok, p.peekTok = curTok, peekTok
	}()

	for p.curIs(token.NAME) {
		p.next()
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	return p.curIs(token.ARROW)
}

func (p *Parser) parseBlockParams() []string {
	var params []string
	params = append(params, p.curTok.Literal)
	p.expect(token.NAME)
	for p.curIs(token.COMMA) {
		p.next()
		params = append(params, p.curTok.Literal)
		p.expect(token.NAME)
	}
	p.expect(token.ARROW)
	return params
}

// parsePrimary parses number/string/self/name/parenthesized/block/array/
// object-literal primaries.
func (p *Parser) parsePrimary() ast.Expr {
	switch p.curTok.Type {
	case token.NUMBER:
		v, err := strconv.ParseFloat(p.curTok.Literal, 64)
		if err != nil {
			p.errorf("invalid number literal %q", p.curTok.Literal)
		}
		p.next()
		return &ast.Number{Value: v}

	case token.STRING:
		v := p.curTok.Literal
		p.next()
		return &ast.String{Value: v}

	case token.SELF:
		p.next()
		return &ast.Self{}

	case token.NAME:
		name := p.curTok.Literal
		p.next()
		return &ast.Name{Value: name}

	case token.LEFT_PAREN:
		p.next()
		e := p.parseSequence(token.RIGHT_PAREN)
		p.expect(token.RIGHT_PAREN)
		return e

	case token.LEFT_BRACE:
		p.next()
		blk := p.parseBlockBody()
		p.expect(token.RIGHT_BRACE)
		return blk

	case token.LEFT_BRACKET:
		return p.parseArrayLiteral()

	case token.OBJ:
		return p.parseObjectLiteral()

	default:
		p.errorf("unexpected token %s", p.curTok.Type)
		p.next()
		return &ast.Name{Value: "nil"}
	}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	p.next() // "["
	var elems []ast.Expr
	if !p.curIs(token.RIGHT_BRACKET) {
		elems = append(elems, p.parseAssignment())
		for p.curIs(token.COMMA) {
			p.next()
			elems = append(elems, p.parseAssignment())
		}
	}
	p.expect(token.RIGHT_BRACKET)
	return &ast.ArrayLiteral{Elements: elems}
}

// parseObjectLiteral parses `"obj" [ "->" primary ] "{" defines? "}"` as a
// primary expression (an anonymous object).
func (p *Parser) parseObjectLiteral() ast.Expr {
	p.next() // "obj"
	var parent ast.Expr
	if p.curIs(token.ARROW) {
		p.next()
		parent = p.parsePrimary()
	}
	p.expect(token.LEFT_BRACE)
	fields, methods := p.parseDefines()
	p.expect(token.RIGHT_BRACE)
	return &ast.ObjectLiteral{Parent: parent, Fields: fields, Methods: methods}
}

// parseNamedObj parses `"obj" NAME [ "->" primary ] "{" defines? "}"`,
// which sugars to `var NAME = obj [-> primary] { defines }`, always bound
// at the global scope.
func (p *Parser) parseNamedObj() ast.Expr {
	p.next() // "obj"
	name := p.curTok.Literal
	if !p.expect(token.NAME) {
		return &ast.VarDecl{Name: name, Global: true}
	}
	var parent ast.Expr
	if p.curIs(token.ARROW) {
		p.next()
		parent = p.parsePrimary()
	}
	p.expect(token.LEFT_BRACE)
	fields, methods := p.parseDefines()
	p.expect(token.RIGHT_BRACE)
	return &ast.VarDecl{
		Name:   name,
		Global: true,
		Value:  &ast.ObjectLiteral{Parent: parent, Fields: fields, Methods: methods},
	}
}

// parseDefStmt parses `"def" NAME "{" defines? "}"`, attaching fields and
// methods onto an already-bound receiver.
func (p *Parser) parseDefStmt() ast.Expr {
	p.next() // "def"
	target := p.curTok.Literal
	p.expect(token.NAME)
	p.expect(token.LEFT_BRACE)
	fields, methods := p.parseDefines()
	p.expect(token.RIGHT_BRACE)
	return &ast.Def{Target: target, Fields: fields, Methods: methods}
}

// parseDefines parses zero or more entries of a defines block up to (not
// consuming) the closing "}". Each entry is one of:
//
//	NAME "=" assignment                    field or accessor+field (sugar)
//	NAME "(" params ")" ... "{" body "}"    mixfix method
//	NAME "{" body "}"                       zero-arg method
//	OPERATOR NAME "{" body "}"              operator method
func (p *Parser) parseDefines() ([]ast.FieldDef, []ast.MethodDef) {
	var fields []ast.FieldDef
	var methods []ast.MethodDef
	for !p.curIs(token.RIGHT_BRACE) && !p.curIs(token.EOF) {
		switch {
		case p.curIs(token.OPERATOR):
			methods = append(methods, p.parseOperatorMethodDef())

		case p.curIs(token.NAME) && p.peekIs(token.EQ):
			fields = append(fields, p.parseFieldEntry(&methods)...)

		case p.curIs(token.NAME) && (p.peekIs(token.LEFT_PAREN) || p.peekIs(token.LEFT_BRACE)):
			methods = append(methods, p.parseMixfixMethodDef())

		default:
			p.errorf("unexpected token %s in object body", p.curTok.Type)
			p.next()
			continue
		}
		if p.curIs(token.SEMICOLON) {
			p.next()
		}
	}
	return fields, methods
}

// parseFieldEntry parses `NAME "=" assignment`. When NAME does not begin
// with `_`, it desugars into a field slot `_NAME` plus a synthesized
// zero-arg accessor method NAME that returns `_NAME`.
func (p *Parser) parseFieldEntry(methods *[]ast.MethodDef) []ast.FieldDef {
	name := p.curTok.Literal
	p.next() // NAME
	p.next() // "="
	value := p.parseAssignment()

	if len(name) > 0 && name[0] == '_' {
		return []ast.FieldDef{{Name: name, Value: value}}
	}

	fieldName := "_" + name
	*methods = append(*methods, ast.MethodDef{
		Selector: name,
		Body:     &ast.Name{Value: fieldName},
	})
	return []ast.FieldDef{{Name: fieldName, Value: value}}
}

// parseMixfixMethodDef parses one or more `NAME "(" params ")"` pairs with
// no separator, concatenating names into the selector and params in
// order, terminated by `"{" body "}"`. Each name with at least one
// parameter is followed by a space in the selector; `name()` adds none,
// so it defines the same unary selector as the `name { body }` sugar.
func (p *Parser) parseMixfixMethodDef() ast.MethodDef {
	var selector string
	var params []string
	for p.curIs(token.NAME) && p.peekIs(token.LEFT_PAREN) {
		selector += p.curTok.Literal
		p.next()
		p.next() // "("
		partParams := p.parseParamNames()
		if len(partParams) > 0 {
			selector += " "
		}
		params = append(params, partParams...)
		p.expect(token.RIGHT_PAREN)
	}
	if selector == "" {
		// zero-arg sugar: NAME "{" body "}"
		selector = p.curTok.Literal
		p.next()
	}
	p.expect(token.LEFT_BRACE)
	body := p.parseSequence(token.RIGHT_BRACE)
	p.expect(token.RIGHT_BRACE)
	return ast.MethodDef{Selector: selector, Params: params, Body: body}
}

func (p *Parser) parseParamNames() []string {
	var names []string
	if p.curIs(token.RIGHT_PAREN) {
		return names
	}
	names = append(names, p.curTok.Literal)
	p.expect(token.NAME)
	for p.curIs(token.COMMA) {
		p.next()
		names = append(names, p.curTok.Literal)
		p.expect(token.NAME)
	}
	return names
}

// parseOperatorMethodDef parses `OPERATOR NAME "{" body "}"`.
func (p *Parser) parseOperatorMethodDef() ast.MethodDef {
	op := p.curTok.Literal
	p.next()
	param := p.curTok.Literal
	p.expect(token.NAME)
	p.expect(token.LEFT_BRACE)
	body := p.parseSequence(token.RIGHT_BRACE)
	p.expect(token.RIGHT_BRACE)
	return ast.MethodDef{Selector: op, Params: []string{param}, Body: body}
}
