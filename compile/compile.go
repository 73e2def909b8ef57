// Package compile lowers an ast.Expr tree into a bytecode.CodeBlock.
// Object and array literals, and the def/named-obj definition forms,
// have no dedicated opcodes of their own; they are compiled down to
// message sends against a handful of internal selectors (see
// object/internal.go), so the interpreter's opcode switch stays small.
package compile

import (
	"strings"

	"github.com/etherlang/ether/ast"
	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/object"
)

// Compiler turns AST into bytecode against a shared Environment (for
// string/block interning).
type Compiler struct {
	env *object.Environment

	instrs []bytecode.Instruction
	// atGlobal is true while compiling the outermost program sequence,
	// i.e. before ever descending into a block, method, or definition
	// body. It only affects which of LOAD_GLOBAL/LOAD_LOCAL and
	// DEF_GLOBAL/DEF_LOCAL the compiler picks for a plain (non-field)
	// name; both forms are equivalent whenever the current scope actually
	// is the global scope, which is always true at top level.
	atGlobal bool

	tmpCounter int
}

// New creates a Compiler over env.
func New(env *object.Environment) *Compiler {
	return &Compiler{env: env}
}

// CompileProgram compiles a whole top-level program against the shared
// global scope: plain names read and write through vm.Env.Global.
func (c *Compiler) CompileProgram(prog ast.Expr) *bytecode.CodeBlock {
	c.atGlobal = true
	return c.compileBody(prog, nil)
}

// CompileSession compiles a top-level program meant to run in a session's
// own scope (server.Session) rather than the shared global scope: plain
// names read and write through the frame's scope (DEF_LOCAL/LOAD_LOCAL),
// which falls through to the shared global scope via its parent link for
// anything the session hasn't shadowed.
func (c *Compiler) CompileSession(prog ast.Expr) *bytecode.CodeBlock {
	c.atGlobal = false
	return c.compileBody(prog, nil)
}

// compileBody compiles seq as the body of a fresh CodeBlock with the
// given parameter names, appending the mandatory trailing END_BLOCK.
func (c *Compiler) compileBody(seq ast.Expr, params []string) *bytecode.CodeBlock {
	saved := c.instrs
	c.instrs = nil
	if seq == nil {
		c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str("nil")})
	} else {
		c.compileSequenceValue(seq)
	}
	c.emit(bytecode.Instruction{Op: bytecode.END_BLOCK})
	code := &bytecode.CodeBlock{Instructions: c.instrs, Params: params}
	c.instrs = saved
	return code
}

func (c *Compiler) emit(i bytecode.Instruction) {
	c.instrs = append(c.instrs, i)
}

func (c *Compiler) str(s string) int {
	return c.env.InternString(s)
}

func (c *Compiler) tmpName() string {
	c.tmpCounter++
	return "\x00tmp" + itoa(c.tmpCounter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// compileSequenceValue compiles expr so that exactly one value remains on
// the stack: the value of expr's own final statement if it is a
// Sequence, discarding every intermediate statement's value with POP.
func (c *Compiler) compileSequenceValue(expr ast.Expr) {
	seq, ok := expr.(*ast.Sequence)
	if !ok {
		c.compileExpr(expr)
		return
	}
	if len(seq.Statements) == 0 {
		c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str("nil")})
		return
	}
	for i, stmt := range seq.Statements {
		c.compileExpr(stmt)
		if i != len(seq.Statements)-1 {
			c.emit(bytecode.Instruction{Op: bytecode.POP})
		}
	}
}

// compileExpr compiles expr, leaving its value on top of the stack.
func (c *Compiler) compileExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Number:
		c.emit(bytecode.Instruction{Op: bytecode.NUMBER_LITERAL, NumArg: e.Value})

	case *ast.String:
		c.emit(bytecode.Instruction{Op: bytecode.STRING_LITERAL, IDArg: c.str(e.Value)})

	case *ast.Self:
		c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str("self")})

	case *ast.Name:
		c.compileNameLoad(e)

	case *ast.Sequence:
		c.compileSequenceValue(e)

	case *ast.VarDecl:
		c.compileVarDecl(e)

	case *ast.Assign:
		c.compileExprOrNil(e.Value)
		c.emit(bytecode.Instruction{Op: bytecode.SET_LOCAL, IDArg: c.str(e.Name)})

	case *ast.Return:
		// Lowered to "evaluate the value, then end the frame": no
		// dedicated return opcode is needed because END_BLOCK's only
		// effect is popping the current call frame, which is exactly
		// what an early return needs to do — whatever value is on top
		// of the stack at that point becomes the caller's result
		// either way.
		c.compileExprOrNil(e.Value)
		c.emit(bytecode.Instruction{Op: bytecode.END_BLOCK})

	case *ast.Send:
		c.compileSend(e)

	case *ast.Block:
		c.compileBlockLiteral(e)

	case *ast.ArrayLiteral:
		c.compileArrayLiteral(e)

	case *ast.ObjectLiteral:
		c.compileObjectLiteral(e, nil)

	case *ast.Def:
		c.compileDefStmt(e)

	default:
		panic("compile: unhandled ast node")
	}
}

// compileExprOrNil compiles expr, or a load of the well-known nil object
// when expr is nil (the `undefined` / bare `return` case).
func (c *Compiler) compileExprOrNil(expr ast.Expr) {
	if expr == nil {
		c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str("nil")})
		return
	}
	c.compileExpr(expr)
}

func (c *Compiler) compileNameLoad(n *ast.Name) {
	if n.IsField() {
		c.emit(bytecode.Instruction{Op: bytecode.LOAD_OBJECT, IDArg: c.str(n.Value)})
		return
	}
	if c.atGlobal {
		c.emit(bytecode.Instruction{Op: bytecode.LOAD_GLOBAL, IDArg: c.str(n.Value)})
		return
	}
	c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str(n.Value)})
}

func (c *Compiler) compileVarDecl(v *ast.VarDecl) {
	c.compileExprOrNil(v.Value)
	if v.Global || c.atGlobal {
		c.emit(bytecode.Instruction{Op: bytecode.DEF_GLOBAL, IDArg: c.str(v.Name)})
		return
	}
	c.emit(bytecode.Instruction{Op: bytecode.DEF_LOCAL, IDArg: c.str(v.Name)})
}

func (c *Compiler) compileSend(s *ast.Send) {
	if s.Receiver == nil {
		c.emit(bytecode.Instruction{Op: bytecode.LOAD_GLOBAL, IDArg: c.str("Ether")})
	} else {
		c.compileExpr(s.Receiver)
	}
	args := s.Args
	if len(args) > bytecode.MaxArgs {
		// The parser already reports this; compile only the first MaxArgs
		// so the operand stack stays balanced with the emitted Argc.
		args = args[:bytecode.MaxArgs]
	}
	for _, arg := range args {
		c.compileExpr(arg)
	}
	c.emit(bytecode.Instruction{Op: bytecode.MESSAGE, IDArg: c.str(s.Selector), Argc: len(args)})
}

func (c *Compiler) compileBlockLiteral(b *ast.Block) {
	wasGlobal := c.atGlobal
	c.atGlobal = false
	code := c.compileBody(b.Body, b.Params)
	c.atGlobal = wasGlobal
	id := c.env.InternBlock(code)
	c.emit(bytecode.Instruction{Op: bytecode.BLOCK_LITERAL, IDArg: id})
}

// compileArrayLiteral lowers `[e1, e2, ...]` to a send of a repeated
// `with ` keyword message to the well-known Array, chained with repeated
// `,` sends past the ten-argument limit a single MESSAGE instruction can
// carry.
func (c *Compiler) compileArrayLiteral(a *ast.ArrayLiteral) {
	elems := a.Elements
	first := len(elems)
	if first > bytecode.MaxArgs {
		first = bytecode.MaxArgs
	}

	c.emit(bytecode.Instruction{Op: bytecode.LOAD_GLOBAL, IDArg: c.str("Array")})
	for _, e := range elems[:first] {
		c.compileExpr(e)
	}
	selector := "empty"
	if first > 0 {
		selector = strings.Repeat("with ", first)
	}
	c.emit(bytecode.Instruction{Op: bytecode.MESSAGE, IDArg: c.str(selector), Argc: first})

	for _, e := range elems[first:] {
		c.compileExpr(e)
		c.emit(bytecode.Instruction{Op: bytecode.MESSAGE, IDArg: c.str(","), Argc: 1})
	}
}
