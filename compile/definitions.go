package compile

import (
	"github.com/etherlang/ether/ast"
	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/object"
)

// compileObjectLiteral lowers `obj [-> parent] { defines }` to:
//
//	compile(parent, defaulting to the well-known Object)
//	MESSAGE \x00new                  ; push a fresh Dynamic prototyped on parent
//	DEF_LOCAL tmp                    ; stash it
//	POP                              ; DEF_LOCAL left it on the stack
//	LOAD_LOCAL tmp . \x00installMethod("\x00init", initBlock)
//	LOAD_LOCAL tmp . \x00init()      ; run field/method setup with self = tmp
//	                                  ; (dispatch finds \x00init in tmp's own
//	                                  ; method table and calls it via CallMethod,
//	                                  ; binding self to tmp — no new calling
//	                                  ; convention needed beyond ordinary send)
//	LOAD_LOCAL tmp                   ; the literal's value
//
// targetName, when non-nil, names an already-bound global to attach onto
// instead of creating a new object (used by compileDefStmt); it replaces
// the parent load and the \x00new send.
func (c *Compiler) compileObjectLiteral(o *ast.ObjectLiteral, targetName *string) {
	tmp := c.tmpName()

	if targetName != nil {
		c.emit(bytecode.Instruction{Op: bytecode.LOAD_GLOBAL, IDArg: c.str(*targetName)})
	} else {
		if o.Parent != nil {
			c.compileExpr(o.Parent)
		} else {
			c.emit(bytecode.Instruction{Op: bytecode.LOAD_GLOBAL, IDArg: c.str("Object")})
		}
		c.emit(bytecode.Instruction{Op: bytecode.MESSAGE, IDArg: c.str(object.SelNew), Argc: 0})
	}
	c.emit(bytecode.Instruction{Op: bytecode.DEF_LOCAL, IDArg: c.str(tmp)})
	c.emit(bytecode.Instruction{Op: bytecode.POP})

	initBlock := c.compileDefinesInitBlock(o.Fields, o.Methods)
	initID := c.env.InternBlock(initBlock)

	c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str(tmp)})
	c.emit(bytecode.Instruction{Op: bytecode.STRING_LITERAL, IDArg: c.str(object.SelInit)})
	c.emit(bytecode.Instruction{Op: bytecode.BLOCK_LITERAL, IDArg: initID})
	c.emit(bytecode.Instruction{Op: bytecode.MESSAGE, IDArg: c.str(object.SelInstallMethod), Argc: 2})
	c.emit(bytecode.Instruction{Op: bytecode.POP})

	c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str(tmp)})
	c.emit(bytecode.Instruction{Op: bytecode.MESSAGE, IDArg: c.str(object.SelInit), Argc: 0})
	c.emit(bytecode.Instruction{Op: bytecode.POP})

	c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str(tmp)})
}

// compileDefStmt lowers `def NAME { defines }`, which attaches to the
// existing global NAME rather than creating a new object.
func (c *Compiler) compileDefStmt(d *ast.Def) {
	target := d.Target
	c.compileObjectLiteral(&ast.ObjectLiteral{Fields: d.Fields, Methods: d.Methods}, &target)
}

// compileDefinesInitBlock compiles a defines block's field and method
// entries into a zero-parameter CodeBlock meant to be run with self bound
// to the object being defined. Field entries write directly into self's
// object-scope (DEF_OBJECT); method entries install themselves on self
// via \x00installMethod, so both forms use the same mechanisms that
// ordinary method bodies use, just invoked once at definition time.
func (c *Compiler) compileDefinesInitBlock(fields []ast.FieldDef, methods []ast.MethodDef) *bytecode.CodeBlock {
	wasGlobal := c.atGlobal
	c.atGlobal = false
	saved := c.instrs
	c.instrs = nil

	for _, f := range fields {
		c.compileExprOrNil(f.Value)
		c.emit(bytecode.Instruction{Op: bytecode.DEF_OBJECT, IDArg: c.str(f.Name)})
		c.emit(bytecode.Instruction{Op: bytecode.POP})
	}
	for _, m := range methods {
		methodCode := c.compileMethodBody(m)
		methodID := c.env.InternBlock(methodCode)

		c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str("self")})
		c.emit(bytecode.Instruction{Op: bytecode.STRING_LITERAL, IDArg: c.str(m.Selector)})
		c.emit(bytecode.Instruction{Op: bytecode.BLOCK_LITERAL, IDArg: methodID})
		c.emit(bytecode.Instruction{Op: bytecode.MESSAGE, IDArg: c.str(object.SelInstallMethod), Argc: 2})
		c.emit(bytecode.Instruction{Op: bytecode.POP})
	}
	c.emit(bytecode.Instruction{Op: bytecode.LOAD_LOCAL, IDArg: c.str("nil")})
	c.emit(bytecode.Instruction{Op: bytecode.END_BLOCK})

	code := &bytecode.CodeBlock{Instructions: c.instrs}
	c.instrs = saved
	c.atGlobal = wasGlobal
	return code
}

// compileMethodBody compiles a method's own CodeBlock, isolated from the
// init block that installs it (a fresh instruction buffer, its own
// params).
func (c *Compiler) compileMethodBody(m ast.MethodDef) *bytecode.CodeBlock {
	return c.compileBody(m.Body, m.Params)
}
