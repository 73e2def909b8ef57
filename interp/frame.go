package interp

import (
	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/object"
)

// Frame is the call-frame tuple: (code, address, scope, self). The
// operand stack is not part of the frame — it is a single stack shared
// by the whole Interpreter, so a callee's result naturally lands where
// its caller's next instruction expects it.
type Frame struct {
	Code *bytecode.CodeBlock
	IP   int
	Scope *object.Scope

	// Self may be nil, meaning "absent" — the top-level program frame and
	// any frame called through a block that itself has no self runs with
	// Self == nil. LOAD_OBJECT/DEF_OBJECT/SET_LOCAL of a field name and the
	// literal `self` all treat a nil Self as the well-known nil object.
	Self object.Value
}

func (f *Frame) done() bool {
	return f.IP >= len(f.Code.Instructions)
}
