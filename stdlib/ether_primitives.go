package stdlib

import (
	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

// registerEtherPrimitives installs the primitives available on bare
// `name(args)` / `name{block}` statements, which the compiler routes to
// the well-known Ether receiver.
func registerEtherPrimitives(vm *interp.Interpreter, eth *object.Dynamic) {
	eth.AddPrimitive("while do ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		if len(args) != 2 {
			return v.Env.Nil
		}
		return v.WhileLoop(args[0], args[1])
	})

	// print(x) writes x's rendered form through the configured diagnostic
	// sink and answers x, so a print can sit mid-expression.
	eth.AddPrimitive("print ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		if len(args) != 1 {
			return v.Env.Nil
		}
		v.Sink.Report(v.Describe(args[0]))
		return args[0]
	})

	// println(x) is print(x) under a name closer to Ether's other
	// naming, sharing the same sink; the sink itself puts one message per
	// line (diag.Writer), so there is no separate no-newline primitive to
	// contrast it against.
	eth.AddPrimitive("println ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		if len(args) != 1 {
			return v.Env.Nil
		}
		v.Sink.Report(v.Describe(args[0]))
		return args[0]
	})

	// error(msg) reports msg as a runtime error through the same sink
	// diag.Runtime uses elsewhere in the interpreter, so host-side and
	// user-raised errors surface identically.
	eth.AddPrimitive("error ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		if len(args) != 1 {
			return v.Env.Nil
		}
		msg, ok := args[0].(*object.String)
		if !ok {
			return v.Env.Nil
		}
		diag.Runtime(v.Sink, "%s", msg.Val)
		return v.Env.Nil
	})
}
