package stdlib

import (
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

// registerBlockPrimitives installs the selectors core semantics depend
// on: a zero-arg "call" and a one-arg "call " keyword form, so both
// `b.call` and `b.call(41)` work. Both delegate to CallBlock, which
// reuses whatever self is current where the call happens.
func registerBlockPrimitives(vm *interp.Interpreter, blk *object.Dynamic) {
	blk.AddPrimitive("call", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		b, ok := self.(*object.Block)
		if !ok {
			return v.Env.Nil
		}
		return v.CallBlock(b, nil)
	})

	blk.AddPrimitive("call ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		b, ok := self.(*object.Block)
		if !ok {
			return v.Env.Nil
		}
		return v.CallBlock(b, args)
	})
}
