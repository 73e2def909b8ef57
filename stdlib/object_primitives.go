package stdlib

import (
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

// registerObjectPrimitives installs the primitives every object inherits
// through Object, the root of the prototype chain.
func registerObjectPrimitives(vm *interp.Interpreter, obj *object.Dynamic) {
	env := vm.Env

	// \x00new creates a fresh Dynamic prototyped on the receiver. Compiled
	// object literals (named-object sugar included) send this before running
	// field/method setup; a def block attaches to an existing object and
	// does not (compile/definitions.go).
	obj.AddPrimitive(object.SelNew, func(_ interface{}, self object.Value, args []object.Value) object.Value {
		return object.NewDynamic(self, "")
	})

	// \x00installMethod(selector, block) installs block under selector on
	// the receiver, or reports a bad-definition error.
	obj.AddPrimitive(object.SelInstallMethod, func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		dyn, ok := self.(*object.Dynamic)
		if !ok {
			return v.Env.Nil
		}
		if len(args) != 2 {
			return v.Env.Nil
		}
		sel, ok := args[0].(*object.String)
		if !ok {
			return v.Env.Nil
		}
		dyn.AddMethod(func(msg string) {
			v.Sink.Report(msg)
		}, sel.Val, args[1])
		return self
	})

	// \x00init is a no-op that answers the receiver. Every compiled object
	// literal and def block, even one with no fields or methods, installs
	// its own setup block under this selector on the object before sending
	// it, so that block runs for them and this default does not.
	obj.AddPrimitive(object.SelInit, func(_ interface{}, self object.Value, args []object.Value) object.Value {
		return self
	})

	// copy returns a new object with my prototype, not a copy of Object
	// itself — the receiver at dispatch time, preserved through the
	// prototype chain.
	obj.AddPrimitive("copy", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		return object.NewDynamic(self.Prototype(), "")
	})

	obj.AddPrimitive("==", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		if len(args) != 1 {
			return env.False
		}
		return asBool(env, self == args[0])
	})

	obj.AddPrimitive("print", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		v.Sink.Report(v.Describe(self))
		return self
	})

	// prototype answers the object consulted when self doesn't handle a
	// message itself. The root Object's own prototype is Go nil, which
	// isn't an Ether value, so it reports as the well-known nil singleton
	// instead.
	obj.AddPrimitive("prototype", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		if p := self.Prototype(); p != nil {
			return p
		}
		return env.Nil
	})

	// class is an alias for prototype: Ether has no separate metaclass
	// layer, so "what created me" and "what I delegate to" are the same
	// prototype link.
	obj.AddPrimitive("class", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		if p := self.Prototype(); p != nil {
			return p
		}
		return env.Nil
	})

	obj.AddPrimitive("printString", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		return object.NewString(v.Describe(self), env.String)
	})
}
