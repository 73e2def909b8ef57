// Package stdlib builds the well-known objects and registers their
// primitives, one file per receiver type (Number, String, Array, Block,
// Object, Ether).
package stdlib

import (
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

// Bootstrap populates env's well-known objects and wires up every
// standard-library primitive. vm is used only to reach vm.Env while
// registering primitives that need to call back into interpreted code
// (e.g. Block's `call`, `while do `).
func Bootstrap(vm *interp.Interpreter) {
	env := vm.Env

	env.Object = object.NewDynamic(nil, "Object")
	env.Number = object.NewDynamic(env.Object, "Number")
	env.String = object.NewDynamic(env.Object, "String")
	env.Block = object.NewDynamic(env.Object, "Block")
	env.Array = object.NewDynamic(env.Object, "Array")
	env.Ether = object.NewDynamic(env.Object, "Ether")

	env.Nil = &object.Singleton{Name: "nil"}
	env.True = &object.Singleton{Name: "true"}
	env.False = &object.Singleton{Name: "false"}
	env.Nil.SetPrototype(env.Object)
	env.True.SetPrototype(env.Object)
	env.False.SetPrototype(env.Object)

	env.Global.Define("Object", env.Object)
	env.Global.Define("Number", env.Number)
	env.Global.Define("String", env.String)
	env.Global.Define("Block", env.Block)
	env.Global.Define("Array", env.Array)
	env.Global.Define("Ether", env.Ether)
	env.Global.Define("nil", env.Nil)
	env.Global.Define("true", env.True)
	env.Global.Define("false", env.False)

	registerObjectPrimitives(vm, env.Object.(*object.Dynamic))
	registerNumberPrimitives(vm, env.Number.(*object.Dynamic))
	registerStringPrimitives(vm, env.String.(*object.Dynamic))
	registerBlockPrimitives(vm, env.Block.(*object.Dynamic))
	registerArrayPrimitives(vm, env.Array.(*object.Dynamic))
	registerEtherPrimitives(vm, env.Ether.(*object.Dynamic))
}

// asBool converts a Go bool to the well-known true/false singleton.
func asBool(env *object.Environment, b bool) object.Value {
	if b {
		return env.True
	}
	return env.False
}
