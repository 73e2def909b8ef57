package stdlib

import (
	"strings"

	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

// registerArrayPrimitives installs the selectors compileArrayLiteral
// emits: "empty" for `[]`, "with " repeated N times for an N-element
// literal (up to bytecode.MaxArgs), and "," to append one more element to
// an already-built array, chained past the ten-argument limit a single
// MESSAGE instruction can carry (compile/compile.go).
func registerArrayPrimitives(vm *interp.Interpreter, arr *object.Dynamic) {
	env := vm.Env

	arr.AddPrimitive("empty", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		return object.NewArray(nil, env.Array)
	})

	for n := 1; n <= 10; n++ {
		selector := strings.Repeat("with ", n)
		arr.AddPrimitive(selector, func(_ interface{}, self object.Value, args []object.Value) object.Value {
			elems := make([]object.Value, len(args))
			copy(elems, args)
			return object.NewArray(elems, env.Array)
		})
	}

	arr.AddPrimitive(",", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		a, ok := self.(*object.Array)
		if !ok || len(args) != 1 {
			return env.Nil
		}
		elems := make([]object.Value, len(a.Elements), len(a.Elements)+1)
		copy(elems, a.Elements)
		elems = append(elems, args[0])
		return object.NewArray(elems, env.Array)
	})

	arr.AddPrimitive("size", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		a, ok := self.(*object.Array)
		if !ok {
			return env.Nil
		}
		return object.NewNumber(float64(len(a.Elements)), env.Number)
	})

	arr.AddPrimitive("at ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		a, ok := self.(*object.Array)
		if !ok || len(args) != 1 {
			return env.Nil
		}
		idx, ok := args[0].(*object.Number)
		if !ok {
			return env.Nil
		}
		i := int(idx.Val)
		if i < 0 || i >= len(a.Elements) {
			v.Sink.Report("Runtime error: array index out of range")
			return env.Nil
		}
		return a.Elements[i]
	})

	// "at put " mutates the receiver in place and answers the receiver,
	// mirroring "at " for the out-of-range diagnostic.
	arr.AddPrimitive("at put ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		a, ok := self.(*object.Array)
		if !ok || len(args) != 2 {
			return env.Nil
		}
		idx, ok := args[0].(*object.Number)
		if !ok {
			return env.Nil
		}
		i := int(idx.Val)
		if i < 0 || i >= len(a.Elements) {
			v.Sink.Report("Runtime error: array index out of range")
			return env.Nil
		}
		a.Elements[i] = args[1]
		return self
	})

	// "do " calls block once per element, in order, for side effects only;
	// its own result is the receiver.
	arr.AddPrimitive("do ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*interp.Interpreter)
		a, ok := self.(*object.Array)
		if !ok || len(args) != 1 {
			return env.Nil
		}
		block, ok := args[0].(*object.Block)
		if !ok {
			return env.Nil
		}
		for _, elem := range a.Elements {
			v.CallBlock(block, []object.Value{elem})
		}
		return self
	})
}
