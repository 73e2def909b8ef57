package stdlib

import (
	"strconv"

	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

// registerStringPrimitives installs concatenation and comparison on
// String, e.g. `"ab" + "cd"` → `"abcd"`.
func registerStringPrimitives(vm *interp.Interpreter, str *object.Dynamic) {
	env := vm.Env

	str.AddPrimitive("+", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		a, ok := self.(*object.String)
		if !ok || len(args) != 1 {
			return env.Nil
		}
		b, ok := args[0].(*object.String)
		if !ok {
			return env.Nil
		}
		return object.NewString(a.Val+b.Val, env.String)
	})

	str.AddPrimitive("==", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		a, ok := self.(*object.String)
		if !ok || len(args) != 1 {
			return env.False
		}
		b, ok := args[0].(*object.String)
		if !ok {
			return env.False
		}
		return asBool(env, a.Val == b.Val)
	})

	str.AddPrimitive("size", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		s, ok := self.(*object.String)
		if !ok {
			return env.Nil
		}
		return object.NewNumber(float64(len(s.Val)), env.Number)
	})

	str.AddPrimitive("asNumber", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		s, ok := self.(*object.String)
		if !ok {
			return env.Nil
		}
		f, err := strconv.ParseFloat(s.Val, 64)
		if err != nil {
			return env.Nil
		}
		return object.NewNumber(f, env.Number)
	})
}
