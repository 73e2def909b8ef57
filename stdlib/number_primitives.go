package stdlib

import (
	"fmt"

	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

// registerNumberPrimitives installs arithmetic and comparison on Number.
// Every primitive that expects a Number argument falls back to nil (the
// comparisons to false) on a type mismatch rather than panicking; no
// error is reported for it.
func registerNumberPrimitives(vm *interp.Interpreter, num *object.Dynamic) {
	env := vm.Env

	binNum := func(f func(a, b float64) float64) object.Primitive {
		return func(_ interface{}, self object.Value, args []object.Value) object.Value {
			a, ok := self.(*object.Number)
			if !ok || len(args) != 1 {
				return env.Nil
			}
			b, ok := args[0].(*object.Number)
			if !ok {
				return env.Nil
			}
			return object.NewNumber(f(a.Val, b.Val), env.Number)
		}
	}

	binCmp := func(f func(a, b float64) bool) object.Primitive {
		return func(_ interface{}, self object.Value, args []object.Value) object.Value {
			a, ok := self.(*object.Number)
			if !ok || len(args) != 1 {
				return env.False
			}
			b, ok := args[0].(*object.Number)
			if !ok {
				return env.False
			}
			return asBool(env, f(a.Val, b.Val))
		}
	}

	num.AddPrimitive("+", binNum(func(a, b float64) float64 { return a + b }))
	num.AddPrimitive("-", binNum(func(a, b float64) float64 { return a - b }))
	num.AddPrimitive("*", binNum(func(a, b float64) float64 { return a * b }))
	num.AddPrimitive("/", binNum(func(a, b float64) float64 { return a / b }))

	num.AddPrimitive("<", binCmp(func(a, b float64) bool { return a < b }))
	num.AddPrimitive(">", binCmp(func(a, b float64) bool { return a > b }))
	num.AddPrimitive("<=", binCmp(func(a, b float64) bool { return a <= b }))
	num.AddPrimitive(">=", binCmp(func(a, b float64) bool { return a >= b }))
	num.AddPrimitive("==", binCmp(func(a, b float64) bool { return a == b }))
	num.AddPrimitive("!=", binCmp(func(a, b float64) bool { return a != b }))

	num.AddPrimitive("negated", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		n, ok := self.(*object.Number)
		if !ok {
			return env.Nil
		}
		return object.NewNumber(-n.Val, env.Number)
	})

	num.AddPrimitive("asString", func(_ interface{}, self object.Value, args []object.Value) object.Value {
		n, ok := self.(*object.Number)
		if !ok {
			return env.Nil
		}
		return object.NewString(fmt.Sprintf("%g", n.Val), env.String)
	})
}
