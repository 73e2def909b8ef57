package interp

import (
	"strings"

	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/object"
)

// exec applies one already-fetched instruction against frame f. Reads and
// writes go through the interpreter's single shared operand stack, never
// a per-frame one — a callee's result lands exactly where its caller's
// next instruction expects it.
func (vm *Interpreter) exec(f *Frame, instr bytecode.Instruction) {
	switch instr.Op {
	case bytecode.NOTHING:
		// no-op, reserved

	case bytecode.NUMBER_LITERAL:
		vm.push(object.NewNumber(instr.NumArg, vm.Env.Number))

	case bytecode.STRING_LITERAL:
		vm.push(object.NewString(vm.Env.StringAt(instr.IDArg), vm.Env.String))

	case bytecode.BLOCK_LITERAL:
		code := vm.Env.BlockAt(instr.IDArg)
		vm.push(object.NewBlock(code, f.Scope, vm.Env.Block))

	case bytecode.POP:
		vm.pop()

	case bytecode.DEF_GLOBAL:
		name := vm.Env.StringAt(instr.IDArg)
		vm.Env.Global.Define(name, vm.peek())

	case bytecode.DEF_LOCAL:
		name := vm.Env.StringAt(instr.IDArg)
		f.Scope.Define(name, vm.peek())

	case bytecode.DEF_OBJECT:
		name := vm.Env.StringAt(instr.IDArg)
		if dyn, ok := f.Self.(*object.Dynamic); ok {
			dyn.Scope.Define(name, vm.peek())
		}
		// no-op when self is absent or not a Dynamic

	case bytecode.SET_LOCAL:
		name := vm.Env.StringAt(instr.IDArg)
		v := vm.peek()
		if isFieldName(name) {
			if dyn, ok := f.Self.(*object.Dynamic); ok {
				dyn.Scope.Define(name, v)
			}
			break
		}
		if !f.Scope.Set(name, v) {
			diag.Runtime(vm.Sink, "%s is not defined", name)
		}

	case bytecode.LOAD_GLOBAL:
		name := vm.Env.StringAt(instr.IDArg)
		if v, ok := vm.Env.Global.Lookup(name); ok {
			vm.push(v)
		} else {
			vm.push(vm.Env.Nil)
		}

	case bytecode.LOAD_OBJECT:
		name := vm.Env.StringAt(instr.IDArg)
		if dyn, ok := f.Self.(*object.Dynamic); ok {
			if v, ok := dyn.Scope.Lookup(name); ok {
				vm.push(v)
				break
			}
		}
		vm.push(vm.Env.Nil)

	case bytecode.LOAD_LOCAL:
		name := vm.Env.StringAt(instr.IDArg)
		if name == "self" {
			if f.Self != nil {
				vm.push(f.Self)
			} else {
				vm.push(vm.Env.Nil)
			}
			break
		}
		if v, ok := f.Scope.Lookup(name); ok {
			vm.push(v)
		} else {
			vm.push(vm.Env.Nil)
		}

	case bytecode.MESSAGE:
		vm.execMessage(f, instr)

	case bytecode.LOOP_1:
		// operand stack, top to bottom: condition, body (WhileLoop pushed
		// them in that order). Send call to the condition and push its
		// result on top, ready for LOOP_2 to inspect.
		cond := vm.peekAt(0)
		vm.push(vm.Send(cond, "call", nil))

	case bytecode.LOOP_2:
		result := vm.pop()
		if result != vm.Env.True {
			vm.pop() // condition
			vm.pop() // body
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.push(vm.Env.Nil)
		}
		// else fall through to LOOP_3 with [body, condition] intact

	case bytecode.LOOP_3:
		// body sits one below the condition at this point.
		body := vm.peekAt(1)
		vm.push(vm.Send(body, "call", nil))

	case bytecode.LOOP_4:
		vm.pop() // discard the body's result
		f.IP = 0

	case bytecode.END_BLOCK:
		vm.frames = vm.frames[:len(vm.frames)-1]

	default:
		diag.Runtime(vm.Sink, "unhandled opcode %s", instr.Op)
	}
}

// execMessage pops the receiver and its arguments (arguments were pushed
// left to right, so they come off the stack in reverse), resolves the
// selector against the receiver's prototype chain, and either invokes a
// primitive synchronously or pushes a frame for a user-defined method. A
// method call pushes no result itself — the callee's own END_BLOCK leaves
// its value where this instruction's result would have gone.
func (vm *Interpreter) execMessage(f *Frame, instr bytecode.Instruction) {
	selector := vm.Env.StringAt(instr.IDArg)
	args := make([]object.Value, instr.Argc)
	for i := instr.Argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	receiver := vm.pop()

	prim, block := vm.resolve(receiver, selector)
	switch {
	case block != nil:
		if !vm.checkArity(block, args) {
			vm.push(vm.Env.Nil)
			break
		}
		vm.frames = append(vm.frames, vm.frameFor(receiver, block, args))
	case prim != nil:
		vm.push(prim(vm, receiver, args))
	default:
		diag.Runtime(vm.Sink, "%s not handled by %s", selector, vm.Describe(receiver))
		vm.push(vm.Env.Nil)
	}
}

func isFieldName(name string) bool {
	return strings.HasPrefix(name, "_")
}
