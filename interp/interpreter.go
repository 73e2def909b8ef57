// Package interp implements the bytecode-dispatching interpreter loop and
// the prototype-chain message dispatch algorithm.
package interp

import (
	"fmt"

	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/object"
)

// loopCode is the reified while-loop body: five synthetic instructions
// driving condition/body evaluation through ordinary message
// sends (`call`), so a receiver could in principle override `call` on the
// blocks it hands to `while:do:` without the interpreter knowing.
// LOOP_1..LOOP_4 operate on two values WhileLoop pushes ahead of this
// frame: body underneath, condition on top.
var loopCode = &bytecode.CodeBlock{
	Instructions: []bytecode.Instruction{
		{Op: bytecode.LOOP_1},
		{Op: bytecode.LOOP_2},
		{Op: bytecode.LOOP_3},
		{Op: bytecode.LOOP_4},
		{Op: bytecode.END_BLOCK},
	},
}

// discardCode pops whatever a preceding frame left on the stack and ends.
// DiscardReturn pushes this frame beneath the callee's frame, so once the
// callee ends, this frame pops the result the callee left behind.
var discardCode = &bytecode.CodeBlock{
	Instructions: []bytecode.Instruction{
		{Op: bytecode.POP},
		{Op: bytecode.END_BLOCK},
	},
}

// Interpreter holds the shared operand stack and call-frame stack, plus
// the environment (globals, intern tables, well-knowns) and the
// diagnostic sink errors are reported through.
type Interpreter struct {
	Env  *object.Environment
	Sink diag.Sink

	stack  []object.Value
	frames []*Frame
}

// New creates an Interpreter over env, reporting diagnostics to sink.
func New(env *object.Environment, sink diag.Sink) *Interpreter {
	return &Interpreter{Env: env, Sink: sink}
}

func (vm *Interpreter) push(v object.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *Interpreter) pop() object.Value {
	if len(vm.stack) == 0 {
		return vm.Env.Nil
	}
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

// peekAt returns the value fromTop positions from the top of the operand
// stack (0 is the very top), without popping it.
func (vm *Interpreter) peekAt(fromTop int) object.Value {
	i := len(vm.stack) - 1 - fromTop
	if i < 0 {
		return vm.Env.Nil
	}
	return vm.stack[i]
}

func (vm *Interpreter) peek() object.Value {
	return vm.peekAt(0)
}

func (vm *Interpreter) currentFrame() *Frame {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1]
}

func (vm *Interpreter) currentSelf() object.Value {
	if f := vm.currentFrame(); f != nil {
		return f.Self
	}
	return nil
}

func (vm *Interpreter) currentScope() *object.Scope {
	if f := vm.currentFrame(); f != nil {
		return f.Scope
	}
	return nil
}

// Execute runs a top-level program: the initial frame's scope is the
// global scope itself — there is no separate "program scope" object —
// and its self is absent. It returns whatever the program's final
// expression evaluated to.
func (vm *Interpreter) Execute(code *bytecode.CodeBlock) object.Value {
	return vm.ExecuteIn(code, vm.Env.Global)
}

// ExecuteIn runs a top-level program with scope in place of the global
// scope as the initial frame's scope. A session with its own top-level
// scope (server.Session) uses this so `var` at top level binds into the
// session rather than polluting the shared global scope, while lookups
// still fall through to it via scope's parent chain.
func (vm *Interpreter) ExecuteIn(code *bytecode.CodeBlock, scope *object.Scope) object.Value {
	depth := len(vm.frames)
	vm.frames = append(vm.frames, &Frame{Code: code, Scope: scope, Self: nil})
	for len(vm.frames) > depth {
		vm.step()
	}
	return vm.pop()
}

// step fetches and dispatches one instruction from the top frame. The
// fetched frame's address is incremented before dispatch runs; LOOP_4
// relies on this by overwriting the address with 0 rather than -1.
func (vm *Interpreter) step() {
	f := vm.currentFrame()
	if f == nil {
		return
	}
	if f.done() {
		vm.frames = vm.frames[:len(vm.frames)-1]
		return
	}
	instr := f.Code.Instructions[f.IP]
	f.IP++
	vm.exec(f, instr)
}

// checkArity reports and returns false when args does not match block's
// declared parameter count.
func (vm *Interpreter) checkArity(block *object.Block, args []object.Value) bool {
	if len(args) != len(block.Params) {
		diag.Runtime(vm.Sink, "wrong number of arguments: %s expects %d, got %d",
			vm.Describe(block), len(block.Params), len(args))
		return false
	}
	return true
}

// frameFor builds the frame for calling block with self and args bound.
// Callers must have already checked arity.
func (vm *Interpreter) frameFor(self object.Value, block *object.Block, args []object.Value) *Frame {
	scope := object.NewScope(block.Closure)
	for i, p := range block.Params {
		scope.Define(p, args[i])
	}
	return &Frame{Code: block.Code, Scope: scope, Self: self}
}

// runToDepth drives the main loop until the call stack has unwound back
// to depth, then returns whatever was left on the operand stack. This is
// how a host-side primitive — an ordinary Go function that must return a
// value immediately — can synchronously invoke Ether code.
func (vm *Interpreter) runToDepth(depth int) object.Value {
	for len(vm.frames) > depth {
		vm.step()
	}
	return vm.pop()
}

// CallBlock calls block with args, inheriting self from whichever frame
// is currently executing.
func (vm *Interpreter) CallBlock(block *object.Block, args []object.Value) object.Value {
	return vm.CallMethod(vm.currentSelf(), block, args)
}

// CallMethod calls block with self bound to receiver, the convention a
// message send resolving to a user-defined method uses. On an arity
// mismatch it reports the error and returns nil without pushing a frame.
func (vm *Interpreter) CallMethod(self object.Value, block *object.Block, args []object.Value) object.Value {
	if !vm.checkArity(block, args) {
		return vm.Env.Nil
	}
	depth := len(vm.frames)
	vm.frames = append(vm.frames, vm.frameFor(self, block, args))
	return vm.runToDepth(depth)
}

// WhileLoop drives the reified loop construct: push body then condition,
// then a frame over the synthetic loop code inheriting the calling
// frame's scope and self. Its own result is always the well-known nil
// object.
func (vm *Interpreter) WhileLoop(condition, body object.Value) object.Value {
	vm.push(body)
	vm.push(condition)
	depth := len(vm.frames)
	vm.frames = append(vm.frames, &Frame{Code: loopCode, Scope: vm.currentScope(), Self: vm.currentSelf()})
	return vm.runToDepth(depth)
}

// DiscardReturn calls block for its side effects only: the callee's
// result is left on the shared stack and consumed by a synthetic discard
// frame rather than returned to the Go caller.
func (vm *Interpreter) DiscardReturn(block *object.Block, args []object.Value) {
	if !vm.checkArity(block, args) {
		return
	}
	self := vm.currentSelf()
	depth := len(vm.frames)
	vm.frames = append(vm.frames, &Frame{Code: discardCode, Self: self})
	vm.frames = append(vm.frames, vm.frameFor(self, block, args))
	for len(vm.frames) > depth {
		vm.step()
	}
}

// resolve walks receiver's prototype chain looking for selector, returning
// whichever of a primitive or a user-defined method table entry it finds
// first. Only Dynamic objects carry method/primitive tables of their own;
// Number/String/Array/Block/Singleton values delegate straight to their
// prototype.
func (vm *Interpreter) resolve(receiver object.Value, selector string) (object.Primitive, *object.Block) {
	for cur := receiver; cur != nil; cur = cur.Prototype() {
		dyn, ok := cur.(*object.Dynamic)
		if !ok {
			continue
		}
		if b, ok := dyn.Methods[selector]; ok {
			return nil, b
		}
		if p, ok := dyn.Primitives[selector]; ok {
			return p, nil
		}
	}
	return nil, nil
}

// Send resolves and invokes selector against receiver synchronously,
// preserving receiver as self through the whole prototype-chain walk.
// Exported for stdlib primitives that need to perform a message send on
// a value they were handed.
func (vm *Interpreter) Send(receiver object.Value, selector string, args []object.Value) object.Value {
	prim, block := vm.resolve(receiver, selector)
	switch {
	case block != nil:
		return vm.CallMethod(receiver, block, args)
	case prim != nil:
		return prim(vm, receiver, args)
	default:
		diag.Runtime(vm.Sink, "%s not handled by %s", selector, vm.Describe(receiver))
		return vm.Env.Nil
	}
}

// Describe renders v for diagnostic messages.
func (vm *Interpreter) Describe(v object.Value) string {
	switch t := v.(type) {
	case *object.Number:
		return fmt.Sprintf("%g", t.Val)
	case *object.String:
		return fmt.Sprintf("%q", t.Val)
	case *object.Singleton:
		return t.Name
	case *object.Dynamic:
		if t.Name != "" {
			return t.Name
		}
		return "an object"
	case *object.Block:
		return "a block"
	case *object.Array:
		return "an array"
	default:
		return "a value"
	}
}
