package interp

import (
	"strings"
	"testing"

	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/object"
)

// bootstrap creates a minimal environment with just enough registered on
// Object/Number/String/Block/Ether to exercise the dispatch loop, mirroring
// what stdlib.Bootstrap installs without importing it (that would be a
// cycle: stdlib imports interp).
func bootstrap() (*Interpreter, *object.Environment) {
	env := object.NewEnvironment()
	sink := diag.NewCollector(nil)
	vm := New(env, sink)

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

	env.Global.Define("nil", env.Nil)
	env.Global.Define("true", env.True)
	env.Global.Define("false", env.False)

	numProto := env.Number.(*object.Dynamic)
	numProto.AddPrimitive("+", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		a := self.(*object.Number)
		b := args[0].(*object.Number)
		return object.NewNumber(a.Val+b.Val, env.Number)
	})
	numProto.AddPrimitive("<", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		a := self.(*object.Number)
		b := args[0].(*object.Number)
		if a.Val < b.Val {
			return env.True
		}
		return env.False
	})

	blockProto := env.Block.(*object.Dynamic)
	blockProto.AddPrimitive("call", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*Interpreter)
		return v.CallBlock(self.(*object.Block), nil)
	})

	etherProto := env.Ether.(*object.Dynamic)
	etherProto.AddPrimitive("while do ", func(vmi interface{}, self object.Value, args []object.Value) object.Value {
		v := vmi.(*Interpreter)
		return v.WhileLoop(args[0], args[1])
	})

	return vm, env
}

func TestExecuteNumberLiteral(t *testing.T) {
	vm, _ := bootstrap()
	code := &bytecode.CodeBlock{Instructions: []bytecode.Instruction{
		{Op: bytecode.NUMBER_LITERAL, NumArg: 42},
		{Op: bytecode.END_BLOCK},
	}}
	result := vm.Execute(code)
	n, ok := result.(*object.Number)
	if !ok || n.Val != 42 {
		t.Fatalf("got %#v, want Number(42)", result)
	}
}

func TestSendUnknownSelectorReportsRuntimeError(t *testing.T) {
	vm, env := bootstrap()
	sink := diag.NewCollector(nil)
	vm.Sink = sink

	result := vm.Send(env.Nil, "frobnicate", nil)
	if result != env.Nil {
		t.Errorf("expected nil result for unhandled selector, got %v", result)
	}
	if len(sink.Messages) != 1 {
		t.Fatalf("expected one diagnostic, got %v", sink.Messages)
	}
	want := "Runtime error: frobnicate not handled by nil"
	if sink.Messages[0] != want {
		t.Errorf("got %q, want %q", sink.Messages[0], want)
	}
}

func TestCallMethodArityMismatchDoesNotPushFrame(t *testing.T) {
	vm, env := bootstrap()
	sink := diag.NewCollector(nil)
	vm.Sink = sink

	block := object.NewBlock(&bytecode.CodeBlock{
		Params:       []string{"x"},
		Instructions: []bytecode.Instruction{{Op: bytecode.END_BLOCK}},
	}, object.NewScope(env.Global), env.Block)

	result := vm.CallMethod(env.Nil, block, nil)
	if result != env.Nil {
		t.Errorf("expected nil on arity mismatch, got %v", result)
	}
	if len(vm.frames) != 0 {
		t.Errorf("expected no frames left on the stack, got %d", len(vm.frames))
	}
	if len(sink.Messages) != 1 || !strings.Contains(sink.Messages[0], "wrong number of arguments") {
		t.Errorf("expected an arity diagnostic, got %v", sink.Messages)
	}
}

// TestWhileLoop drives a real while{cond}do{body}: it counts up from 0 to 3
// via a mutable global, matching the reified LOOP_1..LOOP_4 protocol.
func TestWhileLoop(t *testing.T) {
	vm, env := bootstrap()

	env.Global.Define("i", object.NewNumber(0, env.Number))
	env.Global.Define("three", object.NewNumber(3, env.Number))

	condCode := &bytecode.CodeBlock{Instructions: []bytecode.Instruction{
		{Op: bytecode.LOAD_GLOBAL, IDArg: env.InternString("i")},
		{Op: bytecode.LOAD_GLOBAL, IDArg: env.InternString("three")},
		{Op: bytecode.MESSAGE, IDArg: env.InternString("<"), Argc: 1},
		{Op: bytecode.END_BLOCK},
	}}
	bodyCode := &bytecode.CodeBlock{Instructions: []bytecode.Instruction{
		{Op: bytecode.LOAD_GLOBAL, IDArg: env.InternString("i")},
		{Op: bytecode.NUMBER_LITERAL, NumArg: 1},
		{Op: bytecode.MESSAGE, IDArg: env.InternString("+"), Argc: 1},
		{Op: bytecode.DEF_GLOBAL, IDArg: env.InternString("i")},
		{Op: bytecode.END_BLOCK},
	}}

	cond := object.NewBlock(condCode, env.Global, env.Block)
	body := object.NewBlock(bodyCode, env.Global, env.Block)

	vm.WhileLoop(cond, body)

	i, _ := env.Global.Lookup("i")
	n, ok := i.(*object.Number)
	if !ok || n.Val != 3 {
		t.Fatalf("got %#v, want Number(3)", i)
	}
}
