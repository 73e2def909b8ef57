package stdlib

import (
	"testing"

	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/object"
)

func newVM() (*interp.Interpreter, *object.Environment) {
	env := object.NewEnvironment()
	vm := interp.New(env, diag.NewWriter(discard{}))
	Bootstrap(vm)
	return vm, env
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestNumberArithmetic(t *testing.T) {
	vm, env := newVM()
	a := object.NewNumber(2, env.Number)
	b := object.NewNumber(3, env.Number)
	result := vm.Send(a, "+", []object.Value{b})
	n, ok := result.(*object.Number)
	if !ok || n.Val != 5 {
		t.Fatalf("got %#v, want Number(5)", result)
	}
}

func TestNumberComparison(t *testing.T) {
	vm, env := newVM()
	a := object.NewNumber(2, env.Number)
	b := object.NewNumber(3, env.Number)
	if vm.Send(a, "<", []object.Value{b}) != env.True {
		t.Errorf("expected 2 < 3 to be true")
	}
	if vm.Send(a, ">", []object.Value{b}) != env.False {
		t.Errorf("expected 2 > 3 to be false")
	}
}

func TestStringConcatenation(t *testing.T) {
	vm, env := newVM()
	a := object.NewString("foo", env.String)
	b := object.NewString("bar", env.String)
	result := vm.Send(a, "+", []object.Value{b})
	s, ok := result.(*object.String)
	if !ok || s.Val != "foobar" {
		t.Fatalf("got %#v, want String(\"foobar\")", result)
	}
}

func TestArrayLiteralPrimitivesAndAt(t *testing.T) {
	vm, env := newVM()
	arr := env.Array.(*object.Dynamic)
	built := vm.Send(arr, "with with ", []object.Value{
		object.NewNumber(10, env.Number),
		object.NewNumber(20, env.Number),
	})
	a, ok := built.(*object.Array)
	if !ok || len(a.Elements) != 2 {
		t.Fatalf("got %#v, want a 2-element Array", built)
	}

	at1 := vm.Send(a, "at ", []object.Value{object.NewNumber(1, env.Number)})
	n, ok := at1.(*object.Number)
	if !ok || n.Val != 20 {
		t.Fatalf("got %#v, want Number(20)", at1)
	}
}

func TestArrayOutOfRangeReportsRuntimeError(t *testing.T) {
	vm, env := newVM()
	sink := diag.NewCollector(nil)
	vm.Sink = sink

	a := object.NewArray([]object.Value{object.NewNumber(1, env.Number)}, env.Array)
	result := vm.Send(a, "at ", []object.Value{object.NewNumber(5, env.Number)})
	if result != env.Nil {
		t.Errorf("expected nil on out-of-range access, got %v", result)
	}
	if len(sink.Messages) != 1 || sink.Messages[0] != "Runtime error: array index out of range" {
		t.Errorf("got %v, want a single array-index diagnostic", sink.Messages)
	}
}

func TestBlockCall(t *testing.T) {
	vm, env := newVM()
	code := &bytecode.CodeBlock{Instructions: []bytecode.Instruction{
		{Op: bytecode.NUMBER_LITERAL, NumArg: 7},
		{Op: bytecode.END_BLOCK},
	}}
	block := object.NewBlock(code, env.Global, env.Block)

	result := vm.Send(block, "call", nil)
	n, ok := result.(*object.Number)
	if !ok || n.Val != 7 {
		t.Fatalf("got %#v, want Number(7)", result)
	}
}

func TestBlockCallWithArgument(t *testing.T) {
	vm, env := newVM()
	code := &bytecode.CodeBlock{
		Params: []string{"x"},
		Instructions: []bytecode.Instruction{
			{Op: bytecode.LOAD_LOCAL, IDArg: env.InternString("x")},
			{Op: bytecode.NUMBER_LITERAL, NumArg: 1},
			{Op: bytecode.MESSAGE, IDArg: env.InternString("+"), Argc: 1},
			{Op: bytecode.END_BLOCK},
		},
	}
	block := object.NewBlock(code, env.Global, env.Block)

	result := vm.Send(block, "call ", []object.Value{object.NewNumber(41, env.Number)})
	n, ok := result.(*object.Number)
	if !ok || n.Val != 42 {
		t.Fatalf("got %#v, want Number(42)", result)
	}
}

func TestNumberNegatedAndAsString(t *testing.T) {
	vm, env := newVM()
	n := object.NewNumber(4, env.Number)

	negated := vm.Send(n, "negated", nil)
	got, ok := negated.(*object.Number)
	if !ok || got.Val != -4 {
		t.Fatalf("got %#v, want Number(-4)", negated)
	}

	s := vm.Send(n, "asString", nil)
	str, ok := s.(*object.String)
	if !ok || str.Val != "4" {
		t.Fatalf("got %#v, want String(\"4\")", s)
	}
}

func TestNumberNotEquals(t *testing.T) {
	vm, env := newVM()
	a := object.NewNumber(2, env.Number)
	b := object.NewNumber(3, env.Number)
	if vm.Send(a, "!=", []object.Value{b}) != env.True {
		t.Errorf("expected 2 != 3 to be true")
	}
	if vm.Send(a, "!=", []object.Value{a}) != env.False {
		t.Errorf("expected 2 != 2 to be false")
	}
}

func TestStringSizeAndAsNumber(t *testing.T) {
	vm, env := newVM()
	s := object.NewString("hello", env.String)

	size := vm.Send(s, "size", nil)
	n, ok := size.(*object.Number)
	if !ok || n.Val != 5 {
		t.Fatalf("got %#v, want Number(5)", size)
	}

	num := object.NewString("3.5", env.String)
	parsed := vm.Send(num, "asNumber", nil)
	pn, ok := parsed.(*object.Number)
	if !ok || pn.Val != 3.5 {
		t.Fatalf("got %#v, want Number(3.5)", parsed)
	}

	bad := object.NewString("not a number", env.String)
	if vm.Send(bad, "asNumber", nil) != env.Nil {
		t.Errorf("expected asNumber on a non-numeric string to answer nil")
	}
}

func TestObjectClassPrototypeAndPrintString(t *testing.T) {
	vm, env := newVM()
	obj, ok := env.Object.(*object.Dynamic)
	if !ok {
		t.Fatalf("env.Object is not a *object.Dynamic")
	}
	child := vm.Send(obj, object.SelNew, nil)

	if vm.Send(child, "prototype", nil) != obj {
		t.Errorf("expected prototype to answer the receiver's prototype")
	}
	if vm.Send(child, "class", nil) != obj {
		t.Errorf("expected class to answer the receiver's prototype")
	}
	if vm.Send(obj, "prototype", nil) != env.Nil {
		t.Errorf("expected the root Object's prototype to answer nil, not Go nil")
	}

	ps := vm.Send(object.NewNumber(1, env.Number), "printString", nil)
	s, ok := ps.(*object.String)
	if !ok || s.Val != "1" {
		t.Fatalf("got %#v, want String(\"1\")", ps)
	}
}

func TestArrayMutationAndIteration(t *testing.T) {
	vm, env := newVM()
	a := object.NewArray([]object.Value{
		object.NewNumber(1, env.Number),
		object.NewNumber(2, env.Number),
	}, env.Array)

	vm.Send(a, "at put ", []object.Value{object.NewNumber(0, env.Number), object.NewNumber(99, env.Number)})
	if a.Elements[0].(*object.Number).Val != 99 {
		t.Fatalf("got %#v, want Elements[0] mutated to 99", a.Elements[0])
	}

	sink := diag.NewCollector(nil)
	vm.Sink = sink
	vm.Send(a, "at put ", []object.Value{object.NewNumber(9, env.Number), object.NewNumber(1, env.Number)})
	if len(sink.Messages) != 1 {
		t.Errorf("expected an out-of-range diagnostic from at put, got %v", sink.Messages)
	}

	code := &bytecode.CodeBlock{
		Params: []string{"x"},
		Instructions: []bytecode.Instruction{
			{Op: bytecode.LOAD_LOCAL, IDArg: env.InternString("x")},
			{Op: bytecode.LOAD_GLOBAL, IDArg: env.InternString("total")},
			{Op: bytecode.MESSAGE, IDArg: env.InternString("+"), Argc: 1},
			{Op: bytecode.DEF_GLOBAL, IDArg: env.InternString("total")},
			{Op: bytecode.END_BLOCK},
		},
	}
	block := object.NewBlock(code, env.Global, env.Block)
	env.Global.Define("total", object.NewNumber(0, env.Number))

	vm.Send(a, "do ", []object.Value{block})
	total, _ := env.Global.Lookup("total")
	if total.(*object.Number).Val != 101 {
		t.Fatalf("got %#v, want total accumulated to 101 (99 + 2)", total)
	}
}

func TestEtherPrintPrintlnAndError(t *testing.T) {
	vm, env := newVM()
	sink := diag.NewCollector(nil)
	vm.Sink = sink

	vm.Send(env.Ether, "print ", []object.Value{object.NewNumber(1, env.Number)})
	vm.Send(env.Ether, "println ", []object.Value{object.NewString("hi", env.String)})
	vm.Send(env.Ether, "error ", []object.Value{object.NewString("bad state", env.String)})

	if len(sink.Messages) != 3 {
		t.Fatalf("got %v, want 3 reported messages", sink.Messages)
	}
	if sink.Messages[0] != "1" {
		t.Errorf("got %q, want \"1\"", sink.Messages[0])
	}
	if sink.Messages[1] != `"hi"` {
		t.Errorf("got %q, want %q", sink.Messages[1], `"hi"`)
	}
	if sink.Messages[2] != "Runtime error: bad state" {
		t.Errorf("got %q, want \"Runtime error: bad state\"", sink.Messages[2])
	}
}

func TestWhileLoopViaEther(t *testing.T) {
	vm, env := newVM()
	env.Global.Define("count", object.NewNumber(0, env.Number))
	env.Global.Define("limit", object.NewNumber(3, env.Number))

	condCode := &bytecode.CodeBlock{Instructions: []bytecode.Instruction{
		{Op: bytecode.LOAD_GLOBAL, IDArg: env.InternString("count")},
		{Op: bytecode.LOAD_GLOBAL, IDArg: env.InternString("limit")},
		{Op: bytecode.MESSAGE, IDArg: env.InternString("<"), Argc: 1},
		{Op: bytecode.END_BLOCK},
	}}
	bodyCode := &bytecode.CodeBlock{Instructions: []bytecode.Instruction{
		{Op: bytecode.LOAD_GLOBAL, IDArg: env.InternString("count")},
		{Op: bytecode.NUMBER_LITERAL, NumArg: 1},
		{Op: bytecode.MESSAGE, IDArg: env.InternString("+"), Argc: 1},
		{Op: bytecode.DEF_GLOBAL, IDArg: env.InternString("count")},
		{Op: bytecode.END_BLOCK},
	}}
	cond := object.NewBlock(condCode, env.Global, env.Block)
	body := object.NewBlock(bodyCode, env.Global, env.Block)

	vm.Send(env.Ether, "while do ", []object.Value{cond, body})

	v, _ := env.Global.Lookup("count")
	n, ok := v.(*object.Number)
	if !ok || n.Val != 3 {
		t.Fatalf("got %#v, want Number(3)", v)
	}
}
