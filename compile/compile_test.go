package compile

import (
	"testing"

	"github.com/etherlang/ether/ast"
	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/object"
)

func ops(code *bytecode.CodeBlock) []bytecode.Op {
	out := make([]bytecode.Op, len(code.Instructions))
	for i, in := range code.Instructions {
		out[i] = in.Op
	}
	return out
}

func TestCompileNumberLiteral(t *testing.T) {
	env := object.NewEnvironment()
	code := New(env).CompileProgram(&ast.Number{Value: 3})
	want := []bytecode.Op{bytecode.NUMBER_LITERAL, bytecode.END_BLOCK}
	got := ops(code)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
	if code.Instructions[0].NumArg != 3 {
		t.Errorf("got NumArg %v, want 3", code.Instructions[0].NumArg)
	}
}

func TestCompileSendBalancesStackBeyondMaxArgs(t *testing.T) {
	env := object.NewEnvironment()
	args := make([]ast.Expr, bytecode.MaxArgs+5)
	for i := range args {
		args[i] = &ast.Number{Value: float64(i)}
	}
	send := &ast.Send{Receiver: &ast.Name{Value: "x"}, Selector: "m", Args: args}
	code := New(env).CompileProgram(send)

	numberLiterals := 0
	var argc int
	for _, in := range code.Instructions {
		if in.Op == bytecode.NUMBER_LITERAL {
			numberLiterals++
		}
		if in.Op == bytecode.MESSAGE {
			argc = in.Argc
		}
	}
	if numberLiterals != bytecode.MaxArgs {
		t.Errorf("compiled %d NUMBER_LITERAL pushes, want %d (truncated to MaxArgs)", numberLiterals, bytecode.MaxArgs)
	}
	if argc != bytecode.MaxArgs {
		t.Errorf("MESSAGE Argc is %d, want %d", argc, bytecode.MaxArgs)
	}
}

func TestCompileBareNameSendTargetsEther(t *testing.T) {
	env := object.NewEnvironment()
	send := &ast.Send{Selector: "while do ", Args: []ast.Expr{&ast.Self{}, &ast.Self{}}}
	code := New(env).CompileProgram(send)

	if code.Instructions[0].Op != bytecode.LOAD_GLOBAL {
		t.Fatalf("expected first instruction to load a global (Ether), got %s", code.Instructions[0].Op)
	}
	if env.StringAt(code.Instructions[0].IDArg) != "Ether" {
		t.Errorf("got global %q, want \"Ether\"", env.StringAt(code.Instructions[0].IDArg))
	}
}

func TestCompileVarDeclAtGlobalScopeUsesDefGlobal(t *testing.T) {
	env := object.NewEnvironment()
	decl := &ast.VarDecl{Name: "x", Value: &ast.Number{Value: 1}}
	code := New(env).CompileProgram(decl)

	found := false
	for _, in := range code.Instructions {
		if in.Op == bytecode.DEF_GLOBAL {
			found = true
		}
		if in.Op == bytecode.DEF_LOCAL {
			t.Errorf("expected DEF_GLOBAL at top level, found DEF_LOCAL")
		}
	}
	if !found {
		t.Errorf("expected a DEF_GLOBAL instruction")
	}
}

func TestCompileSessionUsesLocalScope(t *testing.T) {
	env := object.NewEnvironment()
	decl := &ast.VarDecl{Name: "x", Value: &ast.Number{Value: 1}}
	code := New(env).CompileSession(decl)

	found := false
	for _, in := range code.Instructions {
		if in.Op == bytecode.DEF_LOCAL {
			found = true
		}
		if in.Op == bytecode.DEF_GLOBAL {
			t.Errorf("expected DEF_LOCAL under CompileSession, found DEF_GLOBAL")
		}
	}
	if !found {
		t.Errorf("expected a DEF_LOCAL instruction")
	}
}

func TestCompileArrayLiteralWithinMaxArgs(t *testing.T) {
	env := object.NewEnvironment()
	lit := &ast.ArrayLiteral{Elements: []ast.Expr{&ast.Number{Value: 1}, &ast.Number{Value: 2}}}
	code := New(env).CompileProgram(lit)

	var selector string
	for _, in := range code.Instructions {
		if in.Op == bytecode.MESSAGE {
			selector = env.StringAt(in.IDArg)
		}
	}
	if selector != "with with " {
		t.Errorf("got selector %q, want \"with with \"", selector)
	}
}

func TestCompileArrayLiteralBeyondMaxArgsChainsComma(t *testing.T) {
	env := object.NewEnvironment()
	elems := make([]ast.Expr, bytecode.MaxArgs+2)
	for i := range elems {
		elems[i] = &ast.Number{Value: float64(i)}
	}
	code := New(env).CompileProgram(&ast.ArrayLiteral{Elements: elems})

	commaSends := 0
	for _, in := range code.Instructions {
		if in.Op == bytecode.MESSAGE && env.StringAt(in.IDArg) == "," {
			commaSends++
		}
	}
	if commaSends != 2 {
		t.Errorf("got %d comma sends, want 2 (elements past MaxArgs)", commaSends)
	}
}
