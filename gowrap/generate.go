package gowrap

import (
	"fmt"
	"go/types"
	"sort"
	"strings"
)

// GenerateBootstrapGlue renders Go source for a registerXPrimitives-shaped
// function that installs one Ether primitive per function in
// model.Functions — IntrospectPackage has already filtered those down to
// the ones whose parameters and (non-error) result are all scalar, the
// only Go shapes with an unambiguous mapping to Ether's
// Number/String/singleton values. Everything IntrospectPackage excluded
// for that reason is listed in model.Skipped and rendered here as a skip
// comment naming it, never silently dropped.
func GenerateBootstrapGlue(model *PackageModel) string {
	global := GoPackageToEtherGlobal(model.ImportPath)
	fnName := "Register" + global + "Primitives"

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by cmd/ether-gowrap from %s. DO NOT EDIT.\n", model.ImportPath)
	b.WriteString("package gowrapgen\n\n")
	b.WriteString("import (\n")
	fmt.Fprintf(&b, "\t%q\n", model.ImportPath)
	b.WriteString("\t\"github.com/etherlang/ether/interp\"\n")
	b.WriteString("\t\"github.com/etherlang/ether/object\"\n")
	b.WriteString(")\n\n")

	fmt.Fprintf(&b, "// %s installs %s onto dyn, one primitive per wrappable\n", fnName, global)
	fmt.Fprintf(&b, "// exported function of %s.\n", model.ImportPath)
	fmt.Fprintf(&b, "func %s(vm *interp.Interpreter, dyn *object.Dynamic) {\n", fnName)
	b.WriteString("\tenv := vm.Env\n")
	b.WriteString("\t_ = env\n\n")

	fns := append([]FunctionModel(nil), model.Functions...)
	sort.Slice(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })
	for _, fn := range fns {
		writeFunctionGlue(&b, model.Name, fn)
	}

	skipped := append([]SkippedModel(nil), model.Skipped...)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Name < skipped[j].Name })
	for _, s := range skipped {
		fmt.Fprintf(&b, "\t// skipped %s: %s\n", s.Name, s.Reason)
	}

	b.WriteString("}\n\n")
	b.WriteString("func boolToEther(env *object.Environment, v bool) object.Value {\n")
	b.WriteString("\tif v {\n\t\treturn env.True\n\t}\n\treturn env.False\n}\n")
	return b.String()
}

func writeFunctionGlue(b *strings.Builder, pkgName string, fn FunctionModel) {
	sel := GoNameToEtherSelector(fn.Name, len(fn.Params))
	fmt.Fprintf(b, "\tdyn.AddPrimitive(%q, func(_ interface{}, self object.Value, args []object.Value) object.Value {\n", sel)
	for i, p := range fn.Params {
		fmt.Fprintf(b, "\t\t%s := %s\n", argVar(i), goArgFromEther(i, p))
	}
	call := fmt.Sprintf("%s.%s(%s)", pkgName, fn.Name, strings.Join(argNames(len(fn.Params)), ", "))
	if fn.ReturnsErr && len(fn.Results) == 2 {
		fmt.Fprintf(b, "\t\tresult, err := %s\n", call)
		b.WriteString("\t\tif err != nil {\n\t\t\treturn env.Nil\n\t\t}\n")
		fmt.Fprintf(b, "\t\treturn %s\n", etherFromGoResult("result", fn.Results[0].GoType))
	} else if fn.ReturnsErr && len(fn.Results) == 1 {
		fmt.Fprintf(b, "\t\terr := %s\n", call)
		b.WriteString("\t\tif err != nil {\n\t\t\treturn env.Nil\n\t\t}\n")
		b.WriteString("\t\treturn self\n")
	} else if len(fn.Results) == 1 {
		fmt.Fprintf(b, "\t\tresult := %s\n", call)
		fmt.Fprintf(b, "\t\treturn %s\n", etherFromGoResult("result", fn.Results[0].GoType))
	} else {
		fmt.Fprintf(b, "\t\t%s\n", call)
		b.WriteString("\t\treturn self\n")
	}
	b.WriteString("\t})\n")
}

func argVar(i int) string { return fmt.Sprintf("arg%d", i) }

func argNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = argVar(i)
	}
	return out
}

func goArgFromEther(i int, p ParamModel) string {
	basic := p.GoType.Underlying().(*types.Basic)
	access := fmt.Sprintf("args[%d]", i)
	switch basic.Kind() {
	case types.String:
		return fmt.Sprintf("%s.(*object.String).Val", access)
	case types.Bool:
		return fmt.Sprintf("%s == env.True", access)
	default:
		return fmt.Sprintf("%s(%s.(*object.Number).Val)", p.GoType.String(), access)
	}
}

func etherFromGoResult(name string, t types.Type) string {
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return "env.Nil"
	}
	switch basic.Kind() {
	case types.String:
		return fmt.Sprintf("object.NewString(%s, env.String)", name)
	case types.Bool:
		return fmt.Sprintf("boolToEther(env, %s)", name)
	default:
		return fmt.Sprintf("object.NewNumber(float64(%s), env.Number)", name)
	}
}
