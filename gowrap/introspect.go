package gowrap

import (
	"fmt"
	"go/constant"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// IntrospectPackage loads a Go package by import path and returns its
// exported, Ether-wrappable API as a PackageModel. includeFilter, when
// non-nil, restricts the result to the named exported identifiers.
//
// Only functions and methods whose parameters and (non-error) result
// are all scalar — bool, string, or a numeric kind — end up in
// model.Functions / a TypeModel's Methods, since those are the only Go
// shapes with an unambiguous mapping to Ether's Number/String/singleton
// values. Everything exported but unwrappable is recorded in
// model.Skipped with a reason rather than dropped without a trace, so
// GenerateBootstrapGlue can still surface it as a comment.
func IntrospectPackage(importPath string, includeFilter map[string]bool) (*PackageModel, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax,
	}

	loaded, err := packages.Load(cfg, importPath)
	if err != nil {
		return nil, fmt.Errorf("gowrap: loading %s: %w", importPath, err)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("gowrap: no packages found for %s", importPath)
	}
	pkg := loaded[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("gowrap: package errors: %v", pkg.Errors)
	}
	if pkg.Types == nil {
		return nil, fmt.Errorf("gowrap: type information not available for %s", importPath)
	}

	model := &PackageModel{ImportPath: importPath, Name: pkg.Name}
	exports := pkg.Types.Scope()

	for _, ident := range exports.Names() {
		if includeFilter != nil && !includeFilter[ident] {
			continue
		}
		obj := exports.Lookup(ident)
		if !obj.Exported() {
			continue
		}
		switch decl := obj.(type) {
		case *types.Func:
			model.admitFunction(functionModelFromSig(decl.Name(), decl.Type().(*types.Signature), false, ""))
		case *types.TypeName:
			model.absorbType(extractType(decl, pkg.Types))
		case *types.Const:
			model.Constants = append(model.Constants, extractConstant(decl))
		}
	}
	return model, nil
}

// admitFunction routes fn into Functions when it can be represented as
// an Ether primitive, or into Skipped with a reason otherwise.
func (m *PackageModel) admitFunction(fn FunctionModel) {
	if isWrappable(fn) {
		m.Functions = append(m.Functions, fn)
		return
	}
	m.Skipped = append(m.Skipped, SkippedModel{Name: fn.Name, Reason: "unwrappable parameter or result type"})
}

// absorbType folds a scanned type's wrappable methods into m.Functions'
// sibling home on the type, pushing its unwrappable methods into
// m.Skipped under "Type.Method" so the reason travels with the type
// that owns it, not just a bare method name.
func (m *PackageModel) absorbType(scanned *scannedType) {
	if scanned == nil {
		return
	}
	tm := TypeModel{Name: scanned.name, GoType: scanned.goType, Fields: scanned.fields}
	for _, fn := range scanned.methods {
		if isWrappable(fn) {
			tm.Methods = append(tm.Methods, fn)
			continue
		}
		m.Skipped = append(m.Skipped, SkippedModel{
			Name:   scanned.name + "." + fn.Name,
			Reason: "unwrappable parameter or result type",
		})
	}
	m.Types = append(m.Types, tm)
}

// scannedType is extractType's raw findings before wrappability
// filtering happens in absorbType, which needs the full method list to
// separate the wrappable ones from the ones worth a skip reason.
type scannedType struct {
	name    string
	goType  types.Type
	fields  []FieldModel
	methods []FunctionModel
}

func extractType(tn *types.TypeName, pkg *types.Package) *scannedType {
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}
	underlying, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}

	scanned := &scannedType{name: tn.Name(), goType: tn.Type()}
	for i := 0; i < underlying.NumFields(); i++ {
		field := underlying.Field(i)
		if field.Exported() {
			scanned.fields = append(scanned.fields, FieldModel{
				Name:    field.Name(),
				GoType:  field.Type(),
				TypeStr: types.TypeString(field.Type(), qualifier(pkg)),
			})
		}
	}

	methodSet := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < methodSet.Len(); i++ {
		candidate := methodSet.At(i)
		fn, ok := candidate.Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		if candidate.Index() != nil && len(candidate.Index()) > 1 {
			continue // inherited from an embedded field, not this type
		}
		sig := fn.Type().(*types.Signature)
		scanned.methods = append(scanned.methods, functionModelFromSig(fn.Name(), sig, true, "*"+tn.Name()))
	}
	return scanned
}

func extractConstant(c *types.Const) ConstantModel {
	val := c.Val()
	valStr := val.ExactString()
	if val.Kind() == constant.String {
		valStr = constant.StringVal(val)
	}
	return ConstantModel{Name: c.Name(), TypeStr: c.Type().String(), Value: valStr}
}

func functionModelFromSig(name string, sig *types.Signature, isMethod bool, recvType string) FunctionModel {
	fm := FunctionModel{Name: name, IsMethod: isMethod, RecvType: recvType}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		fm.Params = append(fm.Params, ParamModel{Name: p.Name(), GoType: p.Type(), TypeStr: p.Type().String()})
	}

	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		r := results.At(i)
		fm.Results = append(fm.Results, ParamModel{Name: r.Name(), GoType: r.Type(), TypeStr: r.Type().String()})
	}
	if results.Len() > 0 && isErrorType(results.At(results.Len()-1).Type()) {
		fm.ReturnsErr = true
	}
	return fm
}

func isErrorType(t types.Type) bool {
	iface, ok := t.Underlying().(*types.Interface)
	if !ok {
		if named, ok := t.(*types.Named); ok {
			return named.Obj().Name() == "error" && named.Obj().Pkg() == nil
		}
		return false
	}
	return iface.NumMethods() == 1 && iface.Method(0).Name() == "Error"
}

// isWrappable reports whether fn's parameters and (non-error) result are
// all scalar, the only Go shapes GenerateBootstrapGlue knows how to
// convert to and from an Ether value. Methods promoted from an embedded
// field are handled by extractType's index check before this ever runs.
func isWrappable(fn FunctionModel) bool {
	for _, p := range fn.Params {
		if !isScalar(p.GoType) {
			return false
		}
	}
	switch {
	case fn.ReturnsErr && len(fn.Results) <= 2:
		if len(fn.Results) == 2 && !isScalar(fn.Results[0].GoType) {
			return false
		}
		return true
	case len(fn.Results) == 0:
		return true
	case len(fn.Results) == 1:
		return isScalar(fn.Results[0].GoType)
	default:
		return false
	}
}

func isScalar(t types.Type) bool {
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return false
	}
	switch basic.Kind() {
	case types.Bool, types.String,
		types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
		types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64,
		types.Float32, types.Float64:
		return true
	default:
		return false
	}
}

func qualifier(pkg *types.Package) types.Qualifier {
	return func(other *types.Package) string {
		if other == pkg {
			return ""
		}
		return other.Name()
	}
}
