// Package gowrap introspects a Go package's exported API and generates
// glue code registering that API as Ether primitives, so an embedder can
// expose an arbitrary Go package to Ether scripts without hand-writing a
// registerXPrimitives function for it.
package gowrap

import "go/types"

// PackageModel is the in-memory representation of a Go package's exported
// API, produced by IntrospectPackage and consumed by GenerateBootstrapGlue.
type PackageModel struct {
	ImportPath string
	Name       string // short package name (e.g., "json")
	Functions  []FunctionModel
	Types      []TypeModel
	Constants  []ConstantModel
	Skipped    []SkippedModel
}

// SkippedModel records an exported function or method IntrospectPackage
// found but could not represent as an Ether primitive, and why —
// GenerateBootstrapGlue turns these into skip comments so an excluded
// name is visible in the generated file rather than silently absent.
type SkippedModel struct {
	Name   string
	Reason string
}

// TypeModel represents an exported Go struct type.
type TypeModel struct {
	Name    string
	GoType  types.Type
	Fields  []FieldModel
	Methods []FunctionModel // pointer-receiver methods
}

// FunctionModel represents an exported function or method.
type FunctionModel struct {
	Name       string
	IsMethod   bool
	RecvType   string // non-empty for methods, e.g. "*Server"
	Params     []ParamModel
	Results    []ParamModel
	ReturnsErr bool // true when the last result is the error type
}

// ParamModel represents a function parameter or result.
type ParamModel struct {
	Name    string
	GoType  types.Type
	TypeStr string
}

// FieldModel represents an exported struct field.
type FieldModel struct {
	Name    string
	GoType  types.Type
	TypeStr string
}

// ConstantModel represents an exported constant.
type ConstantModel struct {
	Name    string
	TypeStr string
	Value   string
}
