// Package object implements Ether's value representation, lexical scopes,
// and prototype-based message dispatch.
//
// Values are a tagged variant expressed as a Go interface with a type
// switch at dispatch time rather than a class hierarchy or a NaN-boxed
// word — the natural Go shape for a small closed set of value kinds.
package object

import "github.com/etherlang/ether/bytecode"

// Value is any Ether runtime value.
type Value interface {
	// Prototype returns the object consulted when this value doesn't
	// handle a message itself. Only the root Object has an absent
	// prototype, represented as nil.
	Prototype() Value

	// SetPrototype replaces the prototype link. Used by the bootstrap to
	// link the nil/true/false singletons to Object.
	SetPrototype(Value)

	value()
}

// Primitive is a host function backing a selector on some object.
// vm is passed as an interface{} rather than a concrete *interp.Interpreter
// to avoid an import cycle between object and interp: interp imports
// object for values, and primitives need to call back into the
// interpreter (to invoke blocks, to report errors). Concrete primitive
// implementations in stdlib type-assert vm to *interp.Interpreter.
type Primitive func(vm interface{}, self Value, args []Value) Value

// base is embedded by every concrete Value to provide the prototype link
// without repeating the same three lines on every variant.
type base struct {
	prototype Value
}

func (b *base) Prototype() Value     { return b.prototype }
func (b *base) SetPrototype(p Value) { b.prototype = p }

// Number wraps a float64. Its prototype is the well-known Number object.
type Number struct {
	base
	Val float64
}

func NewNumber(v float64, proto Value) *Number {
	n := &Number{Val: v}
	n.prototype = proto
	return n
}

func (*Number) value() {}

// String wraps a text value. Its prototype is the well-known String object.
type String struct {
	base
	Val string
}

func NewString(v string, proto Value) *String {
	s := &String{Val: v}
	s.prototype = proto
	return s
}

func (*String) value() {}

// Array is an ordered, mutable sequence of values.
type Array struct {
	base
	Elements []Value
}

func NewArray(elements []Value, proto Value) *Array {
	a := &Array{Elements: elements}
	a.prototype = proto
	return a
}

func (*Array) value() {}

// Nil and Bool are unique singletons. Equality is Go pointer identity:
// every reference to "the" nil object is the same *Singleton.
type Singleton struct {
	base
	Name string
}

func (*Singleton) value() {}

// Block is a first-class callable: compiled code, its cached parameter
// list, and the closure scope captured at the block literal's evaluation
// point — the scope that was current when the literal was evaluated,
// not the scope active when the block is later called.
type Block struct {
	base
	Code    *bytecode.CodeBlock
	Closure *Scope
	Params  []string
}

func NewBlock(code *bytecode.CodeBlock, closure *Scope, proto Value) *Block {
	return &Block{
		Code:    code,
		Closure: closure,
		Params:  code.Params,
		base:    base{prototype: proto},
	}
}

func (*Block) value() {}

// Dynamic is a general-purpose prototype-based object: an object-scope
// for fields, a method table for user-defined blocks, and a primitive
// table for host functions.
type Dynamic struct {
	base
	Scope      *Scope
	Methods    map[string]*Block
	Primitives map[string]Primitive
	Name       string // display name, may be empty
}

// NewDynamic creates a Dynamic object whose object-scope is parented on
// the prototype's object-scope, so inherited fields resolve through the
// scope chain.
func NewDynamic(proto Value, name string) *Dynamic {
	var parentScope *Scope
	if d, ok := proto.(*Dynamic); ok {
		parentScope = d.Scope
	}
	d := &Dynamic{
		Scope:      NewScope(parentScope),
		Methods:    make(map[string]*Block),
		Primitives: make(map[string]Primitive),
		Name:       name,
	}
	d.prototype = proto
	return d
}

func (*Dynamic) value() {}

// AddMethod installs body under selector on d, or reports a bad-definition
// error if name is empty or body is not a block.
func (d *Dynamic) AddMethod(sink func(string), selector string, body Value) {
	if selector == "" {
		sink("Runtime error: cannot define a method with an empty name")
		return
	}
	block, ok := body.(*Block)
	if !ok {
		sink("Runtime error: method body for " + selector + " is not a block")
		return
	}
	d.Methods[selector] = block
}

// AddPrimitive registers a host function under selector on this specific
// object. A user-defined method of the same name on the same object takes
// precedence at dispatch, which checks Methods before Primitives.
func (d *Dynamic) AddPrimitive(selector string, fn Primitive) {
	d.Primitives[selector] = fn
}
