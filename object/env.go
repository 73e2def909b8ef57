package object

import "github.com/etherlang/ether/bytecode"

// Environment holds the process-wide tables: the string-intern table, the
// block table, the global scope, and the well-known objects every
// bootstrap must provide. Insertion into the intern tables never
// recycles ids within one Environment's lifetime.
type Environment struct {
	Global *Scope

	strings   []string
	stringIDs map[string]int

	blocks []*bytecode.CodeBlock

	Object Value
	Number Value
	String Value
	Block  Value
	Array  Value
	Ether  Value

	Nil   Value
	True  Value
	False Value
}

// NewEnvironment creates an Environment with empty intern tables and no
// well-known objects populated; a bootstrap (stdlib.Bootstrap) fills in
// Object/Number/.../False and registers their primitives.
func NewEnvironment() *Environment {
	return &Environment{
		Global:    NewScope(nil),
		stringIDs: make(map[string]int),
	}
}

// InternString returns the id for s, assigning a fresh one if s has not
// been seen before in this Environment.
func (e *Environment) InternString(s string) int {
	if id, ok := e.stringIDs[s]; ok {
		return id
	}
	id := len(e.strings)
	e.strings = append(e.strings, s)
	e.stringIDs[s] = id
	return id
}

// StringAt returns the interned string for id. Panics on an out-of-range
// id, which would indicate a compiler bug.
func (e *Environment) StringAt(id int) string {
	return e.strings[id]
}

// InternBlock stores code and returns its block-table id.
func (e *Environment) InternBlock(code *bytecode.CodeBlock) int {
	id := len(e.blocks)
	e.blocks = append(e.blocks, code)
	return id
}

// BlockAt returns the interned CodeBlock for id.
func (e *Environment) BlockAt(id int) *bytecode.CodeBlock {
	return e.blocks[id]
}

// Strings returns the full string-intern table, in id order. Used by
// image snapshotting.
func (e *Environment) Strings() []string {
	return e.strings
}

// Blocks returns the full block table, in id order. Used by image
// snapshotting.
func (e *Environment) Blocks() []*bytecode.CodeBlock {
	return e.blocks
}

// GlobalNames returns every name bound in the global scope.
func (e *Environment) GlobalNames() []string {
	return e.Global.Names()
}
