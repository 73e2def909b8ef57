// Package image serializes an interpreter's block table and the
// user-definable slice of its global scope to a binary snapshot, so a
// REPL session's compiled blocks and top-level definitions survive a
// process restart. Encoding is CBOR (fxamacker/cbor/v2).
package image

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/object"
)

// Instruction is the wire form of bytecode.Instruction: CBOR needs plain
// exported fields, which bytecode.Instruction already has, so this only
// exists to pin a stable field order independent of the in-memory type.
type Instruction struct {
	Op     int
	NumArg float64
	IDArg  int
	Argc   int
}

// Block is the wire form of a bytecode.CodeBlock.
type Block struct {
	Instructions []Instruction
	Params       []string
}

// Global is one binding captured from the global scope. Only Number and
// String values round-trip: Dynamic objects and Blocks carry host-side
// identity (method tables, closures) a snapshot can't reconstruct
// without re-running the bootstrap and the defining source, so they are
// skipped rather than partially serialized.
type Global struct {
	Name   string
	Kind   string // "number" or "string"
	Number float64
	String string
}

// Snapshot is the full serialized image: the string table (block and
// selector names reference into it by index), the block table, and the
// scalar subset of the global scope.
type Snapshot struct {
	Strings []string
	Blocks  []Block
	Globals []Global
}

// Capture builds a Snapshot from env's current tables.
func Capture(env *object.Environment) *Snapshot {
	snap := &Snapshot{Strings: append([]string(nil), env.Strings()...)}

	for _, cb := range env.Blocks() {
		snap.Blocks = append(snap.Blocks, toWireBlock(cb))
	}

	for _, name := range env.GlobalNames() {
		v, ok := env.Global.Lookup(name)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case *object.Number:
			snap.Globals = append(snap.Globals, Global{Name: name, Kind: "number", Number: t.Val})
		case *object.String:
			snap.Globals = append(snap.Globals, Global{Name: name, Kind: "string", String: t.Val})
		}
	}
	return snap
}

func toWireBlock(cb *bytecode.CodeBlock) Block {
	b := Block{Params: cb.Params}
	for _, in := range cb.Instructions {
		b.Instructions = append(b.Instructions, Instruction{
			Op: int(in.Op), NumArg: in.NumArg, IDArg: in.IDArg, Argc: in.Argc,
		})
	}
	return b
}

// Save encodes snap as CBOR and writes it to path.
func Save(path string, snap *Snapshot) error {
	data, err := cbor.Marshal(snap)
	if err != nil {
		return fmt.Errorf("image: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("image: write %s: %w", path, err)
	}
	return nil
}

// Load reads and decodes a Snapshot from path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("image: read %s: %w", path, err)
	}
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("image: decode %s: %w", path, err)
	}
	return &snap, nil
}

// Restore installs snap's blocks and scalar globals into env. Block ids
// are assigned in the same order they were captured, so any BLOCK_LITERAL
// instruction referencing an id from the same snapshot resolves
// correctly; env is expected to be freshly bootstrapped (empty intern
// tables) before Restore runs.
func Restore(env *object.Environment, snap *Snapshot) {
	for _, s := range snap.Strings {
		env.InternString(s)
	}
	for _, b := range snap.Blocks {
		env.InternBlock(fromWireBlock(b))
	}
	for _, g := range snap.Globals {
		switch g.Kind {
		case "number":
			env.Global.Define(g.Name, object.NewNumber(g.Number, env.Number))
		case "string":
			env.Global.Define(g.Name, object.NewString(g.String, env.String))
		}
	}
}

func fromWireBlock(b Block) *bytecode.CodeBlock {
	cb := &bytecode.CodeBlock{Params: b.Params}
	for _, in := range b.Instructions {
		cb.Instructions = append(cb.Instructions, bytecode.Instruction{
			Op: bytecode.Op(in.Op), NumArg: in.NumArg, IDArg: in.IDArg, Argc: in.Argc,
		})
	}
	return cb
}
