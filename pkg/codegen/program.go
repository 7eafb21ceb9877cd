// Package codegen is the code generator: the compiler's core. It lowers
// an ast.Program into a flat isa.Instruction stream for the target
// register/memory virtual machine.
package codegen

import (
	"github.com/kz/proclc/pkg/ast"
	"github.com/kz/proclc/pkg/diagnostics"
	"github.com/kz/proclc/pkg/isa"
	"github.com/kz/proclc/pkg/symtab"
)

// procedure records everything a call site needs to know about a
// previously-defined procedure: where its body starts, where its
// return-address cell lives, and the calling convention of each
// parameter.
type procedure struct {
	name     string
	location int // code offset of the procedure's first instruction
	callback int // address of the return-address cell
	params   []paramSlot
}

type paramSlot struct {
	address int
	kind    symtab.Kind // KindScalar or KindArray
}

// Generator owns all compiler state across the whole compilation: the
// growing instruction stream, the memory table for whichever scope is
// currently being lowered, the table of procedures defined so far, the
// watermark shared across every scope, and the sticky diagnostics bag.
type Generator struct {
	Code []isa.Instruction

	memory     *symtab.Table
	procedures map[string]*procedure
	offset     int

	diags     *diagnostics.Bag
	loopDepth int
	line      int
}

// New creates a Generator reporting diagnostics into diags.
func New(diags *diagnostics.Bag) *Generator {
	return &Generator{
		procedures: make(map[string]*procedure),
		diags:      diags,
	}
}

// Generate lowers a full program and returns the final instruction
// stream. Callers should check diags.HasErrors() before trusting or
// writing the result, per spec.md §7.
func Generate(prog *ast.Program, diags *diagnostics.Bag) []isa.Instruction {
	g := New(diags)
	for _, proc := range prog.Procedures {
		g.genProcedure(proc)
	}
	g.genMain(prog.Main)
	return g.Code
}

// --- small emission helpers -------------------------------------------------

func (g *Generator) emit(ins isa.Instruction) {
	g.Code = append(g.Code, ins)
}

func (g *Generator) emitReg(op isa.Mnemonic, r isa.Register) {
	g.emit(isa.RegInstr(op, r))
}

func (g *Generator) emitBare(op isa.Mnemonic) {
	g.emit(isa.Bare(op))
}

// here returns the index the next emitted instruction will occupy —
// i.e. the resolved target of a jump landing "after whatever comes
// next".
func (g *Generator) here() int {
	return len(g.Code)
}

// reserveJump appends a placeholder jump instruction and returns its
// index, to be rewritten later by patchJump once the real target is
// known. This is the reserve-index/emit/overwrite pattern spec.md §9
// recommends in place of any form of string rewriting.
func (g *Generator) reserveJump(op isa.Mnemonic) int {
	idx := g.here()
	g.emit(isa.JumpInstr(op, -1))
	return idx
}

// patchJump rewrites the target of a previously reserved jump.
func (g *Generator) patchJump(idx, target int) {
	g.Code[idx].Target = target
}

// errf records a code-generation error at the generator's current line
// and sets the sticky error flag. Command lowering uses this to report a
// failure and move on to the next command, matching spec.md §7's
// "continue after error" rule.
func (g *Generator) errf(format string, args ...interface{}) {
	g.diags.Errorf(g.line, format, args...)
}

func (g *Generator) uninitializedUse(name string) {
	g.diags.ErrorOrWarnf(g.loopDepth == 0, g.line,
		"variable %s not initialized", name)
}
