package codegen

import (
	"github.com/kz/proclc/pkg/ast"
	"github.com/kz/proclc/pkg/isa"
	"github.com/kz/proclc/pkg/symtab"
)

// genDeclarations declares every local in decls against the generator's
// current scope, reporting (and continuing past) any that collide with
// an existing name.
func (g *Generator) genDeclarations(decls []ast.Declaration) {
	for _, d := range decls {
		g.line = d.Line()
		switch decl := d.(type) {
		case *ast.ScalarDecl:
			if err := g.memory.AddScalar(decl.Name); err != nil {
				g.errf("%v", err)
			}
		case *ast.ArrayDecl:
			if err := g.memory.AddArray(decl.Name, decl.Size); err != nil {
				g.errf("%v", err)
			}
		default:
			g.errf("internal error: unhandled declaration type %T", d)
		}
	}
}

// genProcedure lowers one procedure definition (spec.md §4.7). Every
// procedure gets its own scope: a one-cell return-address slot (the
// "callback"), one pointer cell per formal parameter forwarding to
// whatever the caller binds it to, then its own locals — all allocated
// from the shared watermark so no two scopes ever overlap, since nothing
// here uses a call stack.
func (g *Generator) genProcedure(decl *ast.ProcDecl) {
	g.line = decl.LineNum

	if _, exists := g.procedures[decl.Name]; exists {
		g.errf("procedure %s already declared", decl.Name)
		return
	}

	// The very first procedure reserves code[0] as a placeholder jump
	// over every procedure body, patched once main's start is known.
	if g.here() == 0 {
		g.reserveJump(isa.JUMP)
	}

	proc := &procedure{name: decl.Name, location: g.here(), callback: g.offset}
	g.memory = symtab.New(g.offset + 1)

	for _, p := range decl.Params {
		kind := symtab.KindScalar
		if p.Kind == ast.ParamArray {
			kind = symtab.KindArray
		}
		if err := g.memory.AddPointer(p.Name, kind); err != nil {
			g.errf("%v", err)
			continue
		}
		addr, err := g.memory.ScalarAddress(p.Name)
		if err != nil {
			g.errf("%v", err)
			continue
		}
		proc.params = append(proc.params, paramSlot{address: addr, kind: kind})
	}

	g.genDeclarations(decl.Decls)
	g.genCommands(decl.Body)

	g.procedures[decl.Name] = proc
	g.offset = g.memory.Offset

	// Return trampoline: the callback cell holds the pc of the call
	// site's STRK instruction; landing 3 past it clears the STRK, the
	// STORE that saved it, and the JUMP into this procedure.
	g.genNumber(proc.callback, isa.A)
	g.emitReg(isa.LOAD, isa.A)
	g.emitReg(isa.INC, isa.A)
	g.emitReg(isa.INC, isa.A)
	g.emitReg(isa.INC, isa.A)
	g.emitReg(isa.JUMPR, isa.A)
}

// genMain lowers the program's entry block (spec.md §4.8). If any
// procedures were emitted ahead of it, the leading placeholder jump is
// patched to land exactly here so a freshly loaded program skips past
// every procedure body and starts executing main directly.
func (g *Generator) genMain(main *ast.Block) {
	if g.here() > 0 {
		g.patchJump(0, g.here())
	}

	g.memory = symtab.New(g.offset)
	g.genDeclarations(main.Decls)
	g.genCommands(main.Body)
	g.emitBare(isa.HALT)
}
