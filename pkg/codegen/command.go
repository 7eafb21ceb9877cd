package codegen

import (
	"fmt"

	"github.com/kz/proclc/pkg/ast"
	"github.com/kz/proclc/pkg/isa"
	"github.com/kz/proclc/pkg/symtab"
)

// genCommands lowers a command list in order (spec.md §4.6). A failure in
// one command is recorded and generation continues with the next one, so
// a single compile reports every error in the source rather than only
// the first.
func (g *Generator) genCommands(cmds []ast.Command) {
	for _, cmd := range cmds {
		g.genCommand(cmd)
	}
}

func (g *Generator) genCommand(cmd ast.Command) {
	g.line = cmd.Line()
	switch c := cmd.(type) {
	case *ast.Assign:
		g.genAssign(c)
	case *ast.Read:
		g.genRead(c)
	case *ast.Write:
		g.genWrite(c)
	case *ast.IfElse:
		g.genIfElse(c)
	case *ast.While:
		g.genWhile(c)
	case *ast.Repeat:
		g.genRepeat(c)
	case *ast.Call:
		g.genCall(c)
	default:
		g.errf("internal error: unhandled command type %T", cmd)
	}
}

func (g *Generator) genAssign(c *ast.Assign) {
	g.loadAddress(c.LHS, isa.H)
	g.genExpression(c.Expr)
	g.emitReg(isa.STORE, isa.H)
	g.memory.MarkInitialized(c.LHS.Name)
}

func (g *Generator) genRead(c *ast.Read) {
	g.loadAddress(c.LHS, isa.H)
	g.emitBare(isa.READ)
	g.emitReg(isa.STORE, isa.H)
	g.memory.MarkInitialized(c.LHS.Name)
}

func (g *Generator) genWrite(c *ast.Write) {
	switch v := c.Value.(type) {
	case *ast.NumberLit:
		g.genNumber(v.Val, isa.A)
	case *ast.LoadRef:
		g.loadAddress(v.Ref, isa.H)
		g.emitReg(isa.LOAD, isa.H)
	default:
		g.errf("invalid write operand")
		return
	}
	g.emitBare(isa.WRITE)
}

// genIfElse: take the true branch to the "then" commands, otherwise fall
// through into "else". The reserve/patch pair at the end joins both arms
// back to a single successor.
func (g *Generator) genIfElse(c *ast.IfElse) {
	trueJump := g.genCondition(c.Cond)
	g.genCommands(c.Else)
	endJump := g.reserveJump(isa.JUMP)
	g.patchJump(trueJump, g.here())
	g.genCommands(c.Then)
	g.patchJump(endJump, g.here())
}

func (g *Generator) genWhile(c *ast.While) {
	condStart := g.here()
	trueJump := g.genCondition(c.Cond)
	exitJump := g.reserveJump(isa.JUMP)
	g.patchJump(trueJump, g.here())

	g.loopDepth++
	g.genCommands(c.Body)
	g.loopDepth--

	g.emit(isa.JumpInstr(isa.JUMP, condStart))
	g.patchJump(exitJump, g.here())
}

func (g *Generator) genRepeat(c *ast.Repeat) {
	bodyStart := g.here()

	g.loopDepth++
	g.genCommands(c.Body)
	g.loopDepth--

	trueJump := g.genCondition(c.Cond)
	g.emit(isa.JumpInstr(isa.JUMP, bodyStart))
	g.patchJump(trueJump, g.here())
}

// genCall lowers a procedure invocation: every argument's effective
// address is written into the callee's pointer cell for that parameter,
// a return address is captured with STRK, and control transfers with an
// unconditional JUMP to the callee's entry point (spec.md §4.7). Calling
// an undeclared procedure — including calling a procedure recursively,
// which this calling convention cannot support since each procedure has
// a single return-address cell — is reported and the call is skipped.
func (g *Generator) genCall(c *ast.Call) {
	for _, argName := range c.Args {
		g.memory.MarkInitialized(argName)
	}

	proc, ok := g.procedures[c.Name]
	if !ok {
		g.errf("procedure %s not declared (this may mean a recursive call was attempted)", c.Name)
		return
	}
	if len(c.Args) != len(proc.params) {
		g.errf("argument count mismatch with procedure %s (received %d, expected %d)",
			c.Name, len(c.Args), len(proc.params))
		return
	}

	for i, argName := range c.Args {
		kind, err := g.effectiveArgKind(argName)
		if err != nil {
			g.errf("%v", err)
			continue
		}
		if kind != proc.params[i].kind {
			g.errf("argument type mismatch with procedure %s", c.Name)
			continue
		}

		var ref ast.Ref
		if kind == symtab.KindArray {
			ref = ast.Ref{Name: argName, IsArray: true, Index: &ast.NumberLit{Val: 0}}
		} else {
			ref = ast.Ref{Name: argName}
		}
		g.loadAddress(ref, isa.H)
		g.emitReg(isa.GET, isa.H)
		g.genNumber(proc.params[i].address, isa.B)
		g.emitReg(isa.STORE, isa.B)
	}

	g.genNumber(proc.callback, isa.B)
	g.emitReg(isa.STRK, isa.A)
	g.emitReg(isa.STORE, isa.B)
	g.emit(isa.JumpInstr(isa.JUMP, proc.location))
}

// effectiveArgKind resolves the kind the call should check an argument
// against: a forwarded pointer parameter stands in for whatever it
// points to, so it matches on its pointee kind rather than KindPointer.
func (g *Generator) effectiveArgKind(name string) (symtab.Kind, error) {
	sym := g.memory.Lookup(name)
	if sym == nil {
		return 0, fmt.Errorf("%s is undeclared", name)
	}
	if sym.Kind == symtab.KindPointer {
		return sym.PointeeKind, nil
	}
	return sym.Kind, nil
}
