package codegen

import (
	"github.com/kz/proclc/pkg/ast"
	"github.com/kz/proclc/pkg/isa"
)

// canonicalizeCondition reduces the six relational operators to one of
// two primitives — eq or gt — applied to a possibly-reordered pair of
// operands, plus a negate flag recording whether the original condition
// is true exactly when the canonical test is FALSE (spec.md §4.5).
func canonicalizeCondition(cond *ast.Condition) (op ast.BinOp, left, right ast.Value, negate bool) {
	switch cond.Op {
	case ast.OpEq:
		return ast.OpEq, cond.Left, cond.Right, false
	case ast.OpNeq:
		return ast.OpEq, cond.Left, cond.Right, true
	case ast.OpGt:
		return ast.OpGt, cond.Left, cond.Right, false
	case ast.OpLt:
		return ast.OpGt, cond.Right, cond.Left, false
	case ast.OpGeq:
		return ast.OpGt, cond.Right, cond.Left, true
	default: // ast.OpLeq
		return ast.OpGt, cond.Left, cond.Right, true
	}
}

// genCondition lowers cond and returns the index of a reserved jump that
// is taken exactly when the original (pre-canonicalization) condition is
// true. The caller patches it to wherever the true branch should land.
//
// Both operands load into e and f (the accumulator is scratch during
// comparison); gt compares by saturating subtraction, eq by summing both
// saturating differences (zero only when they're equal, since at most
// one difference can be nonzero).
func (g *Generator) genCondition(cond *ast.Condition) int {
	op, left, right, negate := canonicalizeCondition(cond)
	g.genOperandInto(left, isa.E)
	g.genOperandInto(right, isa.F)

	var canonicalOp isa.Mnemonic
	switch op {
	case ast.OpGt:
		g.emitReg(isa.GET, isa.E)
		g.emitReg(isa.SUB, isa.F)
		canonicalOp = isa.JPOS
	case ast.OpEq:
		g.emitReg(isa.GET, isa.E)
		g.emitReg(isa.SUB, isa.F)
		g.emitReg(isa.PUT, isa.B)
		g.emitReg(isa.GET, isa.F)
		g.emitReg(isa.SUB, isa.E)
		g.emitReg(isa.ADD, isa.B)
		canonicalOp = isa.JZERO
	default:
		g.errf("internal error: condition did not canonicalize to eq/gt")
		canonicalOp = isa.JZERO
	}

	if !negate {
		return g.reserveJump(canonicalOp)
	}

	// negate: the branch we want to return is taken iff the canonical
	// test is false. Skip an unconditional jump when the canonical test
	// holds; fall into it (taking it) when the test fails.
	skip := g.reserveJump(canonicalOp)
	trueJump := g.reserveJump(isa.JUMP)
	g.patchJump(skip, g.here())
	return trueJump
}
