package codegen

import "github.com/kz/proclc/pkg/isa"

// performMultiplication emits a Russian-peasant binary multiplication:
// result accumulates multiplicand whenever the current low bit of
// multiplier is set, then multiplicand doubles and multiplier halves,
// repeating until multiplier reaches zero. On exit the product is in
// register a as well as result.
func (g *Generator) performMultiplication(result, multiplicand, multiplier isa.Register) {
	g.emitReg(isa.RST, result)

	loopStart := g.here()
	g.emitReg(isa.GET, multiplier)
	doneJump := g.reserveJump(isa.JZERO)

	// Isolate the low bit of multiplier into the accumulator without
	// losing multiplier's value: clear its low bit via SHR;SHL, then
	// subtract that from the original value GET above.
	g.emitReg(isa.SHR, multiplier)
	g.emitReg(isa.SHL, multiplier)
	g.emitReg(isa.SUB, multiplier)
	skipAdd := g.reserveJump(isa.JZERO)

	g.emitReg(isa.GET, result)
	g.emitReg(isa.ADD, multiplicand)
	g.emitReg(isa.PUT, result)
	g.patchJump(skipAdd, g.here())

	g.emitReg(isa.SHL, multiplicand)
	g.emitReg(isa.SHR, multiplier)
	g.emit(isa.JumpInstr(isa.JUMP, loopStart))

	g.patchJump(doneJump, g.here())
	g.emitReg(isa.GET, result)
}

// performDivision emits a restoring shift-subtract division: result and
// remainder end up holding the quotient and remainder of remainder /
// divisor. A zero divisor short-circuits straight to the end, leaving
// result at 0 and remainder unchanged, rather than faulting — division
// by a runtime-computed zero is a property of the input data, not a
// compile error, so the emitted program degrades gracefully instead of
// crashing the virtual machine.
func (g *Generator) performDivision(result, counter, partial, remainder, divisor isa.Register) {
	g.emitReg(isa.RST, result)

	g.emitReg(isa.GET, divisor)
	nonzero := g.reserveJump(isa.JPOS)
	skipToEnd := g.reserveJump(isa.JUMP)
	g.patchJump(nonzero, g.here())

	checkStart := g.here()
	g.emitReg(isa.GET, divisor)
	g.emitReg(isa.SUB, remainder)
	doneJump := g.reserveJump(isa.JPOS) // divisor > remainder: finished

	g.emitReg(isa.RST, counter)
	g.emitReg(isa.INC, counter)
	g.emitReg(isa.GET, divisor)
	g.emitReg(isa.PUT, partial)

	shiftLoop := g.here()
	g.emitReg(isa.SHL, partial)
	g.emitReg(isa.GET, partial)
	g.emitReg(isa.SUB, remainder)
	shiftDone := g.reserveJump(isa.JPOS) // partial now exceeds remainder
	g.emitReg(isa.SHL, counter)
	g.emit(isa.JumpInstr(isa.JUMP, shiftLoop))

	g.patchJump(shiftDone, g.here())
	g.emitReg(isa.SHR, partial)
	g.emitReg(isa.GET, remainder)
	g.emitReg(isa.SUB, partial)
	g.emitReg(isa.PUT, remainder)
	g.emitReg(isa.GET, result)
	g.emitReg(isa.ADD, counter)
	g.emitReg(isa.PUT, result)
	g.emit(isa.JumpInstr(isa.JUMP, checkStart))

	end := g.here()
	g.patchJump(skipToEnd, end)
	g.patchJump(doneJump, end)
}
