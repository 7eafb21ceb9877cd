package codegen

import "github.com/kz/proclc/pkg/isa"

// genNumber emits the minimal RST/INC/SHL sequence that materializes the
// unsigned constant n into register reg (spec.md §4.2). It never touches
// memory.
func (g *Generator) genNumber(n int, reg isa.Register) {
	g.emitReg(isa.RST, reg)
	if n == 0 {
		return
	}
	bits := bitsMSBFirst(n)
	for _, bit := range bits[:len(bits)-1] {
		if bit {
			g.emitReg(isa.INC, reg)
		}
		g.emitReg(isa.SHL, reg)
	}
	if bits[len(bits)-1] {
		g.emitReg(isa.INC, reg)
	}
}

// bitsMSBFirst returns the binary expansion of n (n > 0), most
// significant bit first.
func bitsMSBFirst(n int) []bool {
	var bits []bool
	for n > 0 {
		bits = append([]bool{n&1 == 1}, bits...)
		n >>= 1
	}
	return bits
}
