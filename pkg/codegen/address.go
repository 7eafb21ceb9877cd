package codegen

import (
	"github.com/kz/proclc/pkg/ast"
	"github.com/kz/proclc/pkg/isa"
)

// loadAddress lowers ref to the sequence of instructions that leaves the
// *effective* memory address it denotes in primary, ready for a
// subsequent LOAD/STORE through that register. It is the one place that
// understands pointer indirection, so every other lowering routine can
// treat a Ref uniformly regardless of whether it names a plain scalar, a
// local array cell, or something reached through a pass-by-reference
// parameter (spec.md §4.3).
//
// The accumulator (register a) is always used as scratch space here,
// mirroring the secondary_reg convention of the original generator.
func (g *Generator) loadAddress(ref ast.Ref, primary isa.Register) {
	if !ref.IsArray {
		g.loadScalarAddress(ref.Name, primary)
		return
	}

	switch idx := ref.Index.(type) {
	case *ast.NumberLit:
		g.loadArrayLiteralIndex(ref.Name, idx.Val, primary)
	case *ast.LoadRef:
		if !g.memory.IsInitialized(idx.Ref.Name) {
			g.uninitializedUse(idx.Ref.Name)
		}
		g.loadArrayVariableIndex(ref.Name, idx.Ref.Name, primary)
	default:
		g.errf("array index must be a literal or a variable")
	}
}

// loadScalarAddress handles a plain (non-array) reference: either a local
// scalar, whose cell address is loaded directly, or a scalar pointer
// parameter, which needs one extra LOAD/PUT to forward through the
// pointer cell to the address it was bound to at call time.
func (g *Generator) loadScalarAddress(name string, primary isa.Register) {
	addr, err := g.memory.ScalarAddress(name)
	if err != nil {
		g.errf("%v", err)
		return
	}
	g.genNumber(addr, primary)

	isPtr, err := g.memory.IsScalarPointer(name)
	if err != nil {
		g.errf("%v", err)
		return
	}
	if isPtr {
		g.emitReg(isa.LOAD, primary)
		g.emitReg(isa.PUT, primary)
	}
}

// loadArrayLiteralIndex handles array[K] for a compile-time-constant K,
// against either a genuine local array or an array pointer parameter.
func (g *Generator) loadArrayLiteralIndex(name string, index int, primary isa.Register) {
	isArrPtr, err := g.memory.IsArrayPointer(name)
	if err != nil {
		g.errf("%v", err)
		return
	}

	if isArrPtr {
		ptrCell, err := g.memory.ScalarAddress(name)
		if err != nil {
			g.errf("%v", err)
			return
		}
		g.genNumber(ptrCell, primary)
		g.emitReg(isa.LOAD, primary) // a = forwarded base address
		g.genNumber(index, primary)
		g.emitReg(isa.ADD, primary) // a = base + index
		g.emitReg(isa.PUT, primary)
		return
	}

	cell, err := g.memory.ArrayCell(name, index)
	if err != nil {
		g.errf("%v", err)
		return
	}
	g.genNumber(cell, primary)
}

// loadArrayVariableIndex handles array[idxName] where the index is read
// from another variable at run time, against either a genuine local
// array or an array pointer parameter, and where the index variable
// itself may in turn be a scalar pointer parameter.
func (g *Generator) loadArrayVariableIndex(name, idxName string, primary isa.Register) {
	isArrPtr, err := g.memory.IsArrayPointer(name)
	if err != nil {
		g.errf("%v", err)
		return
	}
	isIdxPtr, err := g.memory.IsScalarPointer(idxName)
	if err != nil {
		g.errf("%v", err)
		return
	}
	idxAddr, err := g.memory.ScalarAddress(idxName)
	if err != nil {
		g.errf("%v", err)
		return
	}

	if isArrPtr {
		ptrCell, err := g.memory.ScalarAddress(name)
		if err != nil {
			g.errf("%v", err)
			return
		}
		g.genNumber(ptrCell, primary)
		g.emitReg(isa.LOAD, primary) // a = forwarded base address
		g.emitReg(isa.PUT, primary)  // primary = base address

		g.genNumber(idxAddr, isa.A)
		g.emitReg(isa.LOAD, isa.A)
		if isIdxPtr {
			g.emitReg(isa.LOAD, isa.A) // second hop: index var forwards too
		}
		g.emitReg(isa.ADD, primary)
		g.emitReg(isa.PUT, primary)
		return
	}

	base, err := g.memory.ArrayCell(name, 0)
	if err != nil {
		g.errf("%v", err)
		return
	}
	g.genNumber(idxAddr, isa.A)
	g.emitReg(isa.LOAD, isa.A)
	if isIdxPtr {
		g.emitReg(isa.LOAD, isa.A)
	}
	g.genNumber(base, primary)
	g.emitReg(isa.ADD, primary)
	g.emitReg(isa.PUT, primary)
}
