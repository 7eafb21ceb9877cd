package codegen

import (
	"errors"

	"github.com/kz/proclc/pkg/ast"
	"github.com/kz/proclc/pkg/isa"
)

var (
	errDivByZero   = errors.New("division by zero in constant expression")
	errBadOperator = errors.New("not a valid arithmetic operator")
)

// genExpression lowers expr and leaves its result in register a
// (spec.md §4.4). It folds two-literal expressions at compile time,
// applies the INC/DEC/SHL/SHR peepholes for ±1/×2/÷2 against a literal,
// and otherwise falls back to the general binary case built on
// performMultiplication/performDivision.
func (g *Generator) genExpression(expr *ast.Expression) {
	if !expr.IsBinary {
		g.checkValueInitialized(expr.Left)
		g.genSingleValue(expr.Left)
		return
	}

	g.checkValueInitialized(expr.Left)
	g.checkValueInitialized(expr.Right)

	leftNum, leftIsNum := expr.Left.(*ast.NumberLit)
	rightNum, rightIsNum := expr.Right.(*ast.NumberLit)

	if leftIsNum && rightIsNum {
		result, err := foldConstants(expr.Op, leftNum.Val, rightNum.Val)
		if err != nil {
			g.errf("%v", err)
			g.genNumber(0, isa.A)
			return
		}
		g.genNumber(result, isa.A)
		return
	}

	if leftIsNum != rightIsNum {
		if g.genLiteralPeephole(expr.Op, leftIsNum, leftNum, rightNum, expr.Left, expr.Right) {
			return
		}
	}

	g.genOperandInto(expr.Left, isa.F)
	g.genOperandInto(expr.Right, isa.G)

	switch expr.Op {
	case ast.OpAdd:
		g.emitReg(isa.GET, isa.F)
		g.emitReg(isa.ADD, isa.G)
	case ast.OpSub:
		g.emitReg(isa.GET, isa.F)
		g.emitReg(isa.SUB, isa.G)
	case ast.OpMul:
		g.performMultiplication(isa.B, isa.F, isa.G)
	case ast.OpDiv:
		g.performDivision(isa.B, isa.C, isa.D, isa.F, isa.G)
		g.emitReg(isa.GET, isa.B)
	case ast.OpMod:
		g.performDivision(isa.B, isa.C, isa.D, isa.F, isa.G)
		g.emitReg(isa.GET, isa.F)
	default:
		g.errf("operator is not valid in an arithmetic expression")
	}
}

// genLiteralPeephole handles add/sub/mul/div against a literal 1 or 2,
// which collapse to a single INC/DEC/SHL/SHR against the loaded
// variable. sub and div only collapse when the variable is the left
// operand (they aren't commutative); add and mul collapse on either
// side. It reports whether it emitted anything.
func (g *Generator) genLiteralPeephole(op ast.BinOp, leftIsNum bool, leftNum, rightNum *ast.NumberLit, left, right ast.Value) bool {
	var numVal int
	var varArg ast.Value
	var varIsLeft bool
	if leftIsNum {
		numVal, varArg, varIsLeft = leftNum.Val, right, false
	} else {
		numVal, varArg, varIsLeft = rightNum.Val, left, true
	}

	if varIsLeft {
		if numVal == 1 && op == ast.OpSub {
			g.genPeepholeUnary(varArg, isa.DEC)
			return true
		}
		if numVal == 2 && op == ast.OpDiv {
			g.genPeepholeUnary(varArg, isa.SHR)
			return true
		}
	}
	if numVal == 1 && op == ast.OpAdd {
		g.genPeepholeUnary(varArg, isa.INC)
		return true
	}
	if numVal == 2 && op == ast.OpMul {
		g.genPeepholeUnary(varArg, isa.SHL)
		return true
	}
	return false
}

// genPeepholeUnary loads varArg's value then applies a single register
// op (INC/DEC/SHL/SHR) to the accumulator in place.
func (g *Generator) genPeepholeUnary(varArg ast.Value, op isa.Mnemonic) {
	lr, ok := varArg.(*ast.LoadRef)
	if !ok {
		g.errf("internal error: peephole operand is not a variable load")
		return
	}
	g.loadAddress(lr.Ref, isa.F)
	g.emitReg(isa.LOAD, isa.F)
	g.emitReg(op, isa.A)
}

// genSingleValue lowers a bare (non-binary) expression operand directly
// into the accumulator.
func (g *Generator) genSingleValue(v ast.Value) {
	switch val := v.(type) {
	case *ast.NumberLit:
		g.genNumber(val.Val, isa.A)
	case *ast.LoadRef:
		g.loadAddress(val.Ref, isa.F)
		g.emitReg(isa.LOAD, isa.F)
	default:
		g.errf("invalid expression value")
	}
}

// genOperandInto loads v's value into reg and parks it there with PUT,
// so it survives the loading of the expression's other operand into a
// different register.
func (g *Generator) genOperandInto(v ast.Value, reg isa.Register) {
	switch val := v.(type) {
	case *ast.NumberLit:
		g.genNumber(val.Val, reg)
	case *ast.LoadRef:
		g.loadAddress(val.Ref, reg)
		g.emitReg(isa.LOAD, reg)
		g.emitReg(isa.PUT, reg)
	default:
		g.errf("invalid expression operand")
	}
}

func (g *Generator) checkValueInitialized(v ast.Value) {
	lr, ok := v.(*ast.LoadRef)
	if !ok {
		return
	}
	if !g.memory.IsInitialized(lr.Ref.Name) {
		g.uninitializedUse(lr.Ref.Name)
	}
}

// foldConstants evaluates a two-literal expression at compile time,
// using the target machine's own arithmetic: subtraction saturates at
// zero rather than going negative, matching SUB's hardware behavior.
func foldConstants(op ast.BinOp, a, b int) (int, error) {
	switch op {
	case ast.OpAdd:
		return a + b, nil
	case ast.OpSub:
		if a < b {
			return 0, nil
		}
		return a - b, nil
	case ast.OpMul:
		return a * b, nil
	case ast.OpDiv:
		if b == 0 {
			return 0, errDivByZero
		}
		return a / b, nil
	case ast.OpMod:
		if b == 0 {
			return 0, errDivByZero
		}
		return a % b, nil
	default:
		return 0, errBadOperator
	}
}
