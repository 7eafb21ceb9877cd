// Package vm is a small interpreter for the target instruction set
// defined in pkg/isa. No example in the reference corpus emulates this
// bespoke ISA (the pack's CPU emulators are all real-world chips: Z80,
// 6502, 6510...), so this interpreter is hand-rolled, following the
// register-map-plus-program-counter-loop shape of the teacher's
// pkg/mir.Interpreter and bounded by a max-iteration guard the same way.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/kz/proclc/pkg/isa"
)

// DefaultMaxSteps bounds execution so a miscompiled infinite loop is
// reported rather than hung on forever.
const DefaultMaxSteps = 10_000_000

// Machine is one execution of a program against a linear memory and an
// eight-register file.
type Machine struct {
	code []isa.Instruction
	mem  map[int]int
	reg  map[isa.Register]int
	pc   int

	in  *bufio.Reader
	out io.Writer

	MaxSteps int
	steps    int
	halted   bool
}

// New creates a Machine over code, reading READ input from os.Stdin and
// writing WRITE output to os.Stdout.
func New(code []isa.Instruction) *Machine {
	return &Machine{
		code:     code,
		mem:      make(map[int]int),
		reg:      make(map[isa.Register]int),
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		MaxSteps: DefaultMaxSteps,
	}
}

// NewWithIO creates a Machine reading from in and writing to out, for
// scripted tests that don't want to touch the process's real stdio.
func NewWithIO(code []isa.Instruction, in io.Reader, out io.Writer) *Machine {
	return &Machine{
		code:     code,
		mem:      make(map[int]int),
		reg:      make(map[isa.Register]int),
		in:       bufio.NewReader(in),
		out:      out,
		MaxSteps: DefaultMaxSteps,
	}
}

// Reg returns the current value of register r.
func (m *Machine) Reg(r isa.Register) int { return m.reg[r] }

// SetReg sets register r, for tests that want to seed state before
// executing a snippet.
func (m *Machine) SetReg(r isa.Register, v int) { m.reg[r] = v }

// Mem returns the current value of memory cell addr.
func (m *Machine) Mem(addr int) int { return m.mem[addr] }

// SetMem sets memory cell addr, for tests.
func (m *Machine) SetMem(addr, v int) { m.mem[addr] = v }

// Steps returns how many instructions have executed so far.
func (m *Machine) Steps() int { return m.steps }

// Run executes from the current pc until HALT, a step budget is
// exceeded, or a runtime fault (out-of-range jump, falling off the end
// of the program) occurs.
func (m *Machine) Run() error {
	for !m.halted {
		if m.pc < 0 || m.pc >= len(m.code) {
			return fmt.Errorf("pc %d out of range (program has %d instructions)", m.pc, len(m.code))
		}
		if m.steps >= m.MaxSteps {
			return fmt.Errorf("exceeded maximum step count (%d)", m.MaxSteps)
		}
		m.steps++
		if err := m.step(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) step() error {
	ins := m.code[m.pc]
	next := m.pc + 1

	switch ins.Op {
	case isa.GET:
		m.reg[isa.A] = m.reg[ins.Reg]
	case isa.PUT:
		m.reg[ins.Reg] = m.reg[isa.A]
	case isa.LOAD:
		m.reg[isa.A] = m.mem[m.reg[ins.Reg]]
	case isa.STORE:
		m.mem[m.reg[ins.Reg]] = m.reg[isa.A]
	case isa.ADD:
		m.reg[isa.A] = m.reg[isa.A] + m.reg[ins.Reg]
	case isa.SUB:
		m.reg[isa.A] = saturatingSub(m.reg[isa.A], m.reg[ins.Reg])
	case isa.RST:
		m.reg[ins.Reg] = 0
	case isa.INC:
		m.reg[ins.Reg]++
	case isa.DEC:
		m.reg[ins.Reg] = saturatingSub(m.reg[ins.Reg], 1)
	case isa.SHL:
		m.reg[ins.Reg] <<= 1
	case isa.SHR:
		m.reg[ins.Reg] >>= 1
	case isa.READ:
		n, err := m.readInt()
		if err != nil {
			return fmt.Errorf("READ at pc %d: %w", m.pc, err)
		}
		m.reg[isa.A] = n
	case isa.WRITE:
		fmt.Fprintf(m.out, "%d\n", m.reg[isa.A])
	case isa.JUMP:
		next = ins.Target
	case isa.JPOS:
		if m.reg[isa.A] > 0 {
			next = ins.Target
		}
	case isa.JZERO:
		if m.reg[isa.A] == 0 {
			next = ins.Target
		}
	case isa.JUMPR:
		next = m.reg[ins.Reg]
	case isa.STRK:
		m.reg[ins.Reg] = m.pc
	case isa.HALT:
		m.halted = true
	default:
		return fmt.Errorf("unknown opcode %v at pc %d", ins.Op, m.pc)
	}

	m.pc = next
	return nil
}

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}

func (m *Machine) readInt() (int, error) {
	var n int
	// Consume whitespace/newlines between values so one WRITE/READ per
	// line in a test script just works.
	for {
		r, _, err := m.in.ReadRune()
		if err != nil {
			return 0, err
		}
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		m.in.UnreadRune()
		break
	}
	neg := false
	first := true
	for {
		r, _, err := m.in.ReadRune()
		if err != nil {
			if err == io.EOF && !first {
				break
			}
			return 0, err
		}
		if r == '-' && first {
			neg = true
			first = false
			continue
		}
		if r < '0' || r > '9' {
			m.in.UnreadRune()
			break
		}
		n = n*10 + int(r-'0')
		first = false
	}
	if neg {
		n = -n
	}
	return n, nil
}
