package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/kz/proclc/pkg/isa"
	"github.com/kz/proclc/pkg/vm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	rawMode  bool
	maxSteps int
)

var rootCmd = &cobra.Command{
	Use:   "proclvm",
	Short: "Run or disassemble a compiled instruction stream",
}

var runCmd = &cobra.Command{
	Use:   "run [program]",
	Short: "Execute a compiled program against stdin/stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProgram(args[0])
	},
}

var disasmCmd = &cobra.Command{
	Use:   "disasm [program]",
	Short: "Print a numbered listing of a compiled program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return disasmProgram(args[0])
	},
}

func init() {
	runCmd.Flags().BoolVar(&rawMode, "raw", false, "put the terminal in raw mode for the duration of execution, for interactive READ-heavy programs")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", vm.DefaultMaxSteps, "fault instead of looping forever past this many executed instructions")

	rootCmd.AddCommand(runCmd, disasmCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadProgram(path string) ([]isa.Instruction, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	code, err := isa.ParseProgram(string(text))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return code, nil
}

func runProgram(path string) error {
	code, err := loadProgram(path)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	if rawMode && term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)
	}

	m := vm.New(code)
	m.MaxSteps = maxSteps
	if err := m.Run(); err != nil {
		return fmt.Errorf("execution fault: %w", err)
	}
	return nil
}

// isBranch reports whether ins carries a statically known jump target.
// JUMPR's target lives in a register and is not known until runtime, so
// it is never labeled.
func isBranch(ins isa.Instruction) bool {
	switch ins.Op {
	case isa.JUMP, isa.JPOS, isa.JZERO:
		return true
	default:
		return false
	}
}

// branchLabels finds every instruction index targeted by a jump and
// assigns it a stable label number, in ascending target order — the same
// two-pass approach as findBranchTargets in chriskillpack-bbcdisasm:
// locate targets first, then number them, before the annotated listing
// is ever printed.
func branchLabels(code []isa.Instruction) map[int]int {
	seen := make(map[int]bool)
	var targets []int
	for _, ins := range code {
		if isBranch(ins) && !seen[ins.Target] {
			seen[ins.Target] = true
			targets = append(targets, ins.Target)
		}
	}
	sort.Ints(targets)

	labels := make(map[int]int, len(targets))
	for i, t := range targets {
		labels[t] = i
	}
	return labels
}

func disasmProgram(path string) error {
	code, err := loadProgram(path)
	if err != nil {
		return err
	}
	labels := branchLabels(code)
	for i, ins := range code {
		if label, ok := labels[i]; ok {
			fmt.Printf("label@%d:\n", label)
		}
		line := fmt.Sprintf("%4d  %s", i, ins.String())
		if isBranch(ins) {
			line += fmt.Sprintf(" -> label@%d", labels[ins.Target])
		}
		fmt.Println(line)
	}
	return nil
}
