package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kz/proclc/pkg/isa"
)

func writeListing(t *testing.T, code []isa.Instruction) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.out")
	if err := os.WriteFile(path, []byte(isa.Render(code)), 0o644); err != nil {
		t.Fatalf("writing listing: %v", err)
	}
	return path
}

func TestLoadProgramRoundTrips(t *testing.T) {
	code := []isa.Instruction{
		isa.RegInstr(isa.RST, isa.A),
		isa.RegInstr(isa.INC, isa.A),
		isa.Bare(isa.WRITE),
		isa.Bare(isa.HALT),
	}
	path := writeListing(t, code)

	got, err := loadProgram(path)
	if err != nil {
		t.Fatalf("loadProgram: %v", err)
	}
	if len(got) != len(code) {
		t.Fatalf("got %d instructions, want %d", len(got), len(code))
	}
	for i := range code {
		if got[i] != code[i] {
			t.Errorf("instruction %d: got %+v, want %+v", i, got[i], code[i])
		}
	}
}

func TestLoadProgramRejectsMalformedListing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.out")
	if err := os.WriteFile(path, []byte("NOPE a\n"), 0o644); err != nil {
		t.Fatalf("writing listing: %v", err)
	}
	if _, err := loadProgram(path); err == nil {
		t.Error("expected an error for an unknown mnemonic")
	}
}

func TestLoadProgramRejectsMissingFile(t *testing.T) {
	if _, err := loadProgram(filepath.Join(t.TempDir(), "missing.out")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRunProgramExecutesToHalt(t *testing.T) {
	code := []isa.Instruction{
		isa.RegInstr(isa.RST, isa.A),
		isa.RegInstr(isa.INC, isa.A),
		isa.RegInstr(isa.INC, isa.A),
		isa.Bare(isa.WRITE),
		isa.Bare(isa.HALT),
	}
	path := writeListing(t, code)

	rawMode = false
	maxSteps = 1000
	if err := runProgram(path); err != nil {
		t.Fatalf("runProgram: %v", err)
	}
}

func TestRunProgramFaultsOnExceededStepBudget(t *testing.T) {
	code := []isa.Instruction{
		isa.JumpInstr(isa.JUMP, 0),
	}
	path := writeListing(t, code)

	rawMode = false
	maxSteps = 5
	if err := runProgram(path); err == nil {
		t.Error("expected a step-budget fault for an infinite loop")
	}
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	fnErr := fn()
	w.Close()
	os.Stdout = old

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	return string(out), fnErr
}

func TestDisasmProgramPrintsNumberedListing(t *testing.T) {
	code := []isa.Instruction{
		isa.RegInstr(isa.GET, isa.A),
		isa.Bare(isa.HALT),
	}
	path := writeListing(t, code)

	out, err := captureStdout(t, func() error { return disasmProgram(path) })
	if err != nil {
		t.Fatalf("disasmProgram: %v", err)
	}
	if !strings.Contains(out, "0  GET a") || !strings.Contains(out, "1  HALT") {
		t.Errorf("unexpected listing:\n%s", out)
	}
}

func TestDisasmProgramAnnotatesJumpTargets(t *testing.T) {
	// A tiny loop: 0: GET a; 1: JZERO 3; 2: JUMP 0; 3: HALT
	code := []isa.Instruction{
		isa.RegInstr(isa.GET, isa.A),
		isa.JumpInstr(isa.JZERO, 3),
		isa.JumpInstr(isa.JUMP, 0),
		isa.Bare(isa.HALT),
	}
	path := writeListing(t, code)

	out, err := captureStdout(t, func() error { return disasmProgram(path) })
	if err != nil {
		t.Fatalf("disasmProgram: %v", err)
	}

	if !strings.Contains(out, "-> label@0") {
		t.Errorf("expected a jump-target annotation for JUMP 0, got:\n%s", out)
	}
	if !strings.Contains(out, "-> label@1") {
		t.Errorf("expected a jump-target annotation for JZERO 3, got:\n%s", out)
	}
	if !strings.Contains(out, "label@0:\n") {
		t.Errorf("expected a label@0: marker before instruction 0, got:\n%s", out)
	}
	if !strings.Contains(out, "label@1:\n") {
		t.Errorf("expected a label@1: marker before instruction 3, got:\n%s", out)
	}
}

func TestDisasmProgramNeverLabelsJumprTargets(t *testing.T) {
	// JUMPR's target lives in a register, not statically known, so it
	// must never be annotated or mistaken for a labeled instruction.
	code := []isa.Instruction{
		isa.RegInstr(isa.STRK, isa.A),
		isa.RegInstr(isa.JUMPR, isa.A),
		isa.Bare(isa.HALT),
	}
	path := writeListing(t, code)

	out, err := captureStdout(t, func() error { return disasmProgram(path) })
	if err != nil {
		t.Fatalf("disasmProgram: %v", err)
	}
	if strings.Contains(out, "label@") {
		t.Errorf("expected no labels for a program with only a JUMPR, got:\n%s", out)
	}
}
