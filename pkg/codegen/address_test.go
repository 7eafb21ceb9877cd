package codegen

import (
	"testing"

	"github.com/kz/proclc/pkg/ast"
	"github.com/kz/proclc/pkg/diagnostics"
	"github.com/kz/proclc/pkg/isa"
	"github.com/kz/proclc/pkg/symtab"
	"github.com/kz/proclc/pkg/vm"
)

func newTestGenerator() (*Generator, *diagnostics.Bag) {
	diags := diagnostics.New()
	g := New(diags)
	g.memory = symtab.New(0)
	return g, diags
}

// runAddress lowers ref, STOREs a sentinel through the resulting address,
// then LOADs it back through a freshly computed address to confirm both
// paths agree on the same memory cell.
func runAddress(t *testing.T, g *Generator, ref ast.Ref, sentinel int) int {
	t.Helper()
	g.loadAddress(ref, isa.B)
	g.genNumber(sentinel, isa.C)
	g.emitReg(isa.GET, isa.C)
	g.emitReg(isa.STORE, isa.B)

	g.loadAddress(ref, isa.D)
	g.emitReg(isa.LOAD, isa.D)
	g.emitReg(isa.PUT, isa.C)
	g.emitBare(isa.HALT)

	m := vm.New(g.Code)
	if err := m.Run(); err != nil {
		t.Fatalf("vm run: %v", err)
	}
	return m.Reg(isa.C)
}

func TestLoadAddressPlainScalar(t *testing.T) {
	g, diags := newTestGenerator()
	g.memory.AddScalar("x")
	got := runAddress(t, g, ast.Ref{Name: "x"}, 42)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	if got != 42 {
		t.Errorf("x round-trip = %d, want 42", got)
	}
}

func TestLoadAddressArrayLiteralIndex(t *testing.T) {
	g, diags := newTestGenerator()
	g.memory.AddArray("tab", 10)
	ref := ast.Ref{Name: "tab", IsArray: true, Index: &ast.NumberLit{Val: 3}}
	got := runAddress(t, g, ref, 7)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	if got != 7 {
		t.Errorf("tab[3] round-trip = %d, want 7", got)
	}
}

func TestLoadAddressArrayVariableIndex(t *testing.T) {
	g, diags := newTestGenerator()
	g.memory.AddArray("tab", 10)
	g.memory.AddScalar("i")
	g.memory.MarkInitialized("i")

	// i := 4
	idxAddr, _ := g.memory.ScalarAddress("i")
	g.genNumber(4, isa.A)
	g.genNumber(idxAddr, isa.B)
	g.emitReg(isa.STORE, isa.B)

	ref := ast.Ref{Name: "tab", IsArray: true, Index: &ast.LoadRef{Ref: ast.Ref{Name: "i"}}}
	got := runAddress(t, g, ref, 99)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	if got != 99 {
		t.Errorf("tab[i] round-trip = %d, want 99", got)
	}
}

func TestLoadAddressScalarPointerIndirection(t *testing.T) {
	g, diags := newTestGenerator()
	g.memory.AddScalar("target")
	g.memory.AddPointer("p", symtab.KindScalar)

	// p's forwarded address is target's address
	targetAddr, _ := g.memory.ScalarAddress("target")
	ptrAddr, _ := g.memory.ScalarAddress("p")
	g.genNumber(targetAddr, isa.A)
	g.genNumber(ptrAddr, isa.B)
	g.emitReg(isa.STORE, isa.B)

	got := runAddress(t, g, ast.Ref{Name: "p"}, 55)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	if got != 55 {
		t.Errorf("*p round-trip = %d, want 55", got)
	}
}

func TestLoadAddressUninitializedIndexWarnsInLoop(t *testing.T) {
	g, diags := newTestGenerator()
	g.memory.AddArray("tab", 5)
	g.memory.AddScalar("i")
	g.loopDepth = 1

	g.loadAddress(ast.Ref{Name: "tab", IsArray: true, Index: &ast.LoadRef{Ref: ast.Ref{Name: "i"}}}, isa.B)

	if diags.HasErrors() {
		t.Fatalf("expected a warning, not a hard error, inside a loop")
	}
	found := false
	for _, d := range diags.All() {
		if d.Severity == diagnostics.SevWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an uninitialized-index warning, got %v", diags.All())
	}
}

func TestLoadAddressUninitializedIndexErrorsAtTopLevel(t *testing.T) {
	g, diags := newTestGenerator()
	g.memory.AddArray("tab", 5)
	g.memory.AddScalar("i")

	g.loadAddress(ast.Ref{Name: "tab", IsArray: true, Index: &ast.LoadRef{Ref: ast.Ref{Name: "i"}}}, isa.B)

	if !diags.HasErrors() {
		t.Errorf("expected a hard error outside any loop")
	}
}
