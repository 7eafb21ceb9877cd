package diagnostics

import (
	"strings"
	"testing"
)

func TestErrorSetsHasErrors(t *testing.T) {
	var buf strings.Builder
	b := NewTo(&buf)
	b.Warnf(3, "maybe uninitialized")
	if b.HasErrors() {
		t.Fatalf("a warning alone must not set HasErrors")
	}
	b.Errorf(5, "undeclared variable %s", "x")
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors after Errorf")
	}
	if len(b.All()) != 2 {
		t.Fatalf("expected 2 recorded diagnostics, got %d", len(b.All()))
	}
}

func TestErrorOrWarnfSplitsOnFatal(t *testing.T) {
	var buf strings.Builder
	b := NewTo(&buf)
	b.ErrorOrWarnf(false, 1, "x may be uninitialized")
	if b.HasErrors() {
		t.Errorf("fatal=false should record a warning, not an error")
	}
	b.ErrorOrWarnf(true, 2, "x not initialized")
	if !b.HasErrors() {
		t.Errorf("fatal=true should record an error")
	}
}

func TestSuppressWarningsDropsWarnings(t *testing.T) {
	var buf strings.Builder
	b := NewTo(&buf)
	b.SuppressWarnings(true)
	b.Warnf(1, "suppressed")
	if len(b.All()) != 0 {
		t.Errorf("expected the suppressed warning to be dropped, got %v", b.All())
	}
	b.Errorf(2, "still recorded")
	if !b.HasErrors() || len(b.All()) != 1 {
		t.Errorf("errors must never be suppressed")
	}
}

func TestDiagnosticStringFormat(t *testing.T) {
	d := Diagnostic{Severity: SevError, Line: 7, Message: "boom"}
	if got, want := d.String(), "Error: Line 7: boom"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
