// Package symtab implements the per-scope memory table: the mapping from
// a declared name to its address and kind (scalar, array, or pointer).
package symtab

import "fmt"

// Kind identifies what a name is bound to.
type Kind int

const (
	KindScalar Kind = iota
	KindArray
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	default:
		return "?"
	}
}

// Symbol is the tagged union of the three kinds a name can resolve to.
// Exhaustive kind-mismatch checks go through Kind rather than a type
// switch on the concrete struct, matching spec.md §3's "tagged variant".
type Symbol struct {
	Kind Kind
	Name string

	// Scalar
	Address     int
	Initialized bool

	// Array
	Size int // Address is the base cell for arrays too.

	// Pointer
	PointeeKind Kind // KindScalar or KindArray — what the pointer forwards to.
}

// Table is an ordered memory table for one scope (a procedure body or the
// main block). Addresses are allocated densely starting at Offset.
type Table struct {
	Offset  int
	names   []string
	symbols map[string]*Symbol
}

// New creates a Table whose first allocation lands at startOffset.
func New(startOffset int) *Table {
	return &Table{Offset: startOffset, symbols: make(map[string]*Symbol)}
}

// AddScalar declares a scalar at the current offset, advancing it by one.
func (t *Table) AddScalar(name string) error {
	if _, exists := t.symbols[name]; exists {
		return fmt.Errorf("variable %s already declared", name)
	}
	t.define(name, &Symbol{Kind: KindScalar, Name: name, Address: t.Offset})
	t.Offset++
	return nil
}

// AddArray declares an array of the given size at the current offset,
// advancing it by size. A zero-size array is rejected.
func (t *Table) AddArray(name string, size int) error {
	if _, exists := t.symbols[name]; exists {
		return fmt.Errorf("array %s already declared", name)
	}
	if size == 0 {
		return fmt.Errorf("array %s cannot be declared with size 0", name)
	}
	t.define(name, &Symbol{Kind: KindArray, Name: name, Address: t.Offset, Size: size})
	t.Offset += size
	return nil
}

// AddPointer declares a one-cell pointer parameter forwarding to a
// pointee of the given kind (KindScalar or KindArray).
func (t *Table) AddPointer(name string, pointeeKind Kind) error {
	if _, exists := t.symbols[name]; exists {
		return fmt.Errorf("pointer %s already declared", name)
	}
	t.define(name, &Symbol{Kind: KindPointer, Name: name, Address: t.Offset, PointeeKind: pointeeKind})
	t.Offset++
	return nil
}

func (t *Table) define(name string, sym *Symbol) {
	t.symbols[name] = sym
	t.names = append(t.names, name)
}

// Lookup returns the symbol bound to name, or nil if undeclared.
func (t *Table) Lookup(name string) *Symbol {
	return t.symbols[name]
}

// KindOf returns the kind of name, failing if it is undeclared.
func (t *Table) KindOf(name string) (Kind, error) {
	sym := t.Lookup(name)
	if sym == nil {
		return 0, fmt.Errorf("%s is undeclared", name)
	}
	return sym.Kind, nil
}

// PointerKind returns the pointee kind of a pointer symbol, failing if
// name is not a pointer.
func (t *Table) PointerKind(name string) (Kind, error) {
	sym := t.Lookup(name)
	if sym == nil {
		return 0, fmt.Errorf("pointer %s is undeclared", name)
	}
	if sym.Kind != KindPointer {
		return 0, fmt.Errorf("%s is not a pointer", name)
	}
	return sym.PointeeKind, nil
}

// ScalarAddress returns the cell holding the value of a scalar, or the
// cell holding the forwarded address for a pointer. It rejects arrays and
// undeclared names.
func (t *Table) ScalarAddress(name string) (int, error) {
	sym := t.Lookup(name)
	if sym == nil {
		return 0, fmt.Errorf("variable %s is undeclared", name)
	}
	if sym.Kind == KindArray {
		return 0, fmt.Errorf("%s is an array", name)
	}
	return sym.Address, nil
}

// ArrayCell returns the address of element index of a local array,
// rejecting out-of-range literal indices. It is only valid for genuine
// local arrays, not array-pointer parameters (those are resolved through
// one level of indirection by the address loader instead).
func (t *Table) ArrayCell(name string, index int) (int, error) {
	sym := t.Lookup(name)
	if sym == nil {
		return 0, fmt.Errorf("array %s is undeclared", name)
	}
	if sym.Kind != KindArray {
		return 0, fmt.Errorf("%s is not an array", name)
	}
	if index < 0 || index >= sym.Size {
		return 0, fmt.Errorf("index %d is out of bounds for array %s", index, name)
	}
	return sym.Address + index, nil
}

// MarkInitialized flags a scalar as having been written. It is a no-op
// for non-scalars (arrays and pointers carry no initialization state).
func (t *Table) MarkInitialized(name string) {
	if sym := t.Lookup(name); sym != nil && sym.Kind == KindScalar {
		sym.Initialized = true
	}
}

// IsScalarPointer reports whether name is a pointer to a scalar. It
// fails if name is undeclared, and also fails — rather than simply
// returning false — if name is a pointer to an array, since that is a
// kind-mismatch the caller should surface distinctly from "not a
// pointer at all".
func (t *Table) IsScalarPointer(name string) (bool, error) {
	sym := t.Lookup(name)
	if sym == nil {
		return false, fmt.Errorf("variable %s is undeclared", name)
	}
	if sym.Kind != KindPointer {
		return false, nil
	}
	if sym.PointeeKind != KindScalar {
		return false, fmt.Errorf("pointer %s points to an array", name)
	}
	return true, nil
}

// IsArrayPointer reports whether name is a pointer to an array, with the
// same undeclared/kind-mismatch-error behavior as IsScalarPointer.
func (t *Table) IsArrayPointer(name string) (bool, error) {
	sym := t.Lookup(name)
	if sym == nil {
		return false, fmt.Errorf("array %s is undeclared", name)
	}
	if sym.Kind != KindPointer {
		return false, nil
	}
	if sym.PointeeKind != KindArray {
		return false, fmt.Errorf("pointer %s points to a variable", name)
	}
	return true, nil
}

// IsInitialized reports whether a scalar has been written. Non-scalars
// and undeclared names report true so callers only need to special-case
// the scalar-and-uninitialized condition.
func (t *Table) IsInitialized(name string) bool {
	sym := t.Lookup(name)
	if sym == nil || sym.Kind != KindScalar {
		return true
	}
	return sym.Initialized
}
