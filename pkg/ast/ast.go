// Package ast defines the abstract syntax tree produced by pkg/parser and
// consumed by pkg/codegen.
package ast

// Node is the base interface implemented by every AST node.
type Node interface {
	Line() int
}

// Program is the root of the tree: a list of procedure definitions
// followed by the main block.
type Program struct {
	Procedures []*ProcDecl
	Main       *Block
}

// ProcDecl is a single procedure definition.
type ProcDecl struct {
	Name    string
	Params  []ParamDecl
	Decls   []Declaration
	Body    []Command
	LineNum int
}

func (p *ProcDecl) Line() int { return p.LineNum }

// ParamKind distinguishes scalar and array procedure parameters.
type ParamKind int

const (
	ParamScalar ParamKind = iota
	ParamArray
)

// ParamDecl is one formal parameter in a procedure head.
type ParamDecl struct {
	Kind ParamKind
	Name string
}

// Block is the declarations+commands pair that makes up a procedure body
// or the main program.
type Block struct {
	Decls []Declaration
	Body  []Command
}

// Declaration is a local variable or array declaration.
type Declaration interface {
	Node
	declNode()
}

// ScalarDecl declares a single scalar cell.
type ScalarDecl struct {
	Name    string
	LineNum int
}

func (d *ScalarDecl) Line() int { return d.LineNum }
func (d *ScalarDecl) declNode() {}

// ArrayDecl declares a fixed-size array.
type ArrayDecl struct {
	Name    string
	Size    int
	LineNum int
}

func (d *ArrayDecl) Line() int { return d.LineNum }
func (d *ArrayDecl) declNode() {}

// Ref is a reference to a storage location: a plain scalar, an array
// element addressed by a literal index, or an array element addressed by
// a scalar-valued index.
type Ref struct {
	Name    string
	IsArray bool
	// Index is nil for a plain scalar reference.
	Index Value
}

// Value is an atom: either a numeric literal or a load of a Ref.
type Value interface {
	Node
	valueNode()
}

// NumberLit is an integer literal atom.
type NumberLit struct {
	Val     int
	LineNum int
}

func (v *NumberLit) Line() int  { return v.LineNum }
func (v *NumberLit) valueNode() {}

// LoadRef is an atom that reads a storage location.
type LoadRef struct {
	Ref     Ref
	LineNum int
}

func (v *LoadRef) Line() int  { return v.LineNum }
func (v *LoadRef) valueNode() {}

// BinOp names an arithmetic or relational operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpGt
	OpLt
	OpGeq
	OpLeq
)

// Expression is an arithmetic expression: a single Value, or a BinOp
// applied to two Values.
type Expression struct {
	// IsBinary is true for a binary expression; otherwise Left alone is the
	// whole expression.
	IsBinary bool
	Op       BinOp
	Left     Value
	Right    Value
	LineNum  int
}

func (e *Expression) Line() int { return e.LineNum }

// Condition is a relational expression guarding if/while/repeat.
type Condition struct {
	Op      BinOp
	Left    Value
	Right   Value
	LineNum int
}

func (c *Condition) Line() int { return c.LineNum }

// Command is a statement.
type Command interface {
	Node
	cmdNode()
}

// Assign is `lhs := expr;`.
type Assign struct {
	LHS     Ref
	Expr    *Expression
	LineNum int
}

func (c *Assign) Line() int { return c.LineNum }
func (c *Assign) cmdNode()  {}

// Read is `read lhs;`.
type Read struct {
	LHS     Ref
	LineNum int
}

func (c *Read) Line() int { return c.LineNum }
func (c *Read) cmdNode()  {}

// Write is `write value;`.
type Write struct {
	Value   Value
	LineNum int
}

func (c *Write) Line() int { return c.LineNum }
func (c *Write) cmdNode()  {}

// IfElse is `if cond then thenCmds [else elseCmds] endif`.
type IfElse struct {
	Cond    *Condition
	Then    []Command
	Else    []Command
	LineNum int
}

func (c *IfElse) Line() int { return c.LineNum }
func (c *IfElse) cmdNode()  {}

// While is `while cond do body endwhile`.
type While struct {
	Cond    *Condition
	Body    []Command
	LineNum int
}

func (c *While) Line() int { return c.LineNum }
func (c *While) cmdNode()  {}

// Repeat is `repeat body until cond;`.
type Repeat struct {
	Cond    *Condition
	Body    []Command
	LineNum int
}

func (c *Repeat) Line() int { return c.LineNum }
func (c *Repeat) cmdNode()  {}

// Call is `name(arg1, arg2, ...);`. Every argument is a bare name — the
// grammar has no nested expressions in call position.
type Call struct {
	Name    string
	Args    []string
	LineNum int
}

func (c *Call) Line() int { return c.LineNum }
func (c *Call) cmdNode()  {}
