package parser

import (
	"testing"

	"github.com/kz/proclc/pkg/ast"
)

func TestParseMinimalProgram(t *testing.T) {
	prog, err := Parse(`PROGRAM IS
IN
    WRITE 1;
END`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Procedures) != 0 {
		t.Fatalf("expected no procedures, got %d", len(prog.Procedures))
	}
	if len(prog.Main.Body) != 1 {
		t.Fatalf("expected one command, got %d", len(prog.Main.Body))
	}
	if _, ok := prog.Main.Body[0].(*ast.Write); !ok {
		t.Fatalf("expected *ast.Write, got %T", prog.Main.Body[0])
	}
}

func TestParseDeclarationsScalarAndArray(t *testing.T) {
	prog, err := Parse(`PROGRAM IS
    x, tab[10]
IN
    x := 1;
END`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Main.Decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(prog.Main.Decls))
	}
	if _, ok := prog.Main.Decls[0].(*ast.ScalarDecl); !ok {
		t.Errorf("expected *ast.ScalarDecl for x, got %T", prog.Main.Decls[0])
	}
	arr, ok := prog.Main.Decls[1].(*ast.ArrayDecl)
	if !ok {
		t.Fatalf("expected *ast.ArrayDecl for tab, got %T", prog.Main.Decls[1])
	}
	if arr.Size != 10 {
		t.Errorf("tab size = %d, want 10", arr.Size)
	}
}

func TestParseProcedureWithScalarAndArrayParams(t *testing.T) {
	prog, err := Parse(`PROCEDURE swap(a, T b) IS
IN
    a := b[0];
END
PROGRAM IS
    x, tab[5]
IN
    swap(x, tab);
END`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Procedures) != 1 {
		t.Fatalf("expected 1 procedure, got %d", len(prog.Procedures))
	}
	proc := prog.Procedures[0]
	if proc.Name != "swap" {
		t.Errorf("procedure name = %q, want swap", proc.Name)
	}
	if len(proc.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(proc.Params))
	}
	if proc.Params[0].Kind != ast.ParamScalar {
		t.Errorf("param 0 kind = %v, want ParamScalar", proc.Params[0].Kind)
	}
	if proc.Params[1].Kind != ast.ParamArray {
		t.Errorf("param 1 kind = %v, want ParamArray", proc.Params[1].Kind)
	}

	call, ok := prog.Main.Body[0].(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call, got %T", prog.Main.Body[0])
	}
	if call.Name != "swap" || len(call.Args) != 2 {
		t.Errorf("call = %+v, want swap(x, tab)", call)
	}
}

func TestParseIfElseAndWhileAndRepeat(t *testing.T) {
	prog, err := Parse(`PROGRAM IS
    x
IN
    IF x > 0 THEN
        WRITE x;
    ELSE
        x := 1;
    ENDIF
    WHILE x < 10 DO
        x := x + 1;
    ENDWHILE
    REPEAT
        x := x - 1;
    UNTIL x = 0;
END`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Main.Body) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(prog.Main.Body))
	}
	ifElse, ok := prog.Main.Body[0].(*ast.IfElse)
	if !ok {
		t.Fatalf("expected *ast.IfElse, got %T", prog.Main.Body[0])
	}
	if ifElse.Cond.Op != ast.OpGt {
		t.Errorf("if condition op = %v, want OpGt", ifElse.Cond.Op)
	}
	if len(ifElse.Then) != 1 || len(ifElse.Else) != 1 {
		t.Errorf("expected one command in each branch, got then=%d else=%d", len(ifElse.Then), len(ifElse.Else))
	}

	while, ok := prog.Main.Body[1].(*ast.While)
	if !ok {
		t.Fatalf("expected *ast.While, got %T", prog.Main.Body[1])
	}
	if while.Cond.Op != ast.OpLt {
		t.Errorf("while condition op = %v, want OpLt", while.Cond.Op)
	}

	repeat, ok := prog.Main.Body[2].(*ast.Repeat)
	if !ok {
		t.Fatalf("expected *ast.Repeat, got %T", prog.Main.Body[2])
	}
	if repeat.Cond.Op != ast.OpEq {
		t.Errorf("repeat condition op = %v, want OpEq", repeat.Cond.Op)
	}
}

func TestParseArrayIndexLiteralAndVariable(t *testing.T) {
	prog, err := Parse(`PROGRAM IS
    tab[10], i
IN
    tab[0] := 1;
    tab[i] := 2;
END`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	first := prog.Main.Body[0].(*ast.Assign)
	if _, ok := first.LHS.Index.(*ast.NumberLit); !ok {
		t.Errorf("expected literal index, got %T", first.LHS.Index)
	}
	second := prog.Main.Body[1].(*ast.Assign)
	if _, ok := second.LHS.Index.(*ast.LoadRef); !ok {
		t.Errorf("expected variable index, got %T", second.LHS.Index)
	}
}

func TestParseAllRelationalOperators(t *testing.T) {
	cases := []struct {
		src  string
		want ast.BinOp
	}{
		{"x = y", ast.OpEq},
		{"x != y", ast.OpNeq},
		{"x > y", ast.OpGt},
		{"x < y", ast.OpLt},
		{"x >= y", ast.OpGeq},
		{"x <= y", ast.OpLeq},
	}
	for _, c := range cases {
		prog, err := Parse(`PROGRAM IS
    x, y
IN
    WHILE ` + c.src + ` DO
        x := x + 1;
    ENDWHILE
END`)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.src, err)
		}
		while := prog.Main.Body[0].(*ast.While)
		if while.Cond.Op != c.want {
			t.Errorf("Parse(%q): op = %v, want %v", c.src, while.Cond.Op, c.want)
		}
	}
}

func TestParseAllArithmeticOperators(t *testing.T) {
	cases := []struct {
		src  string
		want ast.BinOp
	}{
		{"x + y", ast.OpAdd},
		{"x - y", ast.OpSub},
		{"x * y", ast.OpMul},
		{"x / y", ast.OpDiv},
		{"x % y", ast.OpMod},
	}
	for _, c := range cases {
		prog, err := Parse(`PROGRAM IS
    x, y
IN
    x := ` + c.src + `;
END`)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.src, err)
		}
		assign := prog.Main.Body[0].(*ast.Assign)
		if !assign.Expr.IsBinary || assign.Expr.Op != c.want {
			t.Errorf("Parse(%q): op = %v, want %v", c.src, assign.Expr.Op, c.want)
		}
	}
}

func TestParseRejectsMissingEnd(t *testing.T) {
	_, err := Parse(`PROGRAM IS
IN
    WRITE 1;`)
	if err == nil {
		t.Error("expected an error for a missing END")
	}
}

func TestParseRejectsTrailingInput(t *testing.T) {
	_, err := Parse(`PROGRAM IS
IN
    WRITE 1;
END
garbage`)
	if err == nil {
		t.Error("expected an error for trailing input after END")
	}
}

func TestParseRejectsConditionWithoutOperator(t *testing.T) {
	_, err := Parse(`PROGRAM IS
    x
IN
    IF x THEN
        WRITE x;
    ENDIF
END`)
	if err == nil {
		t.Error("expected an error: a bare value is not a condition")
	}
}

func TestParseRejectsBadDeclaration(t *testing.T) {
	_, err := Parse(`PROGRAM IS
    123
IN
    WRITE 1;
END`)
	if err == nil {
		t.Error("expected an error for a numeric declaration name")
	}
}
