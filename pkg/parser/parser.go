// Package parser is a hand-rolled recursive-descent parser for the source
// language. It has no error recovery: the first syntax error aborts
// parsing immediately (spec Non-goals) rather than attempting to
// resynchronize and keep reporting.
package parser

import (
	"fmt"

	"github.com/kz/proclc/pkg/ast"
	"github.com/kz/proclc/pkg/lexer"
)

// Parser consumes a token stream and builds an ast.Program.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse lexes and parses a complete source text.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseProgram()
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) line() int         { return p.cur().Line }
func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if !p.at(tt) {
		return lexer.Token{}, fmt.Errorf("line %d: expected %s, got %s", p.line(), tt, p.cur().Type)
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent() (string, int, error) {
	line := p.line()
	tok, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", 0, err
	}
	return tok.Text, line, nil
}

// parseProgram := procedures PROGRAM IS [declarations] IN commands END
func (p *Parser) parseProgram() (*ast.Program, error) {
	var procs []*ast.ProcDecl
	for p.at(lexer.PROCEDURE) {
		proc, err := p.parseProcDecl()
		if err != nil {
			return nil, err
		}
		procs = append(procs, proc)
	}

	if _, err := p.expect(lexer.PROGRAM); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IS); err != nil {
		return nil, err
	}
	decls, err := p.parseOptionalDeclarations()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	body, err := p.parseCommands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END); err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, fmt.Errorf("line %d: unexpected trailing input after END", p.line())
	}

	return &ast.Program{Procedures: procs, Main: &ast.Block{Decls: decls, Body: body}}, nil
}

// parseProcDecl := PROCEDURE IDENT "(" paramDecls ")" IS [declarations] IN commands END
func (p *Parser) parseProcDecl() (*ast.ProcDecl, error) {
	headLine := p.line()
	if _, err := p.expect(lexer.PROCEDURE); err != nil {
		return nil, err
	}
	name, nameLine, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParamDecls()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IS); err != nil {
		return nil, err
	}
	decls, err := p.parseOptionalDeclarations()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	body, err := p.parseCommands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END); err != nil {
		return nil, err
	}
	_ = nameLine
	return &ast.ProcDecl{Name: name, Params: params, Decls: decls, Body: body, LineNum: headLine}, nil
}

func (p *Parser) parseParamDecls() ([]ast.ParamDecl, error) {
	var params []ast.ParamDecl
	if p.at(lexer.RPAREN) {
		return params, nil
	}
	for {
		kind := ast.ParamScalar
		if p.at(lexer.T) {
			p.advance()
			kind = ast.ParamArray
		}
		name, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.ParamDecl{Kind: kind, Name: name})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

// parseOptionalDeclarations parses zero or more comma-separated
// declarations. The grammar distinguishes "no declarations at all" (the
// IS IN form) from "at least one" purely by lookahead on IN.
func (p *Parser) parseOptionalDeclarations() ([]ast.Declaration, error) {
	if p.at(lexer.IN) {
		return nil, nil
	}
	var decls []ast.Declaration
	for {
		line := p.line()
		name, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.at(lexer.LBRACKET) {
			p.advance()
			numTok, err := p.expect(lexer.NUMBER)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			decls = append(decls, &ast.ArrayDecl{Name: name, Size: numTok.Num, LineNum: line})
		} else {
			decls = append(decls, &ast.ScalarDecl{Name: name, LineNum: line})
		}
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return decls, nil
}

func (p *Parser) parseCommands() ([]ast.Command, error) {
	var cmds []ast.Command
	for {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
		if p.isCommandStart() {
			continue
		}
		break
	}
	return cmds, nil
}

func (p *Parser) isCommandStart() bool {
	switch p.cur().Type {
	case lexer.IDENT, lexer.IF, lexer.WHILE, lexer.REPEAT, lexer.READ, lexer.WRITE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCommand() (ast.Command, error) {
	line := p.line()
	switch p.cur().Type {
	case lexer.IF:
		return p.parseIfElse()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.REPEAT:
		return p.parseRepeat()
	case lexer.READ:
		p.advance()
		ref, err := p.parseRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return &ast.Read{LHS: ref, LineNum: line}, nil
	case lexer.WRITE:
		p.advance()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return &ast.Write{Value: val, LineNum: line}, nil
	case lexer.IDENT:
		// Either an assignment (identifier GETS expr ;) or a procedure
		// call (identifier "(" args ")" ;) — disambiguated by what
		// follows the identifier/ref.
		return p.parseAssignOrCall(line)
	default:
		return nil, fmt.Errorf("line %d: unexpected token %s at start of command", line, p.cur().Type)
	}
}

func (p *Parser) parseAssignOrCall(line int) (ast.Command, error) {
	name := p.cur().Text
	// Lookahead: a bare name followed directly by "(" is a call;
	// anything else (including "[") belongs to a reference, and a
	// reference is only ever followed by ":=" in command position.
	if p.toks[p.pos+1].Type == lexer.LPAREN {
		p.advance() // name
		p.advance() // (
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return &ast.Call{Name: name, Args: args, LineNum: line}, nil
	}

	ref, err := p.parseRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.GETS); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	return &ast.Assign{LHS: ref, Expr: expr, LineNum: line}, nil
}

func (p *Parser) parseArgs() ([]string, error) {
	var args []string
	if p.at(lexer.RPAREN) {
		return args, nil
	}
	for {
		name, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		args = append(args, name)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return args, nil
}

func (p *Parser) parseIfElse() (ast.Command, error) {
	line := p.line()
	p.advance() // IF
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.THEN); err != nil {
		return nil, err
	}
	thenCmds, err := p.parseCommands()
	if err != nil {
		return nil, err
	}
	var elseCmds []ast.Command
	if p.at(lexer.ELSE) {
		p.advance()
		elseCmds, err = p.parseCommands()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.ENDIF); err != nil {
		return nil, err
	}
	return &ast.IfElse{Cond: cond, Then: thenCmds, Else: elseCmds, LineNum: line}, nil
}

func (p *Parser) parseWhile() (ast.Command, error) {
	line := p.line()
	p.advance() // WHILE
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO); err != nil {
		return nil, err
	}
	body, err := p.parseCommands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ENDWHILE); err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, LineNum: line}, nil
}

func (p *Parser) parseRepeat() (ast.Command, error) {
	line := p.line()
	p.advance() // REPEAT
	body, err := p.parseCommands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.UNTIL); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	return &ast.Repeat{Cond: cond, Body: body, LineNum: line}, nil
}

// parseRef parses an identifier reference, optionally subscripted by a
// literal number or another identifier.
func (p *Parser) parseRef() (ast.Ref, error) {
	name, line, err := p.expectIdent()
	if err != nil {
		return ast.Ref{}, err
	}
	if !p.at(lexer.LBRACKET) {
		return ast.Ref{Name: name}, nil
	}
	p.advance()
	var idx ast.Value
	if p.at(lexer.NUMBER) {
		tok := p.advance()
		idx = &ast.NumberLit{Val: tok.Num, LineNum: line}
	} else {
		idxName, idxLine, err := p.expectIdent()
		if err != nil {
			return ast.Ref{}, err
		}
		idx = &ast.LoadRef{Ref: ast.Ref{Name: idxName}, LineNum: idxLine}
	}
	if _, err := p.expect(lexer.RBRACKET); err != nil {
		return ast.Ref{}, err
	}
	return ast.Ref{Name: name, IsArray: true, Index: idx}, nil
}

func (p *Parser) parseValue() (ast.Value, error) {
	line := p.line()
	if p.at(lexer.NUMBER) {
		tok := p.advance()
		return &ast.NumberLit{Val: tok.Num, LineNum: line}, nil
	}
	ref, err := p.parseRef()
	if err != nil {
		return nil, err
	}
	return &ast.LoadRef{Ref: ref, LineNum: line}, nil
}

func (p *Parser) parseExpression() (*ast.Expression, error) {
	line := p.line()
	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	op, isBin, err := p.tryArithOp()
	if err != nil {
		return nil, err
	}
	if !isBin {
		return &ast.Expression{IsBinary: false, Left: left, LineNum: line}, nil
	}
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Expression{IsBinary: true, Op: op, Left: left, Right: right, LineNum: line}, nil
}

func (p *Parser) tryArithOp() (ast.BinOp, bool, error) {
	switch p.cur().Type {
	case lexer.PLUS:
		p.advance()
		return ast.OpAdd, true, nil
	case lexer.MINUS:
		p.advance()
		return ast.OpSub, true, nil
	case lexer.STAR:
		p.advance()
		return ast.OpMul, true, nil
	case lexer.SLASH:
		p.advance()
		return ast.OpDiv, true, nil
	case lexer.PERCENT:
		p.advance()
		return ast.OpMod, true, nil
	default:
		return 0, false, nil
	}
}

func (p *Parser) parseCondition() (*ast.Condition, error) {
	line := p.line()
	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	var op ast.BinOp
	switch p.cur().Type {
	case lexer.EQ:
		op = ast.OpEq
	case lexer.NEQ:
		op = ast.OpNeq
	case lexer.GT:
		op = ast.OpGt
	case lexer.LT:
		op = ast.OpLt
	case lexer.GEQ:
		op = ast.OpGeq
	case lexer.LEQ:
		op = ast.OpLeq
	default:
		return nil, fmt.Errorf("line %d: expected relational operator, got %s", p.line(), p.cur().Type)
	}
	p.advance()
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Condition{Op: op, Left: left, Right: right, LineNum: line}, nil
}
