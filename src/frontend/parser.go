// parser.go implements a hand-written recursive descent parser over the lexer's token stream,
// producing the typed AST defined in ast.go. It replaces the teacher's goyacc-generated parser
// (out of scope for this subset's grammar, which the teacher's VSL parser never covered).

package frontend

import (
	"strconv"

	"sysyc/src/compileerr"
)

// parser holds the token lookahead state used by the recursive descent rules below.
type parser struct {
	lex  *lexer
	tok  item // current token
	peek item // one token of lookahead, valid when have is true
	have bool
}

// Parse scans src and returns the root of the syntax tree, or a CompileError of kind IRMalformed
// describing the first syntax error encountered.
func Parse(src string) (*CompUnit, error) {
	p := &parser{lex: newLexer(src)}
	p.advance()
	cu, err := p.parseCompUnit()
	if err != nil {
		return nil, err
	}
	if p.tok.typ != itemEOF {
		return nil, compileerr.New(compileerr.IRMalformed, "unexpected trailing token %s", p.tok)
	}
	return cu, nil
}

// advance consumes the current token and loads the next one.
func (p *parser) advance() {
	if p.have {
		p.tok = p.peek
		p.have = false
		return
	}
	p.tok = p.lex.nextItem()
}

// peekTok returns the token after the current one without consuming either.
func (p *parser) peekTok() item {
	if !p.have {
		p.peek = p.lex.nextItem()
		p.have = true
	}
	return p.peek
}

// expect consumes the current token if it has type typ, else returns a syntax error.
func (p *parser) expect(typ tokenType, what string) (item, error) {
	if p.tok.typ == itemError {
		return item{}, compileerr.New(compileerr.IRMalformed, "%s", p.tok.val)
	}
	if p.tok.typ != typ {
		return item{}, compileerr.New(compileerr.IRMalformed, "line %d: expected %s, got %s", p.tok.line, what, p.tok)
	}
	tok := p.tok
	p.advance()
	return tok, nil
}

// ----------------------------------
// ----- Grammar: CompUnit/Func -----
// ----------------------------------

func (p *parser) parseCompUnit() (*CompUnit, error) {
	fn, err := p.parseFuncDef()
	if err != nil {
		return nil, err
	}
	return &CompUnit{Func: fn}, nil
}

func (p *parser) parseFuncDef() (*FuncDef, error) {
	kw, err := p.expect(tokKwInt, "'int'")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenType('('), "'('"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenType(')'), "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncDef{RetType: "int", Name: name.val, Body: body, Line: kw.line}, nil
}

// ---------------------------
// ----- Grammar: Block ------
// ---------------------------

func (p *parser) parseBlock() (*Block, error) {
	if _, err := p.expect(tokenType('{'), "'{'"); err != nil {
		return nil, err
	}
	b := &Block{}
	for p.tok.typ != tokenType('}') {
		if p.tok.typ == itemEOF {
			return nil, compileerr.New(compileerr.IRMalformed, "unterminated block")
		}
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	if _, err := p.expect(tokenType('}'), "'}'"); err != nil {
		return nil, err
	}
	return b, nil
}

func (p *parser) parseBlockItem() (BlockItem, error) {
	switch p.tok.typ {
	case tokKwConst:
		return p.parseConstDecl()
	case tokKwInt:
		return p.parseVarDecl()
	default:
		return p.parseStmt()
	}
}

// ----------------------------------
// ----- Grammar: Decl/Def -----------
// ----------------------------------

func (p *parser) parseConstDecl() (*ConstDecl, error) {
	kw, err := p.expect(tokKwConst, "'const'")
	if err != nil {
		return nil, err
	}
	bt, err := p.expect(tokKwInt, "'int'")
	if err != nil {
		return nil, err
	}
	decl := &ConstDecl{BType: bt.val, Line: kw.line}
	for {
		def, err := p.parseConstDef()
		if err != nil {
			return nil, err
		}
		decl.Defs = append(decl.Defs, def)
		if p.tok.typ == tokenType(',') {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokenType(';'), "';'"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseConstDef() (*ConstDef, error) {
	name, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenType('='), "'='"); err != nil {
		return nil, err
	}
	init, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	return &ConstDef{Name: name.val, Init: init, Line: name.line}, nil
}

func (p *parser) parseVarDecl() (*VarDecl, error) {
	bt, err := p.expect(tokKwInt, "'int'")
	if err != nil {
		return nil, err
	}
	decl := &VarDecl{BType: bt.val, Line: bt.line}
	for {
		def, err := p.parseVarDef()
		if err != nil {
			return nil, err
		}
		decl.Defs = append(decl.Defs, def)
		if p.tok.typ == tokenType(',') {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokenType(';'), "';'"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseVarDef() (*VarDef, error) {
	name, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return nil, err
	}
	def := &VarDef{Name: name.val, Line: name.line}
	if p.tok.typ == tokenType('=') {
		p.advance()
		init, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		def.Init = init
	}
	return def, nil
}

// ---------------------------
// ----- Grammar: Stmt -------
// ---------------------------

func (p *parser) parseStmt() (Stmt, error) {
	switch p.tok.typ {
	case tokenType('{'):
		line := p.tok.line
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Body: body, Line: line}, nil
	case tokKwReturn:
		return p.parseReturnStmt()
	case tokenType(';'):
		line := p.tok.line
		p.advance()
		return &ExpStmt{Line: line}, nil
	case tokIdent:
		// Disambiguate "LVal = Exp ;" from a bare expression statement by peeking one token
		// ahead for '='. This subset has no other production starting with an identifier.
		if p.peekTok().typ == tokenType('=') {
			return p.parseAssignStmt()
		}
		return p.parseExpStmt()
	default:
		return p.parseExpStmt()
	}
}

func (p *parser) parseAssignStmt() (*AssignStmt, error) {
	name, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return nil, err
	}
	lval := &LVal{Name: name.val, Line: name.line}
	if _, err := p.expect(tokenType('='), "'='"); err != nil {
		return nil, err
	}
	rhs, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenType(';'), "';'"); err != nil {
		return nil, err
	}
	return &AssignStmt{LVal: lval, Rhs: rhs, Line: lval.Line}, nil
}

func (p *parser) parseExpStmt() (*ExpStmt, error) {
	line := p.tok.line
	exp, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenType(';'), "';'"); err != nil {
		return nil, err
	}
	return &ExpStmt{Exp: exp, Line: line}, nil
}

func (p *parser) parseReturnStmt() (*ReturnStmt, error) {
	kw, err := p.expect(tokKwReturn, "'return'")
	if err != nil {
		return nil, err
	}
	stmt := &ReturnStmt{Line: kw.line}
	if p.tok.typ != tokenType(';') {
		exp, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		stmt.Exp = exp
	}
	if _, err := p.expect(tokenType(';'), "';'"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ---------------------------------------------------
// ----- Grammar: expressions, lowest to highest ------
// ---------------------------------------------------
//
// LOrExp -> LAndExp -> EqExp -> RelExp -> AddExp -> MulExp -> UnaryExp -> PrimaryExp

func (p *parser) parseExp() (Exp, error) {
	return p.parseLOrExp()
}

func (p *parser) parseLOrExp() (Exp, error) {
	left, err := p.parseLAndExp()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokOr {
		line := p.tok.line
		p.advance()
		right, err := p.parseLAndExp()
		if err != nil {
			return nil, err
		}
		left = &BinaryExp{Op: "||", L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseLAndExp() (Exp, error) {
	left, err := p.parseEqExp()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokAnd {
		line := p.tok.line
		p.advance()
		right, err := p.parseEqExp()
		if err != nil {
			return nil, err
		}
		left = &BinaryExp{Op: "&&", L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseEqExp() (Exp, error) {
	left, err := p.parseRelExp()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokEq || p.tok.typ == tokNeq {
		op := "=="
		if p.tok.typ == tokNeq {
			op = "!="
		}
		line := p.tok.line
		p.advance()
		right, err := p.parseRelExp()
		if err != nil {
			return nil, err
		}
		left = &BinaryExp{Op: op, L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseRelExp() (Exp, error) {
	left, err := p.parseAddExp()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.tok.typ {
		case tokenType('<'):
			op = "<"
		case tokenType('>'):
			op = ">"
		case tokLe:
			op = "<="
		case tokGe:
			op = ">="
		default:
			return left, nil
		}
		line := p.tok.line
		p.advance()
		right, err := p.parseAddExp()
		if err != nil {
			return nil, err
		}
		left = &BinaryExp{Op: op, L: left, R: right, Line: line}
	}
}

func (p *parser) parseAddExp() (Exp, error) {
	left, err := p.parseMulExp()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokenType('+') || p.tok.typ == tokenType('-') {
		op := string(rune(p.tok.typ))
		line := p.tok.line
		p.advance()
		right, err := p.parseMulExp()
		if err != nil {
			return nil, err
		}
		left = &BinaryExp{Op: op, L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseMulExp() (Exp, error) {
	left, err := p.parseUnaryExp()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokenType('*') || p.tok.typ == tokenType('/') || p.tok.typ == tokenType('%') {
		op := string(rune(p.tok.typ))
		line := p.tok.line
		p.advance()
		right, err := p.parseUnaryExp()
		if err != nil {
			return nil, err
		}
		left = &BinaryExp{Op: op, L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseUnaryExp() (Exp, error) {
	switch p.tok.typ {
	case tokenType('+'), tokenType('-'), tokenType('!'):
		op := string(rune(p.tok.typ))
		line := p.tok.line
		p.advance()
		x, err := p.parseUnaryExp()
		if err != nil {
			return nil, err
		}
		return &UnaryExp{Op: op, X: x, Line: line}, nil
	default:
		return p.parsePrimaryExp()
	}
}

func (p *parser) parsePrimaryExp() (Exp, error) {
	switch p.tok.typ {
	case tokenType('('):
		p.advance()
		exp, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenType(')'), "')'"); err != nil {
			return nil, err
		}
		return exp, nil
	case tokInt:
		tok := p.tok
		p.advance()
		n, err := parseIntLiteral(tok.val)
		if err != nil {
			return nil, compileerr.New(compileerr.IRMalformed, "line %d: %s", tok.line, err)
		}
		return &Number{Val: n, Line: tok.line}, nil
	case tokIdent:
		tok := p.tok
		p.advance()
		return &LVal{Name: tok.val, Line: tok.line}, nil
	case itemError:
		return nil, compileerr.New(compileerr.IRMalformed, "%s", p.tok.val)
	default:
		return nil, compileerr.New(compileerr.IRMalformed, "line %d: unexpected token %s", p.tok.line, p.tok)
	}
}

// parseIntLiteral parses a decimal, octal (leading 0) or hexadecimal (0x/0X) integer literal,
// matching the lexer's acceptance of all three forms.
func parseIntLiteral(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
