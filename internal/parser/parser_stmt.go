package parser

import (
	"github.com/sunholo/naab/internal/ast"
	"github.com/sunholo/naab/internal/lexer"
)

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	pos := p.pos()
	c := &ast.CompoundStmt{Pos: pos}
	if !p.expectAndAdvance(lexer.LBRACE) {
		return c
	}
	if !p.enter() {
		return c
	}
	defer p.leave()
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		c.Stmts = append(c.Stmts, p.parseStmt())
	}
	p.expectAndAdvance(lexer.RBRACE)
	return c
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Type {
	case lexer.LET:
		return p.parseVarDecl()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		pos := p.pos()
		p.next()
		return &ast.BreakStmt{Pos: pos}
	case lexer.CONTINUE:
		pos := p.pos()
		p.next()
		return &ast.ContinueStmt{Pos: pos}
	case lexer.TRY:
		return p.parseTryStmt()
	case lexer.THROW:
		return p.parseThrowStmt()
	case lexer.LBRACE:
		return p.parseCompoundStmt()
	default:
		pos := p.pos()
		x := p.parseExpr(1)
		return &ast.ExprStmt{X: x, Pos: pos}
	}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	pos := p.pos()
	p.next() // consume 'let'
	v := &ast.VarDeclStmt{Name: p.cur.Literal, Pos: pos}
	p.expectAndAdvance(lexer.IDENT)
	if p.cur.Type == lexer.COLON {
		p.next()
		v.Type = p.parseTypeExpr()
	}
	if !p.expectAndAdvance(lexer.ASSIGN) {
		return v
	}
	v.Init = p.parseExpr(1)
	return v
}

func (p *Parser) parseIfStmt() ast.Stmt {
	pos := p.pos()
	p.next() // consume 'if'
	st := &ast.IfStmt{Pos: pos}
	st.Cond = p.parseCondExpr()
	st.Then = p.parseCompoundStmt()
	if p.cur.Type == lexer.ELSE {
		p.next()
		if p.cur.Type == lexer.IF {
			st.Else = p.parseIfStmt()
		} else {
			st.Else = p.parseCompoundStmt()
		}
	}
	return st
}

func (p *Parser) parseForStmt() ast.Stmt {
	pos := p.pos()
	p.next() // consume 'for'
	st := &ast.ForStmt{Pos: pos, LoopVar: p.cur.Literal}
	p.expectAndAdvance(lexer.IDENT)
	p.expectAndAdvance(lexer.IN)
	st.Iterable = p.parseCondExpr()
	st.Body = p.parseCompoundStmt()
	return st
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	pos := p.pos()
	p.next() // consume 'while'
	st := &ast.WhileStmt{Pos: pos}
	st.Cond = p.parseCondExpr()
	st.Body = p.parseCompoundStmt()
	return st
}

// parseCondExpr parses an if/while/for head expression with bare `{`
// suppressed as a struct-literal opener, so `if x { ... }` parses x as the
// condition and `{` as the Then block rather than attempting `x{...}`.
func (p *Parser) parseCondExpr() ast.Expr {
	save := p.noStructLit
	p.noStructLit = true
	x := p.parseExpr(2) // above assignment, at-or-above pipeline
	p.noStructLit = save
	return x
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	pos := p.pos()
	p.next() // consume 'return'
	r := &ast.ReturnStmt{Pos: pos}
	if p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		r.Value = p.parseExpr(1)
	}
	return r
}

func (p *Parser) parseTryStmt() ast.Stmt {
	pos := p.pos()
	p.next() // consume 'try'
	t := &ast.TryStmt{Pos: pos}
	t.Body = p.parseCompoundStmt()
	if !p.expectAndAdvance(lexer.CATCH) {
		return t
	}
	if p.expectAndAdvance(lexer.LPAREN) {
		t.CatchParam = p.cur.Literal
		p.expectAndAdvance(lexer.IDENT)
		p.expectAndAdvance(lexer.RPAREN)
	}
	t.CatchBody = p.parseCompoundStmt()
	if p.cur.Type == lexer.FINALLY {
		p.next()
		t.Finally = p.parseCompoundStmt()
	}
	return t
}

func (p *Parser) parseThrowStmt() ast.Stmt {
	pos := p.pos()
	p.next() // consume 'throw'
	return &ast.ThrowStmt{Value: p.parseExpr(1), Pos: pos}
}
