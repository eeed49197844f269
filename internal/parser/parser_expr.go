package parser

import (
	"strconv"
	"strings"

	"github.com/sunholo/naab/internal/ast"
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/lexer"
)

// parseExpr is the Pratt loop: parse one prefix term, apply any call/member/
// index postfixes (which bind tighter than every binary operator), then
// keep absorbing infix operators whose precedence is >= minPrec.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	if !p.enter() {
		return &ast.ErrorExpr{Msg: "expression nested too deeply", Pos: p.pos()}
	}
	defer p.leave()

	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		pos := p.pos()
		p.errorf(nerrors.EParse, "unexpected token %s (%q) in expression", p.cur.Type, p.cur.Literal)
		p.next()
		return &ast.ErrorExpr{Msg: "unexpected token", Pos: pos}
	}
	left := prefix()
	left = p.parsePostfix(left)

	for {
		prec := p.cur.Precedence()
		if prec == 0 || prec < minPrec {
			break
		}
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			break
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parsePostfix(left ast.Expr) ast.Expr {
	for {
		switch p.cur.Type {
		case lexer.LPAREN:
			left = p.finishCall(left)
		case lexer.DOT:
			pos := p.pos()
			p.next()
			name := p.cur.Literal
			p.expectAndAdvance(lexer.IDENT)
			left = &ast.MemberExpr{X: left, Name: name, Pos: pos}
		case lexer.LBRACKET:
			pos := p.pos()
			p.next()
			idx := p.parseExpr(1)
			p.expectAndAdvance(lexer.RBRACKET)
			left = &ast.IndexExpr{X: left, Index: idx, Pos: pos}
		default:
			return left
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	pos := p.pos()
	p.next() // consume '('
	var args []ast.Expr
	for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
		args = append(args, p.parseExpr(1))
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expectAndAdvance(lexer.RPAREN)
	return &ast.CallExpr{Callee: callee, Args: args, Pos: pos}
}

func (p *Parser) parseIdentifierOrStructLit() ast.Expr {
	pos := p.pos()
	name := p.cur.Literal
	p.next()
	if p.cur.Type == lexer.LBRACE && !p.noStructLit {
		return p.finishStructLit(name, pos)
	}
	return &ast.Identifier{Name: name, Pos: pos}
}

func (p *Parser) finishStructLit(typeName string, pos ast.Pos) ast.Expr {
	p.next() // consume '{'
	lit := &ast.StructLitExpr{TypeName: typeName, Pos: pos}
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		name := p.cur.Literal
		p.expectAndAdvance(lexer.IDENT)
		p.expectAndAdvance(lexer.COLON)
		val := p.parseExpr(1)
		lit.Fields = append(lit.Fields, &ast.StructFieldInit{Name: name, Value: val})
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expectAndAdvance(lexer.RBRACE)
	return lit
}

func (p *Parser) parseIntLiteral() ast.Expr {
	pos := p.pos()
	n, err := strconv.ParseInt(p.cur.Literal, 10, 64)
	if err != nil {
		p.errorf(nerrors.EParse, "invalid integer literal %q", p.cur.Literal)
	}
	p.next()
	return &ast.Literal{Kind: ast.IntLit, Value: n, Pos: pos}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	pos := p.pos()
	f, err := strconv.ParseFloat(p.cur.Literal, 64)
	if err != nil {
		p.errorf(nerrors.EParse, "invalid float literal %q", p.cur.Literal)
	}
	p.next()
	return &ast.Literal{Kind: ast.FloatLit, Value: f, Pos: pos}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	pos := p.pos()
	s := p.cur.Literal
	p.next()
	return &ast.Literal{Kind: ast.StringLit, Value: s, Pos: pos}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	pos := p.pos()
	v := p.cur.Type == lexer.TRUE
	p.next()
	return &ast.Literal{Kind: ast.BoolLit, Value: v, Pos: pos}
}

func (p *Parser) parseNullLiteral() ast.Expr {
	pos := p.pos()
	p.next()
	return &ast.Literal{Kind: ast.NullLit, Value: nil, Pos: pos}
}

func (p *Parser) parseGroupOrLambdaCall() ast.Expr {
	p.next() // consume '('
	save := p.noStructLit
	p.noStructLit = false
	x := p.parseExpr(1)
	p.noStructLit = save
	p.expectAndAdvance(lexer.RPAREN)
	return x
}

func (p *Parser) parseListLiteral() ast.Expr {
	pos := p.pos()
	p.next() // consume '['
	lst := &ast.ListExpr{Pos: pos}
	for p.cur.Type != lexer.RBRACKET && p.cur.Type != lexer.EOF {
		lst.Elements = append(lst.Elements, p.parseExpr(1))
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expectAndAdvance(lexer.RBRACKET)
	return lst
}

func (p *Parser) parseDictLiteral() ast.Expr {
	pos := p.pos()
	p.next() // consume '{'
	d := &ast.DictExpr{Pos: pos}
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		key := p.parseExpr(1)
		p.expectAndAdvance(lexer.COLON)
		val := p.parseExpr(1)
		d.Entries = append(d.Entries, &ast.DictEntry{Key: key, Value: val})
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expectAndAdvance(lexer.RBRACE)
	return d
}

func (p *Parser) parseUnary() ast.Expr {
	pos := p.pos()
	op := p.cur.Literal
	p.next()
	x := p.parseExpr(10) // binds tighter than every binary operator
	return &ast.UnaryExpr{Op: op, X: x, Pos: pos}
}

func (p *Parser) parseLambda() ast.Expr {
	pos := p.pos()
	p.next() // consume 'fn'
	params := p.parseParams()
	p.expectAndAdvance(lexer.FARROW)
	body := p.parseExpr(1)
	return &ast.LambdaExpr{Params: params, Body: body, Pos: pos}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	opTok := p.cur
	pos := p.pos()
	prec := opTok.Precedence()
	p.next()
	nextMin := prec + 1
	if opTok.RightAssociative() {
		nextMin = prec
	}
	right := p.parseExpr(nextMin)
	return &ast.BinaryExpr{Left: left, Op: opTok.Type.String(), Right: right, Pos: pos}
}

func (p *Parser) parseRange(left ast.Expr) ast.Expr {
	inclusive := p.cur.Type == lexer.RANGEEQ
	pos := p.pos()
	prec := p.cur.Precedence()
	p.next()
	right := p.parseExpr(prec + 1)
	return &ast.RangeExpr{Lo: left, Hi: right, Inclusive: inclusive, Pos: pos}
}

// parseInlineCode parses `<<lang [v1, v2] raw body>>`. The binding list is
// mandatory (possibly empty, `[]`) so the parser never needs to guess
// whether a raw foreign-code byte sequence starts where a binding list
// would otherwise go; see internal/lexer.ReadInlineBody's doc comment for
// why this matters for keeping the lexer's raw cursor in sync.
func (p *Parser) parseInlineCode() ast.Expr {
	pos := p.pos()
	p.next() // consume '<<'
	lang := p.cur.Literal
	if !p.expectAndAdvance(lexer.IDENT) {
		return &ast.ErrorExpr{Msg: "expected a language id after '<<'", Pos: pos}
	}
	ic := &ast.InlineCodeExpr{Language: lang, Pos: pos}
	if !p.expect(lexer.LBRACKET) {
		return &ast.ErrorExpr{Msg: "expected '[' binding list after inline-code language", Pos: pos}
	}
	p.next() // consume '['
	for p.cur.Type != lexer.RBRACKET && p.cur.Type != lexer.EOF {
		bpos := p.pos()
		name := p.cur.Literal
		p.expectAndAdvance(lexer.IDENT)
		ic.Bindings = append(ic.Bindings, &ast.InlineCodeBinding{Name: name, Pos: bpos})
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	if !p.expect(lexer.RBRACKET) {
		return ic
	}
	// Do not call p.next() here: the lexer's raw cursor sits exactly one
	// byte past ']', which is where the inline body starts.
	body, line, col, offset := p.l.ReadInlineBody()
	ic.Body = body
	ic.BodyPos = ast.Pos{File: p.file, Line: line, Column: col, Offset: offset}
	closeTok := p.l.NextToken()
	if closeTok.Type != lexer.INLINE_CLOSE {
		p.errorf(nerrors.EParse, "expected '>>' to close inline-code block")
	}
	p.next() // resume normal tokenization after '>>'
	return ic
}

func (p *Parser) parseBlockRef() ast.Expr {
	pos := p.pos()
	parts := strings.SplitN(p.cur.Literal, "-", 3)
	p.next()
	if len(parts) != 3 {
		p.errorf(nerrors.EParse, "malformed block reference %q", p.cur.Literal)
		return &ast.ErrorExpr{Msg: "malformed block reference", Pos: pos}
	}
	return &ast.BlockRefExpr{Language: parts[1], Digits: parts[2], Pos: pos}
}
