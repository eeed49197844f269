// Package parser turns a token stream from internal/lexer into the AST
// defined in internal/ast via recursive descent with Pratt-style expression
// parsing, mirroring the teacher's prefix/infix registration idiom.
package parser

import (
	"fmt"

	"github.com/sunholo/naab/internal/ast"
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/lexer"
)

// MaxExprDepth is the §6 cap on nested expression/statement recursion
// during parsing, raised as E_PARSE_TOO_DEEP rather than overflowing the
// Go call stack on adversarial input.
const MaxExprDepth = 1000

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser consumes tokens one at a time: cur is always the token about to be
// interpreted. There is deliberately no separate pre-fetched peek buffer,
// because parseInlineCode must stop advancing exactly at the raw body's
// first byte and hand control to the lexer's ReadInlineBody.
type Parser struct {
	l    *lexer.Lexer
	file string
	cur  lexer.Token

	depth       int
	noStructLit bool // true while parsing an if/while/for condition, outside parens
	pendingGT   int  // credit owed when a lexed ">>" closed two nested generics at once
	errors      []*nerrors.NaabError

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser over l, reading the first token immediately.
func New(l *lexer.Lexer, file string) *Parser {
	p := &Parser{l: l, file: file}
	p.cur = p.l.NextToken()

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:       p.parseIdentifierOrStructLit,
		lexer.INT:         p.parseIntLiteral,
		lexer.FLOAT:       p.parseFloatLiteral,
		lexer.STRING:      p.parseStringLiteral,
		lexer.TRUE:        p.parseBoolLiteral,
		lexer.FALSE:       p.parseBoolLiteral,
		lexer.NULL:        p.parseNullLiteral,
		lexer.LPAREN:      p.parseGroupOrLambdaCall,
		lexer.LBRACKET:    p.parseListLiteral,
		lexer.LBRACE:      p.parseDictLiteral,
		lexer.MINUS:       p.parseUnary,
		lexer.NOT:         p.parseUnary,
		lexer.FN:          p.parseLambda,
		lexer.INLINE_OPEN: p.parseInlineCode,
		lexer.BLOCK_ID:    p.parseBlockRef,
	}
	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS: p.parseBinary, lexer.MINUS: p.parseBinary,
		lexer.STAR: p.parseBinary, lexer.SLASH: p.parseBinary, lexer.PERCENT: p.parseBinary,
		lexer.EQ: p.parseBinary, lexer.NEQ: p.parseBinary,
		lexer.LT: p.parseBinary, lexer.GT: p.parseBinary, lexer.LTE: p.parseBinary, lexer.GTE: p.parseBinary,
		lexer.AND: p.parseBinary, lexer.OR: p.parseBinary,
		lexer.RANGE: p.parseRange, lexer.RANGEEQ: p.parseRange,
		lexer.PIPELINE: p.parseBinary, lexer.ASSIGN: p.parseBinary,
	}
	return p
}

func (p *Parser) next() { p.cur = p.l.NextToken() }

func (p *Parser) pos() ast.Pos {
	return ast.Pos{File: p.file, Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) errorf(kind nerrors.Kind, format string, args ...interface{}) {
	p.errors = append(p.errors, nerrors.NewError(kind, "parse", fmt.Sprintf(format, args...)))
}

// Errors returns every error accumulated during Parse, for callers that
// want the full diagnostic list rather than stopping at the first one.
func (p *Parser) Errors() []*nerrors.NaabError { return p.errors }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.cur.Type != t {
		p.errorf(nerrors.EParse, "expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
		return false
	}
	return true
}

func (p *Parser) expectAndAdvance(t lexer.TokenType) bool {
	if !p.expect(t) {
		return false
	}
	p.next()
	return true
}

func (p *Parser) enter() bool {
	p.depth++
	if p.depth > MaxExprDepth {
		p.errorf(nerrors.EParseTooDeep, "expression nesting exceeds maximum depth")
		return false
	}
	return true
}

func (p *Parser) leave() { p.depth-- }
