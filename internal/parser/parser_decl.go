package parser

import (
	"github.com/sunholo/naab/internal/ast"
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/lexer"
)

// Parse consumes the whole token stream and returns a Program, plus
// whatever E_PARSE/E_PARSE_TOO_DEEP diagnostics accumulated along the way.
// A non-empty error list does not necessarily mean prog is nil: the parser
// recovers at declaration boundaries so a single bad function does not
// block finding errors in the rest of the file.
func (p *Parser) Parse() (*ast.Program, []*nerrors.NaabError) {
	prog := &ast.Program{Path: p.file, Pos: p.pos()}
	for p.cur.Type != lexer.EOF {
		switch p.cur.Type {
		case lexer.IMPORT:
			if im := p.parseImport(); im != nil {
				prog.Imports = append(prog.Imports, im)
			}
		case lexer.STRUCT:
			if sd := p.parseStructDecl(false); sd != nil {
				prog.Structs = append(prog.Structs, sd)
			}
		case lexer.ENUM:
			if ed := p.parseEnumDecl(false); ed != nil {
				prog.Enums = append(prog.Enums, ed)
			}
		case lexer.EXPORT:
			p.next()
			switch p.cur.Type {
			case lexer.STRUCT:
				if sd := p.parseStructDecl(true); sd != nil {
					prog.Structs = append(prog.Structs, sd)
				}
			case lexer.ENUM:
				if ed := p.parseEnumDecl(true); ed != nil {
					prog.Enums = append(prog.Enums, ed)
				}
			case lexer.FUNC:
				if fd := p.parseFuncDecl(true); fd != nil {
					prog.Functions = append(prog.Functions, fd)
				}
			default:
				p.errorf(nerrors.EParse, "expected struct, enum, or func after 'export'")
				p.next()
			}
		case lexer.FUNC:
			if fd := p.parseFuncDecl(false); fd != nil {
				prog.Functions = append(prog.Functions, fd)
			}
		case lexer.MAIN:
			p.next()
			prog.Main = p.parseCompoundStmt()
		default:
			p.errorf(nerrors.EParse, "unexpected token %s at top level", p.cur.Type)
			p.next()
		}
	}
	return prog, p.errors
}

func (p *Parser) parseImport() *ast.ImportDecl {
	pos := p.pos()
	p.next() // consume 'import'
	decl := &ast.ImportDecl{Pos: pos}
	if p.cur.Type == lexer.STAR {
		// '*' lexes as the STAR token, reused here for import-all; its only
		// other meaning (multiplication) never appears in this position.
		p.next()
		if !p.expectAndAdvance(lexer.AS) {
			return decl
		}
		decl.Star = true
		decl.Alias = p.cur.Literal
		p.expectAndAdvance(lexer.IDENT)
	} else if p.expectAndAdvance(lexer.LBRACE) {
		for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
			name := p.cur.Literal
			p.expectAndAdvance(lexer.IDENT)
			alias := ""
			if p.cur.Type == lexer.AS {
				p.next()
				alias = p.cur.Literal
				p.expectAndAdvance(lexer.IDENT)
			}
			decl.Names = append(decl.Names, name)
			decl.Aliases = append(decl.Aliases, alias)
			if p.cur.Type == lexer.COMMA {
				p.next()
			}
		}
		p.expectAndAdvance(lexer.RBRACE)
	}
	if !p.expectAndAdvance(lexer.FROM) {
		return decl
	}
	decl.Specifier = p.cur.Literal
	p.expectAndAdvance(lexer.STRING)
	return decl
}

func (p *Parser) parseStructDecl(isExport bool) *ast.StructDecl {
	pos := p.pos()
	p.next() // consume 'struct'
	sd := &ast.StructDecl{Name: p.cur.Literal, IsExport: isExport, Pos: pos}
	p.expectAndAdvance(lexer.IDENT)
	if !p.expectAndAdvance(lexer.LBRACE) {
		return sd
	}
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		f := &ast.StructField{Name: p.cur.Literal, Pos: p.pos()}
		p.expectAndAdvance(lexer.IDENT)
		if p.cur.Type == lexer.COLON {
			p.next()
			f.Type = p.parseTypeExpr()
		}
		if p.cur.Type == lexer.ASSIGN {
			p.next()
			f.Default = p.parseExpr(1)
		}
		sd.Fields = append(sd.Fields, f)
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expectAndAdvance(lexer.RBRACE)
	return sd
}

func (p *Parser) parseEnumDecl(isExport bool) *ast.EnumDecl {
	pos := p.pos()
	p.next() // consume 'enum'
	ed := &ast.EnumDecl{Name: p.cur.Literal, IsExport: isExport, Pos: pos}
	p.expectAndAdvance(lexer.IDENT)
	if !p.expectAndAdvance(lexer.LBRACE) {
		return ed
	}
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		v := &ast.EnumVariant{Name: p.cur.Literal, Pos: p.pos()}
		p.expectAndAdvance(lexer.IDENT)
		if p.cur.Type == lexer.LPAREN {
			p.next()
			for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
				v.Fields = append(v.Fields, p.parseTypeExpr())
				if p.cur.Type == lexer.COMMA {
					p.next()
				}
			}
			p.expectAndAdvance(lexer.RPAREN)
		}
		ed.Variants = append(ed.Variants, v)
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expectAndAdvance(lexer.RBRACE)
	return ed
}

func (p *Parser) parseFuncDecl(isExport bool) *ast.FuncDecl {
	pos := p.pos()
	p.next() // consume 'func'
	fd := &ast.FuncDecl{Name: p.cur.Literal, IsExport: isExport, Pos: pos}
	p.expectAndAdvance(lexer.IDENT)
	fd.Params = p.parseParams()
	if p.cur.Type == lexer.ARROW {
		p.next()
		fd.RetType = p.parseTypeExpr()
	}
	fd.Body = p.parseCompoundStmt()
	return fd
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	if !p.expectAndAdvance(lexer.LPAREN) {
		return params
	}
	for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
		param := &ast.Param{Name: p.cur.Literal, Pos: p.pos()}
		p.expectAndAdvance(lexer.IDENT)
		if p.cur.Type == lexer.COLON {
			p.next()
			param.Type = p.parseTypeExpr()
		}
		if p.cur.Type == lexer.ASSIGN {
			p.next()
			param.Default = p.parseExpr(1)
		}
		params = append(params, param)
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expectAndAdvance(lexer.RPAREN)
	return params
}
