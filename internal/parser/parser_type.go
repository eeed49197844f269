package parser

import (
	"github.com/sunholo/naab/internal/ast"
	"github.com/sunholo/naab/internal/lexer"
)

// parseTypeExpr parses the small type language of spec §4.1: base names,
// array<T>, dict<K,V>, ?T nullable, A|B unions, and module-qualified names.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	t := p.parseTypeAtom()
	if p.cur.Type == lexer.PIPE {
		members := []ast.TypeExpr{t}
		pos := t.Position()
		for p.cur.Type == lexer.PIPE {
			p.next()
			members = append(members, p.parseTypeAtom())
		}
		return &ast.UnionTypeExpr{Members: members, Pos: pos}
	}
	return t
}

func (p *Parser) parseTypeAtom() ast.TypeExpr {
	pos := p.pos()
	if p.cur.Type == lexer.QUESTION {
		p.next()
		return &ast.NullableTypeExpr{Elem: p.parseTypeAtom(), Pos: pos}
	}
	name := p.cur.Literal
	p.expectAndAdvance(lexer.IDENT)

	if p.cur.Type == lexer.DOT {
		p.next()
		member := p.cur.Literal
		p.expectAndAdvance(lexer.IDENT)
		return &ast.QualifiedTypeExpr{Module: name, Name: member, Pos: pos}
	}

	if p.cur.Type == lexer.LT {
		p.next()
		args := []ast.TypeExpr{p.parseTypeExpr()}
		for p.cur.Type == lexer.COMMA {
			p.next()
			args = append(args, p.parseTypeExpr())
		}
		p.closeGeneric()
		switch name {
		case "array":
			if len(args) >= 1 {
				return &ast.ArrayTypeExpr{Elem: args[0], Pos: pos}
			}
		case "dict":
			if len(args) >= 2 {
				return &ast.DictTypeExpr{Key: args[0], Value: args[1], Pos: pos}
			}
		}
		return &ast.BaseTypeExpr{Name: name, Pos: pos}
	}

	if isLowerSingleLetter(name) {
		return &ast.GenericParamExpr{Name: name, Pos: pos}
	}
	return &ast.BaseTypeExpr{Name: name, Pos: pos}
}

// closeGeneric consumes the closing '>' of a generic type argument list.
// The lexer always scans two adjacent '>' characters as one INLINE_CLOSE
// token (it has no generic-depth context to do otherwise), so
// "array<dict<K,V>>" arrives as ...V, INLINE_CLOSE, EOF-or-whatever-follows
// with only one token standing for both closing angle brackets. The inner
// call consumes that token and leaves a pending credit for the outer call
// to redeem without consuming anything further.
func (p *Parser) closeGeneric() {
	if p.pendingGT > 0 {
		p.pendingGT--
		return
	}
	switch p.cur.Type {
	case lexer.GT:
		p.next()
	case lexer.INLINE_CLOSE:
		p.next()
		p.pendingGT++
	default:
		p.expect(lexer.GT)
	}
}

func isLowerSingleLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'a' && s[0] <= 'z'
}
