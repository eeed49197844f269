// Package ast defines the immutable syntax tree produced by the parser.
//
// Every node carries a source Pos; expression nodes may additionally carry
// a memoized type from the optional checker, but the evaluator never
// depends on that memo being present.
package ast

import (
	"fmt"
	"strings"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	String() string
	Position() Pos
}

// Pos identifies a single point in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a half-open range [Start, End) in a source file.
type Span struct {
	Start Pos
	End   Pos
}

// Expr is any node that produces a Value when evaluated.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that may appear in a CompoundStmt body.
type Stmt interface {
	Node
	stmtNode()
}

// TypeExpr is a node from the small type language of §4.1.
type TypeExpr interface {
	Node
	typeNode()
}

// Program is the parsed form of one source file: declarations followed by
// an optional main block.
type Program struct {
	Path      string
	Imports   []*ImportDecl
	Structs   []*StructDecl
	Enums     []*EnumDecl
	Functions []*FuncDecl
	Main      *CompoundStmt // nil if the file declares no main block (a library module)
	Pos       Pos
}

func (p *Program) Position() Pos { return p.Pos }
func (p *Program) String() string {
	var b strings.Builder
	for _, im := range p.Imports {
		b.WriteString(im.String())
		b.WriteByte('\n')
	}
	for _, s := range p.Structs {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	for _, e := range p.Enums {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	for _, f := range p.Functions {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	if p.Main != nil {
		b.WriteString("main ")
		b.WriteString(p.Main.String())
	}
	return b.String()
}

// ImportDecl binds names exported by another module into this one.
//
//	import {a, b as c} from "./util.naab"
//	import * as util from "./util.naab"
type ImportDecl struct {
	Specifier string   // module path string as written
	Names     []string // selective import names, empty when Star is set
	Aliases   []string // parallel to Names; "" when no alias
	Star      bool     // "import * as Alias"
	Alias     string   // target name when Star; per-name aliases live in Aliases
	Pos       Pos
}

func (i *ImportDecl) Position() Pos { return i.Pos }
func (i *ImportDecl) String() string {
	if i.Star {
		return fmt.Sprintf("import * as %s from %q", i.Alias, i.Specifier)
	}
	parts := make([]string, len(i.Names))
	for idx, n := range i.Names {
		if i.Aliases[idx] != "" {
			parts[idx] = fmt.Sprintf("%s as %s", n, i.Aliases[idx])
		} else {
			parts[idx] = n
		}
	}
	return fmt.Sprintf("import {%s} from %q", strings.Join(parts, ", "), i.Specifier)
}

// StructField is one declared field of a StructDecl.
type StructField struct {
	Name    string
	Type    TypeExpr // nil if untyped
	Default Expr     // nil if required
	Pos     Pos
}

// StructDecl declares a named struct shape.
type StructDecl struct {
	Name     string
	Fields   []*StructField
	IsExport bool
	Pos      Pos
}

func (s *StructDecl) Position() Pos { return s.Pos }
func (s *StructDecl) String() string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return fmt.Sprintf("struct %s { %s }", s.Name, strings.Join(names, ", "))
}

// EnumVariant is one case of an EnumDecl, optionally carrying fields.
type EnumVariant struct {
	Name   string
	Fields []TypeExpr
	Pos    Pos
}

// EnumDecl declares a named sum type.
type EnumDecl struct {
	Name     string
	Variants []*EnumVariant
	IsExport bool
	Pos      Pos
}

func (e *EnumDecl) Position() Pos { return e.Pos }
func (e *EnumDecl) String() string {
	names := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		names[i] = v.Name
	}
	return fmt.Sprintf("enum %s { %s }", e.Name, strings.Join(names, ", "))
}

// Param is one formal parameter of a FuncDecl or LambdaExpr.
type Param struct {
	Name    string
	Type    TypeExpr // nil if untyped
	Default Expr     // nil if required
	Pos     Pos
}

// FuncDecl is a named top-level (or module-level) function declaration.
type FuncDecl struct {
	Name     string
	Params   []*Param
	RetType  TypeExpr // nil if unannotated
	Body     *CompoundStmt
	IsExport bool
	Pos      Pos
}

func (f *FuncDecl) Position() Pos { return f.Pos }
func (f *FuncDecl) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("function %s(%s)", f.Name, strings.Join(names, ", "))
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// CompoundStmt is a brace-delimited sequence of statements; the evaluator
// runs each in a fresh child environment.
type CompoundStmt struct {
	Stmts []Stmt
	Pos   Pos
}

func (c *CompoundStmt) Position() Pos { return c.Pos }
func (c *CompoundStmt) String() string {
	parts := make([]string, len(c.Stmts))
	for i, s := range c.Stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
func (c *CompoundStmt) stmtNode() {}

// VarDeclStmt is `let name [: Type] = init`.
type VarDeclStmt struct {
	Name string
	Type TypeExpr
	Init Expr
	Pos  Pos
}

func (v *VarDeclStmt) Position() Pos { return v.Pos }
func (v *VarDeclStmt) String() string {
	return fmt.Sprintf("let %s = %s", v.Name, v.Init)
}
func (v *VarDeclStmt) stmtNode() {}

// IfStmt is the statement-level `if`/`else` form.
type IfStmt struct {
	Cond Expr
	Then *CompoundStmt
	Else Stmt // *CompoundStmt, *IfStmt (else-if), or nil
	Pos  Pos
}

func (i *IfStmt) Position() Pos { return i.Pos }
func (i *IfStmt) String() string {
	return fmt.Sprintf("if %s %s", i.Cond, i.Then)
}
func (i *IfStmt) stmtNode() {}

// ForStmt iterates a list, dict, string, or range, binding LoopVar each pass.
type ForStmt struct {
	LoopVar  string
	Iterable Expr
	Body     *CompoundStmt
	Pos      Pos
}

func (f *ForStmt) Position() Pos { return f.Pos }
func (f *ForStmt) String() string {
	return fmt.Sprintf("for %s in %s %s", f.LoopVar, f.Iterable, f.Body)
}
func (f *ForStmt) stmtNode() {}

// WhileStmt re-evaluates Cond before every iteration.
type WhileStmt struct {
	Cond Expr
	Body *CompoundStmt
	Pos  Pos
}

func (w *WhileStmt) Position() Pos { return w.Pos }
func (w *WhileStmt) String() string {
	return fmt.Sprintf("while %s %s", w.Cond, w.Body)
}
func (w *WhileStmt) stmtNode() {}

// ReturnStmt is only legal inside a function body.
type ReturnStmt struct {
	Value Expr // nil for a bare `return`
	Pos   Pos
}

func (r *ReturnStmt) Position() Pos { return r.Pos }
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value)
}
func (r *ReturnStmt) stmtNode() {}

// BreakStmt exits the innermost for/while loop.
type BreakStmt struct{ Pos Pos }

func (b *BreakStmt) Position() Pos  { return b.Pos }
func (b *BreakStmt) String() string { return "break" }
func (b *BreakStmt) stmtNode()      {}

// ContinueStmt skips to the next iteration of the innermost for/while loop.
type ContinueStmt struct{ Pos Pos }

func (c *ContinueStmt) Position() Pos  { return c.Pos }
func (c *ContinueStmt) String() string { return "continue" }
func (c *ContinueStmt) stmtNode()      {}

// TryStmt is try/catch/finally; Finally may be nil.
type TryStmt struct {
	Body         *CompoundStmt
	CatchParam   string
	CatchBody    *CompoundStmt
	Finally      *CompoundStmt
	Pos          Pos
}

func (t *TryStmt) Position() Pos { return t.Pos }
func (t *TryStmt) String() string {
	return fmt.Sprintf("try %s catch (%s) %s", t.Body, t.CatchParam, t.CatchBody)
}
func (t *TryStmt) stmtNode() {}

// ThrowStmt raises Value as an exception.
type ThrowStmt struct {
	Value Expr
	Pos   Pos
}

func (t *ThrowStmt) Position() Pos { return t.Pos }
func (t *ThrowStmt) String() string {
	return fmt.Sprintf("throw %s", t.Value)
}
func (t *ThrowStmt) stmtNode() {}

// ExprStmt evaluates Expr for its side effects (or as the compound's trailing
// result expression); the result is stored in the evaluator's result slot.
type ExprStmt struct {
	X   Expr
	Pos Pos
}

func (e *ExprStmt) Position() Pos  { return e.Pos }
func (e *ExprStmt) String() string { return e.X.String() }
func (e *ExprStmt) stmtNode()      {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Identifier references a name in the current environment.
type Identifier struct {
	Name string
	Pos  Pos
}

func (i *Identifier) Position() Pos  { return i.Pos }
func (i *Identifier) String() string { return i.Name }
func (i *Identifier) exprNode()      {}

// LiteralKind tags the kind of value a Literal carries.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	StringLit
	BoolLit
	NullLit
)

// Literal is a scalar constant: int, float, string, bool, or null.
type Literal struct {
	Kind  LiteralKind
	Value interface{}
	Pos   Pos
}

func (l *Literal) Position() Pos  { return l.Pos }
func (l *Literal) String() string { return fmt.Sprintf("%v", l.Value) }
func (l *Literal) exprNode()      {}

// ListExpr is a `[e1, e2, ...]` literal.
type ListExpr struct {
	Elements []Expr
	Pos      Pos
}

func (l *ListExpr) Position() Pos { return l.Pos }
func (l *ListExpr) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l *ListExpr) exprNode() {}

// DictEntry is one key/value pair of a DictExpr.
type DictEntry struct {
	Key   Expr
	Value Expr
}

// DictExpr is a `{k1: v1, k2: v2}` literal; insertion order is preserved.
type DictExpr struct {
	Entries []*DictEntry
	Pos     Pos
}

func (d *DictExpr) Position() Pos { return d.Pos }
func (d *DictExpr) String() string {
	parts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		parts[i] = fmt.Sprintf("%s: %s", e.Key, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (d *DictExpr) exprNode() {}

// StructFieldInit is one `name: value` of a StructLitExpr.
type StructFieldInit struct {
	Name  string
	Value Expr
}

// StructLitExpr constructs a Struct value: `Point{x: 1, y: 2}`.
type StructLitExpr struct {
	TypeName string
	Fields   []*StructFieldInit
	Pos      Pos
}

func (s *StructLitExpr) Position() Pos { return s.Pos }
func (s *StructLitExpr) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return fmt.Sprintf("%s{%s}", s.TypeName, strings.Join(parts, ", "))
}
func (s *StructLitExpr) exprNode() {}

// RangeExpr is `lo..hi` (exclusive) or `lo..=hi` (inclusive).
type RangeExpr struct {
	Lo        Expr
	Hi        Expr
	Inclusive bool
	Pos       Pos
}

func (r *RangeExpr) Position() Pos { return r.Pos }
func (r *RangeExpr) String() string {
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	return fmt.Sprintf("%s%s%s", r.Lo, op, r.Hi)
}
func (r *RangeExpr) exprNode() {}

// IfExpr is the expression-producing `if cond { a } else { b }` form.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	Pos  Pos
}

func (i *IfExpr) Position() Pos { return i.Pos }
func (i *IfExpr) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else)
}
func (i *IfExpr) exprNode() {}

// LambdaExpr is an anonymous function expression capturing its defining
// environment when evaluated.
type LambdaExpr struct {
	Params []*Param
	Body   Expr
	Pos    Pos
}

func (l *LambdaExpr) Position() Pos { return l.Pos }
func (l *LambdaExpr) String() string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("fn(%s) => %s", strings.Join(names, ", "), l.Body)
}
func (l *LambdaExpr) exprNode() {}

// BinaryExpr covers arithmetic, comparison, logical, pipe, and assignment
// operators. Assignment ("=") requires Left to be an Identifier, MemberExpr,
// or IndexExpr; the evaluator enforces this (E_ASSIGN_TARGET otherwise).
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
	Pos   Pos
}

func (b *BinaryExpr) Position() Pos { return b.Pos }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}
func (b *BinaryExpr) exprNode() {}

// UnaryExpr covers `-x`, `!x`.
type UnaryExpr struct {
	Op string
	X  Expr
	Pos Pos
}

func (u *UnaryExpr) Position() Pos { return u.Pos }
func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", u.Op, u.X)
}
func (u *UnaryExpr) exprNode() {}

// CallExpr applies Callee (a function value, or a member expression naming
// a function of a Block value) to Args.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Pos    Pos
}

func (c *CallExpr) Position() Pos { return c.Pos }
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(parts, ", "))
}
func (c *CallExpr) exprNode() {}

// MemberExpr reads a struct field, dict key, or triggers method-chain
// dispatch into a Foreign/Block value's executor.
type MemberExpr struct {
	X    Expr
	Name string
	Pos  Pos
}

func (m *MemberExpr) Position() Pos { return m.Pos }
func (m *MemberExpr) String() string {
	return fmt.Sprintf("%s.%s", m.X, m.Name)
}
func (m *MemberExpr) exprNode() {}

// IndexExpr is `x[index]` over a List, Dict, or String.
type IndexExpr struct {
	X     Expr
	Index Expr
	Pos   Pos
}

func (ix *IndexExpr) Position() Pos { return ix.Pos }
func (ix *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", ix.X, ix.Index)
}
func (ix *IndexExpr) exprNode() {}

// InlineCodeBinding names a host-side identifier bound into the foreign
// runtime before the inline body runs.
type InlineCodeBinding struct {
	Name string
	Pos  Pos
}

// InlineCodeExpr is `<<lang [v1, v2] body>>`, the core polyglot hand-off.
type InlineCodeExpr struct {
	Language string
	Bindings []*InlineCodeBinding
	Body     string
	BodyPos  Pos
	Pos      Pos
}

func (ic *InlineCodeExpr) Position() Pos { return ic.Pos }
func (ic *InlineCodeExpr) String() string {
	names := make([]string, len(ic.Bindings))
	for i, b := range ic.Bindings {
		names[i] = b.Name
	}
	return fmt.Sprintf("<<%s[%s] ...>>", ic.Language, strings.Join(names, ", "))
}
func (ic *InlineCodeExpr) exprNode() {}

// BlockRefExpr references a foreign block artifact by id, e.g. BLOCK-PY-0001.
type BlockRefExpr struct {
	Language string
	Digits   string
	Pos      Pos
}

func (b *BlockRefExpr) Position() Pos { return b.Pos }
func (b *BlockRefExpr) String() string {
	return fmt.Sprintf("BLOCK-%s-%s", b.Language, b.Digits)
}
func (b *BlockRefExpr) exprNode() {}

// ErrorExpr is a parser error-recovery placeholder; it never reaches the
// evaluator in a program that the parser accepted without fatal errors.
type ErrorExpr struct {
	Msg string
	Pos Pos
}

func (e *ErrorExpr) Position() Pos  { return e.Pos }
func (e *ErrorExpr) String() string { return fmt.Sprintf("<error: %s>", e.Msg) }
func (e *ErrorExpr) exprNode()      {}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// BaseTypeExpr is a named base type: int, float, bool, string, or a
// user-declared struct/enum name.
type BaseTypeExpr struct {
	Name string
	Pos  Pos
}

func (b *BaseTypeExpr) Position() Pos  { return b.Pos }
func (b *BaseTypeExpr) String() string { return b.Name }
func (b *BaseTypeExpr) typeNode()      {}

// ArrayTypeExpr is `array<T>`.
type ArrayTypeExpr struct {
	Elem TypeExpr
	Pos  Pos
}

func (a *ArrayTypeExpr) Position() Pos  { return a.Pos }
func (a *ArrayTypeExpr) String() string { return fmt.Sprintf("array<%s>", a.Elem) }
func (a *ArrayTypeExpr) typeNode()      {}

// DictTypeExpr is `dict<K,V>`.
type DictTypeExpr struct {
	Key   TypeExpr
	Value TypeExpr
	Pos   Pos
}

func (d *DictTypeExpr) Position() Pos { return d.Pos }
func (d *DictTypeExpr) String() string {
	return fmt.Sprintf("dict<%s,%s>", d.Key, d.Value)
}
func (d *DictTypeExpr) typeNode() {}

// NullableTypeExpr is `?T`.
type NullableTypeExpr struct {
	Elem TypeExpr
	Pos  Pos
}

func (n *NullableTypeExpr) Position() Pos  { return n.Pos }
func (n *NullableTypeExpr) String() string { return "?" + n.Elem.String() }
func (n *NullableTypeExpr) typeNode()      {}

// UnionTypeExpr is `A|B`.
type UnionTypeExpr struct {
	Members []TypeExpr
	Pos     Pos
}

func (u *UnionTypeExpr) Position() Pos { return u.Pos }
func (u *UnionTypeExpr) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, "|")
}
func (u *UnionTypeExpr) typeNode() {}

// GenericParamExpr is an unbound type parameter such as `T`.
type GenericParamExpr struct {
	Name string
	Pos  Pos
}

func (g *GenericParamExpr) Position() Pos  { return g.Pos }
func (g *GenericParamExpr) String() string { return g.Name }
func (g *GenericParamExpr) typeNode()      {}

// QualifiedTypeExpr is a module-qualified type name: `m.Point`.
type QualifiedTypeExpr struct {
	Module string
	Name   string
	Pos    Pos
}

func (q *QualifiedTypeExpr) Position() Pos  { return q.Pos }
func (q *QualifiedTypeExpr) String() string { return q.Module + "." + q.Name }
func (q *QualifiedTypeExpr) typeNode()      {}
