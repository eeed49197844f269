package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/ast"
	"github.com/sunholo/naab/internal/lexer"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src, "<test>")
	p := New(l, "<test>")
	prog, errs := p.Parse()
	require.Empty(t, errs, "unexpected parse errors: %v", errs)
	return prog
}

func TestParseStructDeclWithDefaults(t *testing.T) {
	prog := parseProgram(t, `struct Point { x: int, y: int = 0 }`)
	require.Len(t, prog.Structs, 1)
	sd := prog.Structs[0]
	require.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Fields, 2)
	require.Equal(t, "x", sd.Fields[0].Name)
	require.Nil(t, sd.Fields[0].Default)
	require.Equal(t, "y", sd.Fields[1].Name)
	require.NotNil(t, sd.Fields[1].Default)
}

func TestParseEnumDeclWithVariantFields(t *testing.T) {
	prog := parseProgram(t, `enum Shape { Circle(float), Square(float), Empty }`)
	require.Len(t, prog.Enums, 1)
	ed := prog.Enums[0]
	require.Equal(t, "Shape", ed.Name)
	require.Len(t, ed.Variants, 3)
	require.Len(t, ed.Variants[0].Fields, 1)
	require.Empty(t, ed.Variants[2].Fields)
}

func TestParseFuncDeclWithReturnType(t *testing.T) {
	prog := parseProgram(t, `func add(a: int, b: int) -> int { return a + b }`)
	require.Len(t, prog.Functions, 1)
	fd := prog.Functions[0]
	require.Equal(t, "add", fd.Name)
	require.Len(t, fd.Params, 2)
	require.NotNil(t, fd.RetType)
	require.Equal(t, "int", fd.RetType.String())
}

func TestParseExportedStructAndFunc(t *testing.T) {
	prog := parseProgram(t, `
		export struct Point { x: int }
		export func origin() -> Point { return Point{x: 0} }
	`)
	require.True(t, prog.Structs[0].IsExport)
	require.True(t, prog.Functions[0].IsExport)
}

func TestParseSelectiveImportWithAlias(t *testing.T) {
	prog := parseProgram(t, `import {add, sub as subtract} from "./math.naab"`)
	require.Len(t, prog.Imports, 1)
	im := prog.Imports[0]
	require.Equal(t, "./math.naab", im.Specifier)
	require.Equal(t, []string{"add", "sub"}, im.Names)
	require.Equal(t, []string{"", "subtract"}, im.Aliases)
	require.False(t, im.Star)
}

func TestParseStarImport(t *testing.T) {
	prog := parseProgram(t, `import * as util from "./util.naab"`)
	im := prog.Imports[0]
	require.True(t, im.Star)
	require.Equal(t, "util", im.Alias)
	require.Equal(t, "./util.naab", im.Specifier)
}

func TestParseMainBlock(t *testing.T) {
	prog := parseProgram(t, `main { let x = 1 }`)
	require.NotNil(t, prog.Main)
	require.Len(t, prog.Main.Stmts, 1)
}

func TestParseProgramWithNoMainIsLibraryModule(t *testing.T) {
	prog := parseProgram(t, `export func double(x: int) -> int { return x * 2 }`)
	require.Nil(t, prog.Main)
}

func TestParseReportsErrorOnUnexpectedTopLevelToken(t *testing.T) {
	l := lexer.New(`+++`, "<test>")
	p := New(l, "<test>")
	_, errs := p.Parse()
	require.NotEmpty(t, errs)
}
