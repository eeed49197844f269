package eval

import (
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/value"
)

// Importer resolves a module specifier to its exported bindings. The
// evaluator depends only on this interface so internal/module (which needs
// the lexer/parser to load and run the imported file) can sit above
// internal/eval rather than the reverse. A nil Importer makes every
// ImportDecl fail with E_IMPORT.
type Importer interface {
	ResolveImport(specifier string, fromFile string) (*value.Dict, *nerrors.NaabError)
}

type noImporter struct{}

func (noImporter) ResolveImport(specifier, fromFile string) (*value.Dict, *nerrors.NaabError) {
	return nil, nerrors.NewError(nerrors.EImport, "eval", "no module loader configured: cannot import '"+specifier+"'")
}
