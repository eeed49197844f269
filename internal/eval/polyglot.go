package eval

import (
	"fmt"

	"github.com/sunholo/naab/internal/ast"
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/value"
)

// evalInlineCode implements the `<<lang [v1, v2] body>>` hand-off (spec
// §4.6/§6): bind the named host values into the target executor, run the
// body, relay any captured stdout, and surface the body's return value.
func (e *Evaluator) evalInlineCode(n *ast.InlineCodeExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	exec, err := e.resolveExecutor(n.Language)
	if err != nil {
		return nil, e.fail(err)
	}
	for _, b := range n.Bindings {
		v, gerr := env.Get(b.Name)
		if gerr != nil {
			return nil, gerr
		}
		if berr := exec.Bind(b.Name, v); berr != nil {
			return nil, e.fail(wrapForeignErr(n.Language, berr))
		}
	}
	res, callErr := exec.ExecuteWithReturn(n.Body)
	if out := exec.DrainCapturedOutput(); out != "" {
		fmt.Print(out)
	}
	if callErr != nil {
		return nil, e.fail(wrapForeignErr(n.Language, callErr))
	}
	if res == nil {
		return value.NullValue, nil
	}
	return res, nil
}

// evalBlockRef looks up a previously-registered `BLOCK-<LANG>-<digits>`
// artifact (spec §6) in e.Blocks. New starts e.Blocks empty and neither the
// evaluator nor the module loader adds entries to it, so a block id with no
// entry there raises E_UNDEFINED; nothing locates or loads a block by id.
func (e *Evaluator) evalBlockRef(n *ast.BlockRefExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	id := "BLOCK-" + n.Language + "-" + n.Digits
	blk, ok := e.Blocks[id]
	if !ok {
		return nil, nerrors.NewError(nerrors.EUndefined, "eval", "undefined block reference '"+id+"'")
	}
	return blk, nil
}

func (e *Evaluator) resolveExecutor(language string) (value.Executor, *nerrors.NaabError) {
	exec, ok, err := e.Registry.Get(language)
	if err != nil {
		return nil, wrapForeignErr(language, err)
	}
	if !ok {
		nerr := nerrors.NewError(nerrors.ENoExecutor, "eval", "no executor registered for language '"+language+"'")
		if fix := nerrors.Suggest(language, e.Registry.Languages()); fix != nil {
			nerr.Rep.Fix = fix
		}
		return nil, nerr
	}
	// Adapters that round-trip values through a tagged-JSON wire format
	// (spec §4.8) need the current struct registry to rebuild a tagged
	// object as a typed *value.Struct instead of degrading it to a Dict.
	if sa, ok := exec.(value.StructAware); ok {
		sa.SetStructDefs(e.StructDefs)
	}
	return exec, nil
}
