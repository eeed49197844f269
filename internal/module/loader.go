package module

import (
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sunholo/naab/internal/ast"
	"github.com/sunholo/naab/internal/eval"
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/executor"
	"github.com/sunholo/naab/internal/lexer"
	"github.com/sunholo/naab/internal/parser"
	"github.com/sunholo/naab/internal/value"
)

// MaxFileSize is the spec §6 cap on a single source file.
const MaxFileSize = 10 << 20

// state is a module's position in the Parsing/Executing/Ready machine from
// spec §4.5: Parsing while its text is being read and parsed, Executing
// while its top-level runs, Ready once its exports are collected.
type state int

const (
	stateParsing state = iota
	stateExecuting
	stateReady
)

type entry struct {
	state   state
	exports *value.Dict
}

// Loader resolves, parses, and evaluates naab source files into their
// exported bindings, caching each canonical path's result and detecting
// circular imports via an explicit import stack (spec §4.5). It implements
// eval.Importer, so an *eval.Evaluator running one file can recursively
// load the files it imports through the same Loader.
type Loader struct {
	mu       sync.Mutex
	resolver *Resolver
	registry *executor.Registry
	cache    map[string]*entry
	stack    []string
}

// NewLoader builds a Loader using resolver for path resolution and reg to
// construct the executors each loaded module's inline-code/block-ref
// expressions need.
func NewLoader(resolver *Resolver, reg *executor.Registry) *Loader {
	return &Loader{
		resolver: resolver,
		registry: reg,
		cache:    make(map[string]*entry),
	}
}

var _ eval.Importer = (*Loader)(nil)

// ResolveImport implements eval.Importer: resolve specifier to a canonical
// path, consult the state machine, and load it if this is the first time
// it's been seen.
func (l *Loader) ResolveImport(specifier, fromFile string) (*value.Dict, *nerrors.NaabError) {
	canonical, err := l.resolver.Resolve(specifier, fromFile)
	if err != nil {
		return nil, err
	}
	exports, _, err := l.loadCanonical(canonical)
	return exports, err
}

// LoadFile loads and runs path directly as a program entry point (not
// reached via an import specifier, so it bypasses the resolver's search
// order and takes path as already-canonical-enough), returning its main
// block's result.
func (l *Loader) LoadFile(path string) (value.Value, *nerrors.NaabError) {
	canonical, rerr := l.resolver.canonicalize(path, path)
	if rerr != nil {
		return nil, rerr
	}
	_, result, err := l.loadCanonical(canonical)
	return result, err
}

// loadCanonical runs the Parsing -> Executing -> Ready state machine for
// canonical, returning both its collected exports and its main block's
// evaluated result (nil if it declares no main block, the ordinary case
// for a library module reached only via import).
func (l *Loader) loadCanonical(canonical string) (*value.Dict, value.Value, *nerrors.NaabError) {
	l.mu.Lock()
	if e, ok := l.cache[canonical]; ok {
		switch e.state {
		case stateReady:
			l.mu.Unlock()
			return e.exports, nil, nil
		case stateExecuting, stateParsing:
			chain := append(append([]string{}, l.stack...), canonical)
			l.mu.Unlock()
			return nil, nil, nerrors.NewError(nerrors.ECircularImport, "module",
				"circular import: "+strings.Join(chain, " -> "))
		}
	}
	l.cache[canonical] = &entry{state: stateParsing}
	l.stack = append(l.stack, canonical)
	l.mu.Unlock()

	defer l.popStack()

	prog, ev, result, verr := l.parseAndRun(canonical)
	if verr != nil {
		l.mu.Lock()
		delete(l.cache, canonical)
		l.mu.Unlock()
		return nil, nil, verr
	}

	exports := exportsOf(prog, ev)
	l.mu.Lock()
	l.cache[canonical].state = stateReady
	l.cache[canonical].exports = exports
	l.mu.Unlock()
	return exports, result, nil
}

func (l *Loader) popStack() {
	l.mu.Lock()
	if len(l.stack) > 0 {
		l.stack = l.stack[:len(l.stack)-1]
	}
	l.mu.Unlock()
}

// parseAndRun reads, parses, and evaluates canonical's top level, marking
// it Executing in the cache for the duration (spec §4.5 step 3).
func (l *Loader) parseAndRun(canonical string) (*ast.Program, *eval.Evaluator, value.Value, *nerrors.NaabError) {
	info, statErr := os.Stat(canonical)
	if statErr != nil {
		return nil, nil, nil, nerrors.NewError(nerrors.EImport, "module", "cannot stat module: "+canonical)
	}
	if info.Size() > MaxFileSize {
		return nil, nil, nil, nerrors.NewError(nerrors.EInputSize, "module", "module file exceeds the 10 MB size cap: "+canonical)
	}
	content, readErr := os.ReadFile(canonical)
	if readErr != nil {
		return nil, nil, nil, nerrors.NewError(nerrors.EImport, "module", "cannot read module: "+canonical)
	}
	for _, ln := range strings.Split(string(content), "\n") {
		if utf8.RuneCountInString(ln) > lexer.MaxLineLength {
			return nil, nil, nil, nerrors.NewError(nerrors.EInputSize, "module", "module has a line over the 10000-character line length cap: "+canonical)
		}
	}

	lex := lexer.New(string(lexer.Normalize(content)), canonical)
	p := parser.New(lex, canonical)
	prog, perrs := p.Parse()
	if len(perrs) > 0 {
		return nil, nil, nil, perrs[0]
	}
	prog.Path = canonical

	l.mu.Lock()
	if e, ok := l.cache[canonical]; ok {
		e.state = stateExecuting
	}
	l.mu.Unlock()

	ev := eval.New(l.registry, canonical)
	ev.Importer = l
	result, err := ev.RunProgram(prog)
	if err != nil {
		return nil, nil, nil, err
	}
	return prog, ev, result, nil
}

// exportsOf collects the union of exported functions, struct declarations,
// and enum declarations (spec §4.5) into a dict keyed by their declared
// name. naab's grammar has no top-level variable declaration outside a
// function or main body, so "exported variables" from the spec's wording
// has no concrete syntax to apply to here; see DESIGN.md.
func exportsOf(prog *ast.Program, ev *eval.Evaluator) *value.Dict {
	d := value.NewDict()
	for _, fd := range prog.Functions {
		if !fd.IsExport {
			continue
		}
		if v, err := ev.Global.Get(fd.Name); err == nil {
			d.Set(fd.Name, v)
		}
	}
	for _, sd := range prog.Structs {
		if !sd.IsExport {
			continue
		}
		if def, ok := ev.StructDefs[sd.Name]; ok {
			d.Set(sd.Name, def)
		}
	}
	for _, en := range prog.Enums {
		if !en.IsExport {
			continue
		}
		for _, v := range en.Variants {
			qualified := en.Name + "." + v.Name
			if def, ok := ev.StructDefs[qualified]; ok {
				d.Set(v.Name, def)
			}
			if cv, err := ev.Global.Get(v.Name); err == nil {
				d.Set(v.Name, cv)
			}
		}
	}
	return d
}
