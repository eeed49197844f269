// Package executor hosts the registry that maps a language id to the
// value.Executor instance responsible for running it (spec §4.6). The
// interface itself lives in internal/value so value.Block can reference one
// without pulling this package (or internal/eval) into an import cycle; this
// package only ever imports internal/value.
package executor

import (
	"sync"

	"github.com/sunholo/naab/internal/value"
)

// Registry owns one Executor per language id, lazily initialized by a
// Factory the first time that language is used (spec §4.6's "executors are
// constructed on first use and reused for the remainder of the process").
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	execs     map[string]value.Executor
}

// Factory constructs a fresh Executor for a language id.
type Factory func() (value.Executor, error)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		execs:     make(map[string]value.Executor),
	}
}

// Register associates a language id with the factory used to build its
// Executor. Call this once per supported language during host startup.
func (r *Registry) Register(language string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[language] = f
}

// Get returns the Executor for language, constructing and caching it via
// the registered Factory on first use. Returns ok=false if no factory was
// registered for language (the caller raises E_NO_EXECUTOR).
func (r *Registry) Get(language string) (exec value.Executor, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, found := r.execs[language]; found {
		return e, true, nil
	}
	f, found := r.factories[language]
	if !found {
		return nil, false, nil
	}
	e, err := f()
	if err != nil {
		return nil, true, err
	}
	r.execs[language] = e
	return e, true, nil
}

// Languages returns every language id with a registered factory, used by
// "did you mean?" suggestions when an inline-code block names an unknown
// language.
func (r *Registry) Languages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.factories))
	for lang := range r.factories {
		out = append(out, lang)
	}
	return out
}

// CloseAll closes every constructed executor, ignoring individual errors
// beyond collecting the first one, used at host shutdown.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for _, e := range r.execs {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
