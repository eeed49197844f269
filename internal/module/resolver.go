// Package module implements naab's file-based module resolver, loader, and
// state machine (spec §4.5): turning an import specifier into a parsed,
// evaluated module's exports, with circular-import detection and a
// canonical-path cache shared across the whole program run.
package module

import (
	"os"
	"path/filepath"
	"strings"

	nerrors "github.com/sunholo/naab/internal/errors"
)

// ModuleExt is the source file extension naab modules use by convention
// (spec §6); the resolver appends it to any candidate path that lacks it.
const ModuleExt = ".naab"

// Resolver turns an import specifier plus the importing file's path into a
// single canonical file path, trying the search order from spec §4.5/§6:
// relative, then an upward walk for a "naab_modules" directory, then a
// user-scope modules directory, then a system-scope one. Extra paths and
// aliases come from a project's .naabrc (internal/config), added via
// WithSearchPaths/WithAliases.
type Resolver struct {
	extraSearchPaths []string
	aliases          map[string]string
	userScopeDir     string
	systemScopeDir   string
}

// NewResolver builds a Resolver with the default user/system scope
// directories, mirroring the teacher's env-var-first, fallback-second
// convention for locating out-of-project paths.
func NewResolver() *Resolver {
	return &Resolver{
		aliases:        map[string]string{},
		userScopeDir:   userScopeModulesDir(),
		systemScopeDir: systemScopeModulesDir(),
	}
}

// WithSearchPaths appends project-configured search directories, tried
// after the naab_modules upward walk and before the user/system scopes.
func (r *Resolver) WithSearchPaths(paths []string) *Resolver {
	r.extraSearchPaths = append(r.extraSearchPaths, paths...)
	return r
}

// WithAliases registers specifier prefixes (e.g. "std") that rewrite to a
// fixed directory before the rest of resolution runs.
func (r *Resolver) WithAliases(aliases map[string]string) *Resolver {
	for k, v := range aliases {
		r.aliases[k] = v
	}
	return r
}

func userScopeModulesDir() string {
	if p := os.Getenv("NAAB_PATH"); p != "" {
		return p
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".naab", "modules")
	}
	return ""
}

func systemScopeModulesDir() string {
	if p := os.Getenv("NAAB_HOME"); p != "" {
		return filepath.Join(p, "modules")
	}
	return filepath.Join(string(filepath.Separator), "usr", "local", "share", "naab", "modules")
}

// Resolve finds the canonical, symlink-resolved file path for specifier as
// imported from fromFile. fromFile may be empty when resolving a module
// loaded directly by path (e.g. the program's entry file).
func (r *Resolver) Resolve(specifier, fromFile string) (string, *nerrors.NaabError) {
	specifier = r.applyAlias(specifier)

	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		if fromFile == "" {
			return "", nerrors.NewError(nerrors.EImport, "module", "relative import "+specifier+" has no importing file to resolve against")
		}
		candidate := filepath.Join(filepath.Dir(fromFile), specifier)
		return r.canonicalize(candidate, specifier)

	case filepath.IsAbs(specifier):
		return r.canonicalize(specifier, specifier)
	}

	// naab_modules: walk upward from fromFile's directory (or cwd) looking
	// for a sibling "naab_modules/<specifier>".
	if fromFile != "" {
		if path, ok := r.findUpward(filepath.Dir(fromFile), specifier); ok {
			return r.canonicalize(path, specifier)
		}
	} else if path, ok := r.findUpward(".", specifier); ok {
		return r.canonicalize(path, specifier)
	}

	for _, dir := range r.extraSearchPaths {
		candidate := withModuleExt(filepath.Join(dir, specifier))
		if fileExists(candidate) {
			return r.canonicalize(candidate, specifier)
		}
	}

	if r.userScopeDir != "" {
		candidate := withModuleExt(filepath.Join(r.userScopeDir, specifier))
		if fileExists(candidate) {
			return r.canonicalize(candidate, specifier)
		}
	}

	candidate := withModuleExt(filepath.Join(r.systemScopeDir, specifier))
	if fileExists(candidate) {
		return r.canonicalize(candidate, specifier)
	}

	return "", nerrors.NewError(nerrors.EImport, "module", "module not found: "+specifier)
}

func (r *Resolver) applyAlias(specifier string) string {
	for prefix, dir := range r.aliases {
		if specifier == prefix {
			return dir
		}
		if strings.HasPrefix(specifier, prefix+"/") {
			return filepath.Join(dir, strings.TrimPrefix(specifier, prefix+"/"))
		}
	}
	return specifier
}

// findUpward walks from startDir to the filesystem root looking for a
// "naab_modules" directory containing specifier.
func (r *Resolver) findUpward(startDir, specifier string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}
	for {
		candidate := withModuleExt(filepath.Join(dir, "naab_modules", specifier))
		if fileExists(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (r *Resolver) canonicalize(path, specifier string) (string, *nerrors.NaabError) {
	path = withModuleExt(path)
	if !fileExists(path) {
		return "", nerrors.NewError(nerrors.EImport, "module", "module not found: "+specifier+" (looked for "+path+")")
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = resolved
	}
	return filepath.Clean(abs), nil
}

func withModuleExt(path string) string {
	if strings.HasSuffix(path, ModuleExt) {
		return path
	}
	return path + ModuleExt
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
