// Command naab is the host entrypoint: it parses the command line, wires
// together a module.Loader, an executor.Registry, and a .naabrc config
// (internal/config), then either runs a file or starts the interactive REPL.
// Grounded on the teacher's cmd/ailang/main.go flag-based command dispatch
// and color.Color-driven status output.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/sunholo/naab/internal/async"
	"github.com/sunholo/naab/internal/cache"
	"github.com/sunholo/naab/internal/config"
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/executor"
	"github.com/sunholo/naab/internal/executor/embedded"
	"github.com/sunholo/naab/internal/executor/jit"
	"github.com/sunholo/naab/internal/executor/native"
	"github.com/sunholo/naab/internal/executor/subprocess"
	"github.com/sunholo/naab/internal/logging"
	"github.com/sunholo/naab/internal/module"
	"github.com/sunholo/naab/internal/repl"
	"github.com/sunholo/naab/internal/value"
)

// Exit codes (spec §6): 0 success, 1 uncaught thrown value, 2 parse/type/
// import error, 124 top-level timeout.
const (
	exitOK        = 0
	exitThrown    = 1
	exitStaticErr = 2
	exitTimeout   = 124

	defaultTimeout = 30 * time.Second
)

var red = color.New(color.FgRed).SprintFunc()

func main() {
	var (
		verbose     = flag.Bool("v", false, "verbose logging")
		timeoutFlag = flag.Duration("timeout", defaultTimeout, "top-level execution timeout")
		interactive = flag.Bool("i", false, "start the interactive REPL")
	)
	flag.Parse()

	log := logging.Noop
	if *verbose {
		log = logging.NewStderr(true)
	}

	if *interactive || flag.NArg() == 0 {
		repl.New(log).Run()
		return
	}

	os.Exit(runFile(flag.Arg(0), *timeoutFlag, log))
}

// newRegistry wires every executor pattern (spec §4.7) into one Registry:
// embedded (yaegi, "go"), JIT (goja, "js"), subprocess (python3, "python"),
// and compile-and-load (Go plugin, "native").
func newRegistry(cfg *config.Config, c *cache.Cache) *executor.Registry {
	reg := executor.NewRegistry()
	reg.Register("go", func() (value.Executor, error) { return embedded.New(), nil })
	reg.Register("js", func() (value.Executor, error) { return jit.New(timeoutFor(cfg, "js")), nil })
	reg.Register("python", func() (value.Executor, error) { return subprocess.New(timeoutFor(cfg, "python")), nil })
	reg.Register("native", func() (value.Executor, error) { return native.New(c), nil })
	return reg
}

func timeoutFor(cfg *config.Config, lang string) time.Duration {
	if ec, ok := cfg.Executors[lang]; ok && ec.TimeoutMS > 0 {
		return time.Duration(ec.TimeoutMS) * time.Millisecond
	}
	return defaultTimeout
}

func runFile(path string, timeout time.Duration, log logging.Logger) int {
	dir := filepath.Dir(path)
	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("config error"), err)
		return exitStaticErr
	}

	c, err := cache.New(cfg.Cache.Root, cfg.Cache.MaxBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("cache error"), err)
		return exitStaticErr
	}

	reg := newRegistry(cfg, c)
	defer reg.CloseAll()

	resolver := module.NewResolver().WithSearchPaths(cfg.ModulePaths).WithAliases(cfg.Aliases)
	loader := module.NewLoader(resolver, reg)

	log.Info("running %s", path)

	result, rerr := async.Timeout(context.Background(), timeout, func(_ context.Context) (value.Value, error) {
		v, err := loader.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return v, nil
	})

	if rerr != nil {
		var naabErr *nerrors.NaabError
		if e, ok := rerr.(*nerrors.NaabError); ok {
			naabErr = e
		}
		if naabErr != nil {
			fmt.Fprintln(os.Stderr, naabErr.Format(true))
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), rerr)
		}
		switch {
		case naabErr != nil && naabErr.Kind() == nerrors.EThrown:
			return exitThrown
		case naabErr == nil:
			return exitTimeout
		default:
			return exitStaticErr
		}
	}
	if result != nil && result.Type() != "unit" {
		fmt.Println(value.ToDisplayString(result))
	}
	return exitOK
}
