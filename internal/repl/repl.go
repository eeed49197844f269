// Package repl implements naab's optional interactive REPL (spec SPEC_FULL
// §12), grounded on the teacher's internal/repl: a peterh/liner prompt loop
// with history, command completion, and colorized output, re-pointed at
// this repo's lexer/parser/eval pipeline instead of the teacher's own
// typed-core evaluator.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/naab/internal/eval"
	"github.com/sunholo/naab/internal/executor"
	"github.com/sunholo/naab/internal/lexer"
	"github.com/sunholo/naab/internal/logging"
	"github.com/sunholo/naab/internal/parser"
	"github.com/sunholo/naab/internal/value"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

var commands = []string{":help", ":quit", ":reset", ":history"}

// REPL is one interactive session: a single long-lived Evaluator so
// variables and functions defined at one prompt stay visible at the next,
// matching the spec's "library mode" persistence for foreign runtimes.
type REPL struct {
	log     logging.Logger
	eval    *eval.Evaluator
	history []string
}

// New constructs a REPL with a fresh Evaluator backed by its own executor
// Registry (no foreign-language executors registered; language blocks
// typed at the prompt raise E_NO_EXECUTOR, same as a script run without one).
func New(log logging.Logger) *REPL {
	return &REPL{
		log:  log,
		eval: eval.New(executor.NewRegistry(), "<repl>"),
	}
}

// Run starts the prompt loop against stdin/stdout.
func (r *REPL) Run() {
	r.Start(os.Stdin, os.Stdout)
}

func historyPath() string {
	return filepath.Join(os.TempDir(), ".naab_history")
}

// Start reads from in and writes to out, looping until EOF or :quit.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	r.log.Debug("repl session starting, history at %s", historyPath())

	if f, err := os.Open(historyPath()); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(true)
	line.SetCompleter(func(partial string) (c []string) {
		if !strings.HasPrefix(partial, ":") {
			return nil
		}
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, partial) {
				c = append(c, cmd)
			}
		}
		return c
	})

	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))

	for {
		input, err := line.Prompt("naab> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(input, out) {
				break
			}
			continue
		}

		r.evalLine(input, out)
	}

	if f, err := os.Create(historyPath()); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand runs a colon-command, returning true if the session should end.
func (r *REPL) handleCommand(input string, out io.Writer) bool {
	switch strings.Fields(input)[0] {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case ":help", ":h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help      show this help")
		fmt.Fprintln(out, "  :quit      exit the REPL")
		fmt.Fprintln(out, "  :reset     discard all bindings and start fresh")
		fmt.Fprintln(out, "  :history   show this session's input history")
	case ":reset":
		r.eval = eval.New(executor.NewRegistry(), "<repl>")
		fmt.Fprintln(out, cyan("environment reset"))
	case ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%3d  %s\n", i+1, h)
		}
	default:
		fmt.Fprintf(out, "%s: unknown command %q\n", yellow("warning"), input)
	}
	return false
}

// evalLine parses input as a standalone program and runs its main block
// (or, for declaration-only input, registers the declarations and reports
// what was defined).
func (r *REPL) evalLine(input string, out io.Writer) {
	lex := lexer.New(wrapAsMain(input), "<repl>")
	p := parser.New(lex, "<repl>")
	prog, errs := p.Parse()
	if len(errs) > 0 {
		fmt.Fprintf(out, "%s: %v\n", red("parse error"), errs[0])
		return
	}

	result, err := r.eval.EvalTopLevel(prog)
	if err != nil {
		fmt.Fprintf(out, "%s: %s\n", red("error"), err.Error())
		return
	}
	if result != nil && result.Type() != "unit" {
		fmt.Fprintf(out, "%s : %s\n", cyan(value.ToDisplayString(result)), yellow(result.Type()))
	}
}

// wrapAsMain lets the REPL accept bare expressions and statements by
// wrapping input in an implicit main block when it doesn't already declare
// one of its own top-level forms.
func wrapAsMain(input string) string {
	trimmed := strings.TrimSpace(input)
	for _, kw := range []string{"func ", "export ", "struct ", "enum ", "import ", "main "} {
		if strings.HasPrefix(trimmed, kw) {
			return input
		}
	}
	return "main {\n" + input + "\n}"
}
