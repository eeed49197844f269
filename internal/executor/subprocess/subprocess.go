// Package subprocess implements the generic subprocess executor pattern
// (spec §4.7 "Subprocess pattern (generic)"): a language whose toolchain is
// a command-line binary gets a persistent child process driven over stdin/
// stdout via the polyglot output protocol (§4.7/§6), rather than spawning
// one process per call. Python is the concrete language id this adapter
// wires up; the driver script it feeds the child is itself small enough
// that other line-oriented REPL-capable interpreters (ruby, node without
// goja) could reuse this adapter with a different Command and driver.
package subprocess

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sunholo/naab/internal/marshal"
	"github.com/sunholo/naab/internal/value"
)

// killGracePeriod is how long a timed-out child gets to exit after a
// terminate signal before roundtrip hard-kills it (spec §4.12).
const killGracePeriod = 2 * time.Second

// ReturnSentinel and ErrorSentinel are this adapter's polyglot-output
// protocol markers (spec §6); a line prefixed with one of these carries a
// JSON payload instead of plain log output.
const (
	ReturnSentinel = "@@NAAB_RETURN@@"
	ErrorSentinel  = "@@NAAB_ERROR@@"
	endMarker      = "\x00NAAB_END\x00"
)

// pythonDriver is a minimal read-eval-print loop: it reads source blocks
// terminated by endMarker from stdin, evaluates each as an expression where
// possible (falling back to statement execution), and always answers with
// exactly one sentinel-prefixed JSON line so the Go side never blocks
// waiting for output that isn't coming.
const pythonDriver = `
import sys, json, traceback
ns = {"json": json}
def _naab_loop():
    buf = []
    for line in sys.stdin:
        if line.rstrip("\n") == ` + "\"" + endMarker + "\"" + `:
            src = "".join(buf)
            buf = []
            try:
                try:
                    result = eval(compile(src, "<naab>", "eval"), ns)
                except SyntaxError:
                    exec(compile(src, "<naab>", "exec"), ns)
                    result = ns.get("__naab_result__")
                print("` + ReturnSentinel + `" + json.dumps(result))
            except Exception as e:
                print("` + ErrorSentinel + `" + json.dumps({"message": str(e), "trace": traceback.format_exc()}))
            sys.stdout.flush()
            continue
        buf.append(line)
_naab_loop()
`

// Executor drives one persistent "python3" child process per instance, as
// spec §4.7 requires ("maintains one context per executor instance");
// Close terminates it.
type Executor struct {
	mu         sync.Mutex
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	output     strings.Builder
	started    bool
	closed     bool
	timeout    time.Duration
	structDefs map[string]*value.StructDef
}

var _ value.Executor = (*Executor)(nil)
var _ value.StructAware = (*Executor)(nil)

// SetStructDefs implements value.StructAware: the evaluator calls this each
// time it resolves this executor for an inline-code expression, ahead of
// that expression's Bind/ExecuteWithReturn calls, so a tagged JSON object
// coming back from the child reconstructs as a typed *value.Struct (spec
// §4.8) rather than degrading to a plain Dict.
func (e *Executor) SetStructDefs(defs map[string]*value.StructDef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.structDefs = defs
}

// New constructs an Executor; the child process is started lazily on the
// first Execute/ExecuteWithReturn/Bind/CallFunction call.
func New(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{timeout: timeout}
}

func (e *Executor) Initialized() bool { return e.started && !e.closed }

func (e *Executor) LanguageID() string { return "python" }

func (e *Executor) ensureStarted() error {
	if e.started {
		return nil
	}
	cmd := exec.Command("python3", "-u", "-c", pythonDriver)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("subprocess: cannot open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("subprocess: cannot open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("subprocess: cannot start python3: %w", err)
	}
	e.cmd = cmd
	e.stdin = stdin
	e.stdout = bufio.NewReader(stdout)
	e.started = true
	return nil
}

// Bind implements value.Executor: it defines name in the child's namespace
// as the JSON-decoded form of v, ahead of any inline-code body that
// references it (spec §6's "must be bound inside the foreign runtime
// before evaluating the body").
func (e *Executor) Bind(name string, v value.Value) error {
	doc, nerr := marshal.ToJSON(v)
	if nerr != nil {
		return nerr
	}
	src := name + ` = json.loads(r'''` + escapeTripleQuote(doc) + `''')`
	_, err := e.roundtrip(src)
	return err
}

// Execute runs code for side effects only; any value it produces is
// discarded, but log-line output is still captured.
func (e *Executor) Execute(code string) error {
	_, err := e.roundtrip(code)
	return err
}

// ExecuteWithReturn runs code and returns its value: the driver evaluates
// code as an expression when it parses as one, otherwise executes it as a
// statement block and returns whatever `__naab_result__` it assigned (or
// null).
func (e *Executor) ExecuteWithReturn(code string) (value.Value, error) {
	doc, err := e.roundtrip(code)
	if err != nil {
		return nil, err
	}
	v, nerr := marshal.FromJSON(doc, e.currentStructDefs())
	if nerr != nil {
		return nil, nerr
	}
	return v, nil
}

// CallFunction calls a previously library-mode-defined function by name,
// relying on the driver's persistent namespace across round trips.
func (e *Executor) CallFunction(name string, args []value.Value) (value.Value, error) {
	var parts []string
	for _, a := range args {
		doc, nerr := marshal.ToJSON(a)
		if nerr != nil {
			return nil, nerr
		}
		parts = append(parts, `json.loads(r'''`+escapeTripleQuote(doc)+`''')`)
	}
	src := name + "(" + strings.Join(parts, ", ") + ")"
	doc, err := e.roundtrip(src)
	if err != nil {
		return nil, err
	}
	v, nerr := marshal.FromJSON(doc, e.currentStructDefs())
	if nerr != nil {
		return nil, nerr
	}
	return v, nil
}

// currentStructDefs returns the struct registry snapshot SetStructDefs last
// installed, safe for concurrent use alongside roundtrip.
func (e *Executor) currentStructDefs() map[string]*value.StructDef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.structDefs
}

// roundtrip sends src to the driver and blocks until its sentinel-prefixed
// response line, bounded by e.timeout; any other stdout lines it reads
// along the way are plain log output, appended to the captured buffer.
func (e *Executor) roundtrip(src string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", fmt.Errorf("subprocess: executor is closed")
	}
	if err := e.ensureStarted(); err != nil {
		return "", err
	}

	// Captured locally rather than read from e.stdin/e.stdout inside the
	// goroutine below: a timeout causes e.killAndReset to replace those
	// fields for the next call, and the orphaned goroutine from this call
	// must keep draining the child it was actually started against.
	stdin, stdout := e.stdin, e.stdout

	if _, err := io.WriteString(stdin, src); err != nil {
		return "", fmt.Errorf("subprocess: write failed: %w", err)
	}
	if !strings.HasSuffix(src, "\n") {
		io.WriteString(stdin, "\n")
	}
	if _, err := io.WriteString(stdin, endMarker+"\n"); err != nil {
		return "", fmt.Errorf("subprocess: write end marker failed: %w", err)
	}

	// captured is local to this call, not e.output: if this call times out,
	// the goroutine below keeps draining the killed child's pipe in the
	// background (see killAndReset) and must not touch shared state that a
	// subsequent roundtrip's own goroutine is concurrently writing.
	done := make(chan struct{})
	var line string
	var readErr error
	var captured strings.Builder
	go func() {
		for {
			l, err := stdout.ReadString('\n')
			if err != nil {
				readErr = err
				close(done)
				return
			}
			l = strings.TrimRight(l, "\n")
			if strings.HasPrefix(l, ReturnSentinel) {
				line = strings.TrimPrefix(l, ReturnSentinel)
				close(done)
				return
			}
			if strings.HasPrefix(l, ErrorSentinel) {
				readErr = decodeErrorLine(strings.TrimPrefix(l, ErrorSentinel))
				close(done)
				return
			}
			captured.WriteString(l)
			captured.WriteByte('\n')
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	select {
	case <-done:
		// The goroutine has already closed done, so reading from captured
		// here is race-free: merge its lines into the shared buffer now,
		// while roundtrip still holds e.mu.
		e.output.WriteString(captured.String())
		return line, readErr
	case <-ctx.Done():
		// The child is stuck (e.g. an infinite loop): killAndReset tears
		// it down so the goroutine above unblocks on a closed pipe instead
		// of leaking forever, and so the next roundtrip starts a fresh
		// child and its own stdin/stdout pair rather than racing this
		// call's still-draining goroutine over the same *bufio.Reader.
		// Its captured output is simply discarded.
		e.killAndReset()
		return "", fmt.Errorf("subprocess: %w: exceeded %s", value.ErrTimeout, e.timeout)
	}
}

// killAndReset terminates the current child, giving it killGracePeriod to
// exit after an interrupt signal before a hard Kill (spec §4.12), then
// clears executor state so the next roundtrip's ensureStarted spawns a
// fresh process. Callers must already hold e.mu.
func (e *Executor) killAndReset() {
	if e.cmd != nil && e.cmd.Process != nil {
		e.cmd.Process.Signal(os.Interrupt) //nolint:errcheck
		waited := make(chan struct{})
		go func() { e.cmd.Wait(); close(waited) }()
		select {
		case <-waited:
		case <-time.After(killGracePeriod):
			e.cmd.Process.Kill()
			<-waited
		}
	}
	e.started = false
	e.cmd = nil
	e.stdin = nil
	e.stdout = nil
}

func decodeErrorLine(doc string) error {
	v, nerr := marshal.FromJSON(doc, nil)
	if nerr != nil {
		return fmt.Errorf("subprocess: foreign error (undecodable): %s", doc)
	}
	d, ok := v.(*value.Dict)
	if !ok {
		return fmt.Errorf("subprocess: foreign error: %s", doc)
	}
	msg, _ := d.Get("message")
	trace, _ := d.Get("trace")
	return fmt.Errorf("%s\n%s", value.ToDisplayString(msg), value.ToDisplayString(trace))
}

// DrainCapturedOutput returns and clears every non-sentinel stdout line
// seen since the last drain.
func (e *Executor) DrainCapturedOutput() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.output.String()
	e.output.Reset()
	return out
}

// Close terminates the child process, waiting up to e.timeout for a clean
// exit before killing it.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.started {
		e.closed = true
		return nil
	}
	e.closed = true
	e.stdin.Close()
	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(e.timeout):
		e.cmd.Process.Kill()
		<-done
	}
	return nil
}

func escapeTripleQuote(s string) string {
	return strings.ReplaceAll(s, `'''`, `\'\'\'`)
}
