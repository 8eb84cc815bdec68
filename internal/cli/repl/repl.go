package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Executor runs one command line, already split into words.
type Executor func(ctx context.Context, args []string) error

// Option configures a REPL.
type Option func(*REPL)

// WithPrompt sets the prompt.
func WithPrompt(p string) Option {
	return func(r *REPL) { r.prompt = p }
}

// WithHistoryFile persists history at path.
func WithHistoryFile(path string) Option {
	return func(r *REPL) { r.history = NewHistory(path) }
}

// WithCommands sets the command names the executor understands.
func WithCommands(names ...string) Option {
	return func(r *REPL) { r.completer = NewCompleter(names...) }
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	exec      Executor
	prompt    string
	completer *Completer
	history   *History
}

// New creates a REPL reading from in and writing to out.
func New(in io.Reader, out io.Writer, exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     in,
		output:    out,
		exec:      exec,
		prompt:    "shardkv> ",
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until EOF, exit or ctx is done. Command errors are
// printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: save history: %v\n", err)
		}
	}()

	scanner := bufio.NewScanner(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(r.output, r.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.output)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r.history.Add(line)

		args, err := Split(line)
		if err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		if r.dispatch(ctx, args) {
			return nil
		}
	}
}

// dispatch handles the commands the REPL owns and forwards the rest to the
// executor. It reports whether the loop should stop.
func (r *REPL) dispatch(ctx context.Context, args []string) bool {
	name := strings.ToLower(args[0])
	switch name {
	case "exit", "quit":
		return true
	case "help":
		fmt.Fprintf(r.output, "commands: %s\n", strings.Join(r.completer.Commands(), ", "))
		return false
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return false
	}

	if !r.completer.Known(name) {
		fmt.Fprintf(r.output, "error: unknown command %q", args[0])
		if s := r.suggest(name); len(s) > 0 {
			fmt.Fprintf(r.output, " (did you mean: %s)", strings.Join(s, ", "))
		}
		fmt.Fprintln(r.output)
		return false
	}

	args[0] = name
	if err := r.exec(ctx, args); err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
	}
	return false
}

// suggest lists commands sharing the first letter of name.
func (r *REPL) suggest(name string) []string {
	if name == "" {
		return nil
	}
	return r.completer.Complete(name[:1])
}
