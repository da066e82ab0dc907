package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/microcache-go/internal/cli/connection"
)

// Executor sends one frame and returns the response.
type Executor func(ctx context.Context, frame []byte) ([]byte, error)

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	exec      Executor
	prompt    string
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithPrompt sets the prompt.
func WithPrompt(p string) Option {
	return func(r *REPL) {
		r.prompt = p
	}
}

// New creates a new REPL sending lines through exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		exec:      exec,
		prompt:    "microcache> ",
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}
		if err := r.execute(ctx, line); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// execute handles one line. Server errors are printed; only transport
// failures end the loop.
func (r *REPL) execute(ctx context.Context, line string) error {
	verb, _, _ := strings.Cut(line, " ")
	switch verb {
	case "help":
		fmt.Fprintln(r.output, "commands: GET key | SET key length value ttl | DELETE key | STAT | history | exit")
		return nil
	case "history":
		for i, e := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, e)
		}
		return nil
	}

	if !r.completer.Known(verb) {
		fmt.Fprintf(r.output, "unknown command %q", verb)
		if s := r.completer.Complete(verb); len(s) > 0 {
			fmt.Fprintf(r.output, ", did you mean: %s", strings.Join(s, ", "))
		}
		fmt.Fprintln(r.output)
		return nil
	}

	resp, err := r.exec(ctx, []byte(line))
	if err != nil {
		var serr *connection.ServerError
		if errors.As(err, &serr) {
			fmt.Fprintf(r.output, "(error) %s\n", serr.Message)
			return nil
		}
		return err
	}
	fmt.Fprintln(r.output, string(resp))
	return nil
}
