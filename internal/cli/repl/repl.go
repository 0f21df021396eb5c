package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/sessiongate/internal/cli/screen"
	"github.com/yndnr/sessiongate/internal/guard"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// errQuit ends the loop.
var errQuit = errors.New("quit")

// Config wires a REPL.
type Config struct {
	Screens *screen.App
	Session guard.SessionReader
	Input   io.Reader
	Output  io.Writer
	History *History
	Logger  logger.Logger
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	screens   *screen.App
	session   guard.SessionReader
	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History
	logger    logger.Logger

	// pending is a sensitive field waiting for its value on the next line.
	pending string

	// readerDone closes when the line reader of the last Run has exited.
	readerDone chan struct{}
}

// New creates a REPL over the given screens.
func New(cfg Config) *REPL {
	r := &REPL{
		screens: cfg.Screens,
		session: cfg.Session,
		input:   cfg.Input,
		output:  cfg.Output,
		history: cfg.History,
		logger:  cfg.Logger,
	}
	if r.input == nil {
		r.input = os.Stdin
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	if r.logger == nil {
		r.logger = logger.Default()
	}
	r.completer = NewCompleter(pageNames())
	return r
}

// Run opens the home page, which the guard turns into the login page when
// signed out, then reads commands until exit, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		r.logger.Warn("could not load history", "error", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			r.logger.Warn("could not save history", "error", err)
		}
	}()

	if err := r.navigate(ctx, guard.PathHome); err != nil {
		return err
	}

	// The reader stops at the next line once Run returns. A Scan blocked on
	// input that never arrives cannot be interrupted.
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	r.readerDone = done
	go func() {
		defer close(done)
		defer close(lines)
		scanner := bufio.NewScanner(r.input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		r.printPrompt()

		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.output)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			err := r.handle(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(r.output, "Error: %v\n", err)
			}
		}
	}
}

// handle processes one input line.
func (r *REPL) handle(ctx context.Context, line string) error {
	if r.pending != "" {
		field := r.pending
		r.pending = ""
		return r.screens.Edit(field, line)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	r.history.Add(r.redact(line))
	return r.Execute(ctx, line)
}

// Execute runs a single command line.
func (r *REPL) Execute(ctx context.Context, line string) error {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	switch name {
	case "exit", "quit":
		return errQuit
	case "help", "?":
		r.printHelp()
		return nil
	case "go":
		return r.cmdGo(ctx, args)
	case "set":
		return r.cmdSet(args)
	case "show":
		return r.cmdShow()
	case "submit":
		return r.cmdSubmit(ctx)
	case "profile":
		return r.cmdProfile(ctx)
	case "logout":
		return r.cmdLogout(ctx)
	case "status":
		return r.cmdStatus()
	case "complete":
		for _, s := range r.Complete(args) {
			fmt.Fprintln(r.output, s)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q (type 'help')", name)
	}
}

// Complete returns suggestions for a partial line.
func (r *REPL) Complete(line string) []string {
	var fields []string
	if f := r.screens.Form(); f != nil {
		fields = f.Fields()
	}
	return r.completer.Complete(line, fields)
}

func (r *REPL) printPrompt() {
	if r.pending != "" {
		fmt.Fprintf(r.output, "%s: ", screen.Label(r.pending))
		return
	}
	fmt.Fprintf(r.output, "sessiongate:%s> ", r.screens.Current())
}

// redact hides values of sensitive fields before they reach history.
func (r *REPL) redact(line string) string {
	name, args, _ := strings.Cut(line, " ")
	if name != "set" {
		return line
	}
	field, value, _ := strings.Cut(strings.TrimSpace(args), " ")
	f := r.screens.Form()
	if value == "" || f == nil || !f.IsSensitive(field) {
		return line
	}
	return "set " + field + " ****"
}
