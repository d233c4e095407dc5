// Package interp executes parsed commands against the record store and is the
// one place where store and query errors become user-facing text.
package interp

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/arvimal/daisho/internal/command"
	"github.com/arvimal/daisho/internal/query"
	"github.com/arvimal/daisho/internal/record"
	"github.com/arvimal/daisho/internal/store"
	"go.uber.org/zap"
)

// Farewell is printed when the session ends through quit.
const Farewell = "\nExiting Daisho.\n"

// ErrAborted is returned when a sub-prompt is cancelled or input ends.
var ErrAborted = errors.New("aborted")

// Prompter reads one answer for a sub-prompt.
type Prompter interface {
	Prompt(label string) (string, error)
}

// Interpreter dispatches commands. It keeps no record state between commands.
type Interpreter struct {
	store    *store.Store
	out      io.Writer
	prompter Prompter
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithClock overrides the time source used for date criteria and due parsing.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) { in.now = now }
}

// WithLogger sets the logger for failed commands.
func WithLogger(logger *zap.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// New builds an Interpreter writing to out and asking follow-up questions
// through p.
func New(s *store.Store, out io.Writer, p Prompter, opts ...Option) *Interpreter {
	in := &Interpreter{
		store:    s,
		out:      out,
		prompter: p,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Eval parses and executes one line, reporting any error. It returns true
// when the session should end.
func (in *Interpreter) Eval(line string) bool {
	quit, _ := in.Run(line)
	return quit
}

// Run is Eval that also returns the error it reported.
func (in *Interpreter) Run(line string) (quit bool, err error) {
	cmd, err := command.Parse(line)
	if err != nil {
		in.report(err)
		return false, err
	}
	if err := in.Execute(cmd); err != nil {
		in.report(err)
		return false, err
	}
	_, quit = cmd.(command.Quit)
	return quit, nil
}

// Execute runs a parsed command and returns the store or query error as is.
func (in *Interpreter) Execute(cmd command.Command) error {
	switch c := cmd.(type) {
	case command.Empty:
		return nil
	case command.Help:
		in.printHelp()
		return nil
	case command.Quit:
		fmt.Fprint(in.out, Farewell)
		return nil
	case command.Add:
		return in.add(c)
	case command.List:
		return in.list(c.Criteria)
	case command.Search:
		return in.list(c.Criteria)
	case command.Edit:
		return in.edit(c.Target)
	case command.Open:
		return in.open(c.Target)
	case command.Remove:
		return in.transition(c.Target, record.StatusTrashed, "Moved %s %d to the trash.\n")
	case command.Restore:
		return in.transition(c.Target, record.StatusActive, "Restored %s %d.\n")
	case command.Delete:
		return in.delete(c.Target)
	}
	return fmt.Errorf("unhandled command %T", cmd)
}

func (in *Interpreter) printHelp() {
	fmt.Fprint(in.out, command.HelpText)
}

// targetError is a not-found lookup for a kind and id.
type targetError struct {
	command.Target
}

func (e *targetError) Error() string {
	return fmt.Sprintf("no %s with id %d", e.Kind, e.ID)
}

func (e *targetError) Unwrap() error {
	return record.ErrNotFound
}

// lookup fetches the addressed record; a kind mismatch counts as not found.
func (in *Interpreter) lookup(t command.Target) (record.Record, error) {
	rec, err := in.store.Get(t.ID)
	if errors.Is(err, record.ErrNotFound) || (err == nil && rec.Kind != t.Kind) {
		return record.Record{}, &targetError{t}
	}
	return rec, err
}

func (in *Interpreter) list(c query.Criteria) error {
	all, err := in.store.All()
	if err != nil {
		return err
	}
	recs := query.Filter(all, c, in.now())
	in.logger.Debug("listed records", zap.Stringer("criteria", c), zap.Int("count", len(recs)))
	if len(recs) == 0 {
		fmt.Fprintln(in.out, "No records.")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintln(in.out, formatLine(r))
	}
	return nil
}

func (in *Interpreter) open(t command.Target) error {
	rec, err := in.lookup(t)
	if err != nil {
		return err
	}
	fmt.Fprint(in.out, formatDetail(rec, in.now()))
	return nil
}

func (in *Interpreter) transition(t command.Target, to record.Status, done string) error {
	if _, err := in.lookup(t); err != nil {
		return err
	}
	if _, err := in.store.SetStatus(t.ID, to); err != nil {
		return err
	}
	fmt.Fprintf(in.out, done, t.Kind, t.ID)
	return nil
}

// delete marks a trashed record deleted and purges it.
func (in *Interpreter) delete(t command.Target) error {
	if _, err := in.lookup(t); err != nil {
		return err
	}
	if _, err := in.store.SetStatus(t.ID, record.StatusDeleted); err != nil {
		return err
	}
	if err := in.store.Purge(t.ID); err != nil {
		return err
	}
	fmt.Fprintf(in.out, "Deleted %s %d.\n", t.Kind, t.ID)
	return nil
}

// report translates an error into output. Anything without a specific
// message falls back to the help text.
func (in *Interpreter) report(err error) {
	in.logger.Info("command failed", zap.Error(err))

	var (
		te *record.TransitionError
		nf *targetError
	)
	switch {
	case errors.Is(err, ErrAborted):
		fmt.Fprintln(in.out, "Aborted.")
	case errors.As(err, &nf):
		fmt.Fprintf(in.out, "No %s with id %d.\n", nf.Kind, nf.ID)
	case errors.As(err, &te):
		fmt.Fprintf(in.out, "error: %v\n", err)
		if te.From == record.StatusActive && te.To == record.StatusDeleted {
			fmt.Fprintln(in.out, "hint: use 'rm' to move it to the trash first.")
		}
	case errors.Is(err, record.ErrNotFound),
		errors.Is(err, record.ErrValidation),
		errors.Is(err, record.ErrImmutableField):
		fmt.Fprintf(in.out, "error: %v\n", err)
	default:
		in.printHelp()
	}
}
