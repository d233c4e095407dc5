// Package session runs the read-eval loop over a line reader.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Welcome is printed before the first prompt of an interactive session.
const Welcome = "\nWelcome to Daisho\n"

// ErrInterrupted is returned by ReadLine when the user cancels the line.
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of input after showing prompt. It returns io.EOF
// when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// historian is implemented by readers that keep line history.
type historian interface {
	AppendHistory(line string)
}

// Evaluator runs one input line and reports whether to stop.
type Evaluator interface {
	Eval(line string) (quit bool)
}

// Session ties a reader to an evaluator.
type Session struct {
	reader LineReader
	eval   Evaluator
	prompt string
	logger *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Session showing prompt before each line.
func New(r LineReader, ev Evaluator, prompt string, opts ...Option) *Session {
	s := &Session{reader: r, eval: ev, prompt: prompt, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads and evaluates lines until quit, end of input, or ctx is done.
// End of input is handled as quit. An interrupted line is discarded and the
// prompt shown again. Cancelling ctx returns ctx.Err() even while a read is
// blocked.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session started")
	lines := 0
	defer func() {
		s.logger.Info("session ended", zap.Int("lines", lines))
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := readLine(ctx, s.reader, s.prompt)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrInterrupted):
			continue
		case errors.Is(err, io.EOF):
			s.eval.Eval("quit")
			return nil
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		lines++
		if h, ok := s.reader.(historian); ok && strings.TrimSpace(line) != "" {
			h.AppendHistory(line)
		}
		if s.eval.Eval(line) {
			return nil
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLine reads in a separate goroutine so that ctx can end the wait. A read
// abandoned this way finishes in the background and its line is dropped.
func readLine(ctx context.Context, r LineReader, prompt string) (string, error) {
	done := make(chan readResult, 1)
	go func() {
		line, err := r.ReadLine(prompt)
		done <- readResult{line, err}
	}()

	select {
	case res := <-done:
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Prompter answers sub-prompts from the same reader as the main loop.
// A nil Ctx never cancels.
type Prompter struct {
	Ctx    context.Context
	Reader LineReader
}

// Prompt reads one answer. Cancelling or ending input is returned as an error.
func (p Prompter) Prompt(label string) (string, error) {
	ctx := p.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return readLine(ctx, p.Reader, label)
}
