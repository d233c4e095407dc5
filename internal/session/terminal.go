package session

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/arvimal/daisho/internal/command"
	"github.com/arvimal/daisho/internal/query"
	"github.com/arvimal/daisho/internal/record"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

// Terminal is a line editor with history and tab completion.
type Terminal struct {
	state       *liner.State
	historyPath string
}

// NewTerminal takes over the terminal and loads history from historyPath.
// A missing history file is not an error.
func NewTerminal(historyPath string) (*Terminal, error) {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(Complete)

	if historyPath != "" {
		f, err := os.Open(historyPath)
		switch {
		case err == nil:
			_, _ = state.ReadHistory(f)
			f.Close()
		case !os.IsNotExist(err):
			state.Close()
			return nil, fmt.Errorf("reading history: %w", err)
		}
	}
	return &Terminal{state: state, historyPath: historyPath}, nil
}

func (t *Terminal) ReadLine(prompt string) (string, error) {
	line, err := t.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrInterrupted
	}
	return line, err
}

func (t *Terminal) AppendHistory(line string) {
	t.state.AppendHistory(line)
}

// Close saves history and restores the terminal.
func (t *Terminal) Close() error {
	var saveErr error
	if t.historyPath != "" {
		f, err := os.Create(t.historyPath)
		if err != nil {
			saveErr = fmt.Errorf("writing history: %w", err)
		} else {
			_, _ = t.state.WriteHistory(f)
			saveErr = f.Close()
		}
	}
	return errors.Join(t.state.Close(), saveErr)
}

// NewReader returns a Terminal when in is an interactive terminal and a
// Plain reader otherwise.
func NewReader(in *os.File, historyPath string) (LineReader, error) {
	if isatty.IsTerminal(in.Fd()) && liner.TerminalSupported() {
		return NewTerminal(historyPath)
	}
	return NewPlain(in, nil), nil
}

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// targetVerbs take a kind as their first argument.
var targetVerbs = []string{
	command.VerbAdd, command.VerbEdit, command.VerbOpen,
	command.VerbRemove, command.VerbRestore, command.VerbDelete,
}

// Complete returns completions for the verb or its first argument.
func Complete(line string) []string {
	fields := strings.Fields(line)
	trailingSpace := strings.HasSuffix(line, " ")

	switch {
	case len(fields) == 0:
		return withPrefix("", command.Verbs)
	case len(fields) == 1 && !trailingSpace:
		return withPrefix("", matching(command.Verbs, fields[0]))
	case len(fields) > 2 || (len(fields) == 2 && trailingSpace):
		return nil
	}

	verb := strings.ToLower(fields[0])
	word := ""
	if len(fields) == 2 {
		word = fields[1]
	}

	var candidates []string
	switch {
	case verb == command.VerbList:
		for _, n := range query.ListNames {
			candidates = append(candidates, string(n))
		}
	case slices.Contains(targetVerbs, verb):
		candidates = []string{string(record.KindNote), string(record.KindTask)}
	}
	return withPrefix(fields[0]+" ", matching(candidates, word))
}

func matching(candidates []string, prefix string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func withPrefix(prefix string, words []string) []string {
	if len(words) == 0 {
		return nil
	}
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = prefix + w
	}
	return out
}
