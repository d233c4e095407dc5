package main

import (
	"errors"
	"os"
	"strings"

	"github.com/arvimal/daisho/internal/command"
	"github.com/arvimal/daisho/internal/record"
	"github.com/arvimal/daisho/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec <command...>",
	Short: "Run one prompt command and exit",
	Long: `Run one prompt command without starting the interactive prompt.

Follow-up questions (body, tags, due date, ...) are read from stdin.

Examples:
  daisho exec list today
  daisho exec search rent
  printf 'Pay rent\nhome\n2024-01-05\nhigh\n' | daisho exec add task`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	a := mustOpenApp(sessionContext(cmd.Context()), cfg)

	in := a.interpreter(os.Stdout, session.Prompter{Reader: session.NewPlain(os.Stdin, os.Stdout)})
	_, err := in.Run(strings.Join(args, " "))
	code := execExitCode(err)

	if err := a.Close(); err != nil {
		exitWithError(ExitError, "closing store: %v", err)
	}
	if code != ExitSuccess {
		os.Exit(code)
	}
	return nil
}

// execExitCode maps an already reported command error to an exit code.
func execExitCode(err error) int {
	var ue *command.UsageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ue):
		return ExitError
	case errors.Is(err, record.ErrValidation),
		errors.Is(err, record.ErrNotFound),
		errors.Is(err, record.ErrInvalidTransition),
		errors.Is(err, record.ErrImmutableField):
		return ExitDataError
	}
	return exitCodeFor(err)
}
