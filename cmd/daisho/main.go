// Package main provides the daisho CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/arvimal/daisho/internal/config"
	"github.com/arvimal/daisho/internal/interp"
	"github.com/arvimal/daisho/internal/session"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// homeFlag overrides the daisho home directory
	homeFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so this is the only place errors are printed.
		exitWithError(exitCodeFor(err), "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "daisho",
	Short: "Personal notes and tasks at an interactive prompt",
	Long: `daisho keeps notes and tasks in a local store and edits them from an
interactive prompt.

Run without arguments to start the prompt. Type 'help' there for commands.
The first run creates the configuration in the daisho home
(--home, $DAISHO_HOME, or $XDG_CONFIG_HOME/daisho).`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
	},
	RunE: runREPL,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "daisho home directory")
	rootCmd.Version = Version
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, err := config.Bootstrap(mustResolveHome(), os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(sessionContext(cmd.Context()), syscall.SIGTERM)
	defer stop()

	return repl(ctx, cfg, stdinReader, os.Stdout, session.IsInteractive(os.Stdin))
}

func stdinReader(historyPath string) (session.LineReader, error) {
	return session.NewReader(os.Stdin, historyPath)
}

// repl opens the store and runs the prompt until quit, end of input, or ctx
// is done. The store is closed on every return path.
func repl(ctx context.Context, cfg *config.Config, newReader func(historyPath string) (session.LineReader, error), out io.Writer, welcome bool) error {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer a.Close()

	reader, err := newReader(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer reader.Close()

	if welcome {
		fmt.Fprint(out, session.Welcome+"\n")
	}

	in := a.interpreter(out, session.Prompter{Ctx: ctx, Reader: reader})
	s := session.New(reader, in, cfg.Prompt, session.WithLogger(a.logger))
	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Ensure interp.Interpreter keeps satisfying session.Evaluator.
var _ session.Evaluator = (*interp.Interpreter)(nil)

func mustResolveHome() string {
	home, err := config.ResolveHome(homeFlag)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return home
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	home := mustResolveHome()
	cfg, err := config.Load(home)
	if err != nil {
		if humanOutput && exitCodeFor(err) == ExitConfigError {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage(home))
		}
		exitWithError(exitCodeFor(err), "loading config: %v", err)
	}
	return cfg
}
