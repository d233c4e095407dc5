package main

import (
	"fmt"

	"github.com/arvimal/daisho/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the daisho home",
	Long: `Initialize the daisho home directory.

Creates:
  <home>/
  ├── config.yml     # Default config (sqlite backend)
  └── history.txt    # Empty prompt history

The store file is created the first time it is opened.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	home := mustResolveHome()

	cfg, err := config.Init(home)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	// Open once so a broken backend path is reported now rather than at first use.
	a := mustOpenApp(sessionContext(cmd.Context()), cfg)
	if err := a.Close(); err != nil {
		exitWithError(ExitError, "closing store: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized daisho in %s\n", home)
		fmt.Printf("  store: %s\n", describeBackend(cfg))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: home, Backend: cfg.Backend})
	}
	return nil
}
