package main

import (
	"fmt"

	"github.com/arvimal/daisho/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values in config.yml.

Usage:
  daisho config                     # Show all config
  daisho config backend             # Get specific value
  daisho config backend jsonl       # Set value
  daisho config log-level debug     # Dashes and underscores both work

Keys:
  backend       Store backend (sqlite, jsonl, bolt)
  database      SQLite file name
  records       JSONL file name
  bolt          bbolt file name
  history       Prompt history file name
  log_file      Log file name
  log_level     debug, info, warn, error
  log_encoding  json, console
  prompt        Prompt string

Relative file names resolve inside the daisho home. Changing the backend
does not migrate records; use 'daisho export' first.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			for _, k := range config.Keys {
				v, _ := cfg.Get(k)
				fmt.Printf("%-13s %s\n", k+":", v)
			}
		} else {
			outputJSON(cfg.AsMap())
		}
		return nil
	}

	key := args[0]

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := cfg.Save(); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
