package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/arvimal/daisho/internal/export"
	"github.com/arvimal/daisho/internal/query"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportTrash  bool
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatYAML, "Output format (yaml, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().BoolVar(&exportTrash, "trash", true, "Include trashed records")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all records",
	Long: `Export all records as YAML or JSON.

Examples:
  daisho export
  daisho export --format json
  daisho export --trash=false -o backup.yml`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if !export.ValidFormat(exportFormat) {
		exitWithError(ExitError, "unknown format: %s (valid: %v)", exportFormat, export.Formats)
	}

	cfg := mustLoadConfig()
	a := mustOpenApp(sessionContext(cmd.Context()), cfg)
	defer a.Close()

	all, err := a.store.All()
	if err != nil {
		return fmt.Errorf("listing records: %w", err)
	}
	recs := slices.Collect(all)
	if !exportTrash {
		recs = query.Filter(slices.Values(recs), query.Criteria{Name: query.All}, time.Now())
	}
	doc := export.NewDocument(recs, time.Now())

	if exportOutput == "" {
		return export.Write(os.Stdout, doc, exportFormat)
	}

	if err := writeExportFile(exportOutput, doc, exportFormat); err != nil {
		return err
	}
	if humanOutput {
		fmt.Printf("Exported %d records to %s\n", doc.Count, exportOutput)
	} else {
		outputJSON(ExportResponse{Status: "exported", Path: exportOutput, Format: exportFormat, Count: doc.Count})
	}
	return nil
}

func writeExportFile(path string, doc export.Document, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(f, doc, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
