package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stderr receives error diagnostics in both output modes.
var stderr io.Writer = os.Stderr

// writeError writes an error in the appropriate format (human or JSON) to stderr.
func writeError(msg string) {
	if humanOutput {
		fmt.Fprintf(stderr, "error: %s\n", msg)
		return
	}
	enc := json.NewEncoder(stderr)
	enc.SetIndent("", "  ")
	enc.Encode(ErrorResponse{Error: msg})
}

// exitWithError writes an error to stderr and exits. Only call it before
// the store is opened or after it is closed.
func exitWithError(code int, format string, args ...interface{}) {
	writeError(fmt.Sprintf(format, args...))
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path,omitempty"`
	Backend string `json:"backend,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ExportResponse is the response for export to a file.
type ExportResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Format string `json:"format"`
	Count  int    `json:"count"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
