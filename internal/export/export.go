// Package export provides functions to export records to various formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/arvimal/daisho/internal/record"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Formats lists the accepted format names.
var Formats = []string{FormatYAML, FormatJSON}

// Entry is the exported shape of one record.
type Entry struct {
	ID        int64      `json:"id" yaml:"id"`
	Kind      string     `json:"kind" yaml:"kind"`
	Status    string     `json:"status" yaml:"status"`
	Body      string     `json:"body" yaml:"body"`
	Tags      []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Due       *time.Time `json:"due,omitempty" yaml:"due,omitempty"`
	Priority  string     `json:"priority,omitempty" yaml:"priority,omitempty"`
	Done      *bool      `json:"done,omitempty" yaml:"done,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}

// Document is the top level of an export.
type Document struct {
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Count      int       `json:"count" yaml:"count"`
	Records    []Entry   `json:"records" yaml:"records"`
}

// ToEntry converts a record for export. Task fields are omitted for notes.
func ToEntry(r record.Record) Entry {
	e := Entry{
		ID:        r.ID,
		Kind:      string(r.Kind),
		Status:    string(r.Status),
		Body:      r.Body,
		Tags:      r.Tags,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.IsTask() {
		e.Due = r.Due
		e.Priority = r.Priority.String()
		done := r.Done
		e.Done = &done
	}
	return e
}

// NewDocument builds an export of recs taken at now.
func NewDocument(recs []record.Record, now time.Time) Document {
	doc := Document{ExportedAt: now.UTC(), Count: len(recs), Records: make([]Entry, 0, len(recs))}
	for _, r := range recs {
		doc.Records = append(doc.Records, ToEntry(r))
	}
	return doc
}

// Write encodes doc to w in the named format.
func Write(w io.Writer, doc Document, format string) error {
	switch strings.ToLower(format) {
	case FormatYAML, "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown export format: %s (valid: %v)", format, Formats)
}

// ValidFormat reports whether format is accepted by Write.
func ValidFormat(format string) bool {
	f := strings.ToLower(format)
	return f == "" || f == "yml" || slices.Contains(Formats, f)
}
