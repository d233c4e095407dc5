// Package record defines the core domain types for notes and tasks.
package record

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Kind distinguishes notes from tasks.
type Kind string

const (
	KindNote Kind = "note"
	KindTask Kind = "task"
)

// ParseKind parses a record kind case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindNote:
		return KindNote, nil
	case KindTask:
		return KindTask, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q (valid: note, task)", ErrValidation, s)
}

// Status is the lifecycle state of a record.
type Status string

const (
	StatusActive  Status = "active"
	StatusTrashed Status = "trashed"
	StatusDeleted Status = "deleted" // terminal; followed by a purge
)

// Record is a persisted note or task.
// Due, Priority and Done are only meaningful for tasks and stay zero on notes.
type Record struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Due      *time.Time `json:"due,omitempty"`
	Priority Priority   `json:"priority,omitempty"`
	Done     bool       `json:"done,omitempty"`
}

// IsTask reports whether the record is a task.
func (r Record) IsTask() bool {
	return r.Kind == KindTask
}

// HasTag reports whether the record carries the given label.
func (r Record) HasTag(label string) bool {
	return slices.Contains(r.Tags, NormalizeTag(label))
}

// Clone returns a deep copy so callers can't alias slice or pointer fields.
func (r Record) Clone() Record {
	c := r
	if r.Tags != nil {
		c.Tags = slices.Clone(r.Tags)
	}
	if r.Due != nil {
		d := *r.Due
		c.Due = &d
	}
	return c
}

// Validate checks the structural invariants of a record.
func (r *Record) Validate() error {
	if r.Kind != KindNote && r.Kind != KindTask {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, r.Kind)
	}
	if strings.TrimSpace(r.Body) == "" {
		return ErrEmptyBody
	}
	if r.Kind == KindNote && (r.Due != nil || r.Priority != 0 || r.Done) {
		return ErrTaskFieldOnNote
	}
	if r.Kind == KindTask && !r.Priority.Valid() {
		return fmt.Errorf("%w: invalid priority %d", ErrValidation, int(r.Priority))
	}
	switch r.Status {
	case StatusActive, StatusTrashed, StatusDeleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidation, r.Status)
	}
	return nil
}

// Less orders records by creation time, then by id.
func Less(a, b Record) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Compare is the three-way form of Less, for slices.SortFunc.
func Compare(a, b Record) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	}
	return 0
}

// NormalizeTag trims and lower-cases a tag label.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags returns a sorted set of non-empty normalized labels.
// Returns nil when no labels remain.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// SplitTags parses a comma separated tag list as typed at the prompt.
func SplitTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}
