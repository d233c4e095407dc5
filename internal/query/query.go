// Package query filters and orders record snapshots. It holds no state.
package query

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/arvimal/daisho/internal/record"
)

// ErrUnsupportedCriteria is returned for unknown or incomplete criteria.
var ErrUnsupportedCriteria = errors.New("unsupported criteria")

// Name identifies a criterion.
type Name string

const (
	All      Name = "all"
	Today    Name = "today"
	Tomorrow Name = "tomorrow"
	Tags     Name = "tags"
	Prio     Name = "prio"
	Trash    Name = "trash"
	Keyword  Name = "keyword"
)

// ListNames are the criteria reachable through the list command, in help order.
var ListNames = []Name{All, Today, Tomorrow, Tags, Prio, Trash}

// Criteria is a validated filter. Build it with Parse.
type Criteria struct {
	Name     Name
	Arg      string          // tag label or keyword
	Priority record.Priority // set for Prio
}

// NeedsArg reports whether a criterion takes an argument.
func (n Name) NeedsArg() bool {
	return n == Tags || n == Prio || n == Keyword
}

// Parse validates a criterion name and its argument.
func Parse(name, arg string) (Criteria, error) {
	n := Name(strings.ToLower(strings.TrimSpace(name)))
	arg = strings.TrimSpace(arg)

	switch n {
	case All, Today, Tomorrow, Trash:
		if arg != "" {
			return Criteria{}, fmt.Errorf("%w: %s takes no argument", ErrUnsupportedCriteria, n)
		}
		return Criteria{Name: n}, nil
	case Tags:
		label := record.NormalizeTag(arg)
		if label == "" {
			return Criteria{}, fmt.Errorf("%w: tags needs a label", ErrUnsupportedCriteria)
		}
		return Criteria{Name: n, Arg: label}, nil
	case Prio:
		p, err := record.ParsePriority(arg)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: prio needs low, medium or high", ErrUnsupportedCriteria)
		}
		return Criteria{Name: n, Arg: p.String(), Priority: p}, nil
	case Keyword:
		if arg == "" {
			return Criteria{}, fmt.Errorf("%w: keyword needs a search term", ErrUnsupportedCriteria)
		}
		return Criteria{Name: n, Arg: arg}, nil
	}
	return Criteria{}, fmt.Errorf("%w: %q", ErrUnsupportedCriteria, name)
}

// String renders the criteria for logs, e.g. "keyword(proj)".
func (c Criteria) String() string {
	if c.Arg == "" {
		return string(c.Name)
	}
	return fmt.Sprintf("%s(%s)", c.Name, c.Arg)
}

// Match reports whether a record satisfies the criteria. now anchors the
// date-based criteria to a calendar day in now's location.
func (c Criteria) Match(r record.Record, now time.Time) bool {
	switch c.Name {
	case All:
		return r.Status == record.StatusActive
	case Today:
		return dueOn(r, now)
	case Tomorrow:
		y, m, d := now.Date()
		return dueOn(r, time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()))
	case Tags:
		return r.Status == record.StatusActive && r.HasTag(c.Arg)
	case Prio:
		return r.Status == record.StatusActive && r.IsTask() && r.Priority == c.Priority
	case Trash:
		return r.Status == record.StatusTrashed
	case Keyword:
		return r.Status == record.StatusActive && containsFold(r, c.Arg)
	}
	return false
}

// dueOn matches active tasks due on day. Notes have no due date and never match.
func dueOn(r record.Record, day time.Time) bool {
	return r.Status == record.StatusActive && r.IsTask() && r.Due != nil && record.SameDay(*r.Due, day)
}

func containsFold(r record.Record, substr string) bool {
	needle := strings.ToLower(substr)
	if strings.Contains(strings.ToLower(r.Body), needle) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Filter returns the matching records ordered by creation time, then id.
func Filter(records iter.Seq[record.Record], c Criteria, now time.Time) []record.Record {
	var out []record.Record
	for r := range records {
		if c.Match(r, now) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, record.Compare)
	return out
}
