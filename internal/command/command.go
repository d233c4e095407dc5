// Package command turns REPL input lines into typed commands.
package command

import (
	"github.com/arvimal/daisho/internal/query"
	"github.com/arvimal/daisho/internal/record"
)

// Command is one parsed REPL line. The set of implementations is closed:
// only the types in this file satisfy it.
type Command interface {
	isCommand()
}

// Empty is a blank line.
type Empty struct{}

// Help prints usage.
type Help struct{}

// Quit ends the session.
type Quit struct{}

// Add creates a record. Body is set when given inline on the command line.
type Add struct {
	Kind record.Kind
	Body string
}

// List prints records matching a criterion.
type List struct {
	Criteria query.Criteria
}

// Search lists active records containing a keyword.
type Search struct {
	Criteria query.Criteria // always a keyword criterion
}

// Target addresses one record by kind and id.
type Target struct {
	Kind record.Kind
	ID   int64
}

// Edit changes fields of a record interactively.
type Edit struct{ Target }

// Open shows a record in full.
type Open struct{ Target }

// Remove moves a record to the trash.
type Remove struct{ Target }

// Restore moves a trashed record back to active.
type Restore struct{ Target }

// Delete permanently removes a trashed record.
type Delete struct{ Target }

func (Empty) isCommand()   {}
func (Help) isCommand()    {}
func (Quit) isCommand()    {}
func (Add) isCommand()     {}
func (List) isCommand()    {}
func (Search) isCommand()  {}
func (Edit) isCommand()    {}
func (Open) isCommand()    {}
func (Remove) isCommand()  {}
func (Restore) isCommand() {}
func (Delete) isCommand()  {}
