package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arvimal/daisho/internal/query"
	"github.com/arvimal/daisho/internal/record"
)

// Verbs recognized at the prompt.
const (
	VerbAdd     = "add"
	VerbList    = "list"
	VerbEdit    = "edit"
	VerbOpen    = "open"
	VerbRemove  = "rm"
	VerbRestore = "restore"
	VerbDelete  = "del"
	VerbSearch  = "search"
	VerbHelp    = "help"
	VerbQuit    = "quit"
)

// Verbs lists every verb in help order. Used for completion.
var Verbs = []string{
	VerbAdd, VerbList, VerbEdit, VerbOpen, VerbRemove,
	VerbRestore, VerbDelete, VerbSearch, VerbHelp, VerbQuit,
}

// UsageError reports a line that doesn't form a valid command.
// The interpreter answers these with the help text.
type UsageError struct {
	Verb   string // empty when the verb itself is unknown
	Reason string
}

func (e *UsageError) Error() string {
	if e.Verb == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Verb, e.Reason)
}

func usage(verb, format string, args ...any) error {
	return &UsageError{Verb: verb, Reason: fmt.Sprintf(format, args...)}
}

// Parse tokenizes a line on whitespace and validates verb and arity.
func Parse(line string) (Command, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Empty{}, nil
	}

	verb := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch verb {
	case VerbHelp, VerbQuit:
		if len(args) != 0 {
			return nil, usage(verb, "takes no arguments")
		}
		if verb == VerbHelp {
			return Help{}, nil
		}
		return Quit{}, nil
	case VerbList:
		return parseList(args)
	case VerbAdd:
		return parseAdd(args)
	case VerbSearch:
		if len(args) == 0 {
			return nil, usage(verb, "missing keyword")
		}
		c, err := query.Parse(string(query.Keyword), strings.Join(args, " "))
		if err != nil {
			return nil, usage(verb, "%v", err)
		}
		return Search{Criteria: c}, nil
	case VerbEdit, VerbOpen, VerbRemove, VerbRestore, VerbDelete:
		target, err := parseTarget(verb, args)
		if err != nil {
			return nil, err
		}
		switch verb {
		case VerbEdit:
			return Edit{target}, nil
		case VerbOpen:
			return Open{target}, nil
		case VerbRemove:
			return Remove{target}, nil
		case VerbRestore:
			return Restore{target}, nil
		default:
			return Delete{target}, nil
		}
	}
	return nil, usage("", "unknown command %q", tokens[0])
}

func parseList(args []string) (Command, error) {
	if len(args) == 0 {
		return List{Criteria: query.Criteria{Name: query.All}}, nil
	}

	name := query.Name(strings.ToLower(args[0]))
	if name == query.Keyword {
		return nil, usage(VerbList, "use search for keywords")
	}

	var arg string
	if name.NeedsArg() {
		if len(args) != 2 {
			return nil, usage(VerbList, "%s needs exactly one argument", name)
		}
		arg = args[1]
	} else if len(args) != 1 {
		return nil, usage(VerbList, "%s takes no argument", name)
	}

	c, err := query.Parse(string(name), arg)
	if err != nil {
		return nil, usage(VerbList, "%v", err)
	}
	return List{Criteria: c}, nil
}

func parseAdd(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, usage(VerbAdd, "missing kind (note or task)")
	}
	kind, err := record.ParseKind(args[0])
	if err != nil {
		return nil, usage(VerbAdd, "unknown kind %q", args[0])
	}
	return Add{Kind: kind, Body: strings.Join(args[1:], " ")}, nil
}

func parseTarget(verb string, args []string) (Target, error) {
	if len(args) != 2 {
		return Target{}, usage(verb, "expected <note|task> <id>")
	}
	kind, err := record.ParseKind(args[0])
	if err != nil {
		return Target{}, usage(verb, "unknown kind %q", args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return Target{}, usage(verb, "invalid id %q", args[1])
	}
	return Target{Kind: kind, ID: id}, nil
}
