package interp

import (
	"fmt"
	"strings"
	"time"

	"github.com/arvimal/daisho/internal/command"
	"github.com/arvimal/daisho/internal/record"
	"github.com/arvimal/daisho/internal/store"
)

// clearValue in an edit prompt removes the current value.
const clearValue = "-"

func (in *Interpreter) ask(label string) (string, error) {
	answer, err := in.prompter.Prompt(label)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return strings.TrimSpace(answer), nil
}

func (in *Interpreter) add(c command.Add) error {
	body := c.Body
	if body == "" {
		var err error
		if body, err = in.ask("Body: "); err != nil {
			return err
		}
		if body == "" {
			return record.ErrEmptyBody
		}
	}

	tags, err := in.ask("Tags (comma separated): ")
	if err != nil {
		return err
	}

	var task store.TaskFields
	if c.Kind == record.KindTask {
		if task, err = in.askTaskFields(); err != nil {
			return err
		}
	}

	rec, err := in.store.Create(c.Kind, body, record.SplitTags(tags), task)
	if err != nil {
		return err
	}
	fmt.Fprintf(in.out, "Created %s %d.\n", rec.Kind, rec.ID)
	return nil
}

func (in *Interpreter) askTaskFields() (store.TaskFields, error) {
	var task store.TaskFields

	due, err := in.ask("Due (YYYY-MM-DD, today, tomorrow; blank for none): ")
	if err != nil {
		return task, err
	}
	if due != "" {
		t, err := record.ParseDue(due, in.now())
		if err != nil {
			return task, err
		}
		task.Due = &t
	}

	prio, err := in.ask(fmt.Sprintf("Priority (low/medium/high) [%s]: ", record.DefaultPriority))
	if err != nil {
		return task, err
	}
	if prio != "" {
		if task.Priority, err = record.ParsePriority(prio); err != nil {
			return task, err
		}
	}
	return task, nil
}

func (in *Interpreter) edit(t command.Target) error {
	rec, err := in.lookup(t)
	if err != nil {
		return err
	}

	var changes store.Changes

	body, err := in.ask(fmt.Sprintf("Body [%s]: ", rec.Body))
	if err != nil {
		return err
	}
	if body != "" && body != rec.Body {
		changes.Body = &body
	}

	tags, err := in.ask(fmt.Sprintf("Tags [%s] ('-' clears): ", strings.Join(rec.Tags, ", ")))
	if err != nil {
		return err
	}
	switch tags {
	case "":
	case clearValue:
		empty := []string{}
		changes.Tags = &empty
	default:
		parsed := record.SplitTags(tags)
		changes.Tags = &parsed
	}

	if rec.IsTask() {
		if err := in.editTaskFields(rec, &changes); err != nil {
			return err
		}
	}

	if changes.IsEmpty() {
		fmt.Fprintln(in.out, "No changes.")
		return nil
	}
	if _, err := in.store.Update(t.ID, changes); err != nil {
		return err
	}
	fmt.Fprintf(in.out, "Updated %s %d.\n", t.Kind, t.ID)
	return nil
}

func (in *Interpreter) editTaskFields(rec record.Record, changes *store.Changes) error {
	current := "none"
	if rec.Due != nil {
		current = record.FormatDue(*rec.Due)
	}
	due, err := in.ask(fmt.Sprintf("Due [%s] ('-' clears): ", current))
	if err != nil {
		return err
	}
	switch due {
	case "":
	case clearValue:
		changes.ClearDue = rec.Due != nil
	default:
		d, err := record.ParseDue(due, in.now())
		if err != nil {
			return err
		}
		changes.Due = &d
	}

	prio, err := in.ask(fmt.Sprintf("Priority [%s]: ", rec.Priority))
	if err != nil {
		return err
	}
	if prio != "" {
		p, err := record.ParsePriority(prio)
		if err != nil {
			return err
		}
		if p != rec.Priority {
			changes.Priority = &p
		}
	}

	done, err := in.ask(fmt.Sprintf("Done [%s] (y/n): ", yesNo(rec.Done)))
	if err != nil {
		return err
	}
	if done != "" {
		d, err := parseYesNo(done)
		if err != nil {
			return err
		}
		if d != rec.Done {
			changes.Done = &d
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected y or n, got %q", record.ErrValidation, s)
}

// dueLabel is shared by list and detail output.
func dueLabel(due *time.Time) string {
	if due == nil {
		return ""
	}
	return "due " + record.FormatDue(*due)
}
