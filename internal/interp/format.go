package interp

import (
	"fmt"
	"strings"
	"time"

	"github.com/arvimal/daisho/internal/record"
	"github.com/dustin/go-humanize"
)

// BodyMaxLen is where list output truncates record bodies.
const BodyMaxLen = 60

// formatLine renders a record as one list line, e.g.
//
//	#3  task  [ ] Pay rent  (due 2024-01-05, high)  #home
func formatLine(r record.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%-3d %-4s  ", r.ID, r.Kind)
	if r.IsTask() {
		if r.Done {
			sb.WriteString("[x] ")
		} else {
			sb.WriteString("[ ] ")
		}
	}
	sb.WriteString(truncateString(firstLine(r.Body), BodyMaxLen))

	if r.IsTask() {
		meta := []string{r.Priority.String()}
		if due := dueLabel(r.Due); due != "" {
			meta = append([]string{due}, meta...)
		}
		fmt.Fprintf(&sb, "  (%s)", strings.Join(meta, ", "))
	}
	if len(r.Tags) > 0 {
		sb.WriteString("  #" + strings.Join(r.Tags, " #"))
	}
	return sb.String()
}

// formatDetail renders every field of a record for open.
func formatDetail(r record.Record, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d\n", strings.ToUpper(string(r.Kind[:1]))+string(r.Kind[1:]), r.ID)
	fmt.Fprintf(&sb, "  Status:   %s\n", r.Status)
	if r.IsTask() {
		due := "none"
		if r.Due != nil {
			due = record.FormatDue(*r.Due)
		}
		fmt.Fprintf(&sb, "  Due:      %s\n", due)
		fmt.Fprintf(&sb, "  Priority: %s\n", r.Priority)
		fmt.Fprintf(&sb, "  Done:     %s\n", yesNo(r.Done))
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(&sb, "  Tags:     %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintf(&sb, "  Created:  %s (%s)\n", formatTimestamp(r.CreatedAt), humanize.RelTime(r.CreatedAt, now, "ago", "from now"))
	fmt.Fprintf(&sb, "  Updated:  %s (%s)\n", formatTimestamp(r.UpdatedAt), humanize.RelTime(r.UpdatedAt, now, "ago", "from now"))
	sb.WriteString("\n")
	for _, line := range strings.Split(r.Body, "\n") {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
