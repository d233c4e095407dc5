package record

import (
	"fmt"
	"strings"
	"time"
)

// Accepted due date layouts, tried in order.
var dueLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
}

// ParseDue parses a due date typed at the prompt. Besides the layouts above it
// understands "today" and "tomorrow" relative to now. Dates are interpreted in
// now's location. Past dates are allowed.
func ParseDue(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	loc := now.Location()
	y, m, d := now.Date()

	switch strings.ToLower(s) {
	case "today":
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	case "tomorrow":
		return time.Date(y, m, d+1, 0, 0, 0, 0, loc), nil
	}

	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid due date %q (use YYYY-MM-DD, YYYY-MM-DD HH:MM, today or tomorrow)", ErrValidation, s)
}

// SameDay reports whether t falls on the calendar day of day, in day's location.
func SameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// FormatDue renders a due date, omitting a midnight time component.
func FormatDue(t time.Time) string {
	t = t.Local()
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}
