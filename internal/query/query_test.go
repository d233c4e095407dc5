package query

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/arvimal/daisho/internal/record"
)

var base = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// fixture returns a mixed set of records, deliberately out of order.
func fixture() []record.Record {
	return []record.Record{
		{ID: 5, Kind: record.KindTask, Body: "Pay rent", Tags: []string{"home"}, Status: record.StatusActive,
			CreatedAt: base.Add(4 * time.Hour), Due: day(2024, 1, 5), Priority: record.PriorityHigh},
		{ID: 1, Kind: record.KindNote, Body: "Project kickoff notes", Tags: []string{"work"}, Status: record.StatusActive,
			CreatedAt: base},
		{ID: 2, Kind: record.KindTask, Body: "Water plants", Status: record.StatusTrashed,
			CreatedAt: base.Add(time.Hour), Due: day(2024, 1, 5), Priority: record.PriorityLow},
		{ID: 3, Kind: record.KindTask, Body: "Draft report", Tags: []string{"PROJ-x"}, Status: record.StatusActive,
			CreatedAt: base.Add(2 * time.Hour), Due: day(2024, 1, 6), Priority: record.PriorityMedium},
		{ID: 4, Kind: record.KindNote, Body: "grocery list", Tags: []string{"home"}, Status: record.StatusActive,
			CreatedAt: base.Add(2 * time.Hour)},
		{ID: 6, Kind: record.KindNote, Body: "old project", Status: record.StatusTrashed,
			CreatedAt: base.Add(5 * time.Hour)},
		{ID: 7, Kind: record.KindTask, Body: "gone project", Status: record.StatusDeleted,
			CreatedAt: base.Add(6 * time.Hour), Due: day(2024, 1, 5), Priority: record.PriorityHigh},
	}
}

func ids(recs []record.Record) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func mustParse(t *testing.T, name, arg string) Criteria {
	t.Helper()
	c, err := Parse(name, arg)
	if err != nil {
		t.Fatalf("Parse(%q, %q) error = %v", name, arg, err)
	}
	return c
}

func TestFilter(t *testing.T) {
	jan5 := time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		crit string
		arg  string
		now  time.Time
		want []int64
	}{
		{"all is active only", "all", "", jan5, []int64{1, 3, 4, 5}},
		{"today", "today", "", jan5, []int64{5}},
		{"today next day", "today", "", jan5.AddDate(0, 0, 1), []int64{3}},
		{"tomorrow", "tomorrow", "", jan5, []int64{3}},
		{"tags", "tags", "home", jan5, []int64{4, 5}},
		{"tags case-insensitive", "tags", "HOME", jan5, []int64{4, 5}},
		{"prio high", "prio", "high", jan5, []int64{5}},
		{"prio low excludes trash", "prio", "low", jan5, nil},
		{"trash", "trash", "", jan5, []int64{2, 6}},
		{"keyword body and tags", "keyword", "proj", jan5, []int64{1, 3}},
		{"keyword case-insensitive", "keyword", "RENT", jan5, []int64{5}},
		{"keyword no match", "keyword", "xyz", jan5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustParse(t, tt.crit, tt.arg)
			got := ids(Filter(slices.Values(fixture()), c, tt.now))
			if !slices.Equal(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("Filter(%s) = %v, want %v", c, got, tt.want)
			}
		})
	}
}

func TestFilter_PayRentScenario(t *testing.T) {
	recs := []record.Record{{
		ID: 1, Kind: record.KindTask, Body: "Pay rent", Status: record.StatusActive,
		CreatedAt: base, Due: day(2024, 1, 5), Priority: record.PriorityHigh,
	}}
	c := mustParse(t, "today", "")

	if got := Filter(slices.Values(recs), c, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)); len(got) != 1 {
		t.Errorf("list today on 2024-01-05 = %v, want the task", ids(got))
	}
	if got := Filter(slices.Values(recs), c, time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)); len(got) != 0 {
		t.Errorf("list today on 2024-01-06 = %v, want nothing", ids(got))
	}
}

func TestFilter_OrderingIndependentOfInput(t *testing.T) {
	recs := fixture()
	c := mustParse(t, "all", "")
	want := ids(Filter(slices.Values(recs), c, base))

	slices.Reverse(recs)
	if got := ids(Filter(slices.Values(recs), c, base)); !slices.Equal(got, want) {
		t.Errorf("reversed input gave %v, want %v", got, want)
	}

	// Ties on created_at (ids 3 and 4) break by id.
	i3, i4 := slices.Index(want, 3), slices.Index(want, 4)
	if i3 < 0 || i4 < 0 || i3 > i4 {
		t.Errorf("tie not broken by id: %v", want)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name, arg string
	}{
		{"yesterday", ""},
		{"tags", ""},
		{"prio", "urgent"},
		{"prio", ""},
		{"keyword", "  "},
		{"all", "extra"},
	}

	for _, tt := range tests {
		if _, err := Parse(tt.name, tt.arg); !errors.Is(err, ErrUnsupportedCriteria) {
			t.Errorf("Parse(%q, %q) error = %v, want ErrUnsupportedCriteria", tt.name, tt.arg, err)
		}
	}
}

func TestCriteriaString(t *testing.T) {
	if s := mustParse(t, "keyword", "proj").String(); s != "keyword(proj)" {
		t.Errorf("String() = %q, want keyword(proj)", s)
	}
	if s := mustParse(t, "prio", "h").String(); s != "prio(high)" {
		t.Errorf("String() = %q, want prio(high)", s)
	}
}
