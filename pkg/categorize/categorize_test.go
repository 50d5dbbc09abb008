package categorize

import (
	"fmt"
	"testing"
	"time"

	"tableflip.dev/agenda/pkg/alert"
)

// 2024-04-01 was a Monday (weekday index 1), so the this_week boundary is
// 6-1 = 5 days out.
var monday = time.Date(2024, time.April, 1, 10, 0, 0, 0, time.Local)

func item(id string, date time.Time) alert.Item {
	return alert.Item{ID: id, Source: alert.SourceTask, Title: id, Date: date}
}

func TestBucketAssignment(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want Bucket
	}{{
		name: "overdue yesterday collapses into today",
		date: monday.AddDate(0, 0, -1),
		want: Today,
	}, {
		name: "overdue earlier this morning",
		date: monday.Add(-2 * time.Hour),
		want: Today,
	}, {
		name: "later today",
		date: monday.Add(8 * time.Hour),
		want: Today,
	}, {
		name: "tomorrow",
		date: monday.AddDate(0, 0, 1),
		want: Tomorrow,
	}, {
		name: "five days out is inside the week boundary",
		date: monday.AddDate(0, 0, 5),
		want: ThisWeek,
	}, {
		name: "six days out crosses into next week",
		date: monday.AddDate(0, 0, 6),
		want: NextWeek,
	}, {
		name: "twelve days out is the next week boundary",
		date: monday.AddDate(0, 0, 12),
		want: NextWeek,
	}, {
		name: "thirteen days out is upcoming",
		date: monday.AddDate(0, 0, 13),
		want: Upcoming,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Categorize([]alert.Item{item("a", tc.date)}, monday)
			if got := result.Counts[tc.want]; got != 1 {
				t.Fatalf("expected item in %s, counts: %v", tc.want, result.Counts)
			}
		})
	}
}

func TestFallBackDayStillCountsOneDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("zone data unavailable")
	}
	restore := time.Local
	time.Local = loc
	defer func() { time.Local = restore }()

	// DST ended 2024-11-03 in this zone, so midnight-to-midnight spans 25
	// hours. The extra hour must not push the next calendar day out of
	// tomorrow.
	now := time.Date(2024, time.November, 3, 10, 0, 0, 0, loc)
	due := time.Date(2024, time.November, 4, 0, 30, 0, 0, loc)
	result := Categorize([]alert.Item{item("a", due)}, now)
	if result.Counts[Tomorrow] != 1 {
		t.Fatalf("next calendar day across the transition, counts: %v", result.Counts)
	}
}

func TestSundayBoundary(t *testing.T) {
	// On a Sunday (weekday 0) the week stretches six days to Saturday.
	sunday := time.Date(2024, time.March, 31, 9, 0, 0, 0, time.Local)
	result := Categorize([]alert.Item{item("sat", sunday.AddDate(0, 0, 6))}, sunday)
	if result.Counts[ThisWeek] != 1 {
		t.Fatalf("six days from Sunday should still be this_week, counts: %v", result.Counts)
	}
}

func TestPartition(t *testing.T) {
	items := make([]alert.Item, 0, 30)
	for i := -5; i < 25; i++ {
		items = append(items, item(fmt.Sprintf("i%d", i), monday.AddDate(0, 0, i).Add(time.Hour)))
	}

	result := Categorize(items, monday)

	total := 0
	seen := make(map[string]bool)
	for _, b := range AllBuckets() {
		for _, it := range result.Buckets[b] {
			if seen[it.Key()] {
				t.Fatalf("item %s appears in more than one bucket", it.Key())
			}
			seen[it.Key()] = true
			total++
		}
		if result.Counts[b] != len(result.Buckets[b]) {
			t.Fatalf("count mismatch for %s: %d vs %d", b, result.Counts[b], len(result.Buckets[b]))
		}
	}
	if total != len(items) {
		t.Fatalf("buckets hold %d items, input had %d", total, len(items))
	}
}

func TestBucketsSortedAscending(t *testing.T) {
	items := []alert.Item{
		item("late", monday.Add(9*time.Hour)),
		item("early", monday.Add(2*time.Hour)),
		item("mid", monday.Add(5*time.Hour)),
	}
	result := Categorize(items, monday)
	today := result.Buckets[Today]
	for i := 1; i < len(today); i++ {
		if today[i].Date.Before(today[i-1].Date) {
			t.Fatalf("today bucket out of order: %v", today)
		}
	}
}

func TestFocusPrefersOverdue(t *testing.T) {
	items := []alert.Item{
		item("upcoming", monday.AddDate(0, 0, 3)),
		item("overdue", monday.AddDate(0, 0, -2)),
		item("today", monday.Add(4*time.Hour)),
	}
	result := Categorize(items, monday)
	if result.Focus == nil || result.Focus.ID != "overdue" {
		t.Fatalf("focus = %v, want the overdue item", result.Focus)
	}
}

func TestFocusFallsBackToSoonest(t *testing.T) {
	items := []alert.Item{
		item("far", monday.AddDate(0, 0, 20)),
		item("near", monday.AddDate(0, 0, 2)),
	}
	result := Categorize(items, monday)
	if result.Focus == nil || result.Focus.ID != "near" {
		t.Fatalf("focus = %v, want the soonest item", result.Focus)
	}
}

func TestFocusNilWhenEmpty(t *testing.T) {
	result := Categorize(nil, monday)
	if result.Focus != nil {
		t.Fatalf("focus = %v, want nil", result.Focus)
	}
}

func TestCategorizeIsPure(t *testing.T) {
	items := []alert.Item{
		item("a", monday.Add(time.Hour)),
		item("b", monday.AddDate(0, 0, 4)),
	}
	first := Categorize(items, monday)
	second := Categorize(items, monday)
	for _, b := range AllBuckets() {
		if first.Counts[b] != second.Counts[b] {
			t.Fatalf("recomputation changed counts for %s", b)
		}
	}
	if items[0].ID != "a" || items[1].ID != "b" {
		t.Fatal("categorize mutated its input")
	}
}
