// Package categorize assigns alert items to time buckets and selects the
// focus item. Everything in here is a pure function of (items, now) so the
// engine can be re-run on every source update without accumulated state.
package categorize

import (
	"math"
	"sort"
	"time"

	"tableflip.dev/agenda/pkg/alert"
)

// Bucket is one of the five mutually exclusive time categories.
type Bucket string

const (
	Today    Bucket = "today"
	Tomorrow Bucket = "tomorrow"
	ThisWeek Bucket = "this_week"
	NextWeek Bucket = "next_week"
	Upcoming Bucket = "upcoming"
)

// AllBuckets returns the buckets in display order.
func AllBuckets() []Bucket {
	return []Bucket{Today, Tomorrow, ThisWeek, NextWeek, Upcoming}
}

// Title returns the display label for the bucket.
func (b Bucket) Title() string {
	switch b {
	case Today:
		return "Today"
	case Tomorrow:
		return "Tomorrow"
	case ThisWeek:
		return "This Week"
	case NextWeek:
		return "Next Week"
	case Upcoming:
		return "Upcoming"
	}
	return string(b)
}

// Result is the categorized view of one snapshot of items.
type Result struct {
	Buckets map[Bucket][]alert.Item
	Counts  map[Bucket]int

	// Focus is the single most urgent item, or nil when there are no items.
	Focus *alert.Item
}

// Categorize buckets the merged item list relative to now. Every item lands
// in exactly one bucket; overdue items always collapse into Today. Items
// inside each bucket are in ascending date order.
func Categorize(items []alert.Item, now time.Time) Result {
	sorted := make([]alert.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Key() < sorted[j].Key()
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	result := Result{
		Buckets: make(map[Bucket][]alert.Item, len(AllBuckets())),
		Counts:  make(map[Bucket]int, len(AllBuckets())),
	}
	for _, item := range sorted {
		b := bucketFor(item, now)
		result.Buckets[b] = append(result.Buckets[b], item)
		result.Counts[b]++
	}
	result.Focus = focus(sorted, now)
	return result
}

// bucketFor implements the bucket assignment rules, first match wins.
// The week model is Sunday=0 through Saturday=6; this_week spans from
// tomorrow through the upcoming Saturday inclusive.
func bucketFor(item alert.Item, now time.Time) Bucket {
	if item.Date.Before(now) {
		return Today
	}
	days := diffDays(item.Date, now)
	weekRemainder := 6 - int(now.Weekday())
	switch {
	case days == 0:
		return Today
	case days == 1:
		return Tomorrow
	case days <= weekRemainder:
		return ThisWeek
	case days <= weekRemainder+7:
		return NextWeek
	default:
		return Upcoming
	}
}

// diffDays counts local calendar days between now and the item's due
// instant, both truncated to midnight. Rounds rather than ceils: a
// 25-hour fall-back day still counts as one calendar day.
func diffDays(date, now time.Time) int {
	d := midnight(date).Sub(midnight(now))
	return int(math.Round(d.Hours() / 24))
}

func midnight(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// focus picks the earliest urgent item (overdue or due today), falling back
// to the soonest upcoming item. sorted must be in ascending date order.
func focus(sorted []alert.Item, now time.Time) *alert.Item {
	for i := range sorted {
		if sorted[i].Date.Before(now) || bucketFor(sorted[i], now) == Today {
			item := sorted[i]
			return &item
		}
	}
	if len(sorted) > 0 {
		item := sorted[0]
		return &item
	}
	return nil
}
