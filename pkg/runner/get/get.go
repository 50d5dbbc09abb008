package get

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/categorize"
	"tableflip.dev/agenda/pkg/feed"
	"tableflip.dev/agenda/pkg/printers"
	"tableflip.dev/agenda/pkg/store"
	"tableflip.dev/agenda/pkg/timeutil"
)

// Get prints the categorized worklist: one pass over every source
// collection, no live subscription.
type Get struct {
	ShowID      bool
	Bucket      string
	Window      string
	Persistence store.Persistence
}

func (g *Get) Do(ctx context.Context) error {
	if g.Persistence == nil {
		return errors.New("can not get, no persistence")
	}

	agg := feed.New()
	for _, source := range alert.AllSources() {
		records := g.Persistence.List(ctx, source.Collection())
		agg.Update(source, feed.FilterFor(source, records))
	}
	result := agg.Recompute()

	if g.Window != "" {
		window, _, err := timeutil.ParseWindow(g.Window)
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}
		result = withinWindow(result, time.Now().Add(window))
	}

	pp := printers.PrettyPrint{ShowID: g.ShowID}
	fmt.Println("")
	pp.Focus(result.Focus)

	if g.Bucket != "" {
		b := categorize.Bucket(g.Bucket)
		pp.TitleWithCount(b.Title(), result.Counts[b])
		pp.Bucket(result.Buckets[b]...)
		return nil
	}

	for _, b := range categorize.AllBuckets() {
		pp.TitleWithCount(b.Title(), result.Counts[b])
		pp.Bucket(result.Buckets[b]...)
	}
	pp.Summary(result.Counts)
	return nil
}

// withinWindow trims the listing to items due before the horizon. Buckets
// are sorted ascending, so the cut is a prefix.
func withinWindow(result categorize.Result, horizon time.Time) categorize.Result {
	trimmed := categorize.Result{
		Buckets: make(map[categorize.Bucket][]alert.Item, len(result.Buckets)),
		Counts:  make(map[categorize.Bucket]int, len(result.Counts)),
		Focus:   result.Focus,
	}
	for _, b := range categorize.AllBuckets() {
		items := result.Buckets[b]
		cut := len(items)
		for i, item := range items {
			if item.Date.After(horizon) {
				cut = i
				break
			}
		}
		trimmed.Buckets[b] = items[:cut]
		trimmed.Counts[b] = cut
	}
	return trimmed
}
