// Package feed merges the live per-source record feeds into one normalized
// item list and recomputes the categorized worklist whenever any source's
// snapshot changes.
package feed

import (
	"fmt"
	"os"
	"sync"
	"time"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/categorize"
	"tableflip.dev/agenda/pkg/normalize"
	"tableflip.dev/agenda/pkg/store"
)

// UpdateFunc receives one source's latest decrypted batch. Adapters call it
// on their own schedule and in any order; each call replaces that source's
// snapshot wholesale.
type UpdateFunc func(source alert.Source, records []store.Record)

// Aggregator keeps the latest snapshot per source and exposes categorized
// recomputations. Categorization itself is pure; the aggregator only owns
// the snapshots and listener plumbing.
type Aggregator struct {
	mu        sync.Mutex
	snapshots map[alert.Source][]alert.Item
	listeners []func(categorize.Result)

	// calendarSeen latches once the calendar source delivers a non-empty
	// snapshot and stays set for the life of the aggregator, even if a
	// later snapshot empties.
	calendarSeen bool

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{
		snapshots: make(map[alert.Source][]alert.Item),
		Now:       time.Now,
	}
}

// Update normalizes a source batch, replaces that source's snapshot, and
// pushes a fresh recomputation to every listener. Malformed records are
// dropped by normalization; a drop never aborts the cycle.
func (a *Aggregator) Update(source alert.Source, records []store.Record) {
	items := normalize.Normalize(source, records)
	if dropped := len(records) - len(items); dropped > 0 {
		fmt.Fprintf(os.Stderr, "feed: %s: dropped %d record(s) without a resolvable date\n", source, dropped)
	}

	a.mu.Lock()
	a.snapshots[source] = items
	if source == alert.SourceCalendar && len(items) > 0 {
		a.calendarSeen = true
	}
	listeners := append([]func(categorize.Result){}, a.listeners...)
	now := a.Now()
	result := categorize.Categorize(a.mergedLocked(), now)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(result)
	}
}

// Notify registers a listener invoked with the categorized result after
// every snapshot change.
func (a *Aggregator) Notify(fn func(categorize.Result)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Items returns the merged normalized item list across all sources.
func (a *Aggregator) Items() []alert.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mergedLocked()
}

// Recompute runs categorization over the current merged snapshot.
func (a *Aggregator) Recompute() categorize.Result {
	a.mu.Lock()
	merged := a.mergedLocked()
	now := a.Now()
	a.mu.Unlock()
	return categorize.Categorize(merged, now)
}

// HasCalendarItems reports whether the calendar source has ever delivered a
// non-empty snapshot this session. The bit never clears: a mirror that
// empties later still counts as having produced data.
func (a *Aggregator) HasCalendarItems() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calendarSeen
}

func (a *Aggregator) mergedLocked() []alert.Item {
	merged := make([]alert.Item, 0)
	for _, source := range alert.AllSources() {
		merged = append(merged, a.snapshots[source]...)
	}
	return merged
}
