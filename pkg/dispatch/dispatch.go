// Package dispatch routes generic worklist actions back to the collection
// an item came from, using explicit per-source tables rather than
// conditional chains so every source is visibly handled.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/store"
)

var (
	// ErrNotCompletable marks sources whose records have no completion flag.
	ErrNotCompletable = errors.New("dispatch: source does not support complete")
	// ErrNotSnoozable marks sources whose schedule is not owned locally.
	ErrNotSnoozable = errors.New("dispatch: source does not support snooze")
)

// Writer is the slice of persistence the dispatcher needs: merge-style
// upserts addressed by collection and id. Writes that fail must surface to
// the caller; a user-initiated action never fails silently.
type Writer interface {
	Upsert(collection, id string, fields store.Record) error
}

// Dispatcher applies complete and snooze actions to the originating store.
type Dispatcher struct {
	Writer Writer
}

// Complete marks the item done in its source collection. Only tasks and
// reminders carry a completion field; anything else returns
// ErrNotCompletable and the UI simply does not offer the action.
func (d *Dispatcher) Complete(ctx context.Context, item alert.Item) error {
	fields, ok := completions[item.Source]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotCompletable, item.Source)
	}
	payload := clone(item.Original)
	for k, v := range fields {
		payload[k] = v
	}
	if err := d.Writer.Upsert(item.Source.Collection(), item.ID, payload); err != nil {
		return fmt.Errorf("dispatch: complete %s: %w", item.Key(), err)
	}
	return nil
}

// Snooze advances the item's due date by one calendar day and writes it to
// the source-specific date field. AddDate rolls month and year boundaries
// (Jan 31 becomes Feb 1). Returns the new due instant.
func (d *Dispatcher) Snooze(ctx context.Context, item alert.Item) (time.Time, error) {
	route, ok := snoozeRoutes[item.Source]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotSnoozable, item.Source)
	}
	newDate := item.Date.AddDate(0, 0, 1)

	payload := clone(item.Original)
	for _, field := range strippedFields {
		delete(payload, field)
	}
	if item.Source == alert.SourceTask {
		// Snoozing must never double as marking the task complete.
		delete(payload, "completed")
	}
	payload[route.DateField] = alert.FormatTime(newDate)

	if err := d.Writer.Upsert(route.Collection, item.ID, payload); err != nil {
		return time.Time{}, fmt.Errorf("dispatch: snooze %s: %w", item.Key(), err)
	}
	return newDate, nil
}

// NavigationTarget resolves the deep link for an item. Calendar items open
// their external event link; internal sources resolve through the per-source
// route table. Pure function of (source, id); performing the navigation is
// the caller's business.
func NavigationTarget(item alert.Item) (Link, error) {
	if item.Source == alert.SourceCalendar {
		link, _ := item.Original["link"].(string)
		if link == "" {
			return Link{}, fmt.Errorf("dispatch: calendar item %s has no event link", item.ID)
		}
		return Link{External: true, URL: link}, nil
	}

	route, ok := navRoutes[item.Source]
	if !ok {
		return Link{}, fmt.Errorf("dispatch: no navigation target for source %s", item.Source)
	}
	link := Link{Path: route.path}
	switch {
	case route.detail:
		link.Path = fmt.Sprintf("%s/%s", route.path, item.ID)
	case route.editFlag:
		link.Query = map[string][]string{"edit": {item.ID}}
	case route.tab != "":
		link.Query = map[string][]string{"tab": {route.tab}, "id": {item.ID}}
	}
	return link, nil
}

// String renders the link the way the CLI reports it.
func (l Link) String() string {
	if l.External {
		return l.URL
	}
	if len(l.Query) == 0 {
		return l.Path
	}
	return fmt.Sprintf("%s?%s", l.Path, l.Query.Encode())
}

func clone(record store.Record) store.Record {
	out := make(store.Record, len(record)+1)
	for k, v := range record {
		out[k] = v
	}
	return out
}
