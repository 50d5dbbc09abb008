package feed

import (
	"context"
	"fmt"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/store"
)

// The finance collection holds both obligation kinds; the discriminator is
// which date field the record carries. Subscriptions cycle on nextDate,
// bills fall due on dueDate.
func financeKind(record store.Record) alert.Source {
	if _, ok := record["nextDate"]; ok {
		return alert.SourceFinanceSubscription
	}
	return alert.SourceFinanceBill
}

// sourcesFor lists the source kinds fed by one backing collection.
func sourcesFor(collection string) []alert.Source {
	if collection == "finance" {
		return []alert.Source{alert.SourceFinanceSubscription, alert.SourceFinanceBill}
	}
	for _, source := range alert.AllSources() {
		if source.Collection() == collection {
			return []alert.Source{source}
		}
	}
	return nil
}

func allCollections() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, source := range alert.AllSources() {
		c := source.Collection()
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Subscribe wires every source collection in the store to onUpdate: one
// initial snapshot per source, then incremental pushes as the store's watch
// reports changes. The returned cancel stops the subscription; the watch
// runs for the lifetime of the view otherwise.
func Subscribe(ctx context.Context, p store.Persistence, onUpdate UpdateFunc) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	events, err := p.Watch(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("feed: subscribe: %w", err)
	}

	emit := func(collection string) {
		records := p.List(ctx, collection)
		for _, source := range sourcesFor(collection) {
			onUpdate(source, FilterFor(source, records))
		}
	}

	for _, collection := range allCollections() {
		emit(collection)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				switch ev.Type {
				case store.EventCollectionChanged:
					if len(sourcesFor(ev.Collection)) > 0 {
						emit(ev.Collection)
					}
				case store.EventInvalidated:
					for _, collection := range allCollections() {
						emit(collection)
					}
				}
			}
		}
	}()

	return cancel, nil
}

// FilterFor narrows a collection listing to the records belonging to one
// source; only the shared finance collection actually filters.
func FilterFor(source alert.Source, records []store.Record) []store.Record {
	if source != alert.SourceFinanceSubscription && source != alert.SourceFinanceBill {
		return records
	}
	out := make([]store.Record, 0, len(records))
	for _, record := range records {
		if financeKind(record) == source {
			out = append(out, record)
		}
	}
	return out
}
