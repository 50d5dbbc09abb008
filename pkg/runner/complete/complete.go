package complete

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/dispatch"
	"tableflip.dev/agenda/pkg/normalize"
	"tableflip.dev/agenda/pkg/store"
)

// Complete marks one worklist item done in its originating collection.
type Complete struct {
	Source      alert.Source
	ID          string
	Persistence store.Persistence
}

func (c *Complete) Do(ctx context.Context) error {
	if c.Persistence == nil {
		return errors.New("can not complete, no persistence")
	}
	record, ok := c.Persistence.Get(ctx, c.Source.Collection(), c.ID)
	if !ok {
		return fmt.Errorf("no %s record with id %s", c.Source, c.ID)
	}
	item, ok := normalize.One(c.Source, record)
	if !ok {
		return fmt.Errorf("%s record %s has no resolvable due date", c.Source, c.ID)
	}

	d := dispatch.Dispatcher{Writer: c.Persistence}
	if err := d.Complete(ctx, item); err != nil {
		return err
	}
	fmt.Printf("completed %s\n", item.Title)
	return nil
}
