package open

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/dispatch"
	"tableflip.dev/agenda/pkg/normalize"
	"tableflip.dev/agenda/pkg/store"
)

// Open resolves and prints the navigation target for one worklist item:
// an external event link for calendar items, an in-app deep link otherwise.
type Open struct {
	Source      alert.Source
	ID          string
	Persistence store.Persistence
}

func (o *Open) Do(ctx context.Context) error {
	if o.Persistence == nil {
		return errors.New("can not open, no persistence")
	}
	record, ok := o.Persistence.Get(ctx, o.Source.Collection(), o.ID)
	if !ok {
		return fmt.Errorf("no %s record with id %s", o.Source, o.ID)
	}
	item, ok := normalize.One(o.Source, record)
	if !ok {
		return fmt.Errorf("%s record %s has no resolvable due date", o.Source, o.ID)
	}

	link, err := dispatch.NavigationTarget(item)
	if err != nil {
		return err
	}
	fmt.Println(link.String())
	return nil
}
