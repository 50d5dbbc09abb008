package snooze

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/dispatch"
	"tableflip.dev/agenda/pkg/normalize"
	"tableflip.dev/agenda/pkg/store"
)

// Snooze pushes one worklist item's due date forward a day.
type Snooze struct {
	Source      alert.Source
	ID          string
	Persistence store.Persistence
}

func (s *Snooze) Do(ctx context.Context) error {
	if s.Persistence == nil {
		return errors.New("can not snooze, no persistence")
	}
	record, ok := s.Persistence.Get(ctx, s.Source.Collection(), s.ID)
	if !ok {
		return fmt.Errorf("no %s record with id %s", s.Source, s.ID)
	}
	item, ok := normalize.One(s.Source, record)
	if !ok {
		return fmt.Errorf("%s record %s has no resolvable due date", s.Source, s.ID)
	}

	d := dispatch.Dispatcher{Writer: s.Persistence}
	newDate, err := d.Snooze(ctx, item)
	if err != nil {
		return err
	}
	fmt.Printf("snoozed %s until %s\n", item.Title, newDate.Local().Format("Mon Jan 2 15:04"))
	return nil
}
