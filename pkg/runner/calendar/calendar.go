package calendar

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/agenda/pkg/gcal"
	"tableflip.dev/agenda/pkg/store"
)

// manager builds the sync manager and walks it through client loading plus
// a silent token check.
func manager(ctx context.Context, p store.Persistence) (*gcal.Manager, error) {
	if p == nil {
		return nil, errors.New("no persistence")
	}
	list, err := gcal.LoadCalendarList()
	if err != nil {
		return nil, err
	}
	m := gcal.NewManager(p, list)
	m.Initialize(ctx)
	if status := m.Status(); !status.ClientReady {
		return nil, fmt.Errorf("calendar client unavailable: %w", status.LastError)
	}
	m.CheckStoredToken(ctx)
	return m, nil
}

// Connect signs in: silently when a stored token still works, otherwise via
// interactive consent.
type Connect struct {
	Persistence store.Persistence
}

func (c *Connect) Do(ctx context.Context) error {
	m, err := manager(ctx, c.Persistence)
	if err != nil {
		return err
	}
	if m.Status().SignedIn {
		fmt.Println("already connected")
		return nil
	}
	if err := m.RequestAccessToken(ctx); err != nil {
		return fmt.Errorf("authorization did not complete: %w", err)
	}
	fmt.Println("connected")
	return nil
}

// Disconnect clears the stored token. Mirrored events stay visible until
// the next successful sync.
type Disconnect struct {
	Persistence store.Persistence
}

func (d *Disconnect) Do(ctx context.Context) error {
	m, err := manager(ctx, d.Persistence)
	if err != nil {
		return err
	}
	if err := m.Disconnect(); err != nil {
		return err
	}
	fmt.Println("disconnected; cached events remain until the next sync")
	return nil
}

// Sync runs a full resync of every subscribed calendar.
type Sync struct {
	Persistence store.Persistence
}

func (s *Sync) Do(ctx context.Context) error {
	m, err := manager(ctx, s.Persistence)
	if err != nil {
		return err
	}
	status := m.Status()
	if !status.SignedIn {
		return errors.New("not connected; run `agenda calendar connect` first")
	}
	if err := m.Sync(ctx, status.Calendars); err != nil {
		// Partial failures are non-fatal; cached events for the other
		// calendars are untouched.
		fmt.Printf("sync finished with errors: %v\n", err)
		return nil
	}
	fmt.Printf("synced %d calendar(s)\n", len(status.Calendars))
	return nil
}

// Add subscribes a calendar id and resyncs.
type Add struct {
	ID          string
	Persistence store.Persistence
}

func (a *Add) Do(ctx context.Context) error {
	m, err := manager(ctx, a.Persistence)
	if err != nil {
		return err
	}
	if err := m.AddCalendar(ctx, a.ID); err != nil {
		return err
	}
	fmt.Printf("subscribed to %s\n", a.ID)
	return nil
}

// Remove unsubscribes a calendar id and drops its mirrored events.
type Remove struct {
	ID          string
	Persistence store.Persistence
}

func (r *Remove) Do(ctx context.Context) error {
	m, err := manager(ctx, r.Persistence)
	if err != nil {
		return err
	}
	if err := m.RemoveCalendar(ctx, r.ID); err != nil {
		return err
	}
	fmt.Printf("unsubscribed from %s\n", r.ID)
	return nil
}

// List prints the sync session status and subscribed calendars.
type List struct {
	Persistence store.Persistence
}

func (l *List) Do(ctx context.Context) error {
	m, err := manager(ctx, l.Persistence)
	if err != nil {
		return err
	}
	status := m.Status()
	fmt.Printf("state: %s\n", status.State)
	if status.LastError != nil {
		fmt.Printf("last error: %v\n", status.LastError)
	}
	if len(status.Calendars) == 0 {
		fmt.Println("no calendars subscribed")
		return nil
	}
	for _, id := range status.Calendars {
		fmt.Println(id)
	}
	return nil
}
