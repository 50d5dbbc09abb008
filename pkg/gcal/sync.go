package gcal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/store"
)

// Event is one mirrored calendar entry. The mirror is persisted encrypted
// through the same store every other collection uses, so the worklist reads
// calendar data back like any other source feed.
type Event struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Date       alert.Timestamp `json:"date"`
	Location   string          `json:"location,omitempty"`
	Link       string          `json:"link,omitempty"`
	CalendarID string          `json:"calendarId"`
	SyncedAt   alert.Timestamp `json:"syncedAt"`
}

// Sync fetches upcoming events for each calendar id and replaces that
// calendar's slice of the mirror wholesale. Per-calendar failures are
// collected and aggregated into one non-fatal error signal; a failing
// calendar never aborts the others and never revokes sign-in. A sync
// requested while one is in flight is dropped.
func (m *Manager) Sync(ctx context.Context, calendarIDs []string) error {
	if m.syncing {
		fmt.Fprintf(os.Stderr, "gcal: sync already in flight, dropping request\n")
		return nil
	}
	m.syncing = true
	m.transition(StateSyncing)
	defer func() {
		m.syncing = false
		if m.signedIn {
			m.transition(StateSignedIn)
		}
	}()

	var failures []error
	for _, id := range calendarIDs {
		events, err := m.fetch(ctx, id)
		if err != nil {
			failures = append(failures, fmt.Errorf("calendar %s: %w", id, err))
			continue
		}
		if err := m.mirror.Replace(ctx, id, events); err != nil {
			failures = append(failures, fmt.Errorf("calendar %s: %w", id, err))
		}
	}

	m.lastErr = errors.Join(failures...)
	return m.lastErr
}

// fetchGoogle is the production fetch: upcoming events for one calendar,
// expanded to single instances.
func (m *Manager) fetchGoogle(ctx context.Context, calendarID string) ([]Event, error) {
	if m.srv == nil {
		return nil, fmt.Errorf("gcal: not signed in")
	}
	now := time.Now()
	list, err := m.srv.Events.List(calendarID).
		Context(ctx).
		TimeMin(now.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: list events: %w", err)
	}

	events := make([]Event, 0, len(list.Items))
	for _, item := range list.Items {
		if item == nil || item.Start == nil {
			continue
		}
		start, ok := parseEventStart(item.Start.DateTime, item.Start.Date)
		if !ok {
			continue
		}
		events = append(events, Event{
			ID:         item.Id,
			Title:      item.Summary,
			Date:       alert.Timestamp{Time: start},
			Location:   item.Location,
			Link:       item.HtmlLink,
			CalendarID: calendarID,
			SyncedAt:   alert.Timestamp{Time: now},
		})
	}
	return events, nil
}

func parseEventStart(dateTime, date string) (time.Time, bool) {
	if dateTime != "" {
		if t, err := time.Parse(time.RFC3339, dateTime); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if date != "" {
		// All-day events carry a bare date; pin them to local midnight.
		if t, err := time.ParseInLocation("2006-01-02", date, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Mirror is the persisted encrypted copy of fetched events, stored in the
// calendar collection and replaced per calendar id on each sync cycle.
type Mirror struct {
	p store.Persistence
}

const mirrorCollection = "calendar"

func NewMirror(p store.Persistence) *Mirror {
	return &Mirror{p: p}
}

// Replace swaps one calendar's slice of the mirror for the fetched events,
// keyed by external event id so re-running with unchanged upstream data
// leaves the mirror identical.
func (mr *Mirror) Replace(ctx context.Context, calendarID string, events []Event) error {
	records := make([]store.Record, 0, len(events))
	for _, ev := range events {
		records = append(records, eventRecord(ev))
	}
	return mr.p.ReplaceMatching(ctx, mirrorCollection, matchCalendar(calendarID), records)
}

// Clear drops one calendar's slice of the mirror.
func (mr *Mirror) Clear(ctx context.Context, calendarID string) error {
	return mr.p.ReplaceMatching(ctx, mirrorCollection, matchCalendar(calendarID), nil)
}

// Events reads the mirrored entries back, all calendars merged.
func (mr *Mirror) Events(ctx context.Context) []store.Record {
	return mr.p.List(ctx, mirrorCollection)
}

func matchCalendar(calendarID string) func(store.Record) bool {
	return func(r store.Record) bool {
		owner, _ := r["calendarId"].(string)
		return owner == calendarID
	}
}

func eventRecord(ev Event) store.Record {
	record := store.Record{
		"id":         ev.ID,
		"title":      ev.Title,
		"date":       ev.Date.String(),
		"calendarId": ev.CalendarID,
		"syncedAt":   ev.SyncedAt.String(),
	}
	if ev.Location != "" {
		record["location"] = ev.Location
	}
	if ev.Link != "" {
		record["link"] = ev.Link
	}
	return record
}
