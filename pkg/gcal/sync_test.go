package gcal

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/crypto"
	"tableflip.dev/agenda/pkg/store"
)

type testConfig struct{ path string }

func (c testConfig) BasePath() string { return c.path }
func (c testConfig) User() string     { return "" }
func (c testConfig) KeyHex() string   { return "" }

func testPersistence(t *testing.T) store.Persistence {
	t.Helper()
	cipher, err := crypto.NewAESGCM("6368616e676520746869732070617373776f726420746f206120736563726574")
	if err != nil {
		t.Fatal(err)
	}
	p, err := store.Load(testConfig{path: t.TempDir()}, cipher)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func testCalendarList(t *testing.T, ids ...string) *CalendarList {
	t.Helper()
	list := &CalendarList{path: filepath.Join(t.TempDir(), calendarsFile)}
	for _, id := range ids {
		if _, err := list.Add(id); err != nil {
			t.Fatal(err)
		}
	}
	return list
}

func event(id, calendarID string, date time.Time) Event {
	return Event{
		ID:         id,
		Title:      id,
		Date:       alert.Timestamp{Time: date},
		CalendarID: calendarID,
		SyncedAt:   alert.Timestamp{Time: date},
	}
}

func mirroredIDs(t *testing.T, m *Manager) []string {
	t.Helper()
	records := m.mirror.Events(context.Background())
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r["id"].(string))
	}
	sort.Strings(ids)
	return ids
}

func TestSyncMirrorsEveryCalendar(t *testing.T) {
	m := NewManager(testPersistence(t), testCalendarList(t, "home", "work"))
	m.signedIn = true
	when := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	m.fetch = func(_ context.Context, calendarID string) ([]Event, error) {
		switch calendarID {
		case "work":
			return []Event{event("w1", "work", when), event("w2", "work", when.Add(time.Hour))}, nil
		case "home":
			return []Event{event("h1", "home", when)}, nil
		}
		return nil, nil
	}

	if err := m.Sync(context.Background(), m.calendars.IDs()); err != nil {
		t.Fatal(err)
	}
	if got := mirroredIDs(t, m); !equalStrings(got, []string{"h1", "w1", "w2"}) {
		t.Fatalf("mirror ids = %v", got)
	}
	if m.state != StateSignedIn {
		t.Fatalf("state after sync = %s, want signed_in", m.state)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	m := NewManager(testPersistence(t), testCalendarList(t, "work"))
	m.signedIn = true
	when := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	m.fetch = func(context.Context, string) ([]Event, error) {
		return []Event{event("w1", "work", when)}, nil
	}

	for i := 0; i < 2; i++ {
		if err := m.Sync(context.Background(), m.calendars.IDs()); err != nil {
			t.Fatal(err)
		}
	}
	if got := mirroredIDs(t, m); !equalStrings(got, []string{"w1"}) {
		t.Fatalf("mirror ids after two syncs = %v", got)
	}
}

func TestSyncReplacesStaleEvents(t *testing.T) {
	m := NewManager(testPersistence(t), testCalendarList(t, "work"))
	m.signedIn = true
	when := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)

	upstream := []Event{event("w1", "work", when), event("w2", "work", when)}
	m.fetch = func(context.Context, string) ([]Event, error) { return upstream, nil }
	if err := m.Sync(context.Background(), m.calendars.IDs()); err != nil {
		t.Fatal(err)
	}

	// w2 was cancelled upstream; the next sync must drop it locally.
	upstream = []Event{event("w1", "work", when)}
	if err := m.Sync(context.Background(), m.calendars.IDs()); err != nil {
		t.Fatal(err)
	}
	if got := mirroredIDs(t, m); !equalStrings(got, []string{"w1"}) {
		t.Fatalf("mirror ids = %v", got)
	}
}

func TestSyncPartialFailureKeepsGoing(t *testing.T) {
	m := NewManager(testPersistence(t), testCalendarList(t, "broken", "work"))
	m.signedIn = true
	when := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	m.fetch = func(_ context.Context, calendarID string) ([]Event, error) {
		if calendarID == "broken" {
			return nil, errors.New("quota exceeded")
		}
		return []Event{event("w1", "work", when)}, nil
	}

	err := m.Sync(context.Background(), m.calendars.IDs())
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("err = %v, want the broken calendar named", err)
	}
	if got := mirroredIDs(t, m); !equalStrings(got, []string{"w1"}) {
		t.Fatalf("healthy calendar not mirrored: %v", got)
	}
	if !m.signedIn || m.state != StateSignedIn {
		t.Fatal("partial sync failure revoked sign-in")
	}
}

func TestSyncInFlightDropsRequest(t *testing.T) {
	m := NewManager(testPersistence(t), testCalendarList(t, "work"))
	m.signedIn = true
	called := false
	m.fetch = func(context.Context, string) ([]Event, error) {
		called = true
		return nil, nil
	}

	m.syncing = true
	if err := m.Sync(context.Background(), m.calendars.IDs()); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Fatal("dropped sync still fetched")
	}
	if !m.syncing {
		t.Fatal("dropped sync cleared the in-flight flag")
	}
}

func TestRemoveCalendarClearsItsSlice(t *testing.T) {
	m := NewManager(testPersistence(t), testCalendarList(t, "home", "work"))
	m.signedIn = true
	when := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	m.fetch = func(_ context.Context, calendarID string) ([]Event, error) {
		if calendarID == "work" {
			return []Event{event("w1", "work", when)}, nil
		}
		return []Event{event("h1", "home", when)}, nil
	}
	if err := m.Sync(context.Background(), m.calendars.IDs()); err != nil {
		t.Fatal(err)
	}

	if err := m.RemoveCalendar(context.Background(), "home"); err != nil {
		t.Fatal(err)
	}
	if got := mirroredIDs(t, m); !equalStrings(got, []string{"w1"}) {
		t.Fatalf("mirror ids after remove = %v", got)
	}
	if got := m.calendars.IDs(); !equalStrings(got, []string{"work"}) {
		t.Fatalf("subscribed ids = %v", got)
	}
}

func TestDisconnectKeepsMirror(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	m := NewManager(testPersistence(t), testCalendarList(t, "work"))
	m.signedIn = true
	when := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	m.fetch = func(context.Context, string) ([]Event, error) {
		return []Event{event("w1", "work", when)}, nil
	}
	if err := m.Sync(context.Background(), m.calendars.IDs()); err != nil {
		t.Fatal(err)
	}

	if err := m.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if m.signedIn || m.state != StateSignedOut {
		t.Fatalf("state after disconnect = %s", m.state)
	}
	if got := mirroredIDs(t, m); !equalStrings(got, []string{"w1"}) {
		t.Fatalf("disconnect emptied the mirror: %v", got)
	}
}

func TestEventRecordShape(t *testing.T) {
	when := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	ev := event("e1", "work", when)
	ev.Link = "https://calendar.example/e1"
	ev.Location = "room 4"

	record := eventRecord(ev)
	if record["id"] != "e1" || record["calendarId"] != "work" {
		t.Fatalf("record = %v", record)
	}
	if record["date"] != alert.FormatTime(when) {
		t.Fatalf("date = %v", record["date"])
	}
	if record["link"] != "https://calendar.example/e1" || record["location"] != "room 4" {
		t.Fatalf("record = %v", record)
	}

	bare := eventRecord(event("e2", "work", when))
	if _, ok := bare["link"]; ok {
		t.Fatal("empty link serialized")
	}
	if _, ok := bare["location"]; ok {
		t.Fatal("empty location serialized")
	}
}

func TestParseEventStart(t *testing.T) {
	tests := []struct {
		name     string
		dateTime string
		date     string
		ok       bool
	}{
		{"timed event", "2024-04-02T09:00:00Z", "", true},
		{"all-day event", "", "2024-04-02", true},
		{"garbled datetime", "yesterday-ish", "", false},
		{"nothing", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseEventStart(tc.dateTime, tc.date)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if tc.name == "all-day event" {
				want := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.Local)
				if !got.Equal(want) {
					t.Fatalf("all-day start = %v, want local midnight", got)
				}
			}
		})
	}
}

func TestCalendarListAddRemove(t *testing.T) {
	list := testCalendarList(t)

	changed, err := list.Add("work")
	if err != nil || !changed {
		t.Fatalf("add = %v, %v", changed, err)
	}
	changed, err = list.Add("work")
	if err != nil || changed {
		t.Fatalf("duplicate add = %v, %v", changed, err)
	}

	changed, err = list.Remove("missing")
	if err != nil || changed {
		t.Fatalf("remove of unknown id = %v, %v", changed, err)
	}
	changed, err = list.Remove("work")
	if err != nil || !changed {
		t.Fatalf("remove = %v, %v", changed, err)
	}
	if got := list.IDs(); len(got) != 0 {
		t.Fatalf("ids = %v, want empty", got)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
