package normalize

import (
	"testing"
	"time"

	"tableflip.dev/agenda/pkg/alert"
)

func TestNormalizeDropsUnresolvableDates(t *testing.T) {
	records := []map[string]any{
		{"id": "ok", "title": "write report", "dueDate": "2024-05-01T09:00:00Z"},
		{"id": "no-date", "title": "missing"},
		{"id": "bad-date", "title": "garbled", "dueDate": "not a date"},
		{"title": "no id", "dueDate": "2024-05-01T09:00:00Z"},
		nil,
	}

	items := Normalize(alert.SourceTask, records)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %v", len(items), items)
	}
	if items[0].ID != "ok" {
		t.Fatalf("surviving item = %s, want ok", items[0].ID)
	}
}

func TestNormalizeFinanceFields(t *testing.T) {
	sub := []map[string]any{{"id": "s1", "name": "streaming", "nextDate": "2024-05-10T00:00:00Z"}}
	bill := []map[string]any{{"id": "b1", "name": "electricity", "dueDate": "2024-05-12T00:00:00Z"}}

	subs := Normalize(alert.SourceFinanceSubscription, sub)
	bills := Normalize(alert.SourceFinanceBill, bill)

	if len(subs) != 1 || subs[0].Date.Day() != 10 {
		t.Fatalf("subscription did not resolve nextDate: %v", subs)
	}
	if len(bills) != 1 || bills[0].Date.Day() != 12 {
		t.Fatalf("bill did not resolve dueDate: %v", bills)
	}

	// A subscription record with only a dueDate must not resolve: the
	// field mapping is per source, not best-effort.
	crossed := Normalize(alert.SourceFinanceSubscription, bill)
	if len(crossed) != 0 {
		t.Fatalf("subscription resolved a bill's dueDate: %v", crossed)
	}
}

func TestNormalizeKeepsOriginalVerbatim(t *testing.T) {
	record := map[string]any{
		"id":          "t1",
		"title":       "review",
		"dueDate":     "2024-05-01T09:00:00Z",
		"customField": "survives",
		"nested":      map[string]any{"a": 1},
	}
	items := Normalize(alert.SourceTask, []map[string]any{record})
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	original := items[0].Original
	if original["customField"] != "survives" {
		t.Fatal("original dropped a field the engine does not model")
	}
	if len(original) != len(record) {
		t.Fatalf("original has %d fields, record had %d", len(original), len(record))
	}
}

func TestNormalizeReminderDatetime(t *testing.T) {
	records := []map[string]any{{"id": "r1", "title": "call", "datetime": "2024-06-01T18:30:00Z"}}
	items := Normalize(alert.SourceReminder, records)
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	want := time.Date(2024, time.June, 1, 18, 30, 0, 0, time.UTC)
	if !items[0].Date.Equal(want) {
		t.Fatalf("date = %v, want %v", items[0].Date, want)
	}
}

func TestNormalizeDateShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		ok   bool
	}{
		{"rfc3339", "2024-05-01T09:00:00Z", true},
		{"bare date", "2024-05-01", true},
		{"unix millis", float64(1714554000000), true},
		{"zero millis", float64(0), false},
		{"empty string", "", false},
		{"bool", true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := []map[string]any{{"id": "x", "dueDate": tc.raw}}
			items := Normalize(alert.SourceTask, records)
			if got := len(items) == 1; got != tc.ok {
				t.Fatalf("resolved=%v, want %v", got, tc.ok)
			}
		})
	}
}

func TestNormalizeTitleFallsBackToID(t *testing.T) {
	records := []map[string]any{{"id": "anon", "dueDate": "2024-05-01"}}
	items := Normalize(alert.SourceTask, records)
	if len(items) != 1 || items[0].Title != "anon" {
		t.Fatalf("items = %v, want title falling back to id", items)
	}
}
