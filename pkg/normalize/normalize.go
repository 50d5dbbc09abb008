// Package normalize maps raw decrypted records from any source collection
// into alert items. It is a total function: malformed records are filtered,
// never propagated as errors.
package normalize

import (
	"strings"
	"time"

	"tableflip.dev/agenda/pkg/alert"
)

// DateField names the due-date field for a source. The dispatcher relies on
// the same mapping when it writes a snoozed date back, so the two finance
// variants must stay distinct here even though they share a collection.
func DateField(s alert.Source) string {
	switch s {
	case alert.SourceTask, alert.SourceNote, alert.SourceMarkdown,
		alert.SourceChecklist, alert.SourceCounter, alert.SourceFinanceBill:
		return "dueDate"
	case alert.SourceReminder:
		return "datetime"
	case alert.SourceFinanceSubscription:
		return "nextDate"
	case alert.SourceCalendar:
		return "date"
	}
	return "dueDate"
}

var titleFields = []string{"title", "name", "summary"}

// Normalize converts one source's batch of decrypted records into items.
// Records with a missing id or an absent/unparsable due date are dropped;
// everything else is carried through, with the full record retained on
// Original for later write-back.
func Normalize(source alert.Source, records []map[string]any) []alert.Item {
	items := make([]alert.Item, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		id := stringField(record, "id")
		if id == "" {
			continue
		}
		date, ok := parseDate(record[DateField(source)])
		if !ok {
			continue
		}
		items = append(items, alert.Item{
			ID:       id,
			Source:   source,
			Title:    title(record, id),
			Date:     date,
			Original: record,
		})
	}
	return items
}

// One normalizes a single record, reporting whether it survived.
func One(source alert.Source, record map[string]any) (alert.Item, bool) {
	items := Normalize(source, []map[string]any{record})
	if len(items) == 0 {
		return alert.Item{}, false
	}
	return items[0], true
}

func title(record map[string]any, fallback string) string {
	for _, field := range titleFields {
		if v := stringField(record, field); v != "" {
			return v
		}
	}
	return fallback
}

func stringField(record map[string]any, field string) string {
	v, ok := record[field].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate resolves the due instant from whatever shape the source stored.
// JSON decoding hands numbers over as float64 (unix milliseconds).
func parseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)), true
	case int64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(v), true
	default:
		return time.Time{}, false
	}
}
