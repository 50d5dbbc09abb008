package alert

import (
	"fmt"
	"strings"
)

// Source identifies the collection kind an item originated from.
type Source string

const (
	SourceTask                Source = "task"
	SourceNote                Source = "note"
	SourceMarkdown            Source = "markdown"
	SourceChecklist           Source = "checklist"
	SourceCounter             Source = "counter"
	SourceFinanceSubscription Source = "finance_subscription"
	SourceFinanceBill         Source = "finance_bill"
	SourceReminder            Source = "reminder"
	SourceCalendar            Source = "calendar"
)

// AllSources returns every supported source kind.
func AllSources() []Source {
	return []Source{
		SourceTask,
		SourceNote,
		SourceMarkdown,
		SourceChecklist,
		SourceCounter,
		SourceFinanceSubscription,
		SourceFinanceBill,
		SourceReminder,
		SourceCalendar,
	}
}

// ParseSource converts a string to a Source or returns an error for unknown values.
func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllSources() {
		if candidate == s {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("alert: unknown source %q", raw)
}

// Collection returns the backing collection name records of this source live in.
// Both finance variants share one collection; the date field differs, not the home.
func (s Source) Collection() string {
	switch s {
	case SourceTask:
		return "tasks"
	case SourceNote:
		return "notes"
	case SourceMarkdown:
		return "markdown"
	case SourceChecklist:
		return "checklists"
	case SourceCounter:
		return "counters"
	case SourceFinanceSubscription, SourceFinanceBill:
		return "finance"
	case SourceReminder:
		return "reminders"
	case SourceCalendar:
		return "calendar"
	}
	return string(s)
}

func (s Source) String() string {
	return string(s)
}
