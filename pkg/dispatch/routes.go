package dispatch

import (
	"net/url"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/store"
)

// snoozeRoute resolves where a snoozed date is written and under which
// field name. Calendar items have no route; their schedule is owned
// upstream.
type snoozeRoute struct {
	Collection string
	DateField  string
}

var snoozeRoutes = map[alert.Source]snoozeRoute{
	alert.SourceTask:                {Collection: "tasks", DateField: "dueDate"},
	alert.SourceNote:                {Collection: "notes", DateField: "dueDate"},
	alert.SourceMarkdown:            {Collection: "markdown", DateField: "dueDate"},
	alert.SourceChecklist:           {Collection: "checklists", DateField: "dueDate"},
	alert.SourceCounter:             {Collection: "counters", DateField: "dueDate"},
	alert.SourceReminder:            {Collection: "reminders", DateField: "datetime"},
	alert.SourceFinanceSubscription: {Collection: "finance", DateField: "nextDate"},
	alert.SourceFinanceBill:         {Collection: "finance", DateField: "dueDate"},
}

// completions maps the sources that support a complete action to the field
// flip each collection expects.
var completions = map[alert.Source]store.Record{
	alert.SourceTask:     {"completed": true},
	alert.SourceReminder: {"isActive": false},
}

// strippedFields are derived or immutable on every collection and must not
// travel with a snooze payload.
var strippedFields = []string{"id", "createdAt", "updatedAt"}

// Link is a resolved navigation target: either an external URL or an
// in-app path with optional query parameters.
type Link struct {
	External bool
	URL      string
	Path     string
	Query    url.Values
}

// navRoute shapes the deep link for one internal source. The three variants
// mirror the app's screens: a detail path, a list with an edit flag, or a
// tabbed page addressed by tab+id.
type navRoute struct {
	path     string
	detail   bool   // append /<id> to path
	editFlag bool   // ?edit=<id>
	tab      string // ?tab=<tab>&id=<id>
}

var navRoutes = map[alert.Source]navRoute{
	alert.SourceTask:                {path: "/tasks", detail: true},
	alert.SourceMarkdown:            {path: "/markdown", detail: true},
	alert.SourceChecklist:           {path: "/checklists", detail: true},
	alert.SourceNote:                {path: "/notes", editFlag: true},
	alert.SourceReminder:            {path: "/reminders", editFlag: true},
	alert.SourceCounter:             {path: "/home", tab: "counters"},
	alert.SourceFinanceSubscription: {path: "/finance", tab: "subscriptions"},
	alert.SourceFinanceBill:         {path: "/finance", tab: "bills"},
}
