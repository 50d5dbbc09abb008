// Package alert defines the normalized representation of a due-date-bearing
// record, regardless of which collection it came from.
package alert

import (
	"fmt"
	"time"
)

// Item is the normalized view of one reminder-bearing record. Items are
// rebuilt from the live source feeds on every cycle and never persisted;
// (Source, ID) is the stable key across recomputations.
type Item struct {
	ID     string
	Source Source
	Title  string
	Date   time.Time

	// Original carries every field of the decrypted source record verbatim
	// so a later partial update can be merged back without discarding data
	// the engine does not model.
	Original map[string]any
}

// Key returns the composite identity of the item.
func (i Item) Key() string {
	return fmt.Sprintf("%s/%s", i.Source, i.ID)
}

// Overdue reports whether the item's due instant has already passed.
// This compares wall-clock instants, not calendar days.
func (i Item) Overdue(now time.Time) bool {
	return i.Date.Before(now)
}
