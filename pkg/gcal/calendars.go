package gcal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const calendarsFile = "calendars.json"

// CalendarList is the persisted set of subscribed external calendar
// identifiers. Unlike every other piece of user data, it is stored as plain
// JSON under the config dir, matching the system this reimplements; see
// DESIGN.md for the privacy flag on that choice.
type CalendarList struct {
	mu   sync.Mutex
	ids  []string
	path string
}

// LoadCalendarList reads the subscribed calendar ids, starting empty when
// the file does not exist yet.
func LoadCalendarList() (*CalendarList, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	list := &CalendarList{path: filepath.Join(dir, calendarsFile)}
	data, err := os.ReadFile(list.path)
	if err != nil {
		if os.IsNotExist(err) {
			return list, nil
		}
		return nil, fmt.Errorf("gcal: read calendar list: %w", err)
	}
	if err := json.Unmarshal(data, &list.ids); err != nil {
		return nil, fmt.Errorf("gcal: decode calendar list: %w", err)
	}
	return list, nil
}

// IDs returns a copy of the subscribed identifiers.
func (l *CalendarList) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}

// Add subscribes an identifier. Reports whether the list changed.
func (l *CalendarList) Add(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.ids {
		if existing == id {
			return false, nil
		}
	}
	l.ids = append(l.ids, id)
	sort.Strings(l.ids)
	return true, l.saveLocked()
}

// Remove unsubscribes an identifier. Reports whether the list changed.
func (l *CalendarList) Remove(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.ids {
		if existing == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			return true, l.saveLocked()
		}
	}
	return false, nil
}

func (l *CalendarList) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("gcal: calendar list dir: %w", err)
	}
	data, err := json.MarshalIndent(l.ids, "", "  ")
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("gcal: save calendar list: %w", err)
	}
	return os.Rename(tmp, l.path)
}
