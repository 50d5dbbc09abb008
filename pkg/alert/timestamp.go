package alert

import (
	"encoding/json"
	"fmt"
	"time"
)

// ParseTime parses an RFC3339 instant.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Timestamp wraps time.Time with RFC3339 JSON encoding and day helpers.
type Timestamp struct {
	time.Time
}

func (t Timestamp) SameDay(then time.Time) bool {
	y1, m1, d1 := t.Local().Date()
	y2, m2, d2 := then.Local().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (t *Timestamp) MarshalJSON() ([]byte, error) {
	if t == nil || t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", t)), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var timestamp string
	if err := json.Unmarshal(b, &timestamp); err != nil {
		return err
	}
	var err error
	t.Time, err = ParseTime(timestamp)
	return err
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTime renders an instant the way stored records carry dates.
func FormatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339)
}
