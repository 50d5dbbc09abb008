// Package timeutil handles the compact duration notation used on the
// command line ("1w", "3d", "1w2d6h") and renders relative distances to a
// due instant.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the horizon used when no window is given.
const DefaultWindow = "2w"

var (
	segmentPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	units          = map[string]time.Duration{
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
		"w": 7 * 24 * time.Hour,
	}
)

// ParseWindow parses a compact duration string and returns the duration
// along with its canonical rendering. Empty input falls back to
// DefaultWindow.
func ParseWindow(input string) (time.Duration, string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		trimmed = DefaultWindow
	}

	total := time.Duration(0)
	remaining := trimmed
	for len(remaining) > 0 {
		matches := segmentPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("invalid duration segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid duration value %q: %w", matches[1], err)
		}
		base, ok := units[matches[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported duration unit %q (use w, d, h, or m)", matches[2])
		}
		total += time.Duration(value) * base
		remaining = remaining[len(matches[0]):]
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("duration must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders a duration in the same compact notation ParseWindow
// accepts, largest unit first.
func FormatWindow(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	ordered := []struct {
		label string
		value time.Duration
	}{
		{"w", 7 * 24 * time.Hour},
		{"d", 24 * time.Hour},
		{"h", time.Hour},
		{"m", time.Minute},
	}

	var parts []string
	remaining := d.Round(time.Minute)
	for _, u := range ordered {
		if remaining < u.value {
			continue
		}
		count := remaining / u.value
		remaining -= count * u.value
		parts = append(parts, fmt.Sprintf("%d%s", count, u.label))
	}
	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, "")
}

// Until renders the distance from now to a due instant: "in 2d6h" ahead,
// "3h overdue" behind, "now" within a minute either way.
func Until(now, then time.Time) string {
	d := then.Sub(now).Round(time.Minute)
	switch {
	case d >= time.Minute:
		return "in " + FormatWindow(d)
	case d <= -time.Minute:
		return FormatWindow(-d) + " overdue"
	default:
		return "now"
	}
}
