package storage

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is how calendar dates are stored: sortable ISO days.
const DateLayout = time.DateOnly

// FormatDate renders a calendar date column. The zero time is stored as ''.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate reads a calendar date column back; '' yields the zero time.
// Timestamps written by older rows are truncated to their date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse(DateLayout, value); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", value)
}

// FormatTimestamp renders an instant column in UTC. The zero time is stored as ''.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp reads an instant column back; '' yields the zero time.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
