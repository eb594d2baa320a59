package services

import (
	"strings"
	"time"
)

var acceptedTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// parseOptionalTime parses a client supplied date. Nil or blank yields nil.
func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range acceptedTimeLayouts {
		t, err := time.Parse(layout, strings.TrimSpace(*value))
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
