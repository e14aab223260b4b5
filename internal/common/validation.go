package common

import (
	"strings"
	"time"
)

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// AfterToday reports whether day falls on a calendar day after now, both taken in now's location.
func AfterToday(day, now time.Time) bool {
	y, m, d := now.Date()
	endOfToday := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return !day.In(now.Location()).Before(endOfToday)
}

// FieldErrors collects per-field validation messages; the first message for a field wins.
type FieldErrors map[string]string

func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// Err returns a ValidationError carrying the collected messages, or nil when there are none.
func (f FieldErrors) Err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return NewValidationError(message, f)
}
