// Package dates handles the textual day/month/year due-date format and its
// canonical calendar representation.
package dates

import (
	"fmt"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
)

const (
	// InputLayout is the only accepted textual form for due dates
	InputLayout = "02/01/2006"
	// StoreLayout is the canonical calendar string persisted and returned
	StoreLayout = "2006-01-02"
)

// ParseDueDate parses DD/MM/YYYY strictly into a UTC-midnight calendar date.
// Anything else is a validation error, never a permission error.
func ParseDueDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(InputLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date format %q, use DD/MM/YYYY: %w", s, domain.ErrValidation)
	}
	return t, nil
}

// Format renders a calendar date in the canonical store form.
func Format(t time.Time) string {
	return t.UTC().Format(StoreLayout)
}

// FormatInput renders a calendar date back in the DD/MM/YYYY input form.
func FormatInput(t time.Time) string {
	return t.UTC().Format(InputLayout)
}

// DayWindow returns the full UTC day [00:00, +1 day) containing t, used for
// due-date list filtering.
func DayWindow(t time.Time) (from, to time.Time) {
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}
