package events

import (
	"strings"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
)

var (
	ErrInvalidDateTime = errs.Validation("invalid date or time format")
	ErrDateNotFuture   = errs.Field("date", "must be in the future")
)

// ComposeInstant joins a YYYY-MM-DD date and an HH:MM time into a UTC instant.
func ComposeInstant(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, ErrInvalidDateTime
	}
	instant, err := time.Parse(time.RFC3339, date+"T"+clock+":00Z")
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	return instant.UTC(), nil
}

// clockOf returns the HH:MM time of day of t in UTC.
func clockOf(t time.Time) string {
	return t.UTC().Format("15:04")
}

// dateOf returns the YYYY-MM-DD calendar date of t in UTC.
func dateOf(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
