package users

import (
	"strings"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/validation"
)

// MaxBioLength is the maximum bio length in characters.
const MaxBioLength = 300

// IsEmail reports whether value has the shape local@domain.tld.
func IsEmail(value string) bool {
	return validation.IsEmail(value)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseBirthday accepts a calendar date or an RFC 3339 timestamp. Empty clears it.
func parseBirthday(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.DateOnly, value); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, errs.Field("birthday", "must be a date (YYYY-MM-DD)")
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
