package ids

import (
	"crypto/rand"
	"errors"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidULID       = errors.New("invalid ULID")
	ErrInvalidBaseURL    = errors.New("invalid base URL")
	ErrInvalidEntityPath = errors.New("invalid entity path")
)

// NewULID generates a new ULID string.
func NewULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsULID returns true when value is a valid ULID (case-insensitive Crockford Base32).
func IsULID(value string) bool {
	return ulidRegex.MatchString(strings.TrimSpace(value))
}

// ValidateULID validates a ULID string.
func ValidateULID(value string) error {
	if !IsULID(value) {
		return ErrInvalidULID
	}
	return nil
}

// Normalize upper-cases and trims a ULID so lookups are case-insensitive.
func Normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// ResourceURL builds the absolute API URL of a resource, used for Location headers.
func ResourceURL(baseURL, entityPath, id string) (string, error) {
	if err := ValidateULID(id); err != nil {
		return "", err
	}
	entityPath = strings.Trim(strings.TrimSpace(entityPath), "/")
	if entityPath == "" {
		return "", ErrInvalidEntityPath
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", ErrInvalidBaseURL
	}
	parsed.Path = path.Join("/", parsed.Path, entityPath, Normalize(id))
	return parsed.String(), nil
}
