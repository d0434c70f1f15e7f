package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLError describes why a configured URL was rejected.
type URLError struct {
	Field   string
	Message string
	URL     string
}

func (e URLError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// BaseURL checks that raw is an absolute http(s) URL with no query or
// fragment. An empty value is accepted; callers decide whether it is required.
// requireHTTPS is set in production.
func BaseURL(raw, field string, requireHTTPS bool) error {
	if raw == "" {
		return nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return URLError{Field: field, Message: "invalid URL format", URL: raw}
	}

	scheme := strings.ToLower(parsed.Scheme)
	switch {
	case scheme == "":
		return URLError{Field: field, Message: "URL must include a scheme (http:// or https://)", URL: raw}
	case parsed.Host == "":
		return URLError{Field: field, Message: "URL must include a host", URL: raw}
	case scheme != "http" && scheme != "https":
		return URLError{Field: field, Message: "URL scheme must be http or https", URL: raw}
	case requireHTTPS && scheme != "https":
		return URLError{Field: field, Message: "URL must use HTTPS in production", URL: raw}
	case parsed.RawQuery != "":
		return URLError{Field: field, Message: "URL must not contain query parameters", URL: raw}
	case parsed.Fragment != "":
		return URLError{Field: field, Message: "URL must not contain a fragment", URL: raw}
	}
	return nil
}
