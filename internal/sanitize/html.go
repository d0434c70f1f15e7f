package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML from user-supplied free text (bios, event titles and
// descriptions) and trims surrounding whitespace. Entities escaped by the
// policy are decoded again so plain text such as "Tom & Jerry" round-trips.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(input)))
}

// TextSlice sanitizes each entry and drops the ones left empty.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	sanitized := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if value := Text(input); value != "" {
			sanitized = append(sanitized, value)
		}
	}
	return sanitized
}
