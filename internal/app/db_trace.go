package app

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxTracedQueryLength = 768

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Matches a run of at least four positional placeholders, as produced by id list lookups.
	placeholderRunRegex = regexp.MustCompile(`\$(\d+)(?:, \$\d+){2,}, \$(\d+)`)
)

// formatDBQueryForTrace flattens a query for span attributes. Long placeholder
// lists from player lookups collapse to "$first, ..., $last" so the statement
// stays readable, and the result is cut to maxTracedQueryLength bytes.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderRunRegex.ReplaceAllString(normalized, "$$$1, ..., $$$2")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(normalized[cut]) {
		cut--
	}
	return normalized[:cut] + "..."
}
