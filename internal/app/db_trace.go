package app

import (
	"fmt"
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	selectColumnsRegex   = regexp.MustCompile(`^(?i:SELECT) (.+?) (?i:FROM) `)
	placeholderListRegex = regexp.MustCompile(`\(\$(\d+)(?:, \$\d+)*, \$(\d+)\)`)
)

// formatDBQueryForTrace shortens repository statements for span attributes.
// Plain select column lists become a count and bind lists become a range.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if m := selectColumnsRegex.FindStringSubmatchIndex(normalized); m != nil {
		columns := normalized[m[2]:m[3]]
		if strings.Contains(columns, ",") && !strings.ContainsAny(columns, "()*") {
			count := strings.Count(columns, ",") + 1
			normalized = normalized[:m[2]] + fmt.Sprintf("<%d columns>", count) + normalized[m[3]:]
		}
	}
	normalized = placeholderListRegex.ReplaceAllString(normalized, "($$$1..$$$2)")

	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
