package roster

import (
	"regexp"
	"strings"
)

// pointsSuffix matches the "(10)" max-points suffix LMS exports append to
// assignment headers.
var pointsSuffix = regexp.MustCompile(`\s*\(\d+\)$`)

// StripPointsSuffix removes one trailing parenthesized run of digits
func StripPointsSuffix(header string) string {
	return pointsSuffix.ReplaceAllString(header, "")
}

// ResolveColumn returns the first header of row, in declaration order, whose
// suffix-stripped and trimmed form equals the trimmed target. Headers are
// not sorted, so the result depends on column order.
func ResolveColumn(row RawRow, target string) (string, bool) {
	target = strings.TrimSpace(target)
	for _, header := range row.Headers {
		if strings.TrimSpace(StripPointsSuffix(header)) == target {
			return header, true
		}
	}
	return "", false
}
