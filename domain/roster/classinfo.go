package roster

import (
	"regexp"
	"strings"
)

var sectionPattern = regexp.MustCompile(`^(.*)\s\((.*)\)$`)

// ExtractClassInfo splits "Name (CODE)" into its parts. Input that does not
// end in a parenthesized group becomes the class name verbatim, untrimmed.
func ExtractClassInfo(input string) ClassInfo {
	match := sectionPattern.FindStringSubmatch(input)
	if match == nil {
		return ClassInfo{ClassName: input}
	}
	return ClassInfo{
		ClassName:    strings.TrimSpace(match[1]),
		ClassCode:    strings.TrimSpace(match[2]),
		HasClassCode: true,
	}
}

// SectionCandidate picks the section text the report header is built from.
// Rows 0 and 1 each overwrite the candidate when they carry the key, so a
// second row wins over the first even when both are non-empty.
func SectionCandidate(rows []RawRow, sectionHeader string) string {
	candidate := ""
	for i := 0; i < len(rows) && i < 2; i++ {
		if v, ok := rows[i].Get(sectionHeader); ok {
			candidate = v
		}
	}
	return candidate
}
