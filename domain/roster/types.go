// Package roster holds the grade-roster model and the pure matching rules
// applied to it before a report is populated.
package roster

import "strings"

// RawRow is one CSV data line keyed by header. Headers keeps declaration
// order because column resolution walks headers in that order.
type RawRow struct {
	Headers []string
	Values  map[string]string
}

// NewRawRow builds a row from a header line and a record. A repeated header
// keeps its first position and takes the last value; missing trailing cells
// read as empty strings.
func NewRawRow(headers, record []string) RawRow {
	row := RawRow{
		Headers: make([]string, 0, len(headers)),
		Values:  make(map[string]string, len(headers)),
	}
	for i, header := range headers {
		value := ""
		if i < len(record) {
			value = record[i]
		}
		if _, seen := row.Values[header]; !seen {
			row.Headers = append(row.Headers, header)
		}
		row.Values[header] = value
	}
	return row
}

// Get returns the cell under header and whether the row carries that header
func (r RawRow) Get(header string) (string, bool) {
	v, ok := r.Values[header]
	return v, ok
}

// Value returns the cell under header, or "" when absent
func (r RawRow) Value(header string) string {
	return r.Values[header]
}

// ScoreSpec holds the two user-supplied target labels
type ScoreSpec struct {
	ComponentScoreLabel string
	FinalScoreLabel     string
}

// Validate requires both labels to be present after trimming
func (s ScoreSpec) Validate() []string {
	var missing []string
	if strings.TrimSpace(s.ComponentScoreLabel) == "" {
		missing = append(missing, "componentScore")
	}
	if strings.TrimSpace(s.FinalScoreLabel) == "" {
		missing = append(missing, "finalScore")
	}
	return missing
}

// ClassInfo is the class name and optional class code parsed from a section label
type ClassInfo struct {
	ClassName    string `json:"className"`
	ClassCode    string `json:"classCode,omitempty"`
	HasClassCode bool   `json:"hasClassCode"`
}

// ResolvedColumns records which headers satisfied a ScoreSpec. Empty means unresolved.
type ResolvedColumns struct {
	ComponentScore string `json:"componentScore,omitempty"`
	FinalScore     string `json:"finalScore,omitempty"`
}

// Resolve applies ResolveColumn for both labels of spec
func (s ScoreSpec) Resolve(row RawRow) ResolvedColumns {
	var cols ResolvedColumns
	if h, ok := ResolveColumn(row, s.ComponentScoreLabel); ok {
		cols.ComponentScore = h
	}
	if h, ok := ResolveColumn(row, s.FinalScoreLabel); ok {
		cols.FinalScore = h
	}
	return cols
}
