package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gradesheet/domain/roster"
)

const utf8BOM = "\ufeff"

// RosterReader streams CSV roster exports into RawRows
type RosterReader struct {
	// SkipRows drops this many data lines after the header line
	// (e.g. a "Points Possible" line in some gradebook exports).
	SkipRows int
}

// NewRosterReader creates a reader that skips skipRows lines after the header
func NewRosterReader(skipRows int) *RosterReader {
	if skipRows < 0 {
		skipRows = 0
	}
	return &RosterReader{SkipRows: skipRows}
}

// ReadFile opens path and reads it as a roster
func (r *RosterReader) ReadFile(path string) ([]roster.RawRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return r.Read(file)
}

// Read consumes the header line as keys and returns one RawRow per
// remaining record, in input order. An empty stream yields no rows.
func (r *RosterReader) Read(src io.Reader) ([]roster.RawRow, error) {
	readStart := time.Now()
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		headers[i] = h
	}

	var rows []roster.RawRow
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if skipped < r.SkipRows {
			skipped++
			continue
		}
		rows = append(rows, roster.NewRawRow(headers, record))
	}

	log.Printf("[RosterReader] CSV read in %.2fms (%d columns, %d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(headers), len(rows))
	return rows, nil
}
