// Package records splits a normalized export into structured rows and
// repairs per-field mojibake and HTML-entity artifacts.
package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerport-dev/ledgerport/internal/sniff"
)

// Row is one data row of the export. Raw holds the original fields in
// column order exactly as decoded, before any repair or trimming; Fields
// maps trimmed header names to repaired values.
type Row struct {
	Line   int
	Raw    []string
	Fields map[string]string
}

// ReadRows parses all data rows of src. Rows whose date field is empty are
// dropped as blank or trailer lines; the second return value counts them.
// A field that cannot be repaired still comes back trimmed, so repair never
// costs a row.
func ReadRows(src sniff.Source, rep *Repairer, dateColumn string) ([]Row, int, error) {
	text := src.Text
	lineOffset := 0
	if src.SkipFirstLine {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
		lineOffset = 1
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = src.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("parsing export: no header line")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("parsing export header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !contains(header, dateColumn) {
		return nil, 0, fmt.Errorf("parsing export header: missing %q column", dateColumn)
	}

	var rows []Row
	dropped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("parsing export row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = rep.Repair(record[i])
			} else {
				fields[name] = ""
			}
		}
		if fields[dateColumn] == "" {
			dropped++
			continue
		}
		rows = append(rows, Row{Line: line + lineOffset, Raw: record, Fields: fields})
	}
	return rows, dropped, nil
}

func contains(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}
