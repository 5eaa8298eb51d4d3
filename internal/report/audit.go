// Package report collects per-row audit entries and the run summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Entry is one audited row: a row that was skipped, downgraded or flagged
// as a duplicate, with the reason and enough context to find it again.
type Entry struct {
	Line           int
	ImportIdentity string
	Reason         string
	Detail         string
}

// Audit reasons.
const (
	ReasonBadDate            = "bad-date"
	ReasonFutureDate         = "future-date"
	ReasonBadAmount          = "bad-amount"
	ReasonBadKind            = "bad-kind"
	ReasonMissingAccount     = "missing-account"
	ReasonDuplicate          = "duplicate"
	ReasonUnresolvedAccount  = "unresolved-account"
	ReasonTransferDowngraded = "transfer-downgraded"
	ReasonTransferNoPayee    = "transfer-no-payee"
)

// Header is the CSV header of an audit file.
const Header = "line,import_identity,reason,detail"

const (
	numFields   = 4
	colLine     = 0
	colIdentity = 1
	colReason   = 2
	colDetail   = 3
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colLine] = strconv.Itoa(e.Line)
	row[colIdentity] = e.ImportIdentity
	row[colReason] = e.Reason
	row[colDetail] = e.Detail
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	line, err := strconv.Atoi(record[colLine])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing line number %q: %w", record[colLine], err)
	}

	return Entry{
		Line:           line,
		ImportIdentity: record[colIdentity],
		Reason:         record[colReason],
		Detail:         record[colDetail],
	}, nil
}

// Audit accumulates entries in scan order.
type Audit struct {
	entries []Entry
}

// Add records one audited row.
func (a *Audit) Add(line int, identity, reason, detail string) {
	a.entries = append(a.entries, Entry{
		Line:           line,
		ImportIdentity: identity,
		Reason:         reason,
		Detail:         detail,
	})
}

// Entries returns all recorded entries in scan order.
func (a *Audit) Entries() []Entry { return a.entries }

// Len returns the number of recorded entries.
func (a *Audit) Len() int { return len(a.entries) }

// WriteFile writes the audit as a CSV file, header included. An existing
// file is replaced; each run is a full load, not an increment.
func (a *Audit) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating audit file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range a.entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return cw.Error()
}

// Read loads an audit file written by WriteFile.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audit file: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
