// Package identity assigns content-derived import identities to source rows
// and tracks exact duplicates.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint hashes a row's original fields in column order. Fields are
// NUL-delimited so shifting text between adjacent fields changes the hash.
func Fingerprint(fields []string) string {
	h := sha256.New()
	for i, f := range fields {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Duplicate reports one fingerprint that occurred on more than one line.
type Duplicate struct {
	Fingerprint string
	Lines       []int
}

// Assignment is the identity verdict for one row.
type Assignment struct {
	Identity  string
	Duplicate bool
	FirstLine int // line of the first identical row, set when Duplicate
}

// Index maps fingerprints to the lines that produced them. It classifies
// and counts; it never fails.
type Index struct {
	force bool
	seen  map[string][]int
	order []string
}

// NewIndex returns an empty index. With force set, repeated rows receive
// suffixed identities so the ledger imports every one of them; otherwise
// repeats keep the first row's identity and the ledger drops them.
func NewIndex(force bool) *Index {
	return &Index{force: force, seen: make(map[string][]int)}
}

// Assign fingerprints one row and returns its import identity verdict.
func (ix *Index) Assign(fields []string, line int) Assignment {
	fp := Fingerprint(fields)
	prior := len(ix.seen[fp])
	if prior == 0 {
		ix.order = append(ix.order, fp)
	}
	ix.seen[fp] = append(ix.seen[fp], line)

	if prior == 0 {
		return Assignment{Identity: fp}
	}
	as := Assignment{Identity: fp, Duplicate: true, FirstLine: ix.seen[fp][0]}
	if ix.force {
		as.Identity = fmt.Sprintf("%s-%d", fp, prior)
	}
	return as
}

// Duplicates lists every fingerprint shared by two or more rows, in first
// occurrence order.
func (ix *Index) Duplicates() []Duplicate {
	var dups []Duplicate
	for _, fp := range ix.order {
		if lines := ix.seen[fp]; len(lines) > 1 {
			dups = append(dups, Duplicate{Fingerprint: fp, Lines: lines})
		}
	}
	return dups
}
