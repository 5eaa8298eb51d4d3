// Package mapper converts repaired export rows into canonical transactions
// and collects the account and category sets discovered along the way.
package mapper

import (
	"errors"
	"fmt"
	"time"

	"github.com/ledgerport-dev/ledgerport/internal/model"
	"github.com/ledgerport-dev/ledgerport/internal/records"
)

// Column names of the export format, matched after header trimming.
const (
	ColDate           = "Date"
	ColKind           = "Type"
	ColAmount         = "Amount"
	ColCategory       = "Category"
	ColAccount        = "Account"
	ColCounterAccount = "Counter account"
	ColPerson         = "Person"
	ColGroup          = "Group"
	ColNote           = "Note"
)

// DefaultDateLayout matches the four-digit-year convention of the export.
// Two-digit-year exports use "02.01.06".
const DefaultDateLayout = "02.01.2006"

// Row-level mapping failures. Each drops only the row it names.
var (
	ErrBadDate        = errors.New("unparseable date")
	ErrFutureDate     = errors.New("future date")
	ErrBadAmount      = errors.New("unparseable amount")
	ErrBadKind        = errors.New("unknown entry kind")
	ErrMissingAccount = errors.New("missing account")
)

// Mapper maps rows to transactions. It performs no I/O; its only side
// effect is registering discovered accounts and categories.
type Mapper struct {
	dateLayout string
	disc       *Discovered
}

// New returns a Mapper using the given date layout. Rows that map
// successfully register into disc.
func New(dateLayout string, disc *Discovered) *Mapper {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &Mapper{dateLayout: dateLayout, disc: disc}
}

// Map converts one row. A returned error wraps one of the Err sentinels
// and means the row is dropped; nothing is registered for dropped rows.
func (m *Mapper) Map(row records.Row) (model.Transaction, error) {
	date, err := time.Parse(m.dateLayout, row.Fields[ColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrBadDate, row.Fields[ColDate])
	}
	if date.After(time.Now()) {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrFutureDate, date.Format("2006-01-02"))
	}

	kind, err := model.ParseKind(row.Fields[ColKind])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrBadKind, row.Fields[ColKind])
	}

	amount, err := records.ParseAmount(row.Fields[ColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrBadAmount, row.Fields[ColAmount])
	}

	account := row.Fields[ColAccount]
	if account == "" {
		return model.Transaction{}, ErrMissingAccount
	}

	txn := model.Transaction{
		Line:               row.Line,
		Date:               date,
		AmountMinorUnits:   amount,
		Kind:               kind,
		Category:           row.Fields[ColCategory],
		AccountName:        account,
		CounterAccountName: row.Fields[ColCounterAccount],
		PayeeDisplayName:   payeeDisplayName(row),
		Note:               row.Fields[ColNote],
	}

	// Counter accounts are not registered. They resolve against accounts
	// that exist in the ledger; an unknown counterpart downgrades the
	// transfer instead of conjuring an account.
	m.disc.AddAccount(account)
	if txn.Category != "" {
		m.disc.AddCategory(txn.CategoryFor())
	}
	return txn, nil
}

// payeeDisplayName picks the counterparty label: explicit counter account,
// else person tag, else group tag, else empty.
func payeeDisplayName(row records.Row) string {
	if counter := row.Fields[ColCounterAccount]; counter != "" {
		return counter
	}
	if person := row.Fields[ColPerson]; person != "" {
		return person
	}
	return row.Fields[ColGroup]
}
