package model

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies an entry in the source export.
type Kind string

const (
	KindExpense  Kind = "expense"
	KindIncome   Kind = "income"
	KindTransfer Kind = "transfer"
)

// ParseKind normalizes a source entry type ("Expense", "INCOME", ...).
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindExpense:
		return KindExpense, nil
	case KindIncome:
		return KindIncome, nil
	case KindTransfer:
		return KindTransfer, nil
	}
	return "", fmt.Errorf("unknown entry kind %q", s)
}

// IsIncome reports whether the kind carries the income flag used for
// category identity.
func (k Kind) IsIncome() bool {
	return k == KindIncome
}

// Transaction is one normalized row of the source export.
type Transaction struct {
	Line               int // source row, for diagnostics
	Date               time.Time
	AmountMinorUnits   int64
	Kind               Kind
	Category           string // may be empty
	AccountName        string
	CounterAccountName string // set for transfers
	PayeeDisplayName   string
	Note               string
	ImportIdentity     string
}
