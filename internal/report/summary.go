package report

import (
	"github.com/Rhymond/go-money"
	"github.com/rs/zerolog"
)

// Summary is the final tally of one import run.
type Summary struct {
	RowsRead   int // data rows seen by the parser
	RowsNoDate int // blank or trailer lines dropped silently

	BadDates        int
	FutureDates     int
	BadAmounts      int
	BadKinds        int
	MissingAccounts int
	Duplicates      int
	Parsed          int

	AccountsCreated   int
	CategoriesCreated int

	UnresolvedAccounts  int
	TransfersDowngraded int
	TransfersSkipped    int

	PostingsBuilt   int
	PostingsAdded   int
	PostingsUpdated int
	PostingErrors   int // entries the ledger rejected inside accepted batches

	IncomeMinorUnits  int64
	ExpenseMinorUnits int64
	Currency          string
}

// Skipped totals the rows dropped for row-level reasons.
func (s Summary) Skipped() int {
	return s.BadDates + s.FutureDates + s.BadAmounts + s.BadKinds + s.MissingAccounts
}

// IncomeTotal formats the income sum in the run currency.
func (s Summary) IncomeTotal() string {
	return money.New(s.IncomeMinorUnits, s.Currency).Display()
}

// ExpenseTotal formats the expense sum in the run currency.
func (s Summary) ExpenseTotal() string {
	return money.New(s.ExpenseMinorUnits, s.Currency).Display()
}

// Log emits the summary as one structured event.
func (s Summary) Log(log zerolog.Logger) {
	log.Info().
		Int("rows", s.RowsRead).
		Int("blank", s.RowsNoDate).
		Int("skipped", s.Skipped()).
		Int("duplicates", s.Duplicates).
		Int("parsed", s.Parsed).
		Int("accounts_created", s.AccountsCreated).
		Int("categories_created", s.CategoriesCreated).
		Int("unresolved_accounts", s.UnresolvedAccounts).
		Int("transfers_downgraded", s.TransfersDowngraded).
		Int("transfers_skipped", s.TransfersSkipped).
		Int("postings", s.PostingsBuilt).
		Int("added", s.PostingsAdded).
		Int("updated", s.PostingsUpdated).
		Int("rejected", s.PostingErrors).
		Str("income", s.IncomeTotal()).
		Str("expenses", s.ExpenseTotal()).
		Msg("import finished")
}
