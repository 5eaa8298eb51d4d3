package reconcile

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ledgerport-dev/ledgerport/internal/ledger"
	"github.com/ledgerport-dev/ledgerport/internal/model"
	"github.com/ledgerport-dev/ledgerport/internal/report"
)

// isoDate is the wire format for posting dates.
const isoDate = "2006-01-02"

// Reconciler turns parsed transactions into ledger postings. Resolution
// only reads the directory; anything that had to exist was created before
// reconciliation started.
type Reconciler struct {
	dir         Directory
	markCleared bool
	audit       *report.Audit
	log         zerolog.Logger
	newID       func() string
}

// NewReconciler returns a Reconciler over a completed directory. Skips and
// downgrades are logged and recorded in audit.
func NewReconciler(dir Directory, markCleared bool, audit *report.Audit, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		dir:         dir,
		markCleared: markCleared,
		audit:       audit,
		log:         log,
		newID:       uuid.NewString,
	}
}

// Result is the outcome of reconciliation.
type Result struct {
	Postings            []ledger.Posting
	UnresolvedAccounts  int
	TransfersDowngraded int
	TransfersSkipped    int
}

// Build reconciles transactions in order. Expense and income rows emit one
// posting; transfer rows emit two linked postings, or degrade per the rules
// in reconcileTransfer. Row-level failures are skipped, never fatal.
func (r *Reconciler) Build(txns []model.Transaction) Result {
	var res Result
	for _, t := range txns {
		if t.Kind == model.KindTransfer {
			r.reconcileTransfer(t, &res)
			continue
		}

		accountID, ok := r.dir.AccountID(t.AccountName)
		if !ok {
			r.skipUnresolved(t, &res)
			continue
		}
		res.Postings = append(res.Postings, ledger.Posting{
			ID:         r.newID(),
			AccountID:  accountID,
			Date:       t.Date.Format(isoDate),
			Amount:     t.AmountMinorUnits,
			CategoryID: r.categoryID(t),
			PayeeName:  t.PayeeDisplayName,
			Note:       t.Note,
			ImportID:   t.ImportIdentity,
			Cleared:    r.markCleared,
		})
	}
	return res
}

// reconcileTransfer emits the balanced posting pair for a transfer, or
// degrades: an unknown counter account downgrades the row to a one-sided
// entry, a missing transfer payee on either account skips it entirely.
func (r *Reconciler) reconcileTransfer(t model.Transaction, res *Result) {
	sourceID, ok := r.dir.AccountID(t.AccountName)
	if !ok {
		r.skipUnresolved(t, res)
		return
	}

	counterID, ok := r.dir.AccountID(t.CounterAccountName)
	if !ok {
		r.log.Warn().
			Int("line", t.Line).
			Str("counter", t.CounterAccountName).
			Msg("counter account not in ledger, downgrading transfer to one-sided entry")
		r.audit.Add(t.Line, t.ImportIdentity, report.ReasonTransferDowngraded, t.CounterAccountName)
		res.TransfersDowngraded++
		res.Postings = append(res.Postings, ledger.Posting{
			ID:         r.newID(),
			AccountID:  sourceID,
			Date:       t.Date.Format(isoDate),
			Amount:     -t.AmountMinorUnits,
			CategoryID: r.categoryID(t),
			PayeeName:  t.PayeeDisplayName,
			Note:       t.Note,
			ImportID:   t.ImportIdentity,
			Cleared:    r.markCleared,
		})
		return
	}

	counterPayee, okCounter := r.dir.TransferPayeeID(counterID)
	sourcePayee, okSource := r.dir.TransferPayeeID(sourceID)
	if !okCounter || !okSource {
		r.log.Warn().
			Int("line", t.Line).
			Str("account", t.AccountName).
			Str("counter", t.CounterAccountName).
			Msg("no transfer payee, skipping transfer")
		r.audit.Add(t.Line, t.ImportIdentity, report.ReasonTransferNoPayee, t.CounterAccountName)
		res.TransfersSkipped++
		return
	}

	primaryID, mirrorID := r.newID(), r.newID()
	res.Postings = append(res.Postings,
		ledger.Posting{
			ID:                    primaryID,
			AccountID:             sourceID,
			Date:                  t.Date.Format(isoDate),
			Amount:                -t.AmountMinorUnits,
			PayeeID:               &counterPayee,
			Note:                  t.Note,
			ImportID:              t.ImportIdentity,
			Cleared:               r.markCleared,
			TransferCounterpartID: &mirrorID,
		},
		ledger.Posting{
			ID:                    mirrorID,
			AccountID:             counterID,
			Date:                  t.Date.Format(isoDate),
			Amount:                t.AmountMinorUnits,
			PayeeID:               &sourcePayee,
			Note:                  t.Note,
			ImportID:              t.ImportIdentity,
			Cleared:               r.markCleared,
			TransferCounterpartID: &primaryID,
		},
	)
}

func (r *Reconciler) skipUnresolved(t model.Transaction, res *Result) {
	r.log.Warn().
		Int("line", t.Line).
		Str("account", t.AccountName).
		Msg("account not in ledger, skipping row")
	r.audit.Add(t.Line, t.ImportIdentity, report.ReasonUnresolvedAccount, t.AccountName)
	res.UnresolvedAccounts++
}

// categoryID resolves the transaction's category to an id, or nil when the
// category is empty or unknown.
func (r *Reconciler) categoryID(t model.Transaction) *string {
	if t.Category == "" {
		return nil
	}
	id, ok := r.dir.CategoryID(t.CategoryFor())
	if !ok {
		return nil
	}
	return &id
}
