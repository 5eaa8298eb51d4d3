// Package pipeline drives one import run end to end: normalize, parse,
// reconcile, upload.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerport-dev/ledgerport/internal/identity"
	"github.com/ledgerport-dev/ledgerport/internal/ledger"
	"github.com/ledgerport-dev/ledgerport/internal/mapper"
	"github.com/ledgerport-dev/ledgerport/internal/model"
	"github.com/ledgerport-dev/ledgerport/internal/reconcile"
	"github.com/ledgerport-dev/ledgerport/internal/records"
	"github.com/ledgerport-dev/ledgerport/internal/report"
	"github.com/ledgerport-dev/ledgerport/internal/sniff"
)

// Ledger is the full collaborator surface of one run: the directory for
// reconciliation plus session and upload calls.
type Ledger interface {
	reconcile.Service
	Open(ctx context.Context) error
	ImportPostings(ctx context.Context, accountID string, postings []ledger.Posting) (ledger.ImportResult, error)
	Sync(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// uploadConcurrency bounds the cross-account fan-out. Batches of one
// account stay sequential; they share a sync checkpoint server-side.
const uploadConcurrency = 4

// Options configure one import run.
type Options struct {
	File            string
	DateLayout      string
	ForceDuplicates bool
	MarkCleared     bool
	DryRun          bool
	Currency        string
	ReportPath      string
	Repairs         map[string]string
}

// Run imports one export file into the ledger and returns the run summary.
// It is a single full load: any collaborator failure aborts the run after
// an orderly session close. A dry run stops after reconciliation.
func Run(ctx context.Context, svc Ledger, opts Options, log zerolog.Logger) (*report.Summary, error) {
	src, err := sniff.File(opts.File)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("encoding", string(src.Encoding)).
		Str("delimiter", string(src.Delimiter)).
		Msg("normalized source")

	if err := svc.Open(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := svc.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("closing ledger session")
		}
	}()

	rows, noDate, err := records.ReadRows(src, records.NewRepairer(opts.Repairs), mapper.ColDate)
	if err != nil {
		return nil, err
	}

	summary := &report.Summary{
		RowsRead:   len(rows),
		RowsNoDate: noDate,
		Currency:   opts.Currency,
	}
	var audit report.Audit

	disc := mapper.NewDiscovered()
	m := mapper.New(opts.DateLayout, disc)
	index := identity.NewIndex(opts.ForceDuplicates)

	var txns []model.Transaction
	for _, row := range rows {
		as := index.Assign(row.Raw, row.Line)
		if as.Duplicate {
			summary.Duplicates++
			audit.Add(row.Line, as.Identity, report.ReasonDuplicate,
				fmt.Sprintf("first seen on line %d", as.FirstLine))
		}

		txn, err := m.Map(row)
		if err != nil {
			countRowError(summary, err)
			audit.Add(row.Line, as.Identity, rowErrorReason(err), err.Error())
			log.Warn().Int("line", row.Line).Err(err).Msg("skipping row")
			continue
		}
		txn.ImportIdentity = as.Identity

		switch txn.Kind {
		case model.KindIncome:
			summary.IncomeMinorUnits += txn.AmountMinorUnits
		case model.KindExpense:
			summary.ExpenseMinorUnits += txn.AmountMinorUnits
		}
		txns = append(txns, txn)
	}
	for _, dup := range index.Duplicates() {
		log.Debug().Str("fingerprint", dup.Fingerprint).Ints("lines", dup.Lines).Msg("duplicate rows")
	}
	summary.Parsed = len(txns)
	log.Info().
		Int("rows", summary.RowsRead).
		Int("parsed", summary.Parsed).
		Int("duplicates", summary.Duplicates).
		Msg("scanned export")

	ensure := reconcile.EnsureDirectory
	if opts.DryRun {
		ensure = reconcile.PreviewDirectory
	}
	dir, stats, err := ensure(ctx, svc, disc, log)
	if err != nil {
		return nil, fmt.Errorf("ensuring ledger directory: %w", err)
	}
	summary.AccountsCreated = stats.AccountsCreated
	summary.CategoriesCreated = stats.CategoriesCreated

	res := reconcile.NewReconciler(dir, opts.MarkCleared, &audit, log).Build(txns)
	summary.UnresolvedAccounts = res.UnresolvedAccounts
	summary.TransfersDowngraded = res.TransfersDowngraded
	summary.TransfersSkipped = res.TransfersSkipped
	summary.PostingsBuilt = len(res.Postings)

	groups := reconcile.GroupByAccount(res.Postings)

	if opts.DryRun {
		for _, group := range groups {
			log.Info().
				Str("account", group.AccountID).
				Int("postings", len(group.Postings)).
				Msg("dry run, would import")
		}
		if err := writeAudit(&audit, opts.ReportPath, log); err != nil {
			return nil, err
		}
		summary.Log(log)
		return summary, nil
	}

	if err := upload(ctx, svc, groups, summary, log); err != nil {
		return nil, err
	}

	if err := svc.Sync(ctx); err != nil {
		return nil, err
	}

	if err := writeAudit(&audit, opts.ReportPath, log); err != nil {
		return nil, err
	}
	summary.Log(log)
	return summary, nil
}

// upload delivers grouped postings. Accounts fan out concurrently; within
// an account, batches go in order and stop at the first failure.
func upload(ctx context.Context, svc Ledger, groups []reconcile.AccountPostings, summary *report.Summary, log zerolog.Logger) error {
	results := make([]ledger.ImportResult, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, group := range groups {
		g.Go(func() error {
			for _, batch := range reconcile.Chunk(group.Postings, reconcile.BatchSize) {
				r, err := svc.ImportPostings(gctx, group.AccountID, batch)
				if err != nil {
					return err
				}
				log.Debug().
					Str("account", group.AccountID).
					Int("postings", len(batch)).
					Int("added", r.Added).
					Int("updated", r.Updated).
					Msg("imported batch")
				results[i].Added += r.Added
				results[i].Updated += r.Updated
				results[i].Errors = append(results[i].Errors, r.Errors...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("uploading postings: %w", err)
	}

	for i, r := range results {
		summary.PostingsAdded += r.Added
		summary.PostingsUpdated += r.Updated
		summary.PostingErrors += len(r.Errors)
		for _, msg := range r.Errors {
			log.Warn().Str("account", groups[i].AccountID).Str("error", msg).Msg("ledger rejected posting")
		}
	}
	return nil
}

func writeAudit(audit *report.Audit, path string, log zerolog.Logger) error {
	if path == "" {
		return nil
	}
	if err := audit.WriteFile(path); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("entries", audit.Len()).Msg("wrote audit report")
	return nil
}

// countRowError buckets a mapping failure into its summary counter.
func countRowError(summary *report.Summary, err error) {
	switch {
	case errors.Is(err, mapper.ErrBadDate):
		summary.BadDates++
	case errors.Is(err, mapper.ErrFutureDate):
		summary.FutureDates++
	case errors.Is(err, mapper.ErrBadAmount):
		summary.BadAmounts++
	case errors.Is(err, mapper.ErrBadKind):
		summary.BadKinds++
	case errors.Is(err, mapper.ErrMissingAccount):
		summary.MissingAccounts++
	}
}

func rowErrorReason(err error) string {
	switch {
	case errors.Is(err, mapper.ErrBadDate):
		return report.ReasonBadDate
	case errors.Is(err, mapper.ErrFutureDate):
		return report.ReasonFutureDate
	case errors.Is(err, mapper.ErrBadAmount):
		return report.ReasonBadAmount
	case errors.Is(err, mapper.ErrBadKind):
		return report.ReasonBadKind
	case errors.Is(err, mapper.ErrMissingAccount):
		return report.ReasonMissingAccount
	default:
		return "row-error"
	}
}
