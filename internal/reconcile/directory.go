// Package reconcile resolves parsed transactions against the ledger
// directory and turns them into balanced postings.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerport-dev/ledgerport/internal/ledger"
	"github.com/ledgerport-dev/ledgerport/internal/mapper"
	"github.com/ledgerport-dev/ledgerport/internal/model"
)

// ImportedGroupName is the category group that receives categories created
// during an import. One group per income flag.
const ImportedGroupName = "Imported"

// createConcurrency bounds parallel directory calls. Creations touch
// disjoint keys, so ordering between them does not matter.
const createConcurrency = 4

// Service is the slice of the ledger directory the reconciler depends on.
type Service interface {
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	CreateAccount(ctx context.Context, name string) (string, error)
	ListCategoryGroups(ctx context.Context) ([]ledger.CategoryGroup, error)
	CreateCategoryGroup(ctx context.Context, name string, isIncome bool) (string, error)
	ListCategories(ctx context.Context) ([]ledger.Category, error)
	CreateCategory(ctx context.Context, name, groupID string, isIncome bool) (string, error)
	ListPayees(ctx context.Context) ([]ledger.Payee, error)
}

// Directory holds the resolution maps reconciliation reads. It is complete
// before the first transaction is reconciled and never changes afterwards.
type Directory struct {
	accounts       map[string]string            // account name -> id
	categories     map[model.CategoryKey]string // category key -> id
	transferPayees map[string]string            // account id -> transfer payee id
}

// AccountID resolves an account name.
func (d Directory) AccountID(name string) (string, bool) {
	id, ok := d.accounts[name]
	return id, ok
}

// CategoryID resolves a category key.
func (d Directory) CategoryID(key model.CategoryKey) (string, bool) {
	id, ok := d.categories[key]
	return id, ok
}

// TransferPayeeID resolves the payee the ledger uses for transfers into
// the given account.
func (d Directory) TransferPayeeID(accountID string) (string, bool) {
	id, ok := d.transferPayees[accountID]
	return id, ok
}

// Stats counts directory entities created for this run.
type Stats struct {
	AccountsCreated   int
	CategoriesCreated int
}

// EnsureDirectory makes every discovered account and category exist in the
// ledger and returns the completed resolution maps. Existing entities are
// reused: accounts match by name, categories by name and income flag.
// Payees are listed last so transfer payees of just-created accounts are
// visible.
func EnsureDirectory(ctx context.Context, svc Service, disc *mapper.Discovered, log zerolog.Logger) (Directory, Stats, error) {
	dir := Directory{
		accounts:       make(map[string]string),
		categories:     make(map[model.CategoryKey]string),
		transferPayees: make(map[string]string),
	}
	var stats Stats

	existing, err := svc.ListAccounts(ctx)
	if err != nil {
		return Directory{}, stats, err
	}
	for _, a := range existing {
		dir.accounts[a.Name] = a.ID
	}

	var missingAccounts []string
	for _, name := range disc.Accounts() {
		if _, ok := dir.accounts[name]; !ok {
			missingAccounts = append(missingAccounts, name)
		}
	}
	accountIDs := make([]string, len(missingAccounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(createConcurrency)
	for i, name := range missingAccounts {
		g.Go(func() error {
			id, err := svc.CreateAccount(gctx, name)
			if err != nil {
				return err
			}
			log.Debug().Str("account", name).Str("id", id).Msg("created account")
			accountIDs[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Directory{}, stats, err
	}
	for i, name := range missingAccounts {
		dir.accounts[name] = accountIDs[i]
	}
	stats.AccountsCreated = len(missingAccounts)

	existingCategories, err := svc.ListCategories(ctx)
	if err != nil {
		return Directory{}, stats, err
	}
	for _, c := range existingCategories {
		dir.categories[model.CategoryKey{Name: c.Name, IsIncome: c.IsIncome}] = c.ID
	}

	var missingCategories []model.CategoryKey
	for _, key := range disc.Categories() {
		if _, ok := dir.categories[key]; !ok {
			missingCategories = append(missingCategories, key)
		}
	}
	if len(missingCategories) > 0 {
		groups, err := importGroups(ctx, svc, missingCategories, log)
		if err != nil {
			return Directory{}, stats, err
		}

		categoryIDs := make([]string, len(missingCategories))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(createConcurrency)
		for i, key := range missingCategories {
			g.Go(func() error {
				id, err := svc.CreateCategory(gctx, key.Name, groups[key.IsIncome], key.IsIncome)
				if err != nil {
					return err
				}
				log.Debug().Str("category", key.Name).Bool("income", key.IsIncome).Str("id", id).Msg("created category")
				categoryIDs[i] = id
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Directory{}, stats, err
		}
		for i, key := range missingCategories {
			dir.categories[key] = categoryIDs[i]
		}
		stats.CategoriesCreated = len(missingCategories)
	}

	payees, err := svc.ListPayees(ctx)
	if err != nil {
		return Directory{}, stats, err
	}
	for _, p := range payees {
		if p.TransferAccountID != "" {
			dir.transferPayees[p.TransferAccountID] = p.ID
		}
	}

	return dir, stats, nil
}

// PreviewDirectory is EnsureDirectory without the writes, for dry runs.
// Missing entities get synthetic ids; missing accounts also get synthetic
// transfer payees, because the server would create those alongside. Stats
// count what a real run would create.
func PreviewDirectory(ctx context.Context, svc Service, disc *mapper.Discovered, log zerolog.Logger) (Directory, Stats, error) {
	dir := Directory{
		accounts:       make(map[string]string),
		categories:     make(map[model.CategoryKey]string),
		transferPayees: make(map[string]string),
	}
	var stats Stats

	existing, err := svc.ListAccounts(ctx)
	if err != nil {
		return Directory{}, stats, err
	}
	for _, a := range existing {
		dir.accounts[a.Name] = a.ID
	}
	for _, name := range disc.Accounts() {
		if _, ok := dir.accounts[name]; ok {
			continue
		}
		stats.AccountsCreated++
		id := fmt.Sprintf("preview-account-%d", stats.AccountsCreated)
		dir.accounts[name] = id
		dir.transferPayees[id] = fmt.Sprintf("preview-payee-%d", stats.AccountsCreated)
		log.Debug().Str("account", name).Msg("would create account")
	}

	existingCategories, err := svc.ListCategories(ctx)
	if err != nil {
		return Directory{}, stats, err
	}
	for _, c := range existingCategories {
		dir.categories[model.CategoryKey{Name: c.Name, IsIncome: c.IsIncome}] = c.ID
	}
	for _, key := range disc.Categories() {
		if _, ok := dir.categories[key]; ok {
			continue
		}
		stats.CategoriesCreated++
		dir.categories[key] = fmt.Sprintf("preview-category-%d", stats.CategoriesCreated)
		log.Debug().Str("category", key.Name).Bool("income", key.IsIncome).Msg("would create category")
	}

	payees, err := svc.ListPayees(ctx)
	if err != nil {
		return Directory{}, stats, err
	}
	for _, p := range payees {
		if p.TransferAccountID != "" {
			dir.transferPayees[p.TransferAccountID] = p.ID
		}
	}

	return dir, stats, nil
}

// importGroups returns the group id to file created categories under, per
// income flag, reusing an existing group of the same name and flag.
func importGroups(ctx context.Context, svc Service, missing []model.CategoryKey, log zerolog.Logger) (map[bool]string, error) {
	needed := make(map[bool]bool)
	for _, key := range missing {
		needed[key.IsIncome] = true
	}

	existing, err := svc.ListCategoryGroups(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[bool]string, len(needed))
	for isIncome := range needed {
		id, ok := findGroup(existing, isIncome)
		if !ok {
			id, err = svc.CreateCategoryGroup(ctx, ImportedGroupName, isIncome)
			if err != nil {
				return nil, err
			}
			log.Debug().Bool("income", isIncome).Str("id", id).Msg("created category group")
		}
		groups[isIncome] = id
	}
	return groups, nil
}

func findGroup(groups []ledger.CategoryGroup, isIncome bool) (string, bool) {
	for _, g := range groups {
		if g.Name == ImportedGroupName && g.IsIncome == isIncome {
			return g.ID, true
		}
	}
	return "", false
}
