package mapper

import "github.com/ledgerport-dev/ledgerport/internal/model"

// Discovered accumulates the distinct account names and category keys seen
// while scanning rows. It grows during the parse pass and is read-only
// afterwards; insertion order is preserved for stable creation order.
type Discovered struct {
	accounts    []string
	accountSet  map[string]bool
	categories  []model.CategoryKey
	categorySet map[model.CategoryKey]bool
}

// NewDiscovered returns empty discovery sets.
func NewDiscovered() *Discovered {
	return &Discovered{
		accountSet:  make(map[string]bool),
		categorySet: make(map[model.CategoryKey]bool),
	}
}

// AddAccount registers an account name once.
func (d *Discovered) AddAccount(name string) {
	if d.accountSet[name] {
		return
	}
	d.accountSet[name] = true
	d.accounts = append(d.accounts, name)
}

// AddCategory registers a category key once.
func (d *Discovered) AddCategory(key model.CategoryKey) {
	if d.categorySet[key] {
		return
	}
	d.categorySet[key] = true
	d.categories = append(d.categories, key)
}

// Accounts returns account names in discovery order.
func (d *Discovered) Accounts() []string { return d.accounts }

// Categories returns category keys in discovery order.
func (d *Discovered) Categories() []model.CategoryKey { return d.categories }
