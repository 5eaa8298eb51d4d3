package model

// CategoryKey identifies a budget category. Two source categories with
// the same name but different income flags are distinct categories.
type CategoryKey struct {
	Name     string
	IsIncome bool
}

// CategoryFor derives the key a transaction's category resolves under.
func (t Transaction) CategoryFor() CategoryKey {
	return CategoryKey{Name: t.Category, IsIncome: t.Kind.IsIncome()}
}
