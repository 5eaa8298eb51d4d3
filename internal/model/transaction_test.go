package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"expense", KindExpense},
		{"Expense", KindExpense},
		{"INCOME", KindIncome},
		{" transfer ", KindTransfer},
		{"Transfer", KindTransfer},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, "ParseKind(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseKind(%q)", tt.in)
	}
}

func TestParseKindUnknown(t *testing.T) {
	for _, in := range []string{"", "refund", "expenses"} {
		_, err := ParseKind(in)
		assert.Error(t, err, "ParseKind(%q)", in)
	}
}

func TestCategoryFor(t *testing.T) {
	spend := Transaction{Category: "Salary", Kind: KindExpense}
	earn := Transaction{Category: "Salary", Kind: KindIncome}

	assert.Equal(t, CategoryKey{Name: "Salary", IsIncome: false}, spend.CategoryFor())
	assert.Equal(t, CategoryKey{Name: "Salary", IsIncome: true}, earn.CategoryFor())
	assert.NotEqual(t, spend.CategoryFor(), earn.CategoryFor())
}
