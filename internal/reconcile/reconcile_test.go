package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerport-dev/ledgerport/internal/model"
	"github.com/ledgerport-dev/ledgerport/internal/report"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// testDirectory: Checking and Savings have transfer payees, Cash does not.
func testDirectory() Directory {
	return Directory{
		accounts: map[string]string{
			"Checking": "a-1",
			"Savings":  "a-2",
			"Cash":     "a-3",
		},
		categories: map[model.CategoryKey]string{
			{Name: "Groceries", IsIncome: false}: "c-1",
			{Name: "Gifts", IsIncome: false}:     "c-2",
			{Name: "Gifts", IsIncome: true}:      "c-3",
		},
		transferPayees: map[string]string{
			"a-1": "p-1",
			"a-2": "p-2",
		},
	}
}

func testReconciler(markCleared bool, audit *report.Audit) *Reconciler {
	r := NewReconciler(testDirectory(), markCleared, audit, zerolog.Nop())
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("t-%d", n)
	}
	return r
}

func txn(kind model.Kind, amount int64, account, counter string) model.Transaction {
	return model.Transaction{
		Line:               2,
		Date:               date("2024-01-05"),
		AmountMinorUnits:   amount,
		Kind:               kind,
		AccountName:        account,
		CounterAccountName: counter,
		ImportIdentity:     "f1",
	}
}

func TestBuild_Expense(t *testing.T) {
	tx := txn(model.KindExpense, -1234, "Checking", "")
	tx.Category = "Groceries"
	tx.PayeeDisplayName = "Anna"
	tx.Note = "Wocheneinkauf"

	res := testReconciler(false, &report.Audit{}).Build([]model.Transaction{tx})

	require.Len(t, res.Postings, 1)
	p := res.Postings[0]
	assert.Equal(t, "a-1", p.AccountID)
	assert.Equal(t, "2024-01-05", p.Date)
	assert.Equal(t, int64(-1234), p.Amount)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, "c-1", *p.CategoryID)
	assert.Equal(t, "Anna", p.PayeeName)
	assert.Nil(t, p.PayeeID)
	assert.Equal(t, "Wocheneinkauf", p.Note)
	assert.Equal(t, "f1", p.ImportID)
	assert.False(t, p.Cleared)
	assert.Nil(t, p.TransferCounterpartID)
}

func TestBuild_IncomeCategoryKeyedByKind(t *testing.T) {
	tx := txn(model.KindIncome, 3000, "Checking", "")
	tx.Category = "Gifts"

	res := testReconciler(false, &report.Audit{}).Build([]model.Transaction{tx})

	require.Len(t, res.Postings, 1)
	require.NotNil(t, res.Postings[0].CategoryID)
	assert.Equal(t, "c-3", *res.Postings[0].CategoryID, "income Gifts, not expense Gifts")
}

func TestBuild_UnknownCategoryStaysNil(t *testing.T) {
	tx := txn(model.KindExpense, -100, "Checking", "")
	tx.Category = "Hobbies"

	res := testReconciler(false, &report.Audit{}).Build([]model.Transaction{tx})

	require.Len(t, res.Postings, 1)
	assert.Nil(t, res.Postings[0].CategoryID)
}

func TestBuild_MarkCleared(t *testing.T) {
	res := testReconciler(true, &report.Audit{}).Build([]model.Transaction{
		txn(model.KindExpense, -100, "Checking", ""),
	})

	require.Len(t, res.Postings, 1)
	assert.True(t, res.Postings[0].Cleared)
}

func TestBuild_UnresolvedAccountSkips(t *testing.T) {
	var audit report.Audit
	res := testReconciler(false, &audit).Build([]model.Transaction{
		txn(model.KindExpense, -100, "Wallet", ""),
	})

	assert.Empty(t, res.Postings)
	assert.Equal(t, 1, res.UnresolvedAccounts)
	require.Equal(t, 1, audit.Len())
	assert.Equal(t, report.ReasonUnresolvedAccount, audit.Entries()[0].Reason)
	assert.Equal(t, "Wallet", audit.Entries()[0].Detail)
}

func TestBuild_Transfer(t *testing.T) {
	tx := txn(model.KindTransfer, 20000, "Checking", "Savings")
	tx.Note = "Monatliche Rücklage"

	res := testReconciler(false, &report.Audit{}).Build([]model.Transaction{tx})

	require.Len(t, res.Postings, 2)
	primary, mirror := res.Postings[0], res.Postings[1]

	assert.Equal(t, "a-1", primary.AccountID)
	assert.Equal(t, int64(-20000), primary.Amount)
	require.NotNil(t, primary.PayeeID)
	assert.Equal(t, "p-2", *primary.PayeeID, "payee is the counter account's transfer payee")

	assert.Equal(t, "a-2", mirror.AccountID)
	assert.Equal(t, int64(20000), mirror.Amount)
	require.NotNil(t, mirror.PayeeID)
	assert.Equal(t, "p-1", *mirror.PayeeID, "payee points back at the source account")

	assert.Zero(t, primary.Amount+mirror.Amount, "legs are additive inverses")
	require.NotNil(t, primary.TransferCounterpartID)
	require.NotNil(t, mirror.TransferCounterpartID)
	assert.Equal(t, mirror.ID, *primary.TransferCounterpartID)
	assert.Equal(t, primary.ID, *mirror.TransferCounterpartID)

	assert.Nil(t, primary.CategoryID)
	assert.Nil(t, mirror.CategoryID)
	assert.Equal(t, "f1", primary.ImportID)
	assert.Equal(t, "f1", mirror.ImportID)
	assert.Equal(t, tx.Note, mirror.Note)
}

func TestBuild_TransferDowngrade(t *testing.T) {
	var audit report.Audit
	tx := txn(model.KindTransfer, 5000, "Checking", "Mattress")
	tx.PayeeDisplayName = "Mattress"

	res := testReconciler(false, &audit).Build([]model.Transaction{tx})

	require.Len(t, res.Postings, 1)
	assert.Equal(t, 1, res.TransfersDowngraded)

	p := res.Postings[0]
	assert.Equal(t, "a-1", p.AccountID)
	assert.Equal(t, int64(-5000), p.Amount, "amount negated on downgrade")
	assert.Nil(t, p.TransferCounterpartID)
	assert.Nil(t, p.PayeeID)
	assert.Equal(t, "Mattress", p.PayeeName)

	require.Equal(t, 1, audit.Len())
	assert.Equal(t, report.ReasonTransferDowngraded, audit.Entries()[0].Reason)
}

func TestBuild_TransferSkippedWithoutCounterPayee(t *testing.T) {
	var audit report.Audit
	res := testReconciler(false, &audit).Build([]model.Transaction{
		txn(model.KindTransfer, 5000, "Checking", "Cash"),
	})

	assert.Empty(t, res.Postings)
	assert.Equal(t, 1, res.TransfersSkipped)
	require.Equal(t, 1, audit.Len())
	assert.Equal(t, report.ReasonTransferNoPayee, audit.Entries()[0].Reason)
}

func TestBuild_TransferSkippedWithoutSourcePayee(t *testing.T) {
	res := testReconciler(false, &report.Audit{}).Build([]model.Transaction{
		txn(model.KindTransfer, 5000, "Cash", "Savings"),
	})

	assert.Empty(t, res.Postings)
	assert.Equal(t, 1, res.TransfersSkipped)
}

func TestBuild_TransferSourceUnresolved(t *testing.T) {
	res := testReconciler(false, &report.Audit{}).Build([]model.Transaction{
		txn(model.KindTransfer, 5000, "Wallet", "Savings"),
	})

	assert.Empty(t, res.Postings)
	assert.Equal(t, 1, res.UnresolvedAccounts)
}

func TestBuild_Order(t *testing.T) {
	res := testReconciler(false, &report.Audit{}).Build([]model.Transaction{
		txn(model.KindExpense, -100, "Checking", ""),
		txn(model.KindTransfer, 5000, "Checking", "Savings"),
		txn(model.KindExpense, -200, "Checking", ""),
	})

	require.Len(t, res.Postings, 4)
	assert.Equal(t, []string{"t-1", "t-2", "t-3", "t-4"},
		[]string{res.Postings[0].ID, res.Postings[1].ID, res.Postings[2].ID, res.Postings[3].ID})
	assert.Equal(t, int64(-100), res.Postings[0].Amount)
	assert.Equal(t, int64(-200), res.Postings[3].Amount)
}
