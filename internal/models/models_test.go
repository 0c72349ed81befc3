package models_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/schaferjart/telegram-finance/internal/models"
)

func TestNewExpense(t *testing.T) {
	t.Parallel()

	exp, err := models.NewExpense(decimal.RequireFromString("10.505"), "Alice", []string{"Bob", "Carol"})
	require.NoError(t, err)
	require.True(t, exp.Amount.Equal(decimal.RequireFromString("10.51")), "amount is rounded at entry")
	require.Equal(t, "Alice", exp.Payer)
	require.NotEqual(t, exp.ID.String(), "00000000-0000-0000-0000-000000000000")

	_, err = models.NewExpense(decimal.NewFromInt(10), "Alice", nil)
	require.ErrorIs(t, err, models.ErrEmptySplit)
}

func TestNewTransactionSimpleCollapse(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	// The caller staged a full transfer, but a simple type discards the
	// receiving side entirely.
	txn := models.NewTransaction("groceries", decimal.RequireFromString("12.5"), "EUR", "Cash",
		decimal.NewFromInt(999), "USD", "Bank", models.StatusPending, "market", true, now)

	require.Equal(t, "2026-08-30", txn.Date)
	require.True(t, txn.AmountReceived.IsZero())
	require.Empty(t, txn.CurrencyReceived)
	require.Empty(t, txn.To)
	require.Equal(t, models.StatusClosed, txn.Status)
	require.Equal(t, "Groceries purchase", txn.Description)
}

func TestNewTransactionTransfer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	txn := models.NewTransaction("transfer", decimal.NewFromInt(100), "EUR", "Cash",
		decimal.NewFromInt(108), "USD", "Bank", models.StatusPending, "", false, now)

	require.Equal(t, models.StatusPending, txn.Status)
	require.Equal(t, "Bank", txn.To)
	require.Equal(t, "Transfer from Cash to Bank", txn.Description)

	// A transfer with no explicit status defaults to closed.
	txn = models.NewTransaction("transfer", decimal.NewFromInt(100), "EUR", "Cash",
		decimal.NewFromInt(108), "USD", "Bank", "", "", false, now)
	require.Equal(t, models.StatusClosed, txn.Status)
}

func TestBalanceApplyBucketIsolation(t *testing.T) {
	t.Parallel()

	bal := models.NewBalance()
	bal.Apply(models.StatusClosed, "EUR", decimal.RequireFromString("-12.5"))
	bal.Apply(models.StatusPending, "EUR", decimal.NewFromInt(100))
	bal.Apply(models.StatusClosed, "EUR", decimal.RequireFromString("-2.5"))
	bal.Apply(models.StatusClosed, "USD", decimal.NewFromInt(7))

	require.True(t, bal.Settled["EUR"].Equal(decimal.NewFromInt(-15)))
	require.True(t, bal.Settled["USD"].Equal(decimal.NewFromInt(7)))
	require.True(t, bal.Pending["EUR"].Equal(decimal.NewFromInt(100)))
}

func TestNormalizeFillsNilCollections(t *testing.T) {
	t.Parallel()

	var doc models.Document
	doc.Normalize()

	require.NotNil(t, doc.Members)
	require.NotNil(t, doc.Expenses)
	require.NotNil(t, doc.Chores)
	require.NotNil(t, doc.Penalties)
	require.NotNil(t, doc.Accounts)
	require.NotNil(t, doc.Transactions)
	require.NotNil(t, doc.Balances)
	require.NotNil(t, doc.SpendingCategories)
}
