package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schaferjart/telegram-finance/internal/service"
)

func TestToggleMemberAddsAndRemoves(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)

	action, name, err := svc.ToggleMember("Alice")
	require.NoError(t, err)
	require.Equal(t, service.ToggleAdded, action)
	require.Equal(t, "Alice", name)

	// Removal matches case-insensitively and reports the stored casing.
	action, name, err = svc.ToggleMember("ALICE")
	require.NoError(t, err)
	require.Equal(t, service.ToggleRemoved, action)
	require.Equal(t, "Alice", name)

	doc, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, doc.Members)
}

func TestToggleMemberKeepsSubmittedCasing(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	_, _, err := svc.ToggleMember("aLiCe")
	require.NoError(t, err)

	doc, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"aLiCe"}, doc.Members)
}

func TestToggleMemberRemovalClearsBuckets(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	_, _, err := svc.ToggleMember("Alice")
	require.NoError(t, err)
	_, _, err = svc.ToggleMember("Bob")
	require.NoError(t, err)

	_, _, err = svc.RecordChore("Bob", "30")
	require.NoError(t, err)

	doc, err := store.Load()
	require.NoError(t, err)
	doc.Penalties["Bob"] = 2
	doc.LastWeekViolators = map[string]bool{"bob": true}
	require.NoError(t, store.Save(doc))

	_, _, err = svc.ToggleMember("bob")
	require.NoError(t, err)

	doc, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"Alice"}, doc.Members)
	require.NotContains(t, doc.Chores, "Bob")
	require.NotContains(t, doc.Penalties, "Bob")
	require.NotContains(t, doc.LastWeekViolators, "bob")
}

func TestToggleAccountRemovalClearsBalances(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	_, _, err := svc.ToggleAccount("Wallet")
	require.NoError(t, err)

	_, err = svc.RecordTransaction(service.TransactionDraft{
		Type: "groceries", AmountSent: "5", CurrencySent: "EUR", From: "Wallet",
	})
	require.NoError(t, err)

	action, name, err := svc.ToggleAccount("wallet")
	require.NoError(t, err)
	require.Equal(t, service.ToggleRemoved, action)
	require.Equal(t, "Wallet", name)

	doc, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, doc.Accounts)
	require.NotContains(t, doc.Balances, "Wallet")
	// The log itself is never rewritten by membership changes.
	require.Len(t, doc.Transactions, 1)
}

func TestDoubleToggleRestoresRoster(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	_, _, err := svc.ToggleMember("Alice")
	require.NoError(t, err)
	_, _, err = svc.ToggleMember("Bob")
	require.NoError(t, err)

	_, _, err = svc.ToggleMember("CHARLIE")
	require.NoError(t, err)
	_, _, err = svc.ToggleMember("charlie")
	require.NoError(t, err)

	doc, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Bob"}, doc.Members)
}

func TestRosterForbidsCaseInsensitiveDuplicates(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	_, _, err := svc.ToggleMember("Alice")
	require.NoError(t, err)

	// A case-varied resubmission toggles the existing entry off instead of
	// creating a duplicate.
	action, _, err := svc.ToggleMember("alice")
	require.NoError(t, err)
	require.Equal(t, service.ToggleRemoved, action)

	doc, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, doc.Members)
}
