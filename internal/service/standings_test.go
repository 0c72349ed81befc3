package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestStandingsBalanceMath(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	for _, name := range []string{"Alice", "Bob", "Charlie"} {
		_, _, err := svc.ToggleMember(name)
		require.NoError(t, err)
	}

	// Payer names and split names are matched case-insensitively against the
	// roster.
	_, err := svc.RecordExpense("10.00", "alice", []string{"Alice", "Bob", "Charlie"})
	require.NoError(t, err)

	rows, _, err := svc.Standings()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byName := map[string]decimal.Decimal{}
	for _, row := range rows {
		byName[row.Member] = row.Balance
	}

	share := decimal.RequireFromString("10.00").Div(decimal.NewFromInt(3))
	require.True(t, byName["Alice"].Equal(decimal.RequireFromString("10.00").Sub(share)))
	require.True(t, byName["Bob"].Equal(share.Neg()))
	require.True(t, byName["Charlie"].Equal(share.Neg()))

	// Shares sum back to the amount within the documented 0.01 tolerance.
	sum := share.Mul(decimal.NewFromInt(3))
	drift := decimal.RequireFromString("10.00").Sub(sum).Abs()
	require.True(t, drift.LessThanOrEqual(decimal.RequireFromString("0.01")), "drift %s", drift)
}

func TestStandingsOrderAndTies(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	for _, name := range []string{"Alice", "Bob", "Charlie"} {
		_, _, err := svc.ToggleMember(name)
		require.NoError(t, err)
	}
	_, _, err := svc.RecordChore("Bob", "30")
	require.NoError(t, err)

	rows, hasChores, err := svc.Standings()
	require.NoError(t, err)
	require.True(t, hasChores)

	// Points descending; zero-point members are still ranked and ties keep
	// roster order.
	require.Equal(t, "Bob", rows[0].Member)
	require.Equal(t, 2, rows[0].Points)
	require.Equal(t, "Alice", rows[1].Member)
	require.Equal(t, "Charlie", rows[2].Member)
}

func TestStandingsNormalizesChoreCasing(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, _, err := svc.ToggleMember("Alice")
	require.NoError(t, err)

	_, _, err = svc.RecordChore("ALICE", "30")
	require.NoError(t, err)
	_, _, err = svc.RecordChore("alice", "15")
	require.NoError(t, err)

	rows, _, err := svc.Standings()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Alice", rows[0].Member)
	require.Equal(t, 3, rows[0].Points)
}

func TestStandingsEmptyRoster(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	rows, hasChores, err := svc.Standings()
	require.NoError(t, err)
	require.Empty(t, rows)
	require.False(t, hasChores)
}

func TestStandingsIgnoresUnknownNames(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, _, err := svc.ToggleMember("Alice")
	require.NoError(t, err)

	// Expenses naming people who are not on the roster contribute nothing.
	_, err = svc.RecordExpense("9", "Ghost", []string{"Alice", "Ghost", "Phantom"})
	require.NoError(t, err)

	rows, _, err := svc.Standings()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	share := decimal.NewFromInt(9).Div(decimal.NewFromInt(3))
	require.True(t, rows[0].Balance.Equal(share.Neg()), "got %s", rows[0].Balance)
}
