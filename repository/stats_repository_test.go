package repository

import (
	"context"
	"testing"

	"lambolotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_GetOrCreate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewStatsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("migration seeds the singleton row", func(t *testing.T) {
		stats, err := repo.GetOrCreate(ctx, 5_000_000)
		require.NoError(t, err)
		assert.Zero(t, stats.TreasuryBalance)
		assert.Zero(t, stats.TotalTickets)
		assert.Zero(t, stats.ActiveTickets)
		assert.Zero(t, stats.LastDrawNumber)
	})

	t.Run("re-seeds with the starting treasury if the row is gone", func(t *testing.T) {
		_, err := testDB.DB.Exec(ctx, "DELETE FROM lottery_stats")
		require.NoError(t, err)

		stats, err := repo.GetOrCreate(ctx, 5_000_000)
		require.NoError(t, err)
		assert.Equal(t, int64(5_000_000), stats.TreasuryBalance)

		stats, err = repo.GetOrCreate(ctx, 999)
		require.NoError(t, err)
		assert.Equal(t, int64(5_000_000), stats.TreasuryBalance)
	})
}

func TestStatsRepository_CountersBeforeFirstRead(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewStatsRepository(testDB.DB)
	ctx := context.Background()

	// Mutations land on the migration-seeded row even when nothing has
	// read the stats yet.
	require.NoError(t, repo.RecordTicketSale(ctx, 4))
	require.NoError(t, repo.ApplyDrawCompletion(ctx, 4, 120_000))

	stats, err := repo.GetOrCreate(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalTickets)
	assert.Zero(t, stats.ActiveTickets)
	assert.Equal(t, int64(120_000), stats.TreasuryBalance)
	assert.Equal(t, int64(1), stats.LastDrawNumber)
}

func TestStatsRepository_Counters(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewStatsRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.RecordTicketSale(ctx, 3))
	require.NoError(t, repo.RecordTicketSale(ctx, 2))

	stats, err := repo.GetOrCreate(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalTickets)
	assert.Equal(t, int64(5), stats.ActiveTickets)

	require.NoError(t, repo.ApplyDrawCompletion(ctx, 5, 150_000))

	stats, err = repo.GetOrCreate(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalTickets)
	assert.Zero(t, stats.ActiveTickets)
	assert.Equal(t, int64(150_000), stats.TreasuryBalance)
	assert.Equal(t, int64(1), stats.LastDrawNumber)

	require.NoError(t, repo.AdjustTreasury(ctx, -100_000))

	stats, err = repo.GetOrCreate(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), stats.TreasuryBalance)
}

func TestStatsRepository_MutationsFailWithoutRow(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewStatsRepository(testDB.DB)
	ctx := context.Background()

	_, err := testDB.DB.Exec(ctx, "DELETE FROM lottery_stats")
	require.NoError(t, err)

	assert.Error(t, repo.RecordTicketSale(ctx, 1))
	assert.Error(t, repo.ApplyDrawCompletion(ctx, 1, 100))
	assert.Error(t, repo.AdjustTreasury(ctx, 100))
}
