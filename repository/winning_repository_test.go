package repository

import (
	"context"
	"testing"
	"time"

	"lambolotto/domain/entities"
	"lambolotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWinning(t *testing.T, testDB *testutil.TestDatabase) *entities.Winning {
	t.Helper()
	ctx := context.Background()
	roundRepo := NewRoundRepository(testDB.DB)
	ticketRepo := NewTicketRepository(testDB.DB)
	winningRepo := NewWinningRepository(testDB.DB)

	round := newTestRound(1)
	require.NoError(t, roundRepo.Create(ctx, round))
	ticket := ticketFor(round.ID, 42, 7)
	require.NoError(t, ticketRepo.CreateBatch(ctx, []*entities.Ticket{ticket}))
	won := 7
	require.NoError(t, roundRepo.MarkCompleted(ctx, round.ID, &won))

	winning := &entities.Winning{
		PlayerFid: 42,
		RoundID:   round.ID,
		TicketID:  ticket.ID,
		Amount:    1_000_000,
	}
	require.NoError(t, winningRepo.Create(ctx, winning))
	return winning
}

func TestWinningRepository_ClaimLifecycle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewWinningRepository(testDB.DB)
	ctx := context.Background()

	winning := seedWinning(t, testDB)

	t.Run("starts unclaimed", func(t *testing.T) {
		got, err := repo.GetByID(ctx, winning.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.False(t, got.IsClaimed())
	})

	claimedAt := time.Now().UTC()

	t.Run("mark claimed", func(t *testing.T) {
		require.NoError(t, repo.MarkClaimed(ctx, winning.ID, "0xtransfer", claimedAt))

		got, err := repo.GetByID(ctx, winning.ID)
		require.NoError(t, err)
		assert.True(t, got.IsClaimed())
		require.NotNil(t, got.PayoutTxRef)
		assert.Equal(t, "0xtransfer", *got.PayoutTxRef)
	})

	t.Run("claiming twice fails", func(t *testing.T) {
		err := repo.MarkClaimed(ctx, winning.ID, "0xother", time.Now().UTC())
		assert.Error(t, err)
	})

	t.Run("reset claim", func(t *testing.T) {
		require.NoError(t, repo.ResetClaim(ctx, winning.ID))

		got, err := repo.GetByID(ctx, winning.ID)
		require.NoError(t, err)
		assert.False(t, got.IsClaimed())
		assert.Nil(t, got.PayoutTxRef)
	})

	t.Run("resetting an unclaimed winning fails", func(t *testing.T) {
		err := repo.ResetClaim(ctx, winning.ID)
		assert.Error(t, err)
	})
}

func TestWinningRepository_GetByPlayer(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewWinningRepository(testDB.DB)
	ctx := context.Background()

	winning := seedWinning(t, testDB)

	t.Run("no winnings for stranger", func(t *testing.T) {
		details, err := repo.GetByPlayer(ctx, 999)
		require.NoError(t, err)
		assert.Empty(t, details)
	})

	t.Run("winning detail joined", func(t *testing.T) {
		details, err := repo.GetByPlayer(ctx, 42)
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, winning.ID, details[0].ID)
		assert.Equal(t, int64(1), details[0].RoundSequence)
		assert.Equal(t, 7, details[0].WinningNumber)
		assert.Equal(t, 7, details[0].TicketNumber)
	})
}

func TestWinningRepository_GetByRound(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewWinningRepository(testDB.DB)
	ctx := context.Background()

	winning := seedWinning(t, testDB)

	t.Run("round with a winning", func(t *testing.T) {
		got, err := repo.GetByRound(ctx, winning.RoundID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, winning.ID, got.ID)
		assert.Equal(t, int64(42), got.PlayerFid)
	})

	t.Run("round without a winning", func(t *testing.T) {
		got, err := repo.GetByRound(ctx, winning.RoundID+100)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestWinningRepository_OneWinningPerRound(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewWinningRepository(testDB.DB)
	ctx := context.Background()

	winning := seedWinning(t, testDB)

	err := repo.Create(ctx, &entities.Winning{
		PlayerFid: 77,
		RoundID:   winning.RoundID,
		TicketID:  winning.TicketID,
		Amount:    500_000,
	})
	assert.Error(t, err)
}
