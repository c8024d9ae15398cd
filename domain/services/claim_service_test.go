package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"lambolotto/domain/entities"
	"lambolotto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupClaimServiceMocks() (
	*testhelpers.MockWinningRepository,
	*testhelpers.MockTicketRepository,
	*testhelpers.MockStatsRepository,
	*testhelpers.MockPayoutSender,
	*testhelpers.MockEventPublisher,
) {
	return new(testhelpers.MockWinningRepository),
		new(testhelpers.MockTicketRepository),
		new(testhelpers.MockStatsRepository),
		new(testhelpers.MockPayoutSender),
		new(testhelpers.MockEventPublisher)
}

func unclaimedWinning(id, playerFid int64) *entities.Winning {
	return &entities.Winning{
		ID:        id,
		PlayerFid: playerFid,
		RoundID:   1,
		TicketID:  77,
		Amount:    4_500_000,
		CreatedAt: time.Now().UTC(),
	}
}

func TestClaimService_Claim_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	winningRepo, ticketRepo, statsRepo, payout, publisher := setupClaimServiceMocks()
	svc := NewClaimService(winningRepo, ticketRepo, statsRepo, payout, publisher)

	winning := unclaimedWinning(5, 42)
	ticket := &entities.Ticket{ID: 77, RoundID: 1, PlayerFid: 42, PlayerAddress: "0xdest", Number: 42}

	winningRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(winning, nil)
	ticketRepo.On("GetByID", ctx, int64(77)).Return(ticket, nil)
	payout.On("Transfer", ctx, "0xdest", int64(4_500_000)).Return("0xtransfer", nil)
	winningRepo.On("MarkClaimed", ctx, int64(5), "0xtransfer", mock.AnythingOfType("time.Time")).Return(nil)
	statsRepo.On("AdjustTreasury", ctx, int64(-4_500_000)).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.PrizeClaimedEvent")).Return(nil)

	result, err := svc.Claim(ctx, 5, 42)

	require.NoError(t, err)
	assert.True(t, result.IsClaimed())
	require.NotNil(t, result.PayoutTxRef)
	assert.Equal(t, "0xtransfer", *result.PayoutTxRef)
	winningRepo.AssertExpectations(t)
	payout.AssertExpectations(t)
	statsRepo.AssertExpectations(t)
}

func TestClaimService_Claim_WrongOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	winningRepo, ticketRepo, statsRepo, payout, publisher := setupClaimServiceMocks()
	svc := NewClaimService(winningRepo, ticketRepo, statsRepo, payout, publisher)

	winningRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(unclaimedWinning(5, 42), nil)

	result, err := svc.Claim(ctx, 5, 99)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, entities.ErrWinningNotFound)
	payout.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimService_Claim_AlreadyClaimed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	winningRepo, ticketRepo, statsRepo, payout, publisher := setupClaimServiceMocks()
	svc := NewClaimService(winningRepo, ticketRepo, statsRepo, payout, publisher)

	winning := unclaimedWinning(5, 42)
	claimedAt := time.Now().UTC().Add(-1 * time.Hour)
	ref := "0xprev"
	winning.ClaimedAt = &claimedAt
	winning.PayoutTxRef = &ref
	winningRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(winning, nil)

	result, err := svc.Claim(ctx, 5, 42)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, entities.ErrAlreadyClaimed)
	// A settled claim must never transfer again.
	payout.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
	winningRepo.AssertNotCalled(t, "MarkClaimed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimService_Claim_TransferFailureLeavesClaimable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	winningRepo, ticketRepo, statsRepo, payout, publisher := setupClaimServiceMocks()
	svc := NewClaimService(winningRepo, ticketRepo, statsRepo, payout, publisher)

	winning := unclaimedWinning(5, 42)
	ticket := &entities.Ticket{ID: 77, RoundID: 1, PlayerFid: 42, PlayerAddress: "0xdest", Number: 42}
	winningRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(winning, nil)
	ticketRepo.On("GetByID", ctx, int64(77)).Return(ticket, nil)
	payout.On("Transfer", ctx, "0xdest", int64(4_500_000)).Return("", errors.New("rpc unreachable"))

	result, err := svc.Claim(ctx, 5, 42)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, entities.ErrPayoutFailed)
	winningRepo.AssertNotCalled(t, "MarkClaimed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	statsRepo.AssertNotCalled(t, "AdjustTreasury", mock.Anything, mock.Anything)
}

func TestClaimService_Unclaim_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	winningRepo, ticketRepo, statsRepo, payout, publisher := setupClaimServiceMocks()
	svc := NewClaimService(winningRepo, ticketRepo, statsRepo, payout, publisher)

	winning := unclaimedWinning(5, 42)
	claimedAt := time.Now().UTC().Add(-1 * time.Hour)
	ref := "0xprev"
	winning.ClaimedAt = &claimedAt
	winning.PayoutTxRef = &ref

	winningRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(winning, nil)
	winningRepo.On("ResetClaim", ctx, int64(5)).Return(nil)
	statsRepo.On("AdjustTreasury", ctx, int64(4_500_000)).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.PrizeUnclaimedEvent")).Return(nil)

	result, err := svc.Unclaim(ctx, 5, 42)

	require.NoError(t, err)
	assert.False(t, result.IsClaimed())
	assert.Nil(t, result.PayoutTxRef)
	// Reverting bookkeeping never moves tokens.
	payout.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
	statsRepo.AssertExpectations(t)
}

func TestClaimService_Unclaim_NotClaimed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	winningRepo, ticketRepo, statsRepo, payout, publisher := setupClaimServiceMocks()
	svc := NewClaimService(winningRepo, ticketRepo, statsRepo, payout, publisher)

	winningRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(unclaimedWinning(5, 42), nil)

	result, err := svc.Unclaim(ctx, 5, 42)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, entities.ErrNotClaimed)
	winningRepo.AssertNotCalled(t, "ResetClaim", mock.Anything, mock.Anything)
}

func TestClaimService_GetUserWinnings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	winningRepo, ticketRepo, statsRepo, payout, publisher := setupClaimServiceMocks()
	svc := NewClaimService(winningRepo, ticketRepo, statsRepo, payout, publisher)

	details := []*entities.WinningDetail{
		{Winning: *unclaimedWinning(5, 42), RoundSequence: 3, WinningNumber: 42, TicketNumber: 42},
	}
	winningRepo.On("GetByPlayer", ctx, int64(42)).Return(details, nil)

	got, err := svc.GetUserWinnings(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, details, got)
}
