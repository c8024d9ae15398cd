package services

import (
	"context"
	"fmt"
	"time"

	"lambolotto/domain/entities"
	"lambolotto/domain/events"
	"lambolotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type claimService struct {
	winningRepo    interfaces.WinningRepository
	ticketRepo     interfaces.TicketRepository
	statsRepo      interfaces.StatsRepository
	payout         interfaces.PayoutSender
	eventPublisher interfaces.EventPublisher
}

// NewClaimService creates the prize claim service.
func NewClaimService(
	winningRepo interfaces.WinningRepository,
	ticketRepo interfaces.TicketRepository,
	statsRepo interfaces.StatsRepository,
	payout interfaces.PayoutSender,
	eventPublisher interfaces.EventPublisher,
) interfaces.ClaimService {
	return &claimService{
		winningRepo:    winningRepo,
		ticketRepo:     ticketRepo,
		statsRepo:      statsRepo,
		payout:         payout,
		eventPublisher: eventPublisher,
	}
}

// Claim pays out a winning to its holder. The winning row is locked
// first so a claim settles at most once; the transfer runs before the
// row is marked, so a failed transfer leaves the prize claimable.
func (s *claimService) Claim(ctx context.Context, winningID, playerFid int64) (*entities.Winning, error) {
	winning, err := s.winningRepo.GetByIDForUpdate(ctx, winningID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock winning: %w", err)
	}
	if winning == nil || winning.PlayerFid != playerFid {
		return nil, entities.ErrWinningNotFound
	}
	if winning.IsClaimed() {
		return nil, entities.ErrAlreadyClaimed
	}

	ticket, err := s.ticketRepo.GetByID(ctx, winning.TicketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load winning ticket: %w", err)
	}
	if ticket == nil || ticket.PlayerAddress == "" {
		return nil, fmt.Errorf("%w: no payout address on record", entities.ErrPayoutFailed)
	}

	transferRef, err := s.payout.Transfer(ctx, ticket.PlayerAddress, winning.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrPayoutFailed, err)
	}

	claimedAt := time.Now().UTC()
	if err := s.winningRepo.MarkClaimed(ctx, winning.ID, transferRef, claimedAt); err != nil {
		return nil, fmt.Errorf("failed to mark winning claimed: %w", err)
	}
	if err := s.statsRepo.AdjustTreasury(ctx, -winning.Amount); err != nil {
		return nil, fmt.Errorf("failed to debit treasury: %w", err)
	}

	winning.ClaimedAt = &claimedAt
	winning.PayoutTxRef = &transferRef

	if err := s.eventPublisher.Publish(events.PrizeClaimedEvent{
		WinningID:   winning.ID,
		PlayerFid:   playerFid,
		Amount:      winning.Amount,
		PayoutTxRef: transferRef,
	}); err != nil {
		log.WithError(err).Warn("failed to publish prize claimed event")
	}

	log.WithFields(log.Fields{
		"winningID":   winning.ID,
		"playerFid":   playerFid,
		"amount":      winning.Amount,
		"transferRef": transferRef,
	}).Info("prize claimed")

	return winning, nil
}

// Unclaim reverts a claim marker after a payout was reversed out of
// band. It never re-transfers tokens, it only restores bookkeeping.
func (s *claimService) Unclaim(ctx context.Context, winningID, playerFid int64) (*entities.Winning, error) {
	winning, err := s.winningRepo.GetByIDForUpdate(ctx, winningID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock winning: %w", err)
	}
	if winning == nil || winning.PlayerFid != playerFid {
		return nil, entities.ErrWinningNotFound
	}
	if !winning.IsClaimed() {
		return nil, entities.ErrNotClaimed
	}

	if err := s.winningRepo.ResetClaim(ctx, winning.ID); err != nil {
		return nil, fmt.Errorf("failed to reset claim: %w", err)
	}
	if err := s.statsRepo.AdjustTreasury(ctx, winning.Amount); err != nil {
		return nil, fmt.Errorf("failed to credit treasury: %w", err)
	}

	winning.ClaimedAt = nil
	winning.PayoutTxRef = nil

	if err := s.eventPublisher.Publish(events.PrizeUnclaimedEvent{
		WinningID: winning.ID,
		PlayerFid: winning.PlayerFid,
		Amount:    winning.Amount,
	}); err != nil {
		log.WithError(err).Warn("failed to publish prize unclaimed event")
	}

	log.WithFields(log.Fields{
		"winningID": winning.ID,
		"playerFid": winning.PlayerFid,
		"amount":    winning.Amount,
	}).Info("prize claim reverted")

	return winning, nil
}

// GetUserWinnings returns all winnings for a player, newest first.
func (s *claimService) GetUserWinnings(ctx context.Context, playerFid int64) ([]*entities.WinningDetail, error) {
	return s.winningRepo.GetByPlayer(ctx, playerFid)
}
