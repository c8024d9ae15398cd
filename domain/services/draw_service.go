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

// Revenue split applied when a round rolls over or settles.
// 70% of ticket revenue carries into the next jackpot, 30% funds
// the treasury. Integer division floors both cuts.
const (
	carryoverNumerator = 7
	treasuryNumerator  = 3
	splitDenominator   = 10
)

type drawService struct {
	roundRepo      interfaces.RoundRepository
	ticketRepo     interfaces.TicketRepository
	winningRepo    interfaces.WinningRepository
	statsRepo      interfaces.StatsRepository
	eventPublisher interfaces.EventPublisher
	random         interfaces.RandomSource
	baseJackpot    int64
	ticketPrice    int64
}

// NewDrawService creates a new round lifecycle service.
func NewDrawService(
	roundRepo interfaces.RoundRepository,
	ticketRepo interfaces.TicketRepository,
	winningRepo interfaces.WinningRepository,
	statsRepo interfaces.StatsRepository,
	eventPublisher interfaces.EventPublisher,
	random interfaces.RandomSource,
	baseJackpot, ticketPrice int64,
) interfaces.DrawService {
	return &drawService{
		roundRepo:      roundRepo,
		ticketRepo:     ticketRepo,
		winningRepo:    winningRepo,
		statsRepo:      statsRepo,
		eventPublisher: eventPublisher,
		random:         random,
		baseJackpot:    baseJackpot,
		ticketPrice:    ticketPrice,
	}
}

// GetOrCreateCurrentRound returns the active round, creating one when
// none exists. The opening jackpot of a fresh round is seeded from the
// last completed round's settlement: the base jackpot after a win,
// base plus carryover after a rollover.
func (s *drawService) GetOrCreateCurrentRound(ctx context.Context) (*entities.Round, error) {
	round, err := s.roundRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}
	if round != nil {
		return round, nil
	}

	jackpot := s.baseJackpot
	last, err := s.roundRepo.GetLastCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last completed round: %w", err)
	}
	if last != nil {
		// A completed round rolled over unless a winning was recorded
		// for it. The drawn number alone cannot tell: a rollover round
		// still stores the number it drew.
		winning, err := s.winningRepo.GetByRound(ctx, last.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get winning for round %d: %w", last.ID, err)
		}
		if winning == nil {
			revenue := int64(last.TicketCount) * s.ticketPrice
			jackpot = s.baseJackpot + revenue*carryoverNumerator/splitDenominator
		}
	}

	seq, err := s.roundRepo.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get next round sequence: %w", err)
	}

	now := time.Now().UTC()
	round = &entities.Round{
		Sequence:  seq,
		StartTime: now,
		EndTime:   now.Add(entities.RoundDuration),
		Status:    entities.RoundStatusActive,
		Jackpot:   jackpot,
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":  round.ID,
		"sequence": round.Sequence,
		"jackpot":  round.Jackpot,
	}).Info("opened new round")

	return round, nil
}

// CompleteRound settles the active round: draws a number among sold
// tickets, records a winning when one matches, applies the revenue
// split and opens the next round.
//
// The active round row is locked for the duration, so concurrent
// callers settle a given round exactly once.
func (s *drawService) CompleteRound(ctx context.Context) (*interfaces.DrawResult, error) {
	round, err := s.roundRepo.GetActiveForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock active round: %w", err)
	}
	if round == nil {
		return nil, entities.ErrNoActiveRound
	}
	if !round.HasEnded(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: round %d ends at %s", entities.ErrRoundNotExpired, round.ID, round.EndTime.Format(time.RFC3339))
	}

	var winningNumber *int
	var winnerTicket *entities.Ticket
	if round.TicketCount > 0 {
		n := s.random.Intn(entities.NumberMax) + entities.NumberMin
		winningNumber = &n
		winnerTicket, err = s.ticketRepo.GetByNumber(ctx, round.ID, n)
		if err != nil {
			return nil, fmt.Errorf("failed to look up winning ticket: %w", err)
		}
	}

	if err := s.roundRepo.MarkCompleted(ctx, round.ID, winningNumber); err != nil {
		return nil, fmt.Errorf("failed to complete round: %w", err)
	}
	round.Complete(winningNumber)

	revenue := int64(round.TicketCount) * s.ticketPrice
	treasuryCut := revenue * treasuryNumerator / splitDenominator

	var winning *entities.Winning
	nextJackpot := s.baseJackpot
	if winnerTicket != nil {
		winning = &entities.Winning{
			PlayerFid: winnerTicket.PlayerFid,
			RoundID:   round.ID,
			TicketID:  winnerTicket.ID,
			Amount:    round.Jackpot,
		}
		if err := s.winningRepo.Create(ctx, winning); err != nil {
			return nil, fmt.Errorf("failed to record winning: %w", err)
		}
	} else {
		nextJackpot = s.baseJackpot + revenue*carryoverNumerator/splitDenominator
	}

	if err := s.statsRepo.ApplyDrawCompletion(ctx, round.TicketCount, treasuryCut); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	seq, err := s.roundRepo.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get next round sequence: %w", err)
	}
	now := time.Now().UTC()
	next := &entities.Round{
		Sequence:  seq,
		StartTime: now,
		EndTime:   now.Add(entities.RoundDuration),
		Status:    entities.RoundStatusActive,
		Jackpot:   nextJackpot,
	}
	if err := s.roundRepo.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to open next round: %w", err)
	}

	var winnerFid *int64
	if winning != nil {
		winnerFid = &winning.PlayerFid
	}
	if err := s.eventPublisher.Publish(events.RoundCompletedEvent{
		RoundID:       round.ID,
		Sequence:      round.Sequence,
		WinningNumber: winningNumber,
		WinnerFid:     winnerFid,
		Jackpot:       round.Jackpot,
		TicketsSold:   round.TicketCount,
		NextRoundID:   next.ID,
		NextJackpot:   next.Jackpot,
	}); err != nil {
		log.WithError(err).Warn("failed to publish round completed event")
	}

	fields := log.Fields{
		"roundID":     round.ID,
		"sequence":    round.Sequence,
		"ticketsSold": round.TicketCount,
		"nextJackpot": next.Jackpot,
	}
	if winningNumber != nil {
		fields["winningNumber"] = *winningNumber
	}
	if winning != nil {
		fields["winnerFid"] = winning.PlayerFid
		fields["prize"] = winning.Amount
	}
	log.WithFields(fields).Info("round settled")

	return &interfaces.DrawResult{
		Round:         round,
		WinningNumber: winningNumber,
		Winning:       winning,
		TicketsSold:   round.TicketCount,
		TreasuryCut:   treasuryCut,
		NextRound:     next,
	}, nil
}

// GetRecentResults returns the most recent completed rounds, newest first.
func (s *drawService) GetRecentResults(ctx context.Context, limit int) ([]*entities.Round, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.roundRepo.GetRecentCompleted(ctx, limit)
}

// GetLastWinningNumber returns the number drawn in the most recently
// completed round, or nil when no round has drawn one yet.
func (s *drawService) GetLastWinningNumber(ctx context.Context) (*int, error) {
	last, err := s.roundRepo.GetLastCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last completed round: %w", err)
	}
	if last == nil {
		return nil, nil
	}
	return last.WinningNumber, nil
}
