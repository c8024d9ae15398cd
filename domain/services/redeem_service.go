package services

import (
	"context"
	"fmt"

	"lambolotto/domain/entities"
	"lambolotto/domain/events"
	"lambolotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type redeemService struct {
	roundRepo      interfaces.RoundRepository
	ticketRepo     interfaces.TicketRepository
	codeRepo       interfaces.DailyCodeRepository
	tokenRepo      interfaces.NotificationTokenRepository
	statsRepo      interfaces.StatsRepository
	eventPublisher interfaces.EventPublisher
	random         interfaces.RandomSource
	grantSize      int
}

// NewRedeemService creates the daily code redemption service.
// grantSize caps how many free tickets one redemption grants.
func NewRedeemService(
	roundRepo interfaces.RoundRepository,
	ticketRepo interfaces.TicketRepository,
	codeRepo interfaces.DailyCodeRepository,
	tokenRepo interfaces.NotificationTokenRepository,
	statsRepo interfaces.StatsRepository,
	eventPublisher interfaces.EventPublisher,
	random interfaces.RandomSource,
	grantSize int,
) interfaces.RedeemService {
	return &redeemService{
		roundRepo:      roundRepo,
		ticketRepo:     ticketRepo,
		codeRepo:       codeRepo,
		tokenRepo:      tokenRepo,
		statsRepo:      statsRepo,
		eventPublisher: eventPublisher,
		random:         random,
		grantSize:      grantSize,
	}
}

// Redeem grants free random tickets against an active daily code.
// Eligibility checks run in a fixed order so the caller always sees
// the same failure for the same state.
func (s *redeemService) Redeem(ctx context.Context, playerFid int64, code string) (*interfaces.RedeemResult, error) {
	dailyCode, err := s.codeRepo.GetActiveByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}
	if dailyCode == nil {
		return nil, entities.ErrInvalidCode
	}

	used, err := s.codeRepo.HasUsage(ctx, playerFid, dailyCode.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check code usage: %w", err)
	}
	if used {
		return nil, entities.ErrAlreadyUsedThisCode
	}

	if dailyCode.MaxRedemptions > 0 {
		redeemers, err := s.codeRepo.CountDistinctUsers(ctx, dailyCode.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to count code redemptions: %w", err)
		}
		if redeemers >= dailyCode.MaxRedemptions {
			return nil, entities.ErrCodeExhausted
		}
	}

	usedToday, err := s.codeRepo.HasUsageToday(ctx, playerFid)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily usage: %w", err)
	}
	if usedToday {
		return nil, entities.ErrDailyLimitReached
	}

	subscribed, err := s.tokenRepo.HasSubscription(ctx, playerFid)
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if !subscribed {
		return nil, entities.ErrSubscriptionRequired
	}

	round, err := s.roundRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}
	if round == nil {
		return nil, entities.ErrNoActiveRound
	}

	held, err := s.ticketRepo.CountByPlayer(ctx, round.ID, playerFid)
	if err != nil {
		return nil, fmt.Errorf("failed to count player tickets: %w", err)
	}
	grant := s.grantSize
	if remaining := entities.MaxTicketsPerPlayer - held; remaining < grant {
		grant = remaining
	}
	if grant <= 0 {
		return nil, entities.ErrRoundFull
	}

	taken, err := s.ticketRepo.GetTakenNumbers(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get taken numbers: %w", err)
	}
	takenSet := make(map[int]bool, len(taken))
	for _, n := range taken {
		takenSet[n] = true
	}
	available := make([]int, 0, entities.NumberMax)
	for n := entities.NumberMin; n <= entities.NumberMax; n++ {
		if !takenSet[n] {
			available = append(available, n)
		}
	}
	if len(available) < grant {
		return nil, fmt.Errorf("%w: %d numbers left, need %d", entities.ErrInsufficientNumbers, len(available), grant)
	}

	granted := pickWithoutReplacement(s.random, available, grant)

	tickets := make([]*entities.Ticket, 0, grant)
	for _, n := range granted {
		tickets = append(tickets, &entities.Ticket{
			RoundID:   round.ID,
			PlayerFid: playerFid,
			Number:    n,
			Price:     0,
		})
	}
	if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
		return nil, err
	}

	// PK(player, code) makes a concurrent double redemption fail here.
	if err := s.codeRepo.RecordUsage(ctx, playerFid, dailyCode.Code); err != nil {
		return nil, err
	}

	if err := s.roundRepo.IncrementTicketCount(ctx, round.ID, len(tickets)); err != nil {
		return nil, fmt.Errorf("failed to update round ticket count: %w", err)
	}
	if err := s.statsRepo.RecordTicketSale(ctx, len(tickets)); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}
	round.TicketCount += len(tickets)

	if err := s.eventPublisher.Publish(events.CodeRedeemedEvent{
		RoundID:        round.ID,
		PlayerFid:      playerFid,
		Code:           dailyCode.Code,
		GrantedNumbers: granted,
	}); err != nil {
		log.WithError(err).Warn("failed to publish code redeemed event")
	}

	log.WithFields(log.Fields{
		"playerFid": playerFid,
		"code":      dailyCode.Code,
		"roundID":   round.ID,
		"granted":   granted,
	}).Info("daily code redeemed")

	return &interfaces.RedeemResult{
		Round:          round,
		GrantedTickets: tickets,
		GrantedNumbers: granted,
	}, nil
}
