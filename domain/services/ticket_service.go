package services

import (
	"context"
	"errors"
	"fmt"

	"lambolotto/domain/entities"
	"lambolotto/domain/events"
	"lambolotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ticketService implements number allocation for cash purchases.
//
// All reads that gate writes happen against repositories that the caller
// has already scoped to one database transaction; the (round, number)
// unique constraint is the final arbiter under concurrency.
type ticketService struct {
	roundRepo      interfaces.RoundRepository
	ticketRepo     interfaces.TicketRepository
	purchaseRepo   interfaces.PurchaseRepository
	statsRepo      interfaces.StatsRepository
	eventPublisher interfaces.EventPublisher
	ticketPrice    int64
}

// NewTicketService creates a new ticket allocation service.
func NewTicketService(
	roundRepo interfaces.RoundRepository,
	ticketRepo interfaces.TicketRepository,
	purchaseRepo interfaces.PurchaseRepository,
	statsRepo interfaces.StatsRepository,
	eventPublisher interfaces.EventPublisher,
	ticketPrice int64,
) interfaces.TicketService {
	return &ticketService{
		roundRepo:      roundRepo,
		ticketRepo:     ticketRepo,
		purchaseRepo:   purchaseRepo,
		statsRepo:      statsRepo,
		eventPublisher: eventPublisher,
		ticketPrice:    ticketPrice,
	}
}

// ValidateNumbers rejects malformed batches before any state is read.
func ValidateNumbers(numbers []int) error {
	if len(numbers) == 0 || len(numbers) > entities.MaxTicketsPerPlayer {
		return entities.ErrTooManyTickets
	}
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if !entities.ValidNumber(n) {
			return fmt.Errorf("%w: %d", entities.ErrInvalidNumberRange, n)
		}
		if seen[n] {
			return fmt.Errorf("%w: %d", entities.ErrDuplicateNumbers, n)
		}
		seen[n] = true
	}
	return nil
}

// PurchaseTickets allocates the requested numbers to the player.
func (s *ticketService) PurchaseTickets(ctx context.Context, playerFid, roundID int64, numbers []int, playerAddress, txRef string) (*interfaces.PurchaseResult, error) {
	if err := ValidateNumbers(numbers); err != nil {
		return nil, err
	}

	// Idempotent replay: a previously settled transaction reference must
	// not mint tickets twice.
	if txRef != "" {
		existing, err := s.purchaseRepo.Get(ctx, txRef)
		if err != nil {
			return nil, fmt.Errorf("failed to check purchase record: %w", err)
		}
		if existing != nil {
			log.WithField("txRef", txRef).Info("purchase already settled, replaying success")
			return s.replayResult(ctx, existing, playerFid)
		}
	}

	round, err := s.roundRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}
	if round == nil {
		return nil, entities.ErrNoActiveRound
	}
	if roundID != 0 && roundID != round.ID {
		return nil, fmt.Errorf("%w: round %d", entities.ErrRoundNotActive, roundID)
	}

	held, err := s.ticketRepo.CountByPlayer(ctx, round.ID, playerFid)
	if err != nil {
		return nil, fmt.Errorf("failed to count player tickets: %w", err)
	}
	if held+len(numbers) > entities.MaxTicketsPerPlayer {
		return nil, fmt.Errorf("%w: holding %d, requested %d", entities.ErrRoundCapacityExceeded, held, len(numbers))
	}

	taken, err := s.ticketRepo.GetTakenAmong(ctx, round.ID, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to check taken numbers: %w", err)
	}
	if len(taken) > 0 {
		return nil, &entities.NumberTakenError{Numbers: taken}
	}

	tickets := make([]*entities.Ticket, 0, len(numbers))
	for _, n := range numbers {
		ticket := &entities.Ticket{
			RoundID:       round.ID,
			PlayerFid:     playerFid,
			PlayerAddress: playerAddress,
			Number:        n,
			Price:         s.ticketPrice,
		}
		if txRef != "" {
			ref := txRef
			ticket.TxRef = &ref
		}
		tickets = append(tickets, ticket)
	}

	// The unique constraint resolves races the pre-check missed.
	if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
		return nil, err
	}

	if txRef != "" {
		record := &entities.Purchase{
			TxRef:       txRef,
			RoundID:     round.ID,
			PlayerFid:   playerFid,
			TicketCount: len(tickets),
		}
		if err := s.purchaseRepo.Record(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to record purchase: %w", err)
		}
	}

	if err := s.roundRepo.IncrementTicketCount(ctx, round.ID, len(tickets)); err != nil {
		return nil, fmt.Errorf("failed to update round ticket count: %w", err)
	}
	if err := s.statsRepo.RecordTicketSale(ctx, len(tickets)); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}
	round.TicketCount += len(tickets)

	totalCost := s.ticketPrice * int64(len(tickets))
	if err := s.eventPublisher.Publish(events.TicketsPurchasedEvent{
		RoundID:   round.ID,
		PlayerFid: playerFid,
		Numbers:   numbers,
		TotalCost: totalCost,
		TxRef:     txRef,
	}); err != nil {
		log.WithError(err).Warn("failed to publish tickets purchased event")
	}

	return &interfaces.PurchaseResult{
		Tickets:   tickets,
		Round:     round,
		TotalCost: totalCost,
	}, nil
}

// replayResult reconstructs a successful response for an already
// settled transaction reference without inserting anything.
func (s *ticketService) replayResult(ctx context.Context, purchase *entities.Purchase, playerFid int64) (*interfaces.PurchaseResult, error) {
	round, err := s.roundRepo.GetByID(ctx, purchase.RoundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase round: %w", err)
	}
	tickets, err := s.ticketRepo.GetByPlayerForRound(ctx, purchase.RoundID, purchase.PlayerFid)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase tickets: %w", err)
	}
	if purchase.PlayerFid != playerFid {
		// Same txRef claimed by a different player: report replay
		// without leaking the original tickets.
		tickets = nil
	}
	return &interfaces.PurchaseResult{
		Tickets:   tickets,
		Round:     round,
		TotalCost: 0,
		Replayed:  true,
	}, nil
}

// GetUserTickets returns the player's tickets in the active round.
func (s *ticketService) GetUserTickets(ctx context.Context, playerFid int64) ([]*entities.Ticket, error) {
	round, err := s.roundRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}
	if round == nil {
		return nil, nil
	}
	return s.ticketRepo.GetByPlayerForRound(ctx, round.ID, playerFid)
}

// GetTakenNumbers returns the sold numbers of a round.
func (s *ticketService) GetTakenNumbers(ctx context.Context, roundID int64) ([]int, error) {
	if roundID == 0 {
		round, err := s.roundRepo.GetActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get active round: %w", err)
		}
		if round == nil {
			return nil, entities.ErrNoActiveRound
		}
		roundID = round.ID
	}
	return s.ticketRepo.GetTakenNumbers(ctx, roundID)
}

// IsConflict reports whether err is a state-conflict the caller may
// retry with adjusted input.
func IsConflict(err error) bool {
	return errors.Is(err, entities.ErrNumberTaken) ||
		errors.Is(err, entities.ErrRoundCapacityExceeded) ||
		errors.Is(err, entities.ErrRoundFull) ||
		errors.Is(err, entities.ErrCodeExhausted) ||
		errors.Is(err, entities.ErrAlreadyClaimed)
}
