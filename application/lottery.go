package application

import (
	"context"
	"fmt"

	"lambolotto/domain/entities"
	"lambolotto/domain/interfaces"
	"lambolotto/domain/services"

	log "github.com/sirupsen/logrus"
)

// LotteryConfig carries the tuning knobs the facade hands to its
// domain services.
type LotteryConfig struct {
	TicketPrice    int64
	BaseJackpot    int64
	DailyGrantSize int
}

// Lottery is the application facade. Each operation runs inside its
// own unit of work; services are constructed against that
// transaction's repositories.
type Lottery struct {
	uowFactory UnitOfWorkFactory
	verifier   interfaces.PaymentVerifier
	payout     interfaces.PayoutSender
	random     interfaces.RandomSource
	cfg        LotteryConfig
}

// NewLottery creates the lottery application facade
func NewLottery(
	uowFactory UnitOfWorkFactory,
	verifier interfaces.PaymentVerifier,
	payout interfaces.PayoutSender,
	random interfaces.RandomSource,
	cfg LotteryConfig,
) *Lottery {
	return &Lottery{
		uowFactory: uowFactory,
		verifier:   verifier,
		payout:     payout,
		random:     random,
		cfg:        cfg,
	}
}

// PurchaseTickets verifies the payment on-chain and then allocates the
// requested numbers in one transaction.
//
// Verification runs before the transaction opens, so no row locks are
// held during the receipt wait. Once the payment has verified, any
// persistence failure is wrapped in ErrPaymentNotCredited: the player
// has paid and holds no tickets, which needs operator attention.
func (l *Lottery) PurchaseTickets(ctx context.Context, playerFid, roundID int64, numbers []int, playerAddress, txRef string) (*interfaces.PurchaseResult, error) {
	// Malformed batches fail before the on-chain wait.
	if err := services.ValidateNumbers(numbers); err != nil {
		return nil, err
	}

	if err := l.verifier.VerifyPurchase(ctx, txRef, playerAddress); err != nil {
		return nil, err
	}

	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrPaymentNotCredited, err)
	}
	defer uow.Rollback()

	svc := services.NewTicketService(
		uow.RoundRepository(),
		uow.TicketRepository(),
		uow.PurchaseRepository(),
		uow.StatsRepository(),
		uow.EventBus(),
		l.cfg.TicketPrice,
	)

	result, err := svc.PurchaseTickets(ctx, playerFid, roundID, numbers, playerAddress, txRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrPaymentNotCredited, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrPaymentNotCredited, err)
	}
	return result, nil
}

// Redeem grants free tickets for a daily code
func (l *Lottery) Redeem(ctx context.Context, playerFid int64, code string) (*interfaces.RedeemResult, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	svc := services.NewRedeemService(
		uow.RoundRepository(),
		uow.TicketRepository(),
		uow.DailyCodeRepository(),
		uow.NotificationTokenRepository(),
		uow.StatsRepository(),
		uow.EventBus(),
		l.random,
		l.cfg.DailyGrantSize,
	)

	result, err := svc.Redeem(ctx, playerFid, code)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}
	return result, nil
}

// Claim pays out a winning to its owner
func (l *Lottery) Claim(ctx context.Context, winningID, playerFid int64) (*entities.Winning, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	svc := l.claimService(uow)
	winning, err := svc.Claim(ctx, winningID, playerFid)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		// The transfer is already on its way; the claim marker did not
		// land. Surface it loudly so support can reconcile.
		log.WithFields(log.Fields{
			"winningID": winningID,
			"error":     err,
		}).Error("payout sent but claim not recorded")
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	return winning, nil
}

// Unclaim reverses a claimed winning after an out-of-band payout reversal
func (l *Lottery) Unclaim(ctx context.Context, winningID, playerFid int64) (*entities.Winning, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	svc := l.claimService(uow)
	winning, err := svc.Unclaim(ctx, winningID, playerFid)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit unclaim: %w", err)
	}
	return winning, nil
}

// CompleteDueRound settles the active round when its end time has
// passed. Returns ErrRoundNotExpired while the round is still open.
func (l *Lottery) CompleteDueRound(ctx context.Context) (*interfaces.DrawResult, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := l.drawService(uow).CompleteRound(ctx)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit draw: %w", err)
	}
	return result, nil
}

// GetCurrentRound returns the active round, creating one when none exists
func (l *Lottery) GetCurrentRound(ctx context.Context) (*entities.Round, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := l.drawService(uow).GetOrCreateCurrentRound(ctx)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit round creation: %w", err)
	}
	return round, nil
}

// GetTakenNumbers returns the sold numbers of a round (0 = active round)
func (l *Lottery) GetTakenNumbers(ctx context.Context, roundID int64) ([]int, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return l.ticketService(uow).GetTakenNumbers(ctx, roundID)
}

// GetUserTickets returns the player's tickets in the active round
func (l *Lottery) GetUserTickets(ctx context.Context, playerFid int64) ([]*entities.Ticket, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return l.ticketService(uow).GetUserTickets(ctx, playerFid)
}

// GetUserWinnings returns the player's winnings, newest first
func (l *Lottery) GetUserWinnings(ctx context.Context, playerFid int64) ([]*entities.WinningDetail, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return l.claimService(uow).GetUserWinnings(ctx, playerFid)
}

// GetRecentResults returns the most recent completed rounds
func (l *Lottery) GetRecentResults(ctx context.Context, limit int) ([]*entities.Round, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return l.drawService(uow).GetRecentResults(ctx, limit)
}

// GetLastWinningNumber returns the most recently drawn number, or nil
func (l *Lottery) GetLastWinningNumber(ctx context.Context) (*int, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return l.drawService(uow).GetLastWinningNumber(ctx)
}

// GetStats returns the dashboard aggregate
func (l *Lottery) GetStats(ctx context.Context) (*entities.Stats, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := services.NewStatsService(uow.StatsRepository(), 0).GetStats(ctx)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stats read: %w", err)
	}
	return stats, nil
}

// SaveNotificationToken stores or replaces the player's webhook token
func (l *Lottery) SaveNotificationToken(ctx context.Context, token *entities.NotificationToken) error {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.NotificationTokenRepository().Save(ctx, token); err != nil {
		return err
	}
	return uow.Commit()
}

// DeleteNotificationToken removes the player's webhook token
func (l *Lottery) DeleteNotificationToken(ctx context.Context, playerFid int64) error {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.NotificationTokenRepository().DeleteByFid(ctx, playerFid); err != nil {
		return err
	}
	return uow.Commit()
}

// CreateDailyCode registers a new redemption code
func (l *Lottery) CreateDailyCode(ctx context.Context, code *entities.DailyCode) error {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DailyCodeRepository().Create(ctx, code); err != nil {
		return err
	}
	return uow.Commit()
}

func (l *Lottery) ticketService(uow UnitOfWork) interfaces.TicketService {
	return services.NewTicketService(
		uow.RoundRepository(),
		uow.TicketRepository(),
		uow.PurchaseRepository(),
		uow.StatsRepository(),
		uow.EventBus(),
		l.cfg.TicketPrice,
	)
}

func (l *Lottery) drawService(uow UnitOfWork) interfaces.DrawService {
	return services.NewDrawService(
		uow.RoundRepository(),
		uow.TicketRepository(),
		uow.WinningRepository(),
		uow.StatsRepository(),
		uow.EventBus(),
		l.random,
		l.cfg.BaseJackpot,
		l.cfg.TicketPrice,
	)
}

func (l *Lottery) claimService(uow UnitOfWork) interfaces.ClaimService {
	return services.NewClaimService(
		uow.WinningRepository(),
		uow.TicketRepository(),
		uow.StatsRepository(),
		l.payout,
		uow.EventBus(),
	)
}
