package repository

import (
	"context"
	"fmt"

	"lambolotto/application"
	"lambolotto/database"
	"lambolotto/domain/events"
	"lambolotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db        *database.DB
	tx        pgx.Tx
	ctx       context.Context
	publisher application.TransactionalEventPublisher

	roundRepo    *RoundRepository
	ticketRepo   *TicketRepository
	purchaseRepo *PurchaseRepository
	winningRepo  *WinningRepository
	statsRepo    *StatsRepository
	codeRepo     *DailyCodeRepository
	tokenRepo    *NotificationTokenRepository
}

type unitOfWorkFactory struct {
	db           *database.DB
	newPublisher func() application.TransactionalEventPublisher
}

// NewUnitOfWorkFactory creates a UnitOfWork factory. newPublisher is
// invoked once per unit of work so each transaction gets its own event
// buffer.
func NewUnitOfWorkFactory(db *database.DB, newPublisher func() application.TransactionalEventPublisher) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db, newPublisher: newPublisher}
}

func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{
		db:        f.db,
		publisher: f.newPublisher(),
	}
}

// Begin starts a new transaction and binds the repositories to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.roundRepo = NewRoundRepository(tx)
	u.ticketRepo = NewTicketRepository(tx)
	u.purchaseRepo = NewPurchaseRepository(tx)
	u.winningRepo = NewWinningRepository(tx)
	u.statsRepo = NewStatsRepository(tx)
	u.codeRepo = NewDailyCodeRepository(tx)
	u.tokenRepo = NewNotificationTokenRepository(tx)

	return nil
}

// Commit commits the transaction and flushes buffered events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	// Events are best-effort once the transaction has committed.
	if u.publisher != nil {
		_ = u.publisher.Flush(u.ctx)
	}
	return nil
}

// Rollback rolls back the transaction and discards buffered events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	if u.publisher != nil {
		u.publisher.Discard()
	}
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) RoundRepository() interfaces.RoundRepository {
	return u.roundRepo
}

func (u *unitOfWork) TicketRepository() interfaces.TicketRepository {
	return u.ticketRepo
}

func (u *unitOfWork) PurchaseRepository() interfaces.PurchaseRepository {
	return u.purchaseRepo
}

func (u *unitOfWork) WinningRepository() interfaces.WinningRepository {
	return u.winningRepo
}

func (u *unitOfWork) StatsRepository() interfaces.StatsRepository {
	return u.statsRepo
}

func (u *unitOfWork) DailyCodeRepository() interfaces.DailyCodeRepository {
	return u.codeRepo
}

func (u *unitOfWork) NotificationTokenRepository() interfaces.NotificationTokenRepository {
	return u.tokenRepo
}

// EventBus returns the transaction-scoped publisher
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return eventBusAdapter{u.publisher}
}

type eventBusAdapter struct {
	publisher application.TransactionalEventPublisher
}

func (a eventBusAdapter) Publish(event events.Event) error {
	if a.publisher == nil {
		return nil
	}
	return a.publisher.Publish(event)
}
