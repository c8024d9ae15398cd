package application

import (
	"context"

	"lambolotto/domain/events"
	"lambolotto/domain/interfaces"
)

// UnitOfWork bundles the repositories of one database transaction.
// Events published through EventBus buffer until Commit and are
// discarded on Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RoundRepository() interfaces.RoundRepository
	TicketRepository() interfaces.TicketRepository
	PurchaseRepository() interfaces.PurchaseRepository
	WinningRepository() interfaces.WinningRepository
	StatsRepository() interfaces.StatsRepository
	DailyCodeRepository() interfaces.DailyCodeRepository
	NotificationTokenRepository() interfaces.NotificationTokenRepository

	// EventBus returns the transaction-scoped event publisher
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// TransactionalEventPublisher buffers events for publication after a
// successful commit.
type TransactionalEventPublisher interface {
	Publish(event events.Event) error
	Flush(ctx context.Context) error
	Discard()
}
