package interfaces

import (
	"context"
	"time"

	"lambolotto/domain/entities"
	"lambolotto/domain/events"
)

// RoundRepository defines the interface for lottery round data access
type RoundRepository interface {
	// GetActive returns the single active round, or nil if none exists
	GetActive(ctx context.Context) (*entities.Round, error)

	// GetActiveForUpdate returns the active round with a row lock,
	// or nil if none exists
	GetActiveForUpdate(ctx context.Context) (*entities.Round, error)

	// GetByID retrieves a round by its ID
	GetByID(ctx context.Context, id int64) (*entities.Round, error)

	// Create inserts a new round and fills in its ID and created_at
	Create(ctx context.Context, round *entities.Round) error

	// MarkCompleted transitions a round to completed with the drawn number
	MarkCompleted(ctx context.Context, roundID int64, winningNumber *int) error

	// IncrementTicketCount adds n to the round's ticket counter while it
	// is still active
	IncrementTicketCount(ctx context.Context, roundID int64, n int) error

	// NextSequence returns the sequence number the next round should use
	NextSequence(ctx context.Context) (int64, error)

	// GetLastCompleted returns the most recently completed round, or nil
	GetLastCompleted(ctx context.Context) (*entities.Round, error)

	// GetRecentCompleted returns the last completed rounds, newest first
	GetRecentCompleted(ctx context.Context, limit int) ([]*entities.Round, error)
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// CreateBatch inserts all tickets or none. A (round, number) unique
	// violation is translated to a NumberTakenError.
	CreateBatch(ctx context.Context, tickets []*entities.Ticket) error

	// GetByID retrieves a ticket by its ID
	GetByID(ctx context.Context, id int64) (*entities.Ticket, error)

	// GetByPlayerForRound returns a player's tickets in a round
	GetByPlayerForRound(ctx context.Context, roundID, playerFid int64) ([]*entities.Ticket, error)

	// CountByPlayer returns how many tickets a player holds in a round
	CountByPlayer(ctx context.Context, roundID, playerFid int64) (int, error)

	// GetTakenNumbers returns all sold numbers in a round, ascending
	GetTakenNumbers(ctx context.Context, roundID int64) ([]int, error)

	// GetTakenAmong returns which of the given numbers are already sold
	GetTakenAmong(ctx context.Context, roundID int64, numbers []int) ([]int, error)

	// GetByNumber returns the ticket holding a number in a round, or nil
	GetByNumber(ctx context.Context, roundID int64, number int) (*entities.Ticket, error)
}

// PurchaseRepository defines the interface for the purchase idempotency keys
type PurchaseRepository interface {
	// Get returns the recorded purchase for a transaction reference, or nil
	Get(ctx context.Context, txRef string) (*entities.Purchase, error)

	// Record inserts the idempotency row for a verified payment. A
	// duplicate txRef fails with a unique violation.
	Record(ctx context.Context, purchase *entities.Purchase) error
}

// WinningRepository defines the interface for winning data access
type WinningRepository interface {
	// Create inserts a new winning record
	Create(ctx context.Context, winning *entities.Winning) error

	// GetByID retrieves a winning by its ID, or nil
	GetByID(ctx context.Context, id int64) (*entities.Winning, error)

	// GetByIDForUpdate retrieves a winning with a row lock, or nil
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Winning, error)

	// GetByRound retrieves the winning recorded for a round, or nil.
	// At most one exists per round.
	GetByRound(ctx context.Context, roundID int64) (*entities.Winning, error)

	// GetByPlayer returns all winnings for a player with round and
	// ticket context, newest first
	GetByPlayer(ctx context.Context, playerFid int64) ([]*entities.WinningDetail, error)

	// MarkClaimed sets claimed_at and the payout reference
	MarkClaimed(ctx context.Context, id int64, payoutTxRef string, claimedAt time.Time) error

	// ResetClaim clears claimed_at and the payout reference
	ResetClaim(ctx context.Context, id int64) error
}

// StatsRepository defines the interface for the singleton stats aggregate
type StatsRepository interface {
	// GetOrCreate returns the stats row, creating it with the initial
	// treasury balance if absent
	GetOrCreate(ctx context.Context, initialTreasury int64) (*entities.Stats, error)

	// RecordTicketSale adds n to the lifetime and active ticket counters
	RecordTicketSale(ctx context.Context, n int) error

	// ApplyDrawCompletion advances the draw counter, retires the round's
	// active tickets, and credits the treasury cut
	ApplyDrawCompletion(ctx context.Context, ticketsSold int, treasuryDelta int64) error

	// AdjustTreasury adds delta (possibly negative) to the treasury balance
	AdjustTreasury(ctx context.Context, delta int64) error
}

// DailyCodeRepository defines the interface for bonus code data access
type DailyCodeRepository interface {
	// GetActiveByCode returns the code if it exists and is active, or nil
	GetActiveByCode(ctx context.Context, code string) (*entities.DailyCode, error)

	// HasUsage reports whether the player already redeemed this code
	HasUsage(ctx context.Context, playerFid int64, code string) (bool, error)

	// CountDistinctUsers returns how many distinct players redeemed the code
	CountDistinctUsers(ctx context.Context, code string) (int, error)

	// HasUsageToday reports whether the player redeemed any code during
	// the current calendar day (server timezone, UTC)
	HasUsageToday(ctx context.Context, playerFid int64) (bool, error)

	// RecordUsage inserts the usage row. A duplicate (fid, code) is
	// translated to ErrAlreadyUsedThisCode.
	RecordUsage(ctx context.Context, playerFid int64, code string) error

	// Create inserts a new daily code
	Create(ctx context.Context, code *entities.DailyCode) error
}

// NotificationTokenRepository defines the interface for push-subscription storage
type NotificationTokenRepository interface {
	// HasSubscription reports whether the player holds a stored token
	HasSubscription(ctx context.Context, playerFid int64) (bool, error)

	// Save upserts a player's token
	Save(ctx context.Context, token *entities.NotificationToken) error

	// DeleteByFid removes a player's token
	DeleteByFid(ctx context.Context, playerFid int64) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}
