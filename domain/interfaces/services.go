package interfaces

import (
	"context"

	"lambolotto/domain/entities"
)

// PurchaseResult describes the outcome of a ticket purchase.
type PurchaseResult struct {
	Tickets   []*entities.Ticket
	Round     *entities.Round
	TotalCost int64
	// Replayed is true when the transaction reference was already
	// settled and no new tickets were inserted.
	Replayed bool
}

// TicketService allocates numbers to players within the active round.
type TicketService interface {
	// PurchaseTickets inserts one ticket per requested number for a
	// verified payment. roundID of 0 means the current active round.
	// The whole batch commits or none does.
	PurchaseTickets(ctx context.Context, playerFid, roundID int64, numbers []int, playerAddress, txRef string) (*PurchaseResult, error)

	// GetUserTickets returns the player's tickets in the active round
	GetUserTickets(ctx context.Context, playerFid int64) ([]*entities.Ticket, error)

	// GetTakenNumbers returns the sold numbers of a round
	GetTakenNumbers(ctx context.Context, roundID int64) ([]int, error)
}

// DrawResult describes a completed draw.
type DrawResult struct {
	Round         *entities.Round
	WinningNumber *int
	Winning       *entities.Winning
	TicketsSold   int
	TreasuryCut   int64
	NextRound     *entities.Round
}

// DrawService closes expired rounds and opens the next one.
type DrawService interface {
	// CompleteRound draws the active round once its end time has passed,
	// records a winning on a match, and opens the next round. Safe to
	// invoke redundantly: a losing racer gets ErrNoActiveRound.
	CompleteRound(ctx context.Context) (*DrawResult, error)

	// GetOrCreateCurrentRound returns the active round, lazily creating
	// one when none exists
	GetOrCreateCurrentRound(ctx context.Context) (*entities.Round, error)

	// GetRecentResults returns the last completed rounds, newest first
	GetRecentResults(ctx context.Context, limit int) ([]*entities.Round, error)

	// GetLastWinningNumber returns the most recent drawn number, or nil
	// when no round has drawn one yet
	GetLastWinningNumber(ctx context.Context) (*int, error)
}

// RedeemResult describes a successful code redemption.
type RedeemResult struct {
	Round          *entities.Round
	GrantedTickets []*entities.Ticket
	GrantedNumbers []int
}

// RedeemService grants free tickets against shared daily codes.
type RedeemService interface {
	// Redeem validates the code and the player's eligibility, then
	// grants random unsold numbers atomically with the usage record.
	Redeem(ctx context.Context, playerFid int64, code string) (*RedeemResult, error)
}

// ClaimService settles and reverses prize payouts.
type ClaimService interface {
	// Claim pays out a winning to its owner and marks it claimed.
	// The payout must be confirmed initiated before any state changes.
	Claim(ctx context.Context, winningID, playerFid int64) (*entities.Winning, error)

	// Unclaim reverses a claimed winning and restores the treasury.
	// It never retriggers a transfer.
	Unclaim(ctx context.Context, winningID, playerFid int64) (*entities.Winning, error)

	// GetUserWinnings returns a player's winnings with context
	GetUserWinnings(ctx context.Context, playerFid int64) ([]*entities.WinningDetail, error)
}

// PaymentVerifier gates the cash-purchase path on a finalized, correct
// on-chain payment.
type PaymentVerifier interface {
	// VerifyPurchase blocks (bounded) until txRef is final and checks
	// recipient and sender. Runs before the purchase transaction opens.
	VerifyPurchase(ctx context.Context, txRef, playerAddress string) error
}

// StatsService exposes the dashboard aggregate.
type StatsService interface {
	GetStats(ctx context.Context) (*entities.Stats, error)
}
