package entities

import (
	"time"
)

// RoundStatus is the lifecycle state of a lottery round.
type RoundStatus string

const (
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
)

const (
	// NumberMin and NumberMax bound the pickable ticket numbers.
	NumberMin = 1
	NumberMax = 100

	// MaxTicketsPerPlayer caps cash-purchased plus bonus-granted tickets
	// a single player may hold in one round.
	MaxTicketsPerPlayer = 10

	// RoundDuration is how long a round stays open for purchases.
	RoundDuration = 24 * time.Hour
)

// Round represents a single daily lottery cycle. At most one round is
// active at any time; the schema enforces this with a partial unique index.
type Round struct {
	ID            int64       `db:"id"`
	Sequence      int64       `db:"sequence"`
	StartTime     time.Time   `db:"start_time"`
	EndTime       time.Time   `db:"end_time"`
	Status        RoundStatus `db:"status"`
	Jackpot       int64       `db:"jackpot"`        // Whole-token units
	WinningNumber *int        `db:"winning_number"` // NULL until drawn
	TicketCount   int         `db:"ticket_count"`
	CreatedAt     time.Time   `db:"created_at"`
}

// IsActive returns true while the round is still open.
func (r *Round) IsActive() bool {
	return r.Status == RoundStatusActive
}

// IsCompleted returns true once the draw has been performed.
func (r *Round) IsCompleted() bool {
	return r.Status == RoundStatusCompleted
}

// HasEnded reports whether the round's end time has passed.
func (r *Round) HasEnded(now time.Time) bool {
	return !now.Before(r.EndTime)
}

// CanPurchaseTickets returns true if tickets can still be sold.
func (r *Round) CanPurchaseTickets(now time.Time) bool {
	return r.IsActive() && now.Before(r.EndTime)
}

// NumbersRemaining returns how many unsold numbers the round still has.
func (r *Round) NumbersRemaining() int {
	return NumberMax - r.TicketCount
}

// Complete transitions the round to completed with the drawn number.
// winningNumber is nil when the round closed with no tickets sold.
func (r *Round) Complete(winningNumber *int) {
	r.Status = RoundStatusCompleted
	r.WinningNumber = winningNumber
}

// ValidNumber reports whether n is inside the pickable range.
func ValidNumber(n int) bool {
	return n >= NumberMin && n <= NumberMax
}
