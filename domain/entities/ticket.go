package entities

import (
	"time"
)

// Ticket represents a single number held by a player within a round.
// Tickets are immutable once created. (round, number) is unique.
type Ticket struct {
	ID            int64     `db:"id"`
	RoundID       int64     `db:"round_id"`
	PlayerFid     int64     `db:"player_fid"`
	PlayerAddress string    `db:"player_address"`
	Number        int       `db:"number"`
	Price         int64     `db:"price"` // 0 for bonus-granted tickets
	TxRef         *string   `db:"tx_ref"`
	CreatedAt     time.Time `db:"created_at"`
}

// IsWinner checks if this ticket matches the winning number.
func (t *Ticket) IsWinner(winningNumber int) bool {
	return t.Number == winningNumber
}

// IsBonus returns true for tickets granted through a daily code.
func (t *Ticket) IsBonus() bool {
	return t.Price == 0
}

// ContractBucket maps the user-visible number to the payment router's
// coarser on-chain ticket granularity: numbers 1-10 share bucket 1,
// 11-20 bucket 2, and so on up to bucket 10. The off-chain draw is
// authoritative; the bucket exists only for on-chain recording.
func (t *Ticket) ContractBucket() int {
	return (t.Number + 9) / 10
}

// Purchase is the idempotency record for one verified on-chain payment.
// A transaction reference mints tickets at most once.
type Purchase struct {
	TxRef       string    `db:"tx_ref"`
	RoundID     int64     `db:"round_id"`
	PlayerFid   int64     `db:"player_fid"`
	TicketCount int       `db:"ticket_count"`
	CreatedAt   time.Time `db:"created_at"`
}
