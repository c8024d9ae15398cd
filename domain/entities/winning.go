package entities

import "time"

// Winning records a jackpot won by a player's ticket in a round.
// claimed_at stays NULL until the prize is paid out.
type Winning struct {
	ID          int64      `db:"id"`
	PlayerFid   int64      `db:"player_fid"`
	RoundID     int64      `db:"round_id"`
	TicketID    int64      `db:"ticket_id"`
	Amount      int64      `db:"amount"`
	ClaimedAt   *time.Time `db:"claimed_at"`
	PayoutTxRef *string    `db:"payout_tx_ref"`
	CreatedAt   time.Time  `db:"created_at"`
}

// IsClaimed returns true once the payout has been recorded.
func (w *Winning) IsClaimed() bool {
	return w.ClaimedAt != nil
}

// WinningDetail is a winning joined with its round and ticket context,
// used for player-facing winning lists.
type WinningDetail struct {
	Winning
	RoundSequence int64 `db:"round_sequence"`
	WinningNumber int   `db:"winning_number"`
	TicketNumber  int   `db:"ticket_number"`
}
