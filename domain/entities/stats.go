package entities

import "time"

// Stats is the singleton dashboard aggregate. It is updated in the same
// transaction as the rows it summarizes and is never used to gate
// correctness decisions.
type Stats struct {
	TotalTickets    int64     `db:"total_tickets"`  // Lifetime tickets sold
	ActiveTickets   int64     `db:"active_tickets"` // Tickets in the open round
	TreasuryBalance int64     `db:"treasury_balance"`
	LastDrawNumber  int64     `db:"last_draw_number"`
	UpdatedAt       time.Time `db:"updated_at"`
}
