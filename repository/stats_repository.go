package repository

import (
	"context"
	"fmt"

	"lambolotto/domain/entities"
)

// StatsRepository implements the singleton stats row data access.
// All mutations go through the row's updates inside the caller's
// transaction, so the aggregate stays consistent with the tables it
// summarizes.
type StatsRepository struct {
	q Queryable
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(q Queryable) *StatsRepository {
	return &StatsRepository{q: q}
}

// GetOrCreate reads the stats row. The migration seeds it, so the
// insert only fires if the row was removed, re-seeding it with the
// starting treasury balance.
func (r *StatsRepository) GetOrCreate(ctx context.Context, initialTreasury int64) (*entities.Stats, error) {
	query := `
		INSERT INTO lottery_stats (id, total_tickets, active_tickets, treasury_balance)
		VALUES (1, 0, 0, $1)
		ON CONFLICT (id) DO UPDATE SET id = lottery_stats.id
		RETURNING total_tickets, active_tickets, treasury_balance, last_draw_number, updated_at
	`
	var stats entities.Stats
	err := r.q.QueryRow(ctx, query, initialTreasury).Scan(
		&stats.TotalTickets,
		&stats.ActiveTickets,
		&stats.TreasuryBalance,
		&stats.LastDrawNumber,
		&stats.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}

// RecordTicketSale bumps the lifetime and active ticket counters
func (r *StatsRepository) RecordTicketSale(ctx context.Context, count int) error {
	query := `
		UPDATE lottery_stats
		SET total_tickets = total_tickets + $1,
		    active_tickets = active_tickets + $1,
		    updated_at = NOW()
		WHERE id = 1
	`
	tag, err := r.q.Exec(ctx, query, count)
	if err != nil {
		return fmt.Errorf("failed to record ticket sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stats row missing")
	}
	return nil
}

// ApplyDrawCompletion retires the round's active tickets and credits
// the treasury with its revenue cut.
func (r *StatsRepository) ApplyDrawCompletion(ctx context.Context, ticketsSold int, treasuryDelta int64) error {
	query := `
		UPDATE lottery_stats
		SET active_tickets = active_tickets - $1,
		    treasury_balance = treasury_balance + $2,
		    last_draw_number = last_draw_number + 1,
		    updated_at = NOW()
		WHERE id = 1
	`
	tag, err := r.q.Exec(ctx, query, ticketsSold, treasuryDelta)
	if err != nil {
		return fmt.Errorf("failed to apply draw completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stats row missing")
	}
	return nil
}

// AdjustTreasury applies a signed delta to the treasury balance
func (r *StatsRepository) AdjustTreasury(ctx context.Context, delta int64) error {
	query := `
		UPDATE lottery_stats
		SET treasury_balance = treasury_balance + $1,
		    updated_at = NOW()
		WHERE id = 1
	`
	tag, err := r.q.Exec(ctx, query, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust treasury: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stats row missing")
	}
	return nil
}
