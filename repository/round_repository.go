package repository

import (
	"context"
	"errors"
	"fmt"

	"lambolotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// RoundRepository implements round data access
type RoundRepository struct {
	q Queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(q Queryable) *RoundRepository {
	return &RoundRepository{q: q}
}

const roundColumns = `id, sequence, start_time, end_time, status, jackpot, winning_number, ticket_count, created_at`

func scanRound(row pgx.Row) (*entities.Round, error) {
	var round entities.Round
	err := row.Scan(
		&round.ID,
		&round.Sequence,
		&round.StartTime,
		&round.EndTime,
		&round.Status,
		&round.Jackpot,
		&round.WinningNumber,
		&round.TicketCount,
		&round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

// GetActive retrieves the single active round, or nil when none exists
func (r *RoundRepository) GetActive(ctx context.Context) (*entities.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_rounds WHERE status = 'active'`, roundColumns)
	round, err := scanRound(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}
	return round, nil
}

// GetActiveForUpdate retrieves the active round with a row lock, so the
// settlement path runs at most once per round.
func (r *RoundRepository) GetActiveForUpdate(ctx context.Context) (*entities.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_rounds WHERE status = 'active' FOR UPDATE`, roundColumns)
	round, err := scanRound(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to lock active round: %w", err)
	}
	return round, nil
}

// GetByID retrieves a round by its ID
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*entities.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_rounds WHERE id = $1`, roundColumns)
	round, err := scanRound(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", id, err)
	}
	return round, nil
}

// Create inserts a new round and populates its ID and CreatedAt.
// The partial unique index on active status rejects a second active row.
func (r *RoundRepository) Create(ctx context.Context, round *entities.Round) error {
	query := `
		INSERT INTO lottery_rounds (sequence, start_time, end_time, status, jackpot, ticket_count)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		round.Sequence,
		round.StartTime,
		round.EndTime,
		round.Status,
		round.Jackpot,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// MarkCompleted transitions a round to completed and records the drawn
// number, nil when no tickets were sold.
func (r *RoundRepository) MarkCompleted(ctx context.Context, roundID int64, winningNumber *int) error {
	query := `
		UPDATE lottery_rounds
		SET status = 'completed', winning_number = $2
		WHERE id = $1 AND status = 'active'
	`
	tag, err := r.q.Exec(ctx, query, roundID, winningNumber)
	if err != nil {
		return fmt.Errorf("failed to complete round %d: %w", roundID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("round %d is not active", roundID)
	}
	return nil
}

// IncrementTicketCount adds delta to the round's sold-ticket counter
func (r *RoundRepository) IncrementTicketCount(ctx context.Context, roundID int64, delta int) error {
	query := `UPDATE lottery_rounds SET ticket_count = ticket_count + $2 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, roundID, delta)
	if err != nil {
		return fmt.Errorf("failed to update ticket count for round %d: %w", roundID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("round %d not found", roundID)
	}
	return nil
}

// NextSequence returns the next round sequence number
func (r *RoundRepository) NextSequence(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(sequence), 0) + 1 FROM lottery_rounds`
	var seq int64
	if err := r.q.QueryRow(ctx, query).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to get next round sequence: %w", err)
	}
	return seq, nil
}

// GetLastCompleted retrieves the most recently completed round
func (r *RoundRepository) GetLastCompleted(ctx context.Context) (*entities.Round, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM lottery_rounds
		WHERE status = 'completed'
		ORDER BY sequence DESC
		LIMIT 1
	`, roundColumns)
	round, err := scanRound(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get last completed round: %w", err)
	}
	return round, nil
}

// GetRecentCompleted retrieves completed rounds, newest first
func (r *RoundRepository) GetRecentCompleted(ctx context.Context, limit int) ([]*entities.Round, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM lottery_rounds
		WHERE status = 'completed'
		ORDER BY sequence DESC
		LIMIT $1
	`, roundColumns)
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*entities.Round
	for rows.Next() {
		var round entities.Round
		err := rows.Scan(
			&round.ID,
			&round.Sequence,
			&round.StartTime,
			&round.EndTime,
			&round.Status,
			&round.Jackpot,
			&round.WinningNumber,
			&round.TicketCount,
			&round.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, &round)
	}
	return rounds, rows.Err()
}
