package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lambolotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WinningRepository implements winning data access
type WinningRepository struct {
	q Queryable
}

// NewWinningRepository creates a new winning repository
func NewWinningRepository(q Queryable) *WinningRepository {
	return &WinningRepository{q: q}
}

const winningColumns = `id, player_fid, round_id, ticket_id, amount, claimed_at, payout_tx_ref, created_at`

func scanWinning(row pgx.Row) (*entities.Winning, error) {
	var winning entities.Winning
	err := row.Scan(
		&winning.ID,
		&winning.PlayerFid,
		&winning.RoundID,
		&winning.TicketID,
		&winning.Amount,
		&winning.ClaimedAt,
		&winning.PayoutTxRef,
		&winning.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &winning, nil
}

// Create inserts a winning and populates its ID and CreatedAt
func (r *WinningRepository) Create(ctx context.Context, winning *entities.Winning) error {
	query := `
		INSERT INTO lottery_winnings (player_fid, round_id, ticket_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		winning.PlayerFid,
		winning.RoundID,
		winning.TicketID,
		winning.Amount,
	).Scan(&winning.ID, &winning.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create winning: %w", err)
	}
	return nil
}

// GetByID retrieves a winning by its ID
func (r *WinningRepository) GetByID(ctx context.Context, id int64) (*entities.Winning, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_winnings WHERE id = $1`, winningColumns)
	winning, err := scanWinning(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get winning %d: %w", id, err)
	}
	return winning, nil
}

// GetByIDForUpdate retrieves a winning with a row lock so concurrent
// claims of the same prize serialize.
func (r *WinningRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Winning, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_winnings WHERE id = $1 FOR UPDATE`, winningColumns)
	winning, err := scanWinning(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock winning %d: %w", id, err)
	}
	return winning, nil
}

// GetByRound retrieves the winning recorded for a round, or nil. The
// round_id unique constraint guarantees at most one.
func (r *WinningRepository) GetByRound(ctx context.Context, roundID int64) (*entities.Winning, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_winnings WHERE round_id = $1`, winningColumns)
	winning, err := scanWinning(r.q.QueryRow(ctx, query, roundID))
	if err != nil {
		return nil, fmt.Errorf("failed to get winning for round %d: %w", roundID, err)
	}
	return winning, nil
}

// GetByPlayer retrieves a player's winnings joined with round and
// ticket context, newest first
func (r *WinningRepository) GetByPlayer(ctx context.Context, playerFid int64) ([]*entities.WinningDetail, error) {
	query := `
		SELECT w.id, w.player_fid, w.round_id, w.ticket_id, w.amount,
		       w.claimed_at, w.payout_tx_ref, w.created_at,
		       r.sequence, r.winning_number, t.number
		FROM lottery_winnings w
		JOIN lottery_rounds r ON r.id = w.round_id
		JOIN lottery_tickets t ON t.id = w.ticket_id
		WHERE w.player_fid = $1
		ORDER BY w.created_at DESC
	`
	rows, err := r.q.Query(ctx, query, playerFid)
	if err != nil {
		return nil, fmt.Errorf("failed to query winnings: %w", err)
	}
	defer rows.Close()

	var details []*entities.WinningDetail
	for rows.Next() {
		var d entities.WinningDetail
		err := rows.Scan(
			&d.ID,
			&d.PlayerFid,
			&d.RoundID,
			&d.TicketID,
			&d.Amount,
			&d.ClaimedAt,
			&d.PayoutTxRef,
			&d.CreatedAt,
			&d.RoundSequence,
			&d.WinningNumber,
			&d.TicketNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winning: %w", err)
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

// MarkClaimed stamps a winning with the payout reference and time
func (r *WinningRepository) MarkClaimed(ctx context.Context, id int64, payoutTxRef string, claimedAt time.Time) error {
	query := `
		UPDATE lottery_winnings
		SET claimed_at = $2, payout_tx_ref = $3
		WHERE id = $1 AND claimed_at IS NULL
	`
	tag, err := r.q.Exec(ctx, query, id, claimedAt, payoutTxRef)
	if err != nil {
		return fmt.Errorf("failed to mark winning %d claimed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("winning %d already claimed or missing", id)
	}
	return nil
}

// ResetClaim clears the claim stamp of a winning
func (r *WinningRepository) ResetClaim(ctx context.Context, id int64) error {
	query := `
		UPDATE lottery_winnings
		SET claimed_at = NULL, payout_tx_ref = NULL
		WHERE id = $1 AND claimed_at IS NOT NULL
	`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset claim on winning %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("winning %d is not claimed", id)
	}
	return nil
}
