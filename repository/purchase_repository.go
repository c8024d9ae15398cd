package repository

import (
	"context"
	"errors"
	"fmt"

	"lambolotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PurchaseRepository implements settled-purchase data access.
// The table is the idempotency record for the payment path: one row
// per transaction reference, ever.
type PurchaseRepository struct {
	q Queryable
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(q Queryable) *PurchaseRepository {
	return &PurchaseRepository{q: q}
}

// Get retrieves a settled purchase by transaction reference, or nil
func (r *PurchaseRepository) Get(ctx context.Context, txRef string) (*entities.Purchase, error) {
	query := `
		SELECT tx_ref, round_id, player_fid, ticket_count, created_at
		FROM lottery_purchases
		WHERE tx_ref = $1
	`
	var purchase entities.Purchase
	err := r.q.QueryRow(ctx, query, txRef).Scan(
		&purchase.TxRef,
		&purchase.RoundID,
		&purchase.PlayerFid,
		&purchase.TicketCount,
		&purchase.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get purchase %s: %w", txRef, err)
	}
	return &purchase, nil
}

// Record inserts the settlement row for a transaction reference
func (r *PurchaseRepository) Record(ctx context.Context, purchase *entities.Purchase) error {
	query := `
		INSERT INTO lottery_purchases (tx_ref, round_id, player_fid, ticket_count)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.q.QueryRow(ctx, query,
		purchase.TxRef,
		purchase.RoundID,
		purchase.PlayerFid,
		purchase.TicketCount,
	).Scan(&purchase.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record purchase %s: %w", purchase.TxRef, err)
	}
	return nil
}
