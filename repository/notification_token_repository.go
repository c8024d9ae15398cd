package repository

import (
	"context"
	"fmt"

	"lambolotto/domain/entities"
)

// NotificationTokenRepository implements notification token data access
type NotificationTokenRepository struct {
	q Queryable
}

// NewNotificationTokenRepository creates a new notification token repository
func NewNotificationTokenRepository(q Queryable) *NotificationTokenRepository {
	return &NotificationTokenRepository{q: q}
}

// HasSubscription reports whether the player has a stored token
func (r *NotificationTokenRepository) HasSubscription(ctx context.Context, playerFid int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM notification_tokens WHERE player_fid = $1)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, playerFid).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return exists, nil
}

// Save upserts the player's notification token
func (r *NotificationTokenRepository) Save(ctx context.Context, token *entities.NotificationToken) error {
	query := `
		INSERT INTO notification_tokens (player_fid, token, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_fid) DO UPDATE SET token = $2, url = $3
		RETURNING created_at
	`
	err := r.q.QueryRow(ctx, query, token.PlayerFid, token.Token, token.URL).Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save notification token: %w", err)
	}
	return nil
}

// DeleteByFid removes the player's notification token
func (r *NotificationTokenRepository) DeleteByFid(ctx context.Context, playerFid int64) error {
	query := `DELETE FROM notification_tokens WHERE player_fid = $1`
	if _, err := r.q.Exec(ctx, query, playerFid); err != nil {
		return fmt.Errorf("failed to delete notification token: %w", err)
	}
	return nil
}
