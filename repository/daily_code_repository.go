package repository

import (
	"context"
	"errors"
	"fmt"

	"lambolotto/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DailyCodeRepository implements daily code and usage data access
type DailyCodeRepository struct {
	q Queryable
}

// NewDailyCodeRepository creates a new daily code repository
func NewDailyCodeRepository(q Queryable) *DailyCodeRepository {
	return &DailyCodeRepository{q: q}
}

// GetActiveByCode retrieves an active code, or nil. Lookup is exact,
// codes are stored uppercase.
func (r *DailyCodeRepository) GetActiveByCode(ctx context.Context, code string) (*entities.DailyCode, error) {
	query := `
		SELECT code, is_active, max_redemptions, created_at
		FROM lotto_daily_codes
		WHERE code = $1 AND is_active
	`
	var dailyCode entities.DailyCode
	err := r.q.QueryRow(ctx, query, code).Scan(
		&dailyCode.Code,
		&dailyCode.IsActive,
		&dailyCode.MaxRedemptions,
		&dailyCode.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get code: %w", err)
	}
	return &dailyCode, nil
}

// HasUsage reports whether the player already redeemed this code
func (r *DailyCodeRepository) HasUsage(ctx context.Context, playerFid int64, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM lotto_daily_code_usages WHERE player_fid = $1 AND code = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, playerFid, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check code usage: %w", err)
	}
	return exists, nil
}

// CountDistinctUsers counts how many players have redeemed a code
func (r *DailyCodeRepository) CountDistinctUsers(ctx context.Context, code string) (int, error) {
	query := `SELECT COUNT(DISTINCT player_fid) FROM lotto_daily_code_usages WHERE code = $1`
	var count int
	if err := r.q.QueryRow(ctx, query, code).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count code redemptions: %w", err)
	}
	return count, nil
}

// HasUsageToday reports whether the player redeemed any code today.
// Sessions run with TimeZone=UTC, so CURRENT_DATE is the UTC day.
func (r *DailyCodeRepository) HasUsageToday(ctx context.Context, playerFid int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM lotto_daily_code_usages
			WHERE player_fid = $1 AND used_at >= CURRENT_DATE
		)
	`
	var exists bool
	if err := r.q.QueryRow(ctx, query, playerFid).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check daily usage: %w", err)
	}
	return exists, nil
}

// RecordUsage inserts the redemption record. The (player, code) primary
// key turns a concurrent double redemption into ErrAlreadyUsedThisCode.
func (r *DailyCodeRepository) RecordUsage(ctx context.Context, playerFid int64, code string) error {
	query := `INSERT INTO lotto_daily_code_usages (player_fid, code) VALUES ($1, $2)`
	if _, err := r.q.Exec(ctx, query, playerFid, code); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entities.ErrAlreadyUsedThisCode
		}
		return fmt.Errorf("failed to record code usage: %w", err)
	}
	return nil
}

// Create inserts a new daily code
func (r *DailyCodeRepository) Create(ctx context.Context, code *entities.DailyCode) error {
	query := `
		INSERT INTO lotto_daily_codes (code, is_active, max_redemptions)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.q.QueryRow(ctx, query, code.Code, code.IsActive, code.MaxRedemptions).Scan(&code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create code: %w", err)
	}
	return nil
}
