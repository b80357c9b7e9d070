package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meowrun/platform/internal/domain"
)

type cooldownRepo struct{}

// NewCooldownRepository returns a pgx-backed CooldownRepository.
func NewCooldownRepository() CooldownRepository {
	return &cooldownRepo{}
}

// Ensure lazily creates the row; ON CONFLICT makes concurrent first touches safe.
func (r *cooldownRepo) Ensure(ctx context.Context, db DBTX, accountID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		INSERT INTO cooldowns (account_id, ad_day)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO NOTHING`,
		accountID, domain.DayStamp(time.Now()))
	if err != nil {
		return fmt.Errorf("ensure cooldown row: %w", err)
	}
	return nil
}

func (r *cooldownRepo) Find(ctx context.Context, db DBTX, accountID uuid.UUID) (*domain.Cooldown, error) {
	row := db.QueryRow(ctx, `
		SELECT account_id, last_daily_at, ad_count_today, ad_day, last_ad_at
		FROM cooldowns WHERE account_id = $1`, accountID)
	return scanCooldown(row)
}

func (r *cooldownRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Cooldown, error) {
	row := tx.QueryRow(ctx, `
		SELECT account_id, last_daily_at, ad_count_today, ad_day, last_ad_at
		FROM cooldowns WHERE account_id = $1 FOR UPDATE`, accountID)
	return scanCooldown(row)
}

func (r *cooldownRepo) StampDaily(ctx context.Context, db DBTX, accountID uuid.UUID, at time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE cooldowns SET last_daily_at = $1 WHERE account_id = $2`, at, accountID)
	if err != nil {
		return fmt.Errorf("stamp daily claim: %w", err)
	}
	return nil
}

func (r *cooldownRepo) StampAd(ctx context.Context, db DBTX, accountID uuid.UUID, count, day int64, at time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE cooldowns SET ad_count_today = $1, ad_day = $2, last_ad_at = $3
		WHERE account_id = $4`, count, day, at, accountID)
	if err != nil {
		return fmt.Errorf("stamp ad claim: %w", err)
	}
	return nil
}

func scanCooldown(row pgx.Row) (*domain.Cooldown, error) {
	var c domain.Cooldown
	err := row.Scan(&c.AccountID, &c.LastDailyAt, &c.AdCountToday, &c.AdDay, &c.LastAdAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan cooldown: %w", err)
	}
	return &c, nil
}
