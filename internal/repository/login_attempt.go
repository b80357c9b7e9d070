package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meowrun/platform/internal/domain"
)

type loginAttemptRepo struct{}

// NewLoginAttemptRepository returns a pgx-backed LoginAttemptRepository.
func NewLoginAttemptRepository() LoginAttemptRepository {
	return &loginAttemptRepo{}
}

func (r *loginAttemptRepo) Find(ctx context.Context, db DBTX, ip, email string) (*domain.LoginAttempt, error) {
	row := db.QueryRow(ctx, `
		SELECT ip, email, fail_count, locked_until, updated_at
		FROM login_attempts WHERE ip = $1 AND email = $2`, ip, email)

	var a domain.LoginAttempt
	err := row.Scan(&a.IP, &a.Email, &a.FailCount, &a.LockedUntil, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan login attempt: %w", err)
	}
	return &a, nil
}

func (r *loginAttemptRepo) Upsert(ctx context.Context, db DBTX, a *domain.LoginAttempt) error {
	_, err := db.Exec(ctx, `
		INSERT INTO login_attempts (ip, email, fail_count, locked_until, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (ip, email) DO UPDATE
		SET fail_count = EXCLUDED.fail_count,
		    locked_until = EXCLUDED.locked_until,
		    updated_at = now()`,
		a.IP, a.Email, a.FailCount, a.LockedUntil)
	if err != nil {
		return fmt.Errorf("upsert login attempt: %w", err)
	}
	return nil
}

func (r *loginAttemptRepo) IncrementFailure(ctx context.Context, db DBTX, ip, email string) (*domain.LoginAttempt, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO login_attempts (ip, email, fail_count, locked_until, updated_at)
		VALUES ($1, $2, 1, 'epoch', now())
		ON CONFLICT (ip, email) DO UPDATE
		SET fail_count = login_attempts.fail_count + 1,
		    updated_at = now()
		RETURNING ip, email, fail_count, locked_until, updated_at`, ip, email)

	var a domain.LoginAttempt
	if err := row.Scan(&a.IP, &a.Email, &a.FailCount, &a.LockedUntil, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("increment login failure: %w", err)
	}
	return &a, nil
}

func (r *loginAttemptRepo) ArmLock(ctx context.Context, db DBTX, ip, email string, until time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE login_attempts
		SET locked_until = $3, updated_at = now()
		WHERE ip = $1 AND email = $2 AND locked_until < $3`, ip, email, until)
	if err != nil {
		return fmt.Errorf("arm login lock: %w", err)
	}
	return nil
}

func (r *loginAttemptRepo) DeleteStale(ctx context.Context, db DBTX, cutoff time.Time) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM login_attempts WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale login attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}
