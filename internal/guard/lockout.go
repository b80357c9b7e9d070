package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/repository"
)

// Lockout tracks failed logins per (ip, email) pair and arms temporary locks
// when the fail counter crosses the soft and hard thresholds. The counter
// only resets on a successful login; lock expiry alone does not clear it, so
// an attacker resuming after a soft lock hits the hard lock four attempts
// later.
type Lockout struct {
	attempts repository.LoginAttemptRepository
}

// NewLockout creates a lockout guard over the given attempt store.
func NewLockout(attempts repository.LoginAttemptRepository) *Lockout {
	return &Lockout{attempts: attempts}
}

// Check returns ErrLockedOut when the pair is inside an armed lock window.
// Called before any credential verification so a locked origin learns nothing
// about the password.
func (l *Lockout) Check(ctx context.Context, db repository.DBTX, ip, email string, now time.Time) error {
	attempt, err := l.attempts.Find(ctx, db, ip, email)
	if err != nil {
		return fmt.Errorf("find login attempt: %w", err)
	}
	if attempt == nil || !attempt.Locked(now) {
		return nil
	}
	remaining := attempt.LockedUntil.Sub(now).Round(time.Second)
	return domain.ErrLockedOut(fmt.Sprintf("too many failed attempts, try again in %s", remaining))
}

// RecordFailure bumps the fail counter and arms a lock if the new count
// crosses a threshold. The bump is a single atomic upsert, so concurrent
// failures against the same pair each land on a distinct count and none are
// lost. Returns the updated row.
func (l *Lockout) RecordFailure(ctx context.Context, db repository.DBTX, ip, email string, now time.Time) (*domain.LoginAttempt, error) {
	attempt, err := l.attempts.IncrementFailure(ctx, db, ip, email)
	if err != nil {
		return nil, fmt.Errorf("record login failure: %w", err)
	}

	if d := domain.LockDurationFor(attempt.FailCount); d > 0 {
		until := now.Add(d)
		if err := l.attempts.ArmLock(ctx, db, ip, email, until); err != nil {
			return nil, fmt.Errorf("arm lockout: %w", err)
		}
		if until.After(attempt.LockedUntil) {
			attempt.LockedUntil = until
		}
	}
	return attempt, nil
}

// Reset clears the fail counter after a successful login.
func (l *Lockout) Reset(ctx context.Context, db repository.DBTX, ip, email string) error {
	attempt, err := l.attempts.Find(ctx, db, ip, email)
	if err != nil {
		return fmt.Errorf("find login attempt: %w", err)
	}
	if attempt == nil || (attempt.FailCount == 0 && attempt.LockedUntil.IsZero()) {
		return nil
	}
	attempt.FailCount = 0
	attempt.LockedUntil = time.Time{}
	if err := l.attempts.Upsert(ctx, db, attempt); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

// SweepStale removes counter rows idle longer than maxIdle. Run at startup;
// rows past a hard lock and its cool-off carry no security value.
func (l *Lockout) SweepStale(ctx context.Context, db repository.DBTX, maxIdle time.Duration, now time.Time) (int64, error) {
	return l.attempts.DeleteStale(ctx, db, now.Add(-maxIdle))
}
