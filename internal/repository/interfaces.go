package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meowrun/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. Uniqueness inserts are the definitive duplicate guard for claims
// and referral events; callers translate this into the matching domain error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// AccountRepository provides access to accounts.
type AccountRepository interface {
	// FindByID returns an account by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Account, error)

	// FindByEmail returns an account by email.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.Account, error)

	// FindByReferralCode returns the account owning an invite code.
	FindByReferralCode(ctx context.Context, db DBTX, code string) (*domain.Account, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the account.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)

	// Create inserts a new account.
	Create(ctx context.Context, db DBTX, account *domain.Account) error

	// UpdateBalances atomically updates balance columns using server-side arithmetic.
	UpdateBalances(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, delta domain.BalanceUpdate) (*domain.Account, error)

	// SetLevel stores a new level for the account.
	SetLevel(ctx context.Context, db DBTX, accountID uuid.UUID, level int64) error

	// SetDisplayName updates the display name.
	SetDisplayName(ctx context.Context, db DBTX, accountID uuid.UUID, name string) error

	// SetInviter binds the inviter reference. Fails once set.
	SetInviter(ctx context.Context, db DBTX, accountID, inviterID uuid.UUID) error

	// BindDevice stores the device hash if none is bound yet. Returns true
	// if this call performed the binding.
	BindDevice(ctx context.Context, db DBTX, accountID uuid.UUID, deviceHash string) (bool, error)

	// ClearDevice removes the bound device hash (admin only).
	ClearDevice(ctx context.Context, db DBTX, accountID uuid.UUID) error

	// TouchClient records the last seen origin fields.
	TouchClient(ctx context.Context, db DBTX, accountID uuid.UUID, ip, ua string) error
}

// LedgerRepository provides access to ledger_entries.
type LedgerRepository interface {
	// Insert appends a ledger entry with the post-update balance snapshot.
	Insert(ctx context.Context, db DBTX, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)

	// ListByAccount returns entries for an account, most recent first.
	ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error)

	// SumDeltas recomputes the projected balances from the journal. Used by
	// reconciliation checks, not by the request path.
	SumDeltas(ctx context.Context, db DBTX, accountID uuid.UUID) (domain.Balances, error)
}

// CooldownRepository provides access to cooldowns (one row per account).
type CooldownRepository interface {
	// Ensure creates the row if it does not exist yet.
	Ensure(ctx context.Context, db DBTX, accountID uuid.UUID) error

	// Find returns the row, or nil if the account was never touched.
	Find(ctx context.Context, db DBTX, accountID uuid.UUID) (*domain.Cooldown, error)

	// LockForUpdate acquires a row-level lock for a claim's read-check-write.
	LockForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Cooldown, error)

	// StampDaily records a successful periodic claim.
	StampDaily(ctx context.Context, db DBTX, accountID uuid.UUID, at time.Time) error

	// StampAd records a successful metered claim.
	StampAd(ctx context.Context, db DBTX, accountID uuid.UUID, count, day int64, at time.Time) error
}

// ClaimRepository provides access to claims.
type ClaimRepository interface {
	// Insert attempts the uniqueness insert; a duplicate surfaces as a
	// unique violation, not as a silent no-op.
	Insert(ctx context.Context, db DBTX, claim *domain.Claim) error

	// Exists reports whether the claim is already recorded.
	Exists(ctx context.Context, db DBTX, accountID uuid.UUID, key string, dayScope int64) (bool, error)
}

// WithdrawalRepository provides access to withdrawals.
type WithdrawalRepository interface {
	// Insert creates a pending withdrawal.
	Insert(ctx context.Context, db DBTX, w *domain.Withdrawal) error

	// LockForUpdate locks the row before a status transition.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Withdrawal, error)

	// SetStatus performs the terminal transition and records the note.
	SetStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.WithdrawalStatus, note string) error

	// ListByAccount returns an account's withdrawals, most recent first.
	ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.Withdrawal, error)

	// ListAll returns the admin queue, most recent first.
	ListAll(ctx context.Context, db DBTX, limit int) ([]domain.Withdrawal, error)
}

// ReferralRepository provides access to referrals and referral_events.
type ReferralRepository interface {
	// InsertBinding records the one-time inviter/invitee relationship.
	InsertBinding(ctx context.Context, db DBTX, b *domain.ReferralBinding) error

	// InsertEvent attempts the milestone uniqueness insert.
	InsertEvent(ctx context.Context, db DBTX, e *domain.ReferralEvent) error

	// ListInvited returns the inviter's referral overview.
	ListInvited(ctx context.Context, db DBTX, inviterID uuid.UUID, limit int) ([]domain.InvitedAccount, error)
}

// LoginAttemptRepository provides access to login_attempts.
type LoginAttemptRepository interface {
	// Find returns the counter row for an (ip, email) pair, or nil.
	Find(ctx context.Context, db DBTX, ip, email string) (*domain.LoginAttempt, error)

	// Upsert stores the new counter state for the pair.
	Upsert(ctx context.Context, db DBTX, a *domain.LoginAttempt) error

	// IncrementFailure bumps the fail counter for the pair in a single
	// atomic upsert, creating the row at one on first failure, and returns
	// the row as updated. Concurrent callers each observe a distinct count.
	IncrementFailure(ctx context.Context, db DBTX, ip, email string) (*domain.LoginAttempt, error)

	// ArmLock moves the pair's lock forward to until. An existing lock
	// ending later is left alone.
	ArmLock(ctx context.Context, db DBTX, ip, email string, until time.Time) error

	// DeleteStale removes rows not updated since the cutoff.
	DeleteStale(ctx context.Context, db DBTX, cutoff time.Time) (int64, error)
}

// AuditRepository provides access to the audit trail.
type AuditRepository interface {
	// Record appends an audit row. Callers discard the error explicitly;
	// auditing never fails the guarded action.
	Record(ctx context.Context, db DBTX, rec domain.AuditRecord) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the state change).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns pending events in publish order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error)

	// MarkPublished removes events that reached the broker.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
