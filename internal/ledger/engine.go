package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/repository"
)

// Engine is the single mutation path for balances. Every balance-affecting
// operation appends one ledger entry and applies its deltas to the account
// projection in the same transaction; either both happen or neither does.
//
// Apply does not enforce sufficiency: callers check preconditions before
// issuing a debit. A negative result after a missed caller-side check is a
// caller bug, not a store-level error.
type Engine struct {
	accounts repository.AccountRepository
	entries  repository.LedgerRepository
	outbox   repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	accounts repository.AccountRepository,
	entries repository.LedgerRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		accounts: accounts,
		entries:  entries,
		outbox:   outbox,
	}
}

// LockAccountForUpdate acquires a row-level lock and returns the account.
// Must be called within a transaction, before any read-check-write sequence
// against the account's balances.
func (e *Engine) LockAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Account, error) {
	account, err := e.accounts.LockForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}
	return account, nil
}

// Apply atomically updates the account's projected balances and appends the
// ledger entry recording the change.
//
// Steps:
//  1. Update account balances using server-side arithmetic (dynamic SET clauses)
//  2. Insert the entry with the post-update balance snapshot
//  3. Insert an outbox event
//
// All 3 steps run within the caller's transaction.
func (e *Engine) Apply(ctx context.Context, tx pgx.Tx, params domain.ApplyParams) (*domain.ApplyResult, error) {
	meta, err := domain.EncodeMetadata(params.Type, params.Metadata)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", params.Type, err)
	}

	updated, err := e.accounts.UpdateBalances(ctx, tx, params.AccountID, params.Delta)
	if err != nil {
		return nil, fmt.Errorf("update balances: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("account", params.AccountID.String())
	}

	entry, err := e.entries.Insert(ctx, tx, &domain.LedgerEntry{
		AccountID:     params.AccountID,
		Type:          params.Type,
		DeltaCoins:    params.Delta.Coins,
		DeltaGems:     params.Delta.Gems,
		DeltaActivity: params.Delta.Activity,
		CoinsAfter:    updated.Coins,
		GemsAfter:     updated.Gems,
		ActivityAfter: updated.Activity,
		Metadata:      meta,
	})
	if err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewEntryRecordedEvent(entry)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return &domain.ApplyResult{Entry: entry, Account: updated}, nil
}

// History returns an account's entries, most recent first. Pure read.
func (e *Engine) History(ctx context.Context, db repository.DBTX, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	return e.entries.ListByAccount(ctx, db, accountID, limit)
}

// ProjectedBalance returns the account's projected balances. Pure read.
func (e *Engine) ProjectedBalance(ctx context.Context, db repository.DBTX, accountID uuid.UUID) (domain.Balances, error) {
	account, err := e.accounts.FindByID(ctx, db, accountID)
	if err != nil {
		return domain.Balances{}, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return domain.Balances{}, domain.ErrNotFound("account", accountID.String())
	}
	return account.Balances, nil
}

// Reconcile recomputes the balances from the journal and compares them to the
// projection. A mismatch means the atomicity invariant was broken somewhere.
func (e *Engine) Reconcile(ctx context.Context, db repository.DBTX, accountID uuid.UUID) (bool, error) {
	account, err := e.accounts.FindByID(ctx, db, accountID)
	if err != nil {
		return false, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return false, domain.ErrNotFound("account", accountID.String())
	}
	sums, err := e.entries.SumDeltas(ctx, db, accountID)
	if err != nil {
		return false, err
	}
	return sums == account.Balances, nil
}
