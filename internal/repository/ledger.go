package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meowrun/platform/internal/domain"
)

type ledgerRepo struct{}

// NewLedgerRepository returns a pgx-backed LedgerRepository.
func NewLedgerRepository() LedgerRepository {
	return &ledgerRepo{}
}

const entryColumns = `id, account_id, type, delta_coins, delta_gems, delta_activity,
       coins_after, gems_after, activity_after, metadata, created_at`

func (r *ledgerRepo) Insert(ctx context.Context, db DBTX, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO ledger_entries
		  (account_id, type, delta_coins, delta_gems, delta_activity,
		   coins_after, gems_after, activity_after, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+entryColumns,
		entry.AccountID,
		string(entry.Type),
		entry.DeltaCoins,
		entry.DeltaGems,
		entry.DeltaActivity,
		entry.CoinsAfter,
		entry.GemsAfter,
		entry.ActivityAfter,
		entry.Metadata,
	)
	return scanEntry(row)
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var typ string
		err := rows.Scan(
			&e.ID, &e.AccountID, &typ,
			&e.DeltaCoins, &e.DeltaGems, &e.DeltaActivity,
			&e.CoinsAfter, &e.GemsAfter, &e.ActivityAfter,
			&e.Metadata, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		e.Type = domain.EntryType(typ)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *ledgerRepo) SumDeltas(ctx context.Context, db DBTX, accountID uuid.UUID) (domain.Balances, error) {
	var b domain.Balances
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta_coins), 0), COALESCE(SUM(delta_gems), 0), COALESCE(SUM(delta_activity), 0)
		FROM ledger_entries WHERE account_id = $1`, accountID).
		Scan(&b.Coins, &b.Gems, &b.Activity)
	if err != nil {
		return domain.Balances{}, fmt.Errorf("sum ledger deltas: %w", err)
	}
	return b, nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var typ string
	err := row.Scan(
		&e.ID, &e.AccountID, &typ,
		&e.DeltaCoins, &e.DeltaGems, &e.DeltaActivity,
		&e.CoinsAfter, &e.GemsAfter, &e.ActivityAfter,
		&e.Metadata, &e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	e.Type = domain.EntryType(typ)
	return &e, nil
}
