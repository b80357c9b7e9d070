package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/meowrun/platform/internal/domain"
)

type withdrawalRepo struct{}

// NewWithdrawalRepository returns a pgx-backed WithdrawalRepository.
func NewWithdrawalRepository() WithdrawalRepository {
	return &withdrawalRepo{}
}

const withdrawalColumns = `id, account_id, amount_cents, method, destination, status, admin_note, created_at, updated_at`

func (r *withdrawalRepo) Insert(ctx context.Context, db DBTX, w *domain.Withdrawal) error {
	_, err := db.Exec(ctx, `
		INSERT INTO withdrawals (id, account_id, amount_cents, method, destination, status, admin_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID,
		w.AccountID,
		Int64ToNumeric(w.AmountCents),
		string(w.Method),
		w.Destination,
		string(w.Status),
		w.AdminNote,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

func (r *withdrawalRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Withdrawal, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawals WHERE id = $1 FOR UPDATE`, id)
	return scanWithdrawal(row)
}

func (r *withdrawalRepo) SetStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.WithdrawalStatus, note string) error {
	_, err := db.Exec(ctx, `
		UPDATE withdrawals SET status = $1, admin_note = $2, updated_at = now()
		WHERE id = $3`, string(status), note, id)
	if err != nil {
		return fmt.Errorf("set withdrawal status: %w", err)
	}
	return nil
}

func (r *withdrawalRepo) ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.Withdrawal, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	rows, err := db.Query(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawals
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("query withdrawals: %w", err)
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func (r *withdrawalRepo) ListAll(ctx context.Context, db DBTX, limit int) ([]domain.Withdrawal, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := db.Query(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawals
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query withdrawal queue: %w", err)
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	var amountNum pgtype.Numeric
	var method, status string
	err := row.Scan(
		&w.ID, &w.AccountID, &amountNum, &method, &w.Destination,
		&status, &w.AdminNote, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan withdrawal: %w", err)
	}
	w.AmountCents, err = NumericToInt64(amountNum)
	if err != nil {
		return nil, fmt.Errorf("convert amount_cents: %w", err)
	}
	w.Method = domain.WithdrawalMethod(method)
	w.Status = domain.WithdrawalStatus(status)
	return &w, nil
}

func collectWithdrawals(rows pgx.Rows) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		var amountNum pgtype.Numeric
		var method, status string
		err := rows.Scan(
			&w.ID, &w.AccountID, &amountNum, &method, &w.Destination,
			&status, &w.AdminNote, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal row: %w", err)
		}
		w.AmountCents, err = NumericToInt64(amountNum)
		if err != nil {
			return nil, err
		}
		w.Method = domain.WithdrawalMethod(method)
		w.Status = domain.WithdrawalStatus(status)
		out = append(out, w)
	}
	return out, rows.Err()
}
