package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meowrun/platform/internal/domain"
)

type accountRepo struct{}

// NewAccountRepository returns a pgx-backed AccountRepository.
func NewAccountRepository() AccountRepository {
	return &accountRepo{}
}

const accountColumns = `id, email, password_hash, display_name, role, coins, gems, activity,
       level, referral_code, inviter_id, device_hash, last_ip, last_ua, created_at, updated_at`

func (r *accountRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *accountRepo) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (r *accountRepo) FindByReferralCode(ctx context.Context, db DBTX, code string) (*domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE referral_code = $1`, code)
	return scanAccount(row)
}

func (r *accountRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE id = $1 FOR UPDATE`, id)
	return scanAccount(row)
}

func (r *accountRepo) Create(ctx context.Context, db DBTX, account *domain.Account) error {
	_, err := db.Exec(ctx, `
		INSERT INTO accounts
		  (id, email, password_hash, display_name, role, coins, gems, activity,
		   level, referral_code, device_hash, last_ip, last_ua)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		string(account.Role),
		account.Coins,
		account.Gems,
		account.Activity,
		account.Level,
		account.ReferralCode,
		account.DeviceHash,
		account.LastIP,
		account.LastUA,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// UpdateBalances uses server-side arithmetic with dynamic SET clauses so the
// delta is applied against the committed row, never a stale read.
func (r *accountRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, delta domain.BalanceUpdate) (*domain.Account, error) {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{}
	argIdx := 1

	if delta.HasCoinsDelta() {
		setClauses = append(setClauses, fmt.Sprintf("coins = coins + $%d", argIdx))
		args = append(args, delta.Coins)
		argIdx++
	}
	if delta.HasGemsDelta() {
		setClauses = append(setClauses, fmt.Sprintf("gems = gems + $%d", argIdx))
		args = append(args, delta.Gems)
		argIdx++
	}
	if delta.HasActivityDelta() {
		setClauses = append(setClauses, fmt.Sprintf("activity = activity + $%d", argIdx))
		args = append(args, delta.Activity)
		argIdx++
	}

	args = append(args, accountID)
	query := fmt.Sprintf(`
		UPDATE accounts SET %s
		WHERE id = $%d
		RETURNING `+accountColumns,
		strings.Join(setClauses, ", "), argIdx)

	row := tx.QueryRow(ctx, query, args...)
	return scanAccount(row)
}

func (r *accountRepo) SetLevel(ctx context.Context, db DBTX, accountID uuid.UUID, level int64) error {
	_, err := db.Exec(ctx, `UPDATE accounts SET level = $1, updated_at = now() WHERE id = $2`, level, accountID)
	if err != nil {
		return fmt.Errorf("set level: %w", err)
	}
	return nil
}

func (r *accountRepo) SetDisplayName(ctx context.Context, db DBTX, accountID uuid.UUID, name string) error {
	_, err := db.Exec(ctx, `UPDATE accounts SET display_name = $1, updated_at = now() WHERE id = $2`, name, accountID)
	if err != nil {
		return fmt.Errorf("set display name: %w", err)
	}
	return nil
}

// SetInviter only binds when no inviter exists; the WHERE clause makes the
// set-at-most-once rule race-proof.
func (r *accountRepo) SetInviter(ctx context.Context, db DBTX, accountID, inviterID uuid.UUID) error {
	tag, err := db.Exec(ctx, `
		UPDATE accounts SET inviter_id = $1, updated_at = now()
		WHERE id = $2 AND inviter_id IS NULL`, inviterID, accountID)
	if err != nil {
		return fmt.Errorf("set inviter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyBound()
	}
	return nil
}

// BindDevice is a conditional write: it only succeeds when the account has no
// bound device, so two concurrent first-logins cannot bind different devices.
func (r *accountRepo) BindDevice(ctx context.Context, db DBTX, accountID uuid.UUID, deviceHash string) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE accounts SET device_hash = $1, updated_at = now()
		WHERE id = $2 AND device_hash IS NULL`, deviceHash, accountID)
	if err != nil {
		return false, fmt.Errorf("bind device: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *accountRepo) ClearDevice(ctx context.Context, db DBTX, accountID uuid.UUID) error {
	_, err := db.Exec(ctx, `UPDATE accounts SET device_hash = NULL, updated_at = now() WHERE id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("clear device: %w", err)
	}
	return nil
}

func (r *accountRepo) TouchClient(ctx context.Context, db DBTX, accountID uuid.UUID, ip, ua string) error {
	_, err := db.Exec(ctx, `UPDATE accounts SET last_ip = $1, last_ua = $2 WHERE id = $3`, ip, ua, accountID)
	if err != nil {
		return fmt.Errorf("touch client: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var role string
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &role,
		&a.Coins, &a.Gems, &a.Activity, &a.Level,
		&a.ReferralCode, &a.InviterID, &a.DeviceHash, &a.LastIP, &a.LastUA,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Role = domain.Role(role)
	return &a, nil
}
