package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meowrun/platform/internal/domain"
)

type claimRepo struct{}

// NewClaimRepository returns a pgx-backed ClaimRepository.
func NewClaimRepository() ClaimRepository {
	return &claimRepo{}
}

// Insert relies on the (account_id, key, day_scope) unique index. A unique
// violation is passed through for the caller to classify.
func (r *claimRepo) Insert(ctx context.Context, db DBTX, claim *domain.Claim) error {
	_, err := db.Exec(ctx, `
		INSERT INTO claims (account_id, key, day_scope)
		VALUES ($1, $2, $3)`,
		claim.AccountID, claim.Key, claim.DayScope)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (r *claimRepo) Exists(ctx context.Context, db DBTX, accountID uuid.UUID, key string, dayScope int64) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM claims WHERE account_id = $1 AND key = $2 AND day_scope = $3
		)`, accountID, key, dayScope).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("claim exists: %w", err)
	}
	return exists, nil
}
