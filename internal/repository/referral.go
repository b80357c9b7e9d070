package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meowrun/platform/internal/domain"
)

type referralRepo struct{}

// NewReferralRepository returns a pgx-backed ReferralRepository.
func NewReferralRepository() ReferralRepository {
	return &referralRepo{}
}

func (r *referralRepo) InsertBinding(ctx context.Context, db DBTX, b *domain.ReferralBinding) error {
	_, err := db.Exec(ctx, `
		INSERT INTO referrals (inviter_id, invitee_id)
		VALUES ($1, $2)`, b.InviterID, b.InviteeID)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("insert referral binding: %w", err)
	}
	return nil
}

// InsertEvent attempts the (inviter, invitee, key) uniqueness insert; a
// unique violation is passed through for the caller to swallow.
func (r *referralRepo) InsertEvent(ctx context.Context, db DBTX, e *domain.ReferralEvent) error {
	_, err := db.Exec(ctx, `
		INSERT INTO referral_events (inviter_id, invitee_id, event_key)
		VALUES ($1, $2, $3)`, e.InviterID, e.InviteeID, e.EventKey)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("insert referral event: %w", err)
	}
	return nil
}

func (r *referralRepo) ListInvited(ctx context.Context, db DBTX, inviterID uuid.UUID, limit int) ([]domain.InvitedAccount, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT a.email, a.level, r.created_at
		FROM referrals r
		JOIN accounts a ON a.id = r.invitee_id
		WHERE r.inviter_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2`, inviterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query invited accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.InvitedAccount
	for rows.Next() {
		var inv domain.InvitedAccount
		if err := rows.Scan(&inv.Email, &inv.Level, &inv.BoundAt); err != nil {
			return nil, fmt.Errorf("scan invited row: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
