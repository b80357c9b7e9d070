package repository

import (
	"context"
	"fmt"

	"github.com/meowrun/platform/internal/domain"
)

type auditRepo struct{}

// NewAuditRepository returns a pgx-backed AuditRepository.
func NewAuditRepository() AuditRepository {
	return &auditRepo{}
}

func (r *auditRepo) Record(ctx context.Context, db DBTX, rec domain.AuditRecord) error {
	_, err := db.Exec(ctx, `
		INSERT INTO audit_log (account_id, ip, user_agent, action, meta)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.AccountID, rec.IP, rec.UserAgent, rec.Action, rec.Meta)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}
