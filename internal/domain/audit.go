package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is a best-effort trail row for security-relevant actions.
// Recording one must never block or fail the action it describes.
type AuditRecord struct {
	AccountID *uuid.UUID `json:"account_id,omitempty"`
	IP        string     `json:"ip"`
	UserAgent string     `json:"user_agent"`
	Action    string     `json:"action"`
	Meta      string     `json:"meta,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
