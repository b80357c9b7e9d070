package domain

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus enumerates the withdrawal state machine. A withdrawal is
// created pending and transitions exactly once, to paid or rejected.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// WithdrawalMethod is the closed set of payout channels.
type WithdrawalMethod string

const (
	MethodPaypal WithdrawalMethod = "paypal"
	MethodTNG    WithdrawalMethod = "tng"
)

// ValidMethod reports whether the payout channel is one we support.
func ValidMethod(m WithdrawalMethod) bool {
	return m == MethodPaypal || m == MethodTNG
}

// Withdrawal represents a withdrawals row. AmountCents is the requested RM
// amount in cents; the coin hold is recomputed from it with round-up
// conversion whenever needed, never from a live rate lookup.
type Withdrawal struct {
	ID          uuid.UUID        `json:"id"`
	AccountID   uuid.UUID        `json:"account_id"`
	AmountCents int64            `json:"amount_cents"`
	Method      WithdrawalMethod `json:"method"`
	Destination string           `json:"destination"`
	Status      WithdrawalStatus `json:"status"`
	AdminNote   string           `json:"admin_note"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
