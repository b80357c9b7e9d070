package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReferralBinding records the one-time inviter/invitee relationship. The
// invitee column is unique: an account has at most one inviter, ever.
type ReferralBinding struct {
	InviterID uuid.UUID `json:"inviter_id"`
	InviteeID uuid.UUID `json:"invitee_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReferralEvent is the proof that a milestone payout already fired for an
// (inviter, invitee, key) triple.
type ReferralEvent struct {
	InviterID uuid.UUID `json:"inviter_id"`
	InviteeID uuid.UUID `json:"invitee_id"`
	EventKey  string    `json:"event_key"`
	CreatedAt time.Time `json:"created_at"`
}

// InvitedAccount is one row of the inviter's referral overview.
type InvitedAccount struct {
	Email     string    `json:"email"`
	Level     int64     `json:"level"`
	BoundAt   time.Time `json:"bound_at"`
}
