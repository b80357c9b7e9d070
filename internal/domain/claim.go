package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Claim is a proof-of-payout row: its existence on (account, key, day_scope)
// is what prevents a one-time reward from being granted twice. DayScope 0
// marks a lifetime-scoped claim; any other value scopes the claim to that
// calendar day.
type Claim struct {
	AccountID uuid.UUID `json:"account_id"`
	Key       string    `json:"key"`
	DayScope  int64     `json:"day_scope"`
	CreatedAt time.Time `json:"created_at"`
}

// LifetimeScope marks a claim that can only ever be made once.
const LifetimeScope int64 = 0

// ActivityClaimKey builds the claim key for an activity milestone.
func ActivityClaimKey(threshold int64) string {
	return fmt.Sprintf("activity_%d", threshold)
}

// ReferralEventKey builds the referral event key for a level milestone.
func ReferralEventKey(level int64) string {
	return fmt.Sprintf("lv_%d", level)
}

// MilestoneStatus reports one configured milestone's claim state for an
// account.
type MilestoneStatus struct {
	Threshold  int64 `json:"threshold"`
	RewardGems int64 `json:"reward_gems"`
	Progress   int64 `json:"progress"`
	Claimable  bool  `json:"claimable"`
	Claimed    bool  `json:"claimed"`
}
