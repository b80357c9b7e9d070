package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// EntryMetadata is the tagged metadata variant attached to a ledger entry.
// Each entry type has its own known shape; this keeps the audit value of the
// metadata column without reducing it to an untyped bag.
type EntryMetadata interface {
	EntryType() EntryType
}

// RunMetadata records the bounded effort input for a run_complete entry.
type RunMetadata struct {
	Taps int `json:"taps"`
}

func (RunMetadata) EntryType() EntryType { return EntryRunComplete }

// LevelUpMetadata records the gem cost and resulting level.
type LevelUpMetadata struct {
	NewLevel int64 `json:"new_level"`
	GemCost  int64 `json:"gem_cost"`
}

func (LevelUpMetadata) EntryType() EntryType { return EntryLevelUp }

// InviteLevelRewardMetadata records which invitee milestone paid the inviter.
type InviteLevelRewardMetadata struct {
	InviteeID uuid.UUID `json:"invitee_id"`
	Level     int64     `json:"level"`
}

func (InviteLevelRewardMetadata) EntryType() EntryType { return EntryInviteLevelReward }

// BankConvertMetadata records the gem amount converted to coins.
type BankConvertMetadata struct {
	GemsSpent int64 `json:"gems_spent"`
}

func (BankConvertMetadata) EntryType() EntryType { return EntryBankConvert }

// ActivityMilestoneMetadata records which threshold was claimed.
type ActivityMilestoneMetadata struct {
	Threshold int64 `json:"threshold"`
}

func (ActivityMilestoneMetadata) EntryType() EntryType { return EntryActivityMilestone }

// InviteBindBonusMetadata records the invitee whose binding paid the bonus.
type InviteBindBonusMetadata struct {
	InviteeID uuid.UUID `json:"invitee_id"`
}

func (InviteBindBonusMetadata) EntryType() EntryType { return EntryInviteBindBonus }

// WithdrawHoldMetadata records the payout request that took the hold.
type WithdrawHoldMetadata struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	AmountCents  int64     `json:"amount_cents"`
	Method       string    `json:"method"`
}

func (WithdrawHoldMetadata) EntryType() EntryType { return EntryWithdrawHold }

// WithdrawRefundMetadata records the rejected withdrawal being refunded.
type WithdrawRefundMetadata struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	AmountCents  int64     `json:"amount_cents"`
}

func (WithdrawRefundMetadata) EntryType() EntryType { return EntryWithdrawRefund }

// EncodeMetadata marshals a typed metadata variant for storage. A nil variant
// encodes as an empty object; a variant whose tag disagrees with the entry
// type is rejected so a metadata shape can never end up on the wrong entry.
func EncodeMetadata(entryType EntryType, meta EntryMetadata) (json.RawMessage, error) {
	if meta == nil {
		return json.RawMessage(`{}`), nil
	}
	if meta.EntryType() != entryType {
		return nil, fmt.Errorf("metadata for %s attached to %s entry", meta.EntryType(), entryType)
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode %s metadata: %w", entryType, err)
	}
	return raw, nil
}
