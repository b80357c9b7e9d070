package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntryType enumerates ledger entry types. The set is open: new types may be
// added, existing ones must never be repurposed.
type EntryType string

const (
	EntryRunComplete       EntryType = "run_complete"
	EntryLevelUp           EntryType = "level_up"
	EntryInviteLevelReward EntryType = "invite_level_reward"
	EntryBankConvert       EntryType = "bank_convert"
	EntryActivityMilestone EntryType = "activity_milestone"
	EntryInviteBindBonus   EntryType = "invite_bind_bonus"
	EntryDailyTreat        EntryType = "daily_treat"
	EntryRewardedAd        EntryType = "rewarded_ad"
	EntryWithdrawHold      EntryType = "withdraw_hold"
	EntryWithdrawRefund    EntryType = "withdraw_refund"
)

// LedgerEntry represents a ledger_entries row. Entries are append-only and
// never updated or deleted; the account's projected balances always equal the
// sum of its entry deltas.
type LedgerEntry struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Type          EntryType       `json:"type"`
	DeltaCoins    int64           `json:"delta_coins"`
	DeltaGems     int64           `json:"delta_gems"`
	DeltaActivity int64           `json:"delta_activity"`
	CoinsAfter    int64           `json:"coins_after"`
	GemsAfter     int64           `json:"gems_after"`
	ActivityAfter int64           `json:"activity_after"`
	Metadata      json.RawMessage `json:"metadata"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BalanceUpdate describes which balance columns to update and by how much.
// Used by Apply to build the dynamic UPDATE statement with server-side
// arithmetic.
type BalanceUpdate struct {
	Coins    int64
	Gems     int64
	Activity int64
}

// HasCoinsDelta returns true if the coin balance changes.
func (u BalanceUpdate) HasCoinsDelta() bool { return u.Coins != 0 }

// HasGemsDelta returns true if the gem balance changes.
func (u BalanceUpdate) HasGemsDelta() bool { return u.Gems != 0 }

// HasActivityDelta returns true if the activity counter changes.
func (u BalanceUpdate) HasActivityDelta() bool { return u.Activity != 0 }

// ApplyParams is the input to the atomic ledger Apply operation.
type ApplyParams struct {
	AccountID uuid.UUID
	Type      EntryType
	Delta     BalanceUpdate
	Metadata  EntryMetadata
}

// ApplyResult is returned from ledger Apply.
type ApplyResult struct {
	Entry   *LedgerEntry
	Account *Account
}
