package domain

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

// Role identifies the account's access level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Balances is the projected balance triple maintained by the ledger.
// Activity only decreases by explicit admin action.
type Balances struct {
	Coins    int64 `json:"coins"`
	Gems     int64 `json:"gems"`
	Activity int64 `json:"activity"`
}

// Account represents an accounts row.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	Balances
	Level        int64      `json:"level"`
	ReferralCode string     `json:"referral_code"`
	InviterID    *uuid.UUID `json:"inviter_id,omitempty"`
	DeviceHash   *string    `json:"-"`
	LastIP       string     `json:"-"`
	LastUA       string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ReferralCodeFor derives the stable 8-digit invite code for an account.
// The code never changes for a given account ID.
func ReferralCodeFor(id uuid.UUID) string {
	h := fnv.New32a()
	h.Write(id[:])
	return fmt.Sprintf("%08d", 10000000+h.Sum32()%90000000)
}
