package domain

import "time"

// Brute-force lockout thresholds. Crossing a threshold on a failed attempt
// arms the corresponding lock; the fail counter itself only resets on a
// successful login.
const (
	SoftLockThreshold = 8
	HardLockThreshold = 12

	SoftLockDuration = 15 * time.Minute
	HardLockDuration = 60 * time.Minute
)

// LockState classifies a login-attempt row.
type LockState string

const (
	LockClear      LockState = "clear"
	LockWarming    LockState = "warming"
	LockSoftLocked LockState = "soft_locked"
	LockHardLocked LockState = "hard_locked"
)

// LoginAttempt is the per-(origin, identity) brute-force counter row.
type LoginAttempt struct {
	IP          string    `json:"ip"`
	Email       string    `json:"email"`
	FailCount   int64     `json:"fail_count"`
	LockedUntil time.Time `json:"locked_until"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// State derives the lockout state from the fail counter.
func (a LoginAttempt) State() LockState {
	switch {
	case a.FailCount >= HardLockThreshold:
		return LockHardLocked
	case a.FailCount >= SoftLockThreshold:
		return LockSoftLocked
	case a.FailCount >= 1:
		return LockWarming
	default:
		return LockClear
	}
}

// Locked reports whether the row is inside an armed lock window.
func (a LoginAttempt) Locked(now time.Time) bool {
	return a.LockedUntil.After(now)
}

// LockDurationFor returns the lock to arm when the fail counter reaches
// count, or zero if no threshold applies.
func LockDurationFor(count int64) time.Duration {
	switch {
	case count >= HardLockThreshold:
		return HardLockDuration
	case count >= SoftLockThreshold:
		return SoftLockDuration
	default:
		return 0
	}
}
