package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cooldown is the per-account recurring-reward gating row, created lazily on
// first touch.
type Cooldown struct {
	AccountID    uuid.UUID `json:"account_id"`
	LastDailyAt  time.Time `json:"last_daily_at"`
	AdCountToday int64     `json:"ad_count_today"`
	AdDay        int64     `json:"ad_day"`
	LastAdAt     time.Time `json:"last_ad_at"`
}

// DailyGate describes the periodic-reward gate at a point in time.
type DailyGate struct {
	Ready   bool
	ReadyIn time.Duration
}

// MarshalJSON reports the wait in whole milliseconds, matching what clients
// display as a countdown.
func (g DailyGate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ready   bool  `json:"ready"`
		ReadyIn int64 `json:"ready_in_ms"`
	}{g.Ready, g.ReadyIn.Milliseconds()})
}

// AdGate describes the metered-reward gate at a point in time.
type AdGate struct {
	Remaining int64
	Ready     bool
	ReadyIn   time.Duration
}

// MarshalJSON reports the wait in whole milliseconds, matching what clients
// display as a countdown.
func (g AdGate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Remaining int64 `json:"remaining"`
		Ready     bool  `json:"ready"`
		ReadyIn   int64 `json:"ready_in_ms"`
	}{g.Remaining, g.Ready, g.ReadyIn.Milliseconds()})
}

// DailyStatus computes the periodic gate. The claim path uses the same
// arithmetic, so status and claim can never disagree.
func (c Cooldown) DailyStatus(now time.Time, period time.Duration) DailyGate {
	wait := period - now.Sub(c.LastDailyAt)
	if wait < 0 {
		wait = 0
	}
	return DailyGate{Ready: wait == 0, ReadyIn: wait}
}

// AdCountFor returns the metered counter effective at now, resetting to zero
// when the day index has advanced past the stored one.
func (c Cooldown) AdCountFor(now time.Time) int64 {
	if c.AdDay != DayStamp(now) {
		return 0
	}
	return c.AdCountToday
}

// AdStatus computes the metered gate: remaining daily capacity and the
// minimum-spacing wait.
func (c Cooldown) AdStatus(now time.Time, dailyLimit int64, spacing time.Duration) AdGate {
	remaining := dailyLimit - c.AdCountFor(now)
	if remaining < 0 {
		remaining = 0
	}
	wait := spacing - now.Sub(c.LastAdAt)
	if wait < 0 {
		wait = 0
	}
	return AdGate{
		Remaining: remaining,
		Ready:     remaining > 0 && wait == 0,
		ReadyIn:   wait,
	}
}
