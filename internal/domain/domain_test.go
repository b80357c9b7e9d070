package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEconomy() EconomyConfig {
	return EconomyConfig{
		CoinsPerRM:         1000,
		MinWithdrawCents:   1000,
		DailyAdLimit:       50,
		CoinPerAd:          35,
		AdCooldown:         30 * time.Second,
		DailyTreatPeriod:   24 * time.Hour,
		DailyTreatGems:     10,
		DailyTreatActivity: 20,
		GemPerRun:          3,
		ActivityPerRun:     10,
		GemToCoinRate:      10,
		MinLevelToConvert:  10,
		ActivityMilestones: DefaultActivityMilestones,
		InviteLevelRewards: DefaultInviteLevelRewards,
	}
}

func TestRMCentsToCoins_RoundsUp(t *testing.T) {
	cfg := testEconomy()

	// RM50.00 at 1000 coins/RM holds exactly 50000 coins.
	assert.Equal(t, int64(50000), cfg.RMCentsToCoins(5000))

	// A single cent holds 10 coins exactly.
	assert.Equal(t, int64(10), cfg.RMCentsToCoins(1))

	// Rates that don't divide 100 round upward, never down.
	odd := EconomyConfig{CoinsPerRM: 333}
	assert.Equal(t, int64(4), odd.RMCentsToCoins(1)) // 3.33 → 4
	assert.Equal(t, int64(0), odd.RMCentsToCoins(0))
	assert.Equal(t, int64(0), odd.RMCentsToCoins(-5))
}

func TestCoinsToRMCents_Truncates(t *testing.T) {
	cfg := testEconomy()

	assert.Equal(t, int64(5000), cfg.CoinsToRMCents(50000))
	assert.Equal(t, int64(0), cfg.CoinsToRMCents(9)) // below one cent
	assert.Equal(t, int64(0), cfg.CoinsToRMCents(0))
}

func TestConversion_HoldCoversRequest(t *testing.T) {
	cfg := testEconomy()

	// For any request, converting the hold back to RM covers the request.
	for _, cents := range []int64{1, 99, 100, 1234, 5000, 999999} {
		hold := cfg.RMCentsToCoins(cents)
		assert.GreaterOrEqual(t, cfg.CoinsToRMCents(hold), cents, "cents=%d", cents)
	}
}

func TestDayStamp(t *testing.T) {
	base := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	next := base.Add(time.Second)

	assert.Equal(t, DayStamp(base)+1, DayStamp(next))
	assert.Equal(t, DayStamp(base), DayStamp(base.Add(-time.Hour)))
}

func TestCooldown_DailyStatus(t *testing.T) {
	now := time.Now()
	period := 24 * time.Hour

	t.Run("never claimed is ready", func(t *testing.T) {
		g := Cooldown{}.DailyStatus(now, period)
		assert.True(t, g.Ready)
		assert.Zero(t, g.ReadyIn)
	})

	t.Run("claimed an hour ago waits", func(t *testing.T) {
		cd := Cooldown{LastDailyAt: now.Add(-time.Hour)}
		g := cd.DailyStatus(now, period)
		assert.False(t, g.Ready)
		assert.Equal(t, 23*time.Hour, g.ReadyIn)
	})

	t.Run("claimed yesterday is ready", func(t *testing.T) {
		cd := Cooldown{LastDailyAt: now.Add(-25 * time.Hour)}
		g := cd.DailyStatus(now, period)
		assert.True(t, g.Ready)
	})
}

func TestCooldown_AdStatus(t *testing.T) {
	now := time.Now()

	t.Run("fresh row is ready with full capacity", func(t *testing.T) {
		g := Cooldown{}.AdStatus(now, 50, 30*time.Second)
		assert.True(t, g.Ready)
		assert.Equal(t, int64(50), g.Remaining)
	})

	t.Run("counter resets when day advances", func(t *testing.T) {
		cd := Cooldown{AdCountToday: 50, AdDay: DayStamp(now) - 1, LastAdAt: now.Add(-time.Minute)}
		g := cd.AdStatus(now, 50, 30*time.Second)
		assert.True(t, g.Ready)
		assert.Equal(t, int64(50), g.Remaining)
	})

	t.Run("cap exhausted", func(t *testing.T) {
		cd := Cooldown{AdCountToday: 50, AdDay: DayStamp(now), LastAdAt: now.Add(-time.Minute)}
		g := cd.AdStatus(now, 50, 30*time.Second)
		assert.False(t, g.Ready)
		assert.Zero(t, g.Remaining)
	})

	t.Run("spacing not yet elapsed", func(t *testing.T) {
		cd := Cooldown{AdCountToday: 3, AdDay: DayStamp(now), LastAdAt: now.Add(-10 * time.Second)}
		g := cd.AdStatus(now, 50, 30*time.Second)
		assert.False(t, g.Ready)
		assert.Equal(t, 20*time.Second, g.ReadyIn)
		assert.Equal(t, int64(47), g.Remaining)
	})
}

func TestGates_MarshalWaitInMilliseconds(t *testing.T) {
	t.Run("daily gate", func(t *testing.T) {
		raw, err := json.Marshal(DailyGate{Ready: false, ReadyIn: 5 * time.Second})
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, float64(5000), got["ready_in_ms"])
		assert.Equal(t, false, got["ready"])
	})

	t.Run("ad gate", func(t *testing.T) {
		raw, err := json.Marshal(AdGate{Remaining: 12, Ready: false, ReadyIn: 1500 * time.Millisecond})
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, float64(1500), got["ready_in_ms"])
		assert.Equal(t, float64(12), got["remaining"])
	})

	t.Run("ready gate reports zero wait", func(t *testing.T) {
		raw, err := json.Marshal(DailyGate{Ready: true})
		require.NoError(t, err)
		assert.JSONEq(t, `{"ready": true, "ready_in_ms": 0}`, string(raw))
	})
}

func TestLoginAttempt_State(t *testing.T) {
	cases := []struct {
		count int64
		want  LockState
	}{
		{0, LockClear},
		{1, LockWarming},
		{7, LockWarming},
		{8, LockSoftLocked},
		{11, LockSoftLocked},
		{12, LockHardLocked},
		{30, LockHardLocked},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LoginAttempt{FailCount: tc.count}.State(), "count=%d", tc.count)
	}
}

func TestLockDurationFor(t *testing.T) {
	assert.Zero(t, LockDurationFor(7))
	assert.Equal(t, SoftLockDuration, LockDurationFor(8))
	assert.Equal(t, SoftLockDuration, LockDurationFor(11))
	assert.Equal(t, HardLockDuration, LockDurationFor(12))
}

func TestLoginAttempt_Locked(t *testing.T) {
	now := time.Now()
	assert.True(t, LoginAttempt{LockedUntil: now.Add(time.Minute)}.Locked(now))
	assert.False(t, LoginAttempt{LockedUntil: now.Add(-time.Minute)}.Locked(now))
	assert.False(t, LoginAttempt{}.Locked(now))
}

func TestEncodeMetadata(t *testing.T) {
	t.Run("nil encodes empty object", func(t *testing.T) {
		raw, err := EncodeMetadata(EntryDailyTreat, nil)
		require.NoError(t, err)
		assert.Equal(t, json.RawMessage(`{}`), raw)
	})

	t.Run("variant matches entry type", func(t *testing.T) {
		raw, err := EncodeMetadata(EntryRunComplete, RunMetadata{Taps: 120})
		require.NoError(t, err)
		var m map[string]int
		require.NoError(t, json.Unmarshal(raw, &m))
		assert.Equal(t, 120, m["taps"])
	})

	t.Run("mismatched variant rejected", func(t *testing.T) {
		_, err := EncodeMetadata(EntryDailyTreat, RunMetadata{Taps: 1})
		require.Error(t, err)
	})
}

func TestReferralCodeFor(t *testing.T) {
	id := uuid.New()
	code := ReferralCodeFor(id)

	assert.Len(t, code, 8)
	assert.Equal(t, code, ReferralCodeFor(id), "code must be stable")
	require.NoError(t, ValidateInviteCode(code))
}

func TestEconomyTables(t *testing.T) {
	cfg := testEconomy()

	m, ok := cfg.MilestoneFor(60)
	require.True(t, ok)
	assert.Equal(t, int64(30), m.RewardGems)

	_, ok = cfg.MilestoneFor(61)
	assert.False(t, ok)

	rewards := cfg.InviteRewardsAt(5)
	require.Len(t, rewards, 1)
	assert.Equal(t, int64(200), rewards[0].RewardCoins)
	assert.Empty(t, cfg.InviteRewardsAt(6))
}

func TestRunRewards(t *testing.T) {
	cfg := testEconomy()

	gems, activity := cfg.RunRewards(0)
	assert.Equal(t, int64(3), gems)
	assert.Equal(t, int64(10), activity)

	gems, activity = cfg.RunRewards(300)
	assert.Equal(t, int64(6), gems)
	assert.Equal(t, int64(16), activity)
}

func TestClampTaps(t *testing.T) {
	assert.Equal(t, 0, ClampTaps(-5))
	assert.Equal(t, 150, ClampTaps(150))
	assert.Equal(t, 300, ClampTaps(9999))
}

func TestUpgradeCost(t *testing.T) {
	assert.Equal(t, int64(25), UpgradeCost(1))
	assert.Equal(t, int64(70), UpgradeCost(10))
}

func TestValidMethod(t *testing.T) {
	assert.True(t, ValidMethod(MethodPaypal))
	assert.True(t, ValidMethod(MethodTNG))
	assert.False(t, ValidMethod("venmo"))
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("cat@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestAppError(t *testing.T) {
	err := ErrNotPending("w1")
	assert.Equal(t, "NOT_PENDING", err.Code)
	assert.Equal(t, 409, err.Status)
	assert.Contains(t, err.Error(), "w1")

	wrapped := ErrInternal("query", assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
}
