package domain

import "time"

// ActivityMilestone pays a one-time gem reward once lifetime activity reaches
// the threshold.
type ActivityMilestone struct {
	Threshold  int64 `json:"threshold"`
	RewardGems int64 `json:"reward_gems"`
}

// InviteLevelReward pays the inviter a one-time coin reward when an invitee
// reaches the level.
type InviteLevelReward struct {
	Level       int64 `json:"level"`
	RewardCoins int64 `json:"reward_coins"`
}

// EconomyConfig is the read-only economy tuning surface. A single instance is
// built from the environment at startup and shared by all services.
type EconomyConfig struct {
	// CoinsPerRM is the conversion rate between coins and the payout
	// currency, shared by both conversion directions.
	CoinsPerRM int64 `json:"coin_to_rm_rate"`
	// MinWithdrawCents is the minimum withdrawal amount in RM cents.
	MinWithdrawCents int64 `json:"min_withdraw_cents"`

	DailyAdLimit int64         `json:"daily_ad_limit"`
	CoinPerAd    int64         `json:"coin_per_ad"`
	AdCooldown   time.Duration `json:"-"`

	DailyTreatPeriod   time.Duration `json:"-"`
	DailyTreatGems     int64         `json:"daily_treat_gems"`
	DailyTreatActivity int64         `json:"daily_treat_activity"`

	GemPerRun      int64 `json:"gem_per_run"`
	ActivityPerRun int64 `json:"activity_per_run"`

	GemToCoinRate     int64 `json:"gem_to_coin_rate"`
	MinLevelToConvert int64 `json:"min_level_to_convert"`

	InviteBindBonusCoins int64 `json:"invite_bind_bonus_coins"`

	ActivityMilestones []ActivityMilestone `json:"activity_milestones"`
	InviteLevelRewards []InviteLevelReward `json:"invite_level_rewards"`
}

// DefaultActivityMilestones is the standard milestone table.
var DefaultActivityMilestones = []ActivityMilestone{
	{Threshold: 60, RewardGems: 30},
	{Threshold: 120, RewardGems: 40},
	{Threshold: 240, RewardGems: 60},
	{Threshold: 420, RewardGems: 90},
	{Threshold: 600, RewardGems: 120},
	{Threshold: 780, RewardGems: 150},
	{Threshold: 960, RewardGems: 180},
	{Threshold: 1140, RewardGems: 220},
}

// DefaultInviteLevelRewards is the standard referral milestone table.
var DefaultInviteLevelRewards = []InviteLevelReward{
	{Level: 5, RewardCoins: 200},
	{Level: 20, RewardCoins: 200},
	{Level: 50, RewardCoins: 200},
	{Level: 80, RewardCoins: 200},
}

// CoinsToRMCents converts a coin balance to RM cents, truncating any
// sub-cent remainder.
func (c EconomyConfig) CoinsToRMCents(coins int64) int64 {
	if coins <= 0 {
		return 0
	}
	return coins * 100 / c.CoinsPerRM
}

// RMCentsToCoins converts an RM amount in cents to coins, rounding up so a
// withdrawal hold never under-collects.
func (c EconomyConfig) RMCentsToCoins(cents int64) int64 {
	if cents <= 0 {
		return 0
	}
	return (cents*c.CoinsPerRM + 99) / 100
}

// MilestoneFor returns the activity milestone with the given threshold.
func (c EconomyConfig) MilestoneFor(threshold int64) (ActivityMilestone, bool) {
	for _, m := range c.ActivityMilestones {
		if m.Threshold == threshold {
			return m, true
		}
	}
	return ActivityMilestone{}, false
}

// InviteRewardsAt returns the referral rewards that fire at the given level.
func (c EconomyConfig) InviteRewardsAt(level int64) []InviteLevelReward {
	var out []InviteLevelReward
	for _, r := range c.InviteLevelRewards {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// UpgradeCost is the gem price of advancing from the given level.
func UpgradeCost(level int64) int64 { return 20 + level*5 }

// RunRewards computes the gem and activity rewards for a run with the given
// clamped tap count.
func (c EconomyConfig) RunRewards(taps int) (gems, activity int64) {
	return c.GemPerRun + int64(taps/100), c.ActivityPerRun + int64(taps/50)
}

// ClampTaps bounds the client-reported effort input.
func ClampTaps(taps int) int {
	if taps < 0 {
		return 0
	}
	if taps > 300 {
		return 300
	}
	return taps
}

// DayStamp maps a timestamp to its UTC day index. The metered-reward counter
// resets the moment the day index advances, not on a timer.
func DayStamp(t time.Time) int64 {
	return t.UTC().Unix() / 86400
}
