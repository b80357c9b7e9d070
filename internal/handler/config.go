package handler

import (
	"net/http"

	"github.com/meowrun/platform/internal/domain"
)

// ConfigHandler serves the read-only economy configuration so clients render
// costs and limits from the same numbers the server enforces.
func ConfigHandler(eco domain.EconomyConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]interface{}{
			"coin_to_rm_rate":      eco.CoinsPerRM,
			"min_withdraw_cents":   eco.MinWithdrawCents,
			"daily_ad_limit":       eco.DailyAdLimit,
			"coin_per_ad":          eco.CoinPerAd,
			"ad_cooldown_sec":      int64(eco.AdCooldown.Seconds()),
			"gem_to_coin_rate":     eco.GemToCoinRate,
			"min_level_to_convert": eco.MinLevelToConvert,
			"activity_milestones":  eco.ActivityMilestones,
			"invite_level_rewards": eco.InviteLevelRewards,
		})
	}
}
