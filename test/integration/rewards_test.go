//go:build integration

package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/meowrun/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyTreat_ClaimThenBlocked(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("daily@test.com", "securepass123")

	resp := env.AuthPOST("/rewards/daily", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Added struct {
			Gems     int64 `json:"gems"`
			Activity int64 `json:"activity"`
		} `json:"added"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, int64(10), result.Added.Gems)
	assert.Equal(t, int64(20), result.Added.Activity)
	testutil.AssertBalances(t, env, id, 0, 10, 20)

	// A second claim inside the 24h window is refused.
	resp = env.AuthPOST("/rewards/daily", nil, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_READY")
}

func TestAdReward_ClaimThenSpacingBlock(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("adwatcher@test.com", "securepass123")

	resp := env.AuthPOST("/rewards/ad", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		CoinAdded int64 `json:"coin_added"`
		Remaining int64 `json:"remaining"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, int64(35), result.CoinAdded)
	assert.Equal(t, int64(49), result.Remaining)
	testutil.AssertBalances(t, env, id, 35, 0, 0)

	// Immediately again: inside the 30s spacing window.
	resp = env.AuthPOST("/rewards/ad", nil, token)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "COOLING_DOWN")
}

func TestAdReward_ConcurrentClaimsRespectDailyCap(t *testing.T) {
	eco := testutil.Economy()
	eco.DailyAdLimit = 5
	eco.AdCooldown = 0
	env := testutil.NewTestEnvEconomy(t, eco)
	token, id := env.RegisterPlayer("adswarm@test.com", "securepass123")

	// With the spacing disabled, the row lock alone must hold the cap.
	const claims = 20
	codes := make(chan int, claims)
	var wg sync.WaitGroup
	for i := 0; i < claims; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := env.AuthPOST("/rewards/ad", nil, token)
			codes <- resp.StatusCode
			resp.Body.Close()
		}()
	}
	wg.Wait()
	close(codes)

	var granted, rejected int
	for code := range codes {
		switch code {
		case http.StatusOK:
			granted++
		case http.StatusTooManyRequests:
			rejected++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 5, granted)
	assert.Equal(t, claims-5, rejected)
	testutil.AssertBalances(t, env, id, 5*35, 0, 0)
	assert.Equal(t, 5, testutil.CountEntries(t, env, id, "rewarded_ad"))

	// One more after the dust settles names the cap, not the spacing.
	resp := env.AuthPOST("/rewards/ad", nil, token)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "LIMIT_REACHED")
}

func TestAdReward_DailyLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("adlimit@test.com", "securepass123")

	// Exhaust the daily allowance directly; the spacing window makes
	// claiming 50 ads over HTTP impractical.
	_, err := env.Pool.Exec(context.Background(), `
		UPDATE cooldowns
		SET ad_count_today = 50, ad_day = EXTRACT(EPOCH FROM now())::bigint / 86400,
		    last_ad_at = now() - interval '5 minutes'
		WHERE account_id = $1`, id)
	require.NoError(t, err)

	resp := env.AuthPOST("/rewards/ad", nil, token)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "LIMIT_REACHED")
}

func TestAdReward_CounterResetsOnNewDay(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("newday@test.com", "securepass123")

	// Yesterday's exhausted counter must not block today.
	_, err := env.Pool.Exec(context.Background(), `
		UPDATE cooldowns
		SET ad_count_today = 50, ad_day = EXTRACT(EPOCH FROM now())::bigint / 86400 - 1,
		    last_ad_at = now() - interval '1 day'
		WHERE account_id = $1`, id)
	require.NoError(t, err)

	resp := env.AuthPOST("/rewards/ad", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Remaining int64 `json:"remaining"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, int64(49), result.Remaining)
}

func TestCooldowns_Status(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("status@test.com", "securepass123")

	resp := env.AuthGET("/rewards/cooldowns", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status struct {
		Daily struct {
			Ready     bool  `json:"ready"`
			ReadyInMs int64 `json:"ready_in_ms"`
		} `json:"daily"`
		Ad struct {
			Ready     bool  `json:"ready"`
			ReadyInMs int64 `json:"ready_in_ms"`
			Remaining int64 `json:"remaining"`
		} `json:"ad"`
	}
	testutil.DecodeJSON(t, resp, &status)
	assert.True(t, status.Daily.Ready)
	assert.True(t, status.Ad.Ready)
	assert.Equal(t, int64(50), status.Ad.Remaining)

	// After a claim the ad wait is reported in milliseconds, inside the
	// 30-second spacing window.
	claim := env.AuthPOST("/rewards/ad", nil, token)
	require.Equal(t, http.StatusOK, claim.StatusCode)
	claim.Body.Close()

	resp = env.AuthGET("/rewards/cooldowns", token)
	testutil.DecodeJSON(t, resp, &status)
	assert.False(t, status.Ad.Ready)
	assert.Greater(t, status.Ad.ReadyInMs, int64(0))
	assert.LessOrEqual(t, status.Ad.ReadyInMs, int64(30_000))
}

func TestMilestone_ClaimOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("milestone@test.com", "securepass123")
	env.Grant(id, 0, 0, 100)

	resp := env.AuthPOST("/rewards/activity/claim", map[string]int64{"threshold": 60}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		GemsAdded int64 `json:"gems_added"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, int64(30), result.GemsAdded)

	// Claiming the same milestone again is refused.
	resp = env.AuthPOST("/rewards/activity/claim", map[string]int64{"threshold": 60}, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "ALREADY_CLAIMED")
}

func TestMilestone_NotEnoughActivity(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("slacker@test.com", "securepass123")
	env.Grant(id, 0, 0, 50)

	resp := env.AuthPOST("/rewards/activity/claim", map[string]int64{"threshold": 60}, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_READY")
}

func TestMilestone_UnknownThreshold(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("confused@test.com", "securepass123")

	resp := env.AuthPOST("/rewards/activity/claim", map[string]int64{"threshold": 61}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")
}

func TestMilestone_Overview(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("overview@test.com", "securepass123")
	env.Grant(id, 0, 0, 100)

	resp := env.AuthPOST("/rewards/activity/claim", map[string]int64{"threshold": 60}, token)
	resp.Body.Close()

	resp = env.AuthGET("/rewards/activity", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Items []struct {
			Threshold  int64 `json:"threshold"`
			RewardGems int64 `json:"reward_gems"`
			Claimed    bool  `json:"claimed"`
		} `json:"items"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Len(t, result.Items, 8)
	assert.True(t, result.Items[0].Claimed)
	assert.False(t, result.Items[1].Claimed)
}
