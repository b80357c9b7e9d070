//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/meowrun/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_ResetDeviceUnblocksNewDevice(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, id := env.RegisterPlayer("stolen@test.com", "securepass123")
	adminToken := env.SeedAdmin("admin-reset@test.com", "adminpass123")

	// Login from a new phone is blocked while the old device is bound.
	env.Device = "replacement-phone"
	resp := env.POST("/auth/login", map[string]string{
		"email": "stolen@test.com", "password": "securepass123",
	}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPOST("/admin/accounts/"+id.String()+"/reset-device", nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The next login binds the replacement device.
	token := env.LoginPlayer("stolen@test.com", "securepass123")
	resp = env.AuthGET("/players/me", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// And the old device is now the mismatched one.
	resp = env.DeviceGET("/players/me", token, testutil.DefaultDevice)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "DEVICE_MISMATCH")
}

func TestAdmin_ReconcileAccount(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("audited@test.com", "securepass123")
	adminToken := env.SeedAdmin("admin-audit@test.com", "adminpass123")

	// Earn through real flows only, so the journal is the full history.
	for i := 0; i < 3; i++ {
		resp := env.AuthPOST("/game/run", map[string]int{"taps": 150}, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	resp := env.AuthPOST("/rewards/daily", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var report struct {
		AccountID  string `json:"account_id"`
		Consistent bool   `json:"consistent"`
	}
	resp = env.AuthGET("/admin/accounts/"+id.String()+"/reconcile", adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &report)
	assert.True(t, report.Consistent)
	assert.Equal(t, id.String(), report.AccountID)

	// A balance mutation that skipped the ledger must be flagged.
	_, err := env.Pool.Exec(context.Background(),
		"UPDATE accounts SET coins = coins + 777 WHERE id = $1", id)
	require.NoError(t, err)

	resp = env.AuthGET("/admin/accounts/"+id.String()+"/reconcile", adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &report)
	assert.False(t, report.Consistent)

	resp = env.AuthGET("/admin/accounts/"+uuid.NewString()+"/reconcile", adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAdmin_Analytics(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("counted@test.com", "securepass123")
	env.Grant(id, 5000, 0, 0)
	adminToken := env.SeedAdmin("admin-stats@test.com", "adminpass123")

	for i := 0; i < 2; i++ {
		resp := env.AuthPOST("/game/run", map[string]int{"taps": 100}, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	submitWithdrawal(t, env, token, 1000)

	resp := env.AuthGET("/admin/analytics", adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		Users struct {
			Total  int64 `json:"total"`
			New24h int64 `json:"new_24h"`
			DAU24h int64 `json:"dau_24h"`
		} `json:"users"`
		Gameplay struct {
			TotalRuns int64 `json:"total_runs"`
			Runs24h   int64 `json:"runs_24h"`
		} `json:"gameplay"`
		Economy struct {
			PendingRMCents int64 `json:"pending_rm_cents"`
		} `json:"economy"`
	}
	testutil.DecodeJSON(t, resp, &stats)

	assert.Equal(t, int64(2), stats.Users.Total) // player + admin
	assert.Equal(t, int64(2), stats.Gameplay.TotalRuns)
	assert.Equal(t, int64(1000), stats.Economy.PendingRMCents)
	assert.GreaterOrEqual(t, stats.Users.DAU24h, int64(1))
}

func TestAdmin_RoutesRejectPlayerToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("sneaky@test.com", "securepass123")

	for _, path := range []string{"/admin/withdrawals", "/admin/analytics"} {
		resp := env.AuthGET(path, token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}
}
