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

func submitWithdrawal(t *testing.T, env *testutil.TestEnv, token string, cents int64) uuid.UUID {
	t.Helper()
	resp := env.AuthPOST("/withdrawals", map[string]interface{}{
		"amount_cents": cents,
		"method":       "tng",
		"destination":  "0123456789",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var w struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	testutil.DecodeJSON(t, resp, &w)
	require.Equal(t, "pending", w.Status)
	return w.ID
}

func TestWithdraw_BelowMinimum(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("small@test.com", "securepass123")
	env.Grant(id, 100000, 0, 0)

	resp := env.AuthPOST("/withdrawals", map[string]interface{}{
		"amount_cents": 999, "method": "tng", "destination": "0123456789",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestWithdraw_UnknownMethod(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("oddmethod@test.com", "securepass123")
	env.Grant(id, 100000, 0, 0)

	resp := env.AuthPOST("/withdrawals", map[string]interface{}{
		"amount_cents": 1000, "method": "hawala", "destination": "0123456789",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestWithdraw_InsufficientCoins(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("broke@test.com", "securepass123")
	env.Grant(id, 500, 0, 0)

	// RM10 needs a 1000-coin hold.
	resp := env.AuthPOST("/withdrawals", map[string]interface{}{
		"amount_cents": 1000, "method": "tng", "destination": "0123456789",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_FUNDS")
}

func TestWithdraw_HoldsCoinsOnSubmit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("payday@test.com", "securepass123")
	env.Grant(id, 5000, 0, 0)

	submitWithdrawal(t, env, token, 1500)

	// RM15.00 holds 1500 coins at 1000 coins per RM.
	testutil.AssertBalances(t, env, id, 3500, 0, 0)
	assert.Equal(t, 1, testutil.CountEntries(t, env, id, "withdraw_hold"))
	assert.Equal(t, 1, testutil.CountOutbox(t, env, "econ.withdrawal.requested"))
}

func TestWithdraw_MarkPaid(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("paidout@test.com", "securepass123")
	env.Grant(id, 5000, 0, 0)
	adminToken := env.SeedAdmin("admin-paid@test.com", "adminpass123")

	wID := submitWithdrawal(t, env, token, 1000)

	resp := env.AuthPOST("/admin/withdrawals/"+wID.String()+"/paid",
		map[string]string{"admin_note": "transferred"}, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Held coins stay spent.
	testutil.AssertBalances(t, env, id, 4000, 0, 0)

	var status string
	require.NoError(t, env.Pool.QueryRow(context.Background(),
		"SELECT status FROM withdrawals WHERE id = $1", wID).Scan(&status))
	assert.Equal(t, "paid", status)
}

func TestWithdraw_RejectRefundsHold(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("rejected@test.com", "securepass123")
	env.Grant(id, 5000, 0, 0)
	adminToken := env.SeedAdmin("admin-reject@test.com", "adminpass123")

	wID := submitWithdrawal(t, env, token, 1000)
	testutil.AssertBalances(t, env, id, 4000, 0, 0)

	resp := env.AuthPOST("/admin/withdrawals/"+wID.String()+"/reject",
		map[string]string{"admin_note": "bad destination"}, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	testutil.AssertBalances(t, env, id, 5000, 0, 0)
	assert.Equal(t, 1, testutil.CountEntries(t, env, id, "withdraw_refund"))
}

func TestWithdraw_SettleTwice(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("twice@test.com", "securepass123")
	env.Grant(id, 5000, 0, 0)
	adminToken := env.SeedAdmin("admin-twice@test.com", "adminpass123")

	wID := submitWithdrawal(t, env, token, 1000)

	resp := env.AuthPOST("/admin/withdrawals/"+wID.String()+"/paid", nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// A settled withdrawal cannot be rejected; the refund must not fire.
	resp = env.AuthPOST("/admin/withdrawals/"+wID.String()+"/reject", nil, adminToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_PENDING")
	testutil.AssertBalances(t, env, id, 4000, 0, 0)
}

func TestWithdraw_SettleUnknown(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.SeedAdmin("admin-ghost@test.com", "adminpass123")

	resp := env.AuthPOST("/admin/withdrawals/"+uuid.NewString()+"/paid", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")
}

func TestWithdraw_ListMine(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("lister@test.com", "securepass123")
	env.Grant(id, 10000, 0, 0)

	submitWithdrawal(t, env, token, 1000)
	submitWithdrawal(t, env, token, 2000)

	resp := env.AuthGET("/withdrawals", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Items []struct {
			AmountCents int64  `json:"amount_cents"`
			Status      string `json:"status"`
		} `json:"items"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Len(t, result.Items, 2)
}

func TestWithdraw_AdminQueue(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, id := env.RegisterPlayer("queued@test.com", "securepass123")
	env.Grant(id, 10000, 0, 0)
	adminToken := env.SeedAdmin("admin-queue@test.com", "adminpass123")

	submitWithdrawal(t, env, token, 1000)

	resp := env.AuthGET("/admin/withdrawals", adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Items []struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"items"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "pending", result.Items[0].Status)
}
