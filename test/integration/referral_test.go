//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/meowrun/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
)

func inviteCode(t *testing.T, env *testutil.TestEnv, token string) string {
	t.Helper()
	resp := env.AuthGET("/invite/me", token)
	var result struct {
		Code string `json:"code"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Code
}

func TestInviteBind_PaysBonusToInviter(t *testing.T) {
	env := testutil.NewTestEnv(t)
	inviterToken, inviterID := env.RegisterPlayer("inviter@test.com", "securepass123")
	inviteeToken, _ := env.RegisterPlayer("invitee@test.com", "securepass123")

	code := inviteCode(t, env, inviterToken)

	resp := env.AuthPOST("/invite/bind", map[string]string{"code": code}, inviteeToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		OK      bool   `json:"ok"`
		Inviter string `json:"inviter"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.True(t, result.OK)

	testutil.AssertBalances(t, env, inviterID, 50, 0, 0)
	assert.Equal(t, 1, testutil.CountEntries(t, env, inviterID, "invite_bind_bonus"))
}

func TestInviteBind_SelfCode(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("narcissist@test.com", "securepass123")

	code := inviteCode(t, env, token)
	resp := env.AuthPOST("/invite/bind", map[string]string{"code": code}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "ALREADY_SELF")
}

func TestInviteBind_OnlyOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	aToken, _ := env.RegisterPlayer("first@test.com", "securepass123")
	bToken, _ := env.RegisterPlayer("second@test.com", "securepass123")
	inviteeToken, _ := env.RegisterPlayer("fickle@test.com", "securepass123")

	resp := env.AuthPOST("/invite/bind", map[string]string{"code": inviteCode(t, env, aToken)}, inviteeToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPOST("/invite/bind", map[string]string{"code": inviteCode(t, env, bToken)}, inviteeToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "ALREADY_BOUND")
}

func TestInviteBind_UnknownCode(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("lost@test.com", "securepass123")

	resp := env.AuthPOST("/invite/bind", map[string]string{"code": "00000000"}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")
}

func TestInviteBind_MalformedCode(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("sloppy@test.com", "securepass123")

	resp := env.AuthPOST("/invite/bind", map[string]string{"code": "not a code"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestInviteLevelMilestone_PaidOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	inviterToken, inviterID := env.RegisterPlayer("mentor@test.com", "securepass123")
	inviteeToken, inviteeID := env.RegisterPlayer("prodigy@test.com", "securepass123")

	resp := env.AuthPOST("/invite/bind", map[string]string{"code": inviteCode(t, env, inviterToken)}, inviteeToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Upgrade the invitee from level 4 to 5, which is a payout level.
	env.SetLevel(inviteeID, 4)
	env.Grant(inviteeID, 0, 100, 0)
	resp = env.AuthPOST("/game/upgrade", nil, inviteeToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Bind bonus 50 plus milestone 200.
	testutil.AssertBalances(t, env, inviterID, 250, 0, 0)
	assert.Equal(t, 1, testutil.CountEntries(t, env, inviterID, "invite_level_reward"))

	// Re-reaching the same level can never pay again.
	env.SetLevel(inviteeID, 4)
	env.Grant(inviteeID, 0, 100, 0)
	resp = env.AuthPOST("/game/upgrade", nil, inviteeToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	testutil.AssertBalances(t, env, inviterID, 250, 0, 0)
}

func TestInviteStatus_ListsInvitees(t *testing.T) {
	env := testutil.NewTestEnv(t)
	inviterToken, _ := env.RegisterPlayer("popular@test.com", "securepass123")
	code := inviteCode(t, env, inviterToken)

	for _, email := range []string{"fan1@test.com", "fan2@test.com"} {
		fanToken, _ := env.RegisterPlayer(email, "securepass123")
		resp := env.AuthPOST("/invite/bind", map[string]string{"code": code}, fanToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := env.AuthGET("/invite/status", inviterToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var overview struct {
		Code    string `json:"code"`
		Bound   bool   `json:"bound"`
		Invited []struct {
			Email string `json:"email"`
			Level int64  `json:"level"`
		} `json:"invited"`
	}
	testutil.DecodeJSON(t, resp, &overview)
	assert.Equal(t, code, overview.Code)
	assert.False(t, overview.Bound)
	assert.Len(t, overview.Invited, 2)
}
