//go:build integration

package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/register", map[string]string{
		"email": "newrunner@test.com", "password": "securepass123",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Token   string `json:"token"`
		Account struct {
			ID           uuid.UUID `json:"id"`
			Email        string    `json:"email"`
			Coins        int64     `json:"coins"`
			Gems         int64     `json:"gems"`
			Level        int64     `json:"level"`
			ReferralCode string    `json:"referral_code"`
		} `json:"account"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, uuid.Nil, result.Account.ID)
	assert.Equal(t, "newrunner@test.com", result.Account.Email)
	assert.Equal(t, int64(0), result.Account.Coins)
	assert.Equal(t, int64(1), result.Account.Level)
	assert.Len(t, result.Account.ReferralCode, 8)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("dup@test.com", "securepass123")

	resp := env.POST("/auth/register", map[string]string{
		"email": "dup@test.com", "password": "securepass123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestRegister_ShortPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/register", map[string]string{
		"email": "short@test.com", "password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestRegister_MissingDevice(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Device = ""
	resp := env.POST("/auth/register", map[string]string{
		"email": "nodev@test.com", "password": "securepass123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestLogin_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("login@test.com", "securepass123")

	token := env.LoginPlayer("login@test.com", "securepass123")
	assert.NotEmpty(t, token)

	resp := env.AuthGET("/players/me", token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}

func TestLogin_WrongPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("wrongpw@test.com", "securepass123")

	resp := env.POST("/auth/login", map[string]string{
		"email": "wrongpw@test.com", "password": "not-the-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/login", map[string]string{
		"email": "ghost@test.com", "password": "securepass123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("lockme@test.com", "securepass123")

	for i := 0; i < 8; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"email": "lockme@test.com", "password": "bad-password",
		}, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
		resp.Body.Close()
	}

	// Locked out now, even with the correct password.
	resp := env.POST("/auth/login", map[string]string{
		"email": "lockme@test.com", "password": "securepass123",
	}, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "LOCKED_OUT")
}

func TestLogin_FailureCounterResetsOnSuccess(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("resetme@test.com", "securepass123")

	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"email": "resetme@test.com", "password": "bad-password",
		}, "")
		resp.Body.Close()
	}
	env.LoginPlayer("resetme@test.com", "securepass123")

	// The counter was reset; five more failures must not lock.
	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"email": "resetme@test.com", "password": "bad-password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
	env.LoginPlayer("resetme@test.com", "securepass123")
}

func TestLogin_ConcurrentFailuresAllCounted(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("swarm@test.com", "securepass123")

	// Stay under the soft-lock threshold so every attempt reaches the
	// counter instead of bouncing off an armed lock.
	const attempts = 6
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := env.POST("/auth/login", map[string]string{
				"email": "swarm@test.com", "password": "bad-password",
			}, "")
			resp.Body.Close()
		}()
	}
	wg.Wait()

	var count int64
	err := env.Pool.QueryRow(context.Background(),
		`SELECT fail_count FROM login_attempts WHERE email = $1`, "swarm@test.com").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, int64(attempts), count)
}

func TestAccounts_RoleDefaultsToUser(t *testing.T) {
	env := testutil.NewTestEnv(t)

	var role string
	err := env.Pool.QueryRow(context.Background(), `
		INSERT INTO accounts (email, password_hash, referral_code)
		VALUES ('schema-default@test.com', 'x', 'SCHEMA01')
		RETURNING role`).Scan(&role)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleUser), role)
}

func TestLogin_DeviceMismatch(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("devbound@test.com", "securepass123")

	env.Device = "some-other-device"
	resp := env.POST("/auth/login", map[string]string{
		"email": "devbound@test.com", "password": "securepass123",
	}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "DEVICE_MISMATCH")
}

func TestAdminLogin_RejectsPlayerCredentials(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("justaplayer@test.com", "securepass123")

	resp := env.POST("/admin/login", map[string]string{
		"email": "justaplayer@test.com", "password": "securepass123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
}

func TestAdminLogin_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedAdmin("boss@test.com", "adminpass123")

	resp := env.POST("/admin/login", map[string]string{
		"email": "boss@test.com", "password": "adminpass123",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.NotEmpty(t, result.Token)
}
