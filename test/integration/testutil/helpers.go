//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/meowrun/platform/internal/auth"
	"github.com/meowrun/platform/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// RegisterPlayer creates a new player and returns the auth token and account ID.
func (env *TestEnv) RegisterPlayer(email, password string) (token string, accountID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterPlayer: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token   string `json:"token"`
		Account struct {
			ID uuid.UUID `json:"id"`
		} `json:"account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterPlayer: decode: %v", err)
	}
	return result.Token, result.Account.ID
}

// LoginPlayer authenticates an existing player and returns the auth token.
func (env *TestEnv) LoginPlayer(email, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginPlayer: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginPlayer: decode: %v", err)
	}
	return result.Token
}

// SeedAdmin inserts an admin account directly and returns an admin-realm token.
func (env *TestEnv) SeedAdmin(email, password string) string {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		env.t.Fatalf("SeedAdmin: bcrypt: %v", err)
	}

	id := uuid.New()
	_, err = env.Pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, display_name, role, referral_code)
		VALUES ($1, $2, $3, 'Admin', 'admin', $4)`,
		id, email, string(hash), domain.ReferralCodeFor(id))
	if err != nil {
		env.t.Fatalf("SeedAdmin: insert: %v", err)
	}

	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, id, email)
	if err != nil {
		env.t.Fatalf("SeedAdmin: token: %v", err)
	}
	return token
}

// Grant credits balances directly, bypassing the ledger. For test setup only.
func (env *TestEnv) Grant(accountID uuid.UUID, coins, gems, activity int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx, `
		UPDATE accounts
		SET coins = coins + $1, gems = gems + $2, activity = activity + $3
		WHERE id = $4`,
		coins, gems, activity, accountID)
	if err != nil {
		env.t.Fatalf("Grant: %v", err)
	}
}

// SetLevel sets an account's cat level directly. For test setup only.
func (env *TestEnv) SetLevel(accountID uuid.UUID, level int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := env.Pool.Exec(ctx,
		"UPDATE accounts SET level = $1 WHERE id = $2", level, accountID); err != nil {
		env.t.Fatalf("SetLevel: %v", err)
	}
}

func (env *TestEnv) do(method, path string, body interface{}, token, device string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if device != "" {
		req.Header.Set(auth.DeviceHeader, device)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	return env.do("GET", path, nil, "", env.Device)
}

// POST performs a POST request with optional auth token. The env's current
// device fingerprint is always sent.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	return env.do("POST", path, body, token, env.Device)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	return env.do("GET", path, nil, token, env.Device)
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	return env.do("POST", path, body, token, env.Device)
}

// DevicePOST performs an authenticated POST with an explicit device header,
// for mismatch scenarios.
func (env *TestEnv) DevicePOST(path string, body interface{}, token, device string) *http.Response {
	return env.do("POST", path, body, token, device)
}

// DeviceGET performs an authenticated GET with an explicit device header.
func (env *TestEnv) DeviceGET(path, token, device string) *http.Response {
	return env.do("GET", path, nil, token, device)
}
