//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body carries the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertBalances queries the accounts table and asserts all three balances.
func AssertBalances(t *testing.T, env *TestEnv, accountID uuid.UUID, coins, gems, activity int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var c, g, a int64
	err := env.Pool.QueryRow(ctx,
		"SELECT coins, gems, activity FROM accounts WHERE id = $1",
		accountID).Scan(&c, &g, &a)
	if err != nil {
		t.Fatalf("AssertBalances: query: %v", err)
	}
	if c != coins {
		t.Errorf("coins: expected %d, got %d", coins, c)
	}
	if g != gems {
		t.Errorf("gems: expected %d, got %d", gems, g)
	}
	if a != activity {
		t.Errorf("activity: expected %d, got %d", activity, a)
	}
}

// CountEntries returns the number of ledger entries for an account, optionally
// filtered by type.
func CountEntries(t *testing.T, env *TestEnv, accountID uuid.UUID, entryType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	var err error
	if entryType == "" {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1", accountID).Scan(&count)
	} else {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1 AND type = $2",
			accountID, entryType).Scan(&count)
	}
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	return count
}

// CountOutbox returns the number of pending outbox events of a given type.
func CountOutbox(t *testing.T, env *TestEnv, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM event_outbox WHERE event_type = $1", eventType).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutbox: %v", err)
	}
	return count
}
