//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates all tables in dependency-safe order.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"event_outbox",
		"audit_log",
		"login_attempts",
		"referral_events",
		"referrals",
		"withdrawals",
		"claims",
		"cooldowns",
		"ledger_entries",
		"accounts",
	}

	for _, table := range tables {
		if _, err := env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			env.t.Logf("CleanAll: truncate %s: %v", table, err)
		}
	}
}
