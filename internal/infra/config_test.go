package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3200, cfg.APIPort)
	assert.Equal(t, int64(1000), cfg.CoinsPerRM)
	assert.Equal(t, int64(1000), cfg.MinWithdrawCents)
	assert.Equal(t, int64(50), cfg.DailyAdLimit)
	assert.Equal(t, int64(35), cfg.CoinPerAd)
	assert.Equal(t, 30*time.Second, cfg.AdCooldown)
	assert.Equal(t, 24*time.Hour, cfg.DailyTreatPeriod)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTPlayerExpiry)
	assert.Equal(t, int32(16), cfg.DBMaxConns)
	assert.Equal(t, int32(2), cfg.DBMinConns)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
}

func TestConfig_DSNPrefersDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@db:5432/app"}
	assert.Equal(t, "postgres://u:p@db:5432/app", cfg.DSN())

	cfg = &Config{PGUser: "u", PGPassword: "p", PGHost: "h", PGPort: 5432, PGDatabase: "d"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DSN())
}

func TestConfig_ValidateRejectsInsecureDefaults(t *testing.T) {
	cfg := &Config{JWTSecret: "change-me-in-production"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{JWTSecret: "short"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{
		JWTSecret:     "this-is-a-sufficiently-long-secret-key",
		AdminPassword: "meowrun-admin",
	}
	assert.Error(t, cfg.Validate())

	cfg = &Config{
		JWTSecret:     "this-is-a-sufficiently-long-secret-key",
		AdminPassword: "distinct-admin-password",
	}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{JWTSecret: "change-me-in-production", AllowInsecureDefaults: true}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_EconomyAssembly(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	eco := cfg.Economy()
	assert.Equal(t, int64(1000), eco.CoinsPerRM)
	assert.Equal(t, int64(10), eco.GemToCoinRate)
	assert.Equal(t, int64(10), eco.MinLevelToConvert)
	assert.Equal(t, int64(50), eco.InviteBindBonusCoins)
	assert.Len(t, eco.ActivityMilestones, 8)
	assert.Len(t, eco.InviteLevelRewards, 4)
}
