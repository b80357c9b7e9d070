package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/meowrun/platform/internal/domain"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"meowrun"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"meowrun"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"meowrun"`

	// Connection pool sizing. The API serves short point queries plus a few
	// row-locked read-modify-write transactions, so a modest pool is enough.
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"16"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`

	// JWT
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTPlayerExpiry time.Duration `env:"JWT_PLAYER_EXPIRY" envDefault:"168h"`
	JWTAdminExpiry  time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3200"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"meowrun.economy.events"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Admin bootstrap account, created at startup if missing.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@meowrun.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"meowrun-admin"`

	// Economy tuning
	CoinsPerRM         int64         `env:"COINS_PER_RM" envDefault:"1000"`
	MinWithdrawCents   int64         `env:"MIN_WITHDRAW_CENTS" envDefault:"1000"`
	DailyAdLimit       int64         `env:"DAILY_AD_LIMIT" envDefault:"50"`
	CoinPerAd          int64         `env:"COIN_PER_AD" envDefault:"35"`
	AdCooldown         time.Duration `env:"AD_COOLDOWN" envDefault:"30s"`
	DailyTreatPeriod   time.Duration `env:"DAILY_TREAT_PERIOD" envDefault:"24h"`
	DailyTreatGems     int64         `env:"DAILY_TREAT_GEMS" envDefault:"10"`
	DailyTreatActivity int64         `env:"DAILY_TREAT_ACTIVITY" envDefault:"20"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	if c.AdminPassword == "meowrun-admin" {
		return fmt.Errorf("ADMIN_PASSWORD is set to the insecure default")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// Economy assembles the immutable economy configuration shared by all
// services. The milestone tables are not environment-tunable.
func (c *Config) Economy() domain.EconomyConfig {
	return domain.EconomyConfig{
		CoinsPerRM:           c.CoinsPerRM,
		MinWithdrawCents:     c.MinWithdrawCents,
		DailyAdLimit:         c.DailyAdLimit,
		CoinPerAd:            c.CoinPerAd,
		AdCooldown:           c.AdCooldown,
		DailyTreatPeriod:     c.DailyTreatPeriod,
		DailyTreatGems:       c.DailyTreatGems,
		DailyTreatActivity:   c.DailyTreatActivity,
		GemPerRun:            3,
		ActivityPerRun:       10,
		GemToCoinRate:        10,
		MinLevelToConvert:    10,
		InviteBindBonusCoins: 50,
		ActivityMilestones:   domain.DefaultActivityMilestones,
		InviteLevelRewards:   domain.DefaultInviteLevelRewards,
	}
}
