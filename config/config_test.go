package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables a test asserts defaults for, so values from
// the host environment cannot leak in.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t,
		"PORT", "DATABASE_URL", "DB_MAX_CONNS", "REDIS_ADDR", "JWT_EXPIRE_HOURS",
		"AWS_S3_MEDIA_BUCKET", "BILLING_TRIAL_DAYS", "ROLE_ALERT_MIN_SCORE", "ROLE_ALERT_INTERVAL",
	)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost:5432/castlane?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 0, cfg.Database.MaxConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, "castlane-media-bucket", cfg.AWS.MediaBucket)
	assert.Equal(t, 14, cfg.Billing.TrialDays)
	assert.Equal(t, 60, cfg.Alerts.MinScore)
	assert.Equal(t, 24*time.Hour, cfg.Alerts.Interval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("JWT_EXPIRE_HOURS", "72")
	t.Setenv("BILLING_TRIAL_DAYS", "7")
	t.Setenv("ROLE_ALERT_MIN_SCORE", "45")
	t.Setenv("ROLE_ALERT_INTERVAL", "90m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 72, cfg.JWT.ExpireHours)
	assert.Equal(t, 7, cfg.Billing.TrialDays)
	assert.Equal(t, 45, cfg.Alerts.MinScore)
	assert.Equal(t, 90*time.Minute, cfg.Alerts.Interval)
}

func TestLoadIgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("ROLE_ALERT_MIN_SCORE", "high")
	t.Setenv("ROLE_ALERT_INTERVAL", "soon")
	t.Setenv("DB_MAX_CONNS", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Alerts.MinScore)
	assert.Equal(t, 24*time.Hour, cfg.Alerts.Interval)
	assert.Equal(t, 0, cfg.Database.MaxConns)
}

func TestDatabaseDSN(t *testing.T) {
	t.Run("url wins", func(t *testing.T) {
		c := DatabaseConfig{URL: "postgres://db.internal:5432/prod", Host: "ignored"}
		assert.Equal(t, "postgres://db.internal:5432/prod", c.DSN())
	})
	t.Run("built from components", func(t *testing.T) {
		c := DatabaseConfig{Host: "db", Port: "5433", User: "cast", Password: "secret", DBName: "castlane", SSLMode: "require"}
		assert.Equal(t, "postgres://cast:secret@db:5433/castlane?sslmode=require", c.DSN())
	})
}
