package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sfa-engine", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "sfa", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, "sfa-engine", cfg.Telemetry.ServiceName)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
		assert.True(t, cfg.Submission.LockEnabled)
		assert.Equal(t, "memory", cfg.Submission.LockBackend)
		assert.Equal(t, 30*time.Second, cfg.Submission.LockTTL)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("SFA_APP_PORT", "9090")
		t.Setenv("SFA_DATABASE_DRIVER", "sqlite")
		t.Setenv("SFA_SUBMISSION_LOCK_BACKEND", "redis")
		t.Setenv("SFA_SUBMISSION_LOCK_TTL", "5s")
		t.Setenv("SFA_SUBMISSION_LOCK_ENABLED", "false")
		t.Setenv("SFA_CLIENT_BASE_URL", "http://store:8080/api/v1")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "redis", cfg.Submission.LockBackend)
		assert.Equal(t, 5*time.Second, cfg.Submission.LockTTL)
		assert.False(t, cfg.Submission.LockEnabled)
		assert.Equal(t, "http://store:8080/api/v1", cfg.Client.BaseURL)
	})

	t.Run("rejects unknown lock backend", func(t *testing.T) {
		t.Setenv("SFA_SUBMISSION_LOCK_BACKEND", "etcd")
		_, err := Load()
		assert.ErrorContains(t, err, "lock_backend")
	})

	t.Run("production requires database password", func(t *testing.T) {
		t.Setenv("SFA_APP_ENV", "production")
		_, err := Load()
		assert.ErrorContains(t, err, "database.password")
	})
}

func TestValidate_SamplingRatio(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Telemetry.SamplingRatio = 1.5
	assert.Error(t, cfg.validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "sfa", Password: "p@ss/word", DBName: "sfa", SSLMode: "require"}
	assert.Equal(t, "postgres://sfa:p%40ss%2Fword@db:5432/sfa?sslmode=require", d.DSN())
}
