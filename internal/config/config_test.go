package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, 5<<20, cfg.Evidence.MaxBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Database.Embedded())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REMOTE_TIMEOUT", "250ms")
	t.Setenv("REMOTE_ENABLED", "false")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/huissier")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Remote.Timeout)
	assert.False(t, cfg.Remote.Enabled)
	assert.False(t, cfg.Database.Embedded())
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		JWTSecret: "s",
		Remote:    RemoteConfig{Timeout: time.Second},
		Evidence:  EvidenceConfig{MaxBytes: 1},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Remote.Timeout = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Log.Level = "verbose"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Evidence.MaxBytes = -1
	assert.Error(t, bad.Validate())
}
