package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "DATABASE_URL", "JWT_SECRET", "LOG_FORMAT", "METRICS_ENABLED",
		"MATCH_MAX_PREFERRED_DISTANCE", "MATCH_CANDIDATE_LIMIT", "HOTPICK_LIMIT", "HOTPICK_TTL",
		"PATTERN_BUFFER_CAPACITY", "PREFERENCE_CACHE_SIZE", "PREFERENCE_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 50.0, cfg.MaxPreferredDistance)
	assert.Equal(t, 200, cfg.CandidateLimit)
	assert.Equal(t, 10, cfg.HotpickLimit)
	assert.Equal(t, 24*time.Hour, cfg.HotpickTTL)
	assert.Equal(t, 1000, cfg.PatternBufferCapacity)
	assert.Equal(t, 10000, cfg.PreferenceCacheSize)
	assert.Equal(t, 15*time.Minute, cfg.PreferenceCacheTTL)
	assert.True(t, cfg.MetricsEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("MATCH_MAX_PREFERRED_DISTANCE", "25.5")
	t.Setenv("HOTPICK_LIMIT", "5")
	t.Setenv("PREFERENCE_CACHE_TTL", "1m")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("PATTERN_BUFFER_CAPACITY", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 25.5, cfg.MaxPreferredDistance)
	assert.Equal(t, 5, cfg.HotpickLimit)
	assert.Equal(t, time.Minute, cfg.PreferenceCacheTTL)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 1000, cfg.PatternBufferCapacity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "default secret in production",
			mutate:  func(c *Config) { c.Environment = "production" },
			wantErr: "JWT secret must be changed",
		},
		{
			name:    "missing database",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: "database URL is required",
		},
		{
			name:    "zero hotpick limit",
			mutate:  func(c *Config) { c.HotpickLimit = 0 },
			wantErr: "limits must be positive",
		},
		{
			name:    "zero buffer",
			mutate:  func(c *Config) { c.PatternBufferCapacity = 0 },
			wantErr: "at least 1",
		},
		{
			name:    "negative distance",
			mutate:  func(c *Config) { c.MaxPreferredDistance = -1 },
			wantErr: "distance must be positive",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
