package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{2000, 5000, 10000, 20000}, cfg.Search.RadiusSteps)
	assert.Equal(t, 7, cfg.Cache.TTLDays)
	assert.Equal(t, 5, cfg.Cache.BatchSize)
	assert.Equal(t, 100, cfg.Cache.BatchPauseMS)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Places.APIKey)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VENUES_PLACES_API_KEY", "env-key")
	t.Setenv("VENUES_CACHE_TTL_DAYS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Places.APIKey)
	assert.Equal(t, 3, cfg.Cache.TTLDays)
}

func TestCacheConfig_Durations(t *testing.T) {
	c := CacheConfig{TTLDays: 7, BatchPauseMS: 100}
	assert.Equal(t, 7*24*time.Hour, c.TTL())
	assert.Equal(t, 100*time.Millisecond, c.BatchPause())
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
