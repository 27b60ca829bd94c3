package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://v3.openstates.org", cfg.OpenStates.BaseURL)
	assert.Equal(t, 10, cfg.OpenStates.PerPage)
	assert.Equal(t, "updated_desc", cfg.OpenStates.Sort)
	assert.Equal(t, "https://api.zippopotam.us", cfg.Geocode.BaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, time.Hour, cfg.Cache.GeocodeTTL())
	assert.Equal(t, 10*time.Minute, cfg.Cache.BillsTTL())
	assert.Equal(t, 10*time.Minute, cfg.Cache.LegislatorsTTL())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CIVIC_OPENSTATES_KEY", "env-key")
	t.Setenv("CIVIC_SERVER_PORT", "9090")
	t.Setenv("CIVIC_CACHE_GEOCODE_TTL_MINS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OpenStates.Key)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Cache.GeocodeTTL())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.Error(t, InitLogger(LogConfig{Level: "shout", Format: "json"}))
}
