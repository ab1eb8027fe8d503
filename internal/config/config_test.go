package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.AppEnv)
	assert.Contains(t, cfg.DatabaseURL, "postgresql://")
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
	assert.Equal(t, 24, cfg.TokenTTLHours)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MEDIA_ROOT", "/srv/media")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "/srv/media", cfg.MediaRoot)
}
