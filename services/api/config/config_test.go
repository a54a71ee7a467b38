package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATASET_PATH", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("API_PORT", "")
	t.Setenv("DEFAULT_GLACIER_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data/wgms.db", cfg.DatasetPath)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 353, cfg.DefaultGlacierID)
	assert.Equal(t, ":8080", cfg.ListenAddr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATASET_PATH", "/srv/wgms.db")
	t.Setenv("DATABASE_URL", "postgres://localhost/wgms")
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_GLACIER_ID", "394")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/wgms.db", cfg.DatasetPath)
	assert.Equal(t, "postgres://localhost/wgms", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 394, cfg.DefaultGlacierID)
}

func TestLoadAPIPortFallback(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_PORT", "9191")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Port)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad default glacier id", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("API_PORT", "")
		t.Setenv("DEFAULT_GLACIER_ID", "-1")
		_, err := Load()
		require.Error(t, err)
	})
}
