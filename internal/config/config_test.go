package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "config.json", cfg.Catalog)
	assert.Equal(t, "Assets", cfg.AssetsDir)
	assert.Equal(t, "Builds", cfg.BuildDir)
	assert.Equal(t, "png", cfg.Output.Format)
	assert.Equal(t, "gg", cfg.Render.Backend)
	assert.Equal(t, "json", cfg.Cache.Driver)
	assert.Equal(t, "fs", cfg.Store.Driver)
	assert.Nil(t, cfg.Log.Timestamps)
}

func TestWithDefaults(t *testing.T) {
	cfg := &Config{
		BuildDir: "/srv/out",
		Cache:    CacheConfig{Driver: "sqlite"},
	}

	got := cfg.WithDefaults()

	assert.Equal(t, "/srv/out", got.BuildDir)
	assert.Equal(t, "sqlite", got.Cache.Driver)
	assert.Equal(t, "Assets", got.AssetsDir)
	assert.Equal(t, "fs", got.Store.Driver)
	// the receiver is left untouched
	assert.Empty(t, cfg.AssetsDir)
}
