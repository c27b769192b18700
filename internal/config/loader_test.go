package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		content := `
catalog: layers.yaml
assetsDir: /srv/assets
buildDir: /srv/builds
output:
  format: jpeg
  jpegQuality: 80
render:
  backend: ximage
  concurrency: 4
cache:
  driver: sqlite
  dsn: /srv/builds/metadata.db
store:
  driver: s3
  s3:
    bucket: combos
    region: eu-west-1
    pathStyle: true
metrics:
  file: /var/lib/node_exporter/combogen.prom
log:
  timestamps: false
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "layers.yaml", cfg.Catalog)
		assert.Equal(t, "/srv/assets", cfg.AssetsDir)
		assert.Equal(t, "/srv/builds", cfg.BuildDir)
		assert.Equal(t, "jpeg", cfg.Output.Format)
		assert.Equal(t, 80, cfg.Output.JPEGQuality)
		assert.Equal(t, "ximage", cfg.Render.Backend)
		assert.Equal(t, 4, cfg.Render.Concurrency)
		assert.Equal(t, "sqlite", cfg.Cache.Driver)
		assert.Equal(t, "/srv/builds/metadata.db", cfg.Cache.DSN)
		assert.Equal(t, "s3", cfg.Store.Driver)
		assert.Equal(t, "combos", cfg.Store.S3.Bucket)
		assert.Equal(t, "eu-west-1", cfg.Store.S3.Region)
		assert.True(t, cfg.Store.S3.PathStyle)
		assert.Equal(t, "/var/lib/node_exporter/combogen.prom", cfg.Metrics.File)
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)
	})

	t.Run("returns empty config for missing file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "nonexistent.yaml")

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Empty(t, cfg.AssetsDir)
		assert.Empty(t, cfg.Cache.Driver)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("buildDir: /from/file\ncache:\n  driver: json\n"), 0o644))

		t.Setenv("COMBOGEN_BUILD_DIR", "/from/env")
		t.Setenv("COMBOGEN_CACHE_DRIVER", "postgres")
		t.Setenv("COMBOGEN_RENDER_CONCURRENCY", "8")

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "/from/env", cfg.BuildDir)
		assert.Equal(t, "postgres", cfg.Cache.Driver)
		assert.Equal(t, 8, cfg.Render.Concurrency)
	})

	t.Run("returns error for malformed file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("buildDir: [unclosed\n"), 0o644))

		_, err := NewLoader().Load(configFile)
		assert.Error(t, err)
	})
}

func TestLoadWithDefaults(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("assetsDir: art\n"), 0o644))

	loader := NewLoader()
	cfg, err := loader.LoadWithDefaults(configFile)

	require.NoError(t, err)
	assert.Equal(t, "art", cfg.AssetsDir)
	assert.Equal(t, "Builds", cfg.BuildDir)
	assert.Equal(t, "json", cfg.Cache.Driver)
	assert.True(t, loader.InConfig("assetsDir"))
	assert.False(t, loader.InConfig("buildDir"))
}

func TestConfigFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("{}\n"), 0o644))

	ok, err := ConfigFileExists(existing)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ConfigFileExists(filepath.Join(tmpDir, "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "COMBOGEN_ASSETS_DIR", EnvVar("assetsDir"))
	assert.Equal(t, "COMBOGEN_CACHE_DSN", EnvVar("cache.dsn"))
	assert.Empty(t, EnvVar("unknown"))
}
