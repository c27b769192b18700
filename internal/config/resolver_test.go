package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_FlagPrecedence(t *testing.T) {
	t.Setenv("COMBOGEN_BUILD_DIR", "/env")

	result := Resolve(ResolveOptions{
		Key:          "buildDir",
		FlagValue:    "/flag",
		EnvVar:       "COMBOGEN_BUILD_DIR",
		ConfigValue:  "/config",
		DefaultValue: "Builds",
	})

	assert.Equal(t, "/flag", result.Value)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env", result.Shadowed[SourceEnv])
	assert.Equal(t, "/config", result.Shadowed[SourceConfig])
	assert.NotContains(t, result.Shadowed, SourceDefault)
}

func TestResolve_EnvPrecedence(t *testing.T) {
	t.Setenv("COMBOGEN_BUILD_DIR", "/env")

	result := Resolve(ResolveOptions{
		Key:         "buildDir",
		EnvVar:      "COMBOGEN_BUILD_DIR",
		ConfigValue: "/config",
	})

	assert.Equal(t, "/env", result.Value)
	assert.Equal(t, SourceEnv, result.Source)
	assert.Equal(t, "/config", result.Shadowed[SourceConfig])
	assert.NotContains(t, result.Shadowed, SourceFlag)
}

func TestResolve_ConfigFallback(t *testing.T) {
	t.Setenv("COMBOGEN_BUILD_DIR", "")

	result := Resolve(ResolveOptions{
		Key:          "buildDir",
		EnvVar:       "COMBOGEN_BUILD_DIR",
		ConfigValue:  "/config",
		DefaultValue: "Builds",
	})

	assert.Equal(t, "/config", result.Value)
	assert.Equal(t, SourceConfig, result.Source)
	assert.Empty(t, result.Shadowed)
}

func TestResolve_Default(t *testing.T) {
	result := Resolve(ResolveOptions{Key: "cache.driver", DefaultValue: "json"})

	assert.Equal(t, "json", result.Value)
	assert.Equal(t, SourceDefault, result.Source)
}

func TestResolve_NothingSet(t *testing.T) {
	result := Resolve(ResolveOptions{Key: "metrics.file"})

	assert.Empty(t, result.Value)
	assert.Empty(t, result.Source)
}

func TestResolveConfigPath_FlagPrecedence(t *testing.T) {
	t.Setenv("COMBOGEN_CONFIG", "/env/config.yaml")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{FlagValue: "/flag/config.yaml"})
	require.NoError(t, err)

	assert.Equal(t, "/flag/config.yaml", result.ConfigPath)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env/config.yaml", result.Shadowed[SourceEnv])
	assert.Contains(t, result.Shadowed, SourceDefault)
}

func TestResolveConfigPath_EnvPrecedence(t *testing.T) {
	t.Setenv("COMBOGEN_CONFIG", "/env/config.yaml")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/env/config.yaml", result.ConfigPath)
	assert.Equal(t, SourceEnv, result.Source)
}

func TestResolveConfigPath_Default(t *testing.T) {
	t.Setenv("COMBOGEN_CONFIG", "")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{})
	require.NoError(t, err)

	assert.Equal(t, SourceDefault, result.Source)
	assert.Contains(t, result.ConfigPath, ".combogen")
	assert.Empty(t, result.Shadowed)
}

func TestLogResolvedValues_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		LogResolvedValues([]ResolvedValue{
			{Key: "buildDir", Value: "/flag", Source: SourceFlag, Shadowed: map[ConfigSource]string{SourceEnv: "/env"}},
		})
	})
}
