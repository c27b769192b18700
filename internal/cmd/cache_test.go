package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/combogen/internal/testutil"
)

func TestCacheStats_AfterGenerate(t *testing.T) {
	ws := newWorkspace(t)
	_, err := run(t, "generate", ws.catalog, "--assets", ws.assets, "--build-dir", ws.buildDir, "--backend", "ximage")
	require.NoError(t, err)

	out, err := run(t, "cache", "stats", "--build-dir", ws.buildDir, "-o", "json")
	require.NoError(t, err)

	var report cacheStatsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "json", report.Driver)
	assert.Equal(t, 2, report.Entries)
	assert.Zero(t, report.Constrained)
	assert.Equal(t, 1.0, report.Mean)
}

func TestCacheStats_EmptyBuildDir(t *testing.T) {
	ws := newWorkspace(t)

	out, err := run(t, "cache", "stats", "--build-dir", ws.buildDir)
	require.NoError(t, err)
	assert.Contains(t, out, "ENTRIES")
}

func TestCacheDiff(t *testing.T) {
	dir := t.TempDir()
	oldPath := testutil.WriteFile(t, dir, "old.json", `{"1:a 2:x": 1, "1:b 2:x": 0.5}`)
	newPath := testutil.WriteFile(t, dir, "new.json", `{"1:a 2:x": 1, "1:b 2:x": 0.25, "1:c 2:x": 1}`)
	t.Setenv("HOME", t.TempDir())

	out, err := run(t, "cache", "diff", oldPath, newPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Added:")
	assert.Contains(t, out, "1:c 2:x")
	assert.Contains(t, out, "Modified:")
	assert.NotContains(t, out, "Removed:")
}

func TestCacheDiff_MissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	newPath := testutil.WriteFile(t, dir, "new.json", `{}`)

	_, err := run(t, "cache", "diff", filepath.Join(dir, "missing.json"), newPath)
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}
