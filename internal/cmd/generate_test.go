package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/combogen/internal/cache"
	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/output"
	"github.com/opmodel/combogen/internal/testutil"
)

func TestGenerate_RendersAndRecords(t *testing.T) {
	ws := newWorkspace(t)

	out, err := run(t, "generate", ws.catalog,
		"--assets", ws.assets, "--build-dir", ws.buildDir, "--backend", "ximage")
	require.NoError(t, err)
	assert.Contains(t, out, "2 rendered, 0 cached, 0 over quota, 0 failed")

	files := testutil.ListFiles(t, ws.buildDir)
	assert.ElementsMatch(t, []string{"1.png", "2.png", cache.MetadataKey}, files)

	data, err := os.ReadFile(filepath.Join(ws.buildDir, cache.MetadataKey))
	require.NoError(t, err)
	var entries map[string]float64
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 2)
}

func TestGenerate_SecondRunRendersNothing(t *testing.T) {
	ws := newWorkspace(t)
	args := []string{"generate", ws.catalog, "--assets", ws.assets, "--build-dir", ws.buildDir, "--backend", "ximage"}

	_, err := run(t, args...)
	require.NoError(t, err)

	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing new to render.")
	assert.Len(t, testutil.ListFiles(t, ws.buildDir), 3)
}

func TestGenerate_DryRunJSON(t *testing.T) {
	ws := newWorkspace(t)

	out, err := run(t, "generate", ws.catalog, "--dry-run", "-o", "json",
		"--assets", ws.assets, "--build-dir", ws.buildDir)
	require.NoError(t, err)

	var report output.PassReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Planned)
	require.Len(t, report.Combos, 2)
	assert.Equal(t, output.StatusPlanned, report.Combos[0].Status)

	_, err = os.Stat(ws.buildDir)
	if err == nil {
		assert.Empty(t, testutil.ListFiles(t, ws.buildDir))
	}
}

func TestGenerate_MissingImageIsFatal(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, os.Remove(filepath.Join(ws.assets, "body", "b.png")))

	_, err := run(t, "generate", ws.catalog,
		"--assets", ws.assets, "--build-dir", ws.buildDir, "--backend", "ximage")
	require.Error(t, err)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
	assert.True(t, errors.Is(err, oerrors.ErrConfig))

	var detail *oerrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "configuration error", detail.Type)
	assert.Contains(t, detail.Location, ws.assets)
	assert.NotEmpty(t, detail.Hint)
}

func TestGenerate_InvalidSettings(t *testing.T) {
	ws := newWorkspace(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown image format", []string{"--format", "gif"}, ExitValidationError},
		{"unknown cache driver", []string{"--cache-driver", "redis"}, ExitValidationError},
		{"unknown report format", []string{"-o", "xml"}, ExitValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate", ws.catalog, "--assets", ws.assets, "--build-dir", ws.buildDir}, tt.args...)
			_, err := run(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, ExitCodeFromError(err))
		})
	}
}

func TestGenerate_MissingCatalog(t *testing.T) {
	ws := newWorkspace(t)

	_, err := run(t, "generate", filepath.Join(ws.dir, "nope.yaml"), "--build-dir", ws.buildDir)
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}
