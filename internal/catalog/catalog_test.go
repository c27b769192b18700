package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/combogen/internal/combo"
	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/testutil"
)

const yamlCatalog = `
width: 64
height: 64
layers:
  - id: 1
    name: body
    elements: [a.png, b.png]
    dimensions: [0, 0, 64, 64]
  - id: 3
    name: hat
    rarity: 0.25
    elements: [cap.png]
    dimensions: [16, 0, 32, 16]
required:
  - id: 2
    name: eyes
    elements: [x.png]
    dimensions: [8, 20, 48, 8]
`

func TestLoad_YAML(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "catalog.yaml", yamlCatalog)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.Source)
	assert.Equal(t, 64, c.Width)
	require.Len(t, c.Layers, 2)
	require.Len(t, c.Required, 1)

	opt := c.OptionalLayers()
	assert.Equal(t, 1.0, opt[0].Rarity, "omitted rarity is unconstrained")
	assert.Equal(t, 0.25, opt[1].Rarity)
	assert.Equal(t, combo.Rect{X: 16, Y: 0, W: 32, H: 16}, opt[1].Placement)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, combo.LayerID(2), all[2].ID, "required layers follow optional ones")

	idx := c.Index()
	assert.Equal(t, "eyes", idx[2].Name)
}

func TestLoad_LegacyJSON(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "config.json", `{
  "WIDTH": 32,
  "HEIGHT": 16,
  "layers": [{"id": 0, "name": "bg", "rarity": 1, "elements": ["a.png"], "dimensions": [0, 0, 32, 16]}],
  "required": []
}`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, c.Width)
	assert.Equal(t, 16, c.Height)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name: "rarity above one",
			input: `{"width": 8, "height": 8, "layers": [
				{"id": 1, "name": "a", "rarity": 1.5, "elements": ["x"], "dimensions": [0,0,8,8]}]}`,
			wantMsg: "rarity",
		},
		{
			name: "unknown field",
			input: `{"width": 8, "height": 8, "colour": "red", "layers": []}`,
			wantMsg: "colour",
		},
		{
			name: "empty elements",
			input: `{"width": 8, "height": 8, "layers": [
				{"id": 1, "name": "a", "elements": [], "dimensions": [0,0,8,8]}]}`,
			wantMsg: "elements",
		},
		{
			name: "duplicate id across lists",
			input: `{"width": 8, "height": 8,
				"layers": [{"id": 1, "name": "a", "elements": ["x"], "dimensions": [0,0,8,8]}],
				"required": [{"id": 1, "name": "b", "elements": ["y"], "dimensions": [0,0,8,8]}]}`,
			wantMsg: "layer id 1",
		},
		{
			name: "duplicate element",
			input: `{"width": 8, "height": 8, "layers": [
				{"id": 1, "name": "a", "elements": ["x", "x"], "dimensions": [0,0,8,8]}]}`,
			wantMsg: "twice",
		},
		{
			name:    "missing canvas size",
			input:   `{"layers": []}`,
			wantMsg: "canvas size",
		},
		{
			name: "short dimensions",
			input: `{"width": 8, "height": 8, "layers": [
				{"id": 1, "name": "a", "elements": ["x"], "dimensions": [0,0,8]}]}`,
			wantMsg: "dimensions",
		},
		{
			name:    "not a document",
			input:   "- [unclosed",
			wantMsg: "neither valid JSON nor YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrValidation), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParse_NoRequired(t *testing.T) {
	c, err := Parse([]byte(`{"width": 4, "height": 4, "layers": [
		{"id": 1, "name": "a", "elements": ["x"], "dimensions": [0,0,4,4]}]}`))
	require.NoError(t, err)
	assert.Empty(t, c.RequiredLayers())
	assert.Len(t, c.All(), 1)
}
