package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffMetadata(t *testing.T) {
	oldDoc := []byte(`{"sha256:aa": 1, "sha256:bb": 0.5, "sha256:cc": 0.1}`)
	newDoc := []byte(`{"sha256:aa": 1, "sha256:bb": 0.25, "sha256:dd": 1}`)

	d, err := DiffMetadata("old", oldDoc, "new", newDoc, false)
	require.NoError(t, err)

	assert.True(t, d.HasChanges())
	assert.Equal(t, []string{"sha256:dd"}, d.Added)
	assert.Equal(t, []string{"sha256:cc"}, d.Removed)
	require.Len(t, d.Modified, 1)
	assert.Equal(t, "sha256:bb", d.Modified[0].Name)
	assert.Equal(t, "- 0.5\n+ 0.25", d.Modified[0].Diff)
	assert.NotEmpty(t, d.Report)

	rendered := d.Render(NoColorStyles())
	assert.Contains(t, rendered, "1 added, 1 removed, 1 modified")
}

func TestDiffMetadata_Identical(t *testing.T) {
	doc := []byte(`{"sha256:aa": 1}`)

	d, err := DiffMetadata("a", doc, "b", doc, false)
	require.NoError(t, err)
	assert.False(t, d.HasChanges())
	assert.Empty(t, d.Report)
	assert.Equal(t, "No changes detected.", d.Render(NoColorStyles()))
}

func TestDiffMetadata_EmptySide(t *testing.T) {
	d, err := DiffMetadata("a", nil, "b", []byte("sha256:aa: 1\n"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"sha256:aa"}, d.Added)
}

func TestDiffMetadata_Invalid(t *testing.T) {
	_, err := DiffMetadata("a", []byte("[1, 2"), "b", nil, false)
	assert.Error(t, err)
}
