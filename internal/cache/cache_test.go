package cache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/combogen/internal/artifact"
	"github.com/opmodel/combogen/internal/combo"
)

func fp(elements ...string) combo.Fingerprint {
	c := make(combo.Combo, len(elements))
	for i, el := range elements {
		c[i] = combo.Assignment{Layer: combo.LayerID(i + 1), Rarity: 1, Element: el}
	}
	return c.Fingerprint()
}

func TestStores_Contract(t *testing.T) {
	ctx := context.Background()

	jsonStore, err := OpenJSON(ctx, artifact.NewMemory(), "")
	require.NoError(t, err)
	sqliteStore, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "cache", "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	stores := map[string]Store{
		"memory": NewMemory(),
		"json":   jsonStore,
		"sqlite": sqliteStore,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			a, b := fp("a.png"), fp("b.png")

			assert.Equal(t, 0, s.Len())
			assert.False(t, s.Exists(a))

			require.NoError(t, s.Put(ctx, a, 0.5))
			require.NoError(t, s.Put(ctx, b, 1))
			require.NoError(t, s.Put(ctx, a, 0.25), "overwrite is allowed")

			assert.True(t, s.Exists(a))
			v, ok := s.Get(a)
			assert.True(t, ok)
			assert.Equal(t, 0.25, v)
			assert.Equal(t, 2, s.Len())
			assert.Len(t, s.Entries(), 2)

			assert.Error(t, s.Put(ctx, "md5:nope", 1))
			require.NoError(t, s.Flush(ctx))
		})
	}
}

func TestJSONStore_RoundTripThroughArtifacts(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewMemory()

	first, err := OpenJSON(ctx, store, "")
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, fp("x.png"), 0.1))

	_, err = store.Head(ctx, MetadataKey)
	assert.True(t, errors.Is(err, artifact.ErrNotFound), "nothing written before Flush")

	require.NoError(t, first.Flush(ctx))

	second, err := OpenJSON(ctx, store, "")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Len())
	v, ok := second.Get(fp("x.png"))
	require.True(t, ok)
	assert.Equal(t, 0.1, v)
}

func TestJSONStore_FlushWithoutChangesWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewMemory()

	s, err := OpenJSON(ctx, store, "")
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	_, err = store.Head(ctx, MetadataKey)
	assert.True(t, errors.Is(err, artifact.ErrNotFound))
}

func TestJSONStore_CorruptDocumentStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewMemory()
	_, err := store.Put(ctx, MetadataKey, strings.NewReader("{not json"), artifact.PutOptions{})
	require.NoError(t, err)

	s, err := OpenJSON(ctx, store, "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestSQLiteStore_PersistsEachPut(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metadata.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, fp("a.png", "x.png"), 0.3))
	// No Flush: per-put durability.
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	assert.True(t, reopened.Exists(fp("a.png", "x.png")))
	assert.Equal(t, 1, reopened.Len())
}

func TestOpenPostgres_OpenFailure(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	var gotDriver, gotDSN string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return nil, errors.New("boom")
	}

	_, err := OpenPostgres(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open postgres")
	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, defaultPostgresDSN, gotDSN)
}

func TestEncodeMetadata_SortedAndDecodable(t *testing.T) {
	entries := map[combo.Fingerprint]float64{fp("b"): 1, fp("a"): 0.5}
	data, err := EncodeMetadata(entries)
	require.NoError(t, err)

	decoded, err := DecodeMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, entries, decoded)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	assert.Equal(t, Stats{}, Summarize(s))

	require.NoError(t, s.Put(ctx, fp("a"), 1))
	require.NoError(t, s.Put(ctx, fp("b"), 0.5))
	require.NoError(t, s.Put(ctx, fp("c"), 0.25))

	st := Summarize(s)
	assert.Equal(t, 3, st.Entries)
	assert.Equal(t, 0.25, st.Min)
	assert.Equal(t, 1.0, st.Max)
	assert.InDelta(t, 0.5833, st.Mean, 0.001)
	assert.Equal(t, 2, st.Constrained)

	fps := SortedFingerprints(s)
	require.Len(t, fps, 3)
	assert.True(t, fps[0] < fps[1] && fps[1] < fps[2])
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Artifacts: artifact.NewMemory()})
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	_, err = Open(ctx, Options{})
	assert.ErrorContains(t, err, "requires an artifact store")

	s, err = Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(ctx, Options{Driver: "redis"})
	assert.ErrorContains(t, err, "unknown cache driver")
}
