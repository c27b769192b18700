package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/opmodel/combogen/internal/artifact"
	"github.com/opmodel/combogen/internal/combo"
	"github.com/opmodel/combogen/internal/output"
)

// MetadataKey is the artifact key of the JSON cache document.
const MetadataKey = "metadata.json"

// JSONStore keeps the cache as a single {"<fingerprint>": <rarity>} document
// in an artifact store. Puts are buffered until Flush.
type JSONStore struct {
	*index

	store artifact.Store
	key   string

	flushMu sync.Mutex
	dirty   bool
}

// OpenJSON loads the document at key from store. A missing or unreadable
// document yields an empty cache; only store I/O failures other than
// not-found are returned.
func OpenJSON(ctx context.Context, store artifact.Store, key string) (*JSONStore, error) {
	if key == "" {
		key = MetadataKey
	}
	s := &JSONStore{store: store, key: key}

	data, err := artifact.ReadAll(ctx, store, key)
	switch {
	case errors.Is(err, artifact.ErrNotFound):
		output.Debug("no cache document, starting empty", "key", key)
		s.index = newIndex(nil)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading cache document %s: %w", key, err)
	}

	entries, err := DecodeMetadata(data)
	if err != nil {
		output.Debug("cache document unreadable, starting empty", "key", key, "err", err)
		s.index = newIndex(nil)
		return s, nil
	}
	output.Debug("loaded cache document", "key", key, "entries", len(entries))
	s.index = newIndex(entries)
	return s, nil
}

// Put implements Store.
func (s *JSONStore) Put(ctx context.Context, fp combo.Fingerprint, rarity float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateFingerprint(fp); err != nil {
		return err
	}
	s.set(fp, rarity)

	s.flushMu.Lock()
	s.dirty = true
	s.flushMu.Unlock()
	return nil
}

// Flush writes the whole document when entries were added since the last
// flush.
func (s *JSONStore) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if !s.dirty {
		return nil
	}

	data, err := EncodeMetadata(s.Entries())
	if err != nil {
		return err
	}
	if _, err := s.store.Put(ctx, s.key, bytes.NewReader(data), artifact.PutOptions{
		ContentType: "application/json",
		Overwrite:   true,
	}); err != nil {
		return fmt.Errorf("writing cache document %s: %w", s.key, err)
	}
	s.dirty = false
	return nil
}

// Close implements Store. It does not flush.
func (s *JSONStore) Close() error { return nil }

// DecodeMetadata parses a metadata document.
func DecodeMetadata(data []byte) (map[combo.Fingerprint]float64, error) {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	entries := make(map[combo.Fingerprint]float64, len(raw))
	for k, v := range raw {
		entries[combo.Fingerprint(k)] = v
	}
	return entries, nil
}

// EncodeMetadata renders entries as an indented document with sorted keys.
func EncodeMetadata(entries map[combo.Fingerprint]float64) ([]byte, error) {
	raw := make(map[string]float64, len(entries))
	for fp, v := range entries {
		raw[string(fp)] = v
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return append(data, '\n'), nil
}
