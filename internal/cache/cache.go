// Package cache persists the fingerprints of rendered combos across runs.
//
// Every driver keeps an in-memory index that answers Exists, Get and Len
// without I/O. Drivers differ in when entries reach durable storage: the JSON
// driver writes the whole index on Flush, the SQL drivers write each Put.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/opmodel/combogen/internal/combo"
)

// Driver identifies a cache backend.
type Driver string

const (
	// DriverJSON keeps a metadata.json document in the artifact store.
	DriverJSON Driver = "json"
	// DriverSQLite keeps a table in an embedded SQLite database.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres keeps a table in a PostgreSQL database.
	DriverPostgres Driver = "postgres"
	// DriverMemory keeps nothing beyond the process.
	DriverMemory Driver = "memory"
)

// Store maps combo fingerprints to the rarity product of the rendered combo.
// Entries are only ever added or overwritten, never removed.
type Store interface {
	// Exists reports whether the fingerprint was rendered before.
	Exists(fp combo.Fingerprint) bool

	// Get returns the recorded rarity for fp.
	Get(fp combo.Fingerprint) (float64, bool)

	// Put records fp with its rarity product.
	Put(ctx context.Context, fp combo.Fingerprint, rarity float64) error

	// Len returns the number of entries.
	Len() int

	// Entries returns a copy of every entry.
	Entries() map[combo.Fingerprint]float64

	// Flush makes buffered entries durable.
	Flush(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// index is the shared in-memory map behind every driver.
type index struct {
	mu      sync.RWMutex
	entries map[combo.Fingerprint]float64
}

func newIndex(entries map[combo.Fingerprint]float64) *index {
	if entries == nil {
		entries = make(map[combo.Fingerprint]float64)
	}
	return &index{entries: entries}
}

func (ix *index) Exists(fp combo.Fingerprint) bool {
	_, ok := ix.Get(fp)
	return ok
}

func (ix *index) Get(fp combo.Fingerprint) (float64, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	v, ok := ix.entries[fp]
	return v, ok
}

func (ix *index) set(fp combo.Fingerprint, rarity float64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries[fp] = rarity
}

func (ix *index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

func (ix *index) Entries() map[combo.Fingerprint]float64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make(map[combo.Fingerprint]float64, len(ix.entries))
	for fp, v := range ix.entries {
		out[fp] = v
	}
	return out
}

// Memory is a Store that lives only as long as the process.
type Memory struct {
	*index
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{index: newIndex(nil)}
}

// Put implements Store.
func (m *Memory) Put(ctx context.Context, fp combo.Fingerprint, rarity float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateFingerprint(fp); err != nil {
		return err
	}
	m.set(fp, rarity)
	return nil
}

// Flush implements Store.
func (m *Memory) Flush(context.Context) error { return nil }

// Close implements Store.
func (m *Memory) Close() error { return nil }

// Stats summarizes the rarity values recorded in a cache.
type Stats struct {
	Entries int
	Min     float64
	Max     float64
	Mean    float64

	// Constrained counts entries whose rarity product is below 1.
	Constrained int
}

// Summarize computes Stats over a store's entries.
func Summarize(s Store) Stats {
	entries := s.Entries()
	st := Stats{Entries: len(entries)}
	if len(entries) == 0 {
		return st
	}

	st.Min, st.Max = 1, 0
	sum := 0.0
	for _, v := range entries {
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
		if v < 1 {
			st.Constrained++
		}
		sum += v
	}
	st.Mean = sum / float64(len(entries))
	return st
}

// SortedFingerprints returns the store's fingerprints in lexical order.
func SortedFingerprints(s Store) []combo.Fingerprint {
	entries := s.Entries()
	fps := make([]combo.Fingerprint, 0, len(entries))
	for fp := range entries {
		fps = append(fps, fp)
	}
	sort.Slice(fps, func(i, j int) bool { return fps[i] < fps[j] })
	return fps
}

func validateFingerprint(fp combo.Fingerprint) error {
	if !fp.Valid() {
		return fmt.Errorf("invalid fingerprint %q", fp)
	}
	return nil
}
