package composite

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opmodel/combogen/internal/combo"
)

type tableKey struct {
	layer   combo.LayerID
	element string
}

// Table is the preloaded image set of a catalog, keyed by (layer, element).
type Table struct {
	mu     sync.RWMutex
	images map[tableKey]*Image
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{images: make(map[tableKey]*Image)}
}

// Add stores img for (layer, element).
func (t *Table) Add(layer combo.LayerID, element string, img *Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.images[tableKey{layer, element}] = img
}

// Lookup returns the image for (layer, element).
func (t *Table) Lookup(layer combo.LayerID, element string) (*Image, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	img, ok := t.images[tableKey{layer, element}]
	return img, ok
}

// Len returns the number of images in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.images)
}

// Preload loads every element of every layer from src. The first failure
// cancels the remaining loads and is returned.
func Preload(ctx context.Context, src Source, layers []combo.Layer, concurrency int) (*Table, error) {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	table := NewTable()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, layer := range layers {
		for _, el := range layer.Elements {
			g.Go(func() error {
				img, err := src.Load(gctx, layer.Name, el)
				if err != nil {
					return fmt.Errorf("loading layer %q element %q: %w", layer.Name, el, err)
				}
				table.Add(layer.ID, el, img)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}
