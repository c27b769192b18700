// Package combo generates layer combinations and merges required bundles into them.
package combo

import (
	"errors"
	"fmt"
	"strings"
)

// LayerID identifies a layer. IDs define the total order in which layers stack.
type LayerID int

// Rect is a placement rectangle on the output canvas.
type Rect struct {
	X, Y, W, H int
}

// Layer is one axis of visual variation.
type Layer struct {
	// ID orders the layer relative to every other layer.
	ID LayerID

	// Name is the human-readable name, also the asset directory name.
	Name string

	// Elements are the interchangeable element identifiers (usually file names).
	Elements []string

	// Rarity is the weight in (0,1]. A value of 1 means unconstrained.
	Rarity float64

	// Placement is where the layer is drawn on the canvas.
	Placement Rect
}

// Assignment is one concrete element choice for one layer within a combo.
type Assignment struct {
	Layer   LayerID
	Rarity  float64
	Element string
}

// Combo is an ordered stack of assignments, ascending by LayerID.
type Combo []Assignment

// Set holds merged combos grouped by the optional combo they were derived from.
type Set [][]Combo

var (
	// ErrUnsorted indicates a combo violates the ascending LayerID invariant.
	ErrUnsorted = errors.New("combo is not sorted by layer id")

	// ErrDuplicateLayer indicates an assignment collides with an existing layer.
	ErrDuplicateLayer = errors.New("layer already assigned in combo")
)

// Sorted reports whether the combo is strictly ascending by LayerID.
func (c Combo) Sorted() bool {
	for i := 1; i < len(c); i++ {
		if c[i-1].Layer >= c[i].Layer {
			return false
		}
	}
	return true
}

// Clone returns an independent copy with spare capacity for n more assignments.
func (c Combo) Clone(n int) Combo {
	out := make(Combo, len(c), len(c)+n)
	copy(out, c)
	return out
}

// Has reports whether the combo assigns the given layer.
func (c Combo) Has(id LayerID) bool {
	for _, a := range c {
		if a.Layer == id {
			return true
		}
	}
	return false
}

// String renders the combo as "1:a.png 2:b.png".
func (c Combo) String() string {
	parts := make([]string, len(c))
	for i, a := range c {
		parts[i] = fmt.Sprintf("%d:%s", a.Layer, a.Element)
	}
	return strings.Join(parts, " ")
}

// Flatten returns every combo of the set in enumeration order.
func (s Set) Flatten() []Combo {
	var out []Combo
	for _, group := range s {
		out = append(out, group...)
	}
	return out
}

// Len returns the total number of combos across all groups.
func (s Set) Len() int {
	n := 0
	for _, group := range s {
		n += len(group)
	}
	return n
}
