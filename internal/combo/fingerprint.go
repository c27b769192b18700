package combo

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
)

// Fingerprint is the content identity of a combo: "sha256:<hex>".
type Fingerprint string

// fingerprintPrefix marks the digest algorithm.
const fingerprintPrefix = "sha256:"

// canonicalAssignment is the serialized form hashed by Fingerprint.
// Rarity is deliberately absent: identity is (layer, element) only.
type canonicalAssignment struct {
	Layer   LayerID `json:"layer"`
	Element string  `json:"element"`
}

// Fingerprint computes a deterministic SHA256 digest over the combo's
// ordered (layer, element) pairs.
//
// Algorithm:
//  1. Project each assignment to {"layer","element"} in combo order
//  2. json.Marshal the resulting array
//  3. SHA256 the bytes → "sha256:<hex>"
//
// The digest is order-sensitive: the same assignments in a different order
// produce a different fingerprint.
func (c Combo) Fingerprint() Fingerprint {
	canon := make([]canonicalAssignment, len(c))
	for i, a := range c {
		canon[i] = canonicalAssignment{Layer: a.Layer, Element: a.Element}
	}

	b, err := json.Marshal(canon)
	if err != nil {
		// Marshaling ints and strings cannot fail; keep a stable fallback anyway.
		b = []byte(fmt.Sprintf("%v", canon))
	}

	return Fingerprint(fmt.Sprintf("%s%x", fingerprintPrefix, sha256.Sum256(b)))
}

// String returns the fingerprint as stored in metadata files.
func (f Fingerprint) String() string {
	return string(f)
}

// Valid reports whether f looks like a digest produced by Combo.Fingerprint.
func (f Fingerprint) Valid() bool {
	s := string(f)
	if !strings.HasPrefix(s, fingerprintPrefix) {
		return false
	}
	hex := s[len(fingerprintPrefix):]
	if len(hex) != sha256.Size*2 {
		return false
	}
	for _, r := range hex {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
