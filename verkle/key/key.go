// Package key defines the Verkle trie's key and value types: 31-byte
// stems, 32-byte trie keys (stem || suffix), and the low/high scalar split
// used to embed a 32-byte value into the scalar field.
package key

import (
	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
)

// StemSize is the length in bytes of a trie stem.
const StemSize = 31

// Stem is the 31-byte path shared by all 256 leaves of a leaf node.
type Stem [StemSize]byte

// TrieKeySize is the length in bytes of a full trie key.
const TrieKeySize = 32

// TrieKey is a 32-byte key: a 31-byte Stem followed by a 1-byte suffix
// selecting one of the 256 values stored under that stem.
type TrieKey [TrieKeySize]byte

// Stem returns the key's leading 31-byte stem.
func (k TrieKey) Stem() Stem {
	var s Stem
	copy(s[:], k[:StemSize])
	return s
}

// Suffix returns the key's trailing selector byte.
func (k TrieKey) Suffix() byte {
	return k[StemSize]
}

// NewTrieKey builds a trie key from a stem and a suffix byte.
func NewTrieKey(stem Stem, suffix byte) TrieKey {
	var k TrieKey
	copy(k[:StemSize], stem[:])
	k[StemSize] = suffix
	return k
}

// TrieValueSize is the length in bytes of a trie value.
const TrieValueSize = 32

// TrieValue is the raw 32-byte value stored at a trie key.
type TrieValue [TrieValueSize]byte

// valueLowMarker is added to the low-16-byte limb to distinguish a present
// (possibly all-zero) value from an absent one when split into scalars,
// per spec.md §3: low = 2^128 + LE(value[:16]), high = LE(value[16:]).
var valueLowMarker = func() bandersnatch.Fr {
	two128 := make([]byte, 17)
	two128[16] = 1 // little-endian 2^128
	return bandersnatch.FrFromLEBytesModOrder(two128)
}()

// SplitScalars splits the value into the (low, high) field-element pair
// committed into a leaf's C1/C2 sub-commitments.
func (v TrieValue) SplitScalars() (low, high bandersnatch.Fr) {
	low = bandersnatch.FrFromLEBytesModOrder(v[:16]).Add(valueLowMarker)
	high = bandersnatch.FrFromLEBytesModOrder(v[16:])
	return low, high
}

// IsZero reports whether every byte of the value is zero.
func (v TrieValue) IsZero() bool {
	for _, b := range v {
		if b != 0 {
			return false
		}
	}
	return true
}
