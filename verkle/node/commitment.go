// Package node implements the trie's three node kinds: branch, leaf, and
// the implicit empty node, each carrying an incrementally-maintained
// Pedersen commitment (spec.md §3, §4.8).
package node

import "github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"

// Commitment wraps a group element together with its lazily-computed
// group-to-scalar digest, used when this commitment is itself embedded as
// a term in a parent's polynomial. The digest is invalidated whenever the
// point changes and recomputed on next read.
type Commitment struct {
	point      bandersnatch.Point
	scalar     bandersnatch.Fr
	scalarsSet bool
}

// NewCommitment wraps a group element.
func NewCommitment(p bandersnatch.Point) Commitment {
	return Commitment{point: p}
}

// Point returns the underlying group element.
func (c *Commitment) Point() bandersnatch.Point {
	return c.point
}

// ToFr returns the commitment's group-to-scalar-field digest, computing
// and caching it on first use.
func (c *Commitment) ToFr() bandersnatch.Fr {
	if !c.scalarsSet {
		c.scalar = c.point.MapToScalarField()
		c.scalarsSet = true
	}
	return c.scalar
}

// Update replaces the underlying point and invalidates the cached digest.
func (c *Commitment) Update(p bandersnatch.Point) {
	c.point = p
	c.scalarsSet = false
}

// Add folds delta into the commitment's point (used for incremental
// single-term updates) and invalidates the cached digest.
func (c *Commitment) Add(delta bandersnatch.Point) {
	c.point = c.point.Add(delta)
	c.scalarsSet = false
}
