package node

import (
	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
	"github.com/morph-dev/portal-verkle-primitives/verkle/crs"
	"github.com/morph-dev/portal-verkle-primitives/verkle/key"
)

// leafMarker is the constant first slot of a leaf's top-level polynomial,
// distinguishing a populated leaf from other node kinds when a verifier
// walks a proof (spec.md §3).
var leafMarker = bandersnatch.FrOne()

// LeafNode holds up to 256 values sharing a common 31-byte stem, split
// across two sub-commitments C1 (suffixes 0-127) and C2 (suffixes
// 128-255), each committing interleaved (low, high) scalar pairs per
// value (spec.md §3, §4.1).
type LeafNode struct {
	Stem   key.Stem
	Values [256]*key.TrieValue

	c1, c2     Commitment
	commitment Commitment
}

// NewLeafNode creates an empty leaf for the given stem: C1 and C2 start at
// the identity point, and the main commitment commits to the leaf marker
// and the stem scalar.
func NewLeafNode(stem key.Stem) *LeafNode {
	l := &LeafNode{Stem: stem}
	l.recomputeFromScratch()
	return l
}

func (l *LeafNode) recomputeFromScratch() {
	c := crs.Get()

	var c1Scalars, c2Scalars [256]bandersnatch.Fr
	for suffix := 0; suffix < 256; suffix++ {
		v := l.Values[suffix]
		if v == nil {
			continue
		}
		low, high := v.SplitScalars()
		if suffix < 128 {
			c1Scalars[2*suffix] = low
			c1Scalars[2*suffix+1] = high
		} else {
			j := suffix - 128
			c2Scalars[2*j] = low
			c2Scalars[2*j+1] = high
		}
	}

	l.c1 = NewCommitment(c.Commit(c1Scalars[:]))
	l.c2 = NewCommitment(c.Commit(c2Scalars[:]))
	l.recomputeMain()
}

func (l *LeafNode) recomputeMain() {
	c := crs.Get()
	stemScalar := bandersnatch.FrFromStem(l.Stem)
	var top [256]bandersnatch.Fr
	top[0] = leafMarker
	top[1] = stemScalar
	top[2] = l.c1.ToFr()
	top[3] = l.c2.ToFr()
	l.commitment = NewCommitment(c.Commit(top[:]))
}

// Get returns the value stored at suffix, or nil if absent.
func (l *LeafNode) Get(suffix byte) *key.TrieValue {
	return l.Values[suffix]
}

// Set stores value at suffix, incrementally updating C1/C2 and the main
// commitment rather than recomputing them from scratch.
func (l *LeafNode) Set(suffix byte, value key.TrieValue) {
	c := crs.Get()

	oldLow, oldHigh := bandersnatch.FrZero(), bandersnatch.FrZero()
	if old := l.Values[suffix]; old != nil {
		oldLow, oldHigh = old.SplitScalars()
	}
	newLow, newHigh := value.SplitScalars()

	var sub *Commitment
	var base int
	if suffix < 128 {
		sub = &l.c1
		base = 2 * int(suffix)
	} else {
		sub = &l.c2
		base = 2 * (int(suffix) - 128)
	}

	deltaLow := newLow.Sub(oldLow)
	deltaHigh := newHigh.Sub(oldHigh)
	delta := c.CommitSingle(base, deltaLow).Add(c.CommitSingle(base+1, deltaHigh))
	subBeforeFr := sub.ToFr()
	sub.Add(delta)
	subAfterFr := sub.ToFr()

	v := value
	l.Values[suffix] = &v

	slot := 2
	if suffix >= 128 {
		slot = 3
	}
	mainDelta := c.CommitSingle(slot, subAfterFr.Sub(subBeforeFr))
	l.commitment.Add(mainDelta)
}

// Commitment returns the leaf's group-to-scalar digest, for embedding in
// its parent branch's polynomial.
func (l *LeafNode) Commitment() bandersnatch.Fr {
	return l.commitment.ToFr()
}

// Point returns the leaf's raw main commitment point.
func (l *LeafNode) Point() bandersnatch.Point {
	return l.commitment.Point()
}

// SubCommitment returns C1 (suffixes 0-127) or C2 (suffixes 128-255).
func (l *LeafNode) SubCommitment(suffix byte) Commitment {
	if suffix < 128 {
		return l.c1
	}
	return l.c2
}
