package node

import "github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"

// Node is implemented by *BranchNode, *LeafNode, and Empty.
type Node interface {
	// Commitment returns the node's commitment digest, suitable for
	// embedding as a scalar term in a parent branch's polynomial. Empty's
	// digest is the zero scalar.
	Commitment() bandersnatch.Fr
}

// Empty represents an unoccupied child slot. It carries no commitment and
// no allocation; a BranchNode's children default to it.
type Empty struct{}

// Commitment returns zero: an empty slot contributes nothing to its
// parent's polynomial.
func (Empty) Commitment() bandersnatch.Fr {
	return bandersnatch.FrZero()
}
