package node

import (
	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
	"github.com/morph-dev/portal-verkle-primitives/verkle/crs"
)

// BranchNode has exactly 256 children, one per possible stem byte at its
// depth; absent children are Empty{}. Its commitment is the Pedersen
// commitment to the 256 children's Commitment() scalars.
type BranchNode struct {
	Depth      int
	Children   [256]Node
	commitment Commitment
}

// NewBranchNode creates a branch at the given trie depth with every child
// set to Empty{}.
func NewBranchNode(depth int) *BranchNode {
	b := &BranchNode{Depth: depth}
	for i := range b.Children {
		b.Children[i] = Empty{}
	}
	b.commitment = NewCommitment(bandersnatch.Identity())
	return b
}

// Commitment returns the branch's group-to-scalar digest, for embedding in
// its own parent's polynomial.
func (b *BranchNode) Commitment() bandersnatch.Fr {
	return b.commitment.ToFr()
}

// Point returns the branch's raw commitment point.
func (b *BranchNode) Point() bandersnatch.Point {
	return b.commitment.Point()
}

// SetChild replaces Children[index] and incrementally folds the resulting
// single-term delta into the branch's commitment, rather than
// recommitting the full 256-wide vector.
func (b *BranchNode) SetChild(index byte, child Node) {
	oldScalar := b.Children[index].Commitment()
	newScalar := child.Commitment()
	b.Children[index] = child

	if oldScalar.Equal(newScalar) {
		return
	}
	delta := crs.Get().CommitSingle(int(index), newScalar.Sub(oldScalar))
	b.commitment.Add(delta)
}
