// Package portal projects trie branch/leaf commitments into the
// fixed-size bundle/fragment shapes used by Portal-network content
// gossip, and verifies proofs over them against a known state root
// (spec.md §4.9-4.10).
package portal

import (
	"errors"

	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
	"github.com/morph-dev/portal-verkle-primitives/verkle/key"
	"github.com/morph-dev/portal-verkle-primitives/verkle/multiproof"
)

// FragmentWidth and FragmentsPerBundle split a branch's 256 children (or a
// leaf's 256 suffix values) into 16 fragments of 16 slots each, the unit
// Portal content keys are chunked into for gossip.
const (
	FragmentWidth     = 16
	FragmentsPerBundle = 16
)

// BranchBundle is a full 256-child branch's shape, prior to splitting into
// individually-gossiped fragments: the branch's own commitment plus the
// 256 children's group-to-scalar digests.
type BranchBundle struct {
	Commitment bandersnatch.Point
	Children   [256]bandersnatch.Fr
}

// BranchFragment is one 16-wide slice of a BranchBundle, addressable and
// verifiable on its own: the parent commitment it belongs to, which of
// the 16 fragments this is, and that fragment's 16 children.
type BranchFragment struct {
	Commitment bandersnatch.Point
	Index      byte
	Children   [FragmentWidth]bandersnatch.Fr
}

// Fragments splits a BranchBundle into its 16 BranchFragment pieces.
func (b *BranchBundle) Fragments() [FragmentsPerBundle]BranchFragment {
	var out [FragmentsPerBundle]BranchFragment
	for i := 0; i < FragmentsPerBundle; i++ {
		out[i].Commitment = b.Commitment
		out[i].Index = byte(i)
		copy(out[i].Children[:], b.Children[i*FragmentWidth:(i+1)*FragmentWidth])
	}
	return out
}

// LeafBundle is a leaf's full shape: its main commitment, stem, and the
// two sub-commitments, plus the 256 raw values (nil where absent).
type LeafBundle struct {
	Commitment bandersnatch.Point
	Stem       key.Stem
	C1, C2     bandersnatch.Point
	Values     [256]*key.TrieValue
}

// LeafFragment is one 16-wide slice of a LeafBundle's values, identified
// by which sub-commitment (C1 or C2) it falls under.
type LeafFragment struct {
	Commitment   bandersnatch.Point
	Stem         key.Stem
	SubCommitment bandersnatch.Point
	Index        byte
	Values       [FragmentWidth]*key.TrieValue
}

// Fragments splits a LeafBundle into its 16 LeafFragment pieces.
func (l *LeafBundle) Fragments() [FragmentsPerBundle]LeafFragment {
	var out [FragmentsPerBundle]LeafFragment
	for i := 0; i < FragmentsPerBundle; i++ {
		out[i].Commitment = l.Commitment
		out[i].Stem = l.Stem
		out[i].Index = byte(i)
		if i < 8 {
			out[i].SubCommitment = l.C1
		} else {
			out[i].SubCommitment = l.C2
		}
		copy(out[i].Values[:], l.Values[i*FragmentWidth:(i+1)*FragmentWidth])
	}
	return out
}

// errNonOverlapping is returned by CheckNonOverlap when two fragments
// claim the same index under the same parent commitment with differing
// content, which would mean the bundle they were sourced from is
// internally inconsistent.
var errNonOverlapping = errors.New("portal: overlapping fragments disagree on shared slot")

// CheckNonOverlap verifies that a set of branch fragments gossiped
// together, possibly from overlapping requests, agree wherever their
// indices collide. This is the "non-overlap" invariant a bundle proof
// must establish before its fragments are merged into one witness.
func CheckNonOverlap(fragments []BranchFragment) error {
	seen := make(map[byte]BranchFragment)
	for _, f := range fragments {
		prev, ok := seen[f.Index]
		if !ok {
			seen[f.Index] = f
			continue
		}
		if !prev.Commitment.Equal(f.Commitment) || !sameChildren(prev.Children, f.Children) {
			return errNonOverlapping
		}
	}
	return nil
}

func sameChildren(a, b [FragmentWidth]bandersnatch.Fr) bool {
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// branchFragmentQueries builds the multiproof queries proving a
// BranchFragment's 16 children are exactly the parent commitment's
// polynomial evaluations at indices [index*16, index*16+16).
func branchFragmentQueries(commitment bandersnatch.Point, poly [256]bandersnatch.Fr, fragmentIndex byte) []multiproof.Query {
	queries := make([]multiproof.Query, FragmentWidth)
	for i := 0; i < FragmentWidth; i++ {
		queries[i] = multiproof.Query{
			Commitment: commitment,
			Poly:       poly,
			Index:      int(fragmentIndex)*FragmentWidth + i,
		}
	}
	return queries
}
