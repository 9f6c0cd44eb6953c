package portal

import (
	"crypto/sha256"

	"github.com/morph-dev/portal-verkle-primitives/ssz"
	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
	"github.com/morph-dev/portal-verkle-primitives/verkle/crs"
	"github.com/morph-dev/portal-verkle-primitives/verkle/key"
	"github.com/morph-dev/portal-verkle-primitives/verkle/multiproof"
	"github.com/morph-dev/portal-verkle-primitives/verkle/node"
	"github.com/morph-dev/portal-verkle-primitives/verkle/polynomial"
	"github.com/morph-dev/portal-verkle-primitives/verkle/transcript"
)

// pathRootCacheSize bounds the memoized path-root cache: a handful of
// recently-built proof paths is enough to amortize repeated fragment
// queries against the same branch without growing unbounded across a long
// -running gossip session.
const pathRootCacheSize = 1024

// pathRootCache memoizes TriePathCommitments.HashTreeRoot() by a digest of
// its inputs. Multiple fragment queries along the same root-to-leaf path
// recompute an identical commitment list; caching avoids re-walking the
// progressive Merkle tree for each one.
var pathRootCache = ssz.NewMerkleCache(pathRootCacheSize)

func pathRootCacheKey(path TriePathCommitments) [32]byte {
	h := sha256.New()
	h.Write(path.Stem[:])
	for _, c := range path.Commitments {
		enc := c.Encode()
		h.Write(enc[:])
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// Builder projects trie nodes reached by a traversal into the
// bundle/fragment shapes gossiped over the Portal network, together with
// the multiproofs a verifier needs to check a fragment against a known
// root commitment.
type Builder struct {
	crs *crs.CRS
}

// NewBuilder creates a Builder backed by the process-wide CRS.
func NewBuilder() *Builder {
	return &Builder{crs: crs.Get()}
}

// BuildBranchBundle projects a branch node into its full 256-child bundle
// shape.
func (b *Builder) BuildBranchBundle(n *node.BranchNode) BranchBundle {
	var bundle BranchBundle
	bundle.Commitment = n.Point()
	for i, child := range n.Children {
		bundle.Children[i] = child.Commitment()
	}
	return bundle
}

// BuildLeafBundle projects a leaf node into its full value-bundle shape.
func (b *Builder) BuildLeafBundle(n *node.LeafNode) LeafBundle {
	var bundle LeafBundle
	bundle.Commitment = n.Point()
	bundle.Stem = n.Stem
	c1 := n.SubCommitment(0)
	c2 := n.SubCommitment(128)
	bundle.C1 = c1.Point()
	bundle.C2 = c2.Point()
	for i := 0; i < 256; i++ {
		bundle.Values[i] = n.Get(byte(i))
	}
	return bundle
}

// PathCommitmentsRoot returns path's progressive-list hash tree root,
// consulting the shared path-root cache before recomputing it.
func (b *Builder) PathCommitmentsRoot(path TriePathCommitments) ([32]byte, error) {
	cacheKey := pathRootCacheKey(path)
	if root, ok := pathRootCache.GetHash(cacheKey); ok {
		return root, nil
	}
	root, err := path.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	pathRootCache.PutHash(cacheKey, root)
	return root, nil
}

// BranchFragmentProof is a single gossipable fragment together with the
// multiproof that ties it back to its parent branch commitment.
type BranchFragmentProof struct {
	Fragment BranchFragment
	Proof    multiproof.Proof
}

// ProveBranchFragment builds the multiproof for fragment `fragmentIndex`
// of branch n.
func (b *Builder) ProveBranchFragment(n *node.BranchNode, fragmentIndex byte) BranchFragmentProof {
	var poly [polynomial.DomainSize]bandersnatch.Fr
	for i, child := range n.Children {
		poly[i] = child.Commitment()
	}

	queries := branchFragmentQueries(n.Point(), poly, fragmentIndex)
	t := transcript.New("portal-branch-fragment")
	proof := multiproof.Prove(t, b.crs, queries)

	var fragment BranchFragment
	fragment.Commitment = n.Point()
	fragment.Index = fragmentIndex
	for i := 0; i < FragmentWidth; i++ {
		fragment.Children[i] = poly[int(fragmentIndex)*FragmentWidth+i]
	}

	return BranchFragmentProof{Fragment: fragment, Proof: proof}
}

// LeafFragmentProof is a single gossipable leaf-value fragment together
// with the multiproof tying it to the leaf's stem-extension commitment
// and to the relevant sub-commitment (C1 or C2).
type LeafFragmentProof struct {
	Fragment   LeafFragment
	ExtProof   multiproof.Proof // opens the C1 (fragments 0-7) or C2 (8-15) slot of the leaf's main commitment; marker and stem are not opened
	ValueProof multiproof.Proof // proves the 16 low/high scalar pairs against the sub-commitment
}

// ProveLeafFragment builds the multiproofs for fragment `fragmentIndex`
// (0-15) of leaf n.
func (b *Builder) ProveLeafFragment(n *node.LeafNode, fragmentIndex byte) LeafFragmentProof {
	stemScalar := bandersnatch.FrFromStem(n.Stem)
	c1 := n.SubCommitment(0)
	c2 := n.SubCommitment(128)

	var extPoly [polynomial.DomainSize]bandersnatch.Fr
	extPoly[0] = bandersnatch.FrOne()
	extPoly[1] = stemScalar
	extPoly[2] = c1.ToFr()
	extPoly[3] = c2.ToFr()

	extIndex := 2
	subCommitment := c1.Point()
	if fragmentIndex >= 8 {
		extIndex = 3
		subCommitment = c2.Point()
	}
	extQueries := []multiproof.Query{{Commitment: n.Point(), Poly: extPoly, Index: extIndex}}
	extT := transcript.New("portal-leaf-fragment-ext")
	extProof := multiproof.Prove(extT, b.crs, extQueries)

	localIndex := fragmentIndex
	var subPoly [polynomial.DomainSize]bandersnatch.Fr
	var fragment LeafFragment
	fragment.Commitment = n.Point()
	fragment.Stem = n.Stem
	fragment.SubCommitment = subCommitment
	fragment.Index = fragmentIndex

	base := int(localIndex % 8) // which 16-value group within the 128-wide sub-commitment
	suffixOffset := 0
	if fragmentIndex >= 8 {
		suffixOffset = 128
	}
	for i := 0; i < FragmentWidth; i++ {
		suffix := suffixOffset + base*FragmentWidth + i
		var v key.TrieValue
		if val := n.Get(byte(suffix)); val != nil {
			v = *val
		}
		low, high := v.SplitScalars()
		localSuffix := (base*FragmentWidth + i)
		subPoly[2*localSuffix] = low
		subPoly[2*localSuffix+1] = high
		fragment.Values[i] = n.Get(byte(suffix))
	}

	valQueries := make([]multiproof.Query, 0, FragmentWidth*2)
	for i := 0; i < FragmentWidth; i++ {
		localSuffix := base*FragmentWidth + i
		valQueries = append(valQueries,
			multiproof.Query{Commitment: subCommitment, Poly: subPoly, Index: 2 * localSuffix},
			multiproof.Query{Commitment: subCommitment, Poly: subPoly, Index: 2*localSuffix + 1},
		)
	}
	valT := transcript.New("portal-leaf-fragment-values")
	valProof := multiproof.Prove(valT, b.crs, valQueries)

	return LeafFragmentProof{Fragment: fragment, ExtProof: extProof, ValueProof: valProof}
}
