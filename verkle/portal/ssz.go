package portal

import (
	"encoding/binary"
	"fmt"

	"github.com/morph-dev/portal-verkle-primitives/ssz"
	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
	"github.com/morph-dev/portal-verkle-primitives/verkle/key"
)

// Tagged-union selectors for the node envelope gossiped over Portal
// content keys (spec.md §6).
const (
	SelectorBranchBundle   byte = 0
	SelectorBranchFragment byte = 1
	SelectorLeafBundle     byte = 2
	SelectorLeafFragment   byte = 3
)

// encodePoint/encodeFr are the fixed 32-byte wire encodings for a
// commitment or a scalar.
func encodePoint(p bandersnatch.Point) []byte {
	enc := p.Encode()
	return enc[:]
}

func encodeFr(f bandersnatch.Fr) []byte {
	le := f.BytesLE()
	return le[:]
}

// NodeRegistry builds the SSZ union registry for the four node-envelope
// variants, wiring the teacher's hand-rolled union codec (ssz package)
// rather than re-deriving tagged-union framing from scratch.
func NodeRegistry() (*ssz.UnionTypeRegistry, error) {
	r := ssz.NewUnionTypeRegistry()

	if err := r.Register(&ssz.UnionVariantCodec{
		Selector: SelectorBranchBundle,
		Name:     "branch_bundle",
		Encode: func(v interface{}) ([]byte, error) {
			b, ok := v.(BranchBundle)
			if !ok {
				return nil, fmt.Errorf("portal: expected BranchBundle, got %T", v)
			}
			out := make([]byte, 0, 32+256*32)
			out = append(out, encodePoint(b.Commitment)...)
			for _, c := range b.Children {
				out = append(out, encodeFr(c)...)
			}
			return out, nil
		},
	}); err != nil {
		return nil, err
	}

	if err := r.Register(&ssz.UnionVariantCodec{
		Selector: SelectorBranchFragment,
		Name:     "branch_fragment",
		Encode: func(v interface{}) ([]byte, error) {
			f, ok := v.(BranchFragment)
			if !ok {
				return nil, fmt.Errorf("portal: expected BranchFragment, got %T", v)
			}
			out := make([]byte, 0, 32+1+FragmentWidth*32)
			out = append(out, encodePoint(f.Commitment)...)
			out = append(out, f.Index)
			for _, c := range f.Children {
				out = append(out, encodeFr(c)...)
			}
			return out, nil
		},
	}); err != nil {
		return nil, err
	}

	if err := r.Register(&ssz.UnionVariantCodec{
		Selector: SelectorLeafBundle,
		Name:     "leaf_bundle",
		Encode: func(v interface{}) ([]byte, error) {
			l, ok := v.(LeafBundle)
			if !ok {
				return nil, fmt.Errorf("portal: expected LeafBundle, got %T", v)
			}
			out := make([]byte, 0, 32+31+32+32+256*32)
			out = append(out, encodePoint(l.Commitment)...)
			out = append(out, l.Stem[:]...)
			out = append(out, encodePoint(l.C1)...)
			out = append(out, encodePoint(l.C2)...)
			bitmap, _ := ssz.NewBitvector(256)
			for i, val := range l.Values {
				if val != nil {
					bitmap.Set(i)
				}
			}
			out = append(out, bitmap.Bytes()...)
			for _, val := range l.Values {
				if val == nil {
					continue
				}
				out = append(out, val[:]...)
			}
			return out, nil
		},
	}); err != nil {
		return nil, err
	}

	if err := r.Register(&ssz.UnionVariantCodec{
		Selector: SelectorLeafFragment,
		Name:     "leaf_fragment",
		Encode: func(v interface{}) ([]byte, error) {
			f, ok := v.(LeafFragment)
			if !ok {
				return nil, fmt.Errorf("portal: expected LeafFragment, got %T", v)
			}
			out := make([]byte, 0, 32+31+32+1+FragmentWidth*32)
			out = append(out, encodePoint(f.Commitment)...)
			out = append(out, f.Stem[:]...)
			out = append(out, encodePoint(f.SubCommitment)...)
			out = append(out, f.Index)
			bitmap, _ := ssz.NewBitvector(FragmentWidth)
			for i, val := range f.Values {
				if val != nil {
					bitmap.Set(i)
				}
			}
			out = append(out, bitmap.Bytes()...)
			for _, val := range f.Values {
				if val == nil {
					continue
				}
				out = append(out, val[:]...)
			}
			return out, nil
		},
	}); err != nil {
		return nil, err
	}

	return r, nil
}

// TriePathCommitments is the SSZ-list-of-points witness artifact naming
// every branch/leaf commitment visited along a root-to-leaf traversal
// (spec.md §6), used when assembling a fragment response that must prove
// its place in the trie.
type TriePathCommitments struct {
	Stem        key.Stem
	Commitments []bandersnatch.Point
}

// MarshalSSZ serializes the path as stem || len(commitments) as a
// big-endian uint32 || each 32-byte commitment, a fixed-header
// variable-length SSZ list encoding.
func (p TriePathCommitments) MarshalSSZ() ([]byte, error) {
	out := make([]byte, 0, key.StemSize+4+len(p.Commitments)*32)
	out = append(out, p.Stem[:]...)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p.Commitments)))
	out = append(out, lenBuf[:]...)
	for _, c := range p.Commitments {
		out = append(out, encodePoint(c)...)
	}
	return out, nil
}

// HashTreeRoot computes the EIP-7916 progressive-list hash tree root of
// the commitment path, with each commitment's encoding as one chunk. The
// list grows one element per trie level walked, which is exactly the
// shape a progressive list amortizes: shallow paths only ever touch the
// tree's first, smallest subtree.
func (p TriePathCommitments) HashTreeRoot() ([32]byte, error) {
	enc := ssz.NewProgressiveEncoder()
	for _, c := range p.Commitments {
		point := c.Encode()
		if err := enc.AppendBytes32(point); err != nil {
			return [32]byte{}, fmt.Errorf("portal: appending commitment to progressive encoder: %w", err)
		}
	}
	return enc.Root()
}

// leafBundleFieldCount is the StableContainer capacity backing a
// LeafBundle's root: the 4 always-present fields (commitment, stem, C1,
// C2) followed by the 256 optional value slots, mirroring EIP-7495's
// "optional fields without reshaping the Merkle tree" guarantee for a
// leaf whose suffix values are sparse.
const leafBundleFieldCount = 4 + 256

// StableContainerRoot computes b's EIP-7495 StableContainer hash tree
// root: the commitment/stem/C1/C2 fields are always active, and each of
// the 256 value slots is active only when non-nil. This lets a verifier
// that has only received a subset of a leaf's values still check that
// subset against a stable root shape, unaffected by how many of the other
// slots are populated.
func (b LeafBundle) StableContainerRoot() ([32]byte, error) {
	sc := ssz.NewStableContainer(leafBundleFieldCount)
	if err := sc.AddFieldWithTag("commitment", "Bytes32", ssz.HashTreeRootBytes32(b.Commitment.Encode()), false); err != nil {
		return [32]byte{}, err
	}
	var stemChunk [32]byte
	copy(stemChunk[:], b.Stem[:])
	if err := sc.AddFieldWithTag("stem", "Bytes31", ssz.HashTreeRootBytes32(stemChunk), false); err != nil {
		return [32]byte{}, err
	}
	if err := sc.AddFieldWithTag("c1", "Bytes32", ssz.HashTreeRootBytes32(b.C1.Encode()), false); err != nil {
		return [32]byte{}, err
	}
	if err := sc.AddFieldWithTag("c2", "Bytes32", ssz.HashTreeRootBytes32(b.C2.Encode()), false); err != nil {
		return [32]byte{}, err
	}
	for i, v := range b.Values {
		name := fmt.Sprintf("value_%d", i)
		if v == nil {
			if err := sc.AddFieldWithTag(name, "Bytes32", [32]byte{}, true); err != nil {
				return [32]byte{}, err
			}
			continue
		}
		if err := sc.AddFieldWithTag(name, "Bytes32", ssz.HashTreeRootBytes32(*v), true); err != nil {
			return [32]byte{}, err
		}
		sc.SetActive(4+i, true)
	}
	return sc.HashTreeRoot(), nil
}
