package portal

import (
	"errors"
	"fmt"

	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
	"github.com/morph-dev/portal-verkle-primitives/verkle/crs"
	"github.com/morph-dev/portal-verkle-primitives/verkle/key"
	"github.com/morph-dev/portal-verkle-primitives/verkle/multiproof"
	"github.com/morph-dev/portal-verkle-primitives/verkle/transcript"
)

// VerificationErrorKind enumerates the ways a Portal content fragment can
// fail verification. Preserved as a distinct per-kind taxonomy (rather
// than one flat sentinel) per the original workspace's nodes/error.rs.
type VerificationErrorKind int

const (
	ErrWrongCommitment VerificationErrorKind = iota
	ErrWrongRoot
	ErrZeroCommitment
	ErrNoFragments
	ErrZeroChild
	ErrInvalidBundleProof
	ErrInvalidMultiPointProof
	ErrInvalidFragmentIndex
)

func (k VerificationErrorKind) String() string {
	switch k {
	case ErrWrongCommitment:
		return "wrong_commitment"
	case ErrWrongRoot:
		return "wrong_root"
	case ErrZeroCommitment:
		return "zero_commitment"
	case ErrNoFragments:
		return "no_fragments"
	case ErrZeroChild:
		return "zero_child"
	case ErrInvalidBundleProof:
		return "invalid_bundle_proof"
	case ErrInvalidMultiPointProof:
		return "invalid_multi_point_proof"
	case ErrInvalidFragmentIndex:
		return "invalid_fragment_index"
	default:
		return "unknown"
	}
}

// VerificationError wraps a VerificationErrorKind with a human-readable
// message.
type VerificationError struct {
	Kind VerificationErrorKind
	Msg  string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("portal: %s: %s", e.Kind, e.Msg)
}

func verificationErr(kind VerificationErrorKind, msg string) error {
	return &VerificationError{Kind: kind, Msg: msg}
}

// Verifier checks Portal content fragments against a known root
// commitment.
type Verifier struct {
	crs *crs.CRS
}

// NewVerifier creates a Verifier backed by the process-wide CRS.
func NewVerifier() *Verifier {
	return &Verifier{crs: crs.Get()}
}

// VerifyBranchFragment checks that fragment.Children are exactly the
// parent commitment's polynomial evaluations at its declared 16 indices.
func (v *Verifier) VerifyBranchFragment(fragment BranchFragment, proof multiproof.Proof) error {
	if fragment.Index >= FragmentsPerBundle {
		return verificationErr(ErrInvalidFragmentIndex, "fragment index out of range")
	}
	if fragment.Commitment.IsIdentity() {
		return verificationErr(ErrZeroCommitment, "parent commitment is the identity element")
	}

	queries := make([]multiproof.VerifyQuery, FragmentWidth)
	for i := 0; i < FragmentWidth; i++ {
		queries[i] = multiproof.VerifyQuery{
			Commitment: fragment.Commitment,
			Index:      int(fragment.Index)*FragmentWidth + i,
			Value:      fragment.Children[i],
		}
	}

	t := transcript.New("portal-branch-fragment")
	if !multiproof.Verify(t, v.crs, queries, proof) {
		return verificationErr(ErrInvalidMultiPointProof, "branch fragment multiproof failed")
	}
	return nil
}

// VerifyLeafFragment checks a leaf fragment's extension proof (the
// fragment's sub-commitment, C1 or C2, against its slot in the leaf's main
// commitment; the marker and stem slots are not checked) and its value
// proof (the fragment's 16 values against that sub-commitment).
func (v *Verifier) VerifyLeafFragment(fragment LeafFragment, proof LeafFragmentProof) error {
	if fragment.Index >= FragmentsPerBundle {
		return verificationErr(ErrInvalidFragmentIndex, "fragment index out of range")
	}
	if fragment.Commitment.IsIdentity() {
		return verificationErr(ErrZeroCommitment, "leaf commitment is the identity element")
	}

	extIndex := 2
	if fragment.Index >= 8 {
		extIndex = 3
	}
	subScalar := fragment.SubCommitment.MapToScalarField()
	extQueries := []multiproof.VerifyQuery{{
		Commitment: fragment.Commitment,
		Index:      extIndex,
		Value:      subScalar,
	}}
	extT := transcript.New("portal-leaf-fragment-ext")
	if !multiproof.Verify(extT, v.crs, extQueries, proof.ExtProof) {
		return verificationErr(ErrInvalidMultiPointProof, "leaf extension multiproof failed")
	}

	base := int(fragment.Index % 8)
	valQueries := make([]multiproof.VerifyQuery, 0, FragmentWidth*2)
	for i := 0; i < FragmentWidth; i++ {
		localSuffix := base*FragmentWidth + i
		var value key.TrieValue
		if fragment.Values[i] != nil {
			value = *fragment.Values[i]
		}
		low, high := value.SplitScalars()
		valQueries = append(valQueries,
			multiproof.VerifyQuery{Commitment: fragment.SubCommitment, Index: 2 * localSuffix, Value: low},
			multiproof.VerifyQuery{Commitment: fragment.SubCommitment, Index: 2*localSuffix + 1, Value: high},
		)
	}
	valT := transcript.New("portal-leaf-fragment-values")
	if !multiproof.Verify(valT, v.crs, valQueries, proof.ValueProof) {
		return verificationErr(ErrInvalidMultiPointProof, "leaf value multiproof failed")
	}
	return nil
}

// VerifyBundleNonOverlap checks that a set of branch fragments claiming to
// belong to the same commitment are mutually consistent, and that at
// least one fragment was supplied.
func (v *Verifier) VerifyBundleNonOverlap(fragments []BranchFragment) error {
	if len(fragments) == 0 {
		return verificationErr(ErrNoFragments, "empty fragment set")
	}
	if err := CheckNonOverlap(fragments); err != nil {
		if errors.Is(err, errNonOverlapping) {
			return verificationErr(ErrInvalidBundleProof, err.Error())
		}
		return err
	}
	return nil
}

// VerifyRoot checks a branch bundle's commitment against the trusted root
// commitment a verifier was configured with.
func (v *Verifier) VerifyRoot(bundle BranchBundle, trustedRoot bandersnatch.Point) error {
	if !bundle.Commitment.Equal(trustedRoot) {
		return verificationErr(ErrWrongRoot, "bundle commitment does not match trusted root")
	}
	return nil
}
