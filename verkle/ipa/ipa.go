// Package ipa implements the Bulletproofs-style Inner Product Argument
// used to open a single Pedersen-committed polynomial at one evaluation
// point, per spec.md §4.6.
package ipa

import (
	"errors"

	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
	"github.com/morph-dev/portal-verkle-primitives/verkle/crs"
	"github.com/morph-dev/portal-verkle-primitives/verkle/polynomial"
	"github.com/morph-dev/portal-verkle-primitives/verkle/transcript"
)

// NumRounds is log2(polynomial.DomainSize): the trie's fixed width of 256
// folds to a single element in exactly 8 halving rounds.
const NumRounds = 8

// Proof is the non-interactive IPA opening: 8 round commitments on each
// side and the single folded scalar they collapse to.
type Proof struct {
	L [NumRounds]bandersnatch.Point
	R [NumRounds]bandersnatch.Point
	A bandersnatch.Fr
}

func foldScalars(x, xInv bandersnatch.Fr, left, right []bandersnatch.Fr, useInv bool) []bandersnatch.Fr {
	n := len(left)
	out := make([]bandersnatch.Fr, n)
	c := x
	if useInv {
		c = xInv
	}
	for i := 0; i < n; i++ {
		out[i] = left[i].Add(right[i].Mul(c))
	}
	return out
}

func foldPoints(xInv bandersnatch.Fr, left, right []bandersnatch.Point) []bandersnatch.Point {
	n := len(left)
	out := make([]bandersnatch.Point, n)
	for i := 0; i < n; i++ {
		out[i] = left[i].Add(right[i].ScalarMul(xInv))
	}
	return out
}

// Prove opens the polynomial given by its 256 domain evaluations `poly` at
// point z, where commitment = crs.Commit(poly[:]). It returns the proof
// together with the claimed evaluation y = poly(z).
func Prove(t *transcript.Transcript, c *crs.CRS, commitment bandersnatch.Point, poly [polynomial.DomainSize]bandersnatch.Fr, z bandersnatch.Fr) (Proof, bandersnatch.Fr) {
	var b [polynomial.DomainSize]bandersnatch.Fr
	if idx, ok := polynomial.IsInDomain(z); ok {
		b[idx] = bandersnatch.FrOne()
	} else {
		b = polynomial.BarycentricWeights(z)
	}

	a := make([]bandersnatch.Fr, polynomial.DomainSize)
	copy(a, poly[:])
	bs := make([]bandersnatch.Fr, polynomial.DomainSize)
	copy(bs, b[:])
	g := make([]bandersnatch.Point, polynomial.DomainSize)
	copy(g, c.Bases)

	y := bandersnatch.DotProduct(a, bs)

	t.DomainSep("ipa")
	t.AppendPoint("C", commitment)
	t.AppendScalar("input-point", z)
	t.AppendScalar("output-point", y)
	w := t.ChallengeScalar("w")
	q := c.Q.ScalarMul(w)

	var proof Proof
	for round := 0; round < NumRounds; round++ {
		n := len(a) / 2
		aL, aR := a[:n], a[n:]
		bL, bR := bs[:n], bs[n:]
		gL, gR := g[:n], g[n:]

		zL := bandersnatch.DotProduct(aR, bL)
		zR := bandersnatch.DotProduct(aL, bR)

		cl := bandersnatch.MSM(gL, aR).Add(q.ScalarMul(zL))
		cr := bandersnatch.MSM(gR, aL).Add(q.ScalarMul(zR))

		t.AppendPoint("L", cl)
		t.AppendPoint("R", cr)
		x := t.ChallengeScalar("x")
		xInv, ok := x.Inverse()
		if !ok {
			panic(errors.New("ipa: challenge must be nonzero"))
		}

		a = foldScalars(x, xInv, aL, aR, false)
		bs = foldScalars(x, xInv, bL, bR, true)
		g = foldPoints(xInv, gL, gR)

		proof.L[round] = cl
		proof.R[round] = cr
	}

	proof.A = a[0]
	return proof, y
}

// Verify checks an IPA opening proof against a commitment, claimed
// evaluation point z, claimed value y, and proof.
func Verify(t *transcript.Transcript, c *crs.CRS, commitment bandersnatch.Point, z, y bandersnatch.Fr, proof Proof) bool {
	var b [polynomial.DomainSize]bandersnatch.Fr
	if idx, ok := polynomial.IsInDomain(z); ok {
		b[idx] = bandersnatch.FrOne()
	} else {
		b = polynomial.BarycentricWeights(z)
	}
	bs := make([]bandersnatch.Fr, polynomial.DomainSize)
	copy(bs, b[:])
	g := make([]bandersnatch.Point, polynomial.DomainSize)
	copy(g, c.Bases)

	t.DomainSep("ipa")
	t.AppendPoint("C", commitment)
	t.AppendScalar("input-point", z)
	t.AppendScalar("output-point", y)
	w := t.ChallengeScalar("w")
	q := c.Q.ScalarMul(w)

	current := commitment.Add(q.ScalarMul(y))

	for round := 0; round < NumRounds; round++ {
		cl, cr := proof.L[round], proof.R[round]
		t.AppendPoint("L", cl)
		t.AppendPoint("R", cr)
		x := t.ChallengeScalar("x")
		xInv, ok := x.Inverse()
		if !ok {
			return false
		}

		current = cl.ScalarMul(x).Add(current).Add(cr.ScalarMul(xInv))

		n := len(bs) / 2
		bs = foldScalars(x, xInv, bs[:n], bs[n:], true)
		g = foldPoints(xInv, g[:n], g[n:])
	}

	expected := g[0].ScalarMul(proof.A).Add(q.ScalarMul(proof.A.Mul(bs[0])))
	return current.Equal(expected)
}
