// Package multiproof aggregates many single-point polynomial openings —
// one per visited branch/leaf commitment along a set of trie paths — into
// a single IPA opening, per spec.md §4.7.
package multiproof

import (
	"errors"

	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
	"github.com/morph-dev/portal-verkle-primitives/verkle/crs"
	"github.com/morph-dev/portal-verkle-primitives/verkle/ipa"
	"github.com/morph-dev/portal-verkle-primitives/verkle/polynomial"
	"github.com/morph-dev/portal-verkle-primitives/verkle/transcript"
)

// Query is a single opening: a polynomial (by its 256 domain evaluations),
// its commitment, and the domain index at which it is opened. Multiproof
// openings always occur at a domain point (a child index), never at an
// arbitrary out-of-domain challenge.
type Query struct {
	Commitment bandersnatch.Point
	Poly       [polynomial.DomainSize]bandersnatch.Fr
	Index      int
}

// Proof is the aggregated multi-point opening.
type Proof struct {
	D   bandersnatch.Point
	IPA ipa.Proof
}

// Prove aggregates the given queries into one Proof.
func Prove(t *transcript.Transcript, c *crs.CRS, queries []Query) Proof {
	t.DomainSep("multiproof")
	for _, q := range queries {
		t.AppendPoint("C", q.Commitment)
		t.AppendScalar("z", polynomial.IndexToFr(q.Index))
		t.AppendScalar("y", q.Poly[q.Index])
	}
	r := t.ChallengeScalar("r")

	var g [polynomial.DomainSize]bandersnatch.Fr
	powerOfR := bandersnatch.FrOne()
	for _, q := range queries {
		quotient := polynomial.DivideOnDomain(q.Index, q.Poly)
		for j := range g {
			g[j] = g[j].Add(powerOfR.Mul(quotient[j]))
		}
		powerOfR = powerOfR.Mul(r)
	}

	d := c.Commit(g[:])
	t.AppendPoint("D", d)
	challenge := t.ChallengeScalar("t")

	if _, inDomain := polynomial.IsInDomain(challenge); inDomain {
		panic(errors.New("multiproof: evaluation challenge landed in the domain"))
	}

	var h [polynomial.DomainSize]bandersnatch.Fr
	powerOfR = bandersnatch.FrOne()
	for _, q := range queries {
		den := challenge.Sub(polynomial.IndexToFr(q.Index))
		denInv, ok := den.Inverse()
		if !ok {
			panic(errors.New("multiproof: zero denominator for in-domain challenge"))
		}
		coeff := powerOfR.Mul(denInv)
		for j := range h {
			h[j] = h[j].Add(coeff.Mul(q.Poly[j]))
		}
		powerOfR = powerOfR.Mul(r)
	}

	e := c.Commit(h[:])
	t.AppendPoint("E", e)

	var hMinusG [polynomial.DomainSize]bandersnatch.Fr
	for i := range hMinusG {
		hMinusG[i] = h[i].Sub(g[i])
	}

	commitment := e.Add(d.Neg())
	ipaProof, _ := ipa.Prove(t, c, commitment, hMinusG, challenge)

	return Proof{D: d, IPA: ipaProof}
}

// VerifyQuery is a public opening claim: commitment, domain index, and
// claimed value — everything the verifier needs, without the polynomial
// itself.
type VerifyQuery struct {
	Commitment bandersnatch.Point
	Index      int
	Value      bandersnatch.Fr
}

// Verify checks an aggregated multiproof against the public queries.
func Verify(t *transcript.Transcript, c *crs.CRS, queries []VerifyQuery, proof Proof) bool {
	t.DomainSep("multiproof")
	for _, q := range queries {
		t.AppendPoint("C", q.Commitment)
		t.AppendScalar("z", polynomial.IndexToFr(q.Index))
		t.AppendScalar("y", q.Value)
	}
	r := t.ChallengeScalar("r")

	t.AppendPoint("D", proof.D)
	challenge := t.ChallengeScalar("t")
	if _, inDomain := polynomial.IsInDomain(challenge); inDomain {
		return false
	}

	e := bandersnatch.Identity()
	g2t := bandersnatch.FrZero()
	powerOfR := bandersnatch.FrOne()
	for _, q := range queries {
		den := challenge.Sub(polynomial.IndexToFr(q.Index))
		denInv, ok := den.Inverse()
		if !ok {
			return false
		}
		coeff := powerOfR.Mul(denInv)
		e = e.Add(q.Commitment.ScalarMul(coeff))
		g2t = g2t.Add(coeff.Mul(q.Value))
		powerOfR = powerOfR.Mul(r)
	}

	t.AppendPoint("E", e)

	commitment := e.Add(proof.D.Neg())
	return ipa.Verify(t, c, commitment, challenge, g2t, proof.IPA)
}
