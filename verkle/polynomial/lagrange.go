// Package polynomial implements the fixed 256-point Lagrange-basis
// evaluation domain shared by every Verkle branch/leaf commitment: a
// polynomial is represented purely by its 256 evaluations over
// {0, 1, ..., 255}, never by monomial coefficients.
package polynomial

import "github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"

// DomainSize is the trie's fixed branching factor and evaluation-domain
// width; spec.md's Non-goals exclude any other width.
const DomainSize = 256

var (
	domain         [DomainSize]bandersnatch.Fr // domain[i] = i
	derivativeAt   [DomainSize]bandersnatch.Fr // A'(i)
	derivativeInv  [DomainSize]bandersnatch.Fr // 1/A'(i)
	domainInv      [DomainSize]bandersnatch.Fr // 1/i, domainInv[0] is unused (zero)
)

func init() {
	for i := 0; i < DomainSize; i++ {
		domain[i] = bandersnatch.FrFromInt(i)
	}
	for i := 0; i < DomainSize; i++ {
		acc := bandersnatch.FrOne()
		for j := 0; j < DomainSize; j++ {
			if i == j {
				continue
			}
			acc = acc.Mul(domain[i].Sub(domain[j]))
		}
		derivativeAt[i] = acc
		inv, ok := acc.Inverse()
		if !ok {
			panic("polynomial: A'(i) must never be zero for distinct domain points")
		}
		derivativeInv[i] = inv
	}
	for i := 1; i < DomainSize; i++ {
		inv, ok := domain[i].Inverse()
		if !ok {
			panic("polynomial: domain point must be nonzero")
		}
		domainInv[i] = inv
	}
}

// IndexToFr returns the domain element for evaluation index i.
func IndexToFr(i int) bandersnatch.Fr { return domain[i] }

// IsInDomain reports whether z equals one of the domain points 0..255,
// returning that index when it does.
func IsInDomain(z bandersnatch.Fr) (index int, inDomain bool) {
	for i := 0; i < DomainSize; i++ {
		if domain[i].Equal(z) {
			return i, true
		}
	}
	return 0, false
}

// BarycentricWeights returns b such that, for any f given by its domain
// evaluations, <f, b> = f(z) (the barycentric formula's per-point
// coefficients). z must not lie in the domain; callers check IsInDomain
// first, since a domain point's evaluation is just its stored value.
func BarycentricWeights(z bandersnatch.Fr) [DomainSize]bandersnatch.Fr {
	// vanishing(z) = prod_i (z - i)
	vanishing := bandersnatch.FrOne()
	diffs := make([]bandersnatch.Fr, DomainSize)
	for i := 0; i < DomainSize; i++ {
		diffs[i] = z.Sub(domain[i])
		vanishing = vanishing.Mul(diffs[i])
	}

	invDiffs := make([]bandersnatch.Fr, DomainSize)
	copy(invDiffs, diffs)
	bandersnatch.BatchInverseAndMul(invDiffs, bandersnatch.FrOne())

	var weights [DomainSize]bandersnatch.Fr
	for i := 0; i < DomainSize; i++ {
		weights[i] = vanishing.Mul(derivativeInv[i]).Mul(invDiffs[i])
	}
	return weights
}

// EvaluateOutsideDomain evaluates, via the barycentric formula, the unique
// degree-<256 polynomial whose evaluations over the domain are `values`,
// at a point z known not to lie in the domain. Callers must check
// IsInDomain first; z inside the domain would divide by zero.
func EvaluateOutsideDomain(values [DomainSize]bandersnatch.Fr, z bandersnatch.Fr) bandersnatch.Fr {
	weights := BarycentricWeights(z)
	sum := bandersnatch.FrZero()
	for i := 0; i < DomainSize; i++ {
		sum = sum.Add(values[i].Mul(weights[i]))
	}
	return sum
}

// DivideOnDomain computes the evaluations of q(X) = (f(X) - f(k)) / (X - k)
// over the domain, where f is given by its evaluations `values` and k is a
// domain index. q has degree < DomainSize-1 and is used to build the
// quotient commitments in the IPA/multiproof machinery (spec.md §4.6-4.7).
func DivideOnDomain(k int, values [DomainSize]bandersnatch.Fr) [DomainSize]bandersnatch.Fr {
	var quotient [DomainSize]bandersnatch.Fr
	fk := values[k]

	for i := 0; i < DomainSize; i++ {
		if i == k {
			continue
		}
		den := domain[i].Sub(domain[k])
		denInv, ok := den.Inverse()
		if !ok {
			panic("polynomial: distinct domain points must have nonzero difference")
		}
		quotient[i] = values[i].Sub(fk).Mul(denInv)
	}

	// q(k) is fixed by the identity q(k) = -sum_{i!=k} q(i) * A'(k)/A'(i),
	// which follows from q having degree < DomainSize-1 on this domain.
	acc := bandersnatch.FrZero()
	for i := 0; i < DomainSize; i++ {
		if i == k {
			continue
		}
		ratio := derivativeAt[k].Mul(derivativeInv[i])
		acc = acc.Add(quotient[i].Mul(ratio))
	}
	quotient[k] = acc.Neg()

	return quotient
}
