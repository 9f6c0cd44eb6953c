// Package bandersnatch implements the scalar field and the Banderwagon
// group used by the Verkle trie's Pedersen/IPA commitments.
//
// Banderwagon is the prime-order subgroup of the Bandersnatch twisted
// Edwards curve, defined over the BLS12-381 scalar field. This package
// follows the same math/big approach as the teacher's banderwagon.go:
// correctness over constant-time guarantees, since every operation here
// verifies public consensus data rather than handling private keys.
package bandersnatch

import (
	"errors"
	"math/big"
)

// frModulus is the order of the Bandersnatch prime-order subgroup, i.e.
// the scalar field used for all Fr arithmetic (polynomial coefficients,
// IPA challenges, trie values).
var frModulus, _ = new(big.Int).SetString(
	"1cfb69d4ca675f520cce760202687600ff8f87007419047174fd06b52876e7e1", 16)

// Fr is an element of the Bandersnatch scalar field.
type Fr struct {
	v *big.Int
}

// FrZero returns the additive identity.
func FrZero() Fr { return Fr{v: new(big.Int)} }

// FrOne returns the multiplicative identity.
func FrOne() Fr { return Fr{v: big.NewInt(1)} }

func frFromBigInt(v *big.Int) Fr {
	r := new(big.Int).Mod(v, frModulus)
	return Fr{v: r}
}

// FrFromUint64 converts a u64 into a field element.
func FrFromUint64(n uint64) Fr {
	return Fr{v: new(big.Int).SetUint64(n)}
}

// FrFromUint8 converts a u8 into a field element.
func FrFromUint8(n uint8) Fr {
	return FrFromUint64(uint64(n))
}

// FrFromInt converts an int (e.g. a usize index) into a field element;
// negative values are reduced modulo the field order.
func FrFromInt(n int) Fr {
	return frFromBigInt(big.NewInt(int64(n)))
}

// FrFromLEBytesModOrder reduces a little-endian byte string modulo the
// field order.
func FrFromLEBytesModOrder(b []byte) Fr {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	return frFromBigInt(new(big.Int).SetBytes(be))
}

// FrFromCanonicalBEBytes decodes a 32-byte big-endian canonical encoding.
// Callers that hold little-endian wire bytes must reverse them first; the
// canonical endianness is an external convention (spec.md §4.1).
func FrFromCanonicalBEBytes(b [32]byte) Fr {
	return frFromBigInt(new(big.Int).SetBytes(b[:]))
}

// FrFromStem reduces a 31-byte stem, interpreted little-endian, modulo the
// field order. Used when embedding a stem as a scalar in a leaf's
// polynomial (spec.md §3, LeafNode commitment).
func FrFromStem(stem [31]byte) Fr {
	return FrFromLEBytesModOrder(stem[:])
}

// val returns a's value, reading the zero value Fr{} as 0.
func (a Fr) val() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Add returns a + b.
func (a Fr) Add(b Fr) Fr { return frFromBigInt(new(big.Int).Add(a.val(), b.val())) }

// Sub returns a - b.
func (a Fr) Sub(b Fr) Fr { return frFromBigInt(new(big.Int).Sub(a.val(), b.val())) }

// Neg returns -a.
func (a Fr) Neg() Fr {
	if a.IsZero() {
		return FrZero()
	}
	return frFromBigInt(new(big.Int).Sub(frModulus, a.v))
}

// Mul returns a * b.
func (a Fr) Mul(b Fr) Fr { return frFromBigInt(new(big.Int).Mul(a.val(), b.val())) }

// Inverse returns (a^-1, true), or (0, false) if a is zero.
func (a Fr) Inverse() (Fr, bool) {
	if a.IsZero() {
		return FrZero(), false
	}
	return Fr{v: new(big.Int).ModInverse(a.v, frModulus)}, true
}

// IsZero reports whether a is the additive identity.
func (a Fr) IsZero() bool { return a.val().Sign() == 0 }

// Equal reports field equality.
func (a Fr) Equal(b Fr) bool { return a.val().Cmp(b.val()) == 0 }

// Bytes returns the 32-byte big-endian canonical encoding.
func (a Fr) Bytes() [32]byte {
	var out [32]byte
	b := a.val().Bytes()
	copy(out[32-len(b):], b)
	return out
}

// BytesLE returns the 32-byte little-endian canonical encoding, as used by
// the transcript (spec.md §4.5) and SSZ scalar encoding.
func (a Fr) BytesLE() [32]byte {
	be := a.Bytes()
	var out [32]byte
	for i, c := range be {
		out[31-i] = c
	}
	return out
}

// BigInt exposes the underlying value for callers in this module tree that
// need raw big.Int arithmetic (e.g. the group layer's scalar-mul).
func (a Fr) BigInt() *big.Int { return new(big.Int).Set(a.val()) }

// BatchInverseAndMul inverts every non-zero element of values in place and
// multiplies each inverse by coeff; zero entries are left as zero. This is
// the O(n)-multiplication/one-inversion trick (Montgomery's batch
// inversion), as required by spec.md §4.1.
func BatchInverseAndMul(values []Fr, coeff Fr) {
	n := len(values)
	if n == 0 {
		return
	}
	prefix := make([]Fr, n)
	acc := FrOne()
	for i, v := range values {
		if v.IsZero() {
			prefix[i] = acc
			continue
		}
		prefix[i] = acc
		acc = acc.Mul(v)
	}
	accInv, ok := acc.Inverse()
	if !ok {
		// acc starts at one and only non-zero values are multiplied in, so
		// in a prime field it is never zero and this branch is not taken.
		accInv = FrZero()
	}
	accInv = accInv.Mul(coeff)
	for i := n - 1; i >= 0; i-- {
		v := values[i]
		if v.IsZero() {
			continue
		}
		values[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(v)
	}
}

// PowersOf returns [1, x, x^2, ..., x^(n-1)].
func PowersOf(x Fr, n int) []Fr {
	out := make([]Fr, n)
	if n == 0 {
		return out
	}
	out[0] = FrOne()
	for i := 1; i < n; i++ {
		out[i] = out[i-1].Mul(x)
	}
	return out
}

// DotProduct returns sum(a[i] * b[i]). Panics if lengths differ, matching
// the library-invariant error policy of spec.md §7.
func DotProduct(a, b []Fr) Fr {
	if len(a) != len(b) {
		panic(errors.New("bandersnatch: dot product length mismatch"))
	}
	sum := FrZero()
	for i := range a {
		sum = sum.Add(a[i].Mul(b[i]))
	}
	return sum
}
