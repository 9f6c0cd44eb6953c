package bandersnatch

import (
	"errors"
	"math/big"
)

// Banderwagon curve parameters: the twisted Edwards curve
//
//	-5x^2 + y^2 = 1 + d*x^2*y^2
//
// defined over the BLS12-381 scalar field, adapted from the teacher's
// pkg/crypto/banderwagon.go. Coordinate arithmetic happens modulo baseField
// (the curve's base field); scalar arithmetic (Point.ScalarMul et al.) is
// modulo frModulus, the prime subgroup order.
var (
	baseField, _ = new(big.Int).SetString(
		"73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001", 16)

	curveA = func() *big.Int {
		return new(big.Int).Sub(baseField, big.NewInt(5))
	}()

	curveD, _ = new(big.Int).SetString(
		"6389c12633c267cbc66e3bf86be3b6d8cb66677177e54f92b369f2f5188d58e7", 16)

	genX, _ = new(big.Int).SetString(
		"29c132cc2c0b34c5743711777bbe42f32b79c022ad998465e1e71866a252ae18", 16)
	genY, _ = new(big.Int).SetString(
		"2a6c669eda123e0f157d8b50badcd586358cad81eee464605e3167b6cc974166", 16)
)

func baseAdd(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Add(a, b), baseField) }
func baseSub(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Sub(a, b), baseField) }
func baseMul(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Mul(a, b), baseField) }
func baseSqr(a *big.Int) *big.Int    { return baseMul(a, a) }
func baseNeg(a *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(baseField, new(big.Int).Mod(a, baseField))
}
func baseInv(a *big.Int) *big.Int { return new(big.Int).ModInverse(a, baseField) }

// Point is a Banderwagon group element in extended twisted-Edwards
// coordinates (X, Y, T, Z) with x = X/Z, y = Y/Z, T = XY/Z.
type Point struct {
	x, y, t, z *big.Int
}

// Identity returns the group's neutral element.
func Identity() Point {
	return Point{x: new(big.Int), y: big.NewInt(1), t: new(big.Int), z: big.NewInt(1)}
}

// Generator returns the standard Banderwagon generator.
func Generator() Point {
	return Point{x: new(big.Int).Set(genX), y: new(big.Int).Set(genY), t: baseMul(genX, genY), z: big.NewInt(1)}
}

// FromAffine builds a point from affine coordinates, validating that it
// lies on the curve.
func FromAffine(x, y *big.Int) (Point, error) {
	xm := new(big.Int).Mod(x, baseField)
	ym := new(big.Int).Mod(y, baseField)
	x2, y2 := baseSqr(xm), baseSqr(ym)
	lhs := baseAdd(baseMul(curveA, x2), y2)
	rhs := baseAdd(big.NewInt(1), baseMul(curveD, baseMul(x2, y2)))
	if lhs.Cmp(rhs) != 0 {
		return Point{}, errors.New("bandersnatch: point not on curve")
	}
	return Point{x: xm, y: ym, t: baseMul(xm, ym), z: big.NewInt(1)}, nil
}

// Affine returns the point's affine (x, y) coordinates.
func (p Point) Affine() (x, y *big.Int) {
	if p.z.Cmp(big.NewInt(1)) == 0 {
		return new(big.Int).Set(p.x), new(big.Int).Set(p.y)
	}
	zInv := baseInv(p.z)
	return baseMul(p.x, zInv), baseMul(p.y, zInv)
}

// IsIdentity reports whether p is the neutral element.
func (p Point) IsIdentity() bool {
	return new(big.Int).Mod(p.x, baseField).Sign() == 0
}

// Add returns p + q using the unified twisted-Edwards addition formula.
func (p Point) Add(q Point) Point {
	A := baseMul(p.x, q.x)
	B := baseMul(p.y, q.y)
	C := baseMul(baseMul(p.t, curveD), q.t)
	D := baseMul(p.z, q.z)
	E := baseSub(baseMul(baseAdd(p.x, p.y), baseAdd(q.x, q.y)), baseAdd(A, B))
	F := baseSub(D, C)
	G := baseAdd(D, C)
	H := baseSub(B, baseMul(curveA, A))
	return Point{x: baseMul(E, F), y: baseMul(G, H), t: baseMul(E, H), z: baseMul(F, G)}
}

// Double returns p + p.
func (p Point) Double() Point {
	A := baseSqr(p.x)
	B := baseSqr(p.y)
	C := baseMul(big.NewInt(2), baseSqr(p.z))
	D := baseMul(curveA, A)
	E := baseSub(baseSqr(baseAdd(p.x, p.y)), baseAdd(A, B))
	G := baseAdd(D, B)
	F := baseSub(G, C)
	H := baseSub(D, B)
	return Point{x: baseMul(E, F), y: baseMul(G, H), t: baseMul(E, H), z: baseMul(F, G)}
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Point{x: baseNeg(p.x), y: new(big.Int).Set(p.y), t: baseNeg(p.t), z: new(big.Int).Set(p.z)}
}

// ScalarMul returns k*p via double-and-add, with k reduced mod the
// subgroup order.
func (p Point) ScalarMul(k Fr) Point {
	if k.IsZero() || p.IsIdentity() {
		return Identity()
	}
	result := Identity()
	for i := k.v.BitLen() - 1; i >= 0; i-- {
		result = result.Double()
		if k.v.Bit(i) == 1 {
			result = result.Add(p)
		}
	}
	return result
}

// MSM computes sum(scalars[i] * points[i]) sequentially, skipping zero
// scalars. CRS.Commit calls it for every vector length; there is no
// parallel path for large vectors.
func MSM(points []Point, scalars []Fr) Point {
	if len(points) != len(scalars) {
		panic(errors.New("bandersnatch: msm length mismatch"))
	}
	result := Identity()
	for i := range points {
		if scalars[i].IsZero() {
			continue
		}
		result = result.Add(points[i].ScalarMul(scalars[i]))
	}
	return result
}

// Equal reports group equality up to the quotient by the order-4 cofactor
// subgroup, i.e. (x,y) ~ (-x,-y), as Banderwagon is defined as a quotient
// group of the Bandersnatch curve.
func (p Point) Equal(q Point) bool {
	lx := baseMul(p.x, q.z)
	rx := baseMul(q.x, p.z)
	ly := baseMul(p.y, q.z)
	ry := baseMul(q.y, p.z)
	if lx.Cmp(rx) == 0 && ly.Cmp(ry) == 0 {
		return true
	}
	return lx.Cmp(baseNeg(rx)) == 0 && ly.Cmp(baseNeg(ry)) == 0
}

// Encode serializes p to its 32-byte canonical compressed form: the Y
// coordinate little-endian, normalized into the "positive" half of the
// field, with the sign of X folded into the top bit.
func (p Point) Encode() [32]byte {
	var out [32]byte
	if p.IsIdentity() {
		out[31] = 1
		return out
	}
	x, y := p.Affine()
	half := new(big.Int).Rsh(baseField, 1)
	if y.Cmp(half) > 0 {
		x, y = baseNeg(x), baseNeg(y)
	}
	yb := y.Bytes()
	for i, b := range yb {
		out[len(yb)-1-i] = b
	}
	if x.Cmp(half) > 0 {
		out[31] |= 0x80
	}
	return out
}

// Decode deserializes a 32-byte canonical compressed encoding.
func Decode(data [32]byte) (Point, error) {
	signBit := data[31] & 0x80
	data[31] &= 0x7f

	be := make([]byte, 32)
	for i := 0; i < 32; i++ {
		be[31-i] = data[i]
	}
	y := new(big.Int).SetBytes(be)
	if y.Cmp(baseField) >= 0 {
		return Point{}, errors.New("bandersnatch: y out of range")
	}

	y2 := baseSqr(y)
	num := baseSub(y2, big.NewInt(1))
	den := baseAdd(big.NewInt(5), baseMul(curveD, y2))
	denInv := baseInv(den)
	if denInv == nil {
		return Point{}, errors.New("bandersnatch: degenerate point")
	}
	x2 := baseMul(num, denInv)
	x := new(big.Int).ModSqrt(x2, baseField)
	if x == nil {
		return Point{}, errors.New("bandersnatch: no square root for x^2")
	}

	half := new(big.Int).Rsh(baseField, 1)
	upper := x.Cmp(half) > 0
	if (signBit != 0) != upper {
		x = baseNeg(x)
	}
	return FromAffine(x, y)
}

// MapToScalarField is the canonical group -> field digest used when a
// child commitment is embedded as a scalar in its parent's polynomial
// (spec.md §4.1): hash(P) = X/Y.
func (p Point) MapToScalarField() Fr {
	if p.IsIdentity() {
		return FrZero()
	}
	x, y := p.Affine()
	yInv := baseInv(y)
	if yInv == nil {
		return FrZero()
	}
	return frFromBigInt(baseMul(x, yInv))
}
