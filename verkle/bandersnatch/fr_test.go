package bandersnatch

import (
	"math/big"
	"testing"
)

func TestFrAddSubNeg(t *testing.T) {
	a := FrFromUint64(5)
	b := FrFromUint64(3)

	sum := a.Add(b)
	if !sum.Equal(FrFromUint64(8)) {
		t.Errorf("5+3 = %v, want 8", sum.BigInt())
	}

	diff := a.Sub(b)
	if !diff.Equal(FrFromUint64(2)) {
		t.Errorf("5-3 = %v, want 2", diff.BigInt())
	}

	neg := a.Neg()
	if !neg.Add(a).IsZero() {
		t.Error("a + (-a) should be zero")
	}
}

func TestFrMulInverse(t *testing.T) {
	a := FrFromUint64(7)
	inv, ok := a.Inverse()
	if !ok {
		t.Fatal("Inverse() reported failure for a non-zero element")
	}
	product := a.Mul(inv)
	if !product.Equal(FrOne()) {
		t.Errorf("a * a^-1 = %v, want 1", product.BigInt())
	}

	if _, ok := FrZero().Inverse(); ok {
		t.Error("Inverse() of zero should report failure")
	}
}

func TestFrIsZero(t *testing.T) {
	if !FrZero().IsZero() {
		t.Error("FrZero() should be zero")
	}
	if FrOne().IsZero() {
		t.Error("FrOne() should not be zero")
	}
}

func TestFrFromIntNegative(t *testing.T) {
	neg := FrFromInt(-1)
	want := FrOne().Neg()
	if !neg.Equal(want) {
		t.Errorf("FrFromInt(-1) = %v, want %v", neg.BigInt(), want.BigInt())
	}
}

func TestFrBytesRoundTrip(t *testing.T) {
	a := FrFromUint64(123456789)
	le := a.BytesLE()
	b := FrFromLEBytesModOrder(le[:])
	if !a.Equal(b) {
		t.Errorf("round trip through BytesLE/FrFromLEBytesModOrder changed value: %v != %v", a.BigInt(), b.BigInt())
	}
}

func TestFrFromStemReducesModOrder(t *testing.T) {
	var stem [31]byte
	for i := range stem {
		stem[i] = 0xff
	}
	f := FrFromStem(stem)
	if f.BigInt().Cmp(frModulus) >= 0 {
		t.Error("FrFromStem result should be reduced below the field modulus")
	}
}

func TestBatchInverseAndMul(t *testing.T) {
	values := []Fr{FrFromUint64(2), FrFromUint64(3), FrFromUint64(4)}
	scale := FrFromUint64(6)
	want := make([]Fr, len(values))
	for i, v := range values {
		inv, ok := v.Inverse()
		if !ok {
			t.Fatal("Inverse() reported failure for a non-zero element")
		}
		want[i] = inv.Mul(scale)
	}

	BatchInverseAndMul(values, scale)
	for i := range values {
		if !values[i].Equal(want[i]) {
			t.Errorf("values[%d] = %v, want %v", i, values[i].BigInt(), want[i].BigInt())
		}
	}
}

func TestBatchInverseAndMulSkipsZero(t *testing.T) {
	values := []Fr{FrFromUint64(2), FrZero(), FrFromUint64(4)}
	BatchInverseAndMul(values, FrOne())
	if !values[1].IsZero() {
		t.Error("zero entries must be left as zero")
	}
}

func TestPowersOf(t *testing.T) {
	base := FrFromUint64(2)
	powers := PowersOf(base, 5)
	if len(powers) != 5 {
		t.Fatalf("len(powers) = %d, want 5", len(powers))
	}
	if !powers[0].Equal(FrOne()) {
		t.Errorf("powers[0] = %v, want 1", powers[0].BigInt())
	}
	want := big.NewInt(16)
	if powers[4].BigInt().Cmp(want) != 0 {
		t.Errorf("powers[4] = %v, want %v", powers[4].BigInt(), want)
	}
}

func TestDotProductPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("DotProduct should panic on length mismatch")
		}
	}()
	DotProduct([]Fr{FrOne()}, []Fr{FrOne(), FrOne()})
}

func TestDotProduct(t *testing.T) {
	a := []Fr{FrFromUint64(1), FrFromUint64(2), FrFromUint64(3)}
	b := []Fr{FrFromUint64(4), FrFromUint64(5), FrFromUint64(6)}
	got := DotProduct(a, b)
	want := FrFromUint64(1*4 + 2*5 + 3*6)
	if !got.Equal(want) {
		t.Errorf("DotProduct = %v, want %v", got.BigInt(), want.BigInt())
	}
}
