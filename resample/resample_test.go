package resample

import (
	"math/rand/v2"
	"testing"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xD1B54A32D192ED03))
}

func containsAll(x []float64, y []float64) bool {
	set := make(map[float64]bool, len(x))
	for _, v := range x {
		set[v] = true
	}
	for _, v := range y {
		if !set[v] {
			return false
		}
	}
	return true
}

func TestIIDFillLengthAndMembership(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := make([]float64, 20)
	r := IID[float64]{}
	if err := r.Fill(x, y, 20, newRand(1)); err != nil {
		t.Fatal(err)
	}
	if !containsAll(x, y) {
		t.Fatal("expected all drawn values to come from x")
	}
}

func TestIIDDeterministic(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y1 := make([]float64, 10)
	y2 := make([]float64, 10)
	r := IID[float64]{}
	if err := r.Fill(x, y1, 10, newRand(7)); err != nil {
		t.Fatal(err)
	}
	if err := r.Fill(x, y2, 10, newRand(7)); err != nil {
		t.Fatal(err)
	}
	for i := range y1 {
		if y1[i] != y2[i] {
			t.Fatalf("expected deterministic output at %d: %v != %v", i, y1[i], y2[i])
		}
	}
}

func TestIIDRejectsShortInput(t *testing.T) {
	r := IID[float64]{}
	if err := r.Fill([]float64{1}, make([]float64, 2), 2, newRand(1)); err == nil {
		t.Fatal("expected error for n < 2")
	}
}

func TestStationaryBlockValueLengthAndMembership(t *testing.T) {
	x := make([]float64, 10)
	for i := range x {
		x[i] = float64(i)
	}
	r, err := NewStationaryBlockValue[float64](3)
	if err != nil {
		t.Fatal(err)
	}
	y := make([]float64, 50)
	if err := r.Fill(x, y, 50, newRand(3)); err != nil {
		t.Fatal(err)
	}
	if !containsAll(x, y) {
		t.Fatal("expected all values to come from x")
	}
}

func TestStationaryBlockValueLIsIIDWhenOne(t *testing.T) {
	r, err := NewStationaryBlockValue[float64](1)
	if err != nil {
		t.Fatal(err)
	}
	if r.L() != 1 {
		t.Fatalf("expected L()=1, got %d", r.L())
	}
}

func TestStationaryBlockValueAcceptsLLargerThanSample(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	r, err := NewStationaryBlockValue[float64](100)
	if err != nil {
		t.Fatal(err)
	}
	y := make([]float64, 4)
	if err := r.Fill(x, y, 4, newRand(11)); err != nil {
		t.Fatal(err)
	}
}

func TestMakeRestartMaskFirstElementAlwaysOne(t *testing.T) {
	mask, err := makeRestartMask(10, 3, newRand(42))
	if err != nil {
		t.Fatal(err)
	}
	if !mask[0] {
		t.Fatal("expected mask[0] == true")
	}
}

func TestMakeRestartMaskUnderflowSingleBlock(t *testing.T) {
	mask, err := makeRestartMask(20, 1e18, newRand(1))
	if err != nil {
		t.Fatal(err)
	}
	for t2 := 1; t2 < len(mask); t2++ {
		if mask[t2] {
			t.Fatalf("expected no restarts after t=0 for effectively-infinite L, found one at %d", t2)
		}
	}
}

func TestMakeRestartMaskMeanBlockLengthApproachesL(t *testing.T) {
	const L = 5.0
	const m = 2000
	r := newRand(99)
	mask, err := makeRestartMask(m, L, r)
	if err != nil {
		t.Fatal(err)
	}
	restarts := 0
	for i := 1; i < m; i++ {
		if mask[i] {
			restarts++
		}
	}
	// Expected restarts ~= (m-1)/L; allow generous tolerance for a single draw.
	expected := float64(m-1) / L
	if float64(restarts) < expected*0.5 || float64(restarts) > expected*1.5 {
		t.Fatalf("restart count %d far from expected %v", restarts, expected)
	}
}

func TestMakeRestartMaskRejectsShortMask(t *testing.T) {
	if _, err := makeRestartMask(1, 3, newRand(1)); err == nil {
		t.Fatal("expected error for m < 2")
	}
}

func TestMakeRestartMaskRejectsInvalidL(t *testing.T) {
	if _, err := makeRestartMask(5, 0.5, newRand(1)); err == nil {
		t.Fatal("expected error for L < 1")
	}
}

func TestStationaryMaskValueMembership(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	r, err := NewStationaryMaskValue[float64](2)
	if err != nil {
		t.Fatal(err)
	}
	y := make([]float64, 30)
	if err := r.Fill(x, y, 30, newRand(5)); err != nil {
		t.Fatal(err)
	}
	if !containsAll(x, y) {
		t.Fatal("expected all values to come from x")
	}
}

func TestStationaryMaskIndexMatchesValueResamplerUnderSameSeed(t *testing.T) {
	x := []float64{10, 20, 30, 40, 50}
	valueR, err := NewStationaryMaskValue[float64](3)
	if err != nil {
		t.Fatal(err)
	}
	indexR, err := NewStationaryMaskIndex(3)
	if err != nil {
		t.Fatal(err)
	}

	y := make([]float64, 40)
	if err := valueR.Fill(x, y, 40, newRand(123)); err != nil {
		t.Fatal(err)
	}

	idx := make([]int, 40)
	if err := indexR.FillIndex(len(x), idx, 40, newRand(123)); err != nil {
		t.Fatal(err)
	}

	for i := range y {
		if y[i] != x[idx[i]] {
			t.Fatalf("index resampler diverged from value resampler at %d", i)
		}
	}
}

func TestStationaryMaskIndexRangeBounds(t *testing.T) {
	r, err := NewStationaryMaskIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	idx := make([]int, 50)
	if err := r.FillIndex(7, idx, 50, newRand(2)); err != nil {
		t.Fatal(err)
	}
	for _, v := range idx {
		if v < 0 || v >= 7 {
			t.Fatalf("index %d out of range [0,7)", v)
		}
	}
}

func TestAdapterResampleLength(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	inner, err := NewStationaryMaskValue[float64](3)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAdapter[float64](inner)
	y, err := a.Resample(x, 10, newRand(4))
	if err != nil {
		t.Fatal(err)
	}
	if len(y) != 10 {
		t.Fatalf("expected length 10, got %d", len(y))
	}
}

func TestAdapterResampleRejectsEmptySample(t *testing.T) {
	inner, _ := NewStationaryMaskValue[float64](2)
	a := NewAdapter[float64](inner)
	if _, err := a.Resample(nil, 4, newRand(1)); err == nil {
		t.Fatal("expected error for empty sample")
	}
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func TestJackknifeOnConstantSeriesIsConstant(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = 7.0
	}
	inner, err := NewStationaryBlockValue[float64](3)
	if err != nil {
		t.Fatal(err)
	}
	jk, err := Jackknife[float64, float64](inner, x, mean)
	if err != nil {
		t.Fatal(err)
	}
	if len(jk) == 0 {
		t.Fatal("expected at least one pseudo-value")
	}
	for _, v := range jk {
		if v != 7.0 {
			t.Fatalf("expected every pseudo-value to equal 7.0, got %v", v)
		}
	}
}

func TestJackknifeBlockCountIsNOverLEff(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i)
	}
	inner, err := NewStationaryBlockValue[float64](4)
	if err != nil {
		t.Fatal(err)
	}
	jk, err := Jackknife[float64, float64](inner, x, mean)
	if err != nil {
		t.Fatal(err)
	}
	// L_eff = min(4, 20-2) = 4; numBlocks = 20/4 = 5 (not 20).
	if len(jk) != 5 {
		t.Fatalf("expected 5 non-overlapping pseudo-values, got %d", len(jk))
	}
}

func TestJackknifeRejectsTooSmallSample(t *testing.T) {
	inner, err := NewStationaryBlockValue[float64](1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Jackknife[float64, float64](inner, []float64{1, 2}, mean); err == nil {
		t.Fatal("expected error for n < 3")
	}
}

func TestJackknifeClampsLEffToSampleSize(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	inner, err := NewStationaryBlockValue[float64](100)
	if err != nil {
		t.Fatal(err)
	}
	// L_eff = min(100, 5-2) = 3; numBlocks = 5/3 = 1.
	jk, err := Jackknife[float64, float64](inner, x, mean)
	if err != nil {
		t.Fatal(err)
	}
	if len(jk) != 1 {
		t.Fatalf("expected 1 pseudo-value when L >> n, got %d", len(jk))
	}
}
