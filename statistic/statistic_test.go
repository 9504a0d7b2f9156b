package statistic

import (
	"math"
	"testing"

	"github.com/evdnx/bootci/sample"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestMeanBasic(t *testing.T) {
	m := Mean{}
	got, err := m.Apply([]float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	if m.IsRatioStatistic() {
		t.Fatal("Mean must not be a ratio statistic")
	}
	if m.Support() != sample.Unbounded {
		t.Fatal("Mean must have unbounded support")
	}
}

func TestMeanEmpty(t *testing.T) {
	m := Mean{}
	got, err := m.Apply(nil)
	if err != nil || got != 0 {
		t.Fatalf("expected (0, nil) for empty input, got (%v, %v)", got, err)
	}
}

func TestMeanConstantInputZeroVariance(t *testing.T) {
	m := Mean{}
	got, err := m.Apply([]float64{0.5, 0.5, 0.5})
	if err != nil || got != 0.5 {
		t.Fatalf("expected 0.5, got (%v, %v)", got, err)
	}
}

func TestGeometricMeanBasic(t *testing.T) {
	g := GeometricMean{}
	got, err := g.Apply([]float64{0.1, 0.1, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	want := math.Exp(math.Log(1.1)) - 1
	if !approxEqual(got, want, 1e-9) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGeometricMeanFailsOnRuinByDefault(t *testing.T) {
	g := GeometricMean{}
	if _, err := g.Apply([]float64{-1.5}); err == nil {
		t.Fatal("expected error for 1+x <= 0")
	}
}

func TestGeometricMeanClipRuinSucceeds(t *testing.T) {
	g := GeometricMean{ClipRuin: true}
	if _, err := g.Apply([]float64{-1.5, 0.1}); err != nil {
		t.Fatalf("expected clip-ruin mode to succeed, got %v", err)
	}
}

func TestProfitFactorSentinelOnNoLosses(t *testing.T) {
	pf := ProfitFactor{}
	got, err := pf.Apply([]float64{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if got != profitFactorSentinel {
		t.Fatalf("expected sentinel %v, got %v", profitFactorSentinel, got)
	}
	if !pf.IsRatioStatistic() || pf.Support() != sample.StrictlyPositive {
		t.Fatal("ProfitFactor must be a ratio statistic with strictly-positive support")
	}
}

func TestProfitFactorBasic(t *testing.T) {
	pf := ProfitFactor{}
	got, err := pf.Apply([]float64{1, 1, -1})
	if err != nil {
		t.Fatal(err)
	}
	if got != 2.0 {
		t.Fatalf("expected PF=2, got %v", got)
	}
}

func TestProfitFactorLogCompress(t *testing.T) {
	pf := ProfitFactor{LogCompress: true}
	got, err := pf.Apply([]float64{1, 1, -1})
	if err != nil {
		t.Fatal(err)
	}
	want := math.Log(1 + 2.0)
	if !approxEqual(got, want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLogProfitFactorClassicalSentinel(t *testing.T) {
	l := LogProfitFactor{}
	got, err := l.Apply([]float64{0.05, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if got != profitFactorSentinel {
		t.Fatalf("expected sentinel, got %v", got)
	}
}

func TestLogProfitFactorRobustHandlesRuin(t *testing.T) {
	l := LogProfitFactor{Robust: true}
	got, err := l.Apply([]float64{-1.0, -2.0, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(got) || math.IsInf(got, 0) || got < 0 {
		t.Fatalf("expected finite non-negative output, got %v", got)
	}
}

func TestProfitabilityPair(t *testing.T) {
	pr := &Profitability{}
	got, err := pr.Apply([]float64{1, 1, -1, -1})
	if err != nil {
		t.Fatal(err)
	}
	if got != pr.P {
		t.Fatalf("Apply must return P, got %v vs field %v", got, pr.P)
	}
	if pr.PF != 1.0 {
		t.Fatalf("expected PF=1, got %v", pr.PF)
	}
	if pr.Support() != sample.ClosedUnitInterval {
		t.Fatal("Profitability must have closed-unit-interval support")
	}
}

func TestQuantileSingleElementShortCircuit(t *testing.T) {
	q := Quantile{P: 0.5}
	got, err := q.Apply([]float64{42})
	if err != nil || got != 42 {
		t.Fatalf("expected 42, got (%v, %v)", got, err)
	}
}

func TestQuantileMedian(t *testing.T) {
	q := Quantile{P: 0.5}
	got, err := q.Apply([]float64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Fatalf("expected median 3, got %v", got)
	}
}

func TestQuantileClampsP(t *testing.T) {
	q := Quantile{P: 5.0}
	got, err := q.Apply([]float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Fatalf("expected clamp to max, got %v", got)
	}
}

func TestQuantileEmptyFails(t *testing.T) {
	q := Quantile{P: 0.5}
	if _, err := q.Apply(nil); err == nil {
		t.Fatal("expected error for empty sample")
	}
}

func TestSharpeDegenerateZeroVariance(t *testing.T) {
	s := Sharpe{}
	got, err := s.Apply([]float64{0.01, 0.01, 0.01})
	if err != nil || got != 0 {
		t.Fatalf("expected 0 for zero-variance sample with eps=0, got (%v, %v)", got, err)
	}
}

func TestSharpeBasic(t *testing.T) {
	s := Sharpe{PeriodsPerYear: 252}
	got, err := s.Apply([]float64{0.01, -0.01, 0.02, -0.02, 0.01})
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("expected finite Sharpe ratio, got %v", got)
	}
}

func TestTradeReturnsAndOnTrades(t *testing.T) {
	trades := []sample.Trade{
		{BarReturns: []float64{0.1, 0.1}},
		{BarReturns: []float64{-0.05}},
	}
	rets := TradeReturns(trades)
	if len(rets) != 2 {
		t.Fatalf("expected 2 compounded returns, got %d", len(rets))
	}
	m := Mean{}
	got, err := OnTrades(m, trades)
	if err != nil {
		t.Fatal(err)
	}
	want := (rets[0] + rets[1]) / 2
	if !approxEqual(got, want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
