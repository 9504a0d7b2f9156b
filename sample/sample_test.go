package sample

import "testing"

func TestSupportString(t *testing.T) {
	cases := map[Support]string{
		Unbounded:           "unbounded",
		StrictlyPositive:    "strictly_positive",
		ClosedUnitInterval:  "closed_unit_interval",
		Support(99):         "Support(99)",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("Support(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestIntervalTypeString(t *testing.T) {
	cases := map[IntervalType]string{
		TwoSided:          "two_sided",
		OneSidedLower:     "one_sided_lower",
		OneSidedUpper:     "one_sided_upper",
		IntervalType(99):  "IntervalType(99)",
	}
	for tt, want := range cases {
		if got := tt.String(); got != want {
			t.Fatalf("IntervalType(%d).String() = %q, want %q", int(tt), got, want)
		}
	}
}

func TestTradeCompoundReturnEmpty(t *testing.T) {
	tr := Trade{BarReturns: nil, Duration: 0}
	if got := tr.CompoundReturn(); got != 0 {
		t.Fatalf("expected 0 for empty trade, got %v", got)
	}
}

func TestTradeCompoundReturnMixed(t *testing.T) {
	tr := Trade{BarReturns: []float64{0.1, -0.05, 0.02}, Duration: 3}
	got := tr.CompoundReturn()
	want := (1.1 * 0.95 * 1.02) - 1
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("CompoundReturn() = %v, want %v", got, want)
	}
}

func TestTradeCompoundReturnTotalLoss(t *testing.T) {
	tr := Trade{BarReturns: []float64{-1.0}, Duration: 1}
	if got := tr.CompoundReturn(); got != -1.0 {
		t.Fatalf("expected -1.0 for full ruin, got %v", got)
	}
}
