// Package sample defines the value types flowing through the bootstrap
// core: the declared support of a statistic, the interval-type policy an
// engine targets, and the two sample element types (bar-level returns and
// trade-level records) the engines are generic over.
package sample

import "fmt"

// Support is the declared valid range of a statistic's output.
type Support int

const (
	// Unbounded statistics can take any finite value (e.g. mean).
	Unbounded Support = iota
	// StrictlyPositive statistics must be > 0 (e.g. profit factor); the
	// auto-selector penalizes out-of-domain candidates for these.
	StrictlyPositive
	// ClosedUnitInterval statistics live in [0,1] (e.g. profitability, win rate).
	ClosedUnitInterval
)

func (s Support) String() string {
	switch s {
	case Unbounded:
		return "unbounded"
	case StrictlyPositive:
		return "strictly_positive"
	case ClosedUnitInterval:
		return "closed_unit_interval"
	default:
		return fmt.Sprintf("Support(%d)", int(s))
	}
}

// IntervalType selects which side(s) of a confidence interval are
// meaningful. A one-sided interval's unused side is set to an "effectively
// unbounded" sentinel by each engine rather than left as a zero value.
type IntervalType int

const (
	// TwoSided reports both a lower and an upper bound.
	TwoSided IntervalType = iota
	// OneSidedLower reports only a meaningful lower bound; the upper bound
	// is set to an effectively +Inf sentinel.
	OneSidedLower
	// OneSidedUpper reports only a meaningful upper bound; the lower bound
	// is set to an effectively -Inf sentinel.
	OneSidedUpper
)

func (t IntervalType) String() string {
	switch t {
	case TwoSided:
		return "two_sided"
	case OneSidedLower:
		return "one_sided_lower"
	case OneSidedUpper:
		return "one_sided_upper"
	default:
		return fmt.Sprintf("IntervalType(%d)", int(t))
	}
}

// Trade is a trade-level sample element: an ordered sub-sequence of
// per-bar returns realized while the trade was open, plus its duration in
// bars. Trade-level statistics (mean, profit factor, ...) operate on the
// trade's aggregate return, typically the compounded product of 1+BarReturns.
type Trade struct {
	BarReturns []float64
	Duration   int // bars held
}

// CompoundReturn returns the trade's total realized return,
// Π(1+r_t) - 1 over its bar-level returns.
func (t Trade) CompoundReturn() float64 {
	mult := 1.0
	for _, r := range t.BarReturns {
		mult *= 1 + r
	}
	return mult - 1
}
