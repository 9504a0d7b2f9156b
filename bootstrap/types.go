// Package bootstrap implements the six bootstrap confidence-interval
// engines the tournament chooses among: Normal (Wald), Basic
// (reverse-percentile), Percentile, M-out-of-N Percentile, Percentile-T
// (double bootstrap), and BCa (Bias-Corrected and Accelerated). Every
// engine is generic over the sample element type T (bar-level float64,
// trade-level sample.Trade), shares the same construction contract (B >=
// 400, cl in (0.5,1)), and produces a Candidate the selector scores.
package bootstrap

import (
	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/sample"
)

// MethodID identifies which engine produced a Candidate.
type MethodID int

const (
	MethodNormal MethodID = iota
	MethodBasic
	MethodPercentile
	MethodMOutOfN
	MethodPercentileT
	MethodBCa
)

func (m MethodID) String() string {
	switch m {
	case MethodNormal:
		return "Normal"
	case MethodBasic:
		return "Basic"
	case MethodPercentile:
		return "Percentile"
	case MethodMOutOfN:
		return "MOutOfN"
	case MethodPercentileT:
		return "PercentileT"
	case MethodBCa:
		return "BCa"
	default:
		return "Unknown"
	}
}

// Candidate is the outcome of one engine's run(): a confidence interval
// plus the diagnostics the auto-selector scores candidates on. Z0 and A
// are only meaningful for MethodBCa; they are zero for every other method.
type Candidate struct {
	Method       MethodID
	IntervalType sample.IntervalType

	ThetaHat float64
	Mean     float64 // bootstrap-distribution mean
	Variance float64 // bootstrap-distribution variance (Bessel-corrected)
	SEBoot   float64 // sqrt(Variance)
	SkewBoot float64 // bootstrap-distribution skewness

	Lower float64
	Upper float64

	BEffective uint64
	BSkipped   uint64

	Z0                      float64
	A                       float64
	BCaFellBackToPercentile bool
}

// EngineParams holds the construction parameters shared by every engine.
type EngineParams struct {
	B            uint64
	CL           float64
	IntervalType sample.IntervalType
}

// Validate enforces B >= 400 and cl in (0.5,1), common to all six engines.
func (p EngineParams) Validate(engine string) error {
	if p.B < 400 {
		return bootcierr.InvalidArgumentf(engine, "B must be >= 400, got %d", p.B)
	}
	if !(p.CL > 0.5 && p.CL < 1.0) {
		return bootcierr.InvalidArgumentf(engine, "cl must be in (0.5,1), got %v", p.CL)
	}
	return nil
}

// Alpha returns 1 - CL.
func (p EngineParams) Alpha() float64 { return 1 - p.CL }

// MinEffective returns ceil(B/2), the minimum number of finite replicates
// required for a run to succeed.
func (p EngineParams) MinEffective() uint64 {
	return (p.B + 1) / 2
}
