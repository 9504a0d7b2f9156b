package bootstrap

import (
	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
)

// Basic is the reverse-percentile bootstrap: endpoints are
// 2*thetaHat - q_upper and 2*thetaHat - q_lower, where q_lower/q_upper are
// type-7 quantiles of the replicate distribution. Its one-sided percentile
// assignment is inverted relative to Percentile's -- basicTailPercentiles
// documents why. Not safe for concurrent Run on the same instance (no
// internal mutex), matching the original BasicBootstrap's lack of a
// diagnostics mutex; safe across distinct instances.
type Basic[T any] struct {
	params    EngineParams
	resampler resample.ValueResampler[T]

	hasDiagnostics bool
	last           Candidate
}

func NewBasic[T any](b uint64, cl float64, resampler resample.ValueResampler[T], intervalType sample.IntervalType) (*Basic[T], error) {
	params := EngineParams{B: b, CL: cl, IntervalType: intervalType}
	if err := params.Validate("Basic"); err != nil {
		return nil, err
	}
	return &Basic[T]{params: params, resampler: resampler}, nil
}

func (e *Basic[T]) B() uint64   { return e.params.B }
func (e *Basic[T]) CL() float64 { return e.params.CL }

func (e *Basic[T]) HasDiagnostics() bool { return e.hasDiagnostics }

func (e *Basic[T]) Diagnostics() (Candidate, error) {
	if !e.hasDiagnostics {
		return Candidate{}, bootcierr.DiagnosticsUnavailableErr("Basic")
	}
	return e.last, nil
}

// basicTailPercentiles assigns Basic's one-sided percentiles by the
// reverse-percentile identity: it inverts which tail drives which bound,
// so ONE_SIDED_LOWER pulls its pseudo-quantile from pl=1e-10, pu=1-alpha
// (the mirror image of Percentile's own one-sided mapping), and
// ONE_SIDED_UPPER mirrors that.
func basicTailPercentiles(it sample.IntervalType, alpha float64) (lo, hi float64) {
	const extreme = 1e-10
	switch it {
	case sample.OneSidedLower:
		return extreme, 1 - alpha
	case sample.OneSidedUpper:
		return alpha, 1 - extreme
	default:
		return alpha / 2, 1 - alpha/2
	}
}

func (e *Basic[T]) Run(x []T, stat func([]T) float64, provider rng.Provider) (Candidate, error) {
	thetaHat := stat(x)
	replicates, effective, skipped, err := generateReplicates(x, e.resampler, stat, provider, e.params, len(x), "Basic")
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, err
	}

	mean, variance, se, skew := moments(replicates)
	alpha := e.params.Alpha()
	pLo, pHi := basicTailPercentiles(e.params.IntervalType, alpha)

	qLo, err := percentileType7(replicates, pLo)
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "Basic", "lower quantile failed", err)
	}
	qHi, err := percentileType7(replicates, pHi)
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "Basic", "upper quantile failed", err)
	}

	lower := 2*thetaHat - qHi
	upper := 2*thetaHat - qLo

	c := Candidate{
		Method:       MethodBasic,
		IntervalType: e.params.IntervalType,
		ThetaHat:     thetaHat,
		Mean:         mean,
		Variance:     variance,
		SEBoot:       se,
		SkewBoot:     skew,
		Lower:        lower,
		Upper:        upper,
		BEffective:   effective,
		BSkipped:     skipped,
	}
	e.last = c
	e.hasDiagnostics = true
	return c, nil
}
