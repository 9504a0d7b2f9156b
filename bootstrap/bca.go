package bootstrap

import (
	"math"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
)

// bcaInstabilityZ0 and bcaInstabilityA gate BCa's acceptance: a bias
// correction or acceleration this large signals the bootstrap distribution
// is too skewed/discrete for the normal-theory adjustment to be trusted,
// and the selector should prefer a more conservative candidate.
const (
	bcaInstabilityZ0 = 0.4
	bcaInstabilityA  = 0.1
)

// BCa is the bias-corrected and accelerated bootstrap: it adjusts the
// percentile endpoints by a bias-correction z0 (the normal quantile of the
// proportion of replicates below thetaHat) and an acceleration a (from
// delete-block jackknife pseudo-values), rather than reading the raw
// tail percentiles of tailPercentiles. For a one-sided interval only the
// meaningful side is adjusted. Not safe for concurrent Run on the same
// instance.
type BCa[T any] struct {
	params    EngineParams
	resampler resample.ValueResampler[T]

	hasDiagnostics bool
	last           Candidate
}

func NewBCa[T any](b uint64, cl float64, resampler resample.ValueResampler[T], intervalType sample.IntervalType) (*BCa[T], error) {
	params := EngineParams{B: b, CL: cl, IntervalType: intervalType}
	if err := params.Validate("BCa"); err != nil {
		return nil, err
	}
	return &BCa[T]{params: params, resampler: resampler}, nil
}

func (e *BCa[T]) B() uint64   { return e.params.B }
func (e *BCa[T]) CL() float64 { return e.params.CL }

func (e *BCa[T]) HasDiagnostics() bool { return e.hasDiagnostics }

func (e *BCa[T]) Diagnostics() (Candidate, error) {
	if !e.hasDiagnostics {
		return Candidate{}, bootcierr.DiagnosticsUnavailableErr("BCa")
	}
	return e.last, nil
}

// InstabilityGate reports whether z0/a indicate an unstable BCa adjustment
// per bcaInstabilityZ0/bcaInstabilityA -- the same thresholds the selector
// keeps as its own constants for its BCa acceptance gate.
func InstabilityGate(z0, a float64) bool {
	return math.Abs(z0) > bcaInstabilityZ0 || math.Abs(a) > bcaInstabilityA
}

func (e *BCa[T]) Run(x []T, stat func([]T) float64, provider rng.Provider) (Candidate, error) {
	n := len(x)
	thetaHat := stat(x)

	replicates, effective, skipped, err := generateReplicates(x, e.resampler, stat, provider, e.params, n, "BCa")
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, err
	}
	mean, variance, se, skew := moments(replicates)

	var below uint64
	for _, v := range replicates {
		if v < thetaHat {
			below++
		}
	}
	proportion := float64(below) / float64(effective)
	// Clamp away from 0/1 so invNormCDF never sees a non-finite input.
	const edgeEps = 1e-10
	if proportion <= 0 {
		proportion = edgeEps
	}
	if proportion >= 1 {
		proportion = 1 - edgeEps
	}
	z0 := invNormCDF(proportion)

	pseudo, jkErr := resample.Jackknife[T, float64](e.resampler, x, stat)
	fellBack := false
	var a float64
	if jkErr != nil {
		fellBack = true
	} else {
		a, fellBack = acceleration(pseudo)
	}

	alpha := e.params.Alpha()
	pLo, pHi := tailPercentiles(e.params.IntervalType, alpha)
	if !fellBack {
		// Only the meaningful side of a one-sided interval is adjusted; the
		// unused side keeps tailPercentiles' extreme placeholder.
		adjLo, adjHi := pLo, pHi
		okLo, okHi := true, true
		if e.params.IntervalType != sample.OneSidedUpper {
			adjLo, okLo = adjustedPercentile(z0, a, pLo)
		}
		if e.params.IntervalType != sample.OneSidedLower {
			adjHi, okHi = adjustedPercentile(z0, a, pHi)
		}
		if okLo && okHi {
			pLo, pHi = adjLo, adjHi
		} else {
			fellBack = true
		}
	}

	lower, err := percentileType7(replicates, pLo)
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "BCa", "lower quantile failed", err)
	}
	upper, err := percentileType7(replicates, pHi)
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "BCa", "upper quantile failed", err)
	}

	c := Candidate{
		Method:                  MethodBCa,
		IntervalType:            e.params.IntervalType,
		ThetaHat:                thetaHat,
		Mean:                    mean,
		Variance:                variance,
		SEBoot:                  se,
		SkewBoot:                skew,
		Lower:                   lower,
		Upper:                   upper,
		BEffective:              effective,
		BSkipped:                skipped,
		Z0:                      z0,
		A:                       a,
		BCaFellBackToPercentile: fellBack,
	}
	e.last = c
	e.hasDiagnostics = true
	return c, nil
}

// acceleration computes a = sum(u_j^3) / (6*sum(u_j^2)^1.5) over jackknife
// pseudo-values pseudo, where u_j = mean(pseudo) - pseudo_j. It reports
// fellBack=true when sum(u_j^2) is degenerate (all pseudo-values equal),
// in which case a=0 and the caller should fall back to the percentile
// interval.
func acceleration(pseudo []float64) (a float64, fellBack bool) {
	if len(pseudo) < 2 {
		return 0, true
	}
	mean := 0.0
	for _, v := range pseudo {
		mean += v
	}
	mean /= float64(len(pseudo))

	var sumSq, sumCube float64
	for _, v := range pseudo {
		u := mean - v
		sumSq += u * u
		sumCube += u * u * u
	}
	if sumSq <= 0 {
		return 0, true
	}
	a = sumCube / (6 * math.Pow(sumSq, 1.5))
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0, true
	}
	return a, false
}

// adjustedPercentile computes the BCa-adjusted percentile for nominal tail
// probability p:
//
//	alpha_adj = Phi( z0 + (z0+z_p) / (1 - a*(z0+z_p)) )
//
// where z_p = Phi^-1(p). ok is false when the denominator degenerates or
// the result falls outside the open interval (0,1), signaling the caller
// should fall back to the plain percentile interval.
func adjustedPercentile(z0, a, p float64) (float64, bool) {
	zp := invNormCDF(p)
	denom := 1 - a*(z0+zp)
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return 0, false
	}
	adjusted := normCDF(z0 + (z0+zp)/denom)
	if math.IsNaN(adjusted) || adjusted <= 0 || adjusted >= 1 {
		return 0, false
	}
	return adjusted, true
}
