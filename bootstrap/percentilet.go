package bootstrap

import (
	"math"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/metrics"
	"github.com/evdnx/bootci/parallel"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
)

// PercentileT is the double (studentized) bootstrap: an outer loop of
// B_outer resamples y_b, each internally re-bootstrapped B_inner times to
// estimate se_inner(y_b), producing a studentized pivot
// t*_b = (s(y_b)-thetaHat)/se_inner(y_b). The CI is built from the
// empirical quantiles of {t*_b} rather than of {s(y_b)} directly. Not
// safe for concurrent Run on the same instance.
type PercentileT[T any] struct {
	params    EngineParams
	bInner    uint64
	resampler resample.ValueResampler[T]

	hasDiagnostics bool
	last           Candidate
}

// NewPercentileT constructs a Percentile-T engine. bOuter is EngineParams.B
// (validated >= 400); bInner is the caller-supplied inner replicate count,
// typically config.BootstrapConfiguration.InnerReplications().
func NewPercentileT[T any](bOuter, bInner uint64, cl float64, resampler resample.ValueResampler[T], intervalType sample.IntervalType) (*PercentileT[T], error) {
	params := EngineParams{B: bOuter, CL: cl, IntervalType: intervalType}
	if err := params.Validate("PercentileT"); err != nil {
		return nil, err
	}
	if bInner < 2 {
		return nil, bootcierr.InvalidArgumentf("PercentileT", "bInner must be >= 2, got %d", bInner)
	}
	return &PercentileT[T]{params: params, bInner: bInner, resampler: resampler}, nil
}

func (e *PercentileT[T]) BOuter() uint64 { return e.params.B }
func (e *PercentileT[T]) BInner() uint64 { return e.bInner }
func (e *PercentileT[T]) CL() float64    { return e.params.CL }

func (e *PercentileT[T]) HasDiagnostics() bool { return e.hasDiagnostics }

func (e *PercentileT[T]) Diagnostics() (Candidate, error) {
	if !e.hasDiagnostics {
		return Candidate{}, bootcierr.DiagnosticsUnavailableErr("PercentileT")
	}
	return e.last, nil
}

func (e *PercentileT[T]) Run(x []T, statFn func([]T) float64, provider rng.Provider) (Candidate, error) {
	n := len(x)
	if n < 3 {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.InvalidArgumentf("PercentileT", "sample size must be >= 3, got %d", n)
	}

	thetaHat := statFn(x)
	bOuter := int(e.params.B)
	bInner := int(e.bInner)

	tStars := make([]float64, bOuter)
	outerStats := make([]float64, bOuter)
	validOuter := make([]bool, bOuter)

	parallel.ForChunked(bOuter, func(i int) {
		outerEngine := provider.MakeEngine(uint64(i))
		y := make([]T, n)
		if err := e.resampler.Fill(x, y, n, outerEngine); err != nil {
			return
		}
		sY := statFn(y)
		if math.IsNaN(sY) || math.IsInf(sY, 0) {
			return
		}

		innerStats := make([]float64, 0, bInner)
		for j := 0; j < bInner; j++ {
			// Unique, deterministic replicate index for every (outer,
			// inner) pair regardless of scheduling.
			idx := uint64(bOuter) + uint64(i)*uint64(bInner) + uint64(j)
			innerEngine := provider.MakeEngine(idx)
			z := make([]T, n)
			if err := e.resampler.Fill(y, z, n, innerEngine); err != nil {
				continue
			}
			sZ := statFn(z)
			if math.IsNaN(sZ) || math.IsInf(sZ, 0) {
				continue
			}
			innerStats = append(innerStats, sZ)
		}
		if len(innerStats) < 2 {
			return
		}
		_, innerVariance, seInner, _ := moments(innerStats)
		_ = innerVariance
		if seInner <= 0 {
			return
		}

		outerStats[i] = sY
		tStars[i] = (sY - thetaHat) / seInner
		validOuter[i] = true
	}, 0)

	filteredT := make([]float64, 0, bOuter)
	filteredOuter := make([]float64, 0, bOuter)
	var skipped uint64
	for i := 0; i < bOuter; i++ {
		if !validOuter[i] {
			skipped++
			continue
		}
		filteredT = append(filteredT, tStars[i])
		filteredOuter = append(filteredOuter, outerStats[i])
	}
	effective := uint64(len(filteredT))
	metrics.EnginesRun.WithLabelValues("PercentileT").Inc()
	metrics.ReplicatesDiscarded.WithLabelValues("PercentileT").Add(float64(skipped))
	if effective < e.params.MinEffective() {
		metrics.EngineFailures.WithLabelValues("PercentileT").Inc()
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.DegenerateReplicatesf("PercentileT", effective, e.params.MinEffective())
	}

	mean, variance, seOuter, skew := moments(filteredOuter)
	alpha := e.params.Alpha()

	var lower, upper float64
	switch e.params.IntervalType {
	case sample.OneSidedLower:
		qHiT, err := percentileType7(filteredT, 1-alpha)
		if err != nil {
			e.hasDiagnostics = false
			return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "PercentileT", "pivot quantile failed", err)
		}
		lower = thetaHat - qHiT*seOuter
		upper = mean + effectivelyUnboundedMultiple*seOuter
	case sample.OneSidedUpper:
		qLoT, err := percentileType7(filteredT, alpha)
		if err != nil {
			e.hasDiagnostics = false
			return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "PercentileT", "pivot quantile failed", err)
		}
		upper = thetaHat - qLoT*seOuter
		lower = mean - effectivelyUnboundedMultiple*seOuter
	default:
		qLoT, err := percentileType7(filteredT, alpha/2)
		if err != nil {
			e.hasDiagnostics = false
			return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "PercentileT", "pivot quantile failed", err)
		}
		qHiT, err := percentileType7(filteredT, 1-alpha/2)
		if err != nil {
			e.hasDiagnostics = false
			return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "PercentileT", "pivot quantile failed", err)
		}
		lower = thetaHat - qHiT*seOuter
		upper = thetaHat - qLoT*seOuter
	}

	c := Candidate{
		Method:       MethodPercentileT,
		IntervalType: e.params.IntervalType,
		ThetaHat:     thetaHat,
		Mean:         mean,
		Variance:     variance,
		SEBoot:       seOuter,
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
