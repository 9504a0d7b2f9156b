package bootstrap

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/metrics"
	"github.com/evdnx/bootci/parallel"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
	"github.com/evdnx/bootci/statistic"
)

// standardNormal is the N(0,1) distribution used for z-value lookups
// (Normal bootstrap's critical values, BCa's z0 and adjusted percentiles).
var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

// invNormCDF is the standard normal quantile function Phi^-1.
func invNormCDF(p float64) float64 { return standardNormal.Quantile(p) }

// normCDF is the standard normal CDF Phi.
func normCDF(z float64) float64 { return standardNormal.CDF(z) }

// AdaptBarLevel wraps a statistic.Statistic as a bar-level reduce function
// for engine replicate generation: domain errors become NaN, which the
// replicate loop discards as a non-finite replicate rather than aborting
// the whole run.
func AdaptBarLevel(st statistic.Statistic) func([]float64) float64 {
	return func(x []float64) float64 {
		v, err := st.Apply(x)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// AdaptTradeLevel wraps a statistic.Statistic as a trade-level reduce
// function, compounding each trade to a single return before applying the
// statistic -- the Go-native mirror of the original's Trade<Decimal>
// template instantiation of the same statistic functors.
func AdaptTradeLevel(st statistic.Statistic) func([]sample.Trade) float64 {
	return func(x []sample.Trade) float64 {
		v, err := statistic.OnTrades(st, x)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// generateReplicates runs B resample-and-reduce trials in parallel via
// parallel.ForChunked, seeding each replicate's RNG engine independently
// from provider so the result is deterministic regardless of scheduling.
// Non-finite reduce() outputs are recorded as skipped rather than included.
// m is the resample length each replicate draws (equal to len(x) for every
// engine except M-out-of-N, which draws m = ceil(ratio*n)).
func generateReplicates[T any](
	x []T,
	resampler resample.ValueResampler[T],
	reduce func([]T) float64,
	provider rng.Provider,
	params EngineParams,
	m int,
	engineName string,
) (replicates []float64, effective uint64, skipped uint64, err error) {

	n := len(x)
	if n < 3 {
		return nil, 0, 0, bootcierr.InvalidArgumentf(engineName, "sample size must be >= 3, got %d", n)
	}
	if m < 2 {
		return nil, 0, 0, bootcierr.InvalidArgumentf(engineName, "resample length m must be >= 2, got %d", m)
	}

	b := int(params.B)
	raw := make([]float64, b)
	buffers := make([][]T, b)
	for i := range buffers {
		buffers[i] = make([]T, m)
	}

	parallel.ForChunked(b, func(i int) {
		engine := provider.MakeEngine(uint64(i))
		if ferr := resampler.Fill(x, buffers[i], m, engine); ferr != nil {
			raw[i] = math.NaN()
			return
		}
		raw[i] = reduce(buffers[i])
	}, 0)

	replicates = make([]float64, 0, b)
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			skipped++
			continue
		}
		replicates = append(replicates, v)
	}
	effective = uint64(len(replicates))

	metrics.EnginesRun.WithLabelValues(engineName).Inc()
	metrics.ReplicatesDiscarded.WithLabelValues(engineName).Add(float64(skipped))

	if effective < params.MinEffective() {
		metrics.EngineFailures.WithLabelValues(engineName).Inc()
		return nil, effective, skipped, bootcierr.DegenerateReplicatesf(engineName, effective, params.MinEffective())
	}
	return replicates, effective, skipped, nil
}

// moments computes the sample mean, Bessel-corrected variance, standard
// deviation, and skewness of replicates, via gonum/stat.
func moments(replicates []float64) (mean, variance, se, skew float64) {
	mean = stat.Mean(replicates, nil)
	if len(replicates) < 2 {
		return mean, 0, 0, 0
	}
	variance = stat.Variance(replicates, nil)
	se = math.Sqrt(variance)
	skew = stat.Skew(replicates, nil)
	return mean, variance, se, skew
}

// tailPercentiles returns the (lower, upper) percentile-table allocation
// for the Percentile engine:
//
//	two_sided:        alpha/2, 1-alpha/2
//	one_sided_lower:  alpha,   1-1e-10
//	one_sided_upper:  1e-10,   1-alpha
func tailPercentiles(it sample.IntervalType, alpha float64) (lo, hi float64) {
	const extreme = 1e-10
	switch it {
	case sample.OneSidedLower:
		return alpha, 1 - extreme
	case sample.OneSidedUpper:
		return extreme, 1 - alpha
	default:
		return alpha / 2, 1 - alpha/2
	}
}

// percentileType7 computes the Hyndman-Fan type-7 quantile of replicates
// at probability p, reusing statistic.Quantile for a single source of
// truth on the type-7 formula.
func percentileType7(replicates []float64, p float64) (float64, error) {
	q := statistic.Quantile{P: p}
	return q.Apply(replicates)
}
