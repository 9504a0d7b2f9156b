package bootstrap

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
)

// minAdaptiveTailObservations is the soft floor below which the Hill
// estimator's tail has no meaningful signal; below it the adaptive policy
// falls back to the conservative fixed ratio.
const minAdaptiveTailObservations = 8

// defaultFixedRatio is the recommended conservative m/n ratio for
// trade-level samples, which never use the adaptive policy.
const defaultFixedRatio = 0.75

const (
	minMOutOfNRatio = 0.5
	maxMOutOfNRatio = 0.95
)

// MOutOfN is the m-out-of-n percentile bootstrap: it draws resamples of
// length m = ceil(ratio*n) rather than n, optionally rescaling the
// resulting percentile interval by sqrt(m/n). Not safe for concurrent Run
// on the same instance.
type MOutOfN[T any] struct {
	params    EngineParams
	resampler resample.ValueResampler[T]
	ratio     float64 // used when adaptive is false
	adaptive  bool    // true only for NewMOutOfNAdaptive (bar-level only)
	rescale   bool

	hasDiagnostics bool
	last           Candidate
}

// NewMOutOfNFixed constructs an M-out-of-N engine with a caller-supplied
// fixed ratio (e.g. 0.75 for trade-level samples).
func NewMOutOfNFixed[T any](b uint64, cl float64, resampler resample.ValueResampler[T], intervalType sample.IntervalType, ratio float64, rescale bool) (*MOutOfN[T], error) {
	params := EngineParams{B: b, CL: cl, IntervalType: intervalType}
	if err := params.Validate("MOutOfN"); err != nil {
		return nil, err
	}
	if !(ratio > 0 && ratio <= 1) {
		return nil, bootcierr.InvalidArgumentf("MOutOfN", "ratio must be in (0,1], got %v", ratio)
	}
	return &MOutOfN[T]{params: params, resampler: resampler, ratio: ratio, rescale: rescale}, nil
}

// NewMOutOfNAdaptive constructs a bar-level M-out-of-N engine whose ratio
// is derived at Run time from the sample's tail heaviness (Hill
// estimator) and skewness via the TailVolatilityAdaptivePolicy. This
// constructor's signature fixes T = float64, which is this package's
// equivalent of the original's compile-time "SampleType must be scalar
// decimal" constraint: there is no way to call it with
// resample.ValueResampler[sample.Trade].
func NewMOutOfNAdaptive(b uint64, cl float64, resampler resample.ValueResampler[float64], intervalType sample.IntervalType, rescale bool) (*MOutOfN[float64], error) {
	params := EngineParams{B: b, CL: cl, IntervalType: intervalType}
	if err := params.Validate("MOutOfN"); err != nil {
		return nil, err
	}
	return &MOutOfN[float64]{params: params, resampler: resampler, adaptive: true, rescale: rescale}, nil
}

func (e *MOutOfN[T]) B() uint64   { return e.params.B }
func (e *MOutOfN[T]) CL() float64 { return e.params.CL }

func (e *MOutOfN[T]) HasDiagnostics() bool { return e.hasDiagnostics }

func (e *MOutOfN[T]) Diagnostics() (Candidate, error) {
	if !e.hasDiagnostics {
		return Candidate{}, bootcierr.DiagnosticsUnavailableErr("MOutOfN")
	}
	return e.last, nil
}

// hillEstimator computes the Hill tail-index estimator over the top 10%
// of |x| order statistics: for descending absolute order statistics
// X_(1) >= ... >= X_(k+1), hill = (1/k) * sum_{i=1}^{k} ln(X_(i)/X_(k+1)).
// A larger hill value indicates a heavier tail.
func hillEstimator(x []float64) float64 {
	abs := make([]float64, len(x))
	for i, v := range x {
		abs[i] = math.Abs(v)
	}
	// Descending sort.
	for i := 1; i < len(abs); i++ {
		for j := i; j > 0 && abs[j-1] < abs[j]; j-- {
			abs[j-1], abs[j] = abs[j], abs[j-1]
		}
	}
	k := len(abs) / 10
	if k < 1 {
		k = 1
	}
	if k >= len(abs) {
		k = len(abs) - 1
	}
	tailFloor := abs[k]
	if tailFloor <= 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < k; i++ {
		if abs[i] <= 0 {
			continue
		}
		sum += math.Log(abs[i] / tailFloor)
	}
	return sum / float64(k)
}

// adaptiveRatio implements TailVolatilityAdaptivePolicy: it derives ratio
// from the Hill tail estimate and the sample's skewness, clamped to
// [0.5,0.95]. Below minAdaptiveTailObservations there is no meaningful
// tail signal, so it falls back to defaultFixedRatio.
func adaptiveRatio(x []float64) float64 {
	if len(x) < minAdaptiveTailObservations {
		return defaultFixedRatio
	}
	hill := hillEstimator(x)
	skew := stat.Skew(x, nil)

	// Heavier tails (larger hill) and stronger skew push the ratio down
	// (more conservative, smaller m/n); a thin, symmetric tail allows a
	// ratio closer to 1.
	ratio := defaultFixedRatio - 0.15*math.Tanh(hill) - 0.1*math.Tanh(math.Abs(skew))
	if ratio < minMOutOfNRatio {
		ratio = minMOutOfNRatio
	}
	if ratio > maxMOutOfNRatio {
		ratio = maxMOutOfNRatio
	}
	return ratio
}

func (e *MOutOfN[T]) Run(x []T, statFn func([]T) float64, provider rng.Provider) (Candidate, error) {
	n := len(x)
	thetaHat := statFn(x)

	ratio := e.ratio
	if e.adaptive {
		xf, ok := any(x).([]float64)
		if !ok {
			return Candidate{}, bootcierr.InvalidArgumentf("MOutOfN", "adaptive ratio policy requires bar-level float64 samples")
		}
		ratio = adaptiveRatio(xf)
	}

	m := int(math.Ceil(ratio * float64(n)))
	if m < 2 {
		m = 2
	}

	replicates, effective, skipped, err := generateReplicates(x, e.resampler, statFn, provider, e.params, m, "MOutOfN")
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, err
	}

	mean, variance, se, skew := moments(replicates)
	alpha := e.params.Alpha()
	pLo, pHi := tailPercentiles(e.params.IntervalType, alpha)

	qLo, err := percentileType7(replicates, pLo)
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "MOutOfN", "lower quantile failed", err)
	}
	qHi, err := percentileType7(replicates, pHi)
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "MOutOfN", "upper quantile failed", err)
	}

	var lower, upper float64
	if e.rescale {
		scale := math.Sqrt(float64(m) / float64(n))
		lower = thetaHat + scale*(qLo-thetaHat)
		upper = thetaHat + scale*(qHi-thetaHat)
	} else {
		lower, upper = qLo, qHi
	}

	c := Candidate{
		Method:       MethodMOutOfN,
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
