package bootstrap

import (
	"sync"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
)

// Percentile is the baseline percentile bootstrap: the CI endpoints are
// the type-7 quantiles of the bootstrap replicate distribution at the
// tail allocation tailPercentiles prescribes for the engine's interval
// type. Safe for concurrent Run calls on the same instance: the run and
// every diagnostics read/write are serialized by mu.
type Percentile[T any] struct {
	params    EngineParams
	resampler resample.ValueResampler[T]

	mu             sync.Mutex
	hasDiagnostics bool
	last           Candidate
}

// NewPercentile constructs a Percentile engine.
func NewPercentile[T any](b uint64, cl float64, resampler resample.ValueResampler[T], intervalType sample.IntervalType) (*Percentile[T], error) {
	params := EngineParams{B: b, CL: cl, IntervalType: intervalType}
	if err := params.Validate("Percentile"); err != nil {
		return nil, err
	}
	return &Percentile[T]{params: params, resampler: resampler}, nil
}

func (e *Percentile[T]) B() uint64                      { return e.params.B }
func (e *Percentile[T]) CL() float64                    { return e.params.CL }
func (e *Percentile[T]) Resampler() resample.ValueResampler[T] { return e.resampler }

func (e *Percentile[T]) HasDiagnostics() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasDiagnostics
}

// Diagnostics returns an atomic snapshot of the last successful run's
// candidate, or an error if Run has never succeeded.
func (e *Percentile[T]) Diagnostics() (Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasDiagnostics {
		return Candidate{}, bootcierr.DiagnosticsUnavailableErr("Percentile")
	}
	return e.last, nil
}

// Run executes B replicates of the resampler/stat pair and returns the
// percentile-bootstrap candidate.
func (e *Percentile[T]) Run(x []T, stat func([]T) float64, provider rng.Provider) (Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	thetaHat := stat(x)
	replicates, effective, skipped, err := generateReplicates(x, e.resampler, stat, provider, e.params, len(x), "Percentile")
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, err
	}

	mean, variance, se, skew := moments(replicates)
	alpha := e.params.Alpha()
	pLo, pHi := tailPercentiles(e.params.IntervalType, alpha)

	lower, err := percentileType7(replicates, pLo)
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "Percentile", "lower quantile failed", err)
	}
	upper, err := percentileType7(replicates, pHi)
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, bootcierr.Wrap(bootcierr.InvalidArgument, "Percentile", "upper quantile failed", err)
	}

	c := Candidate{
		Method:       MethodPercentile,
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
