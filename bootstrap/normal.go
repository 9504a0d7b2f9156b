package bootstrap

import (
	"sync"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
)

// effectivelyUnboundedMultiple sets how far past the mean a one-sided
// Normal interval's unused side is pushed: >= 1e6*se_boot.
const effectivelyUnboundedMultiple = 1e6

// Normal is the Wald bootstrap: lower/upper = thetaHat +/- z*se_boot,
// using the bootstrap replicate distribution's standard error. Safe for
// concurrent Run calls on the same instance (mu serializes run and
// diagnostics).
type Normal[T any] struct {
	params    EngineParams
	resampler resample.ValueResampler[T]

	mu             sync.Mutex
	hasDiagnostics bool
	last           Candidate
}

func NewNormal[T any](b uint64, cl float64, resampler resample.ValueResampler[T], intervalType sample.IntervalType) (*Normal[T], error) {
	params := EngineParams{B: b, CL: cl, IntervalType: intervalType}
	if err := params.Validate("Normal"); err != nil {
		return nil, err
	}
	return &Normal[T]{params: params, resampler: resampler}, nil
}

func (e *Normal[T]) B() uint64   { return e.params.B }
func (e *Normal[T]) CL() float64 { return e.params.CL }

func (e *Normal[T]) HasDiagnostics() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasDiagnostics
}

func (e *Normal[T]) Diagnostics() (Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasDiagnostics {
		return Candidate{}, bootcierr.DiagnosticsUnavailableErr("Normal")
	}
	return e.last, nil
}

func (e *Normal[T]) Run(x []T, stat func([]T) float64, provider rng.Provider) (Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	thetaHat := stat(x)
	replicates, effective, skipped, err := generateReplicates(x, e.resampler, stat, provider, e.params, len(x), "Normal")
	if err != nil {
		e.hasDiagnostics = false
		return Candidate{}, err
	}

	mean, variance, se, skew := moments(replicates)
	alpha := e.params.Alpha()

	var lower, upper float64
	switch e.params.IntervalType {
	case sample.OneSidedLower:
		z := invNormCDF(1 - alpha)
		lower = thetaHat - z*se
		upper = mean + effectivelyUnboundedMultiple*se
	case sample.OneSidedUpper:
		z := invNormCDF(1 - alpha)
		upper = thetaHat + z*se
		lower = mean - effectivelyUnboundedMultiple*se
	default:
		z := invNormCDF(1 - alpha/2)
		lower = thetaHat - z*se
		upper = thetaHat + z*se
	}

	c := Candidate{
		Method:       MethodNormal,
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
