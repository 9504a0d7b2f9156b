// Package config holds the tunable parameters shared by the bootstrap
// tournament: how many replicates to draw, which confidence level to
// target, and which of the six engines are enabled for a given run.
package config

import (
	"errors"
	"fmt"
)

// BootstrapConfiguration holds the parameters every engine in a tournament
// is built from. A single instance is shared across all six engines so that
// they agree on block size, confidence level, and the seeding coordinates
// used to derive common random numbers (CRN) across strategies.
type BootstrapConfiguration struct {
	// BlockSize is the mean stationary-bootstrap block length L.
	BlockSize uint64

	// ConfidenceLevel is CL in (0.5, 1), e.g. 0.95.
	ConfidenceLevel float64

	// NumBootstrapReplications is B for the single-bootstrap engines
	// (Normal, Basic, Percentile, M-out-of-N, BCa). Must be >= 400.
	NumBootstrapReplications uint64

	// StageTag and Fold feed the CRN provider alongside a strategy hash;
	// they let the same replicate index reproduce identical RNG draws
	// across strategies sharing (StageTag, Fold, BlockSize).
	StageTag uint64
	Fold     uint64

	// PercentileTNumOuterReplications is B_outer for the double bootstrap.
	PercentileTNumOuterReplications uint64

	// PercentileTInnerRatio derives B_inner = B_outer / ratio, clamped to
	// [MinInnerReplications, MaxInnerReplications].
	PercentileTInnerRatio float64

	// RescaleMOutOfN enables the sqrt(m/n) rescaling of the M-out-of-N CI.
	RescaleMOutOfN bool

	// MOutOfNRatio is the fixed subsample ratio rho used at trade level
	// (adaptive ratio selection is bar-level only).
	MOutOfNRatio float64

	// TradeLevelBootstrapping marks that samples are per-trade aggregates
	// rather than per-bar returns. This is informational only: the actual
	// dispatch between adaptive and fixed M-out-of-N ratio is made at
	// compile time via the generic SampleType parameter of the engines,
	// not by this flag (see orchestrator.StrategyAutoBootstrap).
	TradeLevelBootstrapping bool
}

// MinInnerReplications is the minimum number of inner-loop resamples the
// Percentile-T engine will use regardless of PercentileTInnerRatio.
const MinInnerReplications = 25

// MaxInnerReplications caps the inner-loop replicate count so a small ratio
// cannot make the double bootstrap unboundedly expensive.
const MaxInnerReplications = 2000

// DefaultBootstrapConfiguration returns sane production defaults: B = 2000,
// CL = 0.95, block size 5, outer replications for Percentile-T at 600.
func DefaultBootstrapConfiguration() BootstrapConfiguration {
	return BootstrapConfiguration{
		BlockSize:                       5,
		ConfidenceLevel:                 0.95,
		NumBootstrapReplications:        2000,
		StageTag:                        0,
		Fold:                            0,
		PercentileTNumOuterReplications: 600,
		PercentileTInnerRatio:           10.0,
		RescaleMOutOfN:                  true,
		MOutOfNRatio:                    0.75,
		TradeLevelBootstrapping:         false,
	}
}

// InnerReplications derives B_inner from B_outer and the configured ratio,
// clamped to [MinInnerReplications, MaxInnerReplications].
func (c BootstrapConfiguration) InnerReplications() uint64 {
	ratio := c.PercentileTInnerRatio
	if ratio <= 0 {
		ratio = 10.0
	}
	inner := uint64(float64(c.PercentileTNumOuterReplications) / ratio)
	if inner < MinInnerReplications {
		inner = MinInnerReplications
	}
	if inner > MaxInnerReplications {
		inner = MaxInnerReplications
	}
	return inner
}

// Validate checks that every numeric field is within the bounds required by
// the bootstrap engines, returning the first violation encountered so the
// caller gets a clear, single-cause configuration error.
func (c *BootstrapConfiguration) Validate() error {
	if c.NumBootstrapReplications < 400 {
		return fmt.Errorf("NumBootstrapReplications (%d) must be >= 400", c.NumBootstrapReplications)
	}
	if !(c.ConfidenceLevel > 0.5 && c.ConfidenceLevel < 1.0) {
		return fmt.Errorf("ConfidenceLevel (%f) must be in (0.5, 1)", c.ConfidenceLevel)
	}
	if c.BlockSize < 1 {
		return errors.New("BlockSize must be >= 1")
	}
	if c.PercentileTNumOuterReplications < 400 {
		return fmt.Errorf("PercentileTNumOuterReplications (%d) must be >= 400", c.PercentileTNumOuterReplications)
	}
	if c.PercentileTInnerRatio <= 0 {
		return errors.New("PercentileTInnerRatio must be positive")
	}
	if !(c.MOutOfNRatio > 0 && c.MOutOfNRatio <= 1) {
		return fmt.Errorf("MOutOfNRatio (%f) must be in (0, 1]", c.MOutOfNRatio)
	}
	return nil
}

// AlgorithmsConfiguration toggles which of the six engines participate in a
// tournament. All default to enabled; callers disable specific engines to
// trim cost or to exclude a method known to be unsuitable for a statistic.
type AlgorithmsConfiguration struct {
	Normal      bool
	Basic       bool
	Percentile  bool
	MOutOfN     bool
	PercentileT bool
	BCa         bool
}

// DefaultAlgorithmsConfiguration enables every engine.
func DefaultAlgorithmsConfiguration() AlgorithmsConfiguration {
	return AlgorithmsConfiguration{
		Normal:      true,
		Basic:       true,
		Percentile:  true,
		MOutOfN:     true,
		PercentileT: true,
		BCa:         true,
	}
}

func (a AlgorithmsConfiguration) EnableNormal() bool     { return a.Normal }
func (a AlgorithmsConfiguration) EnableBasic() bool       { return a.Basic }
func (a AlgorithmsConfiguration) EnablePercentile() bool  { return a.Percentile }
func (a AlgorithmsConfiguration) EnableMOutOfN() bool     { return a.MOutOfN }
func (a AlgorithmsConfiguration) EnablePercentileT() bool { return a.PercentileT }
func (a AlgorithmsConfiguration) EnableBCa() bool         { return a.BCa }

// Validate ensures at least one engine is enabled; an all-disabled
// configuration can never produce a tournament candidate.
func (a AlgorithmsConfiguration) Validate() error {
	if !a.Normal && !a.Basic && !a.Percentile && !a.MOutOfN && !a.PercentileT && !a.BCa {
		return errors.New("AlgorithmsConfiguration: at least one engine must be enabled")
	}
	return nil
}
