// Package resample implements the resampling primitives the bootstrap
// engines draw from: plain i.i.d. resampling, the Politis-Romano stationary
// block bootstrap (value and restart-mask variants), an index-only variant
// for synchronizing multiple series under shared randomness, and a
// delete-block jackknife used by BCa to estimate its acceleration constant.
//
// Every resampler is generic over the sample element type T, so the same
// code resamples bar-level returns ([]float64) and trade-level records
// ([]sample.Trade) without duplication -- mirroring the original's template
// parameterization over Decimal vs Trade<Decimal>.
package resample

import (
	"math"
	"math/rand/v2"

	"github.com/evdnx/bootci/bootcierr"
)

// ValueResampler draws a resample of length m from x into y, using rng.
// Implementations resize y to m themselves is not required in Go; callers
// pass a correctly-sized y (or Resample via Adapter, which allocates it).
type ValueResampler[T any] interface {
	Fill(x []T, y []T, m int, rng *rand.Rand) error
	L() int
}

// IndexResampler emits a resampled index trajectory over a conceptual
// source of size n, rather than copying values. Two series resampled with
// the same IndexResampler and the same rng state receive identical index
// trajectories -- the mechanism for cross-series synchronized resampling.
type IndexResampler interface {
	FillIndex(n int, out []int, m int, rng *rand.Rand) error
	L() int
}

// ---------------------------------------------------------------------
// IID
// ---------------------------------------------------------------------

// IID draws with replacement, uniformly over indices 0..n-1. It is the
// stationary bootstrap's degenerate case L=1.
type IID[T any] struct{}

func (IID[T]) L() int { return 1 }

func (IID[T]) Fill(x []T, y []T, m int, rng *rand.Rand) error {
	n := len(x)
	if n < 2 {
		return bootcierr.InvalidArgumentf("IID", "x length must be >= 2, got %d", n)
	}
	if m < 2 {
		return bootcierr.InvalidArgumentf("IID", "m must be >= 2, got %d", m)
	}
	if len(y) < m {
		return bootcierr.InvalidArgumentf("IID", "y must have length >= m")
	}
	for t := 0; t < m; t++ {
		y[t] = x[rng.IntN(n)]
	}
	return nil
}

// ---------------------------------------------------------------------
// Stationary block (value mode, doubled-buffer copy)
// ---------------------------------------------------------------------

// StationaryBlockValue implements the Politis-Romano stationary bootstrap
// by drawing geometric block lengths (mean L) and copying contiguous runs
// out of a doubled buffer x++x, avoiding per-element wraparound branching.
type StationaryBlockValue[T any] struct {
	l int
}

// NewStationaryBlockValue constructs a stationary block resampler with mean
// block length L (L >= 1).
func NewStationaryBlockValue[T any](l int) (StationaryBlockValue[T], error) {
	if l < 1 {
		return StationaryBlockValue[T]{}, bootcierr.InvalidArgumentf("StationaryBlockValue", "L must be >= 1, got %d", l)
	}
	return StationaryBlockValue[T]{l: l}, nil
}

func (r StationaryBlockValue[T]) L() int { return r.l }

func (r StationaryBlockValue[T]) Fill(x []T, y []T, m int, rng *rand.Rand) error {
	n := len(x)
	if n < 2 {
		return bootcierr.InvalidArgumentf("StationaryBlockValue", "x length must be >= 2, got %d", n)
	}
	if m < 2 {
		return bootcierr.InvalidArgumentf("StationaryBlockValue", "m must be >= 2, got %d", m)
	}
	if len(y) < m {
		return bootcierr.InvalidArgumentf("StationaryBlockValue", "y must have length >= m")
	}

	x2 := make([]T, 2*n)
	copy(x2, x)
	copy(x2[n:], x)

	p := 1.0
	if r.l > 1 {
		p = 1.0 / float64(r.l)
	}

	wrote := 0
	for wrote < m {
		start := rng.IntN(n)
		run := 1 + geometric(rng, p)
		maxFromStart := 2*n - start
		take := run
		if m-wrote < take {
			take = m - wrote
		}
		if maxFromStart < take {
			take = maxFromStart
		}
		copy(y[wrote:wrote+take], x2[start:start+take])
		wrote += take
	}
	return nil
}

// geometric draws a Geometric(p) variate (number of failures before the
// first success, i.e. support {0,1,2,...}), matching
// std::geometric_distribution's convention used by the original source.
func geometric(rng *rand.Rand, p float64) int {
	if p >= 1.0 {
		return 0
	}
	// Inverse-CDF sampling: k = floor(ln(1-u) / ln(1-p)).
	u := rng.Float64()
	k := math.Floor(math.Log(1-u) / math.Log(1-p))
	if k < 0 || math.IsNaN(k) {
		return 0
	}
	return int(k)
}

// ---------------------------------------------------------------------
// Restart mask
// ---------------------------------------------------------------------

// minRestartProbability is the underflow threshold below which the restart
// probability 1/L is treated as effectively zero: ten times float64
// epsilon, matching make_restart_mask's min_p constant.
const minRestartProbability = 10 * 2.220446049250313e-16

// makeRestartMask builds a length-m Bernoulli(1/L) restart mask with
// mask[0] = 1. When 1/L underflows minRestartProbability (L very large),
// it emits a single all-zero-after-mask[0] block instead of drawing from a
// Bernoulli(~0) distribution.
func makeRestartMask(m int, l float64, rng *rand.Rand) ([]bool, error) {
	if m < 2 {
		return nil, bootcierr.InvalidArgumentf("makeRestartMask", "m must be >= 2, got %d", m)
	}
	if !(l >= 1.0) || math.IsNaN(l) || math.IsInf(l, 0) {
		return nil, bootcierr.InvalidArgumentf("makeRestartMask", "L must be finite and >= 1, got %v", l)
	}

	p := 1.0
	if l > 1.0 {
		p = 1.0 / l
	}
	effectivelyInfiniteL := p < minRestartProbability && l > 1.0

	mask := make([]bool, m)
	mask[0] = true

	if effectivelyInfiniteL {
		return mask, nil
	}
	for t := 1; t < m; t++ {
		mask[t] = rng.Float64() < p
	}
	return mask, nil
}

// ---------------------------------------------------------------------
// Stationary mask (value mode)
// ---------------------------------------------------------------------

// StationaryMaskValue implements the stationary bootstrap via the
// restart-mask formulation: each output position either starts a fresh
// block at a uniform random index, or continues the previous block by
// advancing the source index by +1 (mod n).
type StationaryMaskValue[T any] struct {
	l int
}

func NewStationaryMaskValue[T any](l int) (StationaryMaskValue[T], error) {
	if l < 1 {
		return StationaryMaskValue[T]{}, bootcierr.InvalidArgumentf("StationaryMaskValue", "L must be >= 1, got %d", l)
	}
	return StationaryMaskValue[T]{l: l}, nil
}

func (r StationaryMaskValue[T]) L() int { return r.l }

func (r StationaryMaskValue[T]) Fill(x []T, y []T, m int, rng *rand.Rand) error {
	n := len(x)
	if n < 2 {
		return bootcierr.InvalidArgumentf("StationaryMaskValue", "x length must be >= 2, got %d", n)
	}
	if m < 2 {
		return bootcierr.InvalidArgumentf("StationaryMaskValue", "m must be >= 2, got %d", m)
	}
	if len(y) < m {
		return bootcierr.InvalidArgumentf("StationaryMaskValue", "y must have length >= m")
	}

	mask, err := makeRestartMask(m, float64(r.l), rng)
	if err != nil {
		return err
	}

	pos := 0
	havePos := false
	for t := 0; t < m; t++ {
		if mask[t] || !havePos {
			pos = rng.IntN(n)
			havePos = true
		} else {
			pos++
			if pos == n {
				pos = 0
			}
		}
		y[t] = x[pos]
	}
	return nil
}

// ---------------------------------------------------------------------
// Stationary mask (index mode)
// ---------------------------------------------------------------------

// StationaryMaskIndex emits the index trajectory a StationaryMaskValue
// resampler would use, without copying any values -- used to drive several
// series from the same random index stream (cross-series synchronization).
type StationaryMaskIndex struct {
	l int
}

func NewStationaryMaskIndex(l int) (StationaryMaskIndex, error) {
	if l < 1 {
		return StationaryMaskIndex{}, bootcierr.InvalidArgumentf("StationaryMaskIndex", "L must be >= 1, got %d", l)
	}
	return StationaryMaskIndex{l: l}, nil
}

func (r StationaryMaskIndex) L() int { return r.l }

func (r StationaryMaskIndex) FillIndex(n int, out []int, m int, rng *rand.Rand) error {
	if n < 2 {
		return bootcierr.InvalidArgumentf("StationaryMaskIndex", "n must be >= 2, got %d", n)
	}
	if m < 2 {
		return bootcierr.InvalidArgumentf("StationaryMaskIndex", "m must be >= 2, got %d", m)
	}
	if len(out) < m {
		return bootcierr.InvalidArgumentf("StationaryMaskIndex", "out must have length >= m")
	}

	mask, err := makeRestartMask(m, float64(r.l), rng)
	if err != nil {
		return err
	}

	pos := 0
	havePos := false
	for t := 0; t < m; t++ {
		if mask[t] || !havePos {
			pos = rng.IntN(n)
			havePos = true
		} else {
			pos = (pos + 1) % n
		}
		out[t] = pos
	}
	return nil
}
