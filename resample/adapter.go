package resample

import (
	"math/rand/v2"

	"github.com/evdnx/bootci/bootcierr"
)

// Adapter wraps a ValueResampler so bootstrap engines can call a
// return-by-value Resample instead of a fill-by-reference Fill, mirroring
// StationaryMaskValueResamplerAdapter's role of bridging the fill-style
// resamplers to the engines' return-by-value call sites.
type Adapter[T any] struct {
	inner ValueResampler[T]
}

// NewAdapter wraps inner.
func NewAdapter[T any](inner ValueResampler[T]) Adapter[T] {
	return Adapter[T]{inner: inner}
}

func (a Adapter[T]) L() int { return a.inner.L() }

// Resample draws a length-m resample of x, allocating the output buffer.
func (a Adapter[T]) Resample(x []T, m int, rng *rand.Rand) ([]T, error) {
	if len(x) == 0 {
		return nil, bootcierr.InvalidArgumentf("Adapter", "empty sample")
	}
	y := make([]T, m)
	if err := a.inner.Fill(x, y, m, rng); err != nil {
		return nil, err
	}
	return y, nil
}

// Jackknife computes the Künsch (1989) non-overlapping delete-block
// jackknife pseudo-values for stat over x, using the resampler's mean
// block length L as the deletion block length:
//
//	L_eff    = min(L, n-2)
//	numBlocks = n / L_eff
//
// producing numBlocks pseudo-values (NOT n), each stat evaluated on x with
// one contiguous length-L_eff block deleted and the remainder
// circularly concatenated back to length n-L_eff. This is a package-level
// generic function rather than a method because Go does not allow
// method-level type parameters: R is the statistic's return type, which
// may differ from the sample element type T (e.g. T = sample.Trade,
// R = float64).
func Jackknife[T any, R any](inner ValueResampler[T], x []T, stat func([]T) R) ([]R, error) {
	n := len(x)
	const minKeep = 2
	if n < minKeep+1 {
		return nil, bootcierr.InvalidArgumentf("Jackknife", "n must be >= 3, got %d", n)
	}

	l := inner.L()
	lEff := l
	if n-minKeep < lEff {
		lEff = n - minKeep
	}
	if lEff < 1 {
		lEff = 1
	}
	if n < lEff+minKeep {
		return nil, bootcierr.InvalidArgumentf("Jackknife",
			"sample too small for delete-block jackknife: n=%d, L_eff=%d", n, lEff)
	}

	keep := n - lEff
	numBlocks := n / lEff

	jk := make([]R, numBlocks)
	y := make([]T, keep)

	for b := 0; b < numBlocks; b++ {
		start := b * lEff
		startKeep := (start + lEff) % n

		tail := keep
		if n-startKeep < tail {
			tail = n - startKeep
		}
		copy(y[:tail], x[startKeep:startKeep+tail])

		head := keep - tail
		if head != 0 {
			copy(y[tail:tail+head], x[:head])
		}

		jk[b] = stat(y)
	}
	return jk, nil
}
