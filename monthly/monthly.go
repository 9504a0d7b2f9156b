// Package monthly aggregates per-bar returns into calendar-month compounded
// returns and derives conservative operational return bounds from them via
// BCa confidence intervals on a lower and an upper quantile -- the
// end-user-facing facade the tournament feeds into (BoundFutureReturns).
package monthly

import (
	"math"
	"sort"
	"time"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/bootstrap"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
)

// BarExposure is one bar of realized exposure: a timestamp, the bar's
// signed return, and whether the position was short (short per-bar returns
// are sign-flipped before compounding, since a price decline is a gain on
// a short).
type BarExposure struct {
	Time   time.Time
	Return float64
	Short  bool
}

type yearMonth struct {
	year, month int
}

func (a yearMonth) less(b yearMonth) bool {
	if a.year != b.year {
		return a.year < b.year
	}
	return a.month < b.month
}

// Build compounds bars into calendar-month returns, chronologically
// ordered: for every bar inside a month, M = M*(1+r_t), month_return =
// M-1. Months with no exposure are simply absent from bars, so they are
// never inserted -- emitting a sparse series by construction rather than
// by post-hoc filtering.
func Build(bars []BarExposure) []float64 {
	mult := make(map[yearMonth]float64)
	for _, b := range bars {
		ym := yearMonth{b.Time.Year(), int(b.Time.Month())}
		r := b.Return
		if b.Short {
			r = -r
		}
		cur, ok := mult[ym]
		if !ok {
			cur = 1
		}
		mult[ym] = cur * (1 + r)
	}

	keys := make([]yearMonth, 0, len(mult))
	for k := range mult {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = mult[k] - 1
	}
	return out
}

// empiricalQuantile computes the order-statistic quantile
// x[max(1,floor(p*(n+1)))-1] with no interpolation, matching the original
// BND_RET quantile convention rather than the Hyndman-Fan type-7 quantile
// statistic.Quantile implements elsewhere in this module -- BoundFutureReturns'
// point quantile is deliberately the simpler order-statistic form.
func empiricalQuantile(x []float64, p float64) float64 {
	scratch := make([]float64, len(x))
	copy(scratch, x)
	sort.Float64s(scratch)
	n := len(scratch)
	if p <= 0 {
		return scratch[0]
	}
	if p >= 1 {
		return scratch[n-1]
	}
	m := int(math.Floor(p * float64(n+1)))
	if m < 1 {
		m = 1
	}
	if m > n {
		m = n
	}
	return scratch[m-1]
}

// AutoBlockLength suggests a stationary-block length from the monthly
// series' own autocorrelation: the first lag in [1,6] whose sample ACF
// magnitude falls below the 2/sqrt(n) white-noise threshold, clamped to
// [2,6]. Falls back to 6 if no lag qualifies within the window.
func AutoBlockLength(monthly []float64) int {
	const minLen, maxLen = 2, 6
	n := len(monthly)
	if n < 4 {
		return minLen
	}
	threshold := 2 / math.Sqrt(float64(n))

	mean := 0.0
	for _, v := range monthly {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	for _, v := range monthly {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		return minLen
	}

	maxLag := maxLen
	if n-1 < maxLag {
		maxLag = n - 1
	}
	for k := 1; k <= maxLag; k++ {
		var cov float64
		for t := 0; t < n-k; t++ {
			cov += (monthly[t] - mean) * (monthly[t+k] - mean)
		}
		acf := cov / variance
		if math.Abs(acf) < threshold {
			if k < minLen {
				return minLen
			}
			return k
		}
	}
	return maxLen
}

// Options configures BoundFutureReturns' quantile targets, bootstrap
// parameters, and interval-type policy.
type Options struct {
	BlockLen        int
	LowerQuantileP  float64
	UpperQuantileP  float64
	NumBootstraps   uint64
	ConfidenceLevel float64
	IntervalType    sample.IntervalType
	Seed            uint64
}

// DefaultOptions mirrors the original's defaults: block length 3, quantiles
// at the 10th/90th percentile, B=5000, cl=0.95, two-sided.
func DefaultOptions() Options {
	return Options{
		BlockLen:        3,
		LowerQuantileP:  0.10,
		UpperQuantileP:  0.90,
		NumBootstraps:   5000,
		ConfidenceLevel: 0.95,
		IntervalType:    sample.TwoSided,
	}
}

func (o Options) validate() error {
	if !(o.LowerQuantileP > 0 && o.LowerQuantileP < 0.5) {
		return bootcierr.InvalidArgumentf("BoundFutureReturns", "LowerQuantileP must be in (0,0.5), got %v", o.LowerQuantileP)
	}
	if !(o.UpperQuantileP > 0.5 && o.UpperQuantileP < 1.0) {
		return bootcierr.InvalidArgumentf("BoundFutureReturns", "UpperQuantileP must be in (0.5,1), got %v", o.UpperQuantileP)
	}
	if o.NumBootstraps < 1000 {
		return bootcierr.InvalidArgumentf("BoundFutureReturns", "NumBootstraps must be >= 1000, got %d", o.NumBootstraps)
	}
	if !(o.ConfidenceLevel > 0 && o.ConfidenceLevel < 1.0) {
		return bootcierr.InvalidArgumentf("BoundFutureReturns", "ConfidenceLevel must be in (0,1), got %v", o.ConfidenceLevel)
	}
	if o.BlockLen < 1 {
		return bootcierr.InvalidArgumentf("BoundFutureReturns", "BlockLen must be >= 1, got %d", o.BlockLen)
	}
	return nil
}

// quantileCI pairs a quantile's point estimate with its BCa endpoints.
type quantileCI struct {
	point, lo, hi float64
}

// BoundFutureReturns derives conservative operational return bounds from a
// monthly return series: a BCa confidence interval on a lower quantile and
// one on an upper quantile, exposing either their CI endpoints
// (conservative policy, the default) or the raw point quantiles (point
// policy).
type BoundFutureReturns struct {
	opts    Options
	monthly []float64

	lowerCI quantileCI
	upperCI quantileCI

	operationalLower float64
	operationalUpper float64
}

// NewFromBars builds monthly returns from bars via Build, then delegates
// to NewFromMonthlyReturns.
func NewFromBars(bars []BarExposure, opts Options) (*BoundFutureReturns, error) {
	return NewFromMonthlyReturns(Build(bars), opts)
}

// NewFromMonthlyReturns accepts a pre-built monthly return series directly,
// avoiding recomputation when the caller already has it.
func NewFromMonthlyReturns(monthly []float64, opts Options) (*BoundFutureReturns, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(monthly) < 8 {
		return nil, bootcierr.InvalidArgumentf("BoundFutureReturns",
			"need at least 8 months to estimate quantile bounds robustly, got %d", len(monthly))
	}

	lowerIntervalType := sample.TwoSided
	upperIntervalType := sample.TwoSided
	if opts.IntervalType != sample.TwoSided {
		lowerIntervalType = sample.OneSidedLower
		upperIntervalType = sample.OneSidedUpper
	}

	resampler, err := resample.NewStationaryBlockValue[float64](opts.BlockLen)
	if err != nil {
		return nil, err
	}

	statLower := func(v []float64) float64 { return empiricalQuantile(v, opts.LowerQuantileP) }
	statUpper := func(v []float64) float64 { return empiricalQuantile(v, opts.UpperQuantileP) }

	provider := rng.NewProvider(opts.Seed, 0, uint64(opts.BlockLen), 0, 0)

	lowerEngine, err := bootstrap.NewBCa[float64](opts.NumBootstraps, opts.ConfidenceLevel, resampler, lowerIntervalType)
	if err != nil {
		return nil, err
	}
	lowerCandidate, err := lowerEngine.Run(monthly, statLower, provider)
	if err != nil {
		return nil, err
	}

	upperEngine, err := bootstrap.NewBCa[float64](opts.NumBootstraps, opts.ConfidenceLevel, resampler, upperIntervalType)
	if err != nil {
		return nil, err
	}
	upperCandidate, err := upperEngine.Run(monthly, statUpper, provider)
	if err != nil {
		return nil, err
	}

	b := &BoundFutureReturns{
		opts:    opts,
		monthly: monthly,
		lowerCI: quantileCI{point: statLower(monthly), lo: lowerCandidate.Lower, hi: lowerCandidate.Upper},
		upperCI: quantileCI{point: statUpper(monthly), lo: upperCandidate.Lower, hi: upperCandidate.Upper},
	}
	b.UseConservativePolicy()
	return b, nil
}

// GetLowerBound returns the currently active policy's lower operational
// bound.
func (b *BoundFutureReturns) GetLowerBound() float64 { return b.operationalLower }

// GetUpperBound returns the currently active policy's upper operational
// bound.
func (b *BoundFutureReturns) GetUpperBound() float64 { return b.operationalUpper }

// UseConservativePolicy sets the operational bounds to the BCa CI
// endpoints: the lower quantile's lower endpoint, the upper quantile's
// upper endpoint.
func (b *BoundFutureReturns) UseConservativePolicy() {
	b.operationalLower = b.lowerCI.lo
	b.operationalUpper = b.upperCI.hi
}

// UsePointPolicy sets the operational bounds to the raw point quantiles
// instead of the CI endpoints.
func (b *BoundFutureReturns) UsePointPolicy() {
	b.operationalLower = b.lowerCI.point
	b.operationalUpper = b.upperCI.point
}

func (b *BoundFutureReturns) LowerPointQuantile() float64 { return b.lowerCI.point }
func (b *BoundFutureReturns) UpperPointQuantile() float64 { return b.upperCI.point }
func (b *BoundFutureReturns) MonthlyReturns() []float64   { return b.monthly }
