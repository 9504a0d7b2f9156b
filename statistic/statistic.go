// Package statistic implements the functors the bootstrap engines estimate
// confidence intervals for: mean, geometric mean, profit factor (classical
// and log-compressed), log profit factor (classical and robust), a
// profitability pair, a Hyndman-Fan type-7 quantile, and Sharpe ratio. Each
// statistic declares its domain (Support) and whether it is a ratio
// statistic, so the auto-selector can penalize out-of-domain candidates.
package statistic

import (
	"math"
	"sort"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/sample"
)

// Statistic is a callable estimator over a sample of bar-level returns.
type Statistic interface {
	Apply(x []float64) (float64, error)
	IsRatioStatistic() bool
	Support() sample.Support
}

// profitFactorSentinel is returned when the denominator (sum of losses) is
// zero -- i.e. a sample with no losing observations.
const profitFactorSentinel = 100.0

// ---------------------------------------------------------------------
// Mean
// ---------------------------------------------------------------------

// Mean computes (1/n) sum(x_i). Unbounded support, not a ratio statistic.
type Mean struct{}

func (Mean) IsRatioStatistic() bool   { return false }
func (Mean) Support() sample.Support  { return sample.Unbounded }
func (Mean) Apply(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x)), nil
}

// ---------------------------------------------------------------------
// Geometric mean
// ---------------------------------------------------------------------

// GeometricMean computes exp((1/n) sum(log(1+x_i))) - 1. By default it
// fails if any 1+x_i <= 0 (ruin); ClipRuin mode instead clamps x_i to
// -1+RuinEpsilon before taking the log, guaranteeing a finite result.
type GeometricMean struct {
	ClipRuin     bool
	RuinEpsilon  float64 // default 1e-6 when zero
}

func (GeometricMean) IsRatioStatistic() bool  { return false }
func (GeometricMean) Support() sample.Support { return sample.Unbounded }

func (g GeometricMean) Apply(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, nil
	}
	eps := g.RuinEpsilon
	if eps == 0 {
		eps = 1e-6
	}
	sum := 0.0
	for _, v := range x {
		onePlus := 1 + v
		if onePlus <= 0 {
			if !g.ClipRuin {
				return 0, bootcierr.DomainErrorf("GeometricMean", "1+x <= 0 at return %v (ruin)", v)
			}
			onePlus = eps
		}
		sum += math.Log(onePlus)
	}
	return math.Exp(sum/float64(len(x))) - 1, nil
}

// ---------------------------------------------------------------------
// Profit factor (classical)
// ---------------------------------------------------------------------

// ProfitFactor computes sum(max(x,0)) / |sum(min(x,0))|, returning the
// sentinel 100 when the sample has no losses. LogCompress applies
// log(1+PF) to the result, still subject to the same sentinel policy.
type ProfitFactor struct {
	LogCompress bool
}

func (ProfitFactor) IsRatioStatistic() bool  { return true }
func (ProfitFactor) Support() sample.Support { return sample.StrictlyPositive }

func (p ProfitFactor) Apply(x []float64) (float64, error) {
	gains, losses := sumGainsLosses(x)
	pf := ratioOrSentinel(gains, losses)
	if p.LogCompress {
		return math.Log(1 + pf), nil
	}
	return pf, nil
}

func sumGainsLosses(x []float64) (gains, losses float64) {
	for _, v := range x {
		if v > 0 {
			gains += v
		} else if v < 0 {
			losses += -v
		}
	}
	return gains, losses
}

func ratioOrSentinel(numerator, denominator float64) float64 {
	if denominator == 0 {
		return profitFactorSentinel
	}
	return numerator / denominator
}

// ---------------------------------------------------------------------
// Log profit factor (classical & robust)
// ---------------------------------------------------------------------

// LogProfitFactor computes the profit factor of log-returns log(1+r)
// rather than raw returns: sum of positive log-returns over the absolute
// sum of negative ones, same zero-denominator sentinel as ProfitFactor.
// Observations with 1+r <= 0 are excluded from the classical variant
// (matching the profit-factor's r > -1 domain restriction) unless Robust
// is set.
type LogProfitFactor struct {
	// Robust applies a ridge prior to the denominator and clamps ruin
	// events instead of excluding them, guaranteeing a finite, non-negative
	// output for any finite input.
	Robust bool
	// PriorStrength scales the ridge floor added to the denominator in
	// robust mode (default 1.0 when zero).
	PriorStrength float64
	// DenomFloor is the absolute ridge floor added to the denominator in
	// robust mode (default 1e-3 when zero).
	DenomFloor float64
	// RuinClipEpsilon is the floor applied to 1+r before taking the log in
	// robust mode (default 1e-6 when zero).
	RuinClipEpsilon float64
}

func (LogProfitFactor) IsRatioStatistic() bool  { return true }
func (LogProfitFactor) Support() sample.Support { return sample.StrictlyPositive }

func (l LogProfitFactor) Apply(x []float64) (float64, error) {
	if l.Robust {
		return l.applyRobust(x)
	}
	return l.applyClassical(x)
}

func (l LogProfitFactor) applyClassical(x []float64) (float64, error) {
	var gains, losses float64
	for _, v := range x {
		onePlus := 1 + v
		if onePlus <= 0 {
			continue
		}
		lr := math.Log(onePlus)
		if lr > 0 {
			gains += lr
		} else if lr < 0 {
			losses += -lr
		}
	}
	return ratioOrSentinel(gains, losses), nil
}

func (l LogProfitFactor) applyRobust(x []float64) (float64, error) {
	eps := l.RuinClipEpsilon
	if eps == 0 {
		eps = 1e-6
	}
	priorStrength := l.PriorStrength
	if priorStrength == 0 {
		priorStrength = 1.0
	}
	denomFloor := l.DenomFloor
	if denomFloor == 0 {
		denomFloor = 1e-3
	}

	var gains, losses float64
	for _, v := range x {
		onePlus := 1 + v
		if onePlus <= 0 {
			onePlus = eps
		}
		lr := math.Log(onePlus)
		if lr > 0 {
			gains += lr
		} else if lr < 0 {
			losses += -lr
		}
	}
	denom := losses + priorStrength*denomFloor
	if denom <= 0 {
		return profitFactorSentinel, nil
	}
	return gains / denom, nil
}

// ---------------------------------------------------------------------
// Profitability pair
// ---------------------------------------------------------------------

// Profitability computes the pair (PF, p) where p = 100*PF/(PF+R_wl) and
// R_wl = (average win)/(average |loss|). PF and P expose the pair's
// members after Apply runs; Apply itself returns P (the statistic most
// bootstrap engines estimate an interval for), keeping a single scalar
// Apply with auxiliary fields for the rest.
type Profitability struct {
	PF float64
	P  float64
}

func (*Profitability) IsRatioStatistic() bool  { return false }
func (*Profitability) Support() sample.Support { return sample.ClosedUnitInterval }

func (pr *Profitability) Apply(x []float64) (float64, error) {
	gains, losses := sumGainsLosses(x)
	pf := ratioOrSentinel(gains, losses)

	var winSum, winCount, lossSum, lossCount float64
	for _, v := range x {
		if v > 0 {
			winSum += v
			winCount++
		} else if v < 0 {
			lossSum += -v
			lossCount++
		}
	}
	avgWin := 0.0
	if winCount > 0 {
		avgWin = winSum / winCount
	}
	avgLoss := 0.0
	if lossCount > 0 {
		avgLoss = lossSum / lossCount
	}
	rWL := 0.0
	if avgLoss > 0 {
		rWL = avgWin / avgLoss
	}

	var p float64
	if pf+rWL == 0 {
		p = 0
	} else {
		p = 100 * pf / (pf + rWL)
	}
	pr.PF = pf
	pr.P = p
	return p, nil
}

// ---------------------------------------------------------------------
// Quantile (Hyndman-Fan type 7)
// ---------------------------------------------------------------------

// Quantile computes the Hyndman-Fan type-7 sample quantile at probability
// P (clamped to [0,1]). Support mirrors the input's declared support,
// since a quantile of a bounded series stays within that bound.
type Quantile struct {
	P              float64
	DeclaredSupport sample.Support
}

func (Quantile) IsRatioStatistic() bool { return false }
func (q Quantile) Support() sample.Support {
	return q.DeclaredSupport
}

func (q Quantile) Apply(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, bootcierr.InvalidArgumentf("Quantile", "empty sample")
	}
	p := q.P
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	if len(x) == 1 {
		return x[0], nil
	}

	scratch := make([]float64, len(x))
	copy(scratch, x)
	sort.Float64s(scratch)

	n := len(scratch)
	h := (float64(n)-1)*p + 1
	lo := int(math.Floor(h))
	if lo < 1 {
		lo = 1
	}
	if lo > n {
		lo = n
	}
	hi := lo + 1
	if hi > n {
		hi = n
	}
	frac := h - math.Floor(h)
	return scratch[lo-1] + frac*(scratch[hi-1]-scratch[lo-1]), nil
}

// ---------------------------------------------------------------------
// Sharpe
// ---------------------------------------------------------------------

// Sharpe computes (mean - rf) / sqrt(var + eps) * sqrt(periodsPerYear).
// A degenerate zero-variance sample with Eps == 0 yields 0 rather than
// dividing by zero.
type Sharpe struct {
	RiskFreeRate  float64
	PeriodsPerYear float64
	Eps           float64
}

func (Sharpe) IsRatioStatistic() bool  { return false }
func (Sharpe) Support() sample.Support { return sample.Unbounded }

func (s Sharpe) Apply(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, nil
	}
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	variance := 0.0
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(x))

	denom := variance + s.Eps
	if denom <= 0 {
		return 0, nil
	}
	periodsPerYear := s.PeriodsPerYear
	if periodsPerYear == 0 {
		periodsPerYear = 1
	}
	return (mean - s.RiskFreeRate) / math.Sqrt(denom) * math.Sqrt(periodsPerYear), nil
}

// ---------------------------------------------------------------------
// Trade-level adaptation
// ---------------------------------------------------------------------

// TradeReturns extracts each trade's compounded return, the aggregate the
// bar-level statistics above operate on for trade-level bootstrapping.
func TradeReturns(trades []sample.Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.CompoundReturn()
	}
	return out
}

// OnTrades adapts a bar-level Statistic to operate over trade-level
// samples by first compounding each trade to a single return, matching
// the original's template parameterization over Trade<Decimal> for the
// same statistic functors.
func OnTrades(stat Statistic, trades []sample.Trade) (float64, error) {
	return stat.Apply(TradeReturns(trades))
}
