// Package orchestrator wires the six bootstrap engines, the CRN provider,
// and the selector into a single tournament: StrategyAutoBootstrap runs
// every enabled engine against one sample and statistic, catches and logs
// per-engine failures, and returns the selector's chosen candidate plus
// full diagnostics.
package orchestrator

import (
	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/bootstrap"
	"github.com/evdnx/bootci/config"
	"github.com/evdnx/bootci/logger"
	"github.com/evdnx/bootci/metrics"
	"github.com/evdnx/bootci/resample"
	"github.com/evdnx/bootci/rng"
	"github.com/evdnx/bootci/sample"
	"github.com/evdnx/bootci/selector"
	"github.com/evdnx/bootci/statistic"
)

// LogSink is the line-oriented diagnostic sink a tournament run writes
// human-readable output to (distinct from the structured logger.Logger):
// any *log.Logger satisfies it as-is.
type LogSink interface {
	Printf(format string, args ...any)
}

// StrategyAutoBootstrap runs the bootstrap tournament for one sample type
// T. Its M-out-of-N dispatch (adaptive tail-volatility ratio vs fixed
// conservative ratio) is fixed at construction time by which constructor
// built it -- NewBarLevelAutoBootstrap vs NewTradeLevelAutoBootstrap --
// matching the engines' own compile-time-equivalent split.
type StrategyAutoBootstrap[T any] struct {
	cfg          config.BootstrapConfiguration
	algos        config.AlgorithmsConfiguration
	resampler    resample.ValueResampler[T]
	intervalType sample.IntervalType
	stat         statistic.Statistic
	reduce       func([]T) float64
	provider     rng.Provider
	structLog    logger.Logger

	buildMOutOfN func() (*bootstrap.MOutOfN[T], error)
}

// NewBarLevelAutoBootstrap builds a tournament over bar-level float64
// returns; its M-out-of-N engine uses the tail-volatility adaptive ratio
// policy, the only sample type that policy is available for.
func NewBarLevelAutoBootstrap(
	cfg config.BootstrapConfiguration,
	algos config.AlgorithmsConfiguration,
	resampler resample.ValueResampler[float64],
	intervalType sample.IntervalType,
	stat statistic.Statistic,
	strategyHash uint64,
	structLog logger.Logger,
) (*StrategyAutoBootstrap[float64], error) {
	if err := cfg.Validate(); err != nil {
		return nil, bootcierr.Wrap(bootcierr.InvalidArgument, "orchestrator", "invalid configuration", err)
	}
	if err := algos.Validate(); err != nil {
		return nil, bootcierr.Wrap(bootcierr.InvalidArgument, "orchestrator", "invalid algorithms configuration", err)
	}
	if structLog == nil {
		structLog = logger.NewNopLogger()
	}
	o := &StrategyAutoBootstrap[float64]{
		cfg: cfg, algos: algos, resampler: resampler, intervalType: intervalType,
		stat: stat, reduce: bootstrap.AdaptBarLevel(stat),
		provider:  rng.NewProvider(0, cfg.StageTag, cfg.BlockSize, cfg.Fold, strategyHash),
		structLog: structLog,
	}
	o.buildMOutOfN = func() (*bootstrap.MOutOfN[float64], error) {
		return bootstrap.NewMOutOfNAdaptive(cfg.NumBootstrapReplications, cfg.ConfidenceLevel, resampler, intervalType, cfg.RescaleMOutOfN)
	}
	return o, nil
}

// NewTradeLevelAutoBootstrap builds a tournament over trade-level records;
// its M-out-of-N engine always uses the fixed conservative ratio from cfg
// (recommended 0.75), since the adaptive policy has no trade-level
// equivalent.
func NewTradeLevelAutoBootstrap(
	cfg config.BootstrapConfiguration,
	algos config.AlgorithmsConfiguration,
	resampler resample.ValueResampler[sample.Trade],
	intervalType sample.IntervalType,
	stat statistic.Statistic,
	strategyHash uint64,
	structLog logger.Logger,
) (*StrategyAutoBootstrap[sample.Trade], error) {
	if err := cfg.Validate(); err != nil {
		return nil, bootcierr.Wrap(bootcierr.InvalidArgument, "orchestrator", "invalid configuration", err)
	}
	if err := algos.Validate(); err != nil {
		return nil, bootcierr.Wrap(bootcierr.InvalidArgument, "orchestrator", "invalid algorithms configuration", err)
	}
	if structLog == nil {
		structLog = logger.NewNopLogger()
	}
	o := &StrategyAutoBootstrap[sample.Trade]{
		cfg: cfg, algos: algos, resampler: resampler, intervalType: intervalType,
		stat: stat, reduce: bootstrap.AdaptTradeLevel(stat),
		provider:  rng.NewProvider(0, cfg.StageTag, cfg.BlockSize, cfg.Fold, strategyHash),
		structLog: structLog,
	}
	o.buildMOutOfN = func() (*bootstrap.MOutOfN[sample.Trade], error) {
		return bootstrap.NewMOutOfNFixed(cfg.NumBootstrapReplications, cfg.ConfidenceLevel, resampler, intervalType, cfg.MOutOfNRatio, cfg.RescaleMOutOfN)
	}
	return o, nil
}

func weightsFor(stat statistic.Statistic) selector.ScoringWeights {
	if stat.IsRatioStatistic() {
		return selector.RatioWeights()
	}
	return selector.NonRatioWeights()
}

// Run executes every enabled engine against x in sequence, converts each
// successful run into a candidate, and delegates the final choice to
// selector.Select. Engine failures are caught, logged, and excluded; if no
// candidate survives, the call fails with NoCandidateSucceeded.
func (o *StrategyAutoBootstrap[T]) Run(x []T, logSink LogSink) (selector.Result, error) {
	metrics.TournamentsRun.Inc()

	var candidates []bootstrap.Candidate

	tryEngine := func(name string, run func() (bootstrap.Candidate, error), summarize func(bootstrap.Candidate) bootstrap.Candidate) {
		c, err := run()
		if err != nil {
			o.structLog.Warn("bootstrap engine failed", logger.Engine(name), logger.Err(err))
			if logSink != nil {
				logSink.Printf("   [AutoCI] %s failed: %v", name, err)
			}
			return
		}
		candidates = append(candidates, summarize(c))
	}

	if o.algos.EnableNormal() {
		tryEngine("Normal", func() (bootstrap.Candidate, error) {
			e, err := bootstrap.NewNormal(o.cfg.NumBootstrapReplications, o.cfg.ConfidenceLevel, o.resampler, o.intervalType)
			if err != nil {
				return bootstrap.Candidate{}, err
			}
			return e.Run(x, o.reduce, o.provider)
		}, selector.SummarizePercentileLike)
	}
	if o.algos.EnableBasic() {
		tryEngine("Basic", func() (bootstrap.Candidate, error) {
			e, err := bootstrap.NewBasic(o.cfg.NumBootstrapReplications, o.cfg.ConfidenceLevel, o.resampler, o.intervalType)
			if err != nil {
				return bootstrap.Candidate{}, err
			}
			return e.Run(x, o.reduce, o.provider)
		}, selector.SummarizePercentileLike)
	}
	if o.algos.EnablePercentile() {
		tryEngine("Percentile", func() (bootstrap.Candidate, error) {
			e, err := bootstrap.NewPercentile(o.cfg.NumBootstrapReplications, o.cfg.ConfidenceLevel, o.resampler, o.intervalType)
			if err != nil {
				return bootstrap.Candidate{}, err
			}
			return e.Run(x, o.reduce, o.provider)
		}, selector.SummarizePercentileLike)
	}
	if o.algos.EnableMOutOfN() {
		tryEngine("MOutOfN", func() (bootstrap.Candidate, error) {
			e, err := o.buildMOutOfN()
			if err != nil {
				return bootstrap.Candidate{}, err
			}
			return e.Run(x, o.reduce, o.provider)
		}, selector.SummarizePercentileLike)
	}
	if o.algos.EnablePercentileT() {
		tryEngine("PercentileT", func() (bootstrap.Candidate, error) {
			e, err := bootstrap.NewPercentileT(o.cfg.PercentileTNumOuterReplications, o.cfg.InnerReplications(), o.cfg.ConfidenceLevel, o.resampler, o.intervalType)
			if err != nil {
				return bootstrap.Candidate{}, err
			}
			return e.Run(x, o.reduce, o.provider)
		}, selector.SummarizePercentileT)
	}
	if o.algos.EnableBCa() {
		tryEngine("BCa", func() (bootstrap.Candidate, error) {
			e, err := bootstrap.NewBCa(o.cfg.NumBootstrapReplications, o.cfg.ConfidenceLevel, o.resampler, o.intervalType)
			if err != nil {
				return bootstrap.Candidate{}, err
			}
			return e.Run(x, o.reduce, o.provider)
		}, selector.SummarizeBCa)
	}

	if len(candidates) == 0 {
		return selector.Result{}, bootcierr.NoCandidateSucceededErr("orchestrator")
	}

	result, err := selector.Select(candidates, weightsFor(o.stat), o.stat.Support())
	if err != nil {
		return selector.Result{}, err
	}

	metrics.SelectedMethod.WithLabelValues(result.Diagnostics.ChosenMethod.String()).Inc()
	if result.Diagnostics.BCaRejectedForInstability {
		metrics.BCaRejected.WithLabelValues("instability").Inc()
	}
	if result.Diagnostics.BCaRejectedForLength {
		metrics.BCaRejected.WithLabelValues("length").Inc()
	}

	if logSink != nil {
		c := result.Chosen
		logSink.Printf("Selected method=%s mean=%v LB=%v UB=%v n=%d B_eff=%d z0=%v a=%v",
			c.Method, c.Mean, c.Lower, c.Upper, len(x), c.BEffective, c.Z0, c.A)
		logSink.Printf("score=%v stability_penalty=%v length_penalty=%v hasBCa=%v bcaChosen=%v bcaRejectedInstability=%v bcaRejectedLength=%v numCandidates=%d",
			result.Diagnostics.ChosenScore, result.Diagnostics.ChosenStabilityPenalty, result.Diagnostics.ChosenLengthPenalty,
			result.Diagnostics.HasBCa, result.Diagnostics.BCaChosen,
			result.Diagnostics.BCaRejectedForInstability, result.Diagnostics.BCaRejectedForLength,
			result.Diagnostics.NumCandidates)
	}

	if result.Diagnostics.ChosenMethod == bootstrap.MethodMOutOfN &&
		(result.Diagnostics.BCaRejectedForInstability || result.Diagnostics.BCaRejectedForLength) {
		bcaCandidate, found := findBCaCandidate(candidates)
		if found {
			stabilityPenalty := absFloat(bcaCandidate.Z0) + 10*absFloat(bcaCandidate.A)
			metrics.SafetyValveTriggered.Inc()
			if logSink != nil {
				logSink.Printf("   [AutoCI] safety-valve triggered: BCa rejected (z0=%v, a=%v, stability_penalty=%v), falling back to MOutOfN",
					bcaCandidate.Z0, bcaCandidate.A, stabilityPenalty)
			}
		}
	}

	return result, nil
}

func findBCaCandidate(candidates []bootstrap.Candidate) (bootstrap.Candidate, bool) {
	for _, c := range candidates {
		if c.Method == bootstrap.MethodBCa {
			return c, true
		}
	}
	return bootstrap.Candidate{}, false
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
