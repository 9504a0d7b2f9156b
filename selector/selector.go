// Package selector scores the candidate confidence intervals the six
// bootstrap engines produce and picks a winner: a weighted combination of
// center-shift, skew, interval length, and (for BCa) stability, with a
// domain penalty for ratio statistics and acceptance gates that can
// disqualify an unstable or overlong BCa candidate outright.
package selector

import (
	"math"
	"sort"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/bootstrap"
	"github.com/evdnx/bootci/sample"
)

// ScoringWeights holds the four term weights in the selector's score.
type ScoringWeights struct {
	WCenterShift float64
	WSkew        float64
	WLength      float64
	WStability   float64
}

// RatioWeights is the weighting regime for ratio statistics (profit
// factor, log profit factor): stability and length dominate over
// sensitivity to skew, since these statistics are more prone to heavy
// tails than to asymmetric bootstrap distributions.
func RatioWeights() ScoringWeights {
	return ScoringWeights{WCenterShift: 0.25, WSkew: 0.5, WLength: 0.75, WStability: 1.5}
}

// NonRatioWeights is the weighting regime for non-ratio statistics (mean,
// Sharpe, profitability): center-shift fidelity and stability carry the
// full weight, with interval length weighted lightly.
func NonRatioWeights() ScoringWeights {
	return ScoringWeights{WCenterShift: 1.0, WSkew: 0.5, WLength: 0.25, WStability: 1.0}
}

// domainPenalty is added to a ratio statistic's score when its interval's
// lower bound is non-positive and at least one candidate is in-domain --
// large enough to outrank any realistic combination of the other terms.
const domainPenalty = 1e6

// bcaInstabilityZ0Gate and bcaInstabilityAGate mirror bootstrap.InstabilityGate's
// thresholds; duplicated here (rather than imported) because the gate is a
// selection-time acceptance criterion, distinct from the engine's own
// fallback-to-percentile decision.
const (
	bcaInstabilityZ0Gate = 0.4
	bcaInstabilityAGate  = 0.1
	bcaLengthGateRatio   = 1.75
	minScale             = 1e-12
)

// Diagnostics is the selector's explanation of its choice, surfaced
// verbatim in the orchestrator's required log lines.
type Diagnostics struct {
	ChosenMethod              bootstrap.MethodID
	ChosenScore               float64
	HasBCa                    bool
	BCaChosen                 bool
	BCaRejectedForInstability bool
	BCaRejectedForLength      bool
	NumCandidates             int
	ChosenStabilityPenalty    float64
	ChosenLengthPenalty       float64
}

// Result is what Select returns: the winning candidate, every candidate
// considered, and the diagnostics explaining the choice.
type Result struct {
	Chosen        bootstrap.Candidate
	AllCandidates []bootstrap.Candidate
	Diagnostics   Diagnostics
}

// scored pairs a candidate with its computed score and penalty terms.
type scored struct {
	candidate        bootstrap.Candidate
	score            float64
	lengthPenalty    float64
	stabilityPenalty float64
	eligible         bool
}

// methodPriority ranks methods for score ties, lower value wins:
// BCa > PercentileT > Percentile > Basic > Normal > MOutOfN.
func methodPriority(m bootstrap.MethodID) int {
	switch m {
	case bootstrap.MethodBCa:
		return 0
	case bootstrap.MethodPercentileT:
		return 1
	case bootstrap.MethodPercentile:
		return 2
	case bootstrap.MethodBasic:
		return 3
	case bootstrap.MethodNormal:
		return 4
	case bootstrap.MethodMOutOfN:
		return 5
	default:
		return 99
	}
}

// SummarizePercentileLike normalizes a candidate from Normal, Basic,
// Percentile, or MOutOfN: these engines never populate Z0/A, so it zeroes
// them defensively to guarantee the scoring formula's "stability_penalty=0
// for non-BCa" assumption holds even if an engine left stray values.
func SummarizePercentileLike(c bootstrap.Candidate) bootstrap.Candidate {
	c.Z0, c.A = 0, 0
	return c
}

// SummarizePercentileT normalizes a PercentileT candidate the same way:
// its studentized pivot has no z0/a analogue.
func SummarizePercentileT(c bootstrap.Candidate) bootstrap.Candidate {
	c.Z0, c.A = 0, 0
	return c
}

// SummarizeBCa passes a BCa candidate through unchanged: its Z0/A are the
// only fields the scoring formula's stability penalty reads.
func SummarizeBCa(c bootstrap.Candidate) bootstrap.Candidate {
	return c
}

// Select scores candidates and returns the winner plus full diagnostics.
func Select(candidates []bootstrap.Candidate, weights ScoringWeights, support sample.Support) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, bootcierr.NoCandidateSucceededErr("selector")
	}

	scores := make([]scored, len(candidates))
	for i, c := range candidates {
		scale := c.SEBoot
		if scale <= 0 {
			scale = minScale
		}
		lengthPenalty := (c.Upper - c.Lower) / scale
		var stabilityPenalty float64
		if c.Method == bootstrap.MethodBCa {
			stabilityPenalty = math.Abs(c.Z0) + 10*math.Abs(c.A)
		}
		centerShift := math.Abs(c.Mean-c.ThetaHat) / scale
		score := weights.WCenterShift*centerShift +
			weights.WSkew*math.Abs(c.SkewBoot) +
			weights.WLength*lengthPenalty +
			weights.WStability*stabilityPenalty
		scores[i] = scored{candidate: c, score: score, lengthPenalty: lengthPenalty, stabilityPenalty: stabilityPenalty, eligible: true}
	}

	// Domain penalty: disqualify non-positive-lower candidates for ratio
	// statistics, unless doing so would disqualify every candidate.
	if support == sample.StrictlyPositive {
		anyInDomain := false
		for _, s := range scores {
			if s.candidate.Lower > 0 {
				anyInDomain = true
				break
			}
		}
		if anyInDomain {
			for i := range scores {
				if scores[i].candidate.Lower <= 0 {
					scores[i].score += domainPenalty
				}
			}
		}
	}

	// BCa acceptance gates: instability, or length far beyond the
	// percentile-like candidates' typical length.
	var diag Diagnostics
	var percentileLikeLengths []float64
	for _, s := range scores {
		switch s.candidate.Method {
		case bootstrap.MethodNormal, bootstrap.MethodBasic, bootstrap.MethodPercentile, bootstrap.MethodMOutOfN:
			percentileLikeLengths = append(percentileLikeLengths, s.lengthPenalty)
		}
	}
	medianPercentileLikeLength := median(percentileLikeLengths)

	for i := range scores {
		if scores[i].candidate.Method != bootstrap.MethodBCa {
			continue
		}
		diag.HasBCa = true
		z0, a := scores[i].candidate.Z0, scores[i].candidate.A
		if math.Abs(z0) > bcaInstabilityZ0Gate || math.Abs(a) > bcaInstabilityAGate {
			scores[i].eligible = false
			diag.BCaRejectedForInstability = true
		}
		if medianPercentileLikeLength > 0 && scores[i].lengthPenalty > bcaLengthGateRatio*medianPercentileLikeLength {
			scores[i].eligible = false
			diag.BCaRejectedForLength = true
		}
	}

	// Pick the lowest-scoring eligible candidate, breaking ties by method
	// priority.
	best := -1
	for i := range scores {
		if !scores[i].eligible {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if scores[i].score < scores[best].score {
			best = i
			continue
		}
		if scores[i].score == scores[best].score &&
			methodPriority(scores[i].candidate.Method) < methodPriority(scores[best].candidate.Method) {
			best = i
		}
	}
	if best == -1 {
		return Result{}, bootcierr.NoCandidateSucceededErr("selector")
	}

	diag.ChosenMethod = scores[best].candidate.Method
	diag.ChosenScore = scores[best].score
	diag.NumCandidates = len(candidates)
	diag.ChosenStabilityPenalty = scores[best].stabilityPenalty
	diag.ChosenLengthPenalty = scores[best].lengthPenalty
	diag.BCaChosen = scores[best].candidate.Method == bootstrap.MethodBCa

	return Result{
		Chosen:        scores[best].candidate,
		AllCandidates: candidates,
		Diagnostics:   diag,
	}, nil
}

// median computes the sample median via a full sort; used only over the
// small number of percentile-like candidates (at most four), so no need
// for a selection algorithm.
func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
