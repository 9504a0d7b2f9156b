package selector

import (
	"testing"

	"github.com/evdnx/bootci/bootcierr"
	"github.com/evdnx/bootci/bootstrap"
	"github.com/evdnx/bootci/sample"
)

func percentileCandidate(method bootstrap.MethodID, mean, lower, upper, se, skew float64) bootstrap.Candidate {
	return bootstrap.Candidate{
		Method:     method,
		ThetaHat:   mean,
		Mean:       mean,
		Lower:      lower,
		Upper:      upper,
		SEBoot:     se,
		SkewBoot:   skew,
		BEffective: 300,
	}
}

func TestSelectRejectsEmptyCandidateList(t *testing.T) {
	_, err := Select(nil, NonRatioWeights(), sample.Unbounded)
	if err == nil {
		t.Fatal("expected error for empty candidate list")
	}
	if kind, ok := bootcierr.KindOf(err); !ok || kind != bootcierr.NoCandidateSucceeded {
		t.Fatalf("expected NoCandidateSucceeded, got %v", err)
	}
}

func TestSelectPrefersLowerScore(t *testing.T) {
	candidates := []bootstrap.Candidate{
		percentileCandidate(bootstrap.MethodPercentile, 0.10, 0.05, 0.15, 0.02, 0.1),
		percentileCandidate(bootstrap.MethodNormal, 0.10, 0.00, 0.35, 0.05, 1.0),
	}
	res, err := Select(candidates, NonRatioWeights(), sample.Unbounded)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Chosen.Method != bootstrap.MethodPercentile {
		t.Fatalf("expected Percentile (tighter, less skewed) to win, got %v", res.Chosen.Method)
	}
}

func TestSelectTieBreakPrefersBCaOverPercentile(t *testing.T) {
	bca := percentileCandidate(bootstrap.MethodBCa, 0.10, 0.05, 0.15, 0.02, 0.0)
	perc := percentileCandidate(bootstrap.MethodPercentile, 0.10, 0.05, 0.15, 0.02, 0.0)
	res, err := Select([]bootstrap.Candidate{perc, bca}, NonRatioWeights(), sample.Unbounded)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Chosen.Method != bootstrap.MethodBCa {
		t.Fatalf("expected BCa to win an exact score tie, got %v", res.Chosen.Method)
	}
}

func TestSelectDomainPenaltyDisqualifiesNonPositiveLower(t *testing.T) {
	inDomain := percentileCandidate(bootstrap.MethodPercentile, 1.2, 0.9, 1.6, 0.1, 0.0)
	outOfDomain := percentileCandidate(bootstrap.MethodNormal, 1.2, -0.1, 2.5, 0.3, 0.0)
	res, err := Select([]bootstrap.Candidate{inDomain, outOfDomain}, RatioWeights(), sample.StrictlyPositive)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Chosen.Method != bootstrap.MethodPercentile {
		t.Fatalf("expected the in-domain candidate to win despite a worse raw length, got %v", res.Chosen.Method)
	}
}

func TestSelectDomainPenaltyDoesNotDisqualifyEveryoneWhenNoneInDomain(t *testing.T) {
	a := percentileCandidate(bootstrap.MethodPercentile, 1.2, -0.2, 1.6, 0.2, 0.0)
	b := percentileCandidate(bootstrap.MethodNormal, 1.2, -0.1, 3.0, 0.3, 0.0)
	res, err := Select([]bootstrap.Candidate{a, b}, RatioWeights(), sample.StrictlyPositive)
	if err != nil {
		t.Fatalf("expected a winner even though no candidate is in-domain, got error: %v", err)
	}
	if res.Chosen.Method != bootstrap.MethodPercentile {
		t.Fatalf("expected the tighter candidate to win without domain disqualification, got %v", res.Chosen.Method)
	}
}

func TestSelectRejectsUnstableBCa(t *testing.T) {
	unstableBCa := bootstrap.Candidate{
		Method: bootstrap.MethodBCa, ThetaHat: 0.1, Mean: 0.1,
		Lower: 0.05, Upper: 0.15, SEBoot: 0.02, Z0: 0.9, A: 0.0,
	}
	fallback := percentileCandidate(bootstrap.MethodPercentile, 0.1, 0.02, 0.18, 0.02, 0.0)
	res, err := Select([]bootstrap.Candidate{unstableBCa, fallback}, NonRatioWeights(), sample.Unbounded)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Chosen.Method == bootstrap.MethodBCa {
		t.Fatal("expected unstable BCa (|z0| > 0.4) to be rejected")
	}
	if !res.Diagnostics.BCaRejectedForInstability {
		t.Fatal("expected BCaRejectedForInstability to be set")
	}
	if !res.Diagnostics.HasBCa {
		t.Fatal("expected HasBCa to report a BCa candidate was present")
	}
}

func TestSelectRejectsOverlongBCa(t *testing.T) {
	// length_penalty for Percentile/Normal/MOutOfN is small; BCa's is huge.
	percentile := percentileCandidate(bootstrap.MethodPercentile, 0.1, 0.08, 0.12, 0.02, 0.0)
	normal := percentileCandidate(bootstrap.MethodNormal, 0.1, 0.07, 0.13, 0.02, 0.0)
	overlongBCa := bootstrap.Candidate{
		Method: bootstrap.MethodBCa, ThetaHat: 0.1, Mean: 0.1,
		Lower: -0.5, Upper: 0.7, SEBoot: 0.02, Z0: 0.0, A: 0.0,
	}
	res, err := Select([]bootstrap.Candidate{percentile, normal, overlongBCa}, NonRatioWeights(), sample.Unbounded)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Chosen.Method == bootstrap.MethodBCa {
		t.Fatal("expected overlong BCa to be rejected")
	}
	if !res.Diagnostics.BCaRejectedForLength {
		t.Fatal("expected BCaRejectedForLength to be set")
	}
}

func TestSelectDiagnosticsCountsAllCandidates(t *testing.T) {
	candidates := []bootstrap.Candidate{
		percentileCandidate(bootstrap.MethodPercentile, 0.1, 0.05, 0.15, 0.02, 0.0),
		percentileCandidate(bootstrap.MethodBasic, 0.1, 0.04, 0.16, 0.025, 0.0),
		percentileCandidate(bootstrap.MethodNormal, 0.1, 0.06, 0.14, 0.02, 0.0),
	}
	res, err := Select(candidates, NonRatioWeights(), sample.Unbounded)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Diagnostics.NumCandidates != 3 {
		t.Fatalf("expected NumCandidates=3, got %d", res.Diagnostics.NumCandidates)
	}
	if len(res.AllCandidates) != 3 {
		t.Fatalf("expected AllCandidates to retain all 3, got %d", len(res.AllCandidates))
	}
}

func TestSummarizePercentileLikeZeroesZ0AndA(t *testing.T) {
	c := bootstrap.Candidate{Method: bootstrap.MethodNormal, Z0: 1.5, A: 0.3}
	got := SummarizePercentileLike(c)
	if got.Z0 != 0 || got.A != 0 {
		t.Fatalf("expected Z0/A zeroed, got Z0=%v A=%v", got.Z0, got.A)
	}
}

func TestSummarizeBCaPassesThrough(t *testing.T) {
	c := bootstrap.Candidate{Method: bootstrap.MethodBCa, Z0: 0.1, A: 0.02}
	got := SummarizeBCa(c)
	if got.Z0 != 0.1 || got.A != 0.02 {
		t.Fatal("expected SummarizeBCa to pass Z0/A through unchanged")
	}
}

func TestMedianEvenAndOdd(t *testing.T) {
	if got := median([]float64{1, 3, 2}); got != 2 {
		t.Fatalf("median([1,3,2]) = %v, want 2", got)
	}
	if got := median([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Fatalf("median([1,2,3,4]) = %v, want 2.5", got)
	}
	if got := median(nil); got != 0 {
		t.Fatalf("median(nil) = %v, want 0", got)
	}
}
