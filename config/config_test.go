package config

import "testing"

func TestBootstrapConfigurationValidateSuccess(t *testing.T) {
	cfg := DefaultBootstrapConfiguration()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestBootstrapConfigurationValidateFailsOnLowB(t *testing.T) {
	cfg := DefaultBootstrapConfiguration()
	cfg.NumBootstrapReplications = 100
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for B < 400")
	}
}

func TestBootstrapConfigurationValidateFailsOnCL(t *testing.T) {
	cfg := DefaultBootstrapConfiguration()
	cfg.ConfidenceLevel = 1.0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for CL == 1.0")
	}

	cfg2 := DefaultBootstrapConfiguration()
	cfg2.ConfidenceLevel = 0.5
	if err := cfg2.Validate(); err == nil {
		t.Fatal("expected validation error for CL == 0.5")
	}
}

func TestBootstrapConfigurationValidateFailsOnBlockSize(t *testing.T) {
	cfg := DefaultBootstrapConfiguration()
	cfg.BlockSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for BlockSize == 0")
	}
}

func TestBootstrapConfigurationValidateFailsOnMOutOfNRatio(t *testing.T) {
	cfg := DefaultBootstrapConfiguration()
	cfg.MOutOfNRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for MOutOfNRatio > 1")
	}
}

func TestInnerReplicationsClamping(t *testing.T) {
	cfg := DefaultBootstrapConfiguration()
	cfg.PercentileTNumOuterReplications = 400
	cfg.PercentileTInnerRatio = 1000 // would derive 0.4, below the floor
	if got := cfg.InnerReplications(); got != MinInnerReplications {
		t.Fatalf("expected clamp to MinInnerReplications (%d), got %d", MinInnerReplications, got)
	}

	cfg.PercentileTNumOuterReplications = 1_000_000
	cfg.PercentileTInnerRatio = 1
	if got := cfg.InnerReplications(); got != MaxInnerReplications {
		t.Fatalf("expected clamp to MaxInnerReplications (%d), got %d", MaxInnerReplications, got)
	}
}

func TestAlgorithmsConfigurationValidate(t *testing.T) {
	var a AlgorithmsConfiguration
	if err := a.Validate(); err == nil {
		t.Fatal("expected error when no engine is enabled")
	}
	a.BCa = true
	if err := a.Validate(); err != nil {
		t.Fatalf("expected no error with one engine enabled, got %v", err)
	}
}

func TestDefaultAlgorithmsConfigurationEnablesAll(t *testing.T) {
	a := DefaultAlgorithmsConfiguration()
	if !(a.EnableNormal() && a.EnableBasic() && a.EnablePercentile() &&
		a.EnableMOutOfN() && a.EnablePercentileT() && a.EnableBCa()) {
		t.Fatal("expected all engines enabled by default")
	}
}
