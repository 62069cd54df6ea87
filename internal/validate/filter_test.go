package validate

import (
	"testing"

	"github.com/mlevkov/signalsift/internal/model"
)

func testTiers() model.TierThresholds {
	return model.TierThresholds{
		Verified: 0.90,
		High:     0.75,
		Medium:   0.60,
		Include:  0.40,
	}
}

func TestFilter_Classify(t *testing.T) {
	f := NewConfidenceFilter(testTiers())

	tests := []struct {
		confidence float64
		want       model.Tier
	}{
		{0.99, model.TierVerified},
		{0.90, model.TierVerified}, // Boundaries are inclusive
		{0.89, model.TierHigh},
		{0.75, model.TierHigh},
		{0.74, model.TierMedium},
		{0.60, model.TierMedium},
		{0.59, model.TierLow},
		{0.425, model.TierLow},
		{0.40, model.TierLow},
		{0.39, model.TierExcluded},
		{0.0, model.TierExcluded},
	}

	for _, tt := range tests {
		if got := f.Classify(tt.confidence); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}

func sigWithConfidence(c float64) model.Signal {
	return model.Signal{
		Category:   model.CategoryFinancial,
		Value:      model.SignalValue{Headline: "h", Fact: "f"},
		Confidence: c,
	}
}

func TestFilter_Partition(t *testing.T) {
	f := NewConfidenceFilter(testTiers())

	signals := []model.Signal{
		sigWithConfidence(0.95),
		sigWithConfidence(0.80),
		sigWithConfidence(0.65),
		sigWithConfidence(0.45),
		sigWithConfidence(0.10),
	}

	partitioned := f.Partition(signals)

	counts := map[model.Tier]int{}
	total := 0
	for tier, bucket := range partitioned {
		counts[tier] = len(bucket)
		total += len(bucket)
	}

	if total != len(signals) {
		t.Errorf("Every signal must land in exactly one tier; got %d of %d", total, len(signals))
	}
	for _, tier := range []model.Tier{model.TierVerified, model.TierHigh, model.TierMedium, model.TierLow, model.TierExcluded} {
		if counts[tier] != 1 {
			t.Errorf("Expected 1 signal in tier %s, got %d", tier, counts[tier])
		}
	}
}

func TestFilter_Admit(t *testing.T) {
	f := NewConfidenceFilter(testTiers())

	signals := []model.Signal{
		sigWithConfidence(0.45), // low
		sigWithConfidence(0.95), // verified
		sigWithConfidence(0.10), // excluded
		sigWithConfidence(0.80), // high
	}

	admitted := f.Admit(signals)

	if len(admitted) != 3 {
		t.Fatalf("Expected 3 admitted signals, got %d", len(admitted))
	}

	// Ordered by tier, highest first
	wantTiers := []model.Tier{model.TierVerified, model.TierHigh, model.TierLow}
	wantBadges := []string{"Verified", "High Confidence", "Low Confidence"}
	for i, sig := range admitted {
		if sig.ConfidenceTier != wantTiers[i] {
			t.Errorf("Position %d: expected tier %s, got %s", i, wantTiers[i], sig.ConfidenceTier)
		}
		if sig.ConfidenceBadge != wantBadges[i] {
			t.Errorf("Position %d: expected badge %q, got %q", i, wantBadges[i], sig.ConfidenceBadge)
		}
	}

	for _, sig := range admitted {
		if sig.ConfidenceTier == model.TierLow && !sig.ShowWarning {
			t.Error("Low-tier signals must carry the warning flag")
		}
		if sig.ConfidenceTier != model.TierLow && sig.ShowWarning {
			t.Errorf("Tier %s must not carry the warning flag", sig.ConfidenceTier)
		}
	}
}

func TestFilter_Stats(t *testing.T) {
	f := NewConfidenceFilter(testTiers())

	f.Admit([]model.Signal{
		sigWithConfidence(0.95),
		sigWithConfidence(0.80),
		sigWithConfidence(0.10),
		sigWithConfidence(0.20),
	})

	stats := f.Stats()
	if stats.Total != 4 {
		t.Errorf("Expected 4 total, got %d", stats.Total)
	}
	if stats.PerTier[model.TierExcluded] != 2 {
		t.Errorf("Expected 2 excluded, got %d", stats.PerTier[model.TierExcluded])
	}
	if stats.InclusionRate != 0.5 {
		t.Errorf("Expected inclusion rate 0.5, got %v", stats.InclusionRate)
	}
}
