package validate

import (
	"github.com/mlevkov/signalsift/internal/model"
)

// ConfidenceFilter is the single admission decision point: each signal's
// final confidence places it in exactly one tier, and only tiers at or
// above the inclusion floor reach the report.
type ConfidenceFilter struct {
	thresholds model.TierThresholds
	stats      model.FilterStats
}

// NewConfidenceFilter creates a filter with the given band boundaries
func NewConfidenceFilter(thresholds model.TierThresholds) *ConfidenceFilter {
	return &ConfidenceFilter{
		thresholds: thresholds,
		stats:      model.FilterStats{PerTier: make(map[model.Tier]int)},
	}
}

// Classify maps a confidence score onto its tier by ordered threshold
// comparison, highest band first.
func (f *ConfidenceFilter) Classify(confidence float64) model.Tier {
	switch {
	case confidence >= f.thresholds.Verified:
		return model.TierVerified
	case confidence >= f.thresholds.High:
		return model.TierHigh
	case confidence >= f.thresholds.Medium:
		return model.TierMedium
	case confidence >= f.thresholds.Include:
		return model.TierLow
	default:
		return model.TierExcluded
	}
}

// Partition splits signals into tiers. Every signal lands in exactly one
// bucket; excluded signals stay visible here for observability even
// though reporting drops them.
func (f *ConfidenceFilter) Partition(signals []model.Signal) map[model.Tier][]model.Signal {
	result := map[model.Tier][]model.Signal{
		model.TierVerified: {},
		model.TierHigh:     {},
		model.TierMedium:   {},
		model.TierLow:      {},
		model.TierExcluded: {},
	}

	for _, sig := range signals {
		tier := f.Classify(sig.Confidence)
		f.stats.Total++
		f.stats.PerTier[tier]++
		result[tier] = append(result[tier], sig)
	}

	return result
}

// Admit returns the signals suitable for reporting, annotated with their
// tier and a display badge, ordered by tier from verified down. Low-tier
// signals carry a warning flag so consumers can surface weak evidence
// without hiding it.
func (f *ConfidenceFilter) Admit(signals []model.Signal) []model.Signal {
	partitioned := f.Partition(signals)

	admitted := make([]model.Signal, 0, len(signals))
	for _, tier := range []model.Tier{model.TierVerified, model.TierHigh, model.TierMedium, model.TierLow} {
		for _, sig := range partitioned[tier] {
			sig.ConfidenceTier = tier
			sig.ConfidenceBadge = badge(tier)
			sig.ShowWarning = tier == model.TierLow
			admitted = append(admitted, sig)
		}
	}

	return admitted
}

// Stats returns a snapshot of the accumulated counters
func (f *ConfidenceFilter) Stats() model.FilterStats {
	stats := f.stats
	stats.PerTier = make(map[model.Tier]int, len(f.stats.PerTier))
	for tier, c := range f.stats.PerTier {
		stats.PerTier[tier] = c
	}
	if stats.Total > 0 {
		stats.InclusionRate = float64(stats.Total-f.stats.PerTier[model.TierExcluded]) / float64(stats.Total)
	}
	return stats
}

func badge(tier model.Tier) string {
	switch tier {
	case model.TierVerified:
		return "Verified"
	case model.TierHigh:
		return "High Confidence"
	case model.TierMedium:
		return "Medium Confidence"
	case model.TierLow:
		return "Low Confidence"
	default:
		return ""
	}
}
