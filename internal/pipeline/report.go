package pipeline

import (
	"time"

	"github.com/mlevkov/signalsift/internal/model"
)

// buildReport assembles the final report from the admitted signals:
// grouped by metric, summarized, with every stage's statistics attached
// for diagnostics.
func buildReport(company string, sources []model.Source, admitted []model.Signal, stats model.ValidationStats) *model.Report {
	byMetric := make(map[string][]model.Signal)
	regions := make(map[string]int)
	tiers := make(map[model.Tier]bool)
	highConfidence := 0

	for _, sig := range admitted {
		metric := sig.Value.Metric
		if metric == "" {
			metric = string(sig.Category)
		}
		byMetric[metric] = append(byMetric[metric], sig)

		region := sig.Value.Region
		if region == "" {
			region = "Unknown"
		}
		regions[region]++

		tiers[sig.ConfidenceTier] = true
		if sig.ConfidenceTier == model.TierVerified || sig.ConfidenceTier == model.TierHigh {
			highConfidence++
		}
	}

	return &model.Report{
		Company:     company,
		GeneratedAt: time.Now().UTC(),
		Summary: model.ReportSummary{
			TotalSources:    len(sources),
			AdmittedSignals: len(admitted),
			HighConfidence:  highConfidence,
			TiersCovered:    len(tiers),
			MetricsCovered:  len(byMetric),
			Regions:         regions,
		},
		SignalsByMetric: byMetric,
		Signals:         admitted,
		ValidationStats: stats,
	}
}

// emptyReport is the stub produced when a run terminates before signals
// are admitted. It is structurally complete: zero-valued summary, empty
// groupings, the reason recorded, and whatever stage statistics were
// accumulated before the stop.
func emptyReport(company, reason string, sources []model.Source, stats model.ValidationStats) *model.Report {
	return &model.Report{
		Company:     company,
		GeneratedAt: time.Now().UTC(),
		Summary: model.ReportSummary{
			TotalSources: len(sources),
			Regions:      map[string]int{},
			Error:        reason,
		},
		SignalsByMetric: map[string][]model.Signal{},
		Signals:         []model.Signal{},
		ValidationStats: stats,
	}
}
