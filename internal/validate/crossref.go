package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mlevkov/signalsift/internal/model"
	"github.com/mlevkov/signalsift/internal/textutil"
)

// CrossReferenceValidator corroborates a signal by searching the other
// sources for its key attributes, then moves confidence toward the
// corroboration evidence. It never rejects; admission stays the
// confidence filter's job.
type CrossReferenceValidator struct {
	cfg   model.CrossRefConfig
	stats model.CrossRefStats
}

// NewCrossReferenceValidator creates the validator with the configured
// boost/penalty policy
func NewCrossReferenceValidator(cfg model.CrossRefConfig) *CrossReferenceValidator {
	return &CrossReferenceValidator{cfg: cfg}
}

// FindCorroboratingSources returns the URLs of sources other than the
// signal's own that mention its key attributes. A source corroborates
// only when at least two search terms occur in it; one shared number or
// word is coincidence, not evidence.
func (v *CrossReferenceValidator) FindCorroboratingSources(sig *model.Signal, sources []model.Source) []string {
	terms := searchTerms(sig.Value)
	if len(terms) == 0 {
		return nil
	}

	var corroborating []string
	for _, src := range sources {
		if src.URL == sig.SourceURL || src.RawText == "" {
			continue
		}

		text := textutil.Normalize(src.RawText)
		matches := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				matches++
			}
		}
		if matches >= 2 {
			corroborating = append(corroborating, src.URL)
		}
	}

	return corroborating
}

// Corroborate runs cross-referencing over every signal, annotating
// corroboration metadata and adjusting confidence in place.
//
// Policy: count >= MinSourcesForBoost boosts confidence by
// min(MaxBoost, count*BoostPerSource), capped at ConfidenceCap. A count
// of zero applies the single-source multiplicative penalty. Counts in
// between leave confidence untouched; the evidence is ambiguous and
// deliberately neither rewarded nor punished.
func (v *CrossReferenceValidator) Corroborate(signals []model.Signal, sources []model.Source) []model.Signal {
	for i := range signals {
		sig := &signals[i]
		v.stats.TotalChecked++

		corroborating := v.FindCorroboratingSources(sig, sources)
		sig.CorroboratingSources = corroborating
		sig.CorroborationCount = len(corroborating)

		switch {
		case len(corroborating) >= v.cfg.MinSourcesForBoost:
			boost := float64(len(corroborating)) * v.cfg.BoostPerSource
			if boost > v.cfg.MaxBoost {
				boost = v.cfg.MaxBoost
			}
			newConf := sig.Confidence + boost
			if newConf > v.cfg.ConfidenceCap {
				newConf = v.cfg.ConfidenceCap
			}
			sig.Confidence = newConf
			sig.ConfidenceBoost = fmt.Sprintf("+%.2f (%d sources)", boost, len(corroborating))
			v.stats.WithCorroboration++

		case len(corroborating) == 0:
			sig.Confidence *= 1 - v.cfg.SingleSourcePenalty
			sig.ConfidencePenalty = fmt.Sprintf("-%.0f%% (single source)", v.cfg.SingleSourcePenalty*100)
			v.stats.SingleSource++
		}
	}

	return signals
}

// Stats returns a snapshot of the accumulated counters
func (v *CrossReferenceValidator) Stats() model.CrossRefStats {
	stats := v.stats
	if stats.TotalChecked > 0 {
		stats.CorroborationRate = float64(stats.WithCorroboration) / float64(stats.TotalChecked)
	}
	return stats
}

// searchTerms builds the normalized terms that identify a signal across
// sources: the numeric value in its plausible renderings, the metric
// name, the region code, and the period.
func searchTerms(value model.SignalValue) []string {
	var terms []string

	if value.NumericValue != nil {
		n := *value.NumericValue
		terms = append(terms,
			strconv.Itoa(int(n)),
			strconv.FormatFloat(n, 'f', 1, 64),
			strconv.FormatFloat(n, 'f', 2, 64),
		)
	}
	if value.Metric != "" {
		if m := textutil.Normalize(value.Metric); m != "" {
			terms = append(terms, m)
		}
	}
	if value.Region != "" {
		// Region codes are matched against normalized (lowercased) text
		terms = append(terms, strings.ToLower(value.Region))
	}
	if value.Period != "" {
		if p := textutil.Normalize(value.Period); p != "" {
			terms = append(terms, p)
		}
	}

	return terms
}
