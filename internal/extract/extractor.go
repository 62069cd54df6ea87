// Package extract turns raw source text into unvalidated candidate
// signals via a language model call. Extraction output is untrusted by
// design; the validation stages downstream decide what survives.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mlevkov/signalsift/internal/llm"
	"github.com/mlevkov/signalsift/internal/model"
	"github.com/mlevkov/signalsift/internal/textutil"
)

const extractionSystem = "You are a precise business intelligence analyst. You only report facts that are explicitly stated in the provided text, with verbatim supporting quotes."

const extractionPrompt = `Extract factual business signals about %s from the article below.

RULES:
1. Every signal MUST include a verbatim_quote copied EXACTLY from the article text.
2. Only extract facts EXPLICITLY stated in the article. Never infer, estimate, or combine.
3. If a signal contains a number, the number must appear inside the quote.
4. Be conservative with confidence: 0.9+ only for clearly stated, unambiguous facts.
5. If the article contains no relevant facts, return an empty signals list.

Categories: financial, ecommerce, retail_media, marketplace, d2c, partnership, product, strategy, leadership, sustainability, markets, risks, summary

Article title: %s
Article URL: %s

Article text:
%s

Respond ONLY with valid JSON in this shape:
{"signals": [{"category": "financial", "value": {"headline": "...", "fact": "...", "metric": "...", "numeric_value": 12.0, "unit": "%%", "period": "Q1 2024", "region": "DE", "topic": "..."}, "verbatim_quote": "...", "confidence": 0.8, "extraction_reasoning": "..."}]}`

// SignalExtractor extracts candidate signals from sources, one model
// call per source.
type SignalExtractor struct {
	provider llm.Provider
	cfg      model.LLMConfig
	stats    model.ExtractionStats
}

// NewSignalExtractor creates an extractor. Provider must be non-nil; a
// pipeline without a model cannot extract.
func NewSignalExtractor(provider llm.Provider, cfg model.LLMConfig) *SignalExtractor {
	return &SignalExtractor{provider: provider, cfg: cfg}
}

type extractionJSON struct {
	Signals []candidateJSON `json:"signals"`
}

type candidateJSON struct {
	Category            string            `json:"category"`
	Value               model.SignalValue `json:"value"`
	VerbatimQuote       string            `json:"verbatim_quote"`
	Confidence          *float64          `json:"confidence"`
	ExtractionReasoning string            `json:"extraction_reasoning"`
}

// ExtractFromSource extracts signals from one source. The model response
// is parsed and boundary-filtered: candidates missing required fields
// never reach the citation validator.
func (e *SignalExtractor) ExtractFromSource(ctx context.Context, src model.Source, company string) ([]model.Signal, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if src.RawText == "" {
		return nil, nil
	}

	maxChars := e.cfg.MaxSourceChars
	if maxChars <= 0 {
		maxChars = 8000
	}
	prompt := fmt.Sprintf(extractionPrompt, company, src.Title, src.URL, textutil.Truncate(src.RawText, maxChars))

	resp, err := e.provider.Complete(ctx, llm.Request{
		System:    extractionSystem,
		Prompt:    prompt,
		MaxTokens: 2000,
	})
	if err != nil {
		return nil, fmt.Errorf("extract from %s: %w", src.URL, err)
	}

	var parsed extractionJSON
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return nil, fmt.Errorf("parse extraction response for %s: %w", src.URL, err)
	}

	var signals []model.Signal
	for _, cand := range parsed.Signals {
		sig, ok := e.toSignal(cand, src)
		if !ok {
			e.stats.ValidationFailures++
			continue
		}
		signals = append(signals, sig)
	}

	return signals, nil
}

// ExtractFromSources extracts from every source sequentially. Per-source
// failures (API errors, unparseable output) are counted and skipped, not
// propagated; an extraction run never fails as a whole.
func (e *SignalExtractor) ExtractFromSources(ctx context.Context, sources []model.Source, company string) []model.Signal {
	var all []model.Signal
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		e.stats.SourcesProcessed++

		signals, err := e.ExtractFromSource(ctx, src, company)
		if err != nil {
			e.stats.APIErrors++
			continue
		}
		e.stats.SignalsExtracted += len(signals)
		all = append(all, signals...)
	}
	return all
}

// Stats returns the accumulated counters
func (e *SignalExtractor) Stats() model.ExtractionStats {
	return e.stats
}

// toSignal checks the structural minimum a candidate needs before it may
// enter validation: known category, non-empty quote and URL, headline
// and fact present, confidence in range.
func (e *SignalExtractor) toSignal(cand candidateJSON, src model.Source) (model.Signal, bool) {
	category := model.Category(cand.Category)
	if !category.IsKnown() {
		return model.Signal{}, false
	}
	if cand.VerbatimQuote == "" || cand.Value.Headline == "" || cand.Value.Fact == "" {
		return model.Signal{}, false
	}
	if cand.Confidence == nil || *cand.Confidence < 0 || *cand.Confidence > 1 {
		return model.Signal{}, false
	}

	// A numeric value without a metric gets a placeholder rather than a
	// rejection; the number itself is still grounded downstream.
	value := cand.Value
	if value.NumericValue != nil && value.Metric == "" {
		value.Metric = "value"
	}

	return model.Signal{
		Category:            category,
		Value:               value,
		VerbatimQuote:       cand.VerbatimQuote,
		SourceTitle:         src.Title,
		SourceURL:           src.URL,
		Confidence:          *cand.Confidence,
		ExtractionReasoning: cand.ExtractionReasoning,
		ValidationStatus:    model.StatusPending,
	}, true
}
