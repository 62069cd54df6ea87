// Package validate implements the validation stages a candidate signal
// passes through before reaching a report: citation grounding,
// cross-source corroboration, adversarial LLM fact-checking, and
// confidence-based filtering.
package validate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mlevkov/signalsift/internal/model"
	"github.com/mlevkov/signalsift/internal/textutil"
)

// CitationValidator rejects any signal whose evidentiary quote cannot be
// grounded in its cited source. This is the primary defense against
// extraction hallucinations.
type CitationValidator struct {
	cfg     model.ValidationConfig
	workers int

	// Normalized source text keyed by URL, built once so concurrent
	// per-signal checks only read.
	sourceTexts map[string]string

	mu    sync.Mutex
	stats model.CitationStats
}

// NewCitationValidator builds a validator over the run's source set.
// Sources with empty text are omitted from the lookup: a signal citing
// them is rejected as unverifiable.
func NewCitationValidator(sources []model.Source, cfg model.ValidationConfig, workers int) *CitationValidator {
	texts := make(map[string]string, len(sources))
	for url, raw := range model.SourceTexts(sources) {
		texts[url] = textutil.Normalize(raw)
	}
	if workers <= 0 {
		workers = 1
	}
	return &CitationValidator{
		cfg:         cfg,
		workers:     workers,
		sourceTexts: texts,
		stats:       model.CitationStats{RejectionReasons: make(map[string]int)},
	}
}

// Validate checks a single signal's citation. It returns whether the
// signal is grounded and, if not, the rejection reason. Statistics are
// not touched here; ValidateAll aggregates them.
func (v *CitationValidator) Validate(sig *model.Signal) (bool, string) {
	quote := sig.VerbatimQuote
	if quote == "" {
		return false, "Missing verbatim_quote"
	}
	if len(quote) < v.cfg.MinQuoteLength {
		return false, fmt.Sprintf("verbatim_quote too short (%d chars, min %d)", len(quote), v.cfg.MinQuoteLength)
	}

	if sig.SourceURL == "" {
		return false, "Missing source_url"
	}

	sourceText, ok := v.sourceTexts[sig.SourceURL]
	if !ok {
		return false, "Unknown source_url: " + sig.SourceURL
	}

	if !v.fuzzyContains(sourceText, textutil.Normalize(quote)) {
		return false, fmt.Sprintf("Quote not found in source: %q", textutil.Truncate(quote, 53))
	}

	if n := sig.Value.NumericValue; n != nil {
		if !textutil.ContainsNumber(quote, *n, v.cfg.NumericTolerance) {
			return false, fmt.Sprintf("Numeric value %v not found in quote", *n)
		}
	}

	return true, ""
}

// ValidateAll validates every signal with bounded fan-out and returns the
// survivors. Rejected signals get a terminal status and reason; malformed
// ones are rejections, never errors. Statistics are aggregated after the
// parallel map so counter updates stay single-writer.
func (v *CitationValidator) ValidateAll(ctx context.Context, signals []model.Signal) []model.Signal {
	if len(signals) == 0 {
		return []model.Signal{}
	}

	type verdict struct {
		ok     bool
		reason string
	}
	verdicts := make([]verdict, len(signals))

	var wg sync.WaitGroup
	sem := make(chan struct{}, v.workers)
	for i := range signals {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				verdicts[idx] = verdict{false, "validation cancelled"}
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			ok, reason := v.Validate(&signals[idx])
			verdicts[idx] = verdict{ok, reason}
		}(i)
	}
	wg.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()

	accepted := make([]model.Signal, 0, len(signals))
	for i := range signals {
		v.stats.TotalValidated++
		if verdicts[i].ok {
			signals[i].ValidationStatus = model.StatusVerified
			v.stats.Accepted++
			accepted = append(accepted, signals[i])
			continue
		}
		signals[i].Reject(verdicts[i].reason)
		v.stats.Rejected++
		v.stats.RejectionReasons[verdicts[i].reason]++
	}

	return accepted
}

// Stats returns a snapshot of the accumulated counters
func (v *CitationValidator) Stats() model.CitationStats {
	v.mu.Lock()
	defer v.mu.Unlock()

	stats := v.stats
	stats.RejectionReasons = make(map[string]int, len(v.stats.RejectionReasons))
	for k, c := range v.stats.RejectionReasons {
		stats.RejectionReasons[k] = c
	}
	if stats.TotalValidated > 0 {
		stats.AcceptanceRate = float64(stats.Accepted) / float64(stats.TotalValidated)
	}
	return stats
}

// fuzzyContains reports whether the normalized quote occurs in the
// normalized source text, tolerating minor variation.
//
// Exact substring is the fast path. Otherwise a window of the quote's
// length slides across the text at a coarse stride, scoring each window
// with a sequence similarity ratio. When the best coarse score lands in
// the close-but-under band, only the neighborhood of that best window is
// rescanned at stride 1, keeping the fine scan bounded instead of O(n·m)
// over the whole text.
func (v *CitationValidator) fuzzyContains(text, quote string) bool {
	if text == "" || quote == "" {
		return false
	}

	if strings.Contains(text, quote) {
		return true
	}

	quoteLen := len(quote)
	if quoteLen > len(text) {
		return false
	}

	step := quoteLen / 10
	if step < 1 {
		step = 1
	}

	bestRatio := 0.0
	bestOffset := 0
	for i := 0; i+quoteLen <= len(text); i += step {
		ratio := textutil.SimilarityRatio(text[i:i+quoteLen], quote)
		if ratio >= v.cfg.FuzzyThreshold {
			return true
		}
		if ratio > bestRatio {
			bestRatio = ratio
			bestOffset = i
		}
	}

	if bestRatio < v.cfg.CloseThreshold {
		return false
	}

	lo := bestOffset - step
	if lo < 0 {
		lo = 0
	}
	hi := bestOffset + step
	if hi+quoteLen > len(text) {
		hi = len(text) - quoteLen
	}
	for i := lo; i <= hi; i++ {
		if textutil.SimilarityRatio(text[i:i+quoteLen], quote) >= v.cfg.FuzzyThreshold {
			return true
		}
	}

	return false
}
