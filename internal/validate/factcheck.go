package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mlevkov/signalsift/internal/llm"
	"github.com/mlevkov/signalsift/internal/model"
	"github.com/mlevkov/signalsift/internal/textutil"
)

// Second model pass with a falsification mandate: the prompt asks the
// model to hunt for contradictions, not to confirm.
const verificationSystem = "You are a critical fact-checker. Be skeptical."

const verificationPrompt = `You are a critical fact-checker. Your ONLY job is to verify if a claim is EXPLICITLY supported by the source text.

CRITICAL RULES:
1. Only confirm facts that are DIRECTLY STATED in the text
2. Look for CONTRADICTIONS or inconsistencies
3. If numbers don't match EXACTLY, flag it
4. If context is missing or unclear, flag it
5. Be SKEPTICAL - assume claims are wrong unless proven right

Source Text:
%s

Claim to Verify:
- Metric: %s
- Value: %s
- Period: %s
- Region: %s
- Quote: %q

Your Task:
1. Does the quote EXACTLY appear in the source? (yes/no/partial)
2. Does the source SUPPORT this specific claim? (yes/no/unclear)
3. Are there any CONTRADICTIONS? (yes/no)
4. Confidence in claim (0.0-1.0)
5. Reason for your assessment (1 sentence)

Respond ONLY with valid JSON:
{"quote_verified": true, "claim_supported": true, "contradictions_found": false, "confidence": 0.0, "reason": "explanation"}`

// FactChecker runs the adversarial verification pass over surviving
// signals and pulls each signal's confidence toward the model's
// independent estimate.
type FactChecker struct {
	provider llm.Provider // nil disables the stage
	cfg      model.LLMConfig
	workers  int

	mu    sync.Mutex
	stats model.FactCheckStats
}

// NewFactChecker creates a fact-checker. A nil provider is valid: every
// signal then gets a "not available" verification with no confidence
// change.
func NewFactChecker(provider llm.Provider, cfg model.LLMConfig, workers int) *FactChecker {
	if workers <= 0 {
		workers = 1
	}
	return &FactChecker{provider: provider, cfg: cfg, workers: workers}
}

type verdictJSON struct {
	QuoteVerified       bool     `json:"quote_verified"`
	ClaimSupported      bool     `json:"claim_supported"`
	ContradictionsFound bool     `json:"contradictions_found"`
	Confidence          *float64 `json:"confidence"`
	Reason              string   `json:"reason"`
}

// Verify checks one signal against its source text. Model failures are
// not errors: a failed check is weak negative evidence and comes back as
// a nil-verified result carrying the configured penalty.
func (c *FactChecker) Verify(ctx context.Context, sig *model.Signal, sourceText string) model.Verification {
	if c.provider == nil {
		return model.Verification{Reason: "LLM not available"}
	}

	value := sig.Value
	prompt := fmt.Sprintf(verificationPrompt,
		textutil.Truncate(sourceText, c.cfg.MaxSourceChars),
		orNA(value.Metric),
		numericOrNA(value.NumericValue),
		orNA(value.Period),
		orNA(value.Region),
		textutil.Truncate(sig.VerbatimQuote, 300),
	)

	resp, err := c.provider.Complete(ctx, llm.Request{
		System:    verificationSystem,
		Prompt:    prompt,
		MaxTokens: 500,
	})
	if err != nil {
		return model.Verification{
			Reason:               "LLM error: " + textutil.Truncate(err.Error(), 100),
			ConfidenceAdjustment: -c.cfg.ErrorPenalty,
		}
	}

	var parsed verdictJSON
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return model.Verification{
			Reason:               "unparseable verification response",
			ConfidenceAdjustment: -c.cfg.ErrorPenalty,
		}
	}

	verified := parsed.QuoteVerified && parsed.ClaimSupported && !parsed.ContradictionsFound

	llmConfidence := 0.5
	if parsed.Confidence != nil {
		llmConfidence = *parsed.Confidence
	}

	// Damped pull toward the checker's estimate; one model call must
	// never dominate accumulated evidence.
	adjustment := (llmConfidence - sig.Confidence) * c.cfg.DampingFactor

	return model.Verification{
		Verified:             &verified,
		LLMConfidence:        llmConfidence,
		ConfidenceAdjustment: adjustment,
		Reason:               parsed.Reason,
		QuoteMatch:           parsed.QuoteVerified,
		Contradictions:       parsed.ContradictionsFound,
	}
}

// VerifyAll verifies every signal with bounded fan-out, applying each
// verification's confidence adjustment clamped to [0,1]. Signals whose
// source text is unavailable skip the model call entirely and keep their
// confidence.
func (c *FactChecker) VerifyAll(ctx context.Context, signals []model.Signal, sources []model.Source) []model.Signal {
	if len(signals) == 0 {
		return signals
	}

	lookup := model.SourceTexts(sources)

	verifications := make([]model.Verification, len(signals))
	checked := make([]bool, len(signals))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)
	for i := range signals {
		sourceText, ok := lookup[signals[i].SourceURL]
		if !ok || sourceText == "" {
			verifications[i] = model.Verification{Reason: "Source text not available"}
			continue
		}

		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				verifications[idx] = model.Verification{Reason: "verification cancelled"}
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			verifications[idx] = c.Verify(ctx, &signals[idx], text)
			checked[idx] = c.provider != nil
		}(i, sourceText)
	}
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range signals {
		v := verifications[i]
		signals[i].LLMVerification = &v

		if v.ConfidenceAdjustment != 0 {
			signals[i].Confidence = clamp01(signals[i].Confidence + v.ConfidenceAdjustment)
		}

		if !checked[i] {
			continue
		}
		c.stats.TotalChecked++
		switch {
		case v.Verified == nil:
			c.stats.APIErrors++
		case *v.Verified:
			c.stats.Verified++
		default:
			c.stats.Rejected++
		}
	}

	return signals
}

// Stats returns a snapshot of the accumulated counters
func (c *FactChecker) Stats() model.FactCheckStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	if stats.TotalChecked > 0 {
		stats.VerificationRate = float64(stats.Verified) / float64(stats.TotalChecked)
	}
	return stats
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func numericOrNA(n *float64) string {
	if n == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", *n)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
