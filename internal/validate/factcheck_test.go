package validate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mlevkov/signalsift/internal/llm"
	"github.com/mlevkov/signalsift/internal/model"
)

// stubProvider returns canned responses in order, or a fixed error.
type stubProvider struct {
	responses []string
	err       error
	calls     int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	content := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return &llm.Response{Content: content, Model: "stub"}, nil
}

func testLLMConfig() model.LLMConfig {
	return model.LLMConfig{
		ErrorPenalty:   0.05,
		DampingFactor:  0.5,
		MaxSourceChars: 4000,
	}
}

func TestFactChecker_Verified(t *testing.T) {
	provider := &stubProvider{responses: []string{
		`{"quote_verified": true, "claim_supported": true, "contradictions_found": false, "confidence": 0.9, "reason": "directly stated"}`,
	}}
	checker := NewFactChecker(provider, testLLMConfig(), 2)

	sig := testSignal("net sales increased 12.5% in the period", "https://example.com/a")
	sig.Confidence = 0.7

	v := checker.Verify(context.Background(), &sig, "source text")

	if v.Verified == nil || !*v.Verified {
		t.Fatal("Expected verification to pass")
	}
	// (0.9 - 0.7) * 0.5 = 0.1
	if math.Abs(v.ConfidenceAdjustment-0.1) > 1e-9 {
		t.Errorf("Expected adjustment 0.1, got %v", v.ConfidenceAdjustment)
	}
	if v.LLMConfidence != 0.9 {
		t.Errorf("Expected LLM confidence 0.9, got %v", v.LLMConfidence)
	}
	if v.Reason != "directly stated" {
		t.Errorf("Unexpected reason %q", v.Reason)
	}
}

func TestFactChecker_ContradictionFails(t *testing.T) {
	provider := &stubProvider{responses: []string{
		`{"quote_verified": true, "claim_supported": true, "contradictions_found": true, "confidence": 0.3, "reason": "numbers conflict"}`,
	}}
	checker := NewFactChecker(provider, testLLMConfig(), 2)

	sig := testSignal("net sales increased 12.5% in the period", "https://example.com/a")
	sig.Confidence = 0.8

	v := checker.Verify(context.Background(), &sig, "source text")

	if v.Verified == nil || *v.Verified {
		t.Fatal("Expected verification to fail on contradictions")
	}
	// Adjustment pulls downward: (0.3 - 0.8) * 0.5 = -0.25
	if math.Abs(v.ConfidenceAdjustment-(-0.25)) > 1e-9 {
		t.Errorf("Expected adjustment -0.25, got %v", v.ConfidenceAdjustment)
	}
	if !v.Contradictions {
		t.Error("Expected contradictions flag to be set")
	}
}

func TestFactChecker_MissingConfidenceDefaults(t *testing.T) {
	provider := &stubProvider{responses: []string{
		`{"quote_verified": true, "claim_supported": true, "contradictions_found": false, "reason": "ok"}`,
	}}
	checker := NewFactChecker(provider, testLLMConfig(), 2)

	sig := testSignal("net sales increased 12.5% in the period", "https://example.com/a")
	sig.Confidence = 0.7

	v := checker.Verify(context.Background(), &sig, "source text")
	if v.LLMConfidence != 0.5 {
		t.Errorf("Expected default LLM confidence 0.5, got %v", v.LLMConfidence)
	}
	// (0.5 - 0.7) * 0.5 = -0.1
	if math.Abs(v.ConfidenceAdjustment-(-0.1)) > 1e-9 {
		t.Errorf("Expected adjustment -0.1, got %v", v.ConfidenceAdjustment)
	}
}

func TestFactChecker_APIError(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}
	checker := NewFactChecker(provider, testLLMConfig(), 2)

	sig := testSignal("net sales increased 12.5% in the period", "https://example.com/a")
	v := checker.Verify(context.Background(), &sig, "source text")

	if v.Verified != nil {
		t.Error("Expected nil verified flag on API error")
	}
	if math.Abs(v.ConfidenceAdjustment-(-0.05)) > 1e-9 {
		t.Errorf("Expected -0.05 error penalty, got %v", v.ConfidenceAdjustment)
	}
}

func TestFactChecker_UnparseableResponse(t *testing.T) {
	provider := &stubProvider{responses: []string{"I'm sorry, I cannot help with that."}}
	checker := NewFactChecker(provider, testLLMConfig(), 2)

	sig := testSignal("net sales increased 12.5% in the period", "https://example.com/a")
	v := checker.Verify(context.Background(), &sig, "source text")

	if v.Verified != nil {
		t.Error("Expected nil verified flag for unparseable response")
	}
	if v.Reason != "unparseable verification response" {
		t.Errorf("Unexpected reason %q", v.Reason)
	}
	if math.Abs(v.ConfidenceAdjustment-(-0.05)) > 1e-9 {
		t.Errorf("Expected -0.05 error penalty, got %v", v.ConfidenceAdjustment)
	}
}

func TestFactChecker_NilProvider(t *testing.T) {
	checker := NewFactChecker(nil, testLLMConfig(), 2)

	sig := testSignal("net sales increased 12.5% in the period", "https://example.com/a")
	v := checker.Verify(context.Background(), &sig, "source text")

	if v.Verified != nil || v.ConfidenceAdjustment != 0 {
		t.Errorf("Expected neutral verification without provider, got %+v", v)
	}
	if v.Reason != "LLM not available" {
		t.Errorf("Unexpected reason %q", v.Reason)
	}
}

func TestFactChecker_VerifyAll(t *testing.T) {
	provider := &stubProvider{responses: []string{
		`{"quote_verified": true, "claim_supported": true, "contradictions_found": false, "confidence": 0.9, "reason": "ok"}`,
	}}
	// Single worker so the scripted responses map deterministically
	checker := NewFactChecker(provider, testLLMConfig(), 1)

	sources := []model.Source{
		{URL: "https://example.com/a", RawText: "net sales increased 12.5% in the period"},
	}
	signals := []model.Signal{
		testSignal("net sales increased 12.5% in the period", "https://example.com/a"),
		testSignal("quote citing a source that never got fetched", "https://example.com/missing"),
	}
	signals[0].Confidence = 0.7
	signals[1].Confidence = 0.6

	out := checker.VerifyAll(context.Background(), signals, sources)

	// First signal: adjusted 0.7 + (0.9-0.7)*0.5 = 0.8
	if math.Abs(out[0].Confidence-0.8) > 1e-9 {
		t.Errorf("Expected adjusted confidence 0.8, got %v", out[0].Confidence)
	}
	if out[0].LLMVerification == nil || out[0].LLMVerification.Verified == nil || !*out[0].LLMVerification.Verified {
		t.Error("Expected first signal to be verified")
	}

	// Second signal: no source text, no model call, confidence untouched
	if out[1].Confidence != 0.6 {
		t.Errorf("Expected untouched confidence 0.6, got %v", out[1].Confidence)
	}
	if out[1].LLMVerification == nil || out[1].LLMVerification.Reason != "Source text not available" {
		t.Errorf("Expected source-unavailable verification, got %+v", out[1].LLMVerification)
	}
	if provider.calls != 1 {
		t.Errorf("Expected exactly 1 model call, got %d", provider.calls)
	}

	stats := checker.Stats()
	if stats.TotalChecked != 1 {
		t.Errorf("Expected 1 checked, got %d", stats.TotalChecked)
	}
	if stats.Verified != 1 {
		t.Errorf("Expected 1 verified, got %d", stats.Verified)
	}
	if stats.VerificationRate != 1.0 {
		t.Errorf("Expected verification rate 1.0, got %v", stats.VerificationRate)
	}
}

func TestFactChecker_AdjustmentClamped(t *testing.T) {
	provider := &stubProvider{responses: []string{
		`{"quote_verified": false, "claim_supported": false, "contradictions_found": true, "confidence": 0.0, "reason": "fabricated"}`,
	}}
	checker := NewFactChecker(provider, testLLMConfig(), 1)

	sources := []model.Source{{URL: "https://example.com/a", RawText: "text"}}
	signals := []model.Signal{testSignal("a quote long enough for the validator", "https://example.com/a")}
	signals[0].Confidence = 0.05

	out := checker.VerifyAll(context.Background(), signals, sources)

	if out[0].Confidence < 0 {
		t.Errorf("Confidence must stay in [0,1], got %v", out[0].Confidence)
	}

	stats := checker.Stats()
	if stats.Rejected != 1 {
		t.Errorf("Expected 1 rejected, got %d", stats.Rejected)
	}
}
