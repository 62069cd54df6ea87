package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mlevkov/signalsift/internal/model"
)

func sampleSignals() []model.Signal {
	n := 12.5
	return []model.Signal{
		{
			Category: model.CategoryFinancial,
			Value: model.SignalValue{
				Headline:     "Organic net sales up 12.5%",
				Fact:         "Organic net sales increased 12.5% in fiscal 2024",
				Metric:       "organic net sales",
				NumericValue: &n,
				Unit:         "%",
				Period:       "fiscal 2024",
				Region:       "EMEA",
			},
			VerbatimQuote:      `sales increased 12.5%, with "premium" brands leading`,
			SourceURL:          "https://example.com/report",
			Confidence:         0.86,
			ConfidenceTier:     model.TierHigh,
			CorroborationCount: 2,
		},
		{
			Category: model.CategoryStrategy,
			Value: model.SignalValue{
				Headline: "New D2C platform announced",
				Fact:     "A direct-to-consumer platform launches next year",
				Topic:    "d2c expansion",
			},
			VerbatimQuote:  "we will launch a direct-to-consumer platform",
			SourceURL:      "https://example.com/press",
			Confidence:     0.45,
			ConfidenceTier: model.TierLow,
			ShowWarning:    true,
		},
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	r := NewRenderer(false)
	signals := sampleSignals()

	var buf bytes.Buffer
	if err := r.WriteSignalsCSV(signals, &buf); err != nil {
		t.Fatalf("WriteSignalsCSV: %v", err)
	}

	got, err := ReadSignalsCSV(&buf)
	if err != nil {
		t.Fatalf("ReadSignalsCSV: %v", err)
	}
	if len(got) != len(signals) {
		t.Fatalf("Expected %d signals, got %d", len(signals), len(got))
	}

	for i := range signals {
		want := signals[i]
		if got[i].Category != want.Category ||
			!reflect.DeepEqual(got[i].Value, want.Value) ||
			got[i].VerbatimQuote != want.VerbatimQuote ||
			got[i].SourceURL != want.SourceURL ||
			got[i].Confidence != want.Confidence ||
			got[i].ConfidenceTier != want.ConfidenceTier ||
			got[i].CorroborationCount != want.CorroborationCount {
			t.Errorf("Signal %d did not round-trip:\nwant %+v\ngot  %+v", i, want, got[i])
		}
	}
}

func TestCSV_ReadRejectsMalformed(t *testing.T) {
	if _, err := ReadSignalsCSV(strings.NewReader("")); err == nil {
		t.Error("Expected error for empty CSV")
	}

	bad := strings.Join(csvHeader, ",") + "\nfinancial,h\n"
	if _, err := ReadSignalsCSV(strings.NewReader(bad)); err == nil {
		t.Error("Expected error for short record")
	}
}

func TestRenderJSON(t *testing.T) {
	r := NewRenderer(true)
	path := filepath.Join(t.TempDir(), "result.json")

	result := &model.AnalysisResult{
		Status:  model.StatusSuccess,
		Company: "Acme Corp",
		Signals: sampleSignals(),
	}
	if err := r.RenderJSON(result, path); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var parsed model.AnalysisResult
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Company != "Acme Corp" || parsed.Status != model.StatusSuccess {
		t.Errorf("Unexpected round-trip result: %+v", parsed)
	}
	if len(parsed.Signals) != 2 {
		t.Errorf("Expected 2 signals, got %d", len(parsed.Signals))
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := NewRenderer(true)
	path := filepath.Join(t.TempDir(), "report.md")

	signals := sampleSignals()
	signals[0].ConfidenceBadge = "High Confidence"
	signals[1].ConfidenceBadge = "Low Confidence"

	report := buildReport("Acme Corp", []model.Source{{URL: "https://example.com/report", RawText: "x"}},
		signals, model.ValidationStats{})
	report.GeneratedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := r.RenderMarkdown(report, path); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"# Signal Report: Acme Corp",
		"## organic net sales",
		"[High Confidence]",
		"Low-confidence signal: verify before use.",
		"Generated by signalsift",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoFooter(t *testing.T) {
	r := NewRenderer(false)
	path := filepath.Join(t.TempDir(), "report.md")

	report := buildReport("Acme Corp", nil, nil, model.ValidationStats{})
	if err := r.RenderMarkdown(report, path); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Generated by signalsift") {
		t.Error("Expected no footer")
	}
}
