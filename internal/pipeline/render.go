package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mlevkov/signalsift/internal/model"
)

// Renderer writes analysis results to their export formats
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full result as indented JSON
func (r *Renderer) RenderJSON(result *model.AnalysisResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"category", "headline", "fact", "metric", "numeric_value", "unit",
	"period", "region", "topic", "confidence", "confidence_tier",
	"corroboration_count", "verbatim_quote", "source_url",
}

// WriteSignalsCSV exports the admitted signals as CSV. The columns carry
// every structured field an analyst depends on, and ReadSignalsCSV
// round-trips them losslessly.
func (r *Renderer) WriteSignalsCSV(signals []model.Signal, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, sig := range signals {
		numeric := ""
		if sig.Value.NumericValue != nil {
			numeric = strconv.FormatFloat(*sig.Value.NumericValue, 'g', -1, 64)
		}
		record := []string{
			string(sig.Category),
			sig.Value.Headline,
			sig.Value.Fact,
			sig.Value.Metric,
			numeric,
			sig.Value.Unit,
			sig.Value.Period,
			sig.Value.Region,
			sig.Value.Topic,
			strconv.FormatFloat(sig.Confidence, 'g', -1, 64),
			string(sig.ConfidenceTier),
			strconv.Itoa(sig.CorroborationCount),
			sig.VerbatimQuote,
			sig.SourceURL,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadSignalsCSV parses signals previously written by WriteSignalsCSV
func ReadSignalsCSV(rd io.Reader) ([]model.Signal, error) {
	cr := csv.NewReader(rd)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV")
	}

	var signals []model.Signal
	for _, rec := range records[1:] {
		if len(rec) != len(csvHeader) {
			return nil, fmt.Errorf("bad CSV record length %d", len(rec))
		}

		sig := model.Signal{
			Category: model.Category(rec[0]),
			Value: model.SignalValue{
				Headline: rec[1],
				Fact:     rec[2],
				Metric:   rec[3],
				Unit:     rec[5],
				Period:   rec[6],
				Region:   rec[7],
				Topic:    rec[8],
			},
			ConfidenceTier: model.Tier(rec[10]),
			VerbatimQuote:  rec[12],
			SourceURL:      rec[13],
		}
		if rec[4] != "" {
			n, err := strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("bad numeric_value %q: %w", rec[4], err)
			}
			sig.Value.NumericValue = &n
		}
		if sig.Confidence, err = strconv.ParseFloat(rec[9], 64); err != nil {
			return nil, fmt.Errorf("bad confidence %q: %w", rec[9], err)
		}
		if sig.CorroborationCount, err = strconv.Atoi(rec[11]); err != nil {
			return nil, fmt.Errorf("bad corroboration_count %q: %w", rec[11], err)
		}
		signals = append(signals, sig)
	}

	return signals, nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Signal Report: %s\n\n", report.Company)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04 UTC"))

	if report.Summary.Error != "" {
		fmt.Fprintf(&b, "**Status:** %s\n\n", report.Summary.Error)
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Sources analyzed: %d\n", report.Summary.TotalSources)
	fmt.Fprintf(&b, "- Signals admitted: %d\n", report.Summary.AdmittedSignals)
	fmt.Fprintf(&b, "- High confidence: %d\n", report.Summary.HighConfidence)
	fmt.Fprintf(&b, "- Metrics covered: %d\n\n", report.Summary.MetricsCovered)

	if len(report.Summary.Regions) > 0 {
		b.WriteString("## Regions\n\n")
		for _, region := range sortedKeys(report.Summary.Regions) {
			fmt.Fprintf(&b, "- %s: %d\n", region, report.Summary.Regions[region])
		}
		b.WriteString("\n")
	}

	for _, metric := range sortedMetricKeys(report.SignalsByMetric) {
		fmt.Fprintf(&b, "## %s\n\n", metric)
		for _, sig := range report.SignalsByMetric[metric] {
			fmt.Fprintf(&b, "### %s [%s]\n\n", sig.Value.Headline, sig.ConfidenceBadge)
			fmt.Fprintf(&b, "%s\n\n", sig.Value.Fact)
			if sig.ShowWarning {
				b.WriteString("> Low-confidence signal: verify before use.\n\n")
			}
			fmt.Fprintf(&b, "> %q\n>\n> — %s (confidence %.2f", sig.VerbatimQuote, sig.SourceURL, sig.Confidence)
			if sig.CorroborationCount > 0 {
				fmt.Fprintf(&b, ", corroborated by %d sources", sig.CorroborationCount)
			}
			b.WriteString(")\n\n")
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by signalsift. Confidence tiers reflect citation grounding, corroboration, and fact-check evidence, not truth.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints the headline numbers to stdout
func (r *Renderer) RenderSummary(result *model.AnalysisResult) {
	fmt.Printf("\nStatus: %s\n", result.Status)
	if result.Report == nil {
		return
	}
	summary := result.Report.Summary
	fmt.Printf("Sources:  %d\n", summary.TotalSources)
	fmt.Printf("Signals:  %d admitted (%d high confidence)\n", summary.AdmittedSignals, summary.HighConfidence)
	fmt.Printf("Duration: %.1fs\n", result.Stats.DurationSeconds)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMetricKeys(m map[string][]model.Signal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
