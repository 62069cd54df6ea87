// Package pipeline orchestrates one analysis run: discover sources,
// extract candidate signals, validate them through every stage, and
// assemble the final report. The engine never returns an error or
// panics to its caller; every outcome is a status-tagged result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mlevkov/signalsift/internal/llm"
	"github.com/mlevkov/signalsift/internal/model"
	"github.com/mlevkov/signalsift/internal/validate"
)

// Status strings for runs that stop before completing every stage
const (
	StatusNoSources   = "No sources found"
	StatusNoSignals   = "No signals extracted from sources"
	StatusAllRejected = "All signals failed citation validation"
	StatusCancelled   = "Analysis cancelled"
)

// ProgressFunc receives stage-boundary progress updates. It is a pure
// side channel: implementations must return promptly and may not affect
// control flow.
type ProgressFunc func(message string, fraction float64)

// SourceDiscoverer supplies the documents an analysis runs over
type SourceDiscoverer interface {
	DiscoverSources(ctx context.Context, company string) []model.Source
}

// Extractor turns sources into unvalidated candidate signals
type Extractor interface {
	ExtractFromSources(ctx context.Context, sources []model.Source, company string) []model.Signal
	Stats() model.ExtractionStats
}

// Engine sequences the validation pipeline over one discovery run
type Engine struct {
	cfg        *model.Config
	discoverer SourceDiscoverer
	extractor  Extractor
	provider   llm.Provider // for fact-checking; nil disables that stage
	progress   ProgressFunc
}

// NewEngine wires an engine from its collaborators. progress may be nil.
func NewEngine(cfg *model.Config, discoverer SourceDiscoverer, extractor Extractor, provider llm.Provider, progress ProgressFunc) *Engine {
	if progress == nil {
		progress = func(string, float64) {}
	}
	return &Engine{
		cfg:        cfg,
		discoverer: discoverer,
		extractor:  extractor,
		provider:   provider,
		progress:   progress,
	}
}

// Run executes the full pipeline for one company. It always returns a
// populated result: input-absence outcomes terminate early with a valid
// (mostly empty) report, cancellation yields a partial report from the
// last completed stage, and panics anywhere in the sequence are
// converted into an error-status result.
func (e *Engine) Run(ctx context.Context, company string) (result *model.AnalysisResult) {
	start := time.Now()

	var (
		sources  []model.Source
		admitted []model.Signal
		stats    model.ValidationStats
	)

	finish := func(status string, report *model.Report) *model.AnalysisResult {
		end := time.Now()
		return &model.AnalysisResult{
			Status:  status,
			Company: company,
			Sources: sources,
			Signals: admitted,
			Report:  report,
			Stats: model.RunStats{
				StartTime:       start,
				EndTime:         end,
				DurationSeconds: end.Sub(start).Seconds(),
				SourceCount:     len(sources),
				SignalCount:     len(admitted),
			},
		}
	}

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("Error: %v", r)
			e.progress(msg, 1.0)
			stats.Error = msg
			result = finish(msg, emptyReport(company, msg, sources, stats))
		}
	}()

	// Stage 1: discovery
	e.progress("Discovering sources...", 0.0)
	sources = e.discoverer.DiscoverSources(ctx, company)
	e.progress(fmt.Sprintf("Found %d sources", len(sources)), 0.30)

	if len(sources) == 0 {
		return finish(StatusNoSources, emptyReport(company, StatusNoSources, sources, stats))
	}
	if err := ctx.Err(); err != nil {
		return finish(StatusCancelled, emptyReport(company, StatusCancelled, sources, stats))
	}

	// Stage 2: extraction
	e.progress("Extracting signals...", 0.30)
	raw := e.extractor.ExtractFromSources(ctx, sources, company)
	stats.Extractor = e.extractor.Stats()
	e.progress(fmt.Sprintf("Extracted %d raw signals", len(raw)), 0.50)

	if len(raw) == 0 {
		status := StatusNoSignals
		if ctx.Err() != nil {
			status = StatusCancelled
		}
		return finish(status, emptyReport(company, status, sources, stats))
	}

	// Stage 3: citation validation
	e.progress("Validating citations...", 0.50)
	citation := validate.NewCitationValidator(sources, e.cfg.Validation, e.cfg.Concurrency.CitationWorkers)
	survivors := citation.ValidateAll(ctx, raw)
	stats.CitationStats = citation.Stats()
	e.progress(fmt.Sprintf("%d signals passed citation validation", len(survivors)), 0.60)

	if err := ctx.Err(); err != nil {
		return finish(StatusCancelled, emptyReport(company, StatusCancelled, sources, stats))
	}
	if len(survivors) == 0 {
		return finish(StatusAllRejected, emptyReport(company, StatusAllRejected, sources, stats))
	}

	// Stage 4: cross-reference
	e.progress("Cross-referencing sources...", 0.60)
	crossref := validate.NewCrossReferenceValidator(e.cfg.CrossRef)
	survivors = crossref.Corroborate(survivors, sources)
	stats.CrossRefStats = crossref.Stats()
	e.progress("Cross-reference complete", 0.70)

	if err := ctx.Err(); err != nil {
		return finish(StatusCancelled, emptyReport(company, StatusCancelled, sources, stats))
	}

	// Stage 5: LLM fact-checking
	e.progress("Fact-checking with LLM...", 0.70)
	checker := validate.NewFactChecker(e.provider, e.cfg.LLM, e.cfg.Concurrency.FactCheckWorkers)
	survivors = checker.VerifyAll(ctx, survivors, sources)
	stats.FactCheckStats = checker.Stats()
	e.progress("Fact-checking complete", 0.85)

	if err := ctx.Err(); err != nil {
		return finish(StatusCancelled, emptyReport(company, StatusCancelled, sources, stats))
	}

	// Stage 6: confidence filtering
	e.progress("Filtering by confidence...", 0.85)
	filter := validate.NewConfidenceFilter(e.cfg.Tiers)
	admitted = filter.Admit(survivors)
	stats.ConfidenceFilter = filter.Stats()
	e.progress(fmt.Sprintf("%d signals admitted", len(admitted)), 0.90)

	// Stage 7: report assembly
	e.progress("Generating report...", 0.90)
	report := buildReport(company, sources, admitted, stats)
	e.progress("Analysis complete", 1.0)

	return finish(model.StatusSuccess, report)
}
