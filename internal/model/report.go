package model

import "time"

// Tier is a named confidence band assigned by the confidence filter
type Tier string

const (
	TierVerified Tier = "verified" // >= 0.90 by default
	TierHigh     Tier = "high"     // >= 0.75
	TierMedium   Tier = "medium"   // >= 0.60
	TierLow      Tier = "low"      // >= 0.40, included with a warning
	TierExcluded Tier = "excluded" // Below the inclusion floor
)

// CitationStats are the citation validator's counters for one run
type CitationStats struct {
	TotalValidated   int            `json:"total_validated"`
	Accepted         int            `json:"accepted"`
	Rejected         int            `json:"rejected"`
	RejectionReasons map[string]int `json:"rejection_reasons,omitempty"`
	AcceptanceRate   float64        `json:"acceptance_rate"`
}

// CrossRefStats are the cross-reference validator's counters for one run
type CrossRefStats struct {
	TotalChecked      int     `json:"total_checked"`
	WithCorroboration int     `json:"with_corroboration"`
	SingleSource      int     `json:"single_source"`
	CorroborationRate float64 `json:"corroboration_rate"`
}

// FactCheckStats are the LLM fact-checker's counters for one run
type FactCheckStats struct {
	TotalChecked     int     `json:"total_checked"`
	Verified         int     `json:"verified"`
	Rejected         int     `json:"rejected"`
	APIErrors        int     `json:"api_errors"`
	VerificationRate float64 `json:"verification_rate"`
}

// FilterStats are the confidence filter's counters for one run
type FilterStats struct {
	Total         int          `json:"total"`
	PerTier       map[Tier]int `json:"per_tier"`
	InclusionRate float64      `json:"inclusion_rate"`
}

// ExtractionStats are the signal extractor's counters for one run
type ExtractionStats struct {
	SourcesProcessed   int `json:"sources_processed"`
	SignalsExtracted   int `json:"signals_extracted"`
	ValidationFailures int `json:"validation_failures"`
	APIErrors          int `json:"api_errors"`
}

// ValidationStats aggregates every stage's counters for diagnostics.
// Read-only after the run completes; never used for control flow.
type ValidationStats struct {
	Extractor        ExtractionStats `json:"extractor"`
	CitationStats    CitationStats   `json:"citation_validator"`
	CrossRefStats    CrossRefStats   `json:"cross_reference"`
	FactCheckStats   FactCheckStats  `json:"fact_checker"`
	ConfidenceFilter FilterStats     `json:"confidence_filter"`
	Error            string          `json:"error,omitempty"`
}

// ReportSummary carries the headline numbers of one analysis
type ReportSummary struct {
	TotalSources    int            `json:"total_sources"`
	AdmittedSignals int            `json:"admitted_signals"`
	HighConfidence  int            `json:"high_confidence_signals"`
	TiersCovered    int            `json:"tiers_covered"`
	MetricsCovered  int            `json:"metrics_covered"`
	Regions         map[string]int `json:"regions"`
	Error           string         `json:"error,omitempty"`
}

// Report is the assembled output of one analysis run
type Report struct {
	Company         string              `json:"company"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Summary         ReportSummary       `json:"summary"`
	SignalsByMetric map[string][]Signal `json:"signals_by_metric"`
	Signals         []Signal            `json:"signals"` // Admitted, confidence-ranked
	ValidationStats ValidationStats     `json:"validation_stats"`
}

// StatusSuccess is the status string of a run that completed all stages.
// Anything else names the condition that stopped the pipeline.
const StatusSuccess = "success"

// RunStats times one analysis run
type RunStats struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds float64   `json:"duration_seconds"`
	SourceCount     int       `json:"source_count"`
	SignalCount     int       `json:"signal_count"`
}

// AnalysisResult is what the engine hands to consumers: a status-tagged,
// JSON-representable bundle. It is always populated, even for failed or
// empty runs.
type AnalysisResult struct {
	Status  string   `json:"status"`
	Company string   `json:"company"`
	Sources []Source `json:"sources"`
	Signals []Signal `json:"signals"`
	Report  *Report  `json:"report"`
	Stats   RunStats `json:"stats"`
}
