package model

// Category classifies what kind of company signal a fact describes
type Category string

const (
	CategoryFinancial      Category = "financial"
	CategoryEcommerce      Category = "ecommerce"
	CategoryRetailMedia    Category = "retail_media"
	CategoryMarketplace    Category = "marketplace"
	CategoryD2C            Category = "d2c"
	CategoryPartnership    Category = "partnership"
	CategoryProduct        Category = "product"
	CategoryStrategy       Category = "strategy"
	CategoryLeadership     Category = "leadership"
	CategorySustainability Category = "sustainability"
	CategoryMarkets        Category = "markets"
	CategoryRisks          Category = "risks"
	CategorySummary        Category = "summary"
)

// KnownCategories lists every accepted signal category
var KnownCategories = []Category{
	CategoryFinancial, CategoryEcommerce, CategoryRetailMedia,
	CategoryMarketplace, CategoryD2C, CategoryPartnership,
	CategoryProduct, CategoryStrategy, CategoryLeadership,
	CategorySustainability, CategoryMarkets, CategoryRisks,
	CategorySummary,
}

// IsKnown reports whether c is one of the accepted categories
func (c Category) IsKnown() bool {
	for _, k := range KnownCategories {
		if c == k {
			return true
		}
	}
	return false
}

// ValidationStatus tracks a signal through the pipeline
type ValidationStatus string

const (
	StatusPending  ValidationStatus = "pending"
	StatusVerified ValidationStatus = "verified"
	StatusRejected ValidationStatus = "rejected" // Terminal
)

// SignalValue is the structured payload of a signal
type SignalValue struct {
	Headline     string   `json:"headline"`
	Fact         string   `json:"fact"`
	Metric       string   `json:"metric,omitempty"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	Period       string   `json:"period,omitempty"`
	Region       string   `json:"region,omitempty"`
	Topic        string   `json:"topic,omitempty"`
}

// Verification is the fact-checker's independent judgment on a signal.
// Verified is nil when the check could not run (model error, missing source).
type Verification struct {
	Verified             *bool   `json:"verified"`
	LLMConfidence        float64 `json:"llm_confidence,omitempty"`
	ConfidenceAdjustment float64 `json:"confidence_adjustment"`
	Reason               string  `json:"reason,omitempty"`
	QuoteMatch           bool    `json:"quote_match,omitempty"`
	Contradictions       bool    `json:"contradictions,omitempty"`
}

// Signal is a citation-backed claim about the target company.
//
// Confidence is the one piece of state every validation stage mutates:
// cross-referencing boosts or penalizes it, fact-checking pulls it toward
// an independent estimate, and the confidence filter partitions on it.
type Signal struct {
	Category Category    `json:"category"`
	Value    SignalValue `json:"value"`

	// The evidentiary text the extractor claims supports this fact.
	// Mandatory; a signal without a grounded quote never survives
	// citation validation.
	VerbatimQuote string `json:"verbatim_quote"`
	SourceTitle   string `json:"source_title,omitempty"`
	SourceURL     string `json:"source_url"`

	Confidence          float64 `json:"confidence"`
	ExtractionReasoning string  `json:"extraction_reasoning,omitempty"`

	ValidationStatus ValidationStatus `json:"validation_status"`
	RejectionReason  string           `json:"rejection_reason,omitempty"`

	// Set by cross-reference validation
	CorroborationCount   int      `json:"corroboration_count"`
	CorroboratingSources []string `json:"corroborating_sources,omitempty"`
	ConfidenceBoost      string   `json:"confidence_boost,omitempty"`
	ConfidencePenalty    string   `json:"confidence_penalty,omitempty"`

	// Set by LLM fact-checking
	LLMVerification *Verification `json:"llm_verification,omitempty"`

	// Set by confidence filtering on admitted signals
	ConfidenceTier  Tier   `json:"confidence_tier,omitempty"`
	ConfidenceBadge string `json:"confidence_badge,omitempty"`
	ShowWarning     bool   `json:"show_warning,omitempty"`
}

// Reject transitions the signal to its terminal rejected state. The first
// rejection reason wins; later stages never see a rejected signal.
func (s *Signal) Reject(reason string) {
	s.ValidationStatus = StatusRejected
	if s.RejectionReason == "" {
		s.RejectionReason = reason
	}
}
