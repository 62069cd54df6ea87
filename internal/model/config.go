package model

import "time"

// Config is the full runtime configuration. Every threshold the pipeline
// compares against lives here so tuning happens in one place instead of
// drifting across validators.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Discovery   DiscoveryConfig   `yaml:"discovery" mapstructure:"discovery"`
	Validation  ValidationConfig  `yaml:"validation" mapstructure:"validation"`
	CrossRef    CrossRefConfig    `yaml:"cross_reference" mapstructure:"cross_reference"`
	Tiers       TierThresholds    `yaml:"tiers" mapstructure:"tiers"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls source fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
}

// CacheConfig controls the source text cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// DiscoveryConfig controls which sources are gathered for a company
type DiscoveryConfig struct {
	MaxSources   int      `yaml:"max_sources" mapstructure:"max_sources"`
	LookbackDays int      `yaml:"lookback_days" mapstructure:"lookback_days"`
	SeedURLs     []string `yaml:"seed_urls" mapstructure:"seed_urls"`
}

// ValidationConfig controls citation grounding
type ValidationConfig struct {
	// FuzzyThreshold is the similarity ratio a sliding window must reach
	// for a quote to count as present in its source.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
	// CloseThreshold triggers the stride-1 rescan when the coarse scan
	// came close but missed.
	CloseThreshold float64 `yaml:"close_threshold" mapstructure:"close_threshold"`
	MinQuoteLength int     `yaml:"min_quote_length" mapstructure:"min_quote_length"`
	// NumericTolerance is the relative tolerance when matching a claimed
	// number against numbers found in the quote (0.01 = 1%).
	NumericTolerance float64 `yaml:"numeric_tolerance" mapstructure:"numeric_tolerance"`
}

// CrossRefConfig controls corroboration scoring
type CrossRefConfig struct {
	MinSourcesForBoost  int     `yaml:"min_sources_for_boost" mapstructure:"min_sources_for_boost"`
	BoostPerSource      float64 `yaml:"boost_per_source" mapstructure:"boost_per_source"`
	MaxBoost            float64 `yaml:"max_boost" mapstructure:"max_boost"`
	SingleSourcePenalty float64 `yaml:"single_source_penalty" mapstructure:"single_source_penalty"`
	ConfidenceCap       float64 `yaml:"confidence_cap" mapstructure:"confidence_cap"`
}

// TierThresholds are the confidence filter's band boundaries, highest
// first. The relaxed set ships as the default.
type TierThresholds struct {
	Verified float64 `yaml:"verified" mapstructure:"verified"`
	High     float64 `yaml:"high" mapstructure:"high"`
	Medium   float64 `yaml:"medium" mapstructure:"medium"`
	Include  float64 `yaml:"include" mapstructure:"include"`
}

// LLMConfig configures both the extraction and fact-checking model calls
type LLMConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"`
	Model          string  `yaml:"model" mapstructure:"model"`
	APIKey         string  `yaml:"-" mapstructure:"api_key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout        int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
	// ErrorPenalty is applied to a signal's confidence when verification
	// fails outright. A failed check is weak negative evidence.
	ErrorPenalty float64 `yaml:"error_penalty" mapstructure:"error_penalty"`
	// DampingFactor scales the pull toward the checker's estimate so a
	// single model call never overwrites accumulated evidence.
	DampingFactor float64 `yaml:"damping_factor" mapstructure:"damping_factor"`
	// MaxSourceChars bounds how much source text goes into a prompt.
	MaxSourceChars int `yaml:"max_source_chars" mapstructure:"max_source_chars"`
}

// ConcurrencyConfig bounds intra-stage fan-out
type ConcurrencyConfig struct {
	CitationWorkers  int `yaml:"citation_workers" mapstructure:"citation_workers"`
	FactCheckWorkers int `yaml:"fact_check_workers" mapstructure:"fact_check_workers"`
	CompanyWorkers   int `yaml:"company_workers" mapstructure:"company_workers"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the shipped defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "signalsift/0.1 (+https://github.com/mlevkov/signalsift)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Discovery: DiscoveryConfig{
			MaxSources:   20,
			LookbackDays: 30,
		},
		Validation: ValidationConfig{
			FuzzyThreshold:   0.85,
			CloseThreshold:   0.80,
			MinQuoteLength:   15,
			NumericTolerance: 0.01,
		},
		CrossRef: CrossRefConfig{
			MinSourcesForBoost:  2,
			BoostPerSource:      0.03,
			MaxBoost:            0.10,
			SingleSourcePenalty: 0.15,
			ConfidenceCap:       0.99,
		},
		Tiers: TierThresholds{
			Verified: 0.90,
			High:     0.75,
			Medium:   0.60,
			Include:  0.40,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			Timeout:        30,
			MaxTokens:      500,
			RequestsPerSec: 2,
			Burst:          4,
			ErrorPenalty:   0.05,
			DampingFactor:  0.5,
			MaxSourceChars: 4000,
		},
		Concurrency: ConcurrencyConfig{
			CitationWorkers:  8,
			FactCheckWorkers: 4,
			CompanyWorkers:   2,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
