package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlevkov/signalsift/internal/cache"
	"github.com/mlevkov/signalsift/internal/discover"
	"github.com/mlevkov/signalsift/internal/extract"
	"github.com/mlevkov/signalsift/internal/llm"
	"github.com/mlevkov/signalsift/internal/model"
	"github.com/mlevkov/signalsift/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	outCSV      string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	insecureTLS bool
	seedURLs    []string
	maxSources  int
	lookback    int
	llmModel    string
	llmBaseURL  string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <company>",
	Short: "Analyze a company and generate a validated signal report",
	Long: `Analyze discovers recent public sources about a company, extracts
candidate signals with a language model, and validates every signal:
- citation grounding against the cited source text
- cross-source corroboration
- an adversarial LLM fact-checking pass
- tiered confidence filtering

Example:
  signalsift analyze "Diageo"
  signalsift analyze "ACME Corp" --json report.json --csv signals.csv
  signalsift analyze "ACME Corp" --seed https://acme.example/investors --max-sources 30`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path for admitted signals (optional)")

	// HTTP and discovery flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "signalsift/0.1 (+https://github.com/mlevkov/signalsift)", "HTTP User-Agent")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read per source")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable source cache (force fresh fetch)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	analyzeCmd.Flags().StringSliceVar(&seedURLs, "seed", nil, "additional seed URLs to fetch")
	analyzeCmd.Flags().IntVar(&maxSources, "max-sources", 20, "maximum sources to analyze")
	analyzeCmd.Flags().IntVar(&lookback, "lookback-days", 30, "ignore news older than this many days")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
	analyzeCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "custom OpenAI-compatible endpoint")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	company := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := buildConfig()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	engine := buildEngine(cfg, provider, progressPrinter())

	result := engine.Run(ctx, company)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" && result.Report != nil {
		if err := renderer.RenderMarkdown(result.Report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}
	if outCSV != "" {
		f, err := os.Create(outCSV)
		if err != nil {
			return fmt.Errorf("create CSV: %w", err)
		}
		if err := renderer.WriteSignalsCSV(result.Signals, f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write CSV: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close CSV: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote CSV: %s\n", outCSV)
		}
	}

	renderer.RenderSummary(result)
	return nil
}

// buildConfig assembles the run configuration from flags over defaults
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 30 * time.Second
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.Cache.Enabled = !noCache
	cfg.Discovery.SeedURLs = seedURLs
	cfg.Discovery.MaxSources = maxSources
	cfg.Discovery.LookbackDays = lookback
	cfg.LLM.Model = llmModel
	cfg.LLM.BaseURL = llmBaseURL
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	return cfg
}

func buildProvider(cfg *model.Config) (llm.Provider, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return llm.NewProvider(llm.Config{
		Provider:       cfg.LLM.Provider,
		Model:          cfg.LLM.Model,
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Timeout:        cfg.LLM.Timeout,
		MaxTokens:      cfg.LLM.MaxTokens,
		RequestsPerSec: cfg.LLM.RequestsPerSec,
		Burst:          cfg.LLM.Burst,
	})
}

// buildEngine wires discovery, extraction, and the pipeline engine
func buildEngine(cfg *model.Config, provider llm.Provider, progress pipeline.ProgressFunc) *pipeline.Engine {
	fetcher := discover.NewFetcher(cfg.HTTP)

	var store *cache.SourceStore
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dir = filepath.Join(home, ".signalsift", "cache")
			}
		}
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
		store = cache.NewSourceStore(layered, cfg.Cache.DiskTTL)
	}

	discoverer := discover.NewDiscoverer(fetcher, store, cfg.Discovery)
	extractor := extract.NewSignalExtractor(provider, cfg.LLM)

	return pipeline.NewEngine(cfg, discoverer, extractor, provider, progress)
}

// progressPrinter reports stage progress to stderr when verbose
func progressPrinter() pipeline.ProgressFunc {
	if !verbose {
		return nil
	}
	return func(message string, fraction float64) {
		fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", fraction*100, message)
	}
}
