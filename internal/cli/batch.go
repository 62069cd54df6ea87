package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlevkov/signalsift/internal/pipeline"
	"github.com/mlevkov/signalsift/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple companies from a file in parallel",
	Long: `Batch analyzes every company listed in the input file (one name per
line, # comments allowed) with bounded concurrency and writes one JSON
report per company into the output directory.

Example:
  signalsift batch companies.txt
  signalsift batch companies.txt --concurrency 4 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of companies analyzed in parallel")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./signalsift-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := buildConfig()
	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	engine := buildEngine(cfg, provider, nil)
	processor := worker.NewBatchProcessor(engine, concurrency)

	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	failures := 0
	for _, result := range results {
		path := filepath.Join(outputDir, slugify(result.Company)+".json")
		if err := renderer.RenderJSON(result, path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: write report for %s: %v\n", result.Company, err)
			failures++
			continue
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "%s: %s (%d signals)\n", result.Company, result.Status, len(result.Signals))
		}
	}

	fmt.Printf("Analyzed %d companies (%d report write failures)\n", len(results), failures)
	return nil
}

// slugify converts a company name into a filesystem-safe file stem
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "report"
	}
	return slug
}
