// Package worker fans out independent company analyses over a bounded
// set of goroutines. Per-candidate fan-out inside the pipeline stages is
// handled by the stages themselves; this package handles the outer
// "many companies in one invocation" case.
package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mlevkov/signalsift/internal/model"
)

// Analyzer runs the full pipeline for one company
type Analyzer interface {
	Run(ctx context.Context, company string) *model.AnalysisResult
}

// BatchProcessor analyzes multiple companies concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor with bounded concurrency
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{analyzer: analyzer, concurrency: concurrency}
}

// ProcessCompanies runs analyses for every company with bounded fan-out.
// Results come back in input order; the engine's no-crash guarantee
// means every slot is populated even when a run fails.
func (b *BatchProcessor) ProcessCompanies(ctx context.Context, companies []string) []*model.AnalysisResult {
	if len(companies) == 0 {
		return []*model.AnalysisResult{}
	}

	results := make([]*model.AnalysisResult, len(companies))

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.concurrency)
	for i, company := range companies {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				results[idx] = &model.AnalysisResult{
					Status:  "Analysis cancelled",
					Company: name,
				}
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			results[idx] = b.analyzer.Run(ctx, name)
		}(i, company)
	}
	wg.Wait()

	return results
}

// ProcessFile reads company names from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*model.AnalysisResult, error) {
	companies, err := ReadCompaniesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read companies: %w", err)
	}
	return b.ProcessCompanies(ctx, companies), nil
}

// ReadCompaniesFromFile reads company names from a file, one per line.
// Empty lines and # comments are skipped, duplicates collapsed.
func ReadCompaniesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var companies []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			companies = append(companies, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return companies, nil
}
