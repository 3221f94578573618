package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docattest/claimcheck/internal/model"
	"github.com/docattest/claimcheck/internal/pipeline"
	"github.com/docattest/claimcheck/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchTimeout     time.Duration
	batchRPS         float64
	batchBurst       int
	batchNoCache     bool
	batchNoRobots    bool
	batchLLM         bool
	batchLLMProvider string
	batchLLMModel    string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Verify a manifest of claims across multiple documents",
	Long: `Batch reads a YAML manifest of claims, groups them by document, and
checks the documents concurrently. Each document gets a JSON and a
Markdown report in the output directory.

Manifest format:
  claims:
    - document: ./invoices/2024-08.pdf
      offset: 120
      substring: "Total Due: $419.00"
    - document: https://example.com/contract.pdf
      page: 2
      offset: 0
      substring: "Agreement"

Remote documents are rate limited per host. Exact duplicate claims are
dropped before checking.

Example:
  claimcheck batch claims.yaml --output-dir ./reports --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "number of documents to check concurrently")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./claimcheck-reports", "directory for per-document reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "overall timeout for the batch")
	batchCmd.Flags().Float64Var(&batchRPS, "rps", 2, "max requests per second per host (0 disables)")
	batchCmd.Flags().IntVar(&batchBurst, "burst", 5, "rate limit burst size")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable cache (force fresh loads)")
	batchCmd.Flags().BoolVar(&batchNoRobots, "no-robots", false, "skip robots.txt checks for remote documents")
	batchCmd.Flags().BoolVar(&batchLLM, "llm", false, "enable LLM narration of each report")
	batchCmd.Flags().StringVar(&batchLLMProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&batchLLMModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	groups, err := worker.ReadManifest(manifestPath)
	if err != nil {
		return err
	}

	totalClaims := 0
	for _, g := range groups {
		totalClaims += len(g.Claims)
	}

	cfg, err := buildBatchConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "═══════════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "  Batch check: %d claims across %d documents\n", totalClaims, len(groups))
	fmt.Fprintf(os.Stderr, "  Concurrency: %d workers\n", cfg.Concurrency.Workers)
	fmt.Fprintln(os.Stderr, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(os.Stderr)

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.NewPipeline(cfg)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	start := time.Now()
	results := processor.ProcessDocuments(ctx, groups)
	elapsed := time.Since(start)

	succeeded := 0
	failed := 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", result.Document, result.Error)
			continue
		}

		base := filepath.Join(batchOutputDir, reportBasename(result.Document))
		if err := p.RenderReport(result.Report, base+".json", base+".md", false); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  ✗ %s: write report: %v\n", result.Document, err)
			continue
		}

		succeeded++
		s := result.Report.Summary
		fmt.Fprintf(os.Stderr, "  ✓ %s: %d/%d verified", result.Document, s.Verified, s.Total)
		if s.Rejected > 0 {
			fmt.Fprintf(os.Stderr, " (%d rejected)", s.Rejected)
		}
		fmt.Fprintln(os.Stderr)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Done in %s: %d documents checked, %d failed\n", elapsed.Round(time.Millisecond), succeeded, failed)
	fmt.Fprintf(os.Stderr, "Reports written to %s\n", batchOutputDir)

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func buildBatchConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadBaseConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if batchNoRobots {
		cfg.HTTP.CheckRobots = false
	}
	if batchNoCache {
		cfg.Cache.Enabled = false
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency.Workers = batchConcurrency
	}
	if flags.Changed("rps") {
		cfg.RateLimiting.RequestsPerSecond = batchRPS
	}
	if flags.Changed("burst") {
		cfg.RateLimiting.BurstSize = batchBurst
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	if batchLLM && cfg.LLM.Provider == "" {
		cfg.LLM.Provider = batchLLMProvider
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = batchLLMProvider
	}
	if flags.Changed("llm-model") || cfg.LLM.Model == "" {
		cfg.LLM.Model = batchLLMModel
	}
	cfg.LLM.StrictAllowlist = true

	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// reportBasename turns a document reference into a filesystem-safe
// report basename.
func reportBasename(ref string) string {
	name := ref
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimPrefix(name, "./")

	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "?", "_", "&", "_", "#", "_", " ", "_")
	name = replacer.Replace(name)
	name = strings.Trim(name, "._")

	if len(name) > 120 {
		name = name[:120]
	}
	if name == "" {
		name = "document"
	}
	return name
}
