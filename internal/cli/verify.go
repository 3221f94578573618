package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docattest/claimcheck/internal/model"
	"github.com/docattest/claimcheck/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	page        uint32
	offset      uint64
	substring   string
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	noRobots    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <document>",
	Short: "Verify a single claim against a document",
	Long: `Verify checks whether the expected substring occurs at the exact byte
offset in the document. The document may be a local file path or an
http(s) URL.

The outcome is printed as "verified: true/false" plus metadata. A
malformed claim (offset out of bounds, page number above 10000, empty
substring) is rejected and exits non-zero; "verified: false" is a
normal outcome and exits zero.

Example:
  claimcheck verify ./invoice.pdf --offset 120 --substring "Total Due: $419.00"
  claimcheck verify https://example.com/contract.pdf --offset 0 --substring "Agreement" --json report.json
  claimcheck verify ./invoice.pdf --offset 0 --substring "Invoice" --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Claim flags
	verifyCmd.Flags().Uint32Var(&page, "page", 0, "declared page label (0-based)")
	verifyCmd.Flags().Uint64Var(&offset, "offset", 0, "byte offset the substring is claimed at")
	verifyCmd.Flags().StringVar(&substring, "substring", "", "expected substring (required)")
	_ = verifyCmd.MarkFlagRequired("substring")

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path (optional)")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown report path (optional)")

	// HTTP flags
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	verifyCmd.Flags().StringVar(&userAgent, "ua", "claimcheck/0.1 (+https://github.com/docattest/claimcheck)", "HTTP User-Agent")
	verifyCmd.Flags().Int64Var(&maxBytes, "max-bytes", 16_000_000, "max document bytes to read")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh load)")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	verifyCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks for remote documents")
	verifyCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	verifyCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	verifyCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	verifyCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narration of the report")
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runVerify(cmd *cobra.Command, args []string) error {
	document := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Document: %s\n", document)
		fmt.Fprintf(os.Stderr, "Offset:   %d\n", offset)
		fmt.Fprintf(os.Stderr, "Page:     %d\n", page)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg)

	result, err := p.CheckClaim(ctx, model.ClaimSpec{
		Document:  document,
		Page:      page,
		Offset:    offset,
		Substring: substring,
	})
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if err := p.RenderReport(result.Report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	// A rejected request is an error to the caller; verified=false is not
	outcome := result.Report.Outcomes[0]
	if outcome.Rejection != "" {
		return fmt.Errorf("claim rejected: %s", outcome.Rejection)
	}

	return nil
}

// buildConfig layers explicitly set flags over the file/env-resolved
// configuration.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadBaseConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if flags.Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("max-bytes") {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if flags.Changed("http-proxy") {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if flags.Changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if noRobots {
		cfg.HTTP.CheckRobots = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	if llmEnabled && cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") || cfg.LLM.Model == "" {
		cfg.LLM.Model = llmModel
	}
	cfg.LLM.StrictAllowlist = true // Always enforce

	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}
